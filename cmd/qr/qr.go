// Copyright 2024 Vadim Vygonets.  All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Qr writes a QR code for its arguments or standard input.
package main

import (
	"bufio"
	"bytes"
	"errors"
	"fmt"
	"image"
	"image/color"
	"io"
	"log"
	"os"
	"strings"

	"github.com/mattn/go-isatty"
	"github.com/pborman/getopt/v2"
	"github.com/sirupsen/logrus"
	"golang.org/x/term"

	"github.com/qrelement/qr"
	"github.com/qrelement/qr/coding"
	"github.com/qrelement/qr/internal/colour"
	"github.com/qrelement/qr/internal/logger"
)

var g = struct {
	scale  int         // pixels per module
	border int         // quiet zone modules
	px     int         // fit image to px pixels
	fn     string      // output file
	format string      // output format, without "i"
	rev    bool        // swap colours
	lev    qr.Level    // error correction level
	opts   qr.Options  // encoder options
	cx     int         // randr source X coordinate index in inc
	inc    [2]int      // randr source X,Y coordinate increments
	bg, fg color.NRGBA // colours
	eci    bool        // designate the byte mode charset
	upper  bool        // uppercase input
	stats  bool        // print statistics
}{
	inc: [2]int{1, 1},
	bg:  colour.White,
	fg:  colour.Black,
}

func printUsage(w io.Writer) {
	cl := getopt.CommandLine
	prog := cl.Program()
	ul := make([]string, 1, 4)
	ul[0] = cl.UsageLine() + " [string ...]"
	ml := max(70-len("Usage: ")-1-len(prog), 0)
	for i := 0; len(ul[i]) > ml; i++ {
		s := ul[i]
		n := ml - 1
		for n > 0 && (s[n] != ' ' || s[n+1] != '[') {
			n--
		}
		ul = append(ul, s[n+1:])
		ul[i] = s[:max(n, 0)]
		ml = 60
	}
	fmt.Fprint(w, "QR code generator\nUsage: ", prog, " ",
		strings.Join(ul, "\n          "), `
If no string is given, data is read from standard input and the final
newline is stripped.  Defaults: UTF-8 input, kanji mode segments
enabled, no ECI segment, smallest version, automatic mask.

`)
	cl.PrintOptions(w)
}

type opt func()

func (opt) String() string                    { return "" }
func (o opt) Set(string, getopt.Option) error { o(); return nil }

// colourFlag sets a colour from a hex or named spec.
type colourFlag struct{ c *color.NRGBA }

func (f colourFlag) String() string { return colour.Hex(*f.c) }

func (f colourFlag) Set(s string, _ getopt.Option) error {
	c, err := colour.Parse(s)
	if err != nil {
		return err
	}
	*f.c = c
	return nil
}

func usage() {
	printUsage(os.Stderr)
	os.Exit(2)
}

func help() {
	printUsage(os.Stdout)
	os.Exit(0)
}

func version() {
	fmt.Println(`qr version 0.9.0
Copyright (c) 2011 The Go Authors
Copyright (c) 2024 Vadim Vygonets`)
	os.Exit(0)
}

func flip() {
	g.inc[0] = -g.inc[0]
}

func rotate() {
	g.cx ^= 1
	m := g.inc[0] * g.inc[1]
	g.inc[0] *= m
	g.inc[1] *= -m
}

var formats = []string{
	"png", "jpg", "gif", "bmp", "tiff", "svg", "eps", "pbm", "utf8", "ascii",
}

func formatList() []string {
	l := make([]string, 0, len(formats)*2)
	for _, f := range formats {
		l = append(l, f, f+"i")
	}
	return l
}

func parseFlags() {
	getopt.SetUsage(usage)
	getopt.Flag(opt(help), 'h', "show this help").SetFlag()
	getopt.Flag(opt(version), 'V', "print version and copyright").SetFlag()
	getopt.Flag(opt(logger.SetDebug), 'd', "log debug messages").SetFlag()
	getopt.FlagLong(colourFlag{&g.bg}, "background", 'B',
		`background colour; see -F`, "RGB[A]|name")
	getopt.FlagLong(colourFlag{&g.fg}, "foreground", 'F', `foreground `+
		`colour as 3, 4, 6 or 8 hex digits or SVG colour name; `+
		`ignored for types pbm, utf8 and ascii`, "RGB[A]|name")
	getopt.Flag(opt(flip), 'f', `flip code horizontally; `+
		`to flip vertically, use "-frr"`).SetFlag()
	getopt.Flag(opt(rotate), 'r', `rotate code 90° counterclockwise; `+
		`-r and -f may be given multiple times, `+
		`order matters: "-fr" = "-rfrr" = "-rrrf"`).SetFlag()
	getopt.Flag(&g.opts.NoKanji, 'K', "disable kanji mode")
	getopt.Flag(&g.opts.Latin1, '1',
		"convert byte mode segments to Latin-1")
	getopt.Flag(&g.opts.ByteOnly, '8', "encode entire data in byte mode")
	getopt.Flag(&g.opts.BoostECC, 'b',
		"raise error correction level while the version holds the data")
	getopt.Flag(&g.upper, 'i', `ignore case, convert input to uppercase`)
	getopt.Flag(&g.stats, 'S', `print version, level, mask and penalty `+
		`to standard error`)
	getopt.Flag(&g.eci, 'e', "encode ECI segment setting "+
		"character encoding according to -1")
	fno := getopt.Flag(&g.fn, 'o', `output file, or "-" for `+
		`standard output`, "file")
	eci := getopt.Signed('E', -1, &getopt.SignedLimit{Base: 0, Bits: 21, Min: 0, Max: coding.MaxECI},
		"encode ECI segment with the given value; overrides -e", "eci")
	minv := getopt.Unsigned('v', 1, &getopt.UnsignedLimit{Base: 0, Bits: 8, Min: 1, Max: 40},
		"smallest QR code version", "ver")
	maxv := getopt.Unsigned('x', 40, &getopt.UnsignedLimit{Base: 0, Bits: 8, Min: 1, Max: 40},
		"largest QR code version", "ver")
	mask := getopt.Signed('k', -1, &getopt.SignedLimit{Base: 0, Bits: 8, Min: -1, Max: 7},
		"mask pattern, -1 for automatic", "mask")
	lev := getopt.Enum('l',
		[]string{"l", "m", "q", "h", "L", "M", "Q", "H"}, "m",
		"error correction level, lowest to highest", "l|m|q|h")
	border := getopt.Unsigned('m', 4, &getopt.UnsignedLimit{Base: 0, Bits: 16, Min: 0, Max: 1 << 15},
		"quiet zone modules", "margin")
	scale := getopt.Unsigned('s', 4, &getopt.UnsignedLimit{Base: 0, Bits: 28, Min: 1, Max: 1 << 28},
		`image pixels (type eps: points) per module; `+
			`ignored for types utf8 and ascii`, "scale")
	px := getopt.Unsigned('p', 0, &getopt.UnsignedLimit{Base: 0, Bits: 28, Min: 0, Max: 1 << 18},
		`fit image types to the given size in pixels; overrides -s`, "pixels")
	ff := getopt.Enum('t', formatList(), "", `output format, one of: `+
		strings.Join(formats, ", ")+
		`; types with "i" appended have colours inverted; `+
		`if no -o is given and standard output is a TTY, `+
		`default is utf8, otherwise png`, "type")

	getopt.Parse()
	g.border = int(*border)
	g.scale = int(*scale)
	g.px = int(*px)
	g.lev, _ = coding.ParseLevel(*lev)
	g.opts.MinVersion = qr.Version(*minv)
	g.opts.MaxVersion = qr.Version(*maxv)
	if g.opts.MinVersion > g.opts.MaxVersion {
		fmt.Fprintln(os.Stderr, "-v must not exceed -x")
		usage()
	}
	g.opts.Mask, _ = coding.ParseMask(int(*mask))
	if *ff == "" {
		if !fno.Seen() && isatty.IsTerminal(os.Stdout.Fd()) {
			*ff = "utf8"
		} else {
			*ff = "png"
		}
	}
	g.format, g.rev = strings.CutSuffix(*ff, "i")
	if g.format == "asci" {
		g.format, g.rev = "ascii", false
	}
	if g.fn == "-" {
		g.fn = ""
	}
	switch {
	case *eci >= 0:
		g.opts.ECI = uint32(*eci)
	case g.eci && g.opts.Latin1:
		g.opts.ECI = qr.Latin1ECI
	case g.eci:
		g.opts.ECI = qr.UTF8ECI
	}
}

func main() {
	log.SetFlags(0)
	logger.Logger.SetFormatter(&logrus.TextFormatter{DisableTimestamp: true})
	parseFlags()

	var s string
	if args := getopt.Args(); len(args) != 0 {
		s = strings.Join(args, " ")
	} else {
		var b strings.Builder
		if _, err := io.Copy(&b, os.Stdin); err != nil {
			log.Fatalln(err)
		}
		s, _ = strings.CutSuffix(
			strings.ReplaceAll(b.String(), "\r\n", "\n"), "\n")
	}
	if g.upper {
		s = strings.ToUpper(s)
	}
	logger.WithFields(logrus.Fields{
		"bytes": len(s),
		"level": g.lev.String(),
		"eci":   g.opts.ECI,
	}).Debug("Encoding")

	c, err := qr.Encode(s, g.lev, g.opts)
	if err != nil {
		log.Fatalln(err)
	}
	logger.WithFields(logrus.Fields{
		"version": c.Version,
		"level":   c.Level.String(),
		"mask":    c.Mask,
		"penalty": c.Penalty(),
	}).Debug("Encoded")
	if g.stats {
		fmt.Fprintf(os.Stderr, "version %v-%v, mask %d, %dx%d modules, penalty %d\n",
			c.Version, c.Level, c.Mask, c.Size, c.Size, c.Penalty())
	}
	if err := write(randr(c)); err != nil {
		log.Fatalln(err)
	}
}

func write(c *qr.Code) error {
	w := os.Stdout
	if g.fn != "" {
		var err error
		if w, err = os.Create(g.fn); err != nil {
			return err
		}
	} else if g.format == "utf8" {
		checkWidth(c)
	}
	bw := bufio.NewWriter(w)
	err := render(c, bw)
	if err == nil {
		err = bw.Flush()
	}
	if g.fn != "" {
		if cerr := w.Close(); err == nil {
			err = cerr
		}
	}
	return err
}

// checkWidth warns when the terminal is too narrow for the code.
func checkWidth(c *qr.Code) {
	fd := int(os.Stdout.Fd())
	if !term.IsTerminal(fd) {
		return
	}
	width, _, err := term.GetSize(fd)
	if err != nil {
		logger.WithError(err).Debug("No terminal size")
		return
	}
	if need := c.Size + 2*g.border; need > width {
		logger.WithFields(logrus.Fields{
			"columns": width,
			"needed":  need,
		}).Warn("Terminal too narrow for the code")
	}
}

func render(c *qr.Code, w io.Writer) error {
	fg, bg := color.Color(g.fg), color.Color(g.bg)
	if g.rev {
		fg, bg = bg, fg
	}
	switch g.format {
	case "utf8":
		return c.UTF8(w, g.border, g.rev)
	case "ascii":
		return c.ASCII(w, g.border, g.rev)
	case "pbm":
		return c.EncodePBM(w, g.border, g.scale, g.rev)
	case "eps":
		return eps(c, w, fg, bg)
	case "svg":
		v, err := c.Vector(g.border, fg, bg)
		if err != nil {
			return err
		}
		_, err = io.WriteString(w, v.SVG())
		return err
	}
	f, err := qr.ParseImageFormat(g.format)
	if err != nil {
		return err
	}
	var img image.Image
	if g.px > 0 {
		img, err = c.Image(g.border, g.px, fg, bg)
	} else {
		img, err = c.Raster(g.border, g.scale, fg, bg)
	}
	if errors.Is(err, qr.ErrArgs) && g.px > 0 {
		return fmt.Errorf("-p %d: smaller than the code: %w", g.px, err)
	} else if err != nil {
		return err
	}
	return qr.EncodeImage(w, img, f)
}

// randr rotates and reflects c.
func randr(c *qr.Code) *qr.Code {
	cx, inc := g.cx, g.inc
	if cx == 0 && inc == [2]int{1, 1} {
		return c
	}
	r := *c
	r.Bitmap = make([]byte, len(c.Bitmap))
	siz := c.Size
	var coord [2]int
	coord[cx^1] = (siz - 1) & inc[1]
	for y := 0; y < siz; y++ {
		coord[cx] = (siz - 1) & inc[0]
		for x := 0; x < siz; x++ {
			if c.Black(coord[0], coord[1]) {
				r.Bitmap[y*r.Stride+x>>3] |= 0x80 >> (x & 7)
			}
			coord[cx] += inc[0]
		}
		coord[cx^1] += inc[1]
	}
	return &r
}

// eps writes c as an Encapsulated PostScript page, one stroke per
// module row.
func eps(c *qr.Code, w io.Writer, fg, bg color.Color) error {
	const midx, midy = 306, 396
	siz := c.Size
	scale := g.scale
	bord := g.border
	xorig := (midx*2 - (siz+2*bord)*scale) / 2
	yorig := (midy*2 - (siz+2*bord)*scale) / 2
	var b bytes.Buffer
	fmt.Fprintf(&b, `%%!PS-Adobe-2.0 EPSF-2.0
%%%%Creator: qr
%%%%Title: QR Code
%%%%BoundingBox: %d %d %d %d
%%%%EndComments
%%%%EndProlog
<< >> begin
gsave
%g %g translate
%d dup neg scale
/row 0 def
/p { 0 rmoveto 0 rlineto } def
/r { 0 row 1 add dup /row exch def moveto } def
`,
		xorig-1, yorig-1, midx*2-xorig, midy*2-yorig,
		midx-float64(siz*scale)/2, midy+float64((siz-1)*scale)/2-1,
		scale)
	if fg != color.Color(colour.Black) || bg != color.Color(colour.White) {
		fmt.Fprintf(&b, `gsave
newpath %d %d moveto
%d dup neg scale
%s setrgbcolor
1 0 rlineto stroke
grestore
%s setrgbcolor
`,
			-bord, siz/2, siz+2*bord, psColour(bg), psColour(fg))
	}
	b.WriteString("newpath 0 0 moveto\n")
	for y := 0; y < siz; y++ {
		for x := 0; x < siz; {
			s := x
			for x < siz && !c.Black(x, y) {
				x++
			}
			if x == siz {
				break
			}
			start := x
			for x < siz && c.Black(x, y) {
				x++
			}
			fmt.Fprintf(&b, "%d %d p ", x-start, start-s)
		}
		b.WriteString("r\n")
	}
	b.WriteString("stroke grestore\nend\n%%Trailer\n")
	_, err := b.WriteTo(w)
	return err
}

func psColour(c color.Color) string {
	n := color.NRGBAModel.Convert(c).(color.NRGBA)
	return fmt.Sprintf("%.3g %.3g %.3g",
		float64(n.R)/0xff, float64(n.G)/0xff, float64(n.B)/0xff)
}
