// Copyright 2024 Vadim Vygonets.  All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package transport serves QR codes over HTTP.
package transport

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"image/color"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/qrelement/qr"
	"github.com/qrelement/qr/coding"
	"github.com/qrelement/qr/internal/colour"
	"github.com/qrelement/qr/internal/config"
	"github.com/qrelement/qr/internal/logger"
	"github.com/qrelement/qr/split"
)

// A Request holds the parsed query of a /qr request.
type Request struct {
	Text   string
	Level  qr.Level
	Mask   coding.MaskChoice
	Boost  bool
	Border int
	Scale  int
	FG, BG color.NRGBA
	Format string // svg, json or an image format
}

// Stats describes an encoded code.
type Stats struct {
	Version int    `json:"version"`
	Level   string `json:"level"`
	Mask    int    `json:"mask"`
	Size    int    `json:"size"`
	Penalty int    `json:"penalty"`
}

// ErrorResponse is the JSON body of a failed request.  Message holds
// the underlying error, if any.
type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message,omitempty"`
}

// A requestError carries the HTTP status of a failed request.
type requestError struct {
	status int
	msg    string
	cause  error
}

func (e *requestError) Error() string {
	if e.cause != nil {
		return e.msg + ": " + e.cause.Error()
	}
	return e.msg
}

func (e *requestError) Unwrap() error { return e.cause }

func badRequest(msg string, cause error) error {
	return &requestError{http.StatusBadRequest, msg, cause}
}

var mimeTypes = map[qr.ImageFormat]string{
	qr.PNG:  "image/png",
	qr.JPEG: "image/jpeg",
	qr.GIF:  "image/gif",
	qr.BMP:  "image/bmp",
	qr.TIFF: "image/tiff",
}

// NewHandler returns the HTTP handler of the service.
func NewHandler(cfg *config.Config) http.Handler {
	r := gin.New()
	r.Use(gin.Recovery(), requestLogger())
	r.GET("/health", healthCheck)
	r.GET("/qr", generate(cfg))
	return r
}

func healthCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status": "available",
		"time":   time.Now().UTC().Format(time.RFC3339),
	})
}

func requestLogger() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		logger.WithFields(logrus.Fields{
			"method":      c.Request.Method,
			"path":        c.Request.URL.Path,
			"status":      c.Writer.Status(),
			"ip":          c.ClientIP(),
			"duration_ms": time.Since(start).Milliseconds(),
		}).Info("Request handled")
	}
}

func intParam(c *gin.Context, name string, def int) (int, error) {
	s, ok := c.GetQuery(name)
	if !ok || s == "" {
		return def, nil
	}
	n, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil {
		return 0, badRequest("invalid "+name, err)
	}
	return n, nil
}

// ParseRequest reads the query parameters.  Unknown error correction
// levels, masks and colours fall back to the defaults; malformed
// numbers and out of range sizes are errors.
func ParseRequest(c *gin.Context, cfg *config.Config) (*Request, error) {
	text, ok := c.GetQuery("text")
	if !ok {
		return nil, badRequest("missing text", nil)
	}
	if len(text) > cfg.MaxTextLength {
		return nil, &requestError{http.StatusRequestEntityTooLarge,
			fmt.Sprintf("text longer than %d bytes", cfg.MaxTextLength), nil}
	}
	req := &Request{
		Text:   text,
		Level:  qr.M,
		Boost:  true,
		FG:     colour.ParseOr(c.Query("fg"), colour.Black),
		BG:     colour.ParseOr(c.Query("bg"), colour.White),
		Format: strings.ToLower(c.DefaultQuery("format", "svg")),
	}
	if l, err := coding.ParseLevel(strings.ToLower(c.Query("ecc"))); err == nil {
		req.Level = l
	}
	mask, err := intParam(c, "mask", -1)
	if err != nil {
		return nil, err
	}
	if m, err := coding.ParseMask(mask); err == nil {
		req.Mask = m
	}
	if s := c.Query("boost"); s != "" {
		if req.Boost, err = strconv.ParseBool(s); err != nil {
			return nil, badRequest("invalid boost", err)
		}
	}
	if req.Border, err = intParam(c, "border", cfg.DefaultBorder); err != nil {
		return nil, err
	}
	if req.Border < 0 || req.Border > cfg.MaxBorder {
		return nil, badRequest(fmt.Sprintf("border must be in 0..%d", cfg.MaxBorder), nil)
	}
	if req.Scale, err = intParam(c, "scale", cfg.DefaultScale); err != nil {
		return nil, err
	}
	if req.Scale < 1 || req.Scale > cfg.MaxScale {
		return nil, badRequest(fmt.Sprintf("scale must be in 1..%d", cfg.MaxScale), nil)
	}
	return req, nil
}

// Encode returns the code for req.
func (req *Request) Encode() (*qr.Code, error) {
	c, err := qr.Encode(req.Text, req.Level, qr.Options{
		Mask:     req.Mask,
		BoostECC: req.Boost,
	})
	var tooLong *qr.DataTooLongError
	switch {
	case err == nil:
		return c, nil
	case errors.As(err, &tooLong):
		return nil, &requestError{http.StatusRequestEntityTooLarge, "text does not fit", err}
	case errors.Is(err, split.ErrNotEncodable):
		return nil, &requestError{http.StatusUnprocessableEntity, "text not encodable", err}
	}
	return nil, err
}

// render writes code in the requested format.
func render(c *gin.Context, req *Request, code *qr.Code) error {
	switch req.Format {
	case "svg":
		v, err := code.Vector(req.Border, req.FG, req.BG)
		if err != nil {
			return err
		}
		c.Data(http.StatusOK, "image/svg+xml", []byte(v.SVG()))
		return nil
	case "json":
		c.JSON(http.StatusOK, Stats{
			Version: int(code.Version),
			Level:   code.Level.String(),
			Mask:    code.Mask,
			Size:    code.Size,
			Penalty: code.Penalty(),
		})
		return nil
	}
	f, err := qr.ParseImageFormat(req.Format)
	if err != nil {
		return badRequest("unknown format", err)
	}
	img, err := code.Raster(req.Border, req.Scale, req.FG, req.BG)
	if errors.Is(err, qr.ErrLargeImage) {
		return badRequest("image too large", err)
	} else if err != nil {
		return err
	}
	var b bytes.Buffer
	if err := qr.EncodeImage(&b, img, f); err != nil {
		return err
	}
	c.Data(http.StatusOK, mimeTypes[f], b.Bytes())
	return nil
}

func generate(cfg *config.Config) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx, cancel := context.WithTimeout(c.Request.Context(), cfg.RequestTimeout)
		defer cancel()

		req, err := ParseRequest(c, cfg)
		if err != nil {
			respondError(c, err)
			return
		}
		code, err := req.Encode()
		if err != nil {
			respondError(c, err)
			return
		}
		if err := ctx.Err(); err != nil {
			respondError(c, &requestError{http.StatusGatewayTimeout, "request timed out", err})
			return
		}
		logger.WithFields(logrus.Fields{
			"version": code.Version,
			"level":   code.Level.String(),
			"mask":    code.Mask,
			"format":  req.Format,
		}).Debug("Encoded")
		if err := render(c, req, code); err != nil {
			respondError(c, err)
		}
	}
}

func respondError(c *gin.Context, err error) {
	code := http.StatusInternalServerError
	message := "request processing failed"
	var re *requestError
	if errors.As(err, &re) {
		code, message = re.status, re.Error()
	}
	logger.WithError(err).WithFields(logrus.Fields{
		"status_code": code,
		"path":        c.Request.URL.Path,
		"ip":          c.ClientIP(),
	}).Error("Request failed")

	c.AbortWithStatusJSON(code, ErrorResponse{
		Error:   http.StatusText(code),
		Message: message,
	})
}
