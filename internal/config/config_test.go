// Copyright 2024 Vadim Vygonets.  All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var keys = []string{
	"HOST", "PORT", "REQUEST_TIMEOUT", "MAX_TEXT_LENGTH",
	"DEFAULT_SCALE", "DEFAULT_BORDER", "MAX_SCALE", "MAX_BORDER",
}

func clearEnv(t *testing.T) {
	for _, k := range keys {
		t.Setenv(k, "")
	}
}

func TestLoadDefaults(t *testing.T) {
	clearEnv(t)
	cfg, err := LoadFromEnv()
	require.NoError(t, err)
	assert.Equal(t, Default(), cfg)
	assert.Equal(t, "0.0.0.0:8080", cfg.ServerAddress())
}

func TestLoadFromEnv(t *testing.T) {
	clearEnv(t)
	t.Setenv("HOST", " ::1 ")
	t.Setenv("PORT", "9000")
	t.Setenv("REQUEST_TIMEOUT", "5s")
	t.Setenv("MAX_TEXT_LENGTH", "100")
	t.Setenv("DEFAULT_SCALE", "4")
	t.Setenv("DEFAULT_BORDER", "0")
	t.Setenv("MAX_SCALE", "16")
	t.Setenv("MAX_BORDER", "8")
	cfg, err := LoadFromEnv()
	require.NoError(t, err)
	assert.Equal(t, "[::1]:9000", cfg.ServerAddress())
	assert.Equal(t, 5*time.Second, cfg.RequestTimeout)
	assert.Equal(t, 100, cfg.MaxTextLength)
	assert.Equal(t, 4, cfg.DefaultScale)
	assert.Equal(t, 0, cfg.DefaultBorder)
	assert.Equal(t, 16, cfg.MaxScale)
	assert.Equal(t, 8, cfg.MaxBorder)
}

func TestLoadBadValues(t *testing.T) {
	clearEnv(t)
	// unparseable numbers fall back to the defaults
	t.Setenv("REQUEST_TIMEOUT", "soon")
	t.Setenv("DEFAULT_SCALE", "big")
	cfg, err := LoadFromEnv()
	require.NoError(t, err)
	assert.Equal(t, 30*time.Second, cfg.RequestTimeout)
	assert.Equal(t, 10, cfg.DefaultScale)

	for k, v := range map[string]string{
		"PORT":            "http",
		"MAX_TEXT_LENGTH": "0",
		"DEFAULT_SCALE":   "100",
		"DEFAULT_BORDER":  "-1",
		"MAX_SCALE":       "0",
		"MAX_BORDER":      "-1",
	} {
		clearEnv(t)
		t.Setenv(k, v)
		_, err := LoadFromEnv()
		assert.Error(t, err, "%s=%s", k, v)
	}
}
