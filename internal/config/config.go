// Copyright 2024 Vadim Vygonets.  All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package config loads the HTTP service configuration from the
// environment.
package config

import (
	"fmt"
	"net"
	"os"
	"strconv"
	"strings"
	"time"
)

// Config holds the service settings.
type Config struct {
	Host           string
	Port           string
	RequestTimeout time.Duration
	MaxTextLength  int // bytes of text per request
	DefaultScale   int // pixels per module
	DefaultBorder  int // quiet zone modules
	MaxScale       int
	MaxBorder      int // quiet zone modules
}

func (c *Config) ServerAddress() string {
	host := strings.TrimSpace(c.Host)
	port := strings.TrimSpace(c.Port)
	return net.JoinHostPort(host, port)
}

// Default returns the configuration with no environment set.
func Default() *Config {
	return &Config{
		Host:           "0.0.0.0",
		Port:           "8080",
		RequestTimeout: 30 * time.Second,
		MaxTextLength:  7089,
		DefaultScale:   10,
		DefaultBorder:  1,
		MaxScale:       64,
		MaxBorder:      16,
	}
}

// LoadFromEnv reads HOST, PORT, REQUEST_TIMEOUT, MAX_TEXT_LENGTH,
// DEFAULT_SCALE, DEFAULT_BORDER, MAX_SCALE and MAX_BORDER.  Unset or unparseable
// values take the defaults; the result is then validated.
func LoadFromEnv() (*Config, error) {
	def := Default()
	cfg := &Config{
		Host:           getEnvOrDefault("HOST", def.Host),
		Port:           getEnvOrDefault("PORT", def.Port),
		RequestTimeout: parseDurationOrDefault("REQUEST_TIMEOUT", def.RequestTimeout),
		MaxTextLength:  parseIntOrDefault("MAX_TEXT_LENGTH", def.MaxTextLength),
		DefaultScale:   parseIntOrDefault("DEFAULT_SCALE", def.DefaultScale),
		DefaultBorder:  parseIntOrDefault("DEFAULT_BORDER", def.DefaultBorder),
		MaxScale:       parseIntOrDefault("MAX_SCALE", def.MaxScale),
		MaxBorder:      parseIntOrDefault("MAX_BORDER", def.MaxBorder),
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks the settings for consistency.
func (c *Config) Validate() error {
	p, err := strconv.Atoi(strings.TrimSpace(c.Port))
	if err != nil || p < 1 || p > 65535 {
		return fmt.Errorf("invalid PORT: %q", c.Port)
	}
	if c.RequestTimeout <= 0 {
		return fmt.Errorf("REQUEST_TIMEOUT must be > 0 (got %s)", c.RequestTimeout)
	}
	if c.MaxTextLength <= 0 {
		return fmt.Errorf("MAX_TEXT_LENGTH must be > 0 (got %d)", c.MaxTextLength)
	}
	if c.MaxScale < 1 {
		return fmt.Errorf("MAX_SCALE must be > 0 (got %d)", c.MaxScale)
	}
	if c.DefaultScale < 1 || c.DefaultScale > c.MaxScale {
		return fmt.Errorf("DEFAULT_SCALE must be in 1..%d (got %d)", c.MaxScale, c.DefaultScale)
	}
	if c.MaxBorder < 0 {
		return fmt.Errorf("MAX_BORDER must be >= 0 (got %d)", c.MaxBorder)
	}
	if c.DefaultBorder < 0 || c.DefaultBorder > c.MaxBorder {
		return fmt.Errorf("DEFAULT_BORDER must be in 0..%d (got %d)", c.MaxBorder, c.DefaultBorder)
	}
	return nil
}

func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func parseDurationOrDefault(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if d, err := time.ParseDuration(strings.TrimSpace(value)); err == nil && d > 0 {
			return d
		}
	}
	return defaultValue
}

func parseIntOrDefault(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if n, err := strconv.Atoi(strings.TrimSpace(value)); err == nil {
			return n
		}
	}
	return defaultValue
}
