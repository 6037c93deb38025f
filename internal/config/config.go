// Package config loads server settings from an optional YAML file. Every
// field has a default so the server runs with no file at all.
package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"

	"gopkg.in/yaml.v3"
)

// Config is the full server configuration.
type Config struct {
	// Addr is the listen address, host:port.
	Addr string `yaml:"addr"`
	// Language selects the message catalog ("en" or "ja").
	Language string `yaml:"language"`
	SSE      SSE    `yaml:"sse"`
}

// SSE tunes the event-stream endpoint.
type SSE struct {
	// KeepAliveSeconds is the interval between comment frames that hold
	// idle proxy connections open.
	KeepAliveSeconds int `yaml:"keep_alive_seconds"`
}

// Default returns the built-in configuration.
func Default() Config {
	return Config{
		Addr:     ":8000",
		Language: "en",
		SSE:      SSE{KeepAliveSeconds: 15},
	}
}

// Load reads a YAML config file over the defaults. An empty path returns
// the defaults unchanged. Unknown keys are rejected so typos fail loudly.
func Load(path string) (Config, error) {
	cfg := Default()
	if path == "" {
		return cfg, nil
	}
	raw, err := os.ReadFile(path)
	if err != nil {
		return cfg, fmt.Errorf("config: read %s: %w", path, err)
	}
	dec := yaml.NewDecoder(bytes.NewReader(raw))
	dec.KnownFields(true)
	if err := dec.Decode(&cfg); err != nil && !errors.Is(err, io.EOF) {
		return cfg, fmt.Errorf("config: parse %s: %w", path, err)
	}
	if err := cfg.validate(); err != nil {
		return cfg, fmt.Errorf("config: %s: %w", path, err)
	}
	return cfg, nil
}

func (c Config) validate() error {
	if c.Addr == "" {
		return errors.New("addr must not be empty")
	}
	if c.SSE.KeepAliveSeconds < 1 {
		return errors.New("sse.keep_alive_seconds must be at least 1")
	}
	if c.Language != "en" && c.Language != "ja" {
		return errors.New("language must be en or ja")
	}
	return nil
}
