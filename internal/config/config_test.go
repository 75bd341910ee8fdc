// SPDX-License-Identifier: MIT
package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func writeTempConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("failed to write temp config: %v", err)
	}
	return path
}

func TestLoadDefaults(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "nope.yaml")); err == nil {
		t.Error("expected error for missing explicit file")
	}

	// Empty path with no config.yaml in cwd falls back to defaults.
	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Load with defaults: %v", err)
	}
	if cfg.Source.BlockSize != 128 || cfg.Source.SampleRate != 10000 {
		t.Errorf("default source = %d/%g, expected 128/10000", cfg.Source.BlockSize, cfg.Source.SampleRate)
	}
	if cfg.LEDs.TotalLEDs() != 60 {
		t.Errorf("default topology has %d LEDs, expected 60", cfg.LEDs.TotalLEDs())
	}
	if cfg.InitialMode != 1 {
		t.Errorf("default initial mode = %d, expected 1", cfg.InitialMode)
	}
}

func TestLoadFileOverridesDefaults(t *testing.T) {
	path := writeTempConfig(t, `
log_level: debug
server:
  addr: ":9000"
source:
  kind: synth
  block_size: 256
analysis:
  bass_gain: 200
initial_mode: 3
`)
	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.LogLevel != "debug" {
		t.Errorf("log_level = %q", cfg.LogLevel)
	}
	if cfg.Server.Addr != ":9000" {
		t.Errorf("server.addr = %q", cfg.Server.Addr)
	}
	if cfg.Source.Kind != "synth" || cfg.Source.BlockSize != 256 {
		t.Errorf("source = %q/%d", cfg.Source.Kind, cfg.Source.BlockSize)
	}
	if cfg.Analysis.BassGain != 200 {
		t.Errorf("bass_gain = %g", cfg.Analysis.BassGain)
	}
	// Untouched fields keep their defaults.
	if cfg.Analysis.MidGain != 100 {
		t.Errorf("mid_gain = %g, expected default 100", cfg.Analysis.MidGain)
	}
	if cfg.InitialMode != 3 {
		t.Errorf("initial_mode = %d", cfg.InitialMode)
	}
}

func TestLoadUnmarshalError(t *testing.T) {
	path := writeTempConfig(t, ":\n:bad")
	_, err := Load(path)
	if err == nil || !strings.Contains(err.Error(), "failed to parse config file") {
		t.Errorf("expected unmarshal error, got %v", err)
	}
}

func TestEnvOverrides(t *testing.T) {
	t.Setenv("GLOW_LOG_LEVEL", "error")
	t.Setenv("GLOW_ADDR", ":7777")
	t.Setenv("GLOW_SOURCE", "synth")
	t.Setenv("GLOW_DEVICE", "3")
	t.Setenv("GLOW_INITIAL_MODE", "5")
	t.Setenv("GLOW_UDP_ADDRESS", "10.0.0.5:21324")

	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.LogLevel != "error" {
		t.Errorf("log_level = %q", cfg.LogLevel)
	}
	if cfg.Server.Addr != ":7777" {
		t.Errorf("addr = %q", cfg.Server.Addr)
	}
	if cfg.Source.Kind != "synth" || cfg.Source.Device != 3 {
		t.Errorf("source = %q/%d", cfg.Source.Kind, cfg.Source.Device)
	}
	if cfg.InitialMode != 5 {
		t.Errorf("initial_mode = %d", cfg.InitialMode)
	}
	if !cfg.Sinks.UDP.Enabled || cfg.Sinks.UDP.Address != "10.0.0.5:21324" {
		t.Errorf("udp sink = %+v", cfg.Sinks.UDP)
	}
}

func TestEnvOverrideBadIntIgnored(t *testing.T) {
	t.Setenv("GLOW_DEVICE", "not-a-number")
	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Source.Device != -1 {
		t.Errorf("device = %d, expected default -1", cfg.Source.Device)
	}
}

func TestValidateRejections(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"bad log level", func(c *Config) { c.LogLevel = "loud" }},
		{"unknown source", func(c *Config) { c.Source.Kind = "theremin" }},
		{"wav without path", func(c *Config) { c.Source.Kind = "wav"; c.Source.WAVPath = "" }},
		{"zero sample rate", func(c *Config) { c.Source.SampleRate = 0 }},
		{"non power-of-two block", func(c *Config) { c.Source.BlockSize = 100 }},
		{"negative gain", func(c *Config) { c.Analysis.TrebleGain = -1 }},
		{"zero smoothing window", func(c *Config) { c.Analysis.SmoothingWindow = 0 }},
		{"zero threshold multiplier", func(c *Config) { c.Analysis.MidMult = 0 }},
		{"empty topology", func(c *Config) { c.LEDs = nil }},
		{"mode out of range", func(c *Config) { c.InitialMode = 8 }},
		{"serial without port", func(c *Config) { c.Sinks.Serial.Enabled = true; c.Sinks.Serial.Port = "" }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.mutate(cfg)
			if err := cfg.Validate(); err == nil {
				t.Error("expected validation error, got nil")
			}
		})
	}
}

func TestDefaultIsValid(t *testing.T) {
	if err := Default().Validate(); err != nil {
		t.Errorf("default configuration should validate, got %v", err)
	}
}
