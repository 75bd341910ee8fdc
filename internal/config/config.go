// SPDX-License-Identifier: MIT
//
// Package config loads the controller configuration from YAML, applies
// GLOW_* environment overrides and validates the result.
package config

import (
	"fmt"
	"os"
	"strconv"

	"gopkg.in/yaml.v3"

	"glow/internal/led"
	"glow/internal/log"
	"glow/internal/mode"
	"glow/pkg/bitint"
)

// Config is the full controller configuration.
type Config struct {
	LogLevel string `yaml:"log_level"` // "debug", "info", "warn", "error".

	Server   ServerConfig   `yaml:"server"`
	Source   SourceConfig   `yaml:"source"`
	Analysis AnalysisConfig `yaml:"analysis"`
	Sinks    SinksConfig    `yaml:"sinks"`

	// LEDs is the group topology. Group order is the wire order.
	LEDs led.Topology `yaml:"leds"`

	// InitialMode selects the render mode active at startup.
	InitialMode int `yaml:"initial_mode"`
}

// ServerConfig holds the control-surface settings.
type ServerConfig struct {
	Addr string `yaml:"addr"` // Listen address for HTTP mode control and WebSocket feed.
}

// SourceConfig selects and tunes the sample source.
type SourceConfig struct {
	Kind       string  `yaml:"kind"`        // "portaudio", "wav" or "synth".
	Device     int     `yaml:"device"`      // PortAudio device index, -1 for default.
	WAVPath    string  `yaml:"wav_path"`    // Input file for the wav source.
	SampleRate float64 `yaml:"sample_rate"` // Target sampling frequency in Hz.
	BlockSize  int     `yaml:"block_size"`  // Samples per analysis block, power of two.

	SynthFrequency float64 `yaml:"synth_frequency"` // Tone frequency for the synth source.
	SynthAmplitude float64 `yaml:"synth_amplitude"` // Tone amplitude in ADC counts.
}

// AnalysisConfig tunes the band normalization and smoothing.
type AnalysisConfig struct {
	BassGain        float64 `yaml:"bass_gain"`
	MidGain         float64 `yaml:"mid_gain"`
	TrebleGain      float64 `yaml:"treble_gain"`
	SmoothingWindow int     `yaml:"smoothing_window"` // Moving-average saturation count.

	// Threshold multipliers applied to the smoothed averages to derive
	// the tier gates.
	BassMult   float64 `yaml:"bass_mult"`
	MidMult    float64 `yaml:"mid_mult"`
	TrebleMult float64 `yaml:"treble_mult"`
}

// SinksConfig enables the hardware outputs. The WebSocket feed is always
// on; serial and UDP are opt-in.
type SinksConfig struct {
	Serial SerialSinkConfig `yaml:"serial"`
	UDP    UDPSinkConfig    `yaml:"udp"`
}

type SerialSinkConfig struct {
	Enabled bool   `yaml:"enabled"`
	Port    string `yaml:"port"` // e.g. "/dev/ttyUSB0".
	Baud    int    `yaml:"baud"`
}

type UDPSinkConfig struct {
	Enabled bool   `yaml:"enabled"`
	Address string `yaml:"address"` // WLED realtime target, e.g. "192.168.1.50:21324".
}

// Default returns the configuration calibrated for the reference
// fixture.
func Default() *Config {
	return &Config{
		LogLevel: "info",
		Server:   ServerConfig{Addr: ":8080"},
		Source: SourceConfig{
			Kind:           "portaudio",
			Device:         -1,
			SampleRate:     10000,
			BlockSize:      128,
			SynthFrequency: 220,
			SynthAmplitude: 1200,
		},
		Analysis: AnalysisConfig{
			BassGain:        150,
			MidGain:         100,
			TrebleGain:      150,
			SmoothingWindow: 50,
			BassMult:        0.8,
			MidMult:         1.2,
			TrebleMult:      0.8,
		},
		Sinks: SinksConfig{
			Serial: SerialSinkConfig{Enabled: false, Port: "/dev/ttyUSB0", Baud: 115200},
			UDP:    UDPSinkConfig{Enabled: false, Address: "127.0.0.1:21324"},
		},
		LEDs:        led.DefaultTopology(),
		InitialMode: 1,
	}
}

// Load reads the configuration. If path is empty it tries config.yaml in
// the working directory and falls back to built-in defaults when no file
// exists. Environment overrides apply after the file, then the result is
// validated.
func Load(path string) (*Config, error) {
	cfg := Default()

	if path == "" {
		if _, err := os.Stat("config.yaml"); err == nil {
			path = "config.yaml"
		}
	}
	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("failed to parse config file: %w", err)
		}
	}

	cfg.applyEnvOverrides()

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, nil
}

// Validate checks the cross-field constraints the pipeline depends on.
func (c *Config) Validate() error {
	if _, ok := log.ParseLevel(c.LogLevel); !ok {
		return fmt.Errorf("unknown log_level %q", c.LogLevel)
	}
	switch c.Source.Kind {
	case "portaudio", "synth":
	case "wav":
		if c.Source.WAVPath == "" {
			return fmt.Errorf("source.wav_path must be set for the wav source")
		}
	default:
		return fmt.Errorf("unknown source.kind %q", c.Source.Kind)
	}
	if c.Source.SampleRate <= 0 {
		return fmt.Errorf("source.sample_rate must be positive, got %g", c.Source.SampleRate)
	}
	if !bitint.IsPowerOfTwo(c.Source.BlockSize) {
		return fmt.Errorf("source.block_size must be a power of two, got %d", c.Source.BlockSize)
	}
	if c.Analysis.BassGain <= 0 || c.Analysis.MidGain <= 0 || c.Analysis.TrebleGain <= 0 {
		return fmt.Errorf("analysis gains must be positive")
	}
	if c.Analysis.SmoothingWindow <= 0 {
		return fmt.Errorf("analysis.smoothing_window must be positive, got %d", c.Analysis.SmoothingWindow)
	}
	if c.Analysis.BassMult <= 0 || c.Analysis.MidMult <= 0 || c.Analysis.TrebleMult <= 0 {
		return fmt.Errorf("analysis threshold multipliers must be positive")
	}
	if err := c.LEDs.Validate(); err != nil {
		return fmt.Errorf("leds: %w", err)
	}
	if !mode.Valid(c.InitialMode) {
		return fmt.Errorf("initial_mode %d outside [%d, %d]", c.InitialMode, mode.Min, mode.Max)
	}
	if c.Sinks.Serial.Enabled && c.Sinks.Serial.Port == "" {
		return fmt.Errorf("sinks.serial.port must be set when the serial sink is enabled")
	}
	if c.Sinks.UDP.Enabled && c.Sinks.UDP.Address == "" {
		return fmt.Errorf("sinks.udp.address must be set when the UDP sink is enabled")
	}
	return nil
}

// applyEnvOverrides applies GLOW_* variables on top of the loaded file.
// Unparseable values are ignored with a log line rather than failing
// startup.
func (c *Config) applyEnvOverrides() {
	if v, ok := os.LookupEnv("GLOW_LOG_LEVEL"); ok {
		c.LogLevel = v
	}
	if v, ok := os.LookupEnv("GLOW_ADDR"); ok {
		c.Server.Addr = v
	}
	if v, ok := os.LookupEnv("GLOW_SOURCE"); ok {
		c.Source.Kind = v
	}
	if v, ok := os.LookupEnv("GLOW_DEVICE"); ok {
		if n, err := strconv.Atoi(v); err == nil {
			c.Source.Device = n
		} else {
			log.Warnf("config: ignoring GLOW_DEVICE=%q: %v", v, err)
		}
	}
	if v, ok := os.LookupEnv("GLOW_WAV_PATH"); ok {
		c.Source.WAVPath = v
	}
	if v, ok := os.LookupEnv("GLOW_INITIAL_MODE"); ok {
		if n, err := strconv.Atoi(v); err == nil {
			c.InitialMode = n
		} else {
			log.Warnf("config: ignoring GLOW_INITIAL_MODE=%q: %v", v, err)
		}
	}
	if v, ok := os.LookupEnv("GLOW_SERIAL_PORT"); ok {
		c.Sinks.Serial.Enabled = true
		c.Sinks.Serial.Port = v
	}
	if v, ok := os.LookupEnv("GLOW_UDP_ADDRESS"); ok {
		c.Sinks.UDP.Enabled = true
		c.Sinks.UDP.Address = v
	}
}
