// Package config loads the sniffer configuration from YAML.
package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/ystepanoff/pulserx/protocol"
	"github.com/ystepanoff/pulserx/transport"
)

// Config represents the application configuration
type Config struct {
	Capture CaptureConfig `yaml:"capture"`
	Decoder DecoderConfig `yaml:"decoder"`
	Monitor MonitorConfig `yaml:"monitor"`
	Metrics MetricsConfig `yaml:"metrics"`
}

// CaptureConfig contains capture peripheral settings
type CaptureConfig struct {
	Pin          string        `yaml:"pin"`           // GPIO name, used by gpio builds only
	Resolution   time.Duration `yaml:"resolution"`    // edge timestamp tick
	Depth        int           `yaml:"depth"`         // receive queue depth in pulses
	PollInterval time.Duration `yaml:"poll_interval"` // bounded wait on the queue, 0 = automatic
}

// DecoderConfig selects the timing profile
type DecoderConfig struct {
	Preset  string                     `yaml:"preset"`
	Presets map[string]protocol.Timing `yaml:"presets"` // custom profiles, shadow built-ins
}

// MonitorConfig contains the UI poller settings
type MonitorConfig struct {
	Interval    time.Duration `yaml:"interval"`
	LockTimeout time.Duration `yaml:"lock_timeout"`
}

// MetricsConfig contains Prometheus exporter settings
type MetricsConfig struct {
	Enabled bool   `yaml:"enabled"`
	Listen  string `yaml:"listen"`
}

// Default returns the configuration used when no file is given.
func Default() *Config {
	return &Config{
		Capture: CaptureConfig{
			Pin:        "GPIO25",
			Resolution: protocol.DefaultResolution,
			Depth:      protocol.DefaultQueueDepth,
		},
		Decoder: DecoderConfig{
			Preset: "default",
		},
		Monitor: MonitorConfig{
			Interval:    200 * time.Millisecond,
			LockTimeout: 10 * time.Millisecond,
		},
		Metrics: MetricsConfig{
			Listen: ":9105",
		},
	}
}

// LoadConfig loads configuration from a YAML file on top of Default.
func LoadConfig(filename string) (*Config, error) {
	data, err := os.ReadFile(filename)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}
	return Parse(data)
}

// Parse decodes YAML configuration on top of Default and validates it.
func Parse(data []byte) (*Config, error) {
	config := Default()
	if err := yaml.Unmarshal(data, config); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	if err := config.Validate(); err != nil {
		return nil, err
	}
	return config, nil
}

// Timing resolves the selected preset, custom profiles first.
func (c *Config) Timing() (protocol.Timing, error) {
	if t, ok := c.Decoder.Presets[c.Decoder.Preset]; ok {
		return t, nil
	}
	return protocol.LookupPreset(c.Decoder.Preset)
}

// DecoderConfig builds the decoder task configuration.
func (c *Config) DecoderConfig() (transport.DecoderConfig, error) {
	t, err := c.Timing()
	if err != nil {
		return transport.DecoderConfig{}, err
	}
	return transport.DecoderConfig{
		Timing: t,
		Capture: transport.CaptureConfig{
			Resolution: c.Capture.Resolution,
			Depth:      c.Capture.Depth,
		},
		PollInterval: c.Capture.PollInterval,
	}, nil
}

// Validate checks the configuration for consistency.
func (c *Config) Validate() error {
	if c.Capture.Resolution < 0 {
		return fmt.Errorf("capture.resolution must not be negative")
	}
	if c.Capture.Depth < 1 {
		return fmt.Errorf("capture.depth must be at least 1")
	}
	if c.Capture.PollInterval < 0 {
		return fmt.Errorf("capture.poll_interval must not be negative")
	}
	if c.Monitor.Interval <= 0 {
		return fmt.Errorf("monitor.interval must be positive")
	}
	if c.Monitor.LockTimeout < 0 {
		return fmt.Errorf("monitor.lock_timeout must not be negative")
	}
	if c.Metrics.Enabled && c.Metrics.Listen == "" {
		return fmt.Errorf("metrics.listen is required when metrics are enabled")
	}

	for name, t := range c.Decoder.Presets {
		if err := t.Validate(); err != nil {
			return fmt.Errorf("decoder.presets.%s: %w", name, err)
		}
	}
	t, err := c.Timing()
	if err != nil {
		return fmt.Errorf("decoder.preset: %w", err)
	}
	if err := t.Validate(); err != nil {
		return fmt.Errorf("decoder.preset %s: %w", c.Decoder.Preset, err)
	}
	return nil
}
