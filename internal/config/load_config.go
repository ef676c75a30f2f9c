package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"agent-bootstrap/internal/target"
)

// DefaultPath is the config file consulted when --config is not given.
const DefaultPath = "agent-bootstrap.yaml"

// Default returns the built-in configuration.
func Default() Config {
	return Config{
		Mode:        ModeStrict,
		SettleDelay: 2 * time.Second,
		Timeouts: Timeouts{
			Download:  10 * time.Minute,
			Install:   15 * time.Minute,
			Register:  2 * time.Minute,
			Uninstall: 2 * time.Minute,
		},
		Targets: map[string]TargetOverride{},
	}
}

// LoadConfig reads the YAML config file at path on top of the defaults.
// A missing file is only tolerated when optional is true, which is the case
// for the default path; an explicitly named file must exist.
func LoadConfig(path string, optional bool) (Config, error) {
	cfg := Default()

	raw, err := os.ReadFile(path)
	if err != nil {
		if optional && errors.Is(err, fs.ErrNotExist) {
			return cfg, nil
		}
		return Config{}, fmt.Errorf("failed to read config %s: %w", path, err)
	}
	if err := yaml.Unmarshal(raw, &cfg); err != nil {
		return Config{}, fmt.Errorf("failed to unmarshal config %s: %w", path, err)
	}
	if cfg.Targets == nil {
		cfg.Targets = map[string]TargetOverride{}
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, fmt.Errorf("invalid config %s: %w", path, err)
	}
	return cfg, nil
}

// Validate rejects unknown modes, non-positive timeouts, unknown target keys
// and overrides that leave a target descriptor unusable.
func (c Config) Validate() error {
	switch c.Mode {
	case ModeStrict, ModeCompat:
	default:
		return fmt.Errorf("unknown mode %q (want %q or %q)", c.Mode, ModeStrict, ModeCompat)
	}
	if c.SettleDelay < 0 {
		return fmt.Errorf("settle_delay must not be negative")
	}
	for name, d := range map[string]time.Duration{
		"download":  c.Timeouts.Download,
		"install":   c.Timeouts.Install,
		"register":  c.Timeouts.Register,
		"uninstall": c.Timeouts.Uninstall,
	} {
		if d <= 0 {
			return fmt.Errorf("timeouts.%s must be positive", name)
		}
	}
	for key := range c.Targets {
		choice, ok := choiceForKey(key)
		if !ok {
			return fmt.Errorf("unknown target %q", key)
		}
		d, err := c.Descriptor(choice)
		if err != nil {
			return fmt.Errorf("targets.%s: %w", key, err)
		}
		if err := d.Validate(); err != nil {
			return fmt.Errorf("targets.%s: %w", key, err)
		}
	}
	return nil
}

// Descriptor resolves the built-in descriptor for a choice and applies overrides.
func (c Config) Descriptor(choice target.Choice) (target.Descriptor, error) {
	d, err := target.Defaults(choice)
	if err != nil {
		return target.Descriptor{}, err
	}
	return c.apply(d), nil
}

func choiceForKey(key string) (target.Choice, bool) {
	for _, c := range target.Choices {
		if c.Key() == key {
			return c, true
		}
	}
	return "", false
}

func (c Config) apply(d target.Descriptor) target.Descriptor {
	o, ok := c.Targets[d.Choice.Key()]
	if !ok {
		return d
	}
	if o.URL != "" {
		d.URL = o.URL
	}
	if o.Method != "" {
		d.Method = o.Method
	}
	if o.ArtifactExt != "" {
		d.ArtifactExt = o.ArtifactExt
	}
	if len(o.SilentArgs) > 0 {
		d.SilentArgs = o.SilentArgs
	}
	if o.BinaryPath != "" {
		d.BinaryPath = o.BinaryPath
	}
	if o.ServiceName != "" {
		d.ServiceName = o.ServiceName
	}
	return d
}
