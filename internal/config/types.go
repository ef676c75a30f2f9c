package config

import (
	"time"

	"agent-bootstrap/internal/target"
)

// Mode selects how exit codes of the install and registration steps are treated.
//   - strict: a non-success exit aborts the run with a failure.
//   - compat: exit codes are logged and ignored, as the legacy installer did.
type Mode string

const (
	ModeStrict Mode = "strict"
	ModeCompat Mode = "compat"
)

// Timeouts bounds every blocking external call.
type Timeouts struct {
	Download  time.Duration `yaml:"download"`
	Install   time.Duration `yaml:"install"`
	Register  time.Duration `yaml:"register"`
	Uninstall time.Duration `yaml:"uninstall"`
}

// TargetOverride replaces selected fields of a built-in target descriptor.
// Empty fields keep the built-in value.
// Method and ArtifactExt are replaced together with URL when a mirror
// serves a different artifact type, e.g. a .tar.xz instead of a .deb.
type TargetOverride struct {
	URL         string        `yaml:"url"`
	Method      target.Method `yaml:"method"`
	ArtifactExt string        `yaml:"artifact_ext"`
	SilentArgs  []string      `yaml:"silent_args"`
	BinaryPath  string        `yaml:"binary_path"`
	ServiceName string        `yaml:"service_name"`
}

// Config is the top-level structure loaded from the YAML config file.
// - Mode: strict or compat exit-code handling.
// - TempDir: where artifacts are downloaded; empty means the system temp dir.
// - SettleDelay: pause after uninstalling a previous installation.
// - Timeouts: per-step bounds.
// - Targets: per-target overrides keyed by "tunnel" or "bridge".
type Config struct {
	Mode        Mode                      `yaml:"mode"`
	TempDir     string                    `yaml:"temp_dir"`
	SettleDelay time.Duration             `yaml:"settle_delay"`
	Timeouts    Timeouts                  `yaml:"timeouts"`
	Targets     map[string]TargetOverride `yaml:"targets"`
}

// Strict reports whether exit codes are enforced.
func (c Config) Strict() bool {
	return c.Mode != ModeCompat
}
