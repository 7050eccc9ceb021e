// SPDX-License-Identifier: MPL-2.0

package config

import (
	"errors"
	"fmt"
	"strings"
)

const (
	// LinkModeCopy copies every artifact into the output directory.
	LinkModeCopy LinkMode = "copy"
	// LinkModeHardlink hard-links artifacts into the output directory when possible.
	LinkModeHardlink LinkMode = "hardlink"

	// LogLevelDebug enables debug logging.
	LogLevelDebug LogLevel = "debug"
	// LogLevelInfo is the default log level.
	LogLevelInfo LogLevel = "info"
	// LogLevelWarn only logs warnings and errors.
	LogLevelWarn LogLevel = "warn"
	// LogLevelError only logs errors.
	LogLevelError LogLevel = "error"

	// LogFormatText is the human-readable log format.
	LogFormatText LogFormat = "text"
	// LogFormatJSON emits one JSON object per log line.
	LogFormatJSON LogFormat = "json"
	// LogFormatLogfmt emits key=value log lines.
	LogFormatLogfmt LogFormat = "logfmt"

	// ColorSchemeAuto detects the terminal color scheme automatically.
	ColorSchemeAuto ColorScheme = "auto"
	// ColorSchemeDark forces dark color scheme.
	ColorSchemeDark ColorScheme = "dark"
	// ColorSchemeLight forces light color scheme.
	ColorSchemeLight ColorScheme = "light"

	// DefaultParallelism is the default number of concurrent file copies.
	DefaultParallelism = 4
	// DefaultDeclarationFile is the declaration file looked up by default.
	DefaultDeclarationFile DeclarationFileName = "mods.cue"
)

var (
	// ErrInvalidLinkMode is returned when a LinkMode value is not recognized.
	ErrInvalidLinkMode = errors.New("invalid link mode")
	// ErrInvalidLogLevel is returned when a LogLevel value is not recognized.
	ErrInvalidLogLevel = errors.New("invalid log level")
	// ErrInvalidLogFormat is returned when a LogFormat value is not recognized.
	ErrInvalidLogFormat = errors.New("invalid log format")
	// ErrInvalidColorScheme is returned when a ColorScheme value is not recognized.
	ErrInvalidColorScheme = errors.New("invalid color scheme")
	// ErrInvalidRepositoryPath is returned when a RepositoryPath is whitespace-only.
	ErrInvalidRepositoryPath = errors.New("invalid repository path")
	// ErrInvalidDeclarationFile is returned when a DeclarationFileName is not a .cue file name.
	ErrInvalidDeclarationFile = errors.New("invalid declaration file name")
	// ErrInvalidParallelism is returned when the sync parallelism is below one.
	ErrInvalidParallelism = errors.New("invalid sync parallelism")
	// ErrInvalidConfig is the sentinel error wrapped by InvalidConfigError.
	ErrInvalidConfig = errors.New("invalid config")
)

type (
	// LinkMode selects how artifacts are materialized in the output directory.
	LinkMode string

	// LogLevel is the minimum level of emitted log lines.
	LogLevel string

	// LogFormat selects the log line encoding.
	LogFormat string

	// ColorScheme specifies the terminal color scheme preference.
	ColorScheme string

	// RepositoryPath is a filesystem path to a local module repository.
	RepositoryPath string

	// DeclarationFileName is the name of the mods declaration file.
	DeclarationFileName string

	// InvalidValueError is returned when an enumerated config value is not
	// recognized. It wraps the sentinel of the offending field.
	InvalidValueError struct {
		Field    string
		Value    string
		Sentinel error
	}

	// InvalidConfigError is returned when a Config has invalid fields.
	// It wraps ErrInvalidConfig and every field-level validation error.
	InvalidConfigError struct {
		FieldErrors []error
	}

	// Config holds the application configuration.
	Config struct {
		// Repositories are the local module repositories, searched in order.
		Repositories []RepositoryPath `json:"repositories" mapstructure:"repositories"`
		// DeclarationFile is the declaration file name looked up in the working directory.
		DeclarationFile DeclarationFileName `json:"declaration_file" mapstructure:"declaration_file"`
		// Sync configures directory synchronization.
		Sync SyncConfig `json:"sync" mapstructure:"sync"`
		// Log configures the logger.
		Log LogConfig `json:"log" mapstructure:"log"`
		// UI configures the user interface
		UI UIConfig `json:"ui" mapstructure:"ui"`
	}

	// SyncConfig configures the output directory synchronizer.
	SyncConfig struct {
		Parallelism int      `json:"parallelism" mapstructure:"parallelism"`
		LinkMode    LinkMode `json:"link_mode" mapstructure:"link_mode"`
	}

	// LogConfig configures the logger.
	LogConfig struct {
		Level  LogLevel  `json:"level" mapstructure:"level"`
		Format LogFormat `json:"format" mapstructure:"format"`
	}

	// UIConfig configures the user interface.
	UIConfig struct {
		// ColorScheme sets the color scheme
		ColorScheme ColorScheme `json:"color_scheme" mapstructure:"color_scheme"`
		// Verbose enables verbose output
		Verbose bool `json:"verbose" mapstructure:"verbose"`
	}
)

// Error implements the error interface for InvalidValueError.
func (e *InvalidValueError) Error() string {
	return fmt.Sprintf("%s: %v %q", e.Field, e.Sentinel, e.Value)
}

// Unwrap returns the field sentinel for errors.Is() compatibility.
func (e *InvalidValueError) Unwrap() error { return e.Sentinel }

// String returns the string representation of the LinkMode.
func (m LinkMode) String() string { return string(m) }

// IsValid returns whether the LinkMode is one of the defined modes.
func (m LinkMode) IsValid() (bool, []error) {
	switch m {
	case LinkModeCopy, LinkModeHardlink:
		return true, nil
	default:
		return false, []error{&InvalidValueError{Field: "sync.link_mode", Value: string(m), Sentinel: ErrInvalidLinkMode}}
	}
}

// String returns the string representation of the LogLevel.
func (l LogLevel) String() string { return string(l) }

// IsValid returns whether the LogLevel is one of the defined levels.
func (l LogLevel) IsValid() (bool, []error) {
	switch l {
	case LogLevelDebug, LogLevelInfo, LogLevelWarn, LogLevelError:
		return true, nil
	default:
		return false, []error{&InvalidValueError{Field: "log.level", Value: string(l), Sentinel: ErrInvalidLogLevel}}
	}
}

// String returns the string representation of the LogFormat.
func (f LogFormat) String() string { return string(f) }

// IsValid returns whether the LogFormat is one of the defined formats.
func (f LogFormat) IsValid() (bool, []error) {
	switch f {
	case LogFormatText, LogFormatJSON, LogFormatLogfmt:
		return true, nil
	default:
		return false, []error{&InvalidValueError{Field: "log.format", Value: string(f), Sentinel: ErrInvalidLogFormat}}
	}
}

// String returns the string representation of the ColorScheme.
func (cs ColorScheme) String() string { return string(cs) }

// IsValid returns whether the ColorScheme is one of the defined color schemes,
// and a list of validation errors if it is not.
func (cs ColorScheme) IsValid() (bool, []error) {
	switch cs {
	case ColorSchemeAuto, ColorSchemeDark, ColorSchemeLight:
		return true, nil
	default:
		return false, []error{&InvalidValueError{Field: "ui.color_scheme", Value: string(cs), Sentinel: ErrInvalidColorScheme}}
	}
}

// String returns the string representation of the RepositoryPath.
func (p RepositoryPath) String() string { return string(p) }

// IsValid returns whether the RepositoryPath is non-empty and not whitespace-only.
func (p RepositoryPath) IsValid() (bool, []error) {
	if strings.TrimSpace(string(p)) == "" {
		return false, []error{&InvalidValueError{Field: "repositories", Value: string(p), Sentinel: ErrInvalidRepositoryPath}}
	}
	return true, nil
}

// String returns the string representation of the DeclarationFileName.
func (n DeclarationFileName) String() string { return string(n) }

// IsValid returns whether the name is a plain file name ending in ".cue".
func (n DeclarationFileName) IsValid() (bool, []error) {
	s := string(n)
	if !strings.HasSuffix(s, ".cue") || strings.TrimSpace(s) != s || strings.ContainsAny(s, `/\`) {
		return false, []error{&InvalidValueError{Field: "declaration_file", Value: s, Sentinel: ErrInvalidDeclarationFile}}
	}
	return true, nil
}

// IsValid returns whether the SyncConfig has valid fields.
func (c SyncConfig) IsValid() (bool, []error) {
	var errs []error
	if c.Parallelism < 1 {
		errs = append(errs, &InvalidValueError{Field: "sync.parallelism", Value: fmt.Sprint(c.Parallelism), Sentinel: ErrInvalidParallelism})
	}
	if valid, fieldErrs := c.LinkMode.IsValid(); !valid {
		errs = append(errs, fieldErrs...)
	}
	return len(errs) == 0, errs
}

// IsValid returns whether the LogConfig has valid fields.
func (c LogConfig) IsValid() (bool, []error) {
	var errs []error
	if valid, fieldErrs := c.Level.IsValid(); !valid {
		errs = append(errs, fieldErrs...)
	}
	if valid, fieldErrs := c.Format.IsValid(); !valid {
		errs = append(errs, fieldErrs...)
	}
	return len(errs) == 0, errs
}

// IsValid returns whether the UIConfig has valid fields.
// It delegates to ColorScheme.IsValid(); bool fields need no validation.
func (c UIConfig) IsValid() (bool, []error) {
	return c.ColorScheme.IsValid()
}

// IsValid returns whether the Config has valid fields. Field errors from every
// section are collected into a single InvalidConfigError.
func (c Config) IsValid() (bool, []error) {
	var errs []error
	for _, repo := range c.Repositories {
		if valid, fieldErrs := repo.IsValid(); !valid {
			errs = append(errs, fieldErrs...)
		}
	}
	if valid, fieldErrs := c.DeclarationFile.IsValid(); !valid {
		errs = append(errs, fieldErrs...)
	}
	if valid, fieldErrs := c.Sync.IsValid(); !valid {
		errs = append(errs, fieldErrs...)
	}
	if valid, fieldErrs := c.Log.IsValid(); !valid {
		errs = append(errs, fieldErrs...)
	}
	if valid, fieldErrs := c.UI.IsValid(); !valid {
		errs = append(errs, fieldErrs...)
	}
	if len(errs) > 0 {
		return false, []error{&InvalidConfigError{FieldErrors: errs}}
	}
	return true, nil
}

// Error implements the error interface for InvalidConfigError.
func (e *InvalidConfigError) Error() string {
	msgs := make([]string, len(e.FieldErrors))
	for i, err := range e.FieldErrors {
		msgs[i] = err.Error()
	}
	return fmt.Sprintf("invalid config: %s", strings.Join(msgs, "; "))
}

// Unwrap returns ErrInvalidConfig and the field errors for errors.Is() compatibility.
func (e *InvalidConfigError) Unwrap() []error {
	return append([]error{ErrInvalidConfig}, e.FieldErrors...)
}

// RepositoryDirs returns the repositories as plain paths.
func (c *Config) RepositoryDirs() []string {
	dirs := make([]string, len(c.Repositories))
	for i, repo := range c.Repositories {
		dirs[i] = string(repo)
	}
	return dirs
}

// DefaultConfig returns the default configuration
func DefaultConfig() *Config {
	return &Config{
		Repositories:    []RepositoryPath{RepositoryPath(DefaultRepositoryDir())},
		DeclarationFile: DefaultDeclarationFile,
		Sync: SyncConfig{
			Parallelism: DefaultParallelism,
			LinkMode:    LinkModeCopy,
		},
		Log: LogConfig{
			Level:  LogLevelInfo,
			Format: LogFormatText,
		},
		UI: UIConfig{
			ColorScheme: ColorSchemeAuto,
			Verbose:     false,
		},
	}
}
