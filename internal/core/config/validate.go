package config

import (
	"fmt"
	"os"

	"github.com/hay-kot/criterio"

	"github.com/hay-kot/subassist/internal/core/styles"
	"github.com/hay-kot/subassist/internal/core/validate"
)

// ValidationWarning represents a non-fatal configuration issue.
type ValidationWarning struct {
	Category string `json:"category"`
	Item     string `json:"item,omitempty"`
	Message  string `json:"message"`
}

// Validate checks that the configuration is structurally valid.
func (c *Config) Validate() error {
	return criterio.ValidateStruct(
		criterio.Run("data_dir", c.DataDir, validate.NotEmpty),
		validate.EncodingField("output.encoding", c.Output.Encoding),
		criterio.Run("theme", c.Theme, themeExists),
		c.validateRules(),
		criterio.Run("convert.header_lines", c.HeaderLines(), nonNegative),
		c.validateDatabase(),
	)
}

func (c *Config) validateRules() error {
	var errs criterio.FieldErrorsBuilder
	if c.Rules.QuickGapMin < 0 {
		errs = errs.Append("rules.quick_gap_min", fmt.Errorf("must not be negative"))
	}
	if c.Rules.QuickGapMax < c.Rules.QuickGapMin {
		errs = errs.Append("rules.quick_gap_max", fmt.Errorf("must be at least quick_gap_min (%s)", c.Rules.QuickGapMin))
	}
	if c.Rules.MaxPasses < 1 {
		errs = errs.Append("rules.max_passes", fmt.Errorf("must be at least 1"))
	}
	return errs.ToError()
}

func (c *Config) validateDatabase() error {
	var errs criterio.FieldErrorsBuilder
	if c.Database.MaxOpenConns < 1 {
		errs = errs.Append("database.max_open_conns", fmt.Errorf("must be at least 1"))
	}
	if c.Database.MaxIdleConns < 0 {
		errs = errs.Append("database.max_idle_conns", fmt.Errorf("must not be negative"))
	}
	if c.Database.BusyTimeout < 0 {
		errs = errs.Append("database.busy_timeout", fmt.Errorf("must not be negative"))
	}
	return errs.ToError()
}

// ValidateDeep runs Validate plus checks that touch the filesystem.
func (c *Config) ValidateDeep(configPath string) error {
	if err := c.Validate(); err != nil {
		return err
	}

	return criterio.ValidateStruct(
		validateConfigFile(configPath),
		criterio.Run("data_dir", c.DataDir, isDirectoryOrNotExist),
	)
}

// Warnings returns non-fatal configuration issues.
func (c *Config) Warnings() []ValidationWarning {
	var warnings []ValidationWarning

	if !c.AtomicWrite() {
		warnings = append(warnings, ValidationWarning{
			Category: "Output",
			Item:     "atomic_write",
			Message:  "files are rewritten in place; a failed write can truncate them",
		})
	}
	if !c.Convert.CorrectExtension {
		warnings = append(warnings, ValidationWarning{
			Category: "Convert",
			Item:     "correct_extension",
			Message:  fmt.Sprintf("converted files are saved with the %s extension", LegacyConvertExtension),
		})
	}

	return warnings
}

func themeExists(name string) error {
	if _, ok := styles.GetPalette(name); !ok {
		return fmt.Errorf("unknown theme %q (available: %v)", name, styles.ThemeNames())
	}
	return nil
}

func nonNegative(n int) error {
	if n < 0 {
		return fmt.Errorf("must not be negative")
	}
	return nil
}

func validateConfigFile(configPath string) error {
	if configPath == "" {
		return nil
	}

	info, err := os.Stat(configPath)
	if os.IsNotExist(err) {
		return nil // not found is fine, using defaults
	}
	if err != nil {
		return criterio.NewFieldErrors("config_file", fmt.Errorf("cannot access: %w", err))
	}
	if info.IsDir() {
		return criterio.NewFieldErrors("config_file", fmt.Errorf("%s is a directory, not a file", configPath))
	}
	return nil
}

// isDirectoryOrNotExist validates that a path is a directory or doesn't exist.
func isDirectoryOrNotExist(path string) error {
	if path == "" {
		return nil
	}
	info, err := os.Stat(path)
	if os.IsNotExist(err) {
		return nil // will be created
	}
	if err != nil {
		return fmt.Errorf("cannot access: %w", err)
	}
	if !info.IsDir() {
		return fmt.Errorf("exists but is not a directory")
	}
	return nil
}
