package doctor

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/hay-kot/criterio"

	"github.com/hay-kot/subassist/internal/core/charset"
	"github.com/hay-kot/subassist/internal/core/config"
)

// ConfigCheck validates the loaded configuration.
type ConfigCheck struct {
	cfg  *config.Config
	path string
}

// NewConfigCheck creates a new config check.
func NewConfigCheck(cfg *config.Config, path string) *ConfigCheck {
	return &ConfigCheck{cfg: cfg, path: path}
}

func (c *ConfigCheck) Name() string { return "Configuration" }

func (c *ConfigCheck) Run(_ context.Context) Result {
	result := Result{Name: c.Name()}

	switch _, err := os.Stat(c.path); {
	case c.path == "":
		result.add(StatusPass, "config file", "using defaults")
	case os.IsNotExist(err):
		result.add(StatusPass, "config file", "not found, using defaults")
	default:
		result.add(StatusPass, "config file", c.path)
	}

	err := c.cfg.ValidateDeep(c.path)
	var fes criterio.FieldErrors
	switch {
	case err == nil:
		result.add(StatusPass, "validation", "")
	case errors.As(err, &fes):
		for _, fe := range fes {
			result.add(StatusFail, fe.Field, fe.Err.Error())
		}
	default:
		result.add(StatusFail, "validation", err.Error())
	}

	for _, w := range c.cfg.Warnings() {
		result.add(StatusWarn, w.Item, w.Message)
	}
	return result
}

// EncodingCheck reports the encodings used to read and write files.
type EncodingCheck struct {
	cfg *config.Config
}

// NewEncodingCheck creates a new encoding check.
func NewEncodingCheck(cfg *config.Config) *EncodingCheck {
	return &EncodingCheck{cfg: cfg}
}

func (c *EncodingCheck) Name() string { return "Encoding" }

func (c *EncodingCheck) Run(_ context.Context) Result {
	result := Result{Name: c.Name()}

	if charset.Valid(c.cfg.Output.Encoding) {
		result.add(StatusPass, "output", c.cfg.Output.Encoding)
	} else {
		result.add(StatusFail, "output", fmt.Sprintf("%q is not supported", c.cfg.Output.Encoding))
	}

	if c.cfg.DetectCharset() {
		result.add(StatusPass, "input", "detected per file")
	} else {
		result.add(StatusWarn, "input", "detection disabled; non UTF-8 files are read with replacement characters")
	}
	return result
}

// DataDirCheck verifies the data directory can be written.
type DataDirCheck struct {
	dir string
}

// NewDataDirCheck creates a new data directory check.
func NewDataDirCheck(dir string) *DataDirCheck {
	return &DataDirCheck{dir: dir}
}

func (c *DataDirCheck) Name() string { return "Data Directory" }

func (c *DataDirCheck) Run(_ context.Context) Result {
	result := Result{Name: c.Name()}

	info, err := os.Stat(c.dir)
	switch {
	case os.IsNotExist(err):
		result.add(StatusWarn, c.dir, "does not exist yet")
		return result
	case err != nil:
		result.add(StatusFail, c.dir, err.Error())
		return result
	case !info.IsDir():
		result.add(StatusFail, c.dir, "not a directory")
		return result
	}

	f, err := os.CreateTemp(c.dir, ".doctor-*")
	if err != nil {
		result.add(StatusFail, c.dir, "not writable")
		return result
	}
	_ = f.Close()
	_ = os.Remove(f.Name())

	result.add(StatusPass, c.dir, "writable")
	return result
}

// SchemaReader reports the applied schema version of the journal database.
type SchemaReader interface {
	SchemaVersion(ctx context.Context) (int, error)
}

// JournalCheck verifies the journal database is reachable and migrated.
type JournalCheck struct {
	enabled bool
	db      SchemaReader
	latest  int
}

// NewJournalCheck creates a new journal check. db may be nil when the
// journal is disabled.
func NewJournalCheck(enabled bool, db SchemaReader, latest int) *JournalCheck {
	return &JournalCheck{enabled: enabled, db: db, latest: latest}
}

func (c *JournalCheck) Name() string { return "Journal" }

func (c *JournalCheck) Run(ctx context.Context) Result {
	result := Result{Name: c.Name()}

	if !c.enabled {
		result.add(StatusWarn, "journal", "disabled; approved edits are not recorded")
		return result
	}
	if c.db == nil {
		result.add(StatusFail, "database", "not open")
		return result
	}

	version, err := c.db.SchemaVersion(ctx)
	switch {
	case err != nil:
		result.add(StatusFail, "schema", err.Error())
	case version < c.latest:
		result.add(StatusFail, "schema", fmt.Sprintf("version %d, expected %d", version, c.latest))
	default:
		result.add(StatusPass, "schema", fmt.Sprintf("version %d", version))
	}
	return result
}
