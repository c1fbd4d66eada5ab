// Package validate provides shared validation functions.
package validate

import (
	"fmt"
	"strings"

	"github.com/hay-kot/criterio"

	"github.com/hay-kot/subassist/internal/core/charset"
)

// NotEmpty fails for blank strings.
func NotEmpty(s string) error {
	if strings.TrimSpace(s) == "" {
		return fmt.Errorf("is required")
	}
	return nil
}

// Encoding validates an output encoding name.
func Encoding(name string) error {
	if err := NotEmpty(name); err != nil {
		return err
	}
	if !charset.Valid(name) {
		return fmt.Errorf("unknown encoding %q", name)
	}
	return nil
}

// EncodingField returns a criterio validator for encoding names.
func EncodingField(field, name string) error {
	return criterio.Run(field, name, Encoding)
}
