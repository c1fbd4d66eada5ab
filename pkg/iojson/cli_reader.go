package iojson

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/urfave/cli/v3"
	"golang.org/x/term"
)

// FileReader decodes an optional JSON document named by a flag, or piped on
// stdin when the flag is "-".
type FileReader[T any] struct {
	Name  string
	Usage string

	value string
	stdin io.Reader
}

// Flag returns the flag that selects the input file.
func (fr *FileReader[T]) Flag() *cli.StringFlag {
	return &cli.StringFlag{
		Name:        fr.Name,
		Usage:       fr.Usage,
		Destination: &fr.value,
	}
}

// Set assigns the flag value directly.
func (fr *FileReader[T]) Set(v string) { fr.value = v }

// Read decodes the input. ok is false when the flag was not given.
func (fr *FileReader[T]) Read() (out T, ok bool, err error) {
	if fr.value == "" {
		return out, false, nil
	}

	var reader io.Reader
	if fr.value == "-" {
		reader = fr.stdin
		if reader == nil {
			if term.IsTerminal(int(os.Stdin.Fd())) {
				return out, false, fmt.Errorf("--%s -: stdin is a terminal; pipe JSON input", fr.Name)
			}
			reader = os.Stdin
		}
	} else {
		f, err := os.Open(fr.value)
		if err != nil {
			return out, false, fmt.Errorf("open file: %w", err)
		}
		defer func() { _ = f.Close() }()
		reader = f
	}

	if err := json.NewDecoder(reader).Decode(&out); err != nil {
		return out, false, fmt.Errorf("decode JSON: %w", err)
	}
	return out, true, nil
}
