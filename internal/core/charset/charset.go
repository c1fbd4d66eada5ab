// Package charset converts subtitle bytes to and from UTF-8 text.
package charset

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"strings"
	"unicode/utf8"

	"github.com/dimchansky/utfbom"
	"github.com/saintfish/chardet"
	"golang.org/x/text/encoding"
	"golang.org/x/text/encoding/htmlindex"
	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/encoding/unicode/utf32"
	"golang.org/x/text/transform"
)

// UTF8 is the canonical name of the default encoding.
const UTF8 = "utf-8"

// ErrUnknownEncoding is returned for encoding names that cannot be resolved.
var ErrUnknownEncoding = errors.New("unknown encoding")

// Info describes how input bytes were decoded.
type Info struct {
	Encoding   string // canonical name of the source encoding
	BOM        bool   // a byte order mark was present and stripped
	Detected   bool   // the encoding was guessed by content detection
	Confidence int    // detector confidence, 0-100
	Replaced   bool   // invalid sequences were removed while decoding
}

// Decode converts raw bytes to a UTF-8 string.
//
// A byte order mark always wins. Without one, valid UTF-8 is passed through.
// Otherwise, when detect is set, the encoding is guessed from content; if the
// guess cannot be decoded, or detect is off, invalid sequences are dropped.
func Decode(raw []byte, detect bool) (string, Info, error) {
	rd, bom := utfbom.Skip(bytes.NewReader(raw))
	if bom != utfbom.Unknown {
		enc, name := bomEncoding(bom)
		body, err := io.ReadAll(transform.NewReader(rd, enc.NewDecoder()))
		if err != nil {
			return "", Info{}, fmt.Errorf("decode %s: %w", name, err)
		}
		return string(body), Info{Encoding: name, BOM: true}, nil
	}

	if utf8.Valid(raw) {
		return string(raw), Info{Encoding: UTF8}, nil
	}

	if detect {
		if text, info, ok := detectAndDecode(raw); ok {
			return text, info, nil
		}
	}

	return strings.ToValidUTF8(string(raw), ""), Info{Encoding: UTF8, Replaced: true}, nil
}

func bomEncoding(bom utfbom.Encoding) (encoding.Encoding, string) {
	switch bom {
	case utfbom.UTF16BigEndian:
		return unicode.UTF16(unicode.BigEndian, unicode.IgnoreBOM), "utf-16be"
	case utfbom.UTF16LittleEndian:
		return unicode.UTF16(unicode.LittleEndian, unicode.IgnoreBOM), "utf-16le"
	case utfbom.UTF32BigEndian:
		return utf32.UTF32(utf32.BigEndian, utf32.IgnoreBOM), "utf-32be"
	case utfbom.UTF32LittleEndian:
		return utf32.UTF32(utf32.LittleEndian, utf32.IgnoreBOM), "utf-32le"
	default:
		return unicode.UTF8, UTF8
	}
}

func detectAndDecode(raw []byte) (string, Info, bool) {
	res, err := chardet.NewTextDetector().DetectBest(raw)
	if err != nil {
		return "", Info{}, false
	}

	name := normalizeName(res.Charset)
	if name == UTF8 {
		return "", Info{}, false
	}

	enc, err := htmlindex.Get(name)
	if err != nil {
		return "", Info{}, false
	}

	body, _, err := transform.Bytes(enc.NewDecoder(), raw)
	if err != nil {
		return "", Info{}, false
	}

	return string(body), Info{Encoding: name, Detected: true, Confidence: res.Confidence}, true
}

// detector names that htmlindex does not accept as labels
var detectorAliases = map[string]string{
	"gb-18030": "gb18030",
	"utf8":     UTF8,
}

func normalizeName(name string) string {
	name = strings.ToLower(strings.TrimSpace(name))
	if alias, ok := detectorAliases[name]; ok {
		return alias
	}
	return name
}

// Encode converts text to the named encoding. Characters that cannot be
// represented are skipped and counted in dropped.
func Encode(text, name string) (out []byte, dropped int, err error) {
	name = normalizeName(name)
	if name == "" || name == UTF8 {
		return encodeUTF8(text)
	}

	enc, err := htmlindex.Get(name)
	if err != nil {
		return nil, 0, fmt.Errorf("%w: %q", ErrUnknownEncoding, name)
	}

	if b, err := enc.NewEncoder().Bytes([]byte(text)); err == nil {
		return b, 0, nil
	}

	// slow path: encode one rune at a time, skipping what does not fit
	var buf bytes.Buffer
	encoder := enc.NewEncoder()
	for _, r := range text {
		b, err := encoder.String(string(r))
		if err != nil {
			encoder.Reset()
			dropped++
			continue
		}
		buf.WriteString(b)
	}
	return buf.Bytes(), dropped, nil
}

func encodeUTF8(text string) ([]byte, int, error) {
	if utf8.ValidString(text) {
		return []byte(text), 0, nil
	}

	buf := make([]byte, 0, len(text))
	dropped := 0
	for i := 0; i < len(text); {
		r, size := utf8.DecodeRuneInString(text[i:])
		if r == utf8.RuneError && size == 1 {
			dropped++
		} else {
			buf = append(buf, text[i:i+size]...)
		}
		i += size
	}
	return buf, dropped, nil
}

// Valid reports whether name resolves to a supported encoding.
func Valid(name string) bool {
	name = normalizeName(name)
	if name == "" || name == UTF8 {
		return true
	}
	_, err := htmlindex.Get(name)
	return err == nil
}
