// Package textenc decodes exported transcript bytes into UTF-8 text.
//
// Chat exports arrive as UTF-8 (with or without a BOM), UTF-16 from some desktop
// clients, or CP949/EUC-KR from older Windows installs. Decoding is permissive:
// byte sequences that cannot be decoded become U+FFFD instead of failing the load.
package textenc

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"unicode/utf8"

	"golang.org/x/text/encoding"
	"golang.org/x/text/encoding/htmlindex"
	"golang.org/x/text/encoding/korean"
	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/transform"
)

// Auto selects the encoding by inspecting the data.
const Auto = "auto"

// Canonical names reported for detected encodings.
const (
	NameUTF8    = "utf-8"
	NameUTF16LE = "utf-16le"
	NameUTF16BE = "utf-16be"
	NameEUCKR   = "euc-kr"
)

// ErrUnknownEncoding is returned when an explicit encoding name is not recognized.
var ErrUnknownEncoding = errors.New("unknown encoding")

var (
	bomUTF8    = []byte{0xEF, 0xBB, 0xBF}
	bomUTF16LE = []byte{0xFF, 0xFE}
	bomUTF16BE = []byte{0xFE, 0xFF}
)

// Decode converts data to text using the named encoding, or detects the encoding
// when name is empty or "auto". It returns the text and the encoding name used.
func Decode(data []byte, name string) (string, string, error) {
	name = strings.ToLower(strings.TrimSpace(name))
	if name == "" || name == Auto {
		text, used := detect(data)
		return text, used, nil
	}

	enc, err := Lookup(name)
	if err != nil {
		return "", "", err
	}

	text, err := decodeWith(data, enc)
	if err != nil {
		return "", "", fmt.Errorf("decoding %s: %w", name, err)
	}

	used := name
	if canonical, err := htmlindex.Name(enc); err == nil {
		used = canonical
	}
	return strings.TrimPrefix(text, "\ufeff"), used, nil
}

// DecodeFile reads and decodes a file. See Decode.
func DecodeFile(path, name string) (string, string, error) {
	data, err := os.ReadFile(path) // #nosec G304 -- user-provided transcript paths are expected
	if err != nil {
		return "", "", fmt.Errorf("reading %s: %w", path, err)
	}
	return Decode(data, name)
}

// aliases maps common labels the WHATWG index does not know.
var aliases = map[string]string{
	"cp949": "windows-949",
	"uhc":   "windows-949",
	"utf8":  "utf-8",
}

// Lookup resolves a WHATWG encoding label such as "euc-kr", "cp949" or "utf-16le".
func Lookup(name string) (encoding.Encoding, error) {
	label := strings.ToLower(strings.TrimSpace(name))
	if alias, ok := aliases[label]; ok {
		label = alias
	}
	enc, err := htmlindex.Get(label)
	if err != nil || enc == nil {
		return nil, fmt.Errorf("%w: %q", ErrUnknownEncoding, name)
	}
	return enc, nil
}

// Valid reports whether name is "auto", empty, or a known encoding label.
func Valid(name string) bool {
	name = strings.ToLower(strings.TrimSpace(name))
	if name == "" || name == Auto {
		return true
	}
	_, err := Lookup(name)
	return err == nil
}

func detect(data []byte) (string, string) {
	switch {
	case bytes.HasPrefix(data, bomUTF8):
		return strings.ToValidUTF8(string(data[len(bomUTF8):]), "\uFFFD"), NameUTF8
	case bytes.HasPrefix(data, bomUTF16LE):
		return decodeUTF16(data, unicode.LittleEndian), NameUTF16LE
	case bytes.HasPrefix(data, bomUTF16BE):
		return decodeUTF16(data, unicode.BigEndian), NameUTF16BE
	}

	if utf8.Valid(data) {
		return string(data), NameUTF8
	}

	// Mostly-UTF-8 data with a few bad bytes stays UTF-8; legacy Korean exports
	// decode with far fewer replacements as CP949.
	asUTF8 := strings.ToValidUTF8(string(data), "\uFFFD")
	asKorean, err := decodeWith(data, korean.EUCKR)
	if err != nil {
		return asUTF8, NameUTF8
	}
	if strings.Count(asKorean, "\uFFFD") < strings.Count(asUTF8, "\uFFFD") {
		return asKorean, NameEUCKR
	}
	return asUTF8, NameUTF8
}

func decodeUTF16(data []byte, order unicode.Endianness) string {
	text, err := decodeWith(data, unicode.UTF16(order, unicode.ExpectBOM))
	if err != nil {
		return strings.ToValidUTF8(string(data), "\uFFFD")
	}
	return text
}

func decodeWith(data []byte, enc encoding.Encoding) (string, error) {
	reader := transform.NewReader(bytes.NewReader(data), enc.NewDecoder())
	out, err := io.ReadAll(reader)
	if err != nil {
		return "", err
	}
	return string(out), nil
}
