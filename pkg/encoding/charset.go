// Package encoding provides text encoding utilities for ASE scene files.
//
// 3ds Max writes object, material and bitmap names in the exporting
// machine's code page, so names are decoded to UTF-8 before they reach
// the scene graph.
package encoding

import (
	"errors"
	"fmt"
	"strings"
	"unicode/utf8"

	"golang.org/x/text/encoding"
	"golang.org/x/text/encoding/charmap"
	"golang.org/x/text/encoding/japanese"
	"golang.org/x/text/encoding/korean"
	"golang.org/x/text/encoding/simplifiedchinese"
	"golang.org/x/text/transform"
)

// ErrUnknownCharset is returned for charset names Lookup does not recognise.
var ErrUnknownCharset = errors.New("unknown charset")

// Decoder converts raw name bytes into UTF-8.
type Decoder struct {
	name string
	enc  encoding.Encoding // nil means pass-through UTF-8
}

var charsets = map[string]encoding.Encoding{
	"windows-1252": charmap.Windows1252,
	"cp1252":       charmap.Windows1252,
	"latin1":       charmap.ISO8859_1,
	"iso-8859-1":   charmap.ISO8859_1,
	"windows-1251": charmap.Windows1251,
	"cp1251":       charmap.Windows1251,
	"windows-1250": charmap.Windows1250,
	"euc-kr":       korean.EUCKR,
	"cp949":        korean.EUCKR,
	"shift_jis":    japanese.ShiftJIS,
	"sjis":         japanese.ShiftJIS,
	"gbk":          simplifiedchinese.GBK,
}

// Lookup returns the decoder for a charset name. The empty name and
// "utf-8" select pass-through decoding.
func Lookup(name string) (*Decoder, error) {
	key := strings.ToLower(strings.TrimSpace(name))
	if key == "" || key == "utf-8" || key == "utf8" {
		return &Decoder{name: "utf-8"}, nil
	}
	enc, ok := charsets[key]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownCharset, name)
	}
	return &Decoder{name: key, enc: enc}, nil
}

// Name returns the canonical charset name.
func (d *Decoder) Name() string {
	return d.name
}

// String decodes raw bytes to UTF-8.
// Valid UTF-8 input is returned as-is regardless of charset, and input
// that fails to decode is returned unchanged.
func (d *Decoder) String(data []byte) string {
	if d == nil || d.enc == nil || utf8.Valid(data) {
		return string(data)
	}
	result, _, err := transform.Bytes(d.enc.NewDecoder(), data)
	if err != nil {
		return string(data)
	}
	return string(result)
}

// EqualFoldASCII compares two names ignoring ASCII case only.
func EqualFoldASCII(a, b string) bool {
	if len(a) != len(b) {
		return false
	}
	for i := 0; i < len(a); i++ {
		ca, cb := a[i], b[i]
		if 'A' <= ca && ca <= 'Z' {
			ca += 'a' - 'A'
		}
		if 'A' <= cb && cb <= 'Z' {
			cb += 'a' - 'A'
		}
		if ca != cb {
			return false
		}
	}
	return true
}

// NormalizeMapPath normalizes a bitmap path for case-insensitive lookup.
// Max stores absolute Windows paths, so backslashes become slashes.
func NormalizeMapPath(path string) string {
	path = strings.ReplaceAll(path, "\\", "/")
	return strings.ToLower(path)
}
