package encoding

import (
	"errors"
	"testing"
)

func TestLookup(t *testing.T) {
	tests := []struct {
		name    string
		want    string
		wantErr bool
	}{
		{"", "utf-8", false},
		{"UTF-8", "utf-8", false},
		{"Windows-1252", "windows-1252", false},
		{"euc-kr", "euc-kr", false},
		{"klingon", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d, err := Lookup(tt.name)
			if tt.wantErr {
				if !errors.Is(err, ErrUnknownCharset) {
					t.Fatalf("Lookup(%q) error = %v, want ErrUnknownCharset", tt.name, err)
				}
				return
			}
			if err != nil {
				t.Fatalf("Lookup(%q) unexpected error: %v", tt.name, err)
			}
			if d.Name() != tt.want {
				t.Errorf("Name() = %q, want %q", d.Name(), tt.want)
			}
		})
	}
}

func TestDecoderString(t *testing.T) {
	d, err := Lookup("windows-1252")
	if err != nil {
		t.Fatal(err)
	}

	// 0xE9 is e-acute in cp1252 and invalid as a lone UTF-8 byte.
	if got := d.String([]byte{'c', 'a', 'f', 0xE9}); got != "café" {
		t.Errorf("String = %q, want %q", got, "café")
	}
	if got := d.String([]byte("plain")); got != "plain" {
		t.Errorf("String = %q, want %q", got, "plain")
	}

	var nilDecoder *Decoder
	if got := nilDecoder.String([]byte("x")); got != "x" {
		t.Errorf("nil decoder should pass through, got %q", got)
	}
}

func TestEqualFoldASCII(t *testing.T) {
	tests := []struct {
		a, b string
		want bool
	}{
		{"Box01", "box01", true},
		{"A", "a", true},
		{"A", "B", false},
		{"abc", "abcd", false},
		{"É", "é", false},
	}

	for _, tt := range tests {
		if got := EqualFoldASCII(tt.a, tt.b); got != tt.want {
			t.Errorf("EqualFoldASCII(%q, %q) = %v, want %v", tt.a, tt.b, got, tt.want)
		}
	}
}

func TestNormalizeMapPath(t *testing.T) {
	got := NormalizeMapPath(`C:\Maps\Wood.TGA`)
	if got != "c:/maps/wood.tga" {
		t.Errorf("NormalizeMapPath = %q", got)
	}
}
