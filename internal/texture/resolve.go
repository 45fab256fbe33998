package texture

import (
	"errors"
	"fmt"
	"image"
	"io"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/Faultbox/midgard-ase/pkg/encoding"
)

// ErrNotFound is returned when a referenced bitmap is in none of the search paths.
var ErrNotFound = errors.New("texture not found")

// BaseName strips the directory part of a map name. Exporters write
// absolute Windows paths, so both separators are honored.
func BaseName(mapName string) string {
	return path.Base(strings.ReplaceAll(mapName, "\\", "/"))
}

// Resolve finds the file a material map name refers to. The name is tried
// as given, then relative to each search path, then by base name with
// ASCII case ignored, since files exported on Windows rarely keep their
// original case.
func Resolve(mapName string, searchPaths []string) (string, error) {
	if mapName == "" {
		return "", fmt.Errorf("%w: empty map name", ErrNotFound)
	}
	slashed := strings.ReplaceAll(mapName, "\\", "/")
	if isFile(slashed) {
		return slashed, nil
	}

	base := BaseName(mapName)
	for _, dir := range searchPaths {
		if !filepath.IsAbs(slashed) && !strings.Contains(slashed, ":") {
			if p := filepath.Join(dir, filepath.FromSlash(slashed)); isFile(p) {
				return p, nil
			}
		}
		if p := filepath.Join(dir, base); isFile(p) {
			return p, nil
		}
		entries, err := os.ReadDir(dir)
		if err != nil {
			continue
		}
		for _, e := range entries {
			if !e.IsDir() && encoding.EqualFoldASCII(e.Name(), base) {
				return filepath.Join(dir, e.Name()), nil
			}
		}
	}
	return "", fmt.Errorf("%w: %s", ErrNotFound, mapName)
}

// Locator finds and opens the bitmap a material map name refers to.
type Locator interface {
	// Locate returns a location string for mapName, or an error
	// wrapping ErrNotFound.
	Locate(mapName string) (string, error)
	// Open returns the contents at a location returned by Locate.
	Open(location string) (io.ReadCloser, error)
}

// Dirs is a Locator over plain directories.
type Dirs []string

// Locate resolves mapName against the directories.
func (d Dirs) Locate(mapName string) (string, error) {
	return Resolve(mapName, d)
}

// Open opens a file returned by Locate.
func (d Dirs) Open(location string) (io.ReadCloser, error) {
	return os.Open(location)
}

// LoadFrom locates and decodes a map through loc.
func LoadFrom(loc Locator, mapName string) (*image.NRGBA, string, error) {
	location, err := loc.Locate(mapName)
	if err != nil {
		return nil, "", err
	}
	rc, err := loc.Open(location)
	if err != nil {
		return nil, location, fmt.Errorf("texture: open %s: %w", location, err)
	}
	defer rc.Close()
	img, err := Decode(rc, location)
	return img, location, err
}

func isFile(p string) bool {
	info, err := os.Stat(p)
	return err == nil && info.Mode().IsRegular()
}
