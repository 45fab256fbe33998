package texture

import (
	"fmt"
	"image"
	"os"
	"path/filepath"
	"strings"

	"github.com/HugoSmits86/nativewebp"
	"go.uber.org/multierr"
)

// ExportWebP writes img as a lossless WebP file, creating parent directories.
func ExportWebP(img image.Image, path string) (err error) {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("texture: create dir: %w", err)
	}
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("texture: create %s: %w", path, err)
	}
	defer func() { err = multierr.Append(err, f.Close()) }()

	if err := nativewebp.Encode(f, img, nil); err != nil {
		return fmt.Errorf("texture: WebP encode %s: %w", path, err)
	}
	return nil
}

// WebPName returns the file name a map is exported under.
func WebPName(mapName string) string {
	base := BaseName(mapName)
	return strings.TrimSuffix(base, filepath.Ext(base)) + ".webp"
}
