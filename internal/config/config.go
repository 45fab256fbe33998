// Package config handles asetool configuration loading and management.
package config

import (
	"fmt"
	"slices"

	"go.uber.org/multierr"

	"github.com/Faultbox/midgard-ase/pkg/encoding"
)

// Config holds all tool settings.
type Config struct {
	Import   ImportConfig   `yaml:"import"`
	Textures TexturesConfig `yaml:"textures"`
	Export   ExportConfig   `yaml:"export"`
	Report   ReportConfig   `yaml:"report"`
	Logging  LoggingConfig  `yaml:"logging"`
}

// ImportConfig controls how ASE files are read.
type ImportConfig struct {
	Charset         string `yaml:"charset"`          // Name encoding, empty for UTF-8
	SpatialIndex    string `yaml:"spatial_index"`    // sorted or kdtree
	GenerateNormals string `yaml:"generate_normals"` // auto or always
}

// TexturesConfig holds texture lookup settings.
type TexturesConfig struct {
	SearchPaths []string `yaml:"search_paths"` // Directories searched for bitmaps
	OutputDir   string   `yaml:"output_dir"`   // Where WebP copies are written
}

// ExportConfig holds scene export settings.
type ExportConfig struct {
	Format string `yaml:"format"` // glb or gltf
}

// ReportConfig holds settings for the info command.
type ReportConfig struct {
	Format string `yaml:"format"` // markdown, org or html
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	Level   string `yaml:"level"`
	LogFile string `yaml:"log_file"`
}

var (
	spatialIndexes = []string{"sorted", "kdtree"}
	normalModes    = []string{"auto", "always"}
	exportFormats  = []string{"glb", "gltf"}
	reportFormats  = []string{"markdown", "org", "html"}
	logLevels      = []string{"debug", "info", "warn", "error"}
)

// Default returns a Config with sensible default values.
func Default() *Config {
	return &Config{
		Import: ImportConfig{
			Charset:         "",
			SpatialIndex:    "sorted",
			GenerateNormals: "auto",
		},
		Textures: TexturesConfig{
			SearchPaths: []string{"."},
			OutputDir:   "textures",
		},
		Export: ExportConfig{
			Format: "glb",
		},
		Report: ReportConfig{
			Format: "markdown",
		},
		Logging: LoggingConfig{
			Level:   "warn",
			LogFile: "",
		},
	}
}

// Validate reports every invalid setting at once.
func (c *Config) Validate() error {
	var err error
	check := func(field, value string, allowed []string) {
		if !slices.Contains(allowed, value) {
			err = multierr.Append(err, fmt.Errorf("%s: %q is not one of %v", field, value, allowed))
		}
	}
	check("import.spatial_index", c.Import.SpatialIndex, spatialIndexes)
	check("import.generate_normals", c.Import.GenerateNormals, normalModes)
	check("export.format", c.Export.Format, exportFormats)
	check("report.format", c.Report.Format, reportFormats)
	check("logging.level", c.Logging.Level, logLevels)
	if c.Import.Charset != "" {
		if _, cerr := encoding.Lookup(c.Import.Charset); cerr != nil {
			err = multierr.Append(err, fmt.Errorf("import.charset: %w", cerr))
		}
	}
	return err
}

// ForceNormals reports whether normals are regenerated even when present.
func (c *Config) ForceNormals() bool {
	return c.Import.GenerateNormals == "always"
}
