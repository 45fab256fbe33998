package config

import (
	"flag"
	"strings"
)

// Flags holds command-line overrides. Zero values leave the loaded
// configuration untouched.
type Flags struct {
	Config       string
	Debug        bool
	Charset      string
	SpatialIndex string
	ForceNormals bool
	Format       string
	TexturePaths string
	LogFile      string
}

// Register binds the flags to fs.
func (f *Flags) Register(fs *flag.FlagSet) {
	fs.StringVar(&f.Config, "config", "", "Path to config file")
	fs.BoolVar(&f.Debug, "debug", false, "Enable debug logging")
	fs.StringVar(&f.Charset, "charset", "", "Charset of names in the ASE file (e.g. cp949, windows-1252)")
	fs.StringVar(&f.SpatialIndex, "spatial", "", "Spatial index for normal generation: sorted or kdtree")
	fs.BoolVar(&f.ForceNormals, "normals", false, "Regenerate normals even when the file has them")
	fs.StringVar(&f.Format, "format", "", "Output format (report: markdown, org, html; convert: glb, gltf)")
	fs.StringVar(&f.TexturePaths, "textures", "", "Comma-separated texture search paths")
	fs.StringVar(&f.LogFile, "log", "", "Write logs to this file")
}

// apply applies flag overrides to the config. format names the setting
// the -format flag targets.
func (f *Flags) apply(cfg *Config, format *string) {
	if f.Debug {
		cfg.Logging.Level = "debug"
	}
	if f.Charset != "" {
		cfg.Import.Charset = f.Charset
	}
	if f.SpatialIndex != "" {
		cfg.Import.SpatialIndex = f.SpatialIndex
	}
	if f.ForceNormals {
		cfg.Import.GenerateNormals = "always"
	}
	if f.Format != "" && format != nil {
		*format = f.Format
	}
	if f.TexturePaths != "" {
		cfg.Textures.SearchPaths = strings.Split(f.TexturePaths, ",")
	}
	if f.LogFile != "" {
		cfg.Logging.LogFile = f.LogFile
	}
}
