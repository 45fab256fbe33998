// asetool is a CLI utility for inspecting and converting 3ds Max ASCII
// scene exports (.ase/.ask).
package main

import (
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"go.uber.org/zap"

	"github.com/Faultbox/midgard-ase/internal/assets"
	"github.com/Faultbox/midgard-ase/internal/config"
	"github.com/Faultbox/midgard-ase/internal/export"
	"github.com/Faultbox/midgard-ase/internal/importer"
	"github.com/Faultbox/midgard-ase/internal/logger"
	"github.com/Faultbox/midgard-ase/internal/report"
	"github.com/Faultbox/midgard-ase/internal/texture"
	"github.com/Faultbox/midgard-ase/pkg/encoding"
	"github.com/Faultbox/midgard-ase/pkg/scene"
)

var errUsage = errors.New("usage")

func main() {
	if err := run(os.Args[1:], os.Stdout, os.Stderr); err != nil {
		if !errors.Is(err, errUsage) && !errors.Is(err, flag.ErrHelp) {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		}
		os.Exit(1)
	}
}

func run(args []string, stdout, stderr io.Writer) error {
	if len(args) < 1 {
		printUsage(stderr)
		return errUsage
	}

	command := args[0]
	args = args[1:]

	switch command {
	case "info":
		return cmdInfo(args, stdout, stderr)
	case "tree":
		return cmdTree(args, stdout, stderr)
	case "convert", "c":
		return cmdConvert(args, stdout, stderr)
	case "textures", "tex":
		return cmdTextures(args, stdout, stderr)
	case "help", "-h", "--help":
		printUsage(stdout)
		return nil
	default:
		fmt.Fprintf(stderr, "Unknown command: %s\n", command)
		printUsage(stderr)
		return errUsage
	}
}

func printUsage(w io.Writer) {
	fmt.Fprintln(w, `asetool - 3ds Max ASE/ASK scene utility

Usage:
  asetool <command> [options]

Commands:
  info <file.ase>                Print a scene report (markdown, org or html)
  tree <file.ase>                Print the node hierarchy
  convert <file.ase> [output]    Convert to glTF binary (.glb) or JSON (.gltf)
  textures <file.ase>            List referenced textures, optionally as WebP

Common options:
  -config <file>     Config file (default ./asetool.yaml)
  -charset <name>    Charset of names (cp949, windows-1252, ...)
  -spatial <kind>    Normal generation index: sorted or kdtree
  -normals           Regenerate normals
  -textures <paths>  Comma-separated texture directories and .grf archives
  -debug             Debug logging
  -log <file>        Also log to file

Examples:
  asetool info -format html model.ase > model.html
  asetool convert -embed model.ase model.glb
  asetool textures -webp -textures ./maps model.ase`)
}

// session is the per-command state shared by all subcommands.
type session struct {
	cfg  *config.Config
	log  *zap.Logger
	file string
}

// setup parses flags, loads configuration and initializes logging.
// It returns the positional arguments, of which there must be at least
// minArgs.
func setup(fs *flag.FlagSet, args []string, stderr io.Writer, target config.Target, minArgs int) (*session, []string, error) {
	var flags config.Flags
	flags.Register(fs)
	fs.SetOutput(stderr)
	if err := fs.Parse(args); err != nil {
		return nil, nil, err
	}
	if fs.NArg() < minArgs {
		fmt.Fprintf(stderr, "Usage: asetool %s [options] <file.ase>\n", fs.Name())
		fs.PrintDefaults()
		return nil, nil, errUsage
	}

	cfg, err := config.Load(&flags, target)
	if err != nil {
		return nil, nil, err
	}
	if err := logger.Init(cfg.Logging.Level, cfg.Logging.LogFile, stderr); err != nil {
		return nil, nil, fmt.Errorf("initializing logger: %w", err)
	}
	return &session{cfg: cfg, log: logger.Named("asetool"), file: fs.Arg(0)}, fs.Args(), nil
}

func (s *session) importScene() (*scene.Scene, error) {
	charset, err := encoding.Lookup(s.cfg.Import.Charset)
	if err != nil {
		return nil, err
	}
	spatial, err := importer.ParseSpatialIndexKind(s.cfg.Import.SpatialIndex)
	if err != nil {
		return nil, err
	}
	sc, err := importer.ReadFile(s.file, importer.Options{
		Logger:       logger.Log,
		SpatialIndex: spatial,
		ForceNormals: s.cfg.ForceNormals(),
		Charset:      charset,
	})
	if err != nil {
		return nil, err
	}
	s.log.Debug("imported",
		zap.String("file", s.file),
		zap.Int("meshes", len(sc.Meshes)),
		zap.Int("materials", len(sc.Materials)))
	return sc, nil
}

// library opens the texture search paths, with the scene's own
// directory ahead of the configured ones. GRF archive names are always
// in the game's Korean code page, whatever the scene charset.
func (s *session) library() (*assets.Library, error) {
	paths := append([]string{filepath.Dir(s.file)}, s.cfg.Textures.SearchPaths...)
	return assets.Open(paths, nil, logger.Named("assets"))
}

func cmdInfo(args []string, stdout, stderr io.Writer) error {
	fs := flag.NewFlagSet("info", flag.ContinueOnError)
	noTextures := fs.Bool("no-textures", false, "Skip the texture inventory")
	s, _, err := setup(fs, args, stderr, config.TargetReport, 1)
	if err != nil {
		return err
	}
	defer logger.Sync()

	format, err := report.ParseFormat(s.cfg.Report.Format)
	if err != nil {
		return err
	}
	sc, err := s.importScene()
	if err != nil {
		return err
	}

	sum := report.Summarize(filepath.Base(s.file), sc)
	if !*noTextures {
		lib, err := s.library()
		if err != nil {
			return err
		}
		defer lib.Close()
		sum.AddTextures(texture.Inventory(sc, lib))
	}
	return report.Render(stdout, sum, format)
}

func cmdTree(args []string, stdout, stderr io.Writer) error {
	fs := flag.NewFlagSet("tree", flag.ContinueOnError)
	s, _, err := setup(fs, args, stderr, config.TargetReport, 1)
	if err != nil {
		return err
	}
	defer logger.Sync()

	sc, err := s.importScene()
	if err != nil {
		return err
	}
	sc.Root.Walk(func(n *scene.Node, depth int) bool {
		fmt.Fprintf(stdout, "%s%s", strings.Repeat("  ", depth), n.Name)
		for _, mi := range n.Meshes {
			m := sc.Meshes[mi]
			fmt.Fprintf(stdout, " [%s: %d faces, %s]", m.Name, len(m.Faces), sc.Materials[m.MaterialIndex].Name())
		}
		fmt.Fprintln(stdout)
		return true
	})
	return nil
}

func cmdConvert(args []string, stdout, stderr io.Writer) error {
	fs := flag.NewFlagSet("convert", flag.ContinueOnError)
	embed := fs.Bool("embed", false, "Embed resolved diffuse textures as PNG")
	zUp := fs.Bool("zup", false, "Keep the Z-up frame instead of converting to Y-up")
	s, rest, err := setup(fs, args, stderr, config.TargetExport, 1)
	if err != nil {
		return err
	}
	defer logger.Sync()

	output := strings.TrimSuffix(s.file, filepath.Ext(s.file)) + "." + s.cfg.Export.Format
	if len(rest) > 1 {
		output = rest[1]
	}

	sc, err := s.importScene()
	if err != nil {
		return err
	}
	lib, err := s.library()
	if err != nil {
		return err
	}
	defer lib.Close()

	err = export.Write(sc, output, export.Options{
		Logger:        logger.Log,
		YUp:           !*zUp,
		EmbedTextures: *embed,
		Textures:      lib,
	})
	if err != nil {
		return err
	}

	fmt.Fprintf(stdout, "Wrote %s (%d meshes, %d materials)\n", output, len(sc.Meshes), len(sc.Materials))
	return nil
}

func cmdTextures(args []string, stdout, stderr io.Writer) error {
	fs := flag.NewFlagSet("textures", flag.ContinueOnError)
	webp := fs.Bool("webp", false, "Convert found textures to WebP")
	outDir := fs.String("out", "", "WebP output directory (default from config)")
	s, _, err := setup(fs, args, stderr, config.TargetReport, 1)
	if err != nil {
		return err
	}
	defer logger.Sync()

	sc, err := s.importScene()
	if err != nil {
		return err
	}
	lib, err := s.library()
	if err != nil {
		return err
	}
	defer lib.Close()

	entries := texture.Inventory(sc, lib)
	if len(entries) == 0 {
		fmt.Fprintln(stdout, "No textures referenced")
		return nil
	}

	dir := s.cfg.Textures.OutputDir
	if *outDir != "" {
		dir = *outDir
	}

	var missing, converted int
	for _, e := range entries {
		if !e.Found() {
			missing++
			fmt.Fprintf(stdout, "MISSING  %s (%v)\n", e.Map, e.Err)
			continue
		}
		fmt.Fprintf(stdout, "%4dx%-4d %s -> %s\n", e.Width, e.Height, e.Map, e.Path)
		if !*webp {
			continue
		}

		img, _, err := texture.LoadFrom(lib, e.Map)
		if err != nil {
			s.log.Warn("texture decode failed", zap.String("path", e.Path), zap.Error(err))
			continue
		}
		dst := filepath.Join(dir, texture.WebPName(e.Map))
		if err := texture.ExportWebP(img, dst); err != nil {
			return err
		}
		converted++
	}

	fmt.Fprintf(stdout, "\n%d textures, %d missing", len(entries), missing)
	if *webp {
		fmt.Fprintf(stdout, ", %d converted to %s", converted, dir)
	}
	fmt.Fprintln(stdout)

	hits, misses := lib.Stats()
	s.log.Debug("archive cache", zap.Int("hits", hits), zap.Int("misses", misses))
	return nil
}
