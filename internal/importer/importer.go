// Package importer assembles parsed ASE/ASK files into scenes: it expands
// face corners, generates missing normals, splits meshes per submaterial,
// flattens the material tree, rebuilds the node hierarchy and collects
// keyframe animation.
package importer

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/tiendc/go-deepcopy"
	"go.uber.org/zap"

	"github.com/Faultbox/midgard-ase/internal/logger"
	"github.com/Faultbox/midgard-ase/pkg/encoding"
	"github.com/Faultbox/midgard-ase/pkg/formats"
	"github.com/Faultbox/midgard-ase/pkg/scene"
)

// Options controls an import. The zero value is usable.
type Options struct {
	// Logger receives warnings. Nil uses the global logger.
	Logger *zap.Logger
	// SpatialIndex selects the corner lookup used for normal generation.
	SpatialIndex SpatialIndexKind
	// ForceNormals regenerates normals even when the file provides them.
	ForceNormals bool
	// Charset decodes object and material names. Nil assumes UTF-8.
	Charset *encoding.Decoder
}

// CanRead reports whether path has an .ase or .ask extension.
func CanRead(path string) bool {
	ext := strings.ToLower(filepath.Ext(path))
	return ext == ".ase" || ext == ".ask"
}

// ReadFile imports the ASE or ASK file at path.
func ReadFile(path string, opts Options) (*scene.Scene, error) {
	if !CanRead(path) {
		return nil, &ImportError{Kind: ErrUnsupportedExtension, Path: path}
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, &ImportError{Kind: ErrOpenFailed, Path: path, Err: err}
	}
	isASK := strings.EqualFold(filepath.Ext(path), ".ask")
	s, err := Import(data, isASK, opts)
	var ie *ImportError
	if errors.As(err, &ie) {
		ie.Path = path
	}
	return s, err
}

// Import parses and assembles ASE data held in memory.
func Import(data []byte, isASK bool, opts Options) (*scene.Scene, error) {
	file, err := formats.ParseASE(data, formats.ASEParseOptions{IsASK: isASK, Charset: opts.Charset})
	if err != nil {
		return nil, &ImportError{Kind: ErrParseFailed, Err: err}
	}
	return Build(file, opts)
}

// Build assembles a scene from a parse result. The file is not modified.
// Parse results built in code are validated first, so malformed meshes are
// skipped with a warning instead of being indexed out of range.
func Build(file *formats.ASEFile, opts Options) (*scene.Scene, error) {
	clone := new(formats.ASEFile)
	if err := deepcopy.Copy(clone, file); err != nil {
		return nil, &ImportError{Kind: ErrParseFailed, Err: fmt.Errorf("copying parse result: %w", err)}
	}
	clone.Validate()

	log := opts.Logger
	if log == nil {
		log = logger.Log
	}
	b := &builder{
		file:   clone,
		opts:   opts,
		log:    log.Named("ase"),
		needed: make(map[*formats.ASEMaterial]bool),
	}
	return b.build()
}

// builder holds the state of one import.
type builder struct {
	file    *formats.ASEFile
	opts    Options
	log     *zap.Logger
	needed  map[*formats.ASEMaterial]bool
	pending []*pendingMesh
}

func (b *builder) build() (*scene.Scene, error) {
	for _, w := range b.file.Warnings {
		b.warn(WarnParser, w)
	}
	for _, m := range b.file.Meshes {
		if !m.Skip && m.Name == "" {
			b.warn(WarnEmptyMeshName, "object without a name, skipping",
				zap.Bool("helper", m.IsHelper),
				zap.String("parent", m.Parent))
			m.Skip = true
		}
	}

	b.injectDefaultMaterial()

	for _, m := range b.file.Meshes {
		if m.Skip {
			continue
		}
		m.Transform = m.Transform.Transpose()
		if m.IsHelper {
			continue
		}
		expandCorners(m)
		if len(m.Normals) == 0 || b.opts.ForceNormals {
			generateNormals(m, b.opts.SpatialIndex)
		}
		b.splitMesh(m)
	}

	// Meshes without faces never reach the output.
	kept := b.pending[:0]
	for _, pm := range b.pending {
		if len(pm.mesh.Faces) > 0 {
			kept = append(kept, pm)
		}
	}
	b.pending = kept

	materials := b.flattenMaterials()

	root, err := b.buildHierarchy()
	if err != nil {
		return nil, &ImportError{Kind: err}
	}

	s := &scene.Scene{
		Meshes:    make([]*scene.Mesh, len(b.pending)),
		Materials: materials,
		Root:      root,
	}
	for i, pm := range b.pending {
		s.Meshes[i] = pm.mesh
	}
	if anim := b.buildAnimation(); anim != nil {
		s.Animations = []*scene.Animation{anim}
	}
	b.pending = nil

	b.log.Debug("scene assembled",
		zap.Int("meshes", len(s.Meshes)),
		zap.Int("materials", len(s.Materials)),
		zap.Int("animations", len(s.Animations)),
		zap.Int("vertices", s.NumVertices()),
		zap.Int("faces", s.NumFaces()))
	return s, nil
}
