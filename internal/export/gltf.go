// Package export writes imported scenes as glTF 2.0 documents.
package export

import (
	"bytes"
	"errors"
	"fmt"
	"image/png"
	stdmath "math"
	"path/filepath"
	"strings"

	"github.com/qmuntal/gltf"
	"github.com/qmuntal/gltf/modeler"
	"go.uber.org/zap"

	"github.com/Faultbox/midgard-ase/internal/logger"
	"github.com/Faultbox/midgard-ase/internal/texture"
	"github.com/Faultbox/midgard-ase/pkg/math"
	"github.com/Faultbox/midgard-ase/pkg/scene"
)

// ErrNoScene is returned when there is nothing to export.
var ErrNoScene = errors.New("export: scene has no root")

// Generator is written into the glTF asset header.
const Generator = "midgard-ase"

// zUpToYUp rotates the 3ds Max Z-up frame into the glTF Y-up frame.
var zUpToYUp = math.Mat4{
	1, 0, 0, 0,
	0, 0, -1, 0,
	0, 1, 0, 0,
	0, 0, 0, 1,
}

// Options control document construction.
type Options struct {
	Logger *zap.Logger

	// YUp wraps the scene in a node converting Z-up to Y-up.
	YUp bool

	// EmbedTextures stores diffuse bitmaps found through Textures in the
	// binary buffer as PNG. Other maps are referenced by base name.
	EmbedTextures bool
	Textures      texture.Locator
}

type builder struct {
	doc  *gltf.Document
	opts Options
	log  *zap.Logger

	textures map[string]*uint32 // lower-case base name to texture index; nil when unusable
}

// BuildDocument converts s to a glTF document.
func BuildDocument(s *scene.Scene, opts Options) (*gltf.Document, error) {
	if s == nil || s.Root == nil {
		return nil, ErrNoScene
	}
	log := opts.Logger
	if log == nil {
		log = logger.Log
	}
	b := &builder{
		doc:      gltf.NewDocument(),
		opts:     opts,
		log:      log.Named("gltf"),
		textures: make(map[string]*uint32),
	}
	b.doc.Asset.Generator = Generator

	for _, mat := range s.Materials {
		b.doc.Materials = append(b.doc.Materials, b.material(mat))
	}
	meshes := make([]uint32, len(s.Meshes))
	for i, m := range s.Meshes {
		meshes[i] = b.mesh(m)
	}

	root := b.node(s.Root, meshes)
	if opts.YUp {
		wrapper := &gltf.Node{Name: "YUp", Matrix: zUpToYUp, Children: []uint32{root}}
		b.doc.Nodes = append(b.doc.Nodes, wrapper)
		root = uint32(len(b.doc.Nodes) - 1)
	}
	b.doc.Scenes[0].Nodes = append(b.doc.Scenes[0].Nodes, root)

	if len(b.doc.Textures) > 0 {
		b.doc.Samplers = []*gltf.Sampler{{}}
	}
	if len(b.doc.Buffers) > 0 {
		b.doc.Buffers[0].ByteLength = uint32(len(b.doc.Buffers[0].Data))
	}
	return b.doc, nil
}

// Write builds the document for s and saves it. A ".gltf" extension
// produces JSON with an embedded buffer, anything else a binary GLB.
func Write(s *scene.Scene, path string, opts Options) error {
	doc, err := BuildDocument(s, opts)
	if err != nil {
		return err
	}
	if strings.EqualFold(filepath.Ext(path), ".gltf") {
		for _, buf := range doc.Buffers {
			if buf.URI == "" {
				buf.EmbeddedResource()
			}
		}
		err = gltf.Save(doc, path)
	} else {
		err = gltf.SaveBinary(doc, path)
	}
	if err != nil {
		return fmt.Errorf("export: save %s: %w", path, err)
	}
	return nil
}

func (b *builder) node(n *scene.Node, meshes []uint32) uint32 {
	gn := &gltf.Node{Name: n.Name}
	if !n.Transform.IsIdentity(1e-6) {
		gn.Matrix = n.Transform
	}
	b.doc.Nodes = append(b.doc.Nodes, gn)
	idx := uint32(len(b.doc.Nodes) - 1)

	// glTF nodes hold at most one mesh; extra meshes get mesh-only children.
	for i, mi := range n.Meshes {
		if i == 0 {
			gn.Mesh = gltf.Index(meshes[mi])
			continue
		}
		b.doc.Nodes = append(b.doc.Nodes, &gltf.Node{
			Name: fmt.Sprintf("%s#%d", n.Name, i),
			Mesh: gltf.Index(meshes[mi]),
		})
		gn.Children = append(gn.Children, uint32(len(b.doc.Nodes)-1))
	}
	for _, c := range n.Children {
		gn.Children = append(gn.Children, b.node(c, meshes))
	}
	return idx
}

func (b *builder) mesh(m *scene.Mesh) uint32 {
	attrs := map[string]uint32{
		gltf.POSITION: modeler.WritePosition(b.doc, m.Positions),
	}
	if len(m.Normals) == len(m.Positions) {
		attrs[gltf.NORMAL] = modeler.WriteNormal(b.doc, m.Normals)
	}
	for c := 0; c < m.NumUVChannels(); c++ {
		uv := make([][2]float32, len(m.UVs[c]))
		for i, v := range m.UVs[c] {
			// glTF puts the texture origin in the top-left corner.
			uv[i] = [2]float32{v[0], 1 - v[1]}
		}
		attrs[fmt.Sprintf("TEXCOORD_%d", c)] = modeler.WriteTextureCoord(b.doc, uv)
	}
	if len(m.Colors) == len(m.Positions) {
		attrs[gltf.COLOR_0] = modeler.WriteColor(b.doc, m.Colors)
	}

	// Faces are stored clockwise; glTF front faces are counter-clockwise.
	indices := make([]uint32, 0, 3*len(m.Faces))
	for _, f := range m.Faces {
		indices = append(indices, f.Indices[2], f.Indices[1], f.Indices[0])
	}

	prim := &gltf.Primitive{
		Attributes: attrs,
		Indices:    gltf.Index(modeler.WriteIndices(b.doc, indices)),
		Material:   gltf.Index(uint32(m.MaterialIndex)),
	}
	b.doc.Meshes = append(b.doc.Meshes, &gltf.Mesh{Name: m.Name, Primitives: []*gltf.Primitive{prim}})
	return uint32(len(b.doc.Meshes) - 1)
}

func (b *builder) material(mat *scene.Material) *gltf.Material {
	base := [4]float32{1, 1, 1, 1}
	if c, ok := mat.Color(scene.KeyColorDiffuse); ok {
		copy(base[:3], c[:])
	}
	if o, ok := mat.Float(scene.KeyOpacity, scene.TextureNone, 0); ok {
		base[3] = clamp01(o)
	}

	var metallic float32
	if mat.Shading() == scene.ShadingCookTorrance {
		metallic = 1
	}
	roughness := float32(1)
	if exp, ok := mat.Float(scene.KeyShininess, scene.TextureNone, 0); ok && exp > 0 {
		roughness = Roughness(exp)
	}

	out := &gltf.Material{
		Name: mat.Name(),
		PBRMetallicRoughness: &gltf.PBRMetallicRoughness{
			BaseColorFactor: &base,
			MetallicFactor:  gltf.Float(metallic),
			RoughnessFactor: gltf.Float(roughness),
		},
		AlphaMode: gltf.AlphaOpaque,
	}
	if base[3] < 1 {
		out.AlphaMode = gltf.AlphaBlend
	}
	if e, ok := mat.Color(scene.KeyColorEmissive); ok {
		out.EmissiveFactor = [3]float32{clamp01(e[0]), clamp01(e[1]), clamp01(e[2])}
	}
	if v, ok := mat.Int(scene.KeyTwoSided, scene.TextureNone, 0); ok && v != 0 {
		out.DoubleSided = true
	}

	if name, ok := mat.Texture(scene.TextureDiffuse, 0); ok {
		if tex := b.texture(name); tex != nil {
			info := &gltf.TextureInfo{Index: *tex}
			if ch, ok := mat.Int(scene.KeyUVWSource, scene.TextureDiffuse, 0); ok {
				info.TexCoord = uint32(ch)
			}
			out.PBRMetallicRoughness.BaseColorTexture = info
		}
	}
	return out
}

func (b *builder) texture(mapName string) *uint32 {
	key := strings.ToLower(texture.BaseName(mapName))
	if idx, ok := b.textures[key]; ok {
		return idx
	}

	img, err := b.image(mapName)
	if err != nil {
		b.log.Warn("texture not embedded", zap.String("map", mapName), zap.Error(err))
		b.textures[key] = nil
		return nil
	}
	b.doc.Textures = append(b.doc.Textures, &gltf.Texture{Sampler: gltf.Index(0), Source: gltf.Index(img)})
	idx := gltf.Index(uint32(len(b.doc.Textures) - 1))
	b.textures[key] = idx
	return idx
}

// image adds the gltf image for a map, embedded or by reference.
func (b *builder) image(mapName string) (uint32, error) {
	if !b.opts.EmbedTextures || b.opts.Textures == nil {
		b.doc.Images = append(b.doc.Images, &gltf.Image{
			Name: texture.BaseName(mapName),
			URI:  texture.BaseName(mapName),
		})
		return uint32(len(b.doc.Images) - 1), nil
	}

	img, location, err := texture.LoadFrom(b.opts.Textures, mapName)
	if err != nil {
		return 0, err
	}
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		return 0, fmt.Errorf("export: encode %s: %w", location, err)
	}
	return modeler.WriteImage(b.doc, texture.BaseName(mapName), "image/png", &buf)
}

// Roughness maps a Phong specular exponent to a GGX roughness.
func Roughness(exponent float32) float32 {
	return clamp01(float32(stdmath.Sqrt(2 / (float64(exponent) + 2))))
}

func clamp01(v float32) float32 {
	return min(max(v, 0), 1)
}
