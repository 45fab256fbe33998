// Package formats provides parsers for 3ds Max ASCII Scene Export files.
// ASE (ASCII Scene Export) text format parser for meshes, materials and
// keyframed node transforms.
package formats

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/Faultbox/midgard-ase/pkg/encoding"
	"github.com/Faultbox/midgard-ase/pkg/math"
)

// ASE format errors.
var (
	ErrInvalidASEHeader = errors.New("invalid ASE header: expected '*3DSMAX_ASCIIEXPORT'")
	ErrMalformedASE     = errors.New("malformed ASE data")
	ErrTruncatedASE     = errors.New("truncated ASE data")
)

// DefaultMaterialIndex marks a mesh without a MATERIAL_REF.
const DefaultMaterialIndex = ^uint32(0)

// MaxUVChannels is the number of mapping channels kept per mesh.
const MaxUVChannels = 4

// ASEShading is the shader named by MATERIAL_SHADING.
type ASEShading int

const (
	ASEShadingGouraud ASEShading = iota
	ASEShadingFlat
	ASEShadingPhong
	ASEShadingBlinn
	ASEShadingMetal
	ASEShadingWire
)

// String returns the shader name as written in ASE files.
func (s ASEShading) String() string {
	switch s {
	case ASEShadingFlat:
		return "Flat"
	case ASEShadingGouraud:
		return "Gouraud"
	case ASEShadingPhong:
		return "Phong"
	case ASEShadingBlinn:
		return "Blinn"
	case ASEShadingMetal:
		return "Metal"
	case ASEShadingWire:
		return "Wire"
	default:
		return fmt.Sprintf("Unknown(%d)", int(s))
	}
}

// parseShading maps a MATERIAL_SHADING value; unknown shaders fall back to Gouraud.
func parseShading(s string) ASEShading {
	switch strings.ToLower(s) {
	case "flat":
		return ASEShadingFlat
	case "phong":
		return ASEShadingPhong
	case "blinn":
		return ASEShadingBlinn
	case "metal":
		return ASEShadingMetal
	case "wire":
		return ASEShadingWire
	default:
		return ASEShadingGouraud
	}
}

// ASETexture is one MAP_* block of a material.
type ASETexture struct {
	MapName  string
	Blend    *float32  // MAP_AMOUNT, nil when absent
	ScaleUV  math.Vec2 // UVW_U/V_TILING
	OffsetUV math.Vec2 // UVW_U/V_OFFSET
	Rotation float32   // UVW_ANGLE, radians
}

// NewASETexture returns an unbound texture slot with unit tiling.
func NewASETexture() ASETexture {
	return ASETexture{ScaleUV: math.Vec2{X: 1, Y: 1}}
}

// HasUVTransform reports whether the slot scales, offsets or rotates UVs.
func (t *ASETexture) HasUVTransform() bool {
	return t.ScaleUV != (math.Vec2{X: 1, Y: 1}) || t.OffsetUV != (math.Vec2{}) || t.Rotation != 0
}

// ASEMaterial is a MATERIAL or SUBMATERIAL block.
type ASEMaterial struct {
	Name              string
	Ambient           [3]float32
	Diffuse           [3]float32
	Specular          [3]float32
	Emissive          [3]float32
	Opacity           float32
	SpecularExponent  float32 // MATERIAL_SHINE scaled to a Phong exponent
	ShininessStrength float32
	Shading           ASEShading
	TwoSided          bool

	TexDiffuse   ASETexture
	TexSpecular  ASETexture
	TexOpacity   ASETexture
	TexEmissive  ASETexture
	TexAmbient   ASETexture
	TexBump      ASETexture
	TexShininess ASETexture

	Submaterials []*ASEMaterial
}

// NewASEMaterial returns a material with the defaults 3ds Max assumes.
func NewASEMaterial(name string) *ASEMaterial {
	m := &ASEMaterial{
		Name:    name,
		Opacity: 1,
		Shading: ASEShadingGouraud,
	}
	for _, t := range m.Textures() {
		*t = NewASETexture()
	}
	return m
}

// Textures returns pointers to every texture slot in a fixed order.
func (m *ASEMaterial) Textures() []*ASETexture {
	return []*ASETexture{
		&m.TexDiffuse, &m.TexSpecular, &m.TexOpacity, &m.TexEmissive,
		&m.TexAmbient, &m.TexBump, &m.TexShininess,
	}
}

// ASEFace is a triangle of a GEOMOBJECT mesh.
type ASEFace struct {
	Indices      [3]uint32
	UVIndices    [MaxUVChannels][3]uint32
	ColorIndices [3]uint32
	Submaterial  uint32 // MESH_MTLID
	SmoothGroup  uint32 // bit n-1 set for smoothing group n
}

// ASEBoneWeight is one (bone, weight) pair of a skinned vertex.
type ASEBoneWeight struct {
	Bone   int
	Weight float32
}

// ASEBone names a bone referenced by MESH_BONE_VERTEX entries.
type ASEBone struct {
	Name string
}

// ASEVectorKey is a position keyframe. Time is in ticks.
type ASEVectorKey struct {
	Time  float64
	Value [3]float32
}

// ASEQuatKey is a rotation keyframe. Time is in ticks.
type ASEQuatKey struct {
	Time  float64
	Value math.Quat
}

// ASEAnimation holds the TM_ANIMATION tracks of a node.
type ASEAnimation struct {
	PositionKeys []ASEVectorKey
	RotationKeys []ASEQuatKey
}

// ASEMesh is a GEOMOBJECT or HELPEROBJECT.
type ASEMesh struct {
	Name   string
	Parent string // empty for top-level nodes

	// Transform holds TM_ROW0..3 as matrix rows, the way the file lists
	// them. Transposing yields the column-vector world transform.
	Transform math.Mat4

	Positions    [][3]float32
	Faces        []ASEFace
	UVs          [MaxUVChannels][][3]float32
	UVComponents [MaxUVChannels]int
	Colors       [][4]float32
	Normals      [][3]float32 // indexed like Positions; empty if not exported

	Bones        []ASEBone
	BoneVertices [][]ASEBoneWeight // indexed like Positions

	MaterialIndex uint32
	IsHelper      bool
	Skip          bool

	Anim ASEAnimation
}

// NewASEMesh returns an empty mesh bound to the default material.
func NewASEMesh() *ASEMesh {
	return &ASEMesh{
		Transform:     math.Identity(),
		MaterialIndex: DefaultMaterialIndex,
	}
}

// ASEFile represents a parsed ASE or ASK file.
type ASEFile struct {
	IsASK         bool
	FirstFrame    uint32
	LastFrame     uint32
	FrameSpeed    uint32 // frames per second
	TicksPerFrame uint32
	Ambient       [3]float32 // SCENE_AMBIENT_STATIC

	Materials []*ASEMaterial
	Meshes    []*ASEMesh

	// Warnings collects non-fatal problems found while parsing.
	Warnings []string
}

// ASEParseOptions controls parsing.
type ASEParseOptions struct {
	IsASK   bool
	Charset *encoding.Decoder // nil decodes names as UTF-8
}

// ParseASE parses ASE data from a byte slice.
func ParseASE(data []byte, opts ASEParseOptions) (*ASEFile, error) {
	p := newASEParser(data, opts)
	if err := p.parse(); err != nil {
		return nil, err
	}
	p.file.Validate()
	return p.file, nil
}

// ParseASEFile parses an ASE file from disk. Files ending in .ask are
// flagged as skeleton files.
func ParseASEFile(path string, charset *encoding.Decoder) (*ASEFile, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading ASE file: %w", err)
	}
	isASK := strings.EqualFold(filepath.Ext(path), ".ask")
	return ParseASE(data, ASEParseOptions{IsASK: isASK, Charset: charset})
}

// GetMeshByName returns the first mesh with the given name, ignoring ASCII case.
func (f *ASEFile) GetMeshByName(name string) *ASEMesh {
	for _, m := range f.Meshes {
		if encoding.EqualFoldASCII(m.Name, name) {
			return m
		}
	}
	return nil
}

// GetChildMeshes returns meshes whose parent matches parentName.
func (f *ASEFile) GetChildMeshes(parentName string) []*ASEMesh {
	var children []*ASEMesh
	for _, m := range f.Meshes {
		if encoding.EqualFoldASCII(m.Parent, parentName) {
			children = append(children, m)
		}
	}
	return children
}

// GetTotalFaceCount returns the number of faces across non-skipped meshes.
func (f *ASEFile) GetTotalFaceCount() int {
	n := 0
	for _, m := range f.Meshes {
		if !m.Skip {
			n += len(m.Faces)
		}
	}
	return n
}

// HasAnimation returns true if any mesh carries more than one key in a track.
func (f *ASEFile) HasAnimation() bool {
	for _, m := range f.Meshes {
		if !m.Skip && (len(m.Anim.PositionKeys) > 1 || len(m.Anim.RotationKeys) > 1) {
			return true
		}
	}
	return false
}
