package scene

import "fmt"

// Material property keys.
const (
	KeyName              = "?mat.name"
	KeyColorAmbient      = "$clr.ambient"
	KeyColorDiffuse      = "$clr.diffuse"
	KeyColorSpecular     = "$clr.specular"
	KeyColorEmissive     = "$clr.emissive"
	KeyShininess         = "$mat.shininess"
	KeyShininessStrength = "$mat.shinpercent"
	KeyOpacity           = "$mat.opacity"
	KeyShadingModel      = "$mat.shadingm"
	KeyEnableWireframe   = "$mat.wireframe"
	KeyTexture           = "$tex.file"
	KeyTextureBlend      = "$tex.blend"
	KeyUVWSource         = "$tex.uvwsrc"
	KeyTwoSided          = "$mat.twosided"
)

// TextureType is the semantic of a texture slot.
type TextureType int

const (
	TextureNone TextureType = iota
	TextureDiffuse
	TextureSpecular
	TextureAmbient
	TextureEmissive
	TextureHeight
	TextureShininess
	TextureOpacity
)

// TextureTypes lists every real texture semantic in slot order.
var TextureTypes = []TextureType{
	TextureDiffuse, TextureSpecular, TextureAmbient, TextureEmissive,
	TextureHeight, TextureShininess, TextureOpacity,
}

// String returns a human-readable texture semantic.
func (t TextureType) String() string {
	switch t {
	case TextureNone:
		return "None"
	case TextureDiffuse:
		return "Diffuse"
	case TextureSpecular:
		return "Specular"
	case TextureAmbient:
		return "Ambient"
	case TextureEmissive:
		return "Emissive"
	case TextureHeight:
		return "Height"
	case TextureShininess:
		return "Shininess"
	case TextureOpacity:
		return "Opacity"
	default:
		return fmt.Sprintf("Unknown(%d)", int(t))
	}
}

// ShadingMode is the lighting model a material asks for.
type ShadingMode int

const (
	ShadingFlat ShadingMode = iota + 1
	ShadingGouraud
	ShadingPhong
	ShadingBlinn
	ShadingCookTorrance
)

// String returns a human-readable shading mode.
func (s ShadingMode) String() string {
	switch s {
	case ShadingFlat:
		return "Flat"
	case ShadingGouraud:
		return "Gouraud"
	case ShadingPhong:
		return "Phong"
	case ShadingBlinn:
		return "Blinn"
	case ShadingCookTorrance:
		return "CookTorrance"
	default:
		return fmt.Sprintf("Unknown(%d)", int(s))
	}
}

// PropertyType tags the value stored in a Property.
type PropertyType int

const (
	PropertyString PropertyType = iota
	PropertyFloat
	PropertyInt
	PropertyColor
)

// Property is a single material entry. Semantic and Index are only
// meaningful for texture keys.
type Property struct {
	Key      string
	Semantic TextureType
	Index    int
	Type     PropertyType

	Str   string
	Float float32
	Int   int
	Color [3]float32
}

// Material is an ordered, keyed property list.
// Adding a property with an existing (key, semantic, index) replaces it.
type Material struct {
	props []Property
}

// NewMaterial returns a material carrying only a name.
func NewMaterial(name string) *Material {
	m := &Material{}
	m.AddString(KeyName, name, TextureNone, 0)
	return m
}

func (m *Material) set(p Property) {
	for i := range m.props {
		q := &m.props[i]
		if q.Key == p.Key && q.Semantic == p.Semantic && q.Index == p.Index {
			*q = p
			return
		}
	}
	m.props = append(m.props, p)
}

func (m *Material) get(key string, semantic TextureType, index int) (*Property, bool) {
	for i := range m.props {
		p := &m.props[i]
		if p.Key == key && p.Semantic == semantic && p.Index == index {
			return p, true
		}
	}
	return nil, false
}

// AddString stores a string property.
func (m *Material) AddString(key, value string, semantic TextureType, index int) {
	m.set(Property{Key: key, Semantic: semantic, Index: index, Type: PropertyString, Str: value})
}

// AddFloat stores a float property.
func (m *Material) AddFloat(key string, value float32, semantic TextureType, index int) {
	m.set(Property{Key: key, Semantic: semantic, Index: index, Type: PropertyFloat, Float: value})
}

// AddInt stores an integer property.
func (m *Material) AddInt(key string, value int, semantic TextureType, index int) {
	m.set(Property{Key: key, Semantic: semantic, Index: index, Type: PropertyInt, Int: value})
}

// AddColor stores an RGB color property.
func (m *Material) AddColor(key string, value [3]float32) {
	m.set(Property{Key: key, Type: PropertyColor, Color: value})
}

// String returns a string property.
func (m *Material) String(key string, semantic TextureType, index int) (string, bool) {
	p, ok := m.get(key, semantic, index)
	if !ok || p.Type != PropertyString {
		return "", false
	}
	return p.Str, true
}

// Float returns a float property; integer properties are converted.
func (m *Material) Float(key string, semantic TextureType, index int) (float32, bool) {
	p, ok := m.get(key, semantic, index)
	if !ok {
		return 0, false
	}
	switch p.Type {
	case PropertyFloat:
		return p.Float, true
	case PropertyInt:
		return float32(p.Int), true
	}
	return 0, false
}

// Int returns an integer property.
func (m *Material) Int(key string, semantic TextureType, index int) (int, bool) {
	p, ok := m.get(key, semantic, index)
	if !ok || p.Type != PropertyInt {
		return 0, false
	}
	return p.Int, true
}

// Color returns a color property.
func (m *Material) Color(key string) ([3]float32, bool) {
	p, ok := m.get(key, TextureNone, 0)
	if !ok || p.Type != PropertyColor {
		return [3]float32{}, false
	}
	return p.Color, true
}

// Name returns the material name.
func (m *Material) Name() string {
	s, _ := m.String(KeyName, TextureNone, 0)
	return s
}

// Shading returns the shading mode, defaulting to Gouraud.
func (m *Material) Shading() ShadingMode {
	if v, ok := m.Int(KeyShadingModel, TextureNone, 0); ok {
		return ShadingMode(v)
	}
	return ShadingGouraud
}

// Texture returns the file of texture slot (semantic, index).
func (m *Material) Texture(semantic TextureType, index int) (string, bool) {
	return m.String(KeyTexture, semantic, index)
}

// TextureCount returns the number of consecutive textures bound for a semantic.
func (m *Material) TextureCount(semantic TextureType) int {
	n := 0
	for {
		if _, ok := m.Texture(semantic, n); !ok {
			return n
		}
		n++
	}
}

// Properties returns a copy of the property list in insertion order.
func (m *Material) Properties() []Property {
	out := make([]Property, len(m.props))
	copy(out, m.props)
	return out
}
