// Package report renders human-readable summaries of imported scenes.
package report

import (
	"strings"

	"github.com/Faultbox/midgard-ase/internal/texture"
	"github.com/Faultbox/midgard-ase/pkg/scene"
)

// Summary is the format-independent content of a report.
type Summary struct {
	Title     string
	Vertices  int
	Faces     int
	Meshes    []MeshInfo
	Materials []MaterialInfo
	Tree      []TreeLine
	Animation *AnimationInfo
	Textures  []TextureInfo
}

// MeshInfo describes one output mesh.
type MeshInfo struct {
	Name       string
	Vertices   int
	Faces      int
	UVChannels int
	HasColors  bool
	Bones      int
	Material   string
}

// MaterialInfo describes one output material.
type MaterialInfo struct {
	Name     string
	Shading  string
	Textures []string // "Semantic: map" pairs
}

// TreeLine is one node of the hierarchy, flattened in pre-order.
type TreeLine struct {
	Depth  int
	Name   string
	Meshes int
}

// AnimationInfo summarizes the animation track set.
type AnimationInfo struct {
	Channels       int
	Duration       float64
	TicksPerSecond float64
}

// Seconds returns the clip length in seconds, zero when the rate is unknown.
func (a *AnimationInfo) Seconds() float64 {
	if a.TicksPerSecond == 0 {
		return 0
	}
	return a.Duration / a.TicksPerSecond
}

// TextureInfo is the resolution state of a referenced bitmap.
type TextureInfo struct {
	Map       string
	Path      string
	Width     int
	Height    int
	Materials string
	Error     string
}

// Summarize collects the report content of s.
func Summarize(title string, s *scene.Scene) *Summary {
	sum := &Summary{
		Title:    title,
		Vertices: s.NumVertices(),
		Faces:    s.NumFaces(),
	}

	for _, m := range s.Meshes {
		info := MeshInfo{
			Name:       m.Name,
			Vertices:   len(m.Positions),
			Faces:      len(m.Faces),
			UVChannels: m.NumUVChannels(),
			HasColors:  len(m.Colors) > 0,
			Bones:      len(m.Bones),
		}
		if m.MaterialIndex >= 0 && m.MaterialIndex < len(s.Materials) {
			info.Material = s.Materials[m.MaterialIndex].Name()
		}
		sum.Meshes = append(sum.Meshes, info)
	}

	for _, mat := range s.Materials {
		info := MaterialInfo{Name: mat.Name(), Shading: mat.Shading().String()}
		for _, sem := range scene.TextureTypes {
			for i := 0; i < mat.TextureCount(sem); i++ {
				name, _ := mat.Texture(sem, i)
				info.Textures = append(info.Textures, sem.String()+": "+name)
			}
		}
		sum.Materials = append(sum.Materials, info)
	}

	if s.Root != nil {
		s.Root.Walk(func(n *scene.Node, depth int) bool {
			sum.Tree = append(sum.Tree, TreeLine{Depth: depth, Name: n.Name, Meshes: len(n.Meshes)})
			return true
		})
	}

	if len(s.Animations) > 0 {
		a := s.Animations[0]
		sum.Animation = &AnimationInfo{
			Channels:       len(a.Channels),
			Duration:       a.Duration,
			TicksPerSecond: a.TicksPerSecond,
		}
	}
	return sum
}

// AddTextures records the result of a texture inventory.
func (s *Summary) AddTextures(entries []*texture.Entry) {
	for _, e := range entries {
		info := TextureInfo{
			Map:       e.Map,
			Path:      e.Path,
			Width:     e.Width,
			Height:    e.Height,
			Materials: strings.Join(e.Materials, ", "),
		}
		if e.Err != nil {
			info.Error = e.Err.Error()
		}
		s.Textures = append(s.Textures, info)
	}
}
