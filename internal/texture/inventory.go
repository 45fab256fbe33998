package texture

import (
	"sort"

	"github.com/Faultbox/midgard-ase/pkg/encoding"
	"github.com/Faultbox/midgard-ase/pkg/scene"
)

// Entry describes one bitmap referenced by the materials of a scene.
type Entry struct {
	Map       string   // name as written in the material
	Semantics []scene.TextureType
	Materials []string // names of the materials using it

	Path          string // location returned by the Locator, empty when missing
	Width, Height int
	Err           error // resolve or decode failure
}

// Found reports whether the bitmap was located and its header decoded.
func (e *Entry) Found() bool { return e.Path != "" && e.Err == nil }

// Inventory lists every distinct texture of s, sorted by normalized map
// name, and tries to locate each one through loc.
func Inventory(s *scene.Scene, loc Locator) []*Entry {
	byKey := make(map[string]*Entry)
	for _, mat := range s.Materials {
		for _, sem := range scene.TextureTypes {
			for i := 0; i < mat.TextureCount(sem); i++ {
				name, _ := mat.Texture(sem, i)
				key := encoding.NormalizeMapPath(name)
				e, ok := byKey[key]
				if !ok {
					e = &Entry{Map: name}
					byKey[key] = e
				}
				e.Semantics = appendUnique(e.Semantics, sem)
				e.Materials = appendUnique(e.Materials, mat.Name())
			}
		}
	}

	keys := make([]string, 0, len(byKey))
	for k := range byKey {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	out := make([]*Entry, 0, len(keys))
	for _, k := range keys {
		e := byKey[k]
		e.Path, e.Err = loc.Locate(e.Map)
		if e.Err == nil {
			e.Width, e.Height, e.Err = sizeAt(loc, e.Path)
		}
		out = append(out, e)
	}
	return out
}

func appendUnique[T comparable](s []T, v T) []T {
	for _, x := range s {
		if x == v {
			return s
		}
	}
	return append(s, v)
}

func sizeAt(loc Locator, location string) (int, int, error) {
	rc, err := loc.Open(location)
	if err != nil {
		return 0, 0, err
	}
	defer rc.Close()
	return DecodeSize(rc, location)
}
