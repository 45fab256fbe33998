// Package assets locates texture bitmaps across directories and GRF
// archives.
package assets

import (
	"bytes"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"go.uber.org/multierr"
	"go.uber.org/zap"

	"github.com/Faultbox/midgard-ase/internal/texture"
	"github.com/Faultbox/midgard-ase/pkg/encoding"
	"github.com/Faultbox/midgard-ase/pkg/grf"
)

// archiveSep joins an archive path and an entry name in a location.
const archiveSep = "::"

type archive struct {
	path string
	*grf.Archive
}

// Library is a texture.Locator over directories and GRF archives.
// Directories are searched first, then archives in reverse order
// (last added = highest priority).
type Library struct {
	dirs     texture.Dirs
	archives []archive
	cache    *Cache
	log      *zap.Logger
	mu       sync.RWMutex
}

// NewLibrary creates an empty library.
func NewLibrary(log *zap.Logger) *Library {
	if log == nil {
		log = zap.NewNop()
	}
	return &Library{cache: NewCache(), log: log}
}

// Open builds a library from search paths. Paths ending in .grf are
// opened as archives with entry names decoded by names.
func Open(searchPaths []string, names *encoding.Decoder, log *zap.Logger) (*Library, error) {
	l := NewLibrary(log)
	for _, p := range searchPaths {
		if IsArchive(p) {
			if err := l.AddArchive(p, names); err != nil {
				l.Close()
				return nil, err
			}
			continue
		}
		l.AddDir(p)
	}
	return l, nil
}

// IsArchive reports whether a search path names a GRF archive.
func IsArchive(path string) bool {
	return strings.EqualFold(filepath.Ext(path), ".grf")
}

// AddDir appends a directory to the search list.
func (l *Library) AddDir(dir string) {
	l.mu.Lock()
	l.dirs = append(l.dirs, dir)
	l.mu.Unlock()
}

// AddArchive opens a GRF archive and adds it to the library.
func (l *Library) AddArchive(path string, names *encoding.Decoder) error {
	a, err := grf.Open(path, names)
	if err != nil {
		return fmt.Errorf("opening archive %s: %w", path, err)
	}

	l.mu.Lock()
	l.archives = append(l.archives, archive{path: path, Archive: a})
	l.mu.Unlock()

	l.log.Debug("archive added", zap.String("path", path), zap.Int("files", a.Len()))
	return nil
}

// Locate finds mapName. Archive hits are returned as "archive::entry".
func (l *Library) Locate(mapName string) (string, error) {
	l.mu.RLock()
	defer l.mu.RUnlock()

	if p, err := l.dirs.Locate(mapName); err == nil {
		return p, nil
	}
	for i := len(l.archives) - 1; i >= 0; i-- {
		a := l.archives[i]
		if e := findInArchive(a.Archive, mapName); e != nil {
			return a.path + archiveSep + e.Name, nil
		}
	}
	return "", fmt.Errorf("%w: %s", texture.ErrNotFound, mapName)
}

// findInArchive tries the longest suffix of the map path first, so
// "C:\RO\data\texture\wood.bmp" matches "data/texture/wood.bmp" before
// falling back to any entry with the same base name.
func findInArchive(a *grf.Archive, mapName string) *grf.Entry {
	parts := strings.Split(encoding.NormalizeMapPath(mapName), "/")
	for i := range parts {
		if e, ok := a.Lookup(strings.Join(parts[i:], "/")); ok {
			return e
		}
	}
	if found := a.FindBase(parts[len(parts)-1]); len(found) > 0 {
		return found[0]
	}
	return nil
}

// Open returns the contents at a location returned by Locate. Archive
// entries are cached.
func (l *Library) Open(location string) (io.ReadCloser, error) {
	archivePath, entry, ok := strings.Cut(location, archiveSep)
	if !ok {
		return os.Open(location)
	}
	data, err := l.load(archivePath, entry, location)
	if err != nil {
		return nil, err
	}
	return io.NopCloser(bytes.NewReader(data)), nil
}

func (l *Library) load(archivePath, entry, key string) ([]byte, error) {
	if data, ok := l.cache.Get(key); ok {
		return data, nil
	}

	l.mu.RLock()
	defer l.mu.RUnlock()
	for _, a := range l.archives {
		if a.path != archivePath {
			continue
		}
		data, err := a.ReadFile(entry)
		if err != nil {
			return nil, err
		}
		l.cache.Set(key, data)
		return data, nil
	}
	return nil, fmt.Errorf("%w: unknown archive %s", texture.ErrNotFound, archivePath)
}

// Stats returns cache statistics.
func (l *Library) Stats() (hits, misses int) {
	return l.cache.Stats()
}

// Close closes all archives.
func (l *Library) Close() error {
	l.mu.Lock()
	defer l.mu.Unlock()

	var err error
	for _, a := range l.archives {
		err = multierr.Append(err, a.Close())
	}
	l.archives = nil
	l.cache.Clear()
	return err
}

// Cache is an in-memory cache for archive reads.
type Cache struct {
	data map[string][]byte
	mu   sync.RWMutex

	// Stats
	hits   int
	misses int
}

// NewCache creates a new cache.
func NewCache() *Cache {
	return &Cache{
		data: make(map[string][]byte),
	}
}

// Get retrieves an item from cache.
func (c *Cache) Get(key string) ([]byte, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	data, ok := c.data[key]
	if ok {
		c.hits++
	} else {
		c.misses++
	}
	return data, ok
}

// Set stores an item in cache.
func (c *Cache) Set(key string, data []byte) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.data[key] = data
}

// Clear clears the cache.
func (c *Cache) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.data = make(map[string][]byte)
	c.hits = 0
	c.misses = 0
}

// Stats returns cache statistics.
func (c *Cache) Stats() (hits, misses int) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.hits, c.misses
}
