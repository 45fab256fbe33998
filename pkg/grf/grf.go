// Package grf reads Ragnarok Online GRF 0x200 archives, the container the
// game's 3ds Max models and their textures are shipped in.
package grf

import (
	"bytes"
	"compress/zlib"
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"os"
	"path"
	"sort"
	"strings"

	"github.com/Faultbox/midgard-ase/pkg/encoding"
)

// Archive errors.
var (
	ErrInvalidMagic       = errors.New("grf: invalid magic")
	ErrUnsupportedVersion = errors.New("grf: unsupported version")
	ErrCorruptTable       = errors.New("grf: corrupt file table")
	ErrNotFound           = errors.New("grf: file not found")
	ErrEncrypted          = errors.New("grf: encrypted entries are not supported")
)

const (
	magic      = "Master of Magic"
	headerSize = 46
	version200 = 0x200

	flagFile     = 0x01
	flagMixCrypt = 0x02
	flagDES      = 0x04

	entryTailSize = 17
)

type header struct {
	Magic       [15]byte
	Key         [15]byte
	TableOffset uint32
	Seed        uint32
	FileCount   uint32
	Version     uint32
}

// Entry is a file stored in the archive.
type Entry struct {
	Name           string // normalized: forward slashes, lower case
	CompressedSize uint32
	AlignedSize    uint32
	Size           uint32
	Flags          uint8
	Offset         uint32 // relative to the end of the header
}

// Encrypted reports whether the entry uses either GRF cipher.
func (e *Entry) Encrypted() bool {
	return e.Flags&(flagMixCrypt|flagDES) != 0
}

// Archive is an opened GRF archive. Reads go through io.ReaderAt, so
// an Archive can be shared between goroutines.
type Archive struct {
	r      io.ReaderAt
	closer io.Closer

	entries map[string]*Entry
	byBase  map[string][]*Entry
}

// Open opens the archive at path. Entry names are decoded with names,
// nil meaning the Korean code page the game uses.
func Open(path string, names *encoding.Decoder) (*Archive, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("grf: open: %w", err)
	}
	a, err := NewReader(f, names)
	if err != nil {
		f.Close()
		return nil, err
	}
	a.closer = f
	return a, nil
}

// NewReader reads the header and file table from r.
func NewReader(r io.ReaderAt, names *encoding.Decoder) (*Archive, error) {
	if names == nil {
		names, _ = encoding.Lookup("cp949")
	}
	a := &Archive{
		r:       r,
		entries: make(map[string]*Entry),
		byBase:  make(map[string][]*Entry),
	}

	var h header
	if err := binary.Read(io.NewSectionReader(r, 0, headerSize), binary.LittleEndian, &h); err != nil {
		return nil, fmt.Errorf("grf: reading header: %w", err)
	}
	if string(h.Magic[:]) != magic {
		return nil, ErrInvalidMagic
	}
	if h.Version != version200 {
		return nil, fmt.Errorf("%w: 0x%x", ErrUnsupportedVersion, h.Version)
	}
	if err := a.readTable(h, names); err != nil {
		return nil, err
	}
	return a, nil
}

func (a *Archive) readTable(h header, names *encoding.Decoder) error {
	base := int64(h.TableOffset) + headerSize

	var sizes [8]byte
	if _, err := a.r.ReadAt(sizes[:], base); err != nil {
		return fmt.Errorf("%w: %v", ErrCorruptTable, err)
	}
	compressed := binary.LittleEndian.Uint32(sizes[0:])
	uncompressed := binary.LittleEndian.Uint32(sizes[4:])

	zr, err := zlib.NewReader(io.NewSectionReader(a.r, base+8, int64(compressed)))
	if err != nil {
		return fmt.Errorf("%w: %v", ErrCorruptTable, err)
	}
	defer zr.Close()

	table := make([]byte, uncompressed)
	if _, err := io.ReadFull(zr, table); err != nil {
		return fmt.Errorf("%w: %v", ErrCorruptTable, err)
	}

	count := int64(h.FileCount) - int64(h.Seed) - 7
	off := 0
	for i := int64(0); i < count; i++ {
		end := bytes.IndexByte(table[off:], 0)
		if end < 0 || off+end+1+entryTailSize > len(table) {
			return fmt.Errorf("%w: entry %d truncated", ErrCorruptTable, i)
		}
		raw := table[off : off+end]
		off += end + 1

		e := &Entry{
			Name:           encoding.NormalizeMapPath(names.String(raw)),
			CompressedSize: binary.LittleEndian.Uint32(table[off:]),
			AlignedSize:    binary.LittleEndian.Uint32(table[off+4:]),
			Size:           binary.LittleEndian.Uint32(table[off+8:]),
			Flags:          table[off+12],
			Offset:         binary.LittleEndian.Uint32(table[off+13:]),
		}
		off += entryTailSize

		// Directory records carry no file flag.
		if e.Flags&flagFile == 0 {
			continue
		}
		a.entries[e.Name] = e
		b := path.Base(e.Name)
		a.byBase[b] = append(a.byBase[b], e)
	}
	return nil
}

// Close releases the underlying file, if Open created one.
func (a *Archive) Close() error {
	if a.closer != nil {
		return a.closer.Close()
	}
	return nil
}

// Len returns the number of files in the archive.
func (a *Archive) Len() int { return len(a.entries) }

// Names returns all file names, sorted.
func (a *Archive) Names() []string {
	out := make([]string, 0, len(a.entries))
	for name := range a.entries {
		out = append(out, name)
	}
	sort.Strings(out)
	return out
}

// Lookup finds an entry by path, ignoring case and separator style.
func (a *Archive) Lookup(name string) (*Entry, bool) {
	e, ok := a.entries[encoding.NormalizeMapPath(name)]
	return e, ok
}

// FindBase returns the entries whose file name matches base, ignoring
// case, ordered by path.
func (a *Archive) FindBase(base string) []*Entry {
	found := a.byBase[strings.ToLower(base)]
	out := make([]*Entry, len(found))
	copy(out, found)
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}

// ReadFile returns the uncompressed contents of the named file.
func (a *Archive) ReadFile(name string) ([]byte, error) {
	e, ok := a.Lookup(name)
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, name)
	}
	return a.Read(e)
}

// Read returns the uncompressed contents of e.
func (a *Archive) Read(e *Entry) ([]byte, error) {
	if e.Encrypted() {
		return nil, fmt.Errorf("%w: %s", ErrEncrypted, e.Name)
	}
	section := io.NewSectionReader(a.r, int64(e.Offset)+headerSize, int64(e.CompressedSize))

	out := make([]byte, e.Size)
	if e.CompressedSize == e.Size {
		if _, err := io.ReadFull(section, out); err != nil {
			return nil, fmt.Errorf("grf: reading %s: %w", e.Name, err)
		}
		return out, nil
	}

	zr, err := zlib.NewReader(section)
	if err != nil {
		return nil, fmt.Errorf("grf: inflating %s: %w", e.Name, err)
	}
	defer zr.Close()
	if _, err := io.ReadFull(zr, out); err != nil {
		return nil, fmt.Errorf("grf: inflating %s: %w", e.Name, err)
	}
	return out, nil
}
