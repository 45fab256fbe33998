package grf

import (
	"bytes"
	"compress/zlib"
	"encoding/binary"
	"fmt"
	"io"
	"strings"
)

// File is an input to Write.
type File struct {
	Name string // stored with backslashes, as the game client expects
	Data []byte
}

// Write stores files as an unencrypted, zlib-compressed GRF 0x200 archive.
func Write(w io.Writer, files []File) error {
	var body, table bytes.Buffer
	for _, f := range files {
		var z bytes.Buffer
		zw := zlib.NewWriter(&z)
		if _, err := zw.Write(f.Data); err != nil {
			return fmt.Errorf("grf: compressing %s: %w", f.Name, err)
		}
		if err := zw.Close(); err != nil {
			return fmt.Errorf("grf: compressing %s: %w", f.Name, err)
		}

		table.WriteString(strings.ReplaceAll(f.Name, "/", "\\"))
		table.WriteByte(0)
		var tail [entryTailSize]byte
		binary.LittleEndian.PutUint32(tail[0:], uint32(z.Len()))
		binary.LittleEndian.PutUint32(tail[4:], uint32(z.Len()))
		binary.LittleEndian.PutUint32(tail[8:], uint32(len(f.Data)))
		tail[12] = flagFile
		binary.LittleEndian.PutUint32(tail[13:], uint32(body.Len()))
		table.Write(tail[:])

		body.Write(z.Bytes())
	}

	var zt bytes.Buffer
	zw := zlib.NewWriter(&zt)
	if _, err := zw.Write(table.Bytes()); err != nil {
		return fmt.Errorf("grf: compressing table: %w", err)
	}
	if err := zw.Close(); err != nil {
		return fmt.Errorf("grf: compressing table: %w", err)
	}

	h := header{
		TableOffset: uint32(body.Len()),
		FileCount:   uint32(len(files)) + 7,
		Version:     version200,
	}
	copy(h.Magic[:], magic)

	var sizes [8]byte
	binary.LittleEndian.PutUint32(sizes[0:], uint32(zt.Len()))
	binary.LittleEndian.PutUint32(sizes[4:], uint32(table.Len()))

	if err := binary.Write(w, binary.LittleEndian, &h); err != nil {
		return fmt.Errorf("grf: writing header: %w", err)
	}
	for _, chunk := range [][]byte{body.Bytes(), sizes[:], zt.Bytes()} {
		if _, err := w.Write(chunk); err != nil {
			return fmt.Errorf("grf: writing: %w", err)
		}
	}
	return nil
}
