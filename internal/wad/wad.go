// Package wad reads the two chunk container dialects used by the physics
// formats: the flat self-terminating chunk stream of the older files, and
// the directory-indexed archive wrapping the newer ones.
package wad

import (
	"bytes"
	"fmt"
	"io"

	"github.com/rcliao/physics-dump/internal/codec"
)

const (
	// Archive container versions. Version 1 and below predate explicit
	// directory-entry sizing.
	versionHasDirectoryEntry = 1

	maxNameLength       = 64
	maxDirectoryEntries = 64
)

// Tag is a chunk's 4-byte ASCII identifier.
type Tag [4]byte

// TagOf builds a Tag from a 4-character string.
func TagOf(s string) Tag {
	var t Tag
	copy(t[:], s)
	return t
}

func (t Tag) String() string { return string(t[:]) }

// MarshalJSON renders the tag as its ASCII string.
func (t Tag) MarshalJSON() ([]byte, error) {
	return []byte(fmt.Sprintf("%q", t.String())), nil
}

// Chunk is one tagged block of a container. NextOffset is the embedded
// chunk header's navigation field; it is recorded for inspection but
// chunks are always read sequentially.
type Chunk struct {
	Tag        Tag    `json:"tag"`
	NextOffset uint32 `json:"next_offset,omitempty"`
	Data       []byte `json:"-"`
}

// ChunkNotFoundError reports a required tag missing from a chunk list.
type ChunkNotFoundError struct {
	Tag Tag
}

func (e *ChunkNotFoundError) Error() string {
	return fmt.Sprintf("unable to find chunk of type %q", e.Tag.String())
}

// MalformedChunkError reports a structural violation in an embedded chunk
// header: the reserved word after the length field was nonzero.
type MalformedChunkError struct {
	Index  int
	Tag    Tag
	Offset int64
}

func (e *MalformedChunkError) Error() string {
	return fmt.Sprintf("chunk #%d %q, located at %08X within the subfile, has a nonzero value in the reserved field",
		e.Index, e.Tag.String(), e.Offset)
}

// Find returns the payload of the first chunk matching tag. Later
// duplicates are unreachable.
func Find(chunks []Chunk, tag Tag) ([]byte, error) {
	for i := range chunks {
		if chunks[i].Tag == tag {
			return chunks[i].Data, nil
		}
	}
	return nil, &ChunkNotFoundError{Tag: tag}
}

// ReadFlatChunks parses a flat-dialect chunk stream: 4-byte tag, a 4-byte
// field that is ignored, a 16-bit element count and a 16-bit element
// size, then count*size payload bytes. A failed tag read is the normal
// end of the stream.
func ReadFlatChunks(r io.Reader) ([]Chunk, error) {
	chunks := []Chunk{}
	for {
		var tag Tag
		if _, err := io.ReadFull(r, tag[:]); err != nil {
			break
		}
		if _, err := codec.ReadU32(r); err != nil {
			return nil, fmt.Errorf("read chunk %q header: %w", tag.String(), err)
		}
		count, err := codec.ReadU16(r)
		if err != nil {
			return nil, fmt.Errorf("read chunk %q header: %w", tag.String(), err)
		}
		size, err := codec.ReadU16(r)
		if err != nil {
			return nil, fmt.Errorf("read chunk %q header: %w", tag.String(), err)
		}
		data := make([]byte, int(count)*int(size))
		if _, err := io.ReadFull(r, data); err != nil {
			return nil, fmt.Errorf("read chunk %q payload: %w", tag.String(), err)
		}
		chunks = append(chunks, Chunk{Tag: tag, Data: data})
	}
	return chunks, nil
}

// ReadArchiveChunks parses one subfile's embedded chunk stream: 4-byte
// tag, 32-bit next-offset (recorded, not followed), 32-bit payload
// length, then a reserved 32-bit word that must be zero. A failed tag
// read is the normal end of the stream.
func ReadArchiveChunks(r io.Reader) ([]Chunk, error) {
	chunks := []Chunk{}
	var offset int64
	for {
		var tag Tag
		if _, err := io.ReadFull(r, tag[:]); err != nil {
			break
		}
		next, err := codec.ReadU32(r)
		if err != nil {
			return nil, fmt.Errorf("read chunk %q header: %w", tag.String(), err)
		}
		length, err := codec.ReadU32(r)
		if err != nil {
			return nil, fmt.Errorf("read chunk %q header: %w", tag.String(), err)
		}
		reserved, err := codec.ReadU32(r)
		if err != nil {
			return nil, fmt.Errorf("read chunk %q header: %w", tag.String(), err)
		}
		if reserved != 0 {
			return nil, &MalformedChunkError{Index: len(chunks), Tag: tag, Offset: offset}
		}
		data := make([]byte, length)
		if _, err := io.ReadFull(r, data); err != nil {
			return nil, fmt.Errorf("read chunk %q payload: %w", tag.String(), err)
		}
		chunks = append(chunks, Chunk{Tag: tag, NextOffset: next, Data: data})
		offset += 16 + int64(length)
	}
	return chunks, nil
}

// Wad is a parsed archive-dialect container: the fixed header plus the
// chunk list of every subfile the directory references.
type Wad struct {
	Version          uint16    `json:"version"`
	DataVersion      uint16    `json:"data_version"`
	Name             string    `json:"name"`
	Checksum         uint32    `json:"checksum"`
	DirectoryOffset  uint32    `json:"directory_offset"`
	SubfileCount     uint16    `json:"subfile_count"`
	ExtraDataSize    uint16    `json:"extra_data_size"`
	EntryHeaderSize  uint16    `json:"entry_header_size"`
	DirEntryBaseSize uint16    `json:"directory_entry_base_size"`
	ParentChecksum   uint32    `json:"parent_checksum"`
	Files            [][]Chunk `json:"files"`
}

// Read parses an archive-dialect container. The header's declared
// directory-entry base size is forced to 8 for container versions <= 1.
// A directory slot whose offset cannot be read ends the scan; that is
// the normal directory-end condition, not an error.
func Read(r io.ReadSeeker) (*Wad, error) {
	w := &Wad{}
	var err error
	if w.Version, err = codec.ReadU16(r); err != nil {
		return nil, fmt.Errorf("read archive header: %w", err)
	}
	if w.DataVersion, err = codec.ReadU16(r); err != nil {
		return nil, fmt.Errorf("read archive header: %w", err)
	}
	var name [maxNameLength]byte
	if _, err := io.ReadFull(r, name[:]); err != nil {
		return nil, fmt.Errorf("read archive header: %w", err)
	}
	w.Name = trimName(name[:])
	if w.Checksum, err = codec.ReadU32(r); err != nil {
		return nil, fmt.Errorf("read archive header: %w", err)
	}
	if w.DirectoryOffset, err = codec.ReadU32(r); err != nil {
		return nil, fmt.Errorf("read archive header: %w", err)
	}
	if w.SubfileCount, err = codec.ReadU16(r); err != nil {
		return nil, fmt.Errorf("read archive header: %w", err)
	}
	if w.ExtraDataSize, err = codec.ReadU16(r); err != nil {
		return nil, fmt.Errorf("read archive header: %w", err)
	}
	if w.EntryHeaderSize, err = codec.ReadU16(r); err != nil {
		return nil, fmt.Errorf("read archive header: %w", err)
	}
	if w.DirEntryBaseSize, err = codec.ReadU16(r); err != nil {
		return nil, fmt.Errorf("read archive header: %w", err)
	}
	if w.ParentChecksum, err = codec.ReadU32(r); err != nil {
		return nil, fmt.Errorf("read archive header: %w", err)
	}
	if w.Version <= versionHasDirectoryEntry {
		w.DirEntryBaseSize = 8
	}
	stride := int64(w.DirEntryBaseSize) + int64(w.ExtraDataSize)

	w.Files = [][]Chunk{}
	for i := 0; i < maxDirectoryEntries; i++ {
		if _, err := r.Seek(int64(w.DirectoryOffset)+stride*int64(i), io.SeekStart); err != nil {
			return nil, fmt.Errorf("seek to directory entry %d: %w", i, err)
		}
		offset, err := codec.ReadU32(r)
		if err != nil {
			break
		}
		length, err := codec.ReadU32(r)
		if err != nil {
			return nil, fmt.Errorf("read directory entry %d: %w", i, err)
		}
		if _, err := r.Seek(int64(offset), io.SeekStart); err != nil {
			return nil, fmt.Errorf("seek to subfile %d: %w", i, err)
		}
		data := make([]byte, length)
		if _, err := io.ReadFull(r, data); err != nil {
			return nil, fmt.Errorf("read subfile %d: %w", i, err)
		}
		chunks, err := ReadArchiveChunks(bytes.NewReader(data))
		if err != nil {
			return nil, err
		}
		w.Files = append(w.Files, chunks)
	}
	return w, nil
}

func trimName(name []byte) string {
	for i, b := range name {
		if b == 0 {
			return string(name[:i])
		}
	}
	return string(name)
}
