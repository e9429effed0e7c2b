// Package dat provides read/write access to the client's game-data archives.
//
// The archive is treated as a flat store of typed binary records addressed
// by 32-bit IDs. Record payloads are zlib-compressed on disk. The editor
// core never looks inside payloads it does not own; records marshal and
// unmarshal themselves via the Record interface.
package dat

import (
	"bytes"
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"

	"github.com/klauspost/compress/zlib"
)

const datMagic = "ACEDAT"

// Archive format errors.
var (
	ErrInvalidMagic       = errors.New("invalid archive magic: expected 'ACEDAT'")
	ErrUnsupportedVersion = errors.New("unsupported archive version")
	ErrTruncatedArchive   = errors.New("truncated archive data")
)

// Kind identifies the record type stored under an ID.
type Kind uint8

// Record kinds.
const (
	KindLandblockTerrain Kind = 1 // terrain grid, id (key<<16)|0xFFFF
	KindLandblockInfo    Kind = 2 // static objects, id (key<<16)|0xFFFE
	KindDungeon          Kind = 3
	KindPortalTable      Kind = 4
	KindRegion           Kind = 5 // region descriptor (height table etc.)
	KindTexture          Kind = 6
)

// Record is a typed archive record. Implementations carry their own ID
// and know how to encode themselves into the archive's native layout.
type Record interface {
	RecordID() uint32
	RecordKind() Kind
	MarshalRecord() ([]byte, error)
	UnmarshalRecord(data []byte) error
}

// Store is the record-store surface the editor core depends on.
type Store interface {
	// TryGet fills rec from the archive entry matching rec.RecordID().
	// Returns false if the record is absent or fails to decode.
	TryGet(rec Record) bool

	// TrySave writes rec into the archive at the given iteration.
	// Iteration 0 means "the archive's current iteration".
	TrySave(rec Record, iteration int32) bool

	// AllIDsOfKind returns the sorted IDs of every record of the kind.
	AllIDsOfKind(kind Kind) []uint32

	// Iteration returns the archive's current iteration marker.
	Iteration() int32

	// SetIteration updates the current iteration marker.
	SetIteration(it int32)
}

type entry struct {
	kind      Kind
	iteration int32
	data      []byte // uncompressed payload
}

// Archive is a file-backed Store. All records are held in memory; every
// successful TrySave rewrites the backing file so a crash mid-export
// loses at most the record being written.
type Archive struct {
	path      string
	iteration int32
	records   map[uint32]*entry
}

// NewMemory returns an empty in-memory archive with no backing file.
func NewMemory() *Archive {
	return &Archive{records: make(map[uint32]*entry)}
}

// Open reads an archive file into memory.
func Open(path string) (*Archive, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading archive: %w", err)
	}

	a := &Archive{path: path, records: make(map[uint32]*entry)}
	if err := a.parse(data); err != nil {
		return nil, err
	}
	return a, nil
}

// Create makes a new empty archive backed by the given path.
func Create(path string) (*Archive, error) {
	a := &Archive{path: path, records: make(map[uint32]*entry)}
	if err := a.Flush(); err != nil {
		return nil, err
	}
	return a, nil
}

type header struct {
	Magic       [6]byte
	Version     uint8
	Iteration   int32
	RecordCount uint32
}

type tableEntry struct {
	ID               uint32
	Kind             uint8
	Iteration        int32
	CompressedSize   uint32
	UncompressedSize uint32
}

func (a *Archive) parse(data []byte) error {
	r := bytes.NewReader(data)

	var h header
	if err := binary.Read(r, binary.LittleEndian, &h); err != nil {
		return fmt.Errorf("%w: reading header", ErrTruncatedArchive)
	}
	if string(h.Magic[:]) != datMagic {
		return ErrInvalidMagic
	}
	if h.Version != 1 {
		return fmt.Errorf("%w: %d", ErrUnsupportedVersion, h.Version)
	}
	a.iteration = h.Iteration

	for i := uint32(0); i < h.RecordCount; i++ {
		var te tableEntry
		if err := binary.Read(r, binary.LittleEndian, &te); err != nil {
			return fmt.Errorf("%w: reading record %d header", ErrTruncatedArchive, i)
		}

		compressed := make([]byte, te.CompressedSize)
		if _, err := io.ReadFull(r, compressed); err != nil {
			return fmt.Errorf("%w: reading record %d payload", ErrTruncatedArchive, i)
		}

		payload, err := inflate(compressed, int(te.UncompressedSize))
		if err != nil {
			return fmt.Errorf("decompressing record 0x%08X: %w", te.ID, err)
		}

		a.records[te.ID] = &entry{
			kind:      Kind(te.Kind),
			iteration: te.Iteration,
			data:      payload,
		}
	}

	return nil
}

// Flush rewrites the backing file. No-op for in-memory archives.
func (a *Archive) Flush() error {
	if a.path == "" {
		return nil
	}

	buf := new(bytes.Buffer)
	h := header{Version: 1, Iteration: a.iteration, RecordCount: uint32(len(a.records))}
	copy(h.Magic[:], datMagic)
	if err := binary.Write(buf, binary.LittleEndian, h); err != nil {
		return err
	}

	// Deterministic record order keeps the output stable across saves.
	ids := make([]uint32, 0, len(a.records))
	for id := range a.records {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })

	for _, id := range ids {
		e := a.records[id]
		compressed, err := deflate(e.data)
		if err != nil {
			return fmt.Errorf("compressing record 0x%08X: %w", id, err)
		}
		te := tableEntry{
			ID:               id,
			Kind:             uint8(e.kind),
			Iteration:        e.iteration,
			CompressedSize:   uint32(len(compressed)),
			UncompressedSize: uint32(len(e.data)),
		}
		if err := binary.Write(buf, binary.LittleEndian, te); err != nil {
			return err
		}
		buf.Write(compressed)
	}

	return os.WriteFile(a.path, buf.Bytes(), 0644)
}

// CopyTo writes a full copy of the archive into dir and returns the copy,
// opened for writing. The source archive is left untouched.
func (a *Archive) CopyTo(dir string) (*Archive, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, err
	}

	name := "client_cell.dat"
	if a.path != "" {
		name = filepath.Base(a.path)
	}

	out := &Archive{
		path:      filepath.Join(dir, name),
		iteration: a.iteration,
		records:   make(map[uint32]*entry, len(a.records)),
	}
	for id, e := range a.records {
		data := make([]byte, len(e.data))
		copy(data, e.data)
		out.records[id] = &entry{kind: e.kind, iteration: e.iteration, data: data}
	}

	if err := out.Flush(); err != nil {
		return nil, err
	}
	return out, nil
}

// TryGet fills rec from the archive. Returns false if absent or undecodable.
func (a *Archive) TryGet(rec Record) bool {
	e, ok := a.records[rec.RecordID()]
	if !ok || e.kind != rec.RecordKind() {
		return false
	}
	return rec.UnmarshalRecord(e.data) == nil
}

// Contains reports whether a record exists under the given ID.
func (a *Archive) Contains(id uint32) bool {
	_, ok := a.records[id]
	return ok
}

// TrySave writes rec at the given iteration (0 = current iteration).
func (a *Archive) TrySave(rec Record, iteration int32) bool {
	data, err := rec.MarshalRecord()
	if err != nil {
		return false
	}
	if iteration == 0 {
		iteration = a.iteration
	}
	a.records[rec.RecordID()] = &entry{
		kind:      rec.RecordKind(),
		iteration: iteration,
		data:      data,
	}
	return a.Flush() == nil
}

// AllIDsOfKind returns the sorted IDs of every record of the kind.
func (a *Archive) AllIDsOfKind(kind Kind) []uint32 {
	var ids []uint32
	for id, e := range a.records {
		if e.kind == kind {
			ids = append(ids, id)
		}
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids
}

// Iteration returns the current iteration marker.
func (a *Archive) Iteration() int32 {
	return a.iteration
}

// SetIteration updates the current iteration marker.
func (a *Archive) SetIteration(it int32) {
	a.iteration = it
	_ = a.Flush()
}

func deflate(data []byte) ([]byte, error) {
	buf := new(bytes.Buffer)
	w := zlib.NewWriter(buf)
	if _, err := w.Write(data); err != nil {
		return nil, err
	}
	if err := w.Close(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func inflate(data []byte, size int) ([]byte, error) {
	r, err := zlib.NewReader(bytes.NewReader(data))
	if err != nil {
		return nil, err
	}
	defer r.Close()

	out := make([]byte, size)
	if _, err := io.ReadFull(r, out); err != nil {
		return nil, err
	}
	return out, nil
}
