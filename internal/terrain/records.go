package terrain

import (
	"bytes"
	"encoding/binary"
	"errors"
	"fmt"

	"github.com/trevis/WorldBuilder-ACME-Edition-sub004/pkg/dat"
)

// Record decode errors.
var (
	ErrTruncatedRecord   = errors.New("truncated landblock record")
	ErrRecordKeyMismatch = errors.New("landblock record key mismatch")
)

// LandblockRecord is the archive's native terrain record for one
// landblock: the four per-vertex field arrays, with the type field already
// translated to the archive's texture enum.
type LandblockRecord struct {
	Key     LandblockKey
	Road    [LandblockVertices]uint8
	Scenery [LandblockVertices]uint8
	Type    [LandblockVertices]TextureType
	Height  [LandblockVertices]uint8
}

// NewLandblockRecord builds a record from a dense entry array,
// translating internal type codes to texture types.
func NewLandblockRecord(key LandblockKey, dense []Entry) *LandblockRecord {
	rec := &LandblockRecord{Key: key}
	for i, e := range dense {
		if i >= LandblockVertices {
			break
		}
		rec.Road[i] = e.Road
		rec.Scenery[i] = e.Scenery
		rec.Type[i] = TextureTypeForCode(e.Type)
		rec.Height[i] = e.Height
	}
	return rec
}

// Entries converts the record back to the editor's dense entry form.
func (r *LandblockRecord) Entries() []Entry {
	dense := make([]Entry, LandblockVertices)
	for i := range dense {
		dense[i] = NewEntry(r.Road[i], r.Scenery[i], uint8(r.Type[i]), r.Height[i])
	}
	return dense
}

// RecordID implements dat.Record.
func (r *LandblockRecord) RecordID() uint32 { return r.Key.TerrainRecordID() }

// RecordKind implements dat.Record.
func (r *LandblockRecord) RecordKind() dat.Kind { return dat.KindLandblockTerrain }

// MarshalRecord encodes the native layout: key, then per vertex
// {road u8, scenery u8, type u16, height u8}, little endian.
func (r *LandblockRecord) MarshalRecord() ([]byte, error) {
	buf := new(bytes.Buffer)
	binary.Write(buf, binary.LittleEndian, uint16(r.Key))
	for i := 0; i < LandblockVertices; i++ {
		buf.WriteByte(r.Road[i])
		buf.WriteByte(r.Scenery[i])
		binary.Write(buf, binary.LittleEndian, uint16(r.Type[i]))
		buf.WriteByte(r.Height[i])
	}
	return buf.Bytes(), nil
}

// UnmarshalRecord decodes the native layout.
func (r *LandblockRecord) UnmarshalRecord(data []byte) error {
	const need = 2 + LandblockVertices*5
	if len(data) < need {
		return fmt.Errorf("%w: %d bytes, want %d", ErrTruncatedRecord, len(data), need)
	}
	key := LandblockKey(binary.LittleEndian.Uint16(data))
	if r.Key != 0 && key != r.Key {
		return fmt.Errorf("%w: record says %s, expected %s", ErrRecordKeyMismatch, key, r.Key)
	}
	r.Key = key

	off := 2
	for i := 0; i < LandblockVertices; i++ {
		r.Road[i] = data[off]
		r.Scenery[i] = data[off+1]
		r.Type[i] = TextureType(binary.LittleEndian.Uint16(data[off+2:]))
		r.Height[i] = data[off+4]
		off += 5
	}
	return nil
}

// RegionRecordID is the archive ID of the region descriptor.
const RegionRecordID = 0x13000000

// RegionRecord is the slice of the region descriptor the editor cares
// about: the 256-entry height lookup table.
type RegionRecord struct {
	Heights HeightTable
}

// RecordID implements dat.Record.
func (r *RegionRecord) RecordID() uint32 { return RegionRecordID }

// RecordKind implements dat.Record.
func (r *RegionRecord) RecordKind() dat.Kind { return dat.KindRegion }

// MarshalRecord encodes the height table as 256 little-endian floats.
func (r *RegionRecord) MarshalRecord() ([]byte, error) {
	buf := new(bytes.Buffer)
	if err := binary.Write(buf, binary.LittleEndian, r.Heights); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// UnmarshalRecord decodes the height table.
func (r *RegionRecord) UnmarshalRecord(data []byte) error {
	if len(data) < 256*4 {
		return fmt.Errorf("%w: region descriptor", ErrTruncatedRecord)
	}
	return binary.Read(bytes.NewReader(data), binary.LittleEndian, &r.Heights)
}
