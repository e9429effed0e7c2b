package document

import (
	"bytes"
	"encoding/binary"
	"errors"
	"fmt"
	"io"

	"github.com/trevis/WorldBuilder-ACME-Edition-sub004/internal/terrain"
	"github.com/trevis/WorldBuilder-ACME-Edition-sub004/pkg/dat"
	"github.com/trevis/WorldBuilder-ACME-Edition-sub004/pkg/geom"
)

// ErrTruncatedObjectData is returned when an object record ends early.
var ErrTruncatedObjectData = errors.New("truncated static object data")

// StaticObject is a placed world object: a building, prop or other
// non-terrain geometry, persisted per landblock.
type StaticObject struct {
	ID          uint32 // archive object/setup id
	IsSetup     bool   // true when ID refers to a setup, not a single gfx object
	Origin      geom.Vec3
	Orientation geom.Quat
	Scale       geom.Vec3
}

// Encode writes the object's wire form: id u32, isSetup u8, origin 3xf32,
// orientation 4xf32 (W X Y Z), scale 3xf32, little endian.
func (o StaticObject) Encode(w io.Writer) error {
	if err := binary.Write(w, binary.LittleEndian, o.ID); err != nil {
		return err
	}
	setup := uint8(0)
	if o.IsSetup {
		setup = 1
	}
	fields := []any{
		setup,
		o.Origin.X, o.Origin.Y, o.Origin.Z,
		o.Orientation.W, o.Orientation.X, o.Orientation.Y, o.Orientation.Z,
		o.Scale.X, o.Scale.Y, o.Scale.Z,
	}
	for _, f := range fields {
		if err := binary.Write(w, binary.LittleEndian, f); err != nil {
			return err
		}
	}
	return nil
}

// DecodeObject reads one object in Encode's wire form.
func DecodeObject(r io.Reader) (StaticObject, error) {
	var raw struct {
		ID          uint32
		IsSetup     uint8
		Origin      [3]float32
		Orientation [4]float32
		Scale       [3]float32
	}
	if err := binary.Read(r, binary.LittleEndian, &raw); err != nil {
		return StaticObject{}, fmt.Errorf("%w: %v", ErrTruncatedObjectData, err)
	}
	return StaticObject{
		ID:          raw.ID,
		IsSetup:     raw.IsSetup != 0,
		Origin:      geom.Vec3{X: raw.Origin[0], Y: raw.Origin[1], Z: raw.Origin[2]},
		Orientation: geom.Quat{W: raw.Orientation[0], X: raw.Orientation[1], Y: raw.Orientation[2], Z: raw.Orientation[3]},
		Scale:       geom.Vec3{X: raw.Scale[0], Y: raw.Scale[1], Z: raw.Scale[2]},
	}, nil
}

// ObjectsDocument holds the static objects of one landblock.
type ObjectsDocument struct {
	baseDoc
	Key     terrain.LandblockKey
	Objects []StaticObject
}

// Add appends an object and returns its index.
func (d *ObjectsDocument) Add(obj StaticObject) int {
	d.Objects = append(d.Objects, obj)
	d.MarkDirty()
	return len(d.Objects) - 1
}

// RemoveAt deletes the object at index, preserving order.
func (d *ObjectsDocument) RemoveAt(index int) (StaticObject, bool) {
	if index < 0 || index >= len(d.Objects) {
		return StaticObject{}, false
	}
	obj := d.Objects[index]
	d.Objects = append(d.Objects[:index], d.Objects[index+1:]...)
	d.MarkDirty()
	return obj, true
}

// InsertAt restores an object at index (undo of RemoveAt).
func (d *ObjectsDocument) InsertAt(index int, obj StaticObject) bool {
	if index < 0 || index > len(d.Objects) {
		return false
	}
	d.Objects = append(d.Objects[:index], append([]StaticObject{obj}, d.Objects[index:]...)...)
	d.MarkDirty()
	return true
}

// SaveToDats writes the landblock's metadata record into the archive.
func (d *ObjectsDocument) SaveToDats(store dat.Store, iteration int32) bool {
	rec := &LandblockInfoRecord{Key: d.Key, Objects: d.Objects}
	return store.TrySave(rec, iteration)
}

func (d *ObjectsDocument) encode() ([]byte, error) {
	rec := &LandblockInfoRecord{Key: d.Key, Objects: d.Objects}
	return rec.MarshalRecord()
}

func (d *ObjectsDocument) decode(data []byte) error {
	rec := &LandblockInfoRecord{Key: d.Key}
	if err := rec.UnmarshalRecord(data); err != nil {
		return err
	}
	d.Objects = rec.Objects
	return nil
}

// LandblockInfoRecord is the archive's landblock metadata record: the
// static object placement list.
type LandblockInfoRecord struct {
	Key     terrain.LandblockKey
	Objects []StaticObject
}

// RecordID implements dat.Record.
func (r *LandblockInfoRecord) RecordID() uint32 { return r.Key.InfoRecordID() }

// RecordKind implements dat.Record.
func (r *LandblockInfoRecord) RecordKind() dat.Kind { return dat.KindLandblockInfo }

// MarshalRecord encodes the object list.
func (r *LandblockInfoRecord) MarshalRecord() ([]byte, error) {
	buf := new(bytes.Buffer)
	binary.Write(buf, binary.LittleEndian, uint32(len(r.Objects)))
	for _, obj := range r.Objects {
		if err := obj.Encode(buf); err != nil {
			return nil, err
		}
	}
	return buf.Bytes(), nil
}

// UnmarshalRecord decodes the object list.
func (r *LandblockInfoRecord) UnmarshalRecord(data []byte) error {
	buf := bytes.NewReader(data)
	var count uint32
	if err := binary.Read(buf, binary.LittleEndian, &count); err != nil {
		return fmt.Errorf("%w: object count", ErrTruncatedObjectData)
	}
	r.Objects = make([]StaticObject, 0, count)
	for i := uint32(0); i < count; i++ {
		obj, err := DecodeObject(buf)
		if err != nil {
			return fmt.Errorf("object %d: %w", i, err)
		}
		r.Objects = append(r.Objects, obj)
	}
	return nil
}
