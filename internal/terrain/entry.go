package terrain

// FieldMask selects a subset of a terrain entry's four fields. A layer's
// mask at a vertex governs which fields that layer may override during
// export compositing.
type FieldMask uint8

// Field bits.
const (
	MaskRoad    FieldMask = 1 << 0
	MaskScenery FieldMask = 1 << 1
	MaskType    FieldMask = 1 << 2
	MaskHeight  FieldMask = 1 << 3

	MaskNone FieldMask = 0
	MaskAll  FieldMask = MaskRoad | MaskScenery | MaskType | MaskHeight
)

// Bit widths of the packed fields.
const (
	heightBits  = 8
	typeBits    = 6
	sceneryBits = 8
	roadBits    = 4

	heightShift  = 0
	typeShift    = heightShift + heightBits
	sceneryShift = typeShift + typeBits
	roadShift    = sceneryShift + sceneryBits

	heightMax  = 1<<heightBits - 1
	typeMax    = 1<<typeBits - 1
	sceneryMax = 1<<sceneryBits - 1
	roadMax    = 1<<roadBits - 1
)

// Entry is a single terrain vertex: road paint, scenery index, ground
// texture type and height-table index, packed into one 32-bit word.
// Values are immutable; the With* setters return updated copies.
// Out-of-range inputs are truncated to field width, never rejected.
type Entry struct {
	Road    uint8 // 0..15
	Scenery uint8 // 0..255
	Type    uint8 // 0..63, ground texture type code
	Height  uint8 // 0..255, index into the region height table
}

// NewEntry builds an entry, truncating each value to its field width.
func NewEntry(road, scenery, typ, height uint8) Entry {
	return Entry{
		Road:    road & roadMax,
		Scenery: scenery,
		Type:    typ & typeMax,
		Height:  height,
	}
}

// EntryFromUint32 unpacks an entry. Exact inverse of ToUint32.
func EntryFromUint32(v uint32) Entry {
	return Entry{
		Road:    uint8(v >> roadShift & roadMax),
		Scenery: uint8(v >> sceneryShift & sceneryMax),
		Type:    uint8(v >> typeShift & typeMax),
		Height:  uint8(v >> heightShift & heightMax),
	}
}

// ToUint32 packs the entry into a single machine word.
func (e Entry) ToUint32() uint32 {
	return uint32(e.Road&roadMax)<<roadShift |
		uint32(e.Scenery)<<sceneryShift |
		uint32(e.Type&typeMax)<<typeShift |
		uint32(e.Height)<<heightShift
}

// WithRoad returns a copy with the road field replaced.
func (e Entry) WithRoad(road uint8) Entry {
	e.Road = road & roadMax
	return e
}

// WithScenery returns a copy with the scenery field replaced.
func (e Entry) WithScenery(scenery uint8) Entry {
	e.Scenery = scenery
	return e
}

// WithType returns a copy with the type field replaced.
func (e Entry) WithType(typ uint8) Entry {
	e.Type = typ & typeMax
	return e
}

// WithHeight returns a copy with the height field replaced.
func (e Entry) WithHeight(height uint8) Entry {
	e.Height = height
	return e
}

// WithField returns a copy with the field selected by the single-bit mask
// replaced. Multi-bit masks replace every selected field with the value.
func (e Entry) WithField(field FieldMask, v uint8) Entry {
	if field&MaskRoad != 0 {
		e = e.WithRoad(v)
	}
	if field&MaskScenery != 0 {
		e = e.WithScenery(v)
	}
	if field&MaskType != 0 {
		e = e.WithType(v)
	}
	if field&MaskHeight != 0 {
		e = e.WithHeight(v)
	}
	return e
}

// FieldValue returns the value of the field selected by a single-bit mask.
func (e Entry) FieldValue(field FieldMask) uint8 {
	switch field {
	case MaskRoad:
		return e.Road
	case MaskScenery:
		return e.Scenery
	case MaskType:
		return e.Type
	case MaskHeight:
		return e.Height
	}
	return 0
}

// Merge returns e with the fields selected by take replaced by over's
// values. This is the field-granular override used by export compositing:
// two layers can each own different fields of the same vertex.
func (e Entry) Merge(over Entry, take FieldMask) Entry {
	if take&MaskRoad != 0 {
		e.Road = over.Road
	}
	if take&MaskScenery != 0 {
		e.Scenery = over.Scenery
	}
	if take&MaskType != 0 {
		e.Type = over.Type
	}
	if take&MaskHeight != 0 {
		e.Height = over.Height
	}
	return e
}

// Truncate clamps v to the bit width of the field selected by a
// single-bit mask, mirroring the packing behavior.
func (f FieldMask) Truncate(v uint8) uint8 {
	switch f {
	case MaskRoad:
		return v & roadMax
	case MaskType:
		return v & typeMax
	}
	return v
}
