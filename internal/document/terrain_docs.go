package document

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"sort"

	"github.com/trevis/WorldBuilder-ACME-Edition-sub004/internal/terrain"
	"github.com/trevis/WorldBuilder-ACME-Edition-sub004/pkg/dat"
)

// TerrainDocument is the base terrain document: edits applied directly to
// the world, beneath every layer.
type TerrainDocument struct {
	baseDoc
	Store *terrain.Store
}

// SaveToDats is a no-op for terrain documents. Terrain reaches the archive
// through the export compositor, which resolves layers first; writing here
// would bypass conflict resolution.
func (d *TerrainDocument) SaveToDats(store dat.Store, iteration int32) bool {
	return true
}

func (d *TerrainDocument) encode() ([]byte, error)  { return encodeStore(d.Store) }
func (d *TerrainDocument) decode(data []byte) error { return decodeStore(d.Store, data) }

// LayerDocument backs one leaf layer of the layer tree.
type LayerDocument struct {
	baseDoc
	Store *terrain.Store
}

// SaveToDats is a no-op for layer documents, for the same reason as
// TerrainDocument.
func (d *LayerDocument) SaveToDats(store dat.Store, iteration int32) bool {
	return true
}

func (d *LayerDocument) encode() ([]byte, error)  { return encodeStore(d.Store) }
func (d *LayerDocument) decode(data []byte) error { return decodeStore(d.Store, data) }

// Sparse store persistence format: u32 landblock count, then per
// landblock {key u16, vertex count u16, {index u8, value u32}...};
// then the same shape for field masks with u8 mask values.

func encodeStore(s *terrain.Store) ([]byte, error) {
	buf := new(bytes.Buffer)

	writeSection := func(write func(key terrain.LandblockKey) error, keys []terrain.LandblockKey) error {
		binary.Write(buf, binary.LittleEndian, uint32(len(keys)))
		for _, key := range keys {
			if err := write(key); err != nil {
				return err
			}
		}
		return nil
	}

	lbKeys := sortedKeys(s.Landblocks)
	err := writeSection(func(key terrain.LandblockKey) error {
		verts := s.Landblocks[key]
		binary.Write(buf, binary.LittleEndian, uint16(key))
		binary.Write(buf, binary.LittleEndian, uint16(len(verts)))
		for _, index := range sortedIndexes(verts) {
			buf.WriteByte(uint8(index))
			binary.Write(buf, binary.LittleEndian, verts[index])
		}
		return nil
	}, lbKeys)
	if err != nil {
		return nil, err
	}

	maskKeys := make([]terrain.LandblockKey, 0, len(s.FieldMasks))
	for key := range s.FieldMasks {
		maskKeys = append(maskKeys, key)
	}
	sort.Slice(maskKeys, func(i, j int) bool { return maskKeys[i] < maskKeys[j] })

	err = writeSection(func(key terrain.LandblockKey) error {
		masks := s.FieldMasks[key]
		binary.Write(buf, binary.LittleEndian, uint16(key))
		binary.Write(buf, binary.LittleEndian, uint16(len(masks)))
		indexes := make([]int, 0, len(masks))
		for index := range masks {
			indexes = append(indexes, index)
		}
		sort.Ints(indexes)
		for _, index := range indexes {
			buf.WriteByte(uint8(index))
			buf.WriteByte(uint8(masks[index]))
		}
		return nil
	}, maskKeys)
	if err != nil {
		return nil, err
	}

	return buf.Bytes(), nil
}

func decodeStore(s *terrain.Store, data []byte) error {
	r := bytes.NewReader(data)

	var lbCount uint32
	if err := binary.Read(r, binary.LittleEndian, &lbCount); err != nil {
		return fmt.Errorf("reading landblock count: %w", err)
	}
	for i := uint32(0); i < lbCount; i++ {
		var key, n uint16
		if err := binary.Read(r, binary.LittleEndian, &key); err != nil {
			return fmt.Errorf("reading landblock key: %w", err)
		}
		if err := binary.Read(r, binary.LittleEndian, &n); err != nil {
			return fmt.Errorf("reading vertex count: %w", err)
		}
		for j := uint16(0); j < n; j++ {
			var index uint8
			var value uint32
			if err := binary.Read(r, binary.LittleEndian, &index); err != nil {
				return fmt.Errorf("reading vertex index: %w", err)
			}
			if err := binary.Read(r, binary.LittleEndian, &value); err != nil {
				return fmt.Errorf("reading vertex value: %w", err)
			}
			s.Set(terrain.LandblockKey(key), int(index), value)
		}
	}

	var maskCount uint32
	if err := binary.Read(r, binary.LittleEndian, &maskCount); err != nil {
		return fmt.Errorf("reading mask landblock count: %w", err)
	}
	for i := uint32(0); i < maskCount; i++ {
		var key, n uint16
		if err := binary.Read(r, binary.LittleEndian, &key); err != nil {
			return fmt.Errorf("reading mask landblock key: %w", err)
		}
		if err := binary.Read(r, binary.LittleEndian, &n); err != nil {
			return fmt.Errorf("reading mask count: %w", err)
		}
		for j := uint16(0); j < n; j++ {
			var index, mask uint8
			if err := binary.Read(r, binary.LittleEndian, &index); err != nil {
				return fmt.Errorf("reading mask index: %w", err)
			}
			if err := binary.Read(r, binary.LittleEndian, &mask); err != nil {
				return fmt.Errorf("reading mask value: %w", err)
			}
			s.SetMask(terrain.LandblockKey(key), int(index), terrain.FieldMask(mask))
		}
	}

	return nil
}

func sortedKeys(m map[terrain.LandblockKey]map[int]uint32) []terrain.LandblockKey {
	keys := make([]terrain.LandblockKey, 0, len(m))
	for key := range m {
		keys = append(keys, key)
	}
	sort.Slice(keys, func(i, j int) bool { return keys[i] < keys[j] })
	return keys
}

func sortedIndexes(m map[int]uint32) []int {
	indexes := make([]int, 0, len(m))
	for index := range m {
		indexes = append(indexes, index)
	}
	sort.Ints(indexes)
	return indexes
}
