// Package stamp implements the ACSTAMP format: a serialized, reusable
// rectangular capture of terrain (and the static objects standing on it)
// for copy/paste between world locations.
package stamp

import (
	"bytes"
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/trevis/WorldBuilder-ACME-Edition-sub004/internal/document"
	"github.com/trevis/WorldBuilder-ACME-Edition-sub004/internal/terrain"
	"github.com/trevis/WorldBuilder-ACME-Edition-sub004/pkg/geom"
)

const (
	stampMagic   = "ACSTAMP"
	stampVersion = 1

	// maxStampEdge caps a stamp side. Stamps far wider than a landblock
	// cannot be pasted anyway, and the cap keeps a corrupt length field
	// from driving huge allocations in Read.
	maxStampEdge = 255
)

// Stamp format errors.
var (
	ErrInvalidStampMagic       = errors.New("invalid stamp magic: expected 'ACSTAMP'")
	ErrUnsupportedStampVersion = errors.New("unsupported stamp version")
	ErrTruncatedStampData      = errors.New("truncated stamp data")
	ErrStampTooLarge           = errors.New("stamp larger than one landblock")
)

// Stamp is a rectangular terrain capture. Heights and TerrainTypes are
// row-major, Width*Height elements each; object origins are relative to
// the capture origin so a paste translates them.
type Stamp struct {
	Name         string
	Description  string
	Created      time.Time
	Width        uint16
	Height       uint16
	Origin       geom.Vec2
	SourceBlock  terrain.LandblockKey
	Heights      []byte
	TerrainTypes []uint16
	Objects      []document.StaticObject
}

// IsValid reports whether the dimensions agree with the array lengths.
func (s *Stamp) IsValid() bool {
	n := int(s.Width) * int(s.Height)
	return s.Width > 0 && s.Height > 0 &&
		len(s.Heights) == n && len(s.TerrainTypes) == n
}

// Write encodes the stamp in on-disk form.
func (s *Stamp) Write(w io.Writer) error {
	buf := new(bytes.Buffer)
	buf.WriteString(stampMagic)
	buf.WriteByte(stampVersion)

	writeString(buf, s.Name)
	writeString(buf, s.Description)
	binary.Write(buf, binary.LittleEndian, s.Created.Unix())
	binary.Write(buf, binary.LittleEndian, s.Width)
	binary.Write(buf, binary.LittleEndian, s.Height)
	binary.Write(buf, binary.LittleEndian, s.Origin.X)
	binary.Write(buf, binary.LittleEndian, s.Origin.Y)
	binary.Write(buf, binary.LittleEndian, uint16(s.SourceBlock))

	binary.Write(buf, binary.LittleEndian, uint32(len(s.Heights)))
	buf.Write(s.Heights)
	binary.Write(buf, binary.LittleEndian, uint32(len(s.TerrainTypes)))
	for _, t := range s.TerrainTypes {
		binary.Write(buf, binary.LittleEndian, t)
	}

	binary.Write(buf, binary.LittleEndian, uint32(len(s.Objects)))
	for _, obj := range s.Objects {
		if err := obj.Encode(buf); err != nil {
			return err
		}
	}

	_, err := w.Write(buf.Bytes())
	return err
}

// Save writes the stamp to a file.
func (s *Stamp) Save(path string) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("creating stamp file: %w", err)
	}
	defer f.Close()
	return s.Write(f)
}

// Read decodes a stamp. Mismatched magic or version yields no result and
// a sentinel error; the caller treats that as "not a stamp", never a fault.
func Read(r io.Reader) (*Stamp, error) {
	magic := make([]byte, len(stampMagic))
	if _, err := io.ReadFull(r, magic); err != nil {
		return nil, fmt.Errorf("%w: magic", ErrTruncatedStampData)
	}
	if string(magic) != stampMagic {
		return nil, ErrInvalidStampMagic
	}

	var version [1]byte
	if _, err := io.ReadFull(r, version[:]); err != nil {
		return nil, fmt.Errorf("%w: version", ErrTruncatedStampData)
	}
	if version[0] != stampVersion {
		return nil, fmt.Errorf("%w: %d", ErrUnsupportedStampVersion, version[0])
	}

	s := &Stamp{}
	var err error
	if s.Name, err = readString(r); err != nil {
		return nil, fmt.Errorf("%w: name", ErrTruncatedStampData)
	}
	if s.Description, err = readString(r); err != nil {
		return nil, fmt.Errorf("%w: description", ErrTruncatedStampData)
	}

	var created int64
	var source uint16
	fields := []any{&created, &s.Width, &s.Height, &s.Origin.X, &s.Origin.Y, &source}
	for _, f := range fields {
		if err := binary.Read(r, binary.LittleEndian, f); err != nil {
			return nil, fmt.Errorf("%w: header fields", ErrTruncatedStampData)
		}
	}
	s.Created = time.Unix(created, 0).UTC()
	s.SourceBlock = terrain.LandblockKey(source)

	if s.Width == 0 || s.Height == 0 || s.Width > maxStampEdge || s.Height > maxStampEdge {
		return nil, fmt.Errorf("%w: %dx%d", ErrStampTooLarge, s.Width, s.Height)
	}
	// The array lengths are redundant with the dimensions; anything else
	// means a corrupt file, and checking before allocating keeps a bogus
	// length from being trusted.
	want := uint32(s.Width) * uint32(s.Height)

	var heightLen uint32
	if err := binary.Read(r, binary.LittleEndian, &heightLen); err != nil {
		return nil, fmt.Errorf("%w: height array length", ErrTruncatedStampData)
	}
	if heightLen != want {
		return nil, fmt.Errorf("%w: height array length %d, want %d", ErrTruncatedStampData, heightLen, want)
	}
	s.Heights = make([]byte, heightLen)
	if _, err := io.ReadFull(r, s.Heights); err != nil {
		return nil, fmt.Errorf("%w: height array", ErrTruncatedStampData)
	}

	var typeLen uint32
	if err := binary.Read(r, binary.LittleEndian, &typeLen); err != nil {
		return nil, fmt.Errorf("%w: type array length", ErrTruncatedStampData)
	}
	if typeLen != want {
		return nil, fmt.Errorf("%w: type array length %d, want %d", ErrTruncatedStampData, typeLen, want)
	}
	s.TerrainTypes = make([]uint16, typeLen)
	for i := range s.TerrainTypes {
		if err := binary.Read(r, binary.LittleEndian, &s.TerrainTypes[i]); err != nil {
			return nil, fmt.Errorf("%w: type array", ErrTruncatedStampData)
		}
	}

	var objCount uint32
	if err := binary.Read(r, binary.LittleEndian, &objCount); err != nil {
		return nil, fmt.Errorf("%w: object count", ErrTruncatedStampData)
	}
	for i := uint32(0); i < objCount; i++ {
		obj, err := document.DecodeObject(r)
		if err != nil {
			return nil, fmt.Errorf("object %d: %w", i, err)
		}
		s.Objects = append(s.Objects, obj)
	}

	return s, nil
}

// Load reads a stamp from a file.
func Load(path string) (*Stamp, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening stamp file: %w", err)
	}
	defer f.Close()
	return Read(f)
}

func writeString(buf *bytes.Buffer, s string) {
	binary.Write(buf, binary.LittleEndian, uint16(len(s)))
	buf.WriteString(s)
}

func readString(r io.Reader) (string, error) {
	var n uint16
	if err := binary.Read(r, binary.LittleEndian, &n); err != nil {
		return "", err
	}
	b := make([]byte, n)
	if _, err := io.ReadFull(r, b); err != nil {
		return "", err
	}
	return string(b), nil
}
