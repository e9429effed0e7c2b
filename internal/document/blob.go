package document

import (
	"github.com/trevis/WorldBuilder-ACME-Edition-sub004/pkg/dat"
)

// PortalTableRecordID is the archive ID of the portal destination table.
const PortalTableRecordID = 0x0E00000F

// BlobDocument carries an opaque archive record the editor moves around
// without interpreting: dungeon layouts and the portal table. Edits arrive
// as whole replacement payloads from tooling that understands the format.
type BlobDocument struct {
	baseDoc
	recordID uint32
	kind     dat.Kind
	Payload  []byte
}

// RecordID returns the archive record this document maps to.
func (d *BlobDocument) RecordID() uint32 { return d.recordID }

// SetPayload replaces the record payload.
func (d *BlobDocument) SetPayload(data []byte) {
	d.Payload = append(d.Payload[:0], data...)
	d.MarkDirty()
}

// SaveToDats writes the payload into the archive. Documents that never
// received a payload have nothing to say and succeed trivially.
func (d *BlobDocument) SaveToDats(store dat.Store, iteration int32) bool {
	if len(d.Payload) == 0 {
		return true
	}
	return store.TrySave(&blobRecord{id: d.recordID, kind: d.kind, data: d.Payload}, iteration)
}

func (d *BlobDocument) encode() ([]byte, error) { return d.Payload, nil }

func (d *BlobDocument) decode(data []byte) error {
	d.Payload = append(d.Payload[:0], data...)
	return nil
}

// blobRecord adapts a raw payload to dat.Record.
type blobRecord struct {
	id   uint32
	kind dat.Kind
	data []byte
}

func (r *blobRecord) RecordID() uint32               { return r.id }
func (r *blobRecord) RecordKind() dat.Kind           { return r.kind }
func (r *blobRecord) MarshalRecord() ([]byte, error) { return r.data, nil }
func (r *blobRecord) UnmarshalRecord(data []byte) error {
	r.data = append(r.data[:0], data...)
	return nil
}
