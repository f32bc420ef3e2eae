package fstree

import (
	"encoding/binary"

	"github.com/go-forensics/apfs/internal/apfserrors"
	"github.com/go-forensics/apfs/internal/types"
)

// ExtendedField is one entry of an inode or directory record's trailing
// xf_blob_t: a typed, flagged chunk of extra metadata (a document ID, a
// Finder info blob, an embedded data stream descriptor, and so on).
type ExtendedField struct {
	Type  uint8
	Flags uint8
	Data  []byte
}

// IsDataDependent reports whether this field's value depends on the file's
// data and must be dropped or refreshed if that data changes.
func (f ExtendedField) IsDataDependent() bool { return f.Flags&types.XfDataDependent != 0 }

// IsSystemField reports whether this field was added by APFS itself rather
// than a user-space program.
func (f ExtendedField) IsSystemField() bool { return f.Flags&types.XfSystemField != 0 }

// decodeExtendedFields walks a packed xf_blob_t: a 4-byte header
// (num_exts, used_data) followed by one x_field_t per entry and then the
// entries' data, each field padded out to an 8-byte boundary.
func decodeExtendedFields(blob []byte) ([]ExtendedField, error) {
	if len(blob) < 4 {
		return nil, nil
	}

	numExts := binary.LittleEndian.Uint16(blob[0:2])
	usedData := binary.LittleEndian.Uint16(blob[2:4])
	if numExts == 0 || usedData == 0 {
		return nil, nil
	}

	data := blob[4:]
	hdrEnd := int(numExts) * 4
	if hdrEnd > len(data) {
		return nil, apfserrors.New(apfserrors.Corruption, "fstree.decodeExtendedFields", nil)
	}
	offset := hdrEnd
	fields := make([]ExtendedField, 0, numExts)

	for i := 0; i < int(numExts); i++ {
		xType := data[i*4]
		xFlags := data[i*4+1]
		xSize := binary.LittleEndian.Uint16(data[i*4+2 : i*4+4])

		if offset+int(xSize) > len(data) {
			return nil, apfserrors.New(apfserrors.Corruption, "fstree.decodeExtendedFields", nil)
		}
		fieldData := data[offset : offset+int(xSize)]
		offset += (int(xSize) + 7) &^ 7

		fields = append(fields, ExtendedField{Type: xType, Flags: xFlags, Data: fieldData})
	}

	return fields, nil
}
