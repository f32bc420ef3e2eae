package fstree

import (
	"encoding/binary"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/go-forensics/apfs/internal/types"
)

func buildXfBlob(fields []ExtendedField) []byte {
	blob := make([]byte, 4)
	binary.LittleEndian.PutUint16(blob[0:2], uint16(len(fields)))

	var values []byte
	for _, f := range fields {
		entry := make([]byte, 4)
		entry[0] = f.Type
		entry[1] = f.Flags
		binary.LittleEndian.PutUint16(entry[2:4], uint16(len(f.Data)))
		blob = append(blob, entry...)
		values = append(values, f.Data...)
		for len(values)%8 != 0 {
			values = append(values, 0)
		}
	}
	blob = append(blob, values...)
	binary.LittleEndian.PutUint16(blob[2:4], uint16(len(blob)-4))
	return blob
}

func TestDecodeExtendedFieldsRoundTrip(t *testing.T) {
	want := []ExtendedField{
		{Type: types.InoExtTypeDocumentId, Flags: types.XfSystemField, Data: []byte{1, 2, 3, 4}},
		{Type: types.InoExtTypeName, Flags: types.XfUserField, Data: []byte("hardlink-name")},
	}
	blob := buildXfBlob(want)

	got, err := decodeExtendedFields(blob)
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, want[0].Type, got[0].Type)
	assert.Equal(t, want[0].Data, got[0].Data)
	assert.True(t, got[0].IsSystemField())
	assert.Equal(t, "hardlink-name", string(got[1].Data))
}

func TestDecodeExtendedFieldsEmptyBlob(t *testing.T) {
	got, err := decodeExtendedFields(nil)
	require.NoError(t, err)
	assert.Nil(t, got)
}
