package fstree

import (
	"encoding/binary"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/go-forensics/apfs/internal/types"
)

func TestDecodeXattrEmbedded(t *testing.T) {
	endian := binary.LittleEndian
	name := "com.apple.fs.symlink"

	key := make([]byte, 10+len(name)+1)
	endian.PutUint64(key[0:8], (42&types.ObjIdMask)|(uint64(types.JObjTypeXattr)<<types.ObjTypeShift))
	endian.PutUint16(key[8:10], uint16(len(name)+1))
	copy(key[10:], name)

	payload := []byte("/target/path")
	value := make([]byte, 4+len(payload))
	endian.PutUint16(value[0:2], uint16(types.XattrDataEmbedded))
	endian.PutUint16(value[2:4], uint16(len(payload)))
	copy(value[4:], payload)

	x, err := DecodeXattr(key, value, endian)
	require.NoError(t, err)
	assert.Equal(t, uint64(42), x.ObjectID)
	assert.Equal(t, name, x.Name)
	assert.True(t, x.IsDataEmbedded())
	assert.Equal(t, payload, x.Data)
}
