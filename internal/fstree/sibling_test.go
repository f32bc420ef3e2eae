package fstree

import (
	"encoding/binary"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/go-forensics/apfs/internal/types"
)

func TestDecodeSiblingLink(t *testing.T) {
	endian := binary.LittleEndian
	name := "alias.txt"

	key := make([]byte, 16)
	endian.PutUint64(key[0:8], (7&types.ObjIdMask)|(uint64(types.JObjTypeSiblingLink)<<types.ObjTypeShift))
	endian.PutUint64(key[8:16], 900)

	value := make([]byte, 10+len(name)+1)
	endian.PutUint64(value[0:8], 3)
	endian.PutUint16(value[8:10], uint16(len(name)+1))
	copy(value[10:], name)

	link, err := DecodeSiblingLink(key, value, endian)
	require.NoError(t, err)
	assert.Equal(t, uint64(7), link.InodeID)
	assert.Equal(t, uint64(900), link.SiblingID)
	assert.Equal(t, uint64(3), link.ParentID)
	assert.Equal(t, name, link.Name)
}

func TestDecodeSiblingMap(t *testing.T) {
	endian := binary.LittleEndian

	key := make([]byte, 8)
	endian.PutUint64(key[0:8], (900&types.ObjIdMask)|(uint64(types.JObjTypeSiblingMap)<<types.ObjTypeShift))

	value := make([]byte, 8)
	endian.PutUint64(value[0:8], 7)

	m, err := DecodeSiblingMap(key, value, endian)
	require.NoError(t, err)
	assert.Equal(t, uint64(900), m.SiblingID)
	assert.Equal(t, uint64(7), m.FileID)
}
