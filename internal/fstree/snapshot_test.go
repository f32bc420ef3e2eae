package fstree

import (
	"encoding/binary"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/go-forensics/apfs/internal/types"
)

func TestTreeSnapshotMetadataLookup(t *testing.T) {
	endian := binary.LittleEndian
	name := "backup"

	key := encodeHeaderKey(endian, 55, types.JObjTypeSnapMetadata, nil)
	value := make([]byte, 50+len(name)+1)
	endian.PutUint64(value[0:8], 10)
	endian.PutUint64(value[8:16], 11)
	endian.PutUint16(value[48:50], uint16(len(name)+1))
	copy(value[50:], name)

	block := buildVariableLeaf(endian, [][2][]byte{{key, value}})
	tree := newTestTree(t, block)

	meta, ok, err := tree.SnapshotMetadata(types.XidT(55))
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, name, meta.Name)

	all, err := tree.ListSnapshots()
	require.NoError(t, err)
	require.Len(t, all, 1)
	assert.Equal(t, types.XidT(55), all[0].Xid)
}
