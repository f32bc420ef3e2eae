package container

import (
	"encoding/binary"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/go-forensics/apfs/internal/objects"
	"github.com/go-forensics/apfs/internal/types"
)

func buildSuperblockBlock(endian binary.ByteOrder, blockSize uint32, omapOid, fsOid0 uint64) []byte {
	data := make([]byte, 4096)
	endian.PutUint32(data[32:36], types.NxMagic)
	endian.PutUint32(data[36:40], blockSize)
	endian.PutUint64(data[40:48], 1000) // block count
	endian.PutUint32(data[180:184], uint32(types.NxMaxFileSystems))
	endian.PutUint64(data[160:168], omapOid) // NxOmapOid
	endian.PutUint64(data[184:192], fsOid0)  // NxFsOid[0]

	checksum := objects.Fletcher64(data)
	copy(data[0:8], checksum[:])
	return data
}

func TestDecodeSuperblock(t *testing.T) {
	endian := binary.LittleEndian
	block := buildSuperblockBlock(endian, 4096, 1024, 1025)

	sb, err := DecodeSuperblock(block, endian)
	require.NoError(t, err)
	assert.Equal(t, uint32(4096), sb.NxBlockSize)
	assert.Equal(t, uint64(1000), sb.NxBlockCount)
	assert.Equal(t, types.OidT(1024), sb.NxOmapOid)
	assert.Equal(t, types.OidT(1025), sb.NxFsOid[0])
}

func TestDecodeSuperblockRejectsBadMagic(t *testing.T) {
	endian := binary.LittleEndian
	block := make([]byte, NxSuperblockSize)
	endian.PutUint32(block[32:36], 0xdeadbeef)

	_, err := DecodeSuperblock(block, endian)
	assert.Error(t, err)
}
