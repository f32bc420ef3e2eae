package container

import (
	"encoding/binary"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/go-forensics/apfs/internal/types"
)

func buildVolumeBlock(endian binary.ByteOrder, name string, incompat uint64, rootTreeOid, omapOid uint64) []byte {
	data := make([]byte, ApfsSuperblockSize)
	endian.PutUint32(data[32:36], types.ApfsMagic)
	endian.PutUint64(data[56:64], incompat) // ApfsIncompatibleFeatures
	endian.PutUint64(data[128:136], omapOid)
	endian.PutUint64(data[136:144], rootTreeOid)
	copy(data[704:704+len(name)], name)
	return data
}

func TestDecodeVolumeSuperblock(t *testing.T) {
	endian := binary.LittleEndian
	data := buildVolumeBlock(endian, "TestVol", types.ApfsIncompatCaseInsensitive, 1025, 2048)

	sb, err := DecodeVolumeSuperblock(data, endian)
	require.NoError(t, err)
	assert.Equal(t, types.OidT(1025), sb.ApfsRootTreeOid)
	assert.Equal(t, types.OidT(2048), sb.ApfsOmapOid)

	v := Volume{Superblock: sb}
	assert.Equal(t, "TestVol", v.Name())
	assert.True(t, v.CaseInsensitive())
	assert.True(t, v.HashedDirectoryKeys())
	assert.False(t, v.Sealed())
}

func TestDecodeVolumeSuperblockRejectsBadMagic(t *testing.T) {
	endian := binary.LittleEndian
	data := make([]byte, ApfsSuperblockSize)
	endian.PutUint32(data[32:36], 0xdeadbeef)

	_, err := DecodeVolumeSuperblock(data, endian)
	assert.Error(t, err)
}
