package snapshot

import (
	"encoding/binary"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/go-forensics/apfs/internal/types"
)

func TestDecodeMetadata(t *testing.T) {
	endian := binary.LittleEndian
	name := "before-upgrade"

	key := make([]byte, 8)
	xid := types.XidT(77)
	endian.PutUint64(key[0:8], (uint64(xid)&types.ObjIdMask)|(uint64(types.JObjTypeSnapMetadata)<<types.ObjTypeShift))

	value := make([]byte, 50+len(name)+1)
	endian.PutUint64(value[0:8], 501)   // extentref tree oid
	endian.PutUint64(value[8:16], 502)  // sblock oid
	endian.PutUint64(value[16:24], 1700000000000000000)
	endian.PutUint64(value[24:32], 1700000001000000000)
	endian.PutUint64(value[32:40], 16) // inum
	endian.PutUint32(value[40:44], 1)  // extentref tree type
	endian.PutUint32(value[44:48], uint32(types.SnapMetaPendingDataless))
	endian.PutUint16(value[48:50], uint16(len(name)+1))
	copy(value[50:], name)

	meta, err := DecodeMetadata(key, value, endian)
	require.NoError(t, err)
	assert.Equal(t, xid, meta.Xid)
	assert.Equal(t, types.OidT(501), meta.ExtentrefTreeOid)
	assert.Equal(t, types.OidT(502), meta.SblockOid)
	assert.Equal(t, uint64(16), meta.Inum)
	assert.Equal(t, name, meta.Name)
	assert.True(t, meta.HasFlag(types.SnapMetaPendingDataless))
	assert.False(t, meta.HasFlag(types.SnapMetaMergeInProgress))
}
