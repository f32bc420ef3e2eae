package snapshot

import (
	"encoding/binary"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/go-forensics/apfs/internal/objects"
	"github.com/go-forensics/apfs/internal/types"
)

func TestDecodeExt(t *testing.T) {
	endian := binary.LittleEndian
	data := make([]byte, objects.HeaderSize+40)

	body := data[objects.HeaderSize:]
	endian.PutUint32(body[0:4], 1)
	endian.PutUint32(body[4:8], uint32(types.SnapMetaMergeInProgress))
	endian.PutUint64(body[8:16], 88)
	uuid := types.UUID{1, 2, 3, 4}
	copy(body[16:32], uuid[:])
	endian.PutUint64(body[32:40], 0xdeadbeef)

	ext, err := DecodeExt(data, endian)
	require.NoError(t, err)
	assert.Equal(t, uint32(1), ext.Version)
	assert.Equal(t, uint32(types.SnapMetaMergeInProgress), ext.Flags)
	assert.Equal(t, types.XidT(88), ext.SnapXid)
	assert.Equal(t, uuid, ext.UUID)
	assert.Equal(t, uint64(0xdeadbeef), ext.Token)
}
