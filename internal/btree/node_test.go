package btree

import (
	"encoding/binary"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/go-forensics/apfs/internal/objects"
	"github.com/go-forensics/apfs/internal/types"
)

// buildLeafNode assembles a valid, checksummed fixed-size-KV leaf node
// holding the given 8-byte-key/8-byte-value pairs, sorted by the caller.
// Key offsets in the table of contents are relative to the key heap (which
// immediately follows the table); value offsets are relative to the end of
// the node's storage area and count backward, matching the real on-disk
// layout.
func buildLeafNode(endian binary.ByteOrder, pairs [][2]uint64) []byte {
	const headerSize = HeaderSize
	const storageSize = 4096 - HeaderSize
	data := make([]byte, headerSize+storageSize)

	endian.PutUint16(data[32:34], types.BtnodeLeaf|types.BtnodeFixedKvSize)
	endian.PutUint16(data[34:36], 0) // level
	endian.PutUint32(data[36:40], uint32(len(pairs)))

	tocStart := 0
	tocLen := len(pairs) * 4
	endian.PutUint16(data[40:42], uint16(tocStart))
	endian.PutUint16(data[42:44], uint16(tocLen))

	keyHeapStart := tocStart + tocLen
	keyAreaSize := len(pairs) * 8
	valAreaEnd := storageSize // no footer on this (non-root) node

	for i, kv := range pairs {
		tocOff := headerSize + tocStart + i*4
		keyOff := i * 8 // relative to keyHeapStart

		keyAbs := keyHeapStart + keyOff
		valAbs := keyHeapStart + keyAreaSize + i*8 // packed right after the key heap
		valOff := valAreaEnd - valAbs

		endian.PutUint16(data[tocOff:tocOff+2], uint16(keyOff))
		endian.PutUint16(data[tocOff+2:tocOff+4], uint16(valOff))

		endian.PutUint64(data[headerSize+keyAbs:headerSize+keyAbs+8], kv[0])
		endian.PutUint64(data[headerSize+valAbs:headerSize+valAbs+8], kv[1])
	}

	checksum := objects.Fletcher64(data)
	copy(data[0:8], checksum[:])
	return data
}

func TestDecodeNodeLeaf(t *testing.T) {
	data := buildLeafNode(binary.LittleEndian, [][2]uint64{{1, 100}, {2, 200}, {3, 300}})

	node, err := DecodeNode(data, binary.LittleEndian, true)
	require.NoError(t, err)

	assert.True(t, node.IsLeaf())
	assert.False(t, node.IsRoot())
	assert.True(t, node.HasFixedKVSize())
	assert.Equal(t, uint32(3), node.KeyCount)
}

func TestDecodeNodeRejectsBadChecksum(t *testing.T) {
	data := buildLeafNode(binary.LittleEndian, [][2]uint64{{1, 100}})
	data[0] ^= 0xff // corrupt the stored checksum

	_, err := DecodeNode(data, binary.LittleEndian, true)
	assert.Error(t, err)
}

func TestDecodeNodeRejectsShortData(t *testing.T) {
	_, err := DecodeNode(make([]byte, 10), binary.LittleEndian, false)
	assert.Error(t, err)
}
