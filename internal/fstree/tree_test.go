package fstree

import (
	"encoding/binary"
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/go-forensics/apfs/internal/blockio"
	"github.com/go-forensics/apfs/internal/btree"
	"github.com/go-forensics/apfs/internal/namehash"
	"github.com/go-forensics/apfs/internal/objects"
	"github.com/go-forensics/apfs/internal/types"
)

// buildVariableLeaf assembles a valid, checksummed variable-size-KV leaf
// node from already-encoded (key, value) byte pairs. Keys are packed
// forward from the key heap (which immediately follows the table of
// contents); values are packed backward from the end of the storage area,
// matching the real on-disk layout (this node carries no root footer, so
// the value area runs to the end of Data).
func buildVariableLeaf(endian binary.ByteOrder, pairs [][2][]byte) []byte {
	const headerSize = btree.HeaderSize
	const storageSize = 1024
	data := make([]byte, headerSize+storageSize)

	endian.PutUint16(data[32:34], types.BtnodeLeaf)
	endian.PutUint16(data[34:36], 0)
	endian.PutUint32(data[36:40], uint32(len(pairs)))

	tocStart := 0
	endian.PutUint16(data[40:42], uint16(tocStart))
	endian.PutUint16(data[42:44], uint16(len(pairs)*8))

	keyHeapStart := tocStart + len(pairs)*8
	valAreaEnd := storageSize

	keyCursor := 0  // forward offset, relative to keyHeapStart
	valFloor := valAreaEnd // next value is packed immediately below this

	for i, kv := range pairs {
		key, val := kv[0], kv[1]

		tocOff := headerSize + tocStart + i*8
		keyOff := keyCursor
		keyAbs := keyHeapStart + keyOff
		keyCursor += len(key)

		valAbs := valFloor - len(val)
		valOff := valAreaEnd - valAbs
		valFloor = valAbs

		endian.PutUint16(data[tocOff:tocOff+2], uint16(keyOff))
		endian.PutUint16(data[tocOff+2:tocOff+4], uint16(len(key)))
		endian.PutUint16(data[tocOff+4:tocOff+6], uint16(valOff))
		endian.PutUint16(data[tocOff+6:tocOff+8], uint16(len(val)))

		copy(data[headerSize+keyAbs:], key)
		copy(data[headerSize+valAbs:], val)
	}

	checksum := objects.Fletcher64(data)
	copy(data[0:8], checksum[:])
	return data
}

func encodeHeaderKey(endian binary.ByteOrder, objectID uint64, kind types.JObjType, trailing []byte) []byte {
	key := make([]byte, 8+len(trailing))
	endian.PutUint64(key[0:8], (objectID&types.ObjIdMask)|(uint64(kind)<<types.ObjTypeShift))
	copy(key[8:], trailing)
	return key
}

func newTestTree(t *testing.T, block []byte) *Tree {
	t.Helper()
	f, err := os.CreateTemp(t.TempDir(), "fstree-*.img")
	require.NoError(t, err)
	_, err = f.Write(block)
	require.NoError(t, err)

	reader, err := blockio.NewFileReader(f, uint32(len(block)))
	require.NoError(t, err)

	resolve := func(oid types.OidT) (types.Paddr, error) { return 0, nil }
	tree, err := Open(reader, resolve, types.OidT(1), binary.LittleEndian, true, nil, true, false)
	require.NoError(t, err)
	return tree
}

func TestTreeInodeLookup(t *testing.T) {
	endian := binary.LittleEndian

	inodeKey := encodeHeaderKey(endian, 16, types.JObjTypeInode, nil)
	inodeVal := make([]byte, 92)
	endian.PutUint64(inodeVal[0:8], 2)  // parent
	endian.PutUint64(inodeVal[8:16], 16) // private id
	endian.PutUint16(inodeVal[80:82], uint16(types.ModeIFDIR|0o755))

	block := buildVariableLeaf(endian, [][2][]byte{{inodeKey, inodeVal}})
	tree := newTestTree(t, block)

	inode, ok, err := tree.Inode(16)
	require.NoError(t, err)
	require.True(t, ok)
	assert.True(t, inode.IsDirectory())
	assert.Equal(t, uint64(2), inode.Value.ParentId)
}

func TestTreeDirEntryLookup(t *testing.T) {
	endian := binary.LittleEndian

	name := "notes.txt"
	hash := namehash.HashUTF8(name, false)
	packed := namehash.Pack(len(name)+1, hash)

	trailing := make([]byte, 4+len(name)+1)
	endian.PutUint32(trailing[0:4], packed)
	copy(trailing[4:], name)

	key := encodeHeaderKey(endian, 2, types.JObjTypeDirRec, trailing)
	value := make([]byte, 18)
	endian.PutUint64(value[0:8], 16) // file id
	endian.PutUint64(value[8:16], 123456)
	endian.PutUint16(value[16:18], uint16(types.DtReg))

	block := buildVariableLeaf(endian, [][2][]byte{{key, value}})
	tree := newTestTree(t, block)

	entry, ok, err := tree.DirEntry(2, name, false)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, uint64(16), entry.FileID)
	assert.Equal(t, name, entry.Name)
}

func TestTreeReadDirFiltersByParent(t *testing.T) {
	endian := binary.LittleEndian

	makeEntry := func(parent uint64, name string, fileID uint64) [2][]byte {
		hash := namehash.HashUTF8(name, false)
		packed := namehash.Pack(len(name)+1, hash)
		trailing := make([]byte, 4+len(name)+1)
		endian.PutUint32(trailing[0:4], packed)
		copy(trailing[4:], name)

		key := encodeHeaderKey(endian, parent, types.JObjTypeDirRec, trailing)
		value := make([]byte, 18)
		endian.PutUint64(value[0:8], fileID)
		return [2][]byte{key, value}
	}

	block := buildVariableLeaf(endian, [][2][]byte{
		makeEntry(2, "a.txt", 10),
		makeEntry(2, "b.txt", 11),
		makeEntry(99, "c.txt", 12),
	})
	tree := newTestTree(t, block)

	entries, err := tree.ReadDir(2)
	require.NoError(t, err)
	require.Len(t, entries, 2)
}

func TestTreeFileExtentsSortedByLogicalAddress(t *testing.T) {
	endian := binary.LittleEndian

	makeExtent := func(oid, logicalAddr, length, phys uint64) [2][]byte {
		trailing := make([]byte, 8)
		endian.PutUint64(trailing, logicalAddr)
		key := encodeHeaderKey(endian, oid, types.JObjTypeFileExtent, trailing)
		value := make([]byte, 24)
		endian.PutUint64(value[0:8], length)
		endian.PutUint64(value[8:16], phys)
		return [2][]byte{key, value}
	}

	block := buildVariableLeaf(endian, [][2][]byte{
		makeExtent(16, 4096, 4096, 200),
		makeExtent(16, 0, 4096, 100),
	})
	tree := newTestTree(t, block)

	extents, err := tree.FileExtents(16)
	require.NoError(t, err)
	require.Len(t, extents, 2)
	assert.Equal(t, uint64(0), extents[0].LogicalAddr)
	assert.Equal(t, uint64(4096), extents[1].LogicalAddr)
}
