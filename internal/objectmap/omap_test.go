package objectmap

import (
	"encoding/binary"
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/go-forensics/apfs/internal/blockio"
	"github.com/go-forensics/apfs/internal/objects"
	"github.com/go-forensics/apfs/internal/types"
)

const blockSize = 4096

func writeHeaderBlock(t *testing.T, f *os.File, treeOID types.OidT) {
	t.Helper()
	endian := binary.LittleEndian

	data := make([]byte, blockSize)
	endian.PutUint64(data[8:16], 2)  // header OOid
	endian.PutUint32(data[24:28], 0) // OType
	endian.PutUint32(data[32:36], 0) // OmFlags
	endian.PutUint32(data[36:40], 0) // OmSnapCount
	endian.PutUint64(data[48:56], uint64(treeOID))

	checksum := objects.Fletcher64(data)
	copy(data[0:8], checksum[:])

	_, err := f.WriteAt(data, 0)
	require.NoError(t, err)
}

// writeOmapLeaf writes a fixed-size-KV leaf node at block index 1 holding
// (oid, xid) -> paddr mappings. Key offsets are relative to the key heap
// (which immediately follows the table of contents); value offsets count
// backward from the end of the node's storage area, since this is not a
// root node and carries no trailing footer.
func writeOmapLeaf(t *testing.T, f *os.File, entries [][3]uint64) {
	t.Helper()
	endian := binary.LittleEndian

	data := make([]byte, blockSize)
	const header = 56
	storageSize := blockSize - header
	endian.PutUint16(data[32:34], types.BtnodeLeaf|types.BtnodeFixedKvSize)
	endian.PutUint32(data[36:40], uint32(len(entries)))
	endian.PutUint16(data[40:42], 0)
	endian.PutUint16(data[42:44], uint16(len(entries)*4))

	keyHeapStart := len(entries) * 4
	keyAreaSize := len(entries) * 16
	valAreaEnd := storageSize

	for i, e := range entries {
		tocOff := header + i*4
		keyOff := i * 16 // relative to keyHeapStart

		keyAbs := keyHeapStart + keyOff
		valAbs := keyHeapStart + keyAreaSize + i*16 // packed right after the key heap
		valOff := valAreaEnd - valAbs

		endian.PutUint16(data[tocOff:tocOff+2], uint16(keyOff))
		endian.PutUint16(data[tocOff+2:tocOff+4], uint16(valOff))

		endian.PutUint64(data[header+keyAbs:header+keyAbs+8], e[0])    // oid
		endian.PutUint64(data[header+keyAbs+8:header+keyAbs+16], e[1]) // xid

		endian.PutUint32(data[header+valAbs:header+valAbs+4], 0)  // flags
		endian.PutUint32(data[header+valAbs+4:header+valAbs+8], 1) // size
		endian.PutUint64(data[header+valAbs+8:header+valAbs+16], e[2])
	}

	checksum := objects.Fletcher64(data)
	copy(data[0:8], checksum[:])

	_, err := f.WriteAt(data, blockSize)
	require.NoError(t, err)
}

func newTestReader(t *testing.T) blockio.Reader {
	t.Helper()
	f, err := os.CreateTemp(t.TempDir(), "omap-*.img")
	require.NoError(t, err)
	t.Cleanup(func() { f.Close() })

	writeHeaderBlock(t, f, 1)
	writeOmapLeaf(t, f, [][3]uint64{{10, 5, 900}, {10, 20, 901}, {99, 1, 800}})

	_, err = f.WriteAt(make([]byte, blockSize), 2*blockSize-1)
	require.NoError(t, err)
	_, err = f.Seek(0, 0)
	require.NoError(t, err)

	r, err := blockio.NewFileReader(f, blockSize)
	require.NoError(t, err)
	return r
}

func TestMapLookupExactVersion(t *testing.T) {
	reader := newTestReader(t)

	m, err := Open(reader, 0, binary.LittleEndian, false, nil, false)
	require.NoError(t, err)
	assert.Equal(t, types.OidT(1), m.TreeOID())

	entry, ok, err := m.Lookup(1, 10, 5)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, types.Paddr(900), entry.Address)
}

func TestMapLookupFindsFloorVersion(t *testing.T) {
	reader := newTestReader(t)

	m, err := Open(reader, 0, binary.LittleEndian, false, nil, false)
	require.NoError(t, err)

	entry, ok, err := m.Lookup(1, 10, 15)
	require.NoError(t, err)
	require.True(t, ok, "xid 15 should resolve to the latest version at or before it (xid 5)")
	assert.Equal(t, types.Paddr(900), entry.Address)
}

func TestMapLookupMissingOIDReturnsNotFound(t *testing.T) {
	reader := newTestReader(t)

	m, err := Open(reader, 0, binary.LittleEndian, false, nil, false)
	require.NoError(t, err)

	entry, ok, err := m.Lookup(1, 42, 1)
	require.NoError(t, err)
	assert.False(t, ok)
	assert.Equal(t, Entry{}, entry)
}
