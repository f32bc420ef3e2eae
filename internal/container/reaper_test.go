package container

import (
	"encoding/binary"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/go-forensics/apfs/internal/objects"
	"github.com/go-forensics/apfs/internal/types"
)

func buildReaperBlock(endian binary.ByteOrder, flags uint32, objType uint32, oid types.OidT) []byte {
	data := make([]byte, testBlockSize)
	endian.PutUint64(data[32:40], 7)           // NrNextReapId
	endian.PutUint64(data[40:48], 6)           // NrCompletedId
	endian.PutUint32(data[64:68], flags)       // NrFlags
	endian.PutUint32(data[72:76], objType)     // NrType
	endian.PutUint64(data[88:96], uint64(oid)) // NrOid

	checksum := objects.Fletcher64(data)
	copy(data[0:8], checksum[:])
	return data
}

func TestContainerReaperState(t *testing.T) {
	endian := binary.LittleEndian
	c := &Container{endian: endian}
	c.reader = stubReader{block: buildReaperBlock(endian, types.NrContinue, 3, 99)}
	c.superblock.NxReaperOid = 42

	info, ok, err := c.ReaperState()
	require.NoError(t, err)
	require.True(t, ok)
	assert.True(t, info.InProgress())
	assert.Equal(t, uint64(7), info.NextReapID)
	assert.Equal(t, types.OidT(99), info.ObjectOid)
}

func TestContainerReaperStateAbsent(t *testing.T) {
	c := &Container{}
	info, ok, err := c.ReaperState()
	require.NoError(t, err)
	assert.False(t, ok)
	assert.Equal(t, ReaperInfo{}, info)
}

// stubReader satisfies blockio.Reader with a single fixed block, enough for
// tests that exercise one ReadBlock call and nothing else.
type stubReader struct{ block []byte }

func (s stubReader) ReadBlock(types.Paddr) ([]byte, error) { return s.block, nil }
func (s stubReader) ReadBlockRange(types.Paddr, uint32) ([]byte, error) {
	return s.block, nil
}
func (s stubReader) ReadBytes(types.Paddr, uint32, uint32) ([]byte, error) {
	return s.block, nil
}
func (s stubReader) BlockSize() uint32                     { return testBlockSize }
func (s stubReader) TotalBlocks() uint64                   { return 1 }
func (s stubReader) TotalSize() uint64                     { return testBlockSize }
func (s stubReader) IsValidAddress(types.Paddr) bool       { return true }
func (s stubReader) CanReadRange(types.Paddr, uint32) bool { return true }
