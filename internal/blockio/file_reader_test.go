package blockio

import (
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/go-forensics/apfs/internal/types"
)

func writeFixture(t *testing.T, blockSize uint32, blocks int) *os.File {
	t.Helper()

	f, err := os.CreateTemp(t.TempDir(), "blockio-*.img")
	require.NoError(t, err)
	t.Cleanup(func() { f.Close() })

	for b := 0; b < blocks; b++ {
		buf := make([]byte, blockSize)
		for i := range buf {
			buf[i] = byte(b)
		}
		_, err := f.Write(buf)
		require.NoError(t, err)
	}
	_, err = f.Seek(0, 0)
	require.NoError(t, err)
	return f
}

func TestFileReaderReadBlock(t *testing.T) {
	f := writeFixture(t, 4096, 4)

	r, err := NewFileReader(f, 4096)
	require.NoError(t, err)

	assert.Equal(t, uint32(4096), r.BlockSize())
	assert.Equal(t, uint64(4), r.TotalBlocks())
	assert.Equal(t, uint64(4*4096), r.TotalSize())

	block, err := r.ReadBlock(2)
	require.NoError(t, err)
	assert.Len(t, block, 4096)
	assert.Equal(t, byte(2), block[0])

	_, err = r.ReadBlock(4)
	assert.Error(t, err)
}

func TestFileReaderCacheHitReturnsCopy(t *testing.T) {
	f := writeFixture(t, 512, 2)

	r, err := NewFileReader(f, 512)
	require.NoError(t, err)

	first, err := r.ReadBlock(0)
	require.NoError(t, err)
	first[0] = 0xff

	second, err := r.ReadBlock(0)
	require.NoError(t, err)
	assert.NotEqual(t, byte(0xff), second[0], "cache must return a defensive copy")

	hits, misses, _ := r.CacheStats()
	assert.Equal(t, int64(1), hits)
	assert.Equal(t, int64(1), misses)
}

func TestFileReaderReadBlockRange(t *testing.T) {
	f := writeFixture(t, 256, 5)

	r, err := NewFileReader(f, 256)
	require.NoError(t, err)

	data, err := r.ReadBlockRange(1, 3)
	require.NoError(t, err)
	require.Len(t, data, 3*256)
	assert.Equal(t, byte(1), data[0])
	assert.Equal(t, byte(2), data[256])
	assert.Equal(t, byte(3), data[2*256])

	_, err = r.ReadBlockRange(3, 3)
	assert.Error(t, err, "range extends past end of device")
}

func TestFileReaderReadBytesSpansBlocks(t *testing.T) {
	f := writeFixture(t, 16, 4)

	r, err := NewFileReader(f, 16)
	require.NoError(t, err)

	data, err := r.ReadBytes(0, 12, 8)
	require.NoError(t, err)
	require.Len(t, data, 8)
	assert.Equal(t, byte(0), data[0])
	assert.Equal(t, byte(0), data[3])
	assert.Equal(t, byte(1), data[4])
}

func TestBlockCacheEviction(t *testing.T) {
	f := writeFixture(t, 1024, 8)

	r, err := NewFileReader(f, 1024, WithCacheBytes(2048))
	require.NoError(t, err)

	for i := types.Paddr(0); i < 8; i++ {
		_, err := r.ReadBlock(i)
		require.NoError(t, err)
	}

	_, _, evictions := r.CacheStats()
	assert.Greater(t, evictions, int64(0), "cache smaller than the dataset must evict")
}

func TestFileReaderIsValidAddress(t *testing.T) {
	f := writeFixture(t, 512, 3)

	r, err := NewFileReader(f, 512)
	require.NoError(t, err)

	assert.True(t, r.IsValidAddress(0))
	assert.True(t, r.IsValidAddress(2))
	assert.False(t, r.IsValidAddress(3))
	assert.False(t, r.IsValidAddress(-1))

	assert.True(t, r.CanReadRange(0, 3))
	assert.False(t, r.CanReadRange(1, 3))
}
