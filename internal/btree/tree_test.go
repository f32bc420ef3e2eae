package btree

import (
	"encoding/binary"
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/go-forensics/apfs/internal/blockio"
	"github.com/go-forensics/apfs/internal/types"
)

func keyCompare(target uint64) Comparator {
	return func(key []byte) int {
		k := binary.LittleEndian.Uint64(key)
		switch {
		case k < target:
			return -1
		case k > target:
			return 1
		default:
			return 0
		}
	}
}

func newSingleNodeReader(t *testing.T, node []byte, blockSize uint32) blockio.Reader {
	t.Helper()
	f, err := os.CreateTemp(t.TempDir(), "btree-*.img")
	require.NoError(t, err)
	t.Cleanup(func() { f.Close() })

	padded := make([]byte, blockSize)
	copy(padded, node)
	_, err = f.Write(padded)
	require.NoError(t, err)
	_, err = f.Seek(0, 0)
	require.NoError(t, err)

	r, err := blockio.NewFileReader(f, blockSize)
	require.NoError(t, err)
	return r
}

func identityResolver(oid types.OidT) (types.Paddr, error) {
	return types.Paddr(oid), nil
}

func TestTreeLookupFindsExactKey(t *testing.T) {
	node := buildLeafNode(binary.LittleEndian, [][2]uint64{{1, 100}, {5, 500}, {9, 900}})
	r := newSingleNodeReader(t, node, 4096)

	tree := New(Config{
		Reader:  r,
		Resolve: identityResolver,
		KeySize: 8,
		ValSize: 8,
	})

	entry, ok, err := tree.Lookup(0, keyCompare(5))
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, uint64(500), binary.LittleEndian.Uint64(entry.Value))
}

func TestTreeLookupMissingKeyReturnsNotFound(t *testing.T) {
	node := buildLeafNode(binary.LittleEndian, [][2]uint64{{1, 100}, {5, 500}})
	r := newSingleNodeReader(t, node, 4096)

	tree := New(Config{Reader: r, Resolve: identityResolver, KeySize: 8, ValSize: 8})

	entry, ok, err := tree.Lookup(0, keyCompare(3))
	require.NoError(t, err)
	assert.False(t, ok)
	assert.Equal(t, Entry{}, entry)
}

func TestTreeEachVisitsEveryLeafEntryInOrder(t *testing.T) {
	node := buildLeafNode(binary.LittleEndian, [][2]uint64{{1, 100}, {2, 200}, {3, 300}})
	r := newSingleNodeReader(t, node, 4096)

	tree := New(Config{Reader: r, Resolve: identityResolver, KeySize: 8, ValSize: 8})

	var keys []uint64
	err := tree.Each(0, func(e Entry) bool {
		keys = append(keys, binary.LittleEndian.Uint64(e.Key))
		return true
	})
	require.NoError(t, err)
	assert.Equal(t, []uint64{1, 2, 3}, keys)
}

func TestTreeLookupUsesNodeCache(t *testing.T) {
	node := buildLeafNode(binary.LittleEndian, [][2]uint64{{1, 100}})
	r := newSingleNodeReader(t, node, 4096)

	cache := NewNodeCache(10)
	tree := New(Config{Reader: r, Resolve: identityResolver, KeySize: 8, ValSize: 8, Cache: cache})

	_, _, err := tree.Lookup(0, keyCompare(1))
	require.NoError(t, err)
	_, _, err = tree.Lookup(0, keyCompare(1))
	require.NoError(t, err)

	hits, _, _ := cache.Stats()
	assert.Equal(t, int64(1), hits)
}
