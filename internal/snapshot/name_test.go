package snapshot

import (
	"encoding/binary"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/go-forensics/apfs/internal/types"
)

func TestDecodeName(t *testing.T) {
	endian := binary.LittleEndian
	name := "before-upgrade"

	key := make([]byte, 10+len(name)+1)
	endian.PutUint64(key[0:8], (^uint64(0)&types.ObjIdMask)|(uint64(types.JObjTypeSnapName)<<types.ObjTypeShift))
	endian.PutUint16(key[8:10], uint16(len(name)+1))
	copy(key[10:], name)

	value := make([]byte, 8)
	endian.PutUint64(value[0:8], 77)

	n, err := DecodeName(key, value, endian)
	require.NoError(t, err)
	assert.Equal(t, name, n.Name)
	assert.Equal(t, types.XidT(77), n.SnapXid)
}

func TestNameComparatorOrdersByName(t *testing.T) {
	endian := binary.LittleEndian
	cmp := NameComparator(endian, "b")

	makeKey := func(name string) []byte {
		key := make([]byte, 10+len(name)+1)
		endian.PutUint64(key[0:8], (^uint64(0)&types.ObjIdMask)|(uint64(types.JObjTypeSnapName)<<types.ObjTypeShift))
		endian.PutUint16(key[8:10], uint16(len(name)+1))
		copy(key[10:], name)
		return key
	}

	assert.Negative(t, cmp(makeKey("a")))
	assert.Zero(t, cmp(makeKey("b")))
	assert.Positive(t, cmp(makeKey("c")))
}
