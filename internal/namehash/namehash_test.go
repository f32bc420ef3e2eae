package namehash

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/go-forensics/apfs/internal/types"
)

func TestHashUTF8FitsIn22Bits(t *testing.T) {
	h := HashUTF8("Documents", false)
	assert.LessOrEqual(t, h, uint32(0x3fffff))
}

func TestHashUTF8IsDeterministic(t *testing.T) {
	a := HashUTF8("résumé.pdf", false)
	b := HashUTF8("résumé.pdf", false)
	assert.Equal(t, a, b)
}

func TestHashUTF8CaseFoldingMatchesDifferentCase(t *testing.T) {
	lower := HashUTF8("readme.txt", true)
	upper := HashUTF8("README.TXT", true)
	assert.Equal(t, lower, upper)
}

func TestHashUTF8WithoutCaseFoldingDiffers(t *testing.T) {
	lower := HashUTF8("readme.txt", false)
	upper := HashUTF8("README.TXT", false)
	assert.NotEqual(t, lower, upper)
}

func TestPackUnpackRoundTrip(t *testing.T) {
	hash := HashUTF8("notes.md", false)
	packed := Pack(9, hash)

	gotLen, gotHash := Unpack(packed)
	assert.Equal(t, 9, gotLen)
	assert.Equal(t, hash, gotHash)
}

func TestJDrecHashMaskIsContiguous(t *testing.T) {
	// bits 0-9 (length) and bits 10-31 (hash) must partition the field
	// with no gap or overlap.
	assert.Equal(t, uint32(0), types.JDrecLenMask&types.JDrecHashMask)
	assert.Equal(t, uint32(0xffffffff), types.JDrecLenMask|types.JDrecHashMask)
}
