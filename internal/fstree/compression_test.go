package fstree

import (
	"encoding/binary"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/go-forensics/apfs/internal/types"
)

func TestDecodeCompressionHeaderValid(t *testing.T) {
	data := make([]byte, 16)
	binary.LittleEndian.PutUint32(data[0:4], types.CompressionSignature)
	binary.LittleEndian.PutUint32(data[4:8], uint32(types.CompressionMethodLzfse))
	binary.LittleEndian.PutUint64(data[8:16], 65536)

	hdr, err := DecodeCompressionHeader(data, binary.LittleEndian)
	require.NoError(t, err)
	assert.Equal(t, types.CompressionMethodLzfse, hdr.Method)
	assert.Equal(t, uint64(65536), hdr.UncompressedSize)
	assert.True(t, hdr.IsRecognizedMethod())
}

func TestDecodeCompressionHeaderRejectsBadSignature(t *testing.T) {
	data := make([]byte, 16)
	binary.LittleEndian.PutUint32(data[0:4], 0xdeadbeef)

	_, err := DecodeCompressionHeader(data, binary.LittleEndian)
	assert.Error(t, err)
}
