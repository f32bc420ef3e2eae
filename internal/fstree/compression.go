package fstree

import (
	"encoding/binary"

	"github.com/go-forensics/apfs/internal/apfserrors"
	"github.com/go-forensics/apfs/internal/types"
)

// CompressionHeader is the decoded header (com.apple.decmpfs) of a
// compressed file's extended attribute, identifying how to decompress the
// data that follows it.
type CompressionHeader struct {
	Method           types.CompressionMethodType
	UncompressedSize uint64
}

// IsRecognizedMethod reports whether Method is one this repository knows
// about; a compressed file using an unrecognized method can still be
// identified and reported, just not decompressed.
func (h CompressionHeader) IsRecognizedMethod() bool {
	switch h.Method {
	case types.CompressionMethodDeflate, types.CompressionMethodLzfse,
		types.CompressionMethodLzvn, types.CompressionMethodLz4, types.CompressionMethodZstd:
		return true
	default:
		return false
	}
}

// DecodeCompressionHeader parses the 16-byte decmpfs header at the start
// of data, validating the magic signature APFS/HFS+ compression uses.
func DecodeCompressionHeader(data []byte, endian binary.ByteOrder) (CompressionHeader, error) {
	if len(data) < 16 {
		return CompressionHeader{}, apfserrors.New(apfserrors.Corruption, "fstree.DecodeCompressionHeader", nil)
	}
	if endian.Uint32(data[0:4]) != types.CompressionSignature {
		return CompressionHeader{}, apfserrors.New(apfserrors.Unsupported, "fstree.DecodeCompressionHeader", nil)
	}
	return CompressionHeader{
		Method:           types.CompressionMethodType(endian.Uint32(data[4:8])),
		UncompressedSize: endian.Uint64(data[8:16]),
	}, nil
}
