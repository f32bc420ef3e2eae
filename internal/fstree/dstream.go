package fstree

import (
	"encoding/binary"

	"github.com/go-forensics/apfs/internal/apfserrors"
	"github.com/go-forensics/apfs/internal/types"
)

// DecodeDstream parses a j_dstream_t: the size/allocation/encryption
// summary of a data stream, embedded in an inode's INO_EXT_TYPE_DSTREAM
// extended field or an xattr's data-stream reference.
func DecodeDstream(data []byte, endian binary.ByteOrder) (types.JDstreamT, error) {
	if len(data) < 40 {
		return types.JDstreamT{}, apfserrors.New(apfserrors.Corruption, "fstree.DecodeDstream", nil)
	}
	return types.JDstreamT{
		Size:              endian.Uint64(data[0:8]),
		AllocedSize:       endian.Uint64(data[8:16]),
		DefaultCryptoId:   endian.Uint64(data[16:24]),
		TotalBytesWritten: endian.Uint64(data[24:32]),
		TotalBytesRead:    endian.Uint64(data[32:40]),
	}, nil
}
