package fstree

import (
	"encoding/binary"

	"github.com/go-forensics/apfs/internal/apfserrors"
	"github.com/go-forensics/apfs/internal/btree"
	"github.com/go-forensics/apfs/internal/types"
)

// Inode is a decoded j_inode_val_t plus the object identifier its key
// carried.
type Inode struct {
	ObjectID uint64
	Value    types.JInodeValT
}

// InodeComparator orders records by the j_key_t header alone: an inode
// record's key is nothing but that header, so an exact match identifies
// the inode with the given object identifier.
func InodeComparator(endian binary.ByteOrder, objectID uint64) btree.Comparator {
	return func(key []byte) int {
		return compareHeader(key, endian, objectID, types.JObjTypeInode)
	}
}

// DecodeInode parses an inode record's key and value.
func DecodeInode(key, value []byte, endian binary.ByteOrder) (Inode, error) {
	hdr, err := DecodeHeader(key, endian)
	if err != nil {
		return Inode{}, err
	}
	if len(value) < 92 {
		return Inode{}, apfserrors.New(apfserrors.Corruption, "fstree.DecodeInode", nil)
	}

	v := types.JInodeValT{
		ParentId:               endian.Uint64(value[0:8]),
		PrivateId:               endian.Uint64(value[8:16]),
		CreateTime:             endian.Uint64(value[16:24]),
		ModTime:                endian.Uint64(value[24:32]),
		ChangeTime:             endian.Uint64(value[32:40]),
		AccessTime:             endian.Uint64(value[40:48]),
		InternalFlags:          endian.Uint64(value[48:56]),
		NchildrenOrNlink:       int32(endian.Uint32(value[56:60])),
		DefaultProtectionClass: types.CpKeyClassT(endian.Uint32(value[60:64])),
		WriteGenerationCounter: endian.Uint32(value[64:68]),
		BsdFlags:               endian.Uint32(value[68:72]),
		Owner:                  types.UidT(endian.Uint32(value[72:76])),
		Group:                  types.GidT(endian.Uint32(value[76:80])),
		Mode:                   types.Mode(endian.Uint16(value[80:82])),
		Pad1:                   endian.Uint16(value[82:84]),
		UncompressedSize:       endian.Uint64(value[84:92]),
	}
	if len(value) > 92 {
		// The remainder is the inode's packed extended-field stream
		// (xf_blob_t), present whenever extended fields are attached.
		v.XFields = value[92:]
	}

	return Inode{ObjectID: hdr.ObjectID, Value: v}, nil
}

// IsDirectory reports whether the inode's mode bits mark it a directory.
func (i Inode) IsDirectory() bool {
	return i.Value.Mode&types.ModeIFMT == types.ModeIFDIR
}

// IsSymlink reports whether the inode's mode bits mark it a symbolic link.
func (i Inode) IsSymlink() bool {
	return i.Value.Mode&types.ModeIFMT == types.ModeIFLNK
}

// IsRegular reports whether the inode's mode bits mark it a regular file.
func (i Inode) IsRegular() bool {
	return i.Value.Mode&types.ModeIFMT == types.ModeIFREG
}

// HasUncompressedSize reports whether UncompressedSize holds a meaningful
// value (only set alongside INODE_HAS_UNCOMPRESSED_SIZE).
func (i Inode) HasUncompressedSize() bool {
	return i.Value.InternalFlags&uint64(types.InodeHasUncompressedSize) != 0
}

// ExtendedFields decodes the inode's trailing xf_blob_t, if any.
func (i Inode) ExtendedFields() ([]ExtendedField, error) {
	return decodeExtendedFields(i.Value.XFields)
}

// DataStreamSize reports the default data stream's logical size, decoded
// from the inode's INO_EXT_TYPE_DSTREAM extended field. A regular file
// with no such field (an empty file) reports (0, false).
func (i Inode) DataStreamSize(endian binary.ByteOrder) (uint64, bool, error) {
	fields, err := i.ExtendedFields()
	if err != nil {
		return 0, false, err
	}
	for _, f := range fields {
		if f.Type != types.InoExtTypeDstream {
			continue
		}
		ds, err := DecodeDstream(f.Data, endian)
		if err != nil {
			return 0, false, err
		}
		return ds.Size, true, nil
	}
	return 0, false, nil
}
