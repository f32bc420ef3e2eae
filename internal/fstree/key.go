// Package fstree decodes the key/value records stored in an APFS volume's
// file-system B-tree: inodes, directory entries, extended attributes, data
// stream extents, and siblings. Every record shares the j_key_t header
// (object identifier + record type), and the tree itself is ordered first
// by that header and then by a type-specific trailing key, so every
// decoder here composes with internal/btree.Comparator the same way.
package fstree

import (
	"encoding/binary"

	"github.com/go-forensics/apfs/internal/apfserrors"
	"github.com/go-forensics/apfs/internal/types"
)

// Header is the decoded j_key_t every file-system record's key begins
// with: which object it belongs to, and what kind of record it is.
type Header struct {
	ObjectID uint64
	Type     types.JObjType
}

// DecodeHeader extracts the j_key_t packed at the start of a record's key.
func DecodeHeader(key []byte, endian binary.ByteOrder) (Header, error) {
	if len(key) < 8 {
		return Header{}, apfserrors.New(apfserrors.Corruption, "fstree.DecodeHeader", nil)
	}
	raw := endian.Uint64(key[0:8])
	return Header{
		ObjectID: raw & types.ObjIdMask,
		Type:     types.JObjType((raw & types.ObjTypeMask) >> types.ObjTypeShift),
	}, nil
}

// compareHeader orders a candidate key's j_key_t header against a target
// (object ID, record type) pair, the prefix every file-system B-tree
// record is ordered by before any type-specific trailing key.
//
// Despite ObjIdAndType packing the type into the high bits where it would
// dominate a plain 64-bit comparison, the file-system B-tree clusters all
// of one object's records (inode, xattrs, extents, directory entries)
// together: object identifier is the primary sort key and record type
// only breaks ties within the same object. So the two fields are compared
// separately here rather than as the raw packed value.
func compareHeader(key []byte, endian binary.ByteOrder, objectID uint64, kind types.JObjType) int {
	if len(key) < 8 {
		return 1
	}
	raw := endian.Uint64(key[0:8])
	gotID := raw & types.ObjIdMask
	switch {
	case gotID < objectID:
		return -1
	case gotID > objectID:
		return 1
	}

	gotType := types.JObjType((raw & types.ObjTypeMask) >> types.ObjTypeShift)
	switch {
	case gotType < kind:
		return -1
	case gotType > kind:
		return 1
	default:
		return 0
	}
}
