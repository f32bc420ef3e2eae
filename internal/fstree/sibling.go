package fstree

import (
	"encoding/binary"
	"strings"

	"github.com/go-forensics/apfs/internal/apfserrors"
	"github.com/go-forensics/apfs/internal/btree"
	"github.com/go-forensics/apfs/internal/types"
)

// SiblingLink is a decoded sibling-link record: one hard link's own name,
// bound to a shared inode via SiblingID.
type SiblingLink struct {
	InodeID   uint64
	SiblingID uint64
	ParentID  uint64
	Name      string
}

// SiblingLinkComparator orders sibling-link records by (inode ID, sibling
// ID).
func SiblingLinkComparator(endian binary.ByteOrder, inodeID, siblingID uint64) btree.Comparator {
	return func(key []byte) int {
		if c := compareHeader(key, endian, inodeID, types.JObjTypeSiblingLink); c != 0 {
			return c
		}
		if len(key) < 16 {
			return 1
		}
		got := endian.Uint64(key[8:16])
		switch {
		case got < siblingID:
			return -1
		case got > siblingID:
			return 1
		default:
			return 0
		}
	}
}

// DecodeSiblingLink parses a sibling-link record's key and value.
func DecodeSiblingLink(key, value []byte, endian binary.ByteOrder) (SiblingLink, error) {
	hdr, err := DecodeHeader(key, endian)
	if err != nil {
		return SiblingLink{}, err
	}
	if len(key) < 16 || len(value) < 10 {
		return SiblingLink{}, apfserrors.New(apfserrors.Corruption, "fstree.DecodeSiblingLink", nil)
	}

	siblingID := endian.Uint64(key[8:16])
	parentID := endian.Uint64(value[0:8])
	nameLen := int(endian.Uint16(value[8:10]))
	if 10+nameLen > len(value) {
		return SiblingLink{}, apfserrors.New(apfserrors.Corruption, "fstree.DecodeSiblingLink", nil)
	}
	name := strings.TrimRight(string(value[10:10+nameLen]), "\x00")

	return SiblingLink{InodeID: hdr.ObjectID, SiblingID: siblingID, ParentID: parentID, Name: name}, nil
}

// SiblingMap is a decoded sibling-map record: the inverse of SiblingLink,
// mapping a sibling identifier back to its shared inode.
type SiblingMap struct {
	SiblingID uint64
	FileID    uint64
}

// SiblingMapComparator orders sibling-map records by sibling ID alone.
func SiblingMapComparator(endian binary.ByteOrder, siblingID uint64) btree.Comparator {
	return func(key []byte) int {
		return compareHeader(key, endian, siblingID, types.JObjTypeSiblingMap)
	}
}

// DecodeSiblingMap parses a sibling-map record's key and value.
func DecodeSiblingMap(key, value []byte, endian binary.ByteOrder) (SiblingMap, error) {
	hdr, err := DecodeHeader(key, endian)
	if err != nil {
		return SiblingMap{}, err
	}
	if len(value) < 8 {
		return SiblingMap{}, apfserrors.New(apfserrors.Corruption, "fstree.DecodeSiblingMap", nil)
	}
	return SiblingMap{SiblingID: hdr.ObjectID, FileID: endian.Uint64(value[0:8])}, nil
}
