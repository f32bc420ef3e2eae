package snapshot

import (
	"bytes"
	"encoding/binary"
	"strings"

	"github.com/go-forensics/apfs/internal/apfserrors"
	"github.com/go-forensics/apfs/internal/btree"
	"github.com/go-forensics/apfs/internal/types"
)

// Name is a decoded snapshot-name record: the mapping from a snapshot's
// human-readable name to the transaction identifier of the last write it
// includes. Every such record shares the same key header object
// identifier (~0ULL); the B-tree sorts them by name instead.
type Name struct {
	Name   string
	SnapXid types.XidT
}

// NameComparator orders snapshot-name records by their fixed header
// (object identifier ~0ULL, type APFS_TYPE_SNAP_NAME) and then by name,
// matching the order the volume's file-system B-tree stores them in.
func NameComparator(endian binary.ByteOrder, name string) btree.Comparator {
	target := append([]byte(name), 0)
	return func(key []byte) int {
		if len(key) < 10 {
			return 1
		}
		raw := endian.Uint64(key[0:8])
		gotType := types.JObjType((raw & types.ObjTypeMask) >> types.ObjTypeShift)
		switch {
		case gotType < types.JObjTypeSnapName:
			return -1
		case gotType > types.JObjTypeSnapName:
			return 1
		}

		nameLen := int(endian.Uint16(key[8:10]))
		if len(key) < 10+nameLen {
			return 1
		}
		return bytes.Compare(key[10:10+nameLen], target)
	}
}

// DecodeName parses a snapshot-name record's key and value.
func DecodeName(key, value []byte, endian binary.ByteOrder) (Name, error) {
	if len(key) < 10 {
		return Name{}, apfserrors.New(apfserrors.Corruption, "snapshot.DecodeName", nil)
	}
	nameLen := int(endian.Uint16(key[8:10]))
	if len(key) < 10+nameLen {
		return Name{}, apfserrors.New(apfserrors.Corruption, "snapshot.DecodeName", nil)
	}
	if len(value) < 8 {
		return Name{}, apfserrors.New(apfserrors.Corruption, "snapshot.DecodeName", nil)
	}

	name := strings.TrimRight(string(key[10:10+nameLen]), "\x00")
	return Name{
		Name:    name,
		SnapXid: types.XidT(endian.Uint64(value[0:8])),
	}, nil
}
