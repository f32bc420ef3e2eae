package fstree

import (
	"encoding/binary"
	"strings"
	"time"

	"github.com/go-forensics/apfs/internal/apfserrors"
	"github.com/go-forensics/apfs/internal/btree"
	"github.com/go-forensics/apfs/internal/namehash"
	"github.com/go-forensics/apfs/internal/types"
)

// DirEntry is a decoded directory record: the name a parent directory
// binds to a target file-system object, plus the metadata carried
// alongside that binding.
type DirEntry struct {
	ParentID uint64
	Name     string
	FileID   uint64
	Added    time.Time
	Flags    uint16
	XFields  []byte
}

// FileType returns the target object's file type, stored in the low 4
// bits of the value's Flags field.
func (d DirEntry) FileType() uint16 {
	return d.Flags & uint16(types.DrecTypeMask)
}

// ExtendedFields decodes the entry's trailing xf_blob_t, if any.
func (d DirEntry) ExtendedFields() ([]ExtendedField, error) {
	return decodeExtendedFields(d.XFields)
}

// DirEntryComparator orders a hashed directory record key by (parent ID,
// name hash, name), matching the key a case-insensitive or
// normalization-insensitive volume stores. name is hashed with caseFold
// applied the same way the volume's own records were when written.
func DirEntryComparator(endian binary.ByteOrder, parentID uint64, name string, caseFold bool) btree.Comparator {
	targetHash := namehash.HashUTF8(name, caseFold)

	return func(key []byte) int {
		if c := compareHeader(key, endian, parentID, types.JObjTypeDirRec); c != 0 {
			return c
		}
		if len(key) < 12 {
			return 1
		}
		_, hash := namehash.Unpack(endian.Uint32(key[8:12]))
		if hash != targetHash {
			if hash < targetHash {
				return -1
			}
			return 1
		}
		gotName := strings.TrimRight(string(key[12:]), "\x00")
		return strings.Compare(gotName, name)
	}
}

// DirEntryComparatorPlain orders a non-hashed directory record key (used
// by case-sensitive, normalization-sensitive volumes) by (parent ID, raw
// name bytes).
func DirEntryComparatorPlain(endian binary.ByteOrder, parentID uint64, name string) btree.Comparator {
	return func(key []byte) int {
		if c := compareHeader(key, endian, parentID, types.JObjTypeDirRec); c != 0 {
			return c
		}
		if len(key) < 10 {
			return 1
		}
		nameLen := int(endian.Uint16(key[8:10]))
		if 10+nameLen > len(key) {
			return 1
		}
		gotName := strings.TrimRight(string(key[10:10+nameLen]), "\x00")
		return strings.Compare(gotName, name)
	}
}

// DecodeDirEntry parses a directory record's key and value. hashed
// selects between the plain (j_drec_key_t) and hashed
// (j_drec_hashed_key_t) key layouts a volume's flags determine.
func DecodeDirEntry(key, value []byte, endian binary.ByteOrder, hashed bool) (DirEntry, error) {
	hdr, err := DecodeHeader(key, endian)
	if err != nil {
		return DirEntry{}, err
	}

	var name string
	if hashed {
		if len(key) < 12 {
			return DirEntry{}, apfserrors.New(apfserrors.Corruption, "fstree.DecodeDirEntry", nil)
		}
		packed := endian.Uint32(key[8:12])
		nameLen, _ := namehash.Unpack(packed)
		if 12+nameLen > len(key) {
			return DirEntry{}, apfserrors.New(apfserrors.Corruption, "fstree.DecodeDirEntry", nil)
		}
		name = strings.TrimRight(string(key[12:12+nameLen]), "\x00")
	} else {
		if len(key) < 10 {
			return DirEntry{}, apfserrors.New(apfserrors.Corruption, "fstree.DecodeDirEntry", nil)
		}
		nameLen := int(endian.Uint16(key[8:10]))
		if 10+nameLen > len(key) {
			return DirEntry{}, apfserrors.New(apfserrors.Corruption, "fstree.DecodeDirEntry", nil)
		}
		name = strings.TrimRight(string(key[10:10+nameLen]), "\x00")
	}

	if len(value) < 18 {
		return DirEntry{}, apfserrors.New(apfserrors.Corruption, "fstree.DecodeDirEntry", nil)
	}

	entry := DirEntry{
		ParentID: hdr.ObjectID,
		Name:     name,
		FileID:   endian.Uint64(value[0:8]),
		Added:    time.Unix(0, int64(endian.Uint64(value[8:16]))),
		Flags:    endian.Uint16(value[16:18]),
	}
	if len(value) > 18 {
		entry.XFields = value[18:]
	}
	return entry, nil
}
