package fstree

import (
	"encoding/binary"
	"strings"

	"github.com/go-forensics/apfs/internal/apfserrors"
	"github.com/go-forensics/apfs/internal/btree"
	"github.com/go-forensics/apfs/internal/types"
)

// Xattr is a decoded extended attribute record.
type Xattr struct {
	ObjectID uint64
	Name     string
	Flags    uint16
	Data     []byte
}

// IsDataEmbedded reports whether Data holds the attribute's value directly.
func (x Xattr) IsDataEmbedded() bool {
	return types.JXattrFlags(x.Flags)&types.XattrDataEmbedded != 0
}

// IsDataStream reports whether Data is instead the 8-byte identifier of a
// data stream record holding the attribute's value.
func (x Xattr) IsDataStream() bool {
	return types.JXattrFlags(x.Flags)&types.XattrDataStream != 0
}

// XattrComparator orders xattr records by (owning object ID, name).
func XattrComparator(endian binary.ByteOrder, objectID uint64, name string) btree.Comparator {
	return func(key []byte) int {
		if c := compareHeader(key, endian, objectID, types.JObjTypeXattr); c != 0 {
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

// DecodeXattr parses an extended attribute record's key and value. The
// value's embedded-data slice is truncated to XdataLen; a data-stream
// xattr's Data instead holds the raw stream identifier bytes.
func DecodeXattr(key, value []byte, endian binary.ByteOrder) (Xattr, error) {
	hdr, err := DecodeHeader(key, endian)
	if err != nil {
		return Xattr{}, err
	}
	if len(key) < 10 {
		return Xattr{}, apfserrors.New(apfserrors.Corruption, "fstree.DecodeXattr", nil)
	}
	nameLen := int(endian.Uint16(key[8:10]))
	if 10+nameLen > len(key) {
		return Xattr{}, apfserrors.New(apfserrors.Corruption, "fstree.DecodeXattr", nil)
	}
	name := strings.TrimRight(string(key[10:10+nameLen]), "\x00")

	if len(value) < 4 {
		return Xattr{}, apfserrors.New(apfserrors.Corruption, "fstree.DecodeXattr", nil)
	}
	flags := endian.Uint16(value[0:2])
	xdataLen := endian.Uint16(value[2:4])
	xdata := value[4:]

	x := Xattr{ObjectID: hdr.ObjectID, Name: name, Flags: flags}
	if types.JXattrFlags(flags)&types.XattrDataEmbedded != 0 && int(xdataLen) <= len(xdata) {
		x.Data = xdata[:xdataLen]
	} else {
		x.Data = xdata
	}
	return x, nil
}
