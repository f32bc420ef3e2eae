// Package snapshot decodes the snapshot-metadata, snapshot-name, and
// extended snapshot-metadata records a volume's file-system B-tree carries
// for every point-in-time snapshot it owns.
package snapshot

import (
	"encoding/binary"
	"strings"
	"time"

	"github.com/go-forensics/apfs/internal/apfserrors"
	"github.com/go-forensics/apfs/internal/btree"
	"github.com/go-forensics/apfs/internal/types"
)

// Metadata is a decoded snapshot-metadata record. The object identifier
// carried in the record's key header is the snapshot's own transaction
// identifier.
type Metadata struct {
	Xid               types.XidT
	ExtentrefTreeOid   types.OidT
	SblockOid         types.OidT
	CreateTime        time.Time
	ChangeTime        time.Time
	Inum              uint64
	ExtentrefTreeType uint32
	Flags             uint32
	Name              string
}

// HasFlag reports whether flag is set in the record's flags field.
func (m Metadata) HasFlag(flag types.SnapMetaFlags) bool {
	return m.Flags&uint32(flag) != 0
}

// MetadataComparator orders snapshot-metadata records by their key header
// alone: the header's object identifier is the snapshot's xid, so an exact
// match identifies a single snapshot's metadata record.
func MetadataComparator(endian binary.ByteOrder, xid types.XidT) btree.Comparator {
	return func(key []byte) int {
		if len(key) < 8 {
			return 1
		}
		raw := endian.Uint64(key[0:8])
		gotID := raw & types.ObjIdMask
		target := uint64(xid) & types.ObjIdMask
		switch {
		case gotID < target:
			return -1
		case gotID > target:
			return 1
		}
		gotType := types.JObjType((raw & types.ObjTypeMask) >> types.ObjTypeShift)
		switch {
		case gotType < types.JObjTypeSnapMetadata:
			return -1
		case gotType > types.JObjTypeSnapMetadata:
			return 1
		default:
			return 0
		}
	}
}

// DecodeMetadata parses a snapshot-metadata record's key and value.
func DecodeMetadata(key, value []byte, endian binary.ByteOrder) (Metadata, error) {
	if len(key) < 8 {
		return Metadata{}, apfserrors.New(apfserrors.Corruption, "snapshot.DecodeMetadata", nil)
	}
	if len(value) < 50 {
		return Metadata{}, apfserrors.New(apfserrors.Corruption, "snapshot.DecodeMetadata", nil)
	}

	raw := endian.Uint64(key[0:8])
	xid := types.XidT(raw & types.ObjIdMask)

	nameLen := endian.Uint16(value[48:50])
	if len(value) < 50+int(nameLen) {
		return Metadata{}, apfserrors.New(apfserrors.Corruption, "snapshot.DecodeMetadata", nil)
	}
	name := string(value[50 : 50+int(nameLen)])
	name = strings.TrimRight(name, "\x00")

	return Metadata{
		Xid:               xid,
		ExtentrefTreeOid:  types.OidT(endian.Uint64(value[0:8])),
		SblockOid:         types.OidT(endian.Uint64(value[8:16])),
		CreateTime:        time.Unix(0, int64(endian.Uint64(value[16:24]))),
		ChangeTime:        time.Unix(0, int64(endian.Uint64(value[24:32]))),
		Inum:              endian.Uint64(value[32:40]),
		ExtentrefTreeType: endian.Uint32(value[40:44]),
		Flags:             endian.Uint32(value[44:48]),
		Name:              name,
	}, nil
}
