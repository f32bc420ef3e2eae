package fstree

import (
	"encoding/binary"

	"github.com/go-forensics/apfs/internal/apfserrors"
	"github.com/go-forensics/apfs/internal/btree"
	"github.com/go-forensics/apfs/internal/types"
)

// FileExtent is a decoded file extent record: one contiguous run of a
// file's data stream, mapped to physical storage.
type FileExtent struct {
	ObjectID    uint64
	LogicalAddr uint64
	Length      uint64
	Flags       uint64
	PhysBlock   uint64
	CryptoID    uint64
}

// IsCryptoIDTweak reports whether CryptoID holds an AES-XTS tweak rather
// than an encryption key identifier.
func (f FileExtent) IsCryptoIDTweak() bool {
	return f.Flags&uint64(types.FextCryptoIdIsTweak) != 0
}

// FileExtentComparator orders file extent records by (owning object ID,
// logical address).
func FileExtentComparator(endian binary.ByteOrder, objectID, logicalAddr uint64) btree.Comparator {
	return func(key []byte) int {
		if c := compareHeader(key, endian, objectID, types.JObjTypeFileExtent); c != 0 {
			return c
		}
		if len(key) < 16 {
			return 1
		}
		got := endian.Uint64(key[8:16])
		switch {
		case got < logicalAddr:
			return -1
		case got > logicalAddr:
			return 1
		default:
			return 0
		}
	}
}

// DecodeFileExtent parses a file extent record's key and value.
func DecodeFileExtent(key, value []byte, endian binary.ByteOrder) (FileExtent, error) {
	hdr, err := DecodeHeader(key, endian)
	if err != nil {
		return FileExtent{}, err
	}
	if len(key) < 16 || len(value) < 24 {
		return FileExtent{}, apfserrors.New(apfserrors.Corruption, "fstree.DecodeFileExtent", nil)
	}

	lenAndFlags := endian.Uint64(value[0:8])
	return FileExtent{
		ObjectID:    hdr.ObjectID,
		LogicalAddr: endian.Uint64(key[8:16]),
		Length:      lenAndFlags & types.JFileExtentLenMask,
		Flags:       (lenAndFlags & types.JFileExtentFlagMask) >> types.JFileExtentFlagShift,
		PhysBlock:   endian.Uint64(value[8:16]),
		CryptoID:    endian.Uint64(value[16:24]),
	}, nil
}

// PhysicalExtent is a decoded physical extent record: a run of physical
// blocks shared (via copy-on-write cloning) among one or more owners.
type PhysicalExtent struct {
	StartBlock  uint64
	Length      uint64
	Kind        uint8
	OwningObjID uint64
	Refcnt      int32
}

// IsShared reports whether more than one owner references this extent.
func (p PhysicalExtent) IsShared() bool { return p.Refcnt > 1 }

// CanBeDeleted reports whether this extent's reference count has dropped
// to zero and its storage can be reclaimed.
func (p PhysicalExtent) CanBeDeleted() bool { return p.Refcnt <= 0 }

// DecodePhysicalExtent parses a physical extent record's key and value.
// The extent's starting physical block address is the object identifier
// carried in the key's header, not a separate field.
func DecodePhysicalExtent(key, value []byte, endian binary.ByteOrder) (PhysicalExtent, error) {
	hdr, err := DecodeHeader(key, endian)
	if err != nil {
		return PhysicalExtent{}, err
	}
	if len(value) < 20 {
		return PhysicalExtent{}, apfserrors.New(apfserrors.Corruption, "fstree.DecodePhysicalExtent", nil)
	}

	lenAndKind := endian.Uint64(value[0:8])
	return PhysicalExtent{
		StartBlock:  hdr.ObjectID,
		Length:      lenAndKind & types.PextLenMask,
		Kind:        uint8((lenAndKind & types.PextKindMask) >> types.PextKindShift),
		OwningObjID: endian.Uint64(value[8:16]),
		Refcnt:      int32(endian.Uint32(value[16:20])),
	}, nil
}
