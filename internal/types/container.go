package types

// Container (pages 26-43)
// The container includes several top-level objects that are shared by all of the container's volumes.

// NxSuperblockT is a container superblock.
// Reference: page 27
type NxSuperblockT struct {
	// The object's header. (page 27)
	NxO ObjPhysT
	// A number that can be used to verify that you're reading an instance of nx_superblock_t. (page 27)
	// The value of this field is always NxMagic.
	NxMagic uint32
	// The logical block size used in the Apple File System container. (page 29)
	NxBlockSize uint32
	// The total number of logical blocks available in the container. (page 29)
	NxBlockCount uint64
	// A bit field of the optional features being used by this container. (page 29)
	NxFeatures uint64
	// A bit field of the read-only compatible features being used by this container. (page 29)
	NxReadonlyCompatibleFeatures uint64
	// A bit field of the backward-incompatible features being used by this container. (page 29)
	NxIncompatibleFeatures uint64
	// The universally unique identifier of this container. (page 29)
	NxUuid UUID
	// The next object identifier to be used for a new ephemeral or virtual object. (page 30)
	NxNextOid OidT
	// The next transaction to be used. (page 30)
	NxNextXid XidT
	// The number of blocks used by the checkpoint descriptor area. (page 30)
	// The highest bit of this number is used as a flag; ignore it when accessing this field as a count.
	NxXpDescBlocks uint32
	// The number of blocks used by the checkpoint data area. (page 30)
	// The highest bit of this number is used as a flag; ignore it when accessing this field as a count.
	NxXpDataBlocks uint32
	// The base address of the checkpoint descriptor area, or the physical object identifier
	// of a tree that contains the address information. (page 30)
	NxXpDescBase Paddr
	// The base address of the checkpoint data area, or the physical object identifier of a tree
	// that contains the address information. (page 30)
	NxXpDataBase Paddr
	// The next index to use in the checkpoint descriptor area. (page 31)
	NxXpDescNext uint32
	// The next index to use in the checkpoint data area. (page 31)
	NxXpDataNext uint32
	// The index of the first valid item in the checkpoint descriptor area. (page 31)
	NxXpDescIndex uint32
	// The number of blocks in the checkpoint descriptor area used by the checkpoint this
	// superblock belongs to. (page 31)
	NxXpDescLen uint32
	// The index of the first valid item in the checkpoint data area. (page 31)
	NxXpDataIndex uint32
	// The number of blocks in the checkpoint data area used by the checkpoint this
	// superblock belongs to. (page 31)
	NxXpDataLen uint32
	// The ephemeral object identifier for the space manager. (page 32)
	NxSpacemanOid OidT
	// The physical object identifier for the container's object map. (page 32)
	NxOmapOid OidT
	// The ephemeral object identifier for the reaper. (page 32)
	NxReaperOid OidT
	// Reserved for testing. (page 32)
	NxTestType uint32
	// The maximum number of volumes that can be stored in this container. (page 32)
	NxMaxFileSystems uint32
	// An array of virtual object identifiers for volumes. (page 32)
	NxFsOid [NxMaxFileSystems]OidT
	// An array of counters that store information about the container. (page 33)
	NxCounters [NxNumCounters]uint64
	// The physical range of blocks where space will not be allocated. (page 33)
	NxBlockedOutPrange Prange
	// The physical object identifier of a tree used to keep track of objects
	// that must be moved out of blocked-out storage. (page 33)
	NxEvictMappingTreeOid OidT
	// Other container flags. (page 33)
	NxFlags uint64
	// The physical object identifier of the object that contains EFI driver data extents. (page 33)
	NxEfiJumpstart Paddr
	// The universally unique identifier of the container's Fusion set, or zero for non-Fusion containers. (page 34)
	NxFusionUuid UUID
	// The location of the container's keybag. (page 34)
	NxKeylocker Prange
	// An array of fields used in the management of ephemeral data. (page 34)
	NxEphemeralInfo [NxEphInfoCount]uint64
	// Reserved for testing. (page 34)
	NxTestOid OidT
	// The physical object identifier of the Fusion middle tree, or zero for non-Fusion drives. (page 34)
	NxFusionMtOid OidT
	// The ephemeral object identifier of the Fusion write-back cache state, or zero for non-Fusion drives. (page 35)
	NxFusionWbcOid OidT
	// The blocks used for the Fusion write-back cache area, or zero for non-Fusion drives. (page 35)
	NxFusionWbc Prange
	// Reserved. (page 35)
	NxNewestMountedVersion uint64
	// Wrapped media key. (page 35)
	NxMkbLocker Prange
}

// NxMagic is the value of the nx_magic field ('NXSB' in a hex dump).
// Reference: page 35
const NxMagic uint32 = 'N' | 'X'<<8 | 'S'<<16 | 'B'<<24

// NxMaxFileSystems is the maximum number of volumes that can be in a single container.
const NxMaxFileSystems = 100

// NxEphInfoCount is the length of the array in the nx_ephemeral_info field.
const NxEphInfoCount = 4

// NxEphMinBlockCount is the default minimum size, in blocks, for structures that contain ephemeral data.
const NxEphMinBlockCount = 8

// NxMaxFileSystemEphStructs is the number of structures with ephemeral data a volume can have.
const NxMaxFileSystemEphStructs = 4

// NxTxMinCheckpointCount is the minimum number of checkpoints that fit in the checkpoint data area.
const NxTxMinCheckpointCount = 4

// NxEphInfoVersion1 is the version number for structures that contain ephemeral data.
const NxEphInfoVersion1 = 1

// Container Flags (pages 36-37)
const (
	NxReserved1 uint64 = 0x00000001
	NxReserved2 uint64 = 0x00000002
	NxCryptoSw  uint64 = 0x00000004
)

// Optional Container Feature Flags (page 37)
const (
	NxFeatureDefrag         uint64 = 0x0000000000000001
	NxFeatureLcfd           uint64 = 0x0000000000000002
	NxSupportedFeaturesMask uint64 = NxFeatureDefrag | NxFeatureLcfd
)

// Read-Only Compatible Container Feature Flags (page 38)
const NxSupportedRocompatMask uint64 = 0x0

// Incompatible Container Feature Flags (pages 38-39)
const (
	NxIncompatVersion1      uint64 = 0x0000000000000001
	NxIncompatVersion2      uint64 = 0x0000000000000002
	NxIncompatFusion        uint64 = 0x0000000000000100
	NxSupportedIncompatMask uint64 = NxIncompatVersion2 | NxIncompatFusion
)

// Block and Container Sizes (page 39)
const (
	NxMinimumBlockSize     = 4096
	NxDefaultBlockSize     = 4096
	NxMaximumBlockSize     = 65536
	NxMinimumContainerSize = 1048576
)

// NxCounterIdT contains indexes into a container superblock's array of counters.
type NxCounterIdT int

const (
	// NxCntrObjCksumSet counts checksum computations while writing objects to disk.
	NxCntrObjCksumSet NxCounterIdT = 0
	// NxCntrObjCksumFail counts invalid checksums seen while reading objects from disk.
	NxCntrObjCksumFail NxCounterIdT = 1
	// NxNumCounters is the maximum number of counters.
	NxNumCounters = 32
)

// CheckpointMappingT maps an ephemeral object identifier to its physical address
// in the checkpoint data area.
// Reference: page 40
type CheckpointMappingT struct {
	// The object's type: the low 24 bits are the type, the high 8 bits are flags. (page 40)
	CpmType uint32
	// The object's subtype. (page 41)
	CpmSubtype uint32
	// The size, in bytes, of the object. (page 41)
	CpmSize uint32
	// Reserved padding. (page 41)
	CpmPad uint32
	// The virtual object identifier of the volume the object is associated with. (page 41)
	CpmFsOid OidT
	// The ephemeral object identifier. (page 41)
	CpmOid OidT
	// The address in the checkpoint data area where the object is stored. (page 41)
	CpmPaddr Paddr
}

// CheckpointMapPhysT is a checkpoint-mapping block.
// Reference: page 41
type CheckpointMapPhysT struct {
	// The object's header. (page 42)
	CpmO ObjPhysT
	// Additional information about the list of checkpoint mappings. (page 42)
	CpmFlags uint32
	// The number of checkpoint mappings in the array. (page 42)
	CpmCount uint32
	// The array of checkpoint mappings, decoded on demand rather than as a fixed array. (page 42)
	CpmMap []CheckpointMappingT
}

// CheckpointMapLast marks the last checkpoint-mapping block in a given checkpoint.
const CheckpointMapLast uint32 = 0x00000001

// EvictMappingValT is a range of physical addresses that data is being moved into.
// Reference: page 43
type EvictMappingValT struct {
	DstPaddr Paddr
	Len      uint64
}
