package types

// Volumes (pages 51-70)
// A volume contains a file system: the files and metadata that make it up,
// plus supporting structures like its own object map.

// ApfsSuperblockT is a volume superblock.
// Reference: page 51
type ApfsSuperblockT struct {
	// The object's header. (page 52)
	ApfsO ObjPhysT
	// A number that can be used to verify this is an apfs_superblock_t; always ApfsMagic. (page 52)
	ApfsMagic uint32
	// Index of this volume's object identifier in the container's NxFsOid array. (page 53)
	ApfsFsIndex uint32
	// Optional feature flags in use by this volume. (page 53)
	ApfsFeatures uint64
	// Read-only compatible feature flags in use by this volume. (page 53)
	ApfsReadonlyCompatibleFeatures uint64
	// Backward-incompatible feature flags in use by this volume. (page 53)
	ApfsIncompatibleFeatures uint64
	// Time this volume was last unmounted, in nanoseconds since the Unix epoch. (page 53)
	ApfsUnmountTime uint64
	// Blocks reserved for this volume to allocate. (page 54)
	ApfsFsReserveBlockCount uint64
	// Maximum blocks this volume may allocate. (page 54)
	ApfsFsQuotaBlockCount uint64
	// Blocks currently allocated to this volume's file system. (page 54)
	ApfsFsAllocCount uint64
	// How this volume's metadata encryption key is wrapped. (page 54)
	ApfsMetaCrypto WrappedMetaCryptoStateT
	// Type of the root file-system tree (typically OBJ_VIRTUAL|OBJECT_TYPE_BTREE). (page 54)
	ApfsRootTreeType uint32
	// Type of the extent-reference tree. (page 54)
	ApfsExtentreftreeType uint32
	// Type of the snapshot metadata tree. (page 54)
	ApfsSnapMetatreeType uint32
	// Physical object identifier of this volume's object map. (page 55)
	ApfsOmapOid OidT
	// Virtual object identifier of the root file-system tree. (page 55)
	ApfsRootTreeOid OidT
	// Physical object identifier of the extent-reference tree. (page 55)
	ApfsExtentrefTreeOid OidT
	// Virtual object identifier of the snapshot metadata tree. (page 55)
	ApfsSnapMetaTreeOid OidT
	// Transaction identifier of a snapshot the volume will revert to, or zero. (page 55)
	ApfsRevertToXid XidT
	// Volume superblock to revert to if ApfsRevertToXid is zero. (page 55)
	ApfsRevertToSblockOid OidT
	// Next identifier to assign to a file-system object on this volume. (page 55)
	ApfsNextObjId uint64
	// Number of regular files. (page 56)
	ApfsNumFiles uint64
	// Number of directories. (page 56)
	ApfsNumDirectories uint64
	// Number of symbolic links. (page 56)
	ApfsNumSymlinks uint64
	// Number of files not counted by NumSymlinks/NumDirectories/NumFiles. (page 56)
	ApfsNumOtherFsobjects uint64
	// Number of snapshots. (page 56)
	ApfsNumSnapshots uint64
	// Total blocks ever allocated by this volume. (page 56)
	ApfsTotalBlocksAlloced uint64
	// Total blocks ever freed by this volume. (page 56)
	ApfsTotalBlocksFreed uint64
	// This volume's universally unique identifier. (page 57)
	ApfsVolUuid UUID
	// Time this volume was last modified. (page 57)
	ApfsLastModTime uint64
	// Volume flags. (page 57)
	ApfsFsFlags uint64
	// Software that created this volume; set once, at creation. (page 57)
	ApfsFormattedBy ApfsModifiedByT
	// History of software that has modified this volume; newest at index zero. (page 57)
	ApfsModifiedBy [ApfsMaxHist]ApfsModifiedByT
	// NUL-terminated UTF-8 volume name. (page 57)
	ApfsVolname [ApfsVolnameLen]byte
	// Next document identifier to assign. (page 58)
	ApfsNextDocId uint32
	// This volume's role within the container. (page 58)
	ApfsRole uint16
	// Reserved padding. (page 58)
	Reserved uint16
	// Transaction identifier of the snapshot to root from, or zero for normal rooting. (page 58)
	ApfsRootToXid XidT
	// State of an in-progress encryption/decryption, or zero if none is running. (page 58)
	ApfsErStateOid OidT
	// Largest object identifier in use when INODE_WAS_EVER_CLONED tracking began. (page 58)
	ApfsCloneinfoIdEpoch uint64
	// Transaction identifier paired with ApfsCloneinfoIdEpoch. (page 59)
	ApfsCloneinfoXid uint64
	// Virtual object identifier of the extended snapshot metadata object. (page 59)
	ApfsSnapMetaExtOid OidT
	// Volume group this volume belongs to, or zero if none. (page 59)
	ApfsVolumeGroupId UUID
	// Virtual object identifier of the integrity metadata object, requires sealed volume flag. (page 59)
	ApfsIntegrityMetaOid OidT
	// Virtual object identifier of the file extent tree, requires sealed volume flag. (page 59)
	ApfsFextTreeOid OidT
	// Type of the file extent tree. (page 60)
	ApfsFextTreeType uint32
	// Reserved. (page 60)
	ReservedType uint32
	// Reserved. (page 60)
	ReservedOid OidT
}

// ApfsModifiedByT identifies a program that modified the volume and when.
// Reference: page 60
type ApfsModifiedByT struct {
	// Identifies the program and its version. (page 61)
	Id [ApfsModifiedNamelen]byte
	// Time of the modification. (page 61)
	Timestamp uint64
	// Last transaction identifier that's part of this program's modifications. (page 61)
	LastXid XidT
}

// ApfsMagic is the value of the apfs_magic field ('APSB' in a hex dump).
const ApfsMagic uint32 = 'A' | 'P'<<8 | 'S'<<16 | 'B'<<24

// ApfsMaxHist is the number of entries in the ApfsModifiedBy history.
const ApfsMaxHist = 8

// ApfsVolnameLen is the maximum length of the ApfsVolname field.
const ApfsVolnameLen = 256

// ApfsModifiedNamelen is the length of the Id field in ApfsModifiedByT.
const ApfsModifiedNamelen = 32

// Volume Flags (pages 61-63)
const (
	ApfsFsUnencrypted         uint64 = 0x00000001
	ApfsFsReserved2           uint64 = 0x00000002
	ApfsFsReserved4           uint64 = 0x00000004
	ApfsFsOnekey              uint64 = 0x00000008
	ApfsFsSpilledover         uint64 = 0x00000010
	ApfsFsRunSpilloverCleaner uint64 = 0x00000020
	ApfsFsAlwaysCheckExtentref uint64 = 0x00000040
	ApfsFsReserved80          uint64 = 0x00000080
	ApfsFsReserved100         uint64 = 0x00000100

	ApfsFsFlagsValidMask = ApfsFsUnencrypted | ApfsFsReserved2 | ApfsFsReserved4 |
		ApfsFsOnekey | ApfsFsSpilledover | ApfsFsRunSpilloverCleaner |
		ApfsFsAlwaysCheckExtentref | ApfsFsReserved80 | ApfsFsReserved100

	ApfsFsCryptoflags = ApfsFsUnencrypted | ApfsFsReserved2 | ApfsFsOnekey
)

// Volume Roles (pages 63-66)
const (
	ApfsVolRoleNone       uint16 = 0x0000
	ApfsVolRoleSystem     uint16 = 0x0001
	ApfsVolRoleUser       uint16 = 0x0002
	ApfsVolRoleRecovery   uint16 = 0x0004
	ApfsVolRoleVm         uint16 = 0x0008
	ApfsVolRolePreboot    uint16 = 0x0010
	ApfsVolRoleInstaller  uint16 = 0x0020

	// ApfsVolumeEnumShift separates the legacy bitmask roles above from the
	// enumerated roles below, which are mutually exclusive values rather than bits.
	ApfsVolumeEnumShift uint16 = 6

	ApfsVolRoleData       uint16 = 1 << ApfsVolumeEnumShift
	ApfsVolRoleBaseband   uint16 = 2 << ApfsVolumeEnumShift
	ApfsVolRoleUpdate     uint16 = 3 << ApfsVolumeEnumShift
	ApfsVolRoleXart       uint16 = 4 << ApfsVolumeEnumShift
	ApfsVolRoleHardware   uint16 = 5 << ApfsVolumeEnumShift
	ApfsVolRoleBackup     uint16 = 6 << ApfsVolumeEnumShift
	ApfsVolRoleReserved7  uint16 = 7 << ApfsVolumeEnumShift
	ApfsVolRoleReserved8  uint16 = 8 << ApfsVolumeEnumShift
	ApfsVolRoleEnterprise uint16 = 9 << ApfsVolumeEnumShift
	ApfsVolRoleReserved10 uint16 = 10 << ApfsVolumeEnumShift
	ApfsVolRolePrelogin   uint16 = 11 << ApfsVolumeEnumShift
)

// Optional Volume Feature Flags (pages 67-68)
const (
	ApfsFeatureDefragPrerelease     uint64 = 0x00000001
	ApfsFeatureHardlinkMapRecords   uint64 = 0x00000002
	ApfsFeatureDefrag               uint64 = 0x00000004
	ApfsFeatureStrictatime          uint64 = 0x00000008
	ApfsFeatureVolgrpSystemInoSpace uint64 = 0x00000010

	ApfsSupportedFeaturesMask = ApfsFeatureDefrag | ApfsFeatureDefragPrerelease |
		ApfsFeatureHardlinkMapRecords | ApfsFeatureStrictatime | ApfsFeatureVolgrpSystemInoSpace
)

// Read-Only Compatible Volume Feature Flags (page 68)
const ApfsSupportedRocompatMask uint64 = 0x0

// Incompatible Volume Feature Flags (pages 68-70)
const (
	ApfsIncompatCaseInsensitive          uint64 = 0x00000001
	ApfsIncompatDatalessSnaps            uint64 = 0x00000002
	ApfsIncompatEncRolled                uint64 = 0x00000004
	ApfsIncompatNormalizationInsensitive uint64 = 0x00000008
	ApfsIncompatIncompleteRestore        uint64 = 0x00000010
	ApfsIncompatSealedVolume             uint64 = 0x00000020
	ApfsIncompatReserved40               uint64 = 0x00000040

	ApfsSupportedIncompatMask = ApfsIncompatCaseInsensitive | ApfsIncompatDatalessSnaps |
		ApfsIncompatEncRolled | ApfsIncompatNormalizationInsensitive |
		ApfsIncompatIncompleteRestore | ApfsIncompatSealedVolume | ApfsIncompatReserved40
)
