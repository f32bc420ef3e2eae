package types

// File-System Objects (pages 71-101)
// A file-system object stores information about part of the file system,
// like a directory or a file on disk. Each object is stored as one or more
// key-value records in a file-system B-tree.

// JKeyT is the header used at the beginning of every file-system key.
// Reference: page 72
type JKeyT struct {
	// A bit field containing the object's identifier and its type. (page 72)
	ObjIdAndType uint64
}

// ObjIdMask is the bit mask used to access the object identifier within ObjIdAndType.
const ObjIdMask uint64 = 0x0fffffffffffffff

// ObjTypeMask is the bit mask used to access the object type within ObjIdAndType.
const ObjTypeMask uint64 = 0xf000000000000000

// ObjTypeShift is the bit shift used to access the object type within ObjIdAndType.
const ObjTypeShift uint64 = 60

// SystemObjIdMark is the smallest object identifier used by the system volume
// in a shared volume group.
const SystemObjIdMark uint64 = 0x0fffffff00000000

// JInodeKeyT is the key half of an inode record.
// Reference: page 73
type JInodeKeyT struct {
	// The object identifier in Hdr is the inode number. The type is always JObjTypeInode.
	Hdr JKeyT
}

// UidT is a user identifier.
type UidT uint32

// GidT is a group identifier.
type GidT uint32

// JInodeValT is the value half of an inode record.
// Reference: pages 73-77
type JInodeValT struct {
	// The identifier of the file-system record for the parent directory. (page 74)
	ParentId uint64
	// The unique identifier used by this file's data stream. (page 74)
	PrivateId uint64
	// Time this record was created, in nanoseconds since the Unix epoch. (page 75)
	CreateTime uint64
	// Time this record was last modified. (page 75)
	ModTime uint64
	// Time this record's attributes were last modified. (page 75)
	ChangeTime uint64
	// Time this record was last accessed. (page 75)
	AccessTime uint64
	// The inode's flags (j_inode_flags). (page 75)
	InternalFlags uint64
	// Union field: nchildren for directories, nlink for everything else.
	NchildrenOrNlink int32
	// The default protection class for this inode. (page 76)
	DefaultProtectionClass CpKeyClassT
	// Incremented each time this inode or its data is modified; allowed to overflow. (page 76)
	WriteGenerationCounter uint32
	// BSD flags; see chflags(2). (page 76)
	BsdFlags uint32
	// The owning user. (page 76)
	Owner UidT
	// The owning group. (page 76)
	Group GidT
	// The file's mode. (page 77)
	Mode Mode
	// Reserved padding. (page 77)
	Pad1 uint16
	// Size of the file without compression, valid only when InodeHasUncompressedSize is set. (page 77)
	UncompressedSize uint64
	// The inode's extended fields, a packed xfield stream. (page 77)
	XFields []byte
}

// Nchildren returns the number of directory entries. Only meaningful for directory inodes.
func (v *JInodeValT) Nchildren() int32 {
	return v.NchildrenOrNlink
}

// Nlink returns the number of hard links targeting this inode. Only meaningful for non-directory inodes.
func (v *JInodeValT) Nlink() int32 {
	return v.NchildrenOrNlink
}

// JDrecKeyT is the key half of a directory entry record (non-hashed variant).
// Reference: page 78
type JDrecKeyT struct {
	Hdr JKeyT
	// Length of the name, including the trailing NUL. (page 78)
	NameLen uint16
	// The name, NUL-terminated UTF-8. (page 78)
	Name []byte
}

// JDrecHashedKeyT is the key half of a directory entry record, with a precomputed name hash.
// Reference: page 78
type JDrecHashedKeyT struct {
	Hdr JKeyT
	// 10-bit length (including trailing NUL) packed with a 22-bit name hash. (page 79)
	NameLenAndHash uint32
	// The name, NUL-terminated UTF-8. (page 79)
	Name []byte
}

// JDrecLenMask accesses the 10-bit name length within NameLenAndHash.
const JDrecLenMask uint32 = 0x000003ff

// JDrecHashMask accesses the 22-bit name hash within NameLenAndHash.
const JDrecHashMask uint32 = 0xfffffc00

// JDrecHashShift is the bit shift used to access the name hash within NameLenAndHash.
const JDrecHashShift uint32 = 10

// JDrecValT is the value half of a directory entry record.
// Reference: page 79
type JDrecValT struct {
	// The identifier of the inode this entry refers to. (page 80)
	FileId uint64
	// Time this entry was added to the directory. (page 80)
	DateAdded uint64
	// Flags; the DrecTypeMask bits store the target inode's file type. (page 80)
	Flags uint16
	// Extended fields. (page 80)
	XFields []byte
}

// JDirStatsKeyT is the key half of a directory-statistics record.
// Reference: page 80
type JDirStatsKeyT struct {
	Hdr JKeyT
}

// JDirStatsValT is the value half of a directory-statistics record.
// Reference: page 81
type JDirStatsValT struct {
	NumChildren uint64
	TotalSize   uint64
	ChainedKey  uint64
	GenCount    uint64
}

// JXattrKeyT is the key half of an extended attribute record.
// Reference: page 82
type JXattrKeyT struct {
	Hdr JKeyT
	// Length of the name, including the trailing NUL. (page 82)
	NameLen uint16
	// The name, NUL-terminated UTF-8. (page 82)
	Name []byte
}

// JXattrValT is the value half of an extended attribute record.
// Reference: page 82
type JXattrValT struct {
	// Flags; exactly one of XattrDataEmbedded / XattrDataStream must be set. (page 82)
	Flags uint16
	// Length of embedded data, valid only when XattrDataEmbedded is set. (page 83)
	XdataLen uint16
	// Either the embedded attribute data, or the 8-byte identifier of the data stream
	// record that holds it. (page 83)
	Xdata []byte
}

// JObjKinds represents the kind of a file-system record (used only in memory,
// not persisted as a standalone on-disk field outside PEXT_KIND bit fields).
// Reference: page 87
type JObjKinds uint8

const (
	ApfsKindAny          JObjKinds = 0
	ApfsKindNew          JObjKinds = 1
	ApfsKindUpdate       JObjKinds = 2
	ApfsKindDead         JObjKinds = 3
	ApfsKindUpdateRefcnt JObjKinds = 4
	ApfsKindInvalid      JObjKinds = 255
)

// JInodeFlags represents the flags used by inodes.
// Reference: pages 88-93
type JInodeFlags uint64

const (
	InodeIsApfsPrivate         JInodeFlags = 0x00000001
	InodeMaintainDirStats      JInodeFlags = 0x00000002
	InodeDirStatsOrigin        JInodeFlags = 0x00000004
	InodeProtClassExplicit     JInodeFlags = 0x00000008
	InodeWasCloned             JInodeFlags = 0x00000010
	InodeFlagUnused            JInodeFlags = 0x00000020
	InodeHasSecurityEa         JInodeFlags = 0x00000040
	InodeBeingTruncated        JInodeFlags = 0x00000080
	InodeHasFinderInfo         JInodeFlags = 0x00000100
	InodeIsSparse              JInodeFlags = 0x00000200
	InodeWasEverCloned         JInodeFlags = 0x00000400
	InodeActiveFileTrimmed     JInodeFlags = 0x00000800
	InodePinnedToMain          JInodeFlags = 0x00001000
	InodePinnedToTier2         JInodeFlags = 0x00002000
	InodeHasRsrcFork           JInodeFlags = 0x00004000
	InodeNoRsrcFork            JInodeFlags = 0x00008000
	InodeAllocationSpilledover JInodeFlags = 0x00010000
	InodeFastPromote           JInodeFlags = 0x00020000
	InodeHasUncompressedSize   JInodeFlags = 0x00040000
	InodeIsPurgeable           JInodeFlags = 0x00080000
	InodeWantsToBePurgeable    JInodeFlags = 0x00100000
	InodeIsSyncRoot            JInodeFlags = 0x00200000
	InodeSnapshotCowExemption  JInodeFlags = 0x00400000

	InodeInheritedInternalFlags JInodeFlags = InodeMaintainDirStats | InodeSnapshotCowExemption
	InodeClonedInternalFlags    JInodeFlags = InodeHasRsrcFork | InodeNoRsrcFork | InodeHasFinderInfo | InodeSnapshotCowExemption
)

// ApfsValidInternalInodeFlags is a bit mask of all valid inode flags.
const ApfsValidInternalInodeFlags JInodeFlags = InodeIsApfsPrivate |
	InodeMaintainDirStats |
	InodeDirStatsOrigin |
	InodeProtClassExplicit |
	InodeWasCloned |
	InodeHasSecurityEa |
	InodeBeingTruncated |
	InodeHasFinderInfo |
	InodeIsSparse |
	InodeWasEverCloned |
	InodeActiveFileTrimmed |
	InodePinnedToMain |
	InodePinnedToTier2 |
	InodeHasRsrcFork |
	InodeNoRsrcFork |
	InodeAllocationSpilledover |
	InodeFastPromote |
	InodeHasUncompressedSize |
	InodeIsPurgeable |
	InodeWantsToBePurgeable |
	InodeIsSyncRoot |
	InodeSnapshotCowExemption

// ApfsInodePinnedMask is a bit mask of the Fusion pinning flags.
const ApfsInodePinnedMask JInodeFlags = InodePinnedToMain | InodePinnedToTier2

// JXattrFlags represents the flags used by an extended attribute record.
// Reference: page 94
type JXattrFlags uint16

const (
	XattrDataStream      JXattrFlags = 0x00000001
	XattrDataEmbedded    JXattrFlags = 0x00000002
	XattrFileSystemOwned JXattrFlags = 0x00000004
	XattrReserved8       JXattrFlags = 0x00000008
)

// DirRecFlags represents the flags used by directory entry records.
// Reference: page 95
type DirRecFlags uint16

const (
	// DrecTypeMask extracts the target inode's file type from JDrecValT.Flags.
	DrecTypeMask DirRecFlags = 0x000f
	Reserved10   DirRecFlags = 0x0010
)

// Extended Attributes Constants (page 97)
const XattrMaxEmbeddedSize uint32 = 3804
const SymlinkEaName string = "com.apple.fs.symlink"
const FirmlinkEaName string = "com.apple.fs.firmlink"
const ApfsCowExemptCountName string = "com.apple.fs.cow-exempt-file-count"

// File-System Object Constants (page 98)
const OwningObjIdInvalid uint64 = ^uint64(0)
const OwningObjIdUnknown uint64 = ^uint64(1)
const JobjMaxKeySize uint32 = 832
const JobjMaxValueSize uint32 = 3808
const MinDocId uint32 = 3

// Directory Entry File Types (pages 100-101)
const (
	DtUnknown uint16 = 0
	DtFifo    uint16 = 1
	DtChr     uint16 = 2
	DtDir     uint16 = 4
	DtBlk     uint16 = 6
	DtReg     uint16 = 8
	DtLnk     uint16 = 10
	DtSock    uint16 = 12
	DtWht     uint16 = 14
)
