package types

import "math"

// Object Maps (pages 139-148)
// An object map uses a B-tree to maintain a mapping from virtual object
// identifiers and transaction identifiers to the physical addresses where
// those objects live.

// OmapPhysT is an object map's header.
// Reference: page 139
type OmapPhysT struct {
	// The object's header. (page 140)
	OmO ObjPhysT
	// The object map's flags. (page 140)
	OmFlags uint32
	// The number of snapshots that this object map has. (page 140)
	OmSnapCount uint32
	// A bit field of the type and storage for the tree. (page 140)
	OmTreeType uint32
	// A bit field of the type and storage for the snapshot tree. (page 140)
	OmSnapshotTreeType uint32
	// The physical object identifier of the B-tree that stores the object map's mappings. (page 140)
	OmTreeOid OidT
	// The physical object identifier of the B-tree that stores information about the snapshots. (page 140)
	OmSnapshotTreeOid OidT
	// The transaction identifier of the most recent snapshot. (page 141)
	OmMostRecentSnap XidT
	// The smallest transaction identifier for an in-progress revert. (page 141)
	OmPendingRevertMin XidT
	// The largest transaction identifier for an in-progress revert. (page 141)
	OmPendingRevertMax XidT
}

// OmapKeyT is a key used to access an entry in the object map.
// Reference: page 141
type OmapKeyT struct {
	// The object identifier to look up. (page 141)
	OkOid OidT
	// The transaction identifier to look up. (page 141)
	OkXid XidT
}

// OmapValT is a value in the object map, indicating where the object is stored.
// Reference: page 142
type OmapValT struct {
	// The object map value's flags. (page 142)
	OvFlags uint32
	// The size, in bytes, of the object. (page 142)
	OvSize uint32
	// The address on disk where the object is stored. (page 142)
	OvPaddr Paddr
}

// OmapSnapshotT stores information about a snapshot of an object map.
// Reference: page 142
type OmapSnapshotT struct {
	// The snapshot's flags. (page 143)
	OmsFlags uint32
	// Reserved padding. (page 143)
	OmsPad uint32
	// The object identifier of a physical extent record that's used to track
	// the space consumed by the volume's blocks. (page 143)
	OmsOid OidT
}

// Object Map Flags (pages 143-144)
const (
	OmapManuallyManaged uint32 = 0x00000001
	OmapEncrypting      uint32 = 0x00000002
	OmapDecrypting      uint32 = 0x00000004
	OmapKeyrolling      uint32 = 0x00000008
	OmapCryptoGeneration uint32 = 0x00000010
	OmapValidFlags      uint32 = 0x0000001f
)

// Object Map Value Flags (page 144)
const (
	OmapValDeleted          uint32 = 0x00000001
	OmapValSaved            uint32 = 0x00000002
	OmapValEncrypted        uint32 = 0x00000004
	OmapValNoheader         uint32 = 0x00000008
	OmapValCryptoGeneration uint32 = 0x00000010
)

// Object Map Snapshot Flags (page 145)
const OmapSnapshotDeleted uint32 = 0x00000001
const OmapSnapshotReverted uint32 = 0x00000002

// OmapMaxSnapCount is the largest possible number of snapshots tracked by an object map.
// Reference: page 145
const OmapMaxSnapCount uint32 = math.MaxUint32

// Object Map Reaper Phases (page 50)
const (
	// OmapReapPhaseMapTree indicates the reaper is deleting entries from the object mapping tree.
	OmapReapPhaseMapTree uint32 = 1
	// OmapReapPhaseSnapshotTree indicates the reaper is deleting entries from the snapshot tree.
	OmapReapPhaseSnapshotTree uint32 = 2
)
