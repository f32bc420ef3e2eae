package types

// Reaper (pages 164-168)
// The reaper lets large objects be deleted over a period spanning multiple
// transactions. There's exactly one instance of this structure in a container.

// NxReaperPhysT is the main reaper structure.
// Reference: page 164
type NxReaperPhysT struct {
	// The object's header.
	NrO ObjPhysT
	// The next reap identifier to be assigned.
	NrNextReapId uint64
	// The identifier of the last completed reap.
	NrCompletedId uint64
	// The object identifier of the head of the reaper list.
	NrHead OidT
	// The object identifier of the tail of the reaper list.
	NrTail OidT
	// The reaper flags.
	NrFlags uint32
	// The count of reaper lists.
	NrRlcount uint32
	// The type of the object being reaped.
	NrType uint32
	// The size of the object being reaped.
	NrSize uint32
	// The filesystem object identifier of the object being reaped.
	NrFsOid OidT
	// The object identifier of the object being reaped.
	NrOid OidT
	// The transaction identifier for the object being reaped.
	NrXid XidT
	// The flags for the reaper list entry.
	NrNrleFlags uint32
	// The size of the state buffer.
	NrStateBufferSize uint32
	// The state buffer for the reaper.
	NrStateBuffer []byte
}

// Reaper flags (page 165)

// NrBhmFlag is a reserved flag that must always be set.
const NrBhmFlag uint32 = 0x00000001

// NrContinue indicates the current object is being reaped.
const NrContinue uint32 = 0x00000002

// Volume reaper phases (page 165)

const (
	ApfsReapPhaseStart       = 0
	ApfsReapPhaseSnapshots   = 1
	ApfsReapPhaseActiveFs    = 2
	ApfsReapPhaseDestroyOmap = 3
	ApfsReapPhaseDone        = 4
)

// OmapReapStateT is the state used when reaping an object map.
// Reference: page 166
type OmapReapStateT struct {
	// The current reaping phase; see the Apfs*Phase* constants.
	OmrPhase uint32
	// The key of the most recently freed entry, so reaping can resume after it.
	OmrOk OmapKeyT
}
