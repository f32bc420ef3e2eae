package types

// Extended Fields (pages 108-114)
// Directory entries and inodes use extended fields to store a dynamically
// extensible set of member fields packed one after another, each padded to
// an 8-byte boundary.

// XfBlobT is a collection of extended fields attached to an inode or
// directory entry record's value.
// Reference: page 108
type XfBlobT struct {
	// The number of extended fields. (page 108)
	XfNumExts uint16
	// The amount of space, in bytes, used to store the extended fields,
	// including both x_field_t headers and their data. (page 108)
	XfUsedData uint16
	// The packed x_field_t headers followed by their data. (page 109)
	XfData []byte
}

// XFieldT is an extended field's metadata.
// Reference: page 109
type XFieldT struct {
	// The extended field's data type. (page 109)
	XType uint8
	// The extended field's flags. (page 109)
	XFlags uint8
	// The size, in bytes, of the data stored in the extended field. (page 109)
	XSize uint16
}

// Extended-Field Types (pages 109-112)
const (
	DrecExtTypeSiblingId     uint8 = 1
	InoExtTypeSnapXid        uint8 = 1
	InoExtTypeDeltaTreeOid   uint8 = 2
	InoExtTypeDocumentId     uint8 = 3
	InoExtTypeName           uint8 = 4
	InoExtTypePrevFsize      uint8 = 5
	InoExtTypeReserved6      uint8 = 6
	InoExtTypeFinderInfo     uint8 = 7
	InoExtTypeDstream        uint8 = 8
	InoExtTypeReserved9      uint8 = 9
	InoExtTypeDirStatsKey    uint8 = 10
	InoExtTypeFsUuid         uint8 = 11
	InoExtTypeReserved12     uint8 = 12
	InoExtTypeSparseBytes    uint8 = 13
	InoExtTypeRdev           uint8 = 14
	InoExtTypePurgeableFlags uint8 = 15
	InoExtTypeOrigSyncRootId uint8 = 16
)

// Extended-Field Flags (pages 113-114)
//
// x_field_t.XFlags is a single byte, so these are uint8 here even though the
// teacher's apfs/types/extended_fields.go declares them uint16 — a type
// mismatch against the uint8 XFlags field it's meant to mask that would
// never compile as written there.
const (
	XfDataDependent  uint8 = 0x0001
	XfDoNotCopy      uint8 = 0x0002
	XfReserved4      uint8 = 0x0004
	XfChildrenInherit uint8 = 0x0008
	XfUserField      uint8 = 0x0010
	XfSystemField    uint8 = 0x0020
	XfReserved40     uint8 = 0x0040
	XfReserved80     uint8 = 0x0080
)
