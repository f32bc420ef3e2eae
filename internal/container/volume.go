package container

import (
	"bytes"
	"encoding/binary"
	"strings"

	"github.com/google/uuid"

	"github.com/go-forensics/apfs/internal/apfserrors"
	"github.com/go-forensics/apfs/internal/objects"
	"github.com/go-forensics/apfs/internal/types"
)

// ApfsSuperblockSize is the on-disk size, in bytes, of apfs_superblock_t.
const ApfsSuperblockSize = 1056

// DecodeVolumeSuperblock parses a volume superblock (APSB) at the start of
// data.
func DecodeVolumeSuperblock(data []byte, endian binary.ByteOrder) (types.ApfsSuperblockT, error) {
	if len(data) < ApfsSuperblockSize {
		return types.ApfsSuperblockT{}, apfserrors.New(apfserrors.Corruption, "container.DecodeVolumeSuperblock", nil)
	}

	hdr, err := objects.DecodeHeader(data)
	if err != nil {
		return types.ApfsSuperblockT{}, err
	}

	var sb types.ApfsSuperblockT
	sb.ApfsO = hdr
	sb.ApfsMagic = endian.Uint32(data[32:36])
	if sb.ApfsMagic != types.ApfsMagic {
		return types.ApfsSuperblockT{}, apfserrors.New(apfserrors.Corruption, "container.DecodeVolumeSuperblock", nil)
	}

	sb.ApfsFsIndex = endian.Uint32(data[36:40])
	sb.ApfsFeatures = endian.Uint64(data[40:48])
	sb.ApfsReadonlyCompatibleFeatures = endian.Uint64(data[48:56])
	sb.ApfsIncompatibleFeatures = endian.Uint64(data[56:64])
	sb.ApfsUnmountTime = endian.Uint64(data[64:72])
	sb.ApfsFsReserveBlockCount = endian.Uint64(data[72:80])
	sb.ApfsFsQuotaBlockCount = endian.Uint64(data[80:88])
	sb.ApfsFsAllocCount = endian.Uint64(data[88:96])

	sb.ApfsMetaCrypto = types.WrappedMetaCryptoStateT{
		MajorVersion:    endian.Uint16(data[96:98]),
		MinorVersion:    endian.Uint16(data[98:100]),
		Cpflags:         types.CryptoFlagsT(endian.Uint32(data[100:104])),
		PersistentClass: types.CpKeyClassT(endian.Uint32(data[104:108])),
		KeyOsVersion:    types.CpKeyOsVersionT(endian.Uint32(data[108:112])),
		KeyRevision:     types.CpKeyRevisionT(endian.Uint16(data[112:114])),
		Unused:          endian.Uint16(data[114:116]),
	}

	off := 116
	sb.ApfsRootTreeType = endian.Uint32(data[off : off+4])
	off += 4
	sb.ApfsExtentreftreeType = endian.Uint32(data[off : off+4])
	off += 4
	sb.ApfsSnapMetatreeType = endian.Uint32(data[off : off+4])
	off += 4
	sb.ApfsOmapOid = types.OidT(endian.Uint64(data[off : off+8]))
	off += 8
	sb.ApfsRootTreeOid = types.OidT(endian.Uint64(data[off : off+8]))
	off += 8
	sb.ApfsExtentrefTreeOid = types.OidT(endian.Uint64(data[off : off+8]))
	off += 8
	sb.ApfsSnapMetaTreeOid = types.OidT(endian.Uint64(data[off : off+8]))
	off += 8
	sb.ApfsRevertToXid = types.XidT(endian.Uint64(data[off : off+8]))
	off += 8
	sb.ApfsRevertToSblockOid = types.OidT(endian.Uint64(data[off : off+8]))
	off += 8
	sb.ApfsNextObjId = endian.Uint64(data[off : off+8])
	off += 8
	sb.ApfsNumFiles = endian.Uint64(data[off : off+8])
	off += 8
	sb.ApfsNumDirectories = endian.Uint64(data[off : off+8])
	off += 8
	sb.ApfsNumSymlinks = endian.Uint64(data[off : off+8])
	off += 8
	sb.ApfsNumOtherFsobjects = endian.Uint64(data[off : off+8])
	off += 8
	sb.ApfsNumSnapshots = endian.Uint64(data[off : off+8])
	off += 8
	sb.ApfsTotalBlocksAlloced = endian.Uint64(data[off : off+8])
	off += 8
	sb.ApfsTotalBlocksFreed = endian.Uint64(data[off : off+8])
	off += 8
	copy(sb.ApfsVolUuid[:], data[off:off+16])
	off += 16
	sb.ApfsLastModTime = endian.Uint64(data[off : off+8])
	off += 8
	sb.ApfsFsFlags = endian.Uint64(data[off : off+8])
	off += 8

	sb.ApfsFormattedBy = decodeModifiedBy(data[off:off+48], endian)
	off += 48
	for i := 0; i < types.ApfsMaxHist; i++ {
		sb.ApfsModifiedBy[i] = decodeModifiedBy(data[off:off+48], endian)
		off += 48
	}

	copy(sb.ApfsVolname[:], data[off:off+types.ApfsVolnameLen])
	off += types.ApfsVolnameLen

	sb.ApfsNextDocId = endian.Uint32(data[off : off+4])
	off += 4
	sb.ApfsRole = endian.Uint16(data[off : off+2])
	off += 2
	sb.Reserved = endian.Uint16(data[off : off+2])
	off += 2
	sb.ApfsRootToXid = types.XidT(endian.Uint64(data[off : off+8]))
	off += 8
	sb.ApfsErStateOid = types.OidT(endian.Uint64(data[off : off+8]))
	off += 8
	sb.ApfsCloneinfoIdEpoch = endian.Uint64(data[off : off+8])
	off += 8
	sb.ApfsCloneinfoXid = endian.Uint64(data[off : off+8])
	off += 8
	sb.ApfsSnapMetaExtOid = types.OidT(endian.Uint64(data[off : off+8]))
	off += 8
	copy(sb.ApfsVolumeGroupId[:], data[off:off+16])
	off += 16
	sb.ApfsIntegrityMetaOid = types.OidT(endian.Uint64(data[off : off+8]))
	off += 8
	sb.ApfsFextTreeOid = types.OidT(endian.Uint64(data[off : off+8]))
	off += 8
	sb.ApfsFextTreeType = endian.Uint32(data[off : off+4])
	off += 4
	sb.ReservedType = endian.Uint32(data[off : off+4])
	off += 4
	sb.ReservedOid = types.OidT(endian.Uint64(data[off : off+8]))

	return sb, nil
}

func decodeModifiedBy(data []byte, endian binary.ByteOrder) types.ApfsModifiedByT {
	var m types.ApfsModifiedByT
	copy(m.Id[:], data[0:types.ApfsModifiedNamelen])
	m.Timestamp = endian.Uint64(data[32:40])
	m.LastXid = types.XidT(endian.Uint64(data[40:48]))
	return m
}

// Volume wraps a decoded volume superblock with convenience accessors.
type Volume struct {
	Superblock types.ApfsSuperblockT
}

// Name returns the volume's NUL-terminated UTF-8 name.
func (v Volume) Name() string {
	raw := v.Superblock.ApfsVolname[:]
	if i := bytes.IndexByte(raw, 0); i >= 0 {
		raw = raw[:i]
	}
	return strings.TrimRight(string(raw), "\x00")
}

// CaseInsensitive reports whether directory lookups on this volume ignore
// case (APFS_INCOMPAT_CASE_INSENSITIVE).
func (v Volume) CaseInsensitive() bool {
	return v.Superblock.ApfsIncompatibleFeatures&types.ApfsIncompatCaseInsensitive != 0
}

// NormalizationInsensitive reports whether directory lookups on this
// volume ignore Unicode normalization form
// (APFS_INCOMPAT_NORMALIZATION_INSENSITIVE).
func (v Volume) NormalizationInsensitive() bool {
	return v.Superblock.ApfsIncompatibleFeatures&types.ApfsIncompatNormalizationInsensitive != 0
}

// HashedDirectoryKeys reports whether this volume stores directory records
// under j_drec_hashed_key_t (case-insensitive or normalization-insensitive
// volumes) rather than the plain j_drec_key_t.
func (v Volume) HashedDirectoryKeys() bool {
	return v.CaseInsensitive() || v.NormalizationInsensitive()
}

// Sealed reports whether this volume's integrity is protected by a sealed
// file extent tree (APFS_INCOMPAT_SEALED_VOLUME).
func (v Volume) Sealed() bool {
	return v.Superblock.ApfsIncompatibleFeatures&types.ApfsIncompatSealedVolume != 0
}

// Role returns the volume's role within the container (ApfsVolRoleXxx).
func (v Volume) Role() uint16 {
	return v.Superblock.ApfsRole
}

// UUID returns the volume's unique identifier.
func (v Volume) UUID() uuid.UUID {
	return uuid.UUID(v.Superblock.ApfsVolUuid)
}
