// Package container decodes the container superblock (NXSB) and the
// volume superblocks (APSB) it indirectly points to, and ties together the
// container-level object map, every volume's own object map, and each
// volume's file-system tree into a single entry point.
package container

import (
	"encoding/binary"

	"github.com/go-forensics/apfs/internal/apfserrors"
	"github.com/go-forensics/apfs/internal/objects"
	"github.com/go-forensics/apfs/internal/types"
)

// NxSuperblockSize is the on-disk size, in bytes, of nx_superblock_t.
const NxSuperblockSize = 1408

// DecodeSuperblock parses the container superblock at the start of data.
// It does not verify the checksum; callers that need that guarantee
// should call objects.VerifyChecksum themselves, the same way
// objectmap.Open and fstree's Open do for the trees built on top of this.
func DecodeSuperblock(data []byte, endian binary.ByteOrder) (types.NxSuperblockT, error) {
	if len(data) < NxSuperblockSize {
		return types.NxSuperblockT{}, apfserrors.New(apfserrors.Corruption, "container.DecodeSuperblock", nil)
	}

	hdr, err := objects.DecodeHeader(data)
	if err != nil {
		return types.NxSuperblockT{}, err
	}

	var sb types.NxSuperblockT
	sb.NxO = hdr
	sb.NxMagic = endian.Uint32(data[32:36])
	if sb.NxMagic != types.NxMagic {
		return types.NxSuperblockT{}, apfserrors.New(apfserrors.Corruption, "container.DecodeSuperblock", nil)
	}

	sb.NxBlockSize = endian.Uint32(data[36:40])
	sb.NxBlockCount = endian.Uint64(data[40:48])
	sb.NxFeatures = endian.Uint64(data[48:56])
	sb.NxReadonlyCompatibleFeatures = endian.Uint64(data[56:64])
	sb.NxIncompatibleFeatures = endian.Uint64(data[64:72])
	copy(sb.NxUuid[:], data[72:88])
	sb.NxNextOid = types.OidT(endian.Uint64(data[88:96]))
	sb.NxNextXid = types.XidT(endian.Uint64(data[96:104]))
	sb.NxXpDescBlocks = endian.Uint32(data[104:108])
	sb.NxXpDataBlocks = endian.Uint32(data[108:112])
	sb.NxXpDescBase = types.Paddr(endian.Uint64(data[112:120]))
	sb.NxXpDataBase = types.Paddr(endian.Uint64(data[120:128]))
	sb.NxXpDescNext = endian.Uint32(data[128:132])
	sb.NxXpDataNext = endian.Uint32(data[132:136])
	sb.NxXpDescIndex = endian.Uint32(data[136:140])
	sb.NxXpDescLen = endian.Uint32(data[140:144])
	sb.NxXpDataIndex = endian.Uint32(data[144:148])
	sb.NxXpDataLen = endian.Uint32(data[148:152])
	sb.NxSpacemanOid = types.OidT(endian.Uint64(data[152:160]))
	sb.NxOmapOid = types.OidT(endian.Uint64(data[160:168]))
	sb.NxReaperOid = types.OidT(endian.Uint64(data[168:176]))
	sb.NxTestType = endian.Uint32(data[176:180])
	sb.NxMaxFileSystems = endian.Uint32(data[180:184])

	off := 184
	for i := 0; i < types.NxMaxFileSystems; i++ {
		sb.NxFsOid[i] = types.OidT(endian.Uint64(data[off : off+8]))
		off += 8
	}
	for i := 0; i < types.NxNumCounters; i++ {
		sb.NxCounters[i] = endian.Uint64(data[off : off+8])
		off += 8
	}

	sb.NxBlockedOutPrange = decodePrange(data[off:off+16], endian)
	off += 16
	sb.NxEvictMappingTreeOid = types.OidT(endian.Uint64(data[off : off+8]))
	off += 8
	sb.NxFlags = endian.Uint64(data[off : off+8])
	off += 8
	sb.NxEfiJumpstart = types.Paddr(endian.Uint64(data[off : off+8]))
	off += 8
	copy(sb.NxFusionUuid[:], data[off:off+16])
	off += 16
	sb.NxKeylocker = decodePrange(data[off:off+16], endian)
	off += 16

	for i := 0; i < types.NxEphInfoCount; i++ {
		sb.NxEphemeralInfo[i] = endian.Uint64(data[off : off+8])
		off += 8
	}

	sb.NxTestOid = types.OidT(endian.Uint64(data[off : off+8]))
	off += 8
	sb.NxFusionMtOid = types.OidT(endian.Uint64(data[off : off+8]))
	off += 8
	sb.NxFusionWbcOid = types.OidT(endian.Uint64(data[off : off+8]))
	off += 8
	sb.NxFusionWbc = decodePrange(data[off:off+16], endian)
	off += 16
	sb.NxNewestMountedVersion = endian.Uint64(data[off : off+8])
	off += 8
	sb.NxMkbLocker = decodePrange(data[off:off+16], endian)

	return sb, nil
}

func decodePrange(data []byte, endian binary.ByteOrder) types.Prange {
	return types.Prange{
		PrStartPaddr: types.Paddr(endian.Uint64(data[0:8])),
		PrBlockCount: endian.Uint64(data[8:16]),
	}
}
