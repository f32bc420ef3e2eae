package container

import (
	"encoding/binary"

	"github.com/go-forensics/apfs/internal/apfserrors"
	"github.com/go-forensics/apfs/internal/objects"
	"github.com/go-forensics/apfs/internal/types"
)

const reaperFixedSize = 112

// ReaperInfo reports whether a container-wide reap (the mechanism that lets
// large objects be deleted over several transactions) is in progress, and
// which object it's currently working on.
type ReaperInfo struct {
	NextReapID     uint64
	CompletedID    uint64
	Flags          uint32
	ObjectType     uint32
	ObjectSize     uint32
	FileSystemOid  types.OidT
	ObjectOid      types.OidT
	TransactionOid types.XidT
}

// InProgress reports whether the reaper is currently working through an
// object (the NrContinue flag).
func (r ReaperInfo) InProgress() bool {
	return r.Flags&types.NrContinue != 0
}

// ReaperState reads and decodes the container's reaper object, so a
// forensic caller can tell whether an in-progress reap might explain an
// object that's missing or only partially present. ok is false when the
// container has no reaper object. The container bootstrap already trusts
// the superblock at block 0 rather than walking the checkpoint ring, so
// this resolves NxReaperOid the same simplified way: directly as a physical
// block address, rather than through the ephemeral checkpoint mapping a
// live mount would use.
func (c *Container) ReaperState() (ReaperInfo, bool, error) {
	if c.superblock.NxReaperOid == 0 {
		return ReaperInfo{}, false, nil
	}

	block, err := c.reader.ReadBlock(types.Paddr(c.superblock.NxReaperOid))
	if err != nil {
		return ReaperInfo{}, false, err
	}
	if c.verifyChecksum {
		hdr, err := objects.DecodeHeader(block)
		if err != nil {
			return ReaperInfo{}, false, err
		}
		if !objects.VerifyChecksum(hdr, block) {
			return ReaperInfo{}, false, apfserrors.New(apfserrors.ChecksumMismatch, "container.ReaperState", nil)
		}
	}

	reaper, err := decodeReaper(block, c.endian)
	if err != nil {
		return ReaperInfo{}, false, err
	}

	return ReaperInfo{
		NextReapID:     reaper.NrNextReapId,
		CompletedID:    reaper.NrCompletedId,
		Flags:          reaper.NrFlags,
		ObjectType:     reaper.NrType,
		ObjectSize:     reaper.NrSize,
		FileSystemOid:  reaper.NrFsOid,
		ObjectOid:      reaper.NrOid,
		TransactionOid: reaper.NrXid,
	}, true, nil
}

// decodeReaper parses an nx_reaper_phys_t from data. The trailing state
// buffer is variable-length and is kept only as raw bytes — its contents
// are opaque without the reap-type-specific state layout, which no
// read-only forensic query needs.
func decodeReaper(data []byte, endian binary.ByteOrder) (types.NxReaperPhysT, error) {
	if len(data) < reaperFixedSize {
		return types.NxReaperPhysT{}, apfserrors.New(apfserrors.Corruption, "container.decodeReaper", nil)
	}

	hdr, err := objects.DecodeHeader(data)
	if err != nil {
		return types.NxReaperPhysT{}, err
	}

	var r types.NxReaperPhysT
	r.NrO = hdr
	r.NrNextReapId = endian.Uint64(data[32:40])
	r.NrCompletedId = endian.Uint64(data[40:48])
	r.NrHead = types.OidT(endian.Uint64(data[48:56]))
	r.NrTail = types.OidT(endian.Uint64(data[56:64]))
	r.NrFlags = endian.Uint32(data[64:68])
	r.NrRlcount = endian.Uint32(data[68:72])
	r.NrType = endian.Uint32(data[72:76])
	r.NrSize = endian.Uint32(data[76:80])
	r.NrFsOid = types.OidT(endian.Uint64(data[80:88]))
	r.NrOid = types.OidT(endian.Uint64(data[88:96]))
	r.NrXid = types.XidT(endian.Uint64(data[96:104]))
	r.NrNrleFlags = endian.Uint32(data[104:108])
	r.NrStateBufferSize = endian.Uint32(data[108:112])

	end := reaperFixedSize + int(r.NrStateBufferSize)
	if end > len(data) {
		end = len(data)
	}
	if end > reaperFixedSize {
		r.NrStateBuffer = append([]byte(nil), data[reaperFixedSize:end]...)
	}

	return r, nil
}
