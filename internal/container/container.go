package container

import (
	"encoding/binary"

	"github.com/google/uuid"

	"github.com/go-forensics/apfs/internal/apfserrors"
	"github.com/go-forensics/apfs/internal/blockio"
	"github.com/go-forensics/apfs/internal/btree"
	"github.com/go-forensics/apfs/internal/fstree"
	"github.com/go-forensics/apfs/internal/objectmap"
	"github.com/go-forensics/apfs/internal/objects"
	"github.com/go-forensics/apfs/internal/types"
)

// Container is an opened APFS container: its superblock, its object map,
// and the reader every volume's own structures are read through. The core
// never reconciles an inconsistent checkpoint ring — it trusts the single
// superblock handed to it by reader, the way a forensic image is presented
// as already-selected-valid state.
type Container struct {
	reader         blockio.Reader
	endian         binary.ByteOrder
	verifyChecksum bool
	lenient        bool
	cache          *btree.NodeCache
	superblock     types.NxSuperblockT
	omap           *objectmap.Map
}

// Open reads the container superblock from block 0 of reader and opens
// the container-level object map it points to. The container's own object
// map is always a physical object, addressed directly by NxOmapOid — the
// same convention objectmap.Open already relies on for every file-system
// object map. lenient relaxes the B-tree node free-space bounds check for
// images known to violate it; it should stay false by default.
func Open(reader blockio.Reader, endian binary.ByteOrder, verifyChecksum bool, cache *btree.NodeCache, lenient bool) (*Container, error) {
	block, err := reader.ReadBlock(0)
	if err != nil {
		return nil, err
	}
	if verifyChecksum {
		hdr, err := objects.DecodeHeader(block)
		if err != nil {
			return nil, err
		}
		if !objects.VerifyChecksum(hdr, block) {
			return nil, apfserrors.New(apfserrors.ChecksumMismatch, "container.Open", nil)
		}
	}

	sb, err := DecodeSuperblock(block, endian)
	if err != nil {
		return nil, err
	}

	omap, err := objectmap.Open(reader, types.Paddr(sb.NxOmapOid), endian, verifyChecksum, cache, lenient)
	if err != nil {
		return nil, err
	}

	return &Container{
		reader:         reader,
		endian:         endian,
		verifyChecksum: verifyChecksum,
		lenient:        lenient,
		cache:          cache,
		superblock:     sb,
		omap:           omap,
	}, nil
}

// Superblock returns the container's decoded superblock.
func (c *Container) Superblock() types.NxSuperblockT { return c.superblock }

// UUID returns the container's unique identifier.
func (c *Container) UUID() uuid.UUID { return uuid.UUID(c.superblock.NxUuid) }

// xid is the transaction identifier every container-level virtual-object
// resolution uses: the transaction the trusted superblock was itself
// written in.
func (c *Container) xid() types.XidT { return c.superblock.NxO.OXid }

// VolumeOids returns the virtual object identifiers of every volume slot
// the container superblock populates (NxFsOid entries that aren't zero).
func (c *Container) VolumeOids() []types.OidT {
	var oids []types.OidT
	for _, oid := range c.superblock.NxFsOid {
		if oid != 0 {
			oids = append(oids, oid)
		}
	}
	return oids
}

// OpenVolume resolves a volume's virtual object identifier through the
// container object map and decodes its superblock.
func (c *Container) OpenVolume(oid types.OidT) (*Volume, error) {
	entry, ok, err := c.omap.Lookup(types.Paddr(c.omap.TreeOID()), oid, c.xid())
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, apfserrors.New(apfserrors.Corruption, "container.OpenVolume", nil)
	}

	block, err := c.reader.ReadBlock(entry.Address)
	if err != nil {
		return nil, err
	}
	if c.verifyChecksum {
		hdr, err := objects.DecodeHeader(block)
		if err != nil {
			return nil, err
		}
		if !objects.VerifyChecksum(hdr, block) {
			return nil, apfserrors.New(apfserrors.ChecksumMismatch, "container.OpenVolume", nil)
		}
	}

	sb, err := DecodeVolumeSuperblock(block, c.endian)
	if err != nil {
		return nil, err
	}
	return &Volume{Superblock: sb}, nil
}

// FileSystemTree opens a volume's own object map and resolves its
// file-system B-tree root, ready for inode/directory/xattr/extent lookups.
func (c *Container) FileSystemTree(v *Volume) (*fstree.Tree, error) {
	volOmap, err := objectmap.Open(c.reader, types.Paddr(v.Superblock.ApfsOmapOid), c.endian, c.verifyChecksum, c.cache, c.lenient)
	if err != nil {
		return nil, err
	}

	volXid := v.Superblock.ApfsO.OXid
	resolve := fstree.Resolver(volOmap, types.Paddr(volOmap.TreeOID()), volXid)

	return fstree.Open(c.reader, resolve, v.Superblock.ApfsRootTreeOid, c.endian, c.verifyChecksum, c.cache, v.HashedDirectoryKeys(), c.lenient)
}
