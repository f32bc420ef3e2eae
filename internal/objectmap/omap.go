// Package objectmap parses an object map's header and resolves (OID, XID)
// pairs to the physical address of the object version visible at that
// transaction, the indirection every virtual and ephemeral object in an
// APFS container goes through.
package objectmap

import (
	"encoding/binary"

	"github.com/go-forensics/apfs/internal/apfserrors"
	"github.com/go-forensics/apfs/internal/blockio"
	"github.com/go-forensics/apfs/internal/btree"
	"github.com/go-forensics/apfs/internal/objects"
	"github.com/go-forensics/apfs/internal/types"
)

// HeaderSize is the minimum length, in bytes, DecodeHeader accepts: the
// omap_phys_t fields through om_most_recent_snap. The two pending-revert
// fields that complete the 88-byte structure are decoded only when present.
const HeaderSize = 72

// keySize/valSize are the fixed sizes of an object map B-tree's key
// (ok_oid + ok_xid) and value (ov_flags + ov_size + ov_paddr) records.
const (
	keySize = 16
	valSize = 16
)

// DecodeHeader parses the omap_phys_t header at the start of data.
func DecodeHeader(data []byte, endian binary.ByteOrder) (types.OmapPhysT, error) {
	if len(data) < HeaderSize {
		return types.OmapPhysT{}, apfserrors.New(apfserrors.Corruption, "objectmap.DecodeHeader", nil)
	}

	hdr, err := objects.DecodeHeader(data)
	if err != nil {
		return types.OmapPhysT{}, err
	}

	var om types.OmapPhysT
	om.OmO = hdr
	om.OmFlags = endian.Uint32(data[32:36])
	om.OmSnapCount = endian.Uint32(data[36:40])
	om.OmTreeType = endian.Uint32(data[40:44])
	om.OmSnapshotTreeType = endian.Uint32(data[44:48])
	om.OmTreeOid = types.OidT(endian.Uint64(data[48:56]))
	om.OmSnapshotTreeOid = types.OidT(endian.Uint64(data[56:64]))
	om.OmMostRecentSnap = types.XidT(endian.Uint64(data[64:72]))
	if len(data) >= HeaderSize+16 {
		om.OmPendingRevertMin = types.XidT(endian.Uint64(data[72:80]))
		om.OmPendingRevertMax = types.XidT(endian.Uint64(data[80:88]))
	}
	return om, nil
}

// Map resolves (OID, XID) pairs to physical addresses via an object map's
// B-tree, which is always a physical tree (object maps root the
// indirection that every other tree relies on, so they can't point back
// through another object map).
type Map struct {
	header types.OmapPhysT
	tree   *btree.Tree
}

// Open decodes the object map header at addr and wraps its tree for
// lookups. lenient relaxes the free-space bounds check some real-world
// containers are known to violate; it should stay false unless a caller
// has already hit that failure on a specific image.
func Open(reader blockio.Reader, addr types.Paddr, endian binary.ByteOrder, verifyChecksum bool, cache *btree.NodeCache, lenient bool) (*Map, error) {
	block, err := reader.ReadBlock(addr)
	if err != nil {
		return nil, err
	}
	if verifyChecksum {
		hdr, err := objects.DecodeHeader(block)
		if err != nil {
			return nil, err
		}
		if !objects.VerifyChecksum(hdr, block) {
			return nil, apfserrors.New(apfserrors.ChecksumMismatch, "objectmap.Open", nil)
		}
	}

	header, err := DecodeHeader(block, endian)
	if err != nil {
		return nil, err
	}

	tree := btree.New(btree.Config{
		Reader:         reader,
		Endian:         endian,
		Resolve:        identityResolver,
		Cache:          cache,
		VerifyChecksum: verifyChecksum,
		KeySize:        keySize,
		ValSize:        valSize,
		Lenient:        lenient,
	})

	return &Map{header: header, tree: tree}, nil
}

// identityResolver treats a child OID as already being a physical block
// address, which is true of every object map B-tree node.
func identityResolver(oid types.OidT) (types.Paddr, error) { return types.Paddr(oid), nil }

// TreeOID returns the OID of the B-tree holding this map's entries.
func (m *Map) TreeOID() types.OidT { return m.header.OmTreeOid }

// MostRecentSnapshotXID returns the transaction ID of the most recent
// snapshot recorded in this object map.
func (m *Map) MostRecentSnapshotXID() types.XidT { return m.header.OmMostRecentSnap }

// Entry is a resolved object map record: the physical address an object
// lives at, its size in blocks, and its flags.
type Entry struct {
	Address types.Paddr
	Size    uint32
	Flags   uint32
}

// IsDeleted reports whether this entry marks its object as deleted (a
// tombstone kept so an older snapshot can still resolve the OID).
func (e Entry) IsDeleted() bool { return e.Flags&types.OmapValDeleted != 0 }

// Lookup finds the version of oid visible at or before xid: the object map
// key space orders entries by (OID, XID), so the floor entry with a
// matching OID and XID <= the requested one is the correct version. A
// missing mapping is reported as (Entry{}, false, nil).
func (m *Map) Lookup(root types.Paddr, oid types.OidT, xid types.XidT) (Entry, bool, error) {
	entry, ok, err := m.tree.Lookup(root, compareKey(oid, xid))
	if err != nil || !ok {
		return Entry{}, false, err
	}

	gotOID, _ := decodeKey(entry.Key)
	if gotOID != oid {
		return Entry{}, false, nil
	}

	val := decodeValue(entry.Value)
	return Entry{Address: val.OvPaddr, Size: val.OvSize, Flags: val.OvFlags}, true, nil
}

// compareKey orders object map keys lexicographically by (OID, XID), the
// same ordering the on-disk B-tree is built with. The floor entry Search
// returns for this comparator is exactly the object map's "most recent
// version at or before xid" semantics: the greatest (oid, xid) pair not
// exceeding the target.
func compareKey(targetOID types.OidT, targetXID types.XidT) btree.Comparator {
	return func(key []byte) int {
		oid, xid := decodeKey(key)
		switch {
		case oid < targetOID:
			return -1
		case oid > targetOID:
			return 1
		case xid < targetXID:
			return -1
		case xid > targetXID:
			return 1
		default:
			return 0
		}
	}
}

func decodeKey(key []byte) (types.OidT, types.XidT) {
	oid := types.OidT(binary.LittleEndian.Uint64(key[0:8]))
	xid := types.XidT(binary.LittleEndian.Uint64(key[8:16]))
	return oid, xid
}

func decodeValue(value []byte) types.OmapValT {
	return types.OmapValT{
		OvFlags: binary.LittleEndian.Uint32(value[0:4]),
		OvSize:  binary.LittleEndian.Uint32(value[4:8]),
		OvPaddr: types.Paddr(binary.LittleEndian.Uint64(value[8:16])),
	}
}
