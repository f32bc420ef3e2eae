package fstree

import (
	"encoding/binary"
	"io"
	"sort"

	"github.com/go-forensics/apfs/internal/apfserrors"
	"github.com/go-forensics/apfs/internal/blockio"
	"github.com/go-forensics/apfs/internal/btree"
	"github.com/go-forensics/apfs/internal/objectmap"
	"github.com/go-forensics/apfs/internal/types"
)

// readFileChunk bounds a single physical read while walking a file extent,
// so a corrupt or adversarial extent length can't force one huge allocation.
const readFileChunk = 4 << 20

// Tree is a volume's file-system B-tree: the catalog of every inode,
// directory entry, extended attribute, extent, and sibling record a
// volume owns. File-system B-tree nodes are virtual objects, so every
// descent indirects child pointers through the volume's object map at a
// fixed transaction identifier (the snapshot or live state being read).
type Tree struct {
	engine     *btree.Tree
	root       types.Paddr
	endian     binary.ByteOrder
	hashedKeys bool
}

// Resolver builds the btree.ChildResolver a file-system Tree descends
// with: every child OID is a virtual object, resolved through the
// volume's object map at xid.
func Resolver(om *objectmap.Map, omapRoot types.Paddr, xid types.XidT) btree.ChildResolver {
	return func(oid types.OidT) (types.Paddr, error) {
		entry, ok, err := om.Lookup(omapRoot, oid, xid)
		if err != nil {
			return 0, err
		}
		if !ok {
			return 0, apfserrors.New(apfserrors.Corruption, "fstree.Resolver", nil)
		}
		return entry.Address, nil
	}
}

// Open resolves treeOID (the volume superblock's apfs_root_tree_oid)
// through resolve to find the tree's root node, and returns a Tree ready
// for lookups. hashedKeys should reflect whether the volume's
// incompatible-features flags mark it case-insensitive or
// normalization-insensitive (APFS_INCOMPAT_CASE_INSENSITIVE /
// APFS_INCOMPAT_NORMALIZATION_INSENSITIVE): such volumes store directory
// records under j_drec_hashed_key_t instead of the plain j_drec_key_t.
// lenient relaxes the node free-space bounds check for images known to
// trip it.
func Open(reader blockio.Reader, resolve btree.ChildResolver, treeOID types.OidT, endian binary.ByteOrder, verifyChecksum bool, cache *btree.NodeCache, hashedKeys bool, lenient bool) (*Tree, error) {
	root, err := resolve(treeOID)
	if err != nil {
		return nil, err
	}

	engine := btree.New(btree.Config{
		Reader:         reader,
		Endian:         endian,
		Resolve:        resolve,
		Cache:          cache,
		VerifyChecksum: verifyChecksum,
		Lenient:        lenient,
	})

	return &Tree{engine: engine, root: root, endian: endian, hashedKeys: hashedKeys}, nil
}

// Inode looks up the inode record for the given object identifier.
func (t *Tree) Inode(objectID uint64) (Inode, bool, error) {
	entry, ok, err := t.engine.Lookup(t.root, InodeComparator(t.endian, objectID))
	if err != nil || !ok {
		return Inode{}, false, err
	}
	inode, err := DecodeInode(entry.Key, entry.Value, t.endian)
	return inode, err == nil, err
}

// DirEntry looks up a single named entry of a directory, case-folding the
// lookup name the same way the volume's own hashed keys were written when
// hashedKeys is set.
func (t *Tree) DirEntry(parentID uint64, name string, caseFold bool) (DirEntry, bool, error) {
	var cmp btree.Comparator
	if t.hashedKeys {
		cmp = DirEntryComparator(t.endian, parentID, name, caseFold)
	} else {
		cmp = DirEntryComparatorPlain(t.endian, parentID, name)
	}

	entry, ok, err := t.engine.Lookup(t.root, cmp)
	if err != nil || !ok {
		return DirEntry{}, false, err
	}
	dirEntry, err := DecodeDirEntry(entry.Key, entry.Value, t.endian, t.hashedKeys)
	return dirEntry, err == nil, err
}

// ReadDir lists every directory entry whose parent is parentID, in the
// order the file-system B-tree stores them (hash order for a hashed-key
// volume, name order otherwise).
func (t *Tree) ReadDir(parentID uint64) ([]DirEntry, error) {
	var entries []DirEntry
	var walkErr error

	err := t.engine.Each(t.root, func(e btree.Entry) bool {
		hdr, err := DecodeHeader(e.Key, t.endian)
		if err != nil {
			walkErr = err
			return false
		}
		if hdr.Type != types.JObjTypeDirRec {
			return true
		}
		if hdr.ObjectID != parentID {
			// Directory records for a given parent are contiguous once the
			// header comparison reaches it; once we've passed parentID with
			// no match left, nothing later in tree order can match either.
			return hdr.ObjectID < parentID
		}
		d, err := DecodeDirEntry(e.Key, e.Value, t.endian, t.hashedKeys)
		if err != nil {
			walkErr = err
			return false
		}
		entries = append(entries, d)
		return true
	})
	if err != nil {
		return nil, err
	}
	if walkErr != nil {
		return nil, walkErr
	}
	return entries, nil
}

// Xattr looks up a single extended attribute of an object by name.
func (t *Tree) Xattr(objectID uint64, name string) (Xattr, bool, error) {
	entry, ok, err := t.engine.Lookup(t.root, XattrComparator(t.endian, objectID, name))
	if err != nil || !ok {
		return Xattr{}, false, err
	}
	x, err := DecodeXattr(entry.Key, entry.Value, t.endian)
	return x, err == nil, err
}

// ListXattrs lists every extended attribute attached to an object.
func (t *Tree) ListXattrs(objectID uint64) ([]Xattr, error) {
	var result []Xattr
	var walkErr error

	err := t.engine.Each(t.root, func(e btree.Entry) bool {
		hdr, err := DecodeHeader(e.Key, t.endian)
		if err != nil {
			walkErr = err
			return false
		}
		if hdr.Type != types.JObjTypeXattr {
			return true
		}
		if hdr.ObjectID != objectID {
			return hdr.ObjectID < objectID
		}
		x, err := DecodeXattr(e.Key, e.Value, t.endian)
		if err != nil {
			walkErr = err
			return false
		}
		result = append(result, x)
		return true
	})
	if err != nil {
		return nil, err
	}
	if walkErr != nil {
		return nil, walkErr
	}
	return result, nil
}

// FileExtents lists every file extent of an object's default data stream,
// in logical-address order.
func (t *Tree) FileExtents(objectID uint64) ([]FileExtent, error) {
	var result []FileExtent
	var walkErr error

	err := t.engine.Each(t.root, func(e btree.Entry) bool {
		hdr, err := DecodeHeader(e.Key, t.endian)
		if err != nil {
			walkErr = err
			return false
		}
		if hdr.Type != types.JObjTypeFileExtent {
			return true
		}
		if hdr.ObjectID != objectID {
			return hdr.ObjectID < objectID
		}
		extent, err := DecodeFileExtent(e.Key, e.Value, t.endian)
		if err != nil {
			walkErr = err
			return false
		}
		result = append(result, extent)
		return true
	})
	if err != nil {
		return nil, err
	}
	if walkErr != nil {
		return nil, walkErr
	}
	sort.Slice(result, func(i, j int) bool { return result[i].LogicalAddr < result[j].LogicalAddr })
	return result, nil
}

// ReadFile streams an object's default data stream to w, following its
// file extents in logical-address order. maxBytes caps the total bytes
// written (the data stream's reported size), since the last extent's
// physical allocation is often rounded up past the stream's real length.
func (t *Tree) ReadFile(objectID uint64, maxBytes uint64, w io.Writer) (int64, error) {
	extents, err := t.FileExtents(objectID)
	if err != nil {
		return 0, err
	}

	reader := t.engine.Reader()
	var written int64
	remaining := maxBytes

	for _, e := range extents {
		if remaining == 0 {
			break
		}

		extentLen := e.Length
		if extentLen > remaining {
			extentLen = remaining
		}
		remaining -= extentLen

		addr := types.Paddr(e.PhysBlock)
		for pos := uint64(0); pos < extentLen; {
			chunk := extentLen - pos
			if chunk > readFileChunk {
				chunk = readFileChunk
			}

			data, err := reader.ReadBytes(addr, uint32(pos), uint32(chunk))
			if err != nil {
				return written, err
			}
			n, err := w.Write(data)
			written += int64(n)
			if err != nil {
				return written, err
			}
			pos += chunk
		}
	}

	return written, nil
}

// Siblings lists every sibling-link record sharing the given inode number
// (every hard link's own name).
func (t *Tree) Siblings(inodeID uint64) ([]SiblingLink, error) {
	var result []SiblingLink
	var walkErr error

	err := t.engine.Each(t.root, func(e btree.Entry) bool {
		hdr, err := DecodeHeader(e.Key, t.endian)
		if err != nil {
			walkErr = err
			return false
		}
		if hdr.Type != types.JObjTypeSiblingLink {
			return true
		}
		if hdr.ObjectID != inodeID {
			return hdr.ObjectID < inodeID
		}
		link, err := DecodeSiblingLink(e.Key, e.Value, t.endian)
		if err != nil {
			walkErr = err
			return false
		}
		result = append(result, link)
		return true
	})
	if err != nil {
		return nil, err
	}
	if walkErr != nil {
		return nil, walkErr
	}
	return result, nil
}
