package btree

import (
	"encoding/binary"

	"github.com/go-forensics/apfs/internal/apfserrors"
)

// Entry is one key/value pair (or key/child-pointer pair, on a nonleaf
// node) extracted from a node's table of contents.
type Entry struct {
	Index int
	Key   []byte
	Value []byte
}

// entryReader extracts table-of-contents entries from a node's storage
// area. Fixed-size trees store an array of kvoff_t (2 uint16 offsets) and
// require the caller to supply the key/value sizes from the tree's
// btree_info_t; variable-size trees store an array of kvloc_t (two nloc_t,
// four uint16 fields) that carries its own lengths.
//
// Key offsets recorded in the table of contents are relative to the start
// of the key heap, which immediately follows the entries table; value
// offsets are relative to the end of the node's value area (the start of
// the trailing btree_info_t on a root node, or the end of the storage area
// otherwise) and count backward, since values are packed from the high end
// of the node toward the low end as they're inserted.
type entryReader struct {
	node         *Node
	endian       binary.ByteOrder
	tableStart   int
	keyHeapStart int
	valueAreaEnd int
	keySize      int // fixed-size trees only
	valSize      int // fixed-size trees only
}

// newEntryReader validates a node's storage-area layout and builds a reader
// over it. When lenient is false (the default), it also checks that the
// node's declared free-space size fits within what remains after the
// entries table and the free-space offset — a check some real-world
// containers are known to violate, so callers who need to read those images
// anyway can pass lenient to skip only that one check.
func newEntryReader(n *Node, endian binary.ByteOrder, keySize, valSize int, lenient bool) (*entryReader, error) {
	tableStart := int(n.TableSpace.Off)
	if tableStart < 0 || tableStart > len(n.Data) {
		return nil, apfserrors.New(apfserrors.Corruption, "btree.entryReader", nil)
	}

	keyHeapStart := tableStart + int(n.TableSpace.Len)
	if keyHeapStart < tableStart || keyHeapStart > len(n.Data) {
		return nil, apfserrors.New(apfserrors.Corruption, "btree.entryReader", nil)
	}

	valueAreaEnd := n.ValueAreaEnd()
	if valueAreaEnd < keyHeapStart || valueAreaEnd > len(n.Data) {
		// The footer (when present) must sit entirely beyond the entries
		// table and its key heap; an overlap means a corrupt node.
		return nil, apfserrors.New(apfserrors.Corruption, "btree.entryReader", nil)
	}

	freeSpaceStart := keyHeapStart + int(n.FreeSpace.Off)
	if freeSpaceStart < keyHeapStart || freeSpaceStart > len(n.Data) {
		return nil, apfserrors.New(apfserrors.Corruption, "btree.entryReader", nil)
	}
	if !lenient && freeSpaceStart+int(n.FreeSpace.Len) > len(n.Data) {
		return nil, apfserrors.New(apfserrors.Corruption, "btree.entryReader", nil)
	}

	return &entryReader{
		node:         n,
		endian:       endian,
		tableStart:   tableStart,
		keyHeapStart: keyHeapStart,
		valueAreaEnd: valueAreaEnd,
		keySize:      keySize,
		valSize:      valSize,
	}, nil
}

// keyAt resolves a key-heap-relative offset to an absolute slice of size
// bytes within the node's storage area.
func (r *entryReader) keyAt(off, size int) ([]byte, bool) {
	abs := r.keyHeapStart + off
	if abs < r.keyHeapStart || abs+size > len(r.node.Data) {
		return nil, false
	}
	return r.node.Data[abs : abs+size], true
}

// valueAt resolves a value-area-relative backward offset to an absolute
// slice of size bytes within the node's storage area.
func (r *entryReader) valueAt(off, size int) ([]byte, bool) {
	abs := r.valueAreaEnd - off
	if abs < 0 || abs+size > r.valueAreaEnd {
		return nil, false
	}
	return r.node.Data[abs : abs+size], true
}

func (r *entryReader) at(i int) (Entry, error) {
	if r.node.HasFixedKVSize() {
		return r.fixedAt(i)
	}
	return r.variableAt(i)
}

func (r *entryReader) fixedAt(i int) (Entry, error) {
	const entrySize = 4 // kvoff_t: uint16 key offset, uint16 value offset
	off := r.tableStart + i*entrySize
	if off+entrySize > len(r.node.Data) {
		return Entry{}, apfserrors.New(apfserrors.Corruption, "btree.fixedAt", nil)
	}

	keyOff := int(r.endian.Uint16(r.node.Data[off : off+2]))
	valOff := int(r.endian.Uint16(r.node.Data[off+2 : off+4]))

	entry := Entry{Index: i}
	entry.Key, _ = r.keyAt(keyOff, r.keySize)

	// Nonleaf values in a fixed-value tree are child OIDs, always 8 bytes
	// regardless of the tree's own value size; a leaf's fixed value is
	// r.valSize bytes. Both are packed into the value area from its end
	// backward, like every value offset in this format.
	if !r.node.IsLeaf() {
		entry.Value, _ = r.valueAt(valOff, 8)
	} else {
		entry.Value, _ = r.valueAt(valOff, r.valSize)
	}

	if entry.Key == nil || entry.Value == nil {
		return Entry{}, apfserrors.New(apfserrors.Corruption, "btree.fixedAt", nil)
	}
	return entry, nil
}

func (r *entryReader) variableAt(i int) (Entry, error) {
	const entrySize = 8 // kvloc_t: uint16 x4 (key off/len, value off/len)
	off := r.tableStart + i*entrySize
	if off+entrySize > len(r.node.Data) {
		return Entry{}, apfserrors.New(apfserrors.Corruption, "btree.variableAt", nil)
	}

	keyOff := int(r.endian.Uint16(r.node.Data[off : off+2]))
	keyLen := int(r.endian.Uint16(r.node.Data[off+2 : off+4]))
	valOff := int(r.endian.Uint16(r.node.Data[off+4 : off+6]))
	valLen := int(r.endian.Uint16(r.node.Data[off+6 : off+8]))

	entry := Entry{Index: i}
	entry.Key, _ = r.keyAt(keyOff, keyLen)
	entry.Value, _ = r.valueAt(valOff, valLen)
	if entry.Key == nil || entry.Value == nil {
		return Entry{}, apfserrors.New(apfserrors.Corruption, "btree.variableAt", nil)
	}
	return entry, nil
}
