package btree

import (
	"encoding/binary"

	"github.com/go-forensics/apfs/internal/apfserrors"
)

// Comparator orders a candidate key against the key being searched for. It
// returns a negative number if key sorts before the target, zero if it
// equals the target, and a positive number if it sorts after.
type Comparator func(key []byte) int

// Search performs a binary search over node's table of contents using cmp.
// It returns the entry with the greatest key for which cmp(key) <= 0 (the
// "floor" entry) and whether that entry's key compares exactly equal.
//
// On a nonleaf node the floor entry is always the correct child to descend
// into, whether or not the key matches exactly (APFS B-trees route a
// lookup for a key between two separator keys into the lower one's
// subtree). On a leaf node, callers should only accept the result when
// exact is true.
func Search(node *Node, endian binary.ByteOrder, keySize, valSize int, cmp Comparator, lenient bool) (entry Entry, exact bool, err error) {
	if node.KeyCount == 0 {
		return Entry{}, false, apfserrors.New(apfserrors.Corruption, "btree.Search", nil)
	}

	reader, err := newEntryReader(node, endian, keySize, valSize, lenient)
	if err != nil {
		return Entry{}, false, err
	}

	low, high := 0, int(node.KeyCount)-1
	floor := -1

	for low <= high {
		mid := (low + high) / 2

		e, err := reader.at(mid)
		if err != nil {
			return Entry{}, false, err
		}

		switch c := cmp(e.Key); {
		case c < 0:
			// e.Key sorts before the target: it's a valid (if not yet
			// best) floor candidate, and the target must be further right.
			floor = mid
			low = mid + 1
		case c > 0:
			// e.Key sorts after the target: discard it and search left.
			high = mid - 1
		default:
			e.Index = mid
			return e, true, nil
		}
	}

	if floor < 0 {
		return Entry{}, false, apfserrors.New(apfserrors.OutOfBounds, "btree.Search", nil)
	}
	e, err := reader.at(floor)
	if err != nil {
		return Entry{}, false, err
	}
	e.Index = floor
	return e, false, nil
}
