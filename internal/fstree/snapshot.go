package fstree

import (
	"github.com/go-forensics/apfs/internal/btree"
	"github.com/go-forensics/apfs/internal/snapshot"
	"github.com/go-forensics/apfs/internal/types"
)

// SnapshotMetadata looks up the metadata record for the snapshot whose
// transaction identifier is xid.
func (t *Tree) SnapshotMetadata(xid types.XidT) (snapshot.Metadata, bool, error) {
	entry, ok, err := t.engine.Lookup(t.root, snapshot.MetadataComparator(t.endian, xid))
	if err != nil || !ok {
		return snapshot.Metadata{}, false, err
	}
	meta, err := snapshot.DecodeMetadata(entry.Key, entry.Value, t.endian)
	return meta, err == nil, err
}

// SnapshotNamed looks up the snapshot-name record for the given name and
// returns the transaction identifier it resolves to.
func (t *Tree) SnapshotNamed(name string) (snapshot.Name, bool, error) {
	entry, ok, err := t.engine.Lookup(t.root, snapshot.NameComparator(t.endian, name))
	if err != nil || !ok {
		return snapshot.Name{}, false, err
	}
	n, err := snapshot.DecodeName(entry.Key, entry.Value, t.endian)
	return n, err == nil, err
}

// ListSnapshots returns every snapshot-metadata record the volume's
// file-system B-tree carries, in transaction-identifier order.
func (t *Tree) ListSnapshots() ([]snapshot.Metadata, error) {
	var result []snapshot.Metadata
	var walkErr error

	err := t.engine.Each(t.root, func(e btree.Entry) bool {
		hdr, err := DecodeHeader(e.Key, t.endian)
		if err != nil {
			walkErr = err
			return false
		}
		if hdr.Type != types.JObjTypeSnapMetadata {
			return true
		}
		meta, err := snapshot.DecodeMetadata(e.Key, e.Value, t.endian)
		if err != nil {
			walkErr = err
			return false
		}
		result = append(result, meta)
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
