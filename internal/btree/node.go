// Package btree decodes APFS B-tree nodes and provides a generic
// binary-search descent engine shared by the object map tree and every
// file-system B-tree (the two concrete trees just supply a key comparator
// and a way to resolve a child value into the next node's bytes).
package btree

import (
	"encoding/binary"

	"github.com/go-forensics/apfs/internal/apfserrors"
	"github.com/go-forensics/apfs/internal/objects"
	"github.com/go-forensics/apfs/internal/types"
)

// HeaderSize is the fixed-size portion of btree_node_phys_t preceding the
// node's variable-length storage area (btn_data).
const HeaderSize = 56

// FooterSize is the on-disk size of the btree_info_t a root node carries at
// the end of its storage area.
const FooterSize = 40

// Node is a decoded B-tree node: its object header, its fixed fields, and
// the raw storage area the table of contents, keys, free space and values
// all live in.
type Node struct {
	Header     types.ObjPhysT
	Flags      uint16
	Level      uint16
	KeyCount   uint32
	TableSpace types.NlocT
	FreeSpace  types.NlocT
	Data       []byte
	// Footer is the btree_info_t trailing a root node's storage area, or nil
	// for a non-root node (which carries no such footer).
	Footer *types.BtreeInfoT
}

// IsRoot reports whether this node is the root of its tree.
func (n *Node) IsRoot() bool { return n.Flags&types.BtnodeRoot != 0 }

// IsLeaf reports whether this node is a leaf (has no children).
func (n *Node) IsLeaf() bool { return n.Flags&types.BtnodeLeaf != 0 }

// HasFixedKVSize reports whether the node's table of contents is an array
// of kvoff_t (fixed size) rather than kvloc_t (variable size).
func (n *Node) HasFixedKVSize() bool { return n.Flags&types.BtnodeFixedKvSize != 0 }

// IsHashed reports whether nonleaf entries carry a child hash alongside
// the child OID.
func (n *Node) IsHashed() bool { return n.Flags&types.BtnodeHashed != 0 }

// HasHeader reports whether this node was stored with an object header
// (false only for some nodes in noheader B-trees).
func (n *Node) HasHeader() bool { return n.Flags&types.BtnodeNoheader == 0 }

// ValueAreaEnd returns the offset, within Data, that value offsets are
// counted backward from: the start of the trailing btree_info_t on a root
// node, or the end of Data on any other node.
func (n *Node) ValueAreaEnd() int {
	if n.Footer != nil {
		return len(n.Data) - FooterSize
	}
	return len(n.Data)
}

// DecodeNode parses data as a btree_node_phys_t and verifies its Fletcher-64
// checksum when verifyChecksum is true. data must be exactly one block.
func DecodeNode(data []byte, endian binary.ByteOrder, verifyChecksum bool) (*Node, error) {
	if len(data) < HeaderSize {
		return nil, apfserrors.New(apfserrors.Corruption, "btree.DecodeNode", nil)
	}

	hdr, err := objects.DecodeHeader(data)
	if err != nil {
		return nil, err
	}
	if verifyChecksum && !objects.VerifyChecksum(hdr, data) {
		return nil, apfserrors.New(apfserrors.ChecksumMismatch, "btree.DecodeNode", nil)
	}

	n := &Node{
		Header:   hdr,
		Flags:    endian.Uint16(data[32:34]),
		Level:    endian.Uint16(data[34:36]),
		KeyCount: endian.Uint32(data[36:40]),
		TableSpace: types.NlocT{
			Off: endian.Uint16(data[40:42]),
			Len: endian.Uint16(data[42:44]),
		},
		FreeSpace: types.NlocT{
			Off: endian.Uint16(data[44:46]),
			Len: endian.Uint16(data[46:48]),
		},
	}
	if len(data) > HeaderSize {
		n.Data = data[HeaderSize:]
	}

	if n.IsRoot() {
		footer, err := decodeFooter(n.Data, endian)
		if err != nil {
			return nil, err
		}
		n.Footer = &footer
	}

	return n, nil
}

// decodeFooter parses the btree_info_t a root node stores in the last
// FooterSize bytes of its storage area.
func decodeFooter(data []byte, endian binary.ByteOrder) (types.BtreeInfoT, error) {
	if len(data) < FooterSize {
		return types.BtreeInfoT{}, apfserrors.New(apfserrors.Corruption, "btree.decodeFooter", nil)
	}
	f := data[len(data)-FooterSize:]

	return types.BtreeInfoT{
		BtFixed: types.BtreeInfoFixedT{
			BtFlags:    endian.Uint32(f[0:4]),
			BtNodeSize: endian.Uint32(f[4:8]),
			BtKeySize:  endian.Uint32(f[8:12]),
			BtValSize:  endian.Uint32(f[12:16]),
		},
		BtLongestKey: endian.Uint32(f[16:20]),
		BtLongestVal: endian.Uint32(f[20:24]),
		BtKeyCount:   endian.Uint64(f[24:32]),
		BtNodeCount:  endian.Uint64(f[32:40]),
	}, nil
}
