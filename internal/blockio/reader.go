// Package blockio provides the read-only block-addressed access that every
// higher-level reader in this module is built on top of: a container image
// or raw device, addressed in fixed-size blocks, with an LRU cache in front
// of it.
package blockio

import (
	"fmt"

	"github.com/go-forensics/apfs/internal/types"
)

// Reader is the read-only subset of block-device access this module needs.
// Trimmed from a BlockDeviceReader/BlockDeviceWriter/BlockDevice split: a
// forensic reader never writes, so only the reader half survives.
type Reader interface {
	// ReadBlock returns a copy of the block at address.
	ReadBlock(address types.Paddr) ([]byte, error)

	// ReadBlockRange returns count consecutive blocks starting at address,
	// concatenated.
	ReadBlockRange(address types.Paddr, count uint32) ([]byte, error)

	// ReadBytes returns length bytes starting offset bytes into the block
	// at address. offset+length may span into following blocks.
	ReadBytes(address types.Paddr, offset uint32, length uint32) ([]byte, error)

	// BlockSize returns the size of a single block in bytes.
	BlockSize() uint32

	// TotalBlocks returns the total number of blocks backing this reader.
	TotalBlocks() uint64

	// TotalSize returns the total size backing this reader, in bytes.
	TotalSize() uint64

	// IsValidAddress reports whether address names a block within range.
	IsValidAddress(address types.Paddr) bool

	// CanReadRange reports whether count consecutive blocks from address
	// are all within range.
	CanReadRange(address types.Paddr, count uint32) bool
}

func validateAddress(address types.Paddr, totalBlocks uint64) error {
	if address < 0 || uint64(address) >= totalBlocks {
		return fmt.Errorf("block address %d out of range [0, %d)", address, totalBlocks)
	}
	return nil
}
