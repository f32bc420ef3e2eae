package blockio

import (
	"fmt"
	"os"
	"time"

	"github.com/go-forensics/apfs/internal/apfserrors"
	"github.com/go-forensics/apfs/internal/types"
)

// FileReader reads fixed-size blocks from an os.File (a container image or
// an already-opened raw device), backed by an LRU block cache. It
// implements Reader.
type FileReader struct {
	file        *os.File
	blockSize   uint32
	totalBlocks uint64
	totalSize   uint64
	cache       *blockCache
	observer    apfserrors.Observer
}

// Option configures a FileReader.
type Option func(*FileReader)

// WithCacheBytes overrides the default 64MB block cache size.
func WithCacheBytes(maxBytes int64) Option {
	return func(r *FileReader) { r.cache = newBlockCache(maxBytes) }
}

// WithObserver attaches an Observer notified after every physical read.
func WithObserver(o apfserrors.Observer) Option {
	return func(r *FileReader) { r.observer = o }
}

// NewFileReader wraps f as a block reader with the given block size. f's
// total size is determined via Stat and must be a whole multiple of
// blockSize.
func NewFileReader(f *os.File, blockSize uint32, opts ...Option) (*FileReader, error) {
	if blockSize == 0 {
		return nil, apfserrors.New(apfserrors.Corruption, "blockio.NewFileReader",
			fmt.Errorf("block size must be nonzero"))
	}

	info, err := f.Stat()
	if err != nil {
		return nil, apfserrors.New(apfserrors.Io, "blockio.NewFileReader", err)
	}

	size := uint64(info.Size())
	r := &FileReader{
		file:        f,
		blockSize:   blockSize,
		totalBlocks: size / uint64(blockSize),
		totalSize:   size,
		cache:       newBlockCache(64 * 1024 * 1024),
		observer:    apfserrors.NopObserver,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r, nil
}

func (r *FileReader) BlockSize() uint32   { return r.blockSize }
func (r *FileReader) TotalBlocks() uint64 { return r.totalBlocks }
func (r *FileReader) TotalSize() uint64   { return r.totalSize }

// IsValidAddress reports whether address names a block within range.
func (r *FileReader) IsValidAddress(address types.Paddr) bool {
	return validateAddress(address, r.totalBlocks) == nil
}

// CanReadRange reports whether count consecutive blocks from address are
// all within range.
func (r *FileReader) CanReadRange(address types.Paddr, count uint32) bool {
	if count == 0 {
		return r.IsValidAddress(address)
	}
	return validateAddress(address, r.totalBlocks) == nil &&
		validateAddress(address+types.Paddr(count)-1, r.totalBlocks) == nil
}

// ReadBlock returns a copy of the block at address, consulting the cache
// first and populating it on a miss.
func (r *FileReader) ReadBlock(address types.Paddr) ([]byte, error) {
	start := time.Now()
	if err := validateAddress(address, r.totalBlocks); err != nil {
		return nil, apfserrors.New(apfserrors.OutOfBounds, "blockio.ReadBlock", err)
	}

	if data, ok := r.cache.get(address); ok {
		r.observer("blockio.ReadBlock", address, len(data), time.Since(start))
		return append([]byte(nil), data...), nil
	}

	offset := int64(address) * int64(r.blockSize)
	buf := make([]byte, r.blockSize)
	if _, err := r.file.ReadAt(buf, offset); err != nil {
		return nil, apfserrors.New(apfserrors.Io, "blockio.ReadBlock", err)
	}

	r.cache.put(address, buf)
	r.observer("blockio.ReadBlock", address, len(buf), time.Since(start))
	return append([]byte(nil), buf...), nil
}

// ReadBlockRange returns count consecutive blocks starting at address,
// concatenated. Each block is read (and cached) individually so a partially
// cached range still benefits from the cache.
func (r *FileReader) ReadBlockRange(address types.Paddr, count uint32) ([]byte, error) {
	if !r.CanReadRange(address, count) {
		return nil, apfserrors.New(apfserrors.OutOfBounds, "blockio.ReadBlockRange",
			fmt.Errorf("range [%d, %d) out of bounds", address, uint64(address)+uint64(count)))
	}

	out := make([]byte, 0, uint64(count)*uint64(r.blockSize))
	for i := uint32(0); i < count; i++ {
		block, err := r.ReadBlock(address + types.Paddr(i))
		if err != nil {
			return nil, err
		}
		out = append(out, block...)
	}
	return out, nil
}

// ReadBytes returns length bytes starting offset bytes into the block at
// address, spanning into following blocks as needed.
func (r *FileReader) ReadBytes(address types.Paddr, offset uint32, length uint32) ([]byte, error) {
	if offset >= r.blockSize && length > 0 {
		extraBlocks := types.Paddr(offset / r.blockSize)
		return r.ReadBytes(address+extraBlocks, offset%r.blockSize, length)
	}

	blocksNeeded := (offset + length + r.blockSize - 1) / r.blockSize
	if blocksNeeded == 0 {
		blocksNeeded = 1
	}

	raw, err := r.ReadBlockRange(address, blocksNeeded)
	if err != nil {
		return nil, err
	}
	if uint32(len(raw)) < offset+length {
		return nil, apfserrors.New(apfserrors.Corruption, "blockio.ReadBytes",
			fmt.Errorf("short range: need %d bytes, have %d", offset+length, len(raw)))
	}
	return raw[offset : offset+length], nil
}

// CacheStats reports the block cache's hit/miss/eviction counters.
func (r *FileReader) CacheStats() (hits, misses, evictions int64) {
	return r.cache.stats()
}

// ClearCache drops every cached block.
func (r *FileReader) ClearCache() { r.cache.clear() }

// Close closes the underlying file.
func (r *FileReader) Close() error {
	if r.file != nil {
		return r.file.Close()
	}
	return nil
}

var _ Reader = (*FileReader)(nil)
