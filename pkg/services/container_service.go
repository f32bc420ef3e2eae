package services

import (
	"context"
	"encoding/binary"
	"fmt"
	"os"
	"sync"
	"time"

	"github.com/go-forensics/apfs/internal/blockio"
	"github.com/go-forensics/apfs/internal/btree"
	"github.com/go-forensics/apfs/internal/container"
	"github.com/go-forensics/apfs/internal/fstree"
	"github.com/go-forensics/apfs/internal/pathresolver"
)

// blockReaderFor opens a block reader over f. The block size isn't known
// until the superblock is decoded, so this reads block 0 at the standard
// 4096-byte size first, decodes just enough to learn the real NxBlockSize,
// and rebuilds the reader at that size if it differs.
func blockReaderFor(f *os.File) (blockio.Reader, error) {
	const probeSize = 4096

	probe, err := blockio.NewFileReader(f, probeSize)
	if err != nil {
		return nil, err
	}

	block, err := probe.ReadBlock(0)
	if err != nil {
		return nil, err
	}
	sb, err := container.DecodeSuperblock(block, binary.LittleEndian)
	if err != nil {
		return nil, err
	}
	if sb.NxBlockSize == probeSize {
		return probe, nil
	}

	return blockio.NewFileReader(f, sb.NxBlockSize)
}

// containerHandle is an opened container image plus the machinery built on
// top of it: the underlying file, the block reader, and the decoded
// container.
type containerHandle struct {
	file      *os.File
	container *container.Container
	volumes   map[uint64]*container.Volume

	mu    sync.Mutex
	trees map[uint64]*volumeTree
}

// volumeTree bundles a volume's file-system tree with the path resolver
// built on top of it, lazily constructed on first filesystem access.
type volumeTree struct {
	tree     *fstree.Tree
	resolver *pathresolver.Resolver
}

// containerService implements ContainerService over internal/blockio and
// internal/container. Containers stay open across calls keyed by
// devicePath, the way a forensic examiner works one image at a time across
// a whole session.
type containerService struct {
	mu      sync.Mutex
	cache   *btree.NodeCache
	lenient bool
	open    map[string]*containerHandle
}

// NewContainerService creates a container service instance. A single node
// cache is shared across every container this service opens.
func NewContainerService() ContainerService {
	return NewLenientContainerService(false)
}

// NewLenientContainerService creates a container service instance whose
// opened containers relax the B-tree node free-space bounds check when
// lenient is true. Callers should only pass true after a strict parse has
// already failed on a specific image.
func NewLenientContainerService(lenient bool) ContainerService {
	return &containerService{
		cache:   btree.NewNodeCache(4096),
		lenient: lenient,
		open:    make(map[string]*containerHandle),
	}
}

func (cs *containerService) handle(devicePath string) (*containerHandle, bool) {
	cs.mu.Lock()
	defer cs.mu.Unlock()
	h, ok := cs.open[devicePath]
	return h, ok
}

// openHandle opens devicePath if it isn't already open, reading its
// container superblock and every volume it declares.
func (cs *containerService) openHandle(ctx context.Context, devicePath string) (*containerHandle, error) {
	if h, ok := cs.handle(devicePath); ok {
		return h, nil
	}

	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	default:
	}

	f, err := os.Open(devicePath)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", devicePath, err)
	}

	reader, err := blockReaderFor(f)
	if err != nil {
		f.Close()
		return nil, fmt.Errorf("%s: %w", devicePath, err)
	}

	c, err := container.Open(reader, binary.LittleEndian, true, cs.cache, cs.lenient)
	if err != nil {
		f.Close()
		return nil, fmt.Errorf("open container %s: %w", devicePath, err)
	}

	volumes := make(map[uint64]*container.Volume)
	for _, oid := range c.VolumeOids() {
		vol, err := c.OpenVolume(oid)
		if err != nil {
			f.Close()
			return nil, fmt.Errorf("open volume %d in %s: %w", uint64(oid), devicePath, err)
		}
		volumes[uint64(oid)] = vol
	}

	h := &containerHandle{file: f, container: c, volumes: volumes, trees: make(map[uint64]*volumeTree)}

	cs.mu.Lock()
	cs.open[devicePath] = h
	cs.mu.Unlock()

	return h, nil
}

// OpenContainer opens a container at the specified path.
func (cs *containerService) OpenContainer(ctx context.Context, devicePath string) (ContainerInfo, error) {
	h, err := cs.openHandle(ctx, devicePath)
	if err != nil {
		return ContainerInfo{}, err
	}
	return cs.buildContainerInfo(devicePath, h)
}

// ListVolumes enumerates all volumes in the container.
func (cs *containerService) ListVolumes(ctx context.Context, devicePath string) ([]VolumeInfo, error) {
	info, err := cs.OpenContainer(ctx, devicePath)
	if err != nil {
		return nil, err
	}
	return info.Volumes, nil
}

// volumeTreeFor opens devicePath if needed and returns the file-system tree
// and path resolver for volumeID, building and caching them on first use.
func (cs *containerService) volumeTreeFor(ctx context.Context, devicePath string, volumeID uint64) (*fstree.Tree, *pathresolver.Resolver, error) {
	h, err := cs.openHandle(ctx, devicePath)
	if err != nil {
		return nil, nil, err
	}

	h.mu.Lock()
	defer h.mu.Unlock()

	if vt, ok := h.trees[volumeID]; ok {
		return vt.tree, vt.resolver, nil
	}

	vol, ok := h.volumes[volumeID]
	if !ok {
		return nil, nil, fmt.Errorf("volume %d not found in %s", volumeID, devicePath)
	}

	tree, err := h.container.FileSystemTree(vol)
	if err != nil {
		return nil, nil, fmt.Errorf("open file-system tree for volume %d in %s: %w", volumeID, devicePath, err)
	}

	resolver := pathresolver.New(tree, vol.CaseInsensitive(), 0)
	vt := &volumeTree{tree: tree, resolver: resolver}
	h.trees[volumeID] = vt
	return tree, resolver, nil
}

// Close closes every container this service has opened.
func (cs *containerService) Close() error {
	cs.mu.Lock()
	defer cs.mu.Unlock()

	var firstErr error
	for _, h := range cs.open {
		if err := h.file.Close(); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	cs.open = make(map[string]*containerHandle)
	return firstErr
}

func (cs *containerService) buildContainerInfo(devicePath string, h *containerHandle) (ContainerInfo, error) {
	sb := h.container.Superblock()

	info := ContainerInfo{
		DevicePath:  devicePath,
		UUID:        h.container.UUID().String(),
		BlockSize:   sb.NxBlockSize,
		BlockCount:  sb.NxBlockCount,
		VolumeCount: uint32(len(h.volumes)),
		NextXid:     uint64(sb.NxNextXid),
	}

	if reaper, ok, err := h.container.ReaperState(); err == nil && ok {
		info.ReaperActive = reaper.InProgress()
	}

	for _, oid := range h.container.VolumeOids() {
		vol := h.volumes[uint64(oid)]
		info.Volumes = append(info.Volumes, volumeInfoOf(uint64(oid), vol))
	}

	return info, nil
}

func volumeInfoOf(oid uint64, vol *container.Volume) VolumeInfo {
	sb := vol.Superblock
	return VolumeInfo{
		ObjectID:        oid,
		UUID:            vol.UUID().String(),
		Name:            vol.Name(),
		Role:            vol.Role(),
		FileCount:       sb.ApfsNumFiles,
		DirectoryCount:  sb.ApfsNumDirectories,
		SymlinkCount:    sb.ApfsNumSymlinks,
		SnapshotCount:   sb.ApfsNumSnapshots,
		Sealed:          vol.Sealed(),
		CaseInsensitive: vol.CaseInsensitive(),
		LastModified:    time.Unix(0, int64(sb.ApfsLastModTime)),
	}
}
