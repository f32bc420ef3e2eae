package services

import (
	"context"
	"encoding/binary"
	"fmt"
	"io"
	"path"
	"time"

	"github.com/go-forensics/apfs/internal/fstree"
	"github.com/go-forensics/apfs/internal/pathresolver"
	"github.com/go-forensics/apfs/internal/types"
)

const decmpfsXattrName = "com.apple.decmpfs"

// filesystemService implements FilesystemService over internal/fstree and
// internal/pathresolver, reached through the same container service that
// backs ContainerService so a container is only ever opened once.
type filesystemService struct {
	containers *containerService
}

// NewFilesystemService creates a filesystem service instance. containerSvc
// must be the value returned by NewContainerService, since filesystem
// navigation needs access to the volume trees a ContainerService opens.
func NewFilesystemService(containerSvc ContainerService) FilesystemService {
	cs, ok := containerSvc.(*containerService)
	if !ok {
		panic("services.NewFilesystemService: containerSvc must come from NewContainerService")
	}
	return &filesystemService{containers: cs}
}

func (fs *filesystemService) resolve(ctx context.Context, devicePath string, volumeID uint64, filePath string) (*fstree.Tree, uint64, error) {
	tree, resolver, err := fs.containers.volumeTreeFor(ctx, devicePath, volumeID)
	if err != nil {
		return nil, 0, err
	}

	inodeID, ok, err := resolver.Resolve(pathresolver.RootInodeID, filePath)
	if err != nil {
		return nil, 0, fmt.Errorf("resolve %s: %w", filePath, err)
	}
	if !ok {
		return nil, 0, fmt.Errorf("resolve %s: not found", filePath)
	}
	return tree, inodeID, nil
}

// ListDirectory lists the entries directly inside dirPath.
func (fs *filesystemService) ListDirectory(ctx context.Context, devicePath string, volumeID uint64, dirPath string) ([]FileInfo, error) {
	tree, dirInode, err := fs.resolve(ctx, devicePath, volumeID, dirPath)
	if err != nil {
		return nil, err
	}

	entries, err := tree.ReadDir(dirInode)
	if err != nil {
		return nil, fmt.Errorf("list %s: %w", dirPath, err)
	}

	files := make([]FileInfo, 0, len(entries))
	for _, e := range entries {
		info, err := fs.fileInfoFromInode(tree, e.FileID, path.Join(dirPath, e.Name))
		if err != nil {
			return nil, err
		}
		files = append(files, info)
	}
	return files, nil
}

// GetFileInfo resolves filePath to its inode and reports its metadata.
func (fs *filesystemService) GetFileInfo(ctx context.Context, devicePath string, volumeID uint64, filePath string) (FileInfo, error) {
	tree, inodeID, err := fs.resolve(ctx, devicePath, volumeID, filePath)
	if err != nil {
		return FileInfo{}, err
	}
	return fs.fileInfoFromInode(tree, inodeID, filePath)
}

// GetDirectoryInfo is GetFileInfo plus the directory's immediate children.
func (fs *filesystemService) GetDirectoryInfo(ctx context.Context, devicePath string, volumeID uint64, dirPath string) (DirectoryInfo, error) {
	info, err := fs.GetFileInfo(ctx, devicePath, volumeID, dirPath)
	if err != nil {
		return DirectoryInfo{}, err
	}

	children, err := fs.ListDirectory(ctx, devicePath, volumeID, dirPath)
	if err != nil {
		return DirectoryInfo{}, fmt.Errorf("list children of %s: %w", dirPath, err)
	}

	var total uint64
	for _, c := range children {
		total += c.Size
	}

	return DirectoryInfo{
		FileInfo:   info,
		ChildCount: uint64(len(children)),
		TotalSize:  total,
		Children:   children,
	}, nil
}

// GetInode reports metadata for a file already identified by inode ID.
func (fs *filesystemService) GetInode(ctx context.Context, devicePath string, volumeID uint64, inodeID uint64) (FileInfo, error) {
	tree, resolver, err := fs.containers.volumeTreeFor(ctx, devicePath, volumeID)
	if err != nil {
		return FileInfo{}, err
	}

	fullPath, err := resolver.FullPath(inodeID)
	if err != nil {
		fullPath = ""
	}
	return fs.fileInfoFromInode(tree, inodeID, fullPath)
}

// ListSnapshots enumerates a volume's snapshots.
func (fs *filesystemService) ListSnapshots(ctx context.Context, devicePath string, volumeID uint64) ([]SnapshotInfo, error) {
	tree, _, err := fs.containers.volumeTreeFor(ctx, devicePath, volumeID)
	if err != nil {
		return nil, err
	}

	snaps, err := tree.ListSnapshots()
	if err != nil {
		return nil, fmt.Errorf("list snapshots: %w", err)
	}

	infos := make([]SnapshotInfo, 0, len(snaps))
	for _, s := range snaps {
		infos = append(infos, SnapshotInfo{
			Name:       s.Name,
			Xid:        uint64(s.Xid),
			CreateTime: s.CreateTime,
			ChangeTime: s.ChangeTime,
			Inode:      s.Inum,
		})
	}
	return infos, nil
}

// ExtractFile resolves filePath to its inode and streams its data stream
// content to w.
func (fs *filesystemService) ExtractFile(ctx context.Context, devicePath string, volumeID uint64, filePath string, w io.Writer) (int64, error) {
	tree, inodeID, err := fs.resolve(ctx, devicePath, volumeID, filePath)
	if err != nil {
		return 0, err
	}

	inode, ok, err := tree.Inode(inodeID)
	if err != nil {
		return 0, fmt.Errorf("read inode %d: %w", inodeID, err)
	}
	if !ok {
		return 0, fmt.Errorf("inode %d not found", inodeID)
	}
	if !inode.IsRegular() {
		return 0, fmt.Errorf("%s: not a regular file", filePath)
	}

	size, ok, err := inode.DataStreamSize(binary.LittleEndian)
	if err != nil {
		return 0, fmt.Errorf("read data stream size for inode %d: %w", inodeID, err)
	}
	if !ok {
		return 0, nil
	}

	return tree.ReadFile(inodeID, size, w)
}

func (fs *filesystemService) fileInfoFromInode(tree *fstree.Tree, inodeID uint64, filePath string) (FileInfo, error) {
	inode, ok, err := tree.Inode(inodeID)
	if err != nil {
		return FileInfo{}, fmt.Errorf("read inode %d: %w", inodeID, err)
	}
	if !ok {
		return FileInfo{}, fmt.Errorf("inode %d not found", inodeID)
	}
	v := inode.Value

	info := FileInfo{
		InodeID:   inodeID,
		Name:      path.Base(filePath),
		Path:      filePath,
		Type:      fileTypeOf(v.Mode),
		Mode:      uint16(v.Mode),
		Owner:     uint32(v.Owner),
		Group:     uint32(v.Group),
		Created:   time.Unix(0, int64(v.CreateTime)),
		Modified:  time.Unix(0, int64(v.ModTime)),
		Accessed:  time.Unix(0, int64(v.AccessTime)),
		Changed:   time.Unix(0, int64(v.ChangeTime)),
		Flags:     v.InternalFlags,
		HardLinks: v.NchildrenOrNlink,
	}

	if v.Mode&types.ModeIFMT == types.ModeIFDIR {
		return info, nil
	}

	if size, ok, err := inode.DataStreamSize(binary.LittleEndian); err != nil {
		return FileInfo{}, fmt.Errorf("read data stream size for inode %d: %w", inodeID, err)
	} else if ok {
		info.Size = size
	} else {
		extents, err := tree.FileExtents(inodeID)
		if err != nil {
			return FileInfo{}, fmt.Errorf("read extents for inode %d: %w", inodeID, err)
		}
		for _, e := range extents {
			info.Size += e.Length
		}
	}

	xattrs, err := tree.ListXattrs(inodeID)
	if err != nil {
		return FileInfo{}, fmt.Errorf("read xattrs for inode %d: %w", inodeID, err)
	}
	for _, x := range xattrs {
		info.ExtendedAttrs = append(info.ExtendedAttrs, x.Name)
		if x.Name == decmpfsXattrName {
			info.Compressed = true
		}
	}

	return info, nil
}

func fileTypeOf(mode types.Mode) string {
	switch mode & types.ModeIFMT {
	case types.ModeIFDIR:
		return "directory"
	case types.ModeIFLNK:
		return "symlink"
	case types.ModeIFIFO:
		return "fifo"
	case types.ModeIFCHR:
		return "char-device"
	case types.ModeIFBLK:
		return "block-device"
	case types.ModeIFSOCK:
		return "socket"
	case types.ModeIFWHT:
		return "whiteout"
	default:
		return "file"
	}
}
