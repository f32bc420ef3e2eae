// Package services is the public-facing API of the forensic core: a thin
// layer over internal/container, internal/fstree, internal/pathresolver,
// and internal/snapshot that a CLI or any other caller drives without
// reaching into internal/ itself.
package services

import (
	"context"
	"io"
	"time"
)

// ContainerInfo represents basic container metadata.
type ContainerInfo struct {
	DevicePath   string
	UUID         string
	BlockSize    uint32
	BlockCount   uint64
	VolumeCount  uint32
	NextXid      uint64
	Volumes      []VolumeInfo
	ReaperActive bool
}

// VolumeInfo represents basic volume metadata.
type VolumeInfo struct {
	ObjectID        uint64
	UUID            string
	Name            string
	Role            uint16
	FileCount       uint64
	DirectoryCount  uint64
	SymlinkCount    uint64
	SnapshotCount   uint64
	Sealed          bool
	CaseInsensitive bool
	LastModified    time.Time
}

// FileInfo represents detailed file information.
type FileInfo struct {
	InodeID       uint64
	Name          string
	Path          string
	Type          string
	Size          uint64
	Mode          uint16
	Owner         uint32
	Group         uint32
	Created       time.Time
	Modified      time.Time
	Accessed      time.Time
	Changed       time.Time
	Flags         uint64
	HardLinks     int32
	ExtendedAttrs []string
	Compressed    bool
}

// DirectoryInfo represents directory information with statistics.
type DirectoryInfo struct {
	FileInfo
	ChildCount uint64
	TotalSize  uint64
	Children   []FileInfo
}

// SnapshotInfo represents snapshot metadata.
type SnapshotInfo struct {
	Name       string
	Xid        uint64
	CreateTime time.Time
	ChangeTime time.Time
	Inode      uint64
}

// ContainerService provides container-level, read-only operations.
type ContainerService interface {
	// OpenContainer opens a container image at devicePath and returns its
	// metadata, including the volumes it declares.
	OpenContainer(ctx context.Context, devicePath string) (ContainerInfo, error)

	// ListVolumes enumerates the volumes the container at devicePath
	// declares, opening it first if it isn't already open.
	ListVolumes(ctx context.Context, devicePath string) ([]VolumeInfo, error)

	// Close closes every container this service has opened.
	Close() error
}

// FilesystemService provides read-only filesystem navigation within an
// already-open container's volume.
type FilesystemService interface {
	// ListDirectory lists the entries directly inside dirPath.
	ListDirectory(ctx context.Context, devicePath string, volumeID uint64, dirPath string) ([]FileInfo, error)

	// GetFileInfo resolves filePath to its inode and reports its metadata.
	GetFileInfo(ctx context.Context, devicePath string, volumeID uint64, filePath string) (FileInfo, error)

	// GetDirectoryInfo is GetFileInfo plus the directory's immediate children.
	GetDirectoryInfo(ctx context.Context, devicePath string, volumeID uint64, dirPath string) (DirectoryInfo, error)

	// GetInode reports metadata for a file already identified by inode ID,
	// without requiring a path resolution.
	GetInode(ctx context.Context, devicePath string, volumeID uint64, inodeID uint64) (FileInfo, error)

	// ListSnapshots enumerates a volume's snapshots.
	ListSnapshots(ctx context.Context, devicePath string, volumeID uint64) ([]SnapshotInfo, error)

	// ExtractFile resolves filePath to a regular file and streams its
	// content to w, returning the number of bytes written.
	ExtractFile(ctx context.Context, devicePath string, volumeID uint64, filePath string, w io.Writer) (int64, error)
}
