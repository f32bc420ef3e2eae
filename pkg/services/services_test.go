package services

import (
	"context"
	"encoding/binary"
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/go-forensics/apfs/internal/objects"
	"github.com/go-forensics/apfs/internal/types"
)

const testBlockSize = 4096

func writeTestSuperblock(t *testing.T, f *os.File, omapOid, fsOid0 uint64) {
	t.Helper()
	endian := binary.LittleEndian

	data := make([]byte, testBlockSize)
	endian.PutUint32(data[32:36], types.NxMagic)
	endian.PutUint32(data[36:40], testBlockSize)
	endian.PutUint64(data[160:168], omapOid)
	endian.PutUint64(data[184:192], fsOid0)
	checksum := objects.Fletcher64(data)
	copy(data[0:8], checksum[:])

	_, err := f.WriteAt(data, 0)
	require.NoError(t, err)
}

func writeTestOmapHeader(t *testing.T, f *os.File, blockIndex int, treeOID uint64) {
	t.Helper()
	endian := binary.LittleEndian

	data := make([]byte, testBlockSize)
	endian.PutUint64(data[48:56], treeOID)
	checksum := objects.Fletcher64(data)
	copy(data[0:8], checksum[:])

	_, err := f.WriteAt(data, int64(blockIndex)*testBlockSize)
	require.NoError(t, err)
}

// writeTestOmapLeaf writes a fixed-size-KV object map leaf mapping a single
// (oid, xid) pair to a physical address. The key offset is relative to the
// key heap (immediately after the table of contents); the value offset
// counts backward from the end of the storage area, since this node
// carries no root footer.
func writeTestOmapLeaf(t *testing.T, f *os.File, blockIndex int, oid, xid, paddr uint64) {
	t.Helper()
	endian := binary.LittleEndian
	const header = 56
	storageSize := testBlockSize - header

	data := make([]byte, testBlockSize)
	endian.PutUint16(data[32:34], types.BtnodeLeaf|types.BtnodeFixedKvSize)
	endian.PutUint32(data[36:40], 1)
	endian.PutUint16(data[40:42], 0)
	endian.PutUint16(data[42:44], 4)

	const keyHeapStart = 4
	keyAbs := keyHeapStart
	valAbs := keyHeapStart + 16

	keyOff := 0
	valOff := storageSize - valAbs
	endian.PutUint16(data[header:header+2], uint16(keyOff))
	endian.PutUint16(data[header+2:header+4], uint16(valOff))
	endian.PutUint64(data[header+keyAbs:header+keyAbs+8], oid)
	endian.PutUint64(data[header+keyAbs+8:header+keyAbs+16], xid)
	endian.PutUint32(data[header+valAbs:header+valAbs+4], 0)
	endian.PutUint32(data[header+valAbs+4:header+valAbs+8], 1)
	endian.PutUint64(data[header+valAbs+8:header+valAbs+16], paddr)

	checksum := objects.Fletcher64(data)
	copy(data[0:8], checksum[:])

	_, err := f.WriteAt(data, int64(blockIndex)*testBlockSize)
	require.NoError(t, err)
}

func writeTestVolumeSuperblock(t *testing.T, f *os.File, blockIndex int, name string) {
	t.Helper()
	endian := binary.LittleEndian

	data := make([]byte, testBlockSize)
	endian.PutUint32(data[32:36], types.ApfsMagic)
	copy(data[704:704+len(name)], name)
	checksum := objects.Fletcher64(data)
	copy(data[0:8], checksum[:])

	_, err := f.WriteAt(data, int64(blockIndex)*testBlockSize)
	require.NoError(t, err)
}

// buildTestImage lays out a minimal container image with a single, empty
// volume, following the same block plan as internal/container's own
// TestContainerOpenListsVolume.
func buildTestImage(t *testing.T) string {
	t.Helper()

	f, err := os.CreateTemp(t.TempDir(), "services-*.img")
	require.NoError(t, err)
	t.Cleanup(func() { f.Close() })

	writeTestSuperblock(t, f, 1, 50)
	writeTestOmapHeader(t, f, 1, 2)
	writeTestOmapLeaf(t, f, 2, 50, 0, 3)
	writeTestVolumeSuperblock(t, f, 3, "TestVol")

	return f.Name()
}

func TestServiceFactory(t *testing.T) {
	factory := NewServiceFactory()

	require.NoError(t, factory.Initialize())
	assert.True(t, factory.IsInitialized())

	containerSvc, err := factory.ContainerService()
	require.NoError(t, err)
	assert.NotNil(t, containerSvc)

	filesystemSvc, err := factory.FilesystemService()
	require.NoError(t, err)
	assert.NotNil(t, filesystemSvc)

	require.NoError(t, factory.Shutdown())
	assert.False(t, factory.IsInitialized())
}

func TestContainerServiceOpensImage(t *testing.T) {
	imagePath := buildTestImage(t)
	svc := NewContainerService()
	ctx := context.Background()

	info, err := svc.OpenContainer(ctx, imagePath)
	require.NoError(t, err)
	assert.Equal(t, uint32(testBlockSize), info.BlockSize)
	require.Len(t, info.Volumes, 1)
	assert.Equal(t, "TestVol", info.Volumes[0].Name)

	volumes, err := svc.ListVolumes(ctx, imagePath)
	require.NoError(t, err)
	assert.Len(t, volumes, 1)

	require.NoError(t, svc.Close())
}

func TestContainerServiceRejectsMissingFile(t *testing.T) {
	svc := NewContainerService()
	_, err := svc.OpenContainer(context.Background(), "/this/path/definitely/does/not/exist")
	assert.Error(t, err)
}

func TestFilesystemServiceListsRootDirectory(t *testing.T) {
	imagePath := buildTestImage(t)
	containerSvc := NewContainerService()
	fsSvc := NewFilesystemService(containerSvc)
	ctx := context.Background()

	// The synthetic volume has no file-system tree root wired up, so this
	// exercises the error path rather than a populated listing — a real
	// image would return the root inode's entries here.
	_, err := fsSvc.ListDirectory(ctx, imagePath, 50, "/")
	assert.Error(t, err)

	require.NoError(t, containerSvc.Close())
}
