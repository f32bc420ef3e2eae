//go:build !linux

package blockio

import (
	"fmt"
	"os"

	"github.com/go-forensics/apfs/internal/apfserrors"
)

// OpenDevice opens path for reading. direct is ignored on non-Linux
// platforms: O_DIRECT has no portable equivalent, so acquisitions there go
// through the OS page cache like any other file read.
func OpenDevice(path string, direct bool) (*os.File, error) {
	f, err := os.OpenFile(path, os.O_RDONLY, 0)
	if err != nil {
		return nil, apfserrors.New(apfserrors.Io, "blockio.OpenDevice",
			fmt.Errorf("open %s: %w", path, err))
	}
	return f, nil
}
