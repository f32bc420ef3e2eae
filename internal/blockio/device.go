//go:build linux

package blockio

import (
	"fmt"
	"os"

	"golang.org/x/sys/unix"

	"github.com/go-forensics/apfs/internal/apfserrors"
)

// OpenDevice opens path for unbuffered reading. When direct is true it adds
// O_DIRECT so a forensic acquisition reads the device's blocks straight from
// storage, bypassing the page cache (and any cached copy of blocks another
// process has since overwritten). Plain image files generally don't need
// O_DIRECT; raw block devices under active use do.
func OpenDevice(path string, direct bool) (*os.File, error) {
	flags := os.O_RDONLY
	if direct {
		flags |= unix.O_DIRECT
	}

	f, err := os.OpenFile(path, flags, 0)
	if err != nil {
		if direct {
			// O_DIRECT has alignment requirements some filesystems/devices
			// reject outright; fall back to buffered reads rather than fail
			// the open entirely.
			f, err = os.OpenFile(path, os.O_RDONLY, 0)
		}
		if err != nil {
			return nil, apfserrors.New(apfserrors.Io, "blockio.OpenDevice",
				fmt.Errorf("open %s: %w", path, err))
		}
	}
	return f, nil
}
