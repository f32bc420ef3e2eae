package snapshot

import (
	"encoding/binary"

	"github.com/go-forensics/apfs/internal/apfserrors"
	"github.com/go-forensics/apfs/internal/objects"
	"github.com/go-forensics/apfs/internal/types"
)

// Ext is a decoded extended snapshot-metadata object: a standalone
// physical object (not a file-system B-tree record) carrying a snapshot's
// UUID and opaque metadata token.
type Ext struct {
	Version uint32
	Flags   uint32
	SnapXid types.XidT
	UUID    types.UUID
	Token   uint64
}

// DecodeExt parses a snap_meta_ext_obj_phys_t: the 32-byte object header
// followed by a 40-byte snap_meta_ext_t body.
func DecodeExt(data []byte, endian binary.ByteOrder) (Ext, error) {
	if len(data) < objects.HeaderSize+40 {
		return Ext{}, apfserrors.New(apfserrors.Corruption, "snapshot.DecodeExt", nil)
	}
	if _, err := objects.DecodeHeader(data); err != nil {
		return Ext{}, err
	}

	body := data[objects.HeaderSize:]
	var ext Ext
	ext.Version = endian.Uint32(body[0:4])
	ext.Flags = endian.Uint32(body[4:8])
	ext.SnapXid = types.XidT(endian.Uint64(body[8:16]))
	copy(ext.UUID[:], body[16:32])
	ext.Token = endian.Uint64(body[32:40])
	return ext, nil
}
