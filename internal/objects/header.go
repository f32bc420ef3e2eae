// Package objects decodes the obj_phys_t header shared by every object
// stored in an Apple File System container, and verifies its checksum.
package objects

import (
	"encoding/binary"
	"fmt"

	"github.com/go-forensics/apfs/internal/apfserrors"
	"github.com/go-forensics/apfs/internal/types"
)

// HeaderSize is the on-disk size, in bytes, of obj_phys_t.
const HeaderSize = 32

// DecodeHeader parses the 32-byte object header at the start of data.
func DecodeHeader(data []byte) (types.ObjPhysT, error) {
	if len(data) < HeaderSize {
		return types.ObjPhysT{}, apfserrors.New(apfserrors.Corruption, "objects.DecodeHeader",
			fmt.Errorf("need %d bytes, got %d", HeaderSize, len(data)))
	}

	var hdr types.ObjPhysT
	copy(hdr.OChecksum[:], data[0:types.MaxCksumSize])
	hdr.OOid = types.OidT(binary.LittleEndian.Uint64(data[8:16]))
	hdr.OXid = types.XidT(binary.LittleEndian.Uint64(data[16:24]))
	hdr.OType = binary.LittleEndian.Uint32(data[24:28])
	hdr.OSubtype = binary.LittleEndian.Uint32(data[28:32])
	return hdr, nil
}

// Type returns the 24-bit type code embedded in OType.
func Type(hdr types.ObjPhysT) uint32 {
	return hdr.OType & types.ObjectTypeMask
}

// StorageKind returns the storage-location bits (ObjVirtual/ObjEphemeral/ObjPhysical).
func StorageKind(hdr types.ObjPhysT) uint32 {
	return hdr.OType & types.ObjStorageTypeMask
}

// VerifyChecksum recomputes the Fletcher-64 checksum of payload (the full
// object, header included) with the stored checksum field zeroed, and
// compares it against hdr.OChecksum.
func VerifyChecksum(hdr types.ObjPhysT, payload []byte) bool {
	if len(payload) < HeaderSize || len(payload)%4 != 0 {
		return false
	}

	zeroed := make([]byte, len(payload))
	copy(zeroed, payload)
	for i := 0; i < types.MaxCksumSize; i++ {
		zeroed[i] = 0
	}

	return Fletcher64(zeroed) == hdr.OChecksum
}

// Fletcher64 computes the Fletcher-64 checksum APFS uses for every object
// header, in 4096-byte chunks to keep the running sums from overflowing
// before each modulo reduction.
func Fletcher64(data []byte) [types.MaxCksumSize]byte {
	const maxUint32 = uint64(0xFFFFFFFF)
	const chunkBytes = 1024 * 4

	var sum1, sum2 uint64

	for offset := 0; offset < len(data); offset += chunkBytes {
		end := offset + chunkBytes
		if end > len(data) {
			end = len(data)
		}
		for i := offset; i+4 <= end; i += 4 {
			word := binary.LittleEndian.Uint32(data[i : i+4])
			sum1 += uint64(word)
			sum2 += sum1
		}
		sum1 %= maxUint32
		sum2 %= maxUint32
	}

	ckLow := maxUint32 - ((sum1 + sum2) % maxUint32)
	ckHigh := maxUint32 - ((sum1 + ckLow) % maxUint32)

	var checksum [types.MaxCksumSize]byte
	binary.LittleEndian.PutUint64(checksum[:], (ckHigh<<32)|ckLow)
	return checksum
}
