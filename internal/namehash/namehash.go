// Package namehash computes the 22-bit directory-entry name hash APFS
// stores alongside hashed directory record keys: CRC32C (Castagnoli) over
// a name that has been Unicode-normalized to NFD and, optionally,
// case-folded, truncated to the low 22 bits of the checksum.
//
// A djb2-style rolling hash isn't the algorithm APFS actually uses, and
// libfsapfs_name_hash.h ships only the function signature, not a reusable
// implementation, so this package implements the documented algorithm
// directly.
package namehash

import (
	"hash/crc32"
	"unicode/utf16"

	"golang.org/x/text/cases"
	"golang.org/x/text/unicode/norm"

	"github.com/go-forensics/apfs/internal/types"
)

var castagnoli = crc32.MakeTable(crc32.Castagnoli)

var folder = cases.Fold()

// HashUTF8 computes the 22-bit name hash of name, a UTF-8-encoded
// directory entry name. When caseFold is true, name is first
// case-folded (matching a case-insensitive volume's normalize-and-compare
// rules) before NFD normalization.
func HashUTF8(name string, caseFold bool) uint32 {
	if caseFold {
		name = folder.String(name)
	}
	normalized := norm.NFD.String(name)
	return crc32.Checksum([]byte(normalized), castagnoli) & (types.JDrecHashMask >> types.JDrecHashShift)
}

// HashUTF16 computes the 22-bit name hash of name, a UTF-16LE-encoded
// directory entry name as stored by case-sensitive-unaware volumes.
func HashUTF16(name []uint16, caseFold bool) uint32 {
	return HashUTF8(string(utf16.Decode(name)), caseFold)
}

// Pack combines a name's byte length (including the trailing NUL APFS
// stores with every name) and its hash into the name_len_and_hash field of
// j_drec_hashed_key_t.
func Pack(nameLen int, hash uint32) uint32 {
	packedLen := uint32(nameLen) & types.JDrecLenMask
	packedHash := (hash << types.JDrecHashShift) & types.JDrecHashMask
	return packedLen | packedHash
}

// Unpack splits a name_len_and_hash field back into its length and hash
// components.
func Unpack(nameLenAndHash uint32) (nameLen int, hash uint32) {
	nameLen = int(nameLenAndHash & types.JDrecLenMask)
	hash = (nameLenAndHash & types.JDrecHashMask) >> types.JDrecHashShift
	return nameLen, hash
}
