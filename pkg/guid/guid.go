// Package guid implements the mixed-endian GUID format used throughout UEFI
// firmware volumes, as originally specified by Microsoft: the string form's
// first three hyphenated groups (Data1/Data2/Data3) are written in
// big-endian/network order but stored little-endian on the wire, while the
// trailing 8-byte group (Data4) is stored exactly as written.
package guid

import (
	"encoding/binary"
	"encoding/hex"
	"fmt"
	"strings"
)

const (
	// Size is the number of bytes in a GUID.
	Size = 16
	// Example is a sample string-form GUID, used in error messages.
	Example = "01234567-89AB-CDEF-0123-456789ABCDEF"
)

// GUID is a 128-bit identifier stored in its on-wire byte order: Data1
// (4 bytes LE), Data2 (2 bytes LE), Data3 (2 bytes LE), Data4 (8 bytes,
// network order). It is compared by raw byte identity.
type GUID [Size]byte

// Parse decodes a hyphenated or bare hex GUID string into its on-wire byte
// form.
func Parse(s string) (*GUID, error) {
	stripped := strings.ReplaceAll(s, "-", "")
	decoded, err := hex.DecodeString(stripped)
	if err != nil {
		return nil, fmt.Errorf("guid: %q is not valid hex, want format %q: %w", s, Example, err)
	}
	if len(decoded) != Size {
		return nil, fmt.Errorf("guid: %q has %d bytes, want %d (format %q)", s, len(decoded), Size, Example)
	}

	var u GUID
	binary.LittleEndian.PutUint32(u[0:4], binary.BigEndian.Uint32(decoded[0:4]))
	binary.LittleEndian.PutUint16(u[4:6], binary.BigEndian.Uint16(decoded[4:6]))
	binary.LittleEndian.PutUint16(u[6:8], binary.BigEndian.Uint16(decoded[6:8]))
	copy(u[8:16], decoded[8:16])
	return &u, nil
}

// MustParse parses s or panics; intended for package-level GUID constants.
func MustParse(s string) *GUID {
	g, err := Parse(s)
	if err != nil {
		panic(err)
	}
	return g
}

// String renders the GUID in canonical uppercase 8-4-4-4-12 form.
func (u GUID) String() string {
	d1 := binary.LittleEndian.Uint32(u[0:4])
	d2 := binary.LittleEndian.Uint16(u[4:6])
	d3 := binary.LittleEndian.Uint16(u[6:8])
	return fmt.Sprintf("%08X-%04X-%04X-%02X%02X-%02X%02X%02X%02X%02X%02X",
		d1, d2, d3, u[8], u[9], u[10], u[11], u[12], u[13], u[14], u[15])
}
