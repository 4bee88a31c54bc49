package compression

import (
	"bytes"
	"fmt"
	"io"

	"github.com/ulikunitz/xz/lzma"
)

// LZMA implements Decompressor for the classic 13-byte-header LZMA1 stream
// format used by UEFI GUID-defined sections: 5 bytes of properties followed
// by an 8-byte little-endian uncompressed size (0xFFFFFFFFFFFFFFFF meaning
// "unknown, read until end of stream").
type LZMA struct{}

// Name implements Decompressor.
func (c *LZMA) Name() string { return "LZMA" }

// lzmaHeaderLen is the size of the properties+size header that precedes the
// LZMA1 bitstream.
const lzmaHeaderLen = 13

// Properties decodes the 5-byte properties block into lc/lp/pb/dictSize, as
// described by the UEFI LZMA1 layout. It is used for diagnostics only — the
// actual bitstream decode is delegated to github.com/ulikunitz/xz/lzma, which
// parses this same header internally.
type Properties struct {
	LC, LP, PB uint8
	DictSize   uint32
}

// ParseProperties decodes the 5-byte properties block at the start of an
// LZMA1 header.
func ParseProperties(props []byte) (Properties, error) {
	if len(props) < 5 {
		return Properties{}, fmt.Errorf("lzma: properties block needs 5 bytes, got %d", len(props))
	}
	d := props[0]
	return Properties{
		LC:       d % 9,
		LP:       (d / 9) % 5,
		PB:       d / 45,
		DictSize: uint32(props[1]) | uint32(props[2])<<8 | uint32(props[3])<<16 | uint32(props[4])<<24,
	}, nil
}

// Decode decompresses an LZMA1 stream with the embedded properties+size
// header.
func (c *LZMA) Decode(encoded []byte) ([]byte, error) {
	if len(encoded) < lzmaHeaderLen {
		return nil, fmt.Errorf("lzma: payload of %d bytes is shorter than the %d-byte header", len(encoded), lzmaHeaderLen)
	}
	r, err := lzma.NewReader(bytes.NewReader(encoded))
	if err != nil {
		return nil, fmt.Errorf("lzma: %w", err)
	}
	out, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("lzma: %w", err)
	}
	return out, nil
}
