// Package compression implements the decompressors needed for UEFI
// GUID-defined sections: LZMA1 (and its legacy alternate GUID) and GZip.
package compression

import (
	"fmt"

	"github.com/fwtools/xblfv/pkg/guid"
)

// Well-known GUIDs for GUID-defined sections carrying compressed data.
var (
	LZMAGUID       = *guid.MustParse("EE4E5898-3914-4259-9D6E-DC7BD79403CF")
	LZMALegacyGUID = *guid.MustParse("BD9921EA-ED91-404A-8B2F-B4D724747C8C")
	GZipGUID       = *guid.MustParse("1D301FE9-BE79-4353-91C2-D23BC959AE0C")
)

// Decompressor decodes the payload of a GUID-defined section.
type Decompressor interface {
	// Name identifies the scheme, used in diagnostics.
	Name() string
	// Decode returns the decompressed payload.
	Decode(encoded []byte) ([]byte, error)
}

// ErrUnsupportedCompression is returned, unwrapped, when a section's GUID
// does not name a known compression scheme.
type ErrUnsupportedCompression struct {
	GUID guid.GUID
}

func (e *ErrUnsupportedCompression) Error() string {
	return fmt.Sprintf("unsupported compression GUID %v", e.GUID)
}

// FromGUID returns the Decompressor for g, or an *ErrUnsupportedCompression
// if g names no known scheme.
func FromGUID(g guid.GUID) (Decompressor, error) {
	switch g {
	case LZMAGUID, LZMALegacyGUID:
		return &LZMA{}, nil
	case GZipGUID:
		return &GZip{}, nil
	default:
		return nil, &ErrUnsupportedCompression{GUID: g}
	}
}

// MaxExpansionRatio bounds decompressed size against encoded input size, as
// a guard against pathological or adversarial expansion.
const MaxExpansionRatio = 256

// ErrExpansionTooLarge is returned when a decompressed payload exceeds
// MaxExpansionRatio times the size of its encoded input.
type ErrExpansionTooLarge struct {
	EncodedLen, DecodedLen int
}

func (e *ErrExpansionTooLarge) Error() string {
	return fmt.Sprintf("decompressed payload of %d bytes exceeds %dx the encoded input of %d bytes",
		e.DecodedLen, MaxExpansionRatio, e.EncodedLen)
}

// Decode runs d over encoded and rejects results that expand implausibly.
func Decode(d Decompressor, encoded []byte) ([]byte, error) {
	decoded, err := d.Decode(encoded)
	if err != nil {
		return nil, err
	}
	if len(encoded) > 0 && len(decoded) > MaxExpansionRatio*len(encoded) {
		return nil, &ErrExpansionTooLarge{EncodedLen: len(encoded), DecodedLen: len(decoded)}
	}
	return decoded, nil
}
