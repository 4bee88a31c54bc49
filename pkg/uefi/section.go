package uefi

import (
	"strings"

	"github.com/fwtools/xblfv/pkg/bitio"
	"github.com/fwtools/xblfv/pkg/compression"
)

const (
	sectionHeaderLen = 0x04 // size (u24) + type (u8)

	sectionOffSize = 0x00
	sectionOffType = 0x03

	// GUID-defined section extension.
	sectionGUIDDefinedOffGUID       = 0x04
	sectionGUIDDefinedOffDataOffset = 0x14
)

// decodeSections parses a consecutive run of sections starting at buf[0],
// continuing until the buffer is exhausted or a clean end-of-list marker is
// reached. absBase is the absolute offset of buf[0], used for 4-byte
// alignment between sections.
func decodeSections(p *Parser, buf []byte, absBase uint64) ([]*Section, error) {
	var out []*Section
	var o uint64
	for o < uint64(len(buf)) {
		if uint64(len(buf))-o < sectionHeaderLen {
			break
		}
		sub := buf[o:]
		r := bitio.New(sub)

		size, err := r.U24(sectionOffSize)
		if err != nil {
			return nil, err
		}
		sectionType, err := r.U8(sectionOffType)
		if err != nil {
			return nil, err
		}
		if sectionType == wireSectionTypeAll || sectionType == wireSectionTypeFree {
			break // clean end of list
		}
		if size < sectionHeaderLen {
			return nil, &ErrInvalidVolume{Reason: "section size smaller than its own header"}
		}
		if uint64(size) > uint64(len(sub)) {
			return nil, &ErrInvalidVolume{Reason: "section size exceeds available data"}
		}
		raw := sub[:size]

		sections, err := decodeOneSection(p, raw, sectionType, absBase+o)
		if err != nil {
			return nil, err
		}
		out = append(out, sections...)

		o += uint64(size)
		o = bitio.Align(absBase, o, 4)
	}
	return out, nil
}

// decodeOneSection parses a single section's type-specific body. It returns
// zero or more Section records: normally exactly one, zero for VERSION
// sections (consumed with no record), and zero-or-more for GUID-defined
// sections, which are transparently unwrapped into the sections recovered
// from their decompressed payload.
func decodeOneSection(p *Parser, raw []byte, sectionType uint8, absOffset uint64) ([]*Section, error) {
	switch sectionType {
	case wireSectionTypeGUIDDefined:
		return decodeGUIDDefinedSection(p, raw, absOffset)

	case wireSectionTypeVersion:
		return nil, nil

	case wireSectionTypeUI:
		body := raw[sectionHeaderLen:]
		name, err := decodeUIName(body)
		if err != nil {
			return nil, err
		}
		return []*Section{{Kind: SectionKindUI, Name: name, Body: body}}, nil

	default:
		kind, ok := sectionKindFromWireType[sectionType]
		if !ok {
			return nil, &ErrUnsupportedSectionType{Type: sectionType}
		}
		return []*Section{{Kind: kind, Body: raw[sectionHeaderLen:]}}, nil
	}
}

func decodeGUIDDefinedSection(p *Parser, raw []byte, absOffset uint64) ([]*Section, error) {
	r := bitio.New(raw)
	g, err := r.GUID(sectionGUIDDefinedOffGUID)
	if err != nil {
		return nil, err
	}
	dataOffset, err := r.U16(sectionGUIDDefinedOffDataOffset)
	if err != nil {
		return nil, err
	}
	if uint64(dataOffset) > uint64(len(raw)) {
		return nil, &ErrInvalidVolume{Reason: "GUID-defined section data_offset exceeds section size"}
	}
	payload := raw[dataOffset:]

	decompressor, err := compression.FromGUID(g)
	if err != nil {
		return nil, err
	}
	decoded, err := compression.Decode(decompressor, payload)
	if err != nil {
		return nil, &ErrDecompressFailed{Scheme: decompressor.Name(), Cause: err}
	}

	// The decompressed payload's absolute position, used as the base for
	// alignment decisions within the re-parsed section list.
	payloadBase := absOffset + uint64(dataOffset)
	return decodeSections(p, decoded, payloadBase)
}

// decodeUIName decodes a UI section's UTF-16LE body and trims trailing NUL
// and space characters.
func decodeUIName(body []byte) (string, error) {
	r := bitio.New(body)
	name, err := r.UTF16LE(0, len(body)-len(body)%2)
	if err != nil {
		return "", err
	}
	return strings.TrimRight(name, "\x00 "), nil
}
