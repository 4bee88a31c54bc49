package uefi

import "github.com/fwtools/xblfv/pkg/guid"

// decodeAprioriList parses the DXE-APRIORI freeform file's body: a section
// list whose first section must be RAW, holding a packed array of 16-byte
// GUIDs. Each GUID is inserted into p.LoadPriority. The file itself never
// produces a File record.
func decodeAprioriList(p *Parser, body []byte, bodyBase uint64) error {
	sections, err := decodeSections(p, body, bodyBase)
	if err != nil {
		return err
	}
	if len(sections) == 0 || sections[0].Kind != SectionKindRaw {
		return &ErrInvalidVolume{Reason: "DXE-APRIORI file's first section is not RAW"}
	}

	raw := sections[0].Body
	for o := 0; o+guid.Size <= len(raw); o += guid.Size {
		var g guid.GUID
		copy(g[:], raw[o:o+guid.Size])
		p.LoadPriority[g] = struct{}{}
	}
	return nil
}
