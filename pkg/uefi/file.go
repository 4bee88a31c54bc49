package uefi

import (
	"github.com/fwtools/xblfv/pkg/bitio"
	"github.com/fwtools/xblfv/pkg/guid"
)

const (
	fileHeaderMinLen = 0x18
	fileHeaderExtLen = 0x20
	fileExtAttrValue = 0x41 // attributes byte indicating the u64 extended-size header

	fileOffGUID       = 0x00
	fileOffHdrCsum    = 0x10
	fileOffFileCsum   = 0x11
	fileOffType       = 0x12
	fileOffAttributes = 0x13
	fileOffSize       = 0x14
	fileOffState      = 0x17
	fileOffExtSize    = 0x18

	fileChecksumBodyBit = 0x40

	fileBodyChecksumA uint8 = 0xAA
	fileBodyChecksumB uint8 = 0x55
)

var dxeAprioriGUID = *guid.MustParse("fc510ee7-ffdc-11d4-bd41-0080c73c8881")

// decodeFile parses one firmware file at the start of buf. It returns the
// produced File record (nil if the file type produces none, such as
// DXE-APRIORI, pad files, or a file spliced into p.Files directly), the
// number of bytes consumed (0 meaning clean termination of the file loop),
// and an error for any structural violation.
func decodeFile(p *Parser, buf []byte, absOffset, base uint64) (*File, uint64, error) {
	if len(buf) < fileHeaderMinLen {
		return nil, 0, nil // truncated tail, tolerated
	}
	r := bitio.New(buf)

	guidVal, err := r.GUID(fileOffGUID)
	if err != nil {
		return nil, 0, err
	}
	attrs, err := r.U8(fileOffAttributes)
	if err != nil {
		return nil, 0, err
	}
	fileType, err := r.U8(fileOffType)
	if err != nil {
		return nil, 0, err
	}

	headerSize := fileHeaderMinLen
	var fileSize uint64
	if attrs == fileExtAttrValue {
		headerSize = fileHeaderExtLen
		if len(buf) < headerSize {
			return nil, 0, nil
		}
		fileSize, err = r.U64(fileOffExtSize)
		if err != nil {
			return nil, 0, err
		}
	} else {
		sz, err := r.U24(fileOffSize)
		if err != nil {
			return nil, 0, err
		}
		fileSize = uint64(sz)
	}

	if fileSize == 0 {
		return nil, 0, nil // zero tail
	}
	if fileType == wireFileTypeAll || fileType == wireFileTypeFree {
		return nil, 0, nil // end-of-files marker
	}
	if uint64(len(buf)) < fileSize {
		return nil, 0, &ErrInvalidVolume{Reason: "file size exceeds available data"}
	}
	if fileSize < uint64(headerSize) {
		return nil, 0, &ErrInvalidVolume{Reason: "file size smaller than its own header"}
	}

	storedHdrCsum, _ := r.U8(fileOffHdrCsum)
	if err := checkFileHeaderChecksum(buf, headerSize, storedHdrCsum); err != nil {
		return nil, 0, err
	}

	storedFileCsum, _ := r.U8(fileOffFileCsum)
	body := buf[headerSize:fileSize]
	if attrs&fileChecksumBodyBit != 0 {
		computed := bitio.Sum8(body)
		if computed != storedFileCsum {
			return nil, 0, &ErrChecksumFailed{What: "file body", Want: uint64(storedFileCsum), Got: uint64(computed)}
		}
	} else if storedFileCsum != fileBodyChecksumA && storedFileCsum != fileBodyChecksumB {
		return nil, 0, &ErrChecksumFailed{What: "file body (fixed sentinel)", Want: uint64(fileBodyChecksumA), Got: uint64(storedFileCsum)}
	}

	if fileType == wireFileTypePad {
		return nil, fileSize, nil
	}

	bodyBase := absOffset + uint64(headerSize) // absolute offset of body[0] in the original input

	switch fileType {
	case wireFileTypeRaw:
		return &File{
			GUID: guidVal,
			Kind: FileKindRaw,
			Sections: []*Section{{
				Kind: SectionKindRaw,
				Body: body,
			}},
		}, fileSize, nil

	case wireFileTypeFreeform:
		if guidVal == dxeAprioriGUID {
			if err := decodeAprioriList(p, body, bodyBase); err != nil {
				return nil, 0, err
			}
			return nil, fileSize, nil
		}
		sections, err := decodeSections(p, body, bodyBase)
		if err != nil {
			return nil, 0, err
		}
		return &File{GUID: guidVal, Kind: FileKindFreeform, Sections: sections}, fileSize, nil

	case wireFileTypeSecurityCore, wireFileTypeDXECore, wireFileTypeDriver, wireFileTypeApplication:
		sections, err := decodeSections(p, body, bodyBase)
		if err != nil {
			return nil, 0, err
		}
		return &File{GUID: guidVal, Kind: fileKindFromWireType[fileType], Sections: sections}, fileSize, nil

	case wireFileTypeFVImage:
		sections, err := decodeSections(p, body, bodyBase)
		if err != nil {
			return nil, 0, err
		}
		for _, s := range sections {
			if s.Kind != SectionKindFV {
				continue
			}
			if err := decodeVolume(p, s.Body, bodyBase); err != nil {
				return nil, 0, err
			}
		}
		return nil, fileSize, nil

	default:
		return nil, 0, &ErrUnsupportedFileType{Type: fileType}
	}
}

// checkFileHeaderChecksum validates the header checksum over
// file_header_size-1 bytes (the state byte excluded), with the hdr_csum and
// file_csum bytes zeroed.
func checkFileHeaderChecksum(buf []byte, headerSize int, stored uint8) error {
	hdr := make([]byte, 0, headerSize-1)
	hdr = append(hdr, buf[:fileOffHdrCsum]...)
	hdr = append(hdr, 0, 0) // cleared hdr_csum, file_csum
	hdr = append(hdr, buf[fileOffType:fileOffState]...)
	if headerSize > fileOffState+1 {
		hdr = append(hdr, buf[fileOffState+1:headerSize]...)
	}
	computed := bitio.Sum8(hdr)
	if computed != stored {
		return &ErrChecksumFailed{What: "file header", Want: uint64(stored), Got: uint64(computed)}
	}
	return nil
}
