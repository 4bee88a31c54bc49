package uefi

import (
	"github.com/dustin/go-humanize"

	"github.com/fwtools/xblfv/pkg/bitio"
	"github.com/fwtools/xblfv/pkg/xlog"
)

const (
	fvhSignature        = "_FVH"
	fvhSignatureToStart = 0x28 // the volume header begins this many bytes before the signature

	fvVolumeSizeOffset   = 0x20
	fvHeaderSizeOffset   = 0x30
	fvChecksumOffset     = 0x32
)

// Parse decodes a full UEFI firmware volume image and returns the parser
// state described in the data model: the File records, the DXE a-priori
// GUID set, and the Qualcomm build-id string.
func Parse(data []byte) (*Parser, error) {
	p := newParser()
	p.BuildID = scanBuildID(data)

	sigOffset, ok := bitio.FindASCII(data, fvhSignature)
	if !ok || sigOffset < fvhSignatureToStart {
		return nil, &ErrInvalidVolume{Reason: "no _FVH signature found (or it lies within the first 0x28 bytes)"}
	}
	headerStart := sigOffset - fvhSignatureToStart

	if err := decodeVolume(p, data[headerStart:], uint64(headerStart)); err != nil {
		return nil, err
	}
	return p, nil
}

// decodeVolume parses one firmware volume's header and files, appending
// produced File records to p.Files. absBase is the absolute offset of
// data[0] in the original input.
func decodeVolume(p *Parser, data []byte, absBase uint64) error {
	r := bitio.New(data)

	volumeSize, err := r.U32(fvVolumeSizeOffset)
	if err != nil {
		return &ErrInvalidVolume{Reason: "volume header too short to contain volume_size"}
	}
	headerSize, err := r.U16(fvHeaderSizeOffset)
	if err != nil {
		return &ErrInvalidVolume{Reason: "volume header too short to contain header_size"}
	}
	storedChecksum, err := r.U16(fvChecksumOffset)
	if err != nil {
		return &ErrInvalidVolume{Reason: "volume header too short to contain checksum"}
	}
	if int(headerSize) > len(data) || headerSize < fvChecksumOffset+2 {
		return &ErrInvalidVolume{Reason: "header_size is inconsistent with the available data"}
	}

	scratch := make([]byte, headerSize)
	copy(scratch, data[:headerSize])
	scratch[fvChecksumOffset] = 0
	scratch[fvChecksumOffset+1] = 0
	computed, err := bitio.Sum16(scratch)
	if err != nil {
		return &ErrInvalidVolume{Reason: "header_size is odd, cannot compute sum16"}
	}
	if computed != storedChecksum {
		return &ErrChecksumFailed{What: "volume header", Want: uint64(storedChecksum), Got: uint64(computed)}
	}

	fileAreaEnd := uint64(volumeSize)
	if absBase+fileAreaEnd > absBase+uint64(len(data)) || fileAreaEnd > uint64(len(data)) {
		xlog.Warnf("volume_size %s exceeds available data (%s); proceeding over the truncated tail",
			humanize.Bytes(uint64(volumeSize)), humanize.Bytes(uint64(len(data))))
		fileAreaEnd = uint64(len(data))
	}
	if fileAreaEnd < uint64(headerSize) {
		return &ErrInvalidVolume{Reason: "volume_size is smaller than header_size"}
	}

	base := absBase + uint64(headerSize)
	sub := data[headerSize:fileAreaEnd]

	var o uint64
	for o < uint64(len(sub)) {
		file, consumed, err := decodeFile(p, sub[o:], base+o, base)
		if err != nil {
			return err
		}
		if consumed == 0 {
			break // zero-size file or end-of-list marker: clean termination
		}
		if file != nil {
			p.Files = append(p.Files, file)
		}
		o += consumed
		o = bitio.Align(base, o, 8)
	}
	return nil
}
