package uefi

import (
	"bytes"
	"encoding/binary"

	"github.com/fwtools/xblfv/pkg/bitio"
	"github.com/fwtools/xblfv/pkg/guid"
)

// buildVolume assembles a full volume image: a correctly checksummed
// 0x48-byte header carrying the _FVH signature at 0x28, followed by the
// given file bytes.
func buildVolume(files []byte) []byte {
	headerSize := uint16(0x48)
	volumeSize := uint32(int(headerSize) + len(files))

	hdr := make([]byte, headerSize)
	copy(hdr[fvhSignatureToStart:], fvhSignature)
	binary.LittleEndian.PutUint32(hdr[fvVolumeSizeOffset:], volumeSize)
	binary.LittleEndian.PutUint16(hdr[fvHeaderSizeOffset:], headerSize)
	sum, err := bitio.Sum16(hdr)
	if err != nil {
		panic(err)
	}
	binary.LittleEndian.PutUint16(hdr[fvChecksumOffset:], sum)

	return append(hdr, files...)
}

// buildVolumeWithDeclaredSize is buildVolume but lets the caller lie about
// volume_size, to exercise the truncated-tail warning path.
func buildVolumeWithDeclaredSize(files []byte, declaredSize uint32) []byte {
	headerSize := uint16(0x48)

	hdr := make([]byte, headerSize)
	copy(hdr[fvhSignatureToStart:], fvhSignature)
	binary.LittleEndian.PutUint32(hdr[fvVolumeSizeOffset:], declaredSize)
	binary.LittleEndian.PutUint16(hdr[fvHeaderSizeOffset:], headerSize)
	sum, err := bitio.Sum16(hdr)
	if err != nil {
		panic(err)
	}
	binary.LittleEndian.PutUint16(hdr[fvChecksumOffset:], sum)

	return append(hdr, files...)
}

// fileHeaderChecksum computes the header checksum for a small-form file
// header, treating hdr_csum and file_csum as zero and leaving out the state
// byte.
func fileHeaderChecksum(hdr []byte) uint8 {
	scratch := make([]byte, 0, len(hdr)-1)
	scratch = append(scratch, hdr[:fileOffHdrCsum]...)
	scratch = append(scratch, 0, 0) // hdr_csum, file_csum cleared
	scratch = append(scratch, hdr[fileOffType:fileOffState]...)
	return bitio.Sum8(scratch)
}

// buildFile builds a small-form (non-extended) firmware file of the given
// type and body. withBodyChecksum selects whether the real body checksum
// (attribute bit 0x40 set) or the fixed 0xAA sentinel is used.
func buildFile(g guid.GUID, fileType uint8, withBodyChecksum bool, body []byte) []byte {
	size := fileHeaderMinLen + len(body)

	hdr := make([]byte, fileHeaderMinLen)
	copy(hdr[fileOffGUID:], g[:])
	hdr[fileOffType] = fileType
	hdr[fileOffSize] = byte(size)
	hdr[fileOffSize+1] = byte(size >> 8)
	hdr[fileOffSize+2] = byte(size >> 16)
	hdr[fileOffState] = 0

	if withBodyChecksum {
		hdr[fileOffAttributes] = fileChecksumBodyBit
		hdr[fileOffFileCsum] = bitio.Sum8(body)
	} else {
		hdr[fileOffAttributes] = 0
		hdr[fileOffFileCsum] = fileBodyChecksumA
	}
	hdr[fileOffHdrCsum] = fileHeaderChecksum(hdr)

	return append(hdr, body...)
}

// buildSection builds a simple (4-byte header) section of the given type.
func buildSection(sectionType uint8, body []byte) []byte {
	size := sectionHeaderLen + len(body)
	hdr := make([]byte, sectionHeaderLen)
	hdr[0] = byte(size)
	hdr[1] = byte(size >> 8)
	hdr[2] = byte(size >> 16)
	hdr[3] = sectionType
	return append(hdr, body...)
}

// buildUISection builds a UI section whose body is the UTF-16LE encoding of
// name plus a trailing NUL code unit.
func buildUISection(name string) []byte {
	var body bytes.Buffer
	for _, r := range name {
		body.WriteByte(byte(r))
		body.WriteByte(0)
	}
	body.WriteByte(0)
	body.WriteByte(0)
	return buildSection(wireSectionTypeUI, body.Bytes())
}

// buildGUIDDefinedSection wraps payload (already compressed by the caller)
// in a GUID-defined encapsulation section naming scheme g: GUID, data_offset
// (u16), attributes (u16), with the data starting immediately after.
func buildGUIDDefinedSection(g guid.GUID, payload []byte) []byte {
	ext := make([]byte, guid.Size+2+2)
	copy(ext[0:], g[:])
	dataOffset := sectionHeaderLen + len(ext)
	binary.LittleEndian.PutUint16(ext[guid.Size:], uint16(dataOffset))
	body := append(ext, payload...)
	return buildSection(wireSectionTypeGUIDDefined, body)
}

// concatFilesAligned concatenates file buffers, inserting zero padding after
// each one so the next file starts 8-byte aligned, matching decodeVolume's
// own alignment behavior when the volume's file area itself starts aligned.
func concatFilesAligned(files ...[]byte) []byte {
	var out []byte
	for _, f := range files {
		out = append(out, f...)
		for len(out)%8 != 0 {
			out = append(out, 0)
		}
	}
	return out
}

// padSections concatenates section buffers, inserting zero padding between
// them so each subsequent section starts 4-byte aligned, matching
// decodeSections' own alignment behavior when absBase is itself 4-aligned.
func padSections(bufs ...[]byte) []byte {
	var out []byte
	for _, b := range bufs {
		out = append(out, b...)
		for len(out)%4 != 0 {
			out = append(out, 0)
		}
	}
	return out
}
