package uefi

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fwtools/xblfv/pkg/guid"
)

func TestDecodeFileRejectsBadHeaderChecksum(t *testing.T) {
	g := *guid.MustParse("44444444-5555-6666-7777-888888888888")
	buf := buildFile(g, wireFileTypeRaw, true, []byte("body"))
	buf[fileOffGUID] ^= 0xFF // corrupt a header byte covered by the checksum

	p := newParser()
	_, _, err := decodeFile(p, buf, 0, 0)
	require.Error(t, err)
	assert.IsType(t, &ErrChecksumFailed{}, err)
}

func TestDecodeFileRejectsBadBodyChecksum(t *testing.T) {
	g := *guid.MustParse("55555555-6666-7777-8888-999999999999")
	buf := buildFile(g, wireFileTypeRaw, true, []byte("body"))
	// Corrupt a body byte without touching the header, so the header
	// checksum still validates but the body checksum no longer matches.
	buf[len(buf)-1] ^= 0xFF

	p := newParser()
	_, _, err := decodeFile(p, buf, 0, 0)
	require.Error(t, err)
	assert.IsType(t, &ErrChecksumFailed{}, err)
}

func TestDecodeFileAcceptsFixedSentinelBodyChecksum(t *testing.T) {
	g := *guid.MustParse("66666666-7777-8888-9999-aaaaaaaaaaaa")
	buf := buildFile(g, wireFileTypeRaw, false, []byte("body not actually checksummed"))

	p := newParser()
	f, consumed, err := decodeFile(p, buf, 0, 0)
	require.NoError(t, err)
	assert.NotZero(t, consumed)
	require.NotNil(t, f)
	assert.Equal(t, FileKindRaw, f.Kind)
}

func TestDecodeFilePadTypeProducesNoRecord(t *testing.T) {
	g := *guid.MustParse("77777777-8888-9999-aaaa-bbbbbbbbbbbb")
	buf := buildFile(g, wireFileTypePad, true, []byte("padding filler"))

	p := newParser()
	f, consumed, err := decodeFile(p, buf, 0, 0)
	require.NoError(t, err)
	assert.Nil(t, f)
	assert.EqualValues(t, len(buf), consumed)
}

func TestDecodeFileZeroSizeTerminates(t *testing.T) {
	buf := make([]byte, fileHeaderMinLen)
	p := newParser()
	f, consumed, err := decodeFile(p, buf, 0, 0)
	require.NoError(t, err)
	assert.Nil(t, f)
	assert.Zero(t, consumed)
}

func TestDecodeFileFreeEndMarkerTerminates(t *testing.T) {
	buf := make([]byte, fileHeaderMinLen)
	buf[fileOffType] = wireFileTypeFree
	buf[fileOffSize] = 0x01 // nonzero size must not matter once the type marks end-of-list
	p := newParser()
	f, consumed, err := decodeFile(p, buf, 0, 0)
	require.NoError(t, err)
	assert.Nil(t, f)
	assert.Zero(t, consumed)
}

func TestDecodeFileUnsupportedTypeErrors(t *testing.T) {
	g := *guid.MustParse("88888888-9999-aaaa-bbbb-cccccccccccc")
	buf := buildFile(g, 0x04 /* PEI_CORE, unsupported */, true, []byte("x"))

	p := newParser()
	_, _, err := decodeFile(p, buf, 0, 0)
	require.Error(t, err)
	assert.IsType(t, &ErrUnsupportedFileType{}, err)
}

func TestDecodeFileTruncatedTailTolerated(t *testing.T) {
	buf := make([]byte, fileHeaderMinLen-1)
	p := newParser()
	f, consumed, err := decodeFile(p, buf, 0, 0)
	require.NoError(t, err)
	assert.Nil(t, f)
	assert.Zero(t, consumed)
}
