package uefi

import (
	"bytes"
	"testing"

	"github.com/klauspost/compress/gzip"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fwtools/xblfv/pkg/compression"
	"github.com/fwtools/xblfv/pkg/guid"
)

func TestDecodeGUIDDefinedSectionGZipUnwrapsTransparently(t *testing.T) {
	inner := padSections(buildSection(wireSectionTypePE32, []byte("decompressed pe32 bytes")))

	var compressed bytes.Buffer
	w := gzip.NewWriter(&compressed)
	_, err := w.Write(inner)
	require.NoError(t, err)
	require.NoError(t, w.Close())

	section := buildGUIDDefinedSection(compression.GZipGUID, compressed.Bytes())

	p := newParser()
	sections, err := decodeSections(p, section, 0)
	require.NoError(t, err)
	require.Len(t, sections, 1)
	assert.Equal(t, SectionKindPE32, sections[0].Kind)
	assert.Equal(t, []byte("decompressed pe32 bytes"), sections[0].Body)
}

func TestDecodeGUIDDefinedSectionUnknownGUIDErrors(t *testing.T) {
	var unknown guid.GUID
	copy(unknown[:], "not-a-known-guid")
	section := buildGUIDDefinedSection(unknown, []byte("irrelevant"))

	p := newParser()
	_, err := decodeSections(p, section, 0)
	require.Error(t, err)
	assert.IsType(t, &compression.ErrUnsupportedCompression{}, err)
}
