package uefi

import "github.com/fwtools/xblfv/pkg/guid"

// File is a parsed firmware file: a GUID, a kind drawn from the closed
// FileKind set, and an ordered list of sections. RAW-kind files always carry
// exactly one synthetic RAW section wrapping the file's post-header bytes.
type File struct {
	GUID     guid.GUID
	Kind     FileKind
	Sections []*Section
}

// Section is a parsed firmware-file section. Name is populated only for UI
// sections (decoded from the UTF-16LE payload with trailing NUL/space
// trimmed). Body holds the fully decompressed section bytes.
type Section struct {
	Kind SectionKind
	Name string
	Body []byte
}

// Parser holds the result of decoding a firmware volume image: the File
// records produced, the DXE a-priori load-priority GUID set, and the
// Qualcomm build-id string, if any.
type Parser struct {
	Files        []*File
	LoadPriority map[guid.GUID]struct{}
	BuildID      string
}

func newParser() *Parser {
	return &Parser{LoadPriority: make(map[guid.GUID]struct{})}
}
