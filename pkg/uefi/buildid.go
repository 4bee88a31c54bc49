package uefi

import "github.com/fwtools/xblfv/pkg/bitio"

const buildIDPrefix = "QC_IMAGE_VERSION_STRING="

// isBuildIDChar reports whether b belongs to the character class used to
// extend a match past the QC_IMAGE_VERSION_STRING= prefix.
func isBuildIDChar(b byte) bool {
	switch {
	case b >= 'A' && b <= 'Z':
		return true
	case b >= 'a' && b <= 'z':
		return true
	case b >= '0' && b <= '9':
		return true
	case b == '/' || b == '\\' || b == '_' || b == '-' || b == '.':
		return true
	}
	return false
}

// scanBuildID scans the entire input for the literal prefix
// QC_IMAGE_VERSION_STRING= followed by the longest run of identifier-ish
// characters. The first match wins; if none is found, or the run is empty,
// the build id is the empty string.
func scanBuildID(data []byte) string {
	offset, ok := bitio.FindASCII(data, buildIDPrefix)
	if !ok {
		return ""
	}
	start := offset + len(buildIDPrefix)
	end := start
	for end < len(data) && isBuildIDChar(data[end]) {
		end++
	}
	if end == start {
		return ""
	}
	return string(data[start:end])
}
