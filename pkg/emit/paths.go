package emit

import (
	"regexp"
	"strings"

	"github.com/fwtools/xblfv/pkg/uefi"
)

// dllPathPattern matches the same character class the original scanner
// used: ASCII alphanumerics plus path separators and the usual filename
// punctuation, ending in a literal ".dll" on a word boundary.
var dllPathPattern = regexp.MustCompile(`[A-Za-z0-9/\\_\-.]*\.dll\b`)

// isPathBearingKind reports whether sections of kind k are scanned for .dll
// paths: every kind except UI, DXE_DEPEX, RAW and PEI_DEPEX.
func isPathBearingKind(k uefi.SectionKind) bool {
	switch k {
	case uefi.SectionKindUI, uefi.SectionKindDXEDepex, uefi.SectionKindRaw, uefi.SectionKindPEIDepex:
		return false
	default:
		return true
	}
}

// normalizeDLLPath converts backslashes to forward slashes and, when the
// path crosses an /ARM/ or /AARCH64/ segment boundary, keeps only the
// suffix past it. If the substring "ARM"/"AARCH64" appears but not as that
// exact delimiter, the path is returned unconverted, matching the
// reference scanner's behavior.
func normalizeDLLPath(path string) string {
	if strings.Contains(path, "ARM") {
		parts := strings.Split(strings.ReplaceAll(path, `\`, "/"), "/ARM/")
		if len(parts) > 1 {
			return parts[len(parts)-1]
		}
		return path
	}
	if strings.Contains(path, "AARCH64") {
		parts := strings.Split(strings.ReplaceAll(path, `\`, "/"), "/AARCH64/")
		if len(parts) > 1 {
			return parts[len(parts)-1]
		}
		return path
	}
	return strings.ReplaceAll(path, `\`, "/")
}

// extractDLLPaths scans body for .dll paths, normalizes each, and keeps
// only those with more than one '/' separator.
func extractDLLPaths(body []byte) []string {
	var out []string
	for _, m := range dllPathPattern.FindAll(body, -1) {
		norm := normalizeDLLPath(string(m))
		if strings.Count(norm, "/") > 1 {
			out = append(out, norm)
		}
	}
	return out
}

// Derived is the (module_name, output_path, base_name) tuple the DXE and
// APRIORI passes must agree on for a given File record.
type Derived struct {
	// CaseA is true when the file carries at least one path-bearing
	// section, regardless of whether a .dll path was actually found in it.
	CaseA bool

	ModuleName string
	OutputPath string // '/'-separated; caller translates to the platform separator
	BaseName   string
	HasUI      bool
}

// Derive computes the case-A tuple for f. It returns ErrMultipleUISections
// if f carries more than one UI section. Callers should check CaseA before
// trusting ModuleName/OutputPath/BaseName: when false, the file belongs to
// the freeform/raw-dump emission path instead.
func Derive(f *uefi.File) (Derived, error) {
	var ui *uefi.Section
	uiCount := 0
	var pathSections []*uefi.Section
	for _, s := range f.Sections {
		if s.Kind == uefi.SectionKindUI {
			uiCount++
			ui = s
		}
		if isPathBearingKind(s.Kind) {
			pathSections = append(pathSections, s)
		}
	}
	if uiCount > 1 {
		return Derived{}, &ErrMultipleUISections{GUID: f.GUID.String()}
	}

	d := Derived{HasUI: uiCount == 1}
	if d.HasUI {
		d.BaseName = ui.Name
	}
	if len(pathSections) == 0 {
		return d, nil
	}
	d.CaseA = true

	var candidates []string
	for _, s := range pathSections {
		candidates = append(candidates, extractDLLPaths(s.Body)...)
	}

	switch {
	case len(candidates) > 0:
		// count('/') > 1 in extractDLLPaths guarantees at least 3 segments.
		parts := strings.Split(candidates[0], "/")
		d.ModuleName = parts[len(parts)-3]
		d.OutputPath = strings.Join(parts[:len(parts)-3], "/")
		if !d.HasUI {
			d.BaseName = d.ModuleName
		}
	case d.HasUI:
		replaced := strings.ReplaceAll(d.BaseName, " ", "_")
		d.ModuleName = replaced
		d.OutputPath = replaced
	}
	return d, nil
}
