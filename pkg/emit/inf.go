package emit

import (
	"fmt"
	"strings"
	"time"

	"github.com/fwtools/xblfv/pkg/guid"
	"github.com/fwtools/xblfv/pkg/uefi"
)

// moduleType maps a file kind to the MODULE_TYPE written into the INF.
func moduleType(k uefi.FileKind) string {
	switch k {
	case uefi.FileKindApplication:
		return "UEFI_APPLICATION"
	case uefi.FileKindDriver:
		return "DXE_DRIVER"
	case uefi.FileKindSecurityCore:
		return "SEC"
	default:
		return strings.ToUpper(k.String())
	}
}

// sectionExtension maps a section kind to the file extension used for its
// on-disk artifact.
func sectionExtension(k uefi.SectionKind) string {
	switch k {
	case uefi.SectionKindPE32:
		return "efi"
	case uefi.SectionKindDXEDepex:
		return "depex"
	default:
		return strings.ToLower(k.String())
	}
}

// infTimestampLayout renders the GENERATED ON timestamp as UTC
// YYYY-MM-DD HH:MM:SS, with the trailing "Z" appended separately.
const infTimestampLayout = "2006-01-02 15:04:05"

// renderINF builds the literal `.inf` text for one module.
func renderINF(moduleName, baseName string, fileGUID guid.GUID, kind uefi.FileKind, sections []*uefi.Section, generatedAt time.Time) string {
	hasDepex := false
	for _, s := range sections {
		if s.Kind == uefi.SectionKindDXEDepex {
			hasDepex = true
		}
	}

	var b strings.Builder
	b.WriteString("# ****************************************************************************\n")
	b.WriteString("# AUTOGENERATED BY xblfv\n")
	fmt.Fprintf(&b, "# AUTOGENED AS %s.inf\n", moduleName)
	b.WriteString("# DO NOT MODIFY\n")
	fmt.Fprintf(&b, "# GENERATED ON: %sZ\n", generatedAt.UTC().Format(infTimestampLayout))
	b.WriteString("\n[Defines]\n")
	b.WriteString("  INF_VERSION    = 0x0001001B\n")
	fmt.Fprintf(&b, "  BASE_NAME      = %s\n", baseName)
	fmt.Fprintf(&b, "  FILE_GUID      = %s\n", fileGUID.String())
	fmt.Fprintf(&b, "  MODULE_TYPE    = %s\n", moduleType(kind))
	b.WriteString("  VERSION_STRING = 1.0\n")
	if hasDepex {
		b.WriteString("  ENTRY_POINT    = EfiEntry\n")
	}

	b.WriteString("\n[Binaries.AARCH64]")
	for _, s := range sections {
		if s.Kind == uefi.SectionKindUI {
			continue
		}
		ext := sectionExtension(s.Kind)
		fmt.Fprintf(&b, "\n   %s|%s.%s|*", s.Kind.String(), moduleName, ext)
	}
	b.WriteString("\n\n")

	if hasDepex {
		b.WriteString("[Depex]\n  TRUE\n")
	}
	b.WriteString("# AUTOGEN ENDS\n")
	b.WriteString("# ****************************************************************************\n")
	return b.String()
}
