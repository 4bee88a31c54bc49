// Package emit turns a decoded firmware volume into an EDK-II-style build
// tree: one .inf plus binary artifacts per module, and the three index
// files consumed by the build system (DXE.inc, DXE.dsc.inc, APRIORI.inc).
package emit

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/jedib0t/go-pretty/v6/table"

	"github.com/fwtools/xblfv/pkg/uefi"
)

// Summary tallies what a run wrote, surfaced as a table once emission
// completes.
type Summary struct {
	ModulesEmitted  int
	RawPayloads     int
	AprioriEntries  int
}

// Emitter walks a parsed volume and writes the build tree under Root. Root
// already includes the build-id path segment, if any.
type Emitter struct {
	Root string
	Now  time.Time
}

// New builds an Emitter rooted at root, timestamping generated artifacts
// with now.
func New(root string, now time.Time) *Emitter {
	return &Emitter{Root: root, Now: now}
}

// Emit performs the two-pass walk described in the module design: a DXE
// pass that writes every module's artifacts plus the load/include lists,
// followed by an APRIORI pass that re-derives the same (module_name,
// output_path) tuple to emit the a-priori load-order list.
func (e *Emitter) Emit(p *uefi.Parser) (Summary, error) {
	var sum Summary
	var loadList, includeList []string

	for _, f := range p.Files {
		d, err := Derive(f)
		if err != nil {
			return sum, err
		}

		switch {
		case d.CaseA:
			rel, err := e.emitModule(f, d)
			if err != nil {
				return sum, err
			}
			loadList = append(loadList, "INF "+rel)
			includeList = append(includeList, rel)
			sum.ModulesEmitted++

		case d.HasUI:
			if err := e.emitFreeform(f, d, &loadList); err != nil {
				return sum, err
			}
			sum.RawPayloads++

		default:
			if err := e.emitRawOnly(f); err != nil {
				return sum, err
			}
			sum.RawPayloads++
		}
	}

	if err := e.writeIndexFile("DXE.dsc.inc", includeList); err != nil {
		return sum, err
	}
	if err := e.writeIndexFile("DXE.inc", loadList); err != nil {
		return sum, err
	}

	apriori, err := e.buildAprioriList(p)
	if err != nil {
		return sum, err
	}
	sum.AprioriEntries = len(apriori)
	aprioriLines := append([]string{"APRIORI DXE {"}, apriori...)
	aprioriLines = append(aprioriLines, "}")
	if err := e.writeIndexFile("APRIORI.inc", aprioriLines); err != nil {
		return sum, err
	}

	e.printSummary(sum)
	return sum, nil
}

// emitModule writes one module's .inf and binary artifacts under
// <root>/<output_path>/, returning the '/'-separated path to its .inf
// relative to root.
func (e *Emitter) emitModule(f *uefi.File, d Derived) (string, error) {
	baseName := d.BaseName
	if baseName == "" {
		baseName = d.ModuleName
	}

	combined := filepath.Join(e.Root, filepath.FromSlash(d.OutputPath))
	if err := os.MkdirAll(combined, 0o755); err != nil {
		return "", &ErrIo{Op: "mkdir", Path: combined, Cause: err}
	}

	for _, s := range f.Sections {
		if s.Kind == uefi.SectionKindUI {
			continue
		}
		name := fmt.Sprintf("%s.%s", d.ModuleName, sectionExtension(s.Kind))
		dst := filepath.Join(combined, name)
		if _, err := os.Stat(dst); err == nil {
			return "", &ErrFileConflict{Path: dst}
		}
		if err := os.WriteFile(dst, s.Body, 0o644); err != nil {
			return "", &ErrIo{Op: "write", Path: dst, Cause: err}
		}
	}

	inf := renderINF(d.ModuleName, baseName, f.GUID, f.Kind, f.Sections, e.Now)
	infPath := filepath.Join(combined, d.ModuleName+".inf")
	if err := os.WriteFile(infPath, []byte(inf), 0o644); err != nil {
		return "", &ErrIo{Op: "write", Path: infPath, Cause: err}
	}

	rel := d.ModuleName + ".inf"
	if d.OutputPath != "" {
		rel = d.OutputPath + "/" + rel
	}
	return rel, nil
}

// emitFreeform handles a File with no path-bearing section but exactly one
// UI section: a FREEFORM load-list stanza plus a RawFiles/<name> payload.
func (e *Emitter) emitFreeform(f *uefi.File, d Derived, loadList *[]string) error {
	uiName := d.BaseName
	safeName := strings.ReplaceAll(uiName, " ", "_")

	*loadList = append(*loadList, "")
	*loadList = append(*loadList, fmt.Sprintf("FILE FREEFORM = %s {", f.GUID.String()))

	for _, s := range f.Sections {
		switch s.Kind {
		case uefi.SectionKindRaw:
			dst := filepath.Join(e.Root, "RawFiles", filepath.FromSlash(safeName))
			if err := os.MkdirAll(filepath.Dir(dst), 0o755); err != nil {
				return &ErrIo{Op: "mkdir", Path: filepath.Dir(dst), Cause: err}
			}
			if err := os.WriteFile(dst, s.Body, 0o644); err != nil {
				return &ErrIo{Op: "write", Path: dst, Cause: err}
			}
			*loadList = append(*loadList, fmt.Sprintf("    SECTION RAW = RawFiles/%s", safeName))
		case uefi.SectionKindUI:
			*loadList = append(*loadList, fmt.Sprintf(`    SECTION UI  = "%s"`, uiName))
		}
	}

	*loadList = append(*loadList, "}")
	*loadList = append(*loadList, "")
	return nil
}

// emitRawOnly handles a File with neither a path-bearing section nor a UI
// section: every RAW section body is dumped to RawFiles/<guid>, and no
// load-list entry is produced.
func (e *Emitter) emitRawOnly(f *uefi.File) error {
	for _, s := range f.Sections {
		if s.Kind != uefi.SectionKindRaw {
			continue
		}
		dst := filepath.Join(e.Root, "RawFiles", f.GUID.String())
		if err := os.MkdirAll(filepath.Dir(dst), 0o755); err != nil {
			return &ErrIo{Op: "mkdir", Path: filepath.Dir(dst), Cause: err}
		}
		if err := os.WriteFile(dst, s.Body, 0o644); err != nil {
			return &ErrIo{Op: "write", Path: dst, Cause: err}
		}
	}
	return nil
}

// buildAprioriList re-derives each File's (module_name, output_path) tuple
// and emits an "INF <rel>" line for every File both in case A and named in
// the a-priori GUID set.
func (e *Emitter) buildAprioriList(p *uefi.Parser) ([]string, error) {
	var out []string
	for _, f := range p.Files {
		d, err := Derive(f)
		if err != nil {
			return nil, err
		}
		if !d.CaseA {
			continue
		}
		if _, ok := p.LoadPriority[f.GUID]; !ok {
			continue
		}
		rel := d.ModuleName + ".inf"
		if d.OutputPath != "" {
			rel = d.OutputPath + "/" + rel
		}
		out = append(out, "    INF "+rel)
	}
	return out, nil
}

func (e *Emitter) writeIndexFile(name string, lines []string) error {
	if err := os.MkdirAll(e.Root, 0o755); err != nil {
		return &ErrIo{Op: "mkdir", Path: e.Root, Cause: err}
	}
	dst := filepath.Join(e.Root, name)
	content := strings.Join(lines, "\n")
	if err := os.WriteFile(dst, []byte(content), 0o644); err != nil {
		return &ErrIo{Op: "write", Path: dst, Cause: err}
	}
	return nil
}

func (e *Emitter) printSummary(sum Summary) {
	t := table.NewWriter()
	t.SetOutputMirror(os.Stdout)
	t.AppendHeader(table.Row{"Metric", "Count"})
	t.AppendRow(table.Row{"Modules emitted", sum.ModulesEmitted})
	t.AppendRow(table.Row{"Raw payloads emitted", sum.RawPayloads})
	t.AppendRow(table.Row{"A-priori entries", sum.AprioriEntries})
	t.Render()
}
