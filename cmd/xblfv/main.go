// Command xblfv parses a UEFI firmware volume image and emits a
// reconstructable EDK-II-style build tree: per-module .inf/.efi/.depex
// artifacts plus DXE.inc, DXE.dsc.inc and APRIORI.inc.
package main

import (
	"os"
	"path/filepath"
	"time"

	"github.com/jessevdk/go-flags"

	"github.com/fwtools/xblfv/pkg/emit"
	"github.com/fwtools/xblfv/pkg/uefi"
	"github.com/fwtools/xblfv/pkg/xlog"
)

type options struct {
	Args struct {
		Image  flags.Filename `positional-arg-name:"image" description:"path to the UEFI firmware volume image"`
		Output string         `positional-arg-name:"output" description:"output directory"`
	} `positional-args:"yes" required:"yes"`
}

func main() {
	var opts options
	parser := flags.NewParser(&opts, flags.Default)
	if _, err := parser.Parse(); err != nil {
		os.Exit(1)
	}

	data, err := os.ReadFile(string(opts.Args.Image))
	if err != nil {
		xlog.Fatalf("reading %s: %v", opts.Args.Image, err)
	}

	parsed, err := uefi.Parse(data)
	if err != nil {
		xlog.Fatalf("parsing firmware volume: %v", err)
	}

	root := opts.Args.Output
	if parsed.BuildID != "" {
		root = filepath.Join(root, parsed.BuildID)
	}

	e := emit.New(root, time.Now())
	if _, err := e.Emit(parsed); err != nil {
		xlog.Fatalf("emitting build tree: %v", err)
	}
}
