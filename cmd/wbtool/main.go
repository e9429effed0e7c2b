// wbtool is a CLI utility for working with the editor's game-data
// archives and project files.
package main

import (
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/trevis/WorldBuilder-ACME-Edition-sub004/internal/config"
	"github.com/trevis/WorldBuilder-ACME-Edition-sub004/internal/document"
	"github.com/trevis/WorldBuilder-ACME-Edition-sub004/internal/editing"
	"github.com/trevis/WorldBuilder-ACME-Edition-sub004/internal/export"
	"github.com/trevis/WorldBuilder-ACME-Edition-sub004/internal/logger"
	"github.com/trevis/WorldBuilder-ACME-Edition-sub004/internal/stamp"
	"github.com/trevis/WorldBuilder-ACME-Edition-sub004/internal/terrain"
	"github.com/trevis/WorldBuilder-ACME-Edition-sub004/pkg/dat"
)

func main() {
	config.ParseFlags()
	if flag.NArg() < 1 {
		printUsage()
		os.Exit(1)
	}

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error loading config: %v\n", err)
		os.Exit(1)
	}

	if err := logger.Init(cfg.Logging.Level, cfg.Logging.LogFile); err != nil {
		fmt.Fprintf(os.Stderr, "Error initializing logger: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	command := flag.Arg(0)
	args := flag.Args()[1:]

	switch command {
	case "info":
		cmdInfo(cfg, args)
	case "list", "ls":
		cmdList(cfg, args)
	case "export":
		cmdExport(cfg, args)
	case "stamp":
		cmdStamp(cfg, args)
	case "help", "-h", "--help":
		printUsage()
	default:
		fmt.Fprintf(os.Stderr, "Unknown command: %s\n", command)
		printUsage()
		os.Exit(1)
	}
}

func printUsage() {
	fmt.Println(`wbtool - world archive and project utility

Usage:
  wbtool [global options] <command> [options]

Global options (defaults come from config.yaml):
  -config <path>     Config file to load
  -debug             Enable debug logging
  -cell <path>       World geometry archive
  -project <path>    Project database
  -output <dir>      Export output directory
  -iteration <N>     Export iteration ('current' or a number)

Commands:
  info [cell.dat]                       Show archive information
  list [cell.dat] [kind]                List record IDs (optionally one kind)
  export [output_dir]                   Composite the project into a fresh archive
  stamp info <file.stamp>               Show stamp contents
  stamp capture <landblock> <out.stamp> Capture a landblock into a stamp file
  stamp paste <file.stamp> <landblock>  Paste a stamp onto a landblock

Kinds: terrain, info, dungeon, portals, region, texture

Examples:
  wbtool info client_cell.dat
  wbtool list client_cell.dat terrain
  wbtool -cell client_cell.dat -project dereth.wbp -iteration 991 export ./out
  wbtool -project dereth.wbp stamp capture 7F7F hill.stamp
  wbtool -project dereth.wbp stamp paste hill.stamp 7F80`)
}

var recordKinds = []struct {
	name string
	kind dat.Kind
}{
	{"terrain", dat.KindLandblockTerrain},
	{"info", dat.KindLandblockInfo},
	{"dungeon", dat.KindDungeon},
	{"portals", dat.KindPortalTable},
	{"region", dat.KindRegion},
	{"texture", dat.KindTexture},
}

func kindByName(name string) (dat.Kind, bool) {
	for _, k := range recordKinds {
		if k.name == name {
			return k.kind, true
		}
	}
	return 0, false
}

func cmdInfo(cfg *config.Config, args []string) {
	path := cfg.Dats.CellPath
	if len(args) > 0 {
		path = args[0]
	}

	archive, err := dat.Open(path)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	fmt.Printf("Archive:   %s\n", path)
	fmt.Printf("Iteration: %d\n", archive.Iteration())
	fmt.Println()
	fmt.Println("Records by kind:")

	total := 0
	for _, k := range recordKinds {
		n := len(archive.AllIDsOfKind(k.kind))
		total += n
		if n > 0 {
			fmt.Printf("  %-10s %d\n", k.name, n)
		}
	}
	fmt.Printf("  %-10s %d\n", "total", total)
}

func cmdList(cfg *config.Config, args []string) {
	fs := flag.NewFlagSet("list", flag.ExitOnError)
	limit := fs.Int("n", 0, "Limit output to N records (0 = all)")
	fs.Parse(args)

	path := cfg.Dats.CellPath
	kindArg := ""
	if fs.NArg() > 0 {
		path = fs.Arg(0)
	}
	if fs.NArg() > 1 {
		kindArg = fs.Arg(1)
	}

	archive, err := dat.Open(path)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	kinds := recordKinds
	if kindArg != "" {
		kind, ok := kindByName(kindArg)
		if !ok {
			fmt.Fprintf(os.Stderr, "Unknown record kind: %s\n", kindArg)
			os.Exit(1)
		}
		kinds = []struct {
			name string
			kind dat.Kind
		}{{kindArg, kind}}
	}

	count := 0
	for _, k := range kinds {
		for _, id := range archive.AllIDsOfKind(k.kind) {
			fmt.Printf("%08X  %s\n", id, k.name)
			count++
			if *limit > 0 && count >= *limit {
				return
			}
		}
	}
}

func cmdExport(cfg *config.Config, args []string) {
	outputDir := cfg.Export.OutputDir
	if len(args) > 0 {
		outputDir = args[0]
	}

	iteration, err := export.ParseIteration(cfg.Export.Iteration)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	archive, docs, system, tree := openProject(cfg)
	defer docs.Close()

	exporter := &export.Exporter{
		System: system,
		Tree:   tree,
		Docs:   docs,
		Source: archive,
		Log:    logger.Named("export"),
	}

	result, err := exporter.ExportDats(outputDir, iteration)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	fmt.Printf("Exported %d landblocks and %d documents to %s\n",
		result.Landblocks, result.Documents, result.OutputPath)
	for _, key := range result.Failed {
		fmt.Fprintf(os.Stderr, "Failed landblock: %s\n", key)
	}
	if len(result.Failed) > 0 {
		os.Exit(1)
	}
}

// openProject opens the configured archive and project database and
// materializes the stored documents. Exits on failure.
func openProject(cfg *config.Config) (*dat.Archive, *document.Manager, *terrain.System, *terrain.LayerTree) {
	archive, err := dat.Open(cfg.Dats.CellPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error opening archive: %v\n", err)
		os.Exit(1)
	}

	docs, err := document.NewManager(cfg.Project.Path)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error opening project: %v\n", err)
		os.Exit(1)
	}

	system, tree, err := loadProject(archive, docs)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error loading project: %v\n", err)
		os.Exit(1)
	}
	return archive, docs, system, tree
}

// loadProject materializes every stored document and registers the stored
// layers as export-flagged roots, in stored order.
func loadProject(archive *dat.Archive, docs *document.Manager) (*terrain.System, *terrain.LayerTree, error) {
	ids, err := docs.StoredIDs("")
	if err != nil {
		return nil, nil, err
	}
	for _, id := range ids {
		if _, err := docs.GetOrCreateDocument(id); err != nil {
			return nil, nil, err
		}
	}

	terrainDoc, err := docs.Terrain()
	if err != nil {
		return nil, nil, err
	}
	system := terrain.NewSystem(archive, terrainDoc.Store, terrain.LoadHeightTable(archive))

	tree := terrain.NewLayerTree()
	layerIDs, err := docs.StoredIDs(document.LayerDocPrefix)
	if err != nil {
		return nil, nil, err
	}
	for _, id := range layerIDs {
		if _, err := tree.AddLayer(-1, id, id); err != nil {
			return nil, nil, err
		}
	}
	return system, tree, nil
}

func cmdStamp(cfg *config.Config, args []string) {
	if len(args) < 1 {
		fmt.Fprintln(os.Stderr, "Usage: wbtool stamp <info|capture|paste> ...")
		os.Exit(1)
	}

	switch args[0] {
	case "info":
		cmdStampInfo(cfg, args[1:])
	case "capture":
		cmdStampCapture(cfg, args[1:])
	case "paste":
		cmdStampPaste(cfg, args[1:])
	default:
		fmt.Fprintf(os.Stderr, "Unknown stamp subcommand: %s\n", args[0])
		os.Exit(1)
	}
}

// resolveStampPath falls back to the configured stamp directory for bare
// file names that do not exist in the working directory.
func resolveStampPath(cfg *config.Config, path string) string {
	if strings.ContainsRune(path, os.PathSeparator) {
		return path
	}
	if _, err := os.Stat(path); err == nil {
		return path
	}
	return filepath.Join(cfg.Editing.StampDir, path)
}

func cmdStampInfo(cfg *config.Config, args []string) {
	if len(args) < 1 {
		fmt.Fprintln(os.Stderr, "Usage: wbtool stamp info <file.stamp>")
		os.Exit(1)
	}

	s, err := stamp.Load(resolveStampPath(cfg, args[0]))
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	fmt.Printf("Name:        %s\n", s.Name)
	if s.Description != "" {
		fmt.Printf("Description: %s\n", s.Description)
	}
	fmt.Printf("Created:     %s\n", s.Created.Format("2006-01-02 15:04:05"))
	fmt.Printf("Size:        %dx%d vertices\n", s.Width, s.Height)
	fmt.Printf("Source:      landblock %s\n", s.SourceBlock)
	fmt.Printf("Objects:     %d\n", len(s.Objects))
}

func parseLandblockArg(arg string) terrain.LandblockKey {
	raw, err := strconv.ParseUint(arg, 16, 16)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Bad landblock key %q (expected hex like 7F7F)\n", arg)
		os.Exit(1)
	}
	return terrain.LandblockKey(raw)
}

func cmdStampCapture(cfg *config.Config, args []string) {
	fs := flag.NewFlagSet("capture", flag.ExitOnError)
	name := fs.String("name", "", "Stamp name (defaults to the landblock key)")
	desc := fs.String("desc", "", "Stamp description")
	fs.Parse(args)

	if fs.NArg() < 2 {
		fmt.Fprintln(os.Stderr, "Usage: wbtool stamp capture <landblock> <out.stamp>")
		os.Exit(1)
	}
	key := parseLandblockArg(fs.Arg(0))

	_, docs, system, tree := openProject(cfg)
	defer docs.Close()
	system.SetVisibleLayers(layerStores(docs, tree))

	ctx := editing.NewContext(system, docs)
	stampName := *name
	if stampName == "" {
		stampName = key.String()
	}

	s, err := stamp.Capture(ctx, key, stampName, *desc)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	if err := s.Save(fs.Arg(1)); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	fmt.Printf("Captured landblock %s into %s (%d objects)\n", key, fs.Arg(1), len(s.Objects))
}

func cmdStampPaste(cfg *config.Config, args []string) {
	if len(args) < 2 {
		fmt.Fprintln(os.Stderr, "Usage: wbtool stamp paste <file.stamp> <landblock>")
		os.Exit(1)
	}

	s, err := stamp.Load(resolveStampPath(cfg, args[0]))
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	key := parseLandblockArg(args[1])

	_, docs, system, tree := openProject(cfg)
	defer docs.Close()
	system.SetVisibleLayers(layerStores(docs, tree))

	ctx := editing.NewContext(system, docs)
	history := editing.NewHistory(cfg.Editing.UndoLimit)
	history.SetLogger(logger.Named("editing"))

	cmd, err := s.Paste(ctx, key)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	if !history.Do(cmd) {
		fmt.Fprintf(os.Stderr, "Stamp %q changed nothing on landblock %s\n", s.Name, key)
		os.Exit(1)
	}

	// The stroke wrote into the base terrain store; flag its document so
	// Close persists the edit.
	if terrainDoc, err := docs.Terrain(); err == nil {
		terrainDoc.MarkDirty()
	}

	fmt.Printf("Pasted stamp %q onto landblock %s (%d landblocks touched)\n",
		s.Name, key, len(ctx.DirtyLandblocks()))
}

// layerStores resolves the tree's export layers to stores, bottom to top,
// so the capture sees the same composite an export would write.
func layerStores(docs *document.Manager, tree *terrain.LayerTree) []*terrain.Store {
	nodes := tree.CollectExportLayers()
	stores := make([]*terrain.Store, 0, len(nodes))
	for i := len(nodes) - 1; i >= 0; i-- {
		doc, err := docs.Layer(nodes[i].DocumentID)
		if err != nil {
			continue
		}
		stores = append(stores, doc.Store)
	}
	return stores
}
