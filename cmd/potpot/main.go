// Command potpot is a small diagnostic CLI over the page-store core: it
// opens a paged file and buffer pool and lets a caller poke at it by
// hand, in the style of tinySQL's single-purpose cmd/* tools (cmd/debug,
// cmd/migrate) rather than a full database client.
package main

import (
	"flag"
	"fmt"
	"log"
	"os"

	"github.com/dustin/go-humanize"

	"github.com/SimonWaldherr/potpot/internal/engineconfig"
	"github.com/SimonWaldherr/potpot/internal/storage/pager"
)

func main() {
	configPath := flag.String("config", "", "path to a YAML config file (defaults if omitted)")
	flag.Parse()

	args := flag.Args()
	if len(args) == 0 {
		fmt.Fprintln(os.Stderr, "usage: potpot [-config path] <stat|append|dump-page> [args...]")
		os.Exit(2)
	}

	cfg := engineconfig.Default()
	if *configPath != "" {
		loaded, err := engineconfig.Load(*configPath)
		if err != nil {
			log.Fatalf("potpot: %v", err)
		}
		cfg = loaded
	}

	eng, err := pager.Open(cfg)
	if err != nil {
		log.Fatalf("potpot: %v", err)
	}
	defer eng.Pool.Close()

	switch args[0] {
	case "stat":
		info, statErr := os.Stat(cfg.DataPath)
		size := uint64(0)
		if statErr == nil {
			size = uint64(info.Size())
		}
		fmt.Printf("%s: instance=%s %s (%s on disk)\n", cfg.DataPath, eng.InstanceID, eng.Pool.Stat(), humanize.Bytes(size))
	case "append":
		if len(args) < 2 {
			log.Fatalf("potpot append: missing input file")
		}
		data, err := os.ReadFile(args[1])
		if err != nil {
			log.Fatalf("potpot append: %v", err)
		}
		buf := pager.NewAlignedBuffer()
		buf.CopyFromSlice(data)
		id, err := eng.Pool.AppendPage(buf)
		if err != nil {
			log.Fatalf("potpot append: %v", err)
		}
		fmt.Printf("appended page %d\n", id)
	case "dump-page":
		if len(args) < 2 {
			log.Fatalf("potpot dump-page: missing page id")
		}
		var id uint64
		if _, err := fmt.Sscanf(args[1], "%d", &id); err != nil {
			log.Fatalf("potpot dump-page: invalid page id %q", args[1])
		}
		out := pager.NewAlignedBuffer()
		if err := eng.Pool.ReadPage(pager.PageID(id), out); err != nil {
			log.Fatalf("potpot dump-page: %v", err)
		}
		fmt.Printf("%x\n", out.Bytes())
	default:
		fmt.Fprintf(os.Stderr, "potpot: unknown subcommand %q\n", args[0])
		os.Exit(2)
	}
}
