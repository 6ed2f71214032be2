// cmd/info.go

package main

import (
	"fmt"
	"strings"

	"github.com/dustin/go-humanize"
	"github.com/urfave/cli/v2"

	"LitView/pkg/inspect"
)

func infoFlags() *cli.Command {
	return &cli.Command{
		Name:      "info",
		Usage:     "show the index and chunk list of a dataset",
		ArgsUsage: "PATH",
		Description: `
PATH may be a dataset directory, an index document (plain or zstd) or a
single chunk file. A chunk without an index next to it is described from
its own header.

Examples:
$ litview info /data/optimized
$ litview --json info /data/optimized/chunk-0-3.bin`,
		Action: info,
	}
}

func chunksFlags() *cli.Command {
	return &cli.Command{
		Name:      "chunks",
		Usage:     "describe an explicit list of chunk files",
		ArgsUsage: "CHUNK [CHUNK ...]",
		Action:    chunks,
	}
}

func info(c *cli.Context) error {
	if err := needArgs(c, 1, "PATH"); err != nil {
		return err
	}
	e := newEngine(c)
	defer e.Close()
	s, err := e.LoadIndex(c.Context, c.Args().Get(0))
	if err != nil {
		return err
	}
	printSummary(c, s)
	return nil
}

func chunks(c *cli.Context) error {
	e := newEngine(c)
	defer e.Close()
	s, err := e.LoadChunkList(c.Context, c.Args().Slice())
	if err != nil {
		return err
	}
	printSummary(c, s)
	return nil
}

func optString(s *string) string {
	if s == nil {
		return "none"
	}
	return *s
}

func printSummary(c *cli.Context, s *inspect.IndexSummary) {
	if c.Bool("json") {
		printJson(s)
		return
	}
	fmt.Printf("    index: %s\n", s.IndexPath)
	fmt.Printf("     root: %s\n", s.RootDir)
	fmt.Printf("   format: [%s]\n", strings.Join(s.DataFormat, ", "))
	fmt.Printf("compressed: %s\n", optString(s.Compression))
	if s.ChunkSize != nil {
		fmt.Printf("chunk size: %d items\n", *s.ChunkSize)
	}
	if s.ChunkBytes != nil {
		fmt.Printf("chunk bytes: %s\n", humanize.IBytes(*s.ChunkBytes))
	}
	var total uint64
	var items uint64
	missing := 0
	fmt.Printf("   chunks: %d\n", len(s.Chunks))
	for _, ch := range s.Chunks {
		mark := " "
		if !ch.Exists {
			mark = "!"
			missing++
		}
		fmt.Printf("  %s %-24s %8d items %10s\n", mark, ch.Filename, ch.ChunkSize, humanize.IBytes(ch.ChunkBytes))
		total += ch.ChunkBytes
		items += uint64(ch.ChunkSize)
	}
	fmt.Printf("    total: %s items in %s\n", humanize.Comma(int64(items)), humanize.IBytes(total))
	if missing > 0 {
		logger.Warnf("%d chunks listed in the index are missing on disk", missing)
	}
}
