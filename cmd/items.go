// cmd/items.go

package main

import (
	"fmt"
	"strconv"

	"github.com/dustin/go-humanize"
	"github.com/urfave/cli/v2"
)

func itemsFlags() *cli.Command {
	return &cli.Command{
		Name:      "items",
		Usage:     "list the items of a chunk with their field sizes",
		ArgsUsage: "INDEX CHUNK",
		Action:    items,
	}
}

func items(c *cli.Context) error {
	if err := needArgs(c, 2, "INDEX and CHUNK"); err != nil {
		return err
	}
	e := newEngine(c)
	defer e.Close()
	metas, err := e.ListChunkItems(c.Context, c.Args().Get(0), c.Args().Get(1))
	if err != nil {
		return err
	}
	if c.Bool("json") {
		printJson(metas)
		return nil
	}
	for _, m := range metas {
		fmt.Printf("item %-6d %10s", m.ItemIndex, humanize.IBytes(m.TotalBytes))
		for _, f := range m.Fields {
			fmt.Printf("  [%d] %s", f.FieldIndex, humanize.IBytes(uint64(f.Size)))
		}
		fmt.Println()
	}
	return nil
}

// leafArgs parses INDEX CHUNK ITEM FIELD.
func leafArgs(c *cli.Context) (string, string, uint32, int, error) {
	if err := needArgs(c, 4, "INDEX, CHUNK, ITEM and FIELD"); err != nil {
		return "", "", 0, 0, err
	}
	item, err := strconv.ParseUint(c.Args().Get(2), 10, 32)
	if err != nil {
		return "", "", 0, 0, fmt.Errorf("invalid item index %q", c.Args().Get(2))
	}
	field, err := strconv.Atoi(c.Args().Get(3))
	if err != nil || field < 0 {
		return "", "", 0, 0, fmt.Errorf("invalid field index %q", c.Args().Get(3))
	}
	return c.Args().Get(0), c.Args().Get(1), uint32(item), field, nil
}
