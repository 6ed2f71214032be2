// cmd/peek.go

package main

import (
	"fmt"

	"github.com/dustin/go-humanize"
	"github.com/urfave/cli/v2"

	"LitView/pkg/inspect"
)

func peekFlags() *cli.Command {
	return &cli.Command{
		Name:      "peek",
		Usage:     "preview the first bytes of a field",
		ArgsUsage: "INDEX CHUNK ITEM FIELD",
		Action:    peek,
	}
}

func openFlags() *cli.Command {
	return &cli.Command{
		Name:      "open",
		Usage:     "export a field to a file and open it with the default application",
		ArgsUsage: "INDEX CHUNK ITEM FIELD",
		Action:    open,
		Flags: []cli.Flag{
			&cli.BoolFlag{
				Name:  "no-launch",
				Usage: "only write the file",
			},
		},
	}
}

func peek(c *cli.Context) error {
	index, name, item, field, err := leafArgs(c)
	if err != nil {
		return err
	}
	e := newEngine(c)
	defer e.Close()
	p, err := e.PeekField(c.Context, index, name, item, field)
	if err != nil {
		return err
	}
	if c.Bool("json") {
		printJson(p)
		return nil
	}
	fmt.Printf("size: %s\n", humanize.IBytes(uint64(p.Size)))
	fmt.Printf(" ext: %s\n", optString(p.GuessedExt))
	fmt.Printf(" hex: %s\n", p.HexSnippet)
	if p.PreviewText != nil {
		fmt.Printf("text:\n%s\n", *p.PreviewText)
	} else {
		fmt.Println("binary data")
	}
	return nil
}

func open(c *cli.Context) error {
	index, name, item, field, err := leafArgs(c)
	if err != nil {
		return err
	}
	var opener inspect.Opener
	if c.Bool("no-launch") {
		opener = inspect.NopOpener{}
	}
	e := inspect.NewEngine(engineConfig(c), opener)
	defer e.Close()
	r, err := e.OpenLeaf(c.Context, index, name, item, field)
	if err != nil {
		return err
	}
	if c.Bool("json") {
		printJson(r)
		return nil
	}
	fmt.Println(r)
	return nil
}
