// cmd/scan.go

package main

import (
	"fmt"
	"runtime"

	"github.com/urfave/cli/v2"

	"LitView/pkg/dataset"
	"LitView/pkg/utils"
)

func scanFlags() *cli.Command {
	return &cli.Command{
		Name:      "scan",
		Usage:     "check the layout of every chunk of a dataset",
		ArgsUsage: "PATH",
		Action:    scan,
		Flags: []cli.Flag{
			&cli.IntFlag{
				Name:    "threads",
				Aliases: []string{"p"},
				Value:   runtime.NumCPU(),
				Usage:   "number of chunks checked concurrently",
			},
			&cli.BoolFlag{
				Name:  "warmup",
				Usage: "decompress compressed chunks into the cache before scanning",
			},
		},
	}
}

func scan(c *cli.Context) error {
	if err := needArgs(c, 1, "PATH"); err != nil {
		return err
	}
	path := c.Args().Get(0)
	threads := c.Int("threads")
	ds, err := dataset.Resolve(path)
	if err != nil {
		return err
	}
	e := newEngine(c)
	defer e.Close()

	if c.Bool("warmup") {
		n, err := e.Warmup(c.Context, path, nil, threads)
		if err != nil {
			return err
		}
		logger.Infof("%d of %d chunks cached", n, len(ds.Chunks))
	}

	progress, bar := utils.NewDynProgressBar("scanning chunks: ", c.Bool("quiet") || c.Bool("json"))
	bar.SetTotal(int64(len(ds.Chunks)), false)
	results, err := e.Scan(c.Context, path, threads, func() { bar.Increment() })
	bar.SetTotal(0, true)
	progress.Wait()
	if err != nil {
		return err
	}

	if c.Bool("json") {
		printJson(results)
	}
	var bad int
	for _, r := range results {
		if r.OK() {
			continue
		}
		bad++
		if !c.Bool("json") {
			fmt.Printf("%s: %s\n", r.Filename, r.Error)
		}
	}
	if bad > 0 {
		return fmt.Errorf("%d of %d chunks are broken", bad, len(results))
	}
	logger.Infof("%d chunks of %s are healthy", len(results), ds)
	return nil
}
