// cmd/main.go

package main

import (
	"context"
	"fmt"
	"os"
	"runtime"
	"time"

	"github.com/google/gops/agent"
	"github.com/sirupsen/logrus"
	"github.com/urfave/cli/v2"

	"LitView/pkg/chunk"
	"LitView/pkg/inspect"
	"LitView/pkg/metrics"
	"LitView/pkg/utils"
	"LitView/pkg/version"
)

var logger = utils.GetLogger("litview")

func globalFlags() []cli.Flag {
	return []cli.Flag{
		&cli.BoolFlag{
			Name:    "verbose",
			Aliases: []string{"debug", "v"},
			Usage:   "enable debug log",
		},
		&cli.BoolFlag{
			Name:    "quiet",
			Aliases: []string{"q"},
			Usage:   "only warning and errors",
		},
		&cli.BoolFlag{
			Name:  "trace",
			Usage: "enable trace log",
		},
		&cli.StringFlag{
			Name:  "log",
			Usage: "append log to this file instead of stderr",
		},
		&cli.BoolFlag{
			Name:  "json",
			Usage: "print results as JSON",
		},
		&cli.BoolFlag{
			Name:  "no-agent",
			Usage: "disable pprof (gops) agent",
		},
		&cli.StringFlag{
			Name:  "metrics",
			Usage: "address to export metrics while a command runs (e.g. 127.0.0.1:9567)",
		},
		&cli.Int64Flag{
			Name:  "cache-size",
			Value: 0,
			Usage: "total size of cached chunks in MiB, 0 keeps every chunk",
		},
		&cli.Int64Flag{
			Name:  "max-cache-entry",
			Value: chunk.DefaultMaxEntry >> 20,
			Usage: "largest decompressed chunk in MiB that is cached",
		},
		&cli.Int64Flag{
			Name:  "read-limit",
			Value: 0,
			Usage: "bandwidth limit for reading chunk files in Mbps, 0 means unlimited",
		},
		&cli.IntFlag{
			Name:  "workers",
			Value: runtime.NumCPU(),
			Usage: "number of queries running at once",
		},
		&cli.StringFlag{
			Name:  "temp-dir",
			Usage: "parent directory of exported fields (default: system temp dir)",
		},
		&cli.DurationFlag{
			Name:  "slow-query",
			Value: 10 * time.Second,
			Usage: "log queries slower than this at info level",
		},
	}
}

func main() {
	app := &cli.App{
		Name:                 "litview",
		Usage:                "inspect chunked litdata datasets",
		Version:              version.Version(),
		EnableBashCompletion: true,
		Flags:                globalFlags(),
		Before:               setup,
		Commands: []*cli.Command{
			infoFlags(),
			chunksFlags(),
			itemsFlags(),
			peekFlags(),
			openFlags(),
			scanFlags(),
		},
	}

	err := app.Run(os.Args)
	if err != nil {
		logger.Fatal(err)
	}
}

func setLoggerLevel(c *cli.Context) {
	if c.Bool("trace") {
		utils.SetLogLevel(logrus.TraceLevel)
	} else if c.Bool("verbose") {
		utils.SetLogLevel(logrus.DebugLevel)
	} else if c.Bool("quiet") {
		utils.SetLogLevel(logrus.WarnLevel)
	} else {
		utils.SetLogLevel(logrus.InfoLevel)
	}
	if name := c.String("log"); name != "" {
		utils.SetOutFile(name)
	}
}

func setup(c *cli.Context) error {
	setLoggerLevel(c)
	if !c.Bool("no-agent") {
		go func() {
			if err := agent.Listen(agent.Options{ShutdownCleanup: true}); err != nil {
				logger.Debugf("gops agent: %s", err)
			}
		}()
	}
	if addr := c.String("metrics"); addr != "" {
		s, err := metrics.NewServer(addr, utils.GetStdLogger(logger, logrus.WarnLevel))
		if err != nil {
			return err
		}
		logger.Infof("Prometheus metrics listening on %s", s.Addr())
		go func() {
			if err := s.Serve(context.Background()); err != nil {
				logger.Errorf("metrics: %s", err)
			}
		}()
	}
	return nil
}

func engineConfig(c *cli.Context) *inspect.Config {
	conf := inspect.DefaultConfig()
	conf.Chunk.CacheSize = c.Int64("cache-size")
	conf.Chunk.MaxEntry = c.Int64("max-cache-entry") << 20
	conf.Chunk.ReadLimit = c.Int64("read-limit") * 1e6 / 8
	conf.Workers = c.Int("workers")
	conf.TempDir = c.String("temp-dir")
	conf.SlowQuery = c.Duration("slow-query")
	return conf
}

func newEngine(c *cli.Context) *inspect.Engine {
	return inspect.NewEngine(engineConfig(c), nil)
}

func needArgs(c *cli.Context, n int, what string) error {
	if c.Args().Len() < n {
		return fmt.Errorf("%s is needed", what)
	}
	return nil
}
