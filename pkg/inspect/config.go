// pkg/inspect/config.go

package inspect

import (
	"runtime"
	"time"

	"LitView/pkg/chunk"
)

// Config for an Engine.
type Config struct {
	Chunk     chunk.Config
	Workers   int           // queries running at once
	TempDir   string        // parent of exported fields, os.TempDir() if empty
	SlowQuery time.Duration // queries slower than this are logged at info
}

func DefaultConfig() *Config {
	return &Config{
		Chunk:     chunk.Config{MaxEntry: chunk.DefaultMaxEntry},
		Workers:   runtime.NumCPU(),
		SlowQuery: 10 * time.Second,
	}
}
