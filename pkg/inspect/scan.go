// pkg/inspect/scan.go

package inspect

import (
	"context"
	"time"

	"golang.org/x/sync/errgroup"

	"LitView/pkg/apperr"
	"LitView/pkg/chunk"
	"LitView/pkg/dataset"
)

// ScanResult is the outcome of checking one chunk file.
type ScanResult struct {
	Filename string `json:"filename"`
	Items    uint32 `json:"items"`
	Error    error  `json:"error,omitempty"`
}

func (r *ScanResult) OK() bool { return r.Error == nil }

// Scan checks the layout of every chunk of the dataset at path. A broken
// chunk is reported in its result and does not stop the others. onDone,
// if set, is called once per finished chunk.
func (e *Engine) Scan(ctx context.Context, path string, concurrent int, onDone func()) ([]ScanResult, error) {
	return query(ctx, e, "scan", func() ([]ScanResult, error) {
		ds, err := dataset.Resolve(path)
		if err != nil {
			return nil, err
		}
		results := make([]ScanResult, len(ds.Chunks))
		err = e.forEachChunk(ctx, ds, concurrent, func(i int, c *dataset.ChunkRecord) {
			results[i].Filename = c.Filename
			a, err := e.store.Open(ds, c.Filename)
			if err == nil {
				results[i].Items, err = chunk.Verify(a, ds.Config.FieldCount())
			}
			if err != nil {
				logger.Warnf("Chunk %s could be corrupted: %s", c.Filename, err)
				results[i].Error = err
			}
			if onDone != nil {
				onDone()
			}
		})
		return results, err
	}, "(%s)", path)
}

// Warmup decompresses the named chunks into the cache, all chunks when
// names is empty. Uncompressed datasets are read in place and need no
// warmup. It returns how many chunks are cached afterwards.
func (e *Engine) Warmup(ctx context.Context, path string, names []string, concurrent int) (int, error) {
	return query(ctx, e, "warmup", func() (int, error) {
		ds, err := dataset.Resolve(path)
		if err != nil {
			return 0, err
		}
		if !chunk.IsZstd(ds.Config.CompressionName()) {
			logger.Infof("%s is not compressed, nothing to warm up", ds.Source)
			return 0, nil
		}
		if len(names) > 0 {
			want := make(map[string]bool, len(names))
			for _, n := range names {
				want[n] = true
			}
			var chunks []dataset.ChunkRecord
			for _, c := range ds.Chunks {
				if want[c.Filename] {
					chunks = append(chunks, c)
				}
			}
			ds.Chunks = chunks
		}
		logger.Infof("start to warmup %d chunks with %d workers", len(ds.Chunks), concurrent)
		start := time.Now()
		cached := make([]bool, len(ds.Chunks))
		err = e.forEachChunk(ctx, ds, concurrent, func(i int, c *dataset.ChunkRecord) {
			if _, err := e.store.Open(ds, c.Filename); err != nil {
				logger.Errorf("Failed to warm up chunk %s: %s", c.Filename, err)
				return
			}
			_, cached[i] = e.store.Cache().Fetch(ds.ChunkPath(c.Filename))
		})
		n := 0
		for _, ok := range cached {
			if ok {
				n++
			}
		}
		logger.Infof("Warmup %d chunks in %s", n, time.Since(start))
		return n, err
	}, "(%s, %d names)", path, len(names))
}

// forEachChunk calls fn for each chunk with at most concurrent calls at
// a time. It only fails when ctx is done before all chunks were started.
func (e *Engine) forEachChunk(ctx context.Context, ds *dataset.Dataset, concurrent int, fn func(int, *dataset.ChunkRecord)) error {
	if concurrent <= 0 {
		concurrent = 1
	}
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(concurrent)
	for i := range ds.Chunks {
		if err := gctx.Err(); err != nil {
			_ = g.Wait()
			return apperr.Taskf("%v", err)
		}
		i := i
		g.Go(func() error {
			fn(i, &ds.Chunks[i])
			return nil
		})
	}
	return g.Wait()
}
