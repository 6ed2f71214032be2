// pkg/inspect/engine.go

// Package inspect answers the queries of the dataset viewer: index and
// chunk listings, item layouts, field previews and field export.
package inspect

import (
	"context"
	"encoding/hex"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"unicode/utf8"

	"LitView/pkg/apperr"
	"LitView/pkg/chunk"
	"LitView/pkg/dataset"
	"LitView/pkg/sniff"
	"LitView/pkg/utils"
)

var logger = utils.GetLogger("litview")

const (
	previewRunes = 400
	hexBytes     = 48
	exportSubdir = "litdata-viewer"
)

// Engine owns the chunk cache and the worker pool shared by all queries.
type Engine struct {
	conf   Config
	store  *chunk.Store
	pool   *Pool
	opener Opener
	alog   accessLog
}

// NewEngine creates an Engine. A nil opener launches the system viewer.
func NewEngine(conf *Config, opener Opener) *Engine {
	if opener == nil {
		opener = SystemOpener{}
	}
	e := &Engine{
		conf:   *conf,
		store:  chunk.NewStore(&conf.Chunk),
		pool:   NewPool(conf.Workers),
		opener: opener,
	}
	e.alog.readers = make(map[uint64]*logReader)
	return e
}

// Close stops the worker pool.
func (e *Engine) Close() {
	e.pool.Close()
}

func (e *Engine) Store() *chunk.Store {
	return e.store
}

// LoadIndex describes the dataset found at path.
func (e *Engine) LoadIndex(ctx context.Context, path string) (*IndexSummary, error) {
	return query(ctx, e, "load_index", func() (*IndexSummary, error) {
		ds, err := dataset.Resolve(path)
		if err != nil {
			return nil, err
		}
		return newIndexSummary(ds, ds.ChunkPath), nil
	}, "(%s)", path)
}

// LoadChunkList describes an explicit selection of chunk files.
func (e *Engine) LoadChunkList(ctx context.Context, paths []string) (*IndexSummary, error) {
	return query(ctx, e, "load_chunk_list", func() (*IndexSummary, error) {
		sel, err := dataset.ResolveChunkList(paths)
		if err != nil {
			return nil, err
		}
		return newIndexSummary(&sel.Dataset, sel.PathOf), nil
	}, "(%d paths)", len(paths))
}

// ListChunkItems returns the layout of every item in a chunk.
func (e *Engine) ListChunkItems(ctx context.Context, indexPath, chunkName string) ([]ItemMeta, error) {
	return query(ctx, e, "list_chunk_items", func() ([]ItemMeta, error) {
		ds, err := dataset.Resolve(indexPath)
		if err != nil {
			return nil, err
		}
		a, err := e.store.Open(ds, chunkName)
		if err != nil {
			return nil, err
		}
		items, err := chunk.ListItems(a, ds.Config.FieldCount())
		if err != nil {
			return nil, err
		}
		metas := make([]ItemMeta, 0, len(items))
		for _, it := range items {
			fields := make([]FieldMeta, 0, len(it.Sizes))
			for j, sz := range it.Sizes {
				fields = append(fields, FieldMeta{FieldIndex: j, Size: sz})
			}
			metas = append(metas, ItemMeta{ItemIndex: it.Index, TotalBytes: it.TotalBytes, Fields: fields})
		}
		return metas, nil
	}, "(%s, %s)", indexPath, chunkName)
}

type fieldData struct {
	format *string
	data   []byte
	size   uint32
}

func (e *Engine) readField(indexPath, chunkName string, item uint32, field, limit int) (*fieldData, error) {
	ds, err := dataset.Resolve(indexPath)
	if err != nil {
		return nil, err
	}
	a, err := e.store.Open(ds, chunkName)
	if err != nil {
		return nil, err
	}
	data, size, err := chunk.ReadField(a, item, field, ds.Config.FieldCount(), limit)
	if err != nil {
		return nil, err
	}
	fd := &fieldData{data: data, size: size}
	if field >= 0 && field < len(ds.Config.DataFormat) {
		fd.format = &ds.Config.DataFormat[field]
	}
	return fd, nil
}

// PeekField previews the first bytes of one field.
func (e *Engine) PeekField(ctx context.Context, indexPath, chunkName string, item uint32, field int) (*FieldPreview, error) {
	return query(ctx, e, "peek_field", func() (*FieldPreview, error) {
		fd, err := e.readField(indexPath, chunkName, item, field, chunk.PreviewBytes)
		if err != nil {
			return nil, err
		}
		return preview(fd), nil
	}, "(%s, %s, %d, %d)", indexPath, chunkName, item, field)
}

func preview(fd *fieldData) *FieldPreview {
	p := &FieldPreview{
		HexSnippet: hex.EncodeToString(fd.data[:utils.Min(hexBytes, len(fd.data))]),
		IsBinary:   !utf8.Valid(fd.data),
		Size:       fd.size,
	}
	if !p.IsBinary {
		text := string(fd.data)
		n := 0
		for i := range text {
			if n == previewRunes {
				text = text[:i]
				break
			}
			n++
		}
		p.PreviewText = &text
	}
	if ext, ok := sniff.GuessExtension(fd.format, fd.data); ok {
		p.GuessedExt = &ext
	}
	return p
}

// Sanitize replaces every rune that is not an ASCII letter or digit by '-'.
func Sanitize(name string) string {
	var b strings.Builder
	for _, r := range name {
		if r >= 'a' && r <= 'z' || r >= 'A' && r <= 'Z' || r >= '0' && r <= '9' {
			b.WriteRune(r)
		} else {
			b.WriteByte('-')
		}
	}
	return b.String()
}

func (e *Engine) exportDir() string {
	base := e.conf.TempDir
	if base == "" {
		base = os.TempDir()
	}
	return filepath.Join(base, exportSubdir)
}

// OpenLeaf writes one whole field to the export directory and hands the
// file to the opener.
func (e *Engine) OpenLeaf(ctx context.Context, indexPath, chunkName string, item uint32, field int) (*LeafResult, error) {
	return query(ctx, e, "open_leaf", func() (*LeafResult, error) {
		fd, err := e.readField(indexPath, chunkName, item, field, 0)
		if err != nil {
			return nil, err
		}
		ext, ok := sniff.GuessExtension(fd.format, fd.data)
		if !ok {
			ext = "bin"
		}
		dir := e.exportDir()
		if err = os.MkdirAll(dir, 0755); err != nil {
			return nil, apperr.FromIO(err)
		}
		out := filepath.Join(dir, fmt.Sprintf("%s-i%d-f%d.%s", Sanitize(chunkName), item, field, ext))
		if err = os.WriteFile(out, fd.data, 0644); err != nil {
			return nil, apperr.FromIO(err)
		}
		if err = e.opener.Open(out); err != nil {
			return nil, apperr.OpenErr(err)
		}
		return &LeafResult{Path: out, Size: fd.size}, nil
	}, "(%s, %s, %d, %d)", indexPath, chunkName, item, field)
}
