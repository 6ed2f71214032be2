// pkg/chunk/access.go

package chunk

import (
	"bytes"
	"io"
	"os"
	"strings"

	"github.com/DataDog/zstd"

	"LitView/pkg/apperr"
	"LitView/pkg/dataset"
	"LitView/pkg/utils"
)

// FileAccess reads an uncompressed chunk, opening the file for every read.
type FileAccess struct {
	Path  string
	store *Store
}

func (f *FileAccess) ReadExactAt(off uint64, n int) ([]byte, error) {
	fp, err := os.Open(f.Path)
	if err != nil {
		return nil, apperr.FromIO(err)
	}
	defer fp.Close()
	if _, err = fp.Seek(int64(off), io.SeekStart); err != nil {
		return nil, apperr.FromIO(err)
	}
	buf := make([]byte, n)
	var r io.Reader = fp
	if f.store != nil {
		r = f.store.throttle(fp)
	}
	if _, err = io.ReadFull(r, buf); err != nil {
		return nil, apperr.FromIO(err)
	}
	return buf, nil
}

func (f *FileAccess) Size() (uint64, error) {
	st, err := os.Stat(f.Path)
	if err != nil {
		return 0, apperr.FromIO(err)
	}
	return uint64(st.Size()), nil
}

// MemAccess reads a decompressed chunk held in memory.
type MemAccess struct {
	Page *Page
}

func (m *MemAccess) ReadExactAt(off uint64, n int) ([]byte, error) {
	end := off + uint64(n)
	if end < off || end > uint64(m.Page.Len()) {
		return nil, apperr.Malformed("read of %d bytes at %d is past the end (%d)", n, off, m.Page.Len())
	}
	buf := make([]byte, n)
	if _, err := m.Page.ReadAt(buf, int64(off)); err != nil && n > 0 {
		return nil, apperr.FromIO(err)
	}
	return buf, nil
}

func (m *MemAccess) Size() (uint64, error) {
	return uint64(m.Page.Len()), nil
}

// IsZstd reports whether a declared compression scheme is zstd.
func IsZstd(scheme string) bool {
	return strings.EqualFold(scheme, "zstd")
}

func isUncompressed(scheme string) bool {
	return scheme == "" || strings.EqualFold(scheme, "none")
}

// Open returns access to the named chunk of ds. Compressed chunks are
// decompressed fully and served from the cache on later calls.
func (s *Store) Open(ds *dataset.Dataset, filename string) (Access, error) {
	return s.OpenPath(ds.ChunkPath(filename), ds.Config.CompressionName())
}

// OpenPath is Open for a chunk path and compression scheme given directly.
func (s *Store) OpenPath(path, scheme string) (Access, error) {
	if !utils.Exists(path) {
		return nil, apperr.Missingf("%s", path)
	}
	switch {
	case isUncompressed(scheme):
		return &FileAccess{Path: path, store: s}, nil
	case IsZstd(scheme):
		if p, ok := s.cache.Fetch(path); ok {
			return &MemAccess{Page: p}, nil
		}
		p, err := s.decompress(path)
		if err != nil {
			return nil, err
		}
		s.cache.Store(path, p)
		return &MemAccess{Page: p}, nil
	default:
		return nil, apperr.Unsupported(scheme)
	}
}

func (s *Store) decompress(path string) (*Page, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, apperr.FromIO(err)
	}
	defer f.Close()
	r := zstd.NewReader(s.throttle(f))
	defer r.Close()
	var buf bytes.Buffer
	if st, err := f.Stat(); err == nil {
		// compressed chunks usually expand a few times
		buf.Grow(int(st.Size()) * 3)
	}
	if _, err = io.Copy(&buf, r); err != nil {
		return nil, apperr.Wrap(apperr.Invalid, err, "decompressing chunk")
	}
	logger.Debugf("decompressed %s into %d bytes", path, buf.Len())
	return NewPage(buf.Bytes()), nil
}
