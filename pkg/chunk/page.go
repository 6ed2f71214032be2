// pkg/chunk/page.go

package chunk

import (
	"io"

	"github.com/pkg/errors"
)

// Page holds a fully decompressed chunk. A page handed out by the cache is
// shared by every reader of that chunk and must never be modified.
type Page struct {
	Data []byte
}

// NewPage create a new page.
func NewPage(data []byte) *Page {
	return &Page{Data: data}
}

func (p *Page) Len() int {
	return len(p.Data)
}

// ReadAt implements io.ReaderAt over the page.
func (p *Page) ReadAt(buf []byte, off int64) (int, error) {
	if len(buf) == 0 {
		return 0, nil
	}
	if p.Data == nil {
		return 0, errors.New("page is empty")
	}
	if off < 0 {
		return 0, errors.Errorf("read at %d: negative offset", off)
	}
	if off >= int64(len(p.Data)) {
		return 0, io.EOF
	}
	n := copy(buf, p.Data[off:])
	if n < len(buf) {
		return n, io.EOF
	}
	return n, nil
}
