// pkg/chunk/bwlimit.go

package chunk

import (
	"io"

	"github.com/juju/ratelimit"
)

type limitedReader struct {
	io.Reader
	r *ratelimit.Bucket
}

func (l *limitedReader) Read(buf []byte) (int, error) {
	n, err := l.Reader.Read(buf)
	if l.r != nil {
		l.r.Wait(int64(n))
	}
	return n, err
}

// throttle wraps r with the store's read bucket, if any.
func (s *Store) throttle(r io.Reader) io.Reader {
	if s.bucket == nil {
		return r
	}
	return &limitedReader{r, s.bucket}
}
