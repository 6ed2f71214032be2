// pkg/chunk/chunk.go

// Package chunk reads the binary chunk layout: item count, offset table,
// per-item field-size header and field payloads.
package chunk

import (
	"github.com/juju/ratelimit"

	"LitView/pkg/utils"
)

var logger = utils.GetLogger("litview")

const (
	// DefaultMaxEntry is the largest decompressed chunk kept in the cache.
	DefaultMaxEntry = 128 << 20
	// PreviewBytes caps field reads made for previews.
	PreviewBytes = 2048
)

// Config for chunk access.
type Config struct {
	CacheSize int64 // capacity in MiB, 0 keeps every entry
	MaxEntry  int64 // bytes, per decompressed chunk
	ReadLimit int64 // bytes per second for chunk file reads, 0 is unlimited
}

// Access reads byte ranges from one chunk, either straight from its file
// or from a decompressed in-memory copy.
type Access interface {
	// ReadExactAt returns exactly n bytes starting at off.
	ReadExactAt(off uint64, n int) ([]byte, error)
	// Size is the number of addressable bytes.
	Size() (uint64, error)
}

// Store opens chunks and owns the cache of decompressed chunks.
type Store struct {
	conf   Config
	cache  *Cache
	bucket *ratelimit.Bucket
}

// NewStore creates a Store; the zero Config gets the default entry ceiling.
func NewStore(conf *Config) *Store {
	c := *conf
	if c.MaxEntry <= 0 {
		c.MaxEntry = DefaultMaxEntry
	}
	s := &Store{conf: c, cache: NewCache(&c)}
	if c.ReadLimit > 0 {
		// there are overheads coming from page cache and syscalls
		s.bucket = ratelimit.NewBucketWithRate(float64(c.ReadLimit)*0.85, c.ReadLimit)
	}
	return s
}

func (s *Store) Cache() *Cache {
	return s.cache
}

// UsedMemory returns the bytes held by decompressed chunks.
func (s *Store) UsedMemory() int64 {
	return s.cache.usedMemory()
}
