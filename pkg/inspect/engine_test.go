// pkg/inspect/engine_test.go

package inspect

import (
	"bytes"
	"context"
	"encoding/binary"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/DataDog/zstd"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"LitView/pkg/apperr"
)

type recordingOpener struct {
	sync.Mutex
	paths []string
	err   error
}

func (o *recordingOpener) Open(path string) error {
	o.Lock()
	defer o.Unlock()
	o.paths = append(o.paths, path)
	return o.err
}

func encodeChunk(items [][][]byte) []byte {
	var body bytes.Buffer
	base := uint32(4 + 4*(len(items)+1))
	offsets := make([]uint32, 0, len(items)+1)
	for _, fields := range items {
		offsets = append(offsets, base+uint32(body.Len()))
		for _, f := range fields {
			_ = binary.Write(&body, binary.LittleEndian, uint32(len(f)))
		}
		for _, f := range fields {
			body.Write(f)
		}
	}
	offsets = append(offsets, base+uint32(body.Len()))
	var out bytes.Buffer
	_ = binary.Write(&out, binary.LittleEndian, uint32(len(items)))
	_ = binary.Write(&out, binary.LittleEndian, offsets)
	out.Write(body.Bytes())
	return out.Bytes()
}

var longText = bytes.Repeat([]byte("a"), 5000)

func testItems() [][][]byte {
	return [][][]byte{
		{[]byte("1"), []byte("hello")},
		{[]byte("22"), {}},
		{[]byte("333"), longText},
	}
}

// writeDataset lays out a two-chunk dataset where only the first chunk
// exists on disk.
func writeDataset(t *testing.T, compression string) string {
	t.Helper()
	dir := t.TempDir()
	data := encodeChunk(testItems())
	comp := "null"
	if compression != "" {
		comp = fmt.Sprintf("%q", compression)
		var err error
		data, err = zstd.Compress(nil, data)
		require.NoError(t, err)
	}
	index := fmt.Sprintf(`{
  "chunks": [
    {"filename": "chunk-0-0.bin", "chunk_bytes": %d, "chunk_size": 3},
    {"filename": "chunk-0-1.bin", "chunk_bytes": 10, "chunk_size": 1}
  ],
  "config": {"compression": %s, "chunk_size": 3, "chunk_bytes": 4096,
             "data_format": ["int", "bytes"]}
}`, len(data), comp)
	require.NoError(t, os.WriteFile(filepath.Join(dir, "index.json"), []byte(index), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "chunk-0-0.bin"), data, 0o644))
	return dir
}

func newTestEngine(t *testing.T, opener Opener) *Engine {
	t.Helper()
	conf := DefaultConfig()
	conf.Workers = 2
	conf.TempDir = t.TempDir()
	e := NewEngine(conf, opener)
	t.Cleanup(e.Close)
	return e
}

func TestLoadIndex(t *testing.T) {
	t.Parallel()

	dir := writeDataset(t, "")
	e := newTestEngine(t, &recordingOpener{})
	s, err := e.LoadIndex(context.Background(), dir)
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, "index.json"), s.IndexPath)
	assert.Equal(t, dir, s.RootDir)
	assert.Equal(t, []string{"int", "bytes"}, s.DataFormat)
	assert.Nil(t, s.Compression)
	require.Len(t, s.Chunks, 2)
	assert.True(t, s.Chunks[0].Exists)
	assert.False(t, s.Chunks[1].Exists)
	assert.Equal(t, uint32(3), s.Chunks[0].ChunkSize)
}

func TestLoadIndexMissing(t *testing.T) {
	t.Parallel()

	e := newTestEngine(t, &recordingOpener{})
	_, err := e.LoadIndex(context.Background(), t.TempDir())
	assert.True(t, errors.Is(err, apperr.ErrMissing))
}

func TestLoadChunkList(t *testing.T) {
	t.Parallel()

	e := newTestEngine(t, &recordingOpener{})
	_, err := e.LoadChunkList(context.Background(), nil)
	assert.True(t, errors.Is(err, apperr.ErrInvalid))

	dir := writeDataset(t, "")
	s, err := e.LoadChunkList(context.Background(), []string{filepath.Join(dir, "chunk-0-0.bin")})
	require.NoError(t, err)
	require.Len(t, s.Chunks, 1)
	assert.Equal(t, "chunk-0-0.bin", s.Chunks[0].Filename)
	assert.True(t, s.Chunks[0].Exists)
}

func TestListChunkItems(t *testing.T) {
	t.Parallel()

	for _, comp := range []string{"", "zstd"} {
		dir := writeDataset(t, comp)
		e := newTestEngine(t, &recordingOpener{})
		items, err := e.ListChunkItems(context.Background(), dir, "chunk-0-0.bin")
		require.NoError(t, err, comp)
		require.Len(t, items, 3)
		assert.Equal(t, uint32(2), items[2].ItemIndex)
		assert.Equal(t, uint64(8+3+5000), items[2].TotalBytes)
		assert.Equal(t, []FieldMeta{{0, 3}, {1, 5000}}, items[2].Fields)
		assert.Equal(t, []FieldMeta{{0, 2}, {1, 0}}, items[1].Fields)
	}
}

func TestListChunkItemsMissingChunk(t *testing.T) {
	t.Parallel()

	dir := writeDataset(t, "")
	e := newTestEngine(t, &recordingOpener{})
	_, err := e.ListChunkItems(context.Background(), dir, "chunk-0-1.bin")
	assert.True(t, errors.Is(err, apperr.ErrMissing))
}

func TestPeekField(t *testing.T) {
	t.Parallel()

	dir := writeDataset(t, "")
	e := newTestEngine(t, &recordingOpener{})

	p, err := e.PeekField(context.Background(), dir, "chunk-0-0.bin", 2, 1)
	require.NoError(t, err)
	assert.Equal(t, uint32(5000), p.Size)
	assert.False(t, p.IsBinary)
	require.NotNil(t, p.PreviewText)
	assert.Equal(t, strings.Repeat("a", 400), *p.PreviewText)
	assert.Equal(t, strings.Repeat("61", 48), p.HexSnippet)
	require.NotNil(t, p.GuessedExt)
	assert.Equal(t, "bin", *p.GuessedExt)

	p, err = e.PeekField(context.Background(), dir, "chunk-0-0.bin", 0, 0)
	require.NoError(t, err)
	assert.Equal(t, "1", *p.PreviewText)
	assert.Equal(t, "txt", *p.GuessedExt)

	_, err = e.PeekField(context.Background(), dir, "chunk-0-0.bin", 3, 0)
	assert.True(t, errors.Is(err, apperr.ErrInvalid))
	_, err = e.PeekField(context.Background(), dir, "chunk-0-0.bin", 0, 2)
	assert.True(t, errors.Is(err, apperr.ErrInvalid))
}

func TestPreviewBinary(t *testing.T) {
	t.Parallel()

	p := preview(&fieldData{data: []byte{0xC3, 0x28, 0x00}, size: 3})
	assert.True(t, p.IsBinary)
	assert.Nil(t, p.PreviewText)
	assert.Equal(t, "c32800", p.HexSnippet)
	assert.Nil(t, p.GuessedExt)
}

func TestOpenLeaf(t *testing.T) {
	t.Parallel()

	dir := writeDataset(t, "zstd")
	opener := &recordingOpener{}
	e := newTestEngine(t, opener)

	res, err := e.OpenLeaf(context.Background(), dir, "chunk-0-0.bin", 2, 1)
	require.NoError(t, err)
	want := filepath.Join(e.conf.TempDir, "litdata-viewer", "chunk-0-0-bin-i2-f1.bin")
	assert.Equal(t, want, res.Path)
	assert.Equal(t, uint32(5000), res.Size)
	assert.Equal(t, []string{want}, opener.paths)

	got, err := os.ReadFile(want)
	require.NoError(t, err)
	assert.Equal(t, longText, got)
	assert.Equal(t, want+" (5000 bytes)", res.String())
}

func TestOpenLeafOpenerFails(t *testing.T) {
	t.Parallel()

	dir := writeDataset(t, "")
	e := newTestEngine(t, &recordingOpener{err: errors.New("no viewer")})
	_, err := e.OpenLeaf(context.Background(), dir, "chunk-0-0.bin", 0, 0)
	assert.True(t, errors.Is(err, apperr.ErrOpen))
	assert.Contains(t, err.Error(), "no viewer")
}

func TestSanitize(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "chunk-0-0-bin", Sanitize("chunk-0-0.bin"))
	assert.Equal(t, "a-b-c", Sanitize("a/b c"))
	assert.Equal(t, "-", Sanitize("é"))
	assert.Equal(t, "", Sanitize(""))
}

func TestAccessLog(t *testing.T) {
	t.Parallel()

	dir := writeDataset(t, "")
	e := newTestEngine(t, &recordingOpener{})
	id, lines := e.OpenAccessLog()
	defer e.CloseAccessLog(id)

	_, err := e.LoadIndex(context.Background(), dir)
	require.NoError(t, err)
	select {
	case line := <-lines:
		assert.Contains(t, string(line), "load_index ("+dir+")")
		assert.Contains(t, string(line), "[req:")
	case <-time.After(time.Second):
		t.Fatal("no access log line")
	}

	_, err = e.PeekField(context.Background(), dir, "chunk-0-1.bin", 0, 0)
	require.Error(t, err)
	line := <-lines
	assert.Contains(t, string(line), "peek_field")
	assert.Contains(t, string(line), "chunk-0-1.bin")
}

func TestScan(t *testing.T) {
	t.Parallel()

	dir := writeDataset(t, "")
	e := newTestEngine(t, &recordingOpener{})
	var done int
	var mu sync.Mutex
	results, err := e.Scan(context.Background(), dir, 4, func() {
		mu.Lock()
		done++
		mu.Unlock()
	})
	require.NoError(t, err)
	require.Len(t, results, 2)
	assert.Equal(t, 2, done)
	assert.True(t, results[0].OK())
	assert.Equal(t, uint32(3), results[0].Items)
	assert.Equal(t, "chunk-0-1.bin", results[1].Filename)
	assert.True(t, errors.Is(results[1].Error, apperr.ErrMissing))
}

func TestScanCorruptChunk(t *testing.T) {
	t.Parallel()

	dir := writeDataset(t, "")
	data := encodeChunk(testItems())
	require.NoError(t, os.WriteFile(filepath.Join(dir, "chunk-0-1.bin"), data[:len(data)-10], 0o644))
	e := newTestEngine(t, &recordingOpener{})
	results, err := e.Scan(context.Background(), dir, 1, nil)
	require.NoError(t, err)
	assert.True(t, results[0].OK())
	assert.True(t, errors.Is(results[1].Error, apperr.ErrMalformedChunk))
}

func TestWarmup(t *testing.T) {
	t.Parallel()

	dir := writeDataset(t, "zstd")
	e := newTestEngine(t, &recordingOpener{})
	n, err := e.Warmup(context.Background(), dir, nil, 2)
	require.NoError(t, err)
	assert.Equal(t, 1, n)
	entries, used := e.Store().Cache().Stats()
	assert.Equal(t, int64(1), entries)
	assert.Equal(t, int64(len(encodeChunk(testItems()))), used)

	n, err = e.Warmup(context.Background(), dir, []string{"chunk-0-1.bin"}, 2)
	require.NoError(t, err)
	assert.Equal(t, 0, n)
}

func TestWarmupUncompressed(t *testing.T) {
	t.Parallel()

	dir := writeDataset(t, "")
	e := newTestEngine(t, &recordingOpener{})
	n, err := e.Warmup(context.Background(), dir, nil, 2)
	require.NoError(t, err)
	assert.Equal(t, 0, n)
	entries, _ := e.Store().Cache().Stats()
	assert.Equal(t, int64(0), entries)
}
