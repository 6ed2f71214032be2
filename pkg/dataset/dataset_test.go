// pkg/dataset/dataset_test.go

package dataset

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/DataDog/zstd"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"LitView/pkg/apperr"
)

const sampleIndex = `{
  "chunks": [
    {"filename": "chunk-0-0.bin", "chunk_bytes": 64, "chunk_size": 2, "dim": 7},
    {"filename": "chunk-0-1.bin", "chunk_bytes": 32, "chunk_size": 1},
    {"filename": "chunk-0-2.bin", "chunk_bytes": 16, "chunk_size": 1}
  ],
  "config": {"compression": null, "chunk_size": 2, "chunk_bytes": 64,
             "data_format": ["int", "jpeg"], "data_spec": "[1, {}]"}
}`

func writeFile(t *testing.T, path string, data []byte) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, data, 0o644))
}

// rawChunkBytes is the header-only chunk from the format description: three
// items whose offsets point past the end of the file.
func rawChunkBytes() []byte {
	return []byte{
		0x03, 0x00, 0x00, 0x00,
		0x00, 0x00, 0x00, 0x00,
		0x0A, 0x00, 0x00, 0x00,
		0x14, 0x00, 0x00, 0x00,
		0x1E, 0x00, 0x00, 0x00,
	}
}

func TestIsChunkPath(t *testing.T) {
	t.Parallel()

	tests := []struct {
		path string
		want bool
	}{
		{"data/chunk-0-0.bin", true},
		{"data/CHUNK.BIN", true},
		{"data/chunk-0-0.zst", true},
		{"data/chunk-0-0.bin.zstd", true},
		{"data/index.json", false},
		{"data/index.json.zst", true},
		{"data/0.index.json.zstd", false},
		{"data", false},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, IsChunkPath(tt.path), tt.path)
	}
}

func TestResolveDirectoryCompressedIndex(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	compressed, err := zstd.Compress(nil, []byte(sampleIndex))
	require.NoError(t, err)
	writeFile(t, filepath.Join(dir, "0.index.json.zst"), compressed)
	writeFile(t, filepath.Join(dir, "chunk-0-0.bin"), rawChunkBytes())

	ds, err := Resolve(dir)
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, "0.index.json.zst"), ds.Source)
	assert.Equal(t, dir, ds.RootDir)
	assert.Equal(t, []string{"int", "jpeg"}, ds.Config.DataFormat)
	assert.Equal(t, 2, ds.Config.FieldCount())
	assert.Equal(t, "", ds.Config.CompressionName())
	require.Len(t, ds.Chunks, 3)
	require.NotNil(t, ds.Chunks[0].Dim)
	assert.Equal(t, uint32(7), *ds.Chunks[0].Dim)
	assert.Nil(t, ds.Chunks[1].Dim)

	var raw map[string]interface{}
	require.NoError(t, json.Unmarshal(ds.ConfigRaw, &raw))
	assert.Equal(t, "[1, {}]", raw["data_spec"])
	assert.Contains(t, raw, "compression")
}

func TestResolveCandidateOrder(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "0.index.json"), []byte(sampleIndex))
	writeFile(t, filepath.Join(dir, "index.json"), []byte(`{"chunks": [], "config": {}}`))

	ds, err := Resolve(dir)
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, "index.json"), ds.Source)
	assert.Empty(t, ds.Chunks)
	assert.Nil(t, ds.Config.DataFormat)
}

func TestResolveGlobFallback(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "b.index.json"), []byte(sampleIndex))
	writeFile(t, filepath.Join(dir, "a.index.json.zstd.bak"), []byte("not zstd"))
	writeFile(t, filepath.Join(dir, "c.index.json"), []byte(sampleIndex))

	p := searchDir(dir)
	assert.Equal(t, filepath.Join(dir, "a.index.json.zstd.bak"), p)

	require.NoError(t, os.Remove(p))
	ds, err := Resolve(dir)
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, "b.index.json"), ds.Source)
}

func TestResolveEmptyDirectory(t *testing.T) {
	t.Parallel()

	_, err := Resolve(t.TempDir())
	require.Error(t, err)
	assert.ErrorIs(t, err, apperr.ErrMissing)
}

func TestResolveExtensionSubstitution(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "index.json.zstd"), mustCompress(t, sampleIndex))

	ds, err := Resolve(filepath.Join(dir, "index"))
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, "index.json.zstd"), ds.Source)

	_, err = Resolve(filepath.Join(dir, "nothing-here"))
	assert.ErrorIs(t, err, apperr.ErrMissing)
}

func mustCompress(t *testing.T, s string) []byte {
	t.Helper()
	out, err := zstd.Compress(nil, []byte(s))
	require.NoError(t, err)
	return out
}

func TestResolveInvalidDocuments(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		file string
		data []byte
	}{
		{"malformed json", "index.json", []byte(`{"chunks": [`)},
		{"missing config", "index.json", []byte(`{"chunks": []}`)},
		{"missing chunks", "index.json", []byte(`{"config": {}}`)},
		{"chunk without size", "index.json", []byte(`{"chunks": [{"filename": "a.bin", "chunk_bytes": 1}], "config": {}}`)},
		{"broken zstd", "index.json.zst", []byte("definitely not zstd")},
	}
	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			dir := t.TempDir()
			writeFile(t, filepath.Join(dir, tt.file), tt.data)
			_, err := Resolve(dir)
			require.Error(t, err)
			assert.ErrorIs(t, err, apperr.ErrInvalid)
		})
	}
}

func TestResolveRawChunkWithoutIndex(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	path := filepath.Join(dir, "lonely.bin")
	writeFile(t, path, rawChunkBytes())

	ds, err := Resolve(path)
	require.NoError(t, err)
	assert.Equal(t, path, ds.Source)
	assert.Equal(t, dir, ds.RootDir)
	assert.Equal(t, []string{"bytes"}, ds.Config.DataFormat)
	require.NotNil(t, ds.Config.ChunkSize)
	assert.Equal(t, uint32(3), *ds.Config.ChunkSize)
	require.NotNil(t, ds.Config.ChunkBytes)
	assert.Equal(t, uint64(20), *ds.Config.ChunkBytes)
	require.Len(t, ds.Chunks, 1)
	assert.Equal(t, ChunkRecord{Filename: "lonely.bin", ChunkBytes: 20, ChunkSize: 3}, ds.Chunks[0])
}

func TestResolveRawChunkTruncated(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	path := filepath.Join(dir, "short.bin")
	writeFile(t, path, rawChunkBytes()[:10])

	_, err := Resolve(path)
	assert.ErrorIs(t, err, apperr.ErrMalformedChunk)
}

func TestResolveRawChunkUsesNeighborIndex(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "index.json"), []byte(sampleIndex))
	path := filepath.Join(dir, "chunk-0-0.bin")
	writeFile(t, path, rawChunkBytes())

	ds, err := Resolve(path)
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, "index.json"), ds.Source)
	assert.Len(t, ds.Chunks, 3)
}

func TestResolveChunkListEmpty(t *testing.T) {
	t.Parallel()

	_, err := ResolveChunkList(nil)
	assert.ErrorIs(t, err, apperr.ErrInvalid)
}

func TestResolveChunkListWithIndex(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "index.json"), []byte(sampleIndex))
	first := filepath.Join(dir, "chunk-0-1.bin")
	extra := filepath.Join(dir, "stray.bin")
	writeFile(t, first, rawChunkBytes())
	writeFile(t, extra, rawChunkBytes())

	sel, err := ResolveChunkList([]string{first, extra})
	require.NoError(t, err)
	assert.True(t, sel.Indexed)
	assert.Equal(t, filepath.Join(dir, "index.json"), sel.Source)
	assert.Equal(t, []string{"int", "jpeg"}, sel.Config.DataFormat)
	require.Len(t, sel.Chunks, 2)
	assert.Equal(t, "chunk-0-1.bin", sel.Chunks[0].Filename)
	assert.Equal(t, uint64(32), sel.Chunks[0].ChunkBytes)
	assert.Equal(t, ChunkRecord{Filename: "stray.bin", ChunkBytes: 20, ChunkSize: 3}, sel.Chunks[1])
	assert.Equal(t, extra, sel.PathOf("stray.bin"))
	assert.Equal(t, filepath.Join(dir, "other.bin"), sel.PathOf("other.bin"))
}

func TestResolveChunkListWithoutIndex(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	a := filepath.Join(dir, "a.bin")
	b := filepath.Join(dir, "b.bin")
	writeFile(t, a, rawChunkBytes())
	writeFile(t, b, []byte{0, 0, 0, 0, 0, 0, 0, 0})

	sel, err := ResolveChunkList([]string{a, b})
	require.NoError(t, err)
	assert.False(t, sel.Indexed)
	assert.Equal(t, a, sel.Source)
	assert.Nil(t, sel.Config.Compression)
	require.Len(t, sel.Chunks, 2)
	assert.Equal(t, uint32(3), sel.Chunks[0].ChunkSize)
	assert.Equal(t, uint32(1), sel.Chunks[1].ChunkSize)

	var raw map[string]interface{}
	require.NoError(t, json.Unmarshal(sel.ConfigRaw, &raw))
	assert.Equal(t, "multi-bin", raw["source"])
	assert.Equal(t, []interface{}{"bytes"}, raw["data_format"])
}

func TestResolveChunkListMissingFile(t *testing.T) {
	t.Parallel()

	_, err := ResolveChunkList([]string{filepath.Join(t.TempDir(), "gone.bin")})
	assert.ErrorIs(t, err, apperr.ErrIo)
}
