// pkg/dataset/resolve.go

package dataset

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/DataDog/zstd"

	"LitView/pkg/apperr"
	"LitView/pkg/utils"
)

// candidate index names, tried in order before falling back to a glob
var indexCandidates = []string{
	"index.json",
	"index.json.zstd",
	"index.json.zst",
	"0.index.json",
	"0.index.json.zstd",
	"0.index.json.zst",
}

// IsChunkPath reports whether path names a raw chunk rather than an index.
func IsChunkPath(path string) bool {
	name := filepath.Base(path)
	ext := strings.TrimPrefix(filepath.Ext(name), ".")
	if strings.EqualFold(ext, "bin") || strings.EqualFold(ext, "zst") {
		return true
	}
	return strings.Contains(name, ".bin")
}

func isIndexName(name string) bool {
	return strings.HasSuffix(name, ".index.json") || strings.Contains(name, ".index.json.")
}

// searchDir returns the index document inside dir, or "" if none.
func searchDir(dir string) string {
	for _, name := range indexCandidates {
		p := filepath.Join(dir, name)
		if utils.Exists(p) {
			return p
		}
	}
	entries, err := os.ReadDir(dir)
	if err != nil {
		return ""
	}
	var globbed []string
	for _, e := range entries {
		if isIndexName(e.Name()) {
			globbed = append(globbed, filepath.Join(dir, e.Name()))
		}
	}
	if len(globbed) == 0 {
		return ""
	}
	sort.Strings(globbed)
	return globbed[0]
}

// FindNeighborIndex looks for an index document next to a chunk file.
func FindNeighborIndex(chunkPath string) (string, bool) {
	p := searchDir(filepath.Dir(chunkPath))
	return p, p != ""
}

// Resolve turns an arbitrary user supplied path into a Dataset.
func Resolve(path string) (*Dataset, error) {
	if IsChunkPath(path) {
		if found, ok := FindNeighborIndex(path); ok {
			logger.Debugf("chunk %s resolved through neighbor index %s", path, found)
			return Resolve(found)
		}
		return fromChunk(path)
	}
	resolved, err := resolveIndexPath(path)
	if err != nil {
		return nil, err
	}
	return ParseIndexFile(resolved)
}

func resolveIndexPath(path string) (string, error) {
	if utils.IsFile(path) {
		return path, nil
	}
	if utils.IsDir(path) {
		if p := searchDir(path); p != "" {
			return p, nil
		}
		return "", apperr.Missingf("%s", path)
	}
	dir := filepath.Dir(path)
	stem := strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	if stem == "" {
		stem = "index"
	}
	noExt := strings.TrimSuffix(path, filepath.Ext(path))
	candidates := []string{
		path,
		noExt + ".json",
		noExt + ".json.zstd",
		noExt + ".json.zst",
		filepath.Join(dir, stem+".json"),
		filepath.Join(dir, stem+".json.zstd"),
		filepath.Join(dir, stem+".json.zst"),
	}
	for _, c := range candidates {
		if utils.Exists(c) {
			return c, nil
		}
	}
	return "", apperr.Missingf("%s", path)
}

func readIndexFile(path string) ([]byte, error) {
	ext := strings.ToLower(filepath.Ext(path))
	if !strings.Contains(ext, "zst") {
		data, err := os.ReadFile(path)
		return data, apperr.FromIO(err)
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, apperr.FromIO(err)
	}
	defer f.Close()
	r := zstd.NewReader(f)
	defer r.Close()
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, apperr.Wrap(apperr.Invalid, err, "decompressing index")
	}
	return data, nil
}

type rawChunk struct {
	Filename   *string `json:"filename"`
	ChunkBytes *uint64 `json:"chunk_bytes"`
	ChunkSize  *uint32 `json:"chunk_size"`
	Dim        *uint32 `json:"dim"`
}

func decodeIndex(data []byte) (*Config, []ChunkRecord, error) {
	var doc struct {
		Chunks *[]rawChunk `json:"chunks"`
		Config *Config     `json:"config"`
	}
	if err := json.NewDecoder(bytes.NewReader(data)).Decode(&doc); err != nil {
		return nil, nil, apperr.Invalidf("index.json parse error: %s", err)
	}
	if doc.Chunks == nil {
		return nil, nil, apperr.Invalidf("index.json parse error: missing field `chunks`")
	}
	if doc.Config == nil {
		return nil, nil, apperr.Invalidf("index.json parse error: missing field `config`")
	}
	chunks := make([]ChunkRecord, 0, len(*doc.Chunks))
	for i, c := range *doc.Chunks {
		missing := ""
		switch {
		case c.Filename == nil:
			missing = "filename"
		case c.ChunkBytes == nil:
			missing = "chunk_bytes"
		case c.ChunkSize == nil:
			missing = "chunk_size"
		}
		if missing != "" {
			return nil, nil, apperr.Invalidf("index.json parse error: chunks[%d]: missing field `%s`", i, missing)
		}
		chunks = append(chunks, ChunkRecord{
			Filename:   *c.Filename,
			ChunkBytes: *c.ChunkBytes,
			ChunkSize:  *c.ChunkSize,
			Dim:        c.Dim,
		})
	}
	return doc.Config, chunks, nil
}

// ParseIndexFile reads an index document (plain or zstd) without any
// path resolution.
func ParseIndexFile(path string) (*Dataset, error) {
	data, err := readIndexFile(path)
	if err != nil {
		return nil, err
	}
	conf, chunks, err := decodeIndex(data)
	if err != nil {
		return nil, err
	}
	logger.Debugf("parsed index %s: %d chunks, format %v", path, len(chunks), conf.DataFormat)
	return &Dataset{
		RootDir:   rootOf(path),
		Source:    path,
		Config:    *conf,
		ConfigRaw: rawConfig(conf),
		Chunks:    chunks,
	}, nil
}

// fromChunk describes a lone chunk that has no index next to it.
func fromChunk(path string) (*Dataset, error) {
	n, size, err := readChunkHeader(path)
	if err != nil {
		return nil, err
	}
	items := atLeastOne(n)
	conf := Config{
		ChunkSize:  &items,
		ChunkBytes: &size,
		DataFormat: []string{"bytes"},
	}
	logger.Debugf("no index next to %s, synthesized %d items", path, n)
	return &Dataset{
		RootDir:   rootOf(path),
		Source:    path,
		Config:    conf,
		ConfigRaw: rawConfig(&conf),
		Chunks: []ChunkRecord{{
			Filename:   filepath.Base(path),
			ChunkBytes: size,
			ChunkSize:  items,
		}},
	}, nil
}

func (d *Dataset) String() string {
	return fmt.Sprintf("dataset(%s, %d chunks)", d.Source, len(d.Chunks))
}
