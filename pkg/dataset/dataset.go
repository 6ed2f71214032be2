// pkg/dataset/dataset.go

// Package dataset locates and parses the index document that describes a
// chunked dataset, or synthesizes a description when only chunks exist.
package dataset

import (
	"encoding/binary"
	"encoding/json"
	"io"
	"os"
	"path/filepath"

	"LitView/pkg/apperr"
	"LitView/pkg/utils"
)

var logger = utils.GetLogger("litview")

// Config mirrors the "config" object of an index document.
type Config struct {
	Compression *string  `json:"compression"`
	ChunkSize   *uint32  `json:"chunk_size"`
	ChunkBytes  *uint64  `json:"chunk_bytes"`
	DataFormat  []string `json:"data_format"`
	DataSpec    *string  `json:"data_spec"`
}

// FieldCount is the number of per-item field-size header entries.
func (c *Config) FieldCount() int {
	return len(c.DataFormat)
}

// CompressionName returns the declared scheme or "" when none.
func (c *Config) CompressionName() string {
	if c.Compression == nil {
		return ""
	}
	return *c.Compression
}

// ChunkRecord is one entry of the index chunk table.
type ChunkRecord struct {
	Filename   string  `json:"filename"`
	ChunkBytes uint64  `json:"chunk_bytes"`
	ChunkSize  uint32  `json:"chunk_size"`
	Dim        *uint32 `json:"dim"`
}

// Dataset is the normalized description produced for every query.
type Dataset struct {
	RootDir   string
	Source    string
	Config    Config
	ConfigRaw json.RawMessage
	Chunks    []ChunkRecord
}

// ChunkPath joins a chunk filename onto the dataset root.
func (d *Dataset) ChunkPath(filename string) string {
	return filepath.Join(d.RootDir, filename)
}

func rawConfig(c *Config) json.RawMessage {
	data, err := json.Marshal(c)
	if err != nil {
		return json.RawMessage("null")
	}
	return data
}

func rootOf(path string) string {
	dir := filepath.Dir(path)
	if dir == "" {
		return "."
	}
	return dir
}

// readChunkHeader reads the item count and checks the offset table is
// present in full, returning the count and the file size.
func readChunkHeader(path string) (uint32, uint64, error) {
	f, err := os.Open(path)
	if err != nil {
		return 0, 0, apperr.FromIO(err)
	}
	defer f.Close()
	st, err := f.Stat()
	if err != nil {
		return 0, 0, apperr.FromIO(err)
	}
	var num [4]byte
	if _, err = io.ReadFull(f, num[:]); err != nil {
		return 0, 0, apperr.FromIO(err)
	}
	n := binary.LittleEndian.Uint32(num[:])
	if _, err = io.CopyN(io.Discard, f, (int64(n)+1)*4); err != nil {
		return 0, 0, apperr.FromIO(err)
	}
	return n, uint64(st.Size()), nil
}

func atLeastOne(n uint32) uint32 {
	if n == 0 {
		return 1
	}
	return n
}
