// pkg/inspect/summary.go

package inspect

import (
	"encoding/json"
	"fmt"

	"LitView/pkg/dataset"
	"LitView/pkg/utils"
)

type ChunkSummary struct {
	Filename   string  `json:"filename"`
	Path       string  `json:"path"`
	ChunkSize  uint32  `json:"chunkSize"`
	ChunkBytes uint64  `json:"chunkBytes"`
	Dim        *uint32 `json:"dim"`
	Exists     bool    `json:"exists"`
}

type IndexSummary struct {
	IndexPath   string          `json:"indexPath"`
	RootDir     string          `json:"rootDir"`
	DataFormat  []string        `json:"dataFormat"`
	Compression *string         `json:"compression"`
	ChunkSize   *uint32         `json:"chunkSize"`
	ChunkBytes  *uint64         `json:"chunkBytes"`
	ConfigRaw   json.RawMessage `json:"configRaw"`
	Chunks      []ChunkSummary  `json:"chunks"`
}

type FieldMeta struct {
	FieldIndex int    `json:"fieldIndex"`
	Size       uint32 `json:"size"`
}

type ItemMeta struct {
	ItemIndex  uint32      `json:"itemIndex"`
	TotalBytes uint64      `json:"totalBytes"`
	Fields     []FieldMeta `json:"fields"`
}

type FieldPreview struct {
	PreviewText *string `json:"previewText"`
	HexSnippet  string  `json:"hexSnippet"`
	GuessedExt  *string `json:"guessedExt"`
	IsBinary    bool    `json:"isBinary"`
	Size        uint32  `json:"size"`
}

// LeafResult is where an exported field was written.
type LeafResult struct {
	Path string `json:"path"`
	Size uint32 `json:"size"`
}

func (r *LeafResult) String() string {
	return fmt.Sprintf("%s (%d bytes)", r.Path, r.Size)
}

func newIndexSummary(ds *dataset.Dataset, pathOf func(string) string) *IndexSummary {
	format := ds.Config.DataFormat
	if format == nil {
		format = []string{}
	}
	chunks := make([]ChunkSummary, 0, len(ds.Chunks))
	for _, c := range ds.Chunks {
		p := pathOf(c.Filename)
		chunks = append(chunks, ChunkSummary{
			Filename:   c.Filename,
			Path:       p,
			ChunkSize:  c.ChunkSize,
			ChunkBytes: c.ChunkBytes,
			Dim:        c.Dim,
			Exists:     utils.Exists(p),
		})
	}
	return &IndexSummary{
		IndexPath:   ds.Source,
		RootDir:     ds.RootDir,
		DataFormat:  format,
		Compression: ds.Config.Compression,
		ChunkSize:   ds.Config.ChunkSize,
		ChunkBytes:  ds.Config.ChunkBytes,
		ConfigRaw:   ds.ConfigRaw,
		Chunks:      chunks,
	}
}
