// pkg/dataset/chunklist.go

package dataset

import (
	"encoding/json"
	"path/filepath"

	"LitView/pkg/apperr"
)

// Selection is a Dataset built from an explicit list of chunk files.
// Paths maps each selected filename to the path it was given as.
type Selection struct {
	Dataset
	Paths map[string]string
	// Indexed is false when no neighbor index was found.
	Indexed bool
}

// PathOf returns the listed path for a chunk, or its path under the root.
func (s *Selection) PathOf(filename string) string {
	if p, ok := s.Paths[filename]; ok {
		return p
	}
	return s.ChunkPath(filename)
}

// ResolveChunkList describes the given chunk files, borrowing field layout
// and compression from an index next to the first one when there is one.
func ResolveChunkList(paths []string) (*Selection, error) {
	if len(paths) == 0 {
		return nil, apperr.Invalidf("no chunk paths provided")
	}
	sel := &Selection{
		Paths: make(map[string]string, len(paths)),
	}
	sel.RootDir = rootOf(paths[0])
	sel.Source = paths[0]
	sel.Config.DataFormat = []string{"bytes"}

	var names []string
	for _, p := range paths {
		name := filepath.Base(p)
		if _, dup := sel.Paths[name]; !dup {
			names = append(names, name)
		}
		sel.Paths[name] = p
	}

	covered := make(map[string]bool)
	if found, ok := FindNeighborIndex(paths[0]); ok {
		idx, err := ParseIndexFile(found)
		if err != nil {
			return nil, err
		}
		sel.Indexed = true
		sel.Source = idx.Source
		sel.RootDir = idx.RootDir
		sel.ConfigRaw = idx.ConfigRaw
		format := sel.Config.DataFormat
		sel.Config = idx.Config
		if sel.Config.DataFormat == nil {
			sel.Config.DataFormat = format
		}
		for _, c := range idx.Chunks {
			if _, ok := sel.Paths[c.Filename]; ok && !covered[c.Filename] {
				sel.Chunks = append(sel.Chunks, c)
				covered[c.Filename] = true
			}
		}
		logger.Debugf("chunk list matched %d of %d chunks in %s", len(covered), len(names), found)
	}

	for _, name := range names {
		if covered[name] {
			continue
		}
		n, size, err := readChunkHeader(sel.Paths[name])
		if err != nil {
			return nil, err
		}
		sel.Chunks = append(sel.Chunks, ChunkRecord{
			Filename:   name,
			ChunkBytes: size,
			ChunkSize:  atLeastOne(n),
		})
	}

	if sel.ConfigRaw == nil {
		raw, err := json.Marshal(map[string]interface{}{
			"source":      "multi-bin",
			"data_format": sel.Config.DataFormat,
		})
		if err != nil {
			return nil, apperr.Wrap(apperr.Invalid, err, "encode config")
		}
		sel.ConfigRaw = raw
	}
	return sel, nil
}
