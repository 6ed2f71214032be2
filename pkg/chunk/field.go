// pkg/chunk/field.go

package chunk

import (
	"LitView/pkg/apperr"
	"LitView/pkg/utils"
)

// Item describes one record of a chunk.
type Item struct {
	Index      uint32
	TotalBytes uint64
	Sizes      []uint32
}

// ListItems returns every item of the chunk with its field sizes as the
// header declares them.
func ListItems(a Access, fieldCount int) ([]Item, error) {
	n, offsets, err := ParseOffsets(a)
	if err != nil {
		return nil, err
	}
	items := make([]Item, 0, n)
	for i := uint32(0); i < n; i++ {
		start, end, err := ItemRange(offsets, i)
		if err != nil {
			return nil, err
		}
		sizes, err := ReadFieldSizes(a, start, fieldCount)
		if err != nil {
			return nil, err
		}
		items = append(items, Item{Index: i, TotalBytes: uint64(end - start), Sizes: sizes})
	}
	return items, nil
}

// ReadField returns the bytes of one field and its declared size. With
// limit > 0 at most limit bytes are read; the declared size is still the
// full one.
func ReadField(a Access, item uint32, field, fieldCount, limit int) ([]byte, uint32, error) {
	n, offsets, err := ParseOffsets(a)
	if err != nil {
		return nil, 0, err
	}
	if item >= n {
		return nil, 0, apperr.Invalidf("item index out of range")
	}
	start, end, err := ItemRange(offsets, item)
	if err != nil {
		return nil, 0, err
	}
	total, err := a.Size()
	if err != nil {
		return nil, 0, err
	}
	if uint64(end) > total {
		return nil, 0, apperr.Malformed("item %d ends at %d past the chunk size %d", item, end, total)
	}
	sizes, err := ReadFieldSizes(a, start, fieldCount)
	if err != nil {
		return nil, 0, err
	}
	if field < 0 || field >= len(sizes) {
		return nil, 0, apperr.Invalidf("field index out of range")
	}
	if err = checkItem(item, start, end, sizes); err != nil {
		return nil, 0, err
	}
	cursor := uint64(start) + uint64(len(sizes))*wordSize
	for _, sz := range sizes[:field] {
		cursor += uint64(sz)
	}
	size := sizes[field]
	want := int(size)
	if limit > 0 {
		want = utils.Min(limit, want)
	}
	data, err := a.ReadExactAt(cursor, want)
	if err != nil {
		return nil, 0, err
	}
	return data, size, nil
}

// Verify walks every item and checks the offset table and field headers.
// It returns the number of items on success.
func Verify(a Access, fieldCount int) (uint32, error) {
	n, offsets, err := ParseOffsets(a)
	if err != nil {
		return 0, err
	}
	size, err := a.Size()
	if err != nil {
		return 0, err
	}
	if last := uint64(offsets[n]); last > size {
		return 0, apperr.Malformed("last item ends at %d past the chunk size %d", last, size)
	}
	for i := uint32(0); i < n; i++ {
		start, end, err := ItemRange(offsets, i)
		if err != nil {
			return 0, err
		}
		if uint64(end-start) < uint64(fieldCount)*wordSize {
			return 0, apperr.Malformed("item %d: %d bytes cannot hold a %d field header", i, end-start, fieldCount)
		}
		sizes, err := ReadFieldSizes(a, start, fieldCount)
		if err != nil {
			return 0, err
		}
		if err = checkItem(i, start, end, sizes); err != nil {
			return 0, err
		}
	}
	return n, nil
}
