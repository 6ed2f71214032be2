// pkg/chunk/layout.go

package chunk

import (
	"encoding/binary"

	"LitView/pkg/apperr"
)

const wordSize = 4

func readLeU32(b []byte) (uint32, error) {
	if len(b) != wordSize {
		return 0, apperr.Malformed("expected %d bytes, got %d", wordSize, len(b))
	}
	return binary.LittleEndian.Uint32(b), nil
}

func decodeWords(buf []byte, count int) ([]uint32, error) {
	out := make([]uint32, 0, count)
	for i := 0; i < count; i++ {
		v, err := readLeU32(buf[i*wordSize : (i+1)*wordSize])
		if err != nil {
			return nil, err
		}
		out = append(out, v)
	}
	return out, nil
}

// ParseOffsets reads the item count and the count+1 entry offset table.
func ParseOffsets(a Access) (uint32, []uint32, error) {
	head, err := a.ReadExactAt(0, wordSize)
	if err != nil {
		return 0, nil, err
	}
	n, err := readLeU32(head)
	if err != nil {
		return 0, nil, err
	}
	tableLen := (uint64(n) + 1) * wordSize
	size, err := a.Size()
	if err != nil {
		return 0, nil, err
	}
	if wordSize+tableLen > size {
		return 0, nil, apperr.Malformed("offset table for %d items needs %d bytes, chunk has %d", n, wordSize+tableLen, size)
	}
	buf, err := a.ReadExactAt(wordSize, int(tableLen))
	if err != nil {
		return 0, nil, err
	}
	offsets, err := decodeWords(buf, int(n)+1)
	if err != nil {
		return 0, nil, err
	}
	return n, offsets, nil
}

// ItemRange returns the byte range of item i.
func ItemRange(offsets []uint32, i uint32) (uint32, uint32, error) {
	if int(i)+1 >= len(offsets) {
		return 0, 0, apperr.Invalidf("item index out of range")
	}
	start, end := offsets[i], offsets[i+1]
	if end < start {
		return 0, 0, apperr.Malformed("item %d ends at %d before it starts at %d", i, end, start)
	}
	return start, end, nil
}

// ReadFieldSizes decodes the field-size header at the start of an item.
func ReadFieldSizes(a Access, start uint32, fieldCount int) ([]uint32, error) {
	if fieldCount == 0 {
		return nil, nil
	}
	head, err := a.ReadExactAt(uint64(start), fieldCount*wordSize)
	if err != nil {
		return nil, err
	}
	return decodeWords(head, fieldCount)
}

// checkItem verifies that the header and the fields fill the item exactly.
func checkItem(i, start, end uint32, sizes []uint32) error {
	if len(sizes) == 0 {
		return nil
	}
	total := uint64(len(sizes)) * wordSize
	for _, sz := range sizes {
		total += uint64(sz)
	}
	if total != uint64(end-start) {
		return apperr.Malformed("item %d: header and fields take %d bytes, item has %d", i, total, end-start)
	}
	return nil
}
