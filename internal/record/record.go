// Package record defines the row value type and the byte codec that turns a
// row into the payload stored inside a heap page.
package record

import (
	"errors"
	"math"

	"github.com/lqviet/simpledb/internal/bx"
)

// Row is an ordered list of column values in schema order. All values are
// carried as text; the column type only constrains what text is accepted.
type Row []string

var (
	ErrValueTooLong = errors.New("record: value length exceeds u16")
	ErrTruncated    = errors.New("record: truncated record data")
)

// Encode serializes values as repeated (u16 LE length, bytes) pairs.
// No type tags, no terminator; the decoder runs until the buffer ends.
func Encode(values Row) ([]byte, error) {
	size := 0
	for _, v := range values {
		if len(v) > math.MaxUint16 {
			return nil, ErrValueTooLong
		}
		size += 2 + len(v)
	}

	out := make([]byte, 0, size)
	var l [2]byte
	for _, v := range values {
		bx.PutU16(l[:], uint16(len(v)))
		out = append(out, l[:]...)
		out = append(out, v...)
	}
	return out, nil
}

// Decode is the inverse of Encode. A length prefix that runs past the end of
// the buffer, or a short final prefix, is ErrTruncated.
func Decode(data []byte) (Row, error) {
	var values Row
	for off := 0; off < len(data); {
		if off+2 > len(data) {
			return nil, ErrTruncated
		}
		n := int(bx.U16At(data, off))
		off += 2
		if off+n > len(data) {
			return nil, ErrTruncated
		}
		values = append(values, string(data[off:off+n]))
		off += n
	}
	return values, nil
}
