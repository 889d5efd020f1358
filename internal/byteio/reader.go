// Package byteio provides a cursor over a borrowed byte slice with typed
// little-endian reads, collected into a single stateful cursor.
package byteio

import (
	"encoding/binary"
	"errors"
	"fmt"
	"math"
)

// ErrTruncated is returned whenever a read would run past the end of the buffer.
var ErrTruncated = errors.New("byteio: input truncated")

// Reader is a cursor over a borrowed byte slice. It never copies the
// underlying buffer; Read returns sub-slices that alias it, while String and
// UntilNull return copies.
type Reader struct {
	buf []byte
	pos int
}

// New returns a Reader positioned at the start of buf.
func New(buf []byte) *Reader {
	return &Reader{buf: buf}
}

// Position returns the current cursor offset.
func (r *Reader) Position() int {
	return r.pos
}

// Len returns the total length of the underlying buffer.
func (r *Reader) Len() int {
	return len(r.buf)
}

// Remaining returns the number of unread bytes.
func (r *Reader) Remaining() int {
	return len(r.buf) - r.pos
}

// Seek moves the cursor to an absolute offset.
func (r *Reader) Seek(abs int) error {
	if abs < 0 || abs > len(r.buf) {
		return fmt.Errorf("byteio: seek to %d out of bounds [0,%d]: %w", abs, len(r.buf), ErrTruncated)
	}
	r.pos = abs
	return nil
}

func (r *Reader) need(n int) error {
	if n < 0 || r.pos+n > len(r.buf) {
		return fmt.Errorf("byteio: need %d bytes at offset %d, have %d: %w", n, r.pos, r.Remaining(), ErrTruncated)
	}
	return nil
}

// U8 reads a single unsigned byte.
func (r *Reader) U8() (byte, error) {
	if err := r.need(1); err != nil {
		return 0, err
	}
	v := r.buf[r.pos]
	r.pos++
	return v, nil
}

// U16 reads a little-endian uint16.
func (r *Reader) U16() (uint16, error) {
	if err := r.need(2); err != nil {
		return 0, err
	}
	v := binary.LittleEndian.Uint16(r.buf[r.pos:])
	r.pos += 2
	return v, nil
}

// U32 reads a little-endian uint32.
func (r *Reader) U32() (uint32, error) {
	if err := r.need(4); err != nil {
		return 0, err
	}
	v := binary.LittleEndian.Uint32(r.buf[r.pos:])
	r.pos += 4
	return v, nil
}

// I32 reads a little-endian int32.
func (r *Reader) I32() (int32, error) {
	v, err := r.U32()
	return int32(v), err
}

// F32 reads a little-endian IEEE-754 float32.
func (r *Reader) F32() (float32, error) {
	v, err := r.U32()
	if err != nil {
		return 0, err
	}
	return math.Float32frombits(v), nil
}

// String reads a fixed-width ASCII field of n bytes, stripping trailing NULs.
func (r *Reader) String(n int) (string, error) {
	b, err := r.Read(n)
	if err != nil {
		return "", err
	}
	end := len(b)
	for end > 0 && b[end-1] == 0 {
		end--
	}
	return string(b[:end]), nil
}

// UntilNull reads bytes up to (and consuming) the next NUL terminator,
// returning the string without the terminator. Fails if no NUL is found.
func (r *Reader) UntilNull() (string, error) {
	start := r.pos
	for r.pos < len(r.buf) {
		if r.buf[r.pos] == 0 {
			s := string(r.buf[start:r.pos])
			r.pos++
			return s, nil
		}
		r.pos++
	}
	r.pos = start
	return "", fmt.Errorf("byteio: no NUL terminator found from offset %d: %w", start, ErrTruncated)
}

// Ints reads count integers of bytesPerInt width (1, 2, or 4), little-endian,
// interpreted as signed unless unsigned is true. Returned as int64 so callers
// can widen freely.
func (r *Reader) Ints(count, bytesPerInt int, unsigned bool) ([]int64, error) {
	if err := r.need(count * bytesPerInt); err != nil {
		return nil, err
	}
	out := make([]int64, count)
	for i := 0; i < count; i++ {
		off := r.pos + i*bytesPerInt
		switch bytesPerInt {
		case 1:
			if unsigned {
				out[i] = int64(r.buf[off])
			} else {
				out[i] = int64(int8(r.buf[off]))
			}
		case 2:
			v := binary.LittleEndian.Uint16(r.buf[off:])
			if unsigned {
				out[i] = int64(v)
			} else {
				out[i] = int64(int16(v))
			}
		case 4:
			v := binary.LittleEndian.Uint32(r.buf[off:])
			if unsigned {
				out[i] = int64(v)
			} else {
				out[i] = int64(int32(v))
			}
		default:
			return nil, fmt.Errorf("byteio: unsupported int width %d", bytesPerInt)
		}
	}
	r.pos += count * bytesPerInt
	return out, nil
}

// Read returns a borrowed sub-slice of n bytes and advances the cursor.
func (r *Reader) Read(n int) ([]byte, error) {
	if err := r.need(n); err != nil {
		return nil, err
	}
	b := r.buf[r.pos : r.pos+n]
	r.pos += n
	return b, nil
}
