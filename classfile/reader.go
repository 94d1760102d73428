package classfile

import (
	"encoding/binary"
	"math"
)

// Reader is a forward-only, bounds-checked big-endian cursor over a class
// file buffer. A failed read leaves the cursor unchanged.
type Reader struct {
	data []byte
	pos  int
}

func NewReader(data []byte) *Reader {
	return &Reader{data: data}
}

// Pos returns the number of bytes consumed so far.
func (r *Reader) Pos() int { return r.pos }

// Remaining returns the number of bytes left in the buffer.
func (r *Reader) Remaining() int { return len(r.data) - r.pos }

func (r *Reader) take(n int) ([]byte, error) {
	if n < 0 || n > r.Remaining() {
		return nil, newError(ErrUnexpectedEndOfData, r.pos, "need %d bytes, %d remaining", n, r.Remaining())
	}
	b := r.data[r.pos : r.pos+n]
	r.pos += n
	return b, nil
}

func (r *Reader) U1() (uint8, error) {
	b, err := r.take(1)
	if err != nil {
		return 0, err
	}
	return b[0], nil
}

func (r *Reader) U2() (uint16, error) {
	b, err := r.take(2)
	if err != nil {
		return 0, err
	}
	return binary.BigEndian.Uint16(b), nil
}

func (r *Reader) U4() (uint32, error) {
	b, err := r.take(4)
	if err != nil {
		return 0, err
	}
	return binary.BigEndian.Uint32(b), nil
}

// U8 reads a 64-bit value stored as a high and a low u4.
func (r *Reader) U8() (uint64, error) {
	b, err := r.take(8)
	if err != nil {
		return 0, err
	}
	high, low := binary.BigEndian.Uint32(b), binary.BigEndian.Uint32(b[4:])
	return uint64(high)<<32 | uint64(low), nil
}

func (r *Reader) S1() (int8, error) {
	v, err := r.U1()
	return int8(v), err
}

func (r *Reader) S2() (int16, error) {
	v, err := r.U2()
	return int16(v), err
}

func (r *Reader) S4() (int32, error) {
	v, err := r.U4()
	return int32(v), err
}

func (r *Reader) S8() (int64, error) {
	v, err := r.U8()
	return int64(v), err
}

func (r *Reader) F4() (float32, error) {
	v, err := r.U4()
	return math.Float32frombits(v), err
}

func (r *Reader) F8() (float64, error) {
	v, err := r.U8()
	return math.Float64frombits(v), err
}

// Bytes returns a copy of the next n bytes.
func (r *Reader) Bytes(n int) ([]byte, error) {
	b, err := r.take(n)
	if err != nil {
		return nil, err
	}
	out := make([]byte, n)
	copy(out, b)
	return out, nil
}

func (r *Reader) Skip(n int) error {
	_, err := r.take(n)
	return err
}

// ModifiedUTF8 reads n bytes and decodes them as modified UTF-8.
func (r *Reader) ModifiedUTF8(n int) (string, error) {
	start := r.pos
	b, err := r.take(n)
	if err != nil {
		return "", err
	}
	s, bad := DecodeModifiedUTF8(b)
	if bad >= 0 {
		r.pos = start
		return "", newError(ErrInvalidClassFile, start+bad, "malformed modified UTF-8")
	}
	return s, nil
}
