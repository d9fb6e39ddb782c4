package wire

import (
	"encoding/binary"
	"math"
)

// Builder accumulates ViewState wire-format bytes. The zero value is not
// ready for use; call NewBuilder.
type Builder struct {
	buf []byte
}

// NewBuilder creates a Builder with the given initial capacity.
func NewBuilder(capacity int) *Builder {
	return &Builder{buf: make([]byte, 0, capacity)}
}

// Bytes returns the accumulated bytes.
func (b *Builder) Bytes() []byte { return b.buf }

// Len returns the number of bytes written so far.
func (b *Builder) Len() int { return len(b.buf) }

// Reset clears the buffer for reuse.
func (b *Builder) Reset() { b.buf = b.buf[:0] }

// WriteByte appends a single byte. Implements io.ByteWriter.
func (b *Builder) WriteByte(v byte) error {
	b.buf = append(b.buf, v)
	return nil
}

// WriteBytes appends a slice of bytes verbatim.
func (b *Builder) WriteBytes(v []byte) {
	b.buf = append(b.buf, v...)
}

// WriteVarint appends n as a base-128 unsigned varint (§4.2): while n >=
// 0x80, emit the low seven bits with the continuation bit set; finally
// emit the remaining bits with the continuation bit clear.
func (b *Builder) WriteVarint(n uint64) {
	for n >= 0x80 {
		b.buf = append(b.buf, byte(n)|0x80)
		n >>= 7
	}
	b.buf = append(b.buf, byte(n))
}

// WriteInt16LE appends a little-endian signed int16.
func (b *Builder) WriteInt16LE(n int16) {
	var tmp [2]byte
	binary.LittleEndian.PutUint16(tmp[:], uint16(n))
	b.buf = append(b.buf, tmp[:]...)
}

// WriteFloat64LE appends a little-endian IEEE-754 double.
func (b *Builder) WriteFloat64LE(f float64) {
	var tmp [8]byte
	binary.LittleEndian.PutUint64(tmp[:], math.Float64bits(f))
	b.buf = append(b.buf, tmp[:]...)
}

// WriteFloat32LE appends a little-endian IEEE-754 single.
func (b *Builder) WriteFloat32LE(f float32) {
	var tmp [4]byte
	binary.LittleEndian.PutUint32(tmp[:], math.Float32bits(f))
	b.buf = append(b.buf, tmp[:]...)
}

// WriteLengthPrefixedString appends a varint UTF-8 byte count followed by
// the UTF-8 encoding of s (§4.3's encode side).
func (b *Builder) WriteLengthPrefixedString(s string) {
	b.WriteVarint(uint64(len(s)))
	b.buf = append(b.buf, s...)
}
