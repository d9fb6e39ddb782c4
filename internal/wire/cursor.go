// Package wire implements low-level binary primitives for the
// LosFormatter/ObjectStateFormatter ViewState wire format: a byte cursor,
// a 7-bit varint codec, fixed-width little-endian reads, and length-prefixed
// strings.
//
// Unlike most binary-format readers, Cursor is built to never fail loudly.
// ViewState payloads are parsed best-effort: a truncated or adversarial
// buffer should yield a partial value, not a panic or a returned error, so
// most methods here clamp to the available bytes instead of erroring. The
// handful of methods that do return an error or an ok bool are the ones the
// higher-level decoder needs to distinguish "ran out of input" from
// "consumed cleanly" in order to implement recovery.
package wire

import (
	"encoding/binary"
	"errors"
	"math"
	"unicode/utf8"
)

// ErrUnexpectedEOF is returned by the few Cursor methods that must fail
// rather than clamp (currently none of the decode-path methods; reserved
// for callers that want a hard boundary check).
var ErrUnexpectedEOF = errors.New("wire: unexpected end of input")

// Cursor reads ViewState wire data from a byte buffer, tracking position.
// It is not safe for concurrent use; scope one Cursor to one decode call.
type Cursor struct {
	data []byte
	pos  int
}

// NewCursor creates a Cursor over data. The Cursor does not copy data.
func NewCursor(data []byte) *Cursor {
	return &Cursor{data: data}
}

// Pos returns the current read position.
func (c *Cursor) Pos() int { return c.pos }

// Len returns the total length of the underlying buffer.
func (c *Cursor) Len() int { return len(c.data) }

// Remaining returns the number of unread bytes.
func (c *Cursor) Remaining() int {
	if c.pos >= len(c.data) {
		return 0
	}
	return len(c.data) - c.pos
}

// EOF reports whether all bytes have been consumed.
func (c *Cursor) EOF() bool { return c.pos >= len(c.data) }

// PeekByte returns the next byte without advancing, or 0 if at end of
// input. Use PeekByteOK to distinguish a genuine 0x00 byte from EOF.
func (c *Cursor) PeekByte() byte {
	if c.pos >= len(c.data) {
		return 0
	}
	return c.data[c.pos]
}

// PeekByteOK returns the next byte and true, or 0 and false at end of input.
func (c *Cursor) PeekByteOK() (byte, bool) {
	if c.pos >= len(c.data) {
		return 0, false
	}
	return c.data[c.pos], true
}

// ReadByte reads and advances past one byte in a strict context, returning
// ErrUnexpectedEOF if none remain. Implements io.ByteReader.
func (c *Cursor) ReadByte() (byte, error) {
	if c.pos >= len(c.data) {
		return 0, ErrUnexpectedEOF
	}
	b := c.data[c.pos]
	c.pos++
	return b, nil
}

// ReadByteLenient reads one byte and advances, returning 0 at end of input
// instead of failing. Used by the main token-dispatch loop, which must
// never error mid-stream (§7's policy: in-band malformation never throws).
func (c *Cursor) ReadByteLenient() byte {
	if c.pos >= len(c.data) {
		return 0
	}
	b := c.data[c.pos]
	c.pos++
	return b
}

// ReadN reads up to k bytes, clamped to what remains, and advances past
// them. Never errors; a short read just returns fewer bytes.
func (c *Cursor) ReadN(k int) []byte {
	if k <= 0 {
		return nil
	}
	avail := c.Remaining()
	if k > avail {
		k = avail
	}
	b := c.data[c.pos : c.pos+k]
	c.pos += k
	return b
}

// ReadExact reads exactly k bytes and advances, or returns ok=false (and
// does not advance) if fewer than k bytes remain, for callers where a short
// read must not silently succeed. The decoder's framing check does not use
// it: it skips the 0xFF marker and version octet with Skip.
func (c *Cursor) ReadExact(k int) ([]byte, bool) {
	if k < 0 || c.pos+k > len(c.data) {
		return nil, false
	}
	b := c.data[c.pos : c.pos+k]
	c.pos += k
	return b, true
}

// Skip advances the position by n bytes, clamped to the buffer end.
func (c *Cursor) Skip(n int) {
	if n <= 0 {
		return
	}
	c.pos += n
	if c.pos > len(c.data) {
		c.pos = len(c.data)
	}
}

// Rewind steps the position back by n bytes, clamped to zero. Callers
// outside the tag-level recovery path (§4.8(1)) should not use this: the
// cursor otherwise never moves backwards (§3's invariant).
func (c *Cursor) Rewind(n int) {
	c.pos -= n
	if c.pos < 0 {
		c.pos = 0
	}
}

// Reset repositions the cursor to the start of the buffer.
func (c *Cursor) Reset() { c.pos = 0 }

// SeekTo repositions the cursor to an absolute offset, clamped to
// [0, len(data)]. Used by the tag-level recovery path to undo a failed
// speculative read without the caller having to track a signed delta.
func (c *Cursor) SeekTo(pos int) {
	if pos < 0 {
		pos = 0
	}
	if pos > len(c.data) {
		pos = len(c.data)
	}
	c.pos = pos
}

// Data returns the underlying byte slice.
func (c *Cursor) Data() []byte { return c.data }

// ReadVarint reads a base-128 unsigned varint: seven payload bits per byte,
// high bit set to continue. It never errors; on running out of input mid-
// sequence, or after five continuation bytes (shift >= 35, per spec §4.2),
// it returns the partial accumulation and ok=false so recovery can still
// make progress with whatever was read.
func (c *Cursor) ReadVarint() (value uint64, ok bool) {
	var result uint64
	var shift uint
	for {
		if c.pos >= len(c.data) {
			return result, false
		}
		if shift >= 35 {
			return result, false
		}
		b := c.data[c.pos]
		c.pos++
		result |= uint64(b&0x7F) << shift
		if b&0x80 == 0 {
			return result, true
		}
		shift += 7
	}
}

// ReadCount reads a varint declared collection count and reports whether it
// exceeds max. The varint is always fully consumed either way (P6: decoding
// never leaves the cursor sitting before the count's own bytes); callers
// use exceeded to decide whether to attempt reading the claimed elements at
// all, never allocating or iterating on count when exceeded is true.
func (c *Cursor) ReadCount(max int) (count int, exceeded bool) {
	v, _ := c.ReadVarint()
	if v > uint64(max) {
		return max, true
	}
	return int(v), false
}

// ReadInt16LE reads two bytes as a little-endian signed int16 (sign-extends
// from bit 15, resolving spec §9's Int16-signedness Open Question in favor
// of .NET's actual signed semantics).
func (c *Cursor) ReadInt16LE() int16 {
	b := c.ReadN(2)
	if len(b) < 2 {
		var padded [2]byte
		copy(padded[:], b)
		return int16(binary.LittleEndian.Uint16(padded[:]))
	}
	return int16(binary.LittleEndian.Uint16(b))
}

// ReadFloat64LE reads eight bytes as a little-endian IEEE-754 double.
// Short reads are zero-padded, yielding a well-formed (if wrong) double
// rather than failing.
func (c *Cursor) ReadFloat64LE() float64 {
	b := c.ReadN(8)
	var padded [8]byte
	copy(padded[:], b)
	return math.Float64frombits(binary.LittleEndian.Uint64(padded[:]))
}

// ReadFloat32LE reads four bytes as a little-endian IEEE-754 single.
func (c *Cursor) ReadFloat32LE() float32 {
	b := c.ReadN(4)
	var padded [4]byte
	copy(padded[:], b)
	return math.Float32frombits(binary.LittleEndian.Uint32(padded[:]))
}

// ReadLengthPrefixedString reads a varint octet count followed by that many
// UTF-8 octets (§4.3). The read is clamped to what remains, per §3's
// "all length-prefixed reads clamp the read to min(declared, remaining)".
// If the bytes are not valid UTF-8, falls back to a direct byte→rune
// (Latin-1) reconstruction rather than producing an invalid Go string.
func (c *Cursor) ReadLengthPrefixedString() string {
	n, _ := c.ReadVarint()
	b := c.ReadN(int(n))
	if len(b) == 0 {
		return ""
	}
	if utf8.Valid(b) {
		return string(b)
	}
	runes := make([]rune, len(b))
	for i, ch := range b {
		runes[i] = rune(ch)
	}
	return string(runes)
}
