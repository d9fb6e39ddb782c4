package viewstate

import (
	"math"
	"time"

	"github.com/acolita/viewstate/internal/wire"
)

// wireVersion is the version octet written after the 0xFF framing marker.
const wireVersion byte = 0x01

// encoder builds a wire-format octet stream from a Value tree. It carries
// its own intern table so a TypedArray can resolve against a TypeRef
// written earlier in the same tree; this is the one place encode and
// decode state genuinely mirror each other, and even then only
// best-effort (§4.10 notes intern tables are not guaranteed to round-trip).
type encoder struct {
	b       *wire.Builder
	interns *internTables
}

func newEncoder() *encoder {
	return &encoder{
		b:       wire.NewBuilder(256),
		interns: newInternTables(),
	}
}

// encodeFramed renders v as a complete framed octet stream: 0xFF, the
// version octet, then the encoded value (§4.5: "the encoder unconditionally
// prepends 0xFF 0x01").
func encodeFramed(v Value) []byte {
	e := newEncoder()
	e.b.WriteByte(0xFF)
	e.b.WriteByte(wireVersion)
	e.encodeValue(v)
	return e.b.Bytes()
}

func (e *encoder) encodeValue(v Value) {
	switch v.Kind() {
	case KindNull:
		e.b.WriteByte(tagNullConst)
	case KindBool:
		if v.AsBool() {
			e.b.WriteByte(tagTrueAlias)
		} else {
			e.b.WriteByte(tagFalseAlias)
		}
	case KindByte:
		e.b.WriteByte(tagByte)
		e.b.WriteByte(v.AsByte())
	case KindInt16:
		e.b.WriteByte(tagInt16)
		e.b.WriteInt16LE(v.AsInt16())
	case KindInt32:
		e.encodeInt32(v.AsInt32())
	case KindFloat32:
		e.b.WriteByte(tagFloat32)
		e.b.WriteFloat32LE(v.AsFloat32())
	case KindFloat64:
		e.b.WriteByte(tagFloat64)
		e.b.WriteFloat64LE(v.AsFloat64())
	case KindChar:
		e.b.WriteByte(tagChar)
		e.b.WriteByte(byte(v.AsChar()))
	case KindText:
		e.b.WriteByte(tagText)
		e.b.WriteLengthPrefixedString(v.AsText())
	case KindDateTime:
		e.b.WriteByte(tagDateTime)
		e.encodeTicks(v.AsDateTime())
	case KindColor:
		e.b.WriteByte(tagColor)
		e.encodeColor(v.AsColor())
	case KindUnit:
		e.b.WriteByte(tagUnit)
		u := v.AsUnit()
		e.b.WriteFloat64LE(u.Number)
		e.b.WriteVarint(uint64(u.Kind))
	case KindPair:
		e.b.WriteByte(tagPair) // corrected mapping: 0x0F, not the source's colliding 0x68
		a, b := v.AsPair()
		e.encodeValue(a)
		e.encodeValue(b)
	case KindTriplet:
		e.b.WriteByte(tagTriplet) // corrected mapping: 0x10
		a, b, c := v.AsTriplet()
		e.encodeValue(a)
		e.encodeValue(b)
		e.encodeValue(c)
	case KindList:
		e.b.WriteByte(tagList) // corrected mapping: 0x14, not the source's undecodable 0x6A
		items := v.AsList()
		e.b.WriteVarint(uint64(len(items)))
		for _, item := range items {
			e.encodeValue(item)
		}
	case KindMap:
		e.b.WriteByte(tagHashtable)
		entries := v.AsMap()
		e.b.WriteVarint(uint64(len(entries)))
		for _, entry := range entries {
			e.encodeValue(TextValue(entry.Key))
			e.encodeValue(entry.Value)
		}
	case KindTypeRef:
		e.b.WriteByte(tagTypeRef)
		name := v.AsTypeRef()
		e.b.WriteLengthPrefixedString(name)
		e.interns.internType(name)
	case KindTypedArray:
		e.encodeTypedArray(v.AsTypedArray())
	case KindOpaque:
		e.encodeOpaque(v.AsOpaque())
	case KindUnknown:
		// Unknown is a decode-only artifact; an editor should never
		// construct one. Encoding it as Null keeps the encoder total.
		e.b.WriteByte(tagNullConst)
	}
}

// encodeInt32 mirrors the decoder's compact forms: a value that fits in a
// single octet is written with the Byte tag, per §4.10's "Integer in
// [0,255] → 0x03 then the octet; other integers → 0x02 then varint."
func (e *encoder) encodeInt32(n int32) {
	if n >= 0 && n <= 255 {
		e.b.WriteByte(tagByte)
		e.b.WriteByte(byte(n))
		return
	}
	e.b.WriteByte(tagInt32)
	e.b.WriteVarint(uint64(uint32(n)))
}

func (e *encoder) encodeColor(c Color) {
	aByte := uint64(math.Round(c.A * 255))
	if aByte > 255 {
		aByte = 255
	}
	packed := aByte<<24 | uint64(c.R)<<16 | uint64(c.G)<<8 | uint64(c.B)
	e.b.WriteVarint(packed)
}

// encodeTicks converts t to .NET ticks without going through a
// time.Duration (which would overflow for dates far from the epoch);
// see ticksToTime's comment for why days and sub-day time are split.
func (e *encoder) encodeTicks(t time.Time) {
	t = t.UTC()
	days := daysSinceEpoch(t)
	midnight := time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
	subDay := t.Sub(midnight)
	ticks := uint64(days)*ticksPerDay + uint64(subDay.Nanoseconds()/100)
	var buf [8]byte
	for i := 0; i < 8; i++ {
		buf[i] = byte(ticks >> (8 * i))
	}
	e.b.WriteBytes(buf[:])
}

// daysSinceEpoch computes the whole-day offset of t from 0001-01-01 using
// the Julian day number of each date, independent of time.Duration.
func daysSinceEpoch(t time.Time) int64 {
	y, m, d := t.Date()
	return julianDayNumber(y, int(m), d) - julianDayNumber(1, 1, 1)
}

func julianDayNumber(year, month, day int) int64 {
	a := (14 - month) / 12
	y := year + 4800 - a
	m := month + 12*a - 3
	return int64(day) + int64((153*m+2)/5) + 365*int64(y) + int64(y/4) - int64(y/100) + int64(y/400) - 32045
}

func (e *encoder) encodeTypedArray(ta TypedArrayEntry) {
	e.b.WriteByte(tagTypedArray)
	idx, ok := e.interns.indexOfType(ta.TypeName)
	if !ok {
		idx = e.interns.internType(ta.TypeName)
	}
	e.b.WriteVarint(uint64(idx))
	e.b.WriteVarint(uint64(len(ta.Items)))
	for _, item := range ta.Items {
		e.encodeValue(item)
	}
}

func (e *encoder) encodeOpaque(o Opaque) {
	tag := o.Tag
	if tag != tagOpaqueA && tag != tagOpaqueB {
		tag = tagOpaqueA
	}
	e.b.WriteByte(tag)
	e.b.WriteVarint(uint64(len(o.Extract.RawBytes)))
	e.b.WriteBytes(o.Extract.RawBytes)
}
