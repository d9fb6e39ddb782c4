package viewstate

import (
	"encoding/binary"
	"math"
	"time"

	"github.com/acolita/viewstate/internal/wire"
)

const (
	defaultMaxCollectionCount = 10000
	defaultMaxSparseLength    = 10000
	defaultMaxRecoveryStrings = 200
	defaultMaxOpaqueStrings   = 50
	defaultMaxDepth           = 200
)

// decodeOptions holds the defensive bounds a decode call enforces. The
// zero value is not valid; use defaultDecodeOptions.
type decodeOptions struct {
	maxCollectionCount int
	maxSparseLength    int
	maxRecoveryStrings int
	maxOpaqueStrings   int
	maxInputSize       int
	maxDepth           int
}

func defaultDecodeOptions() decodeOptions {
	return decodeOptions{
		maxCollectionCount: defaultMaxCollectionCount,
		maxSparseLength:    defaultMaxSparseLength,
		maxRecoveryStrings: defaultMaxRecoveryStrings,
		maxOpaqueStrings:   defaultMaxOpaqueStrings,
		maxDepth:           defaultMaxDepth,
	}
}

// Option configures a Decode call.
type Option func(*decodeOptions)

// WithMaxCollectionCount overrides the clamp applied to List/Map/
// TypedArray/SparseList declared counts (default 10000, per P6).
func WithMaxCollectionCount(n int) Option {
	return func(o *decodeOptions) { o.maxCollectionCount = n }
}

// WithMaxSparseLength overrides the clamp applied to a SparseList's
// declared length (default 10000).
func WithMaxSparseLength(n int) Option {
	return func(o *decodeOptions) { o.maxSparseLength = n }
}

// WithMaxRecoveryStrings overrides the cap on printable-run extraction
// during stream-level fallback (default 200).
func WithMaxRecoveryStrings(n int) Option {
	return func(o *decodeOptions) { o.maxRecoveryStrings = n }
}

// WithMaxOpaqueStrings overrides the cap on printable-run extraction from
// an Opaque blob (default 50).
func WithMaxOpaqueStrings(n int) Option {
	return func(o *decodeOptions) { o.maxOpaqueStrings = n }
}

// WithMaxInputSize bounds the raw octet length Decode will attempt to
// parse structurally; inputs beyond it go straight to the fallback
// extractor. Zero (the default) means unlimited.
func WithMaxInputSize(n int) Option {
	return func(o *decodeOptions) { o.maxInputSize = n }
}

// decoder holds the mutable state of one decode call. Not safe for
// concurrent use; scope one decoder to one Decode invocation.
type decoder struct {
	cur     *wire.Cursor
	interns *internTables
	stats   Stats
	opts    decodeOptions
	depth   int
}

func newDecoder(data []byte, opts decodeOptions) *decoder {
	return &decoder{
		cur:     wire.NewCursor(data),
		interns: newInternTables(),
		opts:    opts,
	}
}

// decodeStream runs the structured parser over data and recovers from any
// panic by reporting malformed=true, mirroring §7's policy that a
// non-recoverable structural failure triggers the fallback extractor
// rather than propagating. The token-dispatch path below is built to
// never panic on well-formed or merely truncated input; this guard exists
// for the genuinely adversarial or buggy case.
func decodeStream(data []byte, opts decodeOptions) (value Value, stats Stats, malformed bool) {
	d := newDecoder(data, opts)
	defer func() {
		if r := recover(); r != nil {
			malformed = true
		}
	}()
	value = d.decodeTop()
	stats = d.stats
	return value, stats, false
}

// decodeTop implements the framing rule (§4.5): a leading 0xFF introduces
// a version octet (discarded) and a single framed value; anything else is
// parsed, from the start, as a single unframed value.
func (d *decoder) decodeTop() Value {
	if tag, ok := d.cur.PeekByteOK(); ok && tag == 0xFF {
		d.cur.Skip(2) // 0xFF and the version octet
		return d.decodeValue()
	}
	d.cur.Reset()
	return d.decodeValue()
}

func (d *decoder) decodeValue() Value {
	d.depth++
	defer func() { d.depth-- }()
	if d.depth > d.opts.maxDepth {
		return UnknownValue(Unknown{Tag: d.cur.PeekByte(), Offset: d.cur.Pos()})
	}
	tag := d.cur.ReadByteLenient()
	v := d.dispatch(tag)
	d.stats.recordKind(v.Kind())
	return v
}

func (d *decoder) dispatch(tag byte) Value {
	switch tag {
	case tagInt16:
		return Int16Value(d.cur.ReadInt16LE())
	case tagInt32:
		n, _ := d.cur.ReadVarint()
		return Int32Value(int32(n))
	case tagByte:
		return ByteValue(d.cur.ReadByteLenient())
	case tagChar:
		return CharValue(rune(d.cur.ReadByteLenient()))
	case tagText:
		return TextValue(d.cur.ReadLengthPrefixedString())
	case tagDateTime:
		return d.decodeDateTime()
	case tagFloat64:
		return Float64Value(d.cur.ReadFloat64LE())
	case tagFloat32:
		return Float32Value(d.cur.ReadFloat32LE())
	case tagColor:
		return d.decodeColor()
	case tagNull, tagNullConst:
		return NullValue()
	case tagTrue, tagTrueAlias:
		return BoolValue(true)
	case tagFalse, tagFalseAlias:
		return BoolValue(false)
	case tagPair:
		a := d.decodeValue()
		b := d.decodeValue()
		return PairValue(a, b)
	case tagTriplet:
		a := d.decodeValue()
		b := d.decodeValue()
		c := d.decodeValue()
		return TripletValue(a, b, c)
	case tagList, tagStringList, tagArrayList:
		return d.decodeList()
	case tagHashtable, tagHybridDict:
		return d.decodeMap()
	case tagTypeRef:
		name := d.cur.ReadLengthPrefixedString()
		d.interns.internType(name)
		return TypeRefValue(name)
	case tagUnit:
		return d.decodeUnit()
	case tagInternText:
		s := d.cur.ReadLengthPrefixedString()
		d.interns.internString(s)
		return TextValue(s)
	case tagStringRef:
		i, _ := d.cur.ReadVarint()
		return TextValue(d.interns.resolveString(int(i)))
	case tagSparseList:
		return d.decodeSparseList()
	case tagOpaqueA, tagOpaqueB:
		return d.decodeOpaque(tag)
	case tagTypedArray:
		return d.decodeTypedArray()
	case tagKnownType:
		i, _ := d.cur.ReadVarint()
		return TypeRefValue(d.interns.resolveType(int(i)))
	case tagEmptyText:
		return TextValue("")
	case tagInt32Zero:
		return Int32Value(0)
	default:
		return d.recoverUnknownTag(tag)
	}
}

func (d *decoder) readValues(n int) []Value {
	items := make([]Value, 0, n)
	for i := 0; i < n; i++ {
		items = append(items, d.decodeValue())
	}
	return items
}

func (d *decoder) decodeList() Value {
	n, exceeded := d.cur.ReadCount(d.opts.maxCollectionCount)
	if exceeded {
		return ListValue(nil)
	}
	return ListValue(d.readValues(n))
}

// stringifyKey renders a Map key Value as text: Text values pass through
// verbatim, everything else is rendered via GoString (§3: "keys are
// stringified").
func stringifyKey(v Value) string {
	if v.Kind() == KindText {
		return v.AsText()
	}
	return v.GoString()
}

func (d *decoder) decodeMap() Value {
	n, exceeded := d.cur.ReadCount(d.opts.maxCollectionCount)
	if exceeded {
		return MapValue(nil)
	}
	entries := make([]MapEntry, 0, n)
	for i := 0; i < n; i++ {
		key := d.decodeValue()
		val := d.decodeValue()
		entries = append(entries, MapEntry{Key: stringifyKey(key), Value: val})
	}
	return MapValue(entries)
}

func (d *decoder) decodeUnit() Value {
	n := d.cur.ReadFloat64LE()
	k, _ := d.cur.ReadVarint()
	kind := UnitNone
	if k < unitKindCount {
		kind = UnitKind(k)
	}
	return UnitValue(Unit{Number: n, Kind: kind})
}

func (d *decoder) decodeColor() Value {
	packed, _ := d.cur.ReadVarint()
	a := byte(packed >> 24)
	r := byte(packed >> 16)
	g := byte(packed >> 8)
	b := byte(packed)
	alpha := math.Round(float64(a)/255*100) / 100
	return ColorValue(Color{R: r, G: g, B: b, A: alpha})
}

// dotNetEpoch is 0001-01-01T00:00:00Z, tick zero.
var dotNetEpoch = time.Date(1, 1, 1, 0, 0, 0, 0, time.UTC)

const ticksPerDay = 10_000_000 * 86400

// ticksToTime converts .NET ticks (100ns units since 0001-01-01) to a
// time.Time. It advances whole days via AddDate, which normalizes
// calendar fields directly rather than through a bounded time.Duration,
// so large tick counts don't silently wrap; ok is false only when the
// resulting year falls outside .NET's own representable DateTime range
// ([0001, 9999]), matching §4.4's "ticks fall outside the representable
// instant range" case.
func ticksToTime(ticks uint64) (time.Time, bool) {
	days := int64(ticks / ticksPerDay)
	subDayTicks := ticks % ticksPerDay
	t := dotNetEpoch.AddDate(0, 0, int(days))
	t = t.Add(time.Duration(subDayTicks) * 100)
	if t.Year() < 1 || t.Year() > 9999 {
		return time.Time{}, false
	}
	return t, true
}

func (d *decoder) decodeDateTime() Value {
	raw := d.cur.ReadN(8)
	var padded [8]byte
	copy(padded[:], raw)
	ticks := binary.LittleEndian.Uint64(padded[:])
	t, ok := ticksToTime(ticks)
	if !ok {
		return TextValue("<DateTime>")
	}
	return DateTimeValue(t)
}

func (d *decoder) decodeSparseList() Value {
	length, lengthExceeded := d.cur.ReadCount(d.opts.maxSparseLength)
	count, countExceeded := d.cur.ReadCount(d.opts.maxCollectionCount)
	if lengthExceeded {
		return ListValue(nil)
	}
	items := make([]Value, length)
	for i := range items {
		items[i] = NullValue()
	}
	if countExceeded {
		return ListValue(items)
	}
	for i := 0; i < count; i++ {
		idx, _ := d.cur.ReadVarint()
		v := d.decodeValue()
		if int(idx) >= 0 && int(idx) < length {
			items[idx] = v
		}
	}
	return ListValue(items)
}

func (d *decoder) decodeTypedArray() Value {
	typeIdx, _ := d.cur.ReadVarint()
	typeName := d.interns.resolveType(int(typeIdx))
	n, exceeded := d.cur.ReadCount(d.opts.maxCollectionCount)
	if exceeded {
		return TypedArrayValue(typeName, nil)
	}
	return TypedArrayValue(typeName, d.readValues(n))
}

func (d *decoder) decodeOpaque(tag byte) Value {
	n, _ := d.cur.ReadVarint()
	raw := d.cur.ReadN(int(n))
	extract := extractOpaque(raw, d.opts.maxOpaqueStrings)
	return OpaqueValue(Opaque{Tag: tag, Length: int(n), Extract: extract})
}

// recoverUnknownTag implements the tag-level recovery rule (§4.8(1)): the
// already-consumed tag octet is reinterpreted as the first octet of a
// varint-length-prefixed string. If that yields a non-empty, entirely
// printable-ASCII string, it is accepted as Text; otherwise the cursor is
// restored to just past the tag and an Unknown marker is produced.
func (d *decoder) recoverUnknownTag(tag byte) Value {
	afterTag := d.cur.Pos()
	offset := afterTag - 1
	d.cur.Rewind(1)
	s := d.cur.ReadLengthPrefixedString()
	if s != "" && isPrintableASCII(s) {
		return TextValue(s)
	}
	d.cur.SeekTo(afterTag)
	return UnknownValue(Unknown{Tag: tag, Offset: offset})
}

func isPrintableASCII(s string) bool {
	for i := 0; i < len(s); i++ {
		c := s[i]
		if c < 0x20 || c > 0x7E {
			return false
		}
	}
	return true
}
