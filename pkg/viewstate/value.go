package viewstate

import (
	"fmt"
	"time"
)

// Kind identifies the variant carried by a Value.
type Kind uint8

const (
	KindNull Kind = iota
	KindBool
	KindByte
	KindInt16
	KindInt32
	KindFloat32
	KindFloat64
	KindChar
	KindText
	KindDateTime
	KindColor
	KindUnit
	KindPair
	KindTriplet
	KindList
	KindMap
	KindTypeRef
	KindTypedArray
	KindOpaque
	KindUnknown
)

// String returns the kind's name, used by GoString. The JSON "type"
// discriminators in json.go are written as literal strings.
func (k Kind) String() string {
	switch k {
	case KindNull:
		return "Null"
	case KindBool:
		return "Bool"
	case KindByte:
		return "Byte"
	case KindInt16:
		return "Int16"
	case KindInt32:
		return "Int32"
	case KindFloat32:
		return "Float32"
	case KindFloat64:
		return "Float64"
	case KindChar:
		return "Char"
	case KindText:
		return "Text"
	case KindDateTime:
		return "DateTime"
	case KindColor:
		return "Color"
	case KindUnit:
		return "Unit"
	case KindPair:
		return "Pair"
	case KindTriplet:
		return "Triplet"
	case KindList:
		return "List"
	case KindMap:
		return "Map"
	case KindTypeRef:
		return "TypeRef"
	case KindTypedArray:
		return "TypedArray"
	case KindOpaque:
		return "Opaque"
	case KindUnknown:
		return "Unknown"
	default:
		return fmt.Sprintf("Kind(%d)", k)
	}
}

// Value is the decoded/encodable tree node. It is immutable once produced;
// editors build a new tree rather than mutate one in place (§3's lifecycle
// note). The zero Value is KindNull.
type Value struct {
	kind Kind
	data interface{}
}

// Kind returns the variant this Value carries.
func (v Value) Kind() Kind { return v.kind }

// --- constructors ---

// NullValue represents the absent-value sentinel (tags 0x0A, 0x64).
func NullValue() Value { return Value{kind: KindNull} }

// BoolValue wraps a boolean.
func BoolValue(b bool) Value { return Value{kind: KindBool, data: b} }

// ByteValue wraps a single octet (0..255).
func ByteValue(b byte) Value { return Value{kind: KindByte, data: b} }

// Int16Value wraps a signed 16-bit integer.
func Int16Value(n int16) Value { return Value{kind: KindInt16, data: n} }

// Int32Value wraps a 32-bit integer.
func Int32Value(n int32) Value { return Value{kind: KindInt32, data: n} }

// Float32Value wraps a 32-bit float.
func Float32Value(f float32) Value { return Value{kind: KindFloat32, data: f} }

// Float64Value wraps a 64-bit float.
func Float64Value(f float64) Value { return Value{kind: KindFloat64, data: f} }

// CharValue wraps a single Unicode scalar.
func CharValue(r rune) Value { return Value{kind: KindChar, data: r} }

// TextValue wraps a UTF-8 string.
func TextValue(s string) Value { return Value{kind: KindText, data: s} }

// DateTimeValue wraps an instant.
func DateTimeValue(t time.Time) Value { return Value{kind: KindDateTime, data: t} }

// Color is an RGBA quadruple; A is normalized to [0,1].
type Color struct {
	R, G, B uint8
	A       float64
}

// ColorValue wraps a Color.
func ColorValue(c Color) Value { return Value{kind: KindColor, data: c} }

// UnitKind enumerates the CSS-like unit suffixes §3 names.
type UnitKind uint8

const (
	UnitNone UnitKind = iota
	UnitPx
	UnitPt
	UnitPercent
	UnitEm
	UnitEx
	UnitMm
	UnitCm
	UnitIn
	UnitPc
)

// Suffix returns the textual suffix for rendering "<n><suffix>".
func (u UnitKind) Suffix() string {
	switch u {
	case UnitNone:
		return ""
	case UnitPx:
		return "px"
	case UnitPt:
		return "pt"
	case UnitPercent:
		return "%"
	case UnitEm:
		return "em"
	case UnitEx:
		return "ex"
	case UnitMm:
		return "mm"
	case UnitCm:
		return "cm"
	case UnitIn:
		return "in"
	case UnitPc:
		return "pc"
	default:
		return ""
	}
}

// Unit is a (number, unit-kind) pair, e.g. 12.5px.
type Unit struct {
	Number float64
	Kind   UnitKind
}

// UnitValue wraps a Unit.
func UnitValue(u Unit) Value { return Value{kind: KindUnit, data: u} }

// PairValue wraps two values.
func PairValue(a, b Value) Value { return Value{kind: KindPair, data: [2]Value{a, b}} }

// TripletValue wraps three values.
func TripletValue(a, b, c Value) Value { return Value{kind: KindTriplet, data: [3]Value{a, b, c}} }

// ListValue wraps an ordered sequence. A nil slice becomes an empty list.
func ListValue(items []Value) Value {
	if items == nil {
		items = []Value{}
	}
	return Value{kind: KindList, data: items}
}

// MapEntry is one key-value pair of a Map, in wire order.
type MapEntry struct {
	Key   string
	Value Value
}

// MapValue wraps an ordered sequence of key-value pairs.
func MapValue(entries []MapEntry) Value {
	if entries == nil {
		entries = []MapEntry{}
	}
	return Value{kind: KindMap, data: entries}
}

// TypeRefValue wraps a recorded .NET type name (tag 0x19, or a resolved
// tag 0x3C back-reference — see intern.go).
func TypeRefValue(name string) Value { return Value{kind: KindTypeRef, data: name} }

// TypedArrayEntry is the resolved payload of a TypedArray value.
type TypedArrayEntry struct {
	TypeName string
	Items    []Value
}

// TypedArrayValue wraps a type-tagged array (tag 0x32).
func TypedArrayValue(typeName string, items []Value) Value {
	if items == nil {
		items = []Value{}
	}
	return Value{kind: KindTypedArray, data: TypedArrayEntry{TypeName: typeName, Items: items}}
}

// OpaqueExtract is the best-effort structured reading of a nested
// BinaryFormatter blob (§4.7). Full parsing of the nested format is out of
// scope; this is an English-language extract, not a faithful decode.
type OpaqueExtract struct {
	ObjectType  string          // e.g. "DataTable", empty if not detected
	Schema      *DataTableSchema // non-nil if an XML schema was located
	HasDiffgram bool
	Strings     []string // printable runs, capped per decodeOptions
	RawBytes    []byte   // original bytes, kept so Encode can re-emit them
}

// DataTableSchema is the shape produced by the XML schema extractor (§4.9).
type DataTableSchema struct {
	TableName   string
	Columns     []DataTableColumn
	HasDiffgram bool
}

// DataTableColumn is one column extracted from a DataTable XML schema.
type DataTableColumn struct {
	Name string
	Type string
}

// Opaque is the payload of a KindOpaque Value.
type Opaque struct {
	Tag     byte
	Length  int
	Extract OpaqueExtract
}

// OpaqueValue wraps an Opaque blob extract.
func OpaqueValue(o Opaque) Value { return Value{kind: KindOpaque, data: o} }

// Unknown is the payload of a KindUnknown Value, produced only by the
// tag-level recovery path (§4.8(1)).
type Unknown struct {
	Tag    byte
	Offset int
}

// UnknownValue wraps a recovery-path marker.
func UnknownValue(u Unknown) Value { return Value{kind: KindUnknown, data: u} }

// --- predicates ---

func (v Value) IsNull() bool { return v.kind == KindNull }
func (v Value) IsText() bool { return v.kind == KindText }
func (v Value) IsList() bool { return v.kind == KindList }
func (v Value) IsMap() bool  { return v.kind == KindMap }

// --- accessors: panic if the Kind doesn't match, matching the teacher's
// As* convention (types.go's AsBool/AsInt32/...). ---

func (v Value) mismatch(want string) string {
	return fmt.Sprintf("viewstate: Value.As%s: expected %s, got %s", want, want, v.kind)
}

func (v Value) AsBool() bool {
	if v.kind != KindBool {
		panic(v.mismatch("Bool"))
	}
	return v.data.(bool)
}

func (v Value) AsByte() byte {
	if v.kind != KindByte {
		panic(v.mismatch("Byte"))
	}
	return v.data.(byte)
}

func (v Value) AsInt16() int16 {
	if v.kind != KindInt16 {
		panic(v.mismatch("Int16"))
	}
	return v.data.(int16)
}

func (v Value) AsInt32() int32 {
	if v.kind != KindInt32 {
		panic(v.mismatch("Int32"))
	}
	return v.data.(int32)
}

func (v Value) AsFloat32() float32 {
	if v.kind != KindFloat32 {
		panic(v.mismatch("Float32"))
	}
	return v.data.(float32)
}

func (v Value) AsFloat64() float64 {
	if v.kind != KindFloat64 {
		panic(v.mismatch("Float64"))
	}
	return v.data.(float64)
}

func (v Value) AsChar() rune {
	if v.kind != KindChar {
		panic(v.mismatch("Char"))
	}
	return v.data.(rune)
}

func (v Value) AsText() string {
	if v.kind != KindText {
		panic(v.mismatch("Text"))
	}
	return v.data.(string)
}

func (v Value) AsDateTime() time.Time {
	if v.kind != KindDateTime {
		panic(v.mismatch("DateTime"))
	}
	return v.data.(time.Time)
}

func (v Value) AsColor() Color {
	if v.kind != KindColor {
		panic(v.mismatch("Color"))
	}
	return v.data.(Color)
}

func (v Value) AsUnit() Unit {
	if v.kind != KindUnit {
		panic(v.mismatch("Unit"))
	}
	return v.data.(Unit)
}

func (v Value) AsPair() (Value, Value) {
	if v.kind != KindPair {
		panic(v.mismatch("Pair"))
	}
	p := v.data.([2]Value)
	return p[0], p[1]
}

func (v Value) AsTriplet() (Value, Value, Value) {
	if v.kind != KindTriplet {
		panic(v.mismatch("Triplet"))
	}
	t := v.data.([3]Value)
	return t[0], t[1], t[2]
}

func (v Value) AsList() []Value {
	if v.kind != KindList {
		panic(v.mismatch("List"))
	}
	return v.data.([]Value)
}

func (v Value) AsMap() []MapEntry {
	if v.kind != KindMap {
		panic(v.mismatch("Map"))
	}
	return v.data.([]MapEntry)
}

func (v Value) AsTypeRef() string {
	if v.kind != KindTypeRef {
		panic(v.mismatch("TypeRef"))
	}
	return v.data.(string)
}

func (v Value) AsTypedArray() TypedArrayEntry {
	if v.kind != KindTypedArray {
		panic(v.mismatch("TypedArray"))
	}
	return v.data.(TypedArrayEntry)
}

func (v Value) AsOpaque() Opaque {
	if v.kind != KindOpaque {
		panic(v.mismatch("Opaque"))
	}
	return v.data.(Opaque)
}

func (v Value) AsUnknown() Unknown {
	if v.kind != KindUnknown {
		panic(v.mismatch("Unknown"))
	}
	return v.data.(Unknown)
}

// GoString implements fmt.GoStringer for debugging, in the teacher's
// types.go style.
func (v Value) GoString() string {
	switch v.kind {
	case KindNull:
		return "null"
	case KindBool:
		if v.data.(bool) {
			return "true"
		}
		return "false"
	case KindByte:
		return fmt.Sprintf("%d", v.data.(byte))
	case KindInt16:
		return fmt.Sprintf("%d", v.data.(int16))
	case KindInt32:
		return fmt.Sprintf("%d", v.data.(int32))
	case KindFloat32:
		return fmt.Sprintf("%g", v.data.(float32))
	case KindFloat64:
		return fmt.Sprintf("%g", v.data.(float64))
	case KindChar:
		return fmt.Sprintf("%q", v.data.(rune))
	case KindText:
		return fmt.Sprintf("%q", v.data.(string))
	case KindDateTime:
		return v.data.(time.Time).Format(time.RFC3339Nano)
	case KindList:
		return fmt.Sprintf("List[%d]", len(v.data.([]Value)))
	case KindMap:
		return fmt.Sprintf("Map{%d entries}", len(v.data.([]MapEntry)))
	default:
		return fmt.Sprintf("%s(%v)", v.kind, v.data)
	}
}
