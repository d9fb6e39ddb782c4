package viewstate

import (
	"bytes"
	"errors"
	"fmt"
	"math"
	"sort"
	"strconv"
	"time"

	json "github.com/goccy/go-json"
	"github.com/tidwall/pretty"
)

// ErrBadJSON is returned when JSON text handed to the editor surface
// (ParseJSON, FormatJSON) is not parseable.
var ErrBadJSON = errors.New("viewstate: invalid JSON")

// ToJSON renders v as the natural JSON embedding of the data model:
// scalars as their JSON counterparts, List as a JSON array, Map as a JSON
// object, and Pair/Triplet/TypeRef/TypedArray/Opaque/Unknown as objects
// carrying an explicit "type" discriminator.
func ToJSON(v Value) (string, error) {
	var buf bytes.Buffer
	if err := writeJSONValue(&buf, v); err != nil {
		return "", err
	}
	return buf.String(), nil
}

func writeJSONScalar(buf *bytes.Buffer, x interface{}) error {
	b, err := json.Marshal(x)
	if err != nil {
		return err
	}
	buf.Write(b)
	return nil
}

func writeJSONValue(buf *bytes.Buffer, v Value) error {
	switch v.Kind() {
	case KindNull:
		return writeJSONScalar(buf, nil)
	case KindBool:
		return writeJSONScalar(buf, v.AsBool())
	case KindByte:
		return writeJSONScalar(buf, int(v.AsByte()))
	case KindInt16:
		return writeJSONScalar(buf, int(v.AsInt16()))
	case KindInt32:
		return writeJSONScalar(buf, v.AsInt32())
	case KindFloat32:
		return writeJSONScalar(buf, float64(v.AsFloat32()))
	case KindFloat64:
		return writeJSONScalar(buf, v.AsFloat64())
	case KindChar:
		return writeJSONScalar(buf, string(v.AsChar()))
	case KindText:
		return writeJSONScalar(buf, v.AsText())
	case KindDateTime:
		return writeJSONScalar(buf, v.AsDateTime().Format(time.RFC3339Nano))
	case KindColor:
		return writeJSONScalar(buf, formatColor(v.AsColor()))
	case KindUnit:
		return writeJSONScalar(buf, formatUnit(v.AsUnit()))
	case KindList:
		buf.WriteByte('[')
		for i, item := range v.AsList() {
			if i > 0 {
				buf.WriteByte(',')
			}
			if err := writeJSONValue(buf, item); err != nil {
				return err
			}
		}
		buf.WriteByte(']')
		return nil
	case KindMap:
		buf.WriteByte('{')
		for i, entry := range v.AsMap() {
			if i > 0 {
				buf.WriteByte(',')
			}
			if err := writeJSONScalar(buf, entry.Key); err != nil {
				return err
			}
			buf.WriteByte(':')
			if err := writeJSONValue(buf, entry.Value); err != nil {
				return err
			}
		}
		buf.WriteByte('}')
		return nil
	case KindPair:
		a, b := v.AsPair()
		buf.WriteString(`{"type":"Pair","first":`)
		if err := writeJSONValue(buf, a); err != nil {
			return err
		}
		buf.WriteString(`,"second":`)
		if err := writeJSONValue(buf, b); err != nil {
			return err
		}
		buf.WriteByte('}')
		return nil
	case KindTriplet:
		a, b, c := v.AsTriplet()
		buf.WriteString(`{"type":"Triplet","first":`)
		if err := writeJSONValue(buf, a); err != nil {
			return err
		}
		buf.WriteString(`,"second":`)
		if err := writeJSONValue(buf, b); err != nil {
			return err
		}
		buf.WriteString(`,"third":`)
		if err := writeJSONValue(buf, c); err != nil {
			return err
		}
		buf.WriteByte('}')
		return nil
	case KindTypeRef:
		buf.WriteString(`{"type":"TypeRef","name":`)
		if err := writeJSONScalar(buf, v.AsTypeRef()); err != nil {
			return err
		}
		buf.WriteByte('}')
		return nil
	case KindTypedArray:
		ta := v.AsTypedArray()
		buf.WriteString(`{"type":"TypedArray","typeName":`)
		if err := writeJSONScalar(buf, ta.TypeName); err != nil {
			return err
		}
		buf.WriteString(`,"items":[`)
		for i, item := range ta.Items {
			if i > 0 {
				buf.WriteByte(',')
			}
			if err := writeJSONValue(buf, item); err != nil {
				return err
			}
		}
		buf.WriteString(`]}`)
		return nil
	case KindOpaque:
		return writeOpaqueJSON(buf, v.AsOpaque())
	case KindUnknown:
		u := v.AsUnknown()
		buf.WriteString(`{"type":"Unknown","tag":`)
		if err := writeJSONScalar(buf, int(u.Tag)); err != nil {
			return err
		}
		buf.WriteString(`,"offset":`)
		if err := writeJSONScalar(buf, u.Offset); err != nil {
			return err
		}
		buf.WriteByte('}')
		return nil
	default:
		return fmt.Errorf("viewstate: unhandled kind %s in JSON encoder", v.Kind())
	}
}

func writeOpaqueJSON(buf *bytes.Buffer, o Opaque) error {
	buf.WriteString(`{"type":"Opaque","tag":`)
	if err := writeJSONScalar(buf, int(o.Tag)); err != nil {
		return err
	}
	buf.WriteString(`,"length":`)
	if err := writeJSONScalar(buf, o.Length); err != nil {
		return err
	}
	buf.WriteString(`,"objectType":`)
	if err := writeJSONScalar(buf, o.Extract.ObjectType); err != nil {
		return err
	}
	buf.WriteString(`,"hasDiffgram":`)
	if err := writeJSONScalar(buf, o.Extract.HasDiffgram); err != nil {
		return err
	}
	buf.WriteString(`,"strings":[`)
	for i, s := range o.Extract.Strings {
		if i > 0 {
			buf.WriteByte(',')
		}
		if err := writeJSONScalar(buf, s); err != nil {
			return err
		}
	}
	buf.WriteString(`]`)
	if o.Extract.Schema != nil {
		buf.WriteString(`,"schema":`)
		if err := writeJSONValue(buf, schemaToValue(o.Extract.Schema)); err != nil {
			return err
		}
	}
	buf.WriteByte('}')
	return nil
}

func formatColor(c Color) string {
	return fmt.Sprintf("rgba(%d,%d,%d,%s)", c.R, c.G, c.B, strconv.FormatFloat(c.A, 'f', 2, 64))
}

func formatUnit(u Unit) string {
	return strconv.FormatFloat(u.Number, 'f', -1, 64) + u.Kind.Suffix()
}

// ParseJSON parses editor-authored JSON text into a Value tree, the
// inverse of ToJSON. Objects carrying a recognized "type" discriminator
// reconstruct the matching composite Kind; any other object becomes a
// Map. Numeric JSON values that are integral and fit an int32 become
// Int32, matching what the decoder itself would have produced for a
// small integer; everything else becomes Float64.
func ParseJSON(text string) (Value, error) {
	var raw interface{}
	if err := json.Unmarshal([]byte(text), &raw); err != nil {
		return Value{}, fmt.Errorf("%w: %v", ErrBadJSON, err)
	}
	return jsonToValue(raw), nil
}

func jsonToValue(raw interface{}) Value {
	switch x := raw.(type) {
	case nil:
		return NullValue()
	case bool:
		return BoolValue(x)
	case float64:
		if x == math.Trunc(x) && x >= math.MinInt32 && x <= math.MaxInt32 {
			return Int32Value(int32(x))
		}
		return Float64Value(x)
	case string:
		return TextValue(x)
	case []interface{}:
		items := make([]Value, len(x))
		for i, e := range x {
			items[i] = jsonToValue(e)
		}
		return ListValue(items)
	case map[string]interface{}:
		return jsonObjectToValue(x)
	default:
		return NullValue()
	}
}

func jsonObjectToValue(m map[string]interface{}) Value {
	if t, ok := m["type"].(string); ok {
		switch t {
		case "Pair":
			return PairValue(jsonToValue(m["first"]), jsonToValue(m["second"]))
		case "Triplet":
			return TripletValue(jsonToValue(m["first"]), jsonToValue(m["second"]), jsonToValue(m["third"]))
		case "TypeRef":
			name, _ := m["name"].(string)
			return TypeRefValue(name)
		case "TypedArray":
			typeName, _ := m["typeName"].(string)
			itemsRaw, _ := m["items"].([]interface{})
			items := make([]Value, len(itemsRaw))
			for i, e := range itemsRaw {
				items[i] = jsonToValue(e)
			}
			return TypedArrayValue(typeName, items)
		case "Opaque":
			return jsonOpaqueToValue(m)
		case "Unknown":
			tagF, _ := m["tag"].(float64)
			offF, _ := m["offset"].(float64)
			return UnknownValue(Unknown{Tag: byte(tagF), Offset: int(offF)})
		}
	}
	return jsonMapToValue(m)
}

func jsonOpaqueToValue(m map[string]interface{}) Value {
	tagF, _ := m["tag"].(float64)
	lengthF, _ := m["length"].(float64)
	objectType, _ := m["objectType"].(string)
	hasDiffgram, _ := m["hasDiffgram"].(bool)
	var strs []string
	if arr, ok := m["strings"].([]interface{}); ok {
		for _, e := range arr {
			if s, ok := e.(string); ok {
				strs = append(strs, s)
			}
		}
	}
	return OpaqueValue(Opaque{
		Tag:    byte(tagF),
		Length: int(lengthF),
		Extract: OpaqueExtract{
			ObjectType:  objectType,
			HasDiffgram: hasDiffgram,
			Strings:     strs,
		},
	})
}

// jsonMapToValue builds a Map from a plain JSON object. Go's map type
// carries no ordering, unlike the wire format's Hashtable entries, so
// keys are sorted for deterministic output; a Map round-tripped through
// JSON therefore is not guaranteed to preserve its original decode order.
func jsonMapToValue(m map[string]interface{}) Value {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	entries := make([]MapEntry, 0, len(keys))
	for _, k := range keys {
		entries = append(entries, MapEntry{Key: k, Value: jsonToValue(m[k])})
	}
	return MapValue(entries)
}

// FormatJSON re-serializes JSON text with indentation, using the same
// library the editor's "pretty" view uses.
func FormatJSON(text string) (string, error) {
	if !json.Valid([]byte(text)) {
		return "", ErrBadJSON
	}
	return string(pretty.Pretty([]byte(text))), nil
}

// ValidateJSON reports whether text is valid JSON, and on failure derives
// a 1-based line/column from the byte offset goccy's SyntaxError reports.
type ValidateJSONResult struct {
	Valid  bool
	Error  string
	Line   int
	Column int
}

func ValidateJSON(text string) ValidateJSONResult {
	var v interface{}
	err := json.Unmarshal([]byte(text), &v)
	if err == nil {
		return ValidateJSONResult{Valid: true}
	}
	line, col := 1, 1
	var syntaxErr *json.SyntaxError
	if errors.As(err, &syntaxErr) {
		line, col = lineColAt(text, int(syntaxErr.Offset))
	}
	return ValidateJSONResult{Valid: false, Error: err.Error(), Line: line, Column: col}
}

func lineColAt(text string, offset int) (line, col int) {
	line, col = 1, 1
	if offset > len(text) {
		offset = len(text)
	}
	for i := 0; i < offset; i++ {
		if text[i] == '\n' {
			line++
			col = 1
		} else {
			col++
		}
	}
	return line, col
}
