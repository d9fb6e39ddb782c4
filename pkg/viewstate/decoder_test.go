package viewstate

import (
	"encoding/base64"
	"testing"
)

func b64(bytes ...byte) string {
	return base64.StdEncoding.EncodeToString(bytes)
}

func TestScenarioSample(t *testing.T) {
	const sample = "/wEPDwUKMTY4NzY1NDk4MQ9kFgICAw9kFgQCAQ8PFgIeBFRleHQFDkhlbGxvLCBXb3JsZCFkZAIDDxYCHgdWaXNpYmxlaGRkw/bVgS8vVUn8xrZU4gTKfzUDhEU="

	result, err := Decode(sample)
	if err != nil {
		t.Fatalf("Decode returned error: %v", err)
	}
	if result.Stats.Strings < 3 {
		t.Errorf("stats.Strings = %d, want >= 3", result.Stats.Strings)
	}
	if !containsText(result.Value, "Hello, World!") {
		t.Errorf("decoded tree does not contain %q", "Hello, World!")
	}
	if !containsText(result.Value, "Visible") {
		t.Errorf("decoded tree does not contain %q", "Visible")
	}
}

// containsText walks v looking for a Text leaf equal to want.
func containsText(v Value, want string) bool {
	switch v.Kind() {
	case KindText:
		return v.AsText() == want
	case KindList:
		for _, item := range v.AsList() {
			if containsText(item, want) {
				return true
			}
		}
	case KindMap:
		for _, e := range v.AsMap() {
			if containsText(e.Value, want) {
				return true
			}
		}
	case KindPair:
		a, b := v.AsPair()
		return containsText(a, want) || containsText(b, want)
	case KindTriplet:
		a, b, c := v.AsTriplet()
		return containsText(a, want) || containsText(b, want) || containsText(c, want)
	}
	return false
}

func TestScenarioFraming(t *testing.T) {
	result, err := Decode(b64(0xFF, 0x01, 0x67))
	if err != nil {
		t.Fatalf("Decode returned error: %v", err)
	}
	if result.Value.Kind() != KindBool || !result.Value.AsBool() {
		t.Errorf("got %#v, want Bool true", result.Value)
	}
}

func TestScenarioNullCanonicalization(t *testing.T) {
	for _, tag := range []byte{0x0A, 0x64} {
		result, err := Decode(b64(0xFF, 0x01, tag))
		if err != nil {
			t.Fatalf("Decode(tag %#x) returned error: %v", tag, err)
		}
		if !result.Value.IsNull() {
			t.Errorf("Decode(tag %#x) = %#v, want Null", tag, result.Value)
		}
	}
}

func TestScenarioMap(t *testing.T) {
	wire := []byte{0x17, 0x02, 0x05, 0x01, 'a', 0x03, 0x07, 0x05, 0x01, 'b', 0x03, 0x09}
	result, err := Decode(b64(append([]byte{0xFF, 0x01}, wire...)...))
	if err != nil {
		t.Fatalf("Decode returned error: %v", err)
	}
	entries := result.Value.AsMap()
	if len(entries) != 2 {
		t.Fatalf("got %d entries, want 2", len(entries))
	}
	if entries[0].Key != "a" || entries[0].Value.AsByte() != 7 {
		t.Errorf("entry 0 = %+v, want a=7", entries[0])
	}
	if entries[1].Key != "b" || entries[1].Value.AsByte() != 9 {
		t.Errorf("entry 1 = %+v, want b=9", entries[1])
	}
}

func TestScenarioSparseList(t *testing.T) {
	wire := []byte{0x28, 0x05, 0x02, 0x01, 0x03, 0x2A, 0x03, 0x03, 0x2B}
	result, err := Decode(b64(append([]byte{0xFF, 0x01}, wire...)...))
	if err != nil {
		t.Fatalf("Decode returned error: %v", err)
	}
	items := result.Value.AsList()
	if len(items) != 5 {
		t.Fatalf("got %d items, want 5", len(items))
	}
	want := []struct {
		null bool
		b    byte
	}{{true, 0}, {false, 42}, {true, 0}, {false, 43}, {true, 0}}
	for i, w := range want {
		if w.null {
			if !items[i].IsNull() {
				t.Errorf("items[%d] = %#v, want Null", i, items[i])
			}
			continue
		}
		if items[i].AsByte() != w.b {
			t.Errorf("items[%d] = %v, want %d", i, items[i], w.b)
		}
	}
}

func TestScenarioUnknownTag(t *testing.T) {
	result, err := Decode(b64(0xFF, 0x01, 0x77))
	if err != nil {
		t.Fatalf("Decode returned error: %v", err)
	}
	if result.Value.Kind() != KindUnknown {
		t.Fatalf("got kind %s, want Unknown", result.Value.Kind())
	}
	u := result.Value.AsUnknown()
	if u.Tag != 0x77 {
		t.Errorf("Unknown.Tag = %#x, want 0x77", u.Tag)
	}
}

func TestScenarioBadBase64(t *testing.T) {
	_, err := Decode("!!!not-base64!!!")
	if err == nil {
		t.Fatal("expected an error")
	}
	var decErr *DecodeError
	if !asDecodeError(err, &decErr) {
		t.Fatalf("error is not a *DecodeError: %v", err)
	}
	if decErr.Suggestion == "" {
		t.Error("expected a non-empty suggestion")
	}
}

func asDecodeError(err error, target **DecodeError) bool {
	if de, ok := err.(*DecodeError); ok {
		*target = de
		return true
	}
	return false
}

func TestEmptyInput(t *testing.T) {
	_, err := Decode("   ")
	if err == nil {
		t.Fatal("expected an error for empty input")
	}
}

func TestInternedStringBackReference(t *testing.T) {
	// 0x1E writes "hi" into the string table at index 0; 0x1F reads index 0.
	wire := []byte{0x14, 0x02, 0x1E, 0x02, 'h', 'i', 0x1F, 0x00}
	result, err := Decode(b64(append([]byte{0xFF, 0x01}, wire...)...))
	if err != nil {
		t.Fatalf("Decode returned error: %v", err)
	}
	items := result.Value.AsList()
	if items[0].AsText() != "hi" || items[1].AsText() != "hi" {
		t.Errorf("got %v, want [hi, hi]", items)
	}
}

func TestInternedStringOutOfRangeBackReference(t *testing.T) {
	wire := []byte{0x1F, 0x05}
	result, err := Decode(b64(append([]byte{0xFF, 0x01}, wire...)...))
	if err != nil {
		t.Fatalf("Decode returned error: %v", err)
	}
	if result.Value.AsText() != "<StringRef:5>" {
		t.Errorf("got %q, want %q", result.Value.AsText(), "<StringRef:5>")
	}
}

func TestCollectionCountClamp(t *testing.T) {
	d := newDecoder(nil, decodeOptions{maxCollectionCount: 10})
	c, exceeded := d.cur.ReadCount(d.opts.maxCollectionCount)
	_ = c
	if exceeded {
		t.Fatal("expected no overflow on an empty cursor")
	}

	wire := append([]byte{0x14}, varint(20000)...)
	result, err := Decode(b64(append([]byte{0xFF, 0x01}, wire...)...), WithMaxCollectionCount(10000))
	if err != nil {
		t.Fatalf("Decode returned error: %v", err)
	}
	items := result.Value.AsList()
	if len(items) != 0 {
		t.Errorf("got %d items, want 0 (clamped)", len(items))
	}
}

// varint encodes n exactly as the wire format would, for building test
// fixtures without depending on internal/wire from an external _test file.
func varint(n uint64) []byte {
	var out []byte
	for n >= 0x80 {
		out = append(out, byte(n)|0x80)
		n >>= 7
	}
	out = append(out, byte(n))
	return out
}

func TestDateTimePlaceholderOnOverflow(t *testing.T) {
	// All-0xFF ticks is far beyond year 9999; must yield the placeholder,
	// not a garbage time.Time or a panic.
	wire := []byte{0x06, 0xFF, 0xFF, 0xFF, 0xFF, 0xFF, 0xFF, 0xFF, 0xFF}
	result, err := Decode(b64(append([]byte{0xFF, 0x01}, wire...)...))
	if err != nil {
		t.Fatalf("Decode returned error: %v", err)
	}
	if result.Value.Kind() != KindText || result.Value.AsText() != "<DateTime>" {
		t.Errorf("got %#v, want Text(<DateTime>)", result.Value)
	}
}

func TestUnframedTopLevel(t *testing.T) {
	// No 0xFF prefix: the whole buffer is one unframed value.
	result, err := Decode(b64(0x0B))
	if err != nil {
		t.Fatalf("Decode returned error: %v", err)
	}
	if result.Value.Kind() != KindBool || !result.Value.AsBool() {
		t.Errorf("got %#v, want Bool true", result.Value)
	}
}

func TestStatsMonotonicity(t *testing.T) {
	// P7: stats after decoding a concatenation of two valid bodies
	// (wrapped in a List) are component-wise >= either decoded alone.
	bodyA := []byte{0x05, 0x01, 'x'}
	bodyB := []byte{0x0F, 0x03, 0x07, 0x03, 0x09}

	onlyA, err := Decode(b64(append([]byte{0xFF, 0x01}, bodyA...)...))
	if err != nil {
		t.Fatalf("Decode(A) error: %v", err)
	}
	onlyB, err := Decode(b64(append([]byte{0xFF, 0x01}, bodyB...)...))
	if err != nil {
		t.Fatalf("Decode(B) error: %v", err)
	}

	combinedWire := append([]byte{0x14}, varint(2)...)
	combinedWire = append(combinedWire, bodyA...)
	combinedWire = append(combinedWire, bodyB...)
	combined, err := Decode(b64(append([]byte{0xFF, 0x01}, combinedWire...)...))
	if err != nil {
		t.Fatalf("Decode(combined) error: %v", err)
	}

	if combined.Stats.Strings < onlyA.Stats.Strings || combined.Stats.Strings < onlyB.Stats.Strings {
		t.Errorf("Strings not monotonic: combined=%d a=%d b=%d", combined.Stats.Strings, onlyA.Stats.Strings, onlyB.Stats.Strings)
	}
	if combined.Stats.Pairs < onlyA.Stats.Pairs || combined.Stats.Pairs < onlyB.Stats.Pairs {
		t.Errorf("Pairs not monotonic: combined=%d a=%d b=%d", combined.Stats.Pairs, onlyA.Stats.Pairs, onlyB.Stats.Pairs)
	}
	if combined.Stats.Integers < onlyA.Stats.Integers || combined.Stats.Integers < onlyB.Stats.Integers {
		t.Errorf("Integers not monotonic: combined=%d a=%d b=%d", combined.Stats.Integers, onlyA.Stats.Integers, onlyB.Stats.Integers)
	}
}

func TestTagRecoveryYieldsPrintableString(t *testing.T) {
	// Tag 0x05 ('\x05') followed by a 5-length string "hello" would
	// normally just be a Text value; to exercise the *recovery* path we
	// need an unrecognized tag byte that doubles as a plausible varint
	// string length. 0x0D is not in the dispatch table.
	wire := []byte{0x0D, 'h', 'e', 'l', 'l', 'o', 'w', 'o', 'r', 'l', 'd', 'z'}
	result, err := Decode(b64(append([]byte{0xFF, 0x01}, wire...)...))
	if err != nil {
		t.Fatalf("Decode returned error: %v", err)
	}
	if result.Value.Kind() != KindText {
		t.Fatalf("got kind %s, want Text (recovered)", result.Value.Kind())
	}
	// The claimed length (13, from reinterpreting the tag byte 0x0D as a
	// varint) exceeds what remains (11 bytes), so the read clamps.
	if result.Value.AsText() != "helloworldz" {
		t.Errorf("got %q, want %q", result.Value.AsText(), "helloworldz")
	}
}

func TestTagRecoveryFallsBackToUnknown(t *testing.T) {
	// Tag 0x0E is unrecognized; reinterpreting it as a varint length
	// claims 14 bytes while only 3 remain, so ReadLengthPrefixedString
	// clamps to whatever's left, which here is non-printable.
	wire := []byte{0x0E, 0x01, 0x02, 0x03}
	result, err := Decode(b64(append([]byte{0xFF, 0x01}, wire...)...))
	if err != nil {
		t.Fatalf("Decode returned error: %v", err)
	}
	if result.Value.Kind() != KindUnknown {
		t.Fatalf("got kind %s, want Unknown", result.Value.Kind())
	}
}
