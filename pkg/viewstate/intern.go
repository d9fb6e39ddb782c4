package viewstate

import "fmt"

// internTables holds the two ordered append-only vectors a single decode
// call populates and resolves against: strings (tag 0x1E writes, tag 0x1F
// reads) and types (tag 0x19 writes, tag 0x3C reads). Both are scoped to
// one decode call; a fresh internTables must be used per call rather than
// reset and reused, so a stale reference from an earlier decode can never
// leak into a later one.
type internTables struct {
	strings []string
	types   []string
}

func newInternTables() *internTables {
	return &internTables{}
}

func (t *internTables) internString(s string) int {
	t.strings = append(t.strings, s)
	return len(t.strings) - 1
}

func (t *internTables) internType(name string) int {
	t.types = append(t.types, name)
	return len(t.types) - 1
}

// indexOfType looks up a previously interned type name, used by the
// encoder to decide whether a TypedArray's type name has already been
// registered in the stream it is building.
func (t *internTables) indexOfType(name string) (int, bool) {
	for i, n := range t.types {
		if n == name {
			return i, true
		}
	}
	return -1, false
}

// resolveString resolves a tag 0x1F back-reference. Per P5, an index below
// the number of writes so far resolves to the interned text; anything else
// (including an index written later in the stream, which cannot happen on
// a well-formed stream but can on an adversarial one) yields a sentinel.
func (t *internTables) resolveString(i int) string {
	if i >= 0 && i < len(t.strings) {
		return t.strings[i]
	}
	return fmt.Sprintf("<StringRef:%d>", i)
}

// resolveType resolves a tag 0x3C back-reference, analogous to
// resolveString. The source format never documents fallback behavior for
// an out-of-range type reference; this mirrors the string sentinel shape
// for consistency rather than leaving the decoder to panic or drop data.
func (t *internTables) resolveType(i int) string {
	if i >= 0 && i < len(t.types) {
		return t.types[i]
	}
	return fmt.Sprintf("<KnownTypeRef:%d>", i)
}
