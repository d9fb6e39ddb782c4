package viewstate

// Stats is a running tally of value kinds encountered during a decode.
// The figures are informational only: nothing in the decoder branches on
// their values (§4.12's "must not influence parsing decisions").
type Stats struct {
	Pairs    int
	Triplets int
	Arrays   int // List, ArrayList, SparseList, TypedArray
	Strings  int
	Integers int // Byte + Int16 + Int32 + Int32-zero-constant
	Booleans int
	Opaques  int
}

// Add accumulates another Stats into s component-wise, for a caller that
// decodes multiple bodies and wants a combined tally.
func (s *Stats) Add(other Stats) {
	s.Pairs += other.Pairs
	s.Triplets += other.Triplets
	s.Arrays += other.Arrays
	s.Strings += other.Strings
	s.Integers += other.Integers
	s.Booleans += other.Booleans
	s.Opaques += other.Opaques
}

func (s *Stats) recordKind(k Kind) {
	switch k {
	case KindPair:
		s.Pairs++
	case KindTriplet:
		s.Triplets++
	case KindList, KindTypedArray:
		s.Arrays++
	case KindText:
		s.Strings++
	case KindByte, KindInt16, KindInt32:
		s.Integers++
	case KindBool:
		s.Booleans++
	case KindOpaque:
		s.Opaques++
	}
}
