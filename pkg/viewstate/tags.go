package viewstate

// Wire tags, per the token dispatch table. Tags are grouped by the kind
// they produce; several kinds have more than one tag (a full-form tag and
// one or more compact/constant aliases).
const (
	tagInt16      byte = 0x01
	tagInt32      byte = 0x02
	tagByte       byte = 0x03
	tagChar       byte = 0x04
	tagText       byte = 0x05
	tagDateTime   byte = 0x06
	tagFloat64    byte = 0x07
	tagFloat32    byte = 0x08
	tagColor      byte = 0x09
	tagNull       byte = 0x0A
	tagTrue       byte = 0x0B
	tagFalse      byte = 0x0C
	tagPair       byte = 0x0F
	tagTriplet    byte = 0x10
	tagList       byte = 0x14
	tagStringList byte = 0x15
	tagArrayList  byte = 0x16
	tagHashtable  byte = 0x17
	tagHybridDict byte = 0x18
	tagTypeRef    byte = 0x19
	tagUnit       byte = 0x1B
	tagInternText byte = 0x1E
	tagStringRef  byte = 0x1F
	tagSparseList byte = 0x28
	tagOpaqueA    byte = 0x29
	tagOpaqueB    byte = 0x2A
	tagTypedArray byte = 0x32
	tagKnownType  byte = 0x3C

	tagNullConst  byte = 0x64
	tagEmptyText  byte = 0x65
	tagInt32Zero  byte = 0x66
	tagTrueAlias  byte = 0x67
	tagFalseAlias byte = 0x68
	tagTriplet69  byte = 0x69 // the source's Triplet tag on encode; this encoder writes tagTriplet
	tagEncList6A  byte = 0x6A // the source's overloaded, never-decoded List tag; this encoder writes tagList
)

// unitKindCount guards Unit decode against an out-of-range varint kind.
const unitKindCount = 10

// tagName returns a human-readable name for a tag, for diagnostics.
// Unlisted tags return "". Unknown values and Stats carry no tag names;
// the JSON form of an Unknown value holds only the numeric tag.
func tagName(tag byte) string {
	switch tag {
	case tagInt16:
		return "Int16"
	case tagInt32:
		return "Int32"
	case tagByte:
		return "Byte"
	case tagChar:
		return "Char"
	case tagText:
		return "Text"
	case tagDateTime:
		return "DateTime"
	case tagFloat64:
		return "Float64"
	case tagFloat32:
		return "Float32"
	case tagColor:
		return "Color"
	case tagNull, tagNullConst:
		return "Null"
	case tagTrue, tagTrueAlias:
		return "BoolTrue"
	case tagFalse, tagFalseAlias:
		return "BoolFalse"
	case tagPair:
		return "Pair"
	case tagTriplet:
		return "Triplet"
	case tagList, tagStringList:
		return "List"
	case tagArrayList:
		return "ArrayList"
	case tagHashtable, tagHybridDict:
		return "Map"
	case tagTypeRef:
		return "TypeRef"
	case tagUnit:
		return "Unit"
	case tagInternText:
		return "InternedText"
	case tagStringRef:
		return "StringRef"
	case tagSparseList:
		return "SparseList"
	case tagOpaqueA, tagOpaqueB:
		return "Opaque"
	case tagTypedArray:
		return "TypedArray"
	case tagKnownType:
		return "KnownTypeRef"
	case tagEmptyText:
		return "EmptyText"
	case tagInt32Zero:
		return "Int32Zero"
	default:
		return ""
	}
}
