package viewstate

import (
	"regexp"
	"strings"
)

// printableRuns scans raw for contiguous runs of printable ASCII octets
// ([0x20, 0x7E]) of at least minLen, deduplicating and stopping once capN
// distinct runs have been collected.
func printableRuns(raw []byte, minLen, capN int) []string {
	var runs []string
	seen := make(map[string]bool)
	start := -1
	flush := func(end int) {
		if start >= 0 && end-start >= minLen {
			s := string(raw[start:end])
			if !seen[s] {
				seen[s] = true
				runs = append(runs, s)
			}
		}
		start = -1
	}
	for i, b := range raw {
		if len(runs) >= capN {
			return runs
		}
		if b >= 0x20 && b <= 0x7E {
			if start < 0 {
				start = i
			}
		} else {
			flush(i)
		}
	}
	flush(len(raw))
	if len(runs) > capN {
		runs = runs[:capN]
	}
	return runs
}

// --- §4.7: Opaque (BinaryFormatter) blob handler ---

// extractOpaque produces a best-effort structured reading of a nested
// BinaryFormatter blob. It never fails: absence of any recognizable
// structure just yields a mostly-empty OpaqueExtract.
func extractOpaque(raw []byte, maxStrings int) OpaqueExtract {
	text := string(raw)
	extract := OpaqueExtract{RawBytes: raw}

	if strings.Contains(text, "System.Data.DataTable") {
		extract.ObjectType = "DataTable"
	}
	if schemaText := sliceBetween(text, "<?xml", "</xs:schema>"); schemaText != "" {
		extract.Schema = extractSchema(schemaText)
	}
	extract.HasDiffgram = strings.Contains(text, "<diffgr:diffgram>")
	extract.Strings = printableRuns(raw, 4, maxStrings)
	return extract
}

// sliceBetween returns the substring from the first occurrence of startTok
// through the end of the first occurrence of endTok that follows it
// (inclusive of endTok), or "" if either token is absent.
func sliceBetween(text, startTok, endTok string) string {
	si := strings.Index(text, startTok)
	if si < 0 {
		return ""
	}
	ei := strings.Index(text[si:], endTok)
	if ei < 0 {
		return ""
	}
	end := si + ei + len(endTok)
	return text[si:end]
}

// --- §4.9: XML schema extractor ---

var elementNameRe = regexp.MustCompile(`element name="([^"]+)"(?:[^>]*type="([^"]+)")?`)

// extractSchema scrapes a DataTable XML schema out of a text slice. It is
// deliberately not a real XSD parser: the source format's own schema
// fragments are regular enough that a couple of regexes recover the table
// name and column list without needing a DOM.
func extractSchema(text string) *DataTableSchema {
	matches := elementNameRe.FindAllStringSubmatch(text, -1)
	schema := &DataTableSchema{HasDiffgram: strings.Contains(text, "<diffgr:diffgram")}
	if len(matches) == 0 {
		return schema
	}
	schema.TableName = matches[0][1]
	for _, m := range matches {
		name := m[1]
		if name == schema.TableName || strings.Contains(name, "DataSet") {
			continue
		}
		typ := m[2]
		if typ == "" {
			typ = "string"
		}
		schema.Columns = append(schema.Columns, DataTableColumn{Name: name, Type: typ})
	}
	return schema
}

func schemaToValue(s *DataTableSchema) Value {
	entries := []MapEntry{{Key: "type", Value: TextValue("DataTable Schema")}}
	if s.TableName != "" {
		entries = append(entries, MapEntry{Key: "tableName", Value: TextValue(s.TableName)})
	}
	cols := make([]Value, 0, len(s.Columns))
	for _, c := range s.Columns {
		cols = append(cols, MapValue([]MapEntry{
			{Key: "name", Value: TextValue(c.Name)},
			{Key: "type", Value: TextValue(c.Type)},
		}))
	}
	entries = append(entries, MapEntry{Key: "columns", Value: ListValue(cols)})
	if s.HasDiffgram {
		entries = append(entries, MapEntry{Key: "hasDiffgram", Value: BoolValue(true)})
	}
	return MapValue(entries)
}

// --- §4.8(2): stream-level fallback extractor ---

var noiseFilters = []*regexp.Regexp{
	regexp.MustCompile(`^[0-9]+$`),           // pure digits
	regexp.MustCompile(`^[0-9A-Fa-f]+$`),     // pure hex
	regexp.MustCompile(`^[A=]+$`),            // runs of A/=
	regexp.MustCompile(`^[+/=]+$`),           // pure Base64 padding/separator chars
	regexp.MustCompile(`^ctl[0-9]+$`),        // ASP.NET auto-generated control IDs
	regexp.MustCompile(`^ImageButton[0-9]+$`),
}

func isNoise(s string) bool {
	for _, re := range noiseFilters {
		if re.MatchString(s) {
			return true
		}
	}
	return false
}

// filteredPrintableRuns extracts candidate content strings and drops the
// ones the noise filters recognize as structural artifacts rather than
// meaningful content, capping at capN survivors. The pre-filter scan uses
// a larger internal cap than capN so that noise filtered out of an early
// batch doesn't starve the final count.
func filteredPrintableRuns(raw []byte, capN int) []string {
	candidates := printableRuns(raw, 4, capN*4+64)
	out := make([]string, 0, capN)
	for _, s := range candidates {
		if isNoise(s) {
			continue
		}
		out = append(out, s)
		if len(out) >= capN {
			break
		}
	}
	return out
}

var dotNetTypeRe = regexp.MustCompile(`System\.[A-Za-z.]+`)

// extractDotNetTypes finds .NET type-name-shaped substrings, deduplicating
// in first-seen order.
func extractDotNetTypes(text string) []string {
	matches := dotNetTypeRe.FindAllString(text, -1)
	seen := make(map[string]bool)
	out := make([]string, 0, len(matches))
	for _, m := range matches {
		if seen[m] {
			continue
		}
		seen[m] = true
		out = append(out, m)
	}
	return out
}

type xmlBlockRule struct {
	start string
	end   string
}

var xmlBlockRules = []xmlBlockRule{
	{"<?xml", "</xs:schema>"},
	{"<xs:schema", "</xs:schema>"},
	{"<diffgr:", "</diffgr:diffgram>"},
}

const fallbackXMLBlockBound = 5000

// scanXMLBlocks walks text for the three recognized block openers, bounds
// each block at its matching closer (or, if absent, fallbackXMLBlockBound
// octets past the opener) and feeds each block to the schema extractor.
func scanXMLBlocks(text string) []*DataTableSchema {
	var schemas []*DataTableSchema
	pos := 0
	for pos < len(text) {
		bestStart := -1
		var rule xmlBlockRule
		for _, r := range xmlBlockRules {
			if i := strings.Index(text[pos:], r.start); i >= 0 {
				absolute := pos + i
				if bestStart == -1 || absolute < bestStart {
					bestStart = absolute
					rule = r
				}
			}
		}
		if bestStart == -1 {
			break
		}
		end := bestStart
		if ei := strings.Index(text[bestStart:], rule.end); ei >= 0 {
			end = bestStart + ei + len(rule.end)
		} else {
			end = bestStart + fallbackXMLBlockBound
			if end > len(text) {
				end = len(text)
			}
		}
		schemas = append(schemas, extractSchema(text[bestStart:end]))
		pos = end
		if pos <= bestStart {
			pos = bestStart + 1
		}
	}
	return schemas
}

// runFallbackExtractor implements the stream-level fallback (§4.8(2)):
// when structured decode is unusable, salvage whatever English-language
// structure can be scraped directly from the octet buffer.
func runFallbackExtractor(data []byte, opts decodeOptions) Value {
	text := string(data)
	var content []MapEntry

	if schemas := scanXMLBlocks(text); len(schemas) > 0 {
		items := make([]Value, 0, len(schemas))
		for _, s := range schemas {
			items = append(items, schemaToValue(s))
		}
		content = append(content, MapEntry{Key: "xmlSchemas", Value: ListValue(items)})
	}
	if types := extractDotNetTypes(text); len(types) > 0 {
		items := make([]Value, 0, len(types))
		for _, t := range types {
			items = append(items, TextValue(t))
		}
		content = append(content, MapEntry{Key: "dotNetTypes", Value: ListValue(items)})
	}
	if strs := filteredPrintableRuns(data, opts.maxRecoveryStrings); len(strs) > 0 {
		items := make([]Value, 0, len(strs))
		for _, s := range strs {
			items = append(items, TextValue(s))
		}
		content = append(content, MapEntry{Key: "strings", Value: ListValue(items)})
	}
	if structured, _, malformed := decodeStream(data, opts); !malformed {
		content = append(content, MapEntry{Key: "structure", Value: structured})
	}

	return MapValue([]MapEntry{
		{Key: "type", Value: TextValue("ViewState")},
		{Key: "format", Value: TextValue("LosFormatter")},
		{Key: "content", Value: MapValue(content)},
	})
}
