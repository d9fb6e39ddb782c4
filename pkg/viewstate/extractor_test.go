package viewstate

import "testing"

func TestPrintableRunsBasic(t *testing.T) {
	raw := []byte("abcd\x00\x01efgh\x00ij")
	runs := printableRuns(raw, 4, 10)
	if len(runs) != 2 || runs[0] != "abcd" || runs[1] != "efgh" {
		t.Fatalf("got %v, want [abcd efgh]", runs)
	}
}

func TestPrintableRunsRespectsCap(t *testing.T) {
	raw := []byte("aaaa\x00bbbb\x00cccc\x00dddd")
	runs := printableRuns(raw, 4, 2)
	if len(runs) != 2 {
		t.Fatalf("got %d runs, want 2", len(runs))
	}
}

func TestPrintableRunsDedup(t *testing.T) {
	raw := []byte("dupe\x00dupe\x00dupe")
	runs := printableRuns(raw, 4, 10)
	if len(runs) != 1 || runs[0] != "dupe" {
		t.Fatalf("got %v, want [dupe]", runs)
	}
}

func TestExtractOpaqueDetectsDataTable(t *testing.T) {
	raw := []byte("System.Data.DataTable,mscorlib some noise")
	e := extractOpaque(raw, 50)
	if e.ObjectType != "DataTable" {
		t.Errorf("ObjectType = %q, want DataTable", e.ObjectType)
	}
}

func TestExtractOpaqueDetectsDiffgram(t *testing.T) {
	raw := []byte("prefix <diffgr:diffgram> body suffix")
	e := extractOpaque(raw, 50)
	if !e.HasDiffgram {
		t.Error("HasDiffgram should be true")
	}
}

func TestExtractOpaqueEmbedsSchema(t *testing.T) {
	raw := []byte(`junk <?xml version="1.0"?><xs:schema><xs:element name="Customers"/><xs:element name="Id" type="xs:int"/></xs:schema> junk`)
	e := extractOpaque(raw, 50)
	if e.Schema == nil {
		t.Fatal("expected a non-nil Schema")
	}
	if e.Schema.TableName != "Customers" {
		t.Errorf("TableName = %q, want Customers", e.Schema.TableName)
	}
	if len(e.Schema.Columns) != 1 || e.Schema.Columns[0].Name != "Id" || e.Schema.Columns[0].Type != "xs:int" {
		t.Errorf("Columns = %v, want [{Id xs:int}]", e.Schema.Columns)
	}
}

func TestExtractOpaqueCapsStrings(t *testing.T) {
	raw := []byte("aaaa\x00bbbb\x00cccc\x00dddd\x00eeee")
	e := extractOpaque(raw, 2)
	if len(e.Strings) != 2 {
		t.Fatalf("got %d strings, want 2", len(e.Strings))
	}
}

func TestExtractSchemaDefaultsTypeToString(t *testing.T) {
	text := `<xs:element name="Widgets"/><xs:element name="Name"/>`
	s := extractSchema(text)
	if s.TableName != "Widgets" {
		t.Fatalf("TableName = %q, want Widgets", s.TableName)
	}
	if len(s.Columns) != 1 || s.Columns[0].Type != "string" {
		t.Errorf("Columns = %v, want [{Name string}]", s.Columns)
	}
}

func TestExtractSchemaExcludesDataSetElement(t *testing.T) {
	text := `<xs:element name="NewDataSet"><xs:element name="Orders"/><xs:element name="OrderId"/></xs:element>`
	s := extractSchema(text)
	for _, c := range s.Columns {
		if c.Name == "NewDataSet" {
			t.Error("NewDataSet should have been excluded as a column")
		}
	}
}

func TestExtractSchemaNoMatches(t *testing.T) {
	s := extractSchema("no schema here")
	if s.TableName != "" || len(s.Columns) != 0 {
		t.Errorf("expected empty schema, got %+v", s)
	}
}

func TestIsNoiseFilters(t *testing.T) {
	noisy := []string{"12345", "deadBEEF", "AAAA====", "+/+/==", "ctl00", "ImageButton3"}
	for _, s := range noisy {
		if !isNoise(s) {
			t.Errorf("isNoise(%q) = false, want true", s)
		}
	}
	clean := []string{"Hello, World!", "Customer Name", "System.String"}
	for _, s := range clean {
		if isNoise(s) {
			t.Errorf("isNoise(%q) = true, want false", s)
		}
	}
}

func TestFilteredPrintableRunsDropsNoise(t *testing.T) {
	raw := []byte("ctl00\x00Hello World\x00AAAA====\x00Another Value")
	out := filteredPrintableRuns(raw, 10)
	for _, s := range out {
		if isNoise(s) {
			t.Errorf("filteredPrintableRuns leaked a noisy string: %q", s)
		}
	}
	if len(out) != 2 {
		t.Fatalf("got %v, want 2 survivors", out)
	}
}

func TestExtractDotNetTypesDedup(t *testing.T) {
	// The type-name pattern matches letters and dots only, so the digits of
	// "System.Int32" are not part of the match.
	text := "System.String and System.Int32 and System.String again"
	types := extractDotNetTypes(text)
	if len(types) != 2 || types[0] != "System.String" || types[1] != "System.Int" {
		t.Fatalf("got %v, want [System.String System.Int]", types)
	}
}

func TestScanXMLBlocksFindsMultiple(t *testing.T) {
	text := `noise <?xml version="1.0"?><xs:element name="A"/></xs:schema> noise <diffgr:diffgram>body</diffgr:diffgram> noise`
	schemas := scanXMLBlocks(text)
	if len(schemas) != 2 {
		t.Fatalf("got %d schemas, want 2", len(schemas))
	}
}

func TestScanXMLBlocksBoundsUnclosedBlock(t *testing.T) {
	text := "<xs:schema" + string(make([]byte, 10000))
	schemas := scanXMLBlocks(text)
	if len(schemas) != 1 {
		t.Fatalf("got %d schemas, want 1", len(schemas))
	}
}

func TestRunFallbackExtractorShape(t *testing.T) {
	data := []byte(`System.String junk <diffgr:diffgram>d</diffgr:diffgram> Hello There`)
	v := runFallbackExtractor(data, defaultDecodeOptions())
	if v.Kind() != KindMap {
		t.Fatalf("got kind %s, want Map", v.Kind())
	}
	m := v.AsMap()
	byKey := map[string]Value{}
	for _, e := range m {
		byKey[e.Key] = e.Value
	}
	if byKey["type"].AsText() != "ViewState" {
		t.Errorf(`type = %q, want "ViewState"`, byKey["type"].AsText())
	}
	if byKey["format"].AsText() != "LosFormatter" {
		t.Errorf(`format = %q, want "LosFormatter"`, byKey["format"].AsText())
	}
	content := byKey["content"]
	if content.Kind() != KindMap {
		t.Fatalf("content kind = %s, want Map", content.Kind())
	}
	foundDotNetTypes := false
	for _, e := range content.AsMap() {
		if e.Key == "dotNetTypes" {
			foundDotNetTypes = true
		}
	}
	if !foundDotNetTypes {
		t.Error("expected a dotNetTypes entry given a System.String substring in the input")
	}
}
