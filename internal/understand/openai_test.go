package understand

import "testing"

func TestParseExtraction_Valid(t *testing.T) {
	raw := `{
		"is_gibberish": false,
		"filters": {"color": "punainen", "region": "Tampere", "field": "", "institution": ""},
		"semantic_query": "haalarit"
	}`

	in, err := parseExtraction(raw)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if in.Filters.Color != "punainen" {
		t.Errorf("expected color punainen, got %q", in.Filters.Color)
	}
	if in.Filters.Region != "Tampere" {
		t.Errorf("expected region Tampere, got %q", in.Filters.Region)
	}
	if in.SemanticQuery != "haalarit" {
		t.Errorf("expected semantic query haalarit, got %q", in.SemanticQuery)
	}
}

func TestParseExtraction_Gibberish(t *testing.T) {
	raw := `{"is_gibberish": true, "filters": {}, "semantic_query": ""}`

	in, err := parseExtraction(raw)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !in.IsGibberish {
		t.Error("expected gibberish flag")
	}
	if !in.Filters.Empty() {
		t.Errorf("expected empty filters, got %+v", in.Filters)
	}
}

func TestParseExtraction_CodeFence(t *testing.T) {
	raw := "```json\n{\"is_gibberish\": false, \"filters\": {\"color\": \"sininen\"}, \"semantic_query\": \"\"}\n```"

	in, err := parseExtraction(raw)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if in.Filters.Color != "sininen" {
		t.Errorf("expected color sininen, got %q", in.Filters.Color)
	}
}

func TestParseExtraction_TrimsWhitespace(t *testing.T) {
	raw := `{"is_gibberish": false, "filters": {"color": "  vihreä  "}, "semantic_query": "  bilsa "}`

	in, err := parseExtraction(raw)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if in.Filters.Color != "vihreä" {
		t.Errorf("expected trimmed color, got %q", in.Filters.Color)
	}
	if in.SemanticQuery != "bilsa" {
		t.Errorf("expected trimmed semantic query, got %q", in.SemanticQuery)
	}
}

func TestParseExtraction_NotJSON(t *testing.T) {
	if _, err := parseExtraction("the query looks like a color search"); err == nil {
		t.Error("expected error for non-JSON output")
	}
}

func TestParseExtraction_WrongTypes(t *testing.T) {
	raw := `{"is_gibberish": "no", "filters": {}, "semantic_query": ""}`
	if _, err := parseExtraction(raw); err == nil {
		t.Error("expected error for mistyped fields")
	}
}

func TestParseExtraction_MissingFieldsNulledOut(t *testing.T) {
	in, err := parseExtraction(`{"is_gibberish": false}`)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !in.Filters.Empty() {
		t.Errorf("absent filters should be empty, got %+v", in.Filters)
	}
	if in.SemanticQuery != "" {
		t.Errorf("absent semantic query should be empty, got %q", in.SemanticQuery)
	}
}
