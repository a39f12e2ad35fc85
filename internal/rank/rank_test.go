package rank

import (
	"testing"

	"github.com/haalarikone/haku-api/internal/models"
)

func TestByRelevance_EmptyQueryNoOp(t *testing.T) {
	records := []models.Record{
		{ID: 1, Field: "Fysiikka"},
		{ID: 2, Field: "Biologia"},
	}

	for _, q := range []string{"", "   ", "\t"} {
		got := ByRelevance(records, q)
		if len(got) != 2 || got[0].ID != 1 || got[1].ID != 2 {
			t.Errorf("ByRelevance(%q) should be a no-op, got %+v", q, got)
		}
	}
}

func TestByRelevance_SingleCandidateNoOp(t *testing.T) {
	records := []models.Record{{ID: 1, Field: "Fysiikka"}}
	got := ByRelevance(records, "fysiikka")
	if len(got) != 1 || got[0].ID != 1 {
		t.Errorf("single candidate should pass through, got %+v", got)
	}
}

func TestByRelevance_FieldOutweighsInstitution(t *testing.T) {
	records := []models.Record{
		{ID: 1, Institution: "Fysiikan korkeakoulu"},
		{ID: 2, Field: "Fysiikka", Institution: "Aalto-yliopisto"},
	}

	got := ByRelevance(records, "fysiikka")
	if got[0].ID != 2 {
		t.Errorf("field hit (+10) should outrank institution hit (+8), got order %d, %d", got[0].ID, got[1].ID)
	}
}

func TestByRelevance_WeightsAccumulateAcrossTokens(t *testing.T) {
	records := []models.Record{
		{ID: 1, Field: "Fysiikka"},                           // 10
		{ID: 2, Field: "Fysiikka", Region: "Uusimaa, Espoo"}, // 10 + 5
		{ID: 3, Color: "Punainen"},                           // 0
	}

	got := ByRelevance(records, "fysiikka espoo")
	if got[0].ID != 2 || got[1].ID != 1 || got[2].ID != 3 {
		t.Errorf("expected order [2 1 3], got [%d %d %d]", got[0].ID, got[1].ID, got[2].ID)
	}
}

func TestByRelevance_ShortTokensDiscarded(t *testing.T) {
	records := []models.Record{
		{ID: 1, Field: "IT"},
		{ID: 2, Field: "Biologia"},
	}

	// "it" is two runes and must be dropped; with no usable token the
	// order is unchanged.
	got := ByRelevance(records, "it")
	if got[0].ID != 1 || got[1].ID != 2 {
		t.Errorf("short-only query should not reorder, got [%d %d]", got[0].ID, got[1].ID)
	}
}

func TestByRelevance_RuneLengthNotByteLength(t *testing.T) {
	records := []models.Record{
		{ID: 1, Field: "Matematiikka"},
		{ID: 2, Field: "Sähkötekniikka"},
	}

	// "sähkö" is 5 runes; it must count as a usable token even though
	// its byte length differs.
	got := ByRelevance(records, "sähkö")
	if got[0].ID != 2 {
		t.Errorf("expected record 2 first, got %d", got[0].ID)
	}
}

func TestByRelevance_TiesKeepInputOrder(t *testing.T) {
	records := []models.Record{
		{ID: 10, Field: "Fysiikka", Institution: "A"},
		{ID: 11, Field: "Fysiikka", Institution: "B"},
		{ID: 12, Field: "Fysiikka", Institution: "C"},
		{ID: 13, Field: "Kemia", Institution: "D"},
	}

	got := ByRelevance(records, "fysiikka")
	if got[0].ID != 10 || got[1].ID != 11 || got[2].ID != 12 {
		t.Errorf("tied candidates must keep input order, got [%d %d %d]", got[0].ID, got[1].ID, got[2].ID)
	}
	if got[3].ID != 13 {
		t.Errorf("unmatched candidate should sink, got %d last is %d", 13, got[3].ID)
	}
}

func TestByRelevance_InputNotMutated(t *testing.T) {
	records := []models.Record{
		{ID: 1, Field: "Kemia"},
		{ID: 2, Field: "Fysiikka"},
	}

	_ = ByRelevance(records, "fysiikka")
	if records[0].ID != 1 || records[1].ID != 2 {
		t.Error("input slice must not be reordered in place")
	}
}

func TestByRelevance_CaseInsensitive(t *testing.T) {
	records := []models.Record{
		{ID: 1, Field: "Kemia"},
		{ID: 2, Field: "FYSIIKKA"},
	}

	got := ByRelevance(records, "Fysiikka")
	if got[0].ID != 2 {
		t.Errorf("matching must be case-insensitive, got %d first", got[0].ID)
	}
}

func TestByInstitution_AlphabeticalThenField(t *testing.T) {
	records := []models.Record{
		{ID: 1, Institution: "Turun yliopisto", Field: "Kemia"},
		{ID: 2, Institution: "Aalto-yliopisto", Field: "Tekniikka"},
		{ID: 3, Institution: "Aalto-yliopisto", Field: "Fysiikka"},
	}

	got := ByInstitution(records)
	if got[0].ID != 3 || got[1].ID != 2 || got[2].ID != 1 {
		t.Errorf("expected order [3 2 1], got [%d %d %d]", got[0].ID, got[1].ID, got[2].ID)
	}
}

func TestByInstitution_InputNotMutated(t *testing.T) {
	records := []models.Record{
		{ID: 1, Institution: "Z"},
		{ID: 2, Institution: "A"},
	}

	_ = ByInstitution(records)
	if records[0].ID != 1 {
		t.Error("input slice must not be reordered in place")
	}
}
