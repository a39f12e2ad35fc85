package search

import (
	"context"
	"errors"
	"testing"

	"go.uber.org/zap"

	"github.com/haalarikone/haku-api/internal/config"
	"github.com/haalarikone/haku-api/internal/models"
	"github.com/haalarikone/haku-api/internal/taxonomy"
)

type fakeInterpreter struct {
	result *models.Interpretation
	err    error
	calls  int
}

func (f *fakeInterpreter) Interpret(_ context.Context, _ models.Locale, _ string) (*models.Interpretation, error) {
	f.calls++
	return f.result, f.err
}

type fakeStore struct {
	records []models.Record
	err     error
}

func (f *fakeStore) Records(models.Locale) ([]models.Record, error) {
	return f.records, f.err
}

type fakeSemantic struct {
	results []models.Record
	err     error
	calls   int
	limit   int
}

func (f *fakeSemantic) Search(_ context.Context, _ models.Locale, _ string, limit int) ([]models.Record, error) {
	f.calls++
	f.limit = limit
	return f.results, f.err
}

func testRecords() []models.Record {
	return []models.Record{
		{ID: 1, Color: "Vihreä", Region: "Tampere", Field: "Ympäristötekniikka", Organization: "TUrVoKe ry", Institution: "Tampereen yliopisto"},
		{ID: 2, Color: "Musta", Region: "Tampere", Field: "Fysiikka", Organization: "Hiukkanen ry", Institution: "Tampereen yliopisto"},
		{ID: 3, Color: "Punainen", Region: "Espoo", Field: "Fysiikka", Organization: "Fyysikkokilta ry", Institution: "Aalto-yliopisto"},
		{ID: 4, Color: "Punainen", Region: "Espoo", Field: "Konetekniikka", Organization: "Koneinsinöörikilta ry", Institution: "Aalto-yliopisto"},
	}
}

func newTestService(store *fakeStore, in *fakeInterpreter, sem SemanticSearcher) *Service {
	cfg := config.SearchConfig{MinQueryLength: 3, SemanticLimit: 100}
	return New(store, taxonomy.New(), in, sem, nil, cfg, zap.NewNop())
}

func TestSearchShortQueryReturnsEmptyWithoutInterpreting(t *testing.T) {
	in := &fakeInterpreter{}
	svc := newTestService(&fakeStore{records: testRecords()}, in, nil)

	resp, err := svc.Search(context.Background(), &models.SearchRequest{Query: "ab", Locale: "fi"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if resp.TotalCount != 0 || len(resp.Results) != 0 {
		t.Fatalf("expected empty response, got %+v", resp)
	}
	if resp.Results == nil {
		t.Fatal("results must be an empty slice, not nil")
	}
	if in.calls != 0 {
		t.Fatalf("interpreter should not run for short queries, got %d calls", in.calls)
	}
}

func TestSearchShortQueryCountsRunesNotBytes(t *testing.T) {
	// "älä" is three runes but five UTF-8 bytes.
	in := &fakeInterpreter{result: &models.Interpretation{IsGibberish: true}}
	svc := newTestService(&fakeStore{records: testRecords()}, in, nil)

	if _, err := svc.Search(context.Background(), &models.SearchRequest{Query: "älä", Locale: "fi"}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if in.calls != 1 {
		t.Fatalf("expected a three-rune query to reach the interpreter, got %d calls", in.calls)
	}
}

func TestSearchGibberishEchoesInterpretation(t *testing.T) {
	in := &fakeInterpreter{result: &models.Interpretation{
		IsGibberish:   true,
		SemanticQuery: "asdfgh",
	}}
	sem := &fakeSemantic{results: testRecords()}
	svc := newTestService(&fakeStore{records: testRecords()}, in, sem)

	resp, err := svc.Search(context.Background(), &models.SearchRequest{Query: "asdfgh", Locale: "fi"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if resp.TotalCount != 0 {
		t.Fatalf("gibberish must return no results, got %d", resp.TotalCount)
	}
	if resp.SemanticQuery != "asdfgh" {
		t.Fatalf("gibberish response must echo the interpretation, got %q", resp.SemanticQuery)
	}
	if sem.calls != 0 {
		t.Fatal("gibberish must not reach the semantic fallback")
	}
}

func TestSearchColorFilterMatchesDeterministically(t *testing.T) {
	in := &fakeInterpreter{result: &models.Interpretation{
		Filters: models.Filters{Color: "vihreä"},
	}}
	sem := &fakeSemantic{}
	svc := newTestService(&fakeStore{records: testRecords()}, in, sem)

	resp, err := svc.Search(context.Background(), &models.SearchRequest{Query: "vihreä", Locale: "fi"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if resp.TotalCount != 1 || resp.Results[0].ID != 1 {
		t.Fatalf("expected only record 1, got %+v", resp.Results)
	}
	if sem.calls != 0 {
		t.Fatal("deterministic matches must not trigger the fallback")
	}
}

func TestSearchRanksByRelevanceWhenSemanticQueryPresent(t *testing.T) {
	in := &fakeInterpreter{result: &models.Interpretation{
		Filters:       models.Filters{Color: "punainen"},
		SemanticQuery: "fysiikka",
	}}
	svc := newTestService(&fakeStore{records: testRecords()}, in, &fakeSemantic{})

	resp, err := svc.Search(context.Background(), &models.SearchRequest{Query: "punainen fysiikka", Locale: "fi"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if resp.TotalCount != 2 {
		t.Fatalf("expected two red records, got %d", resp.TotalCount)
	}
	if resp.Results[0].ID != 3 {
		t.Fatalf("field match must rank first, got record %d", resp.Results[0].ID)
	}
}

func TestSearchOrdersByInstitutionWithoutSemanticQuery(t *testing.T) {
	in := &fakeInterpreter{result: &models.Interpretation{
		Filters: models.Filters{Region: "Espoo"},
	}}
	svc := newTestService(&fakeStore{records: testRecords()}, in, &fakeSemantic{})

	resp, err := svc.Search(context.Background(), &models.SearchRequest{Query: "espoon haalarit", Locale: "fi"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if resp.TotalCount != 2 {
		t.Fatalf("expected two Espoo records, got %d", resp.TotalCount)
	}
	// Same institution: fall back to field order, Fysiikka before Konetekniikka.
	if resp.Results[0].ID != 3 || resp.Results[1].ID != 4 {
		t.Fatalf("unexpected order: %d, %d", resp.Results[0].ID, resp.Results[1].ID)
	}
}

func TestSearchFallsBackToSemanticOnEmptyDeterministicResult(t *testing.T) {
	in := &fakeInterpreter{result: &models.Interpretation{
		Filters:       models.Filters{Institution: "Helsingin yliopisto"},
		SemanticQuery: "helsingin yliopisto",
	}}
	sem := &fakeSemantic{results: []models.Record{
		{ID: 9, Color: "Sininen", Institution: "Helsingin yliopisto", Field: "Oikeustiede"},
	}}
	svc := newTestService(&fakeStore{records: testRecords()}, in, sem)

	resp, err := svc.Search(context.Background(), &models.SearchRequest{Query: "helsingin yliopisto", Locale: "fi"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if sem.calls != 1 {
		t.Fatalf("expected one fallback call, got %d", sem.calls)
	}
	if sem.limit != 100 {
		t.Fatalf("fallback must request the configured candidate limit, got %d", sem.limit)
	}
	if resp.TotalCount != 1 || resp.Results[0].ID != 9 {
		t.Fatalf("expected the fallback candidate, got %+v", resp.Results)
	}
}

func TestSearchFallbackCandidatesAreRefiltered(t *testing.T) {
	in := &fakeInterpreter{result: &models.Interpretation{
		Filters:       models.Filters{Color: "sininen", Institution: "Helsingin yliopisto"},
		SemanticQuery: "helsinki",
	}}
	sem := &fakeSemantic{results: []models.Record{
		{ID: 9, Color: "Sininen", Institution: "Helsingin yliopisto", Field: "Oikeustiede"},
		{ID: 10, Color: "Punainen", Institution: "Helsingin yliopisto", Field: "Lääketiede"},
	}}
	svc := newTestService(&fakeStore{records: testRecords()}, in, sem)

	resp, err := svc.Search(context.Background(), &models.SearchRequest{Query: "sininen helsinki", Locale: "fi"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if resp.TotalCount != 1 || resp.Results[0].ID != 9 {
		t.Fatalf("candidates violating the filters must be dropped, got %+v", resp.Results)
	}
}

func TestSearchSemanticFailureIsSoft(t *testing.T) {
	in := &fakeInterpreter{result: &models.Interpretation{
		Filters: models.Filters{Institution: "Helsingin yliopisto"},
	}}
	sem := &fakeSemantic{err: errors.New("index unreachable")}
	svc := newTestService(&fakeStore{records: testRecords()}, in, sem)

	resp, err := svc.Search(context.Background(), &models.SearchRequest{Query: "helsingin yliopisto", Locale: "fi"})
	if err != nil {
		t.Fatalf("fallback errors must not fail the request: %v", err)
	}
	if resp.TotalCount != 0 || len(resp.Results) != 0 {
		t.Fatalf("expected empty results, got %+v", resp.Results)
	}
	if resp.Results == nil {
		t.Fatal("results must be an empty slice, not nil")
	}
}

func TestSearchNilSemanticClientIsSoft(t *testing.T) {
	in := &fakeInterpreter{result: &models.Interpretation{
		Filters: models.Filters{Institution: "Helsingin yliopisto"},
	}}
	svc := newTestService(&fakeStore{records: testRecords()}, in, nil)

	resp, err := svc.Search(context.Background(), &models.SearchRequest{Query: "helsingin yliopisto", Locale: "fi"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if resp.TotalCount != 0 {
		t.Fatalf("expected empty results, got %d", resp.TotalCount)
	}
}

func TestSearchInterpreterErrorPropagates(t *testing.T) {
	in := &fakeInterpreter{err: errors.New("extractor down")}
	svc := newTestService(&fakeStore{records: testRecords()}, in, nil)

	if _, err := svc.Search(context.Background(), &models.SearchRequest{Query: "punainen haalari", Locale: "fi"}); err == nil {
		t.Fatal("expected interpretation failure to propagate")
	}
}

func TestSearchDatasetErrorPropagates(t *testing.T) {
	in := &fakeInterpreter{result: &models.Interpretation{}}
	svc := newTestService(&fakeStore{err: errors.New("dataset missing")}, in, nil)

	if _, err := svc.Search(context.Background(), &models.SearchRequest{Query: "punainen haalari", Locale: "fi"}); err == nil {
		t.Fatal("expected dataset failure to propagate")
	}
}
