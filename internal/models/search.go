package models

import "time"

// Locale identifies one of the localized copies of the dataset.
type Locale string

const (
	LocaleFI Locale = "fi"
	LocaleEN Locale = "en"
	LocaleSV Locale = "sv"
)

// ParseLocale maps a client-supplied locale string to a supported locale,
// defaulting to Finnish.
func ParseLocale(s string) Locale {
	switch Locale(s) {
	case LocaleEN:
		return LocaleEN
	case LocaleSV:
		return LocaleSV
	default:
		return LocaleFI
	}
}

// Locales lists every supported locale.
func Locales() []Locale {
	return []Locale{LocaleFI, LocaleEN, LocaleSV}
}

// Record is one overall entry: a garment color tied to an institution and,
// optionally, a field of study, region and subject organization.
// Color and Institution are always present; the other fields may be empty
// and mean "no constraint" when used as filter inputs.
type Record struct {
	ID           int    `json:"id"`
	Color        string `json:"color"`
	Hex          string `json:"hex,omitempty"`
	Region       string `json:"region,omitempty"`
	Field        string `json:"field,omitempty"`
	Organization string `json:"organization,omitempty"`
	Institution  string `json:"institution"`
}

// Filters is the structured filter set extracted from a free-text query.
// An empty string means the filter is absent.
type Filters struct {
	Color       string `json:"color,omitempty"`
	Region      string `json:"region,omitempty"`
	Field       string `json:"field,omitempty"`
	Institution string `json:"institution,omitempty"`
}

// Empty reports whether no filter is set.
func (f Filters) Empty() bool {
	return f.Color == "" && f.Region == "" && f.Field == "" && f.Institution == ""
}

// Interpretation is the result of query understanding: structured filters
// plus the residual free text not consumed by filter extraction.
// When IsGibberish is true all filters are ignored downstream.
type Interpretation struct {
	IsGibberish   bool    `json:"is_gibberish"`
	Filters       Filters `json:"filters"`
	SemanticQuery string  `json:"semantic_query"`
}

type SearchRequest struct {
	Query  string `json:"query"`
	Locale string `json:"locale,omitempty"`

	RequestID string `json:"-"`
}

type SearchResponse struct {
	Results       []Record `json:"results"`
	TotalCount    int      `json:"totalCount"`
	Filters       Filters  `json:"filters"`
	SemanticQuery string   `json:"semanticQuery"`

	// Source records which pipeline stage produced the results
	// (deterministic, semantic, none). Not part of the wire format.
	Source string `json:"-"`
}

// QueryEvent is the analytics record written for slow searches.
type QueryEvent struct {
	QueryHash  string    `json:"query_hash"`
	Locale     string    `json:"locale"`
	Source     string    `json:"source"`
	Gibberish  bool      `json:"gibberish"`
	DurationMs float64   `json:"duration_ms"`
	TotalCount int64     `json:"total_count"`
	Severity   string    `json:"severity"`
	TraceID    string    `json:"trace_id"`
	Timestamp  time.Time `json:"timestamp"`
}
