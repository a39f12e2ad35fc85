// Package rank reorders candidate records by weighted substring hits
// against leftover free text.
package rank

import (
	"sort"
	"strings"
	"unicode/utf8"

	"github.com/haalarikone/haku-api/internal/models"
)

// Field weights. Field of study dominates because leftover text after
// filter extraction is almost always a study-field word.
const (
	weightField        = 10
	weightInstitution  = 8
	weightRegion       = 5
	weightOrganization = 3
	weightColor        = 2
)

// minTokenLen is in runes; shorter tokens are noise.
const minTokenLen = 3

// ByRelevance returns a copy of records sorted by descending relevance to
// the semantic query. Ties keep their input order. When the query is blank
// or there is at most one candidate, the input is returned unchanged.
func ByRelevance(records []models.Record, semanticQuery string) []models.Record {
	if strings.TrimSpace(semanticQuery) == "" || len(records) <= 1 {
		return records
	}

	tokens := tokenize(semanticQuery)
	if len(tokens) == 0 {
		return records
	}

	out := make([]models.Record, len(records))
	copy(out, records)

	scores := make(map[int]int, len(out))
	for _, r := range out {
		scores[r.ID] = score(r, tokens)
	}

	sort.SliceStable(out, func(i, j int) bool {
		return scores[out[i].ID] > scores[out[j].ID]
	})
	return out
}

// ByInstitution returns a copy sorted alphabetically by institution, then
// field. This is the deterministic default ordering when no leftover text
// exists.
func ByInstitution(records []models.Record) []models.Record {
	out := make([]models.Record, len(records))
	copy(out, records)

	sort.SliceStable(out, func(i, j int) bool {
		a, b := strings.ToLower(out[i].Institution), strings.ToLower(out[j].Institution)
		if a != b {
			return a < b
		}
		return strings.ToLower(out[i].Field) < strings.ToLower(out[j].Field)
	})
	return out
}

func tokenize(query string) []string {
	var tokens []string
	for _, tok := range strings.Fields(strings.ToLower(query)) {
		if utf8.RuneCountInString(tok) >= minTokenLen {
			tokens = append(tokens, tok)
		}
	}
	return tokens
}

func score(r models.Record, tokens []string) int {
	field := strings.ToLower(r.Field)
	institution := strings.ToLower(r.Institution)
	region := strings.ToLower(r.Region)
	organization := strings.ToLower(r.Organization)
	color := strings.ToLower(r.Color)

	total := 0
	for _, tok := range tokens {
		if strings.Contains(field, tok) {
			total += weightField
		}
		if strings.Contains(institution, tok) {
			total += weightInstitution
		}
		if strings.Contains(region, tok) {
			total += weightRegion
		}
		if strings.Contains(organization, tok) {
			total += weightOrganization
		}
		if strings.Contains(color, tok) {
			total += weightColor
		}
	}
	return total
}
