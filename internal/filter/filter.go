// Package filter applies a structured filter set to record collections with
// case-insensitive substring semantics.
package filter

import (
	"strings"

	"github.com/haalarikone/haku-api/internal/models"
	"github.com/haalarikone/haku-api/internal/taxonomy"
)

// Apply returns the records matching every present filter. A gibberish
// interpretation matches nothing without scanning. A color term that cannot
// be canonicalized also matches nothing: an unrecognized color must not
// silently fall through to "no filter".
func Apply(records []models.Record, in *models.Interpretation, tax *taxonomy.Taxonomy) []models.Record {
	if in.IsGibberish {
		return nil
	}

	var colorVariants []string
	if in.Filters.Color != "" {
		key, ok := tax.Canonicalize(in.Filters.Color)
		if !ok {
			return nil
		}
		colorVariants = tax.Variants(key)
	}

	var out []models.Record
	for _, r := range records {
		if colorVariants != nil && !matchesColor(r.Color, colorVariants) {
			continue
		}
		if !matchesField(r.Region, in.Filters.Region) {
			continue
		}
		if !matchesField(r.Field, in.Filters.Field) {
			continue
		}
		if !matchesField(r.Institution, in.Filters.Institution) {
			continue
		}
		out = append(out, r)
	}
	return out
}

// matchesColor reports whether any known variant of the requested color
// family appears in the record's color field.
func matchesColor(recordColor string, variants []string) bool {
	lowered := strings.ToLower(recordColor)
	for _, v := range variants {
		if strings.Contains(lowered, strings.ToLower(v)) {
			return true
		}
	}
	return false
}

// matchesField implements the shared substring rule: absent filter means no
// constraint, absent record value never matches a present filter.
func matchesField(recordValue, filterValue string) bool {
	if filterValue == "" {
		return true
	}
	if recordValue == "" {
		return false
	}
	return strings.Contains(strings.ToLower(recordValue), strings.ToLower(filterValue))
}
