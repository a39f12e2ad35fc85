// Package taxonomy groups the display names that appear in overall color
// fields into canonical color families, so that "tummanvihreä", "mint" and
// "grön" all resolve to the same key.
package taxonomy

import "strings"

// Entry describes one canonical color family.
type Entry struct {
	Key    string
	Hex    string
	Main   []string
	Shades []string
}

// entries is the static color table. Main holds the family name in each
// locale; Shades holds the known shade and variant names. Every name must
// map back to exactly one key.
var entries = []Entry{
	{
		Key:    "black",
		Hex:    "#000000",
		Main:   []string{"musta", "black", "svart"},
		Shades: []string{"grafiitti", "graphite"},
	},
	{
		Key:    "white",
		Hex:    "#FFFFFF",
		Main:   []string{"valkoinen", "white", "vit"},
		Shades: []string{"luonnonvalkoinen", "kerma", "cream"},
	},
	{
		Key:    "red",
		Hex:    "#E30613",
		Main:   []string{"punainen", "red", "röd"},
		Shades: []string{"kirkkaanpunainen", "tummanpunainen", "helakanpunainen"},
	},
	{
		Key:    "bordeaux",
		Hex:    "#800020",
		Main:   []string{"bordeaux", "viininpunainen", "vinröd"},
		Shades: []string{"burgundi", "burgundy"},
	},
	{
		Key:    "blue",
		Hex:    "#0057B7",
		Main:   []string{"sininen", "blue", "blå"},
		Shades: []string{"tummansininen", "vaaleansininen", "laivastonsininen", "navy", "kuninkaansininen", "royal"},
	},
	{
		Key:    "green",
		Hex:    "#008C45",
		Main:   []string{"vihreä", "green", "grön"},
		Shades: []string{"tummanvihreä", "vaaleanvihreä", "lime", "minttu", "mint", "oliivi", "olive", "metsänvihreä"},
	},
	{
		Key:    "yellow",
		Hex:    "#FFD500",
		Main:   []string{"keltainen", "yellow", "gul"},
		Shades: []string{"sitruunankeltainen", "kullankeltainen", "kulta", "gold", "guld"},
	},
	{
		Key:    "orange",
		Hex:    "#FF7900",
		Main:   []string{"oranssi", "orange"},
		Shades: []string{"aprikoosi", "persikka", "peach"},
	},
	{
		Key:    "purple",
		Hex:    "#6D28D9",
		Main:   []string{"violetti", "purple", "lila"},
		Shades: []string{"liila", "tummanvioletti", "laventeli", "lavender"},
	},
	{
		Key:    "pink",
		Hex:    "#F472B6",
		Main:   []string{"pinkki", "pink", "rosa"},
		Shades: []string{"vaaleanpunainen", "roosa", "fuksia", "fuchsia", "magenta"},
	},
	{
		Key:    "brown",
		Hex:    "#8B4513",
		Main:   []string{"ruskea", "brown", "brun"},
		Shades: []string{"beige", "khaki", "tummanruskea"},
	},
	{
		Key:    "grey",
		Hex:    "#808080",
		Main:   []string{"harmaa", "grey", "grå"},
		Shades: []string{"gray", "hopea", "silver", "tummanharmaa", "vaaleanharmaa"},
	},
	{
		Key:    "turquoise",
		Hex:    "#40E0D0",
		Main:   []string{"turkoosi", "turquoise", "turkos"},
		Shades: []string{"syaani", "cyan", "petrooli", "petrol", "teal"},
	},
}

// synonyms maps words that never appear in color fields but show up in
// queries (Finnish plural and partitive forms, colloquial variants) to
// canonical keys.
var synonyms = map[string]string{
	"mustat":     "black",
	"mustaa":     "black",
	"valkoiset":  "white",
	"valkoista":  "white",
	"valkea":     "white",
	"punaiset":   "red",
	"punaista":   "red",
	"siniset":    "blue",
	"sinistä":    "blue",
	"vihreät":    "green",
	"vihreää":    "green",
	"vihree":     "green",
	"keltaiset":  "yellow",
	"keltaista":  "yellow",
	"oranssit":   "orange",
	"oranssia":   "orange",
	"violetit":   "purple",
	"violettia":  "purple",
	"pinkit":     "pink",
	"pinkkiä":    "pink",
	"ruskeat":    "brown",
	"ruskeaa":    "brown",
	"harmaat":    "grey",
	"harmaata":   "grey",
	"turkoosit":  "turquoise",
	"turkoosia":  "turquoise",
	"viininpunaiset": "bordeaux",
}

// Taxonomy provides case-insensitive lookups over the color table.
type Taxonomy struct {
	byKey     map[string]Entry
	nameToKey map[string]string
}

func New() *Taxonomy {
	t := &Taxonomy{
		byKey:     make(map[string]Entry, len(entries)),
		nameToKey: make(map[string]string),
	}
	for _, e := range entries {
		t.byKey[e.Key] = e
		for _, name := range e.Main {
			t.nameToKey[strings.ToLower(name)] = e.Key
		}
		for _, name := range e.Shades {
			t.nameToKey[strings.ToLower(name)] = e.Key
		}
	}
	return t
}

// Canonicalize resolves a color term (name, shade or synonym) to its
// canonical key. It is strict: an unknown term returns ok=false, it never
// falls through to a best-effort match.
func (t *Taxonomy) Canonicalize(term string) (string, bool) {
	lowered := strings.ToLower(strings.TrimSpace(term))
	if lowered == "" {
		return "", false
	}
	if key, ok := t.nameToKey[lowered]; ok {
		return key, true
	}
	if key, ok := synonyms[lowered]; ok {
		return key, true
	}
	if _, ok := t.byKey[lowered]; ok {
		return lowered, true
	}
	return "", false
}

// IsColorWord reports whether the term resolves to any color family.
func (t *Taxonomy) IsColorWord(term string) bool {
	_, ok := t.Canonicalize(term)
	return ok
}

// Variants returns every main and shade name of the family. The slice is a
// copy; callers may mutate it.
func (t *Taxonomy) Variants(key string) []string {
	e, ok := t.byKey[key]
	if !ok {
		return nil
	}
	out := make([]string, 0, len(e.Main)+len(e.Shades))
	out = append(out, e.Main...)
	out = append(out, e.Shades...)
	return out
}

// Entry returns the full entry for a canonical key.
func (t *Taxonomy) Entry(key string) (Entry, bool) {
	e, ok := t.byKey[key]
	return e, ok
}

// Keys returns the canonical keys in table order.
func (t *Taxonomy) Keys() []string {
	out := make([]string, 0, len(entries))
	for _, e := range entries {
		out = append(out, e.Key)
	}
	return out
}
