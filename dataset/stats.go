package dataset

import (
	"cmp"
	"slices"
	"strings"

	"github.com/pevans/archetyper/character"
)

// Filter selects records for dashboard views. Empty fields match everything.
type Filter struct {
	Series     []string `json:"series,omitempty"`
	Archetypes []string `json:"archetypes,omitempty"`
	// Name matches case-insensitively anywhere in the character name.
	Name string `json:"name,omitempty"`
}

// Matches reports whether r passes the filter.
func (f Filter) Matches(r *character.Character) bool {
	if len(f.Series) > 0 && !slices.Contains(f.Series, r.Series) {
		return false
	}

	if len(f.Archetypes) > 0 {
		labels := character.ArchetypeList(r.ArchetypeLabel())
		if !slices.ContainsFunc(labels, func(l string) bool { return slices.Contains(f.Archetypes, l) }) {
			return false
		}
	}

	if f.Name != "" && !strings.Contains(strings.ToLower(r.Name), strings.ToLower(f.Name)) {
		return false
	}

	return true
}

// Apply returns the matching records in their original order.
func (f Filter) Apply(records []*character.Character) []*character.Character {
	out := make([]*character.Character, 0, len(records))
	for _, r := range records {
		if f.Matches(r) {
			out = append(out, r)
		}
	}
	return out
}

// SeriesList returns the distinct series in first-seen order.
func SeriesList(records []*character.Character) []string {
	series := []string{}
	for _, r := range records {
		if !slices.Contains(series, r.Series) {
			series = append(series, r.Series)
		}
	}
	return series
}

// ArchetypeCount is the number of characters of one series carrying one
// archetype.
type ArchetypeCount struct {
	Series    string `json:"series"`
	Archetype string `json:"archetype"`
	Count     int    `json:"count"`
}

// Distribution counts archetypes per series. Records without an archetype
// are not counted. Rows follow series first-seen order, then descending
// count, then label.
func Distribution(records []*character.Character) []ArchetypeCount {
	type key struct{ series, archetype string }
	counts := make(map[key]int)

	for _, r := range records {
		for _, label := range character.ArchetypeList(r.ArchetypeLabel()) {
			counts[key{r.Series, label}]++
		}
	}

	order := SeriesList(records)
	rank := make(map[string]int, len(order))
	for i, s := range order {
		rank[s] = i
	}

	out := make([]ArchetypeCount, 0, len(counts))
	for k, n := range counts {
		out = append(out, ArchetypeCount{Series: k.series, Archetype: k.archetype, Count: n})
	}

	slices.SortFunc(out, func(a, b ArchetypeCount) int {
		return cmp.Or(
			cmp.Compare(rank[a.Series], rank[b.Series]),
			cmp.Compare(b.Count, a.Count),
			cmp.Compare(a.Archetype, b.Archetype),
		)
	})

	return out
}

// SeriesDiversity is the number of distinct archetypes within a series.
type SeriesDiversity struct {
	Series     string `json:"series"`
	Archetypes int    `json:"archetypes"`
	Characters int    `json:"characters"`
}

// Diversity reports distinct archetype counts per series, in series
// first-seen order.
func Diversity(records []*character.Character) []SeriesDiversity {
	order := SeriesList(records)
	labels := make(map[string]map[string]struct{}, len(order))
	chars := make(map[string]int, len(order))

	for _, r := range records {
		chars[r.Series]++
		if labels[r.Series] == nil {
			labels[r.Series] = make(map[string]struct{})
		}
		for _, l := range character.ArchetypeList(r.ArchetypeLabel()) {
			labels[r.Series][l] = struct{}{}
		}
	}

	out := make([]SeriesDiversity, 0, len(order))
	for _, s := range order {
		out = append(out, SeriesDiversity{Series: s, Archetypes: len(labels[s]), Characters: chars[s]})
	}
	return out
}

// KeywordCount is how many records matched a keyword.
type KeywordCount struct {
	Keyword string `json:"keyword"`
	Count   int    `json:"count"`
}

// TopKeywords returns the n most frequent matched keywords, ties broken
// alphabetically. A non-positive n returns all of them.
func TopKeywords(records []*character.Character, n int) []KeywordCount {
	counts := make(map[string]int)
	for _, r := range records {
		for _, kw := range r.MatchedKeywords {
			counts[strings.ToLower(kw)]++
		}
	}

	out := make([]KeywordCount, 0, len(counts))
	for kw, c := range counts {
		out = append(out, KeywordCount{Keyword: kw, Count: c})
	}

	slices.SortFunc(out, func(a, b KeywordCount) int {
		return cmp.Or(cmp.Compare(b.Count, a.Count), cmp.Compare(a.Keyword, b.Keyword))
	})

	if n > 0 && len(out) > n {
		out = out[:n]
	}
	return out
}
