// Package archetype infers a character archetype by keyword scoring over free
// text. Scores are substring presence counts, so results are deterministic
// and can be audited against the table.
package archetype

import (
	"errors"
	"fmt"
	"strings"
)

// Category is one archetype label and the keywords that vote for it.
type Category struct {
	Label    string   `yaml:"label" json:"label"`
	Keywords []string `yaml:"keywords" json:"keywords"`
}

// Table is an ordered keyword table. Category order is the tie-break order.
type Table struct {
	Name         string     `yaml:"name" json:"name"`
	Categories   []Category `yaml:"categories" json:"categories"`
	ContextClues []string   `yaml:"context_clues,omitempty" json:"context_clues,omitempty"`
	NoMatch      string     `yaml:"no_match" json:"no_match"`
}

// Labels returns the category labels in table order.
func (t Table) Labels() []string {
	labels := make([]string, 0, len(t.Categories))
	for _, c := range t.Categories {
		labels = append(labels, c.Label)
	}
	return labels
}

// Has reports whether label is a category of the table.
func (t Table) Has(label string) bool {
	for _, c := range t.Categories {
		if c.Label == label {
			return true
		}
	}
	return false
}

// Validate checks that the table can be used for classification.
func (t Table) Validate() error {
	if len(t.Categories) == 0 {
		return errors.New("archetype table has no categories")
	}
	seen := make(map[string]struct{}, len(t.Categories))
	for _, c := range t.Categories {
		if c.Label == "" {
			return errors.New("archetype category label is empty")
		}
		if _, ok := seen[c.Label]; ok {
			return fmt.Errorf("duplicate archetype label: %s", c.Label)
		}
		seen[c.Label] = struct{}{}
		if len(c.Keywords) == 0 {
			return fmt.Errorf("archetype %s has no keywords", c.Label)
		}
	}
	if t.NoMatch != "" && t.NoMatch != Unknown {
		return fmt.Errorf("no-match label must be empty or %q, got %q", Unknown, t.NoMatch)
	}
	if _, ok := seen[t.NoMatch]; ok {
		return fmt.Errorf("no-match label %s collides with a category", t.NoMatch)
	}
	return nil
}

// Score is the keyword hit count of one category.
type Score struct {
	Label string `json:"label"`
	Hits  int    `json:"hits"`
}

// Result is the outcome of one classification. Archetype holds the winning
// label, or the table's no-match label when no category scored.
type Result struct {
	Archetype string
	Score     int
	Matched   []string
	Scores    []Score
	Gated     bool
}

// Inferred reports whether a real category won.
func (r Result) Inferred() bool {
	return r.Score > 0
}

// Classifier scores text against one table.
type Classifier struct {
	table Table
	clues []string
	cats  []Category
}

// NewClassifier creates a classifier for table. Keywords and clues are
// matched case-insensitively.
func NewClassifier(table Table) *Classifier {
	cats := make([]Category, 0, len(table.Categories))
	for _, c := range table.Categories {
		kws := make([]string, 0, len(c.Keywords))
		for _, kw := range c.Keywords {
			kw = strings.ToLower(strings.TrimSpace(kw))
			if kw != "" {
				kws = append(kws, kw)
			}
		}
		cats = append(cats, Category{Label: c.Label, Keywords: kws})
	}

	clues := make([]string, 0, len(table.ContextClues))
	for _, clue := range table.ContextClues {
		clue = strings.ToLower(strings.TrimSpace(clue))
		if clue != "" {
			clues = append(clues, clue)
		}
	}

	return &Classifier{table: table, clues: clues, cats: cats}
}

// Table returns the table the classifier was built from.
func (c *Classifier) Table() Table {
	return c.table
}

// Classify returns the category with the most keyword hits in text. Each
// keyword counts once no matter how often it occurs. Ties go to the category
// listed first.
func (c *Classifier) Classify(text string) Result {
	text = strings.ToLower(text)

	if len(c.clues) > 0 && !containsAny(text, c.clues) {
		return Result{Archetype: c.table.NoMatch, Gated: true}
	}

	scores := make([]Score, 0, len(c.cats))
	best := -1
	var bestMatched []string

	for i, cat := range c.cats {
		var matched []string
		for _, kw := range cat.Keywords {
			if strings.Contains(text, kw) {
				matched = append(matched, kw)
			}
		}
		scores = append(scores, Score{Label: cat.Label, Hits: len(matched)})

		if best < 0 || len(matched) > scores[best].Hits {
			best = i
			bestMatched = matched
		}
	}

	if best < 0 || scores[best].Hits == 0 {
		return Result{Archetype: c.table.NoMatch, Scores: scores}
	}

	return Result{
		Archetype: scores[best].Label,
		Score:     scores[best].Hits,
		Matched:   bestMatched,
		Scores:    scores,
	}
}

func containsAny(text string, needles []string) bool {
	for _, n := range needles {
		if strings.Contains(text, n) {
			return true
		}
	}
	return false
}
