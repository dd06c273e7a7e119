package character

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

// Character represents one scraped character detail page. Records are built
// once by the page extractor and never modified after they join a dataset.
type Character struct {
	Name            string   `json:"name"`
	Series          string   `json:"series"`
	WikiURL         string   `json:"wiki_url"`
	Powers          *string  `json:"powers,omitempty"`
	Archetype       *string  `json:"archetype,omitempty"`
	MatchedKeywords []string `json:"matched_keywords,omitempty"`
	DominantColors  []RGB    `json:"dominant_colors"`
	ImageURL        string   `json:"image_url"`
	Color           *string  `json:"color,omitempty"`
	Affiliations    *string  `json:"affiliations,omitempty"`
}

// RGB is an 8-bit colour triple.
type RGB struct {
	R uint8 `json:"r"`
	G uint8 `json:"g"`
	B uint8 `json:"b"`
}

// String formats the triple the way the dataset stores it: rgb(R, G, B).
func (c RGB) String() string {
	return fmt.Sprintf("rgb(%d, %d, %d)", c.R, c.G, c.B)
}

// Hex returns the CSS hex form, e.g. #f06292.
func (c RGB) Hex() string {
	return fmt.Sprintf("#%02x%02x%02x", c.R, c.G, c.B)
}

var rgbPattern = regexp.MustCompile(`rgb\((\d+),\s*(\d+),\s*(\d+)\)`)

// FormatColors joins colours into a single cell value.
func FormatColors(colors []RGB) string {
	parts := make([]string, 0, len(colors))
	for _, c := range colors {
		parts = append(parts, c.String())
	}
	return strings.Join(parts, ", ")
}

// ParseColors extracts every rgb(r, g, b) occurrence from a cell value, in
// order. Components outside 0-255 are skipped.
func ParseColors(cell string) []RGB {
	matches := rgbPattern.FindAllStringSubmatch(cell, -1)
	colors := make([]RGB, 0, len(matches))
	for _, m := range matches {
		r, errR := strconv.ParseUint(m[1], 10, 8)
		g, errG := strconv.ParseUint(m[2], 10, 8)
		b, errB := strconv.ParseUint(m[3], 10, 8)
		if errR != nil || errG != nil || errB != nil {
			continue
		}
		colors = append(colors, RGB{R: uint8(r), G: uint8(g), B: uint8(b)})
	}
	return colors
}

// ArchetypeLabel returns the archetype or an empty string when none was
// inferred.
func (c *Character) ArchetypeLabel() string {
	if c.Archetype == nil {
		return ""
	}
	return *c.Archetype
}

// ArchetypeList splits a comma-joined archetype cell into labels. The output
// file uses this shape so a dashboard can carry several labels per row.
func ArchetypeList(cell string) []string {
	labels := []string{}
	for part := range strings.SplitSeq(cell, ",") {
		part = strings.TrimSpace(part)
		if part != "" {
			labels = append(labels, part)
		}
	}
	return labels
}

// StringPtr returns a pointer to s, or nil if s is empty.
func StringPtr(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

// Deref returns the pointed-to string or "".
func Deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
