package discovery

import (
	"bytes"
	"context"
	"fmt"
	"net/url"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/pevans/archetyper/archetype"
	"github.com/pevans/archetyper/character"
	"github.com/pevans/archetyper/fetch"
	"github.com/pevans/archetyper/logger"
	"github.com/pevans/archetyper/scraper"
)

// ColorExtractor computes a dominant-colour palette for an image URL. It
// returns an empty slice rather than an error.
type ColorExtractor interface {
	Extract(ctx context.Context, imageURL string, n int) []character.RGB
}

// Scraper discovers character links and extracts character records.
type Scraper struct {
	getter     fetch.Getter
	colors     ColorExtractor
	classifier *archetype.Classifier
	config     scraper.ExtractConfig
	log        logger.Logger
}

// NewScraper creates a scraper. Unset extraction settings take their
// defaults.
func NewScraper(
	getter fetch.Getter,
	colors ColorExtractor,
	classifier *archetype.Classifier,
	config scraper.ExtractConfig,
	log logger.Logger,
) *Scraper {
	return &Scraper{
		getter:     getter,
		colors:     colors,
		classifier: classifier,
		config:     config.WithDefaults(),
		log:        log,
	}
}

// FetchHTML fetches a page and parses it with goquery.
func FetchHTML(ctx context.Context, getter fetch.Getter, pageURL string) (*goquery.Document, error) {
	data, err := getter.Get(ctx, pageURL)
	if err != nil {
		return nil, err
	}

	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("failed to parse HTML: %w", err)
	}

	return doc, nil
}

// ScrapeCharacter fetches a detail page and extracts one record. Only the
// page fetch can fail; every field falls back to an empty value.
func (s *Scraper) ScrapeCharacter(ctx context.Context, pageURL, series string) (*character.Character, error) {
	doc, err := FetchHTML(ctx, s.getter, pageURL)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch character page: %w", err)
	}

	return s.ExtractCharacter(ctx, doc, pageURL, series), nil
}

// ExtractCharacter builds a record from a parsed detail page.
func (s *Scraper) ExtractCharacter(ctx context.Context, doc *goquery.Document, pageURL, series string) *character.Character {
	record := &character.Character{
		Name:           extractName(doc, s.config.TitleSelectors, pageURL),
		Series:         series,
		WikiURL:        pageURL,
		Powers:         character.StringPtr(extractPowers(doc, s.config.PowerLabels, s.config.MaxPowerElements, s.config.MaxSectionScan)),
		ImageURL:       extractImage(doc, s.config.ImageSelectors, pageURL),
		DominantColors: []character.RGB{},
	}

	infobox := ReadInfobox(doc)
	record.Color = character.StringPtr(infobox.Lookup("color", "colour"))
	record.Affiliations = character.StringPtr(infobox.Lookup("affiliation"))

	result := s.classifier.Classify(VisibleText(doc.Find("body")))
	record.Archetype = character.StringPtr(result.Archetype)
	if result.Inferred() {
		record.MatchedKeywords = result.Matched
	}

	if record.ImageURL != "" && s.colors != nil {
		record.DominantColors = s.colors.Extract(ctx, record.ImageURL, s.config.PaletteSize)
	}

	return record
}

// extractName returns the first non-empty title heading, falling back to the
// page slug.
func extractName(doc *goquery.Document, selectors []string, pageURL string) string {
	for _, sel := range selectors {
		name := normalizeSpace(VisibleText(doc.Find(sel).First()))
		if name != "" {
			return name
		}
	}
	return SlugName(pageURL)
}

// extractPowers collects the text under every heading whose title contains
// one of labels.
func extractPowers(doc *goquery.Document, labels []string, maxElems, maxScan int) string {
	var parts []string

	doc.Find("h2, h3, h4").Each(func(_ int, h *goquery.Selection) {
		if !matchesLabel(VisibleText(h), labels) {
			return
		}
		if text := sectionText(h, maxElems, maxScan); text != "" {
			parts = append(parts, text)
		}
	})

	return CleanPowers(strings.Join(parts, ", "))
}

func matchesLabel(heading string, labels []string) bool {
	heading = strings.ToLower(heading)
	for _, label := range labels {
		if label != "" && strings.Contains(heading, strings.ToLower(label)) {
			return true
		}
	}
	return false
}

// sectionText gathers up to maxElems paragraph or list-item texts following
// heading, stopping at the next heading.
func sectionText(heading *goquery.Selection, maxElems, maxScan int) string {
	var texts []string

	add := func(el *goquery.Selection) bool {
		if t := VisibleText(el); t != "" {
			texts = append(texts, t)
		}
		return len(texts) < maxElems
	}

	scanned := 0
	for sib := sectionStart(heading).Next(); sib.Length() > 0 && scanned < maxScan; sib = sib.Next() {
		scanned++
		if isHeading(sib) {
			break
		}

		more := true
		switch goquery.NodeName(sib) {
		case "p", "li":
			more = add(sib)
		default:
			sib.Find("p, li").EachWithBreak(func(_ int, el *goquery.Selection) bool {
				more = add(el)
				return more
			})
		}
		if !more {
			break
		}
	}

	return strings.Join(texts, " ")
}

// extractImage returns the first usable image source across selectors, in
// priority order. A lazy-load data-src wins over src.
func extractImage(doc *goquery.Document, selectors []string, pageURL string) string {
	for _, sel := range selectors {
		found := ""
		doc.Find(sel).EachWithBreak(func(_ int, s *goquery.Selection) bool {
			img := s
			if goquery.NodeName(s) != "img" {
				if inner := s.Find("img").First(); inner.Length() > 0 {
					img = inner
				}
			}
			if src := imageSource(img); src != "" {
				found = resolveAgainst(pageURL, src)
				return false
			}
			return true
		})
		if found != "" {
			return found
		}
	}
	return ""
}

func imageSource(img *goquery.Selection) string {
	for _, attr := range []string{"data-src", "src"} {
		v, ok := img.Attr(attr)
		v = strings.TrimSpace(v)
		// Lazy-loading placeholders are inline data URIs.
		if ok && v != "" && !strings.HasPrefix(v, "data:") {
			return v
		}
	}
	return ""
}

func resolveAgainst(base, ref string) string {
	b, err := url.Parse(base)
	if err != nil {
		return ref
	}
	r, err := url.Parse(ref)
	if err != nil {
		return ref
	}
	return b.ResolveReference(r).String()
}
