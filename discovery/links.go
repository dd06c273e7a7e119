package discovery

import (
	"context"
	"fmt"
	"net/url"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/pevans/archetyper/logger"
	"github.com/pevans/archetyper/scraper"
)

// DiscoverLinks fetches a source's listing page and returns its qualifying
// character links in first-seen order.
func (s *Scraper) DiscoverLinks(ctx context.Context, src scraper.SourceConfig) ([]string, error) {
	if src.DiscoveryMode() == scraper.ModeFeed {
		data, err := s.getter.Get(ctx, src.URL)
		if err != nil {
			return nil, fmt.Errorf("failed to fetch feed: %w", err)
		}
		return FeedLinks(data, src, s.config)
	}

	doc, err := FetchHTML(ctx, s.getter, src.URL)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch listing page: %w", err)
	}

	return FindCharacterLinks(doc, src, s.config, s.log), nil
}

// FindCharacterLinks collects qualifying links from the sections named by
// src.SectionIDs. Each section runs from its anchor to the next top- or
// second-level heading. With no section ids the whole content container is
// scanned.
func FindCharacterLinks(
	doc *goquery.Document,
	src scraper.SourceConfig,
	cfg scraper.ExtractConfig,
	log logger.Logger,
) []string {
	cfg = cfg.WithDefaults()
	base, err := url.Parse(src.Domain)
	if err != nil {
		log.Warn("Invalid source domain", logger.String("source", src.Label), logger.Err(err))
		return []string{}
	}

	set := newLinkSet()
	q := qualifier{base: base, prefix: cfg.ArticlePrefix, denylist: src.PathDenylist()}
	collect := func(sel *goquery.Selection) {
		sel.Filter("a[href]").AddSelection(sel.Find("a[href]")).Each(func(_ int, a *goquery.Selection) {
			href, _ := a.Attr("href")
			if link, ok := q.qualify(href); ok {
				set.add(link)
			}
		})
	}

	if len(src.SectionIDs) == 0 {
		collect(contentContainer(doc, cfg.ContentSelectors))
		return set.list()
	}

	for _, id := range src.SectionIDs {
		start := findSection(doc, id)
		if start == nil {
			log.Warn("Section anchor not found",
				logger.String("source", src.Label),
				logger.String("section", id),
			)
			continue
		}

		scanned := 0
		for sib := start.Next(); sib.Length() > 0 && scanned < cfg.MaxSectionScan; sib = sib.Next() {
			scanned++
			if isSectionBoundary(sib) {
				break
			}
			collect(sib)
		}
	}

	return set.list()
}

// findSection locates the element with the given id and returns the block the
// section scan starts after: the enclosing heading, or its wrapper div on
// newer wiki skins.
func findSection(doc *goquery.Document, id string) *goquery.Selection {
	// Ids often contain parentheses and other characters that would need
	// escaping in a selector.
	anchor := doc.Find("[id]").FilterFunction(func(_ int, s *goquery.Selection) bool {
		v, _ := s.Attr("id")
		return v == id
	}).First()
	if anchor.Length() == 0 {
		return nil
	}

	return sectionStart(anchor)
}

func sectionStart(el *goquery.Selection) *goquery.Selection {
	start := el
	if !isHeading(el) {
		if h := el.Closest("h1, h2, h3, h4, h5, h6"); h.Length() > 0 {
			start = h
		}
	}
	if parent := start.Parent(); parent.HasClass("mw-heading") {
		start = parent
	}
	return start
}

func isHeading(sel *goquery.Selection) bool {
	switch goquery.NodeName(sel) {
	case "h1", "h2", "h3", "h4", "h5", "h6":
		return true
	}
	return sel.HasClass("mw-heading")
}

func isSectionBoundary(sel *goquery.Selection) bool {
	switch goquery.NodeName(sel) {
	case "h1", "h2", "h3":
		return true
	}
	return sel.HasClass("mw-heading") && sel.ChildrenFiltered("h1, h2, h3").Length() > 0
}

func contentContainer(doc *goquery.Document, selectors []string) *goquery.Selection {
	for _, sel := range selectors {
		if found := doc.Find(sel).First(); found.Length() > 0 {
			return found
		}
	}
	if body := doc.Find("body"); body.Length() > 0 {
		return body
	}
	return doc.Selection
}

// qualifier decides whether an href is a character article link.
type qualifier struct {
	base     *url.URL
	prefix   string
	denylist []string
}

// qualify resolves href against the source domain and returns the absolute
// article URL with fragment and query stripped.
func (q qualifier) qualify(href string) (string, bool) {
	href = strings.TrimSpace(href)
	if href == "" || strings.HasPrefix(href, "#") {
		return "", false
	}

	ref, err := url.Parse(href)
	if err != nil {
		return "", false
	}
	u := q.base.ResolveReference(ref)

	if u.Scheme != "http" && u.Scheme != "https" {
		return "", false
	}
	if !strings.EqualFold(u.Hostname(), q.base.Hostname()) {
		return "", false
	}
	if !strings.HasPrefix(u.Path, q.prefix) || u.Path == q.prefix {
		return "", false
	}
	for _, marker := range q.denylist {
		if strings.Contains(u.Path, marker) {
			return "", false
		}
	}

	u.Fragment = ""
	u.RawFragment = ""
	u.RawQuery = ""
	return u.String(), true
}

// linkSet keeps unique links in insertion order.
type linkSet struct {
	seen  map[string]struct{}
	links []string
}

func newLinkSet() *linkSet {
	return &linkSet{seen: make(map[string]struct{}), links: []string{}}
}

func (s *linkSet) add(link string) {
	if _, ok := s.seen[link]; ok {
		return
	}
	s.seen[link] = struct{}{}
	s.links = append(s.links, link)
}

func (s *linkSet) list() []string {
	return s.links
}
