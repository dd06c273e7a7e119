package discovery

import (
	"bytes"
	"fmt"
	"net/url"

	"github.com/mmcdole/gofeed"
	"github.com/pevans/archetyper/scraper"
)

// FeedLinks parses an RSS or Atom feed and returns the item links that
// qualify as character articles on the source's wiki. gofeed normalizes both
// formats, so the item link comes from <link> or <link rel="alternate">.
func FeedLinks(data []byte, src scraper.SourceConfig, cfg scraper.ExtractConfig) ([]string, error) {
	cfg = cfg.WithDefaults()

	base, err := url.Parse(src.Domain)
	if err != nil {
		return nil, fmt.Errorf("invalid source domain: %w", err)
	}

	feed, err := gofeed.NewParser().Parse(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("failed to parse feed: %w", err)
	}

	q := qualifier{base: base, prefix: cfg.ArticlePrefix, denylist: src.PathDenylist()}
	set := newLinkSet()
	for _, item := range feed.Items {
		if link, ok := q.qualify(item.Link); ok {
			set.add(link)
		}
	}

	return set.list(), nil
}
