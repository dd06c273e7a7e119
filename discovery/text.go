package discovery

import (
	"net/url"
	"path"
	"regexp"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"golang.org/x/net/html"
)

var (
	// Parentheticals carrying a digit are episode or season references.
	parenWithDigit = regexp.MustCompile(`\([^)]*\d[^)]*\)`)
	seasonCode     = regexp.MustCompile(`\bS\d+\b`)
	fourDigits     = regexp.MustCompile(`\d{4}`)
)

// CleanPowers strips episode references and years from raw powers text,
// collapses whitespace and trims stray separators from both ends.
func CleanPowers(text string) string {
	text = parenWithDigit.ReplaceAllString(text, "")
	text = seasonCode.ReplaceAllString(text, "")
	text = fourDigits.ReplaceAllString(text, "")
	text = normalizeSpace(text)
	return strings.Trim(text, " ,;.")
}

// VisibleText returns the text of the selected nodes with script and style
// content dropped, text nodes joined by single spaces.
func VisibleText(sel *goquery.Selection) string {
	var b strings.Builder

	var walk func(n *html.Node)
	walk = func(n *html.Node) {
		switch n.Type {
		case html.TextNode:
			b.WriteString(n.Data)
			b.WriteByte(' ')
			return
		case html.CommentNode:
			return
		case html.ElementNode:
			switch n.Data {
			case "script", "style", "noscript", "template":
				return
			}
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}

	for _, n := range sel.Nodes {
		walk(n)
	}

	return normalizeSpace(b.String())
}

// SlugName derives a display name from the last path segment of an article
// URL: percent-decoded, underscores as spaces.
func SlugName(pageURL string) string {
	slug := pageURL
	if u, err := url.Parse(pageURL); err == nil && u.Path != "" {
		slug = path.Base(strings.TrimRight(u.Path, "/"))
	} else if i := strings.LastIndex(strings.TrimRight(pageURL, "/"), "/"); i >= 0 {
		slug = strings.TrimRight(pageURL, "/")[i+1:]
		if decoded, err := url.PathUnescape(slug); err == nil {
			slug = decoded
		}
	}
	if slug == "/" || slug == "." {
		return ""
	}
	return normalizeSpace(strings.ReplaceAll(slug, "_", " "))
}

func normalizeSpace(s string) string {
	return strings.Join(strings.Fields(s), " ")
}
