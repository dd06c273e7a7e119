package discovery

import (
	"strings"

	"github.com/PuerkitoBio/goquery"
)

// InfoField is one label/value row of a character's info panel.
type InfoField struct {
	Label string
	Value string
}

// Infobox holds the rows of a page's info panel in document order.
type Infobox struct {
	Fields []InfoField
}

// ReadInfobox reads portable-infobox rows and falls back to classic
// table.infobox rows.
func ReadInfobox(doc *goquery.Document) Infobox {
	var box Infobox

	doc.Find("aside.portable-infobox .pi-data").Each(func(_ int, row *goquery.Selection) {
		box.add(
			VisibleText(row.Find(".pi-data-label").First()),
			VisibleText(row.Find(".pi-data-value").First()),
		)
	})

	if len(box.Fields) == 0 {
		doc.Find("table.infobox tr").Each(func(_ int, row *goquery.Selection) {
			box.add(
				VisibleText(row.Find("th").First()),
				VisibleText(row.Find("td").First()),
			)
		})
	}

	return box
}

func (b *Infobox) add(label, value string) {
	if label == "" || value == "" {
		return
	}
	b.Fields = append(b.Fields, InfoField{Label: label, Value: value})
}

// Lookup returns the value of the first row whose label contains any of the
// given words, case-insensitively, or "".
func (b Infobox) Lookup(words ...string) string {
	for _, f := range b.Fields {
		label := strings.ToLower(f.Label)
		for _, w := range words {
			if strings.Contains(label, strings.ToLower(w)) {
				return f.Value
			}
		}
	}
	return ""
}
