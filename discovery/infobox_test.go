package discovery

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestReadInfobox_Portable verifies portable-infobox rows are read in order
func TestReadInfobox_Portable(t *testing.T) {
	doc := parseHTML(t, `<html><body><aside class="portable-infobox">
<div class="pi-item pi-data"><h3 class="pi-data-label">Hair Color</h3><div class="pi-data-value">Blonde</div></div>
<div class="pi-item pi-data"><h3 class="pi-data-label">Affiliations</h3><div class="pi-data-value"><a href="/wiki/Sailor_Guardians">Sailor Guardians</a></div></div>
<div class="pi-item pi-data"><h3 class="pi-data-label">Age</h3><div class="pi-data-value"></div></div>
</aside></body></html>`)

	box := ReadInfobox(doc)

	require.Len(t, box.Fields, 2)
	assert.Equal(t, InfoField{Label: "Hair Color", Value: "Blonde"}, box.Fields[0])
	assert.Equal(t, "Blonde", box.Lookup("color"))
	assert.Equal(t, "Sailor Guardians", box.Lookup("AFFILIATION"))
	assert.Empty(t, box.Lookup("age"))
}

// TestReadInfobox_Table verifies the classic table layout is used when no
// portable infobox exists
func TestReadInfobox_Table(t *testing.T) {
	doc := parseHTML(t, `<html><body><table class="infobox">
<tr><th colspan="2">Blossom</th></tr>
<tr><th>Signature colour</th><td>Pink</td></tr>
<tr><th>Affiliation</th><td>Powerpuff Girls</td></tr>
</table></body></html>`)

	box := ReadInfobox(doc)

	assert.Equal(t, "Pink", box.Lookup("color", "colour"))
	assert.Equal(t, "Powerpuff Girls", box.Lookup("affiliation"))
}

// TestReadInfobox_Missing verifies a page without an info panel yields no
// fields
func TestReadInfobox_Missing(t *testing.T) {
	box := ReadInfobox(parseHTML(t, `<html><body><p>Text</p></body></html>`))

	assert.Empty(t, box.Fields)
	assert.Empty(t, box.Lookup("color"))
}
