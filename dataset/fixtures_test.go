package dataset

import (
	"github.com/pevans/archetyper/character"
)

// Test helper: a small dataset across three series
func sampleRecords() []*character.Character {
	return []*character.Character{
		{
			Name:            "Usagi Tsukino",
			Series:          "Sailor Moon",
			WikiURL:         "https://sailormoon.fandom.com/wiki/Usagi_Tsukino",
			Powers:          character.StringPtr("Moon Tiara Action, Moon Healing Escalation"),
			Archetype:       character.StringPtr("Leader"),
			MatchedKeywords: []string{"leader"},
			DominantColors:  []character.RGB{{R: 240, G: 98, B: 146}, {R: 255, G: 235, B: 59}},
			ImageURL:        "https://static.example.org/usagi.png",
			Affiliations:    character.StringPtr("Sailor Guardians"),
		},
		{
			Name:            "Ami Mizuno",
			Series:          "Sailor Moon",
			WikiURL:         "https://sailormoon.fandom.com/wiki/Ami_Mizuno",
			Archetype:       character.StringPtr("Intellectual"),
			MatchedKeywords: []string{"intelligent", "genius"},
			DominantColors:  []character.RGB{{R: 66, G: 165, B: 245}},
		},
		{
			Name:            "Bloom",
			Series:          "Winx Club",
			WikiURL:         "https://winx.fandom.com/wiki/Bloom",
			Archetype:       character.StringPtr("Leader"),
			MatchedKeywords: []string{"leader", "Brave"},
			DominantColors:  []character.RGB{},
			Color:           character.StringPtr("Light Blue"),
		},
		{
			Name:           "Blossom",
			Series:         "Powerpuff Girls",
			WikiURL:        "https://powerpuffgirls.fandom.com/wiki/Blossom",
			DominantColors: []character.RGB{},
		},
	}
}
