package archetype

// Unknown is the no-match label of the coarse table.
const Unknown = "Unknown"

// Refined returns the eight-category table keyed by personality and role
// words. Classification only runs when one of its context clues appears, and
// a zero score yields no archetype at all.
func Refined() Table {
	return Table{
		Name: "refined",
		Categories: []Category{
			{Label: "Leader", Keywords: []string{"leader", "commander", "captain", "strategist"}},
			{Label: "Heart", Keywords: []string{"optimistic", "kind", "emotional", "hopeful", "cheerful"}},
			{Label: "Intellectual", Keywords: []string{"intelligent", "analytical", "genius", "studious", "logical"}},
			{Label: "Warrior", Keywords: []string{"fighter", "brave", "strong", "combat", "protector"}},
			{Label: "Artist", Keywords: []string{"creative", "artistic", "musician", "performer"}},
			{Label: "Mystic", Keywords: []string{"mysterious", "reserved", "spiritual", "magical affinity"}},
			{Label: "Rebel", Keywords: []string{"tomboy", "independent", "defiant", "free-spirited"}},
			{Label: "Caregiver", Keywords: []string{"healer", "compassionate", "supportive", "empathic"}},
		},
		ContextClues: []string{"personality", "archetype", "represents", "known for", "type of girl", "role"},
		NoMatch:      "",
	}
}

// Coarse returns the six-category table keyed by broad traits and colours.
// It has no context gate and reports Unknown when nothing matches.
func Coarse() Table {
	return Table{
		Name: "coarse",
		Categories: []Category{
			{Label: "Leader/Heart", Keywords: []string{"leader", "pink", "love", "hope", "courage"}},
			{Label: "Cool/Smart", Keywords: []string{"blue", "intelligent", "shy", "strategist", "logical"}},
			{Label: "Healer/Gentle", Keywords: []string{"green", "white", "gentle", "healer", "kind", "calm"}},
			{Label: "Energetic/Trickster", Keywords: []string{"yellow", "orange", "energetic", "cheerful", "bubbly", "tomboy"}},
			{Label: "Mysterious/Dark", Keywords: []string{"purple", "black", "mysterious", "tragic", "secretive", "stoic"}},
			{Label: "Mentor/Guide", Keywords: []string{"mentor", "guide", "older", "sister"}},
		},
		NoMatch: Unknown,
	}
}

// ByName returns a built-in table by its variant name.
func ByName(name string) (Table, bool) {
	switch name {
	case "refined":
		return Refined(), true
	case "coarse":
		return Coarse(), true
	default:
		return Table{}, false
	}
}
