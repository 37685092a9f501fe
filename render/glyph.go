package render

// Tier selects one of the fixed character sets used for brightness
// lookups, ordered by visual granularity.
type Tier int

const (
	TierLight Tier = iota
	TierColor
	TierFilled
	TierDetailed
)

var tiers = [][]rune{
	TierLight: []rune{' ', ' ', '.', ':', '!', '+', '*', 'e', '$', '@', '8'},
	TierColor: []rune{'.', '*', 'e', 's', '◍'},
	TierFilled: []rune{'░', '▒', '▓', '█'},
	TierDetailed: []rune("" +
		" .·:;'`\"^,-~+<>i!I/\\|()1{}[]rcv?LTJ7Fz" +
		"sSZYxXVKnNkKHAGE8&%@#"),
}

// BrightnessToGlyph maps a 0..255 brightness onto a character of the
// requested tier.
func BrightnessToGlyph(v byte, tier Tier) rune {
	set := tiers[tier]
	index := int(v) * (len(set) - 1) / 255
	return set[index]
}
