package render

import "testing"

func TestBrightnessToGlyphEndpoints(t *testing.T) {
	for _, tier := range []Tier{TierLight, TierColor, TierFilled, TierDetailed} {
		set := tiers[tier]
		if got := BrightnessToGlyph(0, tier); got != set[0] {
			t.Errorf("Tier %d: expected first symbol %q for 0, got %q", tier, set[0], got)
		}
		if got := BrightnessToGlyph(255, tier); got != set[len(set)-1] {
			t.Errorf("Tier %d: expected last symbol %q for 255, got %q", tier, set[len(set)-1], got)
		}
	}
}

func TestBrightnessToGlyphMonotone(t *testing.T) {
	for _, tier := range []Tier{TierLight, TierColor, TierFilled, TierDetailed} {
		set := tiers[tier]
		indexOf := make(map[rune]int)
		for i, r := range set {
			if _, seen := indexOf[r]; !seen {
				indexOf[r] = i
			}
		}
		last := -1
		for v := 0; v <= 255; v++ {
			glyph := BrightnessToGlyph(byte(v), tier)
			index := int(v) * (len(set) - 1) / 255
			if set[index] != glyph {
				t.Fatalf("Tier %d: brightness %d mapped outside its bucket", tier, v)
			}
			if index < last {
				t.Fatalf("Tier %d: glyph index decreased at brightness %d", tier, v)
			}
			last = index
		}
	}
}

func TestTierSizes(t *testing.T) {
	expected := map[Tier]int{
		TierLight:    11,
		TierColor:    5,
		TierFilled:   4,
		TierDetailed: 59,
	}
	for tier, want := range expected {
		if got := len(tiers[tier]); got != want {
			t.Errorf("Tier %d: expected %d symbols, got %d", tier, want, got)
		}
	}
}
