package draft

import (
	"strings"

	"github.com/samber/lo"
)

// PadChoices pads the list with empty placeholder slots up to the minimum
// rendered length. The input is not mutated.
func PadChoices(choices []string) []string {
	out := append([]string(nil), choices...)
	for len(out) < minChoiceSlots {
		out = append(out, "")
	}
	return out
}

// CleanChoices trims every choice, drops the empty ones, and intersects the
// correct set with what survived, preserving order. Running it on an already
// cleaned pair is a no-op.
func CleanChoices(choices, correct []string) (cleaned, kept []string) {
	cleaned = lo.FilterMap(choices, func(c string, _ int) (string, bool) {
		c = strings.TrimSpace(c)
		return c, c != ""
	})
	kept = lo.Filter(correct, func(c string, _ int) bool {
		return lo.Contains(cleaned, c)
	})
	return cleaned, kept
}
