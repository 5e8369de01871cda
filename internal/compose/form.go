package compose

import "math"

// Form is the composition form state: counts per closed kind, the open-question
// count, the difficulty spread and the content source. The zero value is an
// empty form. Mutations go through the setters below, which enforce the
// interactive rules (no negatives, difficulty lock, per-bucket clamp); Validate
// performs the final ordered checks.
type Form struct {
	ClosedCounts map[ClosedKind]int `json:"closed_counts,omitempty"`
	OpenCount    int                `json:"num_open"`
	Difficulty   Difficulty         `json:"difficulty"`
	Source       Source             `json:"source"`
}

// NewForm returns an empty form with a text source.
func NewForm() *Form {
	return &Form{
		ClosedCounts: map[ClosedKind]int{},
		Source:       Source{Kind: SourceText},
	}
}

// SetClosedCount sets the count for one closed kind. Unknown kinds and
// negative values are ignored. Shrinking the total re-clamps the difficulty
// spread so its sum never exceeds the new total.
func (f *Form) SetClosedCount(k ClosedKind, n int) {
	if !k.Valid() || n < 0 {
		return
	}
	if f.ClosedCounts == nil {
		f.ClosedCounts = map[ClosedKind]int{}
	}
	f.ClosedCounts[k] = n
	f.reclamp()
}

// SetOpenCount sets the open-question count; negatives are ignored.
func (f *Form) SetOpenCount(n int) {
	if n < 0 {
		return
	}
	f.OpenCount = n
	f.reclamp()
}

// SetSource replaces the content source.
func (f *Form) SetSource(s Source) { f.Source = s }

// SetDifficulty assigns a difficulty bucket and returns the value actually
// stored. While no questions are requested the buckets are locked and the
// call is rejected. Otherwise the value is clamped so the running sum never
// exceeds the requested total.
func (f *Form) SetDifficulty(l Level, n int) int {
	cur := f.Difficulty.at(l)
	if l < Easy || l > Hard {
		return cur
	}
	total := f.TotalRequested()
	if total == 0 {
		return cur
	}
	if n < 0 {
		n = 0
	}
	if limit := total - (f.Difficulty.Total() - cur); n > limit {
		n = limit
	}
	f.Difficulty.set(l, n)
	return n
}

// TotalClosed is the sum of closed-kind counts.
func (f *Form) TotalClosed() int {
	n := 0
	for _, c := range f.ClosedCounts {
		n += c
	}
	return n
}

// TotalRequested is the number of questions the form currently asks for.
func (f *Form) TotalRequested() int { return f.TotalClosed() + f.OpenCount }

// reclamp shrinks difficulty buckets hard-first until their sum fits the
// requested total again. Runs after any count change so the invariant
// sum(difficulty) <= total holds at all times while the user types.
func (f *Form) reclamp() {
	total := f.TotalRequested()
	for _, l := range []Level{Hard, Medium, Easy} {
		over := f.Difficulty.Total() - total
		if over <= 0 {
			return
		}
		cur := f.Difficulty.at(l)
		if cur >= over {
			f.Difficulty.set(l, cur-over)
			return
		}
		f.Difficulty.set(l, 0)
	}
}

// Percentages is the feedback-only difficulty distribution, each value
// rounded and clamped to [0,100]. Never part of the submitted payload.
type Percentages struct {
	Easy   int `json:"easy_pct"`
	Medium int `json:"medium_pct"`
	Hard   int `json:"hard_pct"`
}

// Percentages recomputes the live distribution; all zeros when no difficulty
// has been assigned.
func (f *Form) Percentages() Percentages {
	total := f.Difficulty.Total()
	if total == 0 {
		return Percentages{}
	}
	return Percentages{
		Easy:   pct(f.Difficulty.Easy, total),
		Medium: pct(f.Difficulty.Medium, total),
		Hard:   pct(f.Difficulty.Hard, total),
	}
}

func pct(part, total int) int {
	p := int(math.Round(float64(part) / float64(total) * 100))
	if p < 0 {
		return 0
	}
	if p > 100 {
		return 100
	}
	return p
}
