// Package compose holds the composition form state and the validator that
// decides whether a generation request may be sent.
package compose

// ClosedKind is a closed-question variant.
type ClosedKind string

const (
	TrueFalse    ClosedKind = "true_false"
	SingleChoice ClosedKind = "single_choice"
	MultiChoice  ClosedKind = "multi_choice"
)

// ClosedKinds lists the variants in display order.
var ClosedKinds = []ClosedKind{TrueFalse, SingleChoice, MultiChoice}

// Valid reports whether k is a known closed-question kind.
func (k ClosedKind) Valid() bool {
	switch k {
	case TrueFalse, SingleChoice, MultiChoice:
		return true
	}
	return false
}

// Level is a difficulty level.
type Level int

const (
	Easy   Level = 1
	Medium Level = 2
	Hard   Level = 3
)

// Difficulty is the requested count per level.
type Difficulty struct {
	Easy   int `json:"easy"`
	Medium int `json:"medium"`
	Hard   int `json:"hard"`
}

// Total is the sum over all levels.
func (d Difficulty) Total() int { return d.Easy + d.Medium + d.Hard }

func (d Difficulty) at(l Level) int {
	switch l {
	case Easy:
		return d.Easy
	case Medium:
		return d.Medium
	case Hard:
		return d.Hard
	}
	return 0
}

func (d *Difficulty) set(l Level, n int) {
	switch l {
	case Easy:
		d.Easy = n
	case Medium:
		d.Medium = n
	case Hard:
		d.Hard = n
	}
}

// SourceKind tags the content source variant.
type SourceKind string

const (
	SourceText     SourceKind = "text"
	SourceMaterial SourceKind = "material"
)

// Source is the content the questions are generated from. FileRef is only
// meaningful for SourceMaterial; Content carries the (possibly extracted and
// then edited) text in both variants.
type Source struct {
	Kind    SourceKind `json:"kind"`
	Content string     `json:"content"`
	FileRef string     `json:"file_ref,omitempty"`
}

// Request is a validated generation request. It is immutable by convention:
// only Form.Validate produces one, and nothing mutates it afterwards.
// Closed kinds with a zero count are omitted.
type Request struct {
	ClosedCounts map[ClosedKind]int `json:"closed_counts,omitempty"`
	OpenCount    int                `json:"num_open"`
	Easy         int                `json:"easy"`
	Medium       int                `json:"medium"`
	Hard         int                `json:"hard"`
	Text         string             `json:"text,omitempty"`
	FileRef      string             `json:"file_id,omitempty"`
}

// TotalClosed is the sum of the closed-kind counts.
func (r Request) TotalClosed() int {
	n := 0
	for _, c := range r.ClosedCounts {
		n += c
	}
	return n
}

// Total is the number of questions the request asks for.
func (r Request) Total() int { return r.TotalClosed() + r.OpenCount }
