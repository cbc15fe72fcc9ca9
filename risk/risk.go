// Package risk combines per-layer risk contributions into a single bounded
// score and a categorical verdict.
//
// Every detector (phishing link, image, audio) runs several independent
// layers. Each layer yields a Contribution; Aggregate sums them, clamps the
// total to [0,100], classifies it against fixed thresholds and concatenates
// the layer signals in the order the layers were given. Aggregate never
// performs I/O and never fails.
package risk

const (
	MinScore = 0
	MaxScore = 100
)

// Contribution is the partial result of one signal producer.
type Contribution struct {
	Points  int      `json:"risk"`
	Signals []string `json:"signals"`
}

// Add records a finding worth points.
func (c *Contribution) Add(points int, signal string) {
	if points > 0 {
		c.Points += points
	}
	c.Signals = append(c.Signals, signal)
}

// Note records a finding that carries no points of its own.
func (c *Contribution) Note(signal string) {
	c.Signals = append(c.Signals, signal)
}

// Capped returns a copy of c whose points do not exceed ceiling.
func (c Contribution) Capped(ceiling int) Contribution {
	c.Points = Clamp(c.Points, 0, ceiling)
	return c
}

// Layer is a named contribution. Checked is false when the layer's
// capability was unavailable, which is distinct from "checked and clean".
type Layer struct {
	Name string
	Contribution
	Checked bool
}

// NewLayer wraps a contribution from a layer that actually ran.
func NewLayer(name string, c Contribution) Layer {
	return Layer{Name: name, Contribution: c, Checked: true}
}

// Unchecked builds a zero-point layer whose capability was unavailable.
func Unchecked(name string, signals ...string) Layer {
	return Layer{Name: name, Contribution: Contribution{Signals: signals}}
}

// Clamp bounds v to [lo, hi].
func Clamp(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
