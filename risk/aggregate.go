package risk

// Verdict is the aggregated result of one analysis. It is built once by
// Aggregate and exposes copies only, so it cannot change after construction.
type Verdict struct {
	total      int
	category   Category
	signals    []string
	layers     []Layer
	overridden bool
}

func (v Verdict) TotalRisk() int     { return v.total }
func (v Verdict) Category() Category { return v.category }

// Overridden reports whether deterministic evidence fired the override rule
// of AggregateWithOverride.
func (v Verdict) Overridden() bool { return v.overridden }

// Signals returns every layer's signals in layer order.
func (v Verdict) Signals() []string {
	return append([]string{}, v.signals...)
}

// Layers returns the per-layer breakdown in layer order.
func (v Verdict) Layers() []Layer {
	out := make([]Layer, len(v.layers))
	for i, l := range v.layers {
		l.Signals = append([]string{}, l.Signals...)
		out[i] = l
	}
	return out
}

// Layer returns the named layer, if present.
func (v Verdict) Layer(name string) (Layer, bool) {
	for _, l := range v.layers {
		if l.Name == name {
			l.Signals = append([]string{}, l.Signals...)
			return l, true
		}
	}
	return Layer{}, false
}

// Aggregate sums the layers' points, clamps the total to [0,100] and
// classifies it. Layers must be passed structural first, model last.
func Aggregate(t Thresholds, scale Scale, layers ...Layer) Verdict {
	v := Verdict{
		signals: []string{},
		layers:  make([]Layer, 0, len(layers)),
	}
	sum := 0
	for _, l := range layers {
		if l.Points < 0 {
			l.Points = 0
		}
		sum += l.Points
		l.Signals = append([]string{}, l.Signals...)
		v.signals = append(v.signals, l.Signals...)
		v.layers = append(v.layers, l)
	}
	v.total = Clamp(sum, MinScore, MaxScore)
	v.category = t.Classify(v.total, scale)
	return v
}

// AggregateWithOverride is Aggregate plus one rule: when the layer named
// deterministic scores strictly more than overrideAbove points on its own,
// the category is forced to the scale's highest category whatever the total.
func AggregateWithOverride(t Thresholds, scale Scale, deterministic string, overrideAbove int, layers ...Layer) Verdict {
	v := Aggregate(t, scale, layers...)
	if l, ok := v.Layer(deterministic); ok && l.Points > overrideAbove {
		v.overridden = true
		v.category = scale.Highest()
	}
	return v
}
