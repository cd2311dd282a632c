package device

// Calibration maps every topology link to its empirical two-qubit gate
// fidelity, a reliability weight in (0, 1]. It is immutable after
// construction and safe for concurrent readers.
//
// Weights come from external calibration data; this package treats them as
// opaque success probabilities and never refreshes them mid-run.
type Calibration struct {
	weights map[Link]float64
}

// NewCalibration validates weights against the topology and builds a
// calibration. Every topology link must have a weight ([ErrMissingWeight]),
// every weight must refer to a topology link ([ErrUnknownLink]), and all
// values must lie in (0, 1] ([ErrWeightRange]).
func NewCalibration(t *Topology, weights map[Link]float64) (*Calibration, error) {
	c := &Calibration{weights: make(map[Link]float64, len(weights))}
	for l, w := range weights {
		l = NewLink(l.A, l.B)
		if !t.HasLink(l.A, l.B) {
			return nil, ErrUnknownLink
		}
		if w <= 0 || w > 1 {
			return nil, ErrWeightRange
		}
		c.weights[l] = w
	}
	for _, l := range t.Links() {
		if _, ok := c.weights[l]; !ok {
			return nil, ErrMissingWeight
		}
	}
	return c, nil
}

// UniformCalibration assigns the same weight to every link of the topology.
// Useful for tests and for devices without per-link calibration data.
func UniformCalibration(t *Topology, w float64) (*Calibration, error) {
	weights := make(map[Link]float64)
	for _, l := range t.Links() {
		weights[l] = w
	}
	return NewCalibration(t, weights)
}

// Weight returns the fidelity of the link between a and b. The pair may be
// given in either orientation. Fails with [ErrUnknownLink] when (a, b) is
// not a link of the topology.
func (c *Calibration) Weight(a, b Qubit) (float64, error) {
	w, ok := c.weights[NewLink(a, b)]
	if !ok {
		return 0, ErrUnknownLink
	}
	return w, nil
}

// WeightLink is [Calibration.Weight] for an already-canonical link value.
func (c *Calibration) WeightLink(l Link) (float64, error) {
	return c.Weight(l.A, l.B)
}
