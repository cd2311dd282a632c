package route

import (
	"errors"
	"fmt"

	"github.com/matzehuels/qroute/pkg/device"
)

// engine is the path & accuracy search over one fixed device. It holds the
// sorted link list so candidate scans run in a deterministic order without
// re-allocating per operation.
//
// Scan cost is O(|links| × pathfinding) per two-qubit operation. That is
// fine for NISQ-era devices (tens to a few hundred qubits) and is not meant
// to scale past that without restructuring.
type engine struct {
	topo  *device.Topology
	calib *device.Calibration
	depth int
	links []device.Link
}

func newEngine(topo *device.Topology, calib *device.Calibration, depth int) *engine {
	return &engine{topo: topo, calib: calib, depth: depth, links: topo.Links()}
}

// chains holds the swap paths moving the two source qubits onto a candidate
// link's endpoints, indexed by source. A nil entry means that source is
// already in place and does not move.
type chains [2][]device.Qubit

// hops returns the total swap count both paths would cost.
func (c chains) hops() int {
	n := 0
	for _, path := range c {
		if len(path) > 1 {
			n += len(path) - 1
		}
	}
	return n
}

// baseline is the predicted success probability of executing the operation
// without relocating it: the direct link weight when (p0, p1) is a link,
// otherwise the product over every link on the shortest path of weight³
// (one swap per hop, three elementary two-qubit operations per swap).
func (e *engine) baseline(p0, p1 device.Qubit) (float64, error) {
	if e.topo.HasLink(p0, p1) {
		return e.calib.Weight(p0, p1)
	}
	path, err := e.topo.ShortestPath(p0, p1)
	if err != nil {
		return 0, err
	}
	return e.pathCost(1.0, path)
}

// pathCost multiplies acc by weight³ for every consecutive link on path.
func (e *engine) pathCost(acc float64, path []device.Qubit) (float64, error) {
	for i := 0; i+1 < len(path); i++ {
		w, err := e.calib.Weight(path[i], path[i+1])
		if err != nil {
			return 0, err
		}
		acc *= w * w * w
	}
	return acc, nil
}

// candidate is the outcome of a better-link search.
type candidate struct {
	link     device.Link
	cc       chains
	baseline float64
	accuracy float64
	found    bool
}

// betterLink scans every topology link whose endpoints both lie within
// e.depth hops of both sources and returns the candidate with the highest
// predicted accuracy, together with the swap chains that realize it.
//
// Only candidates strictly better than the baseline qualify; found is false
// when none exists. The scan walks the canonical sorted link list and a
// later candidate replaces an earlier one only on strict improvement, so the
// result is deterministic for fixed inputs.
func (e *engine) betterLink(p0, p1 device.Qubit) (candidate, error) {
	base, err := e.baseline(p0, p1)
	if err != nil {
		return candidate{}, err
	}

	best := candidate{baseline: base, accuracy: base}
	for _, cand := range e.links {
		if !e.withinDepth(p0, cand) || !e.withinDepth(p1, cand) {
			continue
		}
		acc, candChains, err := e.pathAccuracy(p0, p1, cand)
		if err != nil {
			return candidate{}, err
		}
		if acc > best.accuracy {
			best = candidate{link: cand, cc: candChains, baseline: base, accuracy: acc, found: true}
		}
	}
	return best, nil
}

// withinDepth reports whether both endpoints of l are at most e.depth hops
// from q. This bounds the swap cost of moving q onto the link.
func (e *engine) withinDepth(q device.Qubit, l device.Link) bool {
	da, err := e.topo.Distance(q, l.A)
	if err != nil || da > e.depth {
		return false
	}
	db, err := e.topo.Distance(q, l.B)
	return err == nil && db <= e.depth
}

// pathAccuracy predicts the success probability of relocating (p0, p1) onto
// the candidate link and executing there: the candidate's own weight times
// weight³ for every swap on both relocation chains. A candidate whose
// sources cannot both reach their assigned endpoints scores zero.
func (e *engine) pathAccuracy(p0, p1 device.Qubit, cand device.Link) (float64, chains, error) {
	cc, ok, err := e.assign(p0, p1, cand)
	if err != nil || !ok {
		return 0, chains{}, err
	}
	acc, err := e.calib.WeightLink(cand)
	if err != nil {
		return 0, chains{}, err
	}
	for _, path := range cc {
		if acc, err = e.pathCost(acc, path); err != nil {
			return 0, chains{}, err
		}
	}
	return acc, cc, nil
}

// assign decides which source qubit moves to which endpoint of the
// candidate link and returns the shortest swap path for each.
//
// Every path search masks out the partner source: a chain must not route
// through the slot its partner is about to vacate. A source already sitting
// on an endpoint keeps a nil (zero-cost) path and leaves the other endpoint
// to its partner. When both sources must move there are two consistent
// assignments; the one with fewer total hops wins, then the one whose longer
// chain is shorter, and a residual tie sends source zero to the
// lower-numbered endpoint. The policy is deterministic by construction.
// An assignment whose second chain would sweep through the first chain's
// destination is unusable (it would carry the parked source away again) and
// falls through to the alternative.
//
// ok is false when no assignment gives every moving source a path.
func (e *engine) assign(p0, p1 device.Qubit, cand device.Link) (chains, bool, error) {
	on0 := cand.Contains(p0)
	on1 := cand.Contains(p1)

	switch {
	case on0 && on1:
		// Both sources already occupy the candidate's endpoints.
		return chains{}, true, nil

	case on0:
		path, ok, err := e.maskedPath(p1, cand.Other(p0), p0)
		if err != nil || !ok {
			return chains{}, false, err
		}
		return chains{nil, path}, true, nil

	case on1:
		path, ok, err := e.maskedPath(p0, cand.Other(p1), p1)
		if err != nil || !ok {
			return chains{}, false, err
		}
		return chains{path, nil}, true, nil
	}

	// Both sources must move. Compare the two consistent assignments.
	p0A, ok0A, err := e.maskedPath(p0, cand.A, p1)
	if err != nil {
		return chains{}, false, err
	}
	p0B, ok0B, err := e.maskedPath(p0, cand.B, p1)
	if err != nil {
		return chains{}, false, err
	}
	p1A, ok1A, err := e.maskedPath(p1, cand.A, p0)
	if err != nil {
		return chains{}, false, err
	}
	p1B, ok1B, err := e.maskedPath(p1, cand.B, p0)
	if err != nil {
		return chains{}, false, err
	}

	straight := chains{p0A, p1B} // source0 -> A, source1 -> B
	crossed := chains{p0B, p1A}  // source0 -> B, source1 -> A

	var ranked []chains
	if ok0A && ok1B {
		ranked = append(ranked, straight)
	}
	if ok0B && ok1A {
		ranked = append(ranked, crossed)
	}
	if len(ranked) == 2 && preferSecond(straight, crossed) {
		ranked[0], ranked[1] = crossed, straight
	}
	for _, c := range ranked {
		if c.safe() {
			return c, true, nil
		}
	}
	return chains{}, false, nil
}

// preferSecond reports whether b beats a under the assignment policy:
// fewer total hops, then shorter longest chain. A residual tie keeps a,
// which routes source zero to the lower-numbered endpoint.
func preferSecond(a, b chains) bool {
	if b.hops() != a.hops() {
		return b.hops() < a.hops()
	}
	return maxChain(b) < maxChain(a)
}

// safe reports whether the chains can be applied in order without the
// second sweeping through the first's destination slot, which would carry
// the already-parked source away from its endpoint.
func (c chains) safe() bool {
	if len(c[0]) == 0 || len(c[1]) == 0 {
		return true
	}
	dest := c[0][len(c[0])-1]
	for _, q := range c[1] {
		if q == dest {
			return false
		}
	}
	return true
}

func maxChain(c chains) int {
	m := 0
	for _, path := range c {
		if len(path)-1 > m {
			m = len(path) - 1
		}
	}
	return m
}

// maskedPath finds the shortest path from src to dst with the partner's
// slot removed from the graph. A source already at its destination needs no
// path (nil, true). ok is false when masking disconnects the endpoints.
func (e *engine) maskedPath(src, dst, partner device.Qubit) ([]device.Qubit, bool, error) {
	if src == dst {
		return nil, true, nil
	}
	path, err := e.topo.Mask(partner).ShortestPath(src, dst)
	if errors.Is(err, device.ErrUnreachable) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("path %d->%d excluding %d: %w", src, dst, partner, err)
	}
	return path, true, nil
}
