// Package route maps logical-qubit programs onto physical device
// topologies, inserting swap chains so every two-qubit operation lands on a
// directly coupled pair.
//
// # Overview
//
// Unlike distance-only routers, this router is noise-aware: for each
// two-qubit operation it searches nearby links for one whose predicted
// success probability beats the direct approach, trading path length
// against measured per-link reliability. The search is a bounded local
// heuristic; globally optimal routing is NP-hard and out of scope.
//
// # Usage
//
//	routed, err := route.Route(topo, calib, prog, route.DefaultOptions())
//	if err != nil {
//	    return err
//	}
//	for _, op := range routed.Ops {
//	    // op.Qubits are physical ids; swaps are named circuit.SwapName
//	}
//	final := routed.Final // physical measurement order for consumers
//
// # Concurrency
//
// A routing run is single-threaded and owns its [Layout] exclusively. The
// topology and calibration are read-only, so independent runs over the same
// device may execute in parallel.
package route

import (
	"errors"
	"fmt"

	"github.com/matzehuels/qroute/pkg/circuit"
	"github.com/matzehuels/qroute/pkg/device"
	"github.com/matzehuels/qroute/pkg/observability"
)

// DefaultSearchDepth bounds the candidate-link search radius and, with it,
// the length of inserted swap chains. Depth 2 explores a practical
// neighborhood on NISQ-era topologies; larger values consider more
// candidates at higher search cost.
const DefaultSearchDepth = 2

// Sentinel errors for routing runs. All are fatal for the run that raises
// them; there is no partial output.
var (
	// ErrTopologyMismatch is returned before any routing work when the
	// program needs more logical qubits than the device has physical qubits,
	// or when a supplied initial layout does not cover the device.
	ErrTopologyMismatch = errors.New("program does not fit device topology")

	// ErrSearchDepth is returned when Options.SearchDepth is negative.
	ErrSearchDepth = errors.New("search depth must be >= 0")

	// ErrAmbiguousAssignment is returned when a chosen swap-chain assignment
	// fails to land an operation on coupled qubits. With the deterministic
	// tie-break policy in place this indicates an internal invariant
	// violation, not bad input.
	ErrAmbiguousAssignment = errors.New("qubit-pair assignment did not produce a coupled pair")
)

// Options configures a routing run.
type Options struct {
	// SearchDepth is the candidate-link search radius in hops. Zero disables
	// the noise-aware search entirely, leaving only direct swap chains; use
	// [DefaultOptions] for the standard depth of 2. Negative values fail.
	SearchDepth int

	// Initial is the starting logical→physical assignment. Nil means the
	// identity layout (logical i on physical i). When set, it must cover
	// exactly the device's qubit count. The caller's layout is not mutated;
	// the run works on a copy.
	Initial *Layout
}

// DefaultOptions returns options with the standard search depth.
func DefaultOptions() Options {
	return Options{SearchDepth: DefaultSearchDepth}
}

// Routed is the output of a routing run: the program re-expressed over
// physical qubits, with inserted swaps, plus the final layout.
type Routed struct {
	// Qubits is the physical qubit count of the device routed onto.
	Qubits int `json:"qubits"`

	// Ops is the ordered operation sequence over physical qubit ids.
	// Inserted swaps are named [circuit.SwapName]; the relative order of all
	// original operations is preserved within and across layer boundaries.
	Ops []circuit.Gate `json:"ops"`

	// Final maps logical qubits to the physical slots they ended on.
	// Consumers need it to reinterpret physical measurement outcomes.
	Final *Layout `json:"final_layout"`

	// Swaps is the number of swap instructions inserted.
	Swaps int `json:"swaps"`
}

// Program re-layers the routed operation sequence into a physical-qubit
// program, e.g. for serialization or depth measurement.
func (r *Routed) Program() circuit.Program {
	return circuit.Layerize(r.Qubits, r.Ops)
}

// Route maps prog onto the device described by topo and calib.
//
// The router consumes the program one layer at a time. For every two-qubit
// operation it resolves the current physical endpoints, asks the accuracy
// engine for a strictly better nearby link, and either relocates both
// qubits onto that link or, when no better link exists and the endpoints
// are not adjacent, falls back to a minimal swap chain along the shortest
// path. Swaps take effect on the layout immediately, so later operations in
// the same layer see the updated mapping. After all decisions the layer's
// original operations are re-emitted through the then-current layout.
//
// Route is deterministic: identical inputs produce identical output.
func Route(topo *device.Topology, calib *device.Calibration, prog circuit.Program, opts Options) (*Routed, error) {
	if opts.SearchDepth < 0 {
		return nil, ErrSearchDepth
	}
	if err := prog.Validate(); err != nil {
		return nil, err
	}
	if prog.Qubits > topo.NumQubits() {
		return nil, fmt.Errorf("%w: program uses %d qubits, device has %d",
			ErrTopologyMismatch, prog.Qubits, topo.NumQubits())
	}

	var layout *Layout
	if opts.Initial != nil {
		if opts.Initial.NumQubits() != topo.NumQubits() {
			return nil, fmt.Errorf("%w: initial layout covers %d qubits, device has %d",
				ErrTopologyMismatch, opts.Initial.NumQubits(), topo.NumQubits())
		}
		layout = opts.Initial.Clone()
	} else {
		layout = IdentityLayout(topo.NumQubits())
	}

	eng := newEngine(topo, calib, opts.SearchDepth)
	out := &Routed{Qubits: topo.NumQubits()}
	hooks := observability.Router()

	for li, layer := range prog.Layers {
		hooks.OnLayerStart(li, len(layer))
		layerSwaps := 0

		for _, g := range layer {
			if !g.IsTwoQubit() {
				continue
			}
			p0 := layout.Physical(g.Qubits[0])
			p1 := layout.Physical(g.Qubits[1])

			cand, err := eng.betterLink(p0, p1)
			if err != nil {
				return nil, err
			}
			if cand.found {
				hooks.OnBetterLink(int(p0), int(p1), int(cand.link.A), int(cand.link.B),
					cand.baseline, cand.accuracy)

				for _, chain := range cand.cc {
					layerSwaps += out.applySwaps(layout, chain, len(chain)-1, hooks)
				}
			} else if d, _ := topo.Distance(p0, p1); d > 1 {
				// No better link nearby: walk the qubits together along the
				// shortest path, stopping one hop short so the final link
				// executes the gate itself.
				path, err := topo.ShortestPath(p0, p1)
				if err != nil {
					return nil, err
				}
				layerSwaps += out.applySwaps(layout, path, len(path)-2, hooks)
			}

			q0 := layout.Physical(g.Qubits[0])
			q1 := layout.Physical(g.Qubits[1])
			if !topo.HasLink(q0, q1) {
				return nil, fmt.Errorf("%w: %s resolved to %d,%d", ErrAmbiguousAssignment, g, q0, q1)
			}
		}

		// Re-emit the layer's original operations through the current
		// layout, preserving their relative order.
		for _, g := range layer {
			mapped := make([]int, len(g.Qubits))
			for i, lq := range g.Qubits {
				mapped[i] = int(layout.Physical(lq))
			}
			out.Ops = append(out.Ops, circuit.Gate{Name: g.Name, Qubits: mapped})
		}

		out.Swaps += layerSwaps
		hooks.OnLayerComplete(li, layerSwaps)
	}

	out.Final = layout
	return out, nil
}

// applySwaps emits count swap instructions along path, applying each to the
// layout immediately, and returns the number inserted.
func (out *Routed) applySwaps(layout *Layout, path []device.Qubit, count int, hooks observability.RouterHooks) int {
	n := 0
	for i := 0; i < count; i++ {
		a, b := path[i], path[i+1]
		out.Ops = append(out.Ops, circuit.NewGate(circuit.SwapName, int(a), int(b)))
		layout.Swap(a, b)
		hooks.OnSwapInserted(int(a), int(b))
		n++
	}
	return n
}
