// Package metrics computes quality metrics for routed programs: gate and
// swap counts, depth, and the predicted end-to-end fidelity of executing
// the program on the calibrated device.
package metrics

import (
	"fmt"

	"github.com/matzehuels/qroute/pkg/circuit"
	"github.com/matzehuels/qroute/pkg/device"
	"github.com/matzehuels/qroute/pkg/route"
)

// Report summarizes one routing run.
type Report struct {
	Gates       int     `json:"gates"`        // original operations, swaps excluded
	TwoQubitOps int     `json:"two_qubit_ops"`// original two-qubit operations
	Swaps       int     `json:"swaps"`        // inserted swap instructions
	Depth       int     `json:"depth"`        // layer count of the routed program
	Fidelity    float64 `json:"fidelity"`     // predicted success probability
}

// Measure computes the report for a routed program against its device
// calibration.
//
// Predicted fidelity is the product of link weights over every emitted
// two-qubit operation, with swaps contributing weight cubed (a swap
// decomposes into three elementary two-qubit operations). Single-qubit
// operations are assumed noiseless; this is an optimistic simplification
// consistent with the router's own cost model.
func Measure(r *route.Routed, calib *device.Calibration) (Report, error) {
	rep := Report{
		Swaps:    r.Swaps,
		Gates:    len(r.Ops) - r.Swaps,
		Depth:    len(r.Program().Layers),
		Fidelity: 1.0,
	}

	for _, op := range r.Ops {
		if !op.IsTwoQubit() {
			continue
		}
		w, err := calib.Weight(device.Qubit(op.Qubits[0]), device.Qubit(op.Qubits[1]))
		if err != nil {
			return Report{}, fmt.Errorf("metrics: op %s: %w", op, err)
		}
		if op.IsSwap() {
			rep.Fidelity *= w * w * w
		} else {
			rep.TwoQubitOps++
			rep.Fidelity *= w
		}
	}
	return rep, nil
}

// CountGate returns the number of operations named name in the routed
// output, e.g. "cx" or [circuit.SwapName].
func CountGate(r *route.Routed, name string) int {
	n := 0
	for _, op := range r.Ops {
		if op.Name == name {
			n++
		}
	}
	return n
}

// DiffSwaps returns how many more swaps b cost than a. Useful when
// comparing search depths or initial layouts for the same program.
func DiffSwaps(a, b *route.Routed) int { return b.Swaps - a.Swaps }

// AddedDepth returns the depth increase of the routed program relative to
// the input program.
func AddedDepth(in circuit.Program, r *route.Routed) int {
	return len(r.Program().Layers) - len(in.Layers)
}
