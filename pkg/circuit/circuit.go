// Package circuit represents quantum-gate programs as ordered layers of
// mutually independent operations.
//
// # Overview
//
// A [Program] is the routing core's view of a circuit: a qubit count plus an
// ordered sequence of [Layer] values. Gates within one layer touch disjoint
// qubit sets and may execute in any relative order; later layers depend on
// earlier ones. Any concrete circuit representation can be adapted to this
// contract; this package ships two producers of its own, [Layerize] for flat
// gate lists and [Parse] for a small OpenQASM 2 subset.
//
// Gate operands are logical qubit ids. After routing, the same types carry
// physical qubit ids; the program structure is identical on both sides.
package circuit

import (
	"errors"
	"fmt"
	"strings"
)

// SwapName is the gate name used for router-inserted swap operations.
const SwapName = "swap"

// MeasureName is the gate name used for measurement operations.
const MeasureName = "measure"

// ErrNoQubits is returned when a program declares no qubits.
var ErrNoQubits = errors.New("program has no qubits")

// ErrQubitRange is returned when a gate references a qubit id outside the
// program's declared range.
var ErrQubitRange = errors.New("gate qubit out of range")

// Gate is a single operation on one or two qubits. The zero value is not a
// valid gate; use [NewGate].
type Gate struct {
	Name   string `json:"name"`
	Qubits []int  `json:"qubits"`
}

// NewGate builds a gate acting on the given qubits in order.
func NewGate(name string, qubits ...int) Gate {
	return Gate{Name: name, Qubits: qubits}
}

// IsTwoQubit reports whether the gate acts on exactly two qubits. Only
// two-qubit gates are subject to routing decisions.
func (g Gate) IsTwoQubit() bool { return len(g.Qubits) == 2 }

// IsSwap reports whether the gate is a swap operation.
func (g Gate) IsSwap() bool { return g.Name == SwapName }

func (g Gate) String() string {
	args := make([]string, len(g.Qubits))
	for i, q := range g.Qubits {
		args[i] = fmt.Sprintf("q[%d]", q)
	}
	return fmt.Sprintf("%s %s", g.Name, strings.Join(args, ","))
}

// Layer is an ordered set of gates with pairwise disjoint qubit sets.
// The order is preserved through routing but carries no dependency meaning.
type Layer []Gate

// Program is a layered gate sequence over Qubits logical qubits.
type Program struct {
	Qubits int     `json:"qubits"`
	Layers []Layer `json:"layers"`
}

// Validate checks that the program declares at least one qubit and that
// every gate operand is within range.
func (p Program) Validate() error {
	if p.Qubits <= 0 {
		return ErrNoQubits
	}
	for _, layer := range p.Layers {
		for _, g := range layer {
			for _, q := range g.Qubits {
				if q < 0 || q >= p.Qubits {
					return fmt.Errorf("%w: %s (program has %d qubits)", ErrQubitRange, g, p.Qubits)
				}
			}
		}
	}
	return nil
}

// NumGates returns the total gate count across all layers.
func (p Program) NumGates() int {
	n := 0
	for _, layer := range p.Layers {
		n += len(layer)
	}
	return n
}

// Flatten returns all gates in program order as a single slice.
func (p Program) Flatten() []Gate {
	out := make([]Gate, 0, p.NumGates())
	for _, layer := range p.Layers {
		out = append(out, layer...)
	}
	return out
}

// Layerize builds a program from a flat gate list using greedy dependency
// layering: each gate is placed one layer after the last layer that touched
// any of its qubits. Gates that share no qubits with pending work land in
// the earliest possible layer, preserving program order within each layer.
func Layerize(numQubits int, gates []Gate) Program {
	p := Program{Qubits: numQubits}
	last := make(map[int]int) // qubit -> index of last layer touching it, +1

	for _, g := range gates {
		at := 0
		for _, q := range g.Qubits {
			if last[q] > at {
				at = last[q]
			}
		}
		for len(p.Layers) <= at {
			p.Layers = append(p.Layers, nil)
		}
		p.Layers[at] = append(p.Layers[at], g)
		for _, q := range g.Qubits {
			last[q] = at + 1
		}
	}
	return p
}
