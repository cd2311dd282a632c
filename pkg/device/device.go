// Package device models the physical quantum device a program is routed onto:
// the coupling topology (which qubit pairs can interact directly) and the
// per-link calibration data (empirical two-qubit gate fidelities).
//
// # Overview
//
// A [Topology] is an immutable undirected graph over physical qubits. Links
// are stored in canonical order (lower qubit id first), so the edge set is
// de-duplicated by construction and never needs run-time filtering. The
// topology answers distance, shortest-path, and neighborhood queries, all
// deterministic for a fixed link set.
//
// A [Calibration] attaches a reliability weight in (0,1] to every link. It is
// read-only after construction and safe to share across concurrent routing
// runs, as is the topology itself.
//
// # Usage
//
// Build a device from explicit links:
//
//	links := []device.Link{
//	    device.NewLink(0, 1),
//	    device.NewLink(1, 2),
//	}
//	topo, err := device.NewTopology(3, links)
//
// Or load a complete device description from a TOML file:
//
//	topo, calib, err := device.LoadFile("manila.toml")
package device

import (
	"errors"
	"fmt"
)

// Sentinel errors for device construction and queries.
var (
	// ErrQubitRange is returned when a link references a qubit id outside
	// the declared qubit count.
	ErrQubitRange = errors.New("qubit id out of range")

	// ErrSelfLink is returned by [NewTopology] when a link connects a qubit
	// to itself. The coupling graph has no self-loops.
	ErrSelfLink = errors.New("self-link not allowed")

	// ErrDuplicateLink is returned by [NewTopology] when the same unordered
	// pair appears twice in the link list.
	ErrDuplicateLink = errors.New("duplicate link")

	// ErrDisconnected is returned by [NewTopology] when the coupling graph
	// is not connected. Routing requires every qubit to be reachable from
	// every other qubit.
	ErrDisconnected = errors.New("topology is disconnected")

	// ErrUnreachable is returned by path queries when no path exists between
	// two qubits. It cannot occur on a [Topology] (connectivity is checked at
	// construction) but can occur on a masked [View].
	ErrUnreachable = errors.New("no path between qubits")

	// ErrUnknownLink is returned by [Calibration.Weight] when the queried
	// pair is not a link of the underlying topology.
	ErrUnknownLink = errors.New("unknown link")

	// ErrWeightRange is returned by [NewCalibration] when a fidelity value
	// lies outside (0, 1].
	ErrWeightRange = errors.New("link weight must be in (0, 1]")

	// ErrMissingWeight is returned by [NewCalibration] when a topology link
	// has no fidelity value.
	ErrMissingWeight = errors.New("link has no calibration weight")
)

// Qubit identifies a physical qubit slot on the device, numbered 0..N-1.
type Qubit int

// Link is an undirected coupling between two physical qubits, stored in
// canonical order: A < B always holds for links built via [NewLink].
// Canonical ordering makes Link usable as a map key and keeps the edge set
// de-duplicated without any run-time filtering.
type Link struct {
	A, B Qubit
}

// NewLink returns the canonical link for the unordered pair (a, b).
// The lower qubit id becomes A. NewLink does not reject self-pairs;
// [NewTopology] does.
func NewLink(a, b Qubit) Link {
	if a > b {
		a, b = b, a
	}
	return Link{A: a, B: b}
}

// Contains reports whether q is one of the link's endpoints.
func (l Link) Contains(q Qubit) bool { return l.A == q || l.B == q }

// Other returns the endpoint opposite to q. It panics if q is not an
// endpoint of the link.
func (l Link) Other(q Qubit) Qubit {
	switch q {
	case l.A:
		return l.B
	case l.B:
		return l.A
	}
	panic(fmt.Sprintf("device: qubit %d not on link %v", q, l))
}

func (l Link) String() string { return fmt.Sprintf("%d-%d", l.A, l.B) }
