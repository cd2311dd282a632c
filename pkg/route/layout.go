package route

import (
	"encoding/json"
	"fmt"
	"slices"

	"github.com/matzehuels/qroute/pkg/device"
)

// Layout is the bijective mapping between logical program qubits and
// physical device qubits. It always covers the full physical qubit set:
// every logical id 0..N-1 owns exactly one physical slot and vice versa,
// even when the program uses fewer qubits than the device has.
//
// A Layout is mutated only through [Layout.Swap] and is owned exclusively by
// one routing run at a time. The zero value is not usable; use
// [IdentityLayout] or [NewLayout].
type Layout struct {
	phys []device.Qubit // logical -> physical
	log  []int          // physical -> logical
}

// IdentityLayout maps every logical qubit i to physical qubit i.
func IdentityLayout(numQubits int) *Layout {
	l := &Layout{
		phys: make([]device.Qubit, numQubits),
		log:  make([]int, numQubits),
	}
	for i := range l.phys {
		l.phys[i] = device.Qubit(i)
		l.log[i] = i
	}
	return l
}

// NewLayout builds a layout from an explicit logical→physical assignment.
// The slice must be a permutation of 0..len-1; anything else fails.
func NewLayout(physOf []device.Qubit) (*Layout, error) {
	l := &Layout{
		phys: slices.Clone(physOf),
		log:  make([]int, len(physOf)),
	}
	for i := range l.log {
		l.log[i] = -1
	}
	for logical, p := range l.phys {
		if p < 0 || int(p) >= len(l.log) {
			return nil, fmt.Errorf("layout: physical qubit %d out of range", p)
		}
		if l.log[p] >= 0 {
			return nil, fmt.Errorf("layout: physical qubit %d assigned twice", p)
		}
		l.log[p] = logical
	}
	return l, nil
}

// NumQubits returns the size of the mapped qubit set.
func (l *Layout) NumQubits() int { return len(l.phys) }

// Physical returns the physical qubit currently holding logical qubit q.
func (l *Layout) Physical(logical int) device.Qubit { return l.phys[logical] }

// Logical returns the logical qubit currently held by physical slot p.
func (l *Layout) Logical(p device.Qubit) int { return l.log[p] }

// Swap exchanges the logical occupants of two physical slots in O(1).
// Swapping a slot with itself is a harmless no-op.
func (l *Layout) Swap(a, b device.Qubit) {
	if a == b {
		return
	}
	la, lb := l.log[a], l.log[b]
	l.log[a], l.log[b] = lb, la
	l.phys[la], l.phys[lb] = b, a
}

// Clone returns an independent copy of the layout.
func (l *Layout) Clone() *Layout {
	return &Layout{phys: slices.Clone(l.phys), log: slices.Clone(l.log)}
}

// Mapping returns a copy of the logical→physical assignment, indexed by
// logical qubit. Downstream consumers use this to map physical measurement
// outcomes back to logical qubit order.
func (l *Layout) Mapping() []device.Qubit { return slices.Clone(l.phys) }

// MarshalJSON encodes the layout as its logical→physical assignment array.
func (l *Layout) MarshalJSON() ([]byte, error) {
	return json.Marshal(l.phys)
}

// UnmarshalJSON decodes a logical→physical assignment array, rejecting
// anything that is not a permutation.
func (l *Layout) UnmarshalJSON(data []byte) error {
	var phys []device.Qubit
	if err := json.Unmarshal(data, &phys); err != nil {
		return err
	}
	decoded, err := NewLayout(phys)
	if err != nil {
		return err
	}
	*l = *decoded
	return nil
}
