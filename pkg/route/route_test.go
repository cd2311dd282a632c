package route

import (
	"bytes"
	"errors"
	"reflect"
	"testing"

	"github.com/matzehuels/qroute/pkg/circuit"
	"github.com/matzehuels/qroute/pkg/device"
)

func singleGateProgram(qubits int, g circuit.Gate) circuit.Program {
	return circuit.Program{Qubits: qubits, Layers: []circuit.Layer{{g}}}
}

// countSwaps returns the number of inserted swap instructions.
func countSwaps(ops []circuit.Gate) int {
	n := 0
	for _, g := range ops {
		if g.IsSwap() {
			n++
		}
	}
	return n
}

func TestRouteDistantPairOnRing(t *testing.T) {
	// Uniform ring, gate on physical 0 and 2 (distance 2): one swap must
	// bring the pair together, and the re-emitted gate must land on a link.
	topo, calib := uniformRing4(t, 0.99)
	prog := singleGateProgram(4, circuit.NewGate("cx", 0, 2))

	routed, err := Route(topo, calib, prog, DefaultOptions())
	if err != nil {
		t.Fatalf("Route: %v", err)
	}
	if routed.Swaps != 1 {
		t.Errorf("Swaps = %d, want 1", routed.Swaps)
	}
	last := routed.Ops[len(routed.Ops)-1]
	if last.Name != "cx" {
		t.Fatalf("last op = %v, want the original cx", last)
	}
	if !topo.HasLink(device.Qubit(last.Qubits[0]), device.Qubit(last.Qubits[1])) {
		t.Errorf("cx emitted on non-coupled pair %v", last.Qubits)
	}
}

func TestRouteAvoidsWeakLink(t *testing.T) {
	// Ring with one weak link: routing 0↔2 must execute the gate away from
	// the 0-1 coupling even though a path through it is equally short.
	topo, calib := buildDevice(t, 4, map[device.Link]float64{
		device.NewLink(0, 1): 0.5,
		device.NewLink(1, 2): 0.999,
		device.NewLink(2, 3): 0.999,
		device.NewLink(3, 0): 0.999,
	})
	prog := singleGateProgram(4, circuit.NewGate("cx", 0, 2))

	routed, err := Route(topo, calib, prog, Options{SearchDepth: 2})
	if err != nil {
		t.Fatalf("Route: %v", err)
	}
	last := routed.Ops[len(routed.Ops)-1]
	a, b := device.Qubit(last.Qubits[0]), device.Qubit(last.Qubits[1])
	if !topo.HasLink(a, b) {
		t.Fatalf("cx emitted on non-coupled pair %v", last.Qubits)
	}
	if device.NewLink(a, b) == device.NewLink(0, 1) {
		t.Errorf("cx emitted on the weak link %v", last.Qubits)
	}
}

func TestRouteAdjacentPairUntouched(t *testing.T) {
	topo, calib := uniformRing4(t, 0.99)
	prog := singleGateProgram(4, circuit.NewGate("cx", 0, 1))

	routed, err := Route(topo, calib, prog, DefaultOptions())
	if err != nil {
		t.Fatalf("Route: %v", err)
	}
	if routed.Swaps != 0 {
		t.Errorf("Swaps = %d, want 0", routed.Swaps)
	}
	want := []circuit.Gate{circuit.NewGate("cx", 0, 1)}
	if !reflect.DeepEqual(routed.Ops, want) {
		t.Errorf("Ops = %v, want %v", routed.Ops, want)
	}
}

func TestRouteCompleteGraphNeverSwaps(t *testing.T) {
	// Complete graph with uniform weights: every pair is coupled and no
	// relocation can strictly improve on the direct link.
	weights := map[device.Link]float64{}
	for a := 0; a < 5; a++ {
		for b := a + 1; b < 5; b++ {
			weights[device.NewLink(device.Qubit(a), device.Qubit(b))] = 0.98
		}
	}
	topo, calib := buildDevice(t, 5, weights)

	prog := circuit.Layerize(5, []circuit.Gate{
		circuit.NewGate("cx", 0, 4),
		circuit.NewGate("cx", 1, 3),
		circuit.NewGate("cx", 2, 0),
		circuit.NewGate("cx", 3, 4),
	})

	routed, err := Route(topo, calib, prog, DefaultOptions())
	if err != nil {
		t.Fatalf("Route: %v", err)
	}
	if routed.Swaps != 0 {
		t.Errorf("Swaps = %d, want 0 on a complete graph", routed.Swaps)
	}
}

func TestRouteAllTwoQubitOpsOnLinks(t *testing.T) {
	// Heavier program on a 2x3 grid: every emitted two-qubit operation,
	// swaps included, must act on a coupled pair.
	weights := map[device.Link]float64{
		device.NewLink(0, 1): 0.99,
		device.NewLink(1, 2): 0.97,
		device.NewLink(3, 4): 0.98,
		device.NewLink(4, 5): 0.95,
		device.NewLink(0, 3): 0.96,
		device.NewLink(1, 4): 0.90,
		device.NewLink(2, 5): 0.99,
	}
	topo, calib := buildDevice(t, 6, weights)

	prog := circuit.Layerize(6, []circuit.Gate{
		circuit.NewGate("h", 0),
		circuit.NewGate("cx", 0, 5),
		circuit.NewGate("cx", 2, 3),
		circuit.NewGate("cx", 1, 4),
		circuit.NewGate("cx", 0, 2),
		circuit.NewGate("x", 3),
		circuit.NewGate("cx", 4, 2),
	})

	routed, err := Route(topo, calib, prog, DefaultOptions())
	if err != nil {
		t.Fatalf("Route: %v", err)
	}
	for _, op := range routed.Ops {
		if !op.IsTwoQubit() {
			continue
		}
		if !topo.HasLink(device.Qubit(op.Qubits[0]), device.Qubit(op.Qubits[1])) {
			t.Errorf("op %v acts on non-coupled pair", op)
		}
	}
}

func TestRoutePreservesOriginalOrder(t *testing.T) {
	topo, calib := uniformRing4(t, 0.99)
	gates := []circuit.Gate{
		circuit.NewGate("h", 0),
		circuit.NewGate("cx", 0, 2),
		circuit.NewGate("x", 1),
		circuit.NewGate("cx", 1, 3),
		circuit.NewGate("measure", 0),
	}
	prog := circuit.Layerize(4, gates)

	routed, err := Route(topo, calib, prog, DefaultOptions())
	if err != nil {
		t.Fatalf("Route: %v", err)
	}

	var gotNames []string
	for _, op := range routed.Ops {
		if !op.IsSwap() {
			gotNames = append(gotNames, op.Name)
		}
	}
	var wantNames []string
	for _, g := range prog.Flatten() {
		wantNames = append(wantNames, g.Name)
	}
	if !reflect.DeepEqual(gotNames, wantNames) {
		t.Errorf("original op order = %v, want %v", gotNames, wantNames)
	}
}

func TestRouteFinalLayoutConsistent(t *testing.T) {
	topo, calib := uniformRing4(t, 0.99)
	prog := singleGateProgram(4, circuit.NewGate("cx", 0, 2))

	routed, err := Route(topo, calib, prog, DefaultOptions())
	if err != nil {
		t.Fatalf("Route: %v", err)
	}

	// Replaying the inserted swaps against a fresh identity layout must
	// reproduce the final layout.
	replay := IdentityLayout(4)
	for _, op := range routed.Ops {
		if op.IsSwap() {
			replay.Swap(device.Qubit(op.Qubits[0]), device.Qubit(op.Qubits[1]))
		}
	}
	if !reflect.DeepEqual(replay.Mapping(), routed.Final.Mapping()) {
		t.Errorf("replayed layout %v != final layout %v", replay.Mapping(), routed.Final.Mapping())
	}

	for p := device.Qubit(0); int(p) < 4; p++ {
		if got := routed.Final.Physical(routed.Final.Logical(p)); got != p {
			t.Errorf("final layout bijection broken at physical %d", p)
		}
	}
}

func TestRouteDeterministic(t *testing.T) {
	topo, calib := buildDevice(t, 4, map[device.Link]float64{
		device.NewLink(0, 1): 0.5,
		device.NewLink(1, 2): 0.999,
		device.NewLink(2, 3): 0.999,
		device.NewLink(3, 0): 0.999,
	})
	prog := circuit.Layerize(4, []circuit.Gate{
		circuit.NewGate("cx", 0, 2),
		circuit.NewGate("cx", 1, 3),
		circuit.NewGate("cx", 0, 1),
	})

	first, err := Route(topo, calib, prog, DefaultOptions())
	if err != nil {
		t.Fatalf("Route: %v", err)
	}
	second, err := Route(topo, calib, prog, DefaultOptions())
	if err != nil {
		t.Fatalf("Route: %v", err)
	}

	a, err := circuit.MarshalProgram(first.Program())
	if err != nil {
		t.Fatal(err)
	}
	b, err := circuit.MarshalProgram(second.Program())
	if err != nil {
		t.Fatal(err)
	}
	if !bytes.Equal(a, b) {
		t.Error("two identical runs produced different routed programs")
	}
	if !reflect.DeepEqual(first.Final.Mapping(), second.Final.Mapping()) {
		t.Error("two identical runs produced different final layouts")
	}
}

func TestRouteCustomInitialLayout(t *testing.T) {
	topo, calib := uniformRing4(t, 0.99)

	// Logical 0 starts on physical 1, logical 1 on physical 2: the gate's
	// endpoints are already adjacent and nothing should move.
	initial, err := NewLayout([]device.Qubit{1, 2, 0, 3})
	if err != nil {
		t.Fatal(err)
	}
	prog := singleGateProgram(4, circuit.NewGate("cx", 0, 1))

	routed, err := Route(topo, calib, prog, Options{SearchDepth: 2, Initial: initial})
	if err != nil {
		t.Fatalf("Route: %v", err)
	}
	if routed.Swaps != 0 {
		t.Errorf("Swaps = %d, want 0", routed.Swaps)
	}
	last := routed.Ops[len(routed.Ops)-1]
	if last.Qubits[0] != 1 || last.Qubits[1] != 2 {
		t.Errorf("cx emitted on %v, want physical 1,2", last.Qubits)
	}
	if initial.Physical(0) != 1 {
		t.Error("Route mutated the caller's initial layout")
	}
}

func TestRouteInputValidation(t *testing.T) {
	topo, calib := uniformRing4(t, 0.99)

	tests := []struct {
		name string
		prog circuit.Program
		opts Options
		want error
	}{
		{
			name: "TooManyQubits",
			prog: singleGateProgram(9, circuit.NewGate("cx", 0, 8)),
			opts: DefaultOptions(),
			want: ErrTopologyMismatch,
		},
		{
			name: "NegativeDepth",
			prog: singleGateProgram(4, circuit.NewGate("cx", 0, 1)),
			opts: Options{SearchDepth: -1},
			want: ErrSearchDepth,
		},
		{
			name: "GateOutOfRange",
			prog: singleGateProgram(4, circuit.NewGate("cx", 0, 7)),
			opts: DefaultOptions(),
			want: circuit.ErrQubitRange,
		},
		{
			name: "InitialLayoutWrongSize",
			prog: singleGateProgram(4, circuit.NewGate("cx", 0, 1)),
			opts: Options{SearchDepth: 2, Initial: IdentityLayout(3)},
			want: ErrTopologyMismatch,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := Route(topo, calib, tt.prog, tt.opts); !errors.Is(err, tt.want) {
				t.Errorf("Route error = %v, want %v", err, tt.want)
			}
		})
	}
}

func TestRouteFallbackChainLength(t *testing.T) {
	// Path graph 0-1-2-3, search depth 0 forces the basic fallback: a gate
	// on 0 and 3 (distance 3) needs exactly two swaps to become adjacent.
	topo, calib := buildDevice(t, 4, map[device.Link]float64{
		device.NewLink(0, 1): 0.99,
		device.NewLink(1, 2): 0.99,
		device.NewLink(2, 3): 0.99,
	})
	prog := singleGateProgram(4, circuit.NewGate("cx", 0, 3))

	routed, err := Route(topo, calib, prog, Options{SearchDepth: 0})
	if err != nil {
		t.Fatalf("Route: %v", err)
	}
	if got := countSwaps(routed.Ops); got != 2 {
		t.Errorf("swap count = %d, want 2", got)
	}
	last := routed.Ops[len(routed.Ops)-1]
	if !topo.HasLink(device.Qubit(last.Qubits[0]), device.Qubit(last.Qubits[1])) {
		t.Errorf("cx emitted on non-coupled pair %v", last.Qubits)
	}
}
