package pipeline

import (
	"bytes"
	"context"
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/qroute/pkg/cache"
	"github.com/matzehuels/qroute/pkg/circuit"
	"github.com/matzehuels/qroute/pkg/device"
	"github.com/matzehuels/qroute/pkg/route"
)

const ringTOML = `name = "test-ring"
qubits = 4

[[link]]
qubits = [0, 1]
fidelity = 0.99

[[link]]
qubits = [1, 2]
fidelity = 0.99

[[link]]
qubits = [2, 3]
fidelity = 0.99

[[link]]
qubits = [3, 0]
fidelity = 0.99
`

const distantQASM = `OPENQASM 2.0;
include "qelib1.inc";
qreg q[4];
creg c[4];
h q[0];
cx q[0],q[2];
measure q[0] -> c[0];
measure q[2] -> c[2];
`

// writeFixtures writes a device and program file into a temp dir.
func writeFixtures(t *testing.T) (devicePath, programPath string) {
	t.Helper()
	dir := t.TempDir()
	devicePath = filepath.Join(dir, "ring.toml")
	programPath = filepath.Join(dir, "distant.qasm")
	if err := os.WriteFile(devicePath, []byte(ringTOML), 0644); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(programPath, []byte(distantQASM), 0644); err != nil {
		t.Fatal(err)
	}
	return devicePath, programPath
}

func quietLogger() *log.Logger {
	return log.NewWithOptions(io.Discard, log.Options{})
}

func TestExecuteFromFiles(t *testing.T) {
	devicePath, programPath := writeFixtures(t)
	runner := NewRunner(nil, quietLogger())
	defer runner.Close()

	result, err := runner.Execute(context.Background(), Options{
		DevicePath:  devicePath,
		ProgramPath: programPath,
	})
	if err != nil {
		t.Fatalf("Execute: %v", err)
	}

	if result.Spec.Name != "test-ring" {
		t.Errorf("Spec.Name = %q, want test-ring", result.Spec.Name)
	}
	if result.Routed == nil || result.Routed.Final == nil {
		t.Fatal("missing routed output")
	}
	// cx 0-2 on a uniform ring needs exactly one swap.
	if result.Routed.Swaps != 1 {
		t.Errorf("Swaps = %d, want 1", result.Routed.Swaps)
	}
	if result.Report.Swaps != result.Routed.Swaps {
		t.Errorf("report swaps %d != routed swaps %d", result.Report.Swaps, result.Routed.Swaps)
	}
	if result.Report.Fidelity <= 0 || result.Report.Fidelity > 1 {
		t.Errorf("Fidelity = %v, want (0, 1]", result.Report.Fidelity)
	}
	if result.RoutedHash == "" {
		t.Error("missing routed hash")
	}
	if result.CacheInfo.RouteHit {
		t.Error("first run should not hit the cache")
	}
}

func TestExecuteInlineValues(t *testing.T) {
	spec := device.Spec{
		Name:   "inline",
		Qubits: 3,
		Links: []device.LinkSpec{
			{Qubits: [2]int{0, 1}, Fidelity: 0.99},
			{Qubits: [2]int{1, 2}, Fidelity: 0.99},
		},
	}
	prog := circuit.Program{
		Qubits: 3,
		Layers: []circuit.Layer{{circuit.NewGate("cx", 0, 1)}},
	}

	runner := NewRunner(nil, quietLogger())
	defer runner.Close()

	result, err := runner.Execute(context.Background(), Options{
		Device:  &spec,
		Program: &prog,
	})
	if err != nil {
		t.Fatalf("Execute: %v", err)
	}
	if result.Routed.Swaps != 0 {
		t.Errorf("adjacent gate routed with %d swaps", result.Routed.Swaps)
	}
}

func TestExecuteRouteCache(t *testing.T) {
	devicePath, programPath := writeFixtures(t)
	fc, err := cache.NewFileCache(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	runner := NewRunner(fc, quietLogger())
	defer runner.Close()

	opts := Options{DevicePath: devicePath, ProgramPath: programPath}
	ctx := context.Background()

	first, err := runner.Execute(ctx, opts)
	if err != nil {
		t.Fatalf("first Execute: %v", err)
	}
	if first.CacheInfo.RouteHit {
		t.Error("first run should miss")
	}

	second, err := runner.Execute(ctx, opts)
	if err != nil {
		t.Fatalf("second Execute: %v", err)
	}
	if !second.CacheInfo.RouteHit {
		t.Error("second run should hit the cache")
	}

	// Cached and computed results must be byte-identical.
	a, err := route.MarshalRouted(first.Routed)
	if err != nil {
		t.Fatal(err)
	}
	b, err := route.MarshalRouted(second.Routed)
	if err != nil {
		t.Fatal(err)
	}
	if !bytes.Equal(a, b) {
		t.Error("cached routed program differs from computed one")
	}

	// Refresh bypasses the cache.
	refreshOpts := opts
	refreshOpts.Refresh = true
	third, err := runner.Execute(ctx, refreshOpts)
	if err != nil {
		t.Fatalf("refresh Execute: %v", err)
	}
	if third.CacheInfo.RouteHit {
		t.Error("refresh run should not hit the cache")
	}
}

func TestExecuteShortestPathOnly(t *testing.T) {
	devicePath, programPath := writeFixtures(t)
	runner := NewRunner(nil, quietLogger())
	defer runner.Close()

	// Depth -1 skips the fidelity search; distant pairs still get their
	// shortest-path swap chain.
	result, err := runner.Execute(context.Background(), Options{
		DevicePath:  devicePath,
		ProgramPath: programPath,
		SearchDepth: -1,
	})
	if err != nil {
		t.Fatalf("Execute: %v", err)
	}
	if result.Routed.Swaps != 1 {
		t.Errorf("Swaps = %d, want 1", result.Routed.Swaps)
	}
}

func TestOptionsValidation(t *testing.T) {
	devicePath, programPath := writeFixtures(t)

	tests := []struct {
		name string
		opts Options
	}{
		{"missing device", Options{ProgramPath: programPath}},
		{"missing program", Options{DevicePath: devicePath}},
		{"negative depth", Options{DevicePath: devicePath, ProgramPath: programPath, SearchDepth: -2}},
	}

	runner := NewRunner(nil, quietLogger())
	defer runner.Close()

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tt.opts.Logger = quietLogger()
			if _, err := runner.Execute(context.Background(), tt.opts); err == nil {
				t.Error("expected error")
			}
		})
	}
}

func TestExecuteInitialLayout(t *testing.T) {
	devicePath, programPath := writeFixtures(t)
	runner := NewRunner(nil, quietLogger())
	defer runner.Close()

	// Placing logical 2 adjacent to logical 0 avoids the swap entirely.
	result, err := runner.Execute(context.Background(), Options{
		DevicePath:    devicePath,
		ProgramPath:   programPath,
		InitialLayout: []int{0, 2, 1, 3},
	})
	if err != nil {
		t.Fatalf("Execute: %v", err)
	}
	if result.Routed.Swaps != 0 {
		t.Errorf("Swaps = %d, want 0 with adjacent initial layout", result.Routed.Swaps)
	}

	// A layout that is not a permutation of the device qubits fails.
	_, err = runner.Execute(context.Background(), Options{
		DevicePath:    devicePath,
		ProgramPath:   programPath,
		InitialLayout: []int{0, 0, 1, 2},
	})
	if err == nil {
		t.Error("expected error for invalid initial layout")
	}
}

func TestLoadProgramFormats(t *testing.T) {
	dir := t.TempDir()

	prog := circuit.Program{
		Qubits: 2,
		Layers: []circuit.Layer{{circuit.NewGate("cx", 0, 1)}},
	}
	jsonPath := filepath.Join(dir, "prog.json")
	if err := circuit.WriteProgramFile(prog, jsonPath); err != nil {
		t.Fatal(err)
	}

	loaded, err := LoadProgram(Options{ProgramPath: jsonPath})
	if err != nil {
		t.Fatalf("LoadProgram json: %v", err)
	}
	if loaded.Qubits != 2 {
		t.Errorf("Qubits = %d, want 2", loaded.Qubits)
	}

	if _, err := LoadProgram(Options{ProgramPath: filepath.Join(dir, "prog.txt")}); err == nil {
		t.Error("expected error for unsupported extension")
	}
}
