package route

import (
	"testing"

	"github.com/matzehuels/qroute/pkg/device"
)

func TestIdentityLayout(t *testing.T) {
	l := IdentityLayout(4)
	for i := 0; i < 4; i++ {
		if got := l.Physical(i); got != device.Qubit(i) {
			t.Errorf("Physical(%d) = %d, want %d", i, got, i)
		}
		if got := l.Logical(device.Qubit(i)); got != i {
			t.Errorf("Logical(%d) = %d, want %d", i, got, i)
		}
	}
}

func TestSwapMaintainsBijection(t *testing.T) {
	l := IdentityLayout(5)

	// A fixed swap sequence, including a self-swap, which must be a no-op.
	swaps := [][2]device.Qubit{{0, 1}, {1, 2}, {3, 3}, {4, 0}, {2, 4}, {0, 1}}
	for _, s := range swaps {
		l.Swap(s[0], s[1])
		for p := device.Qubit(0); int(p) < l.NumQubits(); p++ {
			if got := l.Physical(l.Logical(p)); got != p {
				t.Fatalf("after Swap(%d, %d): Physical(Logical(%d)) = %d", s[0], s[1], p, got)
			}
		}
	}
}

func TestSwapMovesOccupants(t *testing.T) {
	l := IdentityLayout(3)
	l.Swap(0, 2)
	if got := l.Physical(0); got != 2 {
		t.Errorf("Physical(0) = %d, want 2", got)
	}
	if got := l.Physical(2); got != 0 {
		t.Errorf("Physical(2) = %d, want 0", got)
	}
	if got := l.Physical(1); got != 1 {
		t.Errorf("Physical(1) = %d, want 1", got)
	}
}

func TestNewLayoutValidation(t *testing.T) {
	tests := []struct {
		name    string
		physOf  []device.Qubit
		wantErr bool
	}{
		{name: "Permutation", physOf: []device.Qubit{2, 0, 1}},
		{name: "OutOfRange", physOf: []device.Qubit{0, 1, 5}, wantErr: true},
		{name: "Duplicate", physOf: []device.Qubit{0, 1, 1}, wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			l, err := NewLayout(tt.physOf)
			if tt.wantErr {
				if err == nil {
					t.Error("NewLayout succeeded, want error")
				}
				return
			}
			if err != nil {
				t.Fatalf("NewLayout: %v", err)
			}
			for logical, p := range tt.physOf {
				if got := l.Logical(p); got != logical {
					t.Errorf("Logical(%d) = %d, want %d", p, got, logical)
				}
			}
		})
	}
}

func TestCloneIsIndependent(t *testing.T) {
	l := IdentityLayout(3)
	c := l.Clone()
	c.Swap(0, 1)
	if l.Physical(0) != 0 {
		t.Error("Swap on clone mutated the original")
	}
	if c.Physical(0) != 1 {
		t.Error("Swap on clone had no effect")
	}
}
