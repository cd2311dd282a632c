package device

import (
	"errors"
	"testing"
)

func TestNewCalibrationValidation(t *testing.T) {
	topo := ring4(t)

	full := func(w float64) map[Link]float64 {
		m := make(map[Link]float64)
		for _, l := range topo.Links() {
			m[l] = w
		}
		return m
	}

	tests := []struct {
		name    string
		weights func() map[Link]float64
		want    error
	}{
		{
			name:    "Valid",
			weights: func() map[Link]float64 { return full(0.99) },
		},
		{
			name: "UnknownLink",
			weights: func() map[Link]float64 {
				m := full(0.99)
				m[NewLink(0, 2)] = 0.9
				return m
			},
			want: ErrUnknownLink,
		},
		{
			name: "MissingWeight",
			weights: func() map[Link]float64 {
				m := full(0.99)
				delete(m, NewLink(0, 1))
				return m
			},
			want: ErrMissingWeight,
		},
		{
			name:    "ZeroWeight",
			weights: func() map[Link]float64 { return full(0) },
			want:    ErrWeightRange,
		},
		{
			name:    "AboveOne",
			weights: func() map[Link]float64 { return full(1.5) },
			want:    ErrWeightRange,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewCalibration(topo, tt.weights())
			if !errors.Is(err, tt.want) {
				t.Errorf("NewCalibration error = %v, want %v", err, tt.want)
			}
		})
	}
}

func TestWeightOrientation(t *testing.T) {
	topo := ring4(t)
	calib, err := NewCalibration(topo, map[Link]float64{
		NewLink(0, 1): 0.5,
		NewLink(1, 2): 0.99,
		NewLink(2, 3): 0.99,
		NewLink(3, 0): 0.99,
	})
	if err != nil {
		t.Fatalf("NewCalibration: %v", err)
	}

	for _, pair := range [][2]Qubit{{0, 1}, {1, 0}} {
		w, err := calib.Weight(pair[0], pair[1])
		if err != nil {
			t.Fatalf("Weight(%d, %d): %v", pair[0], pair[1], err)
		}
		if w != 0.5 {
			t.Errorf("Weight(%d, %d) = %v, want 0.5", pair[0], pair[1], w)
		}
	}

	if _, err := calib.Weight(0, 2); !errors.Is(err, ErrUnknownLink) {
		t.Errorf("Weight(0, 2) error = %v, want %v", err, ErrUnknownLink)
	}
}

func TestUniformCalibration(t *testing.T) {
	topo := ring4(t)
	calib, err := UniformCalibration(topo, 0.97)
	if err != nil {
		t.Fatalf("UniformCalibration: %v", err)
	}
	for _, l := range topo.Links() {
		w, err := calib.WeightLink(l)
		if err != nil {
			t.Fatalf("WeightLink(%v): %v", l, err)
		}
		if w != 0.97 {
			t.Errorf("WeightLink(%v) = %v, want 0.97", l, w)
		}
	}
}
