package device

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"
)

// =============================================================================
// Device Description Files
// =============================================================================

// Spec is the on-disk description of a device: qubit count, link list, and
// per-link fidelities. TOML is the authoring format; JSON is supported for
// machine-generated descriptions and round-tripping.
//
// Example TOML:
//
//	name = "manila"
//	qubits = 5
//
//	[[link]]
//	qubits = [0, 1]
//	fidelity = 0.991
type Spec struct {
	Name   string     `toml:"name" json:"name,omitempty"`
	Qubits int        `toml:"qubits" json:"qubits"`
	Links  []LinkSpec `toml:"link" json:"links"`
}

// LinkSpec describes one coupling and its calibrated fidelity.
type LinkSpec struct {
	Qubits   [2]int  `toml:"qubits" json:"qubits"`
	Fidelity float64 `toml:"fidelity" json:"fidelity"`
}

// Build validates the spec and constructs the topology and calibration.
func (s Spec) Build() (*Topology, *Calibration, error) {
	links := make([]Link, len(s.Links))
	weights := make(map[Link]float64, len(s.Links))
	for i, ls := range s.Links {
		l := NewLink(Qubit(ls.Qubits[0]), Qubit(ls.Qubits[1]))
		links[i] = l
		weights[l] = ls.Fidelity
	}
	t, err := NewTopology(s.Qubits, links)
	if err != nil {
		return nil, nil, fmt.Errorf("device %q: %w", s.Name, err)
	}
	c, err := NewCalibration(t, weights)
	if err != nil {
		return nil, nil, fmt.Errorf("device %q: %w", s.Name, err)
	}
	return t, c, nil
}

// Describe is the inverse of [Spec.Build]: it captures an existing topology
// and calibration as a serializable spec with links in canonical order.
func Describe(name string, t *Topology, c *Calibration) Spec {
	s := Spec{Name: name, Qubits: t.NumQubits()}
	for _, l := range t.Links() {
		w, _ := c.WeightLink(l)
		s.Links = append(s.Links, LinkSpec{
			Qubits:   [2]int{int(l.A), int(l.B)},
			Fidelity: w,
		})
	}
	return s
}

// LoadSpecFile reads a device description without building it. The format
// is chosen by extension: .toml or .json.
func LoadSpecFile(path string) (Spec, error) {
	f, err := os.Open(path)
	if err != nil {
		return Spec{}, fmt.Errorf("open %s: %w", path, err)
	}
	defer f.Close()

	var s Spec
	switch ext := strings.ToLower(filepath.Ext(path)); ext {
	case ".toml":
		if _, err := toml.NewDecoder(f).Decode(&s); err != nil {
			return Spec{}, fmt.Errorf("decode %s: %w", path, err)
		}
	case ".json":
		if err := json.NewDecoder(f).Decode(&s); err != nil {
			return Spec{}, fmt.Errorf("decode %s: %w", path, err)
		}
	default:
		return Spec{}, fmt.Errorf("unsupported device file extension %q", ext)
	}
	return s, nil
}

// LoadFile reads a device description and builds its topology and
// calibration. See [LoadSpecFile] for format handling.
func LoadFile(path string) (*Topology, *Calibration, error) {
	s, err := LoadSpecFile(path)
	if err != nil {
		return nil, nil, err
	}
	return s.Build()
}

// MarshalSpec converts a spec to indented JSON bytes.
func MarshalSpec(s Spec) ([]byte, error) {
	var buf bytes.Buffer
	if err := writeSpecTo(s, &buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// WriteSpec writes a spec as JSON to an io.Writer.
func WriteSpec(s Spec, w io.Writer) error {
	return writeSpecTo(s, w)
}

// WriteSpecFile writes a spec to a JSON file with 0644 permissions.
func WriteSpecFile(s Spec, path string) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}
	defer f.Close()
	return writeSpecTo(s, f)
}

func writeSpecTo(s Spec, w io.Writer) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(s); err != nil {
		return fmt.Errorf("encode: %w", err)
	}
	return nil
}
