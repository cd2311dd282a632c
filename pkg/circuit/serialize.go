package circuit

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"os"
)

// MarshalProgram converts a program to indented JSON bytes.
func MarshalProgram(p Program) ([]byte, error) {
	var buf bytes.Buffer
	if err := writeProgramTo(p, &buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// WriteProgram writes a program as JSON to an io.Writer.
func WriteProgram(p Program, w io.Writer) error {
	return writeProgramTo(p, w)
}

// WriteProgramFile writes a program to a JSON file with 0644 permissions.
func WriteProgramFile(p Program, path string) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}
	defer f.Close()
	return writeProgramTo(p, f)
}

// ReadProgram decodes a JSON program from an io.Reader and validates it.
func ReadProgram(r io.Reader) (Program, error) {
	var p Program
	if err := json.NewDecoder(r).Decode(&p); err != nil {
		return Program{}, fmt.Errorf("decode: %w", err)
	}
	if err := p.Validate(); err != nil {
		return Program{}, err
	}
	return p, nil
}

// ReadProgramFile reads a JSON program file. See [ReadProgram].
func ReadProgramFile(path string) (Program, error) {
	f, err := os.Open(path)
	if err != nil {
		return Program{}, fmt.Errorf("open %s: %w", path, err)
	}
	defer f.Close()
	return ReadProgram(f)
}

func writeProgramTo(p Program, w io.Writer) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(p); err != nil {
		return fmt.Errorf("encode: %w", err)
	}
	return nil
}
