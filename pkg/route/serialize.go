package route

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"os"
)

// MarshalRouted converts a routing result to indented JSON bytes.
func MarshalRouted(r *Routed) ([]byte, error) {
	var buf bytes.Buffer
	if err := writeRoutedTo(r, &buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// WriteRouted writes a routing result as JSON to an io.Writer.
func WriteRouted(r *Routed, w io.Writer) error {
	return writeRoutedTo(r, w)
}

// WriteRoutedFile writes a routing result to a JSON file with 0644
// permissions.
func WriteRoutedFile(r *Routed, path string) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}
	defer f.Close()
	return writeRoutedTo(r, f)
}

// ReadRouted decodes a JSON routing result from an io.Reader.
func ReadRouted(rd io.Reader) (*Routed, error) {
	var r Routed
	if err := json.NewDecoder(rd).Decode(&r); err != nil {
		return nil, fmt.Errorf("decode: %w", err)
	}
	if r.Final == nil {
		return nil, fmt.Errorf("decode: missing final layout")
	}
	return &r, nil
}

// ReadRoutedFile reads a JSON routing result file. See [ReadRouted].
func ReadRoutedFile(path string) (*Routed, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", path, err)
	}
	defer f.Close()
	return ReadRouted(f)
}

func writeRoutedTo(r *Routed, w io.Writer) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(r); err != nil {
		return fmt.Errorf("encode: %w", err)
	}
	return nil
}
