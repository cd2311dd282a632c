package circuit

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"regexp"
	"strconv"
	"strings"
)

// Pre-compiled regexps for the OpenQASM 2 subset.
var (
	qregRegex    = regexp.MustCompile(`^qreg\s+(\w+)\[(\d+)\];?$`)
	cregRegex    = regexp.MustCompile(`^creg\s+\w+\[\d+\];?$`)
	oneQubitRe   = regexp.MustCompile(`^(\w+)(?:\([^)]*\))?\s+\w+\[(\d+)\];?$`)
	twoQubitRe   = regexp.MustCompile(`^(\w+)(?:\([^)]*\))?\s+\w+\[(\d+)\]\s*,\s*\w+\[(\d+)\];?$`)
	measureRegex = regexp.MustCompile(`^measure\s+\w+\[(\d+)\]\s*->\s*\w+\[(\d+)\];?$`)
)

// Parse reads a small OpenQASM 2 subset and returns a layered program.
//
// Supported statements: a single qreg declaration, creg declarations
// (recorded but otherwise ignored), one- and two-qubit gate applications
// (with optional parameter lists, which routing does not interpret), and
// measurements. Header lines (OPENQASM, include), comments, and blank lines
// are skipped. Anything else is a parse error.
//
// Gates are layered with [Layerize]; layering and dependency analysis is the
// caller-visible contract, the flat statement order is not retained.
func Parse(r io.Reader) (Program, error) {
	var (
		gates  []Gate
		qubits = -1
	)

	scanner := bufio.NewScanner(r)
	lineno := 0
	for scanner.Scan() {
		lineno++
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "//") ||
			strings.HasPrefix(line, "OPENQASM") || strings.HasPrefix(line, "include") {
			continue
		}

		switch {
		case qregRegex.MatchString(line):
			m := qregRegex.FindStringSubmatch(line)
			n, _ := strconv.Atoi(m[2])
			if qubits >= 0 {
				return Program{}, fmt.Errorf("line %d: multiple qreg declarations", lineno)
			}
			qubits = n

		case cregRegex.MatchString(line):
			// Classical registers do not participate in routing.

		case measureRegex.MatchString(line):
			m := measureRegex.FindStringSubmatch(line)
			q, _ := strconv.Atoi(m[1])
			gates = append(gates, NewGate(MeasureName, q))

		case twoQubitRe.MatchString(line):
			m := twoQubitRe.FindStringSubmatch(line)
			a, _ := strconv.Atoi(m[2])
			b, _ := strconv.Atoi(m[3])
			if a == b {
				return Program{}, fmt.Errorf("line %d: two-qubit gate on a single qubit: %s", lineno, line)
			}
			gates = append(gates, NewGate(strings.ToLower(m[1]), a, b))

		case oneQubitRe.MatchString(line):
			m := oneQubitRe.FindStringSubmatch(line)
			q, _ := strconv.Atoi(m[2])
			gates = append(gates, NewGate(strings.ToLower(m[1]), q))

		default:
			return Program{}, fmt.Errorf("line %d: unsupported statement: %s", lineno, line)
		}
	}
	if err := scanner.Err(); err != nil {
		return Program{}, fmt.Errorf("read program: %w", err)
	}
	if qubits < 0 {
		return Program{}, fmt.Errorf("program has no qreg declaration")
	}

	p := Layerize(qubits, gates)
	if err := p.Validate(); err != nil {
		return Program{}, err
	}
	return p, nil
}

// ParseFile reads and parses an OpenQASM file. See [Parse].
func ParseFile(path string) (Program, error) {
	f, err := os.Open(path)
	if err != nil {
		return Program{}, fmt.Errorf("open %s: %w", path, err)
	}
	defer f.Close()
	return Parse(f)
}
