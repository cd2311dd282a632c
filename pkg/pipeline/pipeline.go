// Package pipeline provides the core routing pipeline: load a device
// description, parse a program, route it, and measure the result.
//
// This package implements the complete load → route → measure pipeline that
// can be used by CLI and API components. By centralizing this logic, we
// ensure consistent behavior across all entry points and avoid code
// duplication.
//
// # Architecture
//
// The pipeline consists of three stages:
//
//  1. Load: Read the device description and the input program from files or
//     pre-parsed values
//  2. Route: Map the program onto the device, inserting swap chains
//  3. Measure: Compute gate counts, depth, and predicted fidelity
//
// Routing is deterministic, so routed results are cached keyed by a hash of
// the device, program, and search depth.
//
// # Usage
//
// Create a Runner and execute the pipeline:
//
//	runner := pipeline.NewRunner(cache, logger)
//	opts := pipeline.Options{
//	    DevicePath:  "manila.toml",
//	    ProgramPath: "bell.qasm",
//	}
//	result, err := runner.Execute(ctx, opts)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	fmt.Println(result.Report.Fidelity)
package pipeline

import (
	"fmt"
	"io"
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/qroute/pkg/circuit"
	"github.com/matzehuels/qroute/pkg/device"
	"github.com/matzehuels/qroute/pkg/metrics"
	"github.com/matzehuels/qroute/pkg/route"
)

// =============================================================================
// Default Values - Single Source of Truth for CLI and API
// =============================================================================

// DefaultSearchDepth is the candidate-link search radius used when the
// options leave it unset. It mirrors [route.DefaultSearchDepth].
const DefaultSearchDepth = route.DefaultSearchDepth

// =============================================================================
// Options - Pipeline Configuration
// =============================================================================

// Options contains all configuration for the routing pipeline.
// This struct supports JSON serialization for API requests; path fields are
// CLI-only and inline values take precedence over paths.
type Options struct {
	// Load options. Each input needs exactly one source: a file path (CLI)
	// or an inline value (API).
	DevicePath  string           `json:"-"`
	ProgramPath string           `json:"-"`
	Device      *device.Spec     `json:"device,omitempty"`
	Program     *circuit.Program `json:"program,omitempty"`

	// Route options. SearchDepth zero means [DefaultSearchDepth]; -1 disables
	// the fidelity-aware candidate search, leaving shortest-path swap chains
	// only.
	SearchDepth   int   `json:"search_depth,omitempty"`
	InitialLayout []int `json:"initial_layout,omitempty"`
	Refresh       bool  `json:"refresh,omitempty"`

	// Runtime options (not serialized)
	Logger *log.Logger `json:"-"`

	// validated tracks whether ValidateAndSetDefaults has been called.
	validated bool
}

// Result contains the outputs of a pipeline run.
type Result struct {
	// Spec is the resolved device description.
	Spec device.Spec

	// Input is the parsed logical program.
	Input circuit.Program

	// Routed is the program re-expressed over physical qubits.
	Routed *route.Routed

	// Report contains gate counts, depth, and predicted fidelity.
	Report metrics.Report

	// RoutedHash is the content hash of the routed program.
	RoutedHash string

	// Stats contains timing information.
	Stats Stats

	// CacheInfo tracks whether the routing stage hit the cache.
	CacheInfo CacheInfo
}

// Stats contains pipeline execution statistics.
type Stats struct {
	Qubits    int
	GateCount int
	LoadTime  time.Duration
	RouteTime time.Duration
}

// CacheInfo tracks cache hits for the pipeline.
type CacheInfo struct {
	RouteHit bool // Whether the routed program came from cache
}

// =============================================================================
// Options Methods
// =============================================================================

// ValidateAndSetDefaults checks required fields and applies defaults.
// This method is idempotent.
func (o *Options) ValidateAndSetDefaults() error {
	if o.validated {
		return nil
	}
	if o.DevicePath == "" && o.Device == nil {
		return fmt.Errorf("device is required")
	}
	if o.ProgramPath == "" && o.Program == nil {
		return fmt.Errorf("program is required")
	}
	if o.SearchDepth < -1 {
		return route.ErrSearchDepth
	}
	if o.SearchDepth == 0 {
		o.SearchDepth = DefaultSearchDepth
	}
	if o.Logger == nil {
		o.Logger = log.NewWithOptions(io.Discard, log.Options{})
	}
	o.validated = true
	return nil
}

// RouteOptions converts the pipeline options to router options. The initial
// layout, when given, must be a permutation covering numQubits slots.
func (o *Options) RouteOptions(numQubits int) (route.Options, error) {
	depth := o.SearchDepth
	if depth == -1 {
		depth = 0
	}
	ropts := route.Options{SearchDepth: depth}
	if len(o.InitialLayout) == 0 {
		return ropts, nil
	}

	phys := make([]device.Qubit, len(o.InitialLayout))
	for i, p := range o.InitialLayout {
		phys[i] = device.Qubit(p)
	}
	initial, err := route.NewLayout(phys)
	if err != nil {
		return route.Options{}, fmt.Errorf("initial layout: %w", err)
	}
	if initial.NumQubits() != numQubits {
		return route.Options{}, fmt.Errorf("%w: initial layout covers %d qubits, device has %d",
			route.ErrTopologyMismatch, initial.NumQubits(), numQubits)
	}
	ropts.Initial = initial
	return ropts, nil
}
