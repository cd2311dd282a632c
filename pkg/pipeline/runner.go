package pipeline

import (
	"bytes"
	"context"
	"fmt"
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/qroute/pkg/cache"
	"github.com/matzehuels/qroute/pkg/circuit"
	"github.com/matzehuels/qroute/pkg/device"
	"github.com/matzehuels/qroute/pkg/metrics"
	"github.com/matzehuels/qroute/pkg/observability"
	"github.com/matzehuels/qroute/pkg/render"
	"github.com/matzehuels/qroute/pkg/route"
)

// Runner encapsulates pipeline execution with caching.
// Both CLI and API can use this to avoid duplicating caching logic.
//
// The Runner is stateless except for the cache and logger - it doesn't
// store pipeline results. Multiple goroutines can safely use the same
// Runner with different options.
type Runner struct {
	Cache  cache.Cache
	Logger *log.Logger
}

// NewRunner creates a runner with the given cache.
// If cache is nil, a NullCache is used (caching disabled).
func NewRunner(c cache.Cache, logger *log.Logger) *Runner {
	if c == nil {
		c = cache.NewNullCache()
	}
	if logger == nil {
		logger = log.Default()
	}
	return &Runner{Cache: c, Logger: logger}
}

// Execute runs the complete load → route → measure pipeline with caching.
func (r *Runner) Execute(ctx context.Context, opts Options) (*Result, error) {
	if err := opts.ValidateAndSetDefaults(); err != nil {
		return nil, fmt.Errorf("invalid options: %w", err)
	}
	r.applyLogger(&opts)

	result := &Result{}

	// Stage 1: Load
	loadStart := time.Now()
	spec, err := LoadDevice(opts)
	if err != nil {
		return nil, fmt.Errorf("load device: %w", err)
	}
	prog, err := LoadProgram(opts)
	if err != nil {
		return nil, fmt.Errorf("load program: %w", err)
	}
	topo, calib, err := spec.Build()
	if err != nil {
		return nil, fmt.Errorf("build device: %w", err)
	}
	result.Spec = spec
	result.Input = prog
	result.Stats.LoadTime = time.Since(loadStart)
	result.Stats.Qubits = topo.NumQubits()
	result.Stats.GateCount = prog.NumGates()

	opts.Logger.Info("loaded inputs",
		"device", spec.Name,
		"qubits", topo.NumQubits(),
		"links", len(topo.Links()),
		"gates", prog.NumGates(),
		"duration", result.Stats.LoadTime)

	// Stage 2: Route
	routeStart := time.Now()
	routed, routeHit, err := r.RouteWithCacheInfo(ctx, spec, topo, calib, prog, opts)
	if err != nil {
		return nil, fmt.Errorf("route: %w", err)
	}
	result.Routed = routed
	result.Stats.RouteTime = time.Since(routeStart)
	result.CacheInfo.RouteHit = routeHit

	if routedData, err := route.MarshalRouted(routed); err == nil {
		result.RoutedHash = cache.Hash(routedData)
	}

	opts.Logger.Info("routed program",
		"swaps", routed.Swaps,
		"ops", len(routed.Ops),
		"cached", routeHit,
		"duration", result.Stats.RouteTime)

	// Stage 3: Measure
	report, err := metrics.Measure(routed, calib)
	if err != nil {
		return nil, fmt.Errorf("measure: %w", err)
	}
	result.Report = report

	opts.Logger.Info("measured result",
		"depth", report.Depth,
		"fidelity", report.Fidelity)

	return result, nil
}

// RouteWithCacheInfo routes the program with caching and returns cache hit
// info. A cached result is only served when opts.Refresh is false.
func (r *Runner) RouteWithCacheInfo(ctx context.Context, spec device.Spec, topo *device.Topology, calib *device.Calibration, prog circuit.Program, opts Options) (*route.Routed, bool, error) {
	if err := opts.ValidateAndSetDefaults(); err != nil {
		return nil, false, err
	}
	r.applyLogger(&opts)

	cacheKey, err := r.routeKey(spec, prog, opts)
	if err != nil {
		return nil, false, err
	}
	hooks := observability.Cache()

	// Try cache first (unless refresh requested)
	if !opts.Refresh {
		if data, hit, err := r.Cache.Get(ctx, cacheKey); err == nil && hit {
			if routed, err := route.ReadRouted(bytes.NewReader(data)); err == nil {
				hooks.OnCacheHit(ctx, cacheKey)
				return routed, true, nil // Cache hit
			}
			// Corrupt entry, recompute.
			_ = r.Cache.Delete(ctx, cacheKey)
		}
	}
	hooks.OnCacheMiss(ctx, cacheKey)

	ropts, err := opts.RouteOptions(topo.NumQubits())
	if err != nil {
		return nil, false, err
	}
	routed, err := route.Route(topo, calib, prog, ropts)
	if err != nil {
		return nil, false, err
	}

	// Cache the result
	if data, err := route.MarshalRouted(routed); err == nil {
		if err := r.Cache.Set(ctx, cacheKey, data, cache.TTLRoute); err == nil {
			hooks.OnCacheSet(ctx, cacheKey, len(data))
		}
	}

	return routed, false, nil // Cache miss
}

// Route is a convenience wrapper that discards the cache hit info.
func (r *Runner) Route(ctx context.Context, spec device.Spec, topo *device.Topology, calib *device.Calibration, prog circuit.Program, opts Options) (*route.Routed, error) {
	routed, _, err := r.RouteWithCacheInfo(ctx, spec, topo, calib, prog, opts)
	return routed, err
}

// RenderDevice renders the device coupling graph as SVG with caching.
// The second return reports whether the diagram came from cache.
func (r *Runner) RenderDevice(ctx context.Context, spec device.Spec, opts render.Options) ([]byte, bool, error) {
	specData, err := device.MarshalSpec(spec)
	if err != nil {
		return nil, false, fmt.Errorf("serialize device for cache key: %w", err)
	}
	fingerprint := fmt.Sprintf("svg|weights=%v|threshold=%g", opts.ShowWeights, opts.WeakThreshold)
	cacheKey := cache.RenderKey(specData, fingerprint)

	if data, hit, err := r.Cache.Get(ctx, cacheKey); err == nil && hit {
		return data, true, nil
	}

	topo, calib, err := spec.Build()
	if err != nil {
		return nil, false, fmt.Errorf("build device: %w", err)
	}
	svg, err := render.SVG(render.ToDOT(topo, calib, opts))
	if err != nil {
		return nil, false, err
	}

	_ = r.Cache.Set(ctx, cacheKey, svg, cache.TTLRender)
	return svg, false, nil
}

// Close releases resources held by the runner (primarily the cache).
func (r *Runner) Close() error {
	if r.Cache != nil {
		return r.Cache.Close()
	}
	return nil
}

// routeKey computes the cache key covering every routing input.
func (r *Runner) routeKey(spec device.Spec, prog circuit.Program, opts Options) (string, error) {
	specData, err := device.MarshalSpec(spec)
	if err != nil {
		return "", fmt.Errorf("serialize device for cache key: %w", err)
	}
	progData, err := circuit.MarshalProgram(prog)
	if err != nil {
		return "", fmt.Errorf("serialize program for cache key: %w", err)
	}
	return cache.RouteKey(specData, progData, cache.RouteKeyOpts{
		SearchDepth:   opts.SearchDepth,
		InitialLayout: opts.InitialLayout,
	}), nil
}

// applyLogger sets the runner's logger on options if not already set.
func (r *Runner) applyLogger(opts *Options) {
	if opts.Logger == nil {
		opts.Logger = r.Logger
	}
}
