// Package render draws device coupling graphs as Graphviz diagrams, with
// links labeled by their calibrated fidelity and weak links highlighted.
//
// # Usage
//
// Convert a device to DOT format, then render to SVG:
//
//	dot := render.ToDOT(topo, calib, render.Options{ShowWeights: true})
//	svg, err := render.SVG(dot)
//
// The DOT source can also be saved and processed with external Graphviz
// tools; SVG rendering happens in-process via [github.com/goccy/go-graphviz].
package render

import (
	"bytes"
	"context"
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/goccy/go-graphviz"

	"github.com/matzehuels/qroute/pkg/device"
)

// DefaultWeakThreshold marks links whose fidelity falls below it as weak.
const DefaultWeakThreshold = 0.9

// Options configures coupling-graph rendering.
type Options struct {
	// ShowWeights labels every link with its calibrated fidelity.
	ShowWeights bool

	// WeakThreshold is the fidelity below which a link is drawn highlighted
	// (red, bold). Zero means [DefaultWeakThreshold].
	WeakThreshold float64
}

// ToDOT converts a device to Graphviz DOT format. The graph is undirected;
// qubits appear as circles and links as edges, optionally labeled with
// their fidelity. The result can be rendered with [SVG].
func ToDOT(topo *device.Topology, calib *device.Calibration, opts Options) string {
	threshold := opts.WeakThreshold
	if threshold == 0 {
		threshold = DefaultWeakThreshold
	}

	var buf bytes.Buffer
	buf.WriteString("graph G {\n")
	buf.WriteString("  layout=neato;\n")
	buf.WriteString("  overlap=false;\n")
	buf.WriteString("  bgcolor=\"transparent\";\n")
	buf.WriteString("  node [shape=circle, style=filled, fillcolor=white, fontsize=18];\n")
	buf.WriteString("\n")

	for q := 0; q < topo.NumQubits(); q++ {
		fmt.Fprintf(&buf, "  %d;\n", q)
	}

	buf.WriteString("\n")
	for _, l := range topo.Links() {
		w, _ := calib.WeightLink(l)
		attrs := edgeAttrs(w, threshold, opts.ShowWeights)
		if len(attrs) == 0 {
			fmt.Fprintf(&buf, "  %d -- %d;\n", l.A, l.B)
			continue
		}
		fmt.Fprintf(&buf, "  %d -- %d [%s];\n", l.A, l.B, strings.Join(attrs, ", "))
	}

	buf.WriteString("}\n")
	return buf.String()
}

func edgeAttrs(w, threshold float64, showWeights bool) []string {
	var attrs []string
	if showWeights {
		attrs = append(attrs, fmt.Sprintf("label=%q", strconv.FormatFloat(w, 'g', 4, 64)))
	}
	if w < threshold {
		attrs = append(attrs, "color=red", "penwidth=2.0")
	}
	return attrs
}

// SVG renders a DOT graph to SVG using Graphviz.
func SVG(dot string) ([]byte, error) {
	ctx := context.Background()
	gv, err := graphviz.New(ctx)
	if err != nil {
		return nil, fmt.Errorf("init graphviz: %w", err)
	}
	defer gv.Close()

	g, err := graphviz.ParseBytes([]byte(dot))
	if err != nil {
		return nil, fmt.Errorf("parse DOT: %w", err)
	}
	defer g.Close()

	var buf bytes.Buffer
	if err := gv.Render(ctx, g, graphviz.SVG, &buf); err != nil {
		return nil, fmt.Errorf("render: %w", err)
	}
	return normalizeViewBox(buf.Bytes()), nil
}

var (
	svgTagRe  = regexp.MustCompile(`<svg[^>]*>`)
	viewBoxRe = regexp.MustCompile(`viewBox="([0-9.]+)\s+([0-9.]+)\s+([0-9.]+)\s+([0-9.]+)"`)
)

func normalizeViewBox(svg []byte) []byte {
	match := viewBoxRe.FindSubmatch(svg)
	if match == nil {
		return svg
	}

	w, _ := strconv.ParseFloat(string(match[3]), 64)
	h, _ := strconv.ParseFloat(string(match[4]), 64)
	if w == 0 || h == 0 {
		return svg
	}

	newSvg := fmt.Sprintf(`<svg xmlns="http://www.w3.org/2000/svg" viewBox="0 0 %.2f %.2f" width="%.0f" height="%.0f">`,
		w, h, w, h)

	return svgTagRe.ReplaceAll(svg, []byte(newSvg))
}
