package cli

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/matzehuels/qroute/pkg/device"
	"github.com/matzehuels/qroute/pkg/render"
)

// vizCommand creates the viz command for rendering device coupling graphs.
func (c *CLI) vizCommand() *cobra.Command {
	var (
		output    string
		format    string
		weights   bool
		threshold float64
		noCache   bool
	)

	cmd := &cobra.Command{
		Use:   "viz [device file]",
		Short: "Render a device coupling graph",
		Long: `Render a device coupling graph.

The viz command draws the device's qubits and links as a Graphviz diagram.
Links below the weak-fidelity threshold are highlighted in red so problem
couplings stand out.

SVG rendering happens in-process; use --format dot to get the raw DOT
source for external Graphviz tooling instead.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			spec, err := device.LoadSpecFile(args[0])
			if err != nil {
				return err
			}
			ropts := render.Options{ShowWeights: weights, WeakThreshold: threshold}

			if output == "" {
				base := strings.TrimSuffix(args[0], filepath.Ext(args[0]))
				output = base + "." + format
			}

			switch format {
			case "dot":
				topo, calib, err := spec.Build()
				if err != nil {
					return err
				}
				dot := render.ToDOT(topo, calib, ropts)
				if err := os.WriteFile(output, []byte(dot), 0644); err != nil {
					return fmt.Errorf("write %s: %w", output, err)
				}
				printSuccess("Rendered %s", deviceName(spec, args[0]))
				printFile(output)
				return nil

			case "svg":
				runner, err := c.newRunner(noCache)
				if err != nil {
					return fmt.Errorf("initialize runner: %w", err)
				}
				defer runner.Close()

				spinner := newSpinnerWithContext(cmd.Context(), "Rendering coupling graph...")
				spinner.Start()
				svg, cached, err := runner.RenderDevice(cmd.Context(), spec, ropts)
				if err != nil {
					spinner.StopWithError("Rendering failed")
					return err
				}
				spinner.Stop()

				if err := os.WriteFile(output, svg, 0644); err != nil {
					return fmt.Errorf("write %s: %w", output, err)
				}
				printSuccess("Rendered %s", deviceName(spec, args[0]))
				if cached {
					printDetail("cached")
				}
				printFile(output)
				return nil

			default:
				return fmt.Errorf("invalid format: %q (must be svg or dot)", format)
			}
		},
	}

	cmd.Flags().StringVarP(&output, "output", "o", "", "output file (default: device file with .svg/.dot extension)")
	cmd.Flags().StringVarP(&format, "format", "f", "svg", "output format: svg (default), dot")
	cmd.Flags().BoolVar(&weights, "weights", true, "label links with their fidelity")
	cmd.Flags().Float64Var(&threshold, "threshold", render.DefaultWeakThreshold, "highlight links below this fidelity")
	cmd.Flags().BoolVar(&noCache, "no-cache", false, "disable caching")

	return cmd
}

// deviceName returns the spec name, falling back to the file name.
func deviceName(spec device.Spec, path string) string {
	if spec.Name != "" {
		return spec.Name
	}
	return filepath.Base(path)
}
