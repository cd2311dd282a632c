package cli

import (
	"fmt"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/matzehuels/qroute/pkg/pipeline"
	"github.com/matzehuels/qroute/pkg/route"
)

// routeCommand creates the route command.
func (c *CLI) routeCommand() *cobra.Command {
	var (
		devicePath string
		layoutStr  string
		output     string
		depth      int
		noCache    bool
		refresh    bool
	)

	cmd := &cobra.Command{
		Use:   "route [program file]",
		Short: "Route a program onto a device topology",
		Long: `Route a program onto a device topology.

The route command reads a device description (TOML or JSON) and a program
(OpenQASM 2 or JSON), maps every two-qubit operation onto a directly coupled
physical pair, and reports swap count, depth, and predicted fidelity.

Routing prefers links with higher calibrated fidelity: an operation may be
relocated over a short swap chain when the destination link's predicted
success probability beats executing in place.

Results are cached locally for faster subsequent runs.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			initial, err := parseLayout(layoutStr)
			if err != nil {
				return fmt.Errorf("parse --layout: %w", err)
			}

			runner, err := c.newRunner(noCache)
			if err != nil {
				return fmt.Errorf("initialize runner: %w", err)
			}
			defer runner.Close()

			opts := pipeline.Options{
				DevicePath:    devicePath,
				ProgramPath:   args[0],
				SearchDepth:   depth,
				InitialLayout: initial,
				Refresh:       refresh,
				Logger:        c.Logger,
			}

			spinner := newSpinnerWithContext(cmd.Context(), "Routing program...")
			spinner.Start()
			result, err := runner.Execute(cmd.Context(), opts)
			if err != nil {
				spinner.StopWithError("Routing failed")
				return err
			}
			spinner.Stop()

			name := result.Spec.Name
			if name == "" {
				name = filepath.Base(devicePath)
			}
			printSuccess("Routed %s onto %s", filepath.Base(args[0]), name)
			printStats(result.Stats.Qubits, len(result.Routed.Ops), result.Routed.Swaps, result.CacheInfo.RouteHit)
			printNewline()
			printKeyValue("Depth", fmt.Sprintf("%d", result.Report.Depth))
			printKeyValue("Two-qubit", fmt.Sprintf("%d", result.Report.TwoQubitOps))
			printKeyValue("Swaps", fmt.Sprintf("%d", result.Report.Swaps))
			printKeyValue("Fidelity", fmt.Sprintf("%.4f", result.Report.Fidelity))

			if output != "" {
				if err := route.WriteRoutedFile(result.Routed, output); err != nil {
					return fmt.Errorf("write %s: %w", output, err)
				}
				printNewline()
				printFile(output)
			} else {
				printNewline()
				printNextStep("Save the routed program", fmt.Sprintf("qroute route -d %s %s -o routed.json", devicePath, args[0]))
			}
			return nil
		},
	}

	cmd.Flags().StringVarP(&devicePath, "device", "d", "", "device description file (.toml or .json)")
	cmd.Flags().StringVarP(&output, "output", "o", "", "write the routed program to a JSON file")
	cmd.Flags().IntVar(&depth, "depth", pipeline.DefaultSearchDepth, "candidate-link search radius in hops (-1 disables the fidelity search)")
	cmd.Flags().StringVar(&layoutStr, "layout", "", "initial logical to physical assignment, e.g. \"2,0,1,3\"")
	cmd.Flags().BoolVar(&noCache, "no-cache", false, "disable caching")
	cmd.Flags().BoolVar(&refresh, "refresh", false, "recompute even when a cached result exists")
	_ = cmd.MarkFlagRequired("device")

	return cmd
}
