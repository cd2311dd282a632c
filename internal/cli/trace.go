package cli

import (
	"fmt"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"github.com/matzehuels/qroute/pkg/device"
	"github.com/matzehuels/qroute/pkg/pipeline"
	"github.com/matzehuels/qroute/pkg/route"
)

// traceCommand creates the trace command, an interactive step viewer for
// routed programs.
func (c *CLI) traceCommand() *cobra.Command {
	var (
		devicePath string
		depth      int
		layoutStr  string
		noCache    bool
	)

	cmd := &cobra.Command{
		Use:   "trace [program file]",
		Short: "Step through a routed program interactively",
		Long: `Step through a routed program interactively.

The trace command routes the program and opens a viewer that walks the
emitted operation sequence one step at a time, showing where every logical
qubit sits on the device after each operation. Inserted swaps are
highlighted so the rerouting cost is easy to follow.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			layout, err := parseLayout(layoutStr)
			if err != nil {
				return err
			}

			runner, err := c.newRunner(noCache)
			if err != nil {
				return fmt.Errorf("initialize runner: %w", err)
			}
			defer runner.Close()

			spinner := newSpinnerWithContext(cmd.Context(), "Routing program...")
			spinner.Start()
			result, err := runner.Execute(cmd.Context(), pipeline.Options{
				DevicePath:    devicePath,
				ProgramPath:   args[0],
				SearchDepth:   depth,
				InitialLayout: layout,
			})
			if err != nil {
				spinner.StopWithError("Routing failed")
				return err
			}
			spinner.Stop()

			var initial *route.Layout
			if layout != nil {
				phys := make([]device.Qubit, len(layout))
				for i, p := range layout {
					phys[i] = device.Qubit(p)
				}
				if initial, err = route.NewLayout(phys); err != nil {
					return err
				}
			}

			model := NewTraceModel(deviceName(result.Spec, devicePath), result.Routed, initial)
			_, err = tea.NewProgram(model, tea.WithAltScreen()).Run()
			return err
		},
	}

	cmd.Flags().StringVarP(&devicePath, "device", "d", "", "device file (required)")
	cmd.Flags().IntVar(&depth, "depth", pipeline.DefaultSearchDepth, "fidelity search depth (-1 disables the fidelity search)")
	cmd.Flags().StringVar(&layoutStr, "layout", "", "initial layout as comma-separated physical qubits, e.g. 0,2,1,3")
	cmd.Flags().BoolVar(&noCache, "no-cache", false, "disable caching")
	_ = cmd.MarkFlagRequired("device")

	return cmd
}
