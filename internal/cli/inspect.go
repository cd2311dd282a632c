package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/matzehuels/qroute/pkg/device"
	"github.com/matzehuels/qroute/pkg/render"
)

// inspectCommand creates the inspect command for device summaries.
func (c *CLI) inspectCommand() *cobra.Command {
	var threshold float64

	cmd := &cobra.Command{
		Use:   "inspect [device file]",
		Short: "Summarize a device topology and its calibration",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			spec, err := device.LoadSpecFile(args[0])
			if err != nil {
				return err
			}
			topo, calib, err := spec.Build()
			if err != nil {
				return err
			}

			minW, sumW := 1.0, 0.0
			var weak []device.Link
			for _, l := range topo.Links() {
				w, _ := calib.WeightLink(l)
				sumW += w
				if w < minW {
					minW = w
				}
				if w < threshold {
					weak = append(weak, l)
				}
			}

			fmt.Println(StyleTitle.Render(deviceName(spec, args[0])))
			printKeyValue("Qubits", fmt.Sprintf("%d", topo.NumQubits()))
			printKeyValue("Links", fmt.Sprintf("%d", len(topo.Links())))
			printKeyValue("Diameter", fmt.Sprintf("%d", diameter(topo)))
			printKeyValue("Fidelity", fmt.Sprintf("avg %.4f, min %.4f", sumW/float64(len(topo.Links())), minW))

			if len(weak) > 0 {
				printNewline()
				printWarning("%d link(s) below %.2f", len(weak), threshold)
				for _, l := range weak {
					w, _ := calib.WeightLink(l)
					printDetail("%s %.4f", l, w)
				}
			}
			return nil
		},
	}

	cmd.Flags().Float64Var(&threshold, "threshold", render.DefaultWeakThreshold, "report links below this fidelity")

	return cmd
}

// diameter returns the longest shortest-path distance on the topology.
func diameter(topo *device.Topology) int {
	d := 0
	for p := 0; p < topo.NumQubits(); p++ {
		for q := p + 1; q < topo.NumQubits(); q++ {
			if dist, err := topo.Distance(device.Qubit(p), device.Qubit(q)); err == nil && dist > d {
				d = dist
			}
		}
	}
	return d
}
