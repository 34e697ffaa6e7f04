package main

import (
	"fmt"
	"slices"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/teslashibe/go-beacon/pkg/motor"
	"github.com/teslashibe/go-beacon/pkg/serialport"
)

var listPorts = serialport.ListPorts

var portsCmd = &cobra.Command{
	Use:   "ports",
	Short: "List serial ports and the paths probed at startup",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		ports, err := listPorts()
		if err != nil {
			return fmt.Errorf("list serial ports: %w", err)
		}

		w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 3, ' ', 0)
		fmt.Fprintln(w, "PORT\tPROBED")
		fmt.Fprintln(w, "----\t------")
		for _, p := range ports {
			fmt.Fprintf(w, "%s\t%v\n", p, probed(p))
		}
		if err := w.Flush(); err != nil {
			return err
		}
		if len(ports) == 0 {
			fmt.Fprintln(cmd.OutOrStdout(), "No serial ports found.")
		}
		return nil
	},
}

func probed(path string) bool {
	return slices.Contains(motor.ProbePaths, path)
}

func init() {
	rootCmd.AddCommand(portsCmd)
}
