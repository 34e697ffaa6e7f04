package main

import (
	"fmt"
	"io"
	"net/url"

	"github.com/spf13/cobra"

	"github.com/teslashibe/go-beacon/internal/httpc"
	"github.com/teslashibe/go-beacon/pkg/protocol"
)

var statusAddr string

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Print the status of a running beacon from its dashboard",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		u := url.URL{Scheme: "http", Host: statusAddr, Path: "/api/status"}
		var s protocol.StatusData
		if err := httpc.GetJSON(cmd.Context(), httpc.Client, u.String(), &s); err != nil {
			return err
		}
		printStatus(cmd.OutOrStdout(), s)
		return nil
	},
}

func init() {
	statusCmd.Flags().StringVar(&statusAddr, "addr", "localhost:8282", "Dashboard address")
	rootCmd.AddCommand(statusCmd)
}

func printStatus(w io.Writer, s protocol.StatusData) {
	port := s.Port
	if !s.Connected {
		port = "simulation"
	}
	fmt.Fprintf(w, "📋 Session %s (%d frames, %.0f FPS)\n", s.Session, s.Frames, s.FPS)
	fmt.Fprintf(w, "   Auto-align:  %v (aligned %v)\n", s.AutoAlign, s.Aligned)
	fmt.Fprintf(w, "   Pixel error: %.1f px (threshold %.1f)\n", s.PixelError, s.Threshold)
	fmt.Fprintf(w, "   Motor:       %s, data %d, position %.1f\n", s.MotorState, s.LastCommand, s.Position)
	fmt.Fprintf(w, "   Serial:      %s\n", port)
	fmt.Fprintf(w, "   Detection:   %s, circularity >= %.2f\n", s.DetectionMode, s.Circularity)
}
