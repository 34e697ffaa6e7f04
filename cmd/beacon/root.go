package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/teslashibe/go-beacon/internal/config"
	"github.com/teslashibe/go-beacon/internal/log"
)

// Version is the application version.
const Version = "0.1.0"

var (
	logLevel string
	env      config.Env
)

var rootCmd = &cobra.Command{
	Use:           "beacon",
	Short:         "Green light detection and motor alignment",
	Version:       Version,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		var err error
		env, err = config.FromEnv()
		if err != nil {
			return err
		}
		if !cmd.Flags().Changed("log-level") {
			logLevel = config.String(env.LogLevel, logLevel)
		}
		if _, err := log.ParseLevel(logLevel); err != nil {
			return err
		}
		log.Init(logLevel)
		return nil
	},
}

// Execute runs the root command with a context cancelled on SIGINT/SIGTERM.
func Execute() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	rootCmd.SetVersionTemplate(`{{printf "%s\n" .Version}}`)

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "❌ %v\n", err)
		stop()
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "info", "Log level: debug, info, warn, error (env BEACON_LOG_LEVEL)")
}
