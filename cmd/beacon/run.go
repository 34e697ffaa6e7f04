package main

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/teslashibe/go-beacon/internal/config"
	"github.com/teslashibe/go-beacon/pkg/app"
	"github.com/teslashibe/go-beacon/pkg/camera"
)

// runOptions mirrors the run flags.
type runOptions struct {
	Port      string
	Baud      int
	Camera    string
	Image     string
	Preset    string
	Headless  bool
	NoConsole bool
	Dashboard string
	Tuning    string
	Threshold float64
	AutoAlign bool
	Debug     bool
	Snapshots string
}

var runOpts runOptions

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Detect the green light and keep the motor aligned to it",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := buildConfig(cmd, env, runOpts)
		if err != nil {
			return err
		}

		a, err := app.New(cfg)
		if err != nil {
			return err
		}
		if err := a.Init(cmd.Context()); err != nil {
			a.Shutdown()
			return err
		}
		defer a.Shutdown()

		return a.Run(cmd.Context())
	},
}

func init() {
	addRunFlags(runCmd, &runOpts)
	rootCmd.AddCommand(runCmd)
}

func addRunFlags(cmd *cobra.Command, o *runOptions) {
	def := app.DefaultConfig()
	f := cmd.Flags()
	f.StringVarP(&o.Port, "port", "p", "", "Serial device of the motor controller; empty probes /dev/ttyUSB*, /dev/ttyACM* (env BEACON_SERIAL_PORT)")
	f.IntVarP(&o.Baud, "baud", "b", def.Baud, "Serial baud rate (env BEACON_BAUD)")
	f.StringVarP(&o.Camera, "camera", "c", "0", "Camera device index (env BEACON_CAMERA)")
	f.StringVar(&o.Image, "image", "", "Replay a still image instead of opening a camera")
	f.StringVar(&o.Preset, "preset", camera.PresetDefault, fmt.Sprintf("Camera preset %v", camera.PresetNames()))
	f.BoolVar(&o.Headless, "headless", false, "Run without the result window")
	f.BoolVar(&o.NoConsole, "no-console", false, "Do not read commands from stdin")
	f.StringVar(&o.Dashboard, "dashboard", "", "Serve the read-only dashboard on this address, e.g. :8282 (env BEACON_DASHBOARD_PORT)")
	f.StringVar(&o.Tuning, "tuning", "", "JSON file overriding detection parameters and the threshold")
	f.Float64VarP(&o.Threshold, "threshold", "t", def.Threshold, "Alignment threshold in pixels (1-20)")
	f.BoolVar(&o.AutoAlign, "auto-align", false, "Start with auto-align enabled")
	f.BoolVar(&o.Debug, "debug", false, "Start with the per-candidate detection trace on")
	f.StringVar(&o.Snapshots, "snapshots", def.SnapshotDir, "Directory for saved frames")
}

// buildConfig layers defaults, tuning file, environment and flags, in that
// order of increasing precedence.
func buildConfig(cmd *cobra.Command, e config.Env, o runOptions) (app.Config, error) {
	cfg := app.DefaultConfig()
	changed := cmd.Flags().Changed

	preset := camera.GetPreset(o.Preset)
	if preset == nil {
		return cfg, fmt.Errorf("unknown camera preset %q (have %v)", o.Preset, camera.PresetNames())
	}
	cfg.Camera = *preset

	if o.Tuning != "" {
		t, err := config.LoadTuning(o.Tuning)
		if err != nil {
			return cfg, err
		}
		if problems := t.Apply(&cfg.Detection); len(problems) > 0 {
			return cfg, fmt.Errorf("tuning %s: %v", o.Tuning, problems)
		}
		cfg.Threshold = t.ThresholdOr(cfg.Threshold)
	}

	cfg.SerialPort = e.SerialPort
	cfg.Baud = config.Int(e.Baud, cfg.Baud)
	cfg.Dashboard = e.Dashboard
	cameraID := config.String(e.Camera, "0")

	if changed("port") {
		cfg.SerialPort = o.Port
	}
	if changed("baud") {
		cfg.Baud = o.Baud
	}
	if changed("camera") {
		cameraID = o.Camera
	}
	if changed("dashboard") {
		cfg.Dashboard = o.Dashboard
	}
	if changed("threshold") {
		cfg.Threshold = o.Threshold
	}

	dev, err := strconv.Atoi(cameraID)
	if err != nil {
		return cfg, fmt.Errorf("camera must be a device index, got %q", cameraID)
	}
	cfg.Camera.Device = dev
	cfg.Camera.Image = o.Image

	cfg.Headless = o.Headless
	cfg.Console = !o.NoConsole
	cfg.AutoAlign = o.AutoAlign
	cfg.Debug = o.Debug
	cfg.SnapshotDir = o.Snapshots

	return cfg, cfg.Validate()
}
