package app

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"time"

	"github.com/google/uuid"
	"gocv.io/x/gocv"
	"golang.org/x/sync/errgroup"

	"github.com/teslashibe/go-beacon/internal/log"
	"github.com/teslashibe/go-beacon/pkg/alignment"
	"github.com/teslashibe/go-beacon/pkg/camera"
	"github.com/teslashibe/go-beacon/pkg/debug"
	"github.com/teslashibe/go-beacon/pkg/detection"
	"github.com/teslashibe/go-beacon/pkg/motor"
	"github.com/teslashibe/go-beacon/pkg/operator"
	"github.com/teslashibe/go-beacon/pkg/serialport"
	"github.com/teslashibe/go-beacon/pkg/web"
)

// App is the beacon orchestrator. Everything except the dashboard and the
// console reader runs on the goroutine that calls Run.
type App struct {
	config  Config
	session string
	logger  *slog.Logger
	out     io.Writer
	in      io.Reader

	// Frame path
	source   camera.Source
	pipeline *detection.Pipeline
	trace    *debug.Gate
	raw      gocv.Mat

	// Motor path
	opener serialport.Opener
	link   *motor.Link
	engine *alignment.Engine

	// Operator + dashboard
	cmds      chan operator.Command
	console   *operator.Console
	window    *gocv.Window
	webServer *web.Server

	showGrid  bool
	quit      bool
	snapshots int
	lastMS    float64
	stats     *Stats
}

// Option customizes an App. Tests use them to inject fakes.
type Option func(*App)

// WithSource uses src instead of opening cfg.Camera.
func WithSource(src camera.Source) Option {
	return func(a *App) { a.source = src }
}

// WithOpener opens serial devices through op.
func WithOpener(op serialport.Opener) Option {
	return func(a *App) { a.opener = op }
}

// WithOutput sends operator-facing lines to w instead of stdout.
func WithOutput(w io.Writer) Option {
	return func(a *App) { a.out = w }
}

// WithInput reads console commands from r instead of stdin.
func WithInput(r io.Reader) Option {
	return func(a *App) { a.in = r }
}

// New validates cfg and builds the components. No devices are touched
// until Init.
func New(cfg Config, opts ...Option) (*App, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	a := &App{
		config:   cfg,
		session:  uuid.NewString(),
		out:      os.Stdout,
		in:       os.Stdin,
		raw:      gocv.NewMat(),
		cmds:     make(chan operator.Command, 16),
		showGrid: true,
	}
	for _, opt := range opts {
		opt(a)
	}
	a.logger = log.With("session", a.session[:8])

	a.trace = debug.NewGate()
	a.trace.SetOutput(a.out)
	a.trace.Set(cfg.Debug)
	a.pipeline = detection.NewPipeline(cfg.Detection, a.trace)

	a.link = motor.NewLink(serialport.NewChannel(a.opener))
	a.engine = alignment.NewEngine(a.link)
	if err := a.engine.SetThreshold(cfg.Threshold); err != nil {
		return nil, err
	}

	if cfg.Console {
		a.console = operator.NewConsole(a.in, a.out)
	}
	if cfg.Dashboard != "" {
		a.webServer = web.NewServer(cfg.Dashboard)
	}
	return a, nil
}

// Session returns the run's id.
func (a *App) Session() string { return a.session }

// Init opens the camera and the motor link. A missing motor controller is
// not an error: the loop runs in simulation mode.
func (a *App) Init(ctx context.Context) error {
	fmt.Fprintln(a.out, "🟢 Beacon - green light alignment")
	fmt.Fprintln(a.out, "==================================")
	fmt.Fprintf(a.out, "🆔 Session %s\n", a.session)
	if a.trace.Enabled() {
		fmt.Fprintln(a.out, "🐛 Debug trace enabled")
	}

	if a.source == nil {
		fmt.Fprint(a.out, "📹 Opening camera... ")
		src, err := camera.Open(a.config.Camera)
		if err != nil {
			fmt.Fprintln(a.out, "❌")
			return fmt.Errorf("camera: %w", err)
		}
		a.source = src
		fmt.Fprintln(a.out, "✅")
	}

	fmt.Fprint(a.out, "🔌 Connecting motor controller... ")
	if err := a.connectMotor(ctx); err != nil {
		fmt.Fprintf(a.out, "⚠️  %v\n", err)
		fmt.Fprintln(a.out, "   Running in simulation mode (no motor output)")
		a.logger.Warn("motor controller unavailable", "error", err)
	} else {
		fmt.Fprintf(a.out, "✅ %s @ %d\n", a.link.Port(), a.config.Baud)
	}

	if a.config.AutoAlign {
		a.engine.SetEnabled(true)
	}
	return nil
}

func (a *App) connectMotor(ctx context.Context) error {
	if a.config.SerialPort != "" {
		return a.link.Connect(a.config.SerialPort, a.config.Baud)
	}
	_, err := a.link.AutoConnect(ctx)
	return err
}

// Commands returns the queue the loop drains before each frame.
func (a *App) Commands() chan<- operator.Command {
	return a.cmds
}

// Run drives the frame loop until ctx is cancelled, the operator quits or
// the camera stops delivering frames.
func (a *App) Run(ctx context.Context) error {
	a.Help()
	fmt.Fprintln(a.out, "\n🎯 Running! (q / Ctrl+C to exit)")

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	g, gctx := errgroup.WithContext(ctx)
	if a.webServer != nil {
		g.Go(func() error { return a.webServer.Start(gctx) })
		a.webServer.AddLog("info", "beacon started, session "+a.session)
	}
	if a.console != nil {
		g.Go(func() error { return a.console.Run(gctx, a.cmds) })
	}

	loopErr := a.loop(gctx)
	cancel()

	if err := g.Wait(); err != nil && loopErr == nil && !errors.Is(err, context.Canceled) {
		return err
	}
	return loopErr
}

func (a *App) loop(ctx context.Context) error {
	if !a.config.Headless {
		a.window = gocv.NewWindow(a.config.Window)
		defer func() {
			a.window.Close()
			a.window = nil
		}()
	}

	var pace <-chan time.Time
	if a.config.Camera.Image != "" && a.config.Camera.Framerate > 0 {
		t := time.NewTicker(time.Second / time.Duration(a.config.Camera.Framerate))
		defer t.Stop()
		pace = t.C
	}

	misses := 0
	for {
		select {
		case <-ctx.Done():
			return nil
		default:
		}
		a.drainCommands()
		if a.quit {
			return nil
		}
		if pace != nil {
			select {
			case <-pace:
			case <-ctx.Done():
				return nil
			}
		}

		if err := camera.Grab(a.source, &a.raw); err != nil {
			// Never fatal: the camera may come back.
			misses++
			if misses == 1 || misses%30 == 0 {
				fmt.Fprintf(a.out, "⚠️  Failed to grab frame (%d in a row)\n", misses)
			}
			a.pollKey()
			continue
		}
		misses = 0

		res, err := a.processFrame(a.raw)
		if err != nil {
			a.logger.Warn("frame skipped", "error", err)
			continue
		}
		if a.window != nil {
			a.window.IMShow(res.Annotated)
		}
		res.Close()
		a.pollKey()
	}
}

func (a *App) pollKey() {
	if a.window == nil {
		return
	}
	if cmd, ok := operator.FromKey(a.window.WaitKey(1)); ok {
		a.dispatch(cmd)
	}
}

func (a *App) drainCommands() {
	for {
		select {
		case cmd := <-a.cmds:
			a.dispatch(cmd)
		default:
			return
		}
	}
}

func (a *App) dispatch(cmd operator.Command) {
	if err := operator.Dispatch(a, cmd); err != nil {
		a.note("error", "⚠️  %v", err)
	}
}

// Shutdown stops the motor, closes devices and prints the run statistics.
func (a *App) Shutdown() {
	if a.link.IsConnected() {
		a.link.Disconnect()
	}
	if a.source != nil {
		if err := a.source.Close(); err != nil {
			a.logger.Warn("camera close", "error", err)
		}
	}
	a.pipeline.Close()
	a.raw.Close()

	if a.stats != nil {
		a.stats.Summarize(time.Now()).Print(a.out)
	}
	fmt.Fprintln(a.out, "\n👋 Goodbye!")
}
