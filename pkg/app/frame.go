package app

import (
	"time"

	"gocv.io/x/gocv"

	"github.com/teslashibe/go-beacon/pkg/detection"
	"github.com/teslashibe/go-beacon/pkg/overlay"
	"github.com/teslashibe/go-beacon/pkg/protocol"
)

// processFrame runs detection and alignment on one frame and returns the
// annotated result with the overlay drawn. The caller closes it.
func (a *App) processFrame(frame gocv.Mat) (detection.Result, error) {
	start := time.Now()
	if a.stats == nil {
		a.stats = NewStats(start)
	}

	res, err := a.pipeline.Analyze(frame)
	if err != nil {
		return res, err
	}
	a.engine.Step(res.Target(), res.Width)

	elapsed := time.Since(start)
	a.stats.Add(elapsed)
	a.lastMS = float64(elapsed) / float64(time.Millisecond)

	if a.showGrid {
		overlay.DrawGrid(&res.Annotated)
	}
	overlay.DrawHUD(&res.Annotated, a.hud())

	a.publish(&res)
	return res, nil
}

func (a *App) hud() overlay.HUD {
	var fps float64
	if a.lastMS > 0 {
		fps = 1000 / a.lastMS
	}
	return overlay.HUD{
		FPS:          fps,
		ProcessingMS: a.lastMS,
		AutoAlign:    a.engine.Enabled(),
		Aligned:      a.engine.Aligned(),
		PixelError:   a.engine.PixelError(),
		MotorState:   a.link.State().String(),
		Connected:    a.link.IsConnected(),
		MotorData:    a.link.LastCommand(),
		Mode:         a.pipeline.Mode().String(),
	}
}

// Status returns the dashboard snapshot.
func (a *App) Status() protocol.StatusData {
	var fps float64
	if a.lastMS > 0 {
		fps = 1000 / a.lastMS
	}
	var frames uint64
	if a.stats != nil {
		frames = a.stats.Frames()
	}
	return protocol.StatusData{
		Session:       a.session,
		AutoAlign:     a.engine.Enabled(),
		Aligned:       a.engine.Aligned(),
		PixelError:    a.engine.PixelError(),
		Threshold:     a.engine.Threshold(),
		MotorState:    a.link.State().String(),
		LastCommand:   a.link.LastCommand(),
		Position:      a.link.Position(),
		Connected:     a.link.IsConnected(),
		Port:          a.link.Port(),
		DetectionMode: a.pipeline.Mode().String(),
		Circularity:   a.pipeline.Circularity(),
		FPS:           fps,
		ProcessingMS:  a.lastMS,
		Frames:        frames,
	}
}

func (a *App) publish(res *detection.Result) {
	if a.webServer == nil {
		return
	}
	a.webServer.UpdateStatus(a.Status())

	d := protocol.DetectionData{
		FrameID:    a.stats.Frames(),
		Width:      res.Width,
		Height:     res.Height,
		Candidates: len(res.Candidates),
	}
	for _, c := range res.Candidates {
		d.All = append(d.All, protocol.Target{X: c.X, Y: c.Y, Radius: c.Radius, Area: c.Area, Circularity: c.Circularity})
	}
	if best := res.Target(); best != nil {
		d.Best = &d.All[res.Best]
	}
	a.webServer.UpdateDetection(d)

	if a.webServer.Subscribers() == 0 {
		return
	}
	buf, err := gocv.IMEncodeWithParams(gocv.JPEGFileExt, res.Annotated,
		[]int{gocv.IMWriteJpegQuality, a.config.Camera.Quality})
	if err != nil {
		a.logger.Debug("jpeg encode", "error", err)
		return
	}
	jpeg := append([]byte(nil), buf.GetBytes()...)
	buf.Close()
	a.webServer.SendCameraFrame(jpeg)
}
