package camera

import (
	"errors"
	"fmt"

	"gocv.io/x/gocv"

	"github.com/teslashibe/go-beacon/internal/log"
)

// ErrNoFrame is returned by Grab when the source had nothing to deliver.
var ErrNoFrame = errors.New("camera: empty frame")

// Source supplies frames to the loop.
type Source interface {
	// Read fills dst with the next frame. It returns false when no frame
	// was available; the loop skips that iteration.
	Read(dst *gocv.Mat) bool
	Close() error
}

// Open returns an ImageSource when cfg.Image is set, else a DeviceSource.
func Open(cfg Config) (Source, error) {
	if errs := cfg.Validate(); len(errs) > 0 {
		return nil, fmt.Errorf("camera: invalid config: %v", errs)
	}
	if cfg.Image != "" {
		img, err := OpenImage(cfg.Image)
		if err != nil {
			return nil, err
		}
		return img, nil
	}
	dev, err := OpenDevice(cfg)
	if err != nil {
		return nil, err
	}
	return dev, nil
}

// Grab reads one frame into dst and maps an empty read to ErrNoFrame.
func Grab(src Source, dst *gocv.Mat) error {
	if !src.Read(dst) || dst.Empty() {
		return ErrNoFrame
	}
	return nil
}

// DeviceSource captures from a local video device.
type DeviceSource struct {
	vc *gocv.VideoCapture
}

// OpenDevice opens cfg.Device and requests the configured resolution and
// frame rate. Drivers may ignore the request; the actual size is logged.
func OpenDevice(cfg Config) (*DeviceSource, error) {
	vc, err := gocv.VideoCaptureDevice(cfg.Device)
	if err != nil {
		return nil, fmt.Errorf("camera: open device %d: %w", cfg.Device, err)
	}
	if !vc.IsOpened() {
		vc.Close()
		return nil, fmt.Errorf("camera: device %d did not open", cfg.Device)
	}

	vc.Set(gocv.VideoCaptureFrameWidth, float64(cfg.Width))
	vc.Set(gocv.VideoCaptureFrameHeight, float64(cfg.Height))
	vc.Set(gocv.VideoCaptureFPS, float64(cfg.Framerate))

	log.Info("camera opened",
		"device", cfg.Device,
		"width", int(vc.Get(gocv.VideoCaptureFrameWidth)),
		"height", int(vc.Get(gocv.VideoCaptureFrameHeight)),
		"fps", vc.Get(gocv.VideoCaptureFPS))

	return &DeviceSource{vc: vc}, nil
}

// Read implements Source.
func (d *DeviceSource) Read(dst *gocv.Mat) bool {
	return d.vc.Read(dst)
}

// Close releases the device.
func (d *DeviceSource) Close() error {
	return d.vc.Close()
}

// ImageSource replays a single still image as an endless stream.
type ImageSource struct {
	path  string
	frame gocv.Mat
}

// OpenImage loads path as a BGR image.
func OpenImage(path string) (*ImageSource, error) {
	img := gocv.IMRead(path, gocv.IMReadColor)
	if img.Empty() {
		img.Close()
		return nil, fmt.Errorf("camera: cannot read image %s", path)
	}
	log.Info("replaying still image", "path", path, "width", img.Cols(), "height", img.Rows())
	return &ImageSource{path: path, frame: img}, nil
}

// NewMatSource replays an in-memory frame. The source takes ownership of m.
func NewMatSource(m gocv.Mat) *ImageSource {
	return &ImageSource{path: "memory", frame: m}
}

// Read implements Source.
func (s *ImageSource) Read(dst *gocv.Mat) bool {
	if s.frame.Empty() {
		return false
	}
	s.frame.CopyTo(dst)
	return true
}

// Close releases the image.
func (s *ImageSource) Close() error {
	return s.frame.Close()
}
