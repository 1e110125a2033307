package capture

import (
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"
	"gocv.io/x/gocv"

	"github.com/ayusman/mudra/internal/detector"
)

// MaxReadFailures is the number of consecutive failed reads after which the
// camera is considered gone.
const MaxReadFailures = 30

// ErrAcquisition marks a failure of the capture resource itself. It ends
// the current run; per-frame problems never carry it.
var ErrAcquisition = errors.New("frame acquisition failed")

// Sample is one acquisition cycle. Hand is nil when no hand was tracked;
// Image is nil when the source has no pixels (replay) or the read failed.
type Sample struct {
	At    time.Time
	Hand  *detector.HandLandmarks
	Image *gocv.Mat
}

// Close releases the image, if any.
func (s *Sample) Close() {
	if s == nil || s.Image == nil {
		return
	}
	s.Image.Close()
	s.Image = nil
}

// Tracker reads frames from a camera and runs the hand detector on them.
// It is used by a single worker and is not safe for concurrent use.
type Tracker struct {
	camera   Camera
	detector detector.Detector
	logger   *zap.SugaredLogger
	now      func() time.Time

	failures int
}

// NewTracker creates a Tracker. The tracker takes ownership of both the
// camera and the detector and closes them in Close.
func NewTracker(camera Camera, det detector.Detector, logger *zap.SugaredLogger) *Tracker {
	if logger == nil {
		logger = zap.NewNop().Sugar()
	}
	return &Tracker{
		camera:   camera,
		detector: det,
		logger:   logger,
		now:      time.Now,
	}
}

// Open opens the camera.
func (t *Tracker) Open() error {
	t.failures = 0
	if err := t.camera.Open(); err != nil {
		return fmt.Errorf("%w: open camera: %w", ErrAcquisition, err)
	}
	return nil
}

// SetFPS asks the camera for fps frames per second. Values <= 0 are ignored.
func (t *Tracker) SetFPS(fps int) {
	t.camera.SetFPS(fps)
}

// FrameInterval is the poll period matching the camera frame rate.
func (t *Tracker) FrameInterval() time.Duration {
	fps := t.camera.FPS()
	if fps <= 0 {
		fps = DefaultFPS
	}
	return time.Second / time.Duration(fps)
}

// Next polls one frame. A failed read yields a sample without a hand and
// no error, unless the camera is closed or has failed MaxReadFailures
// times in a row, which is reported as ErrAcquisition.
func (t *Tracker) Next() (*Sample, error) {
	if !t.camera.IsOpen() {
		return nil, fmt.Errorf("%w: %w", ErrAcquisition, ErrCameraNotOpen)
	}
	s := &Sample{At: t.now()}

	frame, err := t.camera.ReadFrame()
	if err != nil {
		if errors.Is(err, ErrCameraNotOpen) {
			return nil, fmt.Errorf("%w: %w", ErrAcquisition, err)
		}
		t.failures++
		if t.failures >= MaxReadFailures {
			return nil, fmt.Errorf("%w: %d consecutive reads: %w", ErrAcquisition, t.failures, err)
		}
		t.logger.Debugw("frame skipped", "error", err, "failures", t.failures)
		return s, nil
	}
	t.failures = 0
	s.Image = frame

	if t.detector == nil {
		return s, nil
	}

	hands, err := t.detector.Detect(frame)
	if err != nil {
		t.logger.Warnw("hand detection failed", "error", err)
		return s, nil
	}
	if best := detector.Primary(hands); best != nil {
		hand := *best
		s.Hand = &hand
	}
	return s, nil
}

// Close releases the detector and the camera. The camera is closed even if
// the detector fails to shut down.
func (t *Tracker) Close() error {
	var detErr error
	if t.detector != nil {
		detErr = t.detector.Close()
	}
	camErr := t.camera.Close()
	return errors.Join(camErr, detErr)
}
