package detector

import (
	"sync"

	"gocv.io/x/gocv"
)

// MockDetector is a test implementation of the Detector interface.
// It allows tests to control the detection results.
type MockDetector struct {
	mu    sync.Mutex
	hands []HandLandmarks
	err   error
	calls int
}

// NewMockDetector creates a new MockDetector instance.
func NewMockDetector() *MockDetector {
	return &MockDetector{}
}

// SetHands sets the hands that will be returned by Detect.
func (m *MockDetector) SetHands(hands []HandLandmarks) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.hands = hands
}

// SetError sets the error that will be returned by Detect.
func (m *MockDetector) SetError(err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.err = err
}

// Calls returns how many times Detect was invoked.
func (m *MockDetector) Calls() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.calls
}

// Detect returns the pre-configured hands or error.
func (m *MockDetector) Detect(frame *gocv.Mat) ([]HandLandmarks, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls++
	if m.err != nil {
		return nil, m.err
	}
	return m.hands, nil
}

// Close is a no-op for the mock detector.
func (m *MockDetector) Close() error {
	return nil
}

// pose builds a right hand from the wrist, thumb tip and index tip. The
// remaining joints are spread along the thumb and index rays and the other
// fingers are curled towards the palm.
func pose(wrist, thumbTip, indexTip Point3D) HandLandmarks {
	h := HandLandmarks{Handedness: "Right", Score: 0.95}

	lerp := func(a, b Point3D, t float64) Point3D {
		return Point3D{X: a.X + (b.X-a.X)*t, Y: a.Y + (b.Y-a.Y)*t, Z: a.Z + (b.Z-a.Z)*t}
	}

	h.Points[Wrist] = wrist
	h.Points[ThumbCMC] = lerp(wrist, thumbTip, 0.25)
	h.Points[ThumbMCP] = lerp(wrist, thumbTip, 0.5)
	h.Points[ThumbIP] = lerp(wrist, thumbTip, 0.75)
	h.Points[ThumbTip] = thumbTip

	h.Points[IndexMCP] = lerp(wrist, indexTip, 0.4)
	h.Points[IndexPIP] = lerp(wrist, indexTip, 0.6)
	h.Points[IndexDIP] = lerp(wrist, indexTip, 0.8)
	h.Points[IndexTip] = indexTip

	palm := lerp(wrist, indexTip, 0.35)
	for i, base := range []int{MiddleMCP, RingMCP, PinkyMCP} {
		mcp := Point3D{X: palm.X - 0.03*float64(i+1), Y: palm.Y + 0.01*float64(i), Z: -0.02}
		h.Points[base] = mcp
		h.Points[base+1] = Point3D{X: mcp.X, Y: mcp.Y - 0.02, Z: -0.05}
		h.Points[base+2] = Point3D{X: mcp.X - 0.01, Y: mcp.Y, Z: -0.04}
		h.Points[base+3] = Point3D{X: mcp.X - 0.02, Y: mcp.Y + 0.02, Z: -0.02}
	}

	return h
}

// PinchLandmarks returns a hand with thumb and index fingertips touching.
func PinchLandmarks() HandLandmarks {
	return pose(
		Point3D{X: 0.5, Y: 0.8},
		Point3D{X: 0.50, Y: 0.40},
		Point3D{X: 0.51, Y: 0.40},
	)
}

// WideAngleLandmarks returns a hand with thumb and index spread about 79
// degrees apart, the index pointing left of the wrist or right of it.
func WideAngleLandmarks(indexLeft bool) HandLandmarks {
	thumb := Point3D{X: 0.7, Y: 0.6}
	index := Point3D{X: 0.3, Y: 0.5}
	if !indexLeft {
		thumb.X, index.X = 0.3, 0.7
	}
	return pose(Point3D{X: 0.5, Y: 0.8}, thumb, index)
}

// NarrowAngleLandmarks returns a hand with the index pointing up and the
// thumb tip dist to its right, keeping the wrist angle small.
func NarrowAngleLandmarks(dist float64) HandLandmarks {
	return pose(
		Point3D{X: 0.5, Y: 0.8},
		Point3D{X: 0.5 + dist, Y: 0.3},
		Point3D{X: 0.5, Y: 0.3},
	)
}

// ScrollLandmarks returns a narrow-angle hand with the index fingertip at indexX
// and the thumb 0.1 towards the wrist.
func ScrollLandmarks(indexX float64) HandLandmarks {
	thumbX := indexX + 0.1
	if indexX > 0.5 {
		thumbX = indexX - 0.1
	}
	return pose(
		Point3D{X: 0.5, Y: 0.9},
		Point3D{X: thumbX, Y: 0.3},
		Point3D{X: indexX, Y: 0.3},
	)
}

// OpenPalmLandmarks returns a relaxed open hand whose wrist angle falls
// between the narrow and wide thresholds, so no gesture qualifies.
func OpenPalmLandmarks() HandLandmarks {
	return pose(
		Point3D{X: 0.5, Y: 0.8},
		Point3D{X: 0.73, Y: 0.60, Z: 0.03},
		Point3D{X: 0.58, Y: 0.35},
	)
}
