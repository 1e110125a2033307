package capture

import (
	"errors"
	"testing"
	"time"
)

func TestCamera_Unopened(t *testing.T) {
	cam := NewCamera(0)

	if cam.IsOpen() {
		t.Fatal("camera must start closed")
	}
	if _, err := cam.ReadFrame(); !errors.Is(err, ErrCameraNotOpen) {
		t.Errorf("ReadFrame() error = %v, want ErrCameraNotOpen", err)
	}
	if err := cam.Close(); err != nil {
		t.Errorf("Close() on unopened camera = %v", err)
	}
}

func TestCamera_SetFPS(t *testing.T) {
	tests := []struct {
		name string
		set  []int
		want int
	}{
		{name: "default", want: DefaultFPS},
		{name: "lower rate", set: []int{15}, want: 15},
		{name: "zero keeps previous", set: []int{10, 0}, want: 10},
		{name: "negative keeps previous", set: []int{24, -5}, want: 24},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			for _, cam := range []Camera{NewCamera(0), NewMockCamera(nil, false)} {
				for _, fps := range tt.set {
					cam.SetFPS(fps)
				}
				if got := cam.FPS(); got != tt.want {
					t.Errorf("%T FPS() = %d, want %d", cam, got, tt.want)
				}
			}
		})
	}
}

func TestTracker_FrameInterval(t *testing.T) {
	tests := []struct {
		fps  int
		want time.Duration
	}{
		{fps: 0, want: time.Second / DefaultFPS},
		{fps: 10, want: 100 * time.Millisecond},
		{fps: 50, want: 20 * time.Millisecond},
	}

	for _, tt := range tests {
		tr := newTestTracker(t, NewMockCamera(nil, false), nil)
		tr.SetFPS(tt.fps)
		if got := tr.FrameInterval(); got != tt.want {
			t.Errorf("fps %d: FrameInterval() = %s, want %s", tt.fps, got, tt.want)
		}
	}
}

func TestCamera_Device(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping camera device test in short mode")
	}

	cam := NewCamera(0)
	if err := cam.Open(); err != nil {
		t.Skipf("camera not available: %v", err)
	}
	if !cam.IsOpen() {
		t.Error("expected camera open")
	}

	mat, err := cam.ReadFrame()
	if err != nil {
		t.Errorf("ReadFrame() error = %v", err)
	} else {
		if mat.Cols() != DefaultWidth || mat.Rows() != DefaultHeight {
			t.Logf("device delivered %dx%d", mat.Cols(), mat.Rows())
		}
		mat.Close()
	}

	if err := cam.Close(); err != nil {
		t.Errorf("Close() error = %v", err)
	}
	if cam.IsOpen() {
		t.Error("expected camera closed")
	}
}
