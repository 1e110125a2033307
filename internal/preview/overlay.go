// Package preview renders the annotated camera view served to the settings UI.
package preview

import (
	"fmt"
	"image"
	"image/color"
	"time"

	"gocv.io/x/gocv"

	"github.com/ayusman/mudra/internal/action"
	"github.com/ayusman/mudra/internal/config"
	"github.com/ayusman/mudra/internal/detector"
	"github.com/ayusman/mudra/internal/engine"
	"github.com/ayusman/mudra/internal/gesture"
)

// DefaultQuality is the JPEG quality used for preview frames.
const DefaultQuality = 75

var (
	red    = color.RGBA{R: 255, A: 255}
	green  = color.RGBA{G: 255, A: 255}
	cyan   = color.RGBA{R: 0, G: 255, B: 255, A: 255}
	yellow = color.RGBA{R: 255, G: 255, A: 255}
	white  = color.RGBA{R: 255, G: 255, B: 255, A: 255}
	bone   = color.RGBA{R: 200, G: 200, B: 200, A: 255}
)

// Status is the text overlay for one frame.
type Status struct {
	Paused        bool
	HandFound     bool
	WristAngleDeg float64
	LastCommand   string
	Remaining     time.Duration
	// NarrowPose is set while the wrist angle is within the narrow threshold;
	// VolumeBound then selects the ACTIVE or INACTIVE volume label.
	NarrowPose  bool
	VolumeBound bool
	// Banner flashes centered on the frame where play/pause committed.
	Banner string
}

// NewStatus builds the overlay for res. lastCommand is the label of the most
// recent non-noop command, or empty.
func NewStatus(res engine.Result, cfg *config.Config, lastCommand string) Status {
	f := res.Features
	var banner string
	if res.Committed && res.Command.Kind == action.KindPlayPause {
		banner = action.KindPlayPause.Label()
	}
	return Status{
		Paused:        res.Paused,
		HandFound:     res.HandFound,
		WristAngleDeg: f.WristAngleDeg,
		LastCommand:   lastCommand,
		Remaining:     res.Remaining,
		NarrowPose:    res.HandFound && !f.Degenerate && f.WristAngleDeg <= cfg.NarrowAngleThreshold,
		VolumeBound:   cfg.Bindings.Lookup(gesture.NarrowAngle) == action.Volume,
		Banner:        banner,
	}
}

// Draw annotates img in place with the hand skeleton and the status text.
func Draw(img *gocv.Mat, hand *detector.HandLandmarks, st Status) {
	if img == nil || img.Empty() {
		return
	}
	w, h := img.Cols(), img.Rows()

	if hand != nil && st.HandFound {
		px := func(i int) image.Point {
			p := hand.Points[i]
			return image.Pt(int(p.X*float64(w)), int(p.Y*float64(h)))
		}
		for _, c := range detector.Connections {
			gocv.Line(img, px(c[0]), px(c[1]), bone, 2)
		}
		for i := 0; i < detector.NumLandmarks; i++ {
			gocv.Circle(img, px(i), 4, red, -1)
		}

		gocv.PutText(img, fmt.Sprintf("Angle: %.1f", st.WristAngleDeg), px(detector.Wrist),
			gocv.FontHersheySimplex, 0.7, yellow, 2)

		if st.NarrowPose {
			label, c := "INACTIVE", red
			if st.VolumeBound {
				label, c = "ACTIVE", green
			}
			gocv.PutText(img, "Volume control: "+label, image.Pt(10, 150), gocv.FontHersheySimplex, 0.7, c, 2)
		}
	}

	last := st.LastCommand
	if last == "" {
		last = "NONE"
	}
	gocv.PutText(img, "Last command: "+last, image.Pt(10, 50), gocv.FontHersheySimplex, 0.7, cyan, 2)
	gocv.PutText(img, fmt.Sprintf("Cooldown: %.1fs", st.Remaining.Seconds()), image.Pt(10, 100),
		gocv.FontHersheySimplex, 0.7, green, 2)

	switch {
	case st.Paused:
		centered(img, "PAUSED", 2, red, 3)
	case st.Banner != "":
		centered(img, st.Banner, 2, red, 3)
	}
}

func centered(img *gocv.Mat, text string, scale float64, c color.RGBA, thickness int) {
	size := gocv.GetTextSize(text, gocv.FontHersheySimplex, scale, thickness)
	org := image.Pt((img.Cols()-size.X)/2, (img.Rows()+size.Y)/2)
	gocv.PutText(img, text, org, gocv.FontHersheySimplex, scale, c, thickness)
}

// Encode compresses img to JPEG.
func Encode(img *gocv.Mat, quality int) ([]byte, error) {
	buf, err := gocv.IMEncodeWithParams(gocv.JPEGFileExt, *img, []int{int(gocv.IMWriteJpegQuality), quality})
	if err != nil {
		return nil, fmt.Errorf("encode preview: %w", err)
	}
	defer buf.Close()

	out := make([]byte, buf.Len())
	copy(out, buf.GetBytes())
	return out, nil
}
