// Package detector provides hand detection interfaces and types for gesture recognition.
package detector

import "github.com/ayusman/mudra/internal/gesture"

// Hand landmark indices following MediaPipe convention.
// See: https://developers.google.com/mediapipe/solutions/vision/hand_landmarker
const (
	Wrist        = 0
	ThumbCMC     = 1
	ThumbMCP     = 2
	ThumbIP      = 3
	ThumbTip     = 4
	IndexMCP     = 5
	IndexPIP     = 6
	IndexDIP     = 7
	IndexTip     = 8
	MiddleMCP    = 9
	MiddlePIP    = 10
	MiddleDIP    = 11
	MiddleTip    = 12
	RingMCP      = 13
	RingPIP      = 14
	RingDIP      = 15
	RingTip      = 16
	PinkyMCP     = 17
	PinkyPIP     = 18
	PinkyDIP     = 19
	PinkyTip     = 20
	NumLandmarks = 21
)

// Connections lists landmark index pairs that form the hand skeleton.
var Connections = [][2]int{
	{Wrist, ThumbCMC}, {ThumbCMC, ThumbMCP}, {ThumbMCP, ThumbIP}, {ThumbIP, ThumbTip},
	{Wrist, IndexMCP}, {IndexMCP, IndexPIP}, {IndexPIP, IndexDIP}, {IndexDIP, IndexTip},
	{IndexMCP, MiddleMCP}, {MiddleMCP, MiddlePIP}, {MiddlePIP, MiddleDIP}, {MiddleDIP, MiddleTip},
	{MiddleMCP, RingMCP}, {RingMCP, RingPIP}, {RingPIP, RingDIP}, {RingDIP, RingTip},
	{RingMCP, PinkyMCP}, {Wrist, PinkyMCP}, {PinkyMCP, PinkyPIP}, {PinkyPIP, PinkyDIP}, {PinkyDIP, PinkyTip},
}

// Point3D represents a landmark position. X and Y are normalized to the
// image size; Z is relative depth and is ignored by the gesture features.
type Point3D struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
	Z float64 `json:"z"`
}

// HandLandmarks represents the 21 hand landmarks detected by MediaPipe.
type HandLandmarks struct {
	Points     [NumLandmarks]Point3D `json:"points"`
	Handedness string                `json:"handedness"` // "Left" or "Right"
	Score      float64               `json:"score"`
}

// Frame projects the landmarks the gesture classifier consumes onto the image plane.
func (h *HandLandmarks) Frame() gesture.Frame {
	return gesture.Frame{
		IndexTip: h.point(IndexTip),
		ThumbTip: h.point(ThumbTip),
		IndexMCP: h.point(IndexMCP),
		Wrist:    h.point(Wrist),
	}
}

func (h *HandLandmarks) point(i int) gesture.Point {
	return gesture.Point{X: h.Points[i].X, Y: h.Points[i].Y}
}

// Primary returns the highest scoring hand, or nil if hands is empty.
func Primary(hands []HandLandmarks) *HandLandmarks {
	var best *HandLandmarks
	for i := range hands {
		if best == nil || hands[i].Score > best.Score {
			best = &hands[i]
		}
	}
	return best
}

// FromFrame lifts a classifier frame back into a landmark set. Only the
// four classifier joints are populated; the rest stay at the origin.
func FromFrame(f gesture.Frame) HandLandmarks {
	var h HandLandmarks
	set := func(i int, p gesture.Point) { h.Points[i] = Point3D{X: p.X, Y: p.Y} }
	set(Wrist, f.Wrist)
	set(ThumbTip, f.ThumbTip)
	set(IndexMCP, f.IndexMCP)
	set(IndexTip, f.IndexTip)
	h.Score = 1
	return h
}
