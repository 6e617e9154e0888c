// Package landmark defines the face and landmark detection boundary used by
// the tracker, plus the detector adapters that sit on top of it.
package landmark

import (
	"image"
)

// Count is the cardinality of a landmark set, following the 68 point
// annotation scheme.
const Count = 68

// Range is a half open span of landmark indices denoting one anatomical
// region.
type Range struct {
	From, To int
}

// Len reports how many landmarks the range spans.
func (r Range) Len() int { return r.To - r.From }

var (
	Jaw        = Range{0, 17}
	RightBrow  = Range{17, 22}
	LeftBrow   = Range{22, 27}
	NoseBridge = Range{27, 31}
	NoseLower  = Range{31, 36}
	RightEye   = Range{36, 42}
	LeftEye    = Range{42, 48}
	OuterLip   = Range{48, 60}
	InnerLip   = Range{60, 68}
)

// Set is an ordered landmark set. Order carries meaning, so regions must be
// addressed through the index ranges above.
type Set [Count]image.Point

// Points returns the points in r, in index order.
func (s Set) Points(r Range) []image.Point {
	pts := make([]image.Point, 0, r.Len())
	for i := r.From; i < r.To; i++ {
		pts = append(pts, s[i])
	}
	return pts
}

// Pick returns the points at the given indices, in the order given.
func (s Set) Pick(indices ...int) []image.Point {
	pts := make([]image.Point, 0, len(indices))
	for _, i := range indices {
		pts = append(pts, s[i])
	}
	return pts
}

// Rect is a face bounding box in frame pixel coordinates.
type Rect struct {
	Left, Right, Top, Bottom int
}

// RectFrom converts an image rectangle into a face rect.
func RectFrom(r image.Rectangle) Rect {
	return Rect{Left: r.Min.X, Right: r.Max.X, Top: r.Min.Y, Bottom: r.Max.Y}
}

func (r Rect) Valid() bool {
	return r.Right > r.Left && r.Bottom > r.Top
}

func (r Rect) Width() int  { return r.Right - r.Left }
func (r Rect) Height() int { return r.Bottom - r.Top }

// Bounds returns r as an image rectangle.
func (r Rect) Bounds() image.Rectangle {
	return image.Rect(r.Left, r.Top, r.Right, r.Bottom)
}

// Face is one detection: the box and its landmarks.
type Face struct {
	Rect      Rect
	Landmarks Set
}

// FaceDetector finds at most one face in a frame.
type FaceDetector interface {
	DetectFace(*image.NRGBA) (Rect, bool)
}

// Shaper places landmarks inside a detected face rect.
type Shaper interface {
	DetectLandmarks(*image.NRGBA, Rect) (Set, error)
}

// Source is the full landmark boundary consumed by the tracker.
type Source interface {
	FaceDetector
	Shaper
}

// NewSource pairs a face detector with a landmark shaper.
func NewSource(detector FaceDetector, shaper Shaper) Source {
	return &source{detector: detector, shaper: shaper}
}

type source struct {
	detector FaceDetector
	shaper   Shaper
}

func (s *source) DetectFace(frame *image.NRGBA) (Rect, bool) {
	return s.detector.DetectFace(frame)
}

func (s *source) DetectLandmarks(frame *image.NRGBA, rect Rect) (Set, error) {
	return s.shaper.DetectLandmarks(frame, rect)
}

// largest picks the biggest candidate box, so callers get at most one face.
func largest(rects []image.Rectangle) (image.Rectangle, bool) {
	var best image.Rectangle
	found := false
	for _, r := range rects {
		if r.Empty() {
			continue
		}
		if !found || r.Dx()*r.Dy() > best.Dx()*best.Dy() {
			best, found = r, true
		}
	}
	return best, found
}
