package landmark

import "image"

// Center returns a detector that always reports a face box centred in the
// frame, covering the given fraction of the frame height. It suits fixed
// kiosk setups and the mock video backend, where nothing else can find a
// face.
func Center(fraction float64) FaceDetector {
	if fraction <= 0 || fraction > 1 {
		fraction = 0.6
	}
	return centerDetector{fraction: fraction}
}

type centerDetector struct {
	fraction float64
}

func (d centerDetector) DetectFace(frame *image.NRGBA) (Rect, bool) {
	b := frame.Bounds()
	size := int(float64(b.Dy()) * d.fraction)
	if size <= 0 || size > b.Dx() {
		return Rect{}, false
	}
	cx, cy := b.Min.X+b.Dx()/2, b.Min.Y+b.Dy()/2
	return Rect{
		Left:   cx - size/2,
		Right:  cx - size/2 + size,
		Top:    cy - size/2,
		Bottom: cy - size/2 + size,
	}, true
}
