package landmark

import (
	"image"

	pigo "github.com/esimov/pigo/core"
	"github.com/spf13/afero"
	"github.com/tauraamui/xerror"
)

var fs = afero.NewOsFs()

const (
	pigoShiftFactor  = 0.1
	pigoScaleFactor  = 1.1
	pigoIoUThreshold = 0.2
	pigoMinQuality   = 5.0
)

// PigoDetector finds faces with the pure Go pixel intensity comparison
// cascade, so detection works without OpenCV's data files.
type PigoDetector struct {
	classifier *pigo.Pigo
	minSize    int
}

// NewPigoDetector unpacks the binary cascade at path.
func NewPigoDetector(path string, minSize int) (*PigoDetector, error) {
	data, err := afero.ReadFile(fs, path)
	if err != nil {
		return nil, xerror.Errorf("unable to read pigo cascade file: %w", err)
	}

	classifier, err := pigo.NewPigo().Unpack(data)
	if err != nil {
		return nil, xerror.Errorf("unable to unpack pigo cascade: %w", err)
	}
	return &PigoDetector{classifier: classifier, minSize: minSize}, nil
}

func (d *PigoDetector) DetectFace(frame *image.NRGBA) (Rect, bool) {
	b := frame.Bounds()
	params := pigo.CascadeParams{
		MinSize:     d.minSize,
		MaxSize:     max(b.Dx(), b.Dy()),
		ShiftFactor: pigoShiftFactor,
		ScaleFactor: pigoScaleFactor,
		ImageParams: pigo.ImageParams{
			Pixels: pigo.RgbToGrayscale(frame),
			Rows:   b.Dy(),
			Cols:   b.Dx(),
			Dim:    b.Dx(),
		},
	}

	dets := d.classifier.RunCascade(params, 0.0)
	dets = d.classifier.ClusterDetections(dets, pigoIoUThreshold)

	rects := make([]image.Rectangle, 0, len(dets))
	for _, det := range dets {
		if det.Q < pigoMinQuality {
			continue
		}
		// detections are a centre point and a scale (diameter)
		half := det.Scale / 2
		rects = append(rects, image.Rect(det.Col-half, det.Row-half, det.Col+half, det.Row+half).Intersect(b))
	}

	best, ok := largest(rects)
	if !ok {
		return Rect{}, false
	}
	return RectFrom(best), true
}

func max(a, b int) int {
	if a > b {
		return a
	}
	return b
}
