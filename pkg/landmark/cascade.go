package landmark

import (
	"image"

	"github.com/tauraamui/rppgtracker/pkg/log"
	"github.com/tauraamui/xerror"
	"gocv.io/x/gocv"
)

// CascadeDetector finds faces with an OpenCV Haar cascade.
type CascadeDetector struct {
	classifier gocv.CascadeClassifier
	minSize    image.Point
}

var loadCascade = func(classifier *gocv.CascadeClassifier, path string) bool {
	return classifier.Load(path)
}

// NewCascadeDetector loads the cascade XML at path. Faces smaller than
// minSize pixels on either side are ignored.
func NewCascadeDetector(path string, minSize int) (*CascadeDetector, error) {
	classifier := gocv.NewCascadeClassifier()
	if !loadCascade(&classifier, path) {
		classifier.Close()
		return nil, xerror.Errorf("unable to load cascade file: %s", path)
	}
	return &CascadeDetector{
		classifier: classifier,
		minSize:    image.Pt(minSize, minSize),
	}, nil
}

func (d *CascadeDetector) DetectFace(frame *image.NRGBA) (Rect, bool) {
	mat, err := gocv.ImageToMatRGB(frame)
	if err != nil {
		log.Error("unable to convert frame for face detection: %v", err)
		return Rect{}, false
	}
	defer mat.Close()

	gray := gocv.NewMat()
	defer gray.Close()
	gocv.CvtColor(mat, &gray, gocv.ColorBGRToGray)

	rects := d.classifier.DetectMultiScaleWithParams(gray, 1.1, 5, 0, d.minSize, image.Point{})
	best, ok := largest(rects)
	if !ok {
		return Rect{}, false
	}
	return RectFrom(best), true
}

func (d *CascadeDetector) Close() error {
	return d.classifier.Close()
}
