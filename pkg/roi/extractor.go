// Package roi turns detected landmarks into skin-only regions of a frame.
package roi

import (
	"image"
	"math"

	"github.com/disintegration/imaging"
	"github.com/tauraamui/rppgtracker/pkg/landmark"
	"github.com/tauraamui/xerror"
)

// Extractor builds a skin mask from landmarks and applies it to a frame.
type Extractor interface {
	Name() string
	Mask(bounds image.Rectangle, points landmark.Set) Mask
	// ExtractROI zeroes every pixel outside the mask and crops the result to
	// the face rect. The source frame is never written to.
	ExtractROI(frame *image.NRGBA, face landmark.Face) *image.NRGBA
}

const (
	CheeksOnlyName      = "cheeks_only"
	FaceWithoutEyesName = "face_without_eyes"
	CheeksAndNoseName   = "cheeks_and_nose"
)

// Names lists every extractor Resolve knows about.
var Names = []string{CheeksOnlyName, FaceWithoutEyesName, CheeksAndNoseName}

func Resolve(name string) (Extractor, error) {
	switch name {
	case CheeksOnlyName:
		return CheeksOnly(), nil
	case FaceWithoutEyesName:
		return FaceWithoutEyes(), nil
	case CheeksAndNoseName:
		return CheeksAndNose(), nil
	default:
		return nil, xerror.Errorf("unknown ROI extractor: %s", name)
	}
}

// Cheek contours run down the jaw, across to the mouth corner and back up
// beside the nose, staying clear of the eyes and the beard line.
var (
	rightCheek = []int{1, 2, 3, 4, 48, 31}
	leftCheek  = []int{15, 14, 13, 12, 54, 35}
	nose       = []int{27, 31, 32, 33, 34, 35}
)

func CheeksOnly() Extractor {
	return &extractor{name: CheeksOnlyName, build: cheeksMask}
}

func FaceWithoutEyes() Extractor {
	return &extractor{name: FaceWithoutEyesName, build: faceWithoutEyesMask}
}

func CheeksAndNose() Extractor {
	return &extractor{name: CheeksAndNoseName, build: cheeksAndNoseMask}
}

type extractor struct {
	name  string
	build func(image.Rectangle, landmark.Set) Mask
}

func (e *extractor) Name() string { return e.name }

func (e *extractor) Mask(bounds image.Rectangle, points landmark.Set) Mask {
	return e.build(bounds, points)
}

func (e *extractor) ExtractROI(frame *image.NRGBA, face landmark.Face) *image.NRGBA {
	return Apply(frame, e.Mask(frame.Bounds(), face.Landmarks), face.Rect)
}

func cheeksMask(bounds image.Rectangle, points landmark.Set) Mask {
	m := polygon(bounds, points.Pick(rightCheek...))
	return m.Or(polygon(bounds, points.Pick(leftCheek...)))
}

func cheeksAndNoseMask(bounds image.Rectangle, points landmark.Set) Mask {
	m := cheeksMask(bounds, points)
	return m.Or(polygon(bounds, points.Pick(nose...)))
}

func faceWithoutEyesMask(bounds image.Rectangle, points landmark.Set) Mask {
	m := polygon(bounds, faceContour(points))
	for _, eye := range []landmark.Range{landmark.RightEye, landmark.LeftEye} {
		pts := points.Points(eye)
		m = m.AndNot(polygon(bounds, pts).Dilate(eyeMargin(pts)))
	}
	return m
}

// faceContour closes the jaw line across the top of both brows.
func faceContour(points landmark.Set) []image.Point {
	contour := points.Points(landmark.Jaw)
	for i := landmark.LeftBrow.To - 1; i >= landmark.RightBrow.From; i-- {
		contour = append(contour, points[i])
	}
	return contour
}

// eyeMargin is how far an eye region is grown to drop lashes and lid
// shadow: a fifth of the eye's width, at least two pixels.
func eyeMargin(pts []image.Point) int {
	minX, maxX := math.MaxInt32, math.MinInt32
	for _, p := range pts {
		if p.X < minX {
			minX = p.X
		}
		if p.X > maxX {
			maxX = p.X
		}
	}
	margin := (maxX - minX) / 5
	if margin < 2 {
		margin = 2
	}
	return margin
}

// Apply returns a copy of frame with every pixel outside mask zeroed, cropped
// to the face rect clamped to the frame. An empty mask yields an all-zero
// image rather than an error.
func Apply(frame *image.NRGBA, mask Mask, face landmark.Rect) *image.NRGBA {
	b := frame.Bounds()
	masked := image.NewNRGBA(b)
	for y := 0; y < b.Dy(); y++ {
		src := frame.Pix[y*frame.Stride : y*frame.Stride+b.Dx()*4]
		dst := masked.Pix[y*masked.Stride : y*masked.Stride+b.Dx()*4]
		for x := 0; x < b.Dx(); x++ {
			dst[x*4+3] = 0xff
			if !mask.At(x, y) {
				continue
			}
			copy(dst[x*4:x*4+3], src[x*4:x*4+3])
		}
	}

	crop := face.Bounds().Intersect(b)
	if crop.Empty() {
		return image.NewNRGBA(image.Rect(0, 0, 0, 0))
	}
	return imaging.Crop(masked, crop)
}
