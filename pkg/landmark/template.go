package landmark

import (
	"image"
	"math"

	"github.com/tauraamui/xerror"
)

// meanShape is the average frontal face in the 68 point scheme, with
// coordinates relative to the face box. Y overshoots 1 for the chin since
// detector boxes usually stop at the lower lip.
var meanShape = [Count][2]float64{
	// jaw
	{0.0792, 0.3392}, {0.0829, 0.4570}, {0.0968, 0.5756}, {0.1221, 0.6919},
	{0.1687, 0.8003}, {0.2398, 0.8957}, {0.3257, 0.9771}, {0.4223, 1.0433},
	{0.5318, 1.0608}, {0.6413, 1.0398}, {0.7381, 0.9723}, {0.8244, 0.8896},
	{0.8948, 0.7925}, {0.9394, 0.6815}, {0.9611, 0.5622}, {0.9706, 0.4418},
	{0.9712, 0.3221},
	// right brow
	{0.1638, 0.2492}, {0.2178, 0.2043}, {0.2913, 0.1924}, {0.3675, 0.2036},
	{0.4393, 0.2331},
	// left brow
	{0.5864, 0.2281}, {0.6602, 0.1959}, {0.7375, 0.1824}, {0.8132, 0.1928},
	{0.8708, 0.2353},
	// nose bridge
	{0.5153, 0.3186}, {0.5162, 0.3962}, {0.5171, 0.4738}, {0.5182, 0.5532},
	// nose lower
	{0.4337, 0.6041}, {0.4755, 0.6208}, {0.5207, 0.6343}, {0.5659, 0.6188},
	{0.6071, 0.6016},
	// right eye
	{0.2524, 0.3311}, {0.2987, 0.3026}, {0.3557, 0.3030}, {0.4037, 0.3387},
	{0.3525, 0.3500}, {0.2968, 0.3505},
	// left eye
	{0.6313, 0.3341}, {0.6791, 0.2965}, {0.7360, 0.2947}, {0.7829, 0.3213},
	{0.7403, 0.3418}, {0.6850, 0.3437},
	// outer lip
	{0.3532, 0.7462}, {0.4146, 0.7191}, {0.4777, 0.7068}, {0.5227, 0.7171},
	{0.5698, 0.7054}, {0.6352, 0.7157}, {0.6995, 0.7394}, {0.6394, 0.8052},
	{0.5764, 0.8354}, {0.5254, 0.8417}, {0.4764, 0.8375}, {0.4138, 0.8100},
	// inner lip
	{0.3801, 0.7500}, {0.4780, 0.7451}, {0.5234, 0.7489}, {0.5711, 0.7433},
	{0.6724, 0.7442}, {0.5725, 0.7766}, {0.5240, 0.7834}, {0.4776, 0.7785},
}

// meanShapeHeight scales the template so the chin lands on the box bottom.
const meanShapeHeight = 1.0608

// Template returns a shaper that fits the mean face shape to the detected
// box. It needs no model file and gives stable regions for a frontal face
// held still in front of the camera.
func Template() Shaper {
	return templateShaper{}
}

type templateShaper struct{}

func (templateShaper) DetectLandmarks(frame *image.NRGBA, rect Rect) (Set, error) {
	var set Set
	if !rect.Valid() {
		return set, xerror.Errorf("invalid face rect: %+v", rect)
	}
	if frame != nil && !rect.Bounds().Overlaps(frame.Bounds()) {
		return set, xerror.Errorf("face rect %+v lies outside frame %v", rect, frame.Bounds())
	}

	w, h := float64(rect.Width()), float64(rect.Height())
	for i, p := range meanShape {
		set[i] = image.Point{
			X: rect.Left + int(math.Round(p[0]*w)),
			Y: rect.Top + int(math.Round(p[1]/meanShapeHeight*h)),
		}
	}
	return set, nil
}
