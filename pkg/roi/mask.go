package roi

import (
	"image"
	"image/draw"

	"golang.org/x/image/vector"
)

// Mask marks the pixels of a frame that count as skin. It always has the
// same extent as the frame it was built for.
type Mask struct {
	W, H int
	Pix  []bool
}

// NewMask returns an empty mask covering bounds.
func NewMask(bounds image.Rectangle) Mask {
	return Mask{W: bounds.Dx(), H: bounds.Dy(), Pix: make([]bool, bounds.Dx()*bounds.Dy())}
}

// At reports whether (x, y) is kept. Out of range coordinates are not.
func (m Mask) At(x, y int) bool {
	if x < 0 || y < 0 || x >= m.W || y >= m.H {
		return false
	}
	return m.Pix[y*m.W+x]
}

// Count returns the number of kept pixels.
func (m Mask) Count() int {
	n := 0
	for _, v := range m.Pix {
		if v {
			n++
		}
	}
	return n
}

// Or sets every pixel kept in other. Both masks must share an extent.
func (m Mask) Or(other Mask) Mask {
	for i, v := range other.Pix {
		if v {
			m.Pix[i] = true
		}
	}
	return m
}

// AndNot clears every pixel kept in other.
func (m Mask) AndNot(other Mask) Mask {
	for i, v := range other.Pix {
		if v {
			m.Pix[i] = false
		}
	}
	return m
}

// Dilate grows the kept region by r pixels in every direction, using a
// square structuring element. The result is a new mask.
func (m Mask) Dilate(r int) Mask {
	if r <= 0 {
		out := Mask{W: m.W, H: m.H, Pix: make([]bool, len(m.Pix))}
		copy(out.Pix, m.Pix)
		return out
	}

	// separable: rows first, then columns
	rows := make([]bool, len(m.Pix))
	for y := 0; y < m.H; y++ {
		for x := 0; x < m.W; x++ {
			if !m.Pix[y*m.W+x] {
				continue
			}
			for dx := -r; dx <= r; dx++ {
				if nx := x + dx; nx >= 0 && nx < m.W {
					rows[y*m.W+nx] = true
				}
			}
		}
	}

	out := Mask{W: m.W, H: m.H, Pix: make([]bool, len(m.Pix))}
	for y := 0; y < m.H; y++ {
		for x := 0; x < m.W; x++ {
			if !rows[y*m.W+x] {
				continue
			}
			for dy := -r; dy <= r; dy++ {
				if ny := y + dy; ny >= 0 && ny < m.H {
					out.Pix[ny*m.W+x] = true
				}
			}
		}
	}
	return out
}

// coverageThreshold is the minimum antialiased coverage for a pixel to count
// as inside a polygon.
const coverageThreshold = 0x80

// polygon rasterizes the closed contour through pts into a mask covering
// bounds. Fewer than three points give an empty mask.
func polygon(bounds image.Rectangle, pts []image.Point) Mask {
	m := NewMask(bounds)
	if len(pts) < 3 || m.W == 0 || m.H == 0 {
		return m
	}

	z := vector.NewRasterizer(m.W, m.H)
	z.DrawOp = draw.Src
	for i, p := range pts {
		x, y := clampToExtent(p.Sub(bounds.Min), m.W, m.H)
		if i == 0 {
			z.MoveTo(x, y)
			continue
		}
		z.LineTo(x, y)
	}
	z.ClosePath()

	alpha := image.NewAlpha(image.Rect(0, 0, m.W, m.H))
	z.Draw(alpha, alpha.Bounds(), image.Opaque, image.Point{})

	for i, a := range alpha.Pix {
		m.Pix[i] = a >= coverageThreshold
	}
	return m
}

// clampToExtent moves a landmark onto the pixel centre it names, keeping it
// inside the rasterizer's canvas.
func clampToExtent(p image.Point, w, h int) (float32, float32) {
	x, y := float32(p.X)+0.5, float32(p.Y)+0.5
	if x < 0 {
		x = 0
	}
	if y < 0 {
		y = 0
	}
	if x > float32(w) {
		x = float32(w)
	}
	if y > float32(h) {
		y = float32(h)
	}
	return x, y
}
