package display

import (
	"image"
	"image/color"
	"image/draw"
	"sync"

	"github.com/disintegration/imaging"
	"github.com/golang/freetype"
	"github.com/golang/freetype/truetype"
	"github.com/tauraamui/xerror"
	"golang.org/x/image/font"
	"golang.org/x/image/font/gofont/goregular"
	"golang.org/x/image/math/fixed"
)

// MinWidth is the narrowest a ROI frame is shown at; smaller crops are
// scaled up so the overlay text stays legible.
const MinWidth = 320

const (
	fontSize    = 14.0
	lineSpacing = 18
	margin      = 6
)

var (
	parseFontOnce sync.Once
	regular       *truetype.Font
	parseFontErr  error
)

func face() (font.Face, error) {
	parseFontOnce.Do(func() {
		regular, parseFontErr = freetype.ParseFont(goregular.TTF)
	})
	if parseFontErr != nil {
		return nil, parseFontErr
	}
	return truetype.NewFace(regular, &truetype.Options{Size: fontSize, Hinting: font.HintingFull}), nil
}

// Annotate returns a copy of frame, widened to at least MinWidth, with each
// line of text drawn from the top left corner. The source is left alone.
func Annotate(frame image.Image, lines ...string) (*image.NRGBA, error) {
	var canvas *image.NRGBA
	if frame.Bounds().Dx() > 0 && frame.Bounds().Dx() < MinWidth {
		canvas = imaging.Resize(frame, MinWidth, 0, imaging.NearestNeighbor)
	} else {
		canvas = imaging.Clone(frame)
	}
	if canvas.Bounds().Empty() {
		return canvas, nil
	}

	ff, err := face()
	if err != nil {
		return nil, xerror.Errorf("unable to load overlay font: %w", err)
	}
	defer ff.Close()

	drawer := &font.Drawer{Dst: canvas, Src: image.NewUniform(color.NRGBA{R: 0xff, G: 0xff, A: 0xff}), Face: ff}
	for i, line := range lines {
		y := margin + (i+1)*lineSpacing
		shadow(canvas, line, ff, margin, y)
		drawer.Dot = fixed.P(margin, y)
		drawer.DrawString(line)
	}
	return canvas, nil
}

// shadow darkens the area behind a line so it reads on bright skin.
func shadow(canvas draw.Image, line string, ff font.Face, x, y int) {
	bounds, _ := font.BoundString(ff, line)
	r := image.Rect(
		x+bounds.Min.X.Floor()-2, y+bounds.Min.Y.Floor()-2,
		x+bounds.Max.X.Ceil()+2, y+bounds.Max.Y.Ceil()+2,
	)
	draw.Draw(canvas, r, image.NewUniform(color.NRGBA{A: 0x90}), image.Point{}, draw.Over)
}
