// Package plot renders session summaries as PNG line charts.
package plot

import (
	"fmt"
	"image"
	"image/color"
	"image/draw"
	"os"
	"path/filepath"

	"github.com/disintegration/imaging"
	"github.com/golang/freetype"
	"github.com/golang/freetype/truetype"
	"github.com/spf13/afero"
	"github.com/tauraamui/rppgtracker/pkg/log"
	"github.com/tauraamui/rppgtracker/pkg/signal"
	"github.com/tauraamui/xerror"
	"golang.org/x/image/font"
	"golang.org/x/image/font/gofont/goregular"
	"golang.org/x/image/math/fixed"
	"golang.org/x/image/vector"
)

var fs = afero.NewOsFs()

const (
	width     = 960
	height    = 320
	padLeft   = 40
	padRight  = 16
	padTop    = 36
	padBottom = 24
)

var (
	background = color.NRGBA{R: 0xff, G: 0xff, B: 0xff, A: 0xff}
	axis       = color.NRGBA{R: 0x90, G: 0x90, B: 0x90, A: 0xff}
	trace      = color.NRGBA{R: 0x1b, G: 0x7a, B: 0x2c, A: 0xff}
	ink        = color.NRGBA{R: 0x20, G: 0x20, B: 0x20, A: 0xff}
)

// ToDir returns a plotter writing <dir>/<prefix>-<strategy>.png.
func ToDir(dir, prefix string) signal.Plotter {
	return &filePlotter{dir: dir, prefix: prefix}
}

type filePlotter struct {
	dir    string
	prefix string
}

func (p *filePlotter) Plot(s signal.Summary) error {
	img, err := Render(s)
	if err != nil {
		return err
	}

	if err := fs.MkdirAll(p.dir, os.ModeDir|os.ModePerm); err != nil {
		return xerror.Errorf("unable to create plot directory: %w", err)
	}

	path := filepath.Join(p.dir, fmt.Sprintf("%s-%s.png", p.prefix, s.Strategy))
	file, err := fs.Create(path)
	if err != nil {
		return xerror.Errorf("unable to create plot file: %w", err)
	}
	defer file.Close()

	if err := imaging.Encode(file, img, imaging.PNG); err != nil {
		return xerror.Errorf("unable to encode plot %s: %w", path, err)
	}
	log.Info("Wrote [%s] waveform plot to %s", s.Strategy, path)
	return nil
}

// Render draws the aggregated waveform with a title line carrying the
// pulse rate estimate.
func Render(s signal.Summary) (*image.NRGBA, error) {
	if len(s.Waveform) == 0 {
		return nil, xerror.Errorf("no waveform to plot for [%s]", s.Strategy)
	}

	img := image.NewNRGBA(image.Rect(0, 0, width, height))
	draw.Draw(img, img.Bounds(), image.NewUniform(background), image.Point{}, draw.Src)

	plotArea := image.Rect(padLeft, padTop, width-padRight, height-padBottom)
	drawFrame(img, plotArea)
	drawTrace(img, plotArea, s.Waveform)

	title := fmt.Sprintf("%s: %d samples, %d windows of %d, pulse %.1f bpm",
		s.Strategy, s.Samples, s.Windows, s.WindowSize, s.PulseRate)
	if err := drawLabel(img, padLeft, padTop-12, title); err != nil {
		return nil, err
	}
	return img, nil
}

func drawFrame(img *image.NRGBA, r image.Rectangle) {
	for x := r.Min.X; x < r.Max.X; x++ {
		img.SetNRGBA(x, r.Min.Y, axis)
		img.SetNRGBA(x, r.Max.Y-1, axis)
	}
	for y := r.Min.Y; y < r.Max.Y; y++ {
		img.SetNRGBA(r.Min.X, y, axis)
		img.SetNRGBA(r.Max.X-1, y, axis)
	}
}

const strokeWidth = 1.5

// drawTrace strokes the waveform as a chain of thin quads, one per segment.
func drawTrace(img *image.NRGBA, r image.Rectangle, values []float64) {
	w, h := float32(r.Dx()-1), float32(r.Dy()-1)
	point := func(i int) (float32, float32) {
		x := float32(0)
		if len(values) > 1 {
			x = w * float32(i) / float32(len(values)-1)
		}
		return x, h * (1 - float32(values[i]))
	}

	z := vector.NewRasterizer(r.Dx(), r.Dy())
	if len(values) == 1 {
		x, y := point(0)
		quad(z, x, y, x+1, y)
	}
	for i := 1; i < len(values); i++ {
		x0, y0 := point(i - 1)
		x1, y1 := point(i)
		quad(z, x0, y0, x1, y1)
	}
	z.Draw(img, r, image.NewUniform(trace), image.Point{})
}

func quad(z *vector.Rasterizer, x0, y0, x1, y1 float32) {
	half := float32(strokeWidth / 2)
	z.MoveTo(x0, y0-half)
	z.LineTo(x1, y1-half)
	z.LineTo(x1, y1+half)
	z.LineTo(x0, y0+half)
	z.ClosePath()
}

func drawLabel(img *image.NRGBA, x, y int, text string) error {
	f, err := freetype.ParseFont(goregular.TTF)
	if err != nil {
		return xerror.Errorf("unable to load plot font: %w", err)
	}
	drawer := &font.Drawer{
		Dst:  img,
		Src:  image.NewUniform(ink),
		Face: truetype.NewFace(f, &truetype.Options{Size: 13, Hinting: font.HintingFull}),
		Dot:  fixed.P(x, y),
	}
	drawer.DrawString(text)
	return nil
}
