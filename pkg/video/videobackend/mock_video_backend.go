package videobackend

import (
	"context"
	"image"
	"image/color"
	"math"
	"sync"

	"github.com/golang/freetype"
	"github.com/golang/freetype/truetype"
	"github.com/google/uuid"
	"github.com/tauraamui/rppgtracker/pkg/video/videoclip"
	"github.com/tauraamui/xerror"
	"golang.org/x/image/font"
	"golang.org/x/image/font/gofont/goregular"
	"golang.org/x/image/math/fixed"
)

const (
	mockWidth     = 320
	mockHeight    = 240
	mockFPS       = 30.0
	mockPulseRate = 72.0
	// mockPulseDepth is the peak green swing of the synthetic skin, in
	// 8 bit levels.
	mockPulseDepth = 3.0
)

type mockVideoBackend struct{}

func (b *mockVideoBackend) Connect(cancel context.Context, addr string) (Connection, error) {
	select {
	case <-cancel.Done():
		return nil, xerror.New("connection cancelled")
	default:
	}
	return &mockVideoConnection{title: addr, isOpen: true}, nil
}

func (b *mockVideoBackend) NewWriter(path string, fps float64) videoclip.Writer {
	return videoclip.Discard()
}

// mockVideoConnection renders a face shaped skin ellipse on a dark
// background whose green channel pulses at a fixed rate, so the whole
// pipeline can run with no camera attached.
type mockVideoConnection struct {
	uuid   string
	title  string
	mu     sync.Mutex
	isOpen bool
	frame  int
}

func (mvc *mockVideoConnection) UUID() string {
	if len(mvc.uuid) == 0 {
		mvc.uuid = uuid.NewString()
	}
	return mvc.uuid
}

func (mvc *mockVideoConnection) FPS() float64 { return mockFPS }

func (mvc *mockVideoConnection) Read() (*image.NRGBA, error) {
	mvc.mu.Lock()
	defer mvc.mu.Unlock()
	if !mvc.isOpen {
		return nil, xerror.New("unable to read from closed mock connection")
	}

	phase := 2 * math.Pi * mockPulseRate / 60 * float64(mvc.frame) / mockFPS
	mvc.frame++

	img := renderFace(mockPulseDepth * math.Sin(phase))
	if err := drawText(img, 5, mockHeight-8, mvc.title); err != nil {
		return nil, xerror.Errorf("unable to draw text onto in-mem image for offline stream: %w", err)
	}
	return img, nil
}

func (mvc *mockVideoConnection) IsOpen() bool {
	mvc.mu.Lock()
	defer mvc.mu.Unlock()
	return mvc.isOpen
}

// Close the mock connection, further reads fail.
func (mvc *mockVideoConnection) Close() error {
	mvc.mu.Lock()
	defer mvc.mu.Unlock()
	mvc.isOpen = false
	return nil
}

func renderFace(greenOffset float64) *image.NRGBA {
	img := image.NewNRGBA(image.Rect(0, 0, mockWidth, mockHeight))
	skin := color.NRGBA{R: 200, G: clampUint8(150 + greenOffset), B: 120, A: 0xff}
	background := color.NRGBA{R: 30, G: 30, B: 40, A: 0xff}
	eye := color.NRGBA{R: 60, G: 40, B: 40, A: 0xff}

	face := &ellipse{X: mockWidth / 2, Y: mockHeight / 2, RX: 75, RY: 95}
	leftEye := &ellipse{X: mockWidth/2 - 30, Y: mockHeight/2 - 25, RX: 12, RY: 6}
	rightEye := &ellipse{X: mockWidth/2 + 30, Y: mockHeight/2 - 25, RX: 12, RY: 6}

	for y := 0; y < mockHeight; y++ {
		for x := 0; x < mockWidth; x++ {
			fx, fy := float64(x), float64(y)
			switch {
			case leftEye.Contains(fx, fy), rightEye.Contains(fx, fy):
				img.SetNRGBA(x, y, eye)
			case face.Contains(fx, fy):
				img.SetNRGBA(x, y, skin)
			default:
				img.SetNRGBA(x, y, background)
			}
		}
	}
	return img
}

type ellipse struct {
	X, Y, RX, RY float64
}

func (e *ellipse) Contains(x, y float64) bool {
	dx, dy := (x-e.X)/e.RX, (y-e.Y)/e.RY
	return dx*dx+dy*dy <= 1
}

func clampUint8(v float64) uint8 {
	return uint8(math.Max(0, math.Min(255, math.Round(v))))
}

var (
	mockFontOnce sync.Once
	mockFont     *truetype.Font
	mockFontErr  error
)

func drawText(canvas *image.NRGBA, x, y int, text string) error {
	if len(text) == 0 {
		return nil
	}
	mockFontOnce.Do(func() {
		mockFont, mockFontErr = freetype.ParseFont(goregular.TTF)
	})
	if mockFontErr != nil {
		return mockFontErr
	}

	fontDrawer := &font.Drawer{
		Dst: canvas,
		Src: image.White,
		Face: truetype.NewFace(mockFont, &truetype.Options{
			Size:    10,
			Hinting: font.HintingFull,
		}),
	}
	fontDrawer.Dot = fixed.P(x, y)
	fontDrawer.DrawString(text)
	return nil
}
