// Package display is the live feedback boundary: showing frames and polling
// the keyboard once per tick.
package display

import (
	"image"

	"github.com/tauraamui/xerror"
	"gocv.io/x/gocv"
)

// NoKey is what PollKey returns when nothing was pressed.
const NoKey = -1

type Display interface {
	Show(image.Image) error
	// PollKey waits at most a millisecond for a key press.
	PollKey() int
	Close() error
}

// Window shows frames in an OpenCV HighGUI window.
func Window(title string) Display {
	return &window{title: title}
}

type window struct {
	title  string
	window *gocv.Window
}

var newWindow = func(title string) *gocv.Window {
	return gocv.NewWindow(title)
}

func (w *window) Show(img image.Image) error {
	if img.Bounds().Empty() {
		return xerror.New("cannot show empty frame")
	}
	if w.window == nil {
		w.window = newWindow(w.title)
	}

	mat, err := gocv.ImageToMatRGB(img)
	if err != nil {
		return xerror.Errorf("unable to convert frame for display: %w", err)
	}
	defer mat.Close()

	w.window.IMShow(mat)
	return nil
}

func (w *window) PollKey() int {
	if w.window == nil {
		return NoKey
	}
	key := w.window.WaitKey(1)
	if key < 0 {
		return NoKey
	}
	return key & 0xff
}

func (w *window) Close() error {
	if w.window == nil {
		return nil
	}
	return w.window.Close()
}

// Headless discards frames and never reports a key press, for running
// without a display server.
func Headless() Display {
	return headless{}
}

type headless struct{}

func (headless) Show(image.Image) error { return nil }
func (headless) PollKey() int           { return NoKey }
func (headless) Close() error           { return nil }
