// Package videoclip records the extracted ROI frames of a session to disk.
package videoclip

import (
	"fmt"
	"image"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/disintegration/imaging"
	"github.com/spf13/afero"
	"github.com/tauraamui/xerror"
	"gocv.io/x/gocv"
)

var fs = afero.NewOsFs()

// Writer appends frames to a clip. Frames of differing sizes are scaled to
// the size of the first frame written.
type Writer interface {
	Write(*image.NRGBA) error
	Frames() int
	Close() error
}

const DATE_FORMAT = "2006-01-02"
const DATE_AND_TIME_FORMAT = "2006-01-02 15.04.05"

var Timestamp = func() time.Time {
	return time.Now()
}

// FileName places a session's clip under root, grouped by day.
func FileName(root, session string) string {
	ts := Timestamp()
	return filepath.Join(
		root,
		ts.Format(DATE_FORMAT),
		fmt.Sprintf("%s %s.mp4", ts.Format(DATE_AND_TIME_FORMAT), session),
	)
}

const codec = "avc1.4d001e"

// OpenCV returns a writer encoding to path. Nothing touches the disk until
// the first frame arrives.
func OpenCV(path string, fps float64) Writer {
	return &openCVClipWriter{path: path, fps: fps}
}

type openCVClipWriter struct {
	mu     sync.Mutex
	path   string
	fps    float64
	size   image.Point
	frames int
	vw     *gocv.VideoWriter
}

var openVideoWriter = func(filename, codec string, fps float64, width, height int, isColor bool) (*gocv.VideoWriter, error) {
	return gocv.VideoWriterFile(filename, codec, fps, width, height, isColor)
}

func ensureDirectoryPathExists(path string) error {
	err := fs.MkdirAll(path, os.ModePerm|os.ModeDir)
	if err == nil || os.IsExist(err) {
		return nil
	}
	return err
}

func (w *openCVClipWriter) init(size image.Point) error {
	if err := ensureDirectoryPathExists(filepath.Dir(w.path)); err != nil {
		return err
	}
	vw, err := openVideoWriter(w.path, codec, w.fps, size.X, size.Y, true)
	if err != nil {
		return xerror.Errorf("unable to open clip writer: %w", err)
	}
	w.vw = vw
	w.size = size
	return nil
}

func (w *openCVClipWriter) Write(frame *image.NRGBA) error {
	w.mu.Lock()
	defer w.mu.Unlock()

	if frame == nil || frame.Bounds().Empty() {
		return xerror.New("cannot write empty frame")
	}
	if w.vw == nil {
		if err := w.init(frame.Bounds().Size()); err != nil {
			return err
		}
	}

	var img image.Image = frame
	if frame.Bounds().Size() != w.size {
		img = imaging.Resize(frame, w.size.X, w.size.Y, imaging.Linear)
	}

	mat, err := gocv.ImageToMatRGB(img)
	if err != nil {
		return xerror.Errorf("unable to convert frame for clip writer: %w", err)
	}
	defer mat.Close()

	if err := w.vw.Write(mat); err != nil {
		return err
	}
	w.frames++
	return nil
}

func (w *openCVClipWriter) Frames() int {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.frames
}

func (w *openCVClipWriter) Close() error {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.vw == nil {
		return nil
	}
	err := w.vw.Close()
	w.vw = nil
	return err
}

// Discard counts frames and drops them.
func Discard() Writer {
	return &discardWriter{}
}

type discardWriter struct {
	frames int
}

func (d *discardWriter) Write(frame *image.NRGBA) error {
	if frame == nil || frame.Bounds().Empty() {
		return xerror.New("cannot write empty frame")
	}
	d.frames++
	return nil
}

func (d *discardWriter) Frames() int  { return d.frames }
func (d *discardWriter) Close() error { return nil }
