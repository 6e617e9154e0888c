package videoclip_test

import (
	"image"
	"path/filepath"
	"testing"
	"time"

	"github.com/matryer/is"
	"github.com/tauraamui/rppgtracker/pkg/video/videoclip"
)

func TestFileNameGroupsByDay(t *testing.T) {
	is := is.New(t)

	timestampRef := videoclip.Timestamp
	videoclip.Timestamp = func() time.Time {
		return time.Date(2010, 2, 2, 19, 45, 0, 0, time.UTC)
	}
	defer func() { videoclip.Timestamp = timestampRef }()

	is.Equal(
		videoclip.FileName("/testroot/clips", "abc"),
		filepath.FromSlash("/testroot/clips/2010-02-02/2010-02-02 19.45.00 abc.mp4"),
	)
}

func TestDiscardWriterCountsFrames(t *testing.T) {
	is := is.New(t)

	w := videoclip.Discard()
	is.NoErr(w.Write(image.NewNRGBA(image.Rect(0, 0, 4, 4))))
	is.NoErr(w.Write(image.NewNRGBA(image.Rect(0, 0, 8, 2))))
	is.Equal(w.Frames(), 2)
	is.NoErr(w.Close())
}

func TestDiscardWriterRejectsEmptyFrames(t *testing.T) {
	is := is.New(t)

	w := videoclip.Discard()
	is.True(w.Write(image.NewNRGBA(image.Rect(0, 0, 0, 0))) != nil)
	is.True(w.Write(nil) != nil)
	is.Equal(w.Frames(), 0)
}

func TestOpenCVWriterCloseWithoutFrames(t *testing.T) {
	is := is.New(t)
	w := videoclip.OpenCV("/nowhere/clip.mp4", 30)
	is.Equal(w.Frames(), 0)
	is.NoErr(w.Close())
}
