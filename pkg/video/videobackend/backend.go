package videobackend

import (
	"context"
	"image"

	"github.com/spf13/afero"
	"github.com/tauraamui/rppgtracker/pkg/video/videoclip"
)

var fs = afero.NewOsFs()

// Connection is a frame source. Read blocks until the next frame arrives.
type Connection interface {
	UUID() string
	FPS() float64
	Read() (*image.NRGBA, error)
	IsOpen() bool
	Close() error
}

type Backend interface {
	Connect(context.Context, string) (Connection, error)
	NewWriter(path string, fps float64) videoclip.Writer
}

func Default() Backend {
	return OpenCV()
}

func OpenCV() Backend {
	return &openCVBackend{}
}

func Mock() Backend {
	return &mockVideoBackend{}
}

func Resolve(t string) Backend {
	switch t {
	case "mock":
		return Mock()
	default:
		return Default()
	}
}
