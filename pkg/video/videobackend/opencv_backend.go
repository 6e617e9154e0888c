package videobackend

import (
	"context"
	"image"
	"sync"

	"github.com/disintegration/imaging"
	"github.com/google/uuid"
	"github.com/tauraamui/rppgtracker/pkg/log"
	"github.com/tauraamui/rppgtracker/pkg/video/videoclip"
	"github.com/tauraamui/xerror"
	"gocv.io/x/gocv"
)

// fallbackFPS is assumed when a device cannot report its frame rate.
const fallbackFPS = 30.0

type openCVBackend struct{}

func (b *openCVBackend) Connect(cancel context.Context, addr string) (Connection, error) {
	conn := openCVConnection{mat: gocv.NewMat()}
	err := conn.connect(cancel, addr)
	if err != nil {
		conn.mat.Close()
		return nil, err
	}
	return &conn, nil
}

func (b *openCVBackend) NewWriter(path string, fps float64) videoclip.Writer {
	return videoclip.OpenCV(path, fps)
}

type openCVConnection struct {
	uuid   string
	mu     sync.Mutex
	isOpen bool
	vc     *gocv.VideoCapture
	mat    gocv.Mat
	fps    float64
}

func (c *openCVConnection) connect(cancel context.Context, addr string) error {
	connAndError := make(chan openVideoStreamResult)
	go openVideoStream(addr, connAndError)
	select {
	case r := <-connAndError:
		if r.err != nil {
			return r.err
		}
		c.vc = r.vc
		c.isOpen = true
		c.fps = readFPS(r.vc)
		return nil
	case <-cancel.Done():
		return xerror.New("connection cancelled")
	}
}

type openVideoStreamResult struct {
	vc  *gocv.VideoCapture
	err error
}

func openVideoStream(addr string, d chan openVideoStreamResult) {
	vc, err := openVideoCapture(addr)
	result := openVideoStreamResult{vc: vc, err: err}
	d <- result
}

var openVideoCapture = func(addr string) (*gocv.VideoCapture, error) {
	return gocv.OpenVideoCapture(addr)
}

var readFromVideoConnection = func(vc *gocv.VideoCapture, mat *gocv.Mat) bool {
	if vc.IsOpened() {
		return vc.Read(mat)
	}
	return false
}

func readFPS(vc *gocv.VideoCapture) float64 {
	fps := vc.Get(gocv.VideoCaptureFPS)
	if fps <= 0 {
		log.Warn("Video source did not report a frame rate, assuming %.0f FPS", fallbackFPS)
		return fallbackFPS
	}
	return fps
}

func (c *openCVConnection) UUID() string {
	if len(c.uuid) == 0 {
		c.uuid = uuid.NewString()
	}
	return c.uuid
}

func (c *openCVConnection) FPS() float64 { return c.fps }

func (c *openCVConnection) Read() (*image.NRGBA, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if ok := readFromVideoConnection(c.vc, &c.mat); !ok || c.mat.Empty() {
		return nil, xerror.New("unable to read from video connection")
	}

	img, err := c.mat.ToImage()
	if err != nil {
		return nil, xerror.Errorf("unable to convert OpenCV mat into Go image: %w", err)
	}
	return imaging.Clone(img), nil
}

func (c *openCVConnection) IsOpen() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.isOpen {
		return c.vc.IsOpened()
	}
	return false
}

func (c *openCVConnection) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.isOpen = false
	c.mat.Close()
	return c.vc.Close()
}
