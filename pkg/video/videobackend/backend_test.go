package videobackend_test

import (
	"context"
	"testing"

	"github.com/matryer/is"
	"github.com/tauraamui/rppgtracker/pkg/signal"
	"github.com/tauraamui/rppgtracker/pkg/video/videobackend"
)

func TestVideoBackendDefaultBackend(t *testing.T) {
	is := is.New(t)
	is.True(videobackend.Default() != nil)
	is.True(videobackend.Resolve("mock") != nil)
}

func TestMockBackendProducesPulsingFrames(t *testing.T) {
	is := is.New(t)

	conn, err := videobackend.Mock().Connect(context.Background(), "")
	is.NoErr(err)
	is.True(conn.IsOpen())
	is.Equal(conn.FPS(), 30.0)
	is.True(len(conn.UUID()) > 0)

	greens := map[float64]bool{}
	for i := 0; i < 30; i++ {
		frame, err := conn.Read()
		is.NoErr(err)
		is.Equal(frame.Bounds().Dx(), 320)
		is.Equal(frame.Bounds().Dy(), 240)

		c := frame.NRGBAAt(160, 160)
		greens[float64(c.G)] = true
	}
	is.True(len(greens) > 1) // skin green level moves with the pulse
}

func TestMockBackendSkinIsNotBlack(t *testing.T) {
	is := is.New(t)

	conn, err := videobackend.Mock().Connect(context.Background(), "test")
	is.NoErr(err)
	frame, err := conn.Read()
	is.NoErr(err)

	s, ok := signal.MeanColour(frame)
	is.True(ok)
	is.True(s[signal.Red] > 0)
}

func TestMockConnectionFailsAfterClose(t *testing.T) {
	is := is.New(t)

	conn, err := videobackend.Mock().Connect(context.Background(), "")
	is.NoErr(err)
	is.NoErr(conn.Close())
	is.True(!conn.IsOpen())

	_, err = conn.Read()
	is.True(err != nil)
}

func TestMockConnectCancelled(t *testing.T) {
	is := is.New(t)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	conn, err := videobackend.Mock().Connect(ctx, "")
	is.True(conn == nil)
	is.Equal(err.Error(), "connection cancelled")
}
