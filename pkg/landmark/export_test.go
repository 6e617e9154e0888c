package landmark

import (
	"image"

	"github.com/spf13/afero"
)

func OverloadFS(overload afero.Fs) func() {
	fsRef := fs
	fs = overload
	return func() { fs = fsRef }
}

func Largest(rects []image.Rectangle) (image.Rectangle, bool) {
	return largest(rects)
}
