package loader

import (
	"fmt"
	"image"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"
	"io"

	"github.com/Carmen-Shannon/oxy-gl/common"
	"github.com/anthonynsimon/bild/transform"
	_ "golang.org/x/image/bmp"
	"golang.org/x/image/draw"
	_ "golang.org/x/image/tiff"
	_ "golang.org/x/image/webp"
)

// rasterBackend decodes every format registered with the image package into 8-bit pixels.
// Grayscale sources keep one channel, everything else is expanded to RGBA.
type rasterBackend struct{}

var _ imageBackend = rasterBackend{}

func (rasterBackend) Decode(name string, r io.Reader, flip bool) (*common.ImageData, error) {
	img, format, err := image.Decode(r)
	if err != nil {
		return nil, fmt.Errorf("decode %s: %w", name, err)
	}
	b := img.Bounds()
	if b.Empty() {
		return nil, fmt.Errorf("decode %s: empty %s image", name, format)
	}

	if gray, ok := img.(*image.Gray); ok {
		data := &common.ImageData{
			Name:     name,
			Width:    b.Dx(),
			Height:   b.Dy(),
			Channels: 1,
			Pixels:   make([]byte, b.Dx()*b.Dy()),
		}
		for y := 0; y < b.Dy(); y++ {
			row := gray.Pix[y*gray.Stride : y*gray.Stride+b.Dx()]
			copy(data.Pixels[y*b.Dx():], row)
		}
		if flip {
			flipRows(data.Pixels, b.Dx())
		}
		return data, nil
	}

	if flip {
		img = transform.FlipV(img)
	}
	// Non-premultiplied so that colour under transparent texels survives the upload.
	dst := image.NewNRGBA(image.Rect(0, 0, b.Dx(), b.Dy()))
	draw.Draw(dst, dst.Bounds(), img, img.Bounds().Min, draw.Src)

	return &common.ImageData{
		Name:     name,
		Width:    b.Dx(),
		Height:   b.Dy(),
		Channels: 4,
		Pixels:   dst.Pix,
	}, nil
}

// flipRows reverses the row order of a tightly packed image in place.
func flipRows[T any](data []T, rowLen int) {
	rows := len(data) / rowLen
	tmp := make([]T, rowLen)
	for top, bottom := 0, rows-1; top < bottom; top, bottom = top+1, bottom-1 {
		a := data[top*rowLen : (top+1)*rowLen]
		b := data[bottom*rowLen : (bottom+1)*rowLen]
		copy(tmp, a)
		copy(a, b)
		copy(b, tmp)
	}
}
