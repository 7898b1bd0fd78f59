// Package imaging sanitizes uploaded photos before they leave the service:
// decode, apply the EXIF orientation, drop embedded metadata by re-encoding,
// and bound the longest side.
package imaging

import (
	"bytes"
	"errors"
	"fmt"
	"image"
	"image/jpeg"
	_ "image/png"

	"github.com/rwcarlsen/goexif/exif"
	xdraw "golang.org/x/image/draw"
)

// ErrUnsupported reports that the payload could not be decoded as a
// supported image type.
var ErrUnsupported = errors.New("imaging: unsupported image type")

const (
	DefaultMaxSide = 1536
	DefaultQuality = 92
)

// Options bounds the sanitized output. Zero values fall back to defaults.
type Options struct {
	MaxSide int
	Quality int
}

// Photo is a sanitized image ready for upload to a provider.
type Photo struct {
	Data   []byte
	MIME   string
	Width  int
	Height int
}

// Sanitize decodes an uploaded photo, autorotates it according to its EXIF
// orientation, resizes it so the longest side fits within opts.MaxSide, and
// re-encodes it as JPEG. Re-encoding through the pixel data is what drops
// EXIF/XMP blocks, so the output carries no metadata from the original.
func Sanitize(data []byte, opts Options) (Photo, error) {
	maxSide := opts.MaxSide
	if maxSide <= 0 {
		maxSide = DefaultMaxSide
	}
	quality := opts.Quality
	if quality <= 0 {
		quality = DefaultQuality
	}

	img, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return Photo{}, fmt.Errorf("%w: %v", ErrUnsupported, err)
	}

	img = autoRotate(img, orientation(data))
	img = resizeMax(img, maxSide)

	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, img, &jpeg.Options{Quality: quality}); err != nil {
		return Photo{}, fmt.Errorf("imaging: encode: %w", err)
	}
	b := img.Bounds()
	return Photo{
		Data:   buf.Bytes(),
		MIME:   "image/jpeg",
		Width:  b.Dx(),
		Height: b.Dy(),
	}, nil
}

// orientation reads the EXIF orientation tag. Missing or malformed EXIF is
// normal (PNG, already-stripped JPEG) and yields the identity orientation.
func orientation(data []byte) int {
	x, err := exif.Decode(bytes.NewReader(data))
	if err != nil {
		return 1
	}
	tag, err := x.Get(exif.Orientation)
	if err != nil {
		return 1
	}
	o, err := tag.Int(0)
	if err != nil {
		return 1
	}
	return o
}

func autoRotate(img image.Image, orientation int) image.Image {
	switch orientation {
	case 3:
		return rotate180(img)
	case 6:
		return rotate90(img)
	case 8:
		return rotate270(img)
	default:
		return img
	}
}

func rotate90(src image.Image) image.Image {
	b := src.Bounds()
	dst := image.NewRGBA(image.Rect(0, 0, b.Dy(), b.Dx()))
	for y := b.Min.Y; y < b.Max.Y; y++ {
		for x := b.Min.X; x < b.Max.X; x++ {
			dst.Set(b.Max.Y-1-y, x-b.Min.X, src.At(x, y))
		}
	}
	return dst
}

func rotate180(src image.Image) image.Image {
	b := src.Bounds()
	dst := image.NewRGBA(image.Rect(0, 0, b.Dx(), b.Dy()))
	for y := b.Min.Y; y < b.Max.Y; y++ {
		for x := b.Min.X; x < b.Max.X; x++ {
			dst.Set(b.Max.X-1-x, b.Max.Y-1-y, src.At(x, y))
		}
	}
	return dst
}

func rotate270(src image.Image) image.Image {
	b := src.Bounds()
	dst := image.NewRGBA(image.Rect(0, 0, b.Dy(), b.Dx()))
	for y := b.Min.Y; y < b.Max.Y; y++ {
		for x := b.Min.X; x < b.Max.X; x++ {
			dst.Set(y-b.Min.Y, b.Max.X-1-x, src.At(x, y))
		}
	}
	return dst
}

// resizeMax scales down so the longest side is at most maxSide. Images
// already within the bound are returned untouched.
func resizeMax(src image.Image, maxSide int) image.Image {
	b := src.Bounds()
	w, h := b.Dx(), b.Dy()
	longest := w
	if h > longest {
		longest = h
	}
	if longest <= maxSide {
		return src
	}
	scale := float64(maxSide) / float64(longest)
	nw := int(float64(w) * scale)
	nh := int(float64(h) * scale)
	if nw < 1 {
		nw = 1
	}
	if nh < 1 {
		nh = 1
	}
	dst := image.NewRGBA(image.Rect(0, 0, nw, nh))
	xdraw.CatmullRom.Scale(dst, dst.Bounds(), src, b, xdraw.Over, nil)
	return dst
}
