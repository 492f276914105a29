package vidreader

import (
	"errors"
	"fmt"
	"image"
	"image/jpeg"
	"image/png"
	"io"
	"os"
	"path/filepath"
	"strings"

	"golang.org/x/image/bmp"
)

// ErrImageFormat is returned for unsupported image file extensions.
var ErrImageFormat = errors.New("vidreader: unsupported image format")

// Image returns a copy of the current frame as an RGBA image, or nil
// before the first frame or on a closed Reader.
func (r *Reader) Image() *image.RGBA {
	if !r.valid() || !r.haveFrame {
		return nil
	}
	return RGBToImage(r.rgb, r.width, r.height, r.stride)
}

// ImageInto writes the current frame into dst, which must have the frame's
// bounds. It reports false before the first frame, on a closed Reader or
// on a size mismatch.
func (r *Reader) ImageInto(dst *image.RGBA) bool {
	if !r.valid() || !r.haveFrame || dst == nil {
		return false
	}
	if dst.Rect.Dx() != r.width || dst.Rect.Dy() != r.height {
		return false
	}
	fillRGBA(dst, r.rgb, r.width, r.height, r.stride)
	return true
}

// RGBToImage copies packed RGB24 pixels into a new RGBA image.
func RGBToImage(rgb []byte, width, height, stride int) *image.RGBA {
	if width <= 0 || height <= 0 || len(rgb) < stride*(height-1)+width*3 {
		return nil
	}
	img := image.NewRGBA(image.Rect(0, 0, width, height))
	fillRGBA(img, rgb, width, height, stride)
	return img
}

func fillRGBA(img *image.RGBA, rgb []byte, width, height, stride int) {
	for y := 0; y < height; y++ {
		src := rgb[y*stride : y*stride+width*3]
		dst := img.Pix[y*img.Stride : y*img.Stride+width*4]
		for x := 0; x < width; x++ {
			dst[x*4+0] = src[x*3+0]
			dst[x*4+1] = src[x*3+1]
			dst[x*4+2] = src[x*3+2]
			dst[x*4+3] = 0xff
		}
	}
}

// ImageFormat maps a file extension to an encoder name: "png", "jpeg" or
// "bmp".
func ImageFormat(filename string) (string, error) {
	switch ext := strings.ToLower(filepath.Ext(filename)); ext {
	case ".png":
		return "png", nil
	case ".jpg", ".jpeg":
		return "jpeg", nil
	case ".bmp":
		return "bmp", nil
	default:
		return "", fmt.Errorf("%w: %q", ErrImageFormat, ext)
	}
}

// EncodeImage writes img in the named format.
func EncodeImage(w io.Writer, img image.Image, format string) error {
	switch format {
	case "png":
		return png.Encode(w, img)
	case "jpeg", "jpg":
		return jpeg.Encode(w, img, &jpeg.Options{Quality: 90})
	case "bmp":
		return bmp.Encode(w, img)
	}
	return fmt.Errorf("%w: %q", ErrImageFormat, format)
}

// SaveFrame writes the current frame to filename. The format follows the
// extension (png, jpg, jpeg, bmp).
func (r *Reader) SaveFrame(filename string) error {
	if !r.valid() {
		return ErrInvalidSession
	}
	format, err := ImageFormat(filename)
	if err != nil {
		return err
	}
	img := r.Image()
	if img == nil {
		return errors.New("vidreader: no frame to save")
	}

	f, err := os.Create(filename)
	if err != nil {
		return err
	}
	if err := EncodeImage(f, img, format); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}
