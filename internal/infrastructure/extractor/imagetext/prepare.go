package imagetext

import (
	"bytes"
	"image"
	"image/color"

	"github.com/disintegration/imaging"
)

const (
	// Longest edge sent to the vision service. Larger uploads are
	// downscaled before encoding to keep payloads bounded.
	maxEdge = 2048

	jpegQuality = 95
)

func decode(data []byte) (image.Image, error) {
	return imaging.Decode(bytes.NewReader(data), imaging.AutoOrientation(true))
}

// enhance flattens transparency onto a white background and bumps
// contrast and sharpness. OCR engines read low-contrast screenshots
// noticeably worse without this.
func enhance(img image.Image) image.Image {
	flat := flatten(img)
	flat = imaging.AdjustContrast(flat, 15)
	return imaging.Sharpen(flat, 0.8)
}

func flatten(img image.Image) *image.NRGBA {
	bounds := img.Bounds()
	background := imaging.New(bounds.Dx(), bounds.Dy(), color.White)
	return imaging.OverlayCenter(background, img, 1.0)
}

func downscale(img image.Image) image.Image {
	bounds := img.Bounds()
	if bounds.Dx() <= maxEdge && bounds.Dy() <= maxEdge {
		return img
	}
	if bounds.Dx() >= bounds.Dy() {
		return imaging.Resize(img, maxEdge, 0, imaging.Lanczos)
	}
	return imaging.Resize(img, 0, maxEdge, imaging.Lanczos)
}

func encodeJPEG(img image.Image) ([]byte, error) {
	var buf bytes.Buffer
	if err := imaging.Encode(&buf, img, imaging.JPEG, imaging.JPEGQuality(jpegQuality)); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
