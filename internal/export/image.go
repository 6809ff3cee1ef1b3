package export

import (
	"bytes"
	"fmt"
	"image"
	"image/png"

	// Upload formats beyond the stdlib decoders.
	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/tiff"
	_ "golang.org/x/image/webp"

	_ "image/gif"
	_ "image/jpeg"
)

// encodePNG decodes any supported upload format and re-encodes it as PNG,
// returning the pixel dimensions for display scaling.
func encodePNG(data []byte) ([]byte, int, int, error) {
	img, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, 0, 0, fmt.Errorf("decode image: %w", err)
	}
	bounds := img.Bounds()
	w, h := bounds.Dx(), bounds.Dy()
	if w <= 0 || h <= 0 {
		return nil, 0, 0, fmt.Errorf("empty image: %dx%d", w, h)
	}
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		return nil, 0, 0, fmt.Errorf("encode PNG: %w", err)
	}
	return buf.Bytes(), w, h, nil
}
