package media

import (
	"bytes"
	"fmt"
	"image"

	"github.com/disintegration/imaging"
)

const (
	// DefaultSize is the square edge every stored image is constrained to.
	DefaultSize = 1080
	// JPEGQuality is the fixed re-encode quality.
	JPEGQuality = 80

	// maxSourcePixels bounds the declared source dimensions so a crafted
	// header cannot force a huge decode allocation.
	maxSourcePixels = 50_000_000
)

// Normalizer re-encodes uploaded images into a fixed web format and size.
type Normalizer struct {
	size    int
	quality int
}

// NewNormalizer constructs a normalizer with the given square edge length.
func NewNormalizer(size int) *Normalizer {
	if size <= 0 {
		size = DefaultSize
	}
	return &Normalizer{size: size, quality: JPEGQuality}
}

// Normalize decodes the input bytes, corrects stored orientation, fit-crops to
// a centered square and re-encodes as JPEG. Pure function of its input; no I/O.
func (n *Normalizer) Normalize(data []byte) ([]byte, error) {
	width, height, err := Bounds(data)
	if err != nil {
		return nil, err
	}
	if width <= 0 || height <= 0 || int64(width)*int64(height) > maxSourcePixels {
		return nil, fmt.Errorf("image dimensions %dx%d out of range", width, height)
	}

	img, err := imaging.Decode(bytes.NewReader(data), imaging.AutoOrientation(true))
	if err != nil {
		return nil, fmt.Errorf("decode image: %w", err)
	}

	img = imaging.Fill(img, n.size, n.size, imaging.Center, imaging.Lanczos)

	buf := &bytes.Buffer{}
	if err := imaging.Encode(buf, img, imaging.JPEG, imaging.JPEGQuality(n.quality)); err != nil {
		return nil, fmt.Errorf("encode image: %w", err)
	}
	return buf.Bytes(), nil
}

// Size returns the configured square edge length.
func (n *Normalizer) Size() int {
	return n.size
}

// Bounds decodes only the image configuration to report source dimensions.
func Bounds(data []byte) (width, height int, err error) {
	cfg, _, err := image.DecodeConfig(bytes.NewReader(data))
	if err != nil {
		return 0, 0, fmt.Errorf("decode image config: %w", err)
	}
	return cfg.Width, cfg.Height, nil
}
