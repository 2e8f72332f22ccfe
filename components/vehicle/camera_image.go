package vehicle

import (
	"image"

	"github.com/pkg/errors"
)

// CameraImage is a raw frame in BGRA byte order, as delivered by simulator cameras.
type CameraImage struct {
	Width  int
	Height int
	Raw    []byte
}

// Kind returns SensorKindCamera.
func (c *CameraImage) Kind() SensorKind {
	return SensorKindCamera
}

// ToImage converts the frame into an NRGBA image.
func (c *CameraImage) ToImage() (*image.NRGBA, error) {
	if c.Width <= 0 || c.Height <= 0 {
		return nil, errors.Errorf("invalid camera frame size %dx%d", c.Width, c.Height)
	}
	if expected := c.Width * c.Height * 4; len(c.Raw) != expected {
		return nil, errors.Errorf("camera frame has %d bytes, expected %d", len(c.Raw), expected)
	}

	img := image.NewNRGBA(image.Rect(0, 0, c.Width, c.Height))
	for i := 0; i < len(c.Raw); i += 4 {
		img.Pix[i] = c.Raw[i+2]
		img.Pix[i+1] = c.Raw[i+1]
		img.Pix[i+2] = c.Raw[i]
		img.Pix[i+3] = c.Raw[i+3]
	}
	return img, nil
}
