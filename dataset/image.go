package dataset

import (
	"image"
	"path/filepath"

	"github.com/disintegration/imaging"
	"github.com/pkg/errors"
)

// Default crop applied to front camera frames before they reach the policy.
const (
	DefaultCropWidth  = 256
	DefaultCropHeight = 256
)

// LoadFrontImage opens the sample's front camera frame relative to root.
func LoadFrontImage(root string, s Sample) (image.Image, error) {
	img, err := imaging.Open(filepath.Join(root, s.FrontImage))
	if err != nil {
		return nil, errors.Wrapf(err, "failed to open front image %q", s.FrontImage)
	}
	return img, nil
}

// ScaleAndCrop shrinks img by scale and cuts out a cropW x cropH window around the center.
func ScaleAndCrop(img image.Image, scale float64, cropW, cropH int) (*image.NRGBA, error) {
	if scale <= 0 {
		return nil, errors.Errorf("scale must be positive, got %v", scale)
	}
	bounds := img.Bounds()
	width := int(float64(bounds.Dx()) / scale)
	height := int(float64(bounds.Dy()) / scale)
	if width < cropW || height < cropH {
		return nil, errors.Errorf("scaled image %dx%d is smaller than crop %dx%d", width, height, cropW, cropH)
	}

	resized := imaging.Resize(img, width, height, imaging.Linear)
	top := height/2 - cropH/2
	left := width/2 - cropW/2
	return imaging.Crop(resized, image.Rect(left, top, left+cropW, top+cropH)), nil
}
