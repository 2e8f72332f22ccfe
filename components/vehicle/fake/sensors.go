package fake

import (
	"math"

	"github.com/go-viper/mapstructure/v2"
	"github.com/pkg/errors"

	"go.viam.com/e2edrive/components/vehicle"
)

const (
	defaultObstacleDistance = 5.0
	defaultImageWidth       = 320
	defaultImageHeight      = 240
)

// ObstacleAttributes configure a fake obstacle sensor. It reports the nearest actor ahead whose
// lateral offset is within HitRadius and whose distance is within Distance.
type ObstacleAttributes struct {
	Distance     float64 `mapstructure:"distance"`
	HitRadius    float64 `mapstructure:"hit_radius"`
	OnlyDynamics bool    `mapstructure:"only_dynamics"`
}

// CameraAttributes configure a fake camera.
type CameraAttributes struct {
	ImageSizeX int `mapstructure:"image_size_x"`
	ImageSizeY int `mapstructure:"image_size_y"`
}

type sensor struct {
	kind     vehicle.SensorKind
	obstacle ObstacleAttributes
	camera   CameraAttributes
	onEvent  func(vehicle.SensorEvent)
}

func decodeAttributes(attrs map[string]interface{}, out interface{}) error {
	decoder, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		WeaklyTypedInput: true,
		Result:           out,
	})
	if err != nil {
		return err
	}
	return decoder.Decode(attrs)
}

func newSensor(cfg vehicle.SensorConfig, onEvent func(vehicle.SensorEvent)) (*sensor, error) {
	if onEvent == nil {
		return nil, errors.New("sensor needs an event callback")
	}
	s := &sensor{kind: cfg.Kind, onEvent: onEvent}
	switch cfg.Kind {
	case vehicle.SensorKindObstacle:
		s.obstacle = ObstacleAttributes{Distance: defaultObstacleDistance, HitRadius: 0.5, OnlyDynamics: false}
		if err := decodeAttributes(cfg.Attributes, &s.obstacle); err != nil {
			return nil, errors.Wrap(err, "invalid obstacle sensor attributes")
		}
		if s.obstacle.Distance <= 0 || math.IsNaN(s.obstacle.Distance) {
			return nil, errors.Errorf("obstacle sensor distance must be positive, got %v", s.obstacle.Distance)
		}
	case vehicle.SensorKindCamera:
		s.camera = CameraAttributes{ImageSizeX: defaultImageWidth, ImageSizeY: defaultImageHeight}
		if err := decodeAttributes(cfg.Attributes, &s.camera); err != nil {
			return nil, errors.Wrap(err, "invalid camera attributes")
		}
		if s.camera.ImageSizeX <= 0 || s.camera.ImageSizeY <= 0 {
			return nil, errors.Errorf("invalid camera size %dx%d", s.camera.ImageSizeX, s.camera.ImageSizeY)
		}
	default:
		return nil, errors.Errorf("unsupported sensor kind %q", cfg.Kind)
	}
	return s, nil
}

// frame synthesizes a BGRA frame whose color shifts with the vehicle heading.
func (s *sensor) frame(yaw float64) *vehicle.CameraImage {
	w, h := s.camera.ImageSizeX, s.camera.ImageSizeY
	raw := make([]byte, w*h*4)
	shade := byte(int(math.Abs(math.Mod(yaw*180/math.Pi, 360))) % 256)
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			i := (y*w + x) * 4
			raw[i] = shade
			raw[i+1] = byte(y * 255 / h)
			raw[i+2] = byte(x * 255 / w)
			raw[i+3] = 255
		}
	}
	return &vehicle.CameraImage{Width: w, Height: h, Raw: raw}
}
