package control

import (
	"context"
	"fmt"
	"image"
	"os"
	"path/filepath"

	"github.com/disintegration/imaging"
	"github.com/pkg/errors"
	"go.uber.org/atomic"

	"go.viam.com/e2edrive/components/vehicle"
	"go.viam.com/e2edrive/logging"
)

// Snapshots are downscaled to fit in this box.
const (
	snapshotWidth  = 320
	snapshotHeight = 240
)

// SnapshotSink writes debug camera frames to a directory as PNG files.
type SnapshotSink struct {
	dir string
}

// NewSnapshotSink creates dir if needed and returns a sink writing into it.
func NewSnapshotSink(dir string) (*SnapshotSink, error) {
	if err := os.MkdirAll(dir, 0o750); err != nil {
		return nil, errors.Wrapf(err, "failed to create snapshot directory %q", dir)
	}
	return &SnapshotSink{dir: dir}, nil
}

// Write stores img as frame number seq and returns the file path.
func (s *SnapshotSink) Write(seq int64, img image.Image) (string, error) {
	path := filepath.Join(s.dir, fmt.Sprintf("frame_%06d.png", seq))
	if err := imaging.Save(imaging.Fit(img, snapshotWidth, snapshotHeight, imaging.Lanczos), path); err != nil {
		return "", errors.Wrapf(err, "failed to save snapshot %q", path)
	}
	return path, nil
}

type cameraFrame struct {
	image *vehicle.CameraImage
	seq   int64
}

// debugCamera keeps the newest frame of the debug camera. Frames have no effect on control.
type debugCamera struct {
	logger   logging.Logger
	sink     *SnapshotSink
	received atomic.Int64
	frame    atomic.Pointer[cameraFrame]
	// flushed is the sequence number last written to sink; guarded by the controller's mutex.
	flushed int64
}

func newDebugCamera(snapshotDir string, logger logging.Logger) (*debugCamera, error) {
	cam := &debugCamera{logger: logger}
	if snapshotDir != "" {
		sink, err := NewSnapshotSink(snapshotDir)
		if err != nil {
			return nil, err
		}
		cam.sink = sink
	}
	return cam, nil
}

func (c *debugCamera) update(img *vehicle.CameraImage) {
	c.frame.Store(&cameraFrame{image: img, seq: c.received.Inc()})
}

func (c *debugCamera) latest() *vehicle.CameraImage {
	if f := c.frame.Load(); f != nil {
		return f.image
	}
	return nil
}

// flush writes the newest frame to the sink if it has not been written yet. Failures are logged.
func (c *debugCamera) flush(ctx context.Context) {
	f := c.frame.Load()
	if c.sink == nil || f == nil || f.seq == c.flushed {
		return
	}
	c.flushed = f.seq

	img, err := f.image.ToImage()
	if err != nil {
		c.logger.CWarnf(ctx, "dropping debug camera frame %d: %v", f.seq, err)
		return
	}
	path, err := c.sink.Write(f.seq, img)
	if err != nil {
		c.logger.CWarnf(ctx, "%v", err)
		return
	}
	c.logger.CDebugw(ctx, "wrote debug camera frame", "path", path)
}
