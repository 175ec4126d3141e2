package video

import (
	"errors"
	"fmt"

	"gocv.io/x/gocv"
)

// ErrCameraUnavailable is returned when the capture device cannot be opened.
var ErrCameraUnavailable = errors.New("video source not found")

var backends = map[string]gocv.VideoCaptureAPI{
	"any":          gocv.VideoCaptureAny,
	"dshow":        gocv.VideoCaptureDshow,
	"v4l2":         gocv.VideoCaptureV4L2,
	"avfoundation": gocv.VideoCaptureAVFoundation,
	"msmf":         gocv.VideoCaptureMSMF,
}

// Camera owns a capture device and the Mat frames are read into.
type Camera struct {
	vc    *gocv.VideoCapture
	frame gocv.Mat
}

// OpenCamera opens device index with the named capture backend (see config.ResolveBackend).
func OpenCamera(index int, backend string) (*Camera, error) {
	api, ok := backends[backend]
	if !ok {
		return nil, fmt.Errorf("unknown capture backend %q", backend)
	}

	vc, err := gocv.VideoCaptureDeviceWithAPI(index, api)
	if err != nil {
		return nil, fmt.Errorf("%w: device %d: %v", ErrCameraUnavailable, index, err)
	}
	if !vc.IsOpened() {
		vc.Close()
		return nil, fmt.Errorf("%w: device %d (%s)", ErrCameraUnavailable, index, backend)
	}
	return &Camera{vc: vc, frame: gocv.NewMat()}, nil
}

// Read grabs the next frame. The returned Mat is reused by the next call.
func (c *Camera) Read() (*gocv.Mat, bool) {
	if ok := c.vc.Read(&c.frame); !ok || c.frame.Empty() {
		return nil, false
	}
	return &c.frame, true
}

// Close releases the device. Safe to call more than once.
func (c *Camera) Close() error {
	if c.vc == nil {
		return nil
	}
	err := c.vc.Close()
	c.frame.Close()
	c.vc = nil
	return err
}
