package video

import (
	"fmt"
	"image"

	"github.com/andresmejia3/facecam/internal/types"
	"gocv.io/x/gocv"
)

// FaceProcessor detects faces in JPEG bytes. worker.FaceWorker satisfies it.
type FaceProcessor interface {
	ProcessFrame(jpeg []byte) ([]types.FaceResult, error)
}

// Detector shrinks frames by 1/Downscale and hands them to the recognizer.
// Boxes it returns are in the shrunken coordinate space.
type Detector struct {
	proc      FaceProcessor
	downscale int
	small     gocv.Mat
}

// NewDetector returns a Detector. Call Close to free its scratch Mat.
func NewDetector(proc FaceProcessor, downscale int) *Detector {
	if downscale < 1 {
		downscale = 1
	}
	return &Detector{proc: proc, downscale: downscale, small: gocv.NewMat()}
}

// Detect runs face detection on a downscaled copy of frame.
func (d *Detector) Detect(frame *gocv.Mat) ([]types.FaceResult, error) {
	src := *frame
	if d.downscale > 1 {
		f := 1.0 / float64(d.downscale)
		gocv.Resize(*frame, &d.small, image.Point{}, f, f, gocv.InterpolationLinear)
		src = d.small
	}

	// go-face only accepts encoded JPEG; encoding from BGR also takes care of channel order
	buf, err := gocv.IMEncode(gocv.JPEGFileExt, src)
	if err != nil {
		return nil, fmt.Errorf("failed to encode frame: %w", err)
	}
	defer buf.Close()

	return d.proc.ProcessFrame(buf.GetBytes())
}

// Close frees the scratch Mat.
func (d *Detector) Close() error {
	return d.small.Close()
}
