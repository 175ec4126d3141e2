package capture

import (
	"context"
	"fmt"

	"github.com/andresmejia3/facecam/internal/types"
)

// Camera yields frames. Read returns false when no frame could be grabbed.
type Camera[F any] interface {
	Read() (F, bool)
	Close() error
}

// Detector finds faces in a frame. Boxes are in the detector's own (downscaled) coordinates.
type Detector[F any] interface {
	Detect(frame F) ([]types.FaceResult, error)
}

// Labeler turns detections into drawable annotations. matcher.Matcher satisfies it.
type Labeler interface {
	Annotate(faces []types.FaceResult) []types.Annotation
}

// Display draws annotations onto a frame, shows it, and reports key presses.
type Display[F any] interface {
	Render(frame F, annotations []types.Annotation)
	WaitKey(delayMs int) int
	Close() error
}

// FramePolicy decides which frames run detection.
type FramePolicy struct {
	Every int // Process every Nth successfully read frame, starting with the first
}

// ShouldProcess reports whether the frame at index (0-based) runs detection.
func (p FramePolicy) ShouldProcess(index int) bool {
	if p.Every <= 1 {
		return true
	}
	return index%p.Every == 0
}

// Stats summarises a finished run.
type Stats struct {
	Frames     int // Frames read successfully
	Processed  int // Frames that ran detection
	Faces      int // Total faces detected across processed frames
	ReadMisses int // Failed reads
}

// Loop is the single-threaded capture → detect → label → render cycle.
type Loop[F any] struct {
	Camera   Camera[F]
	Detector Detector[F]
	Labeler  Labeler
	Display  Display[F]
	Policy   FramePolicy
	QuitKey  byte
}

// Run blocks until the quit key is pressed, ctx is cancelled, or detection fails.
// The camera and display are closed on every exit path.
func (l *Loop[F]) Run(ctx context.Context) (stats Stats, err error) {
	defer func() {
		if cerr := l.Display.Close(); cerr != nil && err == nil {
			err = fmt.Errorf("failed to close display: %w", cerr)
		}
	}()
	defer func() {
		if cerr := l.Camera.Close(); cerr != nil && err == nil {
			err = fmt.Errorf("failed to release camera: %w", cerr)
		}
	}()

	// Reused for skipped frames
	var annotations []types.Annotation

	for {
		if ctx.Err() != nil {
			return stats, nil
		}

		frame, ok := l.Camera.Read()
		if ok {
			if l.Policy.ShouldProcess(stats.Frames) {
				faces, err := l.Detector.Detect(frame)
				if err != nil {
					return stats, fmt.Errorf("detection failed on frame %d: %w", stats.Frames, err)
				}
				annotations = l.Labeler.Annotate(faces)
				stats.Processed++
				stats.Faces += len(faces)
			}
			stats.Frames++
			l.Display.Render(frame, annotations)
		} else {
			stats.ReadMisses++
		}

		if key := l.Display.WaitKey(1); key >= 0 && byte(key&0xFF) == l.QuitKey {
			return stats, nil
		}
	}
}
