package worker

import (
	"fmt"

	"github.com/Kagami/go-face"
	"github.com/andresmejia3/facecam/internal/types"
	"github.com/andresmejia3/facecam/internal/utils"
)

// FaceWorker owns the dlib models and turns JPEG bytes into face results.
// A dlib recognizer is not safe for concurrent use; callers hold one per goroutine.
type FaceWorker struct {
	rec *face.Recognizer
}

// NewFaceWorker loads the recognizer from modelsDir.
func NewFaceWorker(modelsDir string) (*FaceWorker, error) {
	// 1. Fail early with a readable message if models are missing
	if err := utils.CheckModelDir(modelsDir); err != nil {
		return nil, err
	}

	// 2. Load dlib (this is the slow part)
	rec, err := face.NewRecognizer(modelsDir)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize recognizer: %w", err)
	}
	return &FaceWorker{rec: rec}, nil
}

// ProcessFrame detects every face in a JPEG image and computes its descriptor.
// A frame without faces yields an empty slice, not an error.
func (w *FaceWorker) ProcessFrame(jpeg []byte) ([]types.FaceResult, error) {
	faces, err := w.rec.Recognize(jpeg)
	if err != nil {
		return nil, fmt.Errorf("face recognition failed: %w", err)
	}
	return toResults(faces), nil
}

// Close frees the native models.
func (w *FaceWorker) Close() {
	if w.rec != nil {
		w.rec.Close()
		w.rec = nil
	}
}

func toResults(faces []face.Face) []types.FaceResult {
	out := make([]types.FaceResult, len(faces))
	for i, f := range faces {
		out[i] = types.FaceResult{
			Loc: types.BoxFromRect(f.Rectangle),
			Vec: types.Embedding(f.Descriptor),
		}
	}
	return out
}
