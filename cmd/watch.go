package cmd

import (
	"context"
	"fmt"
	"os"
	"runtime"

	"github.com/andresmejia3/facecam/internal/capture"
	"github.com/andresmejia3/facecam/internal/config"
	"github.com/andresmejia3/facecam/internal/matcher"
	"github.com/andresmejia3/facecam/internal/reference"
	"github.com/andresmejia3/facecam/internal/types"
	"github.com/andresmejia3/facecam/internal/utils"
	"github.com/andresmejia3/facecam/internal/video"
	"github.com/andresmejia3/facecam/internal/worker"
	"gocv.io/x/gocv"
)

// loadReferences starts the recognizer and encodes the reference folder.
// The caller owns the returned worker and must Close it.
func loadReferences(ctx context.Context, cfg config.Config) (*worker.FaceWorker, []types.Reference, error) {
	fmt.Fprintln(os.Stderr, "🚀 Loading face models...")
	w, err := worker.NewFaceWorker(cfg.ModelsDir)
	if err != nil {
		return nil, nil, utils.Report("Failed to load face models", err)
	}

	refs, err := reference.NewEncoder(w, os.Stderr).EncodeDir(ctx, cfg.FacesDir)
	fmt.Fprintln(os.Stderr)
	if err != nil {
		w.Close()
		return nil, nil, utils.Report("Failed to encode reference faces", err)
	}
	return w, refs, nil
}

// runWatch is the live recognition loop: camera → detector → matcher → window.
func runWatch(ctx context.Context, cfg config.Config) error {
	// 1. Reference set
	w, refs, err := loadReferences(ctx, cfg)
	if err != nil {
		return err
	}
	defer w.Close()
	fmt.Fprintf(os.Stderr, "👥 Known faces: %v\n", reference.Names(refs))

	m := matcher.New(refs, cfg.Threshold)
	if m.Len() == 0 {
		fmt.Fprintf(os.Stderr, "⚠️  No reference images in %s. Every face will be Unknown.\n", cfg.FacesDir)
	}

	// 2. Camera
	backend, err := config.ResolveBackend(cfg.Backend, runtime.GOOS)
	if err != nil {
		return err
	}
	cam, err := video.OpenCamera(cfg.Camera, backend)
	if err != nil {
		return utils.Report("Video source not found...", err)
	}
	defer cam.Close()

	// 3. Pipeline
	det := video.NewDetector(w, cfg.Downscale)
	defer det.Close()
	win := video.NewWindow(cfg.WindowTitle, cfg.Downscale)
	defer win.Close()

	loop := &capture.Loop[*gocv.Mat]{
		Camera:   cam,
		Detector: det,
		Labeler:  m,
		Display:  win,
		Policy:   capture.FramePolicy{Every: cfg.ProcessEvery},
		QuitKey:  cfg.QuitKey[0],
	}

	fmt.Fprintf(os.Stderr, "🎥 Camera %d open (%s). Press '%s' in the window to quit.\n", cfg.Camera, backend, cfg.QuitKey)
	stats, err := loop.Run(ctx)
	if err != nil {
		return utils.Report("Recognition loop failed", err)
	}

	fmt.Fprintf(os.Stderr, "🏁 Stopped. Processed %d of %d frames, %d face detections.\n", stats.Processed, stats.Frames, stats.Faces)
	return nil
}
