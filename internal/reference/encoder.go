package reference

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"path/filepath"

	"github.com/andresmejia3/facecam/internal/types"
	"github.com/andresmejia3/facecam/internal/utils"
	"github.com/disintegration/imaging"
	"github.com/schollz/progressbar/v3"

	// Extra decoders on top of the jpeg/png/gif/bmp/tiff set imaging registers
	_ "golang.org/x/image/webp"
)

// ErrNoFaceFound is returned when a reference image contains no detectable face.
var ErrNoFaceFound = errors.New("no face found in reference image")

// FaceProcessor detects faces in JPEG bytes. worker.FaceWorker satisfies it.
type FaceProcessor interface {
	ProcessFrame(jpeg []byte) ([]types.FaceResult, error)
}

// Encoder computes one reference embedding per image.
type Encoder struct {
	proc     FaceProcessor
	progress io.Writer
}

// NewEncoder returns an Encoder. Progress is drawn on progress; nil disables it.
func NewEncoder(proc FaceProcessor, progress io.Writer) *Encoder {
	if progress == nil {
		progress = io.Discard
	}
	return &Encoder{proc: proc, progress: progress}
}

// EncodeDir encodes every image in dir, in filename order. The reference name is the filename.
// The first image without a face aborts the whole run.
func (e *Encoder) EncodeDir(ctx context.Context, dir string) ([]types.Reference, error) {
	files, err := utils.ListImageFiles(dir)
	if err != nil {
		return nil, fmt.Errorf("failed to read reference directory: %w", err)
	}

	bar := progressbar.NewOptions(len(files),
		progressbar.OptionSetDescription("🧬 Encoding reference faces"),
		progressbar.OptionSetWriter(e.progress),
		progressbar.OptionShowCount(),
	)
	defer bar.Finish()

	refs := make([]types.Reference, 0, len(files))
	for _, name := range files {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		vec, err := e.EncodeFile(filepath.Join(dir, name))
		if err != nil {
			return nil, fmt.Errorf("%s: %w", name, err)
		}
		refs = append(refs, types.Reference{Name: name, Embedding: vec})
		bar.Add(1)
	}
	return refs, nil
}

// EncodeFile returns the embedding of the first face detected in the image at path.
func (e *Encoder) EncodeFile(path string) (types.Embedding, error) {
	data, err := LoadJPEG(path)
	if err != nil {
		return types.Embedding{}, err
	}

	faces, err := e.proc.ProcessFrame(data)
	if err != nil {
		return types.Embedding{}, err
	}
	if len(faces) == 0 {
		return types.Embedding{}, ErrNoFaceFound
	}
	return faces[0].Vec, nil
}

// LoadJPEG decodes any supported image format, applies its EXIF orientation
// and re-encodes it as JPEG, the only format the recognizer accepts.
func LoadJPEG(path string) ([]byte, error) {
	img, err := imaging.Open(path, imaging.AutoOrientation(true))
	if err != nil {
		return nil, fmt.Errorf("failed to load image: %w", err)
	}

	var buf bytes.Buffer
	if err := imaging.Encode(&buf, img, imaging.JPEG, imaging.JPEGQuality(95)); err != nil {
		return nil, fmt.Errorf("failed to encode image: %w", err)
	}
	return buf.Bytes(), nil
}

// Names returns the reference names in order.
func Names(refs []types.Reference) []string {
	names := make([]string, len(refs))
	for i, r := range refs {
		names[i] = r.Name
	}
	return names
}
