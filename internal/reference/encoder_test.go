package reference

import (
	"bytes"
	"context"
	"errors"
	"image"
	"image/color"
	"image/jpeg"
	"image/png"
	"os"
	"path/filepath"
	"testing"

	"github.com/andresmejia3/facecam/internal/matcher"
	"github.com/andresmejia3/facecam/internal/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// colorProcessor pretends a solid image is a face whose embedding is taken from
// the dominant channel at the centre pixel. A white image has no face.
type colorProcessor struct {
	calls int
	err   error
}

func (p *colorProcessor) ProcessFrame(data []byte) ([]types.FaceResult, error) {
	p.calls++
	if p.err != nil {
		return nil, p.err
	}

	img, err := jpeg.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, err
	}
	b := img.Bounds()
	r, g, bl, _ := img.At(b.Dx()/2, b.Dy()/2).RGBA()

	var vec types.Embedding
	switch {
	case r > 0xC000 && g > 0xC000 && bl > 0xC000:
		return nil, nil
	case r > g && r > bl:
		vec[0] = 1
	case g > r && g > bl:
		vec[1] = 1
	default:
		vec[2] = 1
	}
	return []types.FaceResult{
		{Loc: types.Box{Top: 0, Right: b.Dx(), Bottom: b.Dy(), Left: 0}, Vec: vec},
		{Vec: types.Embedding{127: 1}}, // second face must be ignored
	}, nil
}

func writeSolid(t *testing.T, path string, c color.Color) {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, 32, 32))
	for y := 0; y < 32; y++ {
		for x := 0; x < 32; x++ {
			img.Set(x, y, c)
		}
	}

	f, err := os.Create(path)
	require.NoError(t, err)
	defer f.Close()

	if filepath.Ext(path) == ".png" {
		require.NoError(t, png.Encode(f, img))
		return
	}
	require.NoError(t, jpeg.Encode(f, img, &jpeg.Options{Quality: 100}))
}

var (
	red   = color.RGBA{R: 255, A: 255}
	green = color.RGBA{G: 255, A: 255}
	blue  = color.RGBA{B: 255, A: 255}
	white = color.RGBA{R: 255, G: 255, B: 255, A: 255}
)

func TestEncodeDir(t *testing.T) {
	dir := t.TempDir()
	writeSolid(t, filepath.Join(dir, "carol.png"), blue)
	writeSolid(t, filepath.Join(dir, "alice.jpg"), red)
	writeSolid(t, filepath.Join(dir, "bob.png"), green)
	require.NoError(t, os.WriteFile(filepath.Join(dir, ".gitkeep"), nil, 0644))

	proc := &colorProcessor{}
	var progress bytes.Buffer
	refs, err := NewEncoder(proc, &progress).EncodeDir(context.Background(), dir)
	require.NoError(t, err)

	// One pair per image, filename order, first face only
	require.Len(t, refs, 3)
	assert.Equal(t, []string{"alice.jpg", "bob.png", "carol.png"}, Names(refs))
	assert.Equal(t, float32(1), refs[0].Embedding[0])
	assert.Equal(t, float32(1), refs[1].Embedding[1])
	assert.Equal(t, float32(1), refs[2].Embedding[2])
	for _, r := range refs {
		assert.Zero(t, r.Embedding[127])
	}
	assert.Equal(t, 3, proc.calls)
	assert.NotEmpty(t, progress.String())
}

func TestEncodeDir_NoFace(t *testing.T) {
	dir := t.TempDir()
	writeSolid(t, filepath.Join(dir, "alice.jpg"), red)
	writeSolid(t, filepath.Join(dir, "empty.png"), white)

	_, err := NewEncoder(&colorProcessor{}, nil).EncodeDir(context.Background(), dir)
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrNoFaceFound))
	assert.Contains(t, err.Error(), "empty.png")
}

func TestEncodeDir_Errors(t *testing.T) {
	t.Run("Missing directory", func(t *testing.T) {
		_, err := NewEncoder(&colorProcessor{}, nil).EncodeDir(context.Background(), filepath.Join(t.TempDir(), "faces"))
		assert.Error(t, err)
	})

	t.Run("Not an image", func(t *testing.T) {
		dir := t.TempDir()
		require.NoError(t, os.WriteFile(filepath.Join(dir, "notes.txt"), []byte("hello"), 0644))
		_, err := NewEncoder(&colorProcessor{}, nil).EncodeDir(context.Background(), dir)
		assert.ErrorContains(t, err, "notes.txt")
	})

	t.Run("Processor failure", func(t *testing.T) {
		dir := t.TempDir()
		writeSolid(t, filepath.Join(dir, "alice.jpg"), red)
		boom := errors.New("dlib exploded")
		_, err := NewEncoder(&colorProcessor{err: boom}, nil).EncodeDir(context.Background(), dir)
		assert.ErrorIs(t, err, boom)
	})

	t.Run("Cancelled context", func(t *testing.T) {
		dir := t.TempDir()
		writeSolid(t, filepath.Join(dir, "alice.jpg"), red)
		ctx, cancel := context.WithCancel(context.Background())
		cancel()

		proc := &colorProcessor{}
		_, err := NewEncoder(proc, nil).EncodeDir(ctx, dir)
		assert.ErrorIs(t, err, context.Canceled)
		assert.Zero(t, proc.calls)
	})
}

func TestEncodeDir_Empty(t *testing.T) {
	refs, err := NewEncoder(&colorProcessor{}, nil).EncodeDir(context.Background(), t.TempDir())
	require.NoError(t, err)
	assert.Empty(t, refs)
}

func TestLoadJPEG(t *testing.T) {
	path := filepath.Join(t.TempDir(), "face.png")
	writeSolid(t, path, green)

	data, err := LoadJPEG(path)
	require.NoError(t, err)

	img, err := jpeg.Decode(bytes.NewReader(data))
	require.NoError(t, err, "PNG input must come out as JPEG")
	assert.Equal(t, image.Rect(0, 0, 32, 32), img.Bounds())
}

func TestEncodeAndMatch(t *testing.T) {
	dir := t.TempDir()
	writeSolid(t, filepath.Join(dir, "alice.jpg"), red)
	writeSolid(t, filepath.Join(dir, "bob.jpg"), green)

	proc := &colorProcessor{}
	refs, err := NewEncoder(proc, nil).EncodeDir(context.Background(), dir)
	require.NoError(t, err)

	// A query frame showing "alice"
	query := filepath.Join(t.TempDir(), "frame.png")
	writeSolid(t, query, red)
	data, err := LoadJPEG(query)
	require.NoError(t, err)
	faces, err := proc.ProcessFrame(data)
	require.NoError(t, err)

	got := matcher.New(refs, matcher.DefaultThreshold).Annotate(faces[:1])
	require.Len(t, got, 1)
	assert.Equal(t, "alice.jpg (97.89%)", got[0].Label)
}
