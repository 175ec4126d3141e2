package video

import (
	"fmt"
	"image/color"

	"github.com/andresmejia3/facecam/internal/types"
	"gocv.io/x/gocv"
)

const labelStripHeight = 35

var (
	boxColor  = color.RGBA{R: 255, A: 255}
	textColor = color.RGBA{R: 255, G: 255, B: 255, A: 255}
)

// Window shows annotated frames. Boxes are scaled by Scale before drawing.
type Window struct {
	win   *gocv.Window
	scale int
}

// NewWindow opens a display window titled title.
func NewWindow(title string, scale int) *Window {
	if scale < 1 {
		scale = 1
	}
	return &Window{win: gocv.NewWindow(title), scale: scale}
}

// Render draws the annotations and shows the frame.
func (w *Window) Render(frame *gocv.Mat, annotations []types.Annotation) {
	Draw(frame, annotations, w.scale)
	w.win.IMShow(*frame)
}

// WaitKey polls the keyboard for delayMs milliseconds. -1 means no key.
func (w *Window) WaitKey(delayMs int) int {
	return w.win.WaitKey(delayMs)
}

// Close destroys the window. Safe to call more than once.
func (w *Window) Close() error {
	if w.win == nil {
		return nil
	}
	err := w.win.Close()
	w.win = nil
	return err
}

// Draw paints a box, a filled label strip and the label text for every annotation.
func Draw(img *gocv.Mat, annotations []types.Annotation, scale int) {
	for _, a := range annotations {
		box := a.Box.Scale(scale)

		gocv.Rectangle(img, box.Rect(), boxColor, 2)
		gocv.Rectangle(img, box.LabelStrip(labelStripHeight), boxColor, -1)
		gocv.PutText(img, a.Label, box.TextOrigin(), gocv.FontHersheyDuplex, 0.8, textColor, 1)
	}
}

// AnnotateFile draws annotations onto the image at in and writes the result to out.
func AnnotateFile(in, out string, annotations []types.Annotation) error {
	img := gocv.IMRead(in, gocv.IMReadColor)
	if img.Empty() {
		return fmt.Errorf("failed to read image %s", in)
	}
	defer img.Close()

	Draw(&img, annotations, 1)
	if ok := gocv.IMWrite(out, img); !ok {
		return fmt.Errorf("failed to write image %s", out)
	}
	return nil
}
