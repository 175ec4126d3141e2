package types

import (
	"fmt"
	"image"
)

// EmbeddingDim is the length of a dlib face descriptor.
const EmbeddingDim = 128

// Embedding is the 128-d face descriptor produced by the recognition model.
type Embedding [EmbeddingDim]float32

// Box is a face location as [top, right, bottom, left].
type Box struct {
	Top    int `json:"top"`
	Right  int `json:"right"`
	Bottom int `json:"bottom"`
	Left   int `json:"left"`
}

// BoxFromRect converts an image.Rectangle (Min = top-left) into a Box.
func BoxFromRect(r image.Rectangle) Box {
	return Box{Top: r.Min.Y, Right: r.Max.X, Bottom: r.Max.Y, Left: r.Min.X}
}

// Scale multiplies every edge by k. Used to map boxes found on a downscaled
// frame back onto the full resolution frame.
func (b Box) Scale(k int) Box {
	return Box{Top: b.Top * k, Right: b.Right * k, Bottom: b.Bottom * k, Left: b.Left * k}
}

// Rect returns the box as an image.Rectangle.
func (b Box) Rect() image.Rectangle {
	return image.Rect(b.Left, b.Top, b.Right, b.Bottom)
}

// LabelStrip is the filled band along the bottom edge of the box that holds the label text.
func (b Box) LabelStrip(height int) image.Rectangle {
	return image.Rect(b.Left, b.Bottom-height, b.Right, b.Bottom)
}

// TextOrigin is the baseline origin of the label text inside the strip.
func (b Box) TextOrigin() image.Point {
	return image.Pt(b.Left+6, b.Bottom-6)
}

// Area returns the pixel area of the box.
func (b Box) Area() int {
	return (b.Bottom - b.Top) * (b.Right - b.Left)
}

// Reference is a known identity loaded from the reference folder.
type Reference struct {
	Name      string
	Embedding Embedding
}

// FaceResult is a single face found in a frame.
type FaceResult struct {
	Loc Box       `json:"loc"`
	Vec Embedding `json:"vec"`
}

// Match is the outcome of comparing one face against the reference set.
type Match struct {
	Name       string
	Confidence string
	Distance   float64 // Distance to the nearest reference, or -1 when the set is empty
	Index      int     // Index of the nearest reference, or -1
}

// Label renders the match the way it is drawn on screen, e.g. "alice.jpg (97.89%)".
func (m Match) Label() string {
	return fmt.Sprintf("%s (%s)", m.Name, m.Confidence)
}

// Annotation pairs a box with the text drawn under it.
type Annotation struct {
	Box   Box
	Label string
}
