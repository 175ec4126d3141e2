package matcher

import (
	"math"
	"strconv"
	"strings"

	"github.com/andresmejia3/facecam/internal/types"
)

const (
	// DefaultThreshold is the distance at or below which two dlib descriptors are the same person.
	DefaultThreshold = 0.6

	UnknownName       = "Unknown"
	UnknownConfidence = "???"
)

// Matcher labels faces against a fixed reference set.
type Matcher struct {
	refs      []types.Reference
	known     []types.Embedding
	threshold float64
}

// New builds a Matcher. The reference slice is copied so later changes by the caller are not observed.
func New(refs []types.Reference, threshold float64) *Matcher {
	m := &Matcher{
		refs:      make([]types.Reference, len(refs)),
		known:     make([]types.Embedding, len(refs)),
		threshold: threshold,
	}
	copy(m.refs, refs)
	for i, r := range refs {
		m.known[i] = r.Embedding
	}
	return m
}

// Len returns the number of references.
func (m *Matcher) Len() int {
	return len(m.refs)
}

// Match finds the nearest reference for a single query embedding.
//
// The nearest index and the threshold test are computed independently and the
// threshold test decides: a face whose nearest reference fails CompareFaces is
// reported as Unknown.
func (m *Matcher) Match(vec types.Embedding) types.Match {
	res := types.Match{
		Name:       UnknownName,
		Confidence: UnknownConfidence,
		Distance:   -1,
		Index:      -1,
	}
	if len(m.known) == 0 {
		return res
	}

	matches := CompareFaces(m.known, vec, m.threshold)
	distances := FaceDistance(m.known, vec)
	best := argmin(distances)

	res.Index = best
	res.Distance = distances[best]

	if matches[best] {
		res.Name = m.refs[best].Name
		res.Confidence = FaceConfidence(distances[best], m.threshold)
	}
	return res
}

// MatchAll labels every face, preserving input order.
func (m *Matcher) MatchAll(faces []types.FaceResult) []types.Match {
	out := make([]types.Match, 0, len(faces))
	for _, f := range faces {
		out = append(out, m.Match(f.Vec))
	}
	return out
}

// Annotate pairs each face box with its rendered label.
func (m *Matcher) Annotate(faces []types.FaceResult) []types.Annotation {
	matches := m.MatchAll(faces)
	out := make([]types.Annotation, len(faces))
	for i, f := range faces {
		out[i] = types.Annotation{Box: f.Loc, Label: matches[i].Label()}
	}
	return out
}

// FaceDistance returns the Euclidean distance between the query and every known embedding.
func FaceDistance(known []types.Embedding, vec types.Embedding) []float64 {
	out := make([]float64, len(known))
	for i := range known {
		out[i] = EuclideanDistance(known[i], vec)
	}
	return out
}

// CompareFaces reports, per known embedding, whether it is within tolerance of the query.
func CompareFaces(known []types.Embedding, vec types.Embedding, tolerance float64) []bool {
	distances := FaceDistance(known, vec)
	out := make([]bool, len(distances))
	for i, d := range distances {
		out[i] = d <= tolerance
	}
	return out
}

// EuclideanDistance is the L2 norm of a - b.
func EuclideanDistance(a, b types.Embedding) float64 {
	var sum float64
	for i := range a {
		d := float64(a[i]) - float64(b[i])
		sum += d * d
	}
	return math.Sqrt(sum)
}

// FaceConfidence maps a descriptor distance onto a percentage string.
// Below the threshold the linear score is boosted towards 100%.
func FaceConfidence(distance, threshold float64) string {
	rng := 1.0 - threshold
	linear := (1.0 - distance) / (rng * 2.0)

	if distance > threshold {
		return formatPercent(linear * 100)
	}
	// linear >= 0.5 here; clamp so rounding noise cannot push the base negative.
	base := math.Max((linear-0.5)*2, 0)
	value := (linear + (1.0-linear)*math.Pow(base, 0.2)) * 100
	return formatPercent(value)
}

// formatPercent rounds to two decimals and always keeps at least one, so 50 renders as "50.0%".
// A non-finite score renders as UnknownConfidence.
func formatPercent(v float64) string {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return UnknownConfidence
	}
	v = math.Round(v*100) / 100
	if v == 0 {
		v = 0 // normalise -0
	}
	s := strconv.FormatFloat(v, 'f', -1, 64)
	if !strings.Contains(s, ".") {
		s += ".0"
	}
	return s + "%"
}

// argmin returns the first index holding the smallest value.
func argmin(values []float64) int {
	best := 0
	for i := 1; i < len(values); i++ {
		if values[i] < values[best] {
			best = i
		}
	}
	return best
}
