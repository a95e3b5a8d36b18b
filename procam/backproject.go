package procam

import (
	"image/color"

	"github.com/fogleman/gg"
	"github.com/golang/geo/r2"
	"github.com/golang/geo/r3"
	"github.com/samber/lo"

	"github.com/EDM-Research/ProcamCalib/rimage"
	"github.com/EDM-Research/ProcamCalib/rimage/transform"
)

const (
	// PolylineSamples is how many points a clipped sight line is resampled into.
	PolylineSamples = 2001
	// LineWidth is the stroke width of drawn pattern line segments.
	LineWidth = 2.0
	// boundsSlack absorbs rounding on samples computed to lie exactly on an image edge.
	boundsSlack = 1e-6
)

// ProjectedSample is a polyline point mapped into projector pixels. OK is false when the
// point could not be projected, for example because it sits behind the projector.
type ProjectedSample struct {
	Pixel r2.Point
	OK    bool
}

// Segment joins two consecutive projected samples.
type Segment struct {
	A, B r2.Point
}

// BackProjector maps projector space points to projector pixels with the projector's
// lens distortion applied.
type BackProjector struct {
	model  *transform.PinholeCameraModel
	bounds r2.Rect
}

// NewBackProjector returns a BackProjector whose drawable area is [0,width]x[0,height].
func NewBackProjector(model *transform.PinholeCameraModel, width, height int) *BackProjector {
	return &BackProjector{
		model:  model,
		bounds: r2.RectFromPoints(r2.Point{}, r2.Point{X: float64(width), Y: float64(height)}),
	}
}

// Bounds returns the drawable projector image area.
func (bp *BackProjector) Bounds() r2.Rect {
	return bp.bounds
}

// Project maps every point of pl to a projector pixel, in order.
func (bp *BackProjector) Project(pl Polyline) []ProjectedSample {
	return lo.Map(pl, func(pt r3.Vector, _ int) ProjectedSample {
		px, err := bp.model.ProjectPoint(pt)
		if err != nil {
			return ProjectedSample{}
		}
		return ProjectedSample{Pixel: px, OK: true}
	})
}

// VisibleSegments returns the segments between consecutive samples whose endpoints both
// project inside the closed rectangle bounds, widened by boundsSlack (1e-6 px) so samples
// computed to lie exactly on an edge survive rounding. Segments that only partly leave the
// image are dropped rather than clipped.
func VisibleSegments(samples []ProjectedSample, bounds r2.Rect) []Segment {
	inside := bounds.ExpandedByMargin(boundsSlack)
	visible := func(s ProjectedSample) bool {
		return s.OK && inside.ContainsPoint(s.Pixel)
	}
	var segments []Segment
	for i := 0; i+1 < len(samples); i++ {
		a, b := samples[i], samples[i+1]
		if visible(a) && visible(b) {
			segments = append(segments, Segment{A: a.Pixel, B: b.Pixel})
		}
	}
	return segments
}

// Render strokes segments onto dc in c.
func (bp *BackProjector) Render(dc *gg.Context, segments []Segment, c color.Color) {
	for _, seg := range segments {
		rimage.DrawLine(dc, seg.A, seg.B, c, LineWidth)
	}
}
