package rimage

import (
	"image"
	"image/color"
)

// MarkingThreshold is the channel value a markings pixel must exceed to be drawn.
const MarkingThreshold = 1

// minCoverage is the smallest alpha an anti-aliased markings pixel needs to count as part
// of its mark, i.e. the shape covers at least half the pixel.
const minCoverage = 128

// Composite returns a copy of base with markings laid over it. A markings pixel covered by
// its mark with any color channel above threshold replaces the base pixel outright with the
// mark's own color; every other pixel leaves the base visible. Overlapping marks never
// blend and anti-aliased edges never darken the frame.
func Composite(base image.Image, markings *image.RGBA, threshold uint8) *image.RGBA {
	out := CloneToRGBA(base)
	area := out.Bounds().Intersect(markings.Bounds())
	for y := area.Min.Y; y < area.Max.Y; y++ {
		for x := area.Min.X; x < area.Max.X; x++ {
			m := markings.RGBAAt(x, y)
			if m.A < minCoverage {
				continue
			}
			c, _ := color.NRGBAModel.Convert(m).(color.NRGBA)
			if c.R > threshold || c.G > threshold || c.B > threshold {
				out.SetRGBA(x, y, color.RGBA{R: c.R, G: c.G, B: c.B, A: 255})
			}
		}
	}
	return out
}
