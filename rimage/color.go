package rimage

import (
	"image/color"
	"math/rand"

	"github.com/lucasb-eyer/go-colorful"
)

// NewMarkingColor draws a random, bright, fully opaque color. At least one channel is
// always well above zero, so the mark survives a threshold composite.
func NewMarkingColor(rng *rand.Rand) color.RGBA {
	c := colorful.Hsv(rng.Float64()*360, 0.6+0.4*rng.Float64(), 0.8+0.2*rng.Float64())
	r, g, b := c.Clamped().RGB255()
	return color.RGBA{R: r, G: g, B: b, A: 255}
}
