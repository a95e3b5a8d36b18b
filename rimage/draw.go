package rimage

import (
	"image"
	"image/color"

	"github.com/fogleman/gg"
	"github.com/golang/freetype/truetype"
	"github.com/golang/geo/r2"
	"golang.org/x/image/font/gofont/goregular"
)

var font *truetype.Font

// init sets up the fonts we want to use.
func init() {
	var err error
	font, err = truetype.Parse(goregular.TTF)
	if err != nil {
		panic(err)
	}
}

// Font returns the font we use for drawing.
func Font() *truetype.Font {
	return font
}

// DrawString writes a string to the given context at a particular point.
func DrawString(dc *gg.Context, text string, p image.Point, c color.Color, size float64) {
	dc.SetFontFace(truetype.NewFace(Font(), &truetype.Options{Size: size}))
	dc.SetColor(c)
	dc.DrawString(text, float64(p.X), float64(p.Y))
}

// DrawLine strokes the segment from a to b.
func DrawLine(dc *gg.Context, a, b r2.Point, c color.Color, width float64) {
	dc.SetColor(c)
	dc.SetLineWidth(width)
	dc.DrawLine(a.X, a.Y, b.X, b.Y)
	dc.Stroke()
}

// DrawFilledCircle fills a disc of the given radius around center.
func DrawFilledCircle(dc *gg.Context, center r2.Point, radius float64, c color.Color) {
	dc.SetColor(c)
	dc.DrawCircle(center.X, center.Y, radius)
	dc.Fill()
}
