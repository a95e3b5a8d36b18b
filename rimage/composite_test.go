package rimage

import (
	"image"
	"image/color"
	"testing"

	"github.com/fogleman/gg"
	"github.com/golang/geo/r2"
	"go.viam.com/test"
)

func TestComposite(t *testing.T) {
	grey := color.RGBA{R: 100, G: 100, B: 100, A: 255}
	base := NewFilledImage(4, 4, grey)
	markings := image.NewRGBA(image.Rect(0, 0, 4, 4))

	mark := color.RGBA{R: 250, G: 0, B: 0, A: 255}
	markings.SetRGBA(1, 1, mark)
	markings.SetRGBA(2, 2, color.RGBA{R: 1, G: 1, B: 1, A: 255})
	// barely covered edge pixel of an anti-aliased mark
	markings.SetRGBA(3, 3, color.RGBA{B: 40, A: 40})

	out := Composite(base, markings, MarkingThreshold)
	test.That(t, out.RGBAAt(1, 1), test.ShouldResemble, mark)
	test.That(t, out.RGBAAt(2, 2), test.ShouldResemble, grey)
	test.That(t, out.RGBAAt(3, 3), test.ShouldResemble, grey)
	test.That(t, out.RGBAAt(0, 0), test.ShouldResemble, grey)

	test.That(t, base.RGBAAt(1, 1), test.ShouldResemble, grey)
}

func TestCompositeAntiAliasedEdges(t *testing.T) {
	grey := color.RGBA{R: 80, G: 80, B: 80, A: 255}
	base := NewFilledImage(4, 1, grey)
	markings := image.NewRGBA(image.Rect(0, 0, 4, 1))
	// premultiplied pixels of mark {104 35 252} at full, half and 40% coverage
	markings.SetRGBA(0, 0, color.RGBA{R: 104, G: 35, B: 252, A: 255})
	markings.SetRGBA(1, 0, color.RGBA{R: 52, G: 17, B: 126, A: 128})
	markings.SetRGBA(2, 0, color.RGBA{R: 42, G: 14, B: 101, A: 102})

	out := Composite(base, markings, MarkingThreshold)
	test.That(t, out.RGBAAt(0, 0), test.ShouldResemble, color.RGBA{R: 104, G: 35, B: 252, A: 255})
	test.That(t, out.RGBAAt(1, 0), test.ShouldResemble, color.RGBA{R: 103, G: 33, B: 251, A: 255})
	test.That(t, out.RGBAAt(2, 0), test.ShouldResemble, grey)
	test.That(t, out.RGBAAt(3, 0), test.ShouldResemble, grey)

	// a real anti-aliased circle leaves no pixel darker than both the frame and the mark
	mark := color.RGBA{R: 104, G: 35, B: 252, A: 255}
	frame := NewFilledImage(20, 20, grey)
	circle := image.NewRGBA(frame.Bounds())
	DrawFilledCircle(gg.NewContextForRGBA(circle), r2.Point{X: 10.3, Y: 9.6}, 4, mark)
	composed := Composite(frame, circle, MarkingThreshold)
	var marked int
	for y := 0; y < 20; y++ {
		for x := 0; x < 20; x++ {
			px := composed.RGBAAt(x, y)
			if px == grey {
				continue
			}
			marked++
			test.That(t, px.B, test.ShouldBeGreaterThan, 240)
			test.That(t, px.R, test.ShouldBeGreaterThan, 95)
		}
	}
	test.That(t, marked, test.ShouldBeGreaterThan, 30)
}

func TestCompositeMarkingsSmallerThanBase(t *testing.T) {
	base := NewFilledImage(6, 6, black)
	markings := image.NewRGBA(image.Rect(0, 0, 2, 2))
	markings.SetRGBA(1, 1, white)

	out := Composite(base, markings, MarkingThreshold)
	test.That(t, out.Bounds(), test.ShouldResemble, base.Bounds())
	test.That(t, out.RGBAAt(1, 1), test.ShouldResemble, white)
	test.That(t, out.RGBAAt(5, 5), test.ShouldResemble, black)
}
