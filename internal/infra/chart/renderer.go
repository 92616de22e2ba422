package chart

import (
	"bytes"
	"fmt"

	"github.com/fogleman/gg"
	"golang.org/x/image/font/basicfont"

	"mood_checkin_bot/internal/app"
)

const (
	width   = 900
	height  = 450
	marginX = 60.0
	marginY = 50.0
)

// PNGRenderer draws trend charts as PNG line plots.
type PNGRenderer struct{}

func NewPNGRenderer() *PNGRenderer { return &PNGRenderer{} }

func (r *PNGRenderer) RenderTrend(title string, points []app.TrendPoint) ([]byte, error) {
	if len(points) == 0 {
		return nil, fmt.Errorf("cannot render an empty series")
	}

	dc := gg.NewContext(width, height)
	dc.SetRGB(1, 1, 1)
	dc.Clear()
	dc.SetFontFace(basicfont.Face7x13)

	plotW := float64(width) - 2*marginX
	plotH := float64(height) - 2*marginY

	x := func(i int) float64 {
		if len(points) == 1 {
			return marginX + plotW/2
		}
		return marginX + plotW*float64(i)/float64(len(points)-1)
	}
	// The score scale is fixed at 1..10 regardless of the data range.
	y := func(avg float64) float64 {
		return marginY + plotH*(1-(avg-1)/9)
	}

	// Gridlines and scale labels at each integer score.
	dc.SetRGB(0.85, 0.85, 0.85)
	for score := 1; score <= 10; score++ {
		gy := y(float64(score))
		dc.DrawLine(marginX, gy, float64(width)-marginX, gy)
		dc.Stroke()
	}
	dc.SetRGB(0.3, 0.3, 0.3)
	for score := 1; score <= 10; score++ {
		dc.DrawStringAnchored(fmt.Sprintf("%d", score), marginX-16, y(float64(score)), 0.5, 0.35)
	}

	// Date labels, thinned so they stay readable on long windows.
	step := 1
	if len(points) > 10 {
		step = len(points)/10 + 1
	}
	for i := 0; i < len(points); i += step {
		dc.DrawStringAnchored(points[i].Day, x(i), float64(height)-marginY+18, 0.5, 0.5)
	}

	// The series itself.
	dc.SetRGB(0.23, 0.56, 0.82)
	dc.SetLineWidth(2)
	for i := 1; i < len(points); i++ {
		dc.DrawLine(x(i-1), y(points[i-1].Average), x(i), y(points[i].Average))
		dc.Stroke()
	}
	for i := range points {
		dc.DrawCircle(x(i), y(points[i].Average), 3.5)
		dc.Fill()
	}

	dc.SetRGB(0.1, 0.1, 0.1)
	dc.DrawStringAnchored(title, float64(width)/2, marginY/2, 0.5, 0.5)

	var buf bytes.Buffer
	if err := dc.EncodePNG(&buf); err != nil {
		return nil, fmt.Errorf("failed to encode PNG: %w", err)
	}
	return buf.Bytes(), nil
}
