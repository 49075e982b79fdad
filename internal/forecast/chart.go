package forecast

import (
	"fmt"
	"strings"
)

// ChartBox is the drawing area of the forecast chart in view-box units.
type ChartBox struct {
	Width   float64
	Height  float64
	Padding float64
}

// DefaultChartBox matches the 100x50 view box used by the forecast view.
var DefaultChartBox = ChartBox{Width: 100, Height: 50, Padding: 5}

// ChartPoint is a vertex of the chart polyline.
type ChartPoint struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// ChartData is the geometry of a forecast chart.
type ChartData struct {
	Points   []ChartPoint `json:"points"`
	Polyline string       `json:"polyline"`
	AreaPath string       `json:"area_path"`
	MinLabel string       `json:"min_label"`
	MaxLabel string       `json:"max_label"`
}

// Chart lays s out inside box. Rates are min-max normalised with y growing
// downwards; a flat series is drawn along the bottom edge of the padding.
func Chart(s Series, box ChartBox) ChartData {
	if len(s) == 0 {
		return ChartData{}
	}

	minRate, maxRate := s[0].Rate, s[0].Rate
	for _, p := range s {
		if p.Rate < minRate {
			minRate = p.Rate
		}
		if p.Rate > maxRate {
			maxRate = p.Rate
		}
	}
	span := maxRate - minRate
	if span == 0 {
		span = 1
	}

	innerW := box.Width - 2*box.Padding
	innerH := box.Height - 2*box.Padding

	pts := make([]ChartPoint, len(s))
	coords := make([]string, len(s))
	for i, p := range s {
		x := box.Width / 2
		if len(s) > 1 {
			x = float64(i)/float64(len(s)-1)*innerW + box.Padding
		}
		y := box.Height - box.Padding - (p.Rate-minRate)/span*innerH
		pts[i] = ChartPoint{X: x, Y: y}
		coords[i] = formatCoord(x, y)
	}

	first, last := pts[0], pts[len(pts)-1]
	polyline := strings.Join(coords, " ")
	area := fmt.Sprintf("M %s L %s L %s,%s L %s,%s Z",
		coords[0], polyline,
		formatNum(last.X), formatNum(box.Height),
		formatNum(first.X), formatNum(box.Height))

	return ChartData{
		Points:   pts,
		Polyline: polyline,
		AreaPath: area,
		MinLabel: fmt.Sprintf("%.4f", minRate),
		MaxLabel: fmt.Sprintf("%.4f", maxRate),
	}
}

func formatCoord(x, y float64) string {
	return formatNum(x) + "," + formatNum(y)
}

func formatNum(v float64) string {
	s := fmt.Sprintf("%.2f", v)
	s = strings.TrimRight(s, "0")
	return strings.TrimSuffix(s, ".")
}
