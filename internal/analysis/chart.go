package analysis

import (
	"bytes"
	"fmt"
	"os"

	chart "github.com/wcharczuk/go-chart/v2"
	"github.com/wcharczuk/go-chart/v2/drawing"
)

var (
	chartBackground = drawing.ColorFromHex("0B1426")
	chartBar        = drawing.ColorFromHex("3B82F6")
	chartAxis       = drawing.ColorFromHex("6B7280")
)

const (
	chartWidth         = 1600
	chartHeight        = 800
	chartLabelRotation = 35
)

// RenderBarChart writes a PNG bar chart of the word counts to path,
// replacing any existing file.
func RenderBarChart(path, title string, words []WordCount) error {
	if len(words) == 0 {
		return fmt.Errorf("no words to chart")
	}

	maxCount := 0
	bars := make([]chart.Value, 0, len(words))
	for _, w := range words {
		if w.Count > maxCount {
			maxCount = w.Count
		}
		bars = append(bars, chart.Value{
			Label: w.Word,
			Value: float64(w.Count),
			Style: chart.Style{
				FillColor:   chartBar,
				StrokeColor: chartBar,
			},
		})
	}

	graph := chart.BarChart{
		Title: title,
		TitleStyle: chart.Style{
			FontColor: drawing.ColorWhite,
		},
		Width:    chartWidth,
		Height:   chartHeight,
		BarWidth: 80,
		Background: chart.Style{
			FillColor: chartBackground,
			Padding:   chart.Box{Top: 60, Left: 20, Right: 20, Bottom: 40},
		},
		Canvas: chart.Style{
			FillColor: chartBackground,
		},
		XAxis: chart.Style{
			FontColor:           drawing.ColorWhite,
			StrokeColor:         chartAxis,
			TextRotationDegrees: chartLabelRotation,
		},
		YAxis: chart.YAxis{
			Style: chart.Style{
				FontColor:   drawing.ColorWhite,
				StrokeColor: chartAxis,
			},
			Range: &chart.ContinuousRange{Min: 0, Max: float64(maxCount)},
		},
		Bars: bars,
	}

	var buf bytes.Buffer
	if err := graph.Render(chart.PNG, &buf); err != nil {
		return fmt.Errorf("failed to render chart: %w", err)
	}
	if err := os.WriteFile(path, buf.Bytes(), 0o644); err != nil {
		return fmt.Errorf("failed to write chart %s: %w", path, err)
	}
	return nil
}
