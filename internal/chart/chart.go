package chart

import (
	"bytes"
	"errors"
	"fmt"
	"html/template"
	"math"
	"time"

	gochart "github.com/wcharczuk/go-chart/v2"
	"github.com/wcharczuk/go-chart/v2/drawing"

	"github.com/Zachdehooge/teleconnection-dashboard/internal/fetcher"
)

// ErrNoData is returned when asked to plot a series without records
var ErrNoData = errors.New("series has no records")

// Palette cycles through these for successive charts
var Palette = []string{"636efa", "ef553b", "00cc96", "ab63fa", "ffa15a"}

// Options controls chart size and look
type Options struct {
	Width  int
	Height int
	// Hex colour without '#'
	Color string
	// Window is only used in the title
	Window int
}

// DefaultOptions matches the dashboard layout: three charts side by side, 300px tall
func DefaultOptions() Options {
	return Options{Width: 400, Height: 300, Color: Palette[0], Window: 90}
}

// Title is the heading drawn above an index chart
func Title(name string, window int) string {
	return fmt.Sprintf("%s Index (Last %d Days)", name, window)
}

// Render draws the series as a line-with-markers SVG
func Render(series fetcher.Series, opts Options) (template.HTML, error) {
	if series.Empty() {
		return "", fmt.Errorf("failed to chart %s: %w", series.Name, ErrNoData)
	}
	if opts.Width <= 0 || opts.Height <= 0 {
		d := DefaultOptions()
		opts.Width, opts.Height = d.Width, d.Height
	}
	if opts.Color == "" {
		opts.Color = Palette[0]
	}

	xs, ys := points(series)
	if len(xs) == 0 {
		return "", fmt.Errorf("failed to chart %s: %w", series.Name, ErrNoData)
	}
	col := drawing.ColorFromHex(opts.Color)

	grey := drawing.ColorFromHex("bbbbbb")
	axisStyle := gochart.Style{FontColor: grey, StrokeColor: grey}

	ch := gochart.Chart{
		Title:      Title(series.Name, opts.Window),
		TitleStyle: gochart.Style{FontColor: drawing.ColorFromHex("e0e0e0"), FontSize: 11},
		Width:      opts.Width,
		Height:     opts.Height,
		Background: gochart.Style{
			Padding:   gochart.Box{Top: 36, Left: 16, Right: 16, Bottom: 16},
			FillColor: drawing.ColorFromHex("1e1e1e"),
		},
		Canvas: gochart.Style{FillColor: drawing.ColorFromHex("1e1e1e")},
		XAxis: gochart.XAxis{
			Name:           "Date",
			NameStyle:      axisStyle,
			Style:          axisStyle,
			ValueFormatter: gochart.TimeValueFormatterWithFormat("Jan 02"),
		},
		YAxis: gochart.YAxis{
			Name:      "Index Value",
			NameStyle: axisStyle,
			Style:     axisStyle,
			Range:     valueRange(ys),
		},
		Series: []gochart.Series{
			gochart.TimeSeries{
				Name:    series.Name,
				XValues: xs,
				YValues: ys,
				Style: gochart.Style{
					StrokeColor: col,
					StrokeWidth: 2,
					DotColor:    col,
					DotWidth:    3,
				},
			},
		},
	}

	var buf bytes.Buffer
	if err := ch.Render(gochart.SVG, &buf); err != nil {
		return "", fmt.Errorf("failed to chart %s: %w", series.Name, err)
	}
	return template.HTML(buf.String()), nil
}

// points splits the records into axis values, dropping NaN and infinite
// values. A lone record is drawn as a one-day flat segment so the x range
// is never zero.
func points(series fetcher.Series) ([]time.Time, []float64) {
	xs := make([]time.Time, 0, series.Len()+1)
	ys := make([]float64, 0, series.Len()+1)
	for _, rec := range series.Records {
		if math.IsNaN(rec.Value) || math.IsInf(rec.Value, 0) {
			continue
		}
		xs = append(xs, rec.Date)
		ys = append(ys, rec.Value)
	}
	if len(xs) == 1 {
		xs = append(xs, xs[0].Add(24*time.Hour))
		ys = append(ys, ys[0])
	}
	return xs, ys
}

// valueRange pads a flat series by one unit either side; otherwise the axis autoscales.
func valueRange(ys []float64) gochart.Range {
	lo, hi := math.Inf(1), math.Inf(-1)
	for _, y := range ys {
		lo = math.Min(lo, y)
		hi = math.Max(hi, y)
	}
	if hi-lo > 0 {
		return nil
	}
	return &gochart.ContinuousRange{Min: lo - 1, Max: hi + 1}
}
