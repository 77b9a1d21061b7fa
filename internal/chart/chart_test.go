package chart

import (
	"math"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Zachdehooge/teleconnection-dashboard/internal/fetcher"
)

func makeSeries(name string, values ...float64) fetcher.Series {
	s := fetcher.Series{Name: name}
	start := time.Date(2024, time.January, 1, 0, 0, 0, 0, time.UTC)
	for i, v := range values {
		s.Records = append(s.Records, fetcher.Record{Date: start.AddDate(0, 0, i), Value: v})
	}
	return s
}

func TestRender_SVG(t *testing.T) {
	svg, err := Render(makeSeries("AO", -0.5, 0.3, 1.2, -2.1), DefaultOptions())
	require.NoError(t, err)

	out := string(svg)
	assert.True(t, strings.HasPrefix(strings.TrimSpace(out), "<svg"))
	assert.Contains(t, out, "AO Index (Last 90 Days)")
	assert.Contains(t, out, "</svg>")
}

func TestRender_EdgeShapes(t *testing.T) {
	tests := []struct {
		name   string
		series fetcher.Series
	}{
		{name: "single record", series: makeSeries("NAO", 0.7)},
		{name: "constant values", series: makeSeries("PNA", 1, 1, 1, 1)},
		{name: "NaN in the middle", series: makeSeries("AO", -0.5, math.NaN(), 1.2)},
		{name: "infinite values", series: makeSeries("AO", math.Inf(1), 0.3, math.Inf(-1))},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svg, err := Render(tt.series, Options{Width: 300, Height: 200, Color: Palette[1], Window: 90})
			require.NoError(t, err)
			assert.Contains(t, string(svg), "<svg")
		})
	}
}

func TestRender_Empty(t *testing.T) {
	_, err := Render(fetcher.Series{Name: "AO"}, DefaultOptions())
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrNoData)
}

func TestRender_NoFiniteValues(t *testing.T) {
	_, err := Render(makeSeries("AO", math.NaN(), math.NaN()), DefaultOptions())
	assert.ErrorIs(t, err, ErrNoData)
}

func TestPoints_SkipsNonFinite(t *testing.T) {
	xs, ys := points(makeSeries("AO", -0.5, math.NaN(), 1.2))
	require.Len(t, xs, 2)
	assert.Equal(t, []float64{-0.5, 1.2}, ys)
	assert.Equal(t, 48*time.Hour, xs[1].Sub(xs[0]))
}

func TestTitle(t *testing.T) {
	assert.Equal(t, "PNA Index (Last 90 Days)", Title("PNA", 90))
	assert.Equal(t, "AO Index (Last 30 Days)", Title("AO", 30))
}

func TestValueRange(t *testing.T) {
	assert.Nil(t, valueRange([]float64{-1, 2}))

	r := valueRange([]float64{0.5, 0.5})
	require.NotNil(t, r)
	assert.Equal(t, -0.5, r.GetMin())
	assert.Equal(t, 1.5, r.GetMax())
}

func TestPoints_PadsSingleRecord(t *testing.T) {
	xs, ys := points(makeSeries("AO", 2))
	require.Len(t, xs, 2)
	assert.Equal(t, 24*time.Hour, xs[1].Sub(xs[0]))
	assert.Equal(t, []float64{2, 2}, ys)
}
