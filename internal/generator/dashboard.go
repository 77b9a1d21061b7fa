package generator

import (
	"context"
	"fmt"
	"html/template"
	"log/slog"
	"time"

	"github.com/Zachdehooge/teleconnection-dashboard/internal/chart"
	"github.com/Zachdehooge/teleconnection-dashboard/internal/fetcher"
)

// DefaultWindow is how many trailing records each chart shows
const DefaultWindow = 90

// Fetcher retrieves every index source in order
type Fetcher interface {
	FetchAll(ctx context.Context, sources []fetcher.Source) []fetcher.Result
}

// Warning is shown inline for a source that could not be fetched or charted
type Warning struct {
	Index   string
	Reason  fetcher.Reason
	Message string
}

// Panel is one chart column
type Panel struct {
	Name    string
	Title   string
	SVG     template.HTML
	Latest  fetcher.Record
	Records int
}

// Link is an external monitoring reference
type Link struct {
	Label string
	Title string
	URL   string
}

// GuideRow is one line of the interpretation table
type GuideRow struct {
	Indicator  string
	Negative   string
	Positive   string
	ColdSignal string
}

// Dashboard is the render context for one page build. A fresh one is made per
// build and nothing in it outlives the render.
type Dashboard struct {
	PageTitle   string
	Heading     string
	Subtitle    string
	Window      int
	Warnings    []Warning
	Panels      []Panel
	Links       []Link
	Guide       []GuideRow
	Tip         string
	LastUpdated string
}

// Options tunes how results become a dashboard
type Options struct {
	Window int
	Chart  chart.Options
	Now    time.Time
	Logger *slog.Logger
}

// ReferenceLinks are the ENSO, MJO and polar vortex monitoring pages
var ReferenceLinks = []Link{
	{Label: "ENSO (Niño 3.4)", Title: "CPC ENSO Dashboard", URL: "https://www.cpc.ncep.noaa.gov/products/analysis_monitoring/ensostuff/ONI_v5.php"},
	{Label: "MJO Phase Diagram", Title: "CPC MJO Monitoring", URL: "https://www.cpc.ncep.noaa.gov/products/precip/CWlink/MJO/mjo.shtml"},
	{Label: "Stratospheric Polar Vortex Status", Title: "ECMWF 10hPa Analysis", URL: "https://www.ecmwf.int/en/forecasts/charts"},
}

// InterpretationGuide maps each indicator phase to its Northeast winter signal
var InterpretationGuide = []GuideRow{
	{Indicator: "AO", Negative: "Arctic air intrusion", Positive: "Arctic contained", ColdSignal: "When Negative"},
	{Indicator: "NAO", Negative: "Greenland block (trough in East)", Positive: "Zonal flow (mild East)", ColdSignal: "When Negative"},
	{Indicator: "PNA", Negative: "West trough / East ridge", Positive: "West ridge / East trough", ColdSignal: "When Positive"},
	{Indicator: "ENSO (La Niña)", Negative: "Variable jet, favors cold North", Positive: "Warm bias South/East", ColdSignal: "When Central-Pacific Based"},
	{Indicator: "MJO (Phases 7–8)", Negative: "Pacific blocking", Positive: "Warm Pacific jet", ColdSignal: "When in 7–8"},
}

// Tip closes the page
const Tip = "Tip: Check this dashboard daily in winter to anticipate 7–10 day cold patterns in the Northeast."

// NewDashboard turns fetch results into a render context. Failed sources become
// warnings; successful but empty series are left out without a warning.
func NewDashboard(results []fetcher.Result, opts Options) *Dashboard {
	if opts.Window <= 0 {
		opts.Window = DefaultWindow
	}
	if opts.Now.IsZero() {
		opts.Now = time.Now()
	}
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}

	d := &Dashboard{
		PageTitle:   "Winter Teleconnection Dashboard",
		Heading:     "🌎 Real-Time Winter Pattern Dashboard",
		Subtitle:    "Track key atmospheric indices that influence the Northeast U.S. winter pattern.",
		Window:      opts.Window,
		Warnings:    []Warning{},
		Panels:      []Panel{},
		Links:       ReferenceLinks,
		Guide:       InterpretationGuide,
		Tip:         Tip,
		LastUpdated: opts.Now.Format("Jan 2, 2006 at 3:04:05 PM MST"),
	}

	for i, res := range results {
		if !res.OK() {
			d.Warnings = append(d.Warnings, Warning{
				Index:   res.Err.Index,
				Reason:  res.Err.Reason,
				Message: fmt.Sprintf("Failed to fetch %s: %v", res.Err.Index, res.Err.Err),
			})
			continue
		}
		if res.Series.Empty() {
			continue
		}

		view := res.Series.Tail(opts.Window)
		chartOpts := opts.Chart
		chartOpts.Window = opts.Window
		if chartOpts.Color == "" {
			chartOpts.Color = chart.Palette[i%len(chart.Palette)]
		}
		svg, err := chart.Render(view, chartOpts)
		if err != nil {
			opts.Logger.Warn("chart render failed",
				slog.String("index", view.Name),
				slog.String("error", err.Error()),
			)
			d.Warnings = append(d.Warnings, Warning{Index: view.Name, Message: err.Error()})
			continue
		}
		latest, _ := view.Latest()
		d.Panels = append(d.Panels, Panel{
			Name:    view.Name,
			Title:   chart.Title(view.Name, opts.Window),
			SVG:     svg,
			Latest:  latest,
			Records: view.Len(),
		})
	}
	return d
}

// Build fetches every source and assembles the dashboard
func Build(ctx context.Context, f Fetcher, sources []fetcher.Source, opts Options) *Dashboard {
	return NewDashboard(f.FetchAll(ctx, sources), opts)
}
