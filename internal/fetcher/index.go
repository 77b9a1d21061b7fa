package fetcher

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"time"
)

const (
	// DefaultTimeout bounds a single source retrieval
	DefaultTimeout = 10 * time.Second

	// DefaultUserAgent is sent with every request to the CPC servers
	DefaultUserAgent = "teleconnection-dashboard/1.0 (github.com/Zachdehooge/teleconnection-dashboard)"
)

// Source names an index and where its text file lives
type Source struct {
	Name string `yaml:"name" validate:"required"`
	URL  string `yaml:"url" validate:"required,url"`
}

// DefaultSources are the CPC daily teleconnection index files
func DefaultSources() []Source {
	return []Source{
		{Name: "AO", URL: "https://www.cpc.ncep.noaa.gov/data/teledoc/ao_index.timser"},
		{Name: "NAO", URL: "https://www.cpc.ncep.noaa.gov/data/teledoc/nao_index.timser"},
		{Name: "PNA", URL: "https://www.cpc.ncep.noaa.gov/data/teledoc/pna_index.timser"},
	}
}

// Record is one dated index observation
type Record struct {
	Date  time.Time `json:"date"`
	Value float64   `json:"value"`
}

// Series holds the records of one index in the order they appear in the source file
type Series struct {
	Name    string   `json:"name"`
	Records []Record `json:"records"`
}

// Len returns the number of records
func (s Series) Len() int { return len(s.Records) }

// Empty reports whether the series has no records
func (s Series) Empty() bool { return len(s.Records) == 0 }

// Tail returns the most recent n records as a new series sharing the backing array.
func (s Series) Tail(n int) Series {
	if n < 0 {
		n = 0
	}
	if n > len(s.Records) {
		n = len(s.Records)
	}
	return Series{Name: s.Name, Records: s.Records[len(s.Records)-n:]}
}

// Latest returns the last record, if any
func (s Series) Latest() (Record, bool) {
	if len(s.Records) == 0 {
		return Record{}, false
	}
	return s.Records[len(s.Records)-1], true
}

// Result is the outcome of fetching one source. Err is nil on success.
type Result struct {
	Source Source
	Series Series
	Err    *FetchError
}

// OK reports whether the fetch succeeded
func (r Result) OK() bool { return r.Err == nil }

// Observer receives the outcome of every fetch. reason is empty on success.
type Observer interface {
	ObserveFetch(index string, reason Reason, records int, elapsed time.Duration)
}

// Client retrieves and parses index files
type Client struct {
	HTTP      *http.Client
	UserAgent string
	Logger    *slog.Logger
	Observer  Observer
}

// NewClient returns a client whose requests give up after timeout
func NewClient(timeout time.Duration, logger *slog.Logger) *Client {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Client{
		HTTP:      &http.Client{Timeout: timeout},
		UserAgent: DefaultUserAgent,
		Logger:    logger,
	}
}

// Fetch downloads and parses a single source
func (c *Client) Fetch(ctx context.Context, src Source) Result {
	start := time.Now()
	series, err := c.fetch(ctx, src)
	elapsed := time.Since(start)

	res := Result{Source: src, Series: series}
	var reason Reason
	if err != nil {
		res.Err = err
		res.Series = Series{Name: src.Name}
		reason = err.Reason
		c.Logger.WarnContext(ctx, "index fetch failed",
			slog.String("index", src.Name),
			slog.String("url", src.URL),
			slog.String("reason", string(err.Reason)),
			slog.String("error", err.Err.Error()),
			slog.Duration("duration", elapsed),
		)
	} else {
		c.Logger.InfoContext(ctx, "index fetched",
			slog.String("index", src.Name),
			slog.String("url", src.URL),
			slog.Int("records", series.Len()),
			slog.Duration("duration", elapsed),
		)
	}
	if c.Observer != nil {
		c.Observer.ObserveFetch(src.Name, reason, res.Series.Len(), elapsed)
	}
	return res
}

// FetchAll fetches every source one after another, in order.
// A failing source does not affect the others.
func (c *Client) FetchAll(ctx context.Context, sources []Source) []Result {
	results := make([]Result, 0, len(sources))
	for _, src := range sources {
		results = append(results, c.Fetch(ctx, src))
	}
	return results
}

func (c *Client) fetch(ctx context.Context, src Source) (Series, *FetchError) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, src.URL, nil)
	if err != nil {
		return Series{}, newFetchError(src.Name, ReasonTransport, fmt.Errorf("failed to build request: %w", err))
	}
	if c.UserAgent != "" {
		req.Header.Set("User-Agent", c.UserAgent)
	}
	req.Header.Set("Accept", "text/plain")

	httpClient := c.HTTP
	if httpClient == nil {
		httpClient = &http.Client{Timeout: DefaultTimeout}
	}
	resp, err := httpClient.Do(req)
	if err != nil {
		return Series{}, newFetchError(src.Name, ReasonTransport, fmt.Errorf("HTTP GET failed: %w", err))
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return Series{}, newFetchError(src.Name, ReasonStatus, &StatusError{Code: resp.StatusCode, URL: src.URL})
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return Series{}, newFetchError(src.Name, ReasonTransport, fmt.Errorf("failed to read response body: %w", err))
	}

	series, err := Parse(bytes.NewReader(body), src.Name)
	if err != nil {
		return Series{}, newFetchError(src.Name, ReasonParse, err)
	}
	return series, nil
}

// Parse reads "YYYY MM DD value" rows. Lines that do not split into exactly
// four fields are skipped, whatever their length; a kept line that fails
// conversion fails the whole parse.
func Parse(r io.Reader, name string) (Series, error) {
	body, err := io.ReadAll(r)
	if err != nil {
		return Series{}, fmt.Errorf("failed to read index text: %w", err)
	}

	series := Series{Name: name, Records: []Record{}}
	for i, line := range splitLines(body) {
		fields := strings.Fields(line)
		if len(fields) != 4 {
			continue
		}
		rec, err := parseRecord(fields)
		if err != nil {
			return Series{}, &ParseError{Line: i + 1, Text: line, Err: err}
		}
		series.Records = append(series.Records, rec)
	}
	return series, nil
}

// splitLines breaks on \n, \r\n and lone \r
func splitLines(body []byte) []string {
	text := strings.ReplaceAll(string(body), "\r\n", "\n")
	text = strings.ReplaceAll(text, "\r", "\n")
	return strings.Split(text, "\n")
}

func parseRecord(fields []string) (Record, error) {
	year, err := strconv.Atoi(fields[0])
	if err != nil {
		return Record{}, fmt.Errorf("invalid year %q: %w", fields[0], err)
	}
	month, err := strconv.Atoi(fields[1])
	if err != nil {
		return Record{}, fmt.Errorf("invalid month %q: %w", fields[1], err)
	}
	day, err := strconv.Atoi(fields[2])
	if err != nil {
		return Record{}, fmt.Errorf("invalid day %q: %w", fields[2], err)
	}
	value, err := strconv.ParseFloat(fields[3], 64)
	if err != nil {
		return Record{}, fmt.Errorf("invalid value %q: %w", fields[3], err)
	}

	date := time.Date(year, time.Month(month), day, 0, 0, 0, 0, time.UTC)
	// time.Date normalizes out-of-range parts, so compare them back
	if date.Year() != year || int(date.Month()) != month || date.Day() != day {
		return Record{}, fmt.Errorf("invalid date %04d-%02d-%02d", year, month, day)
	}
	return Record{Date: date, Value: value}, nil
}
