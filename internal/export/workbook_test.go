package export

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"github.com/Zachdehooge/teleconnection-dashboard/internal/fetcher"
)

func result(name string, values ...float64) fetcher.Result {
	s := fetcher.Series{Name: name, Records: []fetcher.Record{}}
	start := time.Date(2023, time.December, 1, 0, 0, 0, 0, time.UTC)
	for i, v := range values {
		s.Records = append(s.Records, fetcher.Record{Date: start.AddDate(0, 0, i), Value: v})
	}
	return fetcher.Result{Source: fetcher.Source{Name: name}, Series: s}
}

func TestWrite(t *testing.T) {
	path := filepath.Join(t.TempDir(), "indices.xlsx")
	failed := fetcher.Result{
		Source: fetcher.Source{Name: "NAO"},
		Series: fetcher.Series{Name: "NAO"},
		Err:    &fetcher.FetchError{Index: "NAO", Reason: fetcher.ReasonTransport, Err: assert.AnError},
	}

	require.NoError(t, Write([]fetcher.Result{
		result("AO", -0.5, 0.3, 1.2),
		failed,
		result("PNA", 0.8),
	}, path))

	f, err := excelize.OpenFile(path)
	require.NoError(t, err)
	defer f.Close()

	assert.Equal(t, []string{"AO", "PNA"}, f.GetSheetList())

	rows, err := f.GetRows("AO")
	require.NoError(t, err)
	assert.Equal(t, [][]string{
		{"Date", "AO"},
		{"2023-12-01", "-0.5"},
		{"2023-12-02", "0.3"},
		{"2023-12-03", "1.2"},
	}, rows)

	rows, err = f.GetRows("PNA")
	require.NoError(t, err)
	assert.Len(t, rows, 2)
}

func TestWrite_EmptySeriesGetsHeaderOnly(t *testing.T) {
	path := filepath.Join(t.TempDir(), "indices.xlsx")
	require.NoError(t, Write([]fetcher.Result{result("AO")}, path))

	f, err := excelize.OpenFile(path)
	require.NoError(t, err)
	defer f.Close()

	rows, err := f.GetRows("AO")
	require.NoError(t, err)
	assert.Equal(t, [][]string{{"Date", "AO"}}, rows)
}

func TestWrite_NothingToExport(t *testing.T) {
	failed := fetcher.Result{
		Source: fetcher.Source{Name: "AO"},
		Err:    &fetcher.FetchError{Index: "AO", Reason: fetcher.ReasonStatus, Err: assert.AnError},
	}
	err := Write([]fetcher.Result{failed}, filepath.Join(t.TempDir(), "x.xlsx"))
	assert.ErrorIs(t, err, ErrNothingToExport)

	err = Write(nil, filepath.Join(t.TempDir(), "y.xlsx"))
	assert.ErrorIs(t, err, ErrNothingToExport)
}
