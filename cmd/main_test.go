package main

import (
	"bytes"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/fatih/color"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
)

func cpcServer(t *testing.T) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/ao":
			fmt.Fprint(w, "2023  12  1  -0.5\n2023  12  2   0.3\nheader garbage line\n2023  12  3   1.2\n")
		case "/nao":
			fmt.Fprint(w, "2023 12 1 0.9\n2023 12 2 -1.4\n")
		default:
			w.WriteHeader(http.StatusNotFound)
		}
	}))
	t.Cleanup(srv.Close)
	return srv
}

func writeTestConfig(t *testing.T, baseURL string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	body := fmt.Sprintf(`fetch:
  timeout: 2s
sources:
  - name: AO
    url: %[1]s/ao
  - name: NAO
    url: %[1]s/nao
  - name: PNA
    url: %[1]s/pna
`, baseURL)
	require.NoError(t, os.WriteFile(path, []byte(body), 0644))
	return path
}

func run(t *testing.T, args ...string) (string, string, error) {
	t.Helper()
	var stdout, stderr bytes.Buffer
	cmd := newRootCmd()
	cmd.SetOut(&stdout)
	cmd.SetErr(&stderr)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return stdout.String(), stderr.String(), err
}

func TestRootGeneratesHTML(t *testing.T) {
	srv := cpcServer(t)
	cfgPath := writeTestConfig(t, srv.URL)
	out := filepath.Join(t.TempDir(), "dashboard.html")

	stdout, stderr, err := run(t, "--config", cfgPath, "-o", out)
	require.NoError(t, err)
	assert.Contains(t, stdout, "Dashboard with 2 charts saved to "+out)
	assert.Contains(t, stderr, "Failed to fetch PNA: 404 Not Found")

	page, err := os.ReadFile(out)
	require.NoError(t, err)
	assert.Contains(t, string(page), `id="chart-AO"`)
	assert.Contains(t, string(page), `id="chart-NAO"`)
	assert.Contains(t, string(page), "Failed to fetch PNA")
}

func TestListCommand(t *testing.T) {
	color.NoColor = true
	srv := cpcServer(t)
	cfgPath := writeTestConfig(t, srv.URL)

	stdout, _, err := run(t, "list", "--config", cfgPath)
	require.NoError(t, err)

	assert.Contains(t, stdout, "Index: AO")
	assert.Contains(t, stdout, "Records: 3")
	assert.Contains(t, stdout, "Latest: 2023-12-03 +1.200")
	assert.Contains(t, stdout, "Latest: 2023-12-02 -1.400")
	assert.Contains(t, stdout, "Error: failed to fetch PNA")
}

func TestExportCommand(t *testing.T) {
	srv := cpcServer(t)
	cfgPath := writeTestConfig(t, srv.URL)
	out := filepath.Join(t.TempDir(), "indices.xlsx")

	stdout, stderr, err := run(t, "export", "--config", cfgPath, "-o", out)
	require.NoError(t, err)
	assert.Contains(t, stdout, "Workbook saved to "+out)
	assert.Contains(t, stderr, "failed to fetch PNA")

	f, err := excelize.OpenFile(out)
	require.NoError(t, err)
	defer f.Close()
	assert.Equal(t, []string{"AO", "NAO"}, f.GetSheetList())
}

func TestBadConfig(t *testing.T) {
	_, _, err := run(t, "list", "--config", filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)
}
