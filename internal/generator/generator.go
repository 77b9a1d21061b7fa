package generator

import (
	"bytes"
	"fmt"
	"html/template"
	"io"
	"os"
)

var pageTemplate = template.Must(template.New("dashboard").Funcs(template.FuncMap{
	"signed": func(v float64) string { return fmt.Sprintf("%+.2f", v) },
}).Parse(`<!DOCTYPE html>
<html lang="en">
<head>
   <meta charset="UTF-8"/>
   <meta name="viewport" content="width=device-width, initial-scale=1"/>
   <title>{{ .PageTitle }}</title>
   <style>
      :root {
         --bg-color: #121212;
         --text-color: #e0e0e0;
         --muted-color: #888;
         --card-bg: #1e1e1e;
         --card-border: #333;
         --warning-bg: #3d2e1a;
         --warning-border: #b25900;
         --success-bg: #1a3d22;
         --success-border: #2e8b57;
         --link-color: #add8e6;
      }
      body {
         font-family: Arial, sans-serif;
         max-width: 1300px;
         margin: 0 auto;
         padding: 20px;
         background-color: var(--bg-color);
         color: var(--text-color);
      }
      html { background-color: #121212; }
      h1, h2 { color: var(--text-color); }
      a { color: var(--link-color); }
      .subtitle { color: var(--muted-color); }
      .alert {
         padding: 10px 14px;
         margin: 10px 0;
         border-radius: 5px;
         border: 1px solid;
      }
      .alert.warning { background-color: var(--warning-bg); border-color: var(--warning-border); }
      .alert.success { background-color: var(--success-bg); border-color: var(--success-border); }
      .charts {
         display: grid;
         grid-template-columns: repeat(3, minmax(0, 1fr));
         gap: 15px;
      }
      @media (max-width: 900px) { .charts { grid-template-columns: 1fr; } }
      .chart-card {
         border: 1px solid var(--card-border);
         border-radius: 5px;
         background-color: var(--card-bg);
         padding: 10px;
      }
      .chart-card svg { width: 100%; height: auto; }
      .chart-meta { font-size: 0.85em; color: var(--muted-color); }
      table { border-collapse: collapse; width: 100%; }
      th, td { border: 1px solid var(--card-border); padding: 6px 10px; text-align: left; }
      th { background-color: var(--card-bg); }
      .updated { font-size: 0.8em; margin-top: 20px; color: var(--muted-color); }
   </style>
</head>
<body>
   <h1>{{ .Heading }}</h1>
   <p class="subtitle">{{ .Subtitle }}</p>

   {{ range .Warnings }}
   <div class="alert warning" data-index="{{ .Index }}">{{ .Message }}</div>
   {{ end }}

   <h2>📈 Teleconnection Indices (AO, NAO, PNA)</h2>
   <div class="charts">
      {{ range .Panels }}
      <div class="chart-card" id="chart-{{ .Name }}">
         {{ .SVG }}
         <div class="chart-meta">Latest {{ .Latest.Date.Format "2006-01-02" }}: {{ signed .Latest.Value }} ({{ .Records }} days shown)</div>
      </div>
      {{ end }}
   </div>

   <h2>🌊 ENSO &amp; MJO Monitoring</h2>
   <ul>
      {{ range .Links }}
      <li><strong>{{ .Label }}</strong>: <a href="{{ .URL }}">{{ .Title }}</a></li>
      {{ end }}
   </ul>

   <h2>🧊 Quick Interpretation Guide</h2>
   <table>
      <thead>
         <tr><th>Indicator</th><th>Negative Phase</th><th>Positive Phase</th><th>Cold Signal for Northeast?</th></tr>
      </thead>
      <tbody>
         {{ range .Guide }}
         <tr><td><strong>{{ .Indicator }}</strong></td><td>{{ .Negative }}</td><td>{{ .Positive }}</td><td>✅ {{ .ColdSignal }}</td></tr>
         {{ end }}
      </tbody>
   </table>

   <div class="alert success">✅ {{ .Tip }}</div>
   <div class="updated">Last updated: {{ .LastUpdated }}</div>
</body>
</html>
`))

// Render writes the dashboard page to w
func Render(w io.Writer, d *Dashboard) error {
	var buf bytes.Buffer
	if err := pageTemplate.Execute(&buf, d); err != nil {
		return fmt.Errorf("failed to render dashboard: %w", err)
	}
	_, err := buf.WriteTo(w)
	return err
}

// WriteFile renders the dashboard to outputPath. The page is written to a temp
// file first and renamed so a browser never reads a partial file.
func WriteFile(d *Dashboard, outputPath string) error {
	var buf bytes.Buffer
	if err := Render(&buf, d); err != nil {
		return err
	}

	tmp := outputPath + ".tmp"
	if err := os.WriteFile(tmp, buf.Bytes(), 0644); err != nil {
		return fmt.Errorf("write tmp failed: %w", err)
	}
	if err := os.Rename(tmp, outputPath); err != nil {
		os.Remove(tmp)
		return fmt.Errorf("rename failed: %w", err)
	}
	return nil
}
