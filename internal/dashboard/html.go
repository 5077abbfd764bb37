package dashboard

import (
	"html/template"
	"net/http"

	"backlog/internal/report"
)

// statusColors is the dashboard palette keyed by effective status.
var statusColors = map[string]string{
	"Passed":                    "#34d399",
	"Passed with Issue":         "#6ee7b7",
	"Passed with Stub":          "#a3e635",
	"To Do":                     "#818cf8",
	"Blocked":                   "#fb923c",
	"Failed":                    "#f87171",
	"Failed (Medium)":           "#fbbf24",
	"Not Applicable":            "#64748b",
	"Untested":                  "#94a3b8",
	"No-Run":                    "#64748b",
	"Not automated":             "#c4b5fd",
	"Automation not applicable": "#64748b",
}

const fallbackColor = "#64748b"

func statusColor(status string) string {
	if c, ok := statusColors[status]; ok {
		return c
	}
	return fallbackColor
}

var pageTemplate = template.Must(template.New("dashboard").Funcs(template.FuncMap{
	"color":    statusColor,
	"describe": report.Describe,
}).Parse(pageHTML))

// indexData feeds the dashboard page template.
type indexData struct {
	Plans    []string
	Selected string
	Run      string
	Summary  *dashboardPayload
	Error    string
}

func (s *Server) handleIndex(w http.ResponseWriter, r *http.Request) {
	data := indexData{
		Selected: r.URL.Query().Get("bu"),
		Run:      r.URL.Query().Get("run"),
	}
	for _, p := range s.cfg.Plans {
		data.Plans = append(data.Plans, p.Name)
	}
	if data.Selected == "" && len(data.Plans) > 0 {
		data.Selected = data.Plans[0]
	}

	summary, err := s.loadSummary(r)
	if err != nil {
		s.logger.Error("dashboard load failed", "error", err)
		data.Error = err.Error()
	} else {
		payload := toPayload(summary)
		data.Summary = &payload
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := pageTemplate.Execute(w, data); err != nil {
		s.logger.Error("render dashboard page", "error", err)
	}
}

const pageHTML = `<!DOCTYPE html>
<html lang="en">
<head>
<meta charset="utf-8">
<title>Automation Backlog</title>
<style>
:root {
  --bg: #0f1117; --card: #1a1c2e; --text: #e2e8f0;
  --dim: #94a3b8; --border: #2d3148; --accent: #6366f1;
}
* { box-sizing: border-box; }
body { margin: 0; padding: 24px; background: var(--bg); color: var(--text);
       font-family: Inter, system-ui, sans-serif; }
h1 { font-size: 22px; margin: 0 0 4px; }
h2 { font-size: 15px; color: var(--dim); margin: 28px 0 10px;
     text-transform: uppercase; letter-spacing: 0.08em; }
a { color: var(--accent); text-decoration: none; }
.controls { display: flex; gap: 12px; align-items: center; margin: 16px 0; }
select, button { background: var(--card); color: var(--text);
  border: 1px solid var(--border); border-radius: 8px; padding: 6px 12px; }
button { cursor: pointer; }
.cards { display: grid; grid-template-columns: repeat(auto-fit, minmax(150px, 1fr));
         gap: 12px; }
.card { background: var(--card); border: 1px solid var(--border);
        border-radius: 12px; padding: 14px 16px; }
.card .value { font-size: 26px; font-weight: 600; }
.card .label { color: var(--dim); font-size: 12px; }
.bar { height: 10px; background: var(--border); border-radius: 5px;
       overflow: hidden; margin-top: 10px; }
.bar > div { height: 100%; background: #34d399; }
table { border-collapse: collapse; width: 100%; background: var(--card);
        border: 1px solid var(--border); border-radius: 12px; overflow: hidden; }
th, td { padding: 8px 12px; text-align: left; font-size: 13px;
         border-bottom: 1px solid var(--border); }
th { color: var(--dim); font-weight: 500; }
tr:last-child td { border-bottom: none; }
td.num, th.num { text-align: right; }
.dot { display: inline-block; width: 10px; height: 10px; border-radius: 50%;
       margin-right: 8px; vertical-align: middle; }
.error { background: #451a1a; border: 1px solid #b91c1c; color: #fecaca;
         border-radius: 12px; padding: 16px; }
.empty { color: var(--dim); padding: 32px; text-align: center; }
details { margin-bottom: 8px; }
summary { cursor: pointer; padding: 8px 0; }
.desc { color: var(--dim); font-size: 12px; margin-left: 8px; }
</style>
</head>
<body>
<h1>Automation Backlog</h1>
<form class="controls" method="get" action="/">
  <select name="bu" onchange="this.form.submit()">
    {{- range .Plans}}
    <option value="{{.}}"{{if eq . $.Selected}} selected{{end}}>{{.}}</option>
    {{- end}}
  </select>
  {{- if .Run}}<input type="hidden" name="run" value="{{.Run}}">{{end}}
  <button type="button" onclick="refresh()">Refresh</button>
  {{- with .Summary}}{{if .PlanURL}}<a href="{{.PlanURL}}" target="_blank">Open plan ↗</a>{{end}}{{end}}
</form>

{{- if .Error}}
<div class="error">{{.Error}}</div>
{{- else if .Summary.Total}}
{{- with .Summary}}

<div class="cards">
  <div class="card"><div class="value">{{.Total}}</div><div class="label">Total tests</div></div>
  <div class="card"><div class="value">{{.Progress.Done}}</div><div class="label">Done</div></div>
  <div class="card"><div class="value">{{.Progress.Actionable}}</div><div class="label">Actionable</div></div>
  <div class="card"><div class="value">{{.Progress.NotApplicable}}</div><div class="label">Not applicable</div></div>
  <div class="card">
    <div class="value">{{printf "%.1f" .Progress.Percent}}%</div>
    <div class="label">Automation progress</div>
    <div class="bar"><div style="width: {{printf "%.1f" .Progress.Percent}}%"></div></div>
  </div>
</div>

<h2>Status</h2>
<table>
  <tr><th>Status</th><th class="num">Count</th><th>Description</th></tr>
  {{- range .Order}}
  <tr>
    <td><span class="dot" style="background: {{color .}}"></span>{{.}}</td>
    <td class="num">{{index $.Summary.Counts .}}</td>
    <td class="desc">{{describe .}}</td>
  </tr>
  {{- end}}
</table>

<h2>By device</h2>
<table>
  <tr><th>Status</th>{{range .Devices.Columns}}<th class="num">{{.}}</th>{{end}}<th class="num">Total</th></tr>
  {{- range .Devices.Rows}}
  <tr><td>{{.Status}}</td>{{range .Cells}}<td class="num">{{.}}</td>{{end}}<td class="num">{{.Total}}</td></tr>
  {{- end}}
  <tr><td>{{.Devices.Totals.Status}}</td>{{range .Devices.Totals.Cells}}<td class="num">{{.}}</td>{{end}}<td class="num">{{.Devices.Totals.Total}}</td></tr>
</table>

{{- with .Countries}}
<h2>By country</h2>
<table>
  <tr><th>Status</th>{{range .Columns}}<th class="num">{{.}}</th>{{end}}<th class="num">Total</th></tr>
  {{- range .Rows}}
  <tr><td>{{.Status}}</td>{{range .Cells}}<td class="num">{{.}}</td>{{end}}<td class="num">{{.Total}}</td></tr>
  {{- end}}
  <tr><td>{{.Totals.Status}}</td>{{range .Totals.Cells}}<td class="num">{{.}}</td>{{end}}<td class="num">{{.Totals.Total}}</td></tr>
</table>
{{- end}}

{{- if .NAGroups}}
<h2>Not-applicable reasons</h2>
<table>
  <tr><th>Reason</th><th class="num">Count</th></tr>
  {{- range .NAGroups}}
  <tr><td>{{.Reason}}</td><td class="num">{{.Count}}</td></tr>
  {{- end}}
</table>
{{- end}}

<h2>Details</h2>
{{- range .Statuses}}
<details>
  <summary>
    <span class="dot" style="background: {{color .Status}}"></span>{{.Status}} ({{.Count}})
    {{- with .Description}}<span class="desc">{{.}}</span>{{end}}
  </summary>
  <table>
    <tr><th class="num">Case</th><th>Title</th><th>Priority</th><th>Type</th><th>Run</th><th>Device</th><th>Countries</th></tr>
    {{- range .Rows}}
    <tr>
      <td class="num">{{if .Link}}<a href="{{.Link}}" target="_blank">C{{.CaseID}}</a>{{else}}C{{.CaseID}}{{end}}</td>
      <td>{{.Title}}</td><td>{{.Priority}}</td><td>{{.Type}}</td>
      <td>{{.Run}}</td><td>{{.Device}}</td><td>{{.Countries}}</td>
    </tr>
    {{- end}}
  </table>
</details>
{{- end}}

{{- end}}
{{- else}}
<div class="empty">No tests found.</div>
{{- end}}

<script>
function refresh() {
  const params = new URLSearchParams(window.location.search);
  const bu = params.get("bu") || "";
  fetch("/api/refresh" + (bu ? "?bu=" + encodeURIComponent(bu) : ""), {method: "POST"});
}
new EventSource("/events").addEventListener("refresh", () => window.location.reload());
</script>
</body>
</html>
`
