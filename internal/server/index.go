package server

import (
	"html/template"
	"net/http"

	"github.com/bobmcallan/stockmind/internal/common"
	"github.com/bobmcallan/stockmind/internal/models"
)

// indexData holds the template data for the home page.
type indexData struct {
	Version string
	Alerts  []models.AlertSpec
}

var indexTemplate = template.Must(template.New("index").Parse(`<!DOCTYPE html>
<html lang="en">
<head>
<meta charset="utf-8">
<meta name="viewport" content="width=device-width, initial-scale=1">
<title>StockMind</title>
<style>
body { font-family: system-ui, sans-serif; max-width: 760px; margin: 2rem auto; padding: 0 1rem; color: #222; }
form { display: grid; gap: .5rem; margin-bottom: 2rem; }
input, select, button { padding: .4rem; font-size: 1rem; }
table { border-collapse: collapse; width: 100%; }
td, th { border-bottom: 1px solid #ddd; padding: .3rem; text-align: left; }
small { color: #888; }
</style>
</head>
<body>
<h1>StockMind <small>{{.Version}}</small></h1>

<h2>Analyze a company</h2>
<form method="get" action="/analyze_company">
  <input name="company_name" placeholder="Company name, e.g. Apple" required>
  <button type="submit">Analyze</button>
</form>

<h2>Create an alert</h2>
<form method="post" action="/create_alert">
  <select name="type">
    <option value="price">Price</option>
    <option value="rsi">RSI</option>
  </select>
  <input name="ticker" placeholder="Ticker, e.g. AAPL" required>
  <input name="target" placeholder="Target price (price alerts)">
  <input name="threshold" placeholder="RSI threshold (default 30)">
  <select name="direction">
    <option value="">Default</option>
    <option value="above">Above</option>
    <option value="below">Below</option>
  </select>
  <input name="email" type="email" placeholder="E-mail (optional)">
  <button type="submit">Create alert</button>
</form>

<h2>Alerts</h2>
{{if .Alerts}}
<table>
<tr><th>Ticker</th><th>Type</th><th>Direction</th><th>Level</th><th>Created</th></tr>
{{range .Alerts}}
<tr><td>{{.Ticker}}</td><td>{{.Kind}}</td><td>{{.Direction}}</td><td>{{printf "%.2f" .Level}}</td><td>{{.CreatedAt.Format "2006-01-02 15:04"}}</td></tr>
{{end}}
</table>
{{else}}
<p>No alerts yet.</p>
{{end}}
</body>
</html>`))

// handleIndex renders the home page. Any path other than "/" is a 404.
func (s *Server) handleIndex(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path != "/" {
		WriteError(w, http.StatusNotFound, "Not found")
		return
	}
	if !RequireMethod(w, r, http.MethodGet, http.MethodHead) {
		return
	}

	data := indexData{
		Version: common.GetVersion(),
		Alerts:  s.app.AlertService.ListAlerts(r.Context()),
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.Header().Set("Cache-Control", "no-store")
	if err := indexTemplate.Execute(w, data); err != nil {
		s.logger.Error().Err(err).Msg("Index template error")
	}
}
