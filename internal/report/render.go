package report

import (
	"bytes"
	"fmt"
	"html/template"
	"os"
	"path/filepath"

	"github.com/gpc/timesheets/internal/model"
)

const reportHTML = `<!DOCTYPE html>
<html>
<head>
<meta charset="utf-8">
<title>{{.Title}}</title>
<style>
body { font-family: "Helvetica Neue", Helvetica, Arial, sans-serif; margin: 2em; }
h1 { font-size: 1.4em; }
p.meta { color: #555; }
table { border-collapse: collapse; width: 100%; }
th, td { padding: 0.25em 0.6em; text-align: left; }
tr.header th { border-bottom: 2px solid #333; }
th.date-header { background: #e8e8e8; padding-top: 0.8em; }
th.project-header { font-style: italic; }
td.task { padding-left: 1.5em; }
td.duration, td.rate, td.amount { text-align: right; white-space: nowrap; }
td.span, th.span { text-align: center; white-space: nowrap; color: #444; }
tr.total td { border-top: 2px solid #333; font-weight: bold; }
</style>
</head>
<body>
<h1>{{.Title}}</h1>
<p class="meta">Customer #{{.Customer.ID}} &middot; User #{{.User.ID}}</p>
<table>
<thead>
<tr class="header"><th colspan="3">Date / Project / Task</th><th>Duration</th><th>Rate</th><th>Total</th>{{range .SpanHeaders}}<th class="span">{{.}}</th>{{end}}</tr>
</thead>
<tbody>
{{range .Rows}}{{if .IsDateHeader}}<tr><th class="date-header" colspan="{{$.TotalColumns}}">{{.Label}}</th></tr>
{{else if .IsProjectHeader}}<tr><th></th><th class="project-header" colspan="{{$.ProjectColumns}}">{{.Label}}</th></tr>
{{else if .IsTask}}<tr><td></td><td></td><td class="task">{{.Label}}</td><td class="duration">{{.Duration}}</td><td class="rate">{{.Rate}}</td><td class="amount">{{.Amount}}</td>{{range .Spans}}<td class="span">{{.}}</td>{{end}}</tr>
{{else}}<tr class="total"><td colspan="3">Total</td><td class="duration">{{.Duration}}</td><td></td><td class="amount">{{.Amount}}</td><td colspan="{{$.SpanColumns}}"></td></tr>
{{end}}{{end}}</tbody>
</table>
</body>
</html>
`

var reportTemplate = template.Must(template.New("timesheet").Parse(reportHTML))

type reportData struct {
	Title          string
	Customer       model.Customer
	User           model.User
	SpanHeaders    []string
	SpanColumns    int
	TotalColumns   int
	ProjectColumns int
	Rows           []Row
}

// Render produces the timesheet document for the given customer and user.
// It is a pure function of its inputs: identical rows yield identical bytes.
func Render(customer model.Customer, user model.User, rows []Row, spanColumns int) (string, error) {
	if spanColumns <= 0 {
		spanColumns = DefaultSpanColumns
	}
	headers := make([]string, spanColumns)
	for i := range headers {
		headers[i] = fmt.Sprintf("Span %d", i+1)
	}

	data := reportData{
		Title:          fmt.Sprintf("Timesheet for %s", customer.Name),
		Customer:       customer,
		User:           user,
		SpanHeaders:    headers,
		SpanColumns:    spanColumns,
		TotalColumns:   6 + spanColumns,
		ProjectColumns: 5 + spanColumns,
		Rows:           rows,
	}

	var buf bytes.Buffer
	if err := reportTemplate.Execute(&buf, data); err != nil {
		return "", fmt.Errorf("rendering timesheet: %w", err)
	}
	return buf.String(), nil
}

// WriteFile writes the document to path, creating parent directories as
// needed. The write is atomic: temp file first, then rename.
func WriteFile(path, doc string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("creating output directory: %w", err)
	}
	tmpPath := path + ".tmp"
	if err := os.WriteFile(tmpPath, []byte(doc), 0o644); err != nil {
		return fmt.Errorf("writing temp file: %w", err)
	}
	if err := os.Rename(tmpPath, path); err != nil {
		_ = os.Remove(tmpPath)
		return fmt.Errorf("saving report file: %w", err)
	}
	return nil
}
