// Package report turns a flat list of time events into a rendered HTML
// timesheet: a single grouping pass produces display rows, which a fixed
// template serializes.
package report

import (
	"sort"
	"time"

	"github.com/gpc/timesheets/internal/model"
	"github.com/gpc/timesheets/internal/timecalc"
)

// RowKind discriminates the row descriptors the aggregator emits.
type RowKind int

const (
	RowDateHeader RowKind = iota
	RowProjectHeader
	RowTask
	RowTotal
)

// Row is one line of the timesheet, in display order.
type Row struct {
	Kind     RowKind
	Label    string   // date text, project name, or task label
	Duration string   // HH:MM on task rows, H:MM on the total row
	Rate     string   // empty when the event carries no rate
	Amount   string
	Spans    []string // exactly SpanColumns entries on task rows
}

func (r Row) IsDateHeader() bool    { return r.Kind == RowDateHeader }
func (r Row) IsProjectHeader() bool { return r.Kind == RowProjectHeader }
func (r Row) IsTask() bool          { return r.Kind == RowTask }

const (
	// DefaultSpanColumns is the number of span cells shown per task row.
	DefaultSpanColumns = 5
	// DefaultDateFormat is the layout for date-header labels.
	DefaultDateFormat = "Monday, 2 January 2006"
	// NoTaskLabel is rendered when an event has no task name.
	NoTaskLabel = "(no task)"
)

// Options configures the aggregation pass. Zero values fall back to the
// package defaults.
type Options struct {
	SpanColumns int
	DateFormat  string
}

// spanSeparator is a non-breaking hyphen so a span never wraps mid-cell.
const spanSeparator = "‑"

func formatSpan(start, end time.Time) string {
	return timecalc.Clock(start) + spanSeparator + timecalc.Clock(end)
}

func taskLabel(e model.TimeEvent) string {
	if e.Task == nil {
		return NoTaskLabel
	}
	return *e.Task
}

// pendingTask accumulates the events of the current (day, project, task) run
// until a grouping boundary flushes it into a task row.
type pendingTask struct {
	label  string
	rate   *float64
	dur    time.Duration
	spans  []string
	events int
}

// Aggregate groups events into display rows: a date header per calendar day,
// a project header per project within a day, one task row per contiguous
// task, and a final grand-total row.
//
// Events are sorted by start time before grouping (stable, so arrival order
// breaks ties); the remote API's ordering is not trusted. Every event's
// duration is validated up front, so a malformed batch produces an error and
// no rows at all.
func Aggregate(events []model.TimeEvent, opts Options) ([]Row, error) {
	if opts.SpanColumns <= 0 {
		opts.SpanColumns = DefaultSpanColumns
	}
	if opts.DateFormat == "" {
		opts.DateFormat = DefaultDateFormat
	}

	sorted := make([]model.TimeEvent, len(events))
	copy(sorted, events)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].Start.Before(sorted[j].Start.Time)
	})

	durations := make([]time.Duration, len(sorted))
	for i, e := range sorted {
		d, err := e.Duration()
		if err != nil {
			return nil, err
		}
		durations[i] = d
	}

	var (
		rows        []Row
		lastDate    time.Time
		lastProject string
		lastTaskID  int64
		haveProject bool
		haveTask    bool
		pending     pendingTask
		grandDur    time.Duration
		grandAmount float64
	)

	flush := func() {
		if pending.events == 0 {
			return
		}
		spans := pending.spans
		for len(spans) < opts.SpanColumns {
			spans = append(spans, "")
		}
		rate := 0.0
		rateCell := ""
		if pending.rate != nil {
			rate = *pending.rate
			rateCell = timecalc.FormatAmount(rate)
		}
		amount := pending.dur.Hours() * rate
		grandAmount += amount
		rows = append(rows, Row{
			Kind:     RowTask,
			Label:    pending.label,
			Duration: timecalc.FormatHoursMinutes(pending.dur),
			Rate:     rateCell,
			Amount:   timecalc.FormatAmount(amount),
			Spans:    spans,
		})
		pending = pendingTask{}
	}

	for i, e := range sorted {
		if !timecalc.SameDay(e.Start.Time, lastDate) {
			flush()
			rows = append(rows, Row{Kind: RowDateHeader, Label: e.Start.Format(opts.DateFormat)})
			lastDate = e.Start.Time
			haveProject = false
		}
		if !haveProject || e.Project != lastProject {
			flush()
			rows = append(rows, Row{Kind: RowProjectHeader, Label: e.Project})
			lastProject = e.Project
			haveProject = true
			haveTask = false
		}
		if !haveTask || e.TaskID != lastTaskID {
			flush()
			lastTaskID = e.TaskID
			haveTask = true
		}

		// Spans beyond the display cap are dropped from view but still
		// count toward the duration and amount.
		if len(pending.spans) < opts.SpanColumns {
			pending.spans = append(pending.spans, formatSpan(e.Start.Time, e.End.Time))
		}
		pending.label = taskLabel(e)
		pending.rate = e.HourlyRate
		pending.dur += durations[i]
		pending.events++
		grandDur += durations[i]
	}
	flush()

	rows = append(rows, Row{
		Kind:     RowTotal,
		Duration: timecalc.FormatTotalHours(grandDur),
		Amount:   timecalc.FormatAmount(grandAmount),
	})
	return rows, nil
}
