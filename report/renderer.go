// Package report renders comparison results as a coloured table, JSON or
// YAML.
package report

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/olekukonko/tablewriter"
	"github.com/utkarsh5026/seqpar/activity"
	"github.com/utkarsh5026/seqpar/compare"
	"gopkg.in/yaml.v3"
)

// Format selects the output encoding.
type Format string

const (
	FormatTable Format = "table"
	FormatJSON  Format = "json"
	FormatYAML  Format = "yaml"
)

// ErrUnknownFormat is returned by ParseFormat.
var ErrUnknownFormat = errors.New("unknown output format")

// ParseFormat converts a flag value into a Format.
func ParseFormat(s string) (Format, error) {
	switch Format(s) {
	case FormatTable, FormatJSON, FormatYAML:
		return Format(s), nil
	case "yml":
		return FormatYAML, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrUnknownFormat, s)
	}
}

// Renderer writes reports to w in one format.
type Renderer struct {
	w      io.Writer
	format Format
}

// NewRenderer creates a renderer. An empty format means FormatTable.
func NewRenderer(w io.Writer, format Format) *Renderer {
	if format == "" {
		format = FormatTable
	}
	return &Renderer{w: w, format: format}
}

// Comparison renders a full sequential vs parallel report.
func (r *Renderer) Comparison(rep compare.ComparisonReport) error {
	if r.format != FormatTable {
		return r.encode(rep)
	}

	printSectionHeader(r.w, "SEQUENTIAL vs PARALLEL",
		fmt.Sprintf("Run %s, started %s", rep.RunID, rep.StartedAt.Format(time.RFC3339)))

	tasks := tablewriter.NewWriter(r.w)
	tasks.Header("Task", "Requested", "Sequential", "Parallel")
	for i, res := range rep.Sequential.Results {
		parallel := "-"
		if i < len(rep.Parallel.Results) {
			parallel = FormatLatency(rep.Parallel.Results[i].Elapsed.Round(time.Millisecond))
		}
		_ = tasks.Append(
			res.TaskID,
			FormatMs(res.DurationMs),
			FormatLatency(res.Elapsed.Round(time.Millisecond)),
			parallel,
		)
	}
	if err := tasks.Render(); err != nil {
		return fmt.Errorf("render task table: %w", err)
	}
	_, _ = fmt.Fprintln(r.w)

	totals := tablewriter.NewWriter(r.w)
	totals.Header("Strategy", "Total Time", "vs Parallel")
	_ = totals.Append(
		rep.Sequential.Strategy.String(),
		FormatMs(rep.Sequential.TotalTimeMs),
		fmt.Sprintf("%.2fx", rep.Speedup()),
	)
	_ = totals.Append(
		rep.Parallel.Strategy.String(),
		FormatMs(rep.Parallel.TotalTimeMs),
		"baseline",
	)
	if err := totals.Render(); err != nil {
		return fmt.Errorf("render totals table: %w", err)
	}

	_, _ = fmt.Fprintln(r.w)
	if rep.TimeDifferenceMs > 0 {
		colorPrintf(r.w, Green, "✅ Parallel execution was %dms faster\n", rep.TimeDifferenceMs)
	} else {
		colorPrintf(r.w, Yellow, "⚠️  Parallel execution was not faster (difference %dms)\n", rep.TimeDifferenceMs)
	}
	return nil
}

// Execution renders the report of a single strategy.
func (r *Renderer) Execution(rep compare.ExecutionReport) error {
	if r.format != FormatTable {
		return r.encode(rep)
	}

	printSectionHeader(r.w, fmt.Sprintf("%s EXECUTION", strings.ToUpper(rep.Strategy.String())))

	table := tablewriter.NewWriter(r.w)
	table.Header("#", "Task", "Requested", "Elapsed")
	for i, res := range rep.Results {
		_ = table.Append(
			fmt.Sprintf("%d", i+1),
			res.TaskID,
			FormatMs(res.DurationMs),
			FormatLatency(res.Elapsed.Round(time.Millisecond)),
		)
	}
	if err := table.Render(); err != nil {
		return fmt.Errorf("render execution table: %w", err)
	}

	_, _ = fmt.Fprintln(r.w)
	colorPrintf(r.w, Cyan, "Total time: %s\n", FormatMs(rep.TotalTimeMs))
	return nil
}

// Summary renders aggregated statistics over several iterations.
func (r *Renderer) Summary(s Summary) error {
	if r.format != FormatTable {
		return r.encode(s)
	}

	printSectionHeader(r.w, fmt.Sprintf("SUMMARY OVER %d ITERATIONS", s.Iterations))

	table := tablewriter.NewWriter(r.w)
	table.Header("Metric", "Min", "Avg", "Max")
	rows := []struct {
		name  string
		stats Stats
		ms    bool
	}{
		{"Sequential", s.SequentialMs, true},
		{"Parallel", s.ParallelMs, true},
		{"Difference", s.TimeDifferenceMs, true},
		{"Speedup", s.Speedup, false},
	}
	for _, row := range rows {
		_ = table.Append(row.name, formatStat(row.stats.Min, row.ms), formatStat(row.stats.Avg, row.ms), formatStat(row.stats.Max, row.ms))
	}
	if err := table.Render(); err != nil {
		return fmt.Errorf("render summary table: %w", err)
	}
	return nil
}

// Iterations renders every comparison of a repeated run followed by their
// aggregate. Structured formats emit a single document holding both.
func (r *Renderer) Iterations(reports []compare.ComparisonReport) error {
	summary := Summarize(reports)
	if r.format != FormatTable {
		return r.encode(struct {
			Reports []compare.ComparisonReport `json:"reports" yaml:"reports"`
			Summary Summary                    `json:"summary" yaml:"summary"`
		}{reports, summary})
	}

	for _, rep := range reports {
		if err := r.Comparison(rep); err != nil {
			return err
		}
	}
	return r.Summary(summary)
}

// Activity renders the outcome of the dependent lookup workflow.
func (r *Renderer) Activity(s activity.Summary) error {
	if r.format != FormatTable {
		return r.encode(s)
	}

	printSectionHeader(r.w, "USER ACTIVITY WORKFLOW")

	table := tablewriter.NewWriter(r.w)
	table.Header("Field", "Value")
	_ = table.Append("User", fmt.Sprintf("%s <%s>", s.User.Name, s.User.Email))
	_ = table.Append("Latest post", s.LatestPost.Title)
	_ = table.Append("Comments", fmt.Sprintf("%d", len(s.Comments)))
	_ = table.Append("Activity logged", s.Activity.Timestamp.Format(time.RFC3339))
	_ = table.Append("Notification sent", fmt.Sprintf("%t", s.Notification.Sent))
	_ = table.Append("Elapsed", FormatLatency(s.Elapsed.Round(time.Millisecond)))
	if err := table.Render(); err != nil {
		return fmt.Errorf("render activity table: %w", err)
	}

	_, _ = fmt.Fprintln(r.w)
	colorPrintLn(r.w, Green, "✅ Process completed successfully!")
	return nil
}

// Failure prints an error in the table format and is a no-op otherwise, so
// machine-readable output stays parseable.
func (r *Renderer) Failure(err error) {
	if r.format != FormatTable || err == nil {
		return
	}
	_, _ = fmt.Fprintln(r.w)
	colorPrintf(r.w, Red, "❌ %v\n", err)
}

func (r *Renderer) encode(v any) error {
	switch r.format {
	case FormatJSON:
		enc := json.NewEncoder(r.w)
		enc.SetIndent("", "  ")
		return enc.Encode(v)
	case FormatYAML:
		enc := yaml.NewEncoder(r.w)
		enc.SetIndent(2)
		if err := enc.Encode(v); err != nil {
			return err
		}
		return enc.Close()
	default:
		return fmt.Errorf("%w: %q", ErrUnknownFormat, r.format)
	}
}

func formatStat(v float64, ms bool) string {
	if ms {
		return FormatMs(int64(v))
	}
	return fmt.Sprintf("%.2fx", v)
}
