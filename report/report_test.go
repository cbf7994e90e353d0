package report

import (
	"bytes"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/utkarsh5026/seqpar/activity"
	"github.com/utkarsh5026/seqpar/compare"
	"github.com/utkarsh5026/seqpar/task"
	"gopkg.in/yaml.v3"
)

func sampleReport() compare.ComparisonReport {
	results := []task.Result{
		{TaskID: "task-1", DurationMs: 1000, Elapsed: 1001 * time.Millisecond},
		{TaskID: "task-2", DurationMs: 500, Elapsed: 502 * time.Millisecond},
		{TaskID: "task-3", DurationMs: 1500, Elapsed: 1500 * time.Millisecond},
	}
	return compare.ComparisonReport{
		RunID:     "6f1c2a4e-0000-4000-8000-000000000001",
		StartedAt: time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC),
		Sequential: compare.ExecutionReport{
			Strategy:    compare.StrategySequential,
			Results:     results,
			TotalTimeMs: 3010,
			Elapsed:     3010 * time.Millisecond,
		},
		Parallel: compare.ExecutionReport{
			Strategy:    compare.StrategyParallel,
			Results:     results,
			TotalTimeMs: 1502,
			Elapsed:     1502 * time.Millisecond,
		},
		TimeDifferenceMs: 1508,
	}
}

func TestComparison_Table(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, NewRenderer(&buf, FormatTable).Comparison(sampleReport()))

	out := buf.String()
	for _, want := range []string{"SEQUENTIAL vs PARALLEL", "task-1", "task-2", "task-3", "3.01s", "1.50s", "1508ms faster"} {
		assert.Contains(t, out, want)
	}
}

func TestComparison_NotFaster(t *testing.T) {
	rep := sampleReport()
	rep.TimeDifferenceMs = -3

	var buf bytes.Buffer
	require.NoError(t, NewRenderer(&buf, "").Comparison(rep))
	assert.Contains(t, buf.String(), "not faster")
}

func TestComparison_JSON(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, NewRenderer(&buf, FormatJSON).Comparison(sampleReport()))

	var decoded compare.ComparisonReport
	require.NoError(t, json.Unmarshal(buf.Bytes(), &decoded))
	assert.Equal(t, sampleReport(), decoded)
}

func TestComparison_YAML(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, NewRenderer(&buf, FormatYAML).Comparison(sampleReport()))

	var decoded map[string]any
	require.NoError(t, yaml.Unmarshal(buf.Bytes(), &decoded))
	assert.Equal(t, 1508, decoded["time_difference_ms"])
	assert.Equal(t, "6f1c2a4e-0000-4000-8000-000000000001", decoded["run_id"])

	seq, ok := decoded["sequential"].(map[string]any)
	require.True(t, ok)
	assert.Equal(t, "sequential", seq["strategy"])
	assert.Len(t, seq["results"], 3)
}

func TestExecution_Table(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, NewRenderer(&buf, FormatTable).Execution(sampleReport().Parallel))

	out := buf.String()
	assert.Contains(t, out, "PARALLEL EXECUTION")
	assert.Contains(t, out, "task-3")
	assert.Contains(t, out, "Total time: 1.50s")
}

func TestActivity_Render(t *testing.T) {
	s := activity.Summary{
		User:         activity.User{ID: 1, Name: "John Doe", Email: "john@example.com"},
		LatestPost:   activity.Post{ID: "post1", Title: "First Post"},
		Comments:     []activity.Comment{{ID: "comment1", Text: "Great post!"}},
		Notification: activity.Notification{Sent: true},
		Elapsed:      5 * time.Second,
	}

	var buf bytes.Buffer
	require.NoError(t, NewRenderer(&buf, FormatTable).Activity(s))
	assert.Contains(t, buf.String(), "John Doe <john@example.com>")
	assert.Contains(t, buf.String(), "First Post")

	buf.Reset()
	require.NoError(t, NewRenderer(&buf, FormatJSON).Activity(s))
	assert.Contains(t, buf.String(), `"latest_post"`)
}

func TestFailure(t *testing.T) {
	var buf bytes.Buffer
	NewRenderer(&buf, FormatTable).Failure(errors.New("task task-2 failed"))
	assert.Contains(t, buf.String(), "task task-2 failed")

	buf.Reset()
	NewRenderer(&buf, FormatJSON).Failure(errors.New("ignored"))
	assert.Empty(t, buf.String())
}

func TestSummarize(t *testing.T) {
	a := sampleReport()
	b := sampleReport()
	b.Sequential.TotalTimeMs = 3020
	b.Parallel.TotalTimeMs = 1512
	b.TimeDifferenceMs = 1508

	s := Summarize([]compare.ComparisonReport{a, b})
	assert.Equal(t, 2, s.Iterations)
	assert.Equal(t, Stats{Min: 3010, Avg: 3015, Max: 3020}, s.SequentialMs)
	assert.Equal(t, Stats{Min: 1502, Avg: 1507, Max: 1512}, s.ParallelMs)
	assert.Equal(t, Stats{Min: 1508, Avg: 1508, Max: 1508}, s.TimeDifferenceMs)
	assert.InDelta(t, 3010.0/1502.0, s.Speedup.Avg, 1e-9)

	assert.Equal(t, Summary{}, Summarize(nil))

	var buf bytes.Buffer
	require.NoError(t, NewRenderer(&buf, FormatTable).Summary(s))
	assert.Contains(t, buf.String(), "SUMMARY OVER 2 ITERATIONS")
}

func TestIterations(t *testing.T) {
	reports := []compare.ComparisonReport{sampleReport(), sampleReport()}

	var buf bytes.Buffer
	require.NoError(t, NewRenderer(&buf, FormatJSON).Iterations(reports))

	var decoded struct {
		Reports []compare.ComparisonReport `json:"reports"`
		Summary Summary                    `json:"summary"`
	}
	require.NoError(t, json.Unmarshal(buf.Bytes(), &decoded))
	assert.Len(t, decoded.Reports, 2)
	assert.Equal(t, 2, decoded.Summary.Iterations)

	buf.Reset()
	require.NoError(t, NewRenderer(&buf, FormatTable).Iterations(reports))
	assert.Contains(t, buf.String(), "SUMMARY OVER 2 ITERATIONS")
}

func TestParseFormat(t *testing.T) {
	tests := []struct {
		in      string
		want    Format
		wantErr bool
	}{
		{"table", FormatTable, false},
		{"json", FormatJSON, false},
		{"yaml", FormatYAML, false},
		{"yml", FormatYAML, false},
		{"xml", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseFormat(tt.in)
			if tt.wantErr {
				assert.ErrorIs(t, err, ErrUnknownFormat)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestFormatLatency(t *testing.T) {
	tests := []struct {
		in   time.Duration
		want string
	}{
		{0, "0"},
		{500 * time.Nanosecond, "500ns"},
		{2 * time.Microsecond, "2µs"},
		{1500 * time.Microsecond, "1.50ms"},
		{250 * time.Millisecond, "250ms"},
		{1500 * time.Millisecond, "1.50s"},
		{-2 * time.Millisecond, "-2ms"},
		{-1500 * time.Millisecond, "-1.50s"},
		{-500 * time.Nanosecond, "-500ns"},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, FormatLatency(tt.in))
	}
}

func TestSummary_NegativeDifference(t *testing.T) {
	s := Summary{
		Iterations:       2,
		SequentialMs:     Stats{Min: 1, Avg: 1, Max: 1},
		ParallelMs:       Stats{Min: 1, Avg: 2, Max: 4},
		TimeDifferenceMs: Stats{Min: -3, Avg: -1, Max: 1},
		Speedup:          Stats{Min: 0.25, Avg: 0.6, Max: 1},
	}

	var buf bytes.Buffer
	require.NoError(t, NewRenderer(&buf, FormatTable).Summary(s))

	out := buf.String()
	assert.Contains(t, out, "-3ms")
	assert.Contains(t, out, "-1ms")
	assert.NotContains(t, out, "000ns")
}

func TestFormatMs_Negative(t *testing.T) {
	assert.Equal(t, "-2ms", FormatMs(-2))
	assert.Equal(t, "-3.01s", FormatMs(-3010))
}
