// Package cli renders pipeline results for the terminal.
package cli

import (
	"fmt"
	"io"
	"strconv"
	"time"

	"github.com/fatih/color"
	"github.com/olekukonko/tablewriter"
	"github.com/olekukonko/tablewriter/tw"

	"github.com/ericfisherdev/repotrend/internal/application"
	"github.com/ericfisherdev/repotrend/internal/domain/model"
)

// Renderer writes tables to w, optionally colorized.
type Renderer struct {
	w                  io.Writer
	ok, warn, bad, dim func(...any) string
}

// NewRenderer creates a Renderer. With useColors false every cell is plain text.
func NewRenderer(w io.Writer, useColors bool) *Renderer {
	r := &Renderer{w: w, ok: fmt.Sprint, warn: fmt.Sprint, bad: fmt.Sprint, dim: fmt.Sprint}
	if useColors {
		r.ok = colorFunc(color.FgGreen)
		r.warn = colorFunc(color.FgYellow)
		r.bad = colorFunc(color.FgRed)
		r.dim = colorFunc(color.Faint)
	}
	return r
}

// colorFunc forces color on so output stays colored when piped through a
// pager; callers decide whether color is wanted at all.
func colorFunc(attr color.Attribute) func(...any) string {
	c := color.New(attr)
	c.EnableColor()
	return c.SprintFunc()
}

func (r *Renderer) table(headers []string, data [][]string) error {
	table := tablewriter.NewWriter(r.w)
	table.Header(headers)
	table.Configure(func(cfg *tablewriter.Config) {
		cfg.Row.Alignment.Global = tw.AlignRight
	})

	if err := table.Bulk(data); err != nil {
		return err
	}
	return table.Render()
}

// Summary renders a run summary as a metric/value table.
func (r *Renderer) Summary(s application.RunSummary) error {
	failed := strconv.Itoa(s.DaysFailed)
	if s.DaysFailed > 0 {
		failed = r.bad(failed)
	}

	data := [][]string{
		{"mode", s.Mode},
		{"days processed", strconv.Itoa(s.DaysProcessed)},
		{"days failed", failed},
		{"rows collected", strconv.Itoa(s.RowsCollected)},
		{"repos dropped", strconv.Itoa(s.ReposDropped)},
		{"slots labeled", r.ok(strconv.Itoa(s.SlotsLabeled))},
		{"slots deferred", strconv.Itoa(s.SlotsDeferred)},
		{"trending", strconv.Itoa(s.Trending)},
		{"not trending", strconv.Itoa(s.NotTrending)},
		{"duration", s.Duration.Round(time.Millisecond).String()},
	}
	return r.table([]string{"Metric", "Value"}, data)
}

// Slots renders the collected slots and how far their windows have closed.
func (r *Renderer) Slots(slots []application.SlotStatus) error {
	if len(slots) == 0 {
		_, err := fmt.Fprintln(r.w, "No collected slots awaiting labels.")
		return err
	}

	data := make([][]string, 0, len(slots))
	for _, s := range slots {
		state := r.warn("waiting")
		if s.Ready() {
			state = r.ok("ready")
		}
		data = append(data, []string{
			model.FormatDay(s.CollectionDate),
			strconv.Itoa(s.Rows),
			model.FormatDay(s.WindowEnd),
			fmt.Sprintf("%d/%d", s.DaysAvailable, s.LookbackDays),
			state,
		})
	}
	return r.table([]string{"Collected", "Rows", "Window End", "History", "State"}, data)
}

// History renders the recorded candidate days between from and to, with a
// gap row for every day that has no list.
func (r *Renderer) History(days []model.HistoryDay, from, to time.Time) error {
	byDay := make(map[string]model.HistoryDay, len(days))
	for _, d := range days {
		byDay[model.FormatDay(d.Day)] = d
	}

	var data [][]string
	for d := model.Day(from); !d.After(to); d = model.AddDays(d, 1) {
		key := model.FormatDay(d)
		h, ok := byDay[key]
		if !ok {
			data = append(data, []string{key, r.bad("missing"), r.dim("-")})
			continue
		}
		data = append(data, []string{key, h.Source, strconv.Itoa(h.Candidates)})
	}
	return r.table([]string{"Day", "Source", "Candidates"}, data)
}

// Label renders the outcome of a single-slot labeling.
func (r *Renderer) Label(res application.LabelResult) error {
	data := [][]string{{
		model.FormatDay(res.CollectionDate),
		strconv.Itoa(res.Rows),
		r.ok(strconv.Itoa(res.Trending)),
		strconv.Itoa(res.NotTrending),
	}}
	return r.table([]string{"Collected", "Rows", "Trending", "Not Trending"}, data)
}
