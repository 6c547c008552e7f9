package cli

import (
	"bytes"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ericfisherdev/repotrend/internal/application"
	"github.com/ericfisherdev/repotrend/internal/domain/model"
)

func day(s string) time.Time {
	d, err := model.ParseDay(s)
	if err != nil {
		panic(err)
	}
	return d
}

func TestRenderer_Summary(t *testing.T) {
	var buf bytes.Buffer
	err := NewRenderer(&buf, false).Summary(application.RunSummary{
		Mode:          "backfill",
		DaysProcessed: 30,
		DaysFailed:    2,
		RowsCollected: 1450,
		SlotsLabeled:  23,
		Trending:      120,
		Duration:      90 * time.Second,
	})
	require.NoError(t, err)

	out := buf.String()
	assert.Contains(t, out, "backfill")
	assert.Contains(t, out, "1450")
	assert.Contains(t, out, "1m30s")
	assert.NotContains(t, out, "\x1b[", "plain output carries no escape codes")
}

func TestRenderer_Slots(t *testing.T) {
	var buf bytes.Buffer
	err := NewRenderer(&buf, false).Slots([]application.SlotStatus{
		{CollectionDate: day("2026-03-01"), Rows: 50, WindowEnd: day("2026-03-08"), DaysAvailable: 7, LookbackDays: 7},
		{CollectionDate: day("2026-03-05"), Rows: 48, WindowEnd: day("2026-03-12"), DaysAvailable: 3, LookbackDays: 7},
	})
	require.NoError(t, err)

	out := buf.String()
	assert.Contains(t, out, "2026-03-01")
	assert.Contains(t, out, "ready")
	assert.Contains(t, out, "3/7")
	assert.Contains(t, out, "waiting")
}

func TestRenderer_SlotsEmpty(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, NewRenderer(&buf, false).Slots(nil))
	assert.Contains(t, buf.String(), "No collected slots")
}

func TestRenderer_HistoryMarksGaps(t *testing.T) {
	var buf bytes.Buffer
	err := NewRenderer(&buf, false).History([]model.HistoryDay{
		{Day: day("2026-03-01"), Source: "backfill", Candidates: 50},
		{Day: day("2026-03-03"), Source: "daily", Candidates: 25},
	}, day("2026-03-01"), day("2026-03-03"))
	require.NoError(t, err)

	out := buf.String()
	assert.Contains(t, out, "2026-03-02")
	assert.Contains(t, out, "missing")
	assert.Contains(t, out, "daily")
}

func TestRenderer_Colors(t *testing.T) {
	var buf bytes.Buffer
	err := NewRenderer(&buf, true).Label(application.LabelResult{
		CollectionDate: day("2026-03-01"), Rows: 2, Trending: 1, NotTrending: 1,
	})
	require.NoError(t, err)
	assert.Contains(t, buf.String(), "\x1b[")
}
