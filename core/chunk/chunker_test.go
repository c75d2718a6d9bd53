package chunk

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kilianp07/hems/core/model"
)

func series(start time.Time, n int) []model.HourlyRecord {
	recs := make([]model.HourlyRecord, n)
	for i := range recs {
		recs[i] = model.HourlyRecord{
			Timestamp:      start.Add(time.Duration(i) * time.Hour),
			ConsumptionKWh: float64(i),
			ImportPrice:    1,
		}
	}
	return recs
}

func TestSplit_ConsecutiveDays(t *testing.T) {
	start := time.Date(2024, 3, 1, 20, 0, 0, 0, time.UTC)
	recs := series(start, 4+24*5) // 4 leading hours, then five full days

	windows, err := Split(recs)
	require.NoError(t, err)
	// Five days start at a boundary; only those with 48 records left are emitted.
	require.Len(t, windows, 4)

	for i, w := range windows {
		wantDay := time.Date(2024, 3, 2+i, 0, 0, 0, 0, time.UTC)
		assert.True(t, w.Day.Equal(wantDay), "day %d: got %s", i, w.Day)
		require.Len(t, w.Records, model.HorizonHours)
		for h := 0; h < model.ReportHours; h++ {
			assert.True(t, w.Records[h].Timestamp.Equal(wantDay.Add(time.Duration(h)*time.Hour)))
		}
		assert.NoError(t, w.Validate())
		if i > 0 {
			assert.Equal(t, 24*time.Hour, w.Day.Sub(windows[i-1].Day))
		}
	}
}

func TestSplit_ExactlyTwoDays(t *testing.T) {
	recs := series(time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC), 48)
	windows, err := Split(recs)
	require.NoError(t, err)
	require.Len(t, windows, 1)
	assert.Equal(t, "2024-01-01", windows[0].Name())
}

func TestSplit_NotEnoughLookahead(t *testing.T) {
	recs := series(time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC), 47)
	windows, err := Split(recs)
	require.NoError(t, err)
	assert.Empty(t, windows)
}

func TestNew_Misaligned(t *testing.T) {
	recs := series(time.Date(2024, 1, 1, 1, 0, 0, 0, time.UTC), 20)
	_, err := New(recs)
	var mis *MisalignedSeriesError
	require.True(t, errors.As(err, &mis))
	assert.Equal(t, 20, mis.Records)

	_, err = New(nil)
	require.True(t, errors.As(err, &mis))
}

func TestNew_Gap(t *testing.T) {
	recs := series(time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC), 60)
	recs = append(recs[:30], recs[31:]...)
	_, err := New(recs)
	var gap *GapError
	require.True(t, errors.As(err, &gap))
	assert.Equal(t, 30, gap.Index)
}

func TestChunker_LazyAndRestartable(t *testing.T) {
	recs := series(time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC), 24*4)
	c, err := New(recs)
	require.NoError(t, err)
	assert.Equal(t, 3, c.Len())

	first, ok := c.Next()
	require.True(t, ok)
	_, _ = c.Next()

	all := c.Windows()
	require.Len(t, all, 3)
	assert.True(t, all[0].Day.Equal(first.Day))

	w, ok := c.Next()
	require.True(t, ok)
	assert.Equal(t, "2024-06-03", w.Name())
	_, ok = c.Next()
	assert.False(t, ok)

	c.Reset()
	w, ok = c.Next()
	require.True(t, ok)
	assert.Equal(t, "2024-06-01", w.Name())
}

func TestWithHorizon(t *testing.T) {
	recs := series(time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC), 24*3)
	windows, err := Split(recs, WithHorizon(24))
	require.NoError(t, err)
	require.Len(t, windows, 3)
	assert.Len(t, windows[2].Records, 24)

	_, err = Split(recs, WithHorizon(12))
	assert.Error(t, err)
}
