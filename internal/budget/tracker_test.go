package budget

import (
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func fixedClock(t time.Time) func() time.Time {
	return func() time.Time { return t }
}

// The tracker guards the daily budget only; prompt sizing caps individual
// requests elsewhere. A large estimate that fits the day must be accepted.
func TestCheckAndReserveLargeEstimateWithinDailyBudget(t *testing.T) {
	tr := New(100000, 0.8)
	assert.True(t, tr.CheckAndReserve(5000))
}

func TestCheckAndReserveAfterRollover(t *testing.T) {
	now := time.Date(2025, 3, 10, 23, 0, 0, 0, time.UTC)
	tr := NewWithClock(100000, 0.8, func() time.Time { return now })
	tr.Commit(100000)
	assert.False(t, tr.CheckAndReserve(5000))

	now = now.Add(2 * time.Hour)
	assert.True(t, tr.CheckAndReserve(5000))
}

func TestCheckAndReserveDailyLimit(t *testing.T) {
	tr := New(2000, 0.8)
	tr.Commit(1900)
	assert.True(t, tr.CheckAndReserve(100))
	assert.False(t, tr.CheckAndReserve(101))
}

func TestCommitWarnsAtThreshold(t *testing.T) {
	tr := New(1000, 0.8)
	assert.False(t, tr.Commit(799))
	assert.True(t, tr.Commit(1))
	assert.True(t, tr.Commit(500))
}

func TestDailyStats(t *testing.T) {
	tr := New(10000, 0.8)
	tr.Commit(500)
	tr.Commit(1500)

	s := tr.DailyStats()
	assert.Equal(t, 2000, s.TokensUsed)
	assert.Equal(t, 10000, s.TokensLimit)
	assert.InDelta(t, 20.0, s.UsagePercentage, 0.001)
	assert.Equal(t, 2, s.CallsToday)
}

func TestIsExceeded(t *testing.T) {
	tr := New(1000, 0.8)
	assert.False(t, tr.IsExceeded())
	tr.Commit(1000)
	assert.True(t, tr.IsExceeded())
}

func TestDayRolloverResetsCounters(t *testing.T) {
	now := time.Date(2025, 3, 10, 23, 0, 0, 0, time.UTC)
	tr := NewWithClock(1000, 0.8, func() time.Time { return now })
	tr.Commit(1000)
	assert.True(t, tr.IsExceeded())

	now = now.Add(2 * time.Hour)
	assert.False(t, tr.IsExceeded())

	s := tr.DailyStats()
	assert.Zero(t, s.TokensUsed)
	assert.Zero(t, s.CallsToday)
}

func TestClockMovingBackwardsKeepsAnchor(t *testing.T) {
	now := time.Date(2025, 3, 11, 1, 0, 0, 0, time.UTC)
	tr := NewWithClock(1000, 0.8, func() time.Time { return now })
	tr.Commit(400)

	now = now.Add(-3 * time.Hour)
	assert.Equal(t, 400, tr.DailyStats().TokensUsed)
}

func TestConcurrentCommits(t *testing.T) {
	tr := New(1_000_000, 0.99)
	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			tr.Commit(10)
		}()
	}
	wg.Wait()
	assert.Equal(t, 500, tr.DailyStats().TokensUsed)
}

func TestNewWithClockUsesInjectedClock(t *testing.T) {
	anchor := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	tr := NewWithClock(1000, 0.8, fixedClock(anchor))
	tr.Commit(100)
	assert.Equal(t, 100, tr.DailyStats().TokensUsed)
}
