// Package budget enforces the daily token ceiling for LLM calls. The
// per-request ceiling is a prompt-sizing concern and lives with the
// extractor's prompt truncation, not here.
package budget

import (
	"sync"
	"time"
)

// Stats is a snapshot of the current day's consumption.
type Stats struct {
	TokensUsed      int     `json:"tokens_used"`
	TokensLimit     int     `json:"tokens_limit"`
	UsagePercentage float64 `json:"usage_percentage"`
	CallsToday      int     `json:"calls_today"`
}

// Tracker accounts tokens against a daily limit. The counter resets when the
// UTC day changes. Safe for concurrent use.
type Tracker struct {
	mu sync.Mutex

	dailyLimit     int
	alertThreshold float64
	now            func() time.Time

	day        time.Time
	tokensUsed int
	calls      int
}

// New returns a Tracker using wall-clock time.
func New(dailyLimit int, alertThreshold float64) *Tracker {
	return NewWithClock(dailyLimit, alertThreshold, time.Now)
}

// NewWithClock is New with an injected clock, for tests.
func NewWithClock(dailyLimit int, alertThreshold float64, now func() time.Time) *Tracker {
	t := &Tracker{
		dailyLimit:     dailyLimit,
		alertThreshold: alertThreshold,
		now:            now,
	}
	t.day = now().UTC().Truncate(24 * time.Hour)
	return t
}

// CheckAndReserve reports whether a call estimated at estimatedTokens fits
// what remains of today's budget. It does not consume tokens; callers commit
// actual usage afterwards.
func (t *Tracker) CheckAndReserve(estimatedTokens int) bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.rolloverLocked()
	return t.tokensUsed+estimatedTokens <= t.dailyLimit
}

// Commit records the actual token usage of a completed call. It returns true
// when consumption has crossed the alert threshold and the caller should warn.
func (t *Tracker) Commit(actualTokens int) bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.rolloverLocked()

	t.tokensUsed += actualTokens
	t.calls++
	return t.dailyLimit > 0 && float64(t.tokensUsed)/float64(t.dailyLimit) >= t.alertThreshold
}

// DailyStats returns a snapshot of today's consumption.
func (t *Tracker) DailyStats() Stats {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.rolloverLocked()

	s := Stats{
		TokensUsed:  t.tokensUsed,
		TokensLimit: t.dailyLimit,
		CallsToday:  t.calls,
	}
	if t.dailyLimit > 0 {
		s.UsagePercentage = float64(t.tokensUsed) / float64(t.dailyLimit) * 100
	}
	return s
}

// IsExceeded reports whether today's budget is fully spent.
func (t *Tracker) IsExceeded() bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.rolloverLocked()
	return t.tokensUsed >= t.dailyLimit
}

// rolloverLocked resets the counters when the UTC day has advanced past the
// anchored one. Clocks moving backwards are ignored.
func (t *Tracker) rolloverLocked() {
	today := t.now().UTC().Truncate(24 * time.Hour)
	if today.After(t.day) {
		t.day = today
		t.tokensUsed = 0
		t.calls = 0
	}
}
