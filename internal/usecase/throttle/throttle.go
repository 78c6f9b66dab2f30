// Package throttle implements the per-client request limiter guarding scoring.
//
// It is a fixed-window counter with carry-over decay rather than an exact
// sliding log: when the window rolls, keys above 75% of the limit keep half
// their count and every other key is forgiven. Memory is O(active keys) and no
// per-request history is kept.
package throttle

import (
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/kailas-cloud/semantle/internal/metrics"
)

// Defaults match the public deployment.
const (
	DefaultLimit  = 10
	DefaultPeriod = 20 * time.Second
)

// Throttle counts requests per key within the current window.
type Throttle struct {
	mu        sync.Mutex
	limit     int
	periodSec int64
	counts    map[string]int
	timeframe int64
	now       func() time.Time
	logger    *zap.Logger
}

// New creates a throttle admitting limit requests per key per period.
func New(limit int, period time.Duration, logger *zap.Logger) *Throttle {
	if limit <= 0 {
		limit = DefaultLimit
	}
	sec := int64(period / time.Second)
	if sec <= 0 {
		sec = int64(DefaultPeriod / time.Second)
	}
	return &Throttle{
		limit:     limit,
		periodSec: sec,
		counts:    make(map[string]int),
		now:       time.Now,
		logger:    logger,
	}
}

// WithClock overrides the wall clock.
func (t *Throttle) WithClock(now func() time.Time) *Throttle {
	t.now = now
	return t
}

// Limited records one request for key and reports whether key is now over the limit.
func (t *Throttle) Limited(key string) bool {
	t.mu.Lock()
	defer t.mu.Unlock()

	now := t.now().Unix()
	window := now - now%t.periodSec
	if window != t.timeframe {
		t.roll()
		t.timeframe = window
	}

	t.counts[key]++
	limited := t.counts[key] > t.limit
	if limited {
		metrics.ThrottleRejectionsTotal.Inc()
		t.logger.Debug("Request throttled", zap.String("key", key), zap.Int("count", t.counts[key]))
	}
	return limited
}

// roll decays every counter for a new window. Caller holds mu.
func (t *Throttle) roll() {
	// count > 0.75*limit, kept in integers.
	for key, count := range t.counts {
		if 4*count > 3*t.limit {
			count /= 2
		} else {
			count = 0
		}
		if count == 0 {
			delete(t.counts, key)
			continue
		}
		t.counts[key] = count
	}
}

// Count returns the current counter of key.
func (t *Throttle) Count(key string) int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.counts[key]
}
