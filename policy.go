package threadpool

import (
	"math"
	"time"
)

type (
	// ScalePolicy decides how many workers the pool should run for the
	// workload described by a LoadSample. The monitor consults it on every
	// tick and resizes the pool whenever the answer differs from the
	// current size.
	ScalePolicy interface {
		// DesiredWorkers returns the worker count the pool should converge
		// to. Values outside [sample.MinWorkers, sample.MaxWorkers] are
		// clamped by the resize path, so implementations may return raw
		// targets.
		DesiredWorkers(sample LoadSample) int
	}

	// LoadSample is one observation of pool load.
	LoadSample struct {
		ActiveWorkers  int
		QueueDepth     int
		AvgExecTime    time.Duration // mean over the rolling window
		RecentExecTime time.Duration // mean of the newest samples, 0 until enough exist
		MinWorkers     int
		MaxWorkers     int
	}
)

var _ ScalePolicy = &factorPolicy{}

type factorPolicy struct {
	factor        float64
	downThreshold float64
}

// NewFactorPolicy returns the default scaling policy.
//
// The policy grows the pool geometrically when it sees pressure and shrinks
// it geometrically when the queue runs near-empty:
//   - scale up to round(active*factor) when the queue holds more than twice
//     as many items as there are workers, or when the recent execution-time
//     average has drifted above factor times the long-run average;
//   - scale down to round(active/factor) when the pool is above MinWorkers
//     and the queue depth has fallen below downThreshold*active;
//   - otherwise keep the current size.
//
// Out-of-range arguments fall back to the defaults (factor 1.5, threshold
// 0.3) instead of failing, matching the config loader.
func NewFactorPolicy(factor, downThreshold float64) ScalePolicy {
	if factor <= 1.0 {
		factor = defaultScalingFactor
	}
	if downThreshold <= 0 || downThreshold >= 1 {
		downThreshold = defaultScaleDownThreshold
	}
	return &factorPolicy{
		factor:        factor,
		downThreshold: downThreshold,
	}
}

func (p *factorPolicy) DesiredWorkers(s LoadSample) int {
	if p.shouldScaleUp(s) {
		return int(math.Round(float64(s.ActiveWorkers) * p.factor))
	}
	if p.shouldScaleDown(s) {
		return int(math.Round(float64(s.ActiveWorkers) / p.factor))
	}
	return s.ActiveWorkers
}

// shouldScaleUp fires on a deep backlog or on the newest runs slowing down
// against the long-run average.
func (p *factorPolicy) shouldScaleUp(s LoadSample) bool {
	if s.QueueDepth > 2*s.ActiveWorkers {
		return true
	}
	// RecentExecTime is 0 while too few samples exist; no trend signal yet.
	return s.RecentExecTime > 0 &&
		float64(s.RecentExecTime) > float64(s.AvgExecTime)*p.factor
}

func (p *factorPolicy) shouldScaleDown(s LoadSample) bool {
	return s.ActiveWorkers > s.MinWorkers &&
		float64(s.QueueDepth) < float64(s.ActiveWorkers)*p.downThreshold
}
