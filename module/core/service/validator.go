package service

import (
	"sync"
	"sync/atomic"

	"github.com/dispatchly/courier-tracking/module/core/domain"
)

// ValidatorConfig tunes the noise and deduplication filters.
type ValidatorConfig struct {
	// MaxAccuracyM filters samples whose reported accuracy radius exceeds
	// this value. Zero disables the filter.
	MaxAccuracyM float64
	// MinIntervalMs filters samples arriving within this many milliseconds
	// of the last accepted sample.
	MinIntervalMs int64
	// MinDistanceM filters samples within this many meters of the last
	// accepted sample.
	MinDistanceM float64
}

// Outcome is the result of validating one sample. Exactly one of the three
// states holds so callers can surface errors and suppress noise differently.
type Outcome struct {
	Accepted bool
	Filtered bool
	// Reason explains a filtered sample; Err explains a rejected one.
	Reason string
	Err    error
}

// SampleValidator rejects malformed samples and silently filters noisy or
// duplicated ones. Rejections and filters are counted for observability.
type SampleValidator struct {
	cfg ValidatorConfig

	mu           sync.Mutex
	lastAccepted *domain.Coordinate

	rejectedCount int64
	filteredCount int64
}

func NewSampleValidator(cfg ValidatorConfig) *SampleValidator {
	return &SampleValidator{cfg: cfg}
}

// Validate classifies one sample against the configured filters and the
// last accepted sample.
func (v *SampleValidator) Validate(sample domain.Coordinate) Outcome {
	if sample.Lat < -90 || sample.Lat > 90 {
		atomic.AddInt64(&v.rejectedCount, 1)
		return Outcome{Err: &domain.ValidationError{Field: "latitude", Reason: "must be between -90 and 90"}}
	}
	if sample.Lon < -180 || sample.Lon > 180 {
		atomic.AddInt64(&v.rejectedCount, 1)
		return Outcome{Err: &domain.ValidationError{Field: "longitude", Reason: "must be between -180 and 180"}}
	}
	if sample.AccuracyM < 0 {
		atomic.AddInt64(&v.rejectedCount, 1)
		return Outcome{Err: &domain.ValidationError{Field: "accuracy", Reason: "must not be negative"}}
	}

	if v.cfg.MaxAccuracyM > 0 && sample.AccuracyM > v.cfg.MaxAccuracyM {
		atomic.AddInt64(&v.filteredCount, 1)
		return Outcome{Filtered: true, Reason: "accuracy above noise threshold"}
	}

	v.mu.Lock()
	defer v.mu.Unlock()

	if v.lastAccepted != nil {
		if v.cfg.MinIntervalMs > 0 {
			elapsed := sample.Timestamp.Sub(v.lastAccepted.Timestamp).Milliseconds()
			if elapsed < v.cfg.MinIntervalMs {
				atomic.AddInt64(&v.filteredCount, 1)
				return Outcome{Filtered: true, Reason: "within minimum time filter"}
			}
		}
		if v.cfg.MinDistanceM > 0 {
			if DistanceKm(*v.lastAccepted, sample)*1000 < v.cfg.MinDistanceM {
				atomic.AddInt64(&v.filteredCount, 1)
				return Outcome{Filtered: true, Reason: "within minimum distance filter"}
			}
		}
	}

	v.lastAccepted = &sample
	return Outcome{Accepted: true}
}

// Reset clears the last-accepted reference, keeping the counters.
func (v *SampleValidator) Reset() {
	v.mu.Lock()
	v.lastAccepted = nil
	v.mu.Unlock()
}

func (v *SampleValidator) RejectedCount() int64 {
	return atomic.LoadInt64(&v.rejectedCount)
}

func (v *SampleValidator) FilteredCount() int64 {
	return atomic.LoadInt64(&v.filteredCount)
}
