package aggregators

import (
	"log-analyzer/internal/models"
)

// UrlAggregate is the running state of one key.
// TimeSum is rounded after every addition and Count == len(Times).
type UrlAggregate struct {
	Key     string
	Count   int64
	TimeSum float64
	Times   []float64
}

// Accumulator folds request durations into per-key aggregates in a single pass.
// It is not safe for concurrent use; one Accumulator serves one run.
type Accumulator struct {
	accuracy int
	byKey    map[string]*UrlAggregate
	ordered  []*UrlAggregate // first-seen order
	counters models.Counters
}

func NewAccumulator(accuracy int) *Accumulator {
	return &Accumulator{
		accuracy: accuracy,
		byKey:    make(map[string]*UrlAggregate),
	}
}

// RecordRequest counts one line pulled from the source, whatever its outcome.
func (a *Accumulator) RecordRequest() {
	a.counters.TotalRequests++
}

// RecordFailure counts one line that could not be aggregated.
func (a *Accumulator) RecordFailure() {
	a.counters.TotalErrors++
}

// RecordTotal adds duration to the run-wide time total.
func (a *Accumulator) RecordTotal(duration float64) {
	a.counters.TotalTime = round(a.counters.TotalTime+duration, a.accuracy)
}

// Add folds one observed duration into the aggregate of key, creating it on first sight.
func (a *Accumulator) Add(key string, duration float64) {
	agg, ok := a.byKey[key]
	if !ok {
		agg = &UrlAggregate{Key: key}
		a.byKey[key] = agg
		a.ordered = append(a.ordered, agg)
	}
	agg.Count++
	agg.TimeSum = round(agg.TimeSum+duration, a.accuracy)
	agg.Times = append(agg.Times, duration)
}

// Aggregate returns the aggregate of key, if any request was added for it.
func (a *Accumulator) Aggregate(key string) (*UrlAggregate, bool) {
	agg, ok := a.byKey[key]
	return agg, ok
}

// Aggregates returns every aggregate in first-seen order. The slice is shared; callers must not modify it.
func (a *Accumulator) Aggregates() []*UrlAggregate {
	return a.ordered
}

func (a *Accumulator) Counters() models.Counters {
	return a.counters
}
