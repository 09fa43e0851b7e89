package aggregators

import (
	"container/heap"
	"slices"

	"log-analyzer/internal/models"
)

//go:generate mockgen -source=summarizer.go -destination=./mocks/summarizer_mock.go -package=mocks
type Summarizer interface {
	// Summarize ranks aggregates by TimeSum, heaviest first, keeps at most limit of them and
	// derives their statistics. Ties keep the order of aggregates, which callers pass in
	// first-seen order. It returns ErrEmptyInput when there is nothing to rank against.
	Summarize(aggregates []*UrlAggregate, totalRequests int64, totalTime float64, limit, accuracy int) ([]models.RankedEntry, error)
}

type summarizer struct{}

func NewSummarizer() Summarizer {
	return &summarizer{}
}

func (s *summarizer) Summarize(aggregates []*UrlAggregate, totalRequests int64, totalTime float64, limit, accuracy int) ([]models.RankedEntry, error) {
	if len(aggregates) == 0 || totalRequests == 0 || totalTime == 0 {
		return nil, ErrEmptyInput
	}

	top := selectTop(aggregates, limit)

	entries := make([]models.RankedEntry, 0, len(top))
	for _, agg := range top {
		entries = append(entries, models.RankedEntry{
			Key:       agg.Key,
			Count:     agg.Count,
			CountPerc: round(100*float64(agg.Count)/float64(totalRequests), accuracy),
			TimeSum:   round(agg.TimeSum, accuracy),
			TimePerc:  round(100*agg.TimeSum/totalTime, accuracy),
			TimeAvg:   round(agg.TimeSum/float64(agg.Count), accuracy),
			TimeMax:   round(slices.Max(agg.Times), accuracy),
			TimeMed:   round(median(agg.Times), accuracy),
		})
	}
	return entries, nil
}

// median returns the middle value of times, or the mean of the two middle values for an
// even count. times is left untouched.
func median(times []float64) float64 {
	sorted := slices.Clone(times)
	slices.Sort(sorted)

	mid := len(sorted) / 2
	if len(sorted)%2 == 1 {
		return sorted[mid]
	}
	return (sorted[mid-1] + sorted[mid]) / 2
}

// selectTop returns the limit heaviest aggregates ordered by TimeSum descending, earlier
// position first on ties. It keeps a bounded min-heap, so memory is O(limit).
func selectTop(aggregates []*UrlAggregate, limit int) []*UrlAggregate {
	if limit <= 0 {
		return nil
	}

	h := &rankHeap{}
	for i, agg := range aggregates {
		item := rankItem{agg: agg, pos: i}
		if h.Len() < limit {
			heap.Push(h, item)
			continue
		}
		if lighter((*h)[0], item) {
			(*h)[0] = item
			heap.Fix(h, 0)
		}
	}

	top := make([]*UrlAggregate, h.Len())
	for i := len(top) - 1; i >= 0; i-- {
		top[i] = heap.Pop(h).(rankItem).agg
	}
	return top
}

type rankItem struct {
	agg *UrlAggregate
	pos int
}

// lighter reports whether a ranks below b.
func lighter(a, b rankItem) bool {
	if a.agg.TimeSum != b.agg.TimeSum {
		return a.agg.TimeSum < b.agg.TimeSum
	}
	return a.pos > b.pos
}

// rankHeap is a min-heap on rank: the lightest kept aggregate sits at the root.
type rankHeap []rankItem

func (h rankHeap) Len() int           { return len(h) }
func (h rankHeap) Less(i, j int) bool { return lighter(h[i], h[j]) }
func (h rankHeap) Swap(i, j int)      { h[i], h[j] = h[j], h[i] }

func (h *rankHeap) Push(x any) {
	*h = append(*h, x.(rankItem))
}

func (h *rankHeap) Pop() any {
	old := *h
	n := len(old)
	item := old[n-1]
	*h = old[:n-1]
	return item
}
