package models

// RankedEntry is one row of the report: the statistics of a single key.
// All float fields are rounded to the report accuracy.
//
// Example JSON:
//
//	{
//	  "key": "/api/v2/banner/25019354",
//	  "count": 2,
//	  "count_perc": 0.02,
//	  "time_sum": 1.3,
//	  "time_perc": 0.04,
//	  "time_avg": 0.65,
//	  "time_max": 0.9,
//	  "time_med": 0.65
//	}
type RankedEntry struct {
	Key       string  `json:"key"`
	Count     int64   `json:"count"`
	CountPerc float64 `json:"count_perc"`
	TimeSum   float64 `json:"time_sum"`
	TimePerc  float64 `json:"time_perc"`
	TimeAvg   float64 `json:"time_avg"`
	TimeMax   float64 `json:"time_max"`
	TimeMed   float64 `json:"time_med"`
}

// Counters are the run-wide totals of one analysis.
//
// TotalRequests counts every line read, so TotalRequests == TotalErrors + sum of entry counts
// over all keys (not only the ranked ones).
type Counters struct {
	TotalRequests int64   `json:"total_requests"`
	TotalErrors   int64   `json:"total_errors"`
	TotalTime     float64 `json:"total_time"`
}

// Report is the outcome of one analysis: the top keys by total time, heaviest first.
type Report struct {
	Entries []RankedEntry `json:"entries"`
	Counters
}

// ErrorsPercent returns the share of failed lines in percent, or 0 when nothing was read.
func (r *Report) ErrorsPercent() float64 {
	if r.TotalRequests == 0 {
		return 0
	}
	return 100 * float64(r.TotalErrors) / float64(r.TotalRequests)
}
