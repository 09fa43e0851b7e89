package analyzers

import (
	"context"
	"errors"
	"time"

	"log-analyzer/internal/aggregators"
	"log-analyzer/internal/models"
	"log-analyzer/internal/parsers"
	"log-analyzer/internal/shared/loggers"
	"log-analyzer/internal/shared/metrics"
	"log-analyzer/internal/shared/svcerrors"
	"log-analyzer/internal/sources"
)

// Options tune one analysis.
type Options struct {
	// Limit is the maximum number of ranked entries.
	Limit int
	// Accuracy is the number of decimal places kept for every float.
	Accuracy int
	// KeyField selects the field requests are grouped by.
	KeyField models.KeyField
}

//go:generate mockgen -source=analysis_service.go -destination=./mocks/analysis_service_mock.go -package=mocks
type AnalysisService interface {
	// Analyze consumes lines in a single forward pass and ranks the heaviest keys.
	// Lines that do not parse are counted as errors and skipped.
	Analyze(ctx context.Context, lines sources.LineReader) (*models.Report, error)
}

type analysisService struct {
	extractor  parsers.RecordExtractor
	summarizer aggregators.Summarizer
	opts       Options
}

func NewAnalysisService(extractor parsers.RecordExtractor, summarizer aggregators.Summarizer, opts Options) AnalysisService {
	if opts.KeyField == "" {
		opts.KeyField = models.KeyFieldURL
	}
	return &analysisService{
		extractor:  extractor,
		summarizer: summarizer,
		opts:       opts,
	}
}

func (s *analysisService) Analyze(ctx context.Context, lines sources.LineReader) (report *models.Report, err error) {
	logger := loggers.Ctx(ctx)
	started := time.Now()
	defer func() {
		code := metrics.ValueNoError
		if svcErr, ok := svcerrors.AsServiceError(err); ok {
			code = svcErr.Code
		}
		metricRunDurationSeconds.WithLabelValues(code).Observe(time.Since(started).Seconds())
	}()

	acc := aggregators.NewAccumulator(s.opts.Accuracy)

	var lineNumber int64
	for lines.Next() {
		lineNumber++
		acc.RecordRequest()

		key, duration, err := s.parseLine(lines.Line())
		if err != nil {
			acc.RecordFailure()
			if errors.Is(err, parsers.ErrLineMismatch) {
				metricLinesTotal.WithLabelValues(outcomeMismatch).Inc()
			} else {
				metricLinesTotal.WithLabelValues(outcomeMalformed).Inc()
			}
			logger.Debug().Int64(loggers.FieldLineNumber, lineNumber).Err(err).Msg("skipped unparsable line")
			continue
		}

		acc.Add(key, duration)
		acc.RecordTotal(duration)
		metricLinesTotal.WithLabelValues(outcomeParsed).Inc()
	}
	if err := lines.Err(); err != nil {
		return nil, errInternalReadFailed(err)
	}

	counters := acc.Counters()
	logger.Debug().
		Int64(loggers.FieldTotalRequests, counters.TotalRequests).
		Int64(loggers.FieldTotalErrors, counters.TotalErrors).
		Msgf("read %d lines into %d aggregates", lineNumber, len(acc.Aggregates()))

	entries, err := s.summarizer.Summarize(acc.Aggregates(), counters.TotalRequests, counters.TotalTime, s.opts.Limit, s.opts.Accuracy)
	if err != nil {
		if errors.Is(err, aggregators.ErrEmptyInput) {
			return nil, errEmptyInput(err)
		}
		return nil, err
	}

	return &models.Report{
		Entries:  entries,
		Counters: counters,
	}, nil
}

// parseLine extracts the grouping key and the request duration of one line.
func (s *analysisService) parseLine(line string) (string, float64, error) {
	record, err := s.extractor.Extract(line)
	if err != nil {
		return "", 0, err
	}

	key, err := s.opts.KeyField.Key(record)
	if err != nil {
		return "", 0, err
	}

	duration, err := record.Duration()
	if err != nil {
		return "", 0, err
	}
	return key, duration, nil
}
