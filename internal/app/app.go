package app

import (
	"context"
	"errors"
	"fmt"
	"io"
	"runtime/debug"
	"time"

	"github.com/shopspring/decimal"

	"log-analyzer/internal/aggregators"
	"log-analyzer/internal/analyzers"
	"log-analyzer/internal/models"
	"log-analyzer/internal/parsers"
	"log-analyzer/internal/renderers"
	"log-analyzer/internal/shared/configs"
	"log-analyzer/internal/shared/filestorages"
	"log-analyzer/internal/shared/loggers"
	"log-analyzer/internal/shared/metrics"
	"log-analyzer/internal/shared/svcerrors"
	"log-analyzer/internal/shared/ulid"
	"log-analyzer/internal/sources"
	"log-analyzer/internal/stores"
)

// Options change how a run treats existing output.
type Options struct {
	// Force re-renders the report even when one already exists for the latest log.
	Force bool
}

// App holds all application dependencies for one analyzer invocation.
type App struct {
	config    *configs.Config
	options   Options
	appLogger loggers.Logger
	logOutput io.Closer

	logStorage      filestorages.FileStorage
	logFinder       sources.LogFinder
	analysisService analyzers.AnalysisService
	reportRenderer  renderers.ReportRenderer
	reportStore     stores.ReportStore
}

// New creates and initializes a new App instance.
func New(config *configs.Config, options Options) (*App, error) {
	logOutput, err := loggers.OpenOutput(config.Log.File)
	if err != nil {
		return nil, fmt.Errorf("failed to open log output: %w", err)
	}

	appLogger, err := loggers.New(config.Log.Level, logOutput)
	if err != nil {
		_ = logOutput.Close()
		return nil, fmt.Errorf("failed to initialize logger: %w", err)
	}

	appLogger = appLogger.With().
		Str(loggers.FieldApp, "log-analyzer").
		Logger()

	app, err := newApp(config, options, appLogger)
	if err != nil {
		_ = logOutput.Close()
		return nil, err
	}
	app.logOutput = logOutput
	return app, nil
}

func newApp(config *configs.Config, options Options, appLogger loggers.Logger) (*App, error) {
	// Initialize log source
	logStorage, err := filestorages.NewFileStorage(config.Source.Dir)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize log storage: %w", err)
	}
	logFinder, err := sources.NewLogFinder(logStorage, config.Source.NameTemplate, config.Source.DateLayout)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize log finder: %w", err)
	}

	// Initialize analysis service
	keyField, err := models.NewKeyFieldFromString(config.Report.KeyField)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize key field: %w", err)
	}
	analysisService := analyzers.NewAnalysisService(
		parsers.NewRecordExtractor(),
		aggregators.NewSummarizer(),
		analyzers.Options{
			Limit:    config.Report.Size,
			Accuracy: config.Report.Accuracy,
			KeyField: keyField,
		},
	)

	// Initialize report output
	reportRenderer, err := renderers.NewReportRenderer(config.Report.Template)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize report renderer: %w", err)
	}
	reportStorage, err := filestorages.NewFileStorage(config.Report.Dir)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize report storage: %w", err)
	}
	reportStore := stores.NewReportStore(reportStorage, config.Report.NameTemplate, config.Report.DateLayout)

	return &App{
		config:          config,
		options:         options,
		appLogger:       appLogger,
		logStorage:      logStorage,
		logFinder:       logFinder,
		analysisService: analysisService,
		reportRenderer:  reportRenderer,
		reportStore:     reportStore,
	}, nil
}

// Logger returns the application logger.
func (app *App) Logger() *loggers.Logger {
	return &app.appLogger
}

// Run analyzes the most recent log and renders its report. Situations that leave nothing
// to do (no log, report already rendered, no parsable lines, too many errors) are logged
// and return nil; only failures of the environment return an error.
func (app *App) Run(ctx context.Context) (err error) {
	logger := app.appLogger.With().
		Str(loggers.FieldRunID, ulid.NewRunID()).
		Logger()
	ctx = logger.WithContext(ctx)
	start := time.Now()

	outcome := outcomeFailed
	defer func() {
		if p := recover(); p != nil {
			logger.Error().
				Bytes(loggers.FieldErrorStack, debug.Stack()).
				Msgf("run panic recovered: %v", p)

			var panicErr error
			if e, ok := p.(error); ok {
				panicErr = e
			} else {
				panicErr = fmt.Errorf("%v", p)
			}
			err = svcerrors.NewInternalErrorPanic(panicErr)
			outcome = outcomeFailed
		}

		errorCode := metrics.ValueNoError
		if svcErr, ok := svcerrors.AsServiceError(err); ok {
			errorCode = svcErr.Code
		}
		metricRunsTotal.WithLabelValues(outcome, errorCode).Inc()
		app.exportMetrics(ctx)

		logger.Info().
			Str(loggers.FieldErrorCode, errorCode).
			Int64(loggers.FieldDuration, time.Since(start).Milliseconds()).
			Msgf("run finished: %s", outcome)
	}()

	logger.Info().
		Msgf("starting log analysis (log_dir=%s, report_dir=%s, report_size=%d, force=%t)",
			app.config.Source.Dir,
			app.config.Report.Dir,
			app.config.Report.Size,
			app.options.Force)

	outcome, err = app.run(ctx)
	if err != nil {
		outcome = outcomeFailed
	}
	return err
}

func (app *App) run(ctx context.Context) (string, error) {
	logger := loggers.Ctx(ctx)

	logFile, err := app.logFinder.FindLatest(ctx)
	if err != nil {
		if errors.Is(err, sources.ErrLogNotFound) {
			logger.Info().Msgf("no log matching %q in %s, nothing to analyze", app.config.Source.NameTemplate, app.config.Source.Dir)
			return outcomeNoLog, nil
		}
		return "", errInternalLogLookupFailed(err)
	}

	reportName := app.reportStore.NameFor(logFile.Date)
	runLogger := logger.With().
		Str(loggers.FieldLogFile, logFile.Name).
		Str(loggers.FieldReportFile, reportName).
		Logger()
	logger = &runLogger
	ctx = logger.WithContext(ctx)

	if !app.options.Force {
		exists, err := app.reportStore.Exists(ctx, reportName)
		if err != nil {
			return "", errInternalReportStoreFailed(err)
		}
		if exists {
			logger.Info().Msgf("report for log %s already exists", logFile.Name)
			return outcomeReportExists, nil
		}
	}

	report, err := app.analyze(ctx, logFile)
	if err != nil {
		if svcErr, ok := svcerrors.AsServiceError(err); ok && svcErr.Code == analyzers.CodeEmptyInput {
			logger.Warn().
				Str(loggers.FieldErrorCode, svcErr.Code).
				Msgf("log %s has no parsable requests, no report rendered", logFile.Name)
			return outcomeEmptyInput, nil
		}
		return "", err
	}

	errorsPercent := roundPercent(report.ErrorsPercent())
	metricErrorsPercent.Set(errorsPercent)

	if limit := app.config.Report.ErrorsPercentLimit; limit > 0 && errorsPercent > limit {
		logger.Error().
			Int64(loggers.FieldTotalRequests, report.TotalRequests).
			Int64(loggers.FieldTotalErrors, report.TotalErrors).
			Msgf("%d errors occurred while analyzing log %s, about %v percent of its lines (limit %v), no report rendered",
				report.TotalErrors, logFile.Name, errorsPercent, limit)
		return outcomeTooManyErrors, nil
	}

	html, err := app.reportRenderer.Render(report.Entries)
	if err != nil {
		return "", errInternalReportRenderFailed(err)
	}

	if err := app.reportStore.Put(ctx, reportName, html, app.options.Force); err != nil {
		if errors.Is(err, stores.ErrReportAlreadyExist) {
			logger.Info().Msgf("report for log %s was rendered concurrently", logFile.Name)
			return outcomeReportExists, nil
		}
		return "", errInternalReportStoreFailed(err)
	}

	logger.Info().
		Int64(loggers.FieldTotalRequests, report.TotalRequests).
		Int64(loggers.FieldTotalErrors, report.TotalErrors).
		Msgf("report rendered with %d entries", len(report.Entries))
	return outcomeRendered, nil
}

// analyze streams the log through the analysis service. The log is closed on return.
func (app *App) analyze(ctx context.Context, logFile *models.LogFile) (*models.Report, error) {
	rc, err := app.logStorage.Get(ctx, logFile.Name)
	if err != nil {
		return nil, errInternalLogOpenFailed(err)
	}

	lines, err := sources.OpenLineReader(rc, logFile.Name)
	if err != nil {
		return nil, errInternalLogOpenFailed(err)
	}
	defer func() {
		if err := lines.Close(); err != nil {
			loggers.Ctx(ctx).Warn().Err(err).Msg("failed to close log")
		}
	}()

	return app.analysisService.Analyze(ctx, lines)
}

// exportMetrics writes the metrics textfile when one is configured. Failures are logged only.
func (app *App) exportMetrics(ctx context.Context) {
	path := app.config.Metrics.TextfilePath
	if path == "" {
		return
	}
	if err := metrics.WriteTextfile(path); err != nil {
		loggers.Ctx(ctx).Warn().Err(err).Msgf("failed to write metrics textfile %s", path)
	}
}

// Close releases the log output.
func (app *App) Close() error {
	if app.logOutput == nil {
		return nil
	}
	return app.logOutput.Close()
}

// roundPercent rounds half to even to a whole percent.
func roundPercent(p float64) float64 {
	return decimal.NewFromFloat(p).RoundBank(0).InexactFloat64()
}
