package app

import (
	"context"
	"errors"
	"io"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"log-analyzer/internal/analyzers"
	analyzersmocks "log-analyzer/internal/analyzers/mocks"
	"log-analyzer/internal/models"
	renderersmocks "log-analyzer/internal/renderers/mocks"
	"log-analyzer/internal/shared/configs"
	"log-analyzer/internal/shared/filestorages"
	filestoragesmocks "log-analyzer/internal/shared/filestorages/mocks"
	"log-analyzer/internal/shared/loggers"
	"log-analyzer/internal/shared/svcerrors"
	"log-analyzer/internal/sources"
	sourcesmocks "log-analyzer/internal/sources/mocks"
	"log-analyzer/internal/stores"
	storesmocks "log-analyzer/internal/stores/mocks"
)

const (
	testLogName    = "nginx-access-ui.log-20170630.gz"
	testReportName = "report-2017.06.30.html"
)

var testLogDate = time.Date(2017, 6, 30, 0, 0, 0, 0, time.UTC)

type testDeps struct {
	logStorage      *filestoragesmocks.MockFileStorage
	logFinder       *sourcesmocks.MockLogFinder
	analysisService *analyzersmocks.MockAnalysisService
	reportRenderer  *renderersmocks.MockReportRenderer
	reportStore     *storesmocks.MockReportStore
}

func newTestApp(t *testing.T, errorsPercentLimit float64, options Options) (*App, *testDeps) {
	t.Helper()

	ctrl := gomock.NewController(t)
	deps := &testDeps{
		logStorage:      filestoragesmocks.NewMockFileStorage(ctrl),
		logFinder:       sourcesmocks.NewMockLogFinder(ctrl),
		analysisService: analyzersmocks.NewMockAnalysisService(ctrl),
		reportRenderer:  renderersmocks.NewMockReportRenderer(ctrl),
		reportStore:     storesmocks.NewMockReportStore(ctrl),
	}

	logger, err := loggers.New("debug", io.Discard)
	require.NoError(t, err)

	app := &App{
		config: &configs.Config{
			Source: configs.SourceConfig{Dir: "./logs", NameTemplate: "nginx-access-ui.log-{date}", DateLayout: "20060102"},
			Report: configs.ReportConfig{Dir: "./reports", Size: 10, Accuracy: 3, ErrorsPercentLimit: errorsPercentLimit},
		},
		options:         options,
		appLogger:       logger,
		logStorage:      deps.logStorage,
		logFinder:       deps.logFinder,
		analysisService: deps.analysisService,
		reportRenderer:  deps.reportRenderer,
		reportStore:     deps.reportStore,
	}
	return app, deps
}

// expectLatestLog primes the finder, the report name and the log body; the log is plain text
// so the name carries no compression extension.
func (d *testDeps) expectLatestLog(body string) {
	d.logFinder.EXPECT().FindLatest(gomock.Any()).Return(&models.LogFile{Name: "nginx-access-ui.log-20170630", Date: testLogDate}, nil)
	d.reportStore.EXPECT().NameFor(testLogDate).Return(testReportName)
	d.logStorage.EXPECT().Get(gomock.Any(), "nginx-access-ui.log-20170630").Return(io.NopCloser(strings.NewReader(body)), nil)
}

func sampleReport(requests, errors int64) *models.Report {
	return &models.Report{
		Entries: []models.RankedEntry{
			{Key: "/a", Count: requests - errors, CountPerc: 100, TimeSum: 1, TimePerc: 100, TimeAvg: 1, TimeMax: 1, TimeMed: 1},
		},
		Counters: models.Counters{TotalRequests: requests, TotalErrors: errors, TotalTime: 1},
	}
}

func TestApp_Run_RendersReport(t *testing.T) {
	t.Parallel()

	app, deps := newTestApp(t, 0, Options{})
	report := sampleReport(2, 0)
	html := []byte("<html>report</html>")

	deps.expectLatestLog("line one\nline two\n")
	deps.reportStore.EXPECT().Exists(gomock.Any(), testReportName).Return(false, nil)
	deps.analysisService.EXPECT().
		Analyze(gomock.Any(), gomock.Any()).
		DoAndReturn(func(ctx context.Context, lines sources.LineReader) (*models.Report, error) {
			var got []string
			for lines.Next() {
				got = append(got, lines.Line())
			}
			assert.Equal(t, []string{"line one", "line two"}, got)
			return report, nil
		})
	deps.reportRenderer.EXPECT().Render(report.Entries).Return(html, nil)
	deps.reportStore.EXPECT().Put(gomock.Any(), testReportName, html, false).Return(nil)

	err := app.Run(context.Background())
	assert.NoError(t, err)
}

func TestApp_Run_NoLog(t *testing.T) {
	t.Parallel()

	app, deps := newTestApp(t, 0, Options{})
	deps.logFinder.EXPECT().FindLatest(gomock.Any()).Return(nil, sources.ErrLogNotFound)

	err := app.Run(context.Background())
	assert.NoError(t, err)
}

func TestApp_Run_LogLookupFailed(t *testing.T) {
	t.Parallel()

	app, deps := newTestApp(t, 0, Options{})
	listErr := errors.New("permission denied")
	deps.logFinder.EXPECT().FindLatest(gomock.Any()).Return(nil, listErr)

	err := app.Run(context.Background())
	assertInternalError(t, err, codeInternalLogLookupFailed)
	assert.ErrorIs(t, err, listErr)
}

func TestApp_Run_ReportAlreadyExists(t *testing.T) {
	t.Parallel()

	app, deps := newTestApp(t, 0, Options{})
	deps.logFinder.EXPECT().FindLatest(gomock.Any()).Return(&models.LogFile{Name: testLogName, Date: testLogDate}, nil)
	deps.reportStore.EXPECT().NameFor(testLogDate).Return(testReportName)
	deps.reportStore.EXPECT().Exists(gomock.Any(), testReportName).Return(true, nil)

	err := app.Run(context.Background())
	assert.NoError(t, err)
}

func TestApp_Run_ReportExistsCheckFailed(t *testing.T) {
	t.Parallel()

	app, deps := newTestApp(t, 0, Options{})
	deps.logFinder.EXPECT().FindLatest(gomock.Any()).Return(&models.LogFile{Name: testLogName, Date: testLogDate}, nil)
	deps.reportStore.EXPECT().NameFor(testLogDate).Return(testReportName)
	deps.reportStore.EXPECT().Exists(gomock.Any(), testReportName).Return(false, errors.New("stat failed"))

	err := app.Run(context.Background())
	assertInternalError(t, err, codeInternalReportStoreFailed)
}

func TestApp_Run_ForceOverwrites(t *testing.T) {
	t.Parallel()

	app, deps := newTestApp(t, 0, Options{Force: true})
	report := sampleReport(1, 0)
	html := []byte("<html/>")

	deps.expectLatestLog("line\n")
	deps.analysisService.EXPECT().Analyze(gomock.Any(), gomock.Any()).Return(report, nil)
	deps.reportRenderer.EXPECT().Render(report.Entries).Return(html, nil)
	deps.reportStore.EXPECT().Put(gomock.Any(), testReportName, html, true).Return(nil)

	err := app.Run(context.Background())
	assert.NoError(t, err)
}

func TestApp_Run_EmptyInput(t *testing.T) {
	t.Parallel()

	app, deps := newTestApp(t, 0, Options{})
	deps.expectLatestLog("")
	deps.reportStore.EXPECT().Exists(gomock.Any(), testReportName).Return(false, nil)
	deps.analysisService.EXPECT().
		Analyze(gomock.Any(), gomock.Any()).
		Return(nil, svcerrors.NewInvalidArgumentError(analyzers.CodeEmptyInput, "nothing to summarize", nil))

	err := app.Run(context.Background())
	assert.NoError(t, err)
}

func TestApp_Run_ErrorsPercentLimit(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name       string
		limit      float64
		requests   int64
		errors     int64
		wantRender bool
	}{
		{name: "above limit", limit: 10, requests: 10, errors: 2, wantRender: false},
		{name: "at limit", limit: 20, requests: 10, errors: 2, wantRender: true},
		{name: "below limit", limit: 50, requests: 10, errors: 2, wantRender: true},
		{name: "zero limit disables the check", limit: 0, requests: 10, errors: 9, wantRender: true},
		// 12.5 rounds half to even
		{name: "rounded percent at limit", limit: 12, requests: 8, errors: 1, wantRender: true},
		{name: "rounded percent above limit", limit: 13, requests: 200, errors: 27, wantRender: false},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			app, deps := newTestApp(t, tt.limit, Options{})
			report := sampleReport(tt.requests, tt.errors)

			deps.expectLatestLog("line\n")
			deps.reportStore.EXPECT().Exists(gomock.Any(), testReportName).Return(false, nil)
			deps.analysisService.EXPECT().Analyze(gomock.Any(), gomock.Any()).Return(report, nil)
			if tt.wantRender {
				deps.reportRenderer.EXPECT().Render(report.Entries).Return([]byte("<html/>"), nil)
				deps.reportStore.EXPECT().Put(gomock.Any(), testReportName, []byte("<html/>"), false).Return(nil)
			}

			err := app.Run(context.Background())
			assert.NoError(t, err)
		})
	}
}

func TestApp_Run_LogOpenFailed(t *testing.T) {
	t.Parallel()

	app, deps := newTestApp(t, 0, Options{})
	deps.logFinder.EXPECT().FindLatest(gomock.Any()).Return(&models.LogFile{Name: testLogName, Date: testLogDate}, nil)
	deps.reportStore.EXPECT().NameFor(testLogDate).Return(testReportName)
	deps.reportStore.EXPECT().Exists(gomock.Any(), testReportName).Return(false, nil)
	deps.logStorage.EXPECT().Get(gomock.Any(), testLogName).Return(nil, filestorages.ErrFileNotFound)

	err := app.Run(context.Background())
	assertInternalError(t, err, codeInternalLogOpenFailed)
	assert.ErrorIs(t, err, filestorages.ErrFileNotFound)
}

func TestApp_Run_CorruptCompressedLog(t *testing.T) {
	t.Parallel()

	app, deps := newTestApp(t, 0, Options{})
	deps.logFinder.EXPECT().FindLatest(gomock.Any()).Return(&models.LogFile{Name: testLogName, Date: testLogDate}, nil)
	deps.reportStore.EXPECT().NameFor(testLogDate).Return(testReportName)
	deps.reportStore.EXPECT().Exists(gomock.Any(), testReportName).Return(false, nil)
	deps.logStorage.EXPECT().Get(gomock.Any(), testLogName).Return(io.NopCloser(strings.NewReader("plain text, not gzip")), nil)

	err := app.Run(context.Background())
	assertInternalError(t, err, codeInternalLogOpenFailed)
}

func TestApp_Run_ReadFailed(t *testing.T) {
	t.Parallel()

	app, deps := newTestApp(t, 0, Options{})
	deps.expectLatestLog("line\n")
	deps.reportStore.EXPECT().Exists(gomock.Any(), testReportName).Return(false, nil)
	deps.analysisService.EXPECT().
		Analyze(gomock.Any(), gomock.Any()).
		Return(nil, svcerrors.NewInternalError(analyzers.CodeInternalReadFailed, io.ErrUnexpectedEOF))

	err := app.Run(context.Background())
	assertInternalError(t, err, analyzers.CodeInternalReadFailed)
}

func TestApp_Run_RenderFailed(t *testing.T) {
	t.Parallel()

	app, deps := newTestApp(t, 0, Options{})
	report := sampleReport(1, 0)

	deps.expectLatestLog("line\n")
	deps.reportStore.EXPECT().Exists(gomock.Any(), testReportName).Return(false, nil)
	deps.analysisService.EXPECT().Analyze(gomock.Any(), gomock.Any()).Return(report, nil)
	deps.reportRenderer.EXPECT().Render(report.Entries).Return(nil, errors.New("marshal failed"))

	err := app.Run(context.Background())
	assertInternalError(t, err, codeInternalReportRenderFailed)
}

func TestApp_Run_PutFailures(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		putErr   error
		wantCode string
	}{
		{name: "rendered concurrently", putErr: stores.ErrReportAlreadyExist, wantCode: ""},
		{name: "storage failure", putErr: errors.New("disk full"), wantCode: codeInternalReportStoreFailed},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			app, deps := newTestApp(t, 0, Options{})
			report := sampleReport(1, 0)

			deps.expectLatestLog("line\n")
			deps.reportStore.EXPECT().Exists(gomock.Any(), testReportName).Return(false, nil)
			deps.analysisService.EXPECT().Analyze(gomock.Any(), gomock.Any()).Return(report, nil)
			deps.reportRenderer.EXPECT().Render(report.Entries).Return([]byte("<html/>"), nil)
			deps.reportStore.EXPECT().Put(gomock.Any(), testReportName, []byte("<html/>"), false).Return(tt.putErr)

			err := app.Run(context.Background())
			if tt.wantCode == "" {
				assert.NoError(t, err)
				return
			}
			assertInternalError(t, err, tt.wantCode)
		})
	}
}

func TestApp_Run_RecoversPanic(t *testing.T) {
	t.Parallel()

	app, deps := newTestApp(t, 0, Options{})
	deps.expectLatestLog("line\n")
	deps.reportStore.EXPECT().Exists(gomock.Any(), testReportName).Return(false, nil)
	deps.analysisService.EXPECT().
		Analyze(gomock.Any(), gomock.Any()).
		DoAndReturn(func(context.Context, sources.LineReader) (*models.Report, error) {
			panic("unexpected state")
		})

	err := app.Run(context.Background())
	assertInternalError(t, err, "SYS_9000")
}

func TestRoundPercent(t *testing.T) {
	t.Parallel()

	assert.Equal(t, 12.0, roundPercent(12.5))
	assert.Equal(t, 14.0, roundPercent(13.5))
	assert.Equal(t, 34.0, roundPercent(33.6))
	assert.Equal(t, 0.0, roundPercent(0))
}

func assertInternalError(t *testing.T, err error, code string) {
	t.Helper()

	svcErr, ok := svcerrors.AsServiceError(err)
	require.True(t, ok, "expected a ServiceError, got %v", err)
	assert.Equal(t, code, svcErr.Code)
	assert.True(t, svcErr.IsInternalError())
}
