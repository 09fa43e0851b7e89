package app

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/klauspost/compress/gzip"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"log-analyzer/internal/shared/configs"
)

func TestApp_New_RunEndToEnd(t *testing.T) {
	t.Parallel()

	root := t.TempDir()
	cfg := newE2EConfig(t, root)

	lines := []string{
		accessLine("/api/v2/banner/25019354", "0.390"),
		accessLine("/api/1/photogenic_banners/list/?server_name=WIN7RB4", "0.133"),
		accessLine("/api/v2/banner/25019354", "0.210"),
		"this line is not an access log entry",
	}
	writeGzipLog(t, filepath.Join(cfg.Source.Dir, "nginx-access-ui.log-20170630.gz"), lines)
	require.NoError(t, os.WriteFile(filepath.Join(cfg.Source.Dir, "nginx-access-ui.log-20170629"), []byte(lines[0]+"\n"), 0644))

	app, err := New(cfg, Options{})
	require.NoError(t, err)
	defer app.Close()

	require.NoError(t, app.Run(context.Background()))

	reportPath := filepath.Join(cfg.Report.Dir, "report-2017.06.30.html")
	html, err := os.ReadFile(reportPath)
	require.NoError(t, err)
	assert.Contains(t, string(html), `var table = [{"key":"/api/v2/banner/25019354","count":2,`)
	assert.Contains(t, string(html), `"time_sum":0.6,`)
	assert.NotContains(t, string(html), "$table_json")
	assert.NotContains(t, string(html), "2017.06.29")

	// a second run leaves the existing report alone
	require.NoError(t, os.WriteFile(reportPath, []byte("kept"), 0644))
	require.NoError(t, app.Run(context.Background()))
	kept, err := os.ReadFile(reportPath)
	require.NoError(t, err)
	assert.Equal(t, "kept", string(kept))

	textfile, err := os.ReadFile(cfg.Metrics.TextfilePath)
	require.NoError(t, err)
	assert.Contains(t, string(textfile), "log_analyzer_report_runs_total")
	assert.Contains(t, string(textfile), "log_analyzer_analysis_lines_total")

	logOutput, err := os.ReadFile(cfg.Log.File)
	require.NoError(t, err)
	assert.Contains(t, string(logOutput), `"run_id"`)
	assert.Contains(t, string(logOutput), `"log_file":"nginx-access-ui.log-20170630.gz"`)
}

func TestApp_New_ForceRerenders(t *testing.T) {
	t.Parallel()

	root := t.TempDir()
	cfg := newE2EConfig(t, root)
	writeGzipLog(t, filepath.Join(cfg.Source.Dir, "nginx-access-ui.log-20170630.gz"), []string{accessLine("/a", "0.5")})

	reportPath := filepath.Join(cfg.Report.Dir, "report-2017.06.30.html")
	require.NoError(t, os.MkdirAll(cfg.Report.Dir, 0755))
	require.NoError(t, os.WriteFile(reportPath, []byte("stale"), 0644))

	app, err := New(cfg, Options{Force: true})
	require.NoError(t, err)
	defer app.Close()

	require.NoError(t, app.Run(context.Background()))

	html, err := os.ReadFile(reportPath)
	require.NoError(t, err)
	assert.Contains(t, string(html), `"key":"/a"`)
}

func TestApp_New_MissingTemplate(t *testing.T) {
	t.Parallel()

	cfg := newE2EConfig(t, t.TempDir())
	cfg.Report.Template = filepath.Join(t.TempDir(), "missing.html")

	_, err := New(cfg, Options{})
	assert.Error(t, err)
}

func TestApp_New_InvalidLogLevel(t *testing.T) {
	t.Parallel()

	cfg := newE2EConfig(t, t.TempDir())
	cfg.Log.Level = "loud"

	_, err := New(cfg, Options{})
	assert.Error(t, err)
}

func newE2EConfig(t *testing.T, root string) *configs.Config {
	t.Helper()

	logsDir := filepath.Join(root, "logs")
	require.NoError(t, os.MkdirAll(logsDir, 0755))

	templatePath := filepath.Join(root, "report.html")
	require.NoError(t, os.WriteFile(templatePath, []byte("<script>var table = $table_json;</script>"), 0644))

	return &configs.Config{
		Log: configs.LogConfig{
			Level: "info",
			File:  filepath.Join(root, "analyzer.log"),
		},
		Source: configs.SourceConfig{
			Dir:          logsDir,
			NameTemplate: "nginx-access-ui.log-{date}",
			DateLayout:   "20060102",
		},
		Report: configs.ReportConfig{
			Dir:                filepath.Join(root, "reports"),
			NameTemplate:       "report-{date}.html",
			DateLayout:         "2006.01.02",
			Template:           templatePath,
			Size:               10,
			Accuracy:           3,
			ErrorsPercentLimit: 50,
			KeyField:           "url",
		},
		Metrics: configs.MetricsConfig{
			TextfilePath: filepath.Join(root, "log_analyzer.prom"),
		},
	}
}

func accessLine(url, requestTime string) string {
	return fmt.Sprintf(`1.196.116.32 -  - [29/Jun/2017:03:50:22 +0300] "GET %s HTTP/1.1" 200 927 "-" "Lynx/2.8.8dev.9 libwww-FM/2.14" "-" "1498697422-2190034393-4708-9752759" "dc7161be3" %s`,
		url, requestTime)
}

func writeGzipLog(t *testing.T, path string, lines []string) {
	t.Helper()

	f, err := os.Create(path)
	require.NoError(t, err)
	defer f.Close()

	gz := gzip.NewWriter(f)
	_, err = gz.Write([]byte(strings.Join(lines, "\n") + "\n"))
	require.NoError(t, err)
	require.NoError(t, gz.Close())
}
