package sources

import (
	"context"
	"fmt"
	"strings"
	"time"

	"log-analyzer/internal/models"
	"log-analyzer/internal/shared/filestorages"
	"log-analyzer/internal/shared/loggers"
)

// DatePlaceholder marks where a file name template carries the date.
const DatePlaceholder = "{date}"

//go:generate mockgen -source=log_finder.go -destination=./mocks/log_finder_mock.go -package=mocks
type LogFinder interface {
	// FindLatest returns the log whose name carries the most recent date.
	// It returns ErrLogNotFound when no name matches.
	FindLatest(ctx context.Context) (*models.LogFile, error)
}

type logFinder struct {
	storage    filestorages.FileStorage
	prefix     string
	suffix     string
	dateLayout string
}

// NewLogFinder creates a LogFinder over the files of storage. nameTemplate must contain
// DatePlaceholder exactly once; dateLayout is a Go time layout.
func NewLogFinder(storage filestorages.FileStorage, nameTemplate, dateLayout string) (LogFinder, error) {
	prefix, suffix, ok := strings.Cut(nameTemplate, DatePlaceholder)
	if !ok || strings.Contains(suffix, DatePlaceholder) {
		return nil, fmt.Errorf("name template %q must contain %s exactly once", nameTemplate, DatePlaceholder)
	}

	return &logFinder{
		storage:    storage,
		prefix:     prefix,
		suffix:     suffix,
		dateLayout: dateLayout,
	}, nil
}

func (f *logFinder) FindLatest(ctx context.Context) (*models.LogFile, error) {
	logger := loggers.Ctx(ctx)

	names, err := f.storage.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list logs: %w", err)
	}

	var latest *models.LogFile
	for _, name := range names {
		date, ok := f.parseDate(name)
		if !ok {
			continue
		}
		if latest == nil || date.After(latest.Date) || (date.Equal(latest.Date) && name > latest.Name) {
			latest = &models.LogFile{Name: name, Date: date}
		}
	}

	if latest == nil {
		return nil, ErrLogNotFound
	}

	logger.Debug().Msgf("latest log is %s (date %s) among %d files", latest.Name, latest.Date.Format(time.DateOnly), len(names))
	return latest, nil
}

// parseDate extracts the date a file name carries, ignoring a compression extension.
func (f *logFinder) parseDate(name string) (time.Time, bool) {
	base := trimCompressedExtension(name)
	if len(base) < len(f.prefix)+len(f.suffix) ||
		!strings.HasPrefix(base, f.prefix) ||
		!strings.HasSuffix(base, f.suffix) {
		return time.Time{}, false
	}

	raw := base[len(f.prefix) : len(base)-len(f.suffix)]
	date, err := time.Parse(f.dateLayout, raw)
	if err != nil {
		return time.Time{}, false
	}
	return date, true
}
