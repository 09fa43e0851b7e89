package stores

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"log-analyzer/internal/shared/filestorages"
)

// DatePlaceholder marks where a report name template carries the date.
const DatePlaceholder = "{date}"

var (
	ErrReportAlreadyExist = errors.New("report already exists")
)

// ReportStore keeps one rendered report per log date. Put without overwrite is an atomic
// create-if-not-exists, so two runs over the same log never clobber each other's report.
//
//go:generate mockgen -source=report_store.go -destination=./mocks/report_store_mock.go -package=mocks
type ReportStore interface {
	// NameFor returns the report file name for a log dated date.
	NameFor(date time.Time) string
	Exists(ctx context.Context, name string) (bool, error)
	// Put stores html under name. Without overwrite it returns ErrReportAlreadyExist when
	// a report with that name is already stored.
	Put(ctx context.Context, name string, html []byte, overwrite bool) error
}

type reportStore struct {
	fileStorage  filestorages.FileStorage
	nameTemplate string
	dateLayout   string
}

func NewReportStore(fileStorage filestorages.FileStorage, nameTemplate, dateLayout string) ReportStore {
	return &reportStore{
		fileStorage:  fileStorage,
		nameTemplate: nameTemplate,
		dateLayout:   dateLayout,
	}
}

func (s *reportStore) NameFor(date time.Time) string {
	return strings.ReplaceAll(s.nameTemplate, DatePlaceholder, date.Format(s.dateLayout))
}

func (s *reportStore) Exists(ctx context.Context, name string) (bool, error) {
	exists, err := s.fileStorage.Exists(ctx, name)
	if err != nil {
		return false, fmt.Errorf("failed to check report %s: %w", name, err)
	}
	return exists, nil
}

func (s *reportStore) Put(ctx context.Context, name string, html []byte, overwrite bool) error {
	_, err := s.fileStorage.Put(ctx, name, bytes.NewReader(html), filestorages.PutOptions{AllowOverwrite: overwrite})
	if err != nil {
		if errors.Is(err, filestorages.ErrFileAlreadyExists) {
			return ErrReportAlreadyExist
		}
		return fmt.Errorf("failed to put report: %w", err)
	}
	return nil
}
