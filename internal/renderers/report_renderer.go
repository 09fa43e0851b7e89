package renderers

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"os"

	"log-analyzer/internal/models"
)

// TablePlaceholder is replaced with the JSON array of ranked entries.
const TablePlaceholder = "$table_json"

var (
	ErrPlaceholderMissing = errors.New("report template has no " + TablePlaceholder + " placeholder")
)

//go:generate mockgen -source=report_renderer.go -destination=./mocks/report_renderer_mock.go -package=mocks
type ReportRenderer interface {
	// Render returns the template with every placeholder replaced by the JSON of entries.
	Render(entries []models.RankedEntry) ([]byte, error)
}

type reportRenderer struct {
	template []byte
}

// NewReportRenderer loads the template at path once.
func NewReportRenderer(path string) (ReportRenderer, error) {
	template, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read report template: %w", err)
	}
	return NewReportRendererFromTemplate(template)
}

func NewReportRendererFromTemplate(template []byte) (ReportRenderer, error) {
	if !bytes.Contains(template, []byte(TablePlaceholder)) {
		return nil, ErrPlaceholderMissing
	}
	return &reportRenderer{template: template}, nil
}

func (r *reportRenderer) Render(entries []models.RankedEntry) ([]byte, error) {
	if entries == nil {
		entries = []models.RankedEntry{}
	}

	table, err := json.Marshal(entries)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal report table: %w", err)
	}
	return bytes.ReplaceAll(r.template, []byte(TablePlaceholder), table), nil
}
