package service

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/noah-isme/tutoring-scheduler/internal/models"
	appErrors "github.com/noah-isme/tutoring-scheduler/pkg/errors"
	"github.com/noah-isme/tutoring-scheduler/pkg/export"
)

// ReportFormat is the rendered file type.
type ReportFormat string

const (
	ReportFormatCSV ReportFormat = "csv"
	ReportFormatPDF ReportFormat = "pdf"
)

type reportRenderer interface {
	Render(data export.Dataset, title string) ([]byte, error)
	ContentType() string
}

// RenderedReport is a downloadable report body.
type RenderedReport struct {
	Filename    string
	ContentType string
	Body        []byte
}

// ExportService renders conflict reports and the modification ledger.
type ExportService struct {
	renderers map[ReportFormat]reportRenderer
	now       func() time.Time
	logger    *zap.Logger
}

// NewExportService constructs an ExportService with the CSV and PDF renderers.
func NewExportService(logger *zap.Logger) *ExportService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ExportService{
		renderers: map[ReportFormat]reportRenderer{
			ReportFormatCSV: export.NewCSVExporter(),
			ReportFormatPDF: export.NewPDFExporter(),
		},
		now:    func() time.Time { return time.Now().UTC() },
		logger: logger,
	}
}

// ConflictReport renders one row per conflict.
func (s *ExportService) ConflictReport(conflicts []models.Conflict, format ReportFormat) (*RenderedReport, error) {
	return s.render("conflicts", "Scheduling conflicts", ConflictDataset(conflicts), format)
}

// ModificationReport renders the ledger in append order.
func (s *ExportService) ModificationReport(records []models.ModificationRecord, format ReportFormat) (*RenderedReport, error) {
	return s.render("modifications", "Modification ledger", LedgerDataset(records), format)
}

func (s *ExportService) render(kind, title string, data export.Dataset, format ReportFormat) (*RenderedReport, error) {
	if format == "" {
		format = ReportFormatCSV
	}
	renderer, ok := s.renderers[ReportFormat(strings.ToLower(string(format)))]
	if !ok {
		return nil, appErrors.Clone(appErrors.ErrValidation, fmt.Sprintf("unsupported format %s", format))
	}
	body, err := renderer.Render(data, title)
	if err != nil {
		s.logger.Error("render report failed", zap.String("kind", kind), zap.Error(err))
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to render report")
	}
	return &RenderedReport{
		Filename:    fmt.Sprintf("%s_%s.%s", kind, s.now().Format("20060102_150405"), strings.ToLower(string(format))),
		ContentType: renderer.ContentType(),
		Body:        body,
	}, nil
}

// ConflictDataset flattens conflicts into report rows. The best suggestion is listed first.
func ConflictDataset(conflicts []models.Conflict) export.Dataset {
	ds := export.Dataset{Headers: []string{"conflict_id", "student", "type", "severity", "status", "reason", "top_suggestion", "modified"}}
	for _, c := range conflicts {
		top := ""
		if len(c.Suggestions) > 0 {
			top = fmt.Sprintf("%s (%.2f)", c.Suggestions[0].Title, c.Suggestions[0].Confidence)
		}
		ds.Append(map[string]string{
			"conflict_id":    c.ID,
			"student":        displayName(c.StudentName, c.StudentID),
			"type":           string(c.ConflictType),
			"severity":       string(c.Severity),
			"status":         string(c.Status),
			"reason":         c.Reason,
			"top_suggestion": top,
			"modified":       strconv.FormatBool(c.IsModified),
		})
	}
	return ds
}

// LedgerDataset flattens modification records into report rows.
func LedgerDataset(records []models.ModificationRecord) export.Dataset {
	ds := export.Dataset{Headers: []string{"timestamp", "target_type", "target", "field", "old_value", "new_value", "reason", "conflict_id"}}
	for _, r := range records {
		conflictID := ""
		if r.ConflictID != nil {
			conflictID = *r.ConflictID
		}
		ds.Append(map[string]string{
			"timestamp":   r.Timestamp.UTC().Format(time.RFC3339),
			"target_type": string(r.TargetType),
			"target":      displayName(r.TargetName, r.TargetID),
			"field":       r.Field,
			"old_value":   formatValue(r.OldValue),
			"new_value":   formatValue(r.NewValue),
			"reason":      r.Reason,
			"conflict_id": conflictID,
		})
	}
	return ds
}

func formatValue(v interface{}) string {
	switch val := v.(type) {
	case nil:
		return ""
	case string:
		return val
	case float64:
		return strconv.FormatFloat(val, 'f', -1, 64)
	case int:
		return strconv.Itoa(val)
	}
	raw, err := json.Marshal(v)
	if err != nil {
		return fmt.Sprint(v)
	}
	return string(raw)
}
