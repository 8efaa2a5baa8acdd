package service

import (
	"bytes"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/tutoring-scheduler/internal/models"
	appErrors "github.com/noah-isme/tutoring-scheduler/pkg/errors"
)

func newTestExportService() *ExportService {
	svc := NewExportService(nil)
	svc.now = fixedClock()
	return svc
}

func TestConflictDataset(t *testing.T) {
	ds := ConflictDataset([]models.Conflict{
		{
			ID:           "c1",
			StudentID:    "s1",
			ConflictType: models.ConflictNoRoom,
			Severity:     models.SeverityMedium,
			Status:       models.ConflictStatusPending,
			Reason:       "教室已被占用",
			Suggestions:  []models.Suggestion{{Title: "Use room r2", Confidence: 0.85}, {Title: "later"}},
			IsModified:   true,
		},
	})

	require.Len(t, ds.Rows, 1)
	row := ds.Rows[0]
	assert.Equal(t, "s1", row["student"])
	assert.Equal(t, "NO_ROOM", row["type"])
	assert.Equal(t, "Use room r2 (0.85)", row["top_suggestion"])
	assert.Equal(t, "true", row["modified"])
}

func TestLedgerDataset(t *testing.T) {
	conflictID := "c1"
	ds := LedgerDataset([]models.ModificationRecord{
		{
			Timestamp:  time.Date(2024, 9, 2, 8, 0, 0, 0, time.UTC),
			TargetType: models.TargetTeacher,
			TargetID:   "t1",
			TargetName: "Ada",
			Field:      models.FieldSubjects,
			OldValue:   []string{"math"},
			NewValue:   []string{"math", "physics"},
			ConflictID: &conflictID,
		},
		{TargetType: models.TargetTeacher, TargetID: "t2", Field: models.FieldMaxWeeklyHours, OldValue: 24.0, NewValue: 12.5},
	})

	require.Len(t, ds.Rows, 2)
	assert.Equal(t, "2024-09-02T08:00:00Z", ds.Rows[0]["timestamp"])
	assert.Equal(t, "Ada", ds.Rows[0]["target"])
	assert.Equal(t, `["math","physics"]`, ds.Rows[0]["new_value"])
	assert.Equal(t, "c1", ds.Rows[0]["conflict_id"])
	assert.Equal(t, "t2", ds.Rows[1]["target"])
	assert.Equal(t, "24", ds.Rows[1]["old_value"])
	assert.Equal(t, "12.5", ds.Rows[1]["new_value"])
	assert.Equal(t, "", ds.Rows[1]["conflict_id"])
}

func TestExportServiceRendersFormats(t *testing.T) {
	svc := newTestExportService()
	conflicts := []models.Conflict{{ID: "c1", StudentID: "s1", Reason: "无教师可用"}}

	csvReport, err := svc.ConflictReport(conflicts, "")
	require.NoError(t, err)
	assert.Equal(t, "conflicts_20240902_080000.csv", csvReport.Filename)
	assert.Equal(t, "text/csv; charset=utf-8", csvReport.ContentType)
	assert.True(t, strings.Contains(string(csvReport.Body), "无教师可用"))

	pdfReport, err := svc.ModificationReport(nil, "PDF")
	require.NoError(t, err)
	assert.Equal(t, "modifications_20240902_080000.pdf", pdfReport.Filename)
	assert.True(t, bytes.HasPrefix(pdfReport.Body, []byte("%PDF-")))
}

func TestExportServiceRejectsUnknownFormat(t *testing.T) {
	_, err := newTestExportService().ConflictReport(nil, "xlsx")
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrValidation.Code, appErrors.FromError(err).Code)
}
