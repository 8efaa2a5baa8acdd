package handler

import (
	"context"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/tutoring-scheduler/internal/dto"
	"github.com/noah-isme/tutoring-scheduler/internal/middleware"
	"github.com/noah-isme/tutoring-scheduler/internal/models"
	"github.com/noah-isme/tutoring-scheduler/internal/service"
	appErrors "github.com/noah-isme/tutoring-scheduler/pkg/errors"
	"github.com/noah-isme/tutoring-scheduler/pkg/response"
)

type adjustmentOrchestrator interface {
	ListConflicts(filter models.ConflictFilter) ([]models.Conflict, models.Pagination)
	GetConflictByID(id string) (models.Conflict, bool)
	GetEnhancedConflicts() []models.Conflict
	RetryScheduleForStudent(ctx context.Context, conflictID string) dto.RetryResult
	BatchRetrySchedule(ctx context.Context) dto.BatchRetryResult
	SkipConflict(conflictID string) dto.SkipResult
	ApplySuggestion(conflictID, suggestionID, reason string) dto.ApplySuggestionResult
	ModifyData(req dto.ModifyDataRequest) dto.ModifyDataResult
	GetAllModifications() []models.ModificationRecord
	GetModificationsFor(targetType models.TargetType, targetID string) []models.ModificationRecord
	GetStatistics() dto.Statistics
	GetModifiedData() dto.ExportSnapshot
}

type reportBuilder interface {
	ConflictReport(conflicts []models.Conflict, format service.ReportFormat) (*service.RenderedReport, error)
	ModificationReport(records []models.ModificationRecord, format service.ReportFormat) (*service.RenderedReport, error)
}

type snapshotCache interface {
	Snapshot(ctx context.Context, build func() dto.ExportSnapshot) (dto.ExportSnapshot, bool)
}

type rosterWriter interface {
	SaveWorkingCopies(ctx context.Context, roster models.Roster) error
}

type ledgerReader interface {
	ListBySession(ctx context.Context, sessionID string) ([]models.ModificationRecord, error)
	ListByConflict(ctx context.Context, conflictID string) ([]models.ModificationRecord, error)
	ListByTarget(ctx context.Context, targetType models.TargetType, targetID string) ([]models.ModificationRecord, error)
}

// AdjustmentHandler exposes the conflict adjustment workflow.
type AdjustmentHandler struct {
	service   adjustmentOrchestrator
	reports   reportBuilder
	cache     snapshotCache
	roster    rosterWriter
	ledger    ledgerReader
	sessionID string
}

// NewAdjustmentHandler constructs the handler. cache and roster may be nil.
func NewAdjustmentHandler(svc *service.AdjustmentService, reports *service.ExportService, cache *service.ExportCache, roster rosterWriter) *AdjustmentHandler {
	h := &AdjustmentHandler{service: svc, reports: reports, roster: roster}
	if cache != nil {
		h.cache = cache
	}
	return h
}

// WithLedger serves persisted ledger entries of sessionID from store.
func (h *AdjustmentHandler) WithLedger(store ledgerReader, sessionID string) *AdjustmentHandler {
	h.ledger = store
	h.sessionID = sessionID
	return h
}

// ListConflicts godoc
// @Summary List scheduling conflicts
// @Tags Adjustments
// @Produce json
// @Param type query string false "Conflict type"
// @Param severity query string false "Severity"
// @Param status query string false "Status"
// @Param page query int false "Page"
// @Param page_size query int false "Page size"
// @Param format query string false "csv or pdf renders a report instead"
// @Success 200 {object} response.Envelope
// @Router /adjustments/conflicts [get]
func (h *AdjustmentHandler) ListConflicts(c *gin.Context) {
	if format := c.Query("format"); format != "" {
		h.renderReport(c, func() (*service.RenderedReport, error) {
			return h.reports.ConflictReport(h.service.GetEnhancedConflicts(), service.ReportFormat(format))
		})
		return
	}
	filter := models.ConflictFilter{
		Type:     models.ConflictType(strings.ToUpper(c.Query("type"))),
		Severity: models.Severity(strings.ToUpper(c.Query("severity"))),
		Status:   models.ConflictStatus(strings.ToUpper(c.Query("status"))),
		Page:     queryInt(c, "page"),
		PageSize: queryInt(c, "page_size"),
	}
	conflicts, pagination := h.service.ListConflicts(filter)
	response.JSON(c, http.StatusOK, conflicts, &pagination)
}

// GetConflict godoc
// @Summary Get one conflict with suggestions
// @Tags Adjustments
// @Produce json
// @Param id path string true "Conflict ID"
// @Success 200 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /adjustments/conflicts/{id} [get]
func (h *AdjustmentHandler) GetConflict(c *gin.Context) {
	conflict, ok := h.service.GetConflictByID(c.Param("id"))
	if !ok {
		response.Error(c, appErrors.Clone(appErrors.ErrNotFound, "conflict not found"))
		return
	}
	response.JSON(c, http.StatusOK, conflict, nil)
}

// Retry godoc
// @Summary Re-run matching for the conflict's student
// @Tags Adjustments
// @Produce json
// @Param id path string true "Conflict ID"
// @Success 200 {object} response.Envelope
// @Failure 409 {object} response.Envelope
// @Failure 502 {object} response.Envelope
// @Router /adjustments/conflicts/{id}/retry [post]
func (h *AdjustmentHandler) Retry(c *gin.Context) {
	res := h.service.RetryScheduleForStudent(c.Request.Context(), c.Param("id"))
	respondResult(c, res.OperationResult, res)
}

// Skip godoc
// @Summary Skip a conflict
// @Tags Adjustments
// @Produce json
// @Param id path string true "Conflict ID"
// @Success 200 {object} response.Envelope
// @Router /adjustments/conflicts/{id}/skip [post]
func (h *AdjustmentHandler) Skip(c *gin.Context) {
	res := h.service.SkipConflict(c.Param("id"))
	respondResult(c, res.OperationResult, res)
}

// ApplySuggestion godoc
// @Summary Apply a suggestion's mutations
// @Tags Adjustments
// @Accept json
// @Produce json
// @Param id path string true "Conflict ID"
// @Param suggestionId path string true "Suggestion ID"
// @Param payload body dto.ApplySuggestionRequest false "Reason"
// @Success 200 {object} response.Envelope
// @Router /adjustments/conflicts/{id}/suggestions/{suggestionId}/apply [post]
func (h *AdjustmentHandler) ApplySuggestion(c *gin.Context) {
	var req dto.ApplySuggestionRequest
	if c.Request.ContentLength != 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid apply payload"))
			return
		}
	}
	res := h.service.ApplySuggestion(c.Param("id"), c.Param("suggestionId"), reasonOrOperator(c, req.Reason))
	respondResult(c, res.OperationResult, res)
}

// BatchRetry godoc
// @Summary Retry every open conflict sequentially
// @Tags Adjustments
// @Produce json
// @Success 200 {object} response.Envelope
// @Router /adjustments/batch-retry [post]
func (h *AdjustmentHandler) BatchRetry(c *gin.Context) {
	res := h.service.BatchRetrySchedule(c.Request.Context())
	respondResult(c, res.OperationResult, res)
}

// ModifyData godoc
// @Summary Write one field on a working-copy record
// @Tags Adjustments
// @Accept json
// @Produce json
// @Param payload body dto.ModifyDataRequest true "Modification"
// @Success 200 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /adjustments/modifications [post]
func (h *AdjustmentHandler) ModifyData(c *gin.Context) {
	var req dto.ModifyDataRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid modification payload"))
		return
	}
	req.Reason = reasonOrOperator(c, req.Reason)
	res := h.service.ModifyData(req)
	respondResult(c, res.OperationResult, res)
}

// ListModifications godoc
// @Summary List ledger entries
// @Tags Adjustments
// @Produce json
// @Param targetType query string false "student, teacher or classroom"
// @Param targetId query string false "Record ID, required with targetType"
// @Success 200 {object} response.Envelope
// @Router /adjustments/modifications [get]
func (h *AdjustmentHandler) ListModifications(c *gin.Context) {
	records, err := h.modifications(c)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, records, nil)
}

// ExportModifications godoc
// @Summary Download the ledger as CSV or PDF
// @Tags Adjustments
// @Produce text/csv
// @Produce application/pdf
// @Param format query string false "csv (default) or pdf"
// @Success 200 {file} file
// @Router /adjustments/modifications/export [get]
func (h *AdjustmentHandler) ExportModifications(c *gin.Context) {
	records, err := h.modifications(c)
	if err != nil {
		response.Error(c, err)
		return
	}
	h.renderReport(c, func() (*service.RenderedReport, error) {
		return h.reports.ModificationReport(records, service.ReportFormat(c.DefaultQuery("format", "csv")))
	})
}

// PersistedLedger godoc
// @Summary Ledger entries stored by earlier and current sessions
// @Tags Adjustments
// @Produce json
// @Param conflictId query string false "Entries tied to one conflict"
// @Param targetType query string false "student, teacher or classroom"
// @Param targetId query string false "Record ID, required with targetType"
// @Success 200 {object} response.Envelope
// @Failure 503 {object} response.Envelope
// @Router /adjustments/ledger [get]
func (h *AdjustmentHandler) PersistedLedger(c *gin.Context) {
	if h.ledger == nil {
		response.Error(c, appErrors.ErrPersistenceDisabled)
		return
	}
	ctx := c.Request.Context()
	targetType := models.TargetType(strings.ToLower(c.Query("targetType")))
	targetID := c.Query("targetId")

	var (
		records []models.ModificationRecord
		err     error
	)
	switch {
	case c.Query("conflictId") != "":
		records, err = h.ledger.ListByConflict(ctx, c.Query("conflictId"))
	case targetType != "" || targetID != "":
		if err := validTarget(targetType, targetID); err != nil {
			response.Error(c, err)
			return
		}
		records, err = h.ledger.ListByTarget(ctx, targetType, targetID)
	default:
		records, err = h.ledger.ListBySession(ctx, h.sessionID)
	}
	if err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to read ledger"))
		return
	}
	response.JSON(c, http.StatusOK, records, nil)
}

// Statistics godoc
// @Summary Conflict counts by type, severity and status
// @Tags Adjustments
// @Produce json
// @Success 200 {object} response.Envelope
// @Router /adjustments/statistics [get]
func (h *AdjustmentHandler) Statistics(c *gin.Context) {
	response.JSON(c, http.StatusOK, h.service.GetStatistics(), nil)
}

// Export godoc
// @Summary Working copies of every record for persistence
// @Tags Adjustments
// @Produce json
// @Success 200 {object} response.Envelope
// @Router /adjustments/export [get]
func (h *AdjustmentHandler) Export(c *gin.Context) {
	if h.cache == nil {
		response.JSON(c, http.StatusOK, h.service.GetModifiedData(), nil)
		return
	}
	snapshot, hit := h.cache.Snapshot(c.Request.Context(), h.service.GetModifiedData)
	middleware.SetCacheHit(c, hit)
	response.JSON(c, http.StatusOK, snapshot, nil, middleware.ExtractMeta(c))
}

// CommitExport godoc
// @Summary Persist the working copies to the roster tables
// @Tags Adjustments
// @Produce json
// @Success 200 {object} response.Envelope
// @Failure 503 {object} response.Envelope
// @Router /adjustments/export/commit [post]
func (h *AdjustmentHandler) CommitExport(c *gin.Context) {
	if h.roster == nil {
		response.Error(c, appErrors.ErrPersistenceDisabled)
		return
	}
	snapshot := h.service.GetModifiedData()
	roster := models.Roster{
		Students:   snapshot.Students,
		Teachers:   snapshot.Teachers,
		Classrooms: snapshot.Classrooms,
		Courses:    snapshot.Courses,
	}
	if err := h.roster.SaveWorkingCopies(c.Request.Context(), roster); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to persist working copies"))
		return
	}
	response.JSON(c, http.StatusOK, gin.H{
		"students":   len(roster.Students),
		"teachers":   len(roster.Teachers),
		"classrooms": len(roster.Classrooms),
		"courses":    len(roster.Courses),
	}, nil)
}

func (h *AdjustmentHandler) modifications(c *gin.Context) ([]models.ModificationRecord, error) {
	targetType := models.TargetType(strings.ToLower(c.Query("targetType")))
	targetID := c.Query("targetId")
	if targetType == "" && targetID == "" {
		return h.service.GetAllModifications(), nil
	}
	if err := validTarget(targetType, targetID); err != nil {
		return nil, err
	}
	return h.service.GetModificationsFor(targetType, targetID), nil
}

func validTarget(targetType models.TargetType, targetID string) error {
	switch {
	case targetType == "" || targetID == "":
		return appErrors.Clone(appErrors.ErrValidation, "targetType and targetId must be given together")
	case targetType != models.TargetStudent && targetType != models.TargetTeacher && targetType != models.TargetClassroom:
		return appErrors.Clone(appErrors.ErrValidation, "unknown targetType")
	}
	return nil
}

func (h *AdjustmentHandler) renderReport(c *gin.Context, render func() (*service.RenderedReport, error)) {
	report, err := render()
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Attachment(c, report.Filename, report.ContentType, report.Body)
}

// respondResult renders coded failures with their mapped status. Uncoded failures, such as a batch
// with failed students, are reported as 200 with the result body.
func respondResult(c *gin.Context, result dto.OperationResult, body interface{}) {
	if result.Success || result.Code == "" {
		response.JSON(c, http.StatusOK, body, nil)
		return
	}
	response.Failure(c, result.Code, result.Message, body)
}

func queryInt(c *gin.Context, key string) int {
	v, err := strconv.Atoi(c.Query(key))
	if err != nil {
		return 0
	}
	return v
}
