package dto

import (
	"time"

	"github.com/noah-isme/tutoring-scheduler/internal/models"
)

// OperationResult is embedded in every orchestrator result.
type OperationResult struct {
	Success bool   `json:"success"`
	Code    string `json:"code,omitempty"`
	Message string `json:"message"`
}

// ModifyDataRequest writes one field on a working-copy record.
type ModifyDataRequest struct {
	TargetType models.TargetType `json:"targetType" validate:"required,oneof=student teacher classroom"`
	TargetID   string            `json:"targetId" validate:"required"`
	Field      string            `json:"field" validate:"required"`
	NewValue   interface{}       `json:"newValue"`
	Reason     string            `json:"reason" validate:"max=500"`
	ConflictID *string           `json:"conflictId,omitempty"`
}

// ModifyDataResult reports the ledger entry produced by a write, if any.
type ModifyDataResult struct {
	OperationResult
	Changed bool                       `json:"changed"`
	Record  *models.ModificationRecord `json:"record,omitempty"`
}

// ApplySuggestionRequest carries the operator's reason for applying a proposal.
type ApplySuggestionRequest struct {
	Reason string `json:"reason" validate:"max=500"`
}

// ApplySuggestionResult lists the ledger entries written by the suggestion.
type ApplySuggestionResult struct {
	OperationResult
	Records  []models.ModificationRecord `json:"records"`
	Conflict *models.Conflict            `json:"conflict,omitempty"`
}

// RetryResult is the outcome of re-running the matcher for one conflict.
type RetryResult struct {
	OperationResult
	ConflictID string           `json:"conflictId"`
	StudentID  string           `json:"studentId"`
	Course     *models.Course   `json:"course,omitempty"`
	Conflict   *models.Conflict `json:"conflict,omitempty"`
}

// BatchRetryResult aggregates a sequential batch retry.
type BatchRetryResult struct {
	OperationResult
	Attempted int           `json:"attempted"`
	Resolved  int           `json:"resolved"`
	Failed    int           `json:"failed"`
	Results   []RetryResult `json:"results"`
}

// SkipResult is the outcome of skipping a conflict.
type SkipResult struct {
	OperationResult
	Conflict *models.Conflict `json:"conflict,omitempty"`
}

// Statistics summarises the conflicts of an adjustment session.
type Statistics struct {
	Total         int                           `json:"total"`
	ByType        map[models.ConflictType]int   `json:"byType"`
	BySeverity    map[models.Severity]int       `json:"bySeverity"`
	ByStatus      map[models.ConflictStatus]int `json:"byStatus"`
	Pending       int                           `json:"pending"`
	InProgress    int                           `json:"inProgress"`
	Resolved      int                           `json:"resolved"`
	Skipped       int                           `json:"skipped"`
	Modified      int                           `json:"modified"`
	Modifications int                           `json:"modifications"`
	Courses       int                           `json:"courses"`
}

// ExportSnapshot is the working copy handed back to the persistence layer.
type ExportSnapshot struct {
	Students    []models.Student   `json:"students"`
	Teachers    []models.Teacher   `json:"teachers"`
	Classrooms  []models.Classroom `json:"classrooms"`
	Courses     []models.Course    `json:"courses"`
	GeneratedAt time.Time          `json:"generatedAt"`
}

// IssueTokenRequest requests an operator token in non-production environments.
type IssueTokenRequest struct {
	UserID   string      `json:"userId" validate:"required"`
	FullName string      `json:"fullName"`
	Role     models.Role `json:"role" validate:"required,oneof=ADMIN OPERATOR VIEWER"`
}

// IssueTokenResponse returns a signed operator token.
type IssueTokenResponse struct {
	AccessToken string    `json:"access_token"`
	ExpiresAt   time.Time `json:"expires_at"`
}
