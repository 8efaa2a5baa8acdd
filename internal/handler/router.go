package handler

import (
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/noah-isme/tutoring-scheduler/internal/middleware"
	"github.com/noah-isme/tutoring-scheduler/internal/models"
	"github.com/noah-isme/tutoring-scheduler/internal/service"
)

// RouteConfig holds what the API routes need besides the handlers.
type RouteConfig struct {
	APIPrefix   string
	Validator   middleware.TokenValidator
	Metrics     *service.MetricsService
	Logger      *zap.Logger
	IssueTokens bool
}

// Register mounts the adjustment API on r. auth may be nil when token issuing is disabled.
func Register(r gin.IRouter, cfg RouteConfig, adjustments *AdjustmentHandler, metrics *MetricsHandler, auth *AuthHandler) {
	r.GET("/health", metrics.Health)
	r.GET("/metrics", metrics.Prometheus)

	prefix := cfg.APIPrefix
	if prefix == "" {
		prefix = "/api/v1"
	}
	api := r.Group(prefix)
	api.Use(middleware.Metrics(cfg.Metrics), middleware.WithResponseMeta())

	if cfg.IssueTokens && auth != nil {
		api.POST("/auth/token", auth.IssueToken)
	}

	secured := api.Group("")
	secured.Use(middleware.JWT(cfg.Validator))
	secured.GET("/metrics/summary", middleware.RBAC(models.RoleAdmin), metrics.Summary)

	read := middleware.RBAC(models.RoleAdmin, models.RoleOperator, models.RoleViewer)
	write := middleware.RBAC(models.RoleAdmin, models.RoleOperator)
	audit := func(action string) gin.HandlerFunc { return middleware.Audit(cfg.Logger, action) }

	adj := secured.Group("/adjustments")
	adj.GET("/conflicts", read, adjustments.ListConflicts)
	adj.GET("/conflicts/:id", read, adjustments.GetConflict)
	adj.POST("/conflicts/:id/retry", write, audit("retry"), adjustments.Retry)
	adj.POST("/conflicts/:id/skip", write, audit("skip"), adjustments.Skip)
	adj.POST("/conflicts/:id/suggestions/:suggestionId/apply", write, audit("apply_suggestion"), adjustments.ApplySuggestion)
	adj.POST("/batch-retry", write, audit("batch_retry"), adjustments.BatchRetry)
	adj.POST("/modifications", write, audit("modify_data"), adjustments.ModifyData)
	adj.GET("/modifications", read, adjustments.ListModifications)
	adj.GET("/modifications/export", read, adjustments.ExportModifications)
	adj.GET("/ledger", read, adjustments.PersistedLedger)
	adj.GET("/statistics", read, adjustments.Statistics)
	adj.GET("/export", read, adjustments.Export)
	adj.POST("/export/commit", write, audit("commit_export"), adjustments.CommitExport)
}
