package service

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/noah-isme/tutoring-scheduler/internal/dto"
	"github.com/noah-isme/tutoring-scheduler/internal/models"
	"github.com/noah-isme/tutoring-scheduler/pkg/jobs"
)

// ModificationStore persists ledger entries outside the session.
type ModificationStore interface {
	Create(ctx context.Context, sessionID string, record *models.ModificationRecord) error
}

// SinkConfig configures the listeners attached to a session.
type SinkConfig struct {
	SessionID string
	Timeout   time.Duration
	// QueueSize enables background persistence when positive.
	QueueSize  int
	MaxRetries int
}

const ledgerJobType = "ledger.persist"

// AttachLedgerPersistence copies every ledger entry into the store. Store failures are logged.
func AttachLedgerPersistence(svc *AdjustmentService, store ModificationStore, cfg SinkConfig, logger *zap.Logger) func() {
	if svc == nil || store == nil {
		return func() {}
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	timeout := sinkTimeout(cfg.Timeout)
	return svc.OnDataModified(func(record models.ModificationRecord) {
		ctx, cancel := context.WithTimeout(context.Background(), timeout)
		defer cancel()
		if err := store.Create(ctx, cfg.SessionID, &record); err != nil {
			logger.Warn("persist modification failed",
				zap.String("session_id", cfg.SessionID),
				zap.String("record_id", record.ID),
				zap.Error(err))
		}
	})
}

// AttachQueuedLedgerPersistence hands ledger entries to a single background worker so store latency never
// reaches the orchestrator. Entries are written in commit order. The returned func unsubscribes and drains.
func AttachQueuedLedgerPersistence(ctx context.Context, svc *AdjustmentService, store ModificationStore, cfg SinkConfig, logger *zap.Logger) func() {
	if svc == nil || store == nil {
		return func() {}
	}
	if cfg.QueueSize <= 0 {
		return AttachLedgerPersistence(svc, store, cfg, logger)
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	queue := jobs.NewQueue("ledger", func(ctx context.Context, job jobs.Job) error {
		record := job.Payload.(models.ModificationRecord)
		return store.Create(ctx, cfg.SessionID, &record)
	}, jobs.QueueConfig{
		Workers:    1,
		BufferSize: cfg.QueueSize,
		MaxRetries: cfg.MaxRetries,
		JobTimeout: sinkTimeout(cfg.Timeout),
		Logger:     logger,
	})
	queue.Start(ctx)

	off := svc.OnDataModified(func(record models.ModificationRecord) {
		if err := queue.Offer(jobs.Job{ID: record.ID, Type: ledgerJobType, Payload: record}); err != nil {
			logger.Warn("ledger entry not queued",
				zap.String("session_id", cfg.SessionID),
				zap.String("record_id", record.ID),
				zap.Error(err))
		}
	})
	return func() {
		off()
		queue.Stop()
	}
}

// AttachExportInvalidation drops the cached export whenever the working copy changes.
func AttachExportInvalidation(svc *AdjustmentService, cache *ExportCache, cfg SinkConfig) func() {
	if svc == nil || cache == nil {
		return func() {}
	}
	timeout := sinkTimeout(cfg.Timeout)
	invalidate := func() {
		ctx, cancel := context.WithTimeout(context.Background(), timeout)
		defer cancel()
		_ = cache.Invalidate(ctx)
	}
	offData := svc.OnDataModified(func(models.ModificationRecord) { invalidate() })
	offRetry := svc.OnRetryComplete(func(result dto.RetryResult) {
		if result.Success {
			invalidate()
		}
	})
	return func() {
		offData()
		offRetry()
	}
}

// AttachActivityLog writes conflict transitions and retry outcomes to logger.
func AttachActivityLog(svc *AdjustmentService, logger *zap.Logger) func() {
	if svc == nil || logger == nil {
		return func() {}
	}
	offConflict := svc.OnConflictUpdate(func(c models.Conflict) {
		logger.Info("conflict updated",
			zap.String("conflict_id", c.ID),
			zap.String("student_id", c.StudentID),
			zap.String("status", string(c.Status)),
			zap.String("type", string(c.ConflictType)),
			zap.Bool("modified", c.IsModified),
			zap.Int("suggestions", len(c.Suggestions)))
	})
	offRetry := svc.OnRetryComplete(func(r dto.RetryResult) {
		fields := []zap.Field{
			zap.String("conflict_id", r.ConflictID),
			zap.String("student_id", r.StudentID),
			zap.Bool("success", r.Success),
		}
		if r.Course != nil {
			fields = append(fields, zap.String("course_id", r.Course.ID), zap.Int("day", r.Course.Day), zap.Int("start_slot", r.Course.StartSlot))
		}
		if !r.Success {
			fields = append(fields, zap.String("code", r.Code), zap.String("message", r.Message))
		}
		logger.Info("retry completed", fields...)
	})
	return func() {
		offConflict()
		offRetry()
	}
}

func sinkTimeout(d time.Duration) time.Duration {
	if d <= 0 {
		return 2 * time.Second
	}
	return d
}
