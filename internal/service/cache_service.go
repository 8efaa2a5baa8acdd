package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/noah-isme/tutoring-scheduler/internal/dto"
	appErrors "github.com/noah-isme/tutoring-scheduler/pkg/errors"
)

// CacheRepository abstracts persistence for cached payloads.
type CacheRepository interface {
	Get(ctx context.Context, key string, dest interface{}) error
	Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error
	DeleteByPattern(ctx context.Context, pattern string) error
}

// CacheService orchestrates cache operations and related metrics.
type CacheService struct {
	repo       CacheRepository
	metrics    *MetricsService
	defaultTTL time.Duration
	logger     *zap.Logger
	enabled    bool
}

// NewCacheService constructs a cache service.
func NewCacheService(repo CacheRepository, metrics *MetricsService, defaultTTL time.Duration, logger *zap.Logger, enabled bool) *CacheService {
	if defaultTTL <= 0 {
		defaultTTL = 5 * time.Minute
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &CacheService{repo: repo, metrics: metrics, defaultTTL: defaultTTL, logger: logger, enabled: enabled}
}

// Enabled indicates whether caching is active.
func (s *CacheService) Enabled() bool {
	return s != nil && s.enabled && s.repo != nil
}

// Get attempts to retrieve a cached entry. It returns true when the cache was hit.
func (s *CacheService) Get(ctx context.Context, key string, dest interface{}) (bool, error) {
	if !s.Enabled() {
		return false, nil
	}
	start := time.Now()
	err := s.repo.Get(ctx, key, dest)
	s.metrics.RecordCacheOperation(err == nil, time.Since(start))
	if err != nil {
		if errors.Is(err, appErrors.ErrCacheMiss) {
			return false, nil
		}
		s.logger.Warn("cache get failed", zap.String("key", key), zap.Error(err))
		return false, err
	}
	return true, nil
}

// Set stores the value in cache.
func (s *CacheService) Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error {
	if !s.Enabled() {
		return nil
	}
	if ttl <= 0 {
		ttl = s.defaultTTL
	}
	start := time.Now()
	err := s.repo.Set(ctx, key, value, ttl)
	s.metrics.ObserveCacheWrite(time.Since(start))
	if err != nil {
		s.logger.Warn("cache set failed", zap.String("key", key), zap.Error(err))
	}
	return err
}

// Invalidate removes cached values for the provided pattern.
func (s *CacheService) Invalidate(ctx context.Context, pattern string) error {
	if !s.Enabled() {
		return nil
	}
	if err := s.repo.DeleteByPattern(ctx, pattern); err != nil {
		s.logger.Warn("cache invalidate failed", zap.String("pattern", pattern), zap.Error(err))
		return err
	}
	return nil
}

// ExportCache keeps the export snapshot of one adjustment session in the cache.
type ExportCache struct {
	cache     *CacheService
	sessionID string
}

// NewExportCache binds the cache to a session id.
func NewExportCache(cache *CacheService, sessionID string) *ExportCache {
	if sessionID == "" {
		sessionID = "default"
	}
	return &ExportCache{cache: cache, sessionID: sessionID}
}

// Key is the cache key of the session's export snapshot.
func (e *ExportCache) Key() string {
	return fmt.Sprintf("adjustments:%s:export", e.sessionID)
}

// Snapshot serves the cached snapshot or builds and stores a fresh one. The bool reports a cache hit.
// Cache failures never fail the request.
func (e *ExportCache) Snapshot(ctx context.Context, build func() dto.ExportSnapshot) (dto.ExportSnapshot, bool) {
	var cached dto.ExportSnapshot
	if hit, err := e.cache.Get(ctx, e.Key(), &cached); err == nil && hit {
		return cached, true
	}
	snapshot := build()
	_ = e.cache.Set(ctx, e.Key(), snapshot, 0)
	return snapshot, false
}

// Invalidate drops the cached snapshot.
func (e *ExportCache) Invalidate(ctx context.Context) error {
	return e.cache.Invalidate(ctx, e.Key())
}
