package service

import (
	"sort"
	"sync"

	"go.uber.org/zap"

	"github.com/noah-isme/tutoring-scheduler/internal/dto"
	"github.com/noah-isme/tutoring-scheduler/internal/models"
	appErrors "github.com/noah-isme/tutoring-scheduler/pkg/errors"
)

// Event names used for logging and metrics.
const (
	EventConflictUpdate = "conflict_update"
	EventDataModified   = "data_modified"
	EventRetryComplete  = "retry_complete"
)

// ConflictListener observes conflict state changes.
type ConflictListener func(conflict models.Conflict)

// DataModifiedListener observes ledger appends.
type DataModifiedListener func(record models.ModificationRecord)

// RetryListener observes completed retries.
type RetryListener func(result dto.RetryResult)

type listenerRegistry struct {
	mu       sync.RWMutex
	nextID   int
	conflict map[int]ConflictListener
	data     map[int]DataModifiedListener
	retry    map[int]RetryListener
}

func newListenerRegistry() *listenerRegistry {
	return &listenerRegistry{
		conflict: make(map[int]ConflictListener),
		data:     make(map[int]DataModifiedListener),
		retry:    make(map[int]RetryListener),
	}
}

// pendingEvent is queued while the service lock is held and dispatched after release.
type pendingEvent struct {
	conflict *models.Conflict
	record   *models.ModificationRecord
	retry    *dto.RetryResult
}

// OnConflictUpdate registers a listener and returns its unsubscribe function.
func (s *AdjustmentService) OnConflictUpdate(fn ConflictListener) func() {
	r := s.listeners
	r.mu.Lock()
	defer r.mu.Unlock()
	r.nextID++
	id := r.nextID
	r.conflict[id] = fn
	return func() {
		r.mu.Lock()
		delete(r.conflict, id)
		r.mu.Unlock()
	}
}

// OnDataModified registers a listener and returns its unsubscribe function.
func (s *AdjustmentService) OnDataModified(fn DataModifiedListener) func() {
	r := s.listeners
	r.mu.Lock()
	defer r.mu.Unlock()
	r.nextID++
	id := r.nextID
	r.data[id] = fn
	return func() {
		r.mu.Lock()
		delete(r.data, id)
		r.mu.Unlock()
	}
}

// OnRetryComplete registers a listener and returns its unsubscribe function.
func (s *AdjustmentService) OnRetryComplete(fn RetryListener) func() {
	r := s.listeners
	r.mu.Lock()
	defer r.mu.Unlock()
	r.nextID++
	id := r.nextID
	r.retry[id] = fn
	return func() {
		r.mu.Lock()
		delete(r.retry, id)
		r.mu.Unlock()
	}
}

// dispatch delivers queued events in order. It must be called without the service lock.
func (s *AdjustmentService) dispatch(events []pendingEvent) {
	if len(events) == 0 {
		return
	}
	r := s.listeners
	r.mu.RLock()
	conflictFns := sortedListeners(r.conflict)
	dataFns := sortedListeners(r.data)
	retryFns := sortedListeners(r.retry)
	r.mu.RUnlock()

	for _, ev := range events {
		switch {
		case ev.conflict != nil:
			for _, fn := range conflictFns {
				conflict := ev.conflict.Clone()
				s.safeCall(EventConflictUpdate, func() { fn(conflict) })
			}
		case ev.record != nil:
			for _, fn := range dataFns {
				record := *ev.record
				s.safeCall(EventDataModified, func() { fn(record) })
			}
		case ev.retry != nil:
			for _, fn := range retryFns {
				result := *ev.retry
				s.safeCall(EventRetryComplete, func() { fn(result) })
			}
		}
	}
}

// safeCall isolates a listener so a panic never reaches other listeners or the caller.
func (s *AdjustmentService) safeCall(event string, fn func()) {
	defer func() {
		if rec := recover(); rec != nil {
			s.metrics.IncListenerFailure(event)
			s.logger.Error("adjustment listener failed",
				zap.String("event", event),
				zap.String("code", appErrors.ErrListener.Code),
				zap.Any("panic", rec),
			)
		}
	}()
	fn()
}

func sortedListeners[T any](m map[int]T) []T {
	ids := make([]int, 0, len(m))
	for id := range m {
		ids = append(ids, id)
	}
	sort.Ints(ids)
	out := make([]T, len(ids))
	for i, id := range ids {
		out[i] = m[id]
	}
	return out
}
