package service

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/noah-isme/tutoring-scheduler/internal/dto"
	"github.com/noah-isme/tutoring-scheduler/internal/models"
	appErrors "github.com/noah-isme/tutoring-scheduler/pkg/errors"
)

// Retry outcome labels.
const (
	RetryOutcomeResolved  = "resolved"
	RetryOutcomeFailed    = "failed"
	RetryOutcomeError     = "error"
	RetryOutcomeDiscarded = "discarded"
)

const unknownReason = "未能排课：原因未知"

// Diagnoser explains why a student cannot be placed.
type Diagnoser interface {
	Diagnose(student models.Student, teachers []models.Teacher, classrooms []models.Classroom, occupied *OccupiedIndex) string
}

// AdjustmentSession is the input of an adjustment session. It is deep-copied on construction.
type AdjustmentSession struct {
	Students   []models.Student
	Teachers   []models.Teacher
	Classrooms []models.Classroom
	Courses    []models.Course
	// Conflicts supplied by a prior matching pass; students without an entry are diagnosed.
	Conflicts []MatchConflict
}

// AdjustmentOption configures the service.
type AdjustmentOption func(*AdjustmentService)

// WithAdjustmentClock overrides the time source.
func WithAdjustmentClock(now func() time.Time) AdjustmentOption {
	return func(s *AdjustmentService) {
		if now != nil {
			s.now = now
		}
	}
}

// WithAdjustmentIDGenerator overrides conflict and ledger id generation.
func WithAdjustmentIDGenerator(fn func() string) AdjustmentOption {
	return func(s *AdjustmentService) {
		if fn != nil {
			s.newID = fn
		}
	}
}

// WithSuggestionEngine overrides the suggestion engine.
func WithSuggestionEngine(engine *SuggestionEngine) AdjustmentOption {
	return func(s *AdjustmentService) {
		if engine != nil {
			s.suggestions = engine
		}
	}
}

// WithDiagnoser overrides how initial conflict reasons are produced.
func WithDiagnoser(d Diagnoser) AdjustmentOption {
	return func(s *AdjustmentService) {
		if d != nil {
			s.diagnoser = d
		}
	}
}

// WithAdjustmentMetrics attaches Prometheus instrumentation.
func WithAdjustmentMetrics(metrics *MetricsService) AdjustmentOption {
	return func(s *AdjustmentService) {
		s.metrics = metrics
	}
}

// WithCandidateGenerator sets the generator used for pool sizes.
func WithCandidateGenerator(g *CandidateGenerator) AdjustmentOption {
	return func(s *AdjustmentService) {
		if g != nil {
			s.generator = g
		}
	}
}

// AdjustmentService is the stateful façade over matching, classification and suggestions.
// All working copies are private; callers only see clones.
type AdjustmentService struct {
	mu sync.Mutex

	students   []models.Student
	teachers   []models.Teacher
	classrooms []models.Classroom
	courses    []models.Course

	conflicts     []*models.Conflict
	conflictByID  map[string]*models.Conflict
	ledger        []models.ModificationRecord
	targetHistory map[string][]models.ModificationRecord
	inFlight      map[string]struct{}

	matcher     Matcher
	diagnoser   Diagnoser
	generator   *CandidateGenerator
	suggestions *SuggestionEngine
	listeners   *listenerRegistry
	validator   *validator.Validate
	metrics     *MetricsService
	logger      *zap.Logger
	now         func() time.Time
	newID       func() string
}

// NewAdjustmentService starts a session. Every student without a course becomes one PENDING conflict.
func NewAdjustmentService(session AdjustmentSession, matcher Matcher, logger *zap.Logger, opts ...AdjustmentOption) *AdjustmentService {
	if logger == nil {
		logger = zap.NewNop()
	}
	s := &AdjustmentService{
		students:      cloneStudents(session.Students),
		teachers:      cloneTeachers(session.Teachers),
		classrooms:    cloneClassrooms(session.Classrooms),
		courses:       append([]models.Course(nil), session.Courses...),
		conflictByID:  make(map[string]*models.Conflict),
		targetHistory: make(map[string][]models.ModificationRecord),
		inFlight:      make(map[string]struct{}),
		matcher:       matcher,
		listeners:     newListenerRegistry(),
		validator:     validator.New(),
		logger:        logger,
		now:           time.Now,
		newID:         uuid.NewString,
	}
	for _, opt := range opts {
		if opt != nil {
			opt(s)
		}
	}
	if s.generator == nil {
		s.generator = NewCandidateGenerator(DefaultMinCapacity)
	}
	if s.diagnoser == nil {
		if d, ok := matcher.(Diagnoser); ok {
			s.diagnoser = d
		} else {
			s.diagnoser = NewMatchingService(MatchingConfig{MinCapacity: s.generator.MinCapacity()}, nil, logger)
		}
	}
	if s.suggestions == nil {
		s.suggestions = NewSuggestionEngine(s.generator, 0, nil)
	}
	s.initConflicts(session.Conflicts)
	return s
}

func (s *AdjustmentService) initConflicts(supplied []MatchConflict) {
	reasons := make(map[string]string, len(supplied))
	for _, c := range supplied {
		if _, exists := reasons[c.StudentID]; !exists {
			reasons[c.StudentID] = c.Reason
		}
	}
	scheduled := make(map[string]struct{}, len(s.courses))
	for _, c := range s.courses {
		scheduled[c.StudentID] = struct{}{}
	}
	occupied := NewOccupiedIndex(s.courses)
	ts := s.now().UTC()

	for _, st := range s.students {
		if _, ok := scheduled[st.ID]; ok {
			continue
		}
		reason := strings.TrimSpace(reasons[st.ID])
		if reason == "" {
			reason = s.diagnoser.Diagnose(st, s.teachers, s.classrooms, occupied)
		}
		if reason == "" {
			reason = unknownReason
		}
		conflict := &models.Conflict{
			ID:                  s.newID(),
			StudentID:           st.ID,
			StudentName:         st.Name,
			Reason:              reason,
			Status:              models.ConflictStatusPending,
			ModificationHistory: []models.ModificationRecord{},
			CreatedAt:           ts,
			UpdatedAt:           ts,
		}
		s.classifyLocked(conflict)
		s.conflicts = append(s.conflicts, conflict)
		s.conflictByID[conflict.ID] = conflict
	}
	s.logger.Info("adjustment session started",
		zap.Int("students", len(s.students)),
		zap.Int("courses", len(s.courses)),
		zap.Int("conflicts", len(s.conflicts)),
	)
}

// classifyLocked re-runs the classifier and regenerates suggestions for the conflict's current reason.
func (s *AdjustmentService) classifyLocked(conflict *models.Conflict) {
	var student *models.Student
	if idx := s.studentIndex(conflict.StudentID); idx >= 0 {
		student = &s.students[idx]
	}
	pools := PoolSizes{}
	if student != nil {
		pools.Teachers = len(s.generator.QualifiedTeachers(*student, s.teachers))
		pools.Rooms = len(s.generator.SuitableClassrooms(*student, s.classrooms))
	}
	classification := Classify(conflict.Reason, pools, student)
	conflict.ConflictType = classification.Type
	conflict.Severity = classification.Severity
	conflict.ExtractedInfo = classification.ExtractedInfo
	conflict.Suggestions = s.suggestions.Generate(SuggestionInput{
		Conflict:   *conflict,
		Students:   s.students,
		Teachers:   s.teachers,
		Classrooms: s.classrooms,
		Courses:    s.courses,
	})
	s.metrics.IncConflict(conflict.ConflictType)
	s.metrics.ObserveSuggestions(conflict.Suggestions)
}

// --- Mutations ---

// ModifyData writes one field on a working copy and appends a ledger entry when the value changes.
func (s *AdjustmentService) ModifyData(req dto.ModifyDataRequest) dto.ModifyDataResult {
	if err := s.validator.Struct(req); err != nil {
		return dto.ModifyDataResult{OperationResult: failure(appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid modification payload"))}
	}

	s.mu.Lock()
	var conflict *models.Conflict
	if req.ConflictID != nil {
		c, ok := s.conflictByID[*req.ConflictID]
		if !ok {
			s.mu.Unlock()
			return dto.ModifyDataResult{OperationResult: failure(appErrors.Clone(appErrors.ErrNotFound, fmt.Sprintf("conflict %s not found", *req.ConflictID)))}
		}
		conflict = c
	}
	prepared, err := s.prepareMutation(req.TargetType, req.TargetID, req.Field, req.NewValue)
	if err != nil {
		s.mu.Unlock()
		return dto.ModifyDataResult{OperationResult: failure(err)}
	}
	if !prepared.changed() {
		s.mu.Unlock()
		return dto.ModifyDataResult{OperationResult: dto.OperationResult{Success: true, Message: "value unchanged"}}
	}
	record := s.commitLocked(prepared, req.Reason, conflict)
	events := []pendingEvent{{record: &record}}
	if conflict != nil {
		conflict.IsModified = true
		events = append(events, pendingEvent{conflict: ptrConflict(conflict.Clone())})
	}
	s.mu.Unlock()

	s.dispatch(events)
	return dto.ModifyDataResult{
		OperationResult: dto.OperationResult{Success: true, Message: fmt.Sprintf("%s.%s updated", req.TargetType, req.Field)},
		Changed:         true,
		Record:          &record,
	}
}

// commitLocked writes a prepared change and appends it to every history it belongs to.
func (s *AdjustmentService) commitLocked(p preparedMutation, reason string, conflict *models.Conflict) models.ModificationRecord {
	p.applier.write(p.newValue)
	record := models.ModificationRecord{
		ID:         s.newID(),
		Timestamp:  s.now().UTC(),
		TargetType: p.targetType,
		TargetID:   p.targetID,
		TargetName: p.targetName,
		Field:      p.field,
		OldValue:   p.oldValue,
		NewValue:   p.newValue,
		Reason:     reason,
	}
	if conflict != nil {
		id := conflict.ID
		record.ConflictID = &id
		conflict.ModificationHistory = append(conflict.ModificationHistory, record)
		conflict.UpdatedAt = record.Timestamp
	}
	key := historyKey(p.targetType, p.targetID)
	s.targetHistory[key] = append(s.targetHistory[key], record)
	s.ledger = append(s.ledger, record)
	s.metrics.IncModification(p.targetType)
	return record
}

// ApplySuggestion executes every mutation of a suggestion and moves the conflict to IN_PROGRESS.
// Mutations are decoded up front so a bad one leaves the session untouched.
func (s *AdjustmentService) ApplySuggestion(conflictID, suggestionID, reason string) dto.ApplySuggestionResult {
	s.mu.Lock()
	conflict, ok := s.conflictByID[conflictID]
	if !ok {
		s.mu.Unlock()
		return dto.ApplySuggestionResult{OperationResult: failure(appErrors.Clone(appErrors.ErrNotFound, fmt.Sprintf("conflict %s not found", conflictID)))}
	}
	if conflict.Status.Terminal() {
		s.mu.Unlock()
		return dto.ApplySuggestionResult{OperationResult: failure(appErrors.Clone(appErrors.ErrTerminalConflict, fmt.Sprintf("conflict %s is %s", conflictID, conflict.Status)))}
	}
	var suggestion *models.Suggestion
	for i := range conflict.Suggestions {
		if conflict.Suggestions[i].ID == suggestionID {
			suggestion = &conflict.Suggestions[i]
			break
		}
	}
	if suggestion == nil {
		s.mu.Unlock()
		return dto.ApplySuggestionResult{OperationResult: failure(appErrors.Clone(appErrors.ErrNotFound, fmt.Sprintf("suggestion %s not found", suggestionID)))}
	}
	if reason == "" {
		reason = suggestion.Title
	}

	prepared := make([]preparedMutation, 0, len(suggestion.Mutations))
	for _, m := range suggestion.Mutations {
		p, err := s.prepareMutation(m.TargetType, m.TargetID, m.Field, m.NewValue)
		if err != nil {
			s.mu.Unlock()
			return dto.ApplySuggestionResult{OperationResult: failure(err)}
		}
		prepared = append(prepared, p)
	}

	records := make([]models.ModificationRecord, 0, len(prepared))
	events := make([]pendingEvent, 0, len(prepared)+1)
	for _, p := range prepared {
		// re-read so earlier mutations in the same suggestion are reflected
		p.oldValue = p.applier.read()
		if !p.changed() {
			continue
		}
		record := s.commitLocked(p, reason, conflict)
		records = append(records, record)
		rec := record
		events = append(events, pendingEvent{record: &rec})
	}
	conflict.IsModified = true
	conflict.Status = models.ConflictStatusInProgress
	conflict.UpdatedAt = s.now().UTC()
	snapshot := conflict.Clone()
	events = append(events, pendingEvent{conflict: ptrConflict(snapshot)})
	s.mu.Unlock()

	s.dispatch(events)
	return dto.ApplySuggestionResult{
		OperationResult: dto.OperationResult{Success: true, Message: fmt.Sprintf("applied %q (%d changes)", suggestion.Title, len(records))},
		Records:         records,
		Conflict:        &snapshot,
	}
}

// --- Retries ---

// RetryScheduleForStudent re-runs the matcher for one conflict with the student's current record.
// The matcher is called without holding the lock; a second retry of the same conflict is rejected
// until the first returns.
func (s *AdjustmentService) RetryScheduleForStudent(ctx context.Context, conflictID string) dto.RetryResult {
	s.mu.Lock()
	conflict, ok := s.conflictByID[conflictID]
	if !ok {
		s.mu.Unlock()
		return dto.RetryResult{OperationResult: failure(appErrors.Clone(appErrors.ErrNotFound, fmt.Sprintf("conflict %s not found", conflictID))), ConflictID: conflictID}
	}
	base := dto.RetryResult{ConflictID: conflictID, StudentID: conflict.StudentID}
	if conflict.Status.Terminal() {
		s.mu.Unlock()
		base.OperationResult = failure(appErrors.Clone(appErrors.ErrTerminalConflict, fmt.Sprintf("conflict %s is %s", conflictID, conflict.Status)))
		return base
	}
	if _, running := s.inFlight[conflictID]; running {
		s.mu.Unlock()
		base.OperationResult = failure(appErrors.ErrRetryInFlight)
		return base
	}
	idx := s.studentIndex(conflict.StudentID)
	if idx < 0 {
		s.mu.Unlock()
		base.OperationResult = failure(appErrors.Clone(appErrors.ErrTargetNotFound, fmt.Sprintf("student %s not found", conflict.StudentID)))
		return base
	}
	if s.matcher == nil {
		s.mu.Unlock()
		base.OperationResult = failure(appErrors.Clone(appErrors.ErrCollaborator, "no matcher configured"))
		return base
	}

	s.inFlight[conflictID] = struct{}{}
	var events []pendingEvent
	if conflict.Status != models.ConflictStatusInProgress {
		conflict.Status = models.ConflictStatusInProgress
		conflict.UpdatedAt = s.now().UTC()
		events = append(events, pendingEvent{conflict: ptrConflict(conflict.Clone())})
	}
	req := MatchRequest{
		Students:   []models.Student{s.students[idx].Clone()},
		Teachers:   cloneTeachers(s.teachers),
		Classrooms: cloneClassrooms(s.classrooms),
		Existing:   append([]models.Course(nil), s.courses...),
	}
	student := req.Students[0]
	s.mu.Unlock()
	s.dispatch(events)

	res, err := s.matcher.Schedule(ctx, req)

	s.mu.Lock()
	delete(s.inFlight, conflictID)
	result, events := s.completeRetryLocked(conflict, student, res, err)
	s.mu.Unlock()

	s.dispatch(events)
	return result
}

func (s *AdjustmentService) completeRetryLocked(conflict *models.Conflict, student models.Student, res *MatchResult, err error) (dto.RetryResult, []pendingEvent) {
	result := dto.RetryResult{ConflictID: conflict.ID, StudentID: student.ID}

	if conflict.Status.Terminal() {
		s.metrics.IncRetry(RetryOutcomeDiscarded)
		result.OperationResult = failure(appErrors.Clone(appErrors.ErrTerminalConflict, fmt.Sprintf("conflict %s was %s while the retry was running", conflict.ID, conflict.Status)))
		return result, nil
	}
	if err == nil && res == nil {
		err = fmt.Errorf("matcher returned no result")
	}
	if err != nil {
		s.metrics.IncRetry(RetryOutcomeError)
		s.logger.Warn("retry matcher failed", zap.String("conflict_id", conflict.ID), zap.String("student_id", student.ID), zap.Error(err))
		result.OperationResult = dto.OperationResult{Success: false, Code: appErrors.ErrCollaborator.Code, Message: err.Error()}
		snapshot := conflict.Clone()
		result.Conflict = &snapshot
		return result, []pendingEvent{{retry: &result}}
	}

	if course, ok := courseFor(res.Courses, student.ID); ok {
		if NewOccupiedIndex(s.courses).Conflicts(course) {
			res = &MatchResult{Conflicts: []MatchConflict{{StudentID: student.ID, Reason: "无共同可用时间：重试结果与当前排课冲突"}}}
		} else {
			if course.ID == "" {
				course.ID = s.newID()
			}
			s.courses = append(s.courses, course)
			conflict.Status = models.ConflictStatusResolved
			conflict.UpdatedAt = s.now().UTC()
			s.metrics.IncRetry(RetryOutcomeResolved)
			snapshot := conflict.Clone()
			result.OperationResult = dto.OperationResult{Success: true, Message: fmt.Sprintf("scheduled %s on %s at %s", displayName(student.Name, student.ID), models.DayName(course.Day), models.SlotToClock(course.StartSlot))}
			result.Course = &course
			result.Conflict = &snapshot
			return result, []pendingEvent{{conflict: ptrConflict(snapshot)}, {retry: &result}}
		}
	}

	reason := res.Message
	for _, c := range res.Conflicts {
		if c.StudentID == student.ID && strings.TrimSpace(c.Reason) != "" {
			reason = c.Reason
			break
		}
	}
	if strings.TrimSpace(reason) == "" {
		reason = unknownReason
	}
	conflict.Reason = reason
	s.classifyLocked(conflict)
	conflict.UpdatedAt = s.now().UTC()
	s.metrics.IncRetry(RetryOutcomeFailed)
	snapshot := conflict.Clone()
	result.OperationResult = dto.OperationResult{Success: false, Code: appErrors.ErrConflict.Code, Message: reason}
	result.Conflict = &snapshot
	return result, []pendingEvent{{conflict: ptrConflict(snapshot)}, {retry: &result}}
}

// BatchRetrySchedule retries every PENDING or IN_PROGRESS conflict one after another.
// The batch runs to completion even when ctx is cancelled; only its values are kept.
func (s *AdjustmentService) BatchRetrySchedule(ctx context.Context) dto.BatchRetryResult {
	ctx = context.WithoutCancel(ctx)

	s.mu.Lock()
	ids := make([]string, 0, len(s.conflicts))
	for _, c := range s.conflicts {
		if !c.Status.Terminal() {
			ids = append(ids, c.ID)
		}
	}
	s.mu.Unlock()

	out := dto.BatchRetryResult{Results: make([]dto.RetryResult, 0, len(ids))}
	for _, id := range ids {
		res := s.RetryScheduleForStudent(ctx, id)
		if res.Code == appErrors.ErrTerminalConflict.Code {
			continue
		}
		out.Attempted++
		if res.Success {
			out.Resolved++
		} else {
			out.Failed++
		}
		out.Results = append(out.Results, res)
	}
	out.Success = out.Failed == 0
	out.Message = fmt.Sprintf("retried %d conflicts: %d resolved, %d failed", out.Attempted, out.Resolved, out.Failed)
	s.logger.Info("batch retry complete", zap.Int("attempted", out.Attempted), zap.Int("resolved", out.Resolved), zap.Int("failed", out.Failed))
	return out
}

// SkipConflict closes a conflict as SKIPPED. Skipping twice is a no-op; resolved conflicts stay resolved.
func (s *AdjustmentService) SkipConflict(conflictID string) dto.SkipResult {
	s.mu.Lock()
	conflict, ok := s.conflictByID[conflictID]
	if !ok {
		s.mu.Unlock()
		return dto.SkipResult{OperationResult: failure(appErrors.Clone(appErrors.ErrNotFound, fmt.Sprintf("conflict %s not found", conflictID)))}
	}
	switch conflict.Status {
	case models.ConflictStatusSkipped:
		snapshot := conflict.Clone()
		s.mu.Unlock()
		return dto.SkipResult{OperationResult: dto.OperationResult{Success: true, Message: "conflict already skipped"}, Conflict: &snapshot}
	case models.ConflictStatusResolved:
		s.mu.Unlock()
		return dto.SkipResult{OperationResult: failure(appErrors.Clone(appErrors.ErrTerminalConflict, fmt.Sprintf("conflict %s is already resolved", conflictID)))}
	}
	conflict.Status = models.ConflictStatusSkipped
	conflict.UpdatedAt = s.now().UTC()
	snapshot := conflict.Clone()
	s.mu.Unlock()

	s.dispatch([]pendingEvent{{conflict: ptrConflict(snapshot)}})
	return dto.SkipResult{OperationResult: dto.OperationResult{Success: true, Message: "conflict skipped"}, Conflict: &snapshot}
}

// --- Queries ---

var severityRank = map[models.Severity]int{models.SeverityHigh: 0, models.SeverityMedium: 1, models.SeverityLow: 2}

// GetEnhancedConflicts returns every conflict with its classification and suggestions,
// highest severity first and creation order within a severity.
func (s *AdjustmentService) GetEnhancedConflicts() []models.Conflict {
	s.mu.Lock()
	out := make([]models.Conflict, len(s.conflicts))
	for i, c := range s.conflicts {
		out[i] = c.Clone()
	}
	s.mu.Unlock()
	sort.SliceStable(out, func(i, j int) bool { return severityRank[out[i].Severity] < severityRank[out[j].Severity] })
	return out
}

// ListConflicts filters and paginates the enhanced conflict list.
func (s *AdjustmentService) ListConflicts(filter models.ConflictFilter) ([]models.Conflict, models.Pagination) {
	all := s.GetEnhancedConflicts()
	matched := make([]models.Conflict, 0, len(all))
	for _, c := range all {
		if filter.Type != "" && c.ConflictType != filter.Type {
			continue
		}
		if filter.Severity != "" && c.Severity != filter.Severity {
			continue
		}
		if filter.Status != "" && c.Status != filter.Status {
			continue
		}
		matched = append(matched, c)
	}
	page, size := filter.Page, filter.PageSize
	if page <= 0 {
		page = 1
	}
	if size <= 0 {
		size = 20
	}
	start := (page - 1) * size
	if start > len(matched) {
		start = len(matched)
	}
	end := start + size
	if end > len(matched) {
		end = len(matched)
	}
	return matched[start:end], models.Pagination{Page: page, PageSize: size, TotalCount: len(matched)}
}

// GetConflictByID returns a copy of one conflict.
func (s *AdjustmentService) GetConflictByID(id string) (models.Conflict, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	c, ok := s.conflictByID[id]
	if !ok {
		return models.Conflict{}, false
	}
	return c.Clone(), true
}

// GetStatistics counts conflicts by type, severity and status.
func (s *AdjustmentService) GetStatistics() dto.Statistics {
	s.mu.Lock()
	defer s.mu.Unlock()
	stats := dto.Statistics{
		Total:         len(s.conflicts),
		ByType:        make(map[models.ConflictType]int),
		BySeverity:    make(map[models.Severity]int),
		ByStatus:      make(map[models.ConflictStatus]int),
		Modifications: len(s.ledger),
		Courses:       len(s.courses),
	}
	for _, c := range s.conflicts {
		stats.ByType[c.ConflictType]++
		stats.BySeverity[c.Severity]++
		stats.ByStatus[c.Status]++
		if c.IsModified {
			stats.Modified++
		}
	}
	stats.Pending = stats.ByStatus[models.ConflictStatusPending]
	stats.InProgress = stats.ByStatus[models.ConflictStatusInProgress]
	stats.Resolved = stats.ByStatus[models.ConflictStatusResolved]
	stats.Skipped = stats.ByStatus[models.ConflictStatusSkipped]
	return stats
}

// GetAllModifications returns the global ledger in append order.
func (s *AdjustmentService) GetAllModifications() []models.ModificationRecord {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]models.ModificationRecord{}, s.ledger...)
}

// GetModificationsFor returns the history of one record.
func (s *AdjustmentService) GetModificationsFor(targetType models.TargetType, targetID string) []models.ModificationRecord {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]models.ModificationRecord{}, s.targetHistory[historyKey(targetType, targetID)]...)
}

// GetModifiedData returns deep copies of the working collections for export.
func (s *AdjustmentService) GetModifiedData() dto.ExportSnapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	return dto.ExportSnapshot{
		Students:    cloneStudents(s.students),
		Teachers:    cloneTeachers(s.teachers),
		Classrooms:  cloneClassrooms(s.classrooms),
		Courses:     append([]models.Course{}, s.courses...),
		GeneratedAt: s.now().UTC(),
	}
}

// --- helpers ---

func (s *AdjustmentService) studentIndex(id string) int {
	for i := range s.students {
		if s.students[i].ID == id {
			return i
		}
	}
	return -1
}

func (s *AdjustmentService) teacherIndex(id string) int {
	for i := range s.teachers {
		if s.teachers[i].ID == id {
			return i
		}
	}
	return -1
}

func (s *AdjustmentService) classroomIndex(id string) int {
	for i := range s.classrooms {
		if s.classrooms[i].ID == id {
			return i
		}
	}
	return -1
}

func failure(err error) dto.OperationResult {
	appErr := appErrors.FromError(err)
	return dto.OperationResult{Success: false, Code: appErr.Code, Message: appErr.Error()}
}

func historyKey(targetType models.TargetType, id string) string {
	return string(targetType) + ":" + id
}

func courseFor(courses []models.Course, studentID string) (models.Course, bool) {
	for _, c := range courses {
		if c.StudentID == studentID {
			return c, true
		}
	}
	return models.Course{}, false
}

func ptrConflict(c models.Conflict) *models.Conflict {
	return &c
}

func cloneStudents(in []models.Student) []models.Student {
	out := make([]models.Student, len(in))
	for i, s := range in {
		out[i] = s.Clone()
	}
	return out
}

func cloneTeachers(in []models.Teacher) []models.Teacher {
	out := make([]models.Teacher, len(in))
	for i, t := range in {
		out[i] = t.Clone()
	}
	return out
}

func cloneClassrooms(in []models.Classroom) []models.Classroom {
	out := make([]models.Classroom, len(in))
	for i, c := range in {
		out[i] = c.Clone()
	}
	return out
}
