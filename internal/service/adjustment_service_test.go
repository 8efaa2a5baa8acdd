package service

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/tutoring-scheduler/internal/dto"
	"github.com/noah-isme/tutoring-scheduler/internal/models"
	appErrors "github.com/noah-isme/tutoring-scheduler/pkg/errors"
)

func twoStudentSession() AdjustmentSession {
	heavy := singleWindowStudent("s2")
	heavy.RemainingHours = 12
	return AdjustmentSession{
		Students:   []models.Student{singleWindowStudent("s1"), heavy},
		Teachers:   []models.Teacher{openTeacher("t1")},
		Classrooms: []models.Classroom{openRoom("r1")},
	}
}

func newTestAdjustmentService(session AdjustmentSession, matcher Matcher) *AdjustmentService {
	return NewAdjustmentService(session, matcher, nil,
		WithAdjustmentClock(fixedClock()),
		WithAdjustmentIDGenerator(sequentialIDs("id")),
		WithSuggestionEngine(NewSuggestionEngine(NewCandidateGenerator(2), 40, sequentialIDs("sug"))),
	)
}

func conflictOf(t *testing.T, svc *AdjustmentService, studentID string) models.Conflict {
	t.Helper()
	for _, c := range svc.GetEnhancedConflicts() {
		if c.StudentID == studentID {
			return c
		}
	}
	t.Fatalf("no conflict for student %s", studentID)
	return models.Conflict{}
}

func countingMatcher(calls *int32, result *MatchResult, err error) Matcher {
	return MatcherFunc(func(ctx context.Context, req MatchRequest) (*MatchResult, error) {
		atomic.AddInt32(calls, 1)
		return result, err
	})
}

func TestNewAdjustmentServiceCreatesOneConflictPerUnscheduledStudent(t *testing.T) {
	session := twoStudentSession()
	session.Students = append(session.Students, singleWindowStudent("s3"))
	session.Courses = []models.Course{{ID: "c3", StudentID: "s3", TeacherID: "t1", ClassroomID: "r1", Day: 1, StartSlot: 0, Duration: 24}}
	session.Conflicts = []MatchConflict{{StudentID: "s1", Reason: "时间冲突：老师「Teacher t1」"}}

	svc := newTestAdjustmentService(session, NewMatchingService(MatchingConfig{}, nil, nil))
	conflicts := svc.GetEnhancedConflicts()
	require.Len(t, conflicts, 2)

	first := conflictOf(t, svc, "s1")
	assert.Equal(t, "时间冲突：老师「Teacher t1」", first.Reason)
	assert.Equal(t, models.ConflictNoTime, first.ConflictType)
	assert.Equal(t, "Teacher t1", first.ExtractedInfo["teacherName"])
	assert.Equal(t, models.ConflictStatusPending, first.Status)
	assert.False(t, first.IsModified)
	assert.NotNil(t, first.Suggestions)
	assert.NotNil(t, first.ModificationHistory)

	second := conflictOf(t, svc, "s2")
	assert.Equal(t, "无教师可用：可教授「math」的老师在学生空闲时段均已排满", second.Reason)
	assert.Equal(t, models.ConflictNoTeacher, second.ConflictType)
	assert.Equal(t, models.SeverityHigh, second.Severity)
	assert.Equal(t, "Student s2", second.StudentName)
	assert.Equal(t, fixedClock()(), second.CreatedAt)
}

func TestNewAdjustmentServiceFallsBackToUnknownReason(t *testing.T) {
	diagnoser := diagnoserFunc(func(models.Student, []models.Teacher, []models.Classroom, *OccupiedIndex) string { return "" })
	session := twoStudentSession()
	session.Students = session.Students[1:]

	svc := NewAdjustmentService(session, nil, nil, WithDiagnoser(diagnoser))
	c := conflictOf(t, svc, "s2")
	assert.Equal(t, unknownReason, c.Reason)
	assert.Equal(t, models.ConflictOther, c.ConflictType)
	assert.Equal(t, models.SeverityMedium, c.Severity)
}

type diagnoserFunc func(models.Student, []models.Teacher, []models.Classroom, *OccupiedIndex) string

func (f diagnoserFunc) Diagnose(s models.Student, t []models.Teacher, c []models.Classroom, o *OccupiedIndex) string {
	return f(s, t, c, o)
}

func TestModifyDataFailures(t *testing.T) {
	svc := newTestAdjustmentService(twoStudentSession(), nil)
	missing := "nope"

	tests := []struct {
		name string
		req  dto.ModifyDataRequest
		code string
	}{
		{name: "invalid payload", req: dto.ModifyDataRequest{TargetType: models.TargetStudent, Field: models.FieldName}, code: appErrors.ErrValidation.Code},
		{name: "unknown target type", req: dto.ModifyDataRequest{TargetType: "course", TargetID: "c1", Field: models.FieldName}, code: appErrors.ErrValidation.Code},
		{name: "unknown target", req: dto.ModifyDataRequest{TargetType: models.TargetTeacher, TargetID: "ghost", Field: models.FieldName, NewValue: "x"}, code: appErrors.ErrTargetNotFound.Code},
		{name: "unknown field", req: dto.ModifyDataRequest{TargetType: models.TargetStudent, TargetID: "s1", Field: "nickname", NewValue: "x"}, code: appErrors.ErrValidation.Code},
		{name: "bad value", req: dto.ModifyDataRequest{TargetType: models.TargetClassroom, TargetID: "r1", Field: models.FieldCapacity, NewValue: -1}, code: appErrors.ErrValidation.Code},
		{name: "bad constraints", req: dto.ModifyDataRequest{TargetType: models.TargetStudent, TargetID: "s1", Field: models.FieldConstraints, NewValue: map[string]interface{}{"allowedDays": []int{9}}}, code: appErrors.ErrValidation.Code},
		{name: "unknown conflict", req: dto.ModifyDataRequest{TargetType: models.TargetStudent, TargetID: "s1", Field: models.FieldName, NewValue: "x", ConflictID: &missing}, code: appErrors.ErrNotFound.Code},
	}

	for _, tc := range tests {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			res := svc.ModifyData(tc.req)
			assert.False(t, res.Success)
			assert.Equal(t, tc.code, res.Code)
			assert.Nil(t, res.Record)
		})
	}
	assert.Empty(t, svc.GetAllModifications())
}

func TestModifyDataUnchangedValueWritesNothing(t *testing.T) {
	svc := newTestAdjustmentService(twoStudentSession(), nil)

	res := svc.ModifyData(dto.ModifyDataRequest{TargetType: models.TargetStudent, TargetID: "s1", Field: models.FieldDurationSlots, NewValue: 24.0})
	assert.True(t, res.Success)
	assert.False(t, res.Changed)
	assert.Empty(t, svc.GetAllModifications())
}

func TestModifyDataRecordsLedgerAndNotifies(t *testing.T) {
	svc := newTestAdjustmentService(twoStudentSession(), nil)
	conflictID := conflictOf(t, svc, "s1").ID

	var records []models.ModificationRecord
	var updates []models.Conflict
	svc.OnDataModified(func(r models.ModificationRecord) { records = append(records, r) })
	svc.OnConflictUpdate(func(c models.Conflict) { updates = append(updates, c) })

	res := svc.ModifyData(dto.ModifyDataRequest{
		TargetType: models.TargetStudent,
		TargetID:   "s1",
		Field:      models.FieldDurationSlots,
		NewValue:   12.0,
		Reason:     "shorter sessions",
		ConflictID: &conflictID,
	})
	require.True(t, res.Success, res.Message)
	assert.True(t, res.Changed)
	require.NotNil(t, res.Record)
	assert.Equal(t, 24, res.Record.OldValue)
	assert.Equal(t, 12, res.Record.NewValue)
	assert.Equal(t, "Student s1", res.Record.TargetName)
	assert.Equal(t, "shorter sessions", res.Record.Reason)
	require.NotNil(t, res.Record.ConflictID)
	assert.Equal(t, conflictID, *res.Record.ConflictID)

	assert.Len(t, svc.GetAllModifications(), 1)
	assert.Len(t, svc.GetModificationsFor(models.TargetStudent, "s1"), 1)
	assert.Empty(t, svc.GetModificationsFor(models.TargetStudent, "s2"))
	assert.Equal(t, 12, svc.GetModifiedData().Students[0].DurationSlots)

	conflict := conflictOf(t, svc, "s1")
	assert.True(t, conflict.IsModified)
	assert.Len(t, conflict.ModificationHistory, 1)
	assert.Equal(t, models.ConflictStatusPending, conflict.Status)

	require.Len(t, records, 1)
	require.Len(t, updates, 1)
	assert.True(t, updates[0].IsModified)
}

func TestApplySuggestionThenRetryResolves(t *testing.T) {
	tuesday := openTeacher("t1")
	tuesday.Constraints = &models.TimeConstraints{
		AllowedDays:       []int{2},
		AllowedTimeRanges: []models.TimeRange{{Day: models.DayPtr(2), Start: 0, End: 48}},
	}
	session := AdjustmentSession{
		Students:   []models.Student{singleWindowStudent("s1")},
		Teachers:   []models.Teacher{tuesday},
		Classrooms: []models.Classroom{openRoom("r1")},
	}
	svc := newTestAdjustmentService(session, NewMatchingService(MatchingConfig{}, nil, nil, WithCourseIDGenerator(sequentialIDs("course"))))

	conflict := conflictOf(t, svc, "s1")
	require.Equal(t, models.ConflictNoTime, conflict.ConflictType)
	require.NotEmpty(t, conflict.Suggestions)
	suggestion := conflict.Suggestions[0]
	assert.Equal(t, models.SuggestionTime, suggestion.Type)

	applied := svc.ApplySuggestion(conflict.ID, suggestion.ID, "")
	require.True(t, applied.Success, applied.Message)
	require.Len(t, applied.Records, 1)
	assert.Equal(t, suggestion.Title, applied.Records[0].Reason)
	assert.Equal(t, models.ConflictStatusInProgress, applied.Conflict.Status)
	assert.True(t, applied.Conflict.IsModified)

	var retried []dto.RetryResult
	svc.OnRetryComplete(func(r dto.RetryResult) { retried = append(retried, r) })

	res := svc.RetryScheduleForStudent(context.Background(), conflict.ID)
	require.True(t, res.Success, res.Message)
	require.NotNil(t, res.Course)
	assert.Equal(t, 2, res.Course.Day)
	assert.Equal(t, 0, res.Course.StartSlot)
	assert.Equal(t, "course-1", res.Course.ID)
	assert.Equal(t, models.ConflictStatusResolved, conflictOf(t, svc, "s1").Status)
	assert.Len(t, svc.GetModifiedData().Courses, 1)
	require.Len(t, retried, 1)
	assert.True(t, retried[0].Success)

	again := svc.ApplySuggestion(conflict.ID, suggestion.ID, "")
	assert.Equal(t, appErrors.ErrTerminalConflict.Code, again.Code)
}

func TestApplySuggestionNotFound(t *testing.T) {
	svc := newTestAdjustmentService(twoStudentSession(), nil)
	conflictID := conflictOf(t, svc, "s1").ID

	assert.Equal(t, appErrors.ErrNotFound.Code, svc.ApplySuggestion("ghost", "sug-1", "").Code)
	assert.Equal(t, appErrors.ErrNotFound.Code, svc.ApplySuggestion(conflictID, "ghost", "").Code)
}

func TestApplySuggestionIsAllOrNothing(t *testing.T) {
	svc := newTestAdjustmentService(twoStudentSession(), nil)
	conflict := conflictOf(t, svc, "s1")

	svc.mu.Lock()
	target := svc.conflictByID[conflict.ID]
	target.Suggestions = append(target.Suggestions, models.Suggestion{
		ID:    "broken",
		Title: "broken",
		Mutations: []models.Mutation{
			{TargetType: models.TargetStudent, TargetID: "s1", Field: models.FieldName, NewValue: "Renamed"},
			{TargetType: models.TargetClassroom, TargetID: "ghost", Field: models.FieldCapacity, NewValue: 4},
		},
	})
	svc.mu.Unlock()

	res := svc.ApplySuggestion(conflict.ID, "broken", "")
	assert.False(t, res.Success)
	assert.Equal(t, appErrors.ErrTargetNotFound.Code, res.Code)
	assert.Equal(t, "Student s1", svc.GetModifiedData().Students[0].Name)
	assert.Empty(t, svc.GetAllModifications())
	assert.Equal(t, models.ConflictStatusPending, conflictOf(t, svc, "s1").Status)
}

func TestRetryFailureReclassifies(t *testing.T) {
	var calls int32
	failed := &MatchResult{Conflicts: []MatchConflict{{StudentID: "s1", Reason: "教室已被占用：校区「north」的教室在共同空闲时段均不可用"}}}
	svc := newTestAdjustmentService(twoStudentSession(), countingMatcher(&calls, failed, nil))
	conflictID := conflictOf(t, svc, "s1").ID

	var retried []dto.RetryResult
	svc.OnRetryComplete(func(r dto.RetryResult) { retried = append(retried, r) })

	res := svc.RetryScheduleForStudent(context.Background(), conflictID)
	assert.False(t, res.Success)
	assert.Equal(t, appErrors.ErrConflict.Code, res.Code)
	assert.EqualValues(t, 1, atomic.LoadInt32(&calls))

	conflict := conflictOf(t, svc, "s1")
	assert.Equal(t, models.ConflictNoRoom, conflict.ConflictType)
	assert.Equal(t, models.SeverityMedium, conflict.Severity)
	assert.Equal(t, "north", conflict.ExtractedInfo["campus"])
	assert.Equal(t, models.ConflictStatusInProgress, conflict.Status)
	require.Len(t, retried, 1)
	assert.False(t, retried[0].Success)
}

func TestRetryCollaboratorError(t *testing.T) {
	var calls int32
	svc := newTestAdjustmentService(twoStudentSession(), countingMatcher(&calls, nil, errors.New("matcher offline")))
	conflictID := conflictOf(t, svc, "s1").ID
	before := conflictOf(t, svc, "s1")

	res := svc.RetryScheduleForStudent(context.Background(), conflictID)
	assert.False(t, res.Success)
	assert.Equal(t, appErrors.ErrCollaborator.Code, res.Code)
	assert.Equal(t, "matcher offline", res.Message)

	after := conflictOf(t, svc, "s1")
	assert.Equal(t, models.ConflictStatusInProgress, after.Status)
	assert.Equal(t, before.Reason, after.Reason)
}

func TestRetryRejectsOverlappingResult(t *testing.T) {
	var calls int32
	session := twoStudentSession()
	session.Courses = []models.Course{{ID: "c0", StudentID: "x", TeacherID: "t1", ClassroomID: "r1", Day: 1, StartSlot: 0, Duration: 24}}
	overlapping := &MatchResult{Success: true, Courses: []models.Course{{StudentID: "s1", TeacherID: "t1", ClassroomID: "r1", Day: 1, StartSlot: 0, Duration: 24}}}
	svc := newTestAdjustmentService(session, countingMatcher(&calls, overlapping, nil))

	res := svc.RetryScheduleForStudent(context.Background(), conflictOf(t, svc, "s1").ID)
	assert.False(t, res.Success)
	assert.Equal(t, appErrors.ErrConflict.Code, res.Code)
	assert.Len(t, svc.GetModifiedData().Courses, 1)
}

func TestRetryGuards(t *testing.T) {
	var calls int32
	svc := newTestAdjustmentService(twoStudentSession(), countingMatcher(&calls, &MatchResult{}, nil))
	conflictID := conflictOf(t, svc, "s1").ID

	assert.Equal(t, appErrors.ErrNotFound.Code, svc.RetryScheduleForStudent(context.Background(), "ghost").Code)

	require.True(t, svc.SkipConflict(conflictID).Success)
	res := svc.RetryScheduleForStudent(context.Background(), conflictID)
	assert.Equal(t, appErrors.ErrTerminalConflict.Code, res.Code)
	assert.EqualValues(t, 0, atomic.LoadInt32(&calls))

	noMatcher := newTestAdjustmentService(twoStudentSession(), nil)
	res = noMatcher.RetryScheduleForStudent(context.Background(), conflictOf(t, noMatcher, "s1").ID)
	assert.Equal(t, appErrors.ErrCollaborator.Code, res.Code)
}

func TestRetryInFlightAndSkipDuringFlight(t *testing.T) {
	started := make(chan struct{})
	release := make(chan struct{})
	matcher := MatcherFunc(func(ctx context.Context, req MatchRequest) (*MatchResult, error) {
		close(started)
		<-release
		return &MatchResult{Success: true, Courses: []models.Course{{StudentID: req.Students[0].ID, TeacherID: "t1", ClassroomID: "r1", Day: 1, StartSlot: 0, Duration: 24}}}, nil
	})
	svc := newTestAdjustmentService(twoStudentSession(), matcher)
	conflictID := conflictOf(t, svc, "s1").ID

	done := make(chan dto.RetryResult, 1)
	go func() { done <- svc.RetryScheduleForStudent(context.Background(), conflictID) }()
	<-started

	assert.Equal(t, models.ConflictStatusInProgress, conflictOf(t, svc, "s1").Status)
	second := svc.RetryScheduleForStudent(context.Background(), conflictID)
	assert.Equal(t, appErrors.ErrRetryInFlight.Code, second.Code)

	skipped := svc.SkipConflict(conflictID)
	require.True(t, skipped.Success)

	close(release)
	first := <-done
	assert.False(t, first.Success)
	assert.Equal(t, appErrors.ErrTerminalConflict.Code, first.Code)
	assert.Equal(t, models.ConflictStatusSkipped, conflictOf(t, svc, "s1").Status)
	assert.Empty(t, svc.GetModifiedData().Courses)
}

func TestBatchRetryIsSequential(t *testing.T) {
	session := twoStudentSession()
	session.Students = append(session.Students, singleWindowStudent("s3"))
	inner := NewMatchingService(MatchingConfig{}, nil, nil)

	var order []string
	matcher := MatcherFunc(func(ctx context.Context, req MatchRequest) (*MatchResult, error) {
		order = append(order, req.Students[0].ID)
		return inner.Schedule(ctx, req)
	})
	svc := newTestAdjustmentService(session, matcher)
	require.True(t, svc.SkipConflict(conflictOf(t, svc, "s3").ID).Success)

	res := svc.BatchRetrySchedule(context.Background())
	assert.Equal(t, []string{"s1", "s2"}, order)
	assert.Equal(t, 2, res.Attempted)
	assert.Equal(t, 1, res.Resolved)
	assert.Equal(t, 1, res.Failed)
	assert.False(t, res.Success)
	require.Len(t, res.Results, 2)

	assert.Equal(t, models.ConflictStatusResolved, conflictOf(t, svc, "s1").Status)
	s2 := conflictOf(t, svc, "s2")
	assert.Equal(t, models.ConflictNoTeacher, s2.ConflictType)
	assert.Equal(t, models.ConflictStatusInProgress, s2.Status)
}

func TestBatchRetryCompletesAfterCancellation(t *testing.T) {
	var (
		calls     int32
		cancelled int32
	)
	ctx, cancel := context.WithCancel(context.Background())
	matcher := MatcherFunc(func(mctx context.Context, req MatchRequest) (*MatchResult, error) {
		atomic.AddInt32(&calls, 1)
		if mctx.Err() != nil {
			atomic.AddInt32(&cancelled, 1)
		}
		cancel()
		return &MatchResult{}, nil
	})
	svc := newTestAdjustmentService(twoStudentSession(), matcher)

	res := svc.BatchRetrySchedule(ctx)
	assert.Equal(t, 2, res.Attempted)
	assert.Equal(t, 2, res.Failed)
	assert.Empty(t, res.Code)
	assert.EqualValues(t, 2, atomic.LoadInt32(&calls))
	assert.Zero(t, atomic.LoadInt32(&cancelled))
	require.Error(t, ctx.Err())
}

func TestSkipConflict(t *testing.T) {
	svc := newTestAdjustmentService(twoStudentSession(), nil)
	conflictID := conflictOf(t, svc, "s1").ID

	first := svc.SkipConflict(conflictID)
	require.True(t, first.Success)
	assert.Equal(t, models.ConflictStatusSkipped, first.Conflict.Status)

	again := svc.SkipConflict(conflictID)
	assert.True(t, again.Success)
	assert.Equal(t, models.ConflictStatusSkipped, again.Conflict.Status)

	assert.Equal(t, appErrors.ErrNotFound.Code, svc.SkipConflict("ghost").Code)
}

func TestSkipResolvedConflictIsRejected(t *testing.T) {
	resolved := &MatchResult{Success: true, Courses: []models.Course{{StudentID: "s1", TeacherID: "t1", ClassroomID: "r1", Day: 1, StartSlot: 0, Duration: 24}}}
	var calls int32
	svc := newTestAdjustmentService(twoStudentSession(), countingMatcher(&calls, resolved, nil))
	conflictID := conflictOf(t, svc, "s1").ID

	require.True(t, svc.RetryScheduleForStudent(context.Background(), conflictID).Success)
	res := svc.SkipConflict(conflictID)
	assert.False(t, res.Success)
	assert.Equal(t, appErrors.ErrTerminalConflict.Code, res.Code)
	assert.Equal(t, models.ConflictStatusResolved, conflictOf(t, svc, "s1").Status)
}

func TestListenerPanicIsIsolated(t *testing.T) {
	metrics := NewMetricsService()
	svc := NewAdjustmentService(twoStudentSession(), nil, nil, WithAdjustmentMetrics(metrics))
	conflictID := conflictOf(t, svc, "s1").ID

	var seen int
	svc.OnConflictUpdate(func(models.Conflict) { panic("boom") })
	unsubscribe := svc.OnConflictUpdate(func(models.Conflict) { seen++ })

	res := svc.SkipConflict(conflictID)
	assert.True(t, res.Success)
	assert.Equal(t, 1, seen)
	assert.EqualValues(t, 1, metrics.Snapshot().ListenerFailures)

	unsubscribe()
	svc.SkipConflict(conflictOf(t, svc, "s2").ID)
	assert.Equal(t, 1, seen)
}

func TestGetStatistics(t *testing.T) {
	svc := newTestAdjustmentService(twoStudentSession(), nil)
	s1 := conflictOf(t, svc, "s1").ID
	require.True(t, svc.SkipConflict(s1).Success)
	require.True(t, svc.ModifyData(dto.ModifyDataRequest{
		TargetType: models.TargetStudent,
		TargetID:   "s2",
		Field:      models.FieldRemainingHours,
		NewValue:   4,
		ConflictID: ptrString(conflictOf(t, svc, "s2").ID),
	}).Success)

	stats := svc.GetStatistics()
	assert.Equal(t, 2, stats.Total)
	assert.Equal(t, 1, stats.Skipped)
	assert.Equal(t, 1, stats.Pending)
	assert.Equal(t, 1, stats.Modified)
	assert.Equal(t, 1, stats.Modifications)
	assert.Equal(t, 2, stats.ByType[models.ConflictNoTime])
	assert.Equal(t, 2, stats.BySeverity[models.SeverityHigh])
}

func TestListConflictsFiltersAndPaginates(t *testing.T) {
	session := twoStudentSession()
	session.Students = append(session.Students, singleWindowStudent("s3"))
	session.Conflicts = []MatchConflict{{StudentID: "s3", Reason: "教室已被占用"}}
	svc := newTestAdjustmentService(session, nil)

	all := svc.GetEnhancedConflicts()
	require.Len(t, all, 3)
	assert.Equal(t, models.SeverityMedium, all[2].Severity)

	items, page := svc.ListConflicts(models.ConflictFilter{Type: models.ConflictNoTime, PageSize: 1, Page: 2})
	require.Len(t, items, 1)
	assert.Equal(t, "s2", items[0].StudentID)
	assert.Equal(t, models.Pagination{Page: 2, PageSize: 1, TotalCount: 2}, page)

	items, page = svc.ListConflicts(models.ConflictFilter{Status: models.ConflictStatusSkipped})
	assert.Empty(t, items)
	assert.Equal(t, 20, page.PageSize)
}

func TestAdjustmentServiceWorksOnCopies(t *testing.T) {
	session := twoStudentSession()
	svc := newTestAdjustmentService(session, nil)

	session.Students[0].Name = "changed"
	session.Students[0].Constraints.AllowedDays[0] = 5

	snapshot := svc.GetModifiedData()
	assert.Equal(t, "Student s1", snapshot.Students[0].Name)
	assert.Equal(t, []int{1}, snapshot.Students[0].Constraints.AllowedDays)

	snapshot.Students[0].Constraints.AllowedDays[0] = 6
	conflict, ok := svc.GetConflictByID(conflictOf(t, svc, "s1").ID)
	require.True(t, ok)
	conflict.Suggestions = nil
	assert.Equal(t, []int{1}, svc.GetModifiedData().Students[0].Constraints.AllowedDays)
	assert.NotNil(t, conflictOf(t, svc, "s1").Suggestions)
}

func ptrString(s string) *string {
	return &s
}
