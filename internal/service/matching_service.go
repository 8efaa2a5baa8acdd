package service

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/noah-isme/tutoring-scheduler/internal/models"
	appErrors "github.com/noah-isme/tutoring-scheduler/pkg/errors"
)

// MatchRequest is one scheduling call. Existing courses are treated as already consumed time.
type MatchRequest struct {
	Students   []models.Student
	Teachers   []models.Teacher
	Classrooms []models.Classroom
	Existing   []models.Course
}

// MatchConflict explains why a student received no course.
type MatchConflict struct {
	StudentID string `json:"studentId"`
	Reason    string `json:"reason"`
}

// MatchResult is the collaborator response consumed by the adjustment orchestrator.
type MatchResult struct {
	Success   bool            `json:"success"`
	Courses   []models.Course `json:"courses"`
	Conflicts []MatchConflict `json:"conflicts"`
	Message   string          `json:"message"`
}

// Matcher schedules students against teachers and classrooms.
type Matcher interface {
	Schedule(ctx context.Context, req MatchRequest) (*MatchResult, error)
}

// MatcherFunc adapts a function into a Matcher.
type MatcherFunc func(ctx context.Context, req MatchRequest) (*MatchResult, error)

// Schedule implements Matcher.
func (f MatcherFunc) Schedule(ctx context.Context, req MatchRequest) (*MatchResult, error) {
	return f(ctx, req)
}

// MatchingConfig tunes the in-process matcher.
type MatchingConfig struct {
	MinCapacity int
	Weights     ScoringWeights
}

// MatchingOption customises the matching service.
type MatchingOption func(*MatchingService)

// WithCourseIDGenerator overrides course id generation.
func WithCourseIDGenerator(fn func() string) MatchingOption {
	return func(s *MatchingService) {
		if fn != nil {
			s.newID = fn
		}
	}
}

// MatchingService is the default in-process Matcher: candidate generation followed by one greedy pass.
type MatchingService struct {
	generator *CandidateGenerator
	weights   ScoringWeights
	newID     func() string
	metrics   *MetricsService
	logger    *zap.Logger
}

// NewMatchingService constructs the matcher.
func NewMatchingService(cfg MatchingConfig, metrics *MetricsService, logger *zap.Logger, opts ...MatchingOption) *MatchingService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if cfg.Weights == (ScoringWeights{}) {
		cfg.Weights = DefaultScoringWeights()
	}
	svc := &MatchingService{
		generator: NewCandidateGenerator(cfg.MinCapacity),
		weights:   cfg.Weights,
		metrics:   metrics,
		logger:    logger,
	}
	for _, opt := range opts {
		opt(svc)
	}
	return svc
}

// Generator exposes the candidate generator shared with the suggestion engine.
func (s *MatchingService) Generator() *CandidateGenerator {
	return s.generator
}

// Schedule runs one pass. The occupied index is rebuilt from req.Existing on every call.
func (s *MatchingService) Schedule(ctx context.Context, req MatchRequest) (*MatchResult, error) {
	if err := ctx.Err(); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrCollaborator.Code, appErrors.ErrCollaborator.Status, "matching cancelled")
	}
	start := time.Now()

	occupied := NewOccupiedIndex(req.Existing)
	candidates := make(map[string][]models.Candidate, len(req.Students))
	for _, st := range req.Students {
		candidates[st.ID] = s.generator.Generate(st, req.Teachers, req.Classrooms, occupied)
	}

	engine := NewAssignmentEngine(s.weights, s.newID)
	courses, unassigned := engine.Assign(AssignmentInput{
		Students:   req.Students,
		Candidates: candidates,
		Teachers:   req.Teachers,
		Classrooms: req.Classrooms,
	}, occupied)

	byID := make(map[string]models.Student, len(req.Students))
	for _, st := range req.Students {
		byID[st.ID] = st
	}
	conflicts := make([]MatchConflict, 0, len(unassigned))
	for _, id := range unassigned {
		conflicts = append(conflicts, MatchConflict{
			StudentID: id,
			Reason:    s.Diagnose(byID[id], req.Teachers, req.Classrooms, occupied),
		})
	}

	s.metrics.ObserveMatchingPass(time.Since(start), len(courses))
	s.logger.Debug("matching pass complete",
		zap.Int("students", len(req.Students)),
		zap.Int("courses", len(courses)),
		zap.Int("conflicts", len(conflicts)),
		zap.Duration("duration", time.Since(start)),
	)

	result := &MatchResult{
		Success:   len(courses) > 0,
		Courses:   courses,
		Conflicts: conflicts,
	}
	switch {
	case len(conflicts) == 0:
		result.Message = fmt.Sprintf("scheduled %d students", len(courses))
	case len(courses) == 0:
		result.Message = conflicts[0].Reason
	default:
		result.Message = fmt.Sprintf("scheduled %d students, %d unresolved", len(courses), len(conflicts))
	}
	return result, nil
}

// --- Diagnosis ---

// Diagnose explains in operator-facing text why a student has no feasible placement
// against the given occupancy. The wording feeds the conflict classifier.
func (s *MatchingService) Diagnose(student models.Student, teachers []models.Teacher, classrooms []models.Classroom, occupied *OccupiedIndex) string {
	if occupied == nil {
		occupied = NewOccupiedIndex(nil)
	}
	qualified := s.generator.QualifiedTeachers(student, teachers)
	if len(qualified) == 0 {
		return fmt.Sprintf("科目不匹配：没有可教授「%s」的老师", student.Subject)
	}
	rooms := s.generator.SuitableClassrooms(student, classrooms)
	if len(rooms) == 0 {
		return fmt.Sprintf("无合适教室：校区「%s」没有容量≥%d的教室", student.Campus, s.generator.MinCapacity())
	}
	windows := s.generator.StudentWindows(student, occupied)
	if len(windows) == 0 {
		return fmt.Sprintf("无可用时间：学生「%s」没有连续%d分钟的空闲时间", student.Name, student.Duration()*models.SlotMinutes)
	}

	view := newResourceView(qualified, rooms)
	var (
		cappedTeacher string
		anyBusy       bool
		teacherOpen   []models.Candidate
	)
	for _, t := range qualified {
		grid := view.teacherGrids[t.ID]
		for _, w := range windows {
			if !grid.IsFree(w.Day, w.Start, w.Length) {
				continue
			}
			if occupied.TeacherBusy(t.ID, w.Day, w.Start, w.Length) {
				anyBusy = true
				continue
			}
			c := models.Candidate{StudentID: student.ID, TeacherID: t.ID, Day: w.Day, StartSlot: w.Start, Duration: w.Length}
			if view.exceedsCap(c, occupied) {
				if cappedTeacher == "" {
					cappedTeacher = displayName(t.Name, t.ID)
				}
				continue
			}
			teacherOpen = append(teacherOpen, c)
		}
	}

	if len(teacherOpen) == 0 {
		switch {
		case cappedTeacher != "":
			return fmt.Sprintf("教师课时已达上限：老师「%s」本周课时已满", cappedTeacher)
		case anyBusy:
			return fmt.Sprintf("无教师可用：可教授「%s」的老师在学生空闲时段均已排满", student.Subject)
		default:
			return "无共同可用时间：学生与老师没有共同的空闲时间"
		}
	}

	for _, c := range teacherOpen {
		for _, r := range rooms {
			grid := view.roomGrids[r.ID]
			if grid.IsFree(c.Day, c.StartSlot, c.Duration) && !occupied.ClassroomBusy(r.ID, c.Day, c.StartSlot, c.Duration) {
				return "无共同可用时间：候选时段在排课过程中已被占用"
			}
		}
	}
	return fmt.Sprintf("教室已被占用：校区「%s」的教室在共同空闲时段均不可用", student.Campus)
}

func displayName(name, id string) string {
	if name != "" {
		return name
	}
	return id
}
