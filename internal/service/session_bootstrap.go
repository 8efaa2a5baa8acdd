package service

import (
	"context"

	"go.uber.org/zap"

	"github.com/noah-isme/tutoring-scheduler/internal/models"
)

// BootstrapConfig configures StartSession.
type BootstrapConfig struct {
	DefaultMaxHours float64
	Metrics         *MetricsService
	Logger          *zap.Logger
	Options         []AdjustmentOption
}

// StartSession matches the roster's unscheduled students once and opens an adjustment session on the outcome.
// Existing roster courses are kept and treated as consumed time.
func StartSession(ctx context.Context, matcher *MatchingService, roster models.Roster, cfg BootstrapConfig) (*AdjustmentService, *MatchResult, error) {
	logger := cfg.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	scheduled := make(map[string]struct{}, len(roster.Courses))
	for _, c := range roster.Courses {
		scheduled[c.StudentID] = struct{}{}
	}
	pending := make([]models.Student, 0, len(roster.Students))
	for _, st := range roster.Students {
		if _, ok := scheduled[st.ID]; !ok {
			pending = append(pending, st)
		}
	}

	result, err := matcher.Schedule(ctx, MatchRequest{
		Students:   pending,
		Teachers:   roster.Teachers,
		Classrooms: roster.Classrooms,
		Existing:   roster.Courses,
	})
	if err != nil {
		return nil, nil, err
	}

	opts := []AdjustmentOption{
		WithCandidateGenerator(matcher.Generator()),
		WithSuggestionEngine(NewSuggestionEngine(matcher.Generator(), cfg.DefaultMaxHours, nil)),
		WithAdjustmentMetrics(cfg.Metrics),
	}
	opts = append(opts, cfg.Options...)
	session := NewAdjustmentService(AdjustmentSession{
		Students:   roster.Students,
		Teachers:   roster.Teachers,
		Classrooms: roster.Classrooms,
		Courses:    append(append([]models.Course(nil), roster.Courses...), result.Courses...),
		Conflicts:  result.Conflicts,
	}, matcher, logger, opts...)
	return session, result, nil
}
