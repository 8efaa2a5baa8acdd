package service

import (
	"sort"

	"github.com/google/uuid"

	"github.com/noah-isme/tutoring-scheduler/internal/models"
)

// ScoringWeights tunes the additive candidate score.
type ScoringWeights struct {
	Earliness  float64
	Weekday    float64
	Lunch      float64
	Congestion float64
}

// DefaultScoringWeights returns the baseline weights (earliness 20, weekday 10, lunch 5, congestion 3).
func DefaultScoringWeights() ScoringWeights {
	return ScoringWeights{Earliness: 20, Weekday: 10, Lunch: 5, Congestion: 3}
}

// the 12:00 hour in canonical slots
const (
	lunchStartSlot = 3 * models.SlotsPerHour
	lunchEndSlot   = 4 * models.SlotsPerHour
)

// AssignmentInput bundles one greedy pass.
type AssignmentInput struct {
	Students   []models.Student
	Candidates map[string][]models.Candidate
	Teachers   []models.Teacher
	Classrooms []models.Classroom
}

// AssignmentEngine runs the most-constrained-first greedy assignment.
type AssignmentEngine struct {
	weights ScoringWeights
	newID   func() string
}

// NewAssignmentEngine constructs an engine. A nil id generator defaults to uuid.
func NewAssignmentEngine(weights ScoringWeights, newID func() string) *AssignmentEngine {
	if newID == nil {
		newID = uuid.NewString
	}
	return &AssignmentEngine{weights: weights, newID: newID}
}

// --- Feasibility ---

type resourceView struct {
	teacherGrids map[string]models.TimeGrid
	roomGrids    map[string]models.TimeGrid
	teacherCaps  map[string]float64
}

func newResourceView(teachers []models.Teacher, classrooms []models.Classroom) *resourceView {
	view := &resourceView{
		teacherGrids: make(map[string]models.TimeGrid, len(teachers)),
		roomGrids:    make(map[string]models.TimeGrid, len(classrooms)),
		teacherCaps:  make(map[string]float64, len(teachers)),
	}
	for _, t := range teachers {
		view.teacherGrids[t.ID] = ComputeAvailability(t.Constraints)
		view.teacherCaps[t.ID] = t.MaxWeeklyHours
	}
	for _, c := range classrooms {
		view.roomGrids[c.ID] = ComputeAvailability(c.Constraints)
	}
	return view
}

// feasible checks a candidate against resource grids, the occupied index and the teacher hour cap.
func (v *resourceView) feasible(c models.Candidate, occupied *OccupiedIndex) bool {
	tGrid, ok := v.teacherGrids[c.TeacherID]
	if !ok || !tGrid.IsFree(c.Day, c.StartSlot, c.Duration) {
		return false
	}
	rGrid, ok := v.roomGrids[c.ClassroomID]
	if !ok || !rGrid.IsFree(c.Day, c.StartSlot, c.Duration) {
		return false
	}
	if occupied.StudentBusy(c.StudentID, c.Day, c.StartSlot, c.Duration) ||
		occupied.TeacherBusy(c.TeacherID, c.Day, c.StartSlot, c.Duration) ||
		occupied.ClassroomBusy(c.ClassroomID, c.Day, c.StartSlot, c.Duration) {
		return false
	}
	return !v.exceedsCap(c, occupied)
}

func (v *resourceView) exceedsCap(c models.Candidate, occupied *OccupiedIndex) bool {
	limit := v.teacherCaps[c.TeacherID]
	if limit <= 0 {
		return false
	}
	slots := occupied.TeacherSlots(c.TeacherID) + c.Duration
	return float64(slots)/float64(models.SlotsPerHour) > limit
}

// Score rates a candidate; higher is better.
func (e *AssignmentEngine) Score(c models.Candidate, occupied *OccupiedIndex) float64 {
	score := float64(models.SlotsPerDay-c.StartSlot) / float64(models.SlotsPerDay) * e.weights.Earliness
	if c.Day >= 1 && c.Day <= 5 {
		score += e.weights.Weekday
	}
	if c.StartSlot >= lunchStartSlot && c.StartSlot < lunchEndSlot {
		score -= e.weights.Lunch
	}
	score -= float64(occupied.TeachersBusyAt(c.Day, c.StartSlot)) * e.weights.Congestion
	return score
}

// Assign commits at most one course per student. Students are ordered by ascending viable
// candidate count (stable, so ties keep input order) and never revisited. The occupied index
// is mutated in place.
func (e *AssignmentEngine) Assign(input AssignmentInput, occupied *OccupiedIndex) ([]models.Course, []string) {
	view := newResourceView(input.Teachers, input.Classrooms)

	type ranked struct {
		student models.Student
		viable  int
	}
	order := make([]ranked, len(input.Students))
	for i, s := range input.Students {
		count := 0
		for _, c := range input.Candidates[s.ID] {
			if view.feasible(c, occupied) {
				count++
			}
		}
		order[i] = ranked{student: s, viable: count}
	}
	sort.SliceStable(order, func(i, j int) bool { return order[i].viable < order[j].viable })

	courses := make([]models.Course, 0, len(order))
	unassigned := make([]string, 0)
	for _, r := range order {
		best, ok := e.pick(input.Candidates[r.student.ID], view, occupied)
		if !ok {
			unassigned = append(unassigned, r.student.ID)
			continue
		}
		course := models.Course{
			ID:          e.newID(),
			StudentID:   best.StudentID,
			TeacherID:   best.TeacherID,
			ClassroomID: best.ClassroomID,
			Subject:     best.Subject,
			Day:         best.Day,
			StartSlot:   best.StartSlot,
			Duration:    best.Duration,
			Score:       best.Score,
		}
		occupied.Mark(course)
		courses = append(courses, course)
	}
	return courses, unassigned
}

func (e *AssignmentEngine) pick(candidates []models.Candidate, view *resourceView, occupied *OccupiedIndex) (models.Candidate, bool) {
	var best models.Candidate
	found := false
	for _, c := range candidates {
		if !view.feasible(c, occupied) {
			continue
		}
		c.Score = e.Score(c, occupied)
		if !found || c.Score > best.Score {
			best = c
			found = true
		}
	}
	return best, found
}
