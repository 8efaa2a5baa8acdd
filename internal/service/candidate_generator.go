package service

import (
	"strings"

	"github.com/noah-isme/tutoring-scheduler/internal/models"
)

// DefaultMinCapacity is the seat count a one-to-one session needs.
const DefaultMinCapacity = 2

// TimeWindow is a contiguous [Start, Start+Length) range on Day.
type TimeWindow struct {
	Day    int `json:"day"`
	Start  int `json:"start"`
	Length int `json:"length"`
}

// CandidateGenerator enumerates every teacher x classroom x window option for a student.
type CandidateGenerator struct {
	minCapacity int
}

// NewCandidateGenerator constructs a generator. Non-positive capacity falls back to the default.
func NewCandidateGenerator(minCapacity int) *CandidateGenerator {
	if minCapacity <= 0 {
		minCapacity = DefaultMinCapacity
	}
	return &CandidateGenerator{minCapacity: minCapacity}
}

// MinCapacity returns the seat threshold used for classroom filtering.
func (g *CandidateGenerator) MinCapacity() int {
	return g.minCapacity
}

// QualifiedTeachers keeps teachers able to teach the student's subject.
func (g *CandidateGenerator) QualifiedTeachers(student models.Student, teachers []models.Teacher) []models.Teacher {
	out := make([]models.Teacher, 0, len(teachers))
	for _, t := range teachers {
		if t.Teaches(student.Subject) {
			out = append(out, t)
		}
	}
	return out
}

// SuitableClassrooms keeps classrooms on the student's campus with enough seats.
func (g *CandidateGenerator) SuitableClassrooms(student models.Student, classrooms []models.Classroom) []models.Classroom {
	out := make([]models.Classroom, 0, len(classrooms))
	for _, c := range classrooms {
		if sameCampus(c.Campus, student.Campus) && c.Capacity >= g.minCapacity {
			out = append(out, c)
		}
	}
	return out
}

// StudentWindows lists every start where the student's grid is free for the whole session.
// Windows overlapping a course the student already holds are skipped.
func (g *CandidateGenerator) StudentWindows(student models.Student, occupied *OccupiedIndex) []TimeWindow {
	grid := ComputeAvailability(student.Constraints)
	duration := student.Duration()
	windows := make([]TimeWindow, 0)
	for day := 0; day < models.DaysPerWeek; day++ {
		for start := 0; start+duration <= models.SlotsPerDay; start++ {
			if !grid.IsFree(day, start, duration) {
				continue
			}
			if occupied != nil && occupied.StudentBusy(student.ID, day, start, duration) {
				continue
			}
			windows = append(windows, TimeWindow{Day: day, Start: start, Length: duration})
		}
	}
	return windows
}

// Generate emits the cross product of qualified teachers, suitable classrooms and
// student windows. Teacher and classroom availability is checked at assignment time.
func (g *CandidateGenerator) Generate(student models.Student, teachers []models.Teacher, classrooms []models.Classroom, occupied *OccupiedIndex) []models.Candidate {
	qualified := g.QualifiedTeachers(student, teachers)
	rooms := g.SuitableClassrooms(student, classrooms)
	if len(qualified) == 0 || len(rooms) == 0 {
		return nil
	}
	windows := g.StudentWindows(student, occupied)
	if len(windows) == 0 {
		return nil
	}

	candidates := make([]models.Candidate, 0, len(qualified)*len(rooms)*len(windows))
	for _, t := range qualified {
		for _, r := range rooms {
			for _, w := range windows {
				candidates = append(candidates, models.Candidate{
					StudentID:   student.ID,
					TeacherID:   t.ID,
					ClassroomID: r.ID,
					Day:         w.Day,
					StartSlot:   w.Start,
					Duration:    w.Length,
					Subject:     student.Subject,
				})
			}
		}
	}
	return candidates
}

func sameCampus(a, b string) bool {
	return strings.EqualFold(strings.TrimSpace(a), strings.TrimSpace(b))
}
