package service

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/tutoring-scheduler/internal/models"
)

func runPass(t *testing.T, students []models.Student, teachers []models.Teacher, rooms []models.Classroom, existing []models.Course) ([]models.Course, []string) {
	t.Helper()
	gen := NewCandidateGenerator(2)
	occupied := NewOccupiedIndex(existing)
	candidates := make(map[string][]models.Candidate)
	for _, s := range students {
		candidates[s.ID] = gen.Generate(s, teachers, rooms, occupied)
	}
	engine := NewAssignmentEngine(DefaultScoringWeights(), sequentialIDs("course"))
	return engine.Assign(AssignmentInput{Students: students, Candidates: candidates, Teachers: teachers, Classrooms: rooms}, occupied)
}

func TestAssignmentEngineMondayMorningPicksEarliestStart(t *testing.T) {
	courses, unassigned := runPass(t,
		[]models.Student{mondayMorningStudent("s1")},
		[]models.Teacher{mondayTeacher("t1")},
		[]models.Classroom{openRoom("r1")}, nil)

	require.Empty(t, unassigned)
	require.Len(t, courses, 1)
	assert.Equal(t, 1, courses[0].Day)
	assert.Equal(t, 0, courses[0].StartSlot)
	assert.Equal(t, 24, courses[0].Duration)
	assert.Equal(t, "course-1", courses[0].ID)
	assert.InDelta(t, 30.0, courses[0].Score, 1e-9)
}

func TestAssignmentEngineScoring(t *testing.T) {
	engine := NewAssignmentEngine(DefaultScoringWeights(), nil)
	empty := NewOccupiedIndex(nil)

	weekday := engine.Score(models.Candidate{Day: 2, StartSlot: 0}, empty)
	weekend := engine.Score(models.Candidate{Day: 0, StartSlot: 0}, empty)
	assert.InDelta(t, 10.0, weekday-weekend, 1e-9)

	beforeNoon := engine.Score(models.Candidate{Day: 2, StartSlot: 35}, empty)
	noon := engine.Score(models.Candidate{Day: 2, StartSlot: 36}, empty)
	afterNoon := engine.Score(models.Candidate{Day: 2, StartSlot: 48}, empty)
	assert.InDelta(t, 5.0+20.0/150, beforeNoon-noon, 1e-9)
	assert.Greater(t, afterNoon, noon-5)

	busy := NewOccupiedIndex([]models.Course{
		{StudentID: "a", TeacherID: "t1", ClassroomID: "r1", Day: 2, StartSlot: 0, Duration: 6},
		{StudentID: "b", TeacherID: "t2", ClassroomID: "r2", Day: 2, StartSlot: 0, Duration: 6},
	})
	congested := engine.Score(models.Candidate{Day: 2, StartSlot: 0}, busy)
	assert.InDelta(t, 6.0, weekday-congested, 1e-9)
}

func TestAssignmentEngineFirstInInputOrderWinsTies(t *testing.T) {
	courses, unassigned := runPass(t,
		[]models.Student{singleWindowStudent("s1"), singleWindowStudent("s2")},
		[]models.Teacher{openTeacher("t1")},
		[]models.Classroom{openRoom("r1"), openRoom("r2")}, nil)

	require.Len(t, courses, 1)
	assert.Equal(t, "s1", courses[0].StudentID)
	assert.Equal(t, []string{"s2"}, unassigned)
}

func TestAssignmentEngineSchedulesMostConstrainedFirst(t *testing.T) {
	flexible := singleWindowStudent("flex")
	flexible.Constraints = &models.TimeConstraints{
		AllowedDays:       []int{1},
		AllowedTimeRanges: []models.TimeRange{{Day: models.DayPtr(1), Start: 0, End: 60}},
	}
	rigid := singleWindowStudent("rigid")

	courses, unassigned := runPass(t,
		[]models.Student{flexible, rigid},
		[]models.Teacher{openTeacher("t1")},
		[]models.Classroom{openRoom("r1")}, nil)

	assert.Empty(t, unassigned)
	require.Len(t, courses, 2)
	assert.Equal(t, "rigid", courses[0].StudentID)
	assert.Equal(t, 0, courses[0].StartSlot)
	assert.Equal(t, "flex", courses[1].StudentID)
	assert.GreaterOrEqual(t, courses[1].StartSlot, 24)
}

func TestAssignmentEngineRespectsTeacherHourCap(t *testing.T) {
	teacher := openTeacher("t1")
	teacher.MaxWeeklyHours = 3
	existing := []models.Course{{ID: "c0", StudentID: "old", TeacherID: "t1", ClassroomID: "r9", Day: 4, StartSlot: 0, Duration: 24}}

	courses, unassigned := runPass(t,
		[]models.Student{singleWindowStudent("s1")},
		[]models.Teacher{teacher},
		[]models.Classroom{openRoom("r1")}, existing)

	assert.Empty(t, courses)
	assert.Equal(t, []string{"s1"}, unassigned)
}

func TestAssignmentEngineNeverDoubleBooks(t *testing.T) {
	students := make([]models.Student, 0, 8)
	for _, id := range []string{"a", "b", "c", "d", "e", "f", "g", "h"} {
		students = append(students, dayOneStudent(id))
	}
	teachers := []models.Teacher{openTeacher("t1"), openTeacher("t2")}
	rooms := []models.Classroom{openRoom("r1"), openRoom("r2"), openRoom("r3")}

	courses, unassigned := runPass(t, students, teachers, rooms, nil)
	assert.Len(t, courses, 8)
	assert.Empty(t, unassigned)

	for i := range courses {
		for j := i + 1; j < len(courses); j++ {
			a, b := courses[i], courses[j]
			if a.TeacherID == b.TeacherID || a.ClassroomID == b.ClassroomID || a.StudentID == b.StudentID {
				assert.False(t, a.Overlaps(b), "courses %s and %s overlap", a.ID, b.ID)
			}
		}
	}
}

func TestAssignmentEngineIsDeterministic(t *testing.T) {
	students := []models.Student{mondayMorningStudent("s1"), singleWindowStudent("s2"), dayOneStudent("s3")}
	teachers := []models.Teacher{mondayTeacher("t1"), openTeacher("t2")}
	rooms := []models.Classroom{openRoom("r1"), openRoom("r2")}

	first, firstUnassigned := runPass(t, students, teachers, rooms, nil)
	second, secondUnassigned := runPass(t, students, teachers, rooms, nil)
	assert.Equal(t, first, second)
	assert.Equal(t, firstUnassigned, secondUnassigned)
}

func dayOneStudent(id string) models.Student {
	return models.Student{
		ID:            id,
		Name:          "Student " + id,
		Subject:       "math",
		Campus:        "north",
		DurationSlots: 24,
		Constraints: &models.TimeConstraints{
			AllowedDays:       []int{1},
			AllowedTimeRanges: []models.TimeRange{{Start: 0, End: 96}},
		},
	}
}
