package service

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/tutoring-scheduler/internal/models"
)

func TestCandidateGeneratorMondayMorningWindows(t *testing.T) {
	gen := NewCandidateGenerator(2)

	candidates := gen.Generate(mondayMorningStudent("s1"), []models.Teacher{mondayTeacher("t1")}, []models.Classroom{openRoom("r1")}, nil)

	require.Len(t, candidates, 13)
	for i, c := range candidates {
		assert.Equal(t, 1, c.Day)
		assert.Equal(t, i, c.StartSlot)
		assert.Equal(t, 24, c.Duration)
		assert.Equal(t, "t1", c.TeacherID)
		assert.Equal(t, "r1", c.ClassroomID)
		assert.Equal(t, "math", c.Subject)
	}
}

func TestCandidateGeneratorRequiresQualifiedTeacher(t *testing.T) {
	gen := NewCandidateGenerator(2)
	candidates := gen.Generate(mondayMorningStudent("s1"), []models.Teacher{openTeacher("t1", "physics")}, []models.Classroom{openRoom("r1")}, nil)
	assert.Empty(t, candidates)
}

func TestCandidateGeneratorRequiresSuitableRoom(t *testing.T) {
	gen := NewCandidateGenerator(2)
	small := openRoom("r1")
	small.Capacity = 1
	elsewhere := openRoom("r2")
	elsewhere.Campus = "south"

	candidates := gen.Generate(mondayMorningStudent("s1"), []models.Teacher{openTeacher("t1")}, []models.Classroom{small, elsewhere}, nil)
	assert.Empty(t, candidates)
}

func TestCandidateGeneratorIsTeacherMajor(t *testing.T) {
	gen := NewCandidateGenerator(0)
	candidates := gen.Generate(singleWindowStudent("s1"),
		[]models.Teacher{openTeacher("t1"), openTeacher("t2")},
		[]models.Classroom{openRoom("r1"), openRoom("r2")}, nil)

	require.Len(t, candidates, 4)
	assert.Equal(t, []string{"t1", "t1", "t2", "t2"}, []string{candidates[0].TeacherID, candidates[1].TeacherID, candidates[2].TeacherID, candidates[3].TeacherID})
	assert.Equal(t, []string{"r1", "r2", "r1", "r2"}, []string{candidates[0].ClassroomID, candidates[1].ClassroomID, candidates[2].ClassroomID, candidates[3].ClassroomID})
}

func TestCandidateGeneratorSkipsStudentsOwnCourses(t *testing.T) {
	gen := NewCandidateGenerator(2)
	occupied := NewOccupiedIndex([]models.Course{{StudentID: "s1", TeacherID: "tx", ClassroomID: "rx", Day: 1, StartSlot: 30, Duration: 6}})

	windows := gen.StudentWindows(mondayMorningStudent("s1"), occupied)
	require.Len(t, windows, 7)
	assert.Equal(t, 6, windows[len(windows)-1].Start)
}

func TestCandidateGeneratorMatchesSubjectCaseInsensitively(t *testing.T) {
	gen := NewCandidateGenerator(2)
	teacher := openTeacher("t1", " Math ")
	assert.Len(t, gen.QualifiedTeachers(mondayMorningStudent("s1"), []models.Teacher{teacher}), 1)
}
