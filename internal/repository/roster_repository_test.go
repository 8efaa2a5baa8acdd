package repository

import (
	"context"
	"errors"
	"regexp"
	"testing"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/tutoring-scheduler/internal/models"
)

func newRepoMock(t *testing.T) (*sqlx.DB, sqlmock.Sqlmock, func()) {
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	require.NoError(t, err)
	return sqlx.NewDb(db, "sqlmock"), mock, func() { db.Close() }
}

func TestRosterRepositoryLoadRoster(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewRosterRepository(db)

	mock.ExpectQuery(regexp.QuoteMeta("SELECT id, name, subject, campus, duration_slots, remaining_hours, constraints FROM students")).
		WillReturnRows(sqlmock.NewRows([]string{"id", "name", "subject", "campus", "duration_slots", "remaining_hours", "constraints"}).
			AddRow("s1", "Ana", "math", "north", 24, 8.0, `{"allowedDays":[1],"allowedTimeRanges":[{"day":1,"start":0,"end":36}]}`).
			AddRow("s2", "Ben", "physics", "north", 0, 0.0, nil))
	mock.ExpectQuery(regexp.QuoteMeta("SELECT id, name, subjects, campus, max_weekly_hours, constraints FROM teachers")).
		WillReturnRows(sqlmock.NewRows([]string{"id", "name", "subjects", "campus", "max_weekly_hours", "constraints"}).
			AddRow("t1", "Li", "math, physics,", "north", 20.0, `null`))
	mock.ExpectQuery(regexp.QuoteMeta("SELECT id, name, campus, capacity, constraints FROM classrooms")).
		WillReturnRows(sqlmock.NewRows([]string{"id", "name", "campus", "capacity", "constraints"}).
			AddRow("r1", "Room 1", "north", 2, `{"granularity":"30m","allowedDays":[1,2]}`))
	mock.ExpectQuery(regexp.QuoteMeta("SELECT id, student_id, teacher_id, classroom_id, subject, day_of_week, start_slot, duration_slots, score")).
		WillReturnRows(sqlmock.NewRows([]string{"id", "student_id", "teacher_id", "classroom_id", "subject", "day_of_week", "start_slot", "duration_slots", "score"}).
			AddRow("c1", "s3", "t1", "r1", "math", 2, 0, 24, 30.0))

	roster, err := repo.LoadRoster(context.Background())
	require.NoError(t, err)

	require.Len(t, roster.Students, 2)
	require.NotNil(t, roster.Students[0].Constraints)
	assert.Equal(t, []int{1}, roster.Students[0].Constraints.AllowedDays)
	assert.Equal(t, 1, *roster.Students[0].Constraints.AllowedTimeRanges[0].Day)
	assert.Nil(t, roster.Students[1].Constraints)

	require.Len(t, roster.Teachers, 1)
	assert.Equal(t, []string{"math", "physics"}, roster.Teachers[0].Subjects)
	assert.Nil(t, roster.Teachers[0].Constraints)

	require.Len(t, roster.Classrooms, 1)
	assert.Equal(t, models.Granularity30m, roster.Classrooms[0].Constraints.Granularity)

	require.Len(t, roster.Courses, 1)
	assert.Equal(t, 2, roster.Courses[0].Day)
	assert.Equal(t, 24, roster.Courses[0].Duration)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestRosterRepositoryLoadRosterRejectsBadConstraints(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewRosterRepository(db)

	mock.ExpectQuery(regexp.QuoteMeta("FROM students")).
		WillReturnRows(sqlmock.NewRows([]string{"id", "name", "subject", "campus", "duration_slots", "remaining_hours", "constraints"}).
			AddRow("s1", "Ana", "math", "north", 24, 8.0, `{"allowedDays":"monday"}`))
	mock.ExpectQuery(regexp.QuoteMeta("FROM teachers")).
		WillReturnRows(sqlmock.NewRows([]string{"id", "name", "subjects", "campus", "max_weekly_hours", "constraints"}))
	mock.ExpectQuery(regexp.QuoteMeta("FROM classrooms")).
		WillReturnRows(sqlmock.NewRows([]string{"id", "name", "campus", "capacity", "constraints"}))
	mock.ExpectQuery(regexp.QuoteMeta("FROM courses")).
		WillReturnRows(sqlmock.NewRows([]string{"id", "student_id", "teacher_id", "classroom_id", "subject", "day_of_week", "start_slot", "duration_slots", "score"}))

	_, err := repo.LoadRoster(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "student s1")
}

func TestRosterRepositorySaveWorkingCopies(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewRosterRepository(db)

	mock.ExpectBegin()
	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO students")).
		WithArgs("s1", "Ana", "math", "north", 12, 8.0, sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO teachers")).
		WithArgs("t1", "Li", "math,physics", "north", 20.0, sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO classrooms")).
		WithArgs("r1", "Room 1", "north", 4, sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO courses")).
		WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectCommit()

	err := repo.SaveWorkingCopies(context.Background(), models.Roster{
		Students:   []models.Student{{ID: "s1", Name: "Ana", Subject: "math", Campus: "north", DurationSlots: 12, RemainingHours: 8}},
		Teachers:   []models.Teacher{{ID: "t1", Name: "Li", Subjects: []string{"math", "physics"}, Campus: "north", MaxWeeklyHours: 20}},
		Classrooms: []models.Classroom{{ID: "r1", Name: "Room 1", Campus: "north", Capacity: 4}},
		Courses:    []models.Course{{ID: "c1", StudentID: "s1", TeacherID: "t1", ClassroomID: "r1", Subject: "math", Day: 1, Duration: 12}},
	})
	require.NoError(t, err)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestRosterRepositorySaveWorkingCopiesRollsBack(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewRosterRepository(db)

	mock.ExpectBegin()
	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO students")).
		WillReturnError(errors.New("boom"))
	mock.ExpectRollback()

	err := repo.SaveWorkingCopies(context.Background(), models.Roster{
		Students: []models.Student{{ID: "s1", Name: "Ana", Subject: "math"}},
	})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "save student s1")
	require.NoError(t, mock.ExpectationsWereMet())
}
