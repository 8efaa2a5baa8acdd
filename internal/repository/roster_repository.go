package repository

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/jmoiron/sqlx"
	"github.com/jmoiron/sqlx/types"

	"github.com/noah-isme/tutoring-scheduler/internal/models"
)

// RosterRepository loads and stores the students, teachers, classrooms and courses of a session.
type RosterRepository struct {
	db *sqlx.DB
}

// NewRosterRepository constructs a RosterRepository.
func NewRosterRepository(db *sqlx.DB) *RosterRepository {
	return &RosterRepository{db: db}
}

type studentRow struct {
	ID             string         `db:"id"`
	Name           string         `db:"name"`
	Subject        string         `db:"subject"`
	Campus         string         `db:"campus"`
	DurationSlots  int            `db:"duration_slots"`
	RemainingHours float64        `db:"remaining_hours"`
	Constraints    types.JSONText `db:"constraints"`
}

type teacherRow struct {
	ID             string         `db:"id"`
	Name           string         `db:"name"`
	Subjects       string         `db:"subjects"`
	Campus         string         `db:"campus"`
	MaxWeeklyHours float64        `db:"max_weekly_hours"`
	Constraints    types.JSONText `db:"constraints"`
}

type classroomRow struct {
	ID          string         `db:"id"`
	Name        string         `db:"name"`
	Campus      string         `db:"campus"`
	Capacity    int            `db:"capacity"`
	Constraints types.JSONText `db:"constraints"`
}

// LoadRoster reads every record of the session in id order.
func (r *RosterRepository) LoadRoster(ctx context.Context) (*models.Roster, error) {
	var students []studentRow
	const studentQuery = `SELECT id, name, subject, campus, duration_slots, remaining_hours, constraints FROM students ORDER BY id`
	if err := r.db.SelectContext(ctx, &students, studentQuery); err != nil {
		return nil, fmt.Errorf("load students: %w", err)
	}

	var teachers []teacherRow
	const teacherQuery = `SELECT id, name, subjects, campus, max_weekly_hours, constraints FROM teachers ORDER BY id`
	if err := r.db.SelectContext(ctx, &teachers, teacherQuery); err != nil {
		return nil, fmt.Errorf("load teachers: %w", err)
	}

	var classrooms []classroomRow
	const classroomQuery = `SELECT id, name, campus, capacity, constraints FROM classrooms ORDER BY id`
	if err := r.db.SelectContext(ctx, &classrooms, classroomQuery); err != nil {
		return nil, fmt.Errorf("load classrooms: %w", err)
	}

	var courses []models.Course
	const courseQuery = `SELECT id, student_id, teacher_id, classroom_id, subject, day_of_week, start_slot, duration_slots, score
	FROM courses ORDER BY day_of_week, start_slot, id`
	if err := r.db.SelectContext(ctx, &courses, courseQuery); err != nil {
		return nil, fmt.Errorf("load courses: %w", err)
	}

	roster := &models.Roster{
		Students:   make([]models.Student, 0, len(students)),
		Teachers:   make([]models.Teacher, 0, len(teachers)),
		Classrooms: make([]models.Classroom, 0, len(classrooms)),
		Courses:    courses,
	}
	for _, row := range students {
		constraints, err := decodeConstraints(row.Constraints)
		if err != nil {
			return nil, fmt.Errorf("student %s: %w", row.ID, err)
		}
		roster.Students = append(roster.Students, models.Student{
			ID:             row.ID,
			Name:           row.Name,
			Subject:        row.Subject,
			Campus:         row.Campus,
			DurationSlots:  row.DurationSlots,
			RemainingHours: row.RemainingHours,
			Constraints:    constraints,
		})
	}
	for _, row := range teachers {
		constraints, err := decodeConstraints(row.Constraints)
		if err != nil {
			return nil, fmt.Errorf("teacher %s: %w", row.ID, err)
		}
		roster.Teachers = append(roster.Teachers, models.Teacher{
			ID:             row.ID,
			Name:           row.Name,
			Subjects:       splitSubjects(row.Subjects),
			Campus:         row.Campus,
			MaxWeeklyHours: row.MaxWeeklyHours,
			Constraints:    constraints,
		})
	}
	for _, row := range classrooms {
		constraints, err := decodeConstraints(row.Constraints)
		if err != nil {
			return nil, fmt.Errorf("classroom %s: %w", row.ID, err)
		}
		roster.Classrooms = append(roster.Classrooms, models.Classroom{
			ID:          row.ID,
			Name:        row.Name,
			Campus:      row.Campus,
			Capacity:    row.Capacity,
			Constraints: constraints,
		})
	}
	return roster, nil
}

// SaveWorkingCopies upserts the modified records and inserts new courses in one transaction.
func (r *RosterRepository) SaveWorkingCopies(ctx context.Context, roster models.Roster) (err error) {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin roster transaction: %w", err)
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	const studentUpsert = `INSERT INTO students (id, name, subject, campus, duration_slots, remaining_hours, constraints)
VALUES ($1, $2, $3, $4, $5, $6, $7)
ON CONFLICT (id) DO UPDATE SET name = EXCLUDED.name, subject = EXCLUDED.subject, campus = EXCLUDED.campus,
	duration_slots = EXCLUDED.duration_slots, remaining_hours = EXCLUDED.remaining_hours, constraints = EXCLUDED.constraints`
	for _, s := range roster.Students {
		constraints, encErr := encodeConstraints(s.Constraints)
		if encErr != nil {
			return fmt.Errorf("student %s: %w", s.ID, encErr)
		}
		if _, err = tx.ExecContext(ctx, studentUpsert, s.ID, s.Name, s.Subject, s.Campus, s.DurationSlots, s.RemainingHours, constraints); err != nil {
			return fmt.Errorf("save student %s: %w", s.ID, err)
		}
	}

	const teacherUpsert = `INSERT INTO teachers (id, name, subjects, campus, max_weekly_hours, constraints)
VALUES ($1, $2, $3, $4, $5, $6)
ON CONFLICT (id) DO UPDATE SET name = EXCLUDED.name, subjects = EXCLUDED.subjects, campus = EXCLUDED.campus,
	max_weekly_hours = EXCLUDED.max_weekly_hours, constraints = EXCLUDED.constraints`
	for _, t := range roster.Teachers {
		constraints, encErr := encodeConstraints(t.Constraints)
		if encErr != nil {
			return fmt.Errorf("teacher %s: %w", t.ID, encErr)
		}
		if _, err = tx.ExecContext(ctx, teacherUpsert, t.ID, t.Name, strings.Join(t.Subjects, ","), t.Campus, t.MaxWeeklyHours, constraints); err != nil {
			return fmt.Errorf("save teacher %s: %w", t.ID, err)
		}
	}

	const classroomUpsert = `INSERT INTO classrooms (id, name, campus, capacity, constraints)
VALUES ($1, $2, $3, $4, $5)
ON CONFLICT (id) DO UPDATE SET name = EXCLUDED.name, campus = EXCLUDED.campus, capacity = EXCLUDED.capacity,
	constraints = EXCLUDED.constraints`
	for _, c := range roster.Classrooms {
		constraints, encErr := encodeConstraints(c.Constraints)
		if encErr != nil {
			return fmt.Errorf("classroom %s: %w", c.ID, encErr)
		}
		if _, err = tx.ExecContext(ctx, classroomUpsert, c.ID, c.Name, c.Campus, c.Capacity, constraints); err != nil {
			return fmt.Errorf("save classroom %s: %w", c.ID, err)
		}
	}

	const courseInsert = `INSERT INTO courses (id, student_id, teacher_id, classroom_id, subject, day_of_week, start_slot, duration_slots, score)
VALUES (:id, :student_id, :teacher_id, :classroom_id, :subject, :day_of_week, :start_slot, :duration_slots, :score)
ON CONFLICT (id) DO NOTHING`
	for _, course := range roster.Courses {
		if _, err = tx.NamedExecContext(ctx, courseInsert, course); err != nil {
			return fmt.Errorf("save course %s: %w", course.ID, err)
		}
	}

	if err = tx.Commit(); err != nil {
		return fmt.Errorf("commit roster: %w", err)
	}
	return nil
}

func decodeConstraints(raw types.JSONText) (*models.TimeConstraints, error) {
	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null")) || bytes.Equal(trimmed, []byte("{}")) {
		return nil, nil
	}
	var constraints models.TimeConstraints
	if err := json.Unmarshal(trimmed, &constraints); err != nil {
		return nil, fmt.Errorf("decode constraints: %w", err)
	}
	return &constraints, nil
}

func encodeConstraints(c *models.TimeConstraints) (types.JSONText, error) {
	if c == nil {
		return types.JSONText(`null`), nil
	}
	payload, err := json.Marshal(c)
	if err != nil {
		return nil, fmt.Errorf("encode constraints: %w", err)
	}
	return types.JSONText(payload), nil
}

func splitSubjects(raw string) []string {
	parts := strings.Split(raw, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if trimmed := strings.TrimSpace(p); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}
