// Package rosterfile reads roster fixtures for the CLI and for servers started without a database.
// The YAML layout mirrors models.Roster; it is a fixture format, not an import format.
package rosterfile

import (
	"fmt"
	"os"

	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"

	"github.com/noah-isme/tutoring-scheduler/internal/models"
)

var validate = validator.New()

// Load reads and validates the roster at path.
func Load(path string) (*models.Roster, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read roster file: %w", err)
	}
	return Parse(data)
}

// Parse decodes and validates a YAML roster.
func Parse(data []byte) (*models.Roster, error) {
	var roster models.Roster
	if err := yaml.Unmarshal(data, &roster); err != nil {
		return nil, fmt.Errorf("failed to parse roster file: %w", err)
	}
	if err := Validate(&roster); err != nil {
		return nil, err
	}
	return &roster, nil
}

// Validate checks field rules and that ids are unique per collection and courses reference known records.
func Validate(roster *models.Roster) error {
	if err := validate.Struct(roster); err != nil {
		return fmt.Errorf("roster validation failed: %w", err)
	}

	students := make(map[string]struct{}, len(roster.Students))
	for i, s := range roster.Students {
		if _, dup := students[s.ID]; dup {
			return fmt.Errorf("duplicate student id %q at students[%d]", s.ID, i)
		}
		students[s.ID] = struct{}{}
	}
	teachers := make(map[string]struct{}, len(roster.Teachers))
	for i, t := range roster.Teachers {
		if _, dup := teachers[t.ID]; dup {
			return fmt.Errorf("duplicate teacher id %q at teachers[%d]", t.ID, i)
		}
		teachers[t.ID] = struct{}{}
	}
	rooms := make(map[string]struct{}, len(roster.Classrooms))
	for i, c := range roster.Classrooms {
		if _, dup := rooms[c.ID]; dup {
			return fmt.Errorf("duplicate classroom id %q at classrooms[%d]", c.ID, i)
		}
		rooms[c.ID] = struct{}{}
	}

	for i, c := range roster.Courses {
		if _, ok := students[c.StudentID]; !ok {
			return fmt.Errorf("courses[%d] references unknown student %q", i, c.StudentID)
		}
		if _, ok := teachers[c.TeacherID]; !ok {
			return fmt.Errorf("courses[%d] references unknown teacher %q", i, c.TeacherID)
		}
		if _, ok := rooms[c.ClassroomID]; !ok {
			return fmt.Errorf("courses[%d] references unknown classroom %q", i, c.ClassroomID)
		}
		if c.Day < 0 || c.Day >= models.DaysPerWeek || c.StartSlot < 0 || c.EndSlot() > models.SlotsPerDay {
			return fmt.Errorf("courses[%d] is outside the weekly grid", i)
		}
		for j := 0; j < i; j++ {
			prev := roster.Courses[j]
			if !c.Overlaps(prev) {
				continue
			}
			if c.StudentID == prev.StudentID || c.TeacherID == prev.TeacherID || c.ClassroomID == prev.ClassroomID {
				return fmt.Errorf("courses[%d] double-books courses[%d]", i, j)
			}
		}
	}
	return nil
}
