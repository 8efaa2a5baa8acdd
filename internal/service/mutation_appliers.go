package service

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/noah-isme/tutoring-scheduler/internal/models"
	appErrors "github.com/noah-isme/tutoring-scheduler/pkg/errors"
)

// fieldApplier reads, decodes and writes one mutable field of a working-copy record.
type fieldApplier struct {
	read   func() interface{}
	decode func(raw interface{}) (interface{}, error)
	write  func(value interface{})
}

// preparedMutation is a decoded write that has not been applied yet.
type preparedMutation struct {
	targetType models.TargetType
	targetID   string
	targetName string
	field      string
	applier    fieldApplier
	oldValue   interface{}
	newValue   interface{}
}

func (p preparedMutation) changed() bool {
	return !valuesEqual(p.oldValue, p.newValue)
}

func studentApplier(s *models.Student, field string) (fieldApplier, bool) {
	switch field {
	case models.FieldName:
		return stringField(&s.Name, false), true
	case models.FieldSubject:
		return stringField(&s.Subject, true), true
	case models.FieldCampus:
		return stringField(&s.Campus, false), true
	case models.FieldDurationSlots:
		return fieldApplier{
			read: func() interface{} { return s.DurationSlots },
			decode: func(raw interface{}) (interface{}, error) {
				var v int
				if err := decodeValue(raw, &v); err != nil {
					return nil, err
				}
				if v <= 0 || v > models.SlotsPerDay {
					return nil, fmt.Errorf("durationSlots must be between 1 and %d", models.SlotsPerDay)
				}
				return v, nil
			},
			write: func(value interface{}) { s.DurationSlots = value.(int) },
		}, true
	case models.FieldRemainingHours:
		return floatField(&s.RemainingHours), true
	case models.FieldConstraints:
		return constraintsField(&s.Constraints), true
	}
	return fieldApplier{}, false
}

func teacherApplier(t *models.Teacher, field string) (fieldApplier, bool) {
	switch field {
	case models.FieldName:
		return stringField(&t.Name, false), true
	case models.FieldCampus:
		return stringField(&t.Campus, false), true
	case models.FieldSubjects:
		return fieldApplier{
			read: func() interface{} { return append([]string(nil), t.Subjects...) },
			decode: func(raw interface{}) (interface{}, error) {
				var v []string
				if err := decodeValue(raw, &v); err != nil {
					return nil, err
				}
				cleaned := make([]string, 0, len(v))
				for _, subject := range v {
					if trimmed := strings.TrimSpace(subject); trimmed != "" {
						cleaned = append(cleaned, trimmed)
					}
				}
				return cleaned, nil
			},
			write: func(value interface{}) { t.Subjects = value.([]string) },
		}, true
	case models.FieldMaxWeeklyHours:
		return floatField(&t.MaxWeeklyHours), true
	case models.FieldConstraints:
		return constraintsField(&t.Constraints), true
	}
	return fieldApplier{}, false
}

func classroomApplier(c *models.Classroom, field string) (fieldApplier, bool) {
	switch field {
	case models.FieldName:
		return stringField(&c.Name, false), true
	case models.FieldCampus:
		return stringField(&c.Campus, false), true
	case models.FieldCapacity:
		return fieldApplier{
			read: func() interface{} { return c.Capacity },
			decode: func(raw interface{}) (interface{}, error) {
				var v int
				if err := decodeValue(raw, &v); err != nil {
					return nil, err
				}
				if v < 0 {
					return nil, fmt.Errorf("capacity must not be negative")
				}
				return v, nil
			},
			write: func(value interface{}) { c.Capacity = value.(int) },
		}, true
	case models.FieldConstraints:
		return constraintsField(&c.Constraints), true
	}
	return fieldApplier{}, false
}

func stringField(dst *string, required bool) fieldApplier {
	return fieldApplier{
		read: func() interface{} { return *dst },
		decode: func(raw interface{}) (interface{}, error) {
			var v string
			if err := decodeValue(raw, &v); err != nil {
				return nil, err
			}
			v = strings.TrimSpace(v)
			if required && v == "" {
				return nil, fmt.Errorf("value must not be empty")
			}
			return v, nil
		},
		write: func(value interface{}) { *dst = value.(string) },
	}
}

func floatField(dst *float64) fieldApplier {
	return fieldApplier{
		read: func() interface{} { return *dst },
		decode: func(raw interface{}) (interface{}, error) {
			var v float64
			if err := decodeValue(raw, &v); err != nil {
				return nil, err
			}
			if v < 0 {
				return nil, fmt.Errorf("value must not be negative")
			}
			return v, nil
		},
		write: func(value interface{}) { *dst = value.(float64) },
	}
}

func constraintsField(dst **models.TimeConstraints) fieldApplier {
	return fieldApplier{
		read: func() interface{} { return (*dst).Clone() },
		decode: func(raw interface{}) (interface{}, error) {
			var v *models.TimeConstraints
			if err := decodeValue(raw, &v); err != nil {
				return nil, err
			}
			if err := validateConstraints(v); err != nil {
				return nil, err
			}
			return v, nil
		},
		write: func(value interface{}) { *dst = value.(*models.TimeConstraints).Clone() },
	}
}

func validateConstraints(c *models.TimeConstraints) error {
	if c == nil {
		return nil
	}
	if c.Granularity != "" && c.Granularity != models.Granularity5m && c.Granularity != models.Granularity30m {
		return fmt.Errorf("unknown granularity %q", c.Granularity)
	}
	for _, d := range c.AllowedDays {
		if d < 0 || d >= models.DaysPerWeek {
			return fmt.Errorf("allowed day %d out of range", d)
		}
	}
	for _, r := range append(append([]models.TimeRange(nil), c.AllowedTimeRanges...), c.ExcludedTimeRanges...) {
		if r.Start < 0 || r.End <= r.Start {
			return fmt.Errorf("invalid time range [%d, %d)", r.Start, r.End)
		}
		if r.Day != nil && (*r.Day < 0 || *r.Day >= models.DaysPerWeek) {
			return fmt.Errorf("time range day %d out of range", *r.Day)
		}
	}
	return nil
}

// decodeValue converts a loosely typed value (often decoded JSON) into dest.
func decodeValue(raw interface{}, dest interface{}) error {
	payload, err := json.Marshal(raw)
	if err != nil {
		return err
	}
	return json.Unmarshal(payload, dest)
}

// valuesEqual compares canonical encodings so nil and empty containers compare equal.
func valuesEqual(a, b interface{}) bool {
	left, errA := json.Marshal(a)
	right, errB := json.Marshal(b)
	if errA != nil || errB != nil {
		return false
	}
	return bytes.Equal(left, right)
}

// prepareMutation resolves the target and decodes the value without writing anything.
// The caller must hold the service lock.
func (s *AdjustmentService) prepareMutation(targetType models.TargetType, targetID, field string, raw interface{}) (preparedMutation, error) {
	p := preparedMutation{targetType: targetType, targetID: targetID, field: field}
	var (
		applier fieldApplier
		found   bool
		known   bool
	)
	switch targetType {
	case models.TargetStudent:
		if idx := s.studentIndex(targetID); idx >= 0 {
			found = true
			p.targetName = s.students[idx].Name
			applier, known = studentApplier(&s.students[idx], field)
		}
	case models.TargetTeacher:
		if idx := s.teacherIndex(targetID); idx >= 0 {
			found = true
			p.targetName = s.teachers[idx].Name
			applier, known = teacherApplier(&s.teachers[idx], field)
		}
	case models.TargetClassroom:
		if idx := s.classroomIndex(targetID); idx >= 0 {
			found = true
			p.targetName = s.classrooms[idx].Name
			applier, known = classroomApplier(&s.classrooms[idx], field)
		}
	default:
		return p, appErrors.Clone(appErrors.ErrValidation, fmt.Sprintf("unknown target type %q", targetType))
	}
	if !found {
		return p, appErrors.Clone(appErrors.ErrTargetNotFound, fmt.Sprintf("%s %s not found", targetType, targetID))
	}
	if !known {
		return p, appErrors.Clone(appErrors.ErrValidation, fmt.Sprintf("field %q is not editable on %s", field, targetType))
	}
	value, err := applier.decode(raw)
	if err != nil {
		return p, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, fmt.Sprintf("invalid value for %s.%s", targetType, field))
	}
	p.applier = applier
	p.oldValue = applier.read()
	p.newValue = value
	return p, nil
}
