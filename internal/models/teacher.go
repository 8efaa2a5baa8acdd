package models

import "strings"

// Teacher is a tutor qualified for one or more subjects.
type Teacher struct {
	ID             string           `json:"id" yaml:"id" validate:"required"`
	Name           string           `json:"name" yaml:"name"`
	Subjects       []string         `json:"subjects" yaml:"subjects"`
	Campus         string           `json:"campus" yaml:"campus"`
	MaxWeeklyHours float64          `json:"maxWeeklyHours" yaml:"maxWeeklyHours" validate:"gte=0"`
	Constraints    *TimeConstraints `json:"constraints,omitempty" yaml:"constraints,omitempty"`
}

// Teaches reports whether the teacher is qualified for subject.
func (t *Teacher) Teaches(subject string) bool {
	for _, s := range t.Subjects {
		if strings.EqualFold(strings.TrimSpace(s), strings.TrimSpace(subject)) {
			return true
		}
	}
	return false
}

// Clone deep-copies the teacher.
func (t Teacher) Clone() Teacher {
	if t.Subjects != nil {
		t.Subjects = append([]string(nil), t.Subjects...)
	}
	t.Constraints = t.Constraints.Clone()
	return t
}
