package models

// Student is a learner awaiting a one-to-one session.
type Student struct {
	ID             string           `json:"id" yaml:"id" validate:"required"`
	Name           string           `json:"name" yaml:"name"`
	Subject        string           `json:"subject" yaml:"subject" validate:"required"`
	Campus         string           `json:"campus" yaml:"campus"`
	DurationSlots  int              `json:"durationSlots" yaml:"durationSlots" validate:"gte=0,lte=150"`
	RemainingHours float64          `json:"remainingHours" yaml:"remainingHours" validate:"gte=0"`
	Constraints    *TimeConstraints `json:"constraints,omitempty" yaml:"constraints,omitempty"`
}

// Duration returns the requested session length, defaulting to two hours.
func (s *Student) Duration() int {
	if s.DurationSlots <= 0 {
		return DefaultDurationSlots
	}
	return s.DurationSlots
}

// Clone deep-copies the student.
func (s Student) Clone() Student {
	s.Constraints = s.Constraints.Clone()
	return s
}
