package models

// Classroom is a bookable room on a campus.
type Classroom struct {
	ID          string           `json:"id" yaml:"id" validate:"required"`
	Name        string           `json:"name" yaml:"name"`
	Campus      string           `json:"campus" yaml:"campus"`
	Capacity    int              `json:"capacity" yaml:"capacity" validate:"gte=0"`
	Constraints *TimeConstraints `json:"constraints,omitempty" yaml:"constraints,omitempty"`
}

// Clone deep-copies the classroom.
func (c Classroom) Clone() Classroom {
	c.Constraints = c.Constraints.Clone()
	return c
}
