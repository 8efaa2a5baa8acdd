package models

// Roster is the full input of one matching or adjustment session.
type Roster struct {
	Students   []Student   `json:"students" yaml:"students" validate:"dive"`
	Teachers   []Teacher   `json:"teachers" yaml:"teachers" validate:"dive"`
	Classrooms []Classroom `json:"classrooms" yaml:"classrooms" validate:"dive"`
	Courses    []Course    `json:"courses,omitempty" yaml:"courses,omitempty"`
}
