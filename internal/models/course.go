package models

// Candidate is a not-yet-committed (teacher, classroom, window) option for a student.
type Candidate struct {
	StudentID   string  `json:"studentId"`
	TeacherID   string  `json:"teacherId"`
	ClassroomID string  `json:"classroomId"`
	Day         int     `json:"day"`
	StartSlot   int     `json:"startSlot"`
	Duration    int     `json:"duration"`
	Subject     string  `json:"subject"`
	Score       float64 `json:"score"`
}

// Course is a committed session. Courses are never edited in place.
type Course struct {
	ID          string  `json:"id" yaml:"id" db:"id"`
	StudentID   string  `json:"studentId" yaml:"studentId" db:"student_id"`
	TeacherID   string  `json:"teacherId" yaml:"teacherId" db:"teacher_id"`
	ClassroomID string  `json:"classroomId" yaml:"classroomId" db:"classroom_id"`
	Subject     string  `json:"subject" yaml:"subject" db:"subject"`
	Day         int     `json:"day" yaml:"day" db:"day_of_week"`
	StartSlot   int     `json:"startSlot" yaml:"startSlot" db:"start_slot"`
	Duration    int     `json:"duration" yaml:"duration" db:"duration_slots"`
	Score       float64 `json:"score" yaml:"score" db:"score"`
}

// EndSlot is the first slot after the course.
func (c Course) EndSlot() int {
	return c.StartSlot + c.Duration
}

// Overlaps reports whether two courses share a day and any slot.
func (c Course) Overlaps(other Course) bool {
	return c.Day == other.Day && c.StartSlot < other.EndSlot() && other.StartSlot < c.EndSlot()
}
