package service

import "github.com/noah-isme/tutoring-scheduler/internal/models"

// ComputeAvailability converts constraint data into a canonical free/busy grid.
//
// Rules are merged in order: allowed days close every other day, allowed time
// ranges (global or day specific) are unioned per open day, and excluded
// ranges are subtracted last. Missing data yields a fully free grid.
func ComputeAvailability(constraints *models.TimeConstraints) models.TimeGrid {
	if constraints.IsEmpty() {
		return models.FullGrid()
	}
	c := constraints.Normalize()

	var open [models.DaysPerWeek]bool
	if len(c.AllowedDays) == 0 {
		for d := range open {
			open[d] = true
		}
	} else {
		for _, d := range c.AllowedDays {
			if d >= 0 && d < models.DaysPerWeek {
				open[d] = true
			}
		}
	}

	var grid models.TimeGrid
	for d := 0; d < models.DaysPerWeek; d++ {
		if !open[d] {
			continue
		}
		if len(c.AllowedTimeRanges) == 0 {
			fillRange(&grid, d, 0, models.SlotsPerDay, true)
			continue
		}
		for _, r := range c.AllowedTimeRanges {
			if r.Day == nil || *r.Day == d {
				fillRange(&grid, d, r.Start, r.End, true)
			}
		}
	}

	for _, r := range c.ExcludedTimeRanges {
		if r.Day != nil {
			fillRange(&grid, *r.Day, r.Start, r.End, false)
			continue
		}
		for d := 0; d < models.DaysPerWeek; d++ {
			fillRange(&grid, d, r.Start, r.End, false)
		}
	}

	return grid
}

func fillRange(grid *models.TimeGrid, day, start, end int, value bool) {
	if day < 0 || day >= models.DaysPerWeek {
		return
	}
	if start < 0 {
		start = 0
	}
	if end > models.SlotsPerDay {
		end = models.SlotsPerDay
	}
	for s := start; s < end; s++ {
		grid[day][s] = value
	}
}

// --- Occupied index ---

// OccupiedIndex records consumed (day, slot) cells per student, teacher and classroom.
// It is owned by a single scheduling pass and rebuilt from the course list.
type OccupiedIndex struct {
	students   map[string]map[int]struct{}
	teachers   map[string]map[int]struct{}
	classrooms map[string]map[int]struct{}
	// per (day, slot) number of teachers busy there
	teacherLoad map[int]int
}

// NewOccupiedIndex builds an index from already-committed courses.
func NewOccupiedIndex(courses []models.Course) *OccupiedIndex {
	idx := &OccupiedIndex{
		students:    make(map[string]map[int]struct{}),
		teachers:    make(map[string]map[int]struct{}),
		classrooms:  make(map[string]map[int]struct{}),
		teacherLoad: make(map[int]int),
	}
	for _, c := range courses {
		idx.Mark(c)
	}
	return idx
}

func slotKey(day, slot int) int {
	return day*models.SlotsPerDay + slot
}

// Mark occupies every slot of the course for its student, teacher and classroom.
func (o *OccupiedIndex) Mark(c models.Course) {
	for s := c.StartSlot; s < c.EndSlot(); s++ {
		key := slotKey(c.Day, s)
		addKey(o.students, c.StudentID, key)
		if addKey(o.teachers, c.TeacherID, key) {
			o.teacherLoad[key]++
		}
		addKey(o.classrooms, c.ClassroomID, key)
	}
}

func addKey(m map[string]map[int]struct{}, id string, key int) bool {
	set, ok := m[id]
	if !ok {
		set = make(map[int]struct{})
		m[id] = set
	}
	if _, exists := set[key]; exists {
		return false
	}
	set[key] = struct{}{}
	return true
}

func anyBusy(set map[int]struct{}, day, start, duration int) bool {
	if len(set) == 0 {
		return false
	}
	for s := start; s < start+duration; s++ {
		if _, ok := set[slotKey(day, s)]; ok {
			return true
		}
	}
	return false
}

// StudentBusy reports whether the student has a course overlapping the window.
func (o *OccupiedIndex) StudentBusy(id string, day, start, duration int) bool {
	return anyBusy(o.students[id], day, start, duration)
}

// TeacherBusy reports whether the teacher has a course overlapping the window.
func (o *OccupiedIndex) TeacherBusy(id string, day, start, duration int) bool {
	return anyBusy(o.teachers[id], day, start, duration)
}

// ClassroomBusy reports whether the classroom has a course overlapping the window.
func (o *OccupiedIndex) ClassroomBusy(id string, day, start, duration int) bool {
	return anyBusy(o.classrooms[id], day, start, duration)
}

// Conflicts reports whether a course would overlap anything already committed.
func (o *OccupiedIndex) Conflicts(c models.Course) bool {
	return o.StudentBusy(c.StudentID, c.Day, c.StartSlot, c.Duration) ||
		o.TeacherBusy(c.TeacherID, c.Day, c.StartSlot, c.Duration) ||
		o.ClassroomBusy(c.ClassroomID, c.Day, c.StartSlot, c.Duration)
}

// TeachersBusyAt counts teachers occupied at (day, slot).
func (o *OccupiedIndex) TeachersBusyAt(day, slot int) int {
	return o.teacherLoad[slotKey(day, slot)]
}

// TeacherSlots returns the number of occupied slots for a teacher.
func (o *OccupiedIndex) TeacherSlots(id string) int {
	return len(o.teachers[id])
}

// ClassroomSlots returns the number of occupied slots for a classroom.
func (o *OccupiedIndex) ClassroomSlots(id string) int {
	return len(o.classrooms[id])
}
