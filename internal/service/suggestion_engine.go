package service

import (
	"fmt"
	"sort"
	"strings"

	"github.com/google/uuid"

	"github.com/noah-isme/tutoring-scheduler/internal/models"
)

const (
	maxTimeSuggestions      = 5
	maxTeacherSuggestions   = 3
	maxSubjectSuggestions   = 5
	maxRoomSuggestions      = 3
	confidenceCeiling       = 0.95
	minReducedDurationSlots = 12
	reduceHoursThreshold    = 10
	studentMovePenalty      = 0.2
	feasibleWindowBonus     = 0.3
)

// SuggestionInput is the session state a generator reads. It is never mutated.
type SuggestionInput struct {
	Conflict   models.Conflict
	Students   []models.Student
	Teachers   []models.Teacher
	Classrooms []models.Classroom
	Courses    []models.Course
}

type suggestionContext struct {
	SuggestionInput
	student  models.Student
	occupied *OccupiedIndex
}

type suggestionGenerator func(e *SuggestionEngine, sc *suggestionContext) []models.Suggestion

// one pure generator per conflict type
var suggestionGenerators = map[models.ConflictType]suggestionGenerator{
	models.ConflictNoTime:    (*SuggestionEngine).timeSuggestions,
	models.ConflictNoTeacher: (*SuggestionEngine).teacherSuggestions,
	models.ConflictNoSubject: (*SuggestionEngine).subjectSuggestions,
	models.ConflictNoRoom:    (*SuggestionEngine).roomSuggestions,
	models.ConflictHourLimit: (*SuggestionEngine).hourLimitSuggestions,
	models.ConflictOther:     (*SuggestionEngine).fallbackSuggestions,
}

// SuggestionEngine produces ranked, declarative remediation proposals for a conflict.
type SuggestionEngine struct {
	generator       *CandidateGenerator
	defaultMaxHours float64
	newID           func() string
}

// NewSuggestionEngine constructs the engine. defaultMaxHours is the load denominator for
// teachers without a weekly cap.
func NewSuggestionEngine(generator *CandidateGenerator, defaultMaxHours float64, newID func() string) *SuggestionEngine {
	if generator == nil {
		generator = NewCandidateGenerator(DefaultMinCapacity)
	}
	if defaultMaxHours <= 0 {
		defaultMaxHours = 40
	}
	if newID == nil {
		newID = func() string { return "sug-" + uuid.NewString() }
	}
	return &SuggestionEngine{generator: generator, defaultMaxHours: defaultMaxHours, newID: newID}
}

// Generate dispatches on the conflict type. Unknown students yield no suggestions.
func (e *SuggestionEngine) Generate(input SuggestionInput) []models.Suggestion {
	gen, ok := suggestionGenerators[input.Conflict.ConflictType]
	if !ok {
		gen = (*SuggestionEngine).fallbackSuggestions
	}
	var student *models.Student
	for i := range input.Students {
		if input.Students[i].ID == input.Conflict.StudentID {
			student = &input.Students[i]
			break
		}
	}
	if student == nil {
		return []models.Suggestion{}
	}
	sc := &suggestionContext{SuggestionInput: input, student: *student, occupied: NewOccupiedIndex(input.Courses)}
	out := gen(e, sc)
	if out == nil {
		out = []models.Suggestion{}
	}
	return out
}

// --- NO_TIME ---

func (e *SuggestionEngine) timeSuggestions(sc *suggestionContext) []models.Suggestion {
	student := sc.student
	duration := student.Duration()
	studentGrid := ComputeAvailability(student.Constraints)

	seen := make(map[TimeWindow]int)
	out := make([]models.Suggestion, 0)
	for _, t := range e.generator.QualifiedTeachers(student, sc.Teachers) {
		grid := ComputeAvailability(t.Constraints)
		for _, w := range e.freeRuns(&grid, t.ID, student.ID, duration, sc.occupied) {
			// windows the student can already take rank above every window that needs opening
			confidence := 0.4 + 0.15*minFloat(1, float64(w.Length-duration)/float64(duration))
			if sameCampus(t.Campus, student.Campus) {
				confidence += 0.1
			}
			if fitsWithin(&studentGrid, w, duration) {
				confidence += feasibleWindowBonus
			}
			confidence = minFloat(confidence, confidenceCeiling)

			s := models.Suggestion{
				Type:        models.SuggestionTime,
				Title:       fmt.Sprintf("Open %s %s-%s", models.DayName(w.Day), models.SlotToClock(w.Start), models.SlotToClock(w.Start+w.Length)),
				Description: fmt.Sprintf("Teacher %s is free for %d minutes; extend %s's availability to this window.", displayName(t.Name, t.ID), w.Length*models.SlotMinutes, displayName(student.Name, student.ID)),
				Confidence:  confidence,
				Data: map[string]interface{}{
					"teacherId": t.ID,
					"day":       w.Day,
					"startSlot": w.Start,
					"length":    w.Length,
					"startTime": models.SlotToClock(w.Start),
					"endTime":   models.SlotToClock(w.Start + w.Length),
				},
				Mutations: []models.Mutation{{
					TargetType: models.TargetStudent,
					TargetID:   student.ID,
					Field:      models.FieldConstraints,
					NewValue:   openWindow(student.Constraints, w),
				}},
			}
			if idx, dup := seen[w]; dup {
				if confidence > out[idx].Confidence {
					out[idx] = s
				}
				continue
			}
			seen[w] = len(out)
			out = append(out, s)
		}
	}
	return e.finish(out, maxTimeSuggestions)
}

// freeRuns returns maximal runs free in the teacher grid and unoccupied for teacher and student.
func (e *SuggestionEngine) freeRuns(grid *models.TimeGrid, teacherID, studentID string, minLength int, occupied *OccupiedIndex) []TimeWindow {
	runs := make([]TimeWindow, 0)
	for day := 0; day < models.DaysPerWeek; day++ {
		start := -1
		for slot := 0; slot <= models.SlotsPerDay; slot++ {
			free := slot < models.SlotsPerDay && grid[day][slot] &&
				!occupied.TeacherBusy(teacherID, day, slot, 1) &&
				!occupied.StudentBusy(studentID, day, slot, 1)
			if free && start < 0 {
				start = slot
			}
			if !free && start >= 0 {
				if slot-start >= minLength {
					runs = append(runs, TimeWindow{Day: day, Start: start, Length: slot - start})
				}
				start = -1
			}
		}
	}
	return runs
}

// --- NO_TEACHER ---

// teacherSuggestions opens a student window on each qualified teacher. A teacher booked in
// every student window is offered instead by moving the student into one of their free runs.
func (e *SuggestionEngine) teacherSuggestions(sc *suggestionContext) []models.Suggestion {
	student := sc.student
	windows := e.generator.StudentWindows(student, sc.occupied)
	out := make([]models.Suggestion, 0)
	for _, t := range e.generator.QualifiedTeachers(student, sc.Teachers) {
		load := e.teacherLoad(t, sc.occupied)
		grid := ComputeAvailability(t.Constraints)
		freeRatio := float64(grid.FreeCount()-sc.occupied.TeacherSlots(t.ID)) / float64(models.DaysPerWeek*models.SlotsPerDay)
		confidence := 0.3 + 0.4*(1-clamp01(load)) + 0.25*clamp01(freeRatio)

		name := displayName(t.Name, t.ID)
		window, ok := firstUnoccupied(windows, func(w TimeWindow) bool {
			return sc.occupied.TeacherBusy(t.ID, w.Day, w.Start, w.Length)
		})
		mutation := models.Mutation{
			TargetType: models.TargetTeacher,
			TargetID:   t.ID,
			Field:      models.FieldConstraints,
		}
		var description string
		if ok {
			mutation.NewValue = openWindow(t.Constraints, window)
			description = fmt.Sprintf("Open %s on %s %s so they can take %s.", name, models.DayName(window.Day), models.SlotToClock(window.Start), displayName(student.Name, student.ID))
		} else {
			runs := e.freeRuns(&grid, t.ID, student.ID, student.Duration(), sc.occupied)
			if len(runs) == 0 {
				continue
			}
			window = TimeWindow{Day: runs[0].Day, Start: runs[0].Start, Length: student.Duration()}
			mutation.TargetType = models.TargetStudent
			mutation.TargetID = student.ID
			mutation.NewValue = openWindow(student.Constraints, window)
			confidence -= studentMovePenalty
			description = fmt.Sprintf("%s is booked in every window of %s; move the session to %s %s.", name, displayName(student.Name, student.ID), models.DayName(window.Day), models.SlotToClock(window.Start))
		}

		out = append(out, models.Suggestion{
			Type:        models.SuggestionTeacher,
			Title:       fmt.Sprintf("Assign teacher %s", name),
			Description: description,
			Confidence:  minFloat(confidence, confidenceCeiling),
			Data: map[string]interface{}{
				"teacherId":    t.ID,
				"load":         load,
				"freeRatio":    freeRatio,
				"day":          window.Day,
				"startSlot":    window.Start,
				"movesStudent": !ok,
			},
			Mutations: []models.Mutation{mutation},
		})
	}
	return e.finish(out, maxTeacherSuggestions)
}

func (e *SuggestionEngine) teacherLoad(t models.Teacher, occupied *OccupiedIndex) float64 {
	maxHours := t.MaxWeeklyHours
	if maxHours <= 0 {
		maxHours = e.defaultMaxHours
	}
	return float64(occupied.TeacherSlots(t.ID)) / float64(models.SlotsPerHour) / maxHours
}

// --- NO_SUBJECT ---

func (e *SuggestionEngine) subjectSuggestions(sc *suggestionContext) []models.Suggestion {
	student := sc.student
	campusTeachers := make([]models.Teacher, 0)
	for _, t := range sc.Teachers {
		if sameCampus(t.Campus, student.Campus) {
			campusTeachers = append(campusTeachers, t)
		}
	}

	out := make([]models.Suggestion, 0)
	seen := map[string]struct{}{strings.ToLower(student.Subject): {}}
	for _, t := range campusTeachers {
		for _, subject := range t.Subjects {
			key := strings.ToLower(strings.TrimSpace(subject))
			if _, dup := seen[key]; dup || key == "" {
				continue
			}
			seen[key] = struct{}{}
			out = append(out, models.Suggestion{
				Type:        models.SuggestionConstraint,
				Title:       fmt.Sprintf("Switch subject to %s", subject),
				Description: fmt.Sprintf("%s is taught on campus %s.", subject, student.Campus),
				Confidence:  0.6,
				Data:        map[string]interface{}{"subject": subject},
				Mutations: []models.Mutation{{
					TargetType: models.TargetStudent,
					TargetID:   student.ID,
					Field:      models.FieldSubject,
					NewValue:   subject,
				}},
			})
		}
	}
	for _, t := range campusTeachers {
		if t.Teaches(student.Subject) {
			continue
		}
		subjects := append(append([]string(nil), t.Subjects...), student.Subject)
		out = append(out, models.Suggestion{
			Type:        models.SuggestionTeacher,
			Title:       fmt.Sprintf("Qualify %s for %s", displayName(t.Name, t.ID), student.Subject),
			Description: fmt.Sprintf("Add %s to the subjects of %s.", student.Subject, displayName(t.Name, t.ID)),
			Confidence:  0.5,
			Data:        map[string]interface{}{"teacherId": t.ID, "subject": student.Subject},
			Mutations: []models.Mutation{{
				TargetType: models.TargetTeacher,
				TargetID:   t.ID,
				Field:      models.FieldSubjects,
				NewValue:   subjects,
			}},
		})
	}
	return e.finish(out, maxSubjectSuggestions)
}

// --- NO_ROOM ---

func (e *SuggestionEngine) roomSuggestions(sc *suggestionContext) []models.Suggestion {
	student := sc.student
	windows := e.generator.StudentWindows(student, sc.occupied)
	minCapacity := e.generator.MinCapacity()

	local := make([]models.Classroom, 0)
	for _, c := range sc.Classrooms {
		if sameCampus(c.Campus, student.Campus) {
			local = append(local, c)
		}
	}

	out := make([]models.Suggestion, 0)
	if len(local) == 0 {
		for _, c := range sc.Classrooms {
			if c.Capacity < minCapacity {
				continue
			}
			out = append(out, models.Suggestion{
				Type:        models.SuggestionRoom,
				Title:       fmt.Sprintf("Move to campus %s", c.Campus),
				Description: fmt.Sprintf("No classroom exists on %s; %s is available on %s.", student.Campus, displayName(c.Name, c.ID), c.Campus),
				Confidence:  0.5,
				Data:        map[string]interface{}{"classroomId": c.ID, "campus": c.Campus},
				Mutations: []models.Mutation{{
					TargetType: models.TargetStudent,
					TargetID:   student.ID,
					Field:      models.FieldCampus,
					NewValue:   c.Campus,
				}},
			})
		}
		return e.finish(out, maxRoomSuggestions)
	}

	for _, c := range local {
		grid := ComputeAvailability(c.Constraints)
		utilization := 1.0
		if free := grid.FreeCount(); free > 0 {
			utilization = float64(sc.occupied.ClassroomSlots(c.ID)) / float64(free)
		}
		confidence := 0.70
		switch {
		case utilization < 0.3:
			confidence = 0.95
		case utilization < 0.6:
			confidence = 0.85
		}

		mutations := make([]models.Mutation, 0, 2)
		if c.Capacity < minCapacity {
			mutations = append(mutations, models.Mutation{
				TargetType: models.TargetClassroom,
				TargetID:   c.ID,
				Field:      models.FieldCapacity,
				NewValue:   minCapacity,
			})
		}
		if window, ok := firstUnoccupied(windows, func(w TimeWindow) bool {
			return sc.occupied.ClassroomBusy(c.ID, w.Day, w.Start, w.Length)
		}); ok {
			mutations = append(mutations, models.Mutation{
				TargetType: models.TargetClassroom,
				TargetID:   c.ID,
				Field:      models.FieldConstraints,
				NewValue:   openWindow(c.Constraints, window),
			})
		}

		out = append(out, models.Suggestion{
			Type:        models.SuggestionRoom,
			Title:       fmt.Sprintf("Use classroom %s", displayName(c.Name, c.ID)),
			Description: fmt.Sprintf("%s is %.0f%% utilised.", displayName(c.Name, c.ID), utilization*100),
			Confidence:  confidence,
			Data:        map[string]interface{}{"classroomId": c.ID, "utilization": utilization},
			Mutations:   mutations,
		})
	}
	return e.finish(out, maxRoomSuggestions)
}

// --- HOUR_LIMIT ---

func (e *SuggestionEngine) hourLimitSuggestions(sc *suggestionContext) []models.Suggestion {
	student := sc.student
	out := make([]models.Suggestion, 0, 3)
	sessionHours := float64(student.Duration()) / float64(models.SlotsPerHour)

	if t, ok := e.implicatedTeacher(sc); ok {
		scheduled := float64(sc.occupied.TeacherSlots(t.ID)) / float64(models.SlotsPerHour)
		raised := maxFloat(t.MaxWeeklyHours, scheduled) + sessionHours
		out = append(out, models.Suggestion{
			Type:        models.SuggestionConstraint,
			Title:       fmt.Sprintf("Raise %s's weekly cap to %.1fh", displayName(t.Name, t.ID), raised),
			Description: fmt.Sprintf("%s has %.1fh scheduled against a cap of %.1fh.", displayName(t.Name, t.ID), scheduled, t.MaxWeeklyHours),
			Confidence:  0.7,
			Data:        map[string]interface{}{"teacherId": t.ID, "maxWeeklyHours": raised},
			Mutations: []models.Mutation{{
				TargetType: models.TargetTeacher,
				TargetID:   t.ID,
				Field:      models.FieldMaxWeeklyHours,
				NewValue:   raised,
			}},
		})
	}

	out = append(out, models.Suggestion{
		Type:        models.SuggestionConstraint,
		Title:       "Relax student time constraints",
		Description: fmt.Sprintf("Let %s be scheduled at any time so another teacher can be used.", displayName(student.Name, student.ID)),
		Confidence:  0.6,
		Mutations: []models.Mutation{{
			TargetType: models.TargetStudent,
			TargetID:   student.ID,
			Field:      models.FieldConstraints,
			NewValue:   (*models.TimeConstraints)(nil),
		}},
	})

	if student.RemainingHours > reduceHoursThreshold {
		reduced := student.Duration() / 2
		if reduced < minReducedDurationSlots {
			reduced = minReducedDurationSlots
		}
		out = append(out, models.Suggestion{
			Type:        models.SuggestionConstraint,
			Title:       "Reduce requested hours",
			Description: fmt.Sprintf("Shorten sessions to %d minutes.", reduced*models.SlotMinutes),
			Confidence:  0.5,
			Data:        map[string]interface{}{"durationSlots": reduced},
			Mutations: []models.Mutation{{
				TargetType: models.TargetStudent,
				TargetID:   student.ID,
				Field:      models.FieldDurationSlots,
				NewValue:   reduced,
			}},
		})
	}
	return e.finish(out, 0)
}

// implicatedTeacher returns the capped teacher whose cap to raise: the one named in the reason,
// then the most loaded capped qualified teacher. Uncapped teachers have nothing to raise.
func (e *SuggestionEngine) implicatedTeacher(sc *suggestionContext) (models.Teacher, bool) {
	if name := sc.Conflict.ExtractedInfo["teacherName"]; name != "" {
		for _, t := range sc.Teachers {
			if (t.Name == name || t.ID == name) && t.MaxWeeklyHours > 0 {
				return t, true
			}
		}
	}
	var (
		best     models.Teacher
		bestLoad = -1.0
	)
	for _, t := range e.generator.QualifiedTeachers(sc.student, sc.Teachers) {
		if t.MaxWeeklyHours <= 0 {
			continue
		}
		if load := e.teacherLoad(t, sc.occupied); load > bestLoad {
			best, bestLoad = t, load
		}
	}
	return best, bestLoad >= 0
}

// --- OTHER ---

func (e *SuggestionEngine) fallbackSuggestions(sc *suggestionContext) []models.Suggestion {
	out := append(e.timeSuggestions(sc), e.teacherSuggestions(sc)...)
	sort.SliceStable(out, func(i, j int) bool { return out[i].Confidence > out[j].Confidence })
	return out
}

// --- helpers ---

// finish sorts by confidence, truncates to limit (0 keeps all) and stamps fresh ids.
func (e *SuggestionEngine) finish(suggestions []models.Suggestion, limit int) []models.Suggestion {
	sort.SliceStable(suggestions, func(i, j int) bool { return suggestions[i].Confidence > suggestions[j].Confidence })
	if limit > 0 && len(suggestions) > limit {
		suggestions = suggestions[:limit]
	}
	for i := range suggestions {
		suggestions[i].ID = e.newID()
	}
	return suggestions
}

// fitsWithin reports whether a duration-long stretch of w is free in the grid.
func fitsWithin(grid *models.TimeGrid, w TimeWindow, duration int) bool {
	for start := w.Start; start+duration <= w.Start+w.Length; start++ {
		if grid.IsFree(w.Day, start, duration) {
			return true
		}
	}
	return false
}

func firstUnoccupied(windows []TimeWindow, busy func(TimeWindow) bool) (TimeWindow, bool) {
	for _, w := range windows {
		if !busy(w) {
			return w, true
		}
	}
	return TimeWindow{}, false
}

// openWindow returns constraints under which the window is free. Constraints that already
// allow the window are returned unchanged.
func openWindow(constraints *models.TimeConstraints, w TimeWindow) *models.TimeConstraints {
	grid := ComputeAvailability(constraints)
	if grid.IsFree(w.Day, w.Start, w.Length) {
		return constraints.Clone()
	}
	out := constraints.Normalize()
	end := w.Start + w.Length

	if len(out.AllowedDays) > 0 && !containsInt(out.AllowedDays, w.Day) {
		out.AllowedDays = append(out.AllowedDays, w.Day)
		sort.Ints(out.AllowedDays)
	}
	if len(out.AllowedTimeRanges) > 0 {
		out.AllowedTimeRanges = append(out.AllowedTimeRanges, models.TimeRange{Day: models.DayPtr(w.Day), Start: w.Start, End: end})
	}
	kept := out.ExcludedTimeRanges[:0]
	for _, r := range out.ExcludedTimeRanges {
		appliesToDay := r.Day == nil || *r.Day == w.Day
		if appliesToDay && r.Start < end && w.Start < r.End {
			continue
		}
		kept = append(kept, r)
	}
	out.ExcludedTimeRanges = kept
	if len(out.ExcludedTimeRanges) == 0 {
		out.ExcludedTimeRanges = nil
	}
	return out
}

func containsInt(values []int, v int) bool {
	for _, x := range values {
		if x == v {
			return true
		}
	}
	return false
}

func clamp01(v float64) float64 {
	switch {
	case v < 0:
		return 0
	case v > 1:
		return 1
	default:
		return v
	}
}

func maxFloat(a, b float64) float64 {
	if a > b {
		return a
	}
	return b
}

func minFloat(a, b float64) float64 {
	if a < b {
		return a
	}
	return b
}
