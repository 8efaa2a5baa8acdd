package models

// Mutable field names accepted by the adjustment orchestrator.
const (
	FieldName           = "name"
	FieldSubject        = "subject"
	FieldSubjects       = "subjects"
	FieldCampus         = "campus"
	FieldDurationSlots  = "durationSlots"
	FieldRemainingHours = "remainingHours"
	FieldMaxWeeklyHours = "maxWeeklyHours"
	FieldCapacity       = "capacity"
	FieldConstraints    = "constraints"
)
