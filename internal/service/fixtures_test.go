package service

import (
	"fmt"
	"sync"
	"time"

	"github.com/noah-isme/tutoring-scheduler/internal/models"
)

func sequentialIDs(prefix string) func() string {
	var (
		mu sync.Mutex
		n  int
	)
	return func() string {
		mu.Lock()
		defer mu.Unlock()
		n++
		return fmt.Sprintf("%s-%d", prefix, n)
	}
}

func fixedClock() func() time.Time {
	ts := time.Date(2024, 9, 2, 8, 0, 0, 0, time.UTC)
	return func() time.Time { return ts }
}

func mondayMorningStudent(id string) models.Student {
	return models.Student{
		ID:             id,
		Name:           "Student " + id,
		Subject:        "math",
		Campus:         "north",
		DurationSlots:  24,
		RemainingHours: 8,
		Constraints: &models.TimeConstraints{
			AllowedDays:       []int{1, 3},
			AllowedTimeRanges: []models.TimeRange{{Day: models.DayPtr(1), Start: 0, End: 36}},
		},
	}
}

func singleWindowStudent(id string) models.Student {
	return models.Student{
		ID:            id,
		Name:          "Student " + id,
		Subject:       "math",
		Campus:        "north",
		DurationSlots: 24,
		Constraints: &models.TimeConstraints{
			AllowedDays:       []int{1},
			AllowedTimeRanges: []models.TimeRange{{Day: models.DayPtr(1), Start: 0, End: 24}},
		},
	}
}

func mondayTeacher(id string) models.Teacher {
	return models.Teacher{
		ID:       id,
		Name:     "Teacher " + id,
		Subjects: []string{"math"},
		Campus:   "north",
		Constraints: &models.TimeConstraints{
			AllowedDays:       []int{1},
			AllowedTimeRanges: []models.TimeRange{{Day: models.DayPtr(1), Start: 0, End: 100}},
		},
	}
}

func openTeacher(id string, subjects ...string) models.Teacher {
	if len(subjects) == 0 {
		subjects = []string{"math"}
	}
	return models.Teacher{ID: id, Name: "Teacher " + id, Subjects: subjects, Campus: "north"}
}

func openRoom(id string) models.Classroom {
	return models.Classroom{ID: id, Name: "Room " + id, Campus: "north", Capacity: 2}
}
