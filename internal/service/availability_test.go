package service

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/noah-isme/tutoring-scheduler/internal/models"
)

func TestComputeAvailabilityDefaultsToFullyFree(t *testing.T) {
	grid := ComputeAvailability(nil)
	assert.Equal(t, models.DaysPerWeek*models.SlotsPerDay, grid.FreeCount())

	grid = ComputeAvailability(&models.TimeConstraints{})
	assert.Equal(t, models.DaysPerWeek*models.SlotsPerDay, grid.FreeCount())
}

func TestComputeAvailabilityAllowedDaysOnly(t *testing.T) {
	grid := ComputeAvailability(&models.TimeConstraints{AllowedDays: []int{2, 4}})
	assert.Equal(t, 2*models.SlotsPerDay, grid.FreeCount())
	assert.True(t, grid.IsFree(2, 0, models.SlotsPerDay))
	assert.False(t, grid.IsFree(1, 0, 1))
}

func TestComputeAvailabilityDaySpecificRangeClosesOtherAllowedDays(t *testing.T) {
	student := mondayMorningStudent("s1")
	grid := ComputeAvailability(student.Constraints)

	assert.True(t, grid.IsFree(1, 0, 36))
	assert.False(t, grid[1][36])
	assert.False(t, grid.IsFree(3, 0, 1), "allowed day without an applicable range is closed")
	assert.Equal(t, 36, grid.FreeCount())
}

func TestComputeAvailabilityGlobalRangeAndExclusions(t *testing.T) {
	grid := ComputeAvailability(&models.TimeConstraints{
		AllowedDays:        []int{1, 2},
		AllowedTimeRanges:  []models.TimeRange{{Start: 10, End: 20}, {Day: models.DayPtr(2), Start: 100, End: 110}},
		ExcludedTimeRanges: []models.TimeRange{{Day: models.DayPtr(1), Start: 15, End: 17}},
	})

	assert.True(t, grid.IsFree(1, 10, 5))
	assert.False(t, grid[1][15])
	assert.False(t, grid[1][16])
	assert.True(t, grid[1][17])
	assert.True(t, grid.IsFree(2, 10, 10))
	assert.True(t, grid.IsFree(2, 100, 10))
	assert.Equal(t, 8+10+10, grid.FreeCount())
}

func TestComputeAvailabilityExclusionWithoutAllowRules(t *testing.T) {
	grid := ComputeAvailability(&models.TimeConstraints{
		ExcludedTimeRanges: []models.TimeRange{{Start: 0, End: 12}},
	})
	for d := 0; d < models.DaysPerWeek; d++ {
		assert.False(t, grid[d][11])
		assert.True(t, grid[d][12])
	}
}

func TestComputeAvailabilityConvertsLegacyGranularity(t *testing.T) {
	grid := ComputeAvailability(&models.TimeConstraints{
		Granularity:       models.Granularity30m,
		AllowedDays:       []int{5},
		AllowedTimeRanges: []models.TimeRange{{Start: 2, End: 4}},
	})
	assert.True(t, grid.IsFree(5, 12, 12))
	assert.False(t, grid[5][11])
	assert.False(t, grid[5][24])
	assert.Equal(t, 12, grid.FreeCount())
}

func TestComputeAvailabilityClampsRanges(t *testing.T) {
	grid := ComputeAvailability(&models.TimeConstraints{
		AllowedTimeRanges: []models.TimeRange{{Start: -5, End: 500}},
	})
	assert.Equal(t, models.DaysPerWeek*models.SlotsPerDay, grid.FreeCount())
}

func TestOccupiedIndexTracksEachResource(t *testing.T) {
	idx := NewOccupiedIndex([]models.Course{
		{StudentID: "s1", TeacherID: "t1", ClassroomID: "r1", Day: 1, StartSlot: 10, Duration: 6},
		{StudentID: "s2", TeacherID: "t2", ClassroomID: "r2", Day: 1, StartSlot: 12, Duration: 6},
	})

	assert.True(t, idx.StudentBusy("s1", 1, 15, 2))
	assert.False(t, idx.StudentBusy("s1", 1, 16, 2))
	assert.True(t, idx.TeacherBusy("t1", 1, 0, 11))
	assert.False(t, idx.TeacherBusy("t1", 2, 10, 6))
	assert.True(t, idx.ClassroomBusy("r2", 1, 17, 1))
	assert.Equal(t, 2, idx.TeachersBusyAt(1, 12))
	assert.Equal(t, 1, idx.TeachersBusyAt(1, 10))
	assert.Equal(t, 6, idx.TeacherSlots("t1"))
	assert.True(t, idx.Conflicts(models.Course{StudentID: "x", TeacherID: "y", ClassroomID: "r1", Day: 1, StartSlot: 0, Duration: 11}))
	assert.False(t, idx.Conflicts(models.Course{StudentID: "x", TeacherID: "y", ClassroomID: "r1", Day: 1, StartSlot: 0, Duration: 10}))
}

func TestClockConversionRoundTrip(t *testing.T) {
	assert.Equal(t, "09:00", models.SlotToClock(0))
	assert.Equal(t, "12:00", models.SlotToClock(36))
	assert.Equal(t, "21:30", models.SlotToClock(models.SlotsPerDay))

	slot, err := models.ClockToSlot("12:00")
	assert.NoError(t, err)
	assert.Equal(t, 36, slot)

	_, err = models.ClockToSlot("08:55")
	assert.Error(t, err)
	_, err = models.ClockToSlot("10:03")
	assert.Error(t, err)
}
