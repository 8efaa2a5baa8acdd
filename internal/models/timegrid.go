package models

import (
	"fmt"
	"strconv"
	"strings"
)

const (
	// DaysPerWeek indexes days from 0 (Sunday) to 6 (Saturday).
	DaysPerWeek = 7
	// SlotsPerDay is the number of 5-minute slots between 09:00 and 21:30.
	SlotsPerDay = 150
	// SlotMinutes is the width of one canonical slot.
	SlotMinutes = 5
	// DayStartMinutes is the first schedulable minute of the day (09:00).
	DayStartMinutes = 9 * 60

	// LegacySlotsPerDay is the 30-minute unit count used by older constraint payloads.
	LegacySlotsPerDay = 25
	// LegacySlotFactor converts one 30-minute unit into canonical slots.
	LegacySlotFactor = 6

	// DefaultDurationSlots is a two hour session.
	DefaultDurationSlots = 24
	// SlotsPerHour is used when converting course hours.
	SlotsPerHour = 60 / SlotMinutes
)

// TimeGrid is a day x slot availability matrix. A true cell means free.
type TimeGrid [DaysPerWeek][SlotsPerDay]bool

// FullGrid returns a grid with every cell free.
func FullGrid() TimeGrid {
	var g TimeGrid
	for d := 0; d < DaysPerWeek; d++ {
		for s := 0; s < SlotsPerDay; s++ {
			g[d][s] = true
		}
	}
	return g
}

// IsFree reports whether [start, start+duration) on day is entirely free.
func (g *TimeGrid) IsFree(day, start, duration int) bool {
	if day < 0 || day >= DaysPerWeek || start < 0 || duration <= 0 || start+duration > SlotsPerDay {
		return false
	}
	for s := start; s < start+duration; s++ {
		if !g[day][s] {
			return false
		}
	}
	return true
}

// FreeCount returns the number of free cells across the week.
func (g *TimeGrid) FreeCount() int {
	count := 0
	for d := 0; d < DaysPerWeek; d++ {
		for s := 0; s < SlotsPerDay; s++ {
			if g[d][s] {
				count++
			}
		}
	}
	return count
}

// SlotToClock renders a canonical slot index as HH:MM.
func SlotToClock(slot int) string {
	minutes := DayStartMinutes + slot*SlotMinutes
	return fmt.Sprintf("%02d:%02d", minutes/60, minutes%60)
}

// ClockToSlot parses HH:MM into a canonical slot index.
func ClockToSlot(clock string) (int, error) {
	parts := strings.Split(strings.TrimSpace(clock), ":")
	if len(parts) != 2 {
		return 0, fmt.Errorf("invalid clock %q", clock)
	}
	h, err := strconv.Atoi(parts[0])
	if err != nil {
		return 0, fmt.Errorf("invalid hour in %q: %w", clock, err)
	}
	m, err := strconv.Atoi(parts[1])
	if err != nil {
		return 0, fmt.Errorf("invalid minute in %q: %w", clock, err)
	}
	offset := h*60 + m - DayStartMinutes
	if offset < 0 || offset > SlotsPerDay*SlotMinutes || offset%SlotMinutes != 0 {
		return 0, fmt.Errorf("clock %q is outside the schedulable day", clock)
	}
	return offset / SlotMinutes, nil
}

// DayName returns the English weekday for a day index.
func DayName(day int) string {
	names := [...]string{"Sunday", "Monday", "Tuesday", "Wednesday", "Thursday", "Friday", "Saturday"}
	if day < 0 || day >= len(names) {
		return "Unknown"
	}
	return names[day]
}
