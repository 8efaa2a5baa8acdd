package models

// Granularity tags the slot width a constraint payload was authored in.
type Granularity string

const (
	Granularity5m  Granularity = "5m"
	Granularity30m Granularity = "30m"
)

// TimeRange is an end-exclusive slot interval. A nil Day applies to every day.
type TimeRange struct {
	Day   *int `json:"day,omitempty" yaml:"day,omitempty"`
	Start int  `json:"start" yaml:"start"`
	End   int  `json:"end" yaml:"end"`
}

// TimeConstraints describes when an entity can be scheduled.
type TimeConstraints struct {
	Granularity        Granularity `json:"granularity,omitempty" yaml:"granularity,omitempty"`
	AllowedDays        []int       `json:"allowedDays,omitempty" yaml:"allowedDays,omitempty"`
	AllowedTimeRanges  []TimeRange `json:"allowedTimeRanges,omitempty" yaml:"allowedTimeRanges,omitempty"`
	ExcludedTimeRanges []TimeRange `json:"excludedTimeRanges,omitempty" yaml:"excludedTimeRanges,omitempty"`
}

// IsEmpty reports whether no rule is present.
func (c *TimeConstraints) IsEmpty() bool {
	return c == nil || (len(c.AllowedDays) == 0 && len(c.AllowedTimeRanges) == 0 && len(c.ExcludedTimeRanges) == 0)
}

// Normalize returns a copy expressed in canonical 5-minute slots.
func (c *TimeConstraints) Normalize() *TimeConstraints {
	if c == nil {
		return nil
	}
	out := c.Clone()
	if c.Granularity != Granularity30m {
		out.Granularity = Granularity5m
		return out
	}
	scale := func(ranges []TimeRange) {
		for i := range ranges {
			ranges[i].Start *= LegacySlotFactor
			ranges[i].End *= LegacySlotFactor
		}
	}
	scale(out.AllowedTimeRanges)
	scale(out.ExcludedTimeRanges)
	out.Granularity = Granularity5m
	return out
}

// Clone deep-copies the constraints.
func (c *TimeConstraints) Clone() *TimeConstraints {
	if c == nil {
		return nil
	}
	out := &TimeConstraints{Granularity: c.Granularity}
	if c.AllowedDays != nil {
		out.AllowedDays = append([]int(nil), c.AllowedDays...)
	}
	out.AllowedTimeRanges = cloneRanges(c.AllowedTimeRanges)
	out.ExcludedTimeRanges = cloneRanges(c.ExcludedTimeRanges)
	return out
}

func cloneRanges(in []TimeRange) []TimeRange {
	if in == nil {
		return nil
	}
	out := make([]TimeRange, len(in))
	for i, r := range in {
		out[i] = TimeRange{Start: r.Start, End: r.End}
		if r.Day != nil {
			day := *r.Day
			out[i].Day = &day
		}
	}
	return out
}

// DayPtr is a small helper for building day-specific ranges.
func DayPtr(day int) *int {
	return &day
}
