package query

// CalendarUnit is a bucketing granularity for datetime grouping and
// filtering.
type CalendarUnit string

const (
	// UnitNone marks a field that is not datetime-bucketed.
	UnitNone CalendarUnit = ""

	// UnitDefault is an explicit annotation with no specific granularity;
	// it normalizes to UnitDay.
	UnitDefault CalendarUnit = "default"

	UnitMinuteOfHour CalendarUnit = "minute-of-hour"
	UnitHour         CalendarUnit = "hour"
	UnitHourOfDay    CalendarUnit = "hour-of-day"
	UnitDay          CalendarUnit = "day"
	UnitDayOfWeek    CalendarUnit = "day-of-week"
	UnitDayOfMonth   CalendarUnit = "day-of-month"
	UnitWeek         CalendarUnit = "week"
	UnitISOWeek      CalendarUnit = "iso-week"
	UnitWeekOfYear   CalendarUnit = "week-of-year"
	UnitMonth        CalendarUnit = "month"
	UnitMonthOfYear  CalendarUnit = "month-of-year"
	UnitYear         CalendarUnit = "year"
)

var knownUnits = map[CalendarUnit]struct{}{
	UnitMinuteOfHour: {},
	UnitHour:         {},
	UnitHourOfDay:    {},
	UnitDay:          {},
	UnitDayOfWeek:    {},
	UnitDayOfMonth:   {},
	UnitWeek:         {},
	UnitISOWeek:      {},
	UnitWeekOfYear:   {},
	UnitMonth:        {},
	UnitMonthOfYear:  {},
	UnitYear:         {},
}

// Valid reports whether u is one of the supported calendar units.
func (u CalendarUnit) Valid() bool {
	_, ok := knownUnits[u]
	return ok
}

// Normalize maps an unset, default, or unrecognized unit annotation to
// UnitDay and returns supported units unchanged.
func (u CalendarUnit) Normalize() CalendarUnit {
	if u.Valid() {
		return u
	}
	return UnitDay
}
