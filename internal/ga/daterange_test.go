package ga

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/openmetrica/gaquery/internal/query"
)

func extract(t *testing.T, c *Compiler, f query.Filter) DateRange {
	t.Helper()
	r, err := c.ExtractDateRange(context.Background(), f, time.UTC)
	require.NoError(t, err)
	return r
}

func TestExtractDateRange_NoFilterUsesFullRange(t *testing.T) {
	c := newTestCompiler(t)

	r := extract(t, c, nil)
	assert.Equal(t, DateRange{Start: "2005-01-01", End: "today"}, r)
}

func TestExtractDateRange_NoDatetimePredicateUsesFullRange(t *testing.T) {
	c := newTestCompiler(t)

	r := extract(t, c, country(query.OpEqual, "India"))
	assert.Equal(t, DateRange{Start: "2005-01-01", End: "today"}, r)
}

func TestExtractDateRange_EqualToday(t *testing.T) {
	c := newTestCompiler(t)

	f := query.Comparison{Op: query.OpEqual, Field: dateField(), Value: relDay(0)}
	assert.Equal(t, DateRange{Start: "today", End: "today"}, extract(t, c, f))
}

func TestExtractDateRange_EqualYesterday(t *testing.T) {
	c := newTestCompiler(t)

	f := query.Comparison{Op: query.OpEqual, Field: dateField(), Value: relDay(-1)}
	assert.Equal(t, DateRange{Start: "yesterday", End: "yesterday"}, extract(t, c, f))
}

func TestExtractDateRange_LessAdjustsExclusiveBoundary(t *testing.T) {
	c := newTestCompiler(t)

	f := query.Comparison{Op: query.OpLess, Field: dateField(), Value: relDay(-30)}
	assert.Equal(t, DateRange{End: "31daysAgo"}, extract(t, c, f))
}

func TestExtractDateRange_GreaterAdjustsExclusiveBoundary(t *testing.T) {
	c := newTestCompiler(t)

	f := query.Comparison{Op: query.OpGreater, Field: dateField(), Value: relDay(-30)}
	assert.Equal(t, DateRange{Start: "29daysAgo"}, extract(t, c, f))
}

func TestExtractDateRange_InclusiveBoundsKeepOffset(t *testing.T) {
	c := newTestCompiler(t)

	f := query.Comparison{Op: query.OpGreaterEqual, Field: dateField(), Value: relDay(-30)}
	assert.Equal(t, DateRange{Start: "30daysAgo"}, extract(t, c, f))

	f = query.Comparison{Op: query.OpLessEqual, Field: dateField(), Value: relDay(-30)}
	assert.Equal(t, DateRange{End: "30daysAgo"}, extract(t, c, f))
}

func TestExtractDateRange_AndMergesBoundaries(t *testing.T) {
	c := newTestCompiler(t)

	f := query.And{Children: []query.Filter{
		query.Comparison{Op: query.OpGreaterEqual, Field: dateField(), Value: relDay(-30)},
		query.Comparison{Op: query.OpLessEqual, Field: dateField(), Value: relDay(-1)},
	}}

	assert.Equal(t, DateRange{Start: "30daysAgo", End: "yesterday"}, extract(t, c, f))
}

func TestExtractDateRange_BetweenMergesBoundaries(t *testing.T) {
	c := newTestCompiler(t)

	f := query.Between{Field: dateField(), Min: relDay(-30), Max: relDay(-1)}
	assert.Equal(t, DateRange{Start: "30daysAgo", End: "yesterday"}, extract(t, c, f))
}

func TestExtractDateRange_ConflictingRangesFail(t *testing.T) {
	c := newTestCompiler(t)

	f := query.And{Children: []query.Filter{
		query.Comparison{Op: query.OpEqual, Field: dateField(), Value: relDay(0)},
		query.Comparison{Op: query.OpEqual, Field: dateField(), Value: relDay(-1)},
	}}

	_, err := c.ExtractDateRange(context.Background(), f, time.UTC)
	require.ErrorIs(t, err, errMultipleDateFilters)
}

func TestExtractDateRange_WideAndWithTwoRangesFails(t *testing.T) {
	c := newTestCompiler(t)

	f := query.And{Children: []query.Filter{
		query.Comparison{Op: query.OpEqual, Field: dateField(), Value: relDay(0)},
		query.Comparison{Op: query.OpEqual, Field: dateField(), Value: relDay(-1)},
		country(query.OpEqual, "India"),
	}}

	_, err := c.ExtractDateRange(context.Background(), f, time.UTC)
	require.ErrorIs(t, err, errMultipleDateFilters)
}

func TestExtractDateRange_OrWithTwoRangesFails(t *testing.T) {
	c := newTestCompiler(t)

	f := query.Or{Children: []query.Filter{
		query.Comparison{Op: query.OpEqual, Field: dateField(), Value: relDay(0)},
		query.Comparison{Op: query.OpEqual, Field: dateField(), Value: relDay(-1)},
	}}

	_, err := c.ExtractDateRange(context.Background(), f, time.UTC)
	require.ErrorIs(t, err, errMultipleDateFilters)
}

func TestExtractDateRange_OrCollapsesToSingleDatetimeBranch(t *testing.T) {
	c := newTestCompiler(t)

	f := query.Or{Children: []query.Filter{
		query.Comparison{Op: query.OpEqual, Field: dateField(), Value: relDay(0)},
		country(query.OpEqual, "India"),
	}}

	assert.Equal(t, DateRange{Start: "today", End: "today"}, extract(t, c, f))
}

func TestExtractDateRange_NegationFails(t *testing.T) {
	c := newTestCompiler(t)

	f := query.Not{Child: query.Comparison{Op: query.OpEqual, Field: dateField(), Value: relDay(0)}}

	_, err := c.ExtractDateRange(context.Background(), f, time.UTC)
	require.ErrorIs(t, err, errDateNegation)
}

func TestExtractDateRange_NegatedPlainPredicateIgnored(t *testing.T) {
	c := newTestCompiler(t)

	f := query.Not{Child: country(query.OpEqual, "India")}
	assert.Equal(t, DateRange{Start: "2005-01-01", End: "today"}, extract(t, c, f))
}

func TestExtractDateRange_NotEqualOnDatetimeDropped(t *testing.T) {
	c := newTestCompiler(t)

	f := query.Comparison{Op: query.OpNotEqual, Field: dateField(), Value: relDay(0)}
	assert.Equal(t, DateRange{Start: "2005-01-01", End: "today"}, extract(t, c, f))
}

func TestExtractDateRange_StringMatchOnDatetimeDropped(t *testing.T) {
	c := newTestCompiler(t)

	f := query.StringMatch{Op: query.MatchContains, Field: dateField(), Value: query.Literal{V: "2024"}}
	assert.Equal(t, DateRange{Start: "2005-01-01", End: "today"}, extract(t, c, f))
}

func TestExtractDateRange_FutureStartYieldsNoBoundary(t *testing.T) {
	c := newTestCompiler(t)

	f := query.Comparison{Op: query.OpGreaterEqual, Field: dateField(), Value: relDay(5)}
	assert.Equal(t, DateRange{Start: "2005-01-01", End: "today"}, extract(t, c, f))
}

func TestExtractDateRange_GreaterTodayYieldsNoBoundary(t *testing.T) {
	c := newTestCompiler(t)

	// > today adjusts to tomorrow, a future start
	f := query.Comparison{Op: query.OpGreater, Field: dateField(), Value: relDay(0)}
	assert.Equal(t, DateRange{Start: "2005-01-01", End: "today"}, extract(t, c, f))
}

func TestExtractDateRange_FutureEndResolvesToExplicitDate(t *testing.T) {
	c := newTestCompiler(t)

	f := query.Comparison{Op: query.OpLessEqual, Field: dateField(), Value: relDay(2)}
	assert.Equal(t, DateRange{End: "2024-05-17"}, extract(t, c, f))
}

func TestExtractDateRange_DefaultUnitNormalizesToDay(t *testing.T) {
	c := newTestCompiler(t)

	f := query.Comparison{
		Op:    query.OpEqual,
		Field: query.FieldID{ID: 4, Unit: query.UnitDefault},
		Value: query.RelativeDatetime{N: 0, Unit: query.UnitDefault},
	}

	assert.Equal(t, DateRange{Start: "today", End: "today"}, extract(t, c, f))
}

func TestExtractDateRange_AbsoluteDay(t *testing.T) {
	c := newTestCompiler(t)

	f := query.Comparison{
		Op:    query.OpEqual,
		Field: dateField(),
		Value: query.AbsoluteDatetime{T: time.Date(2024, 3, 10, 15, 4, 5, 0, time.UTC), Unit: query.UnitDay},
	}

	assert.Equal(t, DateRange{Start: "2024-03-10", End: "2024-03-10"}, extract(t, c, f))
}

func TestExtractDateRange_DateLiteral(t *testing.T) {
	c := newTestCompiler(t)

	f := query.Comparison{Op: query.OpGreaterEqual, Field: dateField(), Value: query.Literal{V: "2024-01-01"}}
	assert.Equal(t, DateRange{Start: "2024-01-01"}, extract(t, c, f))
}

func TestExtractDateRange_PreviousMonthWindow(t *testing.T) {
	c := newTestCompiler(t)

	f := query.Comparison{
		Op:    query.OpEqual,
		Field: query.FieldID{ID: 4, Unit: query.UnitMonth},
		Value: query.RelativeDatetime{N: -1, Unit: query.UnitMonth},
	}

	assert.Equal(t, DateRange{Start: "2024-04-01", End: "2024-04-30"}, extract(t, c, f))
}

func TestExtractDateRange_GreaterThanMonthStartsAfterWindow(t *testing.T) {
	c := newTestCompiler(t)

	f := query.Comparison{
		Op:    query.OpGreater,
		Field: query.FieldID{ID: 4, Unit: query.UnitMonth},
		Value: query.RelativeDatetime{N: -1, Unit: query.UnitMonth},
	}

	assert.Equal(t, DateRange{Start: "2024-05-01"}, extract(t, c, f))
}

func TestExtractDateRange_CurrentWeekWindow(t *testing.T) {
	c := newTestCompiler(t)

	// testNow 2024-05-15 is a Wednesday; weeks start on Sunday
	f := query.Comparison{
		Op:    query.OpEqual,
		Field: query.FieldID{ID: 4, Unit: query.UnitWeek},
		Value: query.RelativeDatetime{N: 0, Unit: query.UnitWeek},
	}

	assert.Equal(t, DateRange{Start: "2024-05-12", End: "2024-05-18"}, extract(t, c, f))
}

func TestExtractDateRange_CurrentISOWeekWindow(t *testing.T) {
	c := newTestCompiler(t)

	f := query.Comparison{
		Op:    query.OpEqual,
		Field: query.FieldID{ID: 4, Unit: query.UnitISOWeek},
		Value: query.RelativeDatetime{N: 0, Unit: query.UnitISOWeek},
	}

	assert.Equal(t, DateRange{Start: "2024-05-13", End: "2024-05-19"}, extract(t, c, f))
}

func TestExtractDateRange_CurrentYearWindow(t *testing.T) {
	c := newTestCompiler(t)

	f := query.Comparison{
		Op:    query.OpEqual,
		Field: query.FieldID{ID: 4, Unit: query.UnitYear},
		Value: query.RelativeDatetime{N: 0, Unit: query.UnitYear},
	}

	assert.Equal(t, DateRange{Start: "2024-01-01", End: "2024-12-31"}, extract(t, c, f))
}

func TestExtractDateRange_ReportingTimezoneShiftsDay(t *testing.T) {
	c := newTestCompiler(t)

	// 2024-05-15 12:30 UTC is already 2024-05-16 in Auckland (UTC+12)
	loc, err := time.LoadLocation("Pacific/Auckland")
	require.NoError(t, err)

	f := query.Comparison{
		Op:    query.OpEqual,
		Field: dateField(),
		Value: query.AbsoluteDatetime{T: time.Date(2024, 5, 15, 12, 30, 0, 0, time.UTC), Unit: query.UnitDay},
	}

	r, err := c.ExtractDateRange(context.Background(), f, loc)
	require.NoError(t, err)
	assert.Equal(t, DateRange{Start: "2024-05-16", End: "2024-05-16"}, r)
}
