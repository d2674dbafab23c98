package ga

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/openmetrica/gaquery/internal/query"
)

const (
	tokenToday     = "today"
	tokenYesterday = "yesterday"

	dateLayout = "2006-01-02"
)

var (
	// errMultipleDateFilters reports a query whose predicates imply two
	// independent date ranges; the API accepts exactly one.
	errMultipleDateFilters = errors.New("multiple date filters are not supported")

	// errDateNegation reports a "not" over a datetime predicate, which
	// has no representation in the API's date parameters.
	errDateNegation = errors.New("negated date filters are not yet implemented")
)

// DateRange is a partial inclusive date range. Each boundary is an
// explicit YYYY-MM-DD date or a relative token; empty means
// unconstrained on that side.
type DateRange struct {
	Start string
	End   string
}

// ExtractDateRange reduces the datetime-scoped predicates of f to the
// single inclusive date range the API accepts. With no datetime
// predicate the range defaults to the widest supported window. A query
// whose predicates imply two conflicting ranges fails.
func (c *Compiler) ExtractDateRange(ctx context.Context, f query.Filter, loc *time.Location) (DateRange, error) {
	full := DateRange{Start: c.cfg.EarliestDate, End: tokenToday}

	kept := keepDatetime(f)
	if kept == nil {
		return full, nil
	}

	r, err := c.reduceDateFilter(ctx, kept, loc)
	if err != nil {
		return DateRange{}, err
	}
	if r == nil || (r.Start == "" && r.End == "") {
		return full, nil
	}
	return *r, nil
}

// keepDatetime returns a copy of f holding only the comparison-family
// predicates over datetime-scoped fields, with every unit annotation
// normalized. String matches and "!=" have no date-range meaning and are
// dropped, not rejected.
func keepDatetime(f query.Filter) query.Filter {
	switch f := f.(type) {
	case nil:
		return nil
	case query.Comparison:
		if f.Op == query.OpNotEqual || !isDatetime(f.Field) {
			return nil
		}
		f.Field = f.Field.WithUnit(f.Field.DatetimeUnit().Normalize())
		f.Value = normalizeValueUnit(f.Value)
		return f
	case query.Between:
		if !isDatetime(f.Field) {
			return nil
		}
		f.Field = f.Field.WithUnit(f.Field.DatetimeUnit().Normalize())
		f.Min = normalizeValueUnit(f.Min)
		f.Max = normalizeValueUnit(f.Max)
		return f
	case query.StringMatch, query.Segment:
		return nil
	case query.And:
		children := keepChildren(f.Children)
		switch len(children) {
		case 0:
			return nil
		case 1:
			return children[0]
		default:
			return query.And{Children: children}
		}
	case query.Or:
		children := keepChildren(f.Children)
		switch len(children) {
		case 0:
			return nil
		case 1:
			return children[0]
		default:
			return query.Or{Children: children}
		}
	case query.Not:
		child := keepDatetime(f.Child)
		if child == nil {
			return nil
		}
		return query.Not{Child: child}
	default:
		return nil
	}
}

func keepChildren(children []query.Filter) []query.Filter {
	out := make([]query.Filter, 0, len(children))
	for _, child := range children {
		if kept := keepDatetime(child); kept != nil {
			out = append(out, kept)
		}
	}
	return out
}

func normalizeValueUnit(v query.Value) query.Value {
	switch v := v.(type) {
	case query.RelativeDatetime:
		v.Unit = v.Unit.Normalize()
		return v
	case query.AbsoluteDatetime:
		v.Unit = v.Unit.Normalize()
		return v
	default:
		return v
	}
}

// reduceDateFilter walks a pre-filtered datetime predicate tree and
// produces at most one partial range. nil means the subtree contributed
// no boundary.
func (c *Compiler) reduceDateFilter(ctx context.Context, f query.Filter, loc *time.Location) (*DateRange, error) {
	switch f := f.(type) {
	case query.Comparison:
		return c.comparisonRange(ctx, f.Op, f.Field.DatetimeUnit(), f.Value, loc)

	case query.Between:
		lo, err := c.comparisonRange(ctx, query.OpGreaterEqual, f.Field.DatetimeUnit(), f.Min, loc)
		if err != nil {
			return nil, err
		}
		hi, err := c.comparisonRange(ctx, query.OpLessEqual, f.Field.DatetimeUnit(), f.Max, loc)
		if err != nil {
			return nil, err
		}
		return mergeRanges(lo, hi)

	case query.And:
		// A two-armed and is the usual >= plus <= pair: merge boundary
		// by boundary. Any other arity must collapse to one
		// contributing child.
		if len(f.Children) == 2 {
			a, err := c.reduceDateFilter(ctx, f.Children[0], loc)
			if err != nil {
				return nil, err
			}
			b, err := c.reduceDateFilter(ctx, f.Children[1], loc)
			if err != nil {
				return nil, err
			}
			return mergeRanges(a, b)
		}
		return c.reduceSingle(ctx, f.Children, loc)

	case query.Or:
		// The date parameters cannot express alternatives; at most one
		// branch may constrain the range.
		return c.reduceSingle(ctx, f.Children, loc)

	case query.Not:
		return nil, errDateNegation

	default:
		return nil, fmt.Errorf("unhandled date filter clause %T", f)
	}
}

func (c *Compiler) reduceSingle(ctx context.Context, children []query.Filter, loc *time.Location) (*DateRange, error) {
	var result *DateRange
	for _, child := range children {
		r, err := c.reduceDateFilter(ctx, child, loc)
		if err != nil {
			return nil, err
		}
		if r == nil {
			continue
		}
		if result != nil {
			return nil, errMultipleDateFilters
		}
		result = r
	}
	return result, nil
}

// mergeRanges combines two partial ranges. Two values for the same
// boundary conflict unless they agree exactly.
func mergeRanges(a, b *DateRange) (*DateRange, error) {
	if a == nil {
		return b, nil
	}
	if b == nil {
		return a, nil
	}
	out := *a
	if b.Start != "" {
		if out.Start != "" && out.Start != b.Start {
			return nil, errMultipleDateFilters
		}
		out.Start = b.Start
	}
	if b.End != "" {
		if out.End != "" && out.End != b.End {
			return nil, errMultipleDateFilters
		}
		out.End = b.End
	}
	return &out, nil
}

// comparisonRange resolves one comparison against a datetime value to a
// partial range. Day-granular relative offsets map to the API's relative
// tokens; everything else resolves through the reference clock to
// explicit dates.
func (c *Compiler) comparisonRange(ctx context.Context, op query.CompareOp, unit query.CalendarUnit, v query.Value, loc *time.Location) (*DateRange, error) {
	if rel, ok := v.(query.RelativeDatetime); ok && rel.Unit == query.UnitDay {
		if r, handled := relativeDayRange(op, rel.N); handled {
			return r, nil
		}
	}
	return c.referenceRange(ctx, op, unit, v, loc)
}

// relativeDayRange maps a day-offset comparison to a relative token
// boundary. The API's ranges are inclusive, so exclusive comparisons
// shift the offset by one day before token mapping. A start boundary in
// the future has no token and no expressible range; it is dropped, not
// an error. Offsets the token grammar cannot express report handled ==
// false and fall through to the reference-date path.
func relativeDayRange(op query.CompareOp, n int) (*DateRange, bool) {
	switch op {
	case query.OpLess:
		n--
	case query.OpGreater:
		n++
	}

	if n > 0 {
		if op == query.OpGreater || op == query.OpGreaterEqual {
			// future start dates are out of scope
			return nil, true
		}
		return nil, false
	}

	token := relativeDayToken(n)
	switch op {
	case query.OpLess, query.OpLessEqual:
		return &DateRange{End: token}, true
	case query.OpGreater, query.OpGreaterEqual:
		return &DateRange{Start: token}, true
	case query.OpEqual:
		return &DateRange{Start: token, End: token}, true
	default:
		return nil, false
	}
}

func relativeDayToken(n int) string {
	switch {
	case n == 0:
		return tokenToday
	case n == -1:
		return tokenYesterday
	default:
		return fmt.Sprintf("%ddaysAgo", -n)
	}
}

// referenceRange resolves a comparison through a concrete reference
// instant: the value's calendar bucket becomes an inclusive day-level
// window and the operator picks its boundaries.
func (c *Compiler) referenceRange(ctx context.Context, op query.CompareOp, unit query.CalendarUnit, v query.Value, loc *time.Location) (*DateRange, error) {
	t, u, err := c.resolveDatetime(ctx, unit, v, loc)
	if err != nil {
		return nil, err
	}
	ws, we := unitWindow(t, u, loc)

	switch op {
	case query.OpEqual:
		return &DateRange{Start: ws.Format(dateLayout), End: we.Format(dateLayout)}, nil
	case query.OpGreaterEqual:
		return &DateRange{Start: ws.Format(dateLayout)}, nil
	case query.OpGreater:
		return &DateRange{Start: we.AddDate(0, 0, 1).Format(dateLayout)}, nil
	case query.OpLessEqual:
		return &DateRange{End: we.Format(dateLayout)}, nil
	case query.OpLess:
		return &DateRange{End: ws.AddDate(0, 0, -1).Format(dateLayout)}, nil
	default:
		return nil, fmt.Errorf("unhandled date comparison %q", op)
	}
}

// resolveDatetime turns a datetime value into the concrete instant that
// anchors its calendar bucket, in the reporting timezone.
func (c *Compiler) resolveDatetime(ctx context.Context, unit query.CalendarUnit, v query.Value, loc *time.Location) (time.Time, query.CalendarUnit, error) {
	switch v := v.(type) {
	case query.RelativeDatetime:
		u := v.Unit.Normalize()
		now := c.clock.Now(ctx).In(loc)
		return addUnits(truncate(now, u, loc), u, v.N), u, nil

	case query.AbsoluteDatetime:
		u := v.Unit
		if u == query.UnitNone {
			u = unit
		}
		u = u.Normalize()
		return truncate(v.T.In(loc), u, loc), u, nil

	case query.Literal:
		s, ok := v.V.(string)
		if !ok {
			return time.Time{}, "", fmt.Errorf("unsupported value %v in date filter", v.V)
		}
		t, err := parseDateLiteral(s, loc)
		if err != nil {
			return time.Time{}, "", err
		}
		u := unit.Normalize()
		return truncate(t, u, loc), u, nil

	default:
		return time.Time{}, "", fmt.Errorf("unsupported value %T in date filter", v)
	}
}

func parseDateLiteral(s string, loc *time.Location) (time.Time, error) {
	if t, err := time.ParseInLocation(dateLayout, s, loc); err == nil {
		return t, nil
	}
	if t, err := time.Parse(time.RFC3339, s); err == nil {
		return t.In(loc), nil
	}
	return time.Time{}, fmt.Errorf("unrecognized date literal %q", s)
}

// truncate aligns t to the start of its calendar bucket. Extraction
// units (day-of-week, month-of-year, ...) truncate at the granularity
// they extract from.
func truncate(t time.Time, u query.CalendarUnit, loc *time.Location) time.Time {
	t = t.In(loc)
	y, m, d := t.Date()
	switch u {
	case query.UnitMinuteOfHour:
		return time.Date(y, m, d, t.Hour(), t.Minute(), 0, 0, loc)
	case query.UnitHour, query.UnitHourOfDay:
		return time.Date(y, m, d, t.Hour(), 0, 0, 0, loc)
	case query.UnitWeek, query.UnitWeekOfYear:
		midnight := time.Date(y, m, d, 0, 0, 0, 0, loc)
		return midnight.AddDate(0, 0, -int(midnight.Weekday()))
	case query.UnitISOWeek:
		midnight := time.Date(y, m, d, 0, 0, 0, 0, loc)
		return midnight.AddDate(0, 0, -((int(midnight.Weekday()) + 6) % 7))
	case query.UnitMonth, query.UnitMonthOfYear:
		return time.Date(y, m, 1, 0, 0, 0, 0, loc)
	case query.UnitYear:
		return time.Date(y, 1, 1, 0, 0, 0, 0, loc)
	default:
		return time.Date(y, m, d, 0, 0, 0, 0, loc)
	}
}

func addUnits(t time.Time, u query.CalendarUnit, n int) time.Time {
	switch u {
	case query.UnitMinuteOfHour:
		return t.Add(time.Duration(n) * time.Minute)
	case query.UnitHour, query.UnitHourOfDay:
		return t.Add(time.Duration(n) * time.Hour)
	case query.UnitWeek, query.UnitISOWeek, query.UnitWeekOfYear:
		return t.AddDate(0, 0, 7*n)
	case query.UnitMonth, query.UnitMonthOfYear:
		return t.AddDate(0, n, 0)
	case query.UnitYear:
		return t.AddDate(n, 0, 0)
	default:
		return t.AddDate(0, 0, n)
	}
}

// unitWindow returns the inclusive day-level window covering the bucket
// that starts at t. Sub-day buckets collapse to their containing day.
func unitWindow(t time.Time, u query.CalendarUnit, loc *time.Location) (start, end time.Time) {
	y, m, d := t.In(loc).Date()
	day := time.Date(y, m, d, 0, 0, 0, 0, loc)

	switch u {
	case query.UnitWeek, query.UnitISOWeek, query.UnitWeekOfYear:
		return day, day.AddDate(0, 0, 6)
	case query.UnitMonth, query.UnitMonthOfYear:
		return day, day.AddDate(0, 1, 0).AddDate(0, 0, -1)
	case query.UnitYear:
		return day, day.AddDate(1, 0, 0).AddDate(0, 0, -1)
	default:
		return day, day
	}
}
