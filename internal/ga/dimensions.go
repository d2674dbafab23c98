package ga

import (
	"fmt"
	"strings"

	"github.com/openmetrica/gaquery/internal/query"
)

// unitDimensions maps each calendar unit to its reporting API dimension.
var unitDimensions = map[query.CalendarUnit]string{
	query.UnitMinuteOfHour: "ga:minute",
	query.UnitHour:         "ga:dateHour",
	query.UnitHourOfDay:    "ga:hour",
	query.UnitDay:          "ga:date",
	query.UnitDayOfWeek:    "ga:dayOfWeek",
	query.UnitDayOfMonth:   "ga:day",
	query.UnitWeek:         "ga:yearWeek",
	query.UnitISOWeek:      "ga:isoYearIsoWeek",
	query.UnitWeekOfYear:   "ga:week",
	query.UnitMonth:        "ga:yearMonth",
	query.UnitMonthOfYear:  "ga:month",
	query.UnitYear:         "ga:year",
}

// metricsParam joins the query's named metrics. Aggregation
// back-references are resolved by the upstream normalization stage and
// must not reach the compiler.
func (c *Compiler) metricsParam(q *query.Query) (string, error) {
	names := make([]string, 0, len(q.Aggregations))
	for i, agg := range q.Aggregations {
		m, ok := agg.(query.Metric)
		if !ok {
			return "", fmt.Errorf("aggregation %d: unexpected back-reference %T", i, agg)
		}
		names = append(names, m.Name)
	}
	return strings.Join(names, ","), nil
}

// dimensionsParam maps each breakout to its dimension name: the calendar
// unit dimension for datetime buckets, the resolved field name
// otherwise. An empty breakout yields an empty string, not absence.
func (c *Compiler) dimensionsParam(q *query.Query) (string, error) {
	dims := make([]string, 0, len(q.Breakout))
	for _, f := range q.Breakout {
		dim, err := c.dimensionName(f)
		if err != nil {
			return "", err
		}
		dims = append(dims, dim)
	}
	return strings.Join(dims, ","), nil
}

func (c *Compiler) dimensionName(f query.Field) (string, error) {
	if u := f.DatetimeUnit(); u != query.UnitNone {
		return unitDimensions[u.Normalize()], nil
	}
	return c.fieldName(f)
}

// sortParam builds the comma-joined signed sort list. A descending pair
// prefixes its token with "-". Targets resolve like breakouts, plus
// aggregation back-references resolve to the metric they point at.
func (c *Compiler) sortParam(q *query.Query) (string, error) {
	tokens := make([]string, 0, len(q.OrderBy))
	for i, spec := range q.OrderBy {
		var token string
		switch target := spec.Target.(type) {
		case query.AggRef:
			if target.Index < 0 || target.Index >= len(q.Aggregations) {
				return "", fmt.Errorf("order-by %d: aggregation index %d out of range", i, target.Index)
			}
			m, ok := q.Aggregations[target.Index].(query.Metric)
			if !ok {
				return "", fmt.Errorf("order-by %d: aggregation %d is not a named metric", i, target.Index)
			}
			token = m.Name
		case query.Field:
			var err error
			token, err = c.dimensionName(target)
			if err != nil {
				return "", fmt.Errorf("order-by %d: %w", i, err)
			}
		default:
			return "", fmt.Errorf("order-by %d: unhandled target %T", i, target)
		}
		if spec.Direction == query.Descending {
			token = "-" + token
		}
		tokens = append(tokens, token)
	}
	return strings.Join(tokens, ","), nil
}
