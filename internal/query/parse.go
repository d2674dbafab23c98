package query

import (
	"encoding/json"
	"fmt"
	"time"
)

// Parse decodes a query from its JSON wire shape. Clauses are tagged
// arrays, mirroring the form the upstream pipeline serializes:
//
//	{
//	  "source-table": 1,
//	  "aggregation": [["metric", "ga:sessions"]],
//	  "breakout": [["field", 4, "day"]],
//	  "filter": ["and",
//	    [">=", ["field", 4, "day"], ["relative-datetime", -30, "day"]],
//	    ["contains", ["field", 5], "blog", {"case-sensitive": false}]],
//	  "order-by": [["desc", ["aggregation", 0]]],
//	  "limit": 100
//	}
//
// Unknown clause tags are decode errors.
func Parse(data []byte) (*Query, error) {
	var raw struct {
		SourceTable  *int              `json:"source-table"`
		Aggregations []json.RawMessage `json:"aggregation"`
		Breakout     []json.RawMessage `json:"breakout"`
		Filter       json.RawMessage   `json:"filter"`
		OrderBy      []json.RawMessage `json:"order-by"`
		Limit        int               `json:"limit"`
		Timezone     string            `json:"timezone"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("parse query: %w", err)
	}
	if raw.SourceTable == nil {
		return nil, fmt.Errorf("parse query: missing source-table")
	}

	q := &Query{
		SourceTable: *raw.SourceTable,
		Limit:       raw.Limit,
		Timezone:    raw.Timezone,
	}

	for i, msg := range raw.Aggregations {
		agg, err := parseAggregation(msg)
		if err != nil {
			return nil, fmt.Errorf("parse aggregation %d: %w", i, err)
		}
		q.Aggregations = append(q.Aggregations, agg)
	}
	for i, msg := range raw.Breakout {
		f, err := parseField(msg)
		if err != nil {
			return nil, fmt.Errorf("parse breakout %d: %w", i, err)
		}
		q.Breakout = append(q.Breakout, f)
	}
	if len(raw.Filter) > 0 {
		f, err := parseFilter(raw.Filter)
		if err != nil {
			return nil, fmt.Errorf("parse filter: %w", err)
		}
		q.Filter = f
	}
	for i, msg := range raw.OrderBy {
		spec, err := parseOrderBy(msg)
		if err != nil {
			return nil, fmt.Errorf("parse order-by %d: %w", i, err)
		}
		q.OrderBy = append(q.OrderBy, spec)
	}
	return q, nil
}

func parseAggregation(msg json.RawMessage) (Aggregation, error) {
	tag, args, err := splitClause(msg)
	if err != nil {
		return nil, err
	}
	switch tag {
	case "metric":
		name, err := oneString(args)
		if err != nil {
			return nil, fmt.Errorf("metric: %w", err)
		}
		return Metric{Name: name}, nil
	case "aggregation":
		idx, err := oneInt(args)
		if err != nil {
			return nil, fmt.Errorf("aggregation ref: %w", err)
		}
		return AggRef{Index: idx}, nil
	default:
		return nil, fmt.Errorf("unknown aggregation clause %q", tag)
	}
}

func parseField(msg json.RawMessage) (Field, error) {
	tag, args, err := splitClause(msg)
	if err != nil {
		return nil, err
	}
	if tag != "field" {
		return nil, fmt.Errorf("expected field clause, got %q", tag)
	}
	if len(args) < 1 || len(args) > 2 {
		return nil, fmt.Errorf("field clause takes 1 or 2 arguments, got %d", len(args))
	}

	unit := UnitNone
	if len(args) == 2 && args[1] != nil {
		s, ok := args[1].(string)
		if !ok {
			return nil, fmt.Errorf("field unit must be a string")
		}
		unit = CalendarUnit(s)
	}

	switch v := args[0].(type) {
	case float64:
		return FieldID{ID: int(v), Unit: unit}, nil
	case string:
		return FieldName{Name: v, Unit: unit}, nil
	default:
		return nil, fmt.Errorf("field must be referenced by id or name")
	}
}

func parseValue(v any) (Value, error) {
	arr, ok := v.([]any)
	if !ok {
		return Literal{V: v}, nil
	}
	if len(arr) == 0 {
		return nil, fmt.Errorf("empty value clause")
	}
	tag, ok := arr[0].(string)
	if !ok {
		return nil, fmt.Errorf("value clause tag must be a string")
	}
	args := arr[1:]
	switch tag {
	case "field":
		raw, err := json.Marshal(arr)
		if err != nil {
			return nil, err
		}
		return parseField(raw)
	case "relative-datetime":
		if len(args) != 2 {
			return nil, fmt.Errorf("relative-datetime takes 2 arguments, got %d", len(args))
		}
		n, ok := args[0].(float64)
		if !ok {
			return nil, fmt.Errorf("relative-datetime offset must be a number")
		}
		unit, ok := args[1].(string)
		if !ok {
			return nil, fmt.Errorf("relative-datetime unit must be a string")
		}
		return RelativeDatetime{N: int(n), Unit: CalendarUnit(unit)}, nil
	case "absolute-datetime":
		if len(args) != 2 {
			return nil, fmt.Errorf("absolute-datetime takes 2 arguments, got %d", len(args))
		}
		s, ok := args[0].(string)
		if !ok {
			return nil, fmt.Errorf("absolute-datetime value must be a string")
		}
		t, err := parseTimestamp(s)
		if err != nil {
			return nil, err
		}
		unit, ok := args[1].(string)
		if !ok {
			return nil, fmt.Errorf("absolute-datetime unit must be a string")
		}
		return AbsoluteDatetime{T: t, Unit: CalendarUnit(unit)}, nil
	default:
		return nil, fmt.Errorf("unknown value clause %q", tag)
	}
}

func parseTimestamp(s string) (time.Time, error) {
	for _, layout := range []string{time.RFC3339, "2006-01-02"} {
		if t, err := time.Parse(layout, s); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("unrecognized timestamp %q", s)
}

func parseFilter(msg json.RawMessage) (Filter, error) {
	var arr []any
	if err := json.Unmarshal(msg, &arr); err != nil {
		return nil, err
	}
	return parseFilterClause(arr)
}

func parseFilterClause(arr []any) (Filter, error) {
	if len(arr) == 0 {
		return nil, fmt.Errorf("empty filter clause")
	}
	tag, ok := arr[0].(string)
	if !ok {
		return nil, fmt.Errorf("filter clause tag must be a string")
	}
	args := arr[1:]

	switch tag {
	case "and", "or":
		children := make([]Filter, 0, len(args))
		for i, child := range args {
			childArr, ok := child.([]any)
			if !ok {
				return nil, fmt.Errorf("%s argument %d is not a clause", tag, i)
			}
			f, err := parseFilterClause(childArr)
			if err != nil {
				return nil, err
			}
			children = append(children, f)
		}
		if len(children) == 0 {
			return nil, fmt.Errorf("%s requires at least one child", tag)
		}
		if tag == "and" {
			return And{Children: children}, nil
		}
		return Or{Children: children}, nil

	case "not":
		if len(args) != 1 {
			return nil, fmt.Errorf("not takes exactly one child, got %d", len(args))
		}
		childArr, ok := args[0].([]any)
		if !ok {
			return nil, fmt.Errorf("not argument is not a clause")
		}
		child, err := parseFilterClause(childArr)
		if err != nil {
			return nil, err
		}
		return Not{Child: child}, nil

	case "segment":
		id, err := oneString(args)
		if err != nil {
			return nil, fmt.Errorf("segment: %w", err)
		}
		return Segment{ID: id}, nil

	case "=", "!=", "<", "<=", ">", ">=":
		if len(args) != 2 {
			return nil, fmt.Errorf("%s takes 2 arguments, got %d", tag, len(args))
		}
		field, value, err := parseFieldValue(args[0], args[1])
		if err != nil {
			return nil, fmt.Errorf("%s: %w", tag, err)
		}
		return Comparison{Op: CompareOp(tag), Field: field, Value: value}, nil

	case "between":
		if len(args) != 3 {
			return nil, fmt.Errorf("between takes 3 arguments, got %d", len(args))
		}
		field, minV, err := parseFieldValue(args[0], args[1])
		if err != nil {
			return nil, fmt.Errorf("between: %w", err)
		}
		maxV, err := parseValue(args[2])
		if err != nil {
			return nil, fmt.Errorf("between: %w", err)
		}
		return Between{Field: field, Min: minV, Max: maxV}, nil

	case "contains", "starts-with", "ends-with":
		if len(args) != 2 && len(args) != 3 {
			return nil, fmt.Errorf("%s takes 2 or 3 arguments, got %d", tag, len(args))
		}
		field, value, err := parseFieldValue(args[0], args[1])
		if err != nil {
			return nil, fmt.Errorf("%s: %w", tag, err)
		}
		m := StringMatch{Op: MatchOp(tag), Field: field, Value: value}
		if len(args) == 3 {
			opts, ok := args[2].(map[string]any)
			if !ok {
				return nil, fmt.Errorf("%s options must be an object", tag)
			}
			if cs, ok := opts["case-sensitive"].(bool); ok && !cs {
				m.CaseInsensitive = true
			}
		}
		return m, nil

	default:
		return nil, fmt.Errorf("unknown filter clause %q", tag)
	}
}

func parseFieldValue(fieldArg, valueArg any) (Field, Value, error) {
	fieldArr, ok := fieldArg.([]any)
	if !ok {
		return nil, nil, fmt.Errorf("first argument is not a field clause")
	}
	raw, err := json.Marshal(fieldArr)
	if err != nil {
		return nil, nil, err
	}
	field, err := parseField(raw)
	if err != nil {
		return nil, nil, err
	}
	value, err := parseValue(valueArg)
	if err != nil {
		return nil, nil, err
	}
	return field, value, nil
}

func parseOrderBy(msg json.RawMessage) (OrderSpec, error) {
	var arr []any
	if err := json.Unmarshal(msg, &arr); err != nil {
		return OrderSpec{}, err
	}
	if len(arr) != 2 {
		return OrderSpec{}, fmt.Errorf("order-by clause takes 2 elements, got %d", len(arr))
	}
	dir, ok := arr[0].(string)
	if !ok || (dir != string(Ascending) && dir != string(Descending)) {
		return OrderSpec{}, fmt.Errorf("order-by direction must be %q or %q", Ascending, Descending)
	}

	targetArr, ok := arr[1].([]any)
	if !ok || len(targetArr) == 0 {
		return OrderSpec{}, fmt.Errorf("order-by target is not a clause")
	}
	tag, _ := targetArr[0].(string)

	var target OrderTarget
	switch tag {
	case "field":
		raw, err := json.Marshal(targetArr)
		if err != nil {
			return OrderSpec{}, err
		}
		f, err := parseField(raw)
		if err != nil {
			return OrderSpec{}, err
		}
		target = f.(OrderTarget)
	case "aggregation":
		idx, err := oneInt(targetArr[1:])
		if err != nil {
			return OrderSpec{}, fmt.Errorf("order-by aggregation ref: %w", err)
		}
		target = AggRef{Index: idx}
	default:
		return OrderSpec{}, fmt.Errorf("unknown order-by target %q", tag)
	}

	return OrderSpec{Direction: Direction(dir), Target: target}, nil
}

func splitClause(msg json.RawMessage) (string, []any, error) {
	var arr []any
	if err := json.Unmarshal(msg, &arr); err != nil {
		return "", nil, err
	}
	if len(arr) == 0 {
		return "", nil, fmt.Errorf("empty clause")
	}
	tag, ok := arr[0].(string)
	if !ok {
		return "", nil, fmt.Errorf("clause tag must be a string")
	}
	return tag, arr[1:], nil
}

func oneString(args []any) (string, error) {
	if len(args) != 1 {
		return "", fmt.Errorf("takes exactly one argument, got %d", len(args))
	}
	s, ok := args[0].(string)
	if !ok {
		return "", fmt.Errorf("argument must be a string")
	}
	return s, nil
}

func oneInt(args []any) (int, error) {
	if len(args) != 1 {
		return 0, fmt.Errorf("takes exactly one argument, got %d", len(args))
	}
	n, ok := args[0].(float64)
	if !ok {
		return 0, fmt.Errorf("argument must be a number")
	}
	return int(n), nil
}
