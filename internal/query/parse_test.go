package query

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParse_FullQuery(t *testing.T) {
	data := []byte(`{
		"source-table": 1,
		"aggregation": [["metric", "ga:sessions"]],
		"breakout": [["field", 4, "day"], ["field", "ga:country", null]],
		"filter": ["and",
			[">=", ["field", 4, "day"], ["relative-datetime", -30, "day"]],
			["contains", ["field", 5], "blog", {"case-sensitive": false}]],
		"order-by": [["desc", ["aggregation", 0]], ["asc", ["field", 4, "day"]]],
		"limit": 100,
		"timezone": "US/Pacific"
	}`)

	q, err := Parse(data)
	require.NoError(t, err)

	assert.Equal(t, 1, q.SourceTable)
	assert.Equal(t, []Aggregation{Metric{Name: "ga:sessions"}}, q.Aggregations)
	assert.Equal(t, []Field{
		FieldID{ID: 4, Unit: UnitDay},
		FieldName{Name: "ga:country"},
	}, q.Breakout)
	assert.Equal(t, 100, q.Limit)
	assert.Equal(t, "US/Pacific", q.Timezone)

	and, ok := q.Filter.(And)
	require.True(t, ok)
	require.Len(t, and.Children, 2)
	assert.Equal(t, Comparison{
		Op:    OpGreaterEqual,
		Field: FieldID{ID: 4, Unit: UnitDay},
		Value: RelativeDatetime{N: -30, Unit: UnitDay},
	}, and.Children[0])
	assert.Equal(t, StringMatch{
		Op:              MatchContains,
		Field:           FieldID{ID: 5},
		Value:           Literal{V: "blog"},
		CaseInsensitive: true,
	}, and.Children[1])

	require.Len(t, q.OrderBy, 2)
	assert.Equal(t, OrderSpec{Direction: Descending, Target: AggRef{Index: 0}}, q.OrderBy[0])
	assert.Equal(t, OrderSpec{Direction: Ascending, Target: FieldID{ID: 4, Unit: UnitDay}}, q.OrderBy[1])
}

func TestParse_MinimalQuery(t *testing.T) {
	q, err := Parse([]byte(`{"source-table": 7}`))
	require.NoError(t, err)

	assert.Equal(t, 7, q.SourceTable)
	assert.Nil(t, q.Filter)
	assert.Empty(t, q.Aggregations)
	assert.Zero(t, q.Limit)
}

func TestParse_MissingSourceTable(t *testing.T) {
	_, err := Parse([]byte(`{"limit": 10}`))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "missing source-table")
}

func TestParse_SegmentClause(t *testing.T) {
	q, err := Parse([]byte(`{"source-table": 1, "filter": ["segment", "gaid::-4"]}`))
	require.NoError(t, err)
	assert.Equal(t, Segment{ID: "gaid::-4"}, q.Filter)
}

func TestParse_BetweenClause(t *testing.T) {
	q, err := Parse([]byte(`{
		"source-table": 1,
		"filter": ["between", ["field", 5], 10, 20]
	}`))
	require.NoError(t, err)

	assert.Equal(t, Between{
		Field: FieldID{ID: 5},
		Min:   Literal{V: float64(10)},
		Max:   Literal{V: float64(20)},
	}, q.Filter)
}

func TestParse_NotClause(t *testing.T) {
	q, err := Parse([]byte(`{
		"source-table": 1,
		"filter": ["not", ["=", ["field", 5], "x"]]
	}`))
	require.NoError(t, err)

	assert.Equal(t, Not{Child: Comparison{
		Op:    OpEqual,
		Field: FieldID{ID: 5},
		Value: Literal{V: "x"},
	}}, q.Filter)
}

func TestParse_AbsoluteDatetimeValue(t *testing.T) {
	q, err := Parse([]byte(`{
		"source-table": 1,
		"filter": ["=", ["field", 4, "day"], ["absolute-datetime", "2024-03-10", "day"]]
	}`))
	require.NoError(t, err)

	cmp, ok := q.Filter.(Comparison)
	require.True(t, ok)
	abs, ok := cmp.Value.(AbsoluteDatetime)
	require.True(t, ok)
	assert.Equal(t, UnitDay, abs.Unit)
	assert.True(t, abs.T.Equal(time.Date(2024, 3, 10, 0, 0, 0, 0, time.UTC)))
}

func TestParse_CaseSensitiveDefault(t *testing.T) {
	q, err := Parse([]byte(`{
		"source-table": 1,
		"filter": ["starts-with", ["field", 5], "/blog"]
	}`))
	require.NoError(t, err)

	m, ok := q.Filter.(StringMatch)
	require.True(t, ok)
	assert.False(t, m.CaseInsensitive)
}

func TestParse_UnknownFilterClause(t *testing.T) {
	_, err := Parse([]byte(`{"source-table": 1, "filter": ["inside", ["field", 5], 1]}`))
	require.Error(t, err)
	assert.Contains(t, err.Error(), `unknown filter clause "inside"`)
}

func TestParse_UnknownOrderTarget(t *testing.T) {
	_, err := Parse([]byte(`{"source-table": 1, "order-by": [["asc", ["expression", "x"]]]}`))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unknown order-by target")
}

func TestParse_BadDirection(t *testing.T) {
	_, err := Parse([]byte(`{"source-table": 1, "order-by": [["down", ["field", 4]]]}`))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "direction")
}
