// Package query defines the engine-neutral representation of one
// analytical query: a source table, aggregations, groupings, a predicate
// tree, ordering, and a row limit. The tree is produced by an upstream
// normalization stage and consumed read-only by the parameter compiler.
package query

// Query is one analytical query over a single source table.
type Query struct {
	// SourceTable is the metadata identifier of the table to query.
	SourceTable int

	// Aggregations lists the metrics to compute, in output order.
	Aggregations []Aggregation

	// Breakout lists the grouping keys, in output order.
	Breakout []Field

	// Filter is the predicate tree, nil when the query is unfiltered.
	Filter Filter

	// OrderBy lists (direction, target) ordering pairs.
	OrderBy []OrderSpec

	// Limit is the maximum row count, 0 when unset.
	Limit int

	// Timezone is the IANA reporting timezone, empty means UTC.
	Timezone string
}

// Aggregation is either a named metric or a back-reference to a prior
// aggregation by index.
type Aggregation interface {
	aggregationNode()
}

// Metric names a metric understood by the reporting API, e.g. "ga:sessions".
type Metric struct {
	Name string
}

// AggRef references an aggregation in the same query by position.
type AggRef struct {
	Index int
}

func (Metric) aggregationNode() {}
func (AggRef) aggregationNode() {}

// Direction enumerates ordering directions.
type Direction string

const (
	Ascending  Direction = "asc"
	Descending Direction = "desc"
)

// OrderSpec is one ordering pair. Target is a Field or an AggRef.
type OrderSpec struct {
	Direction Direction
	Target    OrderTarget
}

// OrderTarget is the thing an OrderSpec sorts by: a Field or an AggRef.
type OrderTarget interface {
	orderTargetNode()
}

func (FieldID) orderTargetNode()   {}
func (FieldName) orderTargetNode() {}
func (AggRef) orderTargetNode()    {}
