package ga

// Params is the compiled request parameter set for one query. It is
// produced atomically by Compile; no field is meaningful on error.
type Params struct {
	// IDs is the namespaced source profile, e.g. "ga:users".
	IDs string

	// Metrics is the comma-joined metric list, empty when the query has
	// no aggregations.
	Metrics string

	// Dimensions is the comma-joined dimension list. Always present in
	// the output map, possibly as an empty string.
	Dimensions string

	// Filters is the compiled filter expression, empty when the query
	// has no non-date, non-segment predicates.
	Filters string

	// StartDate and EndDate bound the inclusive reporting range, each an
	// explicit YYYY-MM-DD date or a relative token (today, yesterday,
	// NdaysAgo). Both are always set.
	StartDate string
	EndDate   string

	// Segment is the built-in segment id, empty when none is referenced.
	Segment string

	// Sort is the comma-joined signed ordering list, empty when the
	// query has no ordering.
	Sort string

	// MaxResults caps the returned row count.
	MaxResults int

	// IncludeEmptyRows is always emitted, default false.
	IncludeEmptyRows bool
}

// Map renders the parameters as the flat key/value set the reporting API
// accepts. Empty filters, segment, sort, and metrics are omitted;
// dimensions, the date boundaries, max-results, and include-empty-rows
// are always present.
func (p Params) Map() map[string]any {
	m := map[string]any{
		"ids":                p.IDs,
		"dimensions":         p.Dimensions,
		"start-date":         p.StartDate,
		"end-date":           p.EndDate,
		"max-results":        p.MaxResults,
		"include-empty-rows": p.IncludeEmptyRows,
	}
	if p.Metrics != "" {
		m["metrics"] = p.Metrics
	}
	if p.Filters != "" {
		m["filters"] = p.Filters
	}
	if p.Segment != "" {
		m["segment"] = p.Segment
	}
	if p.Sort != "" {
		m["sort"] = p.Sort
	}
	return m
}
