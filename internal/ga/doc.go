// Package ga compiles the engine-neutral query tree into the flat
// parameter set of the Google Analytics Core Reporting API.
//
// The API models one request as key/value parameters: a namespaced
// profile id, comma-joined metric and dimension lists, an inclusive
// start-date/end-date pair, and a small filter-expression grammar
// (";" = AND, "," = OR, "!" = NOT, "=~" = regex match). Time constraints
// and free-form filters are two orthogonal parameter sets, so the
// compiler splits the predicate tree: datetime-scoped comparisons become
// the date range, built-in segment references become the segment
// parameter, and everything else becomes the filter expression.
//
//	compiler := ga.New(meta)
//	params, err := compiler.Compile(ctx, q)
//	if err != nil {
//	    return err
//	}
//	values := params.Map() // {"ids": "ga:users", "metrics": ..., ...}
//
// Compilation is pure: one query tree in, one parameter map or one error
// out. The only collaborators are the metadata lookups and the clock,
// both read-only. Partial output is never produced; any failing stage
// aborts the whole compilation.
package ga
