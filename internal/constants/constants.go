// Package constants defines shared configuration constants.
package constants

var (
	ConfigFile = "config.yaml"

	DefaultDir = ".gaquery"

	// DefaultEarliestDate is the first date the reporting API serves any
	// data for. An unconstrained query starts here.
	DefaultEarliestDate = "2005-01-01"

	// DefaultMaxResults is the reporting API's documented per-request
	// row cap, used when a query carries no limit.
	DefaultMaxResults = 10000
)
