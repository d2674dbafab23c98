package ga

import (
	"errors"

	"github.com/openmetrica/gaquery/internal/query"
)

// errMultipleSegments reports more than one built-in segment reference;
// the segment parameter holds exactly one id.
var errMultipleSegments = errors.New("only one segment allowed at a time")

// ExtractSegment returns the built-in segment id referenced by f, or the
// empty string when there is none. The segment parameter is independent
// of the filter expression and the date range.
func ExtractSegment(f query.Filter) (string, error) {
	ids := collectSegments(f, nil)
	switch len(ids) {
	case 0:
		return "", nil
	case 1:
		return ids[0], nil
	default:
		return "", errMultipleSegments
	}
}

func collectSegments(f query.Filter, acc []string) []string {
	switch f := f.(type) {
	case query.Segment:
		return append(acc, f.ID)
	case query.And:
		for _, child := range f.Children {
			acc = collectSegments(child, acc)
		}
		return acc
	case query.Or:
		for _, child := range f.Children {
			acc = collectSegments(child, acc)
		}
		return acc
	case query.Not:
		return collectSegments(f.Child, acc)
	default:
		return acc
	}
}
