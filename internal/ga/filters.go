package ga

import (
	"fmt"
	"strings"

	"github.com/openmetrica/gaquery/internal/query"
)

// escapeForRegex escapes the metacharacter set of the reporting API's
// regex dialect. Applied to values destined for the pattern position of
// an "=~" clause, before clause-level escaping.
var escapeForRegex = strings.NewReplacer(
	`\`, `\\`,
	`.`, `\.`,
	`+`, `\+`,
	`*`, `\*`,
	`?`, `\?`,
	`[`, `\[`,
	`^`, `\^`,
	`]`, `\]`,
	`$`, `\$`,
	`(`, `\(`,
	`)`, `\)`,
	`{`, `\{`,
	`}`, `\}`,
	`=`, `\=`,
	`!`, `\!`,
	`<`, `\<`,
	`>`, `\>`,
	`|`, `\|`,
	`:`, `\:`,
)

// escapeForFilterClause escapes the three characters the filter grammar
// itself reserves. Applied to every field name and value regardless of
// predicate kind.
var escapeForFilterClause = strings.NewReplacer(
	`\`, `\\`,
	`,`, `\,`,
	`;`, `\;`,
)

var compareTokens = map[query.CompareOp]string{
	query.OpEqual:        "==",
	query.OpNotEqual:     "!=",
	query.OpLess:         "<",
	query.OpLessEqual:    "<=",
	query.OpGreater:      ">",
	query.OpGreaterEqual: ">=",
}

// FilterClause compiles the non-date, non-segment predicates of f into
// the API's filter expression. Datetime-scoped and segment leaves are
// pruned structurally before compilation, so emptied and/or branches
// collapse instead of leaving dangling separators. Returns the empty
// string when nothing remains.
func (c *Compiler) FilterClause(f query.Filter) (string, error) {
	return c.compileFilter(stripDateAndSegment(f))
}

// stripDateAndSegment returns a copy of f with every datetime-scoped
// predicate and built-in segment reference removed. nil means the whole
// subtree was pruned.
func stripDateAndSegment(f query.Filter) query.Filter {
	switch f := f.(type) {
	case nil:
		return nil
	case query.Comparison:
		if isDatetime(f.Field) {
			return nil
		}
		return f
	case query.Between:
		if isDatetime(f.Field) {
			return nil
		}
		return f
	case query.StringMatch:
		if isDatetime(f.Field) {
			return nil
		}
		return f
	case query.Segment:
		return nil
	case query.And:
		children := stripChildren(f.Children)
		switch len(children) {
		case 0:
			return nil
		case 1:
			return children[0]
		default:
			return query.And{Children: children}
		}
	case query.Or:
		children := stripChildren(f.Children)
		switch len(children) {
		case 0:
			return nil
		case 1:
			return children[0]
		default:
			return query.Or{Children: children}
		}
	case query.Not:
		child := stripDateAndSegment(f.Child)
		if child == nil {
			return nil
		}
		return query.Not{Child: child}
	default:
		return f
	}
}

func stripChildren(children []query.Filter) []query.Filter {
	out := make([]query.Filter, 0, len(children))
	for _, child := range children {
		if stripped := stripDateAndSegment(child); stripped != nil {
			out = append(out, stripped)
		}
	}
	return out
}

func isDatetime(f query.Field) bool {
	return f.DatetimeUnit() != query.UnitNone
}

func (c *Compiler) compileFilter(f query.Filter) (string, error) {
	switch f := f.(type) {
	case nil:
		return "", nil

	case query.Comparison:
		field, err := c.fieldName(f.Field)
		if err != nil {
			return "", err
		}
		value, err := c.rvalue(f.Value)
		if err != nil {
			return "", err
		}
		return escapeForFilterClause.Replace(field) +
			compareTokens[f.Op] +
			escapeForFilterClause.Replace(value), nil

	case query.Between:
		lo, err := c.compileFilter(query.Comparison{Op: query.OpGreaterEqual, Field: f.Field, Value: f.Min})
		if err != nil {
			return "", err
		}
		hi, err := c.compileFilter(query.Comparison{Op: query.OpLessEqual, Field: f.Field, Value: f.Max})
		if err != nil {
			return "", err
		}
		return lo + ";" + hi, nil

	case query.StringMatch:
		return c.compileStringMatch(f)

	case query.And:
		return c.compileChildren(f.Children, ";")

	case query.Or:
		return c.compileChildren(f.Children, ",")

	case query.Not:
		child, err := c.compileFilter(f.Child)
		if err != nil {
			return "", err
		}
		return "!" + child, nil

	default:
		return "", fmt.Errorf("unhandled filter clause %T", f)
	}
}

func (c *Compiler) compileStringMatch(f query.StringMatch) (string, error) {
	field, err := c.fieldName(f.Field)
	if err != nil {
		return "", err
	}
	value, err := c.rvalue(f.Value)
	if err != nil {
		return "", err
	}

	// Regex-escape first, then clause-escape the result: the pattern
	// position is subject to both reserved sets.
	pattern := escapeForFilterClause.Replace(escapeForRegex.Replace(value))

	flag := "(?-i)"
	if f.CaseInsensitive {
		flag = "(?i)"
	}

	switch f.Op {
	case query.MatchStartsWith:
		pattern = "^" + pattern
	case query.MatchEndsWith:
		pattern = pattern + "$"
	case query.MatchContains:
		// unanchored
	default:
		return "", fmt.Errorf("unhandled string match %q", f.Op)
	}

	return escapeForFilterClause.Replace(field) + "=~" + flag + pattern, nil
}

func (c *Compiler) compileChildren(children []query.Filter, sep string) (string, error) {
	clauses := make([]string, 0, len(children))
	for _, child := range children {
		clause, err := c.compileFilter(child)
		if err != nil {
			return "", err
		}
		if clause != "" {
			clauses = append(clauses, clause)
		}
	}
	return strings.Join(clauses, sep), nil
}
