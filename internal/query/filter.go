package query

import "time"

// Filter is one node of the predicate tree: a comparison, a string match,
// a boolean combinator, or a built-in segment reference. A nil Filter
// means "no constraint".
type Filter interface {
	filterNode()
}

// CompareOp enumerates relational comparison operators.
type CompareOp string

const (
	OpEqual        CompareOp = "="
	OpNotEqual     CompareOp = "!="
	OpLess         CompareOp = "<"
	OpLessEqual    CompareOp = "<="
	OpGreater      CompareOp = ">"
	OpGreaterEqual CompareOp = ">="
)

// Comparison applies Op to a field and a single value.
type Comparison struct {
	Op    CompareOp
	Field Field
	Value Value
}

// Between constrains a field to the inclusive range [Min, Max].
type Between struct {
	Field Field
	Min   Value
	Max   Value
}

// MatchOp enumerates string-match predicate kinds.
type MatchOp string

const (
	MatchContains   MatchOp = "contains"
	MatchStartsWith MatchOp = "starts-with"
	MatchEndsWith   MatchOp = "ends-with"
)

// StringMatch matches a field against a substring, prefix, or suffix.
// Matching is case-sensitive unless CaseInsensitive is set.
type StringMatch struct {
	Op              MatchOp
	Field           Field
	Value           Value
	CaseInsensitive bool
}

// And is the conjunction of its children.
type And struct {
	Children []Filter
}

// Or is the disjunction of its children.
type Or struct {
	Children []Filter
}

// Not negates its child.
type Not struct {
	Child Filter
}

// Segment references a built-in named segment of the reporting API, an
// opaque cohort identifier such as "gaid::-4". It is orthogonal to
// user-authored predicates.
type Segment struct {
	ID string
}

func (Comparison) filterNode()  {}
func (Between) filterNode()     {}
func (StringMatch) filterNode() {}
func (And) filterNode()         {}
func (Or) filterNode()          {}
func (Not) filterNode()         {}
func (Segment) filterNode()     {}

// Value is a node usable in value position of a predicate: a literal
// constant, a relative or absolute datetime, or a field reference.
type Value interface {
	valueNode()
}

// Literal is a constant value (string, number, or bool).
type Literal struct {
	V any
}

// RelativeDatetime is an offset of N calendar units from the current
// instant, e.g. {-30, day} for "30 days ago".
type RelativeDatetime struct {
	N    int
	Unit CalendarUnit
}

// AbsoluteDatetime is a fixed instant bucketed at Unit granularity.
type AbsoluteDatetime struct {
	T    time.Time
	Unit CalendarUnit
}

func (Literal) valueNode()          {}
func (RelativeDatetime) valueNode() {}
func (AbsoluteDatetime) valueNode() {}
func (FieldID) valueNode()          {}
func (FieldName) valueNode()        {}
