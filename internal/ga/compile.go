package ga

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/rs/zerolog"

	"github.com/openmetrica/gaquery/internal/constants"
	"github.com/openmetrica/gaquery/internal/metadata"
	"github.com/openmetrica/gaquery/internal/query"
)

// Config carries the compiler's fixed limits. Passing them explicitly
// keeps Compile a pure function of its inputs.
type Config struct {
	// EarliestDate is the default start of an unconstrained date range.
	EarliestDate string

	// MaxResults is both the default and the cap for max-results.
	MaxResults int
}

// DefaultConfig returns the reporting API's documented limits.
func DefaultConfig() Config {
	return Config{
		EarliestDate: constants.DefaultEarliestDate,
		MaxResults:   constants.DefaultMaxResults,
	}
}

// Compiler translates query trees into request parameter sets. It holds
// no per-query state; one Compiler may compile independent queries
// concurrently.
type Compiler struct {
	meta   metadata.Provider
	clock  Clock
	cfg    Config
	logger zerolog.Logger
}

// Option configures a Compiler.
type Option func(*Compiler)

// WithClock replaces the system clock, typically with a fixed instant.
func WithClock(clock Clock) Option {
	return func(c *Compiler) { c.clock = clock }
}

// WithConfig overrides the default compiler limits.
func WithConfig(cfg Config) Option {
	return func(c *Compiler) { c.cfg = cfg }
}

// WithLogger attaches a logger for compilation diagnostics. The default
// discards everything.
func WithLogger(logger zerolog.Logger) Option {
	return func(c *Compiler) { c.logger = logger }
}

// New creates a Compiler over the given metadata.
func New(meta metadata.Provider, opts ...Option) *Compiler {
	c := &Compiler{
		meta:   meta,
		clock:  SystemClock(),
		cfg:    DefaultConfig(),
		logger: zerolog.Nop(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Compile translates one query tree into the full parameter set. Any
// failing stage aborts the compilation; partial output is never
// returned.
func (c *Compiler) Compile(ctx context.Context, q *query.Query) (Params, error) {
	loc, err := c.location(q)
	if err != nil {
		return Params{}, err
	}

	table, err := c.meta.TableName(q.SourceTable)
	if err != nil {
		return Params{}, fmt.Errorf("resolve source table: %w", err)
	}

	p := Params{
		IDs:              "ga:" + table,
		MaxResults:       c.maxResults(q),
		IncludeEmptyRows: false,
	}

	if p.Metrics, err = c.metricsParam(q); err != nil {
		return Params{}, err
	}
	if p.Dimensions, err = c.dimensionsParam(q); err != nil {
		return Params{}, err
	}

	r, err := c.ExtractDateRange(ctx, q.Filter, loc)
	if err != nil {
		return Params{}, err
	}
	p.StartDate, p.EndDate = r.Start, r.End
	if p.StartDate == "" {
		p.StartDate = c.cfg.EarliestDate
	}
	if p.EndDate == "" {
		p.EndDate = tokenToday
	}

	if p.Filters, err = c.FilterClause(q.Filter); err != nil {
		return Params{}, err
	}
	if p.Segment, err = ExtractSegment(q.Filter); err != nil {
		return Params{}, err
	}
	if p.Sort, err = c.sortParam(q); err != nil {
		return Params{}, err
	}

	c.logger.Debug().
		Str("ids", p.IDs).
		Str("start_date", p.StartDate).
		Str("end_date", p.EndDate).
		Str("filters", p.Filters).
		Msg("query compiled")

	return p, nil
}

func (c *Compiler) location(q *query.Query) (*time.Location, error) {
	if q.Timezone == "" {
		return time.UTC, nil
	}
	loc, err := time.LoadLocation(q.Timezone)
	if err != nil {
		return nil, fmt.Errorf("load reporting timezone %q: %w", q.Timezone, err)
	}
	return loc, nil
}

func (c *Compiler) maxResults(q *query.Query) int {
	if q.Limit <= 0 || q.Limit > c.cfg.MaxResults {
		return c.cfg.MaxResults
	}
	return q.Limit
}

// fieldName resolves a field reference to its display name.
func (c *Compiler) fieldName(f query.Field) (string, error) {
	switch f := f.(type) {
	case query.FieldID:
		name, err := c.meta.FieldName(f.ID)
		if err != nil {
			return "", fmt.Errorf("resolve field: %w", err)
		}
		return name, nil
	case query.FieldName:
		return f.Name, nil
	default:
		return "", fmt.Errorf("unhandled field reference %T", f)
	}
}

// rvalue resolves a value-position node to its display string. Datetime
// values never reach here: the date-range extractor consumes them before
// filter compilation.
func (c *Compiler) rvalue(v query.Value) (string, error) {
	switch v := v.(type) {
	case query.Literal:
		return formatLiteral(v.V), nil
	case query.FieldID, query.FieldName:
		return c.fieldName(v.(query.Field))
	default:
		return "", fmt.Errorf("unhandled value %T in filter clause", v)
	}
}

func formatLiteral(v any) string {
	switch v := v.(type) {
	case string:
		return v
	case int:
		return strconv.Itoa(v)
	case int64:
		return strconv.FormatInt(v, 10)
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64)
	case bool:
		return strconv.FormatBool(v)
	case nil:
		return ""
	default:
		return fmt.Sprint(v)
	}
}
