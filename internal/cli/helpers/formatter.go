package helpers

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"sort"
	"strings"
	"text/tabwriter"

	"github.com/spf13/pflag"
)

// OutputFormat represents the desired output format.
type OutputFormat string

const (
	FormatJSON  OutputFormat = "json"
	FormatTable OutputFormat = "table"
	FormatCSV   OutputFormat = "csv"
)

// OutputFlags holds the output format flag value.
type OutputFlags struct {
	Format string
}

// AddFlags adds the output format flag to a FlagSet.
func (f *OutputFlags) AddFlags(flags *pflag.FlagSet) {
	flags.StringVarP(&f.Format, "output", "o", string(FormatJSON), "Output format (json, table, csv)")
}

// Formatter writes a compiled parameter map in one output format.
type Formatter interface {
	Format(params map[string]any, writer io.Writer) error
}

// NewFormatter creates a Formatter for the given format.
func NewFormatter(format OutputFormat) (Formatter, error) {
	switch format {
	case FormatJSON:
		return &JSONFormatter{}, nil
	case FormatTable:
		return &TableFormatter{}, nil
	case FormatCSV:
		return &CSVFormatter{}, nil
	default:
		return nil, fmt.Errorf("unsupported format: %s", format)
	}
}

// JSONFormatter renders the parameter map as indented JSON.
type JSONFormatter struct{}

func (f *JSONFormatter) Format(params map[string]any, writer io.Writer) error {
	enc := json.NewEncoder(writer)
	enc.SetIndent("", "  ")
	return enc.Encode(params)
}

// TableFormatter renders one aligned "key value" row per parameter,
// sorted by key.
type TableFormatter struct{}

func (f *TableFormatter) Format(params map[string]any, writer io.Writer) error {
	w := tabwriter.NewWriter(writer, 0, 4, 2, ' ', 0)
	if _, err := fmt.Fprintln(w, "PARAMETER\tVALUE"); err != nil {
		return err
	}
	for _, key := range sortedKeys(params) {
		if _, err := fmt.Fprintf(w, "%s\t%v\n", key, params[key]); err != nil {
			return err
		}
	}
	return w.Flush()
}

// CSVFormatter renders a two-column parameter,value CSV with a header
// row, sorted by key.
type CSVFormatter struct{}

func (f *CSVFormatter) Format(params map[string]any, writer io.Writer) error {
	w := csv.NewWriter(writer)
	if err := w.Write([]string{"parameter", "value"}); err != nil {
		return err
	}
	for _, key := range sortedKeys(params) {
		if err := w.Write([]string{key, fmt.Sprintf("%v", params[key])}); err != nil {
			return err
		}
	}
	w.Flush()
	return w.Error()
}

func sortedKeys(params map[string]any) []string {
	keys := make([]string, 0, len(params))
	for key := range params {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	return keys
}

// ParseFormat validates a format flag value.
func ParseFormat(s string) (OutputFormat, error) {
	switch f := OutputFormat(strings.ToLower(s)); f {
	case FormatJSON, FormatTable, FormatCSV:
		return f, nil
	default:
		return "", fmt.Errorf("unsupported format: %s", s)
	}
}
