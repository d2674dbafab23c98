// Package compile implements the "gaquery compile" command.
package compile

import (
	"fmt"
	"io"
	"os"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/openmetrica/gaquery/internal/cli/helpers"
	"github.com/openmetrica/gaquery/internal/config"
	"github.com/openmetrica/gaquery/internal/errors"
	"github.com/openmetrica/gaquery/internal/ga"
	"github.com/openmetrica/gaquery/internal/logging"
	"github.com/openmetrica/gaquery/internal/metadata"
	"github.com/openmetrica/gaquery/internal/query"
)

// NewCompileCmd creates the compile command.
func NewCompileCmd() *cobra.Command {
	var (
		queryPath    string
		metadataPath string
		timezone     string
		configPath   string
		output       helpers.OutputFlags
	)

	cmd := &cobra.Command{
		Use:   "compile",
		Short: "Compile a query tree into reporting API parameters",
		Long: `Compile an engine-neutral query tree into the flat parameter set of
the Google Analytics Core Reporting API.

The query is read from a JSON file (or stdin with --query -). Table and
field identifiers resolve against a YAML metadata catalog:

  tables:
    1: users
  fields:
    4: "ga:date"
    5: "ga:pagePath"

Examples:
  # Compile a query file against a metadata catalog
  gaquery compile --query query.json --metadata metadata.yaml

  # Read the query from stdin, print an aligned table
  cat query.json | gaquery compile -q - -m metadata.yaml -o table

  # Override the query's reporting timezone
  gaquery compile -q query.json -m metadata.yaml --timezone US/Pacific`,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(configPath)
			if err != nil {
				return err
			}
			if metadataPath != "" {
				cfg.Metadata = metadataPath
			}
			if cfg.Metadata == "" {
				return fmt.Errorf("--metadata is required (or set metadata in the config file)")
			}

			logger := logging.NewWithComponent(logging.Config{
				Level:  cfg.Log.Level,
				Pretty: cfg.Log.Pretty,
				Output: cmd.ErrOrStderr(),
			}, "compile")
			logger = logger.With().Str("compile_id", uuid.NewString()).Logger()

			store, err := metadata.Load(cfg.Metadata)
			if err != nil {
				return err
			}

			data, err := readQuery(logger, queryPath, cmd.InOrStdin())
			if err != nil {
				return err
			}
			q, err := query.Parse(data)
			if err != nil {
				return err
			}
			if timezone != "" {
				q.Timezone = timezone
			}

			format, err := helpers.ParseFormat(output.Format)
			if err != nil {
				return err
			}
			formatter, err := helpers.NewFormatter(format)
			if err != nil {
				return err
			}

			compiler := ga.New(store,
				ga.WithConfig(ga.Config{
					EarliestDate: cfg.Compiler.EarliestDate,
					MaxResults:   cfg.Compiler.MaxResults,
				}),
				ga.WithLogger(logger),
			)

			params, err := compiler.Compile(cmd.Context(), q)
			if err != nil {
				logger.Error().Err(err).Msg("compilation failed")
				return err
			}

			return formatter.Format(params.Map(), cmd.OutOrStdout())
		},
	}

	cmd.Flags().StringVarP(&queryPath, "query", "q", "", "Query file (JSON), or - for stdin")
	cmd.Flags().StringVarP(&metadataPath, "metadata", "m", "", "Metadata catalog file (YAML)")
	cmd.Flags().StringVar(&timezone, "timezone", "", "Reporting timezone override (IANA name)")
	cmd.Flags().StringVar(&configPath, "config", config.DefaultPath(), "Config file path")
	output.AddFlags(cmd.Flags())
	_ = cmd.MarkFlagRequired("query")

	return cmd
}

func readQuery(logger zerolog.Logger, path string, stdin io.Reader) ([]byte, error) {
	if path == "-" {
		return io.ReadAll(stdin)
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open query file: %w", err)
	}
	defer errors.DeferClose(logger, f, "close query file")
	return io.ReadAll(f)
}
