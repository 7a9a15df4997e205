// Package cmd provides the CLI commands for farectl.
package cmd

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"farerules/internal/app"
	"farerules/internal/config"
	"farerules/internal/logging"
)

type rootOptions struct {
	verbose bool
	app     *app.App
}

// NewRootCmd builds the command tree. Every subcommand shares the server's
// configuration and rule store backend.
func NewRootCmd() *cobra.Command {
	opts := &rootOptions{}

	root := &cobra.Command{
		Use:   "farectl",
		Short: "Ingest tickets, inspect the rule store and quote fares",
		Long: `farectl works against the same rule store as the HTTP service.

Examples:
  farectl ingest ticket.pdf --pos PG
  farectl parse ticket.pdf
  farectl quote --carrier PX --origin POM --dest LAE --base-fare 238
  farectl rules export --format xlsx --out rules.xlsx`,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return opts.init(cmd)
		},
		PersistentPostRunE: func(*cobra.Command, []string) error {
			defer logging.Sync()
			if opts.app == nil {
				return nil
			}
			return opts.app.Close()
		},
	}

	root.PersistentFlags().BoolVarP(&opts.verbose, "verbose", "v", false, "enable verbose output")

	root.AddCommand(
		newIngestCmd(opts),
		newParseCmd(opts),
		newTextCmd(opts),
		newQuoteCmd(opts),
		newRulesCmd(opts),
	)
	return root
}

// Execute runs the CLI
func Execute() error {
	return NewRootCmd().Execute()
}

func (o *rootOptions) init(cmd *cobra.Command) error {
	config.LoadDotEnv()
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	level := "warn"
	if o.verbose {
		level = "debug"
	}
	if err := logging.Initialize(logging.Config{Level: level, Format: "console", Output: "stderr"}); err != nil {
		fmt.Fprintf(os.Stderr, "Error initializing logging: %v\n", err)
	}

	o.app, err = app.New(cmd.Context(), cfg, logging.Logger)
	return err
}

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
