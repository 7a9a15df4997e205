package cmd

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"farerules/internal/csvexport"
	"farerules/internal/domain"
)

func newRulesCmd(opts *rootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "rules",
		Short: "Inspect and move the rule set",
	}
	cmd.AddCommand(
		&cobra.Command{
			Use:   "list",
			Short: "Print the rule set as JSON",
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, _ []string) error {
				set, err := opts.app.Rules.List(cmd.Context())
				if err != nil {
					return err
				}
				return writeJSON(cmd.OutOrStdout(), set)
			},
		},
		newRulesExportCmd(opts),
		&cobra.Command{
			Use:   "import <file.xlsx>",
			Short: "Merge rules from a workbook in the export layout",
			Args:  cobra.ExactArgs(1),
			RunE: func(cmd *cobra.Command, args []string) error {
				f, err := os.Open(args[0])
				if err != nil {
					return fmt.Errorf("opening workbook: %w", err)
				}
				defer func() { _ = f.Close() }()

				n, err := opts.app.Rules.Import(cmd.Context(), f)
				if err != nil {
					return err
				}
				_, err = fmt.Fprintf(cmd.OutOrStdout(), "imported %d rules\n", n)
				return err
			},
		},
	)
	return cmd
}

func newRulesExportCmd(opts *rootOptions) *cobra.Command {
	var format, out string
	cmd := &cobra.Command{
		Use:   "export",
		Short: "Write the rule set as CSV or XLSX",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			f := domain.ExportFormat(strings.ToLower(format))
			if f != domain.ExportCSV && f != domain.ExportXLSX {
				return fmt.Errorf("%w: %q", domain.ErrUnsupportedFormat, format)
			}

			if out == "-" {
				return opts.app.Rules.Export(cmd.Context(), f, cmd.OutOrStdout())
			}
			if out == "" {
				out = csvexport.BuildFilename("fare_rules", f, time.Now())
			}
			file, err := os.Create(out)
			if err != nil {
				return fmt.Errorf("creating %s: %w", out, err)
			}
			if err := opts.app.Rules.Export(cmd.Context(), f, file); err != nil {
				_ = file.Close()
				return err
			}
			if err := file.Close(); err != nil {
				return err
			}
			_, err = fmt.Fprintf(cmd.OutOrStdout(), "wrote %s\n", out)
			return err
		},
	}
	cmd.Flags().StringVar(&format, "format", "csv", "export format: csv or xlsx")
	cmd.Flags().StringVar(&out, "out", "", "output file, - for stdout (default fare_rules_<date>.<format>)")
	return cmd
}
