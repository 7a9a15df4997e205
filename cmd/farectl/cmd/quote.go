package cmd

import (
	"fmt"

	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"

	"farerules/internal/service"
)

func newQuoteCmd(opts *rootOptions) *cobra.Command {
	var (
		input    service.QuoteInput
		baseFare string
		markup   string
	)
	cmd := &cobra.Command{
		Use:   "quote",
		Short: "Quote a fare from the stored rule for a route",
		RunE: func(cmd *cobra.Command, _ []string) error {
			base, err := decimal.NewFromString(baseFare)
			if err != nil {
				return fmt.Errorf("invalid --base-fare %q: %w", baseFare, err)
			}
			input.BaseFare = base
			if markup != "" {
				m, err := decimal.NewFromString(markup)
				if err != nil {
					return fmt.Errorf("invalid --markup %q: %w", markup, err)
				}
				input.MarkupPct = decimal.NewNullDecimal(m)
			}

			quote, err := opts.app.Quote.Quote(cmd.Context(), input)
			if err != nil {
				return err
			}
			return writeJSON(cmd.OutOrStdout(), quote)
		},
	}

	f := cmd.Flags()
	f.StringVar(&input.Carrier, "carrier", "", "carrier code, e.g. PX")
	f.StringVar(&input.Origin, "origin", "", "origin location code")
	f.StringVar(&input.Dest, "dest", "", "destination location code")
	f.StringVar(&baseFare, "base-fare", "", "base fare amount")
	f.StringVar(&input.Currency, "currency", "", "currency (default from tables)")
	f.StringVar(&input.POS, "pos", "", "point of sale (default from tables)")
	f.StringVar(&markup, "markup", "", "markup percent (default from tables)")
	for _, name := range []string{"carrier", "origin", "dest", "base-fare"} {
		_ = cmd.MarkFlagRequired(name)
	}
	return cmd
}
