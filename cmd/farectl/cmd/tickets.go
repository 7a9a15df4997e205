package cmd

import (
	"fmt"
	"os"
	"path/filepath"
	"unicode/utf8"

	"github.com/spf13/cobra"

	"farerules/internal/service"
)

func newIngestCmd(opts *rootOptions) *cobra.Command {
	var pos string
	cmd := &cobra.Command{
		Use:   "ingest <file>",
		Short: "Parse a ticket and fold it into the rule store",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			input, closeFn, err := openTicket(args[0])
			if err != nil {
				return err
			}
			defer closeFn()
			input.POS = pos

			result, err := opts.app.Ingest.Ingest(cmd.Context(), input)
			if err != nil {
				return err
			}
			return writeJSON(cmd.OutOrStdout(), result)
		},
	}
	cmd.Flags().StringVar(&pos, "pos", "", "point of sale (default from tables)")
	return cmd
}

func newParseCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "parse <file>",
		Short: "Parse a ticket without touching the rule store",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			input, closeFn, err := openTicket(args[0])
			if err != nil {
				return err
			}
			defer closeFn()

			text, err := opts.app.Ingest.ExtractText(cmd.Context(), input)
			if err != nil {
				return err
			}
			return writeJSON(cmd.OutOrStdout(), opts.app.Ingest.Parse(cmd.Context(), text))
		},
	}
}

func newTextCmd(opts *rootOptions) *cobra.Command {
	var limit int
	cmd := &cobra.Command{
		Use:   "text <file>",
		Short: "Print the text the parser sees for a document",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			input, closeFn, err := openTicket(args[0])
			if err != nil {
				return err
			}
			defer closeFn()

			text, err := opts.app.Ingest.ExtractText(cmd.Context(), input)
			if err != nil {
				return err
			}
			if limit > 0 && utf8.RuneCountInString(text) > limit {
				text = string([]rune(text)[:limit])
			}
			_, err = fmt.Fprintln(cmd.OutOrStdout(), text)
			return err
		},
	}
	cmd.Flags().IntVar(&limit, "limit", 10000, "maximum characters to print, 0 for all")
	return cmd
}

func openTicket(path string) (service.TicketUploadInput, func(), error) {
	f, err := os.Open(path)
	if err != nil {
		return service.TicketUploadInput{}, nil, fmt.Errorf("opening ticket: %w", err)
	}
	st, err := f.Stat()
	if err != nil {
		_ = f.Close()
		return service.TicketUploadInput{}, nil, fmt.Errorf("reading ticket: %w", err)
	}
	return service.TicketUploadInput{
		FileName: filepath.Base(path),
		Size:     st.Size(),
		Body:     f,
	}, func() { _ = f.Close() }, nil
}
