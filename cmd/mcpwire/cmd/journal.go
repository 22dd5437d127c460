package cmd

import (
	"encoding/json"
	"errors"

	"github.com/spf13/cobra"
)

func newJournalCommand(cfg *Config) *cobra.Command {
	var (
		after string
		limit int
	)
	c := &cobra.Command{
		Use:   "journal",
		Short: "print journaled messages as JSON lines",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			j, err := cfg.OpenPersistentJournal(ctx)
			if err != nil {
				return err
			}
			if j == nil {
				return errors.New("no journal configured")
			}
			defer j.Close()

			entries, err := j.Range(ctx, after, limit)
			if err != nil {
				return err
			}
			enc := json.NewEncoder(cmd.OutOrStdout())
			for _, e := range entries {
				if err := enc.Encode(e); err != nil {
					return err
				}
			}
			return nil
		},
	}
	c.Flags().StringVar(&after, "after", "", "only print entries after this id")
	c.Flags().IntVar(&limit, "limit", 100, "maximum number of entries, 0 for all")
	return c
}
