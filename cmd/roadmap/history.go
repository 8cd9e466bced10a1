package main

import (
	"fmt"
	"strconv"
	"time"

	"github.com/spf13/cobra"

	"github.com/akyairhashvil/roadmap/internal/database"
	"github.com/akyairhashvil/roadmap/internal/exchange"
)

func historyCmd(opts *rootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "history",
		Short: "List saved revisions of the roadmap",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := opts.load()
			if err != nil {
				return err
			}
			db, err := database.Open(cmd.Context(), cfg.DBPath)
			if err != nil {
				return err
			}
			defer db.Close()

			revisions, err := db.History(cmd.Context(), cfg.DocumentKey)
			if err != nil {
				return err
			}
			if len(revisions) == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), "No saved revisions.")
				return nil
			}
			for _, rev := range revisions {
				fmt.Fprintf(cmd.OutOrStdout(), "%6d  %s\n", rev.Revision, rev.UpdatedAt.Local().Format(time.DateTime))
			}
			return nil
		},
	}
	cmd.AddCommand(historyRestoreCmd(opts))
	cmd.AddCommand(historyClearCmd(opts))
	return cmd
}

func historyRestoreCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "restore <revision>",
		Short: "Make a past revision the current roadmap",
		Long: `Replace the roadmap with a retained past revision. The restored roadmap
is saved as a new revision, so the replaced one stays in the history.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			revision, err := strconv.ParseInt(args[0], 10, 64)
			if err != nil {
				return fmt.Errorf("invalid revision %q", args[0])
			}
			cfg, err := opts.load()
			if err != nil {
				return err
			}
			rt, err := openRuntime(cmd.Context(), cfg, cmd.ErrOrStderr())
			if err != nil {
				return err
			}
			defer rt.Close()

			stored, err := rt.db.GetRevision(cmd.Context(), cfg.DocumentKey, revision)
			if err != nil {
				return err
			}
			raw, err := exchange.Decode(stored.Body, exchange.FormatJSON, exchange.WithPassphrase(cfg.Passphrase))
			if err == nil {
				_, err = exchange.ImportStored(rt.store(), raw)
			}
			if err != nil {
				return fmt.Errorf("restore revision %d: %w", revision, err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Restored revision %d\n", revision)
			return nil
		},
	}
}

func historyClearCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "clear",
		Short: "Delete the stored roadmap and its history",
		Long:  `Delete the stored roadmap. The next run starts from a fresh default roadmap.`,
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := opts.load()
			if err != nil {
				return err
			}
			db, err := database.Open(cmd.Context(), cfg.DBPath)
			if err != nil {
				return err
			}
			defer db.Close()
			if err := db.DeleteDocument(cmd.Context(), cfg.DocumentKey); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), "Roadmap cleared.")
			return nil
		},
	}
}
