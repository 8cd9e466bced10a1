package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/akyairhashvil/roadmap/internal/config"
	"github.com/akyairhashvil/roadmap/internal/exchange"
)

func importCmd(opts *rootOptions) *cobra.Command {
	var format string
	cmd := &cobra.Command{
		Use:   "import <file>",
		Short: "Replace the roadmap with an exchange document",
		Long: `Validate a JSON or YAML exchange document and replace the whole roadmap
with it. Nothing changes when the document is invalid. Encrypted documents
prompt for their passphrase.

The replaced roadmap stays in the saved history; list it with
"roadmap history" and bring it back with "roadmap history restore <revision>".`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			data, err := os.ReadFile(args[0])
			if err != nil {
				return fmt.Errorf("read import: %w", err)
			}
			f := exchange.FormatForPath(args[0])
			if format != "" {
				if f, err = exchange.ParseFormat(format); err != nil {
					return err
				}
			}
			var decodeOpts []exchange.DecodeOption
			if exchange.IsSealed(data) {
				pass, err := unlock(cmd, data)
				if err != nil {
					return err
				}
				decodeOpts = append(decodeOpts, exchange.WithPassphrase(pass))
			}
			// Validate before touching the database.
			if _, err := exchange.Load(data, f, decodeOpts...); err != nil {
				return err
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

			snap, err := exchange.ImportBytes(rt.store(), data, f, decodeOpts...)
			if err != nil {
				return err
			}
			timelines, teams, tasks := snap.Counts()
			fmt.Fprintf(cmd.OutOrStdout(), "Imported %d timelines, %d teams, %d tasks\n", timelines, teams, tasks)
			return nil
		},
	}
	cmd.Flags().StringVar(&format, "format", "", "json or yaml (default from file extension)")
	return cmd
}

// unlock prompts until the passphrase opens the sealed document.
func unlock(cmd *cobra.Command, data []byte) (string, error) {
	for attempt := 1; attempt <= config.MaxPassphraseAttempts; attempt++ {
		pass, err := promptForKey(cmd.ErrOrStderr(), "Document passphrase: ")
		if err != nil {
			return "", err
		}
		if _, _, err := exchange.Open(data, pass); err == nil {
			return pass, nil
		} else if !errors.Is(err, exchange.ErrWrongPassphrase) {
			return "", err
		}
		fmt.Fprintf(cmd.ErrOrStderr(), "Wrong passphrase (%d/%d)\n", attempt, config.MaxPassphraseAttempts)
	}
	return "", exchange.ErrWrongPassphrase
}
