package main

import (
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/akyairhashvil/roadmap/internal/exchange"
)

func exportCmd(opts *rootOptions) *cobra.Command {
	var (
		output  string
		format  string
		encrypt bool
	)
	cmd := &cobra.Command{
		Use:   "export",
		Short: "Export the roadmap as JSON or YAML",
		Long: `Write the whole roadmap as an exchange document. The format follows the
output file extension unless --format is given. With --encrypt the document
is sealed under a passphrase read from the terminal.

Examples:
  roadmap export > roadmap.json
  roadmap export -o plan.yaml
  roadmap export -o plan.json --encrypt`,
		RunE: func(cmd *cobra.Command, args []string) error {
			f := exchange.FormatForPath(output)
			if format != "" {
				var err error
				if f, err = exchange.ParseFormat(format); err != nil {
					return err
				}
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

			body, err := exchange.Encode(exchange.Export(rt.store().Snapshot(), time.Now()), f)
			if err != nil {
				return err
			}
			if encrypt {
				pass, err := promptNewKey(cmd.ErrOrStderr())
				if err != nil {
					return err
				}
				if body, err = exchange.Seal(body, f, pass); err != nil {
					return err
				}
			}

			if output == "" {
				_, err = cmd.OutOrStdout().Write(body)
				return err
			}
			if err := os.WriteFile(output, body, 0o600); err != nil {
				return fmt.Errorf("write export: %w", err)
			}
			fmt.Fprintf(cmd.ErrOrStderr(), "Exported roadmap to %s\n", output)
			return nil
		},
	}
	cmd.Flags().StringVarP(&output, "output", "o", "", "output file (default stdout)")
	cmd.Flags().StringVar(&format, "format", "", "json or yaml (default from file extension)")
	cmd.Flags().BoolVar(&encrypt, "encrypt", false, "seal the export under a passphrase")
	return cmd
}
