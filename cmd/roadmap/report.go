package main

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/spf13/cobra"

	"github.com/akyairhashvil/roadmap/internal/config"
	"github.com/akyairhashvil/roadmap/internal/report"
	"github.com/akyairhashvil/roadmap/internal/util"
)

func reportCmd(opts *rootOptions) *cobra.Command {
	var (
		all   bool
		title string
	)
	cmd := &cobra.Command{
		Use:   "report [out.pdf]",
		Short: "Draw the roadmap as a PDF",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			now := time.Now()
			path := report.DefaultFileName(util.ReportsDir(config.AppName), now)
			if len(args) == 1 {
				path = args[0]
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

			if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
				return fmt.Errorf("create report dir: %w", err)
			}
			f, err := os.Create(path)
			if err != nil {
				return fmt.Errorf("create report: %w", err)
			}
			err = report.Write(f, rt.store().Snapshot(), report.Options{All: all, Title: title, Now: now})
			if cerr := f.Close(); err == nil {
				err = cerr
			}
			if err != nil {
				_ = os.Remove(path)
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Report written to %s\n", path)
			return nil
		},
	}
	cmd.Flags().BoolVar(&all, "all", false, "one page per timeline instead of only the active one")
	cmd.Flags().StringVar(&title, "title", "", "report title")
	return cmd
}
