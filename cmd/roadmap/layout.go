package main

import (
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/akyairhashvil/roadmap/internal/apperr"
	"github.com/akyairhashvil/roadmap/internal/lanes"
	"github.com/akyairhashvil/roadmap/internal/store"
	"github.com/akyairhashvil/roadmap/internal/util"
)

func layoutCmd(opts *rootOptions) *cobra.Command {
	var (
		timeline string
		filter   string
	)
	cmd := &cobra.Command{
		Use:   "layout",
		Short: "Print the lane layout of a timeline",
		Long: `Print every team of a timeline with its tasks assigned to lanes.

The filter uses the same syntax as the board search:
  team:<name> timeline:<name> color:<color> and free text on task names.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := opts.load()
			if err != nil {
				return err
			}
			rt, err := openRuntime(cmd.Context(), cfg, cmd.ErrOrStderr())
			if err != nil {
				return err
			}
			defer rt.Close()

			snap := rt.store().Snapshot()
			id := snap.ActiveTimelineID()
			if timeline != "" {
				tl, ok := snap.TimelineByName(timeline)
				if !ok {
					return apperr.NotFound("timeline", timeline)
				}
				id = tl.ID
			}
			board, ok := lanes.LayoutTimeline(snap, id)
			if !ok {
				fmt.Fprintln(cmd.OutOrStdout(), "No timelines.")
				return nil
			}
			printBoard(cmd.OutOrStdout(), snap, board, util.ParseSearchQuery(filter))
			return nil
		},
	}
	cmd.Flags().StringVar(&timeline, "timeline", "", "timeline name (default active)")
	cmd.Flags().StringVar(&filter, "filter", "", "search query")
	return cmd
}

func printBoard(w io.Writer, snap store.Snapshot, board lanes.Board, query util.SearchQuery) {
	fmt.Fprintf(w, "%s\n", board.Timeline.Name)
	if qs := board.Quarters(); len(qs) > 0 {
		fmt.Fprintf(w, "%s .. %s\n", qs[0], qs[len(qs)-1])
	}
	for _, row := range board.Rows {
		fmt.Fprintf(w, "\n%s (%d lanes)\n", row.Team.Name, row.Lanes)
		for _, p := range row.Placements {
			t := p.Task
			if !query.Empty() && !query.Matches(row.Team.Name, board.Timeline.Name, string(t.Color), t.Name) {
				continue
			}
			fmt.Fprintf(w, "  [%d] %-24s %s-%s %3d%% %s\n",
				p.Lane, t.Name, t.Start, t.End, t.Progress, strings.ToLower(string(t.Color)))
		}
	}
}
