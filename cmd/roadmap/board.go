package main

import (
	"context"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"github.com/akyairhashvil/roadmap/internal/config"
	"github.com/akyairhashvil/roadmap/internal/tui"
	"github.com/akyairhashvil/roadmap/internal/util"
)

func boardCmd(opts *rootOptions) *cobra.Command {
	var theme string
	cmd := &cobra.Command{
		Use:   "board",
		Short: "Open the interactive roadmap board",
		Long: `Open the board. The chosen --theme is remembered for later sessions.

Keys: tab/shift+tab switch timeline, n new timeline, u undo, r redo, q quit.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runBoard(cmd, opts, theme)
		},
	}
	cmd.Flags().StringVar(&theme, "theme", "", "color theme (default, dracula)")
	return cmd
}

func runBoard(cmd *cobra.Command, opts *rootOptions, theme string) error {
	cfg, err := opts.load()
	if err != nil {
		return err
	}
	logs, err := logFile()
	if err != nil {
		return err
	}
	defer logs.Close()

	ctx, cancel := context.WithCancel(cmd.Context())
	defer cancel()
	rt, err := openRuntime(ctx, cfg, logs)
	if err != nil {
		return err
	}
	defer rt.Close()

	if theme == "" {
		theme, _ = rt.db.GetSetting(ctx, config.SettingTheme)
	} else if err := rt.db.SetSetting(ctx, config.SettingTheme, theme); err != nil {
		util.LogError(rt.logger, "remember theme", err)
	}
	tui.SetTheme(theme)

	go rt.app.Run(ctx, cfg.WatchInterval)

	model := tui.NewBoardModel(rt.store())
	defer model.Close()
	_, err = tea.NewProgram(model, tea.WithAltScreen(), tea.WithContext(ctx)).Run()
	return err
}
