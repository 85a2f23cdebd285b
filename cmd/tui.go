package main

import (
	"context"
	"fmt"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/urfave/cli/v3"

	"github.com/desertthunder/moodmix/internal/models"
	"github.com/desertthunder/moodmix/internal/shared"
	"github.com/desertthunder/moodmix/internal/ui"
)

const tuiLogFile = "./tmp/moodmix-tui.log"

// TUI launches the interactive terminal client against a running gateway.
func (r *Runner) TUI(ctx context.Context, cmd *cli.Command) error {
	token, err := r.accessToken(ctx, cmd)
	if err != nil {
		return err
	}

	gw := r.gatewayClient(cmd)
	if err := gw.Health(ctx); err != nil {
		return fmt.Errorf("%w: gateway at %s: %v", shared.ErrAPIRequest, gw.BaseURL(), err)
	}

	opts := ui.Options{
		Backend: gw.Bind(token),
		Limit:   cmd.Int("limit"),
		Open:    r.open,
	}
	if moods, err := gw.Moods(ctx); err == nil {
		opts.Moods = moods
	} else {
		r.logger.Warn("using built-in moods", "error", err)
	}
	if name := cmd.String("mood"); name != "" {
		preset, ok := models.FindMood(name)
		if !ok {
			return fmt.Errorf("%w: %q", shared.ErrUnknownMood, name)
		}
		cfg := preset.Config(opts.Limit)
		opts.Initial, opts.Title = &cfg, preset.Name
	}

	// Redirect logs to file to avoid interfering with TUI rendering
	logPath := r.config.Log.File
	if logPath == "" {
		logPath = tuiLogFile
	}
	fileLogger, closer, err := shared.NewFileLogger(logPath)
	if err != nil {
		return fmt.Errorf("failed to create file logger: %w", err)
	}
	defer closer.Close()
	shared.SetLogLevel(fileLogger, r.config.Log.Level)
	r.SetLogger(fileLogger)

	r.logger.Info("starting tui", "gateway", gw.BaseURL())
	model := ui.NewModel(ctx, opts)
	p := tea.NewProgram(model, tea.WithAltScreen(), tea.WithContext(ctx))

	if _, err := p.Run(); err != nil {
		return fmt.Errorf("error running TUI: %w", err)
	}

	return nil
}
