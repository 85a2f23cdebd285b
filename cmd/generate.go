package main

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/urfave/cli/v3"

	"github.com/desertthunder/moodmix/internal/formatter"
	"github.com/desertthunder/moodmix/internal/models"
	"github.com/desertthunder/moodmix/internal/shared"
	"github.com/desertthunder/moodmix/internal/tasks"
)

const exportBase = "moodmix"

// Moods lists the mood presets.
func (r *Runner) Moods(ctx context.Context, cmd *cli.Command) error {
	moods := models.MoodPresets()
	if cmd.Bool("json") {
		return r.writeJSON(moods, true)
	}

	r.writePlainHeader("Moods")
	for _, m := range moods {
		r.writePlain("%-10s %-12s %s (%s)\n", m.ID, m.Name, m.Description, strings.Join(m.Genres, ", "))
	}
	return nil
}

// GenerateMood generates a mix from a mood preset.
func (r *Runner) GenerateMood(ctx context.Context, cmd *cli.Command) error {
	name := cmd.StringArg("preset")
	if name == "" {
		return fmt.Errorf("%w: mood preset", shared.ErrMissingArgument)
	}
	preset, ok := models.FindMood(name)
	if !ok {
		return fmt.Errorf("%w: %q (see 'moodmix moods')", shared.ErrUnknownMood, name)
	}

	token, err := r.accessToken(ctx, cmd)
	if err != nil {
		return err
	}

	cfg := models.GenerationConfig{
		Mode:    models.ModeMood,
		Genres:  preset.Genres,
		Targets: preset.Targets,
		Limit:   cmd.Int("limit"),
	}
	r.logger.Info("generating mix", "mood", preset.ID, "personalized", cmd.Bool("personalized"))

	var tracks []models.Track
	if cmd.Bool("personalized") {
		progress, wait := r.progress()
		tracks, err = r.engine.Personalized(ctx, token, cfg, progress)
		wait()
	} else {
		tracks, err = r.engine.Recommend(ctx, token, cfg)
	}
	if err != nil {
		return err
	}

	return r.emit(ctx, cmd, token, &formatter.Mix{Title: preset.Name, Config: cfg, Tracks: tracks})
}

// GenerateArtists generates a mix similar to the given artists.
func (r *Runner) GenerateArtists(ctx context.Context, cmd *cli.Command) error {
	token, err := r.accessToken(ctx, cmd)
	if err != nil {
		return err
	}

	ids := cmd.StringSlice("id")
	for _, name := range cmd.StringSlice("name") {
		artists, err := r.engine.SearchArtists(ctx, token, name)
		if err != nil {
			return err
		}
		if len(artists) == 0 {
			return fmt.Errorf("%w: no artist matches %q", shared.ErrInvalidArgument, name)
		}
		r.logger.Info("resolved artist", "query", name, "artist", artists[0].Name, "id", artists[0].ID)
		ids = append(ids, artists[0].ID)
	}
	if len(ids) == 0 {
		return fmt.Errorf("%w: at least one --id or --name", shared.ErrMissingArgument)
	}

	cfg := models.GenerationConfig{
		Mode:      models.ModeArtists,
		ArtistIDs: ids,
		Targets:   models.ArtistTargets(),
		Limit:     cmd.Int("limit"),
	}

	progress, wait := r.progress()
	tracks, err := r.engine.SimilarToArtists(ctx, token, ids, cfg.Limit, progress)
	wait()
	if err != nil {
		return err
	}

	return r.emit(ctx, cmd, token, &formatter.Mix{Config: cfg, Tracks: tracks})
}

// GenerateSearch generates a mix from a free-text prompt.
func (r *Runner) GenerateSearch(ctx context.Context, cmd *cli.Command) error {
	prompt := strings.TrimSpace(strings.Join(cmd.Args().Slice(), " "))
	if prompt == "" {
		return fmt.Errorf("%w: prompt", shared.ErrMissingArgument)
	}

	token, err := r.accessToken(ctx, cmd)
	if err != nil {
		return err
	}

	tracks, err := r.engine.SearchSongs(ctx, token, prompt, cmd.Int("limit"))
	if err != nil {
		return err
	}

	cfg := models.GenerationConfig{Mode: models.ModeMood, Limit: cmd.Int("limit")}
	return r.emit(ctx, cmd, token, &formatter.Mix{Title: prompt, Config: cfg, Tracks: tracks})
}

// progress logs engine updates until the returned func is called.
func (r *Runner) progress() (chan<- tasks.ProgressUpdate, func()) {
	ch := make(chan tasks.ProgressUpdate, 16)
	done := make(chan struct{})
	go func() {
		defer close(done)
		for u := range ch {
			r.logger.Info(u.Message, "phase", u.Phase, "step", u.Step, "total", u.Total)
		}
	}()
	return ch, func() {
		close(ch)
		<-done
	}
}

// emit optionally saves the mix as a playlist, then prints or exports it.
func (r *Runner) emit(ctx context.Context, cmd *cli.Command, token string, mix *formatter.Mix) error {
	format, err := formatter.ParseFormat(cmd.String("format"))
	if err != nil {
		return err
	}
	r.logger.Info("mix ready", "tracks", len(mix.Tracks))

	if name := cmd.String("save"); name != "" {
		progress, wait := r.progress()
		ref, err := r.engine.CreatePlaylist(ctx, token, tasks.PlaylistRequest{
			Name:        name,
			Description: fmt.Sprintf("Created with moodmix (%s)", mix.Config),
			Tracks:      models.TrackURIs(mix.Tracks),
		}, progress)
		wait()
		if err != nil {
			return fmt.Errorf("failed to save playlist: %w", err)
		}
		mix.Playlist = ref
		r.logger.Info("playlist saved", "id", ref.ID, "url", ref.URL)

		if cmd.Bool("open") && ref.URL != "" {
			if err := r.open(ref.URL); err != nil {
				r.logger.Warn("could not open browser", "error", err)
			}
		}
	}

	if dir := cmd.String("output"); dir != "" {
		return r.export(mix, format, dir)
	}
	if format == formatter.FormatJSON {
		return r.writeJSON(mix, cmd.Bool("pretty"))
	}

	data, err := formatter.Render(mix, format)
	if err != nil {
		return err
	}
	if _, err := r.output.Write(data); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}
	return nil
}

// export writes mix into dir in the given format.
func (r *Runner) export(mix *formatter.Mix, format formatter.Format, dir string) error {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create directory: %w", err)
	}

	var files []string
	switch format {
	case formatter.FormatText:
		path, err := formatter.WriteTextExport(mix, filepath.Join(dir, exportBase+"_tracks.txt"))
		if err != nil {
			return err
		}
		files = append(files, path)
	case formatter.FormatMarkdown:
		res, err := formatter.WriteMarkdownExport(mix, dir, mix.CoverURL(), r.output)
		if err != nil {
			return err
		}
		files = append(files, res.Files...)
	case formatter.FormatCSV:
		res, err := formatter.WriteCSVExport(mix, filepath.Join(dir, exportBase))
		if err != nil {
			return err
		}
		files = append(files, res.TracksFile, res.MetadataFile)
	case formatter.FormatJSON:
		data, err := shared.MarshalJSON(mix, true)
		if err != nil {
			return fmt.Errorf("failed to marshal JSON: %w", err)
		}
		path := filepath.Join(dir, exportBase+".json")
		if err := os.WriteFile(path, data, 0644); err != nil {
			return fmt.Errorf("failed to write JSON file: %w", err)
		}
		files = append(files, path)
	}

	for _, f := range files {
		r.writePlain("✓ Wrote %s\n", f)
	}
	return nil
}
