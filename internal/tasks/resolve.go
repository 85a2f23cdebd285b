package tasks

import (
	"context"
	"fmt"

	"golang.org/x/sync/errgroup"

	"github.com/desertthunder/moodmix/internal/models"
	"github.com/desertthunder/moodmix/internal/services"
)

// ResolveArtists looks every id up in parallel, at most concurrency at a time, and waits for
// all of them before returning. Results keep the order of ids.
//
// The first failed lookup cancels the rest and is returned.
func ResolveArtists(
	ctx context.Context,
	p services.Provider,
	ids []string,
	concurrency int,
	progress chan<- ProgressUpdate,
) ([]models.Artist, error) {
	if concurrency <= 0 {
		concurrency = 1
	}

	artists := make([]models.Artist, len(ids))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(concurrency)

	for i, id := range ids {
		g.Go(func() error {
			a, err := p.Artist(gctx, id)
			if err != nil {
				return fmt.Errorf("resolve artist %s: %w", id, err)
			}
			artists[i] = *a
			send(progress, resolveArtistUpdate(i+1, len(ids), a.Name))
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return artists, nil
}
