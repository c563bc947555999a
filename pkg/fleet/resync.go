package fleet

import (
	"context"

	cblog "github.com/charmbracelet/log"
	"github.com/darksworm/argofleet/pkg/api"
	"github.com/darksworm/argofleet/pkg/model"
	"golang.org/x/sync/errgroup"
)

// ResyncAll locates every (instance, app) pair matching the query and syncs
// them all: parallel across instances and within each instance, joined
// before the aggregate is built. The outer slice follows instance order and
// each inner slice follows that instance's app order, restored at join time
// rather than derived from completion order. Per-app Failure results are
// data and never collapse into an error; only locator-level auth failures
// and transport failures reject.
func (f *Fleet) ResyncAll(ctx context.Context, query model.AppQuery) ([][]model.SyncResult, error) {
	located, err := f.FindApp(ctx, query)
	if err != nil {
		return nil, err
	}

	results := make([][]model.SyncResult, len(located))

	g, gctx := errgroup.WithContext(ctx)
	for i, loc := range located {
		i, loc := i, loc
		g.Go(func() error {
			// fresh token per instance for the mutation phase
			token, err := f.login(gctx, loc.URL)
			if err != nil {
				return err
			}

			svc := api.NewApplicationService(loc.URL, token, loc.Name)
			inner := make([]model.SyncResult, len(loc.AppNames))

			ig, ictx := errgroup.WithContext(gctx)
			for j, appName := range loc.AppNames {
				j, appName := j, appName
				ig.Go(func() error {
					res, err := svc.Sync(ictx, appName)
					if err != nil {
						// transport failure during mutation is fatal
						return err
					}
					inner[j] = res
					return nil
				})
			}
			if err := ig.Wait(); err != nil {
				return err
			}

			results[i] = inner
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}

	for i, loc := range located {
		for _, res := range results[i] {
			cblog.With("component", "aggregator").Info("sync result",
				"instance", loc.Name, "status", res.Status, "message", res.Message)
		}
	}

	return results, nil
}
