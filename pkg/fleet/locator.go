package fleet

import (
	"context"
	"fmt"

	cblog "github.com/charmbracelet/log"
	"github.com/darksworm/argofleet/pkg/api"
	apperrors "github.com/darksworm/argofleet/pkg/errors"
	"github.com/darksworm/argofleet/pkg/model"
	"golang.org/x/sync/errgroup"
)

// instanceScan is one instance's locator outcome. Exactly one of the three
// states holds: matched apps, a recorded non-fatal failure, or nothing found.
type instanceScan struct {
	located *model.LocatedApp
	apps    []model.AppData
	err     error
}

// scan fans the query out to every registered instance in parallel and joins
// before returning, so the result slice always follows registry order
// regardless of completion order. An auth rejection on any instance is
// fatal and aborts the whole scan; a query or transport failure only marks
// that instance as "app not here".
func (f *Fleet) scan(ctx context.Context, query model.AppQuery) ([]instanceScan, error) {
	instances := f.registry.ListInstances()
	scans := make([]instanceScan, len(instances))

	g, gctx := errgroup.WithContext(ctx)
	for i, inst := range instances {
		i, inst := i, inst
		g.Go(func() error {
			token, err := f.login(gctx, inst.URL)
			if err != nil {
				if apperrors.IsAuth(err) {
					// credentials rejected: abort the aggregate, do not skip
					return err
				}
				cblog.With("component", "locator").Warn("instance unreachable during scan",
					"instance", inst.Name, "err", err)
				scans[i].err = err
				return nil
			}

			svc := api.NewApplicationService(inst.URL, token, inst.Name)

			var apps []model.AppData
			if query.ByName() {
				data, err := svc.FindByName(gctx, f.prefs.ProbeNames(query.Name))
				if err != nil {
					scans[i].err = err
					return nil
				}
				apps = []model.AppData{data}
			} else {
				apps, err = svc.ListBySelector(gctx, query.Selector)
				if err != nil {
					scans[i].err = err
					return nil
				}
			}

			names := make([]string, 0, len(apps))
			for _, app := range apps {
				if name := api.AppName(app); name != "" {
					names = append(names, name)
				}
			}
			if len(names) == 0 {
				return nil
			}

			scans[i].apps = apps
			scans[i].located = &model.LocatedApp{
				Name:     inst.Name,
				URL:      inst.URL,
				AppNames: names,
			}
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}

	failed := 0
	for i := range scans {
		if scans[i].err != nil {
			failed++
		}
	}
	if failed == len(instances) {
		return nil, apperrors.New(apperrors.ErrorAPI, "ALL_INSTANCES_FAILED",
			fmt.Sprintf("query failed on all %d instances", len(instances))).
			WithCause(firstScanError(scans))
	}

	return scans, nil
}

func firstScanError(scans []instanceScan) error {
	for i := range scans {
		if scans[i].err != nil {
			return scans[i].err
		}
	}
	return nil
}

// FindApp locates which instance(s) expose applications matching the query.
// The result preserves registry order; instances with zero matches are
// excluded, and every returned entry carries at least one app name.
func (f *Fleet) FindApp(ctx context.Context, query model.AppQuery) ([]model.LocatedApp, error) {
	if err := validateQuery(query); err != nil {
		return nil, err
	}

	scans, err := f.scan(ctx, query)
	if err != nil {
		return nil, err
	}

	located := make([]model.LocatedApp, 0, len(scans))
	for i := range scans {
		if scans[i].located != nil {
			located = append(located, *scans[i].located)
		}
	}
	return located, nil
}

// AppData returns the matched applications' state, each payload decorated
// with the name of the instance it came from. Ordering follows the
// registry, then each instance's own item order.
func (f *Fleet) AppData(ctx context.Context, query model.AppQuery) ([]model.AppData, error) {
	if err := validateQuery(query); err != nil {
		return nil, err
	}

	scans, err := f.scan(ctx, query)
	if err != nil {
		return nil, err
	}

	var apps []model.AppData
	for i := range scans {
		apps = append(apps, scans[i].apps...)
	}
	return apps, nil
}
