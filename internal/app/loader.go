package app

import (
	"context"
	"log"
	"strings"
	"sync"
	"time"

	"github.com/five82/stockroom/internal/entity"
	"github.com/five82/stockroom/internal/state"
)

const defaultLoaderPoll = 2 * time.Second

// startLoader activates every hook in the background. Collections whose first
// load failed are refreshed once after each later successful sweep, until all
// of them hold rows. It returns immediately.
func startLoader(ctx context.Context, wg *sync.WaitGroup, hooks *entity.Set, conn *state.Connectivity, logger *log.Logger, poll time.Duration) {
	if poll <= 0 {
		poll = defaultLoaderPoll
	}
	wg.Go(func() {
		seen := successfulSweeps(conn)
		hooks.Activate(ctx)

		ticker := time.NewTicker(poll)
		defer ticker.Stop()

		for {
			failed := failedCollections(hooks)
			if len(failed) == 0 {
				return
			}
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
			}
			current := successfulSweeps(conn)
			if current == seen {
				continue
			}
			seen = current
			logger.Printf("[info] store reachable again, reloading %s", strings.Join(failed, ", "))
			hooks.RefreshAll(ctx)
		}
	})
}

func successfulSweeps(conn *state.Connectivity) int {
	snap := conn.Snapshot()
	return snap.Sweeps - snap.FailedSweeps
}

// failedCollections lists collections whose last refresh failed before any
// rows were cached.
func failedCollections(hooks *entity.Set) []string {
	var failed []string
	add := func(name string, failing bool) {
		if failing {
			failed = append(failed, name)
		}
	}
	add(hooks.Customers.Collection(), unloaded(hooks.Customers.View()))
	add(hooks.Orders.Collection(), unloaded(hooks.Orders.View()))
	add(hooks.Products.Collection(), unloaded(hooks.Products.View()))
	add(hooks.Inventory.Collection(), unloaded(hooks.Inventory.View()))
	add(hooks.StatusHistory.Collection(), unloaded(hooks.StatusHistory.View()))
	add(hooks.Analytics.Sales.Collection(), unloaded(hooks.Analytics.Sales.View()))
	add(hooks.Analytics.Categories.Collection(), unloaded(hooks.Analytics.Categories.View()))
	return failed
}

func unloaded[T any](v state.View[T]) bool {
	return v.LastError != nil && len(v.Items) == 0
}
