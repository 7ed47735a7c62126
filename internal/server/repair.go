package server

import (
	"context"
	"fmt"
	"sync/atomic"

	"golang.org/x/sync/errgroup"
)

const repairWorkers = 5

// RepairOrders reconciles every stored order once. A failing order does not
// stop the sweep; the first failure is returned after all orders are tried.
func (srv *Server) RepairOrders(ctx context.Context) error {
	ids, err := srv.storage.ListOrderIDs(ctx)
	if err != nil {
		return fmt.Errorf("list orders for repair: %w", err)
	}

	var failed atomic.Int64
	g := new(errgroup.Group)
	g.SetLimit(repairWorkers)

	for _, id := range ids {
		if ctx.Err() != nil {
			break
		}
		g.Go(func() error {
			if _, err := srv.engine.ReconcileOrder(ctx, id); err != nil {
				failed.Add(1)
				return err
			}
			return nil
		})
	}

	err = g.Wait()
	srv.deps.Logger.Infow("order repair finished", "orders", len(ids), "failed", failed.Load())
	if err != nil {
		return err
	}
	return ctx.Err()
}
