// Command seed-db inserts a demo order graph for local runs and the
// black-box integration suite. The order is created through the same
// repository the service uses, so notifications and history rows behave as
// in production.
package main

import (
	"context"
	"flag"
	"log/slog"
	"os"
	"os/signal"
	"time"

	"github.com/go-faster/errors"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/NextLogic2025/AplicacionCafrilosa-sub006/internal/domain/order"
	"github.com/NextLogic2025/AplicacionCafrilosa-sub006/internal/storage/postgres"
)

// forwardChain is the happy-path status walk used to seed an order in an
// advanced state.
var forwardChain = []order.Status{
	order.StatusPending,
	order.StatusApproved,
	order.StatusPrepared,
	order.StatusInRoute,
	order.StatusDelivered,
}

func chainIndex(st order.Status) int {
	for i, s := range forwardChain {
		if s == st {
			return i
		}
	}
	return -1
}

func main() {
	var (
		databaseURL string
		orderID     string
		clientID    string
		status      string
	)

	flag.StringVar(&databaseURL, "database-url", "", "PostgreSQL connection URL (or DATABASE_URL env)")
	flag.StringVar(&orderID, "order-id", "demo-order-1", "id of the seeded order")
	flag.StringVar(&clientID, "client-id", "demo-client-1", "client id of the seeded order")
	flag.StringVar(&status, "status", string(order.StatusPending), "status to advance the seeded order to")
	flag.Parse()

	if databaseURL == "" {
		databaseURL = os.Getenv("DATABASE_URL")
	}
	if databaseURL == "" {
		slog.Error("database URL is required: set --database-url or DATABASE_URL")
		os.Exit(1)
	}

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt)
	defer cancel()

	if err := run(ctx, databaseURL, orderID, clientID, order.Status(status)); err != nil {
		slog.Error("seed failed", slog.String("error", err.Error()))
		os.Exit(1)
	}

	slog.Info("seed completed successfully")
}

func run(ctx context.Context, databaseURL, orderID, clientID string, target order.Status) error {
	if !target.Valid() {
		return errors.Errorf("unknown status %q", target)
	}

	slog.Info("connecting to database")

	pool, err := postgres.NewPool(ctx, databaseURL)
	if err != nil {
		return errors.Wrap(err, "connect to database")
	}
	defer pool.Close()

	slog.Info("running migrations")

	if err := postgres.RunMigrations(ctx, pool); err != nil {
		return errors.Wrap(err, "run migrations")
	}

	repo := postgres.NewOrderRepository(pool)

	if err := seedOrder(ctx, repo, orderID, clientID); err != nil {
		return errors.Wrap(err, "seed order")
	}

	if err := advance(ctx, repo, orderID, target); err != nil {
		return errors.Wrap(err, "advance order")
	}

	return nil
}

func seedOrder(ctx context.Context, repo *postgres.OrderRepository, orderID, clientID string) error {
	if _, err := repo.GetByID(ctx, orderID); err == nil {
		slog.Info("order already seeded", slog.String("id", orderID))
		return nil
	} else if !errors.Is(err, order.ErrNotFound) {
		return err
	}

	now := time.Now().UTC()
	token := uuid.New().String()
	subtotal := decimal.RequireFromString("20.00")
	tax := decimal.RequireFromString("2.40")

	o := &order.Order{
		ID:               orderID,
		ClientID:         clientID,
		PaymentMethod:    "cash",
		Origin:           "seed",
		Subtotal:         subtotal,
		DiscountTotal:    decimal.Zero,
		TaxTotal:         tax,
		GrandTotal:       subtotal.Add(tax),
		Status:           order.StatusPending,
		ReservationToken: &token,
		CreatedAt:        now,
		UpdatedAt:        now,
		Lines: []order.Line{{
			ID:         uuid.New().String(),
			OrderID:    orderID,
			ProductID:  "demo-product-1",
			Name:       "Demo product",
			Quantity:   2,
			Unit:       "unit",
			ListPrice:  decimal.RequireFromString("10.00"),
			FinalPrice: decimal.RequireFromString("10.00"),
		}},
	}
	if err := repo.Create(ctx, o); err != nil {
		return err
	}

	slog.Info("seeded order", slog.String("id", orderID), slog.String("client", clientID))
	return nil
}

// advance walks the seeded order along the forward chain until it reaches
// target, writing a history row per hop like the real state machine does.
func advance(ctx context.Context, repo *postgres.OrderRepository, orderID string, target order.Status) error {
	o, err := repo.GetByID(ctx, orderID)
	if err != nil {
		return err
	}
	if chainIndex(target) <= chainIndex(o.Status) {
		return nil
	}

	walking := false
	prev := o.Status
	for _, st := range forwardChain {
		if st == prev {
			walking = true
			continue
		}
		if !walking {
			continue
		}

		hist := &order.StatusHistory{
			OrderID:   orderID,
			Previous:  prev,
			Next:      st,
			Comment:   "seeded transition",
			CreatedAt: time.Now().UTC(),
		}
		if err := repo.UpdateStatus(ctx, orderID, st, hist); err != nil {
			return err
		}
		slog.Info("advanced order", slog.String("from", string(prev)), slog.String("to", string(st)))
		prev = st

		if st == target {
			break
		}
	}
	return nil
}
