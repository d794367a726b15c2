package postgres

import (
	"context"

	"github.com/go-faster/errors"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/NextLogic2025/AplicacionCafrilosa-sub006/internal/domain/catalog"
	"github.com/NextLogic2025/AplicacionCafrilosa-sub006/internal/domain/order"
)

const insertOrderSQL = `INSERT INTO orders (
		id, client_id, seller_id, branch_id, payment_method, delivery_date,
		origin, subtotal, discount_total, tax_total, grand_total,
		delivery_lat, delivery_lng, notes, status, reservation_token,
		created_at, updated_at
	) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18)`

const insertLineSQL = `INSERT INTO order_lines (
		id, order_id, product_id, sku, name, quantity, unit,
		list_price, final_price, promotion_id, discount_reason
	) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)`

const insertPromotionSQL = `INSERT INTO applied_promotions (
		order_id, order_line_id, campaign_id, discount_type, discount_value, applied_amount
	) VALUES ($1, $2, $3, $4, $5, $6)`

const selectOrderSQL = `SELECT
		id, client_id, seller_id, branch_id, payment_method, delivery_date,
		origin, subtotal, discount_total, tax_total, grand_total,
		delivery_lat, delivery_lng, notes, status, reservation_token,
		created_at, updated_at
	FROM orders WHERE id = $1`

const selectLinesSQL = `SELECT
		id, order_id, product_id, sku, name, quantity, unit,
		list_price, final_price, promotion_id, discount_reason
	FROM order_lines WHERE order_id = $1 ORDER BY id`

const selectPromotionsSQL = `SELECT
		order_id, order_line_id, campaign_id, discount_type, discount_value, applied_amount
	FROM applied_promotions WHERE order_id = $1 ORDER BY order_line_id`

const updateStatusSQL = `UPDATE orders
	SET status = $2, updated_at = $3
	WHERE id = $1 AND status = $4`

const insertHistorySQL = `INSERT INTO status_history (
		order_id, previous_status, new_status, actor_id, comment, created_at
	) VALUES ($1, $2, $3, $4, $5, $6)`

var _ order.Repository = (*OrderRepository)(nil)

// OrderRepository implements order.Repository backed by PostgreSQL. The
// schema's triggers emit order lifecycle notifications on commit, so every
// write here doubles as an event publication.
type OrderRepository struct {
	pool *pgxpool.Pool
}

// NewOrderRepository returns an OrderRepository that uses the given pool.
func NewOrderRepository(pool *pgxpool.Pool) *OrderRepository {
	return &OrderRepository{pool: pool}
}

// Create persists the order graph (order, lines, applied promotions) in a
// single transaction.
func (r *OrderRepository) Create(ctx context.Context, o *order.Order) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return errors.Wrap(err, "begin")
	}
	defer tx.Rollback(ctx) //nolint:errcheck // rollback after commit is a no-op

	var lat, lng *float64
	if o.DeliveryPoint != nil {
		lat, lng = &o.DeliveryPoint.Lat, &o.DeliveryPoint.Lng
	}

	_, err = tx.Exec(ctx, insertOrderSQL,
		o.ID, o.ClientID, o.SellerID, o.BranchID, o.PaymentMethod, o.DeliveryDate,
		o.Origin, o.Subtotal, o.DiscountTotal, o.TaxTotal, o.GrandTotal,
		lat, lng, o.Notes, string(o.Status), o.ReservationToken,
		o.CreatedAt, o.UpdatedAt,
	)
	if err != nil {
		return errors.Wrapf(err, "insert order %q", o.ID)
	}

	for _, ln := range o.Lines {
		_, err = tx.Exec(ctx, insertLineSQL,
			ln.ID, o.ID, ln.ProductID, ln.SKU, ln.Name, ln.Quantity, ln.Unit,
			ln.ListPrice, ln.FinalPrice, ln.PromotionID, ln.DiscountReason,
		)
		if err != nil {
			return errors.Wrapf(err, "insert line for product %q", ln.ProductID)
		}
	}

	for _, p := range o.Promotions {
		_, err = tx.Exec(ctx, insertPromotionSQL,
			o.ID, p.OrderLineID, p.CampaignID, p.DiscountType, p.DiscountValue, p.AppliedAmount,
		)
		if err != nil {
			return errors.Wrapf(err, "insert applied promotion %q", p.CampaignID)
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return errors.Wrap(err, "commit")
	}
	return nil
}

// GetByID loads the order with its lines and applied promotions.
func (r *OrderRepository) GetByID(ctx context.Context, id string) (*order.Order, error) {
	var (
		o        order.Order
		status   string
		lat, lng *float64
	)
	err := r.pool.QueryRow(ctx, selectOrderSQL, id).Scan(
		&o.ID, &o.ClientID, &o.SellerID, &o.BranchID, &o.PaymentMethod, &o.DeliveryDate,
		&o.Origin, &o.Subtotal, &o.DiscountTotal, &o.TaxTotal, &o.GrandTotal,
		&lat, &lng, &o.Notes, &status, &o.ReservationToken,
		&o.CreatedAt, &o.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, order.ErrNotFound
		}
		return nil, errors.Wrapf(err, "select order %q", id)
	}
	o.Status = order.Status(status)
	if lat != nil && lng != nil {
		o.DeliveryPoint = &catalog.Point{Lat: *lat, Lng: *lng}
	}

	if o.Lines, err = r.lines(ctx, id); err != nil {
		return nil, err
	}
	if o.Promotions, err = r.promotions(ctx, id); err != nil {
		return nil, err
	}
	return &o, nil
}

func (r *OrderRepository) lines(ctx context.Context, orderID string) ([]order.Line, error) {
	rows, err := r.pool.Query(ctx, selectLinesSQL, orderID)
	if err != nil {
		return nil, errors.Wrapf(err, "select lines for order %q", orderID)
	}
	defer rows.Close()

	var lines []order.Line
	for rows.Next() {
		var ln order.Line
		err := rows.Scan(
			&ln.ID, &ln.OrderID, &ln.ProductID, &ln.SKU, &ln.Name, &ln.Quantity, &ln.Unit,
			&ln.ListPrice, &ln.FinalPrice, &ln.PromotionID, &ln.DiscountReason,
		)
		if err != nil {
			return nil, errors.Wrap(err, "scan line")
		}
		lines = append(lines, ln)
	}
	return lines, rows.Err()
}

func (r *OrderRepository) promotions(ctx context.Context, orderID string) ([]order.AppliedPromotion, error) {
	rows, err := r.pool.Query(ctx, selectPromotionsSQL, orderID)
	if err != nil {
		return nil, errors.Wrapf(err, "select promotions for order %q", orderID)
	}
	defer rows.Close()

	var promos []order.AppliedPromotion
	for rows.Next() {
		var p order.AppliedPromotion
		err := rows.Scan(
			&p.OrderID, &p.OrderLineID, &p.CampaignID, &p.DiscountType, &p.DiscountValue, &p.AppliedAmount,
		)
		if err != nil {
			return nil, errors.Wrap(err, "scan applied promotion")
		}
		promos = append(promos, p)
	}
	return promos, rows.Err()
}

// UpdateStatus moves the order to next and appends the history row in one
// transaction. The update is guarded on hist.Previous still being the
// current status, so a lost race surfaces as order.ErrStatusConflict rather
// than a silent double transition.
func (r *OrderRepository) UpdateStatus(ctx context.Context, id string, next order.Status, hist *order.StatusHistory) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return errors.Wrap(err, "begin")
	}
	defer tx.Rollback(ctx) //nolint:errcheck // rollback after commit is a no-op

	tag, err := tx.Exec(ctx, updateStatusSQL, id, string(next), hist.CreatedAt, string(hist.Previous))
	if err != nil {
		return errors.Wrapf(err, "update status of order %q", id)
	}
	if tag.RowsAffected() == 0 {
		// Either the order is gone or its status moved under us.
		var exists bool
		if err := tx.QueryRow(ctx, `SELECT EXISTS (SELECT 1 FROM orders WHERE id = $1)`, id).Scan(&exists); err != nil {
			return errors.Wrapf(err, "check order %q", id)
		}
		if !exists {
			return order.ErrNotFound
		}
		return order.ErrStatusConflict
	}

	_, err = tx.Exec(ctx, insertHistorySQL,
		hist.OrderID, string(hist.Previous), string(hist.Next), hist.ActorID, hist.Comment, hist.CreatedAt,
	)
	if err != nil {
		return errors.Wrapf(err, "insert status history for order %q", id)
	}

	if err := tx.Commit(ctx); err != nil {
		return errors.Wrap(err, "commit")
	}
	return nil
}
