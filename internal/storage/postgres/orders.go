package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/carmarket/orders/internal/domain"
)

type OrderRepository struct {
	pool *pgxpool.Pool
}

func NewOrderRepository(pool *pgxpool.Pool) *OrderRepository {
	return &OrderRepository{pool: pool}
}

// Create commits the stock decrements and the order insert in one
// transaction. Each decrement is conditional on the stock still covering
// the quantity at write time; when the condition fails the whole
// transaction rolls back and the caller gets a StockError, so two
// concurrent orders for the last unit can never both succeed.
func (r *OrderRepository) Create(ctx context.Context, o *domain.Order) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	for _, it := range o.Items {
		ct, err := tx.Exec(ctx, `
			UPDATE products
			SET stock = stock - $2, updated_at = now()
			WHERE id = $1 AND deleted = false AND stock >= $2
			`, it.ProductID, it.Quantity)
		if err != nil {
			return err
		}
		if ct.RowsAffected() == 0 {
			return stockConflict(ctx, tx, it)
		}
	}

	_, err = tx.Exec(ctx, `
		INSERT INTO orders (id, buyer_id, total_price, status, shipping_address, created_at)
		VALUES ($1, $2, $3, $4, $5, $6)
		`, o.ID, o.BuyerID, o.TotalPrice, o.Status, o.ShippingAddress, o.CreatedAt)
	if err != nil {
		return err
	}

	for _, it := range o.Items {
		_, err = tx.Exec(ctx, `
			INSERT INTO order_items (order_id, product_id, quantity, price)
			VALUES ($1, $2, $3, $4)
			`, o.ID, it.ProductID, it.Quantity, it.Price)
		if err != nil {
			return err
		}
	}

	return tx.Commit(ctx)
}

// stockConflict turns a failed conditional decrement into the domain
// error, re-reading current stock for the client message.
func stockConflict(ctx context.Context, tx pgx.Tx, it domain.LineItem) error {
	var stock int
	err := tx.QueryRow(ctx, `
		SELECT stock FROM products WHERE id = $1 AND deleted = false
		`, it.ProductID).Scan(&stock)
	if errors.Is(err, pgx.ErrNoRows) {
		return fmt.Errorf("%w: product %s", domain.ErrProductUnavailable, it.ProductID)
	}
	if err != nil {
		return err
	}
	return &domain.StockError{ProductID: it.ProductID, Requested: it.Quantity, Available: stock}
}

func (r *OrderRepository) GetByID(ctx context.Context, id string) (*domain.OrderView, error) {
	var v domain.OrderView
	err := r.pool.QueryRow(ctx, `
		SELECT o.id, o.total_price, o.status, o.shipping_address, o.created_at,
		       u.id, u.name, u.email
		FROM orders o
		JOIN users u ON u.id = o.buyer_id
		WHERE o.id = $1 AND o.deleted = false
		`, id).Scan(&v.ID, &v.TotalPrice, &v.Status, &v.ShippingAddress, &v.CreatedAt,
		&v.Buyer.ID, &v.Buyer.Name, &v.Buyer.Email)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, domain.ErrNotFound
	}
	if err != nil {
		return nil, err
	}

	// Soft-deleted products still show on old orders; the line snapshot
	// outlives the catalog record.
	rows, err := r.pool.Query(ctx, `
		SELECT i.quantity, i.price,
		       p.id, p.name, p.price, p.image_url, p.description,
		       s.id, s.name, s.email
		FROM order_items i
		JOIN products p ON p.id = i.product_id
		JOIN users s ON s.id = p.seller_id
		WHERE i.order_id = $1
		`, id)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	for rows.Next() {
		var line domain.OrderLine
		if err := rows.Scan(&line.Quantity, &line.Price,
			&line.Product.ID, &line.Product.Name, &line.Product.Price,
			&line.Product.ImageURL, &line.Product.Description,
			&line.Product.Seller.ID, &line.Product.Seller.Name, &line.Product.Seller.Email); err != nil {
			return nil, err
		}
		v.Products = append(v.Products, line)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return &v, nil
}

func (r *OrderRepository) List(ctx context.Context) ([]domain.OrderView, error) {
	return r.views(ctx, `
		SELECT id FROM orders
		WHERE deleted = false
		ORDER BY created_at DESC
		`)
}

func (r *OrderRepository) ByBuyer(ctx context.Context, buyerID string) ([]domain.OrderView, error) {
	return r.views(ctx, `
		SELECT id FROM orders
		WHERE deleted = false AND buyer_id = $1
		ORDER BY created_at DESC
		`, buyerID)
}

func (r *OrderRepository) BySeller(ctx context.Context, sellerID string) ([]domain.OrderView, error) {
	return r.views(ctx, `
		SELECT DISTINCT o.id, o.created_at
		FROM orders o
		JOIN order_items i ON i.order_id = o.id
		JOIN products p ON p.id = i.product_id
		WHERE o.deleted = false AND p.seller_id = $1
		ORDER BY o.created_at DESC
		`, sellerID)
}

func (r *OrderRepository) UpdateStatus(ctx context.Context, id string, status domain.Status) error {
	ct, err := r.pool.Exec(ctx, `
		UPDATE orders SET status = $2
		WHERE id = $1 AND deleted = false
		`, id, status)
	if err != nil {
		return err
	}
	if ct.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func (r *OrderRepository) views(ctx context.Context, sql string, args ...any) ([]domain.OrderView, error) {
	rows, err := r.pool.Query(ctx, sql, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var ids []string
	for rows.Next() {
		var (
			id string
			ts time.Time
		)
		dest := []any{&id}
		if len(rows.FieldDescriptions()) == 2 {
			dest = append(dest, &ts)
		}
		if err := rows.Scan(dest...); err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	rows.Close()

	out := make([]domain.OrderView, 0, len(ids))
	for _, id := range ids {
		v, err := r.GetByID(ctx, id)
		if err != nil {
			return nil, err
		}
		out = append(out, *v)
	}
	return out, nil
}
