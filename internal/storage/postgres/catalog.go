package postgres

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/carmarket/orders/internal/domain"
)

type CatalogRepository struct {
	pool *pgxpool.Pool
}

func NewCatalogRepository(pool *pgxpool.Pool) *CatalogRepository {
	return &CatalogRepository{pool: pool}
}

const productColumns = `id, name, description, price, category, location, image_url, seller_id, stock, featured, created_at, updated_at`

func (r *CatalogRepository) GetByID(ctx context.Context, id string) (*domain.Product, error) {
	row := r.pool.QueryRow(ctx, `
		SELECT `+productColumns+`
		FROM products
		WHERE id = $1 AND deleted = false
		`, id)
	p, err := scanProduct(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, domain.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return p, nil
}

func (r *CatalogRepository) GetByIDs(ctx context.Context, ids []string) ([]domain.Product, error) {
	return r.query(ctx, `
		SELECT `+productColumns+`
		FROM products
		WHERE id = ANY($1) AND deleted = false
		`, ids)
}

func (r *CatalogRepository) List(ctx context.Context) ([]domain.Product, error) {
	return r.query(ctx, `
		SELECT `+productColumns+`
		FROM products
		WHERE deleted = false
		ORDER BY created_at DESC
		`)
}

func (r *CatalogRepository) Featured(ctx context.Context) ([]domain.Product, error) {
	return r.query(ctx, `
		SELECT `+productColumns+`
		FROM products
		WHERE deleted = false AND featured
		ORDER BY created_at DESC
		`)
}

func (r *CatalogRepository) BySeller(ctx context.Context, sellerID string) ([]domain.Product, error) {
	return r.query(ctx, `
		SELECT `+productColumns+`
		FROM products
		WHERE deleted = false AND seller_id = $1
		ORDER BY created_at DESC
		`, sellerID)
}

func (r *CatalogRepository) query(ctx context.Context, sql string, args ...any) ([]domain.Product, error) {
	rows, err := r.pool.Query(ctx, sql, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []domain.Product
	for rows.Next() {
		p, err := scanProduct(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *p)
	}
	return out, rows.Err()
}

func scanProduct(row pgx.Row) (*domain.Product, error) {
	var p domain.Product
	err := row.Scan(&p.ID, &p.Name, &p.Description, &p.Price, &p.Category, &p.Location,
		&p.ImageURL, &p.SellerID, &p.Stock, &p.Featured, &p.CreatedAt, &p.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &p, nil
}
