package product

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/gofrs/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog/log"
	"github.com/vasiliy-maslov/pedido-service/internal/db"
)

var (
	ErrProductNotFound      = errors.New("product not found")
	ErrProductDisabled      = errors.New("product is disabled and cannot be ordered")
	ErrInsufficientStock    = errors.New("insufficient stock for product")
	ErrDuplicateDescription = errors.New("product with this description already exists")
)

type Repository interface {
	Create(ctx context.Context, p *Product) error
	GetByID(ctx context.Context, id uuid.UUID) (*Product, error)
	GetByDescription(ctx context.Context, description string) (*Product, error)
	Update(ctx context.Context, p *Product) error
	FindAll(ctx context.Context) ([]Product, error)
	FindFiltered(ctx context.Context, f Filter) ([]Product, error)
	ReserveStock(ctx context.Context, id uuid.UUID, quantity int) (*Product, error)
	ReleaseStock(ctx context.Context, id uuid.UUID, quantity int) error
}

type postgresRepository struct {
	db *pgxpool.Pool
}

func NewRepository(db *pgxpool.Pool) Repository {
	return &postgresRepository{db: db}
}

const productColumns = "id, description, price, category, quantity_stock, status, created_at, updated_at"

func scanProduct(row pgx.Row) (*Product, error) {
	var p Product
	err := row.Scan(
		&p.ID,
		&p.Description,
		&p.Price,
		&p.Category,
		&p.QuantityStock,
		&p.Status,
		&p.CreatedAt,
		&p.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &p, nil
}

func (r *postgresRepository) Create(ctx context.Context, p *Product) error {
	if p.ID == uuid.Nil {
		id, err := uuid.NewV4()
		if err != nil {
			return fmt.Errorf("repository: failed to generate product ID: %w", err)
		}
		p.ID = id
	}

	now := time.Now().UTC()
	p.CreatedAt = now
	p.UpdatedAt = now

	query := `
		INSERT INTO products (id, description, price, category, quantity_stock, status, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`
	_, err := r.db.Exec(ctx, query,
		p.ID,
		p.Description,
		p.Price,
		p.Category,
		p.QuantityStock,
		string(p.Status),
		p.CreatedAt,
		p.UpdatedAt,
	)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return ErrDuplicateDescription
		}
		return fmt.Errorf("repository: failed to insert product: %w", err)
	}

	return nil
}

func (r *postgresRepository) GetByID(ctx context.Context, id uuid.UUID) (*Product, error) {
	query := `SELECT ` + productColumns + ` FROM products WHERE id = $1`

	p, err := scanProduct(r.db.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrProductNotFound
		}
		return nil, fmt.Errorf("repository: failed to select product by id %s: %w", id, err)
	}

	return p, nil
}

func (r *postgresRepository) GetByDescription(ctx context.Context, description string) (*Product, error) {
	query := `SELECT ` + productColumns + ` FROM products WHERE lower(description) = lower($1)`

	p, err := scanProduct(r.db.QueryRow(ctx, query, description))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrProductNotFound
		}
		return nil, fmt.Errorf("repository: failed to select product by description: %w", err)
	}

	return p, nil
}

func (r *postgresRepository) Update(ctx context.Context, p *Product) error {
	query := `
		UPDATE products
		SET description = $1, price = $2, category = $3, quantity_stock = $4, status = $5, updated_at = $6
		WHERE id = $7
	`

	p.UpdatedAt = time.Now().UTC()

	cmdTag, err := r.db.Exec(ctx, query,
		p.Description,
		p.Price,
		p.Category,
		p.QuantityStock,
		string(p.Status),
		p.UpdatedAt,
		p.ID,
	)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return ErrDuplicateDescription
		}
		return fmt.Errorf("repository: failed to update product %s: %w", p.ID, err)
	}

	if cmdTag.RowsAffected() == 0 {
		return ErrProductNotFound
	}

	return nil
}

func (r *postgresRepository) FindAll(ctx context.Context) ([]Product, error) {
	query := `SELECT ` + productColumns + ` FROM products ORDER BY created_at DESC`

	rows, err := r.db.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("repository: failed to query products: %w", err)
	}
	defer rows.Close()

	return collectProducts(rows)
}

func (r *postgresRepository) FindFiltered(ctx context.Context, f Filter) ([]Product, error) {
	var filter db.Filter

	if f.Description != nil {
		filter.Add("description ILIKE $%d", "%"+*f.Description+"%")
	}
	if f.Category != nil {
		filter.Add("lower(category) = lower($%d)", *f.Category)
	}
	if f.MinPrice != nil {
		filter.Add("price >= $%d", *f.MinPrice)
	}
	if f.MaxPrice != nil {
		filter.Add("price <= $%d", *f.MaxPrice)
	}

	query := `SELECT ` + productColumns + ` FROM products` + filter.Clause() + ` ORDER BY created_at DESC`

	rows, err := r.db.Query(ctx, query, filter.Args()...)
	if err != nil {
		return nil, fmt.Errorf("repository: failed to query filtered products: %w", err)
	}
	defer rows.Close()

	return collectProducts(rows)
}

// ReserveStock decrements the product's stock in a single conditional
// update, so concurrent reservations against the same product can never
// oversell. Zero affected rows are classified with a follow-up read.
func (r *postgresRepository) ReserveStock(ctx context.Context, id uuid.UUID, quantity int) (*Product, error) {
	query := `
		UPDATE products
		SET quantity_stock = quantity_stock - $2, updated_at = $3
		WHERE id = $1 AND status = 'ACTIVE' AND quantity_stock >= $2
		RETURNING ` + productColumns

	p, err := scanProduct(r.db.QueryRow(ctx, query, id, quantity, time.Now().UTC()))
	if err == nil {
		return p, nil
	}
	if !errors.Is(err, pgx.ErrNoRows) {
		return nil, fmt.Errorf("repository: failed to reserve stock for product %s: %w", id, err)
	}

	current, getErr := r.GetByID(ctx, id)
	if getErr != nil {
		return nil, getErr
	}
	if current.Disabled() {
		return nil, ErrProductDisabled
	}
	return nil, ErrInsufficientStock
}

func (r *postgresRepository) ReleaseStock(ctx context.Context, id uuid.UUID, quantity int) error {
	query := `
		UPDATE products
		SET quantity_stock = quantity_stock + $2, updated_at = $3
		WHERE id = $1
	`

	cmdTag, err := r.db.Exec(ctx, query, id, quantity, time.Now().UTC())
	if err != nil {
		return fmt.Errorf("repository: failed to release stock for product %s: %w", id, err)
	}

	if cmdTag.RowsAffected() == 0 {
		log.Warn().Stringer("product_id", id).Int("quantity", quantity).Msg("repository: product not found during stock release")
		return ErrProductNotFound
	}

	return nil
}

func collectProducts(rows pgx.Rows) ([]Product, error) {
	products := make([]Product, 0)
	for rows.Next() {
		p, err := scanProduct(rows)
		if err != nil {
			return nil, fmt.Errorf("repository: failed to scan product: %w", err)
		}
		products = append(products, *p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("repository: error iterating products: %w", err)
	}
	return products, nil
}
