package order

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/gofrs/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/vasiliy-maslov/pedido-service/internal/db"
)

var ErrOrderNotFound = errors.New("order not found")

type Repository interface {
	Create(ctx context.Context, o *Order) error
	GetByID(ctx context.Context, id uuid.UUID) (*Order, error)
	FindAll(ctx context.Context) ([]Order, error)
	FindFiltered(ctx context.Context, f Filter) ([]Order, error)
	Update(ctx context.Context, o *Order) error
	UpdateStatus(ctx context.Context, id uuid.UUID, status Status) error
}

type postgresRepository struct {
	db *pgxpool.Pool
}

func NewRepository(db *pgxpool.Pool) Repository {
	return &postgresRepository{db: db}
}

const orderColumns = "id, date_created, status, payment_method, total_price, discount, shipping_fee, updated_at"

// itemColumnsQuery joins products for the read-side denormalization: the
// item keeps its snapshotted unitary price, the product contributes its
// description and current price.
const itemColumnsQuery = `
	SELECT oi.id, oi.order_id, oi.product_id, oi.quantity, oi.unitary_price, p.description, p.price
	FROM order_items oi
	JOIN products p ON p.id = oi.product_id`

func scanItem(row pgx.Row) (OrderedItem, error) {
	var item OrderedItem
	err := row.Scan(
		&item.ID,
		&item.OrderID,
		&item.ProductID,
		&item.Quantity,
		&item.UnitaryPrice,
		&item.ProductDescription,
		&item.ProductPrice,
	)
	return item, err
}

// Create inserts the order and all of its items in one transaction.
func (r *postgresRepository) Create(ctx context.Context, o *Order) error {
	if o.ID == uuid.Nil {
		id, err := uuid.NewV4()
		if err != nil {
			return fmt.Errorf("repository: failed to generate order ID: %w", err)
		}
		o.ID = id
	}
	o.UpdatedAt = o.DateCreated

	tx, err := r.db.Begin(ctx)
	if err != nil {
		return fmt.Errorf("repository: failed to begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	queryOrder := `
		INSERT INTO orders (id, date_created, status, payment_method, total_price, discount, shipping_fee, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`
	_, err = tx.Exec(ctx, queryOrder,
		o.ID,
		o.DateCreated,
		string(o.Status),
		string(o.PaymentMethod),
		o.TotalPrice,
		o.Discount,
		o.ShippingFee,
		o.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("repository: failed to insert order: %w", err)
	}

	if err := insertItems(ctx, tx, o); err != nil {
		return err
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("repository: failed to commit transaction: %w", err)
	}
	return nil
}

func insertItems(ctx context.Context, tx pgx.Tx, o *Order) error {
	queryItem := `
		INSERT INTO order_items (id, order_id, product_id, quantity, unitary_price)
		VALUES ($1, $2, $3, $4, $5)
	`
	for i := range o.Items {
		item := &o.Items[i]

		itemID, err := uuid.NewV4()
		if err != nil {
			return fmt.Errorf("repository: failed to generate order item ID: %w", err)
		}
		item.ID = itemID
		item.OrderID = o.ID

		_, err = tx.Exec(ctx, queryItem,
			item.ID,
			item.OrderID,
			item.ProductID,
			item.Quantity,
			item.UnitaryPrice,
		)
		if err != nil {
			return fmt.Errorf("repository: failed to insert order item for order %s: %w", o.ID, err)
		}
	}
	return nil
}

func (r *postgresRepository) GetByID(ctx context.Context, id uuid.UUID) (*Order, error) {
	query := `SELECT ` + orderColumns + ` FROM orders WHERE id = $1`

	var o Order
	err := r.db.QueryRow(ctx, query, id).Scan(
		&o.ID,
		&o.DateCreated,
		&o.Status,
		&o.PaymentMethod,
		&o.TotalPrice,
		&o.Discount,
		&o.ShippingFee,
		&o.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrOrderNotFound
		}
		return nil, fmt.Errorf("repository: failed to select order by id %s: %w", id, err)
	}

	rows, err := r.db.Query(ctx, itemColumnsQuery+` WHERE oi.order_id = $1`, id)
	if err != nil {
		return nil, fmt.Errorf("repository: failed to query order items for order id %s: %w", id, err)
	}
	defer rows.Close()

	items := make([]OrderedItem, 0)
	for rows.Next() {
		item, err := scanItem(rows)
		if err != nil {
			return nil, fmt.Errorf("repository: failed to scan order item for order id %s: %w", id, err)
		}
		items = append(items, item)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("repository: error iterating order items for order id %s: %w", id, err)
	}

	o.Items = items
	return &o, nil
}

func (r *postgresRepository) FindAll(ctx context.Context) ([]Order, error) {
	query := `SELECT ` + orderColumns + ` FROM orders ORDER BY date_created DESC`
	return r.collectOrdersWithItems(ctx, query)
}

func (r *postgresRepository) FindFiltered(ctx context.Context, f Filter) ([]Order, error) {
	var filter db.Filter

	if f.Status != nil {
		filter.Add("status = $%d", string(*f.Status))
	}
	if f.StartDate != nil {
		filter.Add("date_created >= $%d", *f.StartDate)
	}
	if f.EndDate != nil {
		filter.Add("date_created <= $%d", *f.EndDate)
	}
	if f.MinTotal != nil {
		filter.Add("total_price >= $%d", *f.MinTotal)
	}
	if f.MaxTotal != nil {
		filter.Add("total_price <= $%d", *f.MaxTotal)
	}

	query := `SELECT ` + orderColumns + ` FROM orders` + filter.Clause() + ` ORDER BY date_created DESC`
	return r.collectOrdersWithItems(ctx, query, filter.Args()...)
}

func (r *postgresRepository) collectOrdersWithItems(ctx context.Context, query string, args ...any) ([]Order, error) {
	orderRows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("repository: failed to query orders: %w", err)
	}
	defer orderRows.Close()

	ordersMap := make(map[uuid.UUID]*Order)
	var orderIDs []uuid.UUID

	for orderRows.Next() {
		var o Order
		err := orderRows.Scan(
			&o.ID,
			&o.DateCreated,
			&o.Status,
			&o.PaymentMethod,
			&o.TotalPrice,
			&o.Discount,
			&o.ShippingFee,
			&o.UpdatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("repository: failed to scan order: %w", err)
		}
		o.Items = make([]OrderedItem, 0)
		ordersMap[o.ID] = &o
		orderIDs = append(orderIDs, o.ID)
	}
	if err := orderRows.Err(); err != nil {
		return nil, fmt.Errorf("repository: error iterating orders: %w", err)
	}

	if len(orderIDs) == 0 {
		return []Order{}, nil
	}

	itemRows, err := r.db.Query(ctx, itemColumnsQuery+` WHERE oi.order_id = ANY($1)`, orderIDs)
	if err != nil {
		return nil, fmt.Errorf("repository: failed to query order items: %w", err)
	}
	defer itemRows.Close()

	for itemRows.Next() {
		item, err := scanItem(itemRows)
		if err != nil {
			return nil, fmt.Errorf("repository: failed to scan order item: %w", err)
		}
		if o, ok := ordersMap[item.OrderID]; ok {
			o.Items = append(o.Items, item)
		}
	}
	if err := itemRows.Err(); err != nil {
		return nil, fmt.Errorf("repository: error iterating order items: %w", err)
	}

	orders := make([]Order, 0, len(orderIDs))
	for _, id := range orderIDs {
		orders = append(orders, *ordersMap[id])
	}
	return orders, nil
}

// Update rewrites the order row and replaces its item list wholesale in
// one transaction. Items always belong to exactly one order, so the old
// rows are deleted rather than diffed.
func (r *postgresRepository) Update(ctx context.Context, o *Order) error {
	tx, err := r.db.Begin(ctx)
	if err != nil {
		return fmt.Errorf("repository: failed to begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	o.UpdatedAt = time.Now().UTC()

	queryOrder := `
		UPDATE orders
		SET status = $1, payment_method = $2, total_price = $3, discount = $4, shipping_fee = $5, updated_at = $6
		WHERE id = $7
	`
	cmdTag, err := tx.Exec(ctx, queryOrder,
		string(o.Status),
		string(o.PaymentMethod),
		o.TotalPrice,
		o.Discount,
		o.ShippingFee,
		o.UpdatedAt,
		o.ID,
	)
	if err != nil {
		return fmt.Errorf("repository: failed to update order %s: %w", o.ID, err)
	}
	if cmdTag.RowsAffected() == 0 {
		return ErrOrderNotFound
	}

	if _, err := tx.Exec(ctx, `DELETE FROM order_items WHERE order_id = $1`, o.ID); err != nil {
		return fmt.Errorf("repository: failed to delete order items for order %s: %w", o.ID, err)
	}

	if err := insertItems(ctx, tx, o); err != nil {
		return err
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("repository: failed to commit transaction: %w", err)
	}
	return nil
}

func (r *postgresRepository) UpdateStatus(ctx context.Context, id uuid.UUID, status Status) error {
	query := `
		UPDATE orders
		SET status = $1, updated_at = $2
		WHERE id = $3
	`

	cmdTag, err := r.db.Exec(ctx, query, string(status), time.Now().UTC(), id)
	if err != nil {
		return fmt.Errorf("repository: failed to update order status %s: %w", id, err)
	}
	if cmdTag.RowsAffected() == 0 {
		return ErrOrderNotFound
	}

	return nil
}
