package order_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/gofrs/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/vasiliy-maslov/pedido-service/internal/order"
	"github.com/vasiliy-maslov/pedido-service/internal/product"
)

type mockOrderRepository struct {
	createFunc       func(ctx context.Context, o *order.Order) error
	getByIDFunc      func(ctx context.Context, id uuid.UUID) (*order.Order, error)
	findAllFunc      func(ctx context.Context) ([]order.Order, error)
	findFilteredFunc func(ctx context.Context, f order.Filter) ([]order.Order, error)
	updateFunc       func(ctx context.Context, o *order.Order) error
	updateStatusFunc func(ctx context.Context, id uuid.UUID, status order.Status) error
}

func (m *mockOrderRepository) Create(ctx context.Context, o *order.Order) error {
	return m.createFunc(ctx, o)
}

func (m *mockOrderRepository) GetByID(ctx context.Context, id uuid.UUID) (*order.Order, error) {
	return m.getByIDFunc(ctx, id)
}

func (m *mockOrderRepository) FindAll(ctx context.Context) ([]order.Order, error) {
	return m.findAllFunc(ctx)
}

func (m *mockOrderRepository) FindFiltered(ctx context.Context, f order.Filter) ([]order.Order, error) {
	return m.findFilteredFunc(ctx, f)
}

func (m *mockOrderRepository) Update(ctx context.Context, o *order.Order) error {
	return m.updateFunc(ctx, o)
}

func (m *mockOrderRepository) UpdateStatus(ctx context.Context, id uuid.UUID, status order.Status) error {
	return m.updateStatusFunc(ctx, id, status)
}

func okRepo() *mockOrderRepository {
	return &mockOrderRepository{
		createFunc:       func(ctx context.Context, o *order.Order) error { return nil },
		getByIDFunc:      func(ctx context.Context, id uuid.UUID) (*order.Order, error) { return nil, order.ErrOrderNotFound },
		findAllFunc:      func(ctx context.Context) ([]order.Order, error) { return []order.Order{}, nil },
		findFilteredFunc: func(ctx context.Context, f order.Filter) ([]order.Order, error) { return []order.Order{}, nil },
		updateFunc:       func(ctx context.Context, o *order.Order) error { return nil },
		updateStatusFunc: func(ctx context.Context, id uuid.UUID, status order.Status) error { return nil },
	}
}

// fakeStock mirrors the product service's reservation rules against an
// in-memory stock ledger, so tests can assert net stock movements.
type fakeStock struct {
	products map[uuid.UUID]*product.Product
}

func newFakeStock(products ...*product.Product) *fakeStock {
	f := &fakeStock{products: make(map[uuid.UUID]*product.Product)}
	for _, p := range products {
		f.products[p.ID] = p
	}
	return f
}

func (f *fakeStock) Reserve(ctx context.Context, productID uuid.UUID, quantity int) (*product.Product, error) {
	p, ok := f.products[productID]
	if !ok {
		return nil, product.ErrProductNotFound
	}
	if p.Disabled() {
		return nil, product.ErrProductDisabled
	}
	if p.QuantityStock < quantity {
		return nil, product.ErrInsufficientStock
	}
	p.QuantityStock -= quantity
	snapshot := *p
	return &snapshot, nil
}

func (f *fakeStock) Release(ctx context.Context, productID uuid.UUID, quantity int) error {
	if p, ok := f.products[productID]; ok {
		p.QuantityStock += quantity
	}
	return nil
}

func mustUUID(t *testing.T) uuid.UUID {
	t.Helper()
	id, err := uuid.NewV4()
	assert.NoError(t, err)
	return id
}

func activeProduct(t *testing.T, description, price string, stock int) *product.Product {
	t.Helper()
	return &product.Product{
		ID:            mustUUID(t),
		Description:   description,
		Price:         decimal.RequireFromString(price),
		Category:      "test",
		QuantityStock: stock,
		Status:        product.StatusActive,
	}
}

func TestOrderService_CreateOrder(t *testing.T) {
	ctx := context.Background()

	t.Run("success", func(t *testing.T) {
		productA := activeProduct(t, "Keyboard", "50.00", 10)
		stock := newFakeStock(productA)

		var saved *order.Order
		repo := okRepo()
		repo.createFunc = func(ctx context.Context, o *order.Order) error {
			saved = o
			return nil
		}

		svc := order.NewService(repo, stock)
		o, err := svc.CreateOrder(ctx, order.CreateInput{
			Items:         []order.ItemInput{{ProductID: productA.ID, Quantity: 3}},
			PaymentMethod: order.PaymentPix,
			Discount:      10,
			ShippingFee:   decimal.RequireFromString("5.00"),
		})

		assert.NoError(t, err)
		assert.Equal(t, order.StatusPending, o.Status)
		assert.False(t, o.DateCreated.IsZero())
		assert.True(t, o.TotalPrice.Equal(decimal.RequireFromString("140.00")), "total was %s", o.TotalPrice)
		assert.Equal(t, 7, productA.QuantityStock)
		if assert.Len(t, o.Items, 1) {
			assert.True(t, o.Items[0].UnitaryPrice.Equal(decimal.RequireFromString("50.00")))
			assert.Equal(t, 3, o.Items[0].Quantity)
		}
		assert.Same(t, o, saved)
	})

	t.Run("no_items", func(t *testing.T) {
		svc := order.NewService(okRepo(), newFakeStock())
		_, err := svc.CreateOrder(ctx, order.CreateInput{PaymentMethod: order.PaymentPix})
		assert.ErrorIs(t, err, order.ErrNoItems)
	})

	t.Run("insufficient_stock_leaves_stock_unchanged", func(t *testing.T) {
		productA := activeProduct(t, "Mouse", "20.00", 1)
		stock := newFakeStock(productA)

		svc := order.NewService(okRepo(), stock)
		_, err := svc.CreateOrder(ctx, order.CreateInput{
			Items:         []order.ItemInput{{ProductID: productA.ID, Quantity: 2}},
			PaymentMethod: order.PaymentCreditCard,
		})

		assert.ErrorIs(t, err, product.ErrInsufficientStock)
		assert.Equal(t, 1, productA.QuantityStock)
	})

	t.Run("partial_failure_releases_earlier_reservations", func(t *testing.T) {
		productA := activeProduct(t, "Monitor", "900.00", 5)
		productB := activeProduct(t, "Cable", "9.90", 0)
		stock := newFakeStock(productA, productB)

		svc := order.NewService(okRepo(), stock)
		_, err := svc.CreateOrder(ctx, order.CreateInput{
			Items: []order.ItemInput{
				{ProductID: productA.ID, Quantity: 2},
				{ProductID: productB.ID, Quantity: 1},
			},
			PaymentMethod: order.PaymentBoleto,
		})

		assert.ErrorIs(t, err, product.ErrInsufficientStock)
		assert.Equal(t, 5, productA.QuantityStock)
		assert.Equal(t, 0, productB.QuantityStock)
	})

	t.Run("disabled_product", func(t *testing.T) {
		productA := activeProduct(t, "Webcam", "120.00", 3)
		productA.Status = product.StatusDisabled
		stock := newFakeStock(productA)

		svc := order.NewService(okRepo(), stock)
		_, err := svc.CreateOrder(ctx, order.CreateInput{
			Items:         []order.ItemInput{{ProductID: productA.ID, Quantity: 1}},
			PaymentMethod: order.PaymentPix,
		})

		assert.ErrorIs(t, err, product.ErrProductDisabled)
		assert.Equal(t, 3, productA.QuantityStock)
	})

	t.Run("repository_failure_releases_reservations", func(t *testing.T) {
		productA := activeProduct(t, "Desk", "310.00", 4)
		stock := newFakeStock(productA)

		repo := okRepo()
		repo.createFunc = func(ctx context.Context, o *order.Order) error {
			return errors.New("connection reset")
		}

		svc := order.NewService(repo, stock)
		_, err := svc.CreateOrder(ctx, order.CreateInput{
			Items:         []order.ItemInput{{ProductID: productA.ID, Quantity: 2}},
			PaymentMethod: order.PaymentDebitCard,
		})

		assert.Error(t, err)
		assert.Equal(t, 4, productA.QuantityStock)
	})
}

func TestOrderService_CancelOrder(t *testing.T) {
	ctx := context.Background()

	t.Run("releases_stock_and_cancels", func(t *testing.T) {
		productA := activeProduct(t, "Chair", "10.00", 8)
		stock := newFakeStock(productA)
		orderID := mustUUID(t)

		existing := &order.Order{
			ID:     orderID,
			Status: order.StatusPending,
			Items:  []order.OrderedItem{{ProductID: productA.ID, Quantity: 2, UnitaryPrice: productA.Price}},
		}

		var statusSet order.Status
		repo := okRepo()
		repo.getByIDFunc = func(ctx context.Context, id uuid.UUID) (*order.Order, error) { return existing, nil }
		repo.updateStatusFunc = func(ctx context.Context, id uuid.UUID, status order.Status) error {
			statusSet = status
			return nil
		}

		svc := order.NewService(repo, stock)
		o, err := svc.CancelOrder(ctx, orderID)

		assert.NoError(t, err)
		assert.Equal(t, order.StatusCancelled, o.Status)
		assert.Equal(t, order.StatusCancelled, statusSet)
		assert.Equal(t, 10, productA.QuantityStock)
	})

	t.Run("second_cancel_fails", func(t *testing.T) {
		productA := activeProduct(t, "Lamp", "25.00", 10)
		stock := newFakeStock(productA)

		existing := &order.Order{
			ID:     mustUUID(t),
			Status: order.StatusCancelled,
			Items:  []order.OrderedItem{{ProductID: productA.ID, Quantity: 2}},
		}

		repo := okRepo()
		repo.getByIDFunc = func(ctx context.Context, id uuid.UUID) (*order.Order, error) { return existing, nil }

		svc := order.NewService(repo, stock)
		_, err := svc.CancelOrder(ctx, existing.ID)

		assert.ErrorIs(t, err, order.ErrOrderNotPending)
		assert.Equal(t, 10, productA.QuantityStock)
	})

	t.Run("non_pending_rejected", func(t *testing.T) {
		repo := okRepo()
		repo.getByIDFunc = func(ctx context.Context, id uuid.UUID) (*order.Order, error) {
			return &order.Order{ID: id, Status: order.StatusShipped}, nil
		}

		svc := order.NewService(repo, newFakeStock())
		_, err := svc.CancelOrder(ctx, mustUUID(t))
		assert.ErrorIs(t, err, order.ErrOrderNotPending)
	})

	t.Run("not_found", func(t *testing.T) {
		svc := order.NewService(okRepo(), newFakeStock())
		_, err := svc.CancelOrder(ctx, mustUUID(t))
		assert.ErrorIs(t, err, order.ErrOrderNotFound)
	})
}

func TestOrderService_UpdateOrder(t *testing.T) {
	ctx := context.Background()

	// Existing order holds 3 units of A; A's stock already excludes them.
	setup := func(t *testing.T) (*product.Product, *product.Product, *order.Order, *fakeStock) {
		productA := activeProduct(t, "Headset", "50.00", 7)
		productB := activeProduct(t, "Hub", "30.00", 4)
		existing := &order.Order{
			ID:            mustUUID(t),
			Status:        order.StatusPending,
			PaymentMethod: order.PaymentPix,
			Discount:      10,
			ShippingFee:   decimal.RequireFromString("5.00"),
			Items:         []order.OrderedItem{{ProductID: productA.ID, Quantity: 3, UnitaryPrice: productA.Price}},
			TotalPrice:    decimal.RequireFromString("140.00"),
			DateCreated:   time.Date(2025, 4, 16, 12, 0, 0, 0, time.UTC),
		}
		return productA, productB, existing, newFakeStock(productA, productB)
	}

	t.Run("replaces_items_wholesale", func(t *testing.T) {
		productA, productB, existing, stock := setup(t)

		var saved *order.Order
		repo := okRepo()
		repo.getByIDFunc = func(ctx context.Context, id uuid.UUID) (*order.Order, error) { return existing, nil }
		repo.updateFunc = func(ctx context.Context, o *order.Order) error {
			saved = o
			return nil
		}

		svc := order.NewService(repo, stock)
		o, err := svc.UpdateOrder(ctx, existing.ID, order.UpdateInput{
			Items:       []order.ItemInput{{ProductID: productB.ID, Quantity: 2}},
			Status:      order.StatusConfirmed,
			Discount:    0,
			ShippingFee: decimal.Zero,
		})

		assert.NoError(t, err)
		assert.Same(t, o, saved)
		assert.Equal(t, order.StatusConfirmed, o.Status)
		if assert.Len(t, o.Items, 1) {
			assert.Equal(t, productB.ID, o.Items[0].ProductID)
			assert.Equal(t, 2, o.Items[0].Quantity)
			assert.True(t, o.Items[0].UnitaryPrice.Equal(decimal.RequireFromString("30.00")))
		}
		assert.True(t, o.TotalPrice.Equal(decimal.RequireFromString("60.00")), "total was %s", o.TotalPrice)
		// Old reservation returned, new one taken.
		assert.Equal(t, 10, productA.QuantityStock)
		assert.Equal(t, 2, productB.QuantityStock)
	})

	t.Run("cancelled_order_rejected", func(t *testing.T) {
		_, productB, existing, stock := setup(t)
		existing.Status = order.StatusCancelled

		repo := okRepo()
		repo.getByIDFunc = func(ctx context.Context, id uuid.UUID) (*order.Order, error) { return existing, nil }

		svc := order.NewService(repo, stock)
		_, err := svc.UpdateOrder(ctx, existing.ID, order.UpdateInput{
			Items:  []order.ItemInput{{ProductID: productB.ID, Quantity: 1}},
			Status: order.StatusConfirmed,
		})
		assert.ErrorIs(t, err, order.ErrOrderCancelled)
	})

	t.Run("reservation_failure_restores_old_items", func(t *testing.T) {
		productA, productB, existing, stock := setup(t)

		repo := okRepo()
		repo.getByIDFunc = func(ctx context.Context, id uuid.UUID) (*order.Order, error) { return existing, nil }

		svc := order.NewService(repo, stock)
		_, err := svc.UpdateOrder(ctx, existing.ID, order.UpdateInput{
			Items:  []order.ItemInput{{ProductID: productB.ID, Quantity: 99}},
			Status: order.StatusPending,
		})

		assert.ErrorIs(t, err, product.ErrInsufficientStock)
		assert.Equal(t, 7, productA.QuantityStock)
		assert.Equal(t, 4, productB.QuantityStock)
	})

	t.Run("repository_failure_restores_stock", func(t *testing.T) {
		productA, productB, existing, stock := setup(t)

		repo := okRepo()
		repo.getByIDFunc = func(ctx context.Context, id uuid.UUID) (*order.Order, error) { return existing, nil }
		repo.updateFunc = func(ctx context.Context, o *order.Order) error {
			return errors.New("connection reset")
		}

		svc := order.NewService(repo, stock)
		_, err := svc.UpdateOrder(ctx, existing.ID, order.UpdateInput{
			Items:  []order.ItemInput{{ProductID: productB.ID, Quantity: 2}},
			Status: order.StatusPending,
		})

		assert.Error(t, err)
		assert.Equal(t, 7, productA.QuantityStock)
		assert.Equal(t, 4, productB.QuantityStock)
	})
}

func TestOrderService_SearchOrders(t *testing.T) {
	ctx := context.Background()

	t.Run("passes_filter_through", func(t *testing.T) {
		minTotal := decimal.RequireFromString("100")

		var got order.Filter
		repo := okRepo()
		repo.findFilteredFunc = func(ctx context.Context, f order.Filter) ([]order.Order, error) {
			got = f
			return []order.Order{}, nil
		}

		svc := order.NewService(repo, newFakeStock())
		_, err := svc.SearchOrders(ctx, order.Filter{MinTotal: &minTotal})

		assert.NoError(t, err)
		assert.Nil(t, got.Status)
		assert.Nil(t, got.MaxTotal)
		if assert.NotNil(t, got.MinTotal) {
			assert.True(t, got.MinTotal.Equal(minTotal))
		}
	})

	t.Run("invalid_status", func(t *testing.T) {
		status := order.Status("UNKNOWN")
		svc := order.NewService(okRepo(), newFakeStock())
		_, err := svc.SearchOrders(ctx, order.Filter{Status: &status})
		assert.Error(t, err)
	})
}
