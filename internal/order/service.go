package order

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/gofrs/uuid"
	"github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"
	"github.com/vasiliy-maslov/pedido-service/internal/product"
)

var (
	ErrOrderNotPending = errors.New("only PENDING orders can be cancelled")
	ErrOrderCancelled  = errors.New("cannot update a CANCELLED order")
	ErrNoItems         = errors.New("order must contain at least one item")
)

// Stock is the slice of the product service the order lifecycle needs:
// taking units off a product's stock and putting them back.
type Stock interface {
	Reserve(ctx context.Context, productID uuid.UUID, quantity int) (*product.Product, error)
	Release(ctx context.Context, productID uuid.UUID, quantity int) error
}

type Service interface {
	CreateOrder(ctx context.Context, input CreateInput) (*Order, error)
	GetOrderByID(ctx context.Context, id uuid.UUID) (*Order, error)
	ListOrders(ctx context.Context) ([]Order, error)
	SearchOrders(ctx context.Context, f Filter) ([]Order, error)
	UpdateOrder(ctx context.Context, id uuid.UUID, input UpdateInput) (*Order, error)
	CancelOrder(ctx context.Context, id uuid.UUID) (*Order, error)
}

type service struct {
	orderRepo Repository
	stock     Stock
}

func NewService(orderRepo Repository, stock Stock) Service {
	return &service{orderRepo: orderRepo, stock: stock}
}

// reserveItems reserves stock for every requested item and builds the line
// items with the product price snapshotted at this moment. Reservation is
// all-or-nothing: on any failure everything reserved so far is released
// before the error is returned.
func (s *service) reserveItems(ctx context.Context, inputs []ItemInput) ([]OrderedItem, error) {
	items := make([]OrderedItem, 0, len(inputs))

	for _, in := range inputs {
		p, err := s.stock.Reserve(ctx, in.ProductID, in.Quantity)
		if err != nil {
			s.releaseItems(ctx, items)
			return nil, err
		}

		items = append(items, OrderedItem{
			ProductID:          p.ID,
			Quantity:           in.Quantity,
			UnitaryPrice:       p.Price,
			ProductDescription: p.Description,
			ProductPrice:       p.Price,
		})
	}

	return items, nil
}

func (s *service) releaseItems(ctx context.Context, items []OrderedItem) {
	for _, item := range items {
		if err := s.stock.Release(ctx, item.ProductID, item.Quantity); err != nil {
			log.Error().Err(err).
				Stringer("product_id", item.ProductID).
				Int("quantity", item.Quantity).
				Msg("service: failed to release reserved stock")
		}
	}
}

// restoreItems re-reserves stock for items whose reservation was undone by
// a failed operation. Best effort: a product may have been disabled or
// drained in the meantime, which is logged rather than propagated.
func (s *service) restoreItems(ctx context.Context, items []OrderedItem) {
	for _, item := range items {
		if _, err := s.stock.Reserve(ctx, item.ProductID, item.Quantity); err != nil {
			log.Error().Err(err).
				Stringer("product_id", item.ProductID).
				Int("quantity", item.Quantity).
				Msg("service: failed to restore stock reservation")
		}
	}
}

func validateMoney(discount int, shippingFee decimal.Decimal) error {
	if discount < 0 {
		return errors.New("service: discount must be zero or greater")
	}
	if shippingFee.IsNegative() {
		return errors.New("service: shipping fee must be zero or greater")
	}
	return nil
}

func (s *service) CreateOrder(ctx context.Context, input CreateInput) (*Order, error) {
	if len(input.Items) == 0 {
		log.Warn().Msg("service: attempt to create order with no items")
		return nil, ErrNoItems
	}
	if !input.PaymentMethod.Valid() {
		return nil, fmt.Errorf("service: unknown payment method %q", input.PaymentMethod)
	}
	if err := validateMoney(input.Discount, input.ShippingFee); err != nil {
		return nil, err
	}

	items, err := s.reserveItems(ctx, input.Items)
	if err != nil {
		return nil, err
	}

	o := &Order{
		DateCreated:   time.Now().UTC(),
		Status:        StatusPending,
		Items:         items,
		PaymentMethod: input.PaymentMethod,
		Discount:      input.Discount,
		ShippingFee:   input.ShippingFee,
		TotalPrice:    ComputeTotal(items, input.Discount, input.ShippingFee),
	}

	if err := s.orderRepo.Create(ctx, o); err != nil {
		s.releaseItems(ctx, items)
		log.Error().Err(err).Msg("service: failed to create order in repository")
		return nil, fmt.Errorf("service: failed to create order: %w", err)
	}

	log.Info().Stringer("order_id", o.ID).Str("total_price", o.TotalPrice.String()).Msg("service: order created")
	return o, nil
}

func (s *service) GetOrderByID(ctx context.Context, id uuid.UUID) (*Order, error) {
	o, err := s.orderRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, ErrOrderNotFound) {
			return nil, ErrOrderNotFound
		}
		return nil, fmt.Errorf("service: failed to fetch order by id: %w", err)
	}
	return o, nil
}

func (s *service) ListOrders(ctx context.Context) ([]Order, error) {
	orders, err := s.orderRepo.FindAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("service: failed to fetch orders: %w", err)
	}
	return orders, nil
}

func (s *service) SearchOrders(ctx context.Context, f Filter) ([]Order, error) {
	if f.Status != nil && !f.Status.Valid() {
		return nil, fmt.Errorf("service: unknown order status %q", *f.Status)
	}

	orders, err := s.orderRepo.FindFiltered(ctx, f)
	if err != nil {
		return nil, fmt.Errorf("service: failed to search orders: %w", err)
	}
	return orders, nil
}

// CancelOrder releases the stock held by a PENDING order and marks it
// CANCELLED. CANCELLED is terminal, the total stays frozen.
func (s *service) CancelOrder(ctx context.Context, id uuid.UUID) (*Order, error) {
	o, err := s.orderRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if o.Status != StatusPending {
		log.Warn().Stringer("order_id", id).Stringer("status", o.Status).Msg("service: cancel rejected for non-pending order")
		return nil, ErrOrderNotPending
	}

	s.releaseItems(ctx, o.Items)

	if err := s.orderRepo.UpdateStatus(ctx, id, StatusCancelled); err != nil {
		return nil, fmt.Errorf("service: failed to cancel order: %w", err)
	}
	o.Status = StatusCancelled

	log.Info().Stringer("order_id", id).Msg("service: order cancelled")
	return o, nil
}

// UpdateOrder replaces the order's item list wholesale. The old items'
// stock is released, the new items are reserved with freshly snapshotted
// prices, and the total is recomputed. If the new reservation or the write
// fails, the released stock is taken back so the ledger nets to the state
// before the call.
func (s *service) UpdateOrder(ctx context.Context, id uuid.UUID, input UpdateInput) (*Order, error) {
	o, err := s.orderRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if o.Status == StatusCancelled {
		log.Warn().Stringer("order_id", id).Msg("service: update rejected for cancelled order")
		return nil, ErrOrderCancelled
	}

	if len(input.Items) == 0 {
		return nil, ErrNoItems
	}
	if !input.Status.Valid() {
		return nil, fmt.Errorf("service: unknown order status %q", input.Status)
	}
	if err := validateMoney(input.Discount, input.ShippingFee); err != nil {
		return nil, err
	}

	oldItems := o.Items

	s.releaseItems(ctx, oldItems)

	newItems, err := s.reserveItems(ctx, input.Items)
	if err != nil {
		s.restoreItems(ctx, oldItems)
		return nil, err
	}

	o.Status = input.Status
	o.Discount = input.Discount
	o.ShippingFee = input.ShippingFee
	o.Items = newItems
	o.TotalPrice = ComputeTotal(newItems, input.Discount, input.ShippingFee)

	if err := s.orderRepo.Update(ctx, o); err != nil {
		s.releaseItems(ctx, newItems)
		s.restoreItems(ctx, oldItems)
		log.Error().Err(err).Stringer("order_id", id).Msg("service: failed to update order in repository")
		return nil, fmt.Errorf("service: failed to update order: %w", err)
	}

	log.Info().Stringer("order_id", id).Stringer("status", o.Status).Str("total_price", o.TotalPrice.String()).Msg("service: order updated")
	return o, nil
}
