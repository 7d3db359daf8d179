package product

import (
	"context"
	"errors"
	"fmt"

	"github.com/gofrs/uuid"
	"github.com/rs/zerolog/log"
)

type Service interface {
	CreateProduct(ctx context.Context, input *Product) (*Product, error)
	GetProductByID(ctx context.Context, id uuid.UUID) (*Product, error)
	ListProducts(ctx context.Context) ([]Product, error)
	SearchProducts(ctx context.Context, f Filter) ([]Product, error)
	UpdateProduct(ctx context.Context, id uuid.UUID, input *Product) (*Product, error)
	DisableProduct(ctx context.Context, id uuid.UUID) error
	Reserve(ctx context.Context, productID uuid.UUID, quantity int) (*Product, error)
	Release(ctx context.Context, productID uuid.UUID, quantity int) error
}

type service struct {
	repo Repository
}

func NewService(repo Repository) Service {
	return &service{repo: repo}
}

func validateProduct(p *Product) error {
	if p.Description == "" {
		return errors.New("service: description is required")
	}
	if !p.Price.IsPositive() {
		return errors.New("service: price must be greater than zero")
	}
	if p.Category == "" {
		return errors.New("service: category is required")
	}
	if p.QuantityStock < 0 {
		return errors.New("service: quantity in stock cannot be negative")
	}
	return nil
}

func (s *service) CreateProduct(ctx context.Context, input *Product) (*Product, error) {
	if err := validateProduct(input); err != nil {
		return nil, err
	}

	_, err := s.repo.GetByDescription(ctx, input.Description)
	if err == nil {
		return nil, ErrDuplicateDescription
	}
	if !errors.Is(err, ErrProductNotFound) {
		return nil, fmt.Errorf("service: failed to check product description: %w", err)
	}

	input.ID = uuid.Nil
	input.Status = StatusActive

	if err := s.repo.Create(ctx, input); err != nil {
		log.Error().Err(err).Msg("service: failed to create product in repository")
		return nil, err
	}

	log.Info().Stringer("product_id", input.ID).Str("description", input.Description).Msg("service: product created")
	return input, nil
}

func (s *service) GetProductByID(ctx context.Context, id uuid.UUID) (*Product, error) {
	p, err := s.repo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, ErrProductNotFound) {
			return nil, ErrProductNotFound
		}
		return nil, fmt.Errorf("service: failed to fetch product by id: %w", err)
	}
	return p, nil
}

func (s *service) ListProducts(ctx context.Context) ([]Product, error) {
	products, err := s.repo.FindAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("service: failed to fetch products: %w", err)
	}
	return products, nil
}

func (s *service) SearchProducts(ctx context.Context, f Filter) ([]Product, error) {
	products, err := s.repo.FindFiltered(ctx, f)
	if err != nil {
		return nil, fmt.Errorf("service: failed to search products: %w", err)
	}
	return products, nil
}

func (s *service) UpdateProduct(ctx context.Context, id uuid.UUID, input *Product) (*Product, error) {
	if err := validateProduct(input); err != nil {
		return nil, err
	}
	if input.Status != StatusActive && input.Status != StatusDisabled {
		return nil, fmt.Errorf("service: unknown product status %q", input.Status)
	}

	p, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	p.Description = input.Description
	p.Price = input.Price
	p.Category = input.Category
	p.QuantityStock = input.QuantityStock
	p.Status = input.Status

	if err := s.repo.Update(ctx, p); err != nil {
		log.Error().Err(err).Stringer("product_id", id).Msg("service: failed to update product in repository")
		return nil, err
	}

	return p, nil
}

// DisableProduct soft-deletes a product. Disabled products stay readable
// and keep their stock, but can no longer be ordered.
func (s *service) DisableProduct(ctx context.Context, id uuid.UUID) error {
	p, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return err
	}

	p.Status = StatusDisabled

	if err := s.repo.Update(ctx, p); err != nil {
		return fmt.Errorf("service: failed to disable product: %w", err)
	}

	log.Info().Stringer("product_id", id).Msg("service: product disabled")
	return nil
}

// Reserve takes quantity units off the product's stock. It fails without
// touching the stock when the product is missing, disabled, or does not
// have enough units. The returned product carries the price to snapshot.
func (s *service) Reserve(ctx context.Context, productID uuid.UUID, quantity int) (*Product, error) {
	if quantity <= 0 {
		return nil, fmt.Errorf("service: reserve quantity for product %s must be greater than zero", productID)
	}

	p, err := s.repo.ReserveStock(ctx, productID, quantity)
	if err != nil {
		return nil, err
	}

	log.Debug().Stringer("product_id", productID).Int("quantity", quantity).Int("stock_left", p.QuantityStock).Msg("service: stock reserved")
	return p, nil
}

// Release puts quantity units back on the product's stock. A product that
// no longer exists is logged and ignored: returning stock must never make
// a cancellation or item replacement fail.
func (s *service) Release(ctx context.Context, productID uuid.UUID, quantity int) error {
	if quantity <= 0 {
		return fmt.Errorf("service: release quantity for product %s must be greater than zero", productID)
	}

	err := s.repo.ReleaseStock(ctx, productID, quantity)
	if err != nil {
		if errors.Is(err, ErrProductNotFound) {
			log.Warn().Stringer("product_id", productID).Int("quantity", quantity).Msg("service: releasing stock for missing product, skipping")
			return nil
		}
		return err
	}

	return nil
}
