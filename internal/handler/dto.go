package handler

import (
	"errors"
	"fmt"
	"time"

	"github.com/gofrs/uuid"
	"github.com/shopspring/decimal"
	"github.com/vasiliy-maslov/pedido-service/internal/order"
	"github.com/vasiliy-maslov/pedido-service/internal/product"
	"github.com/vasiliy-maslov/pedido-service/internal/user"
)

// Wire DTOs. Field names follow the JSON contract the existing clients
// already speak.

type createOrderedItemDTO struct {
	ProductID uuid.UUID `json:"productId"`
	Quantity  int       `json:"quantity"`
}

type createOrderDTO struct {
	Products      []createOrderedItemDTO `json:"products"`
	PaymentMethod order.PaymentMethod    `json:"paymentMethod"`
	Discount      int                    `json:"discount"`
	ShippingFee   decimal.Decimal        `json:"shippingFee"`
}

type updateOrderDTO struct {
	Products    []createOrderedItemDTO `json:"products"`
	Status      order.Status           `json:"status"`
	Discount    int                    `json:"discount"`
	ShippingFee decimal.Decimal        `json:"shippingFee"`
}

type orderedItemDTO struct {
	ProductID          uuid.UUID       `json:"productId"`
	ProductDescription string          `json:"productDescription"`
	ProductPrice       decimal.Decimal `json:"productPrice"`
	Quantity           int             `json:"quantity"`
}

type orderDTO struct {
	ID            uuid.UUID           `json:"id"`
	DateCreated   time.Time           `json:"dateCreated"`
	Status        order.Status        `json:"status"`
	Products      []orderedItemDTO    `json:"products"`
	PaymentMethod order.PaymentMethod `json:"paymentMethod"`
	TotalPrice    decimal.Decimal     `json:"totalPrice"`
	Discount      int                 `json:"discount"`
	ShippingFee   decimal.Decimal     `json:"shippingFee"`
}

type createProductDTO struct {
	Description   string          `json:"description"`
	Price         decimal.Decimal `json:"price"`
	Category      string          `json:"category"`
	QuantityStock int             `json:"quantityStock"`
}

type updateProductDTO struct {
	createProductDTO
	Disabled bool `json:"disabled"`
}

type productDTO struct {
	ID            uuid.UUID       `json:"id"`
	Description   string          `json:"description"`
	Price         decimal.Decimal `json:"price"`
	Category      string          `json:"category"`
	QuantityStock int             `json:"quantityStock"`
	Disabled      bool            `json:"disabled"`
}

type createUserDTO struct {
	Username string `json:"username"`
	Password string `json:"password"`
	Role     string `json:"role"`
}

type loginRequestDTO struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type loginResponseDTO struct {
	AccessToken string `json:"accessToken"`
	ExpiresIn   int64  `json:"expiresIn"`
}

func validateItems(items []createOrderedItemDTO) error {
	if len(items) == 0 {
		return errors.New("order must contain at least one product")
	}
	for _, item := range items {
		if item.ProductID == uuid.Nil {
			return errors.New("product ID is required")
		}
		if item.Quantity <= 0 {
			return errors.New("quantity must be greater than 0")
		}
	}
	return nil
}

func (d createOrderDTO) validate() error {
	if err := validateItems(d.Products); err != nil {
		return err
	}
	if !d.PaymentMethod.Valid() {
		return fmt.Errorf("unknown payment method %q", d.PaymentMethod)
	}
	if d.Discount < 0 {
		return errors.New("discount must be 0 (zero) or greater")
	}
	if d.ShippingFee.IsNegative() {
		return errors.New("shipping fee must be 0 (zero) or greater")
	}
	return nil
}

func (d updateOrderDTO) validate() error {
	if err := validateItems(d.Products); err != nil {
		return err
	}
	if !d.Status.Valid() {
		return fmt.Errorf("unknown order status %q", d.Status)
	}
	if d.Discount < 0 {
		return errors.New("discount must be 0 (zero) or greater")
	}
	if d.ShippingFee.IsNegative() {
		return errors.New("shipping fee must be 0 (zero) or greater")
	}
	return nil
}

func (d createProductDTO) validate() error {
	if d.Description == "" {
		return errors.New("description is required")
	}
	if !d.Price.IsPositive() {
		return errors.New("price must be greater than 0 (zero)")
	}
	if d.Category == "" {
		return errors.New("category is required")
	}
	if d.QuantityStock < 0 {
		return errors.New("quantity must be 0 (zero) or greater")
	}
	return nil
}

func (d createUserDTO) validate() error {
	if d.Username == "" {
		return errors.New("username is required")
	}
	if d.Password == "" {
		return errors.New("password is required")
	}
	if !user.Role(d.Role).Valid() {
		return fmt.Errorf("unknown role %q", d.Role)
	}
	return nil
}

func (d createOrderDTO) toInput() order.CreateInput {
	return order.CreateInput{
		Items:         toItemInputs(d.Products),
		PaymentMethod: d.PaymentMethod,
		Discount:      d.Discount,
		ShippingFee:   d.ShippingFee,
	}
}

func (d updateOrderDTO) toInput() order.UpdateInput {
	return order.UpdateInput{
		Items:       toItemInputs(d.Products),
		Status:      d.Status,
		Discount:    d.Discount,
		ShippingFee: d.ShippingFee,
	}
}

func toItemInputs(items []createOrderedItemDTO) []order.ItemInput {
	inputs := make([]order.ItemInput, 0, len(items))
	for _, item := range items {
		inputs = append(inputs, order.ItemInput{ProductID: item.ProductID, Quantity: item.Quantity})
	}
	return inputs
}

func toOrderDTO(o *order.Order) orderDTO {
	items := make([]orderedItemDTO, 0, len(o.Items))
	for _, item := range o.Items {
		items = append(items, orderedItemDTO{
			ProductID:          item.ProductID,
			ProductDescription: item.ProductDescription,
			ProductPrice:       item.ProductPrice,
			Quantity:           item.Quantity,
		})
	}

	return orderDTO{
		ID:            o.ID,
		DateCreated:   o.DateCreated,
		Status:        o.Status,
		Products:      items,
		PaymentMethod: o.PaymentMethod,
		TotalPrice:    o.TotalPrice,
		Discount:      o.Discount,
		ShippingFee:   o.ShippingFee,
	}
}

func toOrderDTOs(orders []order.Order) []orderDTO {
	dtos := make([]orderDTO, 0, len(orders))
	for i := range orders {
		dtos = append(dtos, toOrderDTO(&orders[i]))
	}
	return dtos
}

func toProductDTO(p *product.Product) productDTO {
	return productDTO{
		ID:            p.ID,
		Description:   p.Description,
		Price:         p.Price,
		Category:      p.Category,
		QuantityStock: p.QuantityStock,
		Disabled:      p.Disabled(),
	}
}

func toProductDTOs(products []product.Product) []productDTO {
	dtos := make([]productDTO, 0, len(products))
	for i := range products {
		dtos = append(dtos, toProductDTO(&products[i]))
	}
	return dtos
}
