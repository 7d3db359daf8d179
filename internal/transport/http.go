package transport

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/vasiliy-maslov/pedido-service/internal/auth"
	"github.com/vasiliy-maslov/pedido-service/internal/handler"
	"github.com/vasiliy-maslov/pedido-service/internal/metrics"
	"github.com/vasiliy-maslov/pedido-service/internal/order"
	"github.com/vasiliy-maslov/pedido-service/internal/product"
	"github.com/vasiliy-maslov/pedido-service/internal/user"
)

const (
	roleAdmin    = string(user.RoleAdmin)
	roleOperador = string(user.RoleOperador)
	roleCliente  = string(user.RoleCliente)
)

// NewRouter wires repositories, services and handlers onto a chi router.
func NewRouter(pool *pgxpool.Pool, tokens *auth.Manager, userSvc user.Service) *chi.Mux {
	productRepo := product.NewRepository(pool)
	productSvc := product.NewService(productRepo)

	orderRepo := order.NewRepository(pool)
	orderSvc := order.NewService(orderRepo, productSvc)

	orderHandler := handler.NewOrderHandler(orderSvc)
	productHandler := handler.NewProductHandler(productSvc)
	userHandler := handler.NewUserHandler(userSvc, tokens)

	r := chi.NewRouter()
	r.Use(middleware.Recoverer)
	r.Use(metrics.Middleware)

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("OK"))
	})
	r.Method(http.MethodGet, "/metrics", metrics.Handler())

	r.Post("/auth/login", userHandler.Login)
	r.Post("/user", userHandler.CreateUser)

	authenticated := handler.Authenticator(tokens)
	anyRole := handler.RequireRoles(roleAdmin, roleOperador, roleCliente)
	staffOnly := handler.RequireRoles(roleAdmin, roleOperador)
	adminOnly := handler.RequireRoles(roleAdmin)

	r.Route("/orders", func(r chi.Router) {
		r.Use(authenticated)
		r.With(anyRole).Post("/", orderHandler.CreateOrder)
		r.With(staffOnly).Get("/", orderHandler.ListOrders)
		r.With(anyRole).Get("/search", orderHandler.SearchOrders)
		r.With(anyRole).Get("/{id}", orderHandler.GetOrderByID)
		r.With(staffOnly).Put("/{id}", orderHandler.UpdateOrder)
		r.With(adminOnly).Delete("/{id}", orderHandler.CancelOrder)
	})

	r.Route("/products", func(r chi.Router) {
		r.Use(authenticated)
		r.With(staffOnly).Post("/", productHandler.CreateProduct)
		r.With(anyRole).Get("/", productHandler.ListProducts)
		r.With(anyRole).Get("/search", productHandler.SearchProducts)
		r.With(anyRole).Get("/{id}", productHandler.GetProductByID)
		r.With(staffOnly).Put("/{id}", productHandler.UpdateProduct)
		r.With(adminOnly).Delete("/{id}", productHandler.DeleteProduct)
	})

	return r
}
