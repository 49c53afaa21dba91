package rest

import (
	"net/http"

	"github.com/gorilla/mux"

	"github.com/akowalczyk/backoffice/internal/api/rest/handler"
	"github.com/akowalczyk/backoffice/internal/api/rest/middleware"
)

// RouterConfig holds the handlers and middleware the router wires together.
type RouterConfig struct {
	Orders     *handler.OrderHandler
	Products   *handler.ProductHandler
	Categories *handler.CategoryHandler
	Suppliers  *handler.SupplierHandler
	Identity   *handler.IdentityHandler
	Auth       *middleware.JWTAuthMiddleware
}

// NewRouter initializes the HTTP router. Reads require a valid token; every
// mutating route additionally sits behind the admin role gate. Public routes
// are registered first so they are matched before the authenticated subrouters.
func NewRouter(cfg *RouterConfig) *mux.Router {
	root := mux.NewRouter()

	root.HandleFunc("/health", handleHealthCheck).Methods(http.MethodGet)
	root.HandleFunc("/identity/login", cfg.Identity.Login).Methods(http.MethodPost)

	authed := root.NewRoute().Subrouter()
	authed.Use(cfg.Auth.Handler)

	admin := authed.NewRoute().Subrouter()
	admin.Use(middleware.RequireRole(middleware.AdminRole))

	authed.HandleFunc("/orders", cfg.Orders.List).Methods(http.MethodGet)
	authed.HandleFunc("/orders/{id:[0-9]+}", cfg.Orders.Get).Methods(http.MethodGet)
	authed.HandleFunc("/orders/{column}/{direction}", cfg.Orders.List).Methods(http.MethodGet)
	admin.HandleFunc("/orders", cfg.Orders.Create).Methods(http.MethodPost)
	admin.HandleFunc("/orders/{id:[0-9]+}", cfg.Orders.Update).Methods(http.MethodPut)
	admin.HandleFunc("/orders/{id:[0-9]+}", cfg.Orders.Delete).Methods(http.MethodDelete)

	authed.HandleFunc("/products", cfg.Products.List).Methods(http.MethodGet)
	admin.HandleFunc("/products", cfg.Products.Create).Methods(http.MethodPost)
	admin.HandleFunc("/products/{id:[0-9]+}", cfg.Products.Update).Methods(http.MethodPut)
	admin.HandleFunc("/products/{id:[0-9]+}", cfg.Products.Delete).Methods(http.MethodDelete)

	authed.HandleFunc("/categories", cfg.Categories.List).Methods(http.MethodGet)
	admin.HandleFunc("/categories", cfg.Categories.Create).Methods(http.MethodPost)
	admin.HandleFunc("/categories/{id:[0-9]+}", cfg.Categories.Update).Methods(http.MethodPut)
	admin.HandleFunc("/categories/{id:[0-9]+}", cfg.Categories.Delete).Methods(http.MethodDelete)

	authed.HandleFunc("/suppliers", cfg.Suppliers.List).Methods(http.MethodGet)
	admin.HandleFunc("/suppliers", cfg.Suppliers.Create).Methods(http.MethodPost)
	admin.HandleFunc("/suppliers/{id:[0-9]+}", cfg.Suppliers.Update).Methods(http.MethodPut)
	admin.HandleFunc("/suppliers/{id:[0-9]+}", cfg.Suppliers.Delete).Methods(http.MethodDelete)

	authed.HandleFunc("/identity/roles", cfg.Identity.ListRoles).Methods(http.MethodGet)
	admin.HandleFunc("/identity/user", cfg.Identity.CreateUser).Methods(http.MethodPost)
	admin.HandleFunc("/identity/user/{id:[0-9]+}", cfg.Identity.DeleteUser).Methods(http.MethodDelete)
	admin.HandleFunc("/identity/role", cfg.Identity.CreateRole).Methods(http.MethodPost)

	return root
}

// handleHealthCheck returns a basic health status.
func handleHealthCheck(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte(`{"status":"healthy"}`))
}
