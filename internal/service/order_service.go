package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"strings"

	"github.com/akowalczyk/backoffice/internal/domain"
	"github.com/akowalczyk/backoffice/internal/repository"
)

// OrderRepository defines the store operations the service orchestrates.
type OrderRepository interface {
	Create(ctx context.Context, order *domain.Order) (int, error)
	Get(ctx context.Context, orderID int) (*domain.Order, error)
	GetAll(ctx context.Context, sortColumn, direction string) ([]domain.Order, error)
	Update(ctx context.Context, orderID int, order *domain.Order) (bool, error)
	Delete(ctx context.Context, orderID int) (bool, error)
}

// ProductFinder confirms that referenced product ids exist in the catalog.
type ProductFinder interface {
	Exists(ctx context.Context, productID int) (bool, error)
}

// OrderService validates order input and translates repository outcomes into
// the error taxonomy handlers respond with. It holds no state of its own;
// everything lives in the store.
type OrderService struct {
	repo     OrderRepository
	products ProductFinder
	logger   *slog.Logger
}

// NewOrderService creates a new OrderService instance
func NewOrderService(repo OrderRepository, products ProductFinder, logger *slog.Logger) *OrderService {
	return &OrderService{
		repo:     repo,
		products: products,
		logger:   logger,
	}
}

// Create validates the order and persists it, returning the store-assigned
// id. An order needs every customer field and at least one line item.
func (s *OrderService) Create(ctx context.Context, order *domain.Order) (int, error) {
	if err := validateOrder(order); err != nil {
		return 0, err
	}
	if err := s.checkProducts(ctx, order.Items); err != nil {
		return 0, err
	}

	id, err := s.repo.Create(ctx, order)
	if err != nil {
		return 0, s.storeError(ctx, "create order", err)
	}

	s.logger.InfoContext(ctx, "order created", "order_id", id, "line_items", len(order.Items))
	return id, nil
}

// Get returns a single order with its line items.
func (s *OrderService) Get(ctx context.Context, orderID int) (*domain.Order, error) {
	order, err := s.repo.Get(ctx, orderID)
	if err != nil {
		return nil, s.storeError(ctx, "get order", err)
	}
	return order, nil
}

// List returns all orders sorted by the requested column and direction.
// Empty arguments fall back to ascending id order.
func (s *OrderService) List(ctx context.Context, sortColumn, direction string) ([]domain.Order, error) {
	if sortColumn == "" {
		sortColumn = "id_order"
	}
	if direction == "" {
		direction = "ASC"
	}

	orders, err := s.repo.GetAll(ctx, sortColumn, direction)
	if err != nil {
		return nil, s.storeError(ctx, "list orders", err)
	}
	return orders, nil
}

// Update validates the replacement order and applies it to the given id.
// The supplied line-item set fully replaces the stored one.
func (s *OrderService) Update(ctx context.Context, orderID int, order *domain.Order) error {
	if err := validateOrder(order); err != nil {
		return err
	}
	if err := s.checkProducts(ctx, order.Items); err != nil {
		return err
	}

	found, err := s.repo.Update(ctx, orderID, order)
	if err != nil {
		return s.storeError(ctx, "update order", err)
	}
	if !found {
		return notFound(orderID)
	}

	s.logger.InfoContext(ctx, "order updated", "order_id", orderID, "line_items", len(order.Items))
	return nil
}

// Delete removes the order and its line items.
func (s *OrderService) Delete(ctx context.Context, orderID int) error {
	found, err := s.repo.Delete(ctx, orderID)
	if err != nil {
		return s.storeError(ctx, "delete order", err)
	}
	if !found {
		return notFound(orderID)
	}

	s.logger.InfoContext(ctx, "order deleted", "order_id", orderID)
	return nil
}

// checkProducts rejects line items referencing products the catalog does not
// know. The store's foreign key still backs this check; asking first turns a
// constraint failure into a clean validation outcome.
func (s *OrderService) checkProducts(ctx context.Context, items []domain.LineItem) error {
	for _, item := range items {
		exists, err := s.products.Exists(ctx, item.ProductID)
		if err != nil {
			return s.storeError(ctx, "check product", err)
		}
		if !exists {
			return &repository.ValidationError{
				Reason: fmt.Sprintf("product %d does not exist", item.ProductID),
			}
		}
	}
	return nil
}

// storeError passes typed outcomes through and hides anything else behind
// ErrStoreUnavailable; the raw failure is only logged.
func (s *OrderService) storeError(ctx context.Context, op string, err error) error {
	var validationErr *repository.ValidationError
	var notFoundErr *repository.NotFoundError
	if errors.As(err, &validationErr) || errors.As(err, &notFoundErr) {
		return err
	}

	s.logger.ErrorContext(ctx, "order store failure", "op", op, "error", err)
	return ErrStoreUnavailable
}

func notFound(orderID int) error {
	return &repository.NotFoundError{
		Resource: "order",
		Key:      "id",
		Value:    strconv.Itoa(orderID),
	}
}

// validateOrder enforces the creation/update contract: all customer fields
// present, at least one line item, positive quantities, and no product
// listed twice.
func validateOrder(order *domain.Order) error {
	fields := []struct {
		name  string
		value string
	}{
		{"firstname", order.FirstName},
		{"lastname", order.LastName},
		{"city", order.City},
		{"country", order.Country},
		{"address", order.Address},
		{"postalcode", order.PostalCode},
		{"email", order.Email},
		{"phone", order.Phone},
	}
	for _, f := range fields {
		if strings.TrimSpace(f.value) == "" {
			return &repository.ValidationError{Reason: f.name + " is required"}
		}
	}

	if len(order.Items) == 0 {
		return &repository.ValidationError{Reason: "an order needs at least one line item"}
	}

	seen := make(map[int]struct{}, len(order.Items))
	for _, item := range order.Items {
		if item.ProductID <= 0 {
			return &repository.ValidationError{Reason: "line item product id must be positive"}
		}
		if item.Quantity <= 0 {
			return &repository.ValidationError{
				Reason: fmt.Sprintf("quantity for product %d must be positive", item.ProductID),
			}
		}
		if _, ok := seen[item.ProductID]; ok {
			return &repository.ValidationError{
				Reason: fmt.Sprintf("product %d appears more than once in the order", item.ProductID),
			}
		}
		seen[item.ProductID] = struct{}{}
	}

	return nil
}
