package service

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/akowalczyk/backoffice/internal/domain"
	"github.com/akowalczyk/backoffice/internal/repository"
)

type mockOrderRepository struct {
	mock.Mock
}

func (m *mockOrderRepository) Create(ctx context.Context, order *domain.Order) (int, error) {
	args := m.Called(ctx, order)
	return args.Int(0), args.Error(1)
}

func (m *mockOrderRepository) Get(ctx context.Context, orderID int) (*domain.Order, error) {
	args := m.Called(ctx, orderID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Order), args.Error(1)
}

func (m *mockOrderRepository) GetAll(ctx context.Context, sortColumn, direction string) ([]domain.Order, error) {
	args := m.Called(ctx, sortColumn, direction)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Order), args.Error(1)
}

func (m *mockOrderRepository) Update(ctx context.Context, orderID int, order *domain.Order) (bool, error) {
	args := m.Called(ctx, orderID, order)
	return args.Bool(0), args.Error(1)
}

func (m *mockOrderRepository) Delete(ctx context.Context, orderID int) (bool, error) {
	args := m.Called(ctx, orderID)
	return args.Bool(0), args.Error(1)
}

type mockProductFinder struct {
	mock.Mock
}

func (m *mockProductFinder) Exists(ctx context.Context, productID int) (bool, error) {
	args := m.Called(ctx, productID)
	return args.Bool(0), args.Error(1)
}

func validOrder() *domain.Order {
	return &domain.Order{
		FirstName:  "Jan",
		LastName:   "Kowalski",
		City:       "Warsaw",
		Country:    "Poland",
		Address:    "Prosta 1",
		PostalCode: "00-001",
		Email:      "jan@example.com",
		Phone:      "123456789",
		Items: []domain.LineItem{
			{ProductID: 1, Quantity: 2},
			{ProductID: 2, Quantity: 1},
		},
	}
}

func newTestService(repo *mockOrderRepository, products *mockProductFinder) *OrderService {
	return NewOrderService(repo, products, slog.New(slog.NewTextHandler(io.Discard, nil)))
}

func TestOrderService_Create(t *testing.T) {
	testCases := map[string]struct {
		order          func() *domain.Order
		setupMocks     func(repo *mockOrderRepository, products *mockProductFinder)
		expectedID     int
		expectedErr    string
		expectedErrIs  error
		expectValidErr bool
	}{
		"should create order and return the assigned id": {
			order: validOrder,
			setupMocks: func(repo *mockOrderRepository, products *mockProductFinder) {
				products.On("Exists", mock.Anything, 1).Return(true, nil)
				products.On("Exists", mock.Anything, 2).Return(true, nil)
				repo.On("Create", mock.Anything, mock.Anything).Return(42, nil)
			},
			expectedID: 42,
		},

		"should reject order with no line items": {
			order: func() *domain.Order {
				o := validOrder()
				o.Items = nil
				return o
			},
			setupMocks:     func(_ *mockOrderRepository, _ *mockProductFinder) {},
			expectedErr:    "at least one line item",
			expectValidErr: true,
		},

		"should reject order with missing customer field": {
			order: func() *domain.Order {
				o := validOrder()
				o.Email = "  "
				return o
			},
			setupMocks:     func(_ *mockOrderRepository, _ *mockProductFinder) {},
			expectedErr:    "email is required",
			expectValidErr: true,
		},

		"should reject line item with non-positive quantity": {
			order: func() *domain.Order {
				o := validOrder()
				o.Items[1].Quantity = 0
				return o
			},
			setupMocks:     func(_ *mockOrderRepository, _ *mockProductFinder) {},
			expectedErr:    "quantity for product 2 must be positive",
			expectValidErr: true,
		},

		"should reject duplicated product ids": {
			order: func() *domain.Order {
				o := validOrder()
				o.Items[1].ProductID = 1
				return o
			},
			setupMocks:     func(_ *mockOrderRepository, _ *mockProductFinder) {},
			expectedErr:    "product 1 appears more than once",
			expectValidErr: true,
		},

		"should reject order referencing an unknown product": {
			order: validOrder,
			setupMocks: func(_ *mockOrderRepository, products *mockProductFinder) {
				products.On("Exists", mock.Anything, 1).Return(true, nil)
				products.On("Exists", mock.Anything, 2).Return(false, nil)
			},
			expectedErr:    "product 2 does not exist",
			expectValidErr: true,
		},

		"should hide store failures behind ErrStoreUnavailable": {
			order: validOrder,
			setupMocks: func(repo *mockOrderRepository, products *mockProductFinder) {
				products.On("Exists", mock.Anything, 1).Return(true, nil)
				products.On("Exists", mock.Anything, 2).Return(true, nil)
				repo.On("Create", mock.Anything, mock.Anything).Return(0, errors.New("connection refused"))
			},
			expectedErrIs: ErrStoreUnavailable,
		},
	}

	for name, tc := range testCases {
		t.Run(name, func(t *testing.T) {
			repo := &mockOrderRepository{}
			products := &mockProductFinder{}
			tc.setupMocks(repo, products)

			svc := newTestService(repo, products)

			id, err := svc.Create(context.Background(), tc.order())

			switch {
			case tc.expectedErrIs != nil:
				assert.ErrorIs(t, err, tc.expectedErrIs)
			case tc.expectedErr != "":
				require.Error(t, err)
				assert.Contains(t, err.Error(), tc.expectedErr)
				if tc.expectValidErr {
					var validationErr *repository.ValidationError
					assert.True(t, errors.As(err, &validationErr))
				}
			default:
				require.NoError(t, err)
				assert.Equal(t, tc.expectedID, id)
			}

			repo.AssertExpectations(t)
			products.AssertExpectations(t)
		})
	}
}

func TestOrderService_List(t *testing.T) {
	testCases := map[string]struct {
		sortColumn     string
		direction      string
		expectedColumn string
		expectedDir    string
	}{
		"should default to ascending id order": {
			sortColumn:     "",
			direction:      "",
			expectedColumn: "id_order",
			expectedDir:    "ASC",
		},
		"should pass requested column and direction through": {
			sortColumn:     "order_date",
			direction:      "DESC",
			expectedColumn: "order_date",
			expectedDir:    "DESC",
		},
	}

	for name, tc := range testCases {
		t.Run(name, func(t *testing.T) {
			repo := &mockOrderRepository{}
			repo.On("GetAll", mock.Anything, tc.expectedColumn, tc.expectedDir).
				Return([]domain.Order{{ID: 1}}, nil)

			svc := newTestService(repo, &mockProductFinder{})

			orders, err := svc.List(context.Background(), tc.sortColumn, tc.direction)

			require.NoError(t, err)
			assert.Len(t, orders, 1)
			repo.AssertExpectations(t)
		})
	}
}

func TestOrderService_List_PassesValidationErrorThrough(t *testing.T) {
	repo := &mockOrderRepository{}
	repo.On("GetAll", mock.Anything, "drop table", "ASC").
		Return(nil, &repository.ValidationError{Reason: `unknown sort column "drop table"`})

	svc := newTestService(repo, &mockProductFinder{})

	_, err := svc.List(context.Background(), "drop table", "")

	var validationErr *repository.ValidationError
	require.True(t, errors.As(err, &validationErr))
	assert.Contains(t, validationErr.Reason, "unknown sort column")
}

func TestOrderService_Update(t *testing.T) {
	testCases := map[string]struct {
		orderID       int
		setupMocks    func(repo *mockOrderRepository, products *mockProductFinder)
		expectedErr   string
		expectedErrIs error
	}{
		"should update existing order": {
			orderID: 7,
			setupMocks: func(repo *mockOrderRepository, products *mockProductFinder) {
				products.On("Exists", mock.Anything, mock.Anything).Return(true, nil)
				repo.On("Update", mock.Anything, 7, mock.Anything).Return(true, nil)
			},
		},
		"should return NotFoundError when no header row matched": {
			orderID: 99,
			setupMocks: func(repo *mockOrderRepository, products *mockProductFinder) {
				products.On("Exists", mock.Anything, mock.Anything).Return(true, nil)
				repo.On("Update", mock.Anything, 99, mock.Anything).Return(false, nil)
			},
			expectedErr: "order with id 99 not found",
		},
		"should hide store failures behind ErrStoreUnavailable": {
			orderID: 7,
			setupMocks: func(repo *mockOrderRepository, products *mockProductFinder) {
				products.On("Exists", mock.Anything, mock.Anything).Return(true, nil)
				repo.On("Update", mock.Anything, 7, mock.Anything).Return(false, errors.New("broken pipe"))
			},
			expectedErrIs: ErrStoreUnavailable,
		},
	}

	for name, tc := range testCases {
		t.Run(name, func(t *testing.T) {
			repo := &mockOrderRepository{}
			products := &mockProductFinder{}
			tc.setupMocks(repo, products)

			svc := newTestService(repo, products)

			err := svc.Update(context.Background(), tc.orderID, validOrder())

			switch {
			case tc.expectedErrIs != nil:
				assert.ErrorIs(t, err, tc.expectedErrIs)
			case tc.expectedErr != "":
				require.Error(t, err)
				assert.Contains(t, err.Error(), tc.expectedErr)
				var notFoundErr *repository.NotFoundError
				assert.True(t, errors.As(err, &notFoundErr))
			default:
				assert.NoError(t, err)
			}

			repo.AssertExpectations(t)
		})
	}
}

func TestOrderService_Delete(t *testing.T) {
	testCases := map[string]struct {
		orderID     int
		setupMocks  func(repo *mockOrderRepository)
		expectedErr string
	}{
		"should delete existing order": {
			orderID: 5,
			setupMocks: func(repo *mockOrderRepository) {
				repo.On("Delete", mock.Anything, 5).Return(true, nil)
			},
		},
		"should return NotFoundError for unknown order": {
			orderID: 6,
			setupMocks: func(repo *mockOrderRepository) {
				repo.On("Delete", mock.Anything, 6).Return(false, nil)
			},
			expectedErr: "order with id 6 not found",
		},
	}

	for name, tc := range testCases {
		t.Run(name, func(t *testing.T) {
			repo := &mockOrderRepository{}
			tc.setupMocks(repo)

			svc := newTestService(repo, &mockProductFinder{})

			err := svc.Delete(context.Background(), tc.orderID)

			if tc.expectedErr != "" {
				require.Error(t, err)
				assert.Contains(t, err.Error(), tc.expectedErr)
			} else {
				assert.NoError(t, err)
			}

			repo.AssertExpectations(t)
		})
	}
}

func TestOrderService_Get(t *testing.T) {
	repo := &mockOrderRepository{}
	repo.On("Get", mock.Anything, 3).Return(&domain.Order{ID: 3, FirstName: "Jan"}, nil)

	svc := newTestService(repo, &mockProductFinder{})

	order, err := svc.Get(context.Background(), 3)

	require.NoError(t, err)
	assert.Equal(t, 3, order.ID)
	repo.AssertExpectations(t)
}
