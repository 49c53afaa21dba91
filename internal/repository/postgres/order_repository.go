package postgres

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"golang.org/x/sync/errgroup"

	"github.com/akowalczyk/backoffice/internal/domain"
	"github.com/akowalczyk/backoffice/internal/repository"
)

const (
	OrderResource = "order"

	// attachItemsConcurrency caps in-flight line-item queries during
	// listings so a large result set cannot drain the pool.
	attachItemsConcurrency = 8
)

// orderSortColumns maps the column names the API accepts to the columns the
// query may order by. Anything outside this map is rejected before query
// construction; caller input is never interpolated into SQL.
var orderSortColumns = map[string]string{
	"id_order":   "id_order",
	"order_date": "order_date",
	"firstname":  "firstname",
	"lastname":   "lastname",
	"city":       "city",
	"country":    "country",
	"address":    "address",
	"postalcode": "postalcode",
	"email":      "email",
	"phone":      "phone",
}

// OrderRepository provides database operations for orders and their line
// items, hiding the two-table layout (orders + orders_products) behind a
// single-entity contract.
type OrderRepository struct {
	pool *pgxpool.Pool
}

// NewOrderRepository creates a new OrderRepository instance
func NewOrderRepository(pool *pgxpool.Pool) *OrderRepository {
	return &OrderRepository{
		pool: pool,
	}
}

// Create persists the order header and all line items in one transaction and
// returns the database-assigned order id. A line item referencing an unknown
// product fails the whole unit; no partial order is ever visible.
func (r *OrderRepository) Create(ctx context.Context, order *domain.Order) (int, error) {
	tx, err := r.pool.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return 0, fmt.Errorf("begin tx: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	var orderID int
	err = tx.QueryRow(ctx, `
		INSERT INTO orders (firstname, lastname, city, country, address, postalcode, email, phone)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8)
		RETURNING id_order
	`, order.FirstName, order.LastName, order.City, order.Country,
		order.Address, order.PostalCode, order.Email, order.Phone,
	).Scan(&orderID)
	if err != nil {
		return 0, fmt.Errorf("insert order: %w", err)
	}

	if err := insertLineItems(ctx, tx, orderID, order.Items); err != nil {
		return 0, err
	}

	if err := tx.Commit(ctx); err != nil {
		return 0, fmt.Errorf("commit create order: %w", err)
	}

	return orderID, nil
}

// Get retrieves a single order with its line items attached.
func (r *OrderRepository) Get(ctx context.Context, orderID int) (*domain.Order, error) {
	var order domain.Order
	err := r.pool.QueryRow(ctx, `
		SELECT id_order, order_date, firstname, lastname, city, country, address, postalcode, email, phone
		FROM orders
		WHERE id_order = $1
	`, orderID).Scan(
		&order.ID, &order.OrderDate, &order.FirstName, &order.LastName, &order.City,
		&order.Country, &order.Address, &order.PostalCode, &order.Email, &order.Phone,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, &repository.NotFoundError{
				Resource: OrderResource,
				Key:      "id",
				Value:    strconv.Itoa(orderID),
			}
		}
		return nil, fmt.Errorf("select order %d: %w", orderID, err)
	}

	items, err := r.loadItems(ctx, orderID)
	if err != nil {
		return nil, err
	}
	order.Items = items

	return &order, nil
}

// GetAll returns every order sorted by the requested column and direction.
// The read is two-phase: headers first, then one line-item query per order
// joined against the catalog for product names. The per-order fan-out is the
// dominant cost of a listing; acceptable at catalog scale.
func (r *OrderRepository) GetAll(ctx context.Context, sortColumn, direction string) ([]domain.Order, error) {
	column, ok := orderSortColumns[strings.ToLower(sortColumn)]
	if !ok {
		return nil, &repository.ValidationError{Reason: fmt.Sprintf("unknown sort column %q", sortColumn)}
	}

	dir := strings.ToUpper(direction)
	if dir != "ASC" && dir != "DESC" {
		return nil, &repository.ValidationError{Reason: fmt.Sprintf("unknown sort direction %q", direction)}
	}

	// column and dir come from the allow-list above, not from the caller.
	query := fmt.Sprintf(`
		SELECT id_order, order_date, firstname, lastname, city, country, address, postalcode, email, phone
		FROM orders
		ORDER BY %s %s
	`, column, dir)

	rows, err := r.pool.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("list orders: %w", err)
	}
	defer rows.Close()

	orders := make([]domain.Order, 0)
	for rows.Next() {
		var order domain.Order
		if err := rows.Scan(
			&order.ID, &order.OrderDate, &order.FirstName, &order.LastName, &order.City,
			&order.Country, &order.Address, &order.PostalCode, &order.Email, &order.Phone,
		); err != nil {
			return nil, fmt.Errorf("scan order row: %w", err)
		}
		order.Items = make([]domain.LineItem, 0)
		orders = append(orders, order)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate order rows: %w", err)
	}

	if err := r.attachItems(ctx, orders); err != nil {
		return nil, err
	}

	return orders, nil
}

// Update replaces the order header and the full line-item set in one
// transaction: header update, delete of the existing items, re-insert of the
// new set. Returns false without touching line items when the order id does
// not exist. A failed re-insert rolls back to the pre-update items.
func (r *OrderRepository) Update(ctx context.Context, orderID int, order *domain.Order) (bool, error) {
	tx, err := r.pool.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return false, fmt.Errorf("begin tx: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	tag, err := tx.Exec(ctx, `
		UPDATE orders
		SET firstname = $1,
		    lastname = $2,
		    city = $3,
		    country = $4,
		    address = $5,
		    postalcode = $6,
		    email = $7,
		    phone = $8
		WHERE id_order = $9
	`, order.FirstName, order.LastName, order.City, order.Country,
		order.Address, order.PostalCode, order.Email, order.Phone, orderID)
	if err != nil {
		return false, fmt.Errorf("update order: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return false, nil
	}

	if _, err := tx.Exec(ctx, `DELETE FROM orders_products WHERE id_order = $1`, orderID); err != nil {
		return false, fmt.Errorf("delete line items: %w", err)
	}

	if err := insertLineItems(ctx, tx, orderID, order.Items); err != nil {
		return false, err
	}

	if err := tx.Commit(ctx); err != nil {
		return false, fmt.Errorf("commit update order: %w", err)
	}

	return true, nil
}

// Delete removes the order's line items and header in one transaction.
// Returns false when no header row matched.
func (r *OrderRepository) Delete(ctx context.Context, orderID int) (bool, error) {
	tx, err := r.pool.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return false, fmt.Errorf("begin tx: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	if _, err := tx.Exec(ctx, `DELETE FROM orders_products WHERE id_order = $1`, orderID); err != nil {
		return false, fmt.Errorf("delete line items: %w", err)
	}

	tag, err := tx.Exec(ctx, `DELETE FROM orders WHERE id_order = $1`, orderID)
	if err != nil {
		return false, fmt.Errorf("delete order: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return false, fmt.Errorf("commit delete order: %w", err)
	}

	return tag.RowsAffected() > 0, nil
}

// attachItems loads line items for every order in place, capped concurrent
// queries per listing.
func (r *OrderRepository) attachItems(ctx context.Context, orders []domain.Order) error {
	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(attachItemsConcurrency)

	for i := range orders {
		i := i
		g.Go(func() error {
			items, err := r.loadItems(ctx, orders[i].ID)
			if err != nil {
				return err
			}
			orders[i].Items = items
			return nil
		})
	}

	return g.Wait()
}

// loadItems fetches an order's line items joined with the catalog so each
// item carries its product name.
func (r *OrderRepository) loadItems(ctx context.Context, orderID int) ([]domain.LineItem, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT op.id_product, p.name, op.quantity
		FROM orders_products op
		JOIN products p ON p.id_product = op.id_product
		WHERE op.id_order = $1
		ORDER BY op.id_product ASC
	`, orderID)
	if err != nil {
		return nil, fmt.Errorf("load line items: %w", err)
	}
	defer rows.Close()

	items := make([]domain.LineItem, 0)
	for rows.Next() {
		var item domain.LineItem
		if err := rows.Scan(&item.ProductID, &item.ProductName, &item.Quantity); err != nil {
			return nil, fmt.Errorf("scan line item: %w", err)
		}
		items = append(items, item)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate line items: %w", err)
	}

	return items, nil
}

// insertLineItems writes the full item set inside the caller's transaction.
// Constraint violations surface as validation failures so the service can
// report them without exposing store detail.
func insertLineItems(ctx context.Context, tx pgx.Tx, orderID int, items []domain.LineItem) error {
	for _, item := range items {
		_, err := tx.Exec(ctx, `
			INSERT INTO orders_products (id_order, id_product, quantity)
			VALUES ($1,$2,$3)
		`, orderID, item.ProductID, item.Quantity)
		if err != nil {
			if reason, ok := constraintViolation(err, item.ProductID); ok {
				return &repository.ValidationError{Reason: reason}
			}
			return fmt.Errorf("insert line item: %w", err)
		}
	}
	return nil
}

// Postgres error codes checked on line-item writes.
const (
	pgUniqueViolation     = "23505"
	pgForeignKeyViolation = "23503"
)

// constraintViolation translates foreign-key and unique violations on the
// line-item table into caller-facing reasons.
func constraintViolation(err error, productID int) (string, bool) {
	var pgErr *pgconn.PgError
	if !errors.As(err, &pgErr) {
		return "", false
	}
	switch pgErr.Code {
	case pgForeignKeyViolation:
		return fmt.Sprintf("product %d does not exist", productID), true
	case pgUniqueViolation:
		return fmt.Sprintf("product %d appears more than once in the order", productID), true
	}
	return "", false
}
