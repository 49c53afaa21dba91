package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/akowalczyk/backoffice/internal/domain"
	"github.com/akowalczyk/backoffice/internal/repository"
)

const (
	ProductResource  = "product"
	CategoryResource = "category"
	SupplierResource = "supplier"
)

// ProductRepository provides database operations for catalog products. A
// product row carries name, cost and description; category and supplier are
// attached through join tables and referenced by name on writes.
type ProductRepository struct {
	pool *pgxpool.Pool
}

// NewProductRepository creates a new ProductRepository instance
func NewProductRepository(pool *pgxpool.Pool) *ProductRepository {
	return &ProductRepository{
		pool: pool,
	}
}

// GetAll returns the catalog with category and supplier names joined in.
func (r *ProductRepository) GetAll(ctx context.Context) ([]domain.Product, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT p.id_product, p.name, p.cost, p.description, c.name, s.name
		FROM products p
		JOIN products_categories pc ON pc.id_product = p.id_product
		JOIN categories c ON c.id_category = pc.id_category
		JOIN products_suppliers ps ON ps.id_product = p.id_product
		JOIN suppliers s ON s.id_supplier = ps.id_supplier
		ORDER BY p.id_product ASC
	`)
	if err != nil {
		return nil, fmt.Errorf("list products: %w", err)
	}
	defer rows.Close()

	products := make([]domain.Product, 0)
	for rows.Next() {
		var p domain.Product
		if err := rows.Scan(&p.ID, &p.Name, &p.Cost, &p.Description, &p.Category, &p.Supplier); err != nil {
			return nil, fmt.Errorf("scan product row: %w", err)
		}
		products = append(products, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate product rows: %w", err)
	}

	return products, nil
}

// Exists reports whether a product id is present in the catalog.
func (r *ProductRepository) Exists(ctx context.Context, productID int) (bool, error) {
	var exists bool
	err := r.pool.QueryRow(ctx,
		`SELECT EXISTS (SELECT 1 FROM products WHERE id_product = $1)`, productID,
	).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("check product %d exists: %w", productID, err)
	}
	return exists, nil
}

// GetIDByName resolves a product name to its id.
func (r *ProductRepository) GetIDByName(ctx context.Context, name string) (int, error) {
	var id int
	err := r.pool.QueryRow(ctx, `SELECT id_product FROM products WHERE name = $1`, name).Scan(&id)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return 0, &repository.NotFoundError{
				Resource: ProductResource,
				Key:      "name",
				Value:    name,
			}
		}
		return 0, fmt.Errorf("query product id by name %s: %w", name, err)
	}
	return id, nil
}

// Create inserts the product and its category/supplier associations in one
// transaction. Category and supplier are referenced by name; an unknown name
// is a validation failure.
func (r *ProductRepository) Create(ctx context.Context, product *domain.Product) (int, error) {
	tx, err := r.pool.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return 0, fmt.Errorf("begin tx: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	categoryID, supplierID, err := resolveAssociations(ctx, tx, product)
	if err != nil {
		return 0, err
	}

	var productID int
	err = tx.QueryRow(ctx, `
		INSERT INTO products (name, cost, description)
		VALUES ($1,$2,$3)
		RETURNING id_product
	`, product.Name, product.Cost, product.Description).Scan(&productID)
	if err != nil {
		return 0, fmt.Errorf("insert product: %w", err)
	}

	if _, err := tx.Exec(ctx, `
		INSERT INTO products_categories (id_product, id_category) VALUES ($1,$2)
	`, productID, categoryID); err != nil {
		return 0, fmt.Errorf("insert product category: %w", err)
	}

	if _, err := tx.Exec(ctx, `
		INSERT INTO products_suppliers (id_product, id_supplier) VALUES ($1,$2)
	`, productID, supplierID); err != nil {
		return 0, fmt.Errorf("insert product supplier: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return 0, fmt.Errorf("commit create product: %w", err)
	}

	return productID, nil
}

// Update replaces the product fields and re-points its category and supplier
// associations in one transaction. Returns false when the id does not exist.
func (r *ProductRepository) Update(ctx context.Context, productID int, product *domain.Product) (bool, error) {
	tx, err := r.pool.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return false, fmt.Errorf("begin tx: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	categoryID, supplierID, err := resolveAssociations(ctx, tx, product)
	if err != nil {
		return false, err
	}

	tag, err := tx.Exec(ctx, `
		UPDATE products
		SET name = $1, cost = $2, description = $3
		WHERE id_product = $4
	`, product.Name, product.Cost, product.Description, productID)
	if err != nil {
		return false, fmt.Errorf("update product: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return false, nil
	}

	if _, err := tx.Exec(ctx, `
		UPDATE products_categories SET id_category = $1 WHERE id_product = $2
	`, categoryID, productID); err != nil {
		return false, fmt.Errorf("update product category: %w", err)
	}

	if _, err := tx.Exec(ctx, `
		UPDATE products_suppliers SET id_supplier = $1 WHERE id_product = $2
	`, supplierID, productID); err != nil {
		return false, fmt.Errorf("update product supplier: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return false, fmt.Errorf("commit update product: %w", err)
	}

	return true, nil
}

// Delete removes the product and its associations. A product still
// referenced by order line items cannot be deleted.
func (r *ProductRepository) Delete(ctx context.Context, productID int) (bool, error) {
	tx, err := r.pool.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return false, fmt.Errorf("begin tx: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	if _, err := tx.Exec(ctx, `DELETE FROM products_categories WHERE id_product = $1`, productID); err != nil {
		return false, fmt.Errorf("delete product category: %w", err)
	}
	if _, err := tx.Exec(ctx, `DELETE FROM products_suppliers WHERE id_product = $1`, productID); err != nil {
		return false, fmt.Errorf("delete product supplier: %w", err)
	}

	tag, err := tx.Exec(ctx, `DELETE FROM products WHERE id_product = $1`, productID)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == pgForeignKeyViolation {
			return false, &repository.ValidationError{
				Reason: fmt.Sprintf("product %d is referenced by existing orders", productID),
			}
		}
		return false, fmt.Errorf("delete product: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return false, fmt.Errorf("commit delete product: %w", err)
	}

	return tag.RowsAffected() > 0, nil
}

// resolveAssociations maps the category and supplier names on a product to
// their ids inside the caller's transaction.
func resolveAssociations(ctx context.Context, tx pgx.Tx, product *domain.Product) (categoryID, supplierID int, err error) {
	err = tx.QueryRow(ctx, `SELECT id_category FROM categories WHERE name = $1`, product.Category).Scan(&categoryID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return 0, 0, &repository.ValidationError{
				Reason: fmt.Sprintf("category %q does not exist", product.Category),
			}
		}
		return 0, 0, fmt.Errorf("resolve category %s: %w", product.Category, err)
	}

	err = tx.QueryRow(ctx, `SELECT id_supplier FROM suppliers WHERE name = $1`, product.Supplier).Scan(&supplierID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return 0, 0, &repository.ValidationError{
				Reason: fmt.Sprintf("supplier %q does not exist", product.Supplier),
			}
		}
		return 0, 0, fmt.Errorf("resolve supplier %s: %w", product.Supplier, err)
	}

	return categoryID, supplierID, nil
}
