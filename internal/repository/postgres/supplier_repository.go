package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/akowalczyk/backoffice/internal/domain"
	"github.com/akowalczyk/backoffice/internal/repository"
)

// SupplierRepository provides database operations for suppliers.
type SupplierRepository struct {
	pool *pgxpool.Pool
}

// NewSupplierRepository creates a new SupplierRepository instance
func NewSupplierRepository(pool *pgxpool.Pool) *SupplierRepository {
	return &SupplierRepository{
		pool: pool,
	}
}

func (r *SupplierRepository) GetAll(ctx context.Context) ([]domain.Supplier, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT id_supplier, name, address, phone FROM suppliers ORDER BY id_supplier ASC`)
	if err != nil {
		return nil, fmt.Errorf("list suppliers: %w", err)
	}
	defer rows.Close()

	suppliers := make([]domain.Supplier, 0)
	for rows.Next() {
		var s domain.Supplier
		if err := rows.Scan(&s.ID, &s.Name, &s.Address, &s.Phone); err != nil {
			return nil, fmt.Errorf("scan supplier row: %w", err)
		}
		suppliers = append(suppliers, s)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate supplier rows: %w", err)
	}

	return suppliers, nil
}

func (r *SupplierRepository) Create(ctx context.Context, supplier *domain.Supplier) (int, error) {
	var id int
	err := r.pool.QueryRow(ctx, `
		INSERT INTO suppliers (name, address, phone)
		VALUES ($1,$2,$3)
		RETURNING id_supplier
	`, supplier.Name, supplier.Address, supplier.Phone).Scan(&id)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == pgUniqueViolation {
			return 0, &repository.ValidationError{Reason: fmt.Sprintf("supplier %q already exists", supplier.Name)}
		}
		return 0, fmt.Errorf("insert supplier: %w", err)
	}
	return id, nil
}

func (r *SupplierRepository) Update(ctx context.Context, supplierID int, supplier *domain.Supplier) (bool, error) {
	tag, err := r.pool.Exec(ctx, `
		UPDATE suppliers
		SET name = $1, address = $2, phone = $3
		WHERE id_supplier = $4
	`, supplier.Name, supplier.Address, supplier.Phone, supplierID)
	if err != nil {
		return false, fmt.Errorf("update supplier: %w", err)
	}
	return tag.RowsAffected() > 0, nil
}

// Delete fails with a validation error when products still reference the
// supplier.
func (r *SupplierRepository) Delete(ctx context.Context, supplierID int) (bool, error) {
	tag, err := r.pool.Exec(ctx, `DELETE FROM suppliers WHERE id_supplier = $1`, supplierID)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == pgForeignKeyViolation {
			return false, &repository.ValidationError{
				Reason: fmt.Sprintf("supplier %d is still assigned to products", supplierID),
			}
		}
		return false, fmt.Errorf("delete supplier: %w", err)
	}
	return tag.RowsAffected() > 0, nil
}
