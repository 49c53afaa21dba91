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

// CategoryRepository provides database operations for product categories.
type CategoryRepository struct {
	pool *pgxpool.Pool
}

// NewCategoryRepository creates a new CategoryRepository instance
func NewCategoryRepository(pool *pgxpool.Pool) *CategoryRepository {
	return &CategoryRepository{
		pool: pool,
	}
}

func (r *CategoryRepository) GetAll(ctx context.Context) ([]domain.Category, error) {
	rows, err := r.pool.Query(ctx, `SELECT id_category, name FROM categories ORDER BY id_category ASC`)
	if err != nil {
		return nil, fmt.Errorf("list categories: %w", err)
	}
	defer rows.Close()

	categories := make([]domain.Category, 0)
	for rows.Next() {
		var c domain.Category
		if err := rows.Scan(&c.ID, &c.Name); err != nil {
			return nil, fmt.Errorf("scan category row: %w", err)
		}
		categories = append(categories, c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate category rows: %w", err)
	}

	return categories, nil
}

func (r *CategoryRepository) Create(ctx context.Context, name string) (int, error) {
	var id int
	err := r.pool.QueryRow(ctx,
		`INSERT INTO categories (name) VALUES ($1) RETURNING id_category`, name,
	).Scan(&id)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == pgUniqueViolation {
			return 0, &repository.ValidationError{Reason: fmt.Sprintf("category %q already exists", name)}
		}
		return 0, fmt.Errorf("insert category: %w", err)
	}
	return id, nil
}

func (r *CategoryRepository) Update(ctx context.Context, categoryID int, name string) (bool, error) {
	tag, err := r.pool.Exec(ctx,
		`UPDATE categories SET name = $1 WHERE id_category = $2`, name, categoryID)
	if err != nil {
		return false, fmt.Errorf("update category: %w", err)
	}
	return tag.RowsAffected() > 0, nil
}

// Delete fails with a validation error when products still reference the
// category.
func (r *CategoryRepository) Delete(ctx context.Context, categoryID int) (bool, error) {
	tag, err := r.pool.Exec(ctx, `DELETE FROM categories WHERE id_category = $1`, categoryID)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == pgForeignKeyViolation {
			return false, &repository.ValidationError{
				Reason: fmt.Sprintf("category %d is still assigned to products", categoryID),
			}
		}
		return false, fmt.Errorf("delete category: %w", err)
	}
	return tag.RowsAffected() > 0, nil
}
