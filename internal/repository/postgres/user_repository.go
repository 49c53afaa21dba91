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
	UserResource = "user"
	RoleResource = "role"
)

// UserRepository provides database operations for API accounts and roles.
type UserRepository struct {
	pool *pgxpool.Pool
}

// NewUserRepository creates a new UserRepository instance
func NewUserRepository(pool *pgxpool.Pool) *UserRepository {
	return &UserRepository{
		pool: pool,
	}
}

// GetByUsername retrieves an account with its role name joined in. Used by
// sign-in; the returned PasswordHash is compared, never serialized.
func (r *UserRepository) GetByUsername(ctx context.Context, username string) (*domain.User, error) {
	var user domain.User
	err := r.pool.QueryRow(ctx, `
		SELECT u.id_user, u.username, u.password, u.id_role, r.name
		FROM users u
		JOIN roles r ON r.id_role = u.id_role
		WHERE u.username = $1
	`, username).Scan(&user.ID, &user.Username, &user.PasswordHash, &user.RoleID, &user.Role)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, &repository.NotFoundError{
				Resource: UserResource,
				Key:      "username",
				Value:    username,
			}
		}
		return nil, fmt.Errorf("query user by username %s: %w", username, err)
	}

	return &user, nil
}

// Create inserts an account. The password must already be hashed.
func (r *UserRepository) Create(ctx context.Context, user *domain.User) (int, error) {
	var id int
	err := r.pool.QueryRow(ctx, `
		INSERT INTO users (username, password, id_role)
		VALUES ($1,$2,$3)
		RETURNING id_user
	`, user.Username, user.PasswordHash, user.RoleID).Scan(&id)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) {
			switch pgErr.Code {
			case pgUniqueViolation:
				return 0, &repository.ValidationError{Reason: fmt.Sprintf("username %q is taken", user.Username)}
			case pgForeignKeyViolation:
				return 0, &repository.ValidationError{Reason: fmt.Sprintf("role %d does not exist", user.RoleID)}
			}
		}
		return 0, fmt.Errorf("insert user: %w", err)
	}
	return id, nil
}

func (r *UserRepository) Delete(ctx context.Context, userID int) (bool, error) {
	tag, err := r.pool.Exec(ctx, `DELETE FROM users WHERE id_user = $1`, userID)
	if err != nil {
		return false, fmt.Errorf("delete user: %w", err)
	}
	return tag.RowsAffected() > 0, nil
}

func (r *UserRepository) CreateRole(ctx context.Context, name string) (int, error) {
	var id int
	err := r.pool.QueryRow(ctx,
		`INSERT INTO roles (name) VALUES ($1) RETURNING id_role`, name,
	).Scan(&id)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == pgUniqueViolation {
			return 0, &repository.ValidationError{Reason: fmt.Sprintf("role %q already exists", name)}
		}
		return 0, fmt.Errorf("insert role: %w", err)
	}
	return id, nil
}

func (r *UserRepository) ListRoles(ctx context.Context) ([]domain.Role, error) {
	rows, err := r.pool.Query(ctx, `SELECT id_role, name FROM roles ORDER BY id_role ASC`)
	if err != nil {
		return nil, fmt.Errorf("list roles: %w", err)
	}
	defer rows.Close()

	roles := make([]domain.Role, 0)
	for rows.Next() {
		var role domain.Role
		if err := rows.Scan(&role.ID, &role.Name); err != nil {
			return nil, fmt.Errorf("scan role row: %w", err)
		}
		roles = append(roles, role)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate role rows: %w", err)
	}

	return roles, nil
}
