package pgsql

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/invoxel/ap_console_app/internal/apperrors"
	"github.com/invoxel/ap_console_app/internal/core/domain"
	portsrepo "github.com/invoxel/ap_console_app/internal/core/ports/repositories"
	"github.com/invoxel/ap_console_app/internal/models"
	"github.com/invoxel/ap_console_app/internal/utils/mapping"
)

type PgxUserRepository struct {
	BaseRepository
}

// newPgxUserRepository creates a new repository for user data.
func newPgxUserRepository(pool *pgxpool.Pool) portsrepo.UserRepositoryFacade {
	return &PgxUserRepository{BaseRepository: BaseRepository{Pool: pool}}
}

// Ensure PgxUserRepository implements portsrepo.UserRepositoryFacade
var _ portsrepo.UserRepositoryFacade = (*PgxUserRepository)(nil)

const userColumns = `
	user_id, name, email, role, password_hash,
	created_at, created_by, last_updated_at, last_updated_by, deleted_at`

func scanUserRow(row pgx.Row) (domain.User, error) {
	var m models.User
	err := row.Scan(
		&m.UserID, &m.Name, &m.Email, &m.Role, &m.PasswordHash,
		&m.CreatedAt, &m.CreatedBy, &m.LastUpdatedAt, &m.LastUpdatedBy, &m.DeletedAt,
	)
	if err != nil {
		return domain.User{}, err
	}
	return mapping.ToDomainUser(m), nil
}

// FindUserByID retrieves a user by ID, excluding soft-deleted rows.
func (r *PgxUserRepository) FindUserByID(ctx context.Context, userID string) (*domain.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE user_id = $1 AND deleted_at IS NULL;`
	user, err := scanUserRow(r.Pool.QueryRow(ctx, query, userID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("%w: user %s", apperrors.ErrNotFound, userID)
		}
		return nil, fmt.Errorf("failed to find user %s: %w", userID, err)
	}
	return &user, nil
}

// FindUserByEmail retrieves a user by email, excluding soft-deleted rows.
func (r *PgxUserRepository) FindUserByEmail(ctx context.Context, email string) (*domain.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE email = $1 AND deleted_at IS NULL;`
	user, err := scanUserRow(r.Pool.QueryRow(ctx, query, email))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("%w: user with email %s", apperrors.ErrNotFound, email)
		}
		return nil, fmt.Errorf("failed to find user by email: %w", err)
	}
	return &user, nil
}

// ListUsers retrieves a page of active users ordered by name.
func (r *PgxUserRepository) ListUsers(ctx context.Context, limit int, offset int) ([]domain.User, error) {
	query := `
		SELECT ` + userColumns + `
		FROM users
		WHERE deleted_at IS NULL
		ORDER BY name ASC, user_id ASC
		LIMIT $1 OFFSET $2;
	`
	rows, err := r.Pool.Query(ctx, query, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("failed to query users: %w", err)
	}
	defer rows.Close()

	var users []domain.User
	for rows.Next() {
		user, err := scanUserRow(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan user: %w", err)
		}
		users = append(users, user)
	}
	return users, rows.Err()
}

// SaveUser inserts a new user.
func (r *PgxUserRepository) SaveUser(ctx context.Context, user domain.User) error {
	m := mapping.ToModelUser(user)
	query := `
		INSERT INTO users (` + userColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10);
	`
	_, err := r.Pool.Exec(ctx, query,
		m.UserID, m.Name, m.Email, m.Role, m.PasswordHash,
		m.CreatedAt, m.CreatedBy, m.LastUpdatedAt, m.LastUpdatedBy, m.DeletedAt,
	)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return fmt.Errorf("%w: user with email %s already exists", apperrors.ErrDuplicate, m.Email)
		}
		return fmt.Errorf("failed to insert user %s: %w", m.UserID, err)
	}
	return nil
}

// UpdateUser rewrites the user's mutable columns.
func (r *PgxUserRepository) UpdateUser(ctx context.Context, user domain.User) error {
	m := mapping.ToModelUser(user)
	query := `
		UPDATE users
		SET name = $1, email = $2, role = $3, password_hash = $4,
			last_updated_at = $5, last_updated_by = $6
		WHERE user_id = $7 AND deleted_at IS NULL;
	`
	tag, err := r.Pool.Exec(ctx, query,
		m.Name, m.Email, m.Role, m.PasswordHash,
		m.LastUpdatedAt, m.LastUpdatedBy, m.UserID,
	)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return fmt.Errorf("%w: user with email %s already exists", apperrors.ErrDuplicate, m.Email)
		}
		return fmt.Errorf("failed to update user %s: %w", m.UserID, err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("%w: user %s", apperrors.ErrNotFound, m.UserID)
	}
	return nil
}

// MarkUserDeleted soft deletes the user.
func (r *PgxUserRepository) MarkUserDeleted(ctx context.Context, userID string, deletedBy string) error {
	query := `
		UPDATE users
		SET deleted_at = NOW(), last_updated_at = NOW(), last_updated_by = $1
		WHERE user_id = $2 AND deleted_at IS NULL;
	`
	tag, err := r.Pool.Exec(ctx, query, deletedBy, userID)
	if err != nil {
		return fmt.Errorf("failed to delete user %s: %w", userID, err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("%w: user %s", apperrors.ErrNotFound, userID)
	}
	return nil
}
