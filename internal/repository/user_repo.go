package repository

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"

	"craftcrm/internal/model"
)

type UserRepository struct {
	db *pgxpool.Pool
}

func NewUserRepository(db *pgxpool.Pool) *UserRepository {
	return &UserRepository{db: db}
}

// CreateUser inserts a new user.
func (r *UserRepository) CreateUser(ctx context.Context, u *model.User) error {
	query := `
        INSERT INTO users (name, email, password_hash, role, active, created_at)
        VALUES ($1, $2, $3, $4, $5, NOW())
        RETURNING id
    `
	return r.db.QueryRow(ctx, query, u.Name, u.Email, u.PasswordHash, u.Role, u.Active).Scan(&u.ID)
}

// FindByEmail returns a user by email.
func (r *UserRepository) FindByEmail(ctx context.Context, email string) (*model.User, error) {
	query := `
        SELECT id, name, email, password_hash, role, active, created_at
        FROM users
        WHERE email = $1
    `
	var u model.User
	err := r.db.QueryRow(ctx, query, email).Scan(
		&u.ID, &u.Name, &u.Email, &u.PasswordHash, &u.Role, &u.Active, &u.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &u, nil
}

// FindByID returns a user by id.
func (r *UserRepository) FindByID(ctx context.Context, id int) (*model.User, error) {
	query := `
        SELECT id, name, email, password_hash, role, active, created_at
        FROM users
        WHERE id = $1
    `
	var u model.User
	err := r.db.QueryRow(ctx, query, id).Scan(
		&u.ID, &u.Name, &u.Email, &u.PasswordHash, &u.Role, &u.Active, &u.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &u, nil
}

// FindFirstActiveByRole resolves the user auto-assigned for a role.
// Earliest-created wins, a stable tie-break so repeated assignments pick
// the same user.
func (r *UserRepository) FindFirstActiveByRole(ctx context.Context, role string) (*model.User, error) {
	query := `
        SELECT id, name, email, password_hash, role, active, created_at
        FROM users
        WHERE role = $1 AND active = TRUE
        ORDER BY created_at ASC, id ASC
        LIMIT 1
    `
	var u model.User
	err := r.db.QueryRow(ctx, query, role).Scan(
		&u.ID, &u.Name, &u.Email, &u.PasswordHash, &u.Role, &u.Active, &u.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &u, nil
}
