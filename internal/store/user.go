package store

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/lib/pq"
	"github.com/wanderbook/apiserver/types"
)

const userSelect = `
	SELECT u.id, u.email, u.first_name, u.last_name, u.password_hash, u.created_at, u.updated_at,
		COALESCE(ARRAY_AGG(r.name) FILTER (WHERE r.name IS NOT NULL), '{}') AS roles
	FROM users u
	LEFT JOIN user_roles ur ON ur.user_id = u.id
	LEFT JOIN roles r ON r.id = ur.role_id`

// UserRepository handles persistence for users and their role
// assignments.
type UserRepository struct {
	db *sql.DB
}

func NewUserRepository(db *sql.DB) *UserRepository {
	return &UserRepository{db: db}
}

func (r *UserRepository) GetByID(ctx context.Context, id string) (types.User, error) {
	const query = userSelect + `
	WHERE u.id = $1
	GROUP BY u.id`
	return r.scanUser(r.db.QueryRowContext(ctx, query, id))
}

func (r *UserRepository) GetByEmail(ctx context.Context, email string) (types.User, error) {
	const query = userSelect + `
	WHERE LOWER(u.email) = LOWER($1)
	GROUP BY u.id`
	return r.scanUser(r.db.QueryRowContext(ctx, query, email))
}

// Create inserts the user and its role assignments in one transaction.
// A concurrent registration with the same email surfaces as ErrDuplicate.
func (r *UserRepository) Create(ctx context.Context, user types.User) (types.User, error) {
	now := time.Now()
	user.CreatedAt = now
	user.UpdatedAt = now

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return types.User{}, err
	}
	defer func() {
		_ = tx.Rollback()
	}()

	const insertUser = `
		INSERT INTO users (id, email, first_name, last_name, password_hash, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)`
	if _, err := tx.ExecContext(
		ctx,
		insertUser,
		user.ID,
		user.Email,
		user.FirstName,
		user.LastName,
		user.PasswordHash,
		user.CreatedAt,
		user.UpdatedAt,
	); err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Code.Name() == "unique_violation" {
			return types.User{}, ErrDuplicate
		}
		return types.User{}, err
	}

	const insertRole = `
		INSERT INTO user_roles (user_id, role_id)
		SELECT $1, id FROM roles WHERE LOWER(name) = LOWER($2)`
	for _, role := range user.Roles {
		result, err := tx.ExecContext(ctx, insertRole, user.ID, role)
		if err != nil {
			return types.User{}, err
		}
		affected, err := result.RowsAffected()
		if err != nil {
			return types.User{}, err
		}
		if affected == 0 {
			return types.User{}, ErrUnknownRole
		}
	}

	if err := tx.Commit(); err != nil {
		return types.User{}, err
	}
	return user, nil
}

func (r *UserRepository) scanUser(row *sql.Row) (types.User, error) {
	var user types.User
	var roles pq.StringArray
	err := row.Scan(
		&user.ID,
		&user.Email,
		&user.FirstName,
		&user.LastName,
		&user.PasswordHash,
		&user.CreatedAt,
		&user.UpdatedAt,
		&roles,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return types.User{}, ErrNotFound
		}
		return types.User{}, err
	}
	user.Roles = []string(roles)
	return user, nil
}
