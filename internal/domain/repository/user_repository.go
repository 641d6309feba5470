package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"auth_api/internal/common"
	"auth_api/internal/domain/model"

	"github.com/jackc/pgx/v5/pgconn"
)

// UserRepository is the credential store. Implementations enforce email and
// username uniqueness themselves: Create reports a collision as
// common.ErrDuplicateEmail or common.ErrDuplicateUsername. Lookups return
// common.ErrNotFound when nothing matches.
type UserRepository interface {
	// Create persists user and fills in ID and CreatedAt.
	Create(ctx context.Context, user *model.User) error
	FindByEmail(ctx context.Context, email string) (*model.User, error)
	FindByUsername(ctx context.Context, username string) (*model.User, error)
	FindByID(ctx context.Context, id string) (*model.User, error)
	// List returns all users ordered by creation time, then id.
	List(ctx context.Context) ([]model.User, error)
}

const (
	constraintUsersEmail    = "users_email_key"
	constraintUsersUsername = "users_username_key"

	invalidTextRepresentation = "22P02"
)

type pgUserRepository struct {
	db *sql.DB
}

func NewPgUserRepository(db *sql.DB) UserRepository {
	return &pgUserRepository{db: db}
}

func (r *pgUserRepository) Create(ctx context.Context, user *model.User) error {
	query := `INSERT INTO users (username, name, email, password_hash)
	          VALUES ($1, $2, $3, $4)
	          RETURNING id, created_at`
	err := r.db.QueryRowContext(ctx, query, user.Username, user.Name, user.Email, user.Password).
		Scan(&user.ID, &user.CreatedAt)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == common.UniqueViolation {
			switch pgErr.ConstraintName {
			case constraintUsersEmail:
				return common.ErrDuplicateEmail
			case constraintUsersUsername:
				return common.ErrDuplicateUsername
			}
			return fmt.Errorf("user with given username or email already exists: %w", common.ErrConflict)
		}
		return fmt.Errorf("pgUserRepository.Create: %w", err)
	}
	return nil
}

const selectUserColumns = `SELECT id, username, name, email, password_hash, created_at FROM users`

func (r *pgUserRepository) FindByEmail(ctx context.Context, email string) (*model.User, error) {
	user, err := r.findOne(ctx, selectUserColumns+` WHERE email = $1`, email)
	if err != nil {
		return nil, wrapFind("FindByEmail", err)
	}
	return user, nil
}

func (r *pgUserRepository) FindByUsername(ctx context.Context, username string) (*model.User, error) {
	user, err := r.findOne(ctx, selectUserColumns+` WHERE username = $1`, username)
	if err != nil {
		return nil, wrapFind("FindByUsername", err)
	}
	return user, nil
}

func (r *pgUserRepository) FindByID(ctx context.Context, id string) (*model.User, error) {
	user, err := r.findOne(ctx, selectUserColumns+` WHERE id = $1`, id)
	if err != nil {
		return nil, wrapFind("FindByID", err)
	}
	return user, nil
}

func (r *pgUserRepository) List(ctx context.Context) ([]model.User, error) {
	rows, err := r.db.QueryContext(ctx, selectUserColumns+` ORDER BY created_at, id`)
	if err != nil {
		return nil, fmt.Errorf("pgUserRepository.List: %w", err)
	}
	defer rows.Close()

	users := []model.User{}
	for rows.Next() {
		var u model.User
		if err := rows.Scan(&u.ID, &u.Username, &u.Name, &u.Email, &u.Password, &u.CreatedAt); err != nil {
			return nil, fmt.Errorf("pgUserRepository.List scan: %w", err)
		}
		users = append(users, u)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("pgUserRepository.List rows: %w", err)
	}
	return users, nil
}

func (r *pgUserRepository) findOne(ctx context.Context, query string, arg string) (*model.User, error) {
	user := &model.User{}
	err := r.db.QueryRowContext(ctx, query, arg).Scan(
		&user.ID, &user.Username, &user.Name, &user.Email, &user.Password, &user.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	return user, nil
}

func wrapFind(op string, err error) error {
	if errors.Is(err, sql.ErrNoRows) {
		return common.ErrNotFound
	}
	// a malformed uuid cannot match any row
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == invalidTextRepresentation {
		return common.ErrNotFound
	}
	return fmt.Errorf("pgUserRepository.%s: %w", op, err)
}
