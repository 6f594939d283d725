package repository

import (
	"context"
	"database/sql"
	"errors"

	"github.com/eventhub/eventhub-go/internal/model"
)

var (
	ErrUserNotFound  = errors.New("user not found")
	ErrDuplicateUser = errors.New("user already exists")
)

// UserRepository handles user persistence operations.
type UserRepository struct {
	db *DB
}

// NewUserRepository creates a new UserRepository.
func NewUserRepository(db *DB) *UserRepository {
	return &UserRepository{db: db}
}

// Create inserts a new user and sets the generated ID on the user struct.
func (r *UserRepository) Create(ctx context.Context, user *model.User) error {
	query := `INSERT INTO users (name, email, password) VALUES (?, ?, ?)`

	id, err := r.db.insert(ctx, r.db, query, user.Name, user.Email, user.Password)
	if err != nil {
		if IsUniqueViolation(err) {
			return ErrDuplicateUser
		}
		return err
	}

	user.ID = id
	return nil
}

// FindByNameOrEmail returns the first user whose name or email matches.
func (r *UserRepository) FindByNameOrEmail(ctx context.Context, name, email string) (*model.User, error) {
	query := `SELECT id, name, email, password FROM users WHERE name = ? OR email = ? LIMIT 1`
	return r.getOne(ctx, query, name, email)
}

// GetByEmail retrieves a user by their email address.
func (r *UserRepository) GetByEmail(ctx context.Context, email string) (*model.User, error) {
	query := `SELECT id, name, email, password FROM users WHERE email = ?`
	return r.getOne(ctx, query, email)
}

// GetByID retrieves a user by their ID.
func (r *UserRepository) GetByID(ctx context.Context, id int64) (*model.User, error) {
	query := `SELECT id, name, email, password FROM users WHERE id = ?`
	return r.getOne(ctx, query, id)
}

func (r *UserRepository) getOne(ctx context.Context, query string, args ...any) (*model.User, error) {
	user := &model.User{}
	err := r.db.QueryRowContext(ctx, r.db.Dialect.Rebind(query), args...).Scan(
		&user.ID, &user.Name, &user.Email, &user.Password,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}

	return user, nil
}
