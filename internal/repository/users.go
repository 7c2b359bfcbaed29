package repository

import (
	"context"
	"database/sql"
	"errors"

	"github.com/lib/pq"

	"tasktracker/internal/models"
)

var (
	// ErrDuplicateEmail is returned when registering an email that is
	// already taken.
	ErrDuplicateEmail = errors.New("email already registered")
	// ErrUserNotFound is returned when no user matches the given email.
	ErrUserNotFound = errors.New("user not found")
)

// UserRepo persists user credentials. Users are created once at
// registration and never modified or deleted through the API.
type UserRepo struct {
	db *sql.DB
}

func NewUserRepo(db *sql.DB) *UserRepo {
	return &UserRepo{db: db}
}

// Create inserts a new user with the already-hashed password. Emails are
// unique, case-sensitive as stored; a conflict yields ErrDuplicateEmail.
func (r *UserRepo) Create(ctx context.Context, email, hashedPassword string) (models.User, error) {
	user := models.User{Email: email, HashedPassword: hashedPassword}
	err := r.db.QueryRowContext(ctx,
		"INSERT INTO users (email, hashed_password) VALUES ($1, $2) RETURNING id",
		email, hashedPassword,
	).Scan(&user.ID)
	if err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Code == "23505" {
			return models.User{}, ErrDuplicateEmail
		}
		return models.User{}, err
	}
	return user, nil
}

func (r *UserRepo) FindByEmail(ctx context.Context, email string) (models.User, error) {
	var user models.User
	err := r.db.QueryRowContext(ctx,
		"SELECT id, email, hashed_password FROM users WHERE email = $1",
		email,
	).Scan(&user.ID, &user.Email, &user.HashedPassword)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return models.User{}, ErrUserNotFound
		}
		return models.User{}, err
	}
	return user, nil
}
