package users_repo

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/lib/pq"

	"github.com/ProttoyDip/Bank-Management-System/internal/domain"
)

const uniqueViolation = "23505"

type userRepository struct {
	db *sql.DB
}

func NewUserRepository(db *sql.DB) *userRepository {
	return &userRepository{db: db}
}

func (r *userRepository) CreateTx(ctx context.Context, querier domain.Querier, user *domain.User) error {
	query := `
		INSERT INTO users (name, email, phone, address)
		VALUES ($1, $2, $3, $4)
		RETURNING id, created_at, updated_at
	`
	err := querier.QueryRowContext(ctx, query,
		user.Name, user.Email, user.Phone, user.Address,
	).Scan(&user.ID, &user.CreatedAt, &user.UpdatedAt)
	if err != nil {
		var pgErr *pq.Error
		if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
			return domain.ErrEmailTaken
		}
		return fmt.Errorf("failed to create user with email %s: %w", user.Email, err)
	}
	return nil
}

func (r *userRepository) GetByIDTx(ctx context.Context, querier domain.Querier, id int64) (*domain.User, error) {
	query := `
		SELECT id, name, email, phone, address, created_at, updated_at
		FROM users
		WHERE id = $1
	`
	return scanUser(querier.QueryRowContext(ctx, query, id), id)
}

func (r *userRepository) GetByEmailTx(ctx context.Context, querier domain.Querier, email string) (*domain.User, error) {
	query := `
		SELECT id, name, email, phone, address, created_at, updated_at
		FROM users
		WHERE email = $1
	`
	user := &domain.User{}
	var phone, address sql.NullString
	err := querier.QueryRowContext(ctx, query, email).Scan(
		&user.ID, &user.Name, &user.Email, &phone, &address, &user.CreatedAt, &user.UpdatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrUserNotFound
		}
		return nil, fmt.Errorf("failed to get user by email %s: %w", email, err)
	}
	user.Phone = nullableString(phone)
	user.Address = nullableString(address)
	return user, nil
}

func (r *userRepository) ListTx(ctx context.Context, querier domain.Querier) ([]*domain.User, error) {
	query := `
		SELECT id, name, email, phone, address, created_at, updated_at
		FROM users
		ORDER BY id
	`
	rows, err := querier.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to list users: %w", err)
	}
	defer rows.Close()

	users := []*domain.User{}
	for rows.Next() {
		user := &domain.User{}
		var phone, address sql.NullString
		if err := rows.Scan(&user.ID, &user.Name, &user.Email, &phone, &address, &user.CreatedAt, &user.UpdatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan user row: %w", err)
		}
		user.Phone = nullableString(phone)
		user.Address = nullableString(address)
		users = append(users, user)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate user rows: %w", err)
	}
	return users, nil
}

func (r *userRepository) UpdateTx(ctx context.Context, querier domain.Querier, user *domain.User) error {
	query := `
		UPDATE users
		SET name = $1, email = $2, phone = $3, address = $4, updated_at = now()
		WHERE id = $5
		RETURNING updated_at
	`
	err := querier.QueryRowContext(ctx, query,
		user.Name, user.Email, user.Phone, user.Address, user.ID,
	).Scan(&user.UpdatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return domain.ErrUserNotFound
		}
		var pgErr *pq.Error
		if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
			return domain.ErrEmailTaken
		}
		return fmt.Errorf("failed to update user %d: %w", user.ID, err)
	}
	return nil
}

func (r *userRepository) DeleteTx(ctx context.Context, querier domain.Querier, id int64) error {
	query := `DELETE FROM users WHERE id = $1`
	res, err := querier.ExecContext(ctx, query, id)
	if err != nil {
		return fmt.Errorf("failed to delete user %d: %w", id, err)
	}
	rowsAffected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return domain.ErrUserNotFound
	}
	return nil
}

func scanUser(row *sql.Row, id int64) (*domain.User, error) {
	user := &domain.User{}
	var phone, address sql.NullString
	err := row.Scan(&user.ID, &user.Name, &user.Email, &phone, &address, &user.CreatedAt, &user.UpdatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrUserNotFound
		}
		return nil, fmt.Errorf("failed to get user %d: %w", id, err)
	}
	user.Phone = nullableString(phone)
	user.Address = nullableString(address)
	return user, nil
}

func nullableString(s sql.NullString) *string {
	if !s.Valid {
		return nil
	}
	return &s.String
}
