package accounts_repo

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/lib/pq"
	"github.com/shopspring/decimal"

	"github.com/ProttoyDip/Bank-Management-System/internal/domain"
)

const uniqueViolation = "23505"

const accountColumns = `id, account_number, type, balance, is_active, user_id, created_at, updated_at`

type accountRepository struct {
	db *sql.DB
}

func NewAccountRepository(db *sql.DB) *accountRepository {
	return &accountRepository{db: db}
}

func (r *accountRepository) CreateTx(ctx context.Context, querier domain.Querier, account *domain.Account) error {
	query := `
		INSERT INTO accounts (account_number, type, balance, is_active, user_id)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id, created_at, updated_at
	`
	err := querier.QueryRowContext(ctx, query,
		account.AccountNumber, account.Type, account.Balance, account.IsActive, account.UserID,
	).Scan(&account.ID, &account.CreatedAt, &account.UpdatedAt)
	if err != nil {
		var pgErr *pq.Error
		if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
			return domain.ErrAccountNumberTaken
		}
		return fmt.Errorf("failed to create account for user %d: %w", account.UserID, err)
	}
	return nil
}

func (r *accountRepository) GetByIDTx(ctx context.Context, querier domain.Querier, id int64) (*domain.Account, error) {
	query := `SELECT ` + accountColumns + ` FROM accounts WHERE id = $1`
	account := &domain.Account{}
	err := scanAccount(querier.QueryRowContext(ctx, query, id), account)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrAccountNotFound
		}
		return nil, fmt.Errorf("failed to get account %d: %w", id, err)
	}
	return account, nil
}

func (r *accountRepository) GetByNumberTx(ctx context.Context, querier domain.Querier, accountNumber string) (*domain.Account, error) {
	query := `SELECT ` + accountColumns + ` FROM accounts WHERE account_number = $1`
	account := &domain.Account{}
	err := scanAccount(querier.QueryRowContext(ctx, query, accountNumber), account)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrAccountNotFound
		}
		return nil, fmt.Errorf("failed to get account by number %s: %w", accountNumber, err)
	}
	return account, nil
}

func (r *accountRepository) ListTx(ctx context.Context, querier domain.Querier) ([]*domain.Account, error) {
	query := `SELECT ` + accountColumns + ` FROM accounts ORDER BY id`
	rows, err := querier.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to list accounts: %w", err)
	}
	return collectAccounts(rows)
}

func (r *accountRepository) ListByUserIDTx(ctx context.Context, querier domain.Querier, userID int64) ([]*domain.Account, error) {
	query := `SELECT ` + accountColumns + ` FROM accounts WHERE user_id = $1 ORDER BY id`
	rows, err := querier.QueryContext(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list accounts for user %d: %w", userID, err)
	}
	return collectAccounts(rows)
}

func (r *accountRepository) UpdateBalanceTx(ctx context.Context, querier domain.Querier, accountID int64, amount decimal.Decimal) (*domain.Account, error) {
	lockQuery := `SELECT ` + accountColumns + ` FROM accounts WHERE id = $1 FOR UPDATE`
	account := &domain.Account{}
	err := scanAccount(querier.QueryRowContext(ctx, lockQuery, accountID), account)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrAccountNotFound
		}
		return nil, fmt.Errorf("failed to lock account %d for balance update: %w", accountID, err)
	}
	if account.Balance.Add(amount).IsNegative() {
		return nil, domain.ErrInsufficientFunds
	}

	updateQuery := `
		UPDATE accounts
		SET balance = balance + $1, updated_at = now()
		WHERE id = $2
		RETURNING balance, updated_at
	`
	err = querier.QueryRowContext(ctx, updateQuery, amount, accountID).Scan(&account.Balance, &account.UpdatedAt)
	if err != nil {
		return nil, fmt.Errorf("failed to update balance for account %d: %w", accountID, err)
	}
	return account, nil
}

func (r *accountRepository) DeleteByUserIDTx(ctx context.Context, querier domain.Querier, userID int64) (int64, error) {
	query := `DELETE FROM accounts WHERE user_id = $1`
	res, err := querier.ExecContext(ctx, query, userID)
	if err != nil {
		return 0, fmt.Errorf("failed to delete accounts for user %d: %w", userID, err)
	}
	rowsAffected, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("failed to get rows affected: %w", err)
	}
	return rowsAffected, nil
}

func scanAccount(row *sql.Row, account *domain.Account) error {
	return row.Scan(
		&account.ID,
		&account.AccountNumber,
		&account.Type,
		&account.Balance,
		&account.IsActive,
		&account.UserID,
		&account.CreatedAt,
		&account.UpdatedAt,
	)
}

func collectAccounts(rows *sql.Rows) ([]*domain.Account, error) {
	defer rows.Close()

	accounts := []*domain.Account{}
	for rows.Next() {
		account := &domain.Account{}
		err := rows.Scan(
			&account.ID,
			&account.AccountNumber,
			&account.Type,
			&account.Balance,
			&account.IsActive,
			&account.UserID,
			&account.CreatedAt,
			&account.UpdatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan account row: %w", err)
		}
		accounts = append(accounts, account)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate account rows: %w", err)
	}
	return accounts, nil
}
