package accounts_repo

import (
	"context"

	"github.com/shopspring/decimal"

	"github.com/ProttoyDip/Bank-Management-System/internal/domain"
)

type AccountRepository interface {
	CreateTx(ctx context.Context, querier domain.Querier, account *domain.Account) error
	GetByIDTx(ctx context.Context, querier domain.Querier, id int64) (*domain.Account, error)
	GetByNumberTx(ctx context.Context, querier domain.Querier, accountNumber string) (*domain.Account, error)
	ListTx(ctx context.Context, querier domain.Querier) ([]*domain.Account, error)
	ListByUserIDTx(ctx context.Context, querier domain.Querier, userID int64) ([]*domain.Account, error)
	// UpdateBalanceTx applies amount (positive for deposits, negative for
	// withdrawals) to the account balance. The current balance row is locked
	// for the duration of the surrounding transaction, the result is checked
	// against the non-negative floor, and the updated account is returned.
	UpdateBalanceTx(ctx context.Context, querier domain.Querier, accountID int64, amount decimal.Decimal) (*domain.Account, error)
	DeleteByUserIDTx(ctx context.Context, querier domain.Querier, userID int64) (int64, error)
}
