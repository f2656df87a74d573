package ledger

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/ProttoyDip/Bank-Management-System/internal/domain"
	"github.com/ProttoyDip/Bank-Management-System/internal/repository/accounts_repo"
	"github.com/ProttoyDip/Bank-Management-System/internal/repository/users_repo"
	"github.com/ProttoyDip/Bank-Management-System/internal/util"
)

var (
	ErrNameEmailRequired  = errors.New("name and email are required")
	ErrUserIDRequired     = errors.New("userId is required")
	ErrInvalidAccountType = errors.New("invalid account type")
	ErrNonPositiveAmount  = errors.New("a positive amount is required")
)

type LedgerService interface {
	CreateUser(ctx context.Context, req *CreateUserRequest) (*domain.User, error)
	GetUser(ctx context.Context, id int64) (*domain.User, error)
	ListUsers(ctx context.Context) ([]*domain.User, error)
	UpdateUser(ctx context.Context, id int64, req *UpdateUserRequest) (*domain.User, error)
	DeleteUser(ctx context.Context, id int64) error
	CreateAccount(ctx context.Context, req *CreateAccountRequest) (*domain.Account, error)
	GetAccount(ctx context.Context, id int64) (*domain.Account, error)
	ListAccounts(ctx context.Context) ([]*domain.Account, error)
	Deposit(ctx context.Context, accountID int64, amount decimal.Decimal) (*domain.Account, error)
	Withdraw(ctx context.Context, accountID int64, amount decimal.Decimal) (*domain.Account, error)
}

type ledgerService struct {
	db          *sql.DB
	userRepo    users_repo.UserRepository
	accountRepo accounts_repo.AccountRepository
	logger      *zap.Logger
}

func NewLedgerService(
	db *sql.DB,
	userRepo users_repo.UserRepository,
	accountRepo accounts_repo.AccountRepository,
	logger *zap.Logger,
) LedgerService {
	return &ledgerService{
		db:          db,
		userRepo:    userRepo,
		accountRepo: accountRepo,
		logger:      logger,
	}
}

func (s *ledgerService) CreateUser(ctx context.Context, req *CreateUserRequest) (*domain.User, error) {
	if strings.TrimSpace(req.Name) == "" || strings.TrimSpace(req.Email) == "" {
		return nil, ErrNameEmailRequired
	}

	// Friendly-path check; the unique index on users.email is what actually
	// guards against two concurrent creates with the same address.
	if _, err := s.userRepo.GetByEmailTx(ctx, s.db, req.Email); err == nil {
		s.logger.Warn("Attempt to create user with taken email", zap.String("email", req.Email))
		return nil, domain.ErrEmailTaken
	} else if !errors.Is(err, domain.ErrUserNotFound) {
		s.logger.Error("Failed to check email availability", zap.String("email", req.Email), zap.Error(err))
		return nil, fmt.Errorf("failed to check email %s: %w", req.Email, err)
	}

	user := &domain.User{
		Name:    req.Name,
		Email:   req.Email,
		Phone:   req.Phone,
		Address: req.Address,
	}
	if err := s.userRepo.CreateTx(ctx, s.db, user); err != nil {
		if errors.Is(err, domain.ErrEmailTaken) {
			s.logger.Warn("Attempt to create user with taken email", zap.String("email", req.Email))
			return nil, domain.ErrEmailTaken
		}
		s.logger.Error("Failed to create user", zap.String("email", req.Email), zap.Error(err))
		return nil, fmt.Errorf("failed to create user: %w", err)
	}

	// A fresh user owns no accounts yet; the relation is still part of the row
	// returned to the caller.
	user.Accounts = []*domain.Account{}

	s.logger.Info("User created", zap.Int64("user_id", user.ID), zap.String("email", user.Email))
	return user, nil
}

func (s *ledgerService) GetUser(ctx context.Context, id int64) (*domain.User, error) {
	user, err := s.userRepo.GetByIDTx(ctx, s.db, id)
	if err != nil {
		if errors.Is(err, domain.ErrUserNotFound) {
			return nil, domain.ErrUserNotFound
		}
		s.logger.Error("Failed to get user", zap.Int64("user_id", id), zap.Error(err))
		return nil, fmt.Errorf("failed to get user %d: %w", id, err)
	}

	accounts, err := s.accountRepo.ListByUserIDTx(ctx, s.db, id)
	if err != nil {
		s.logger.Error("Failed to load accounts for user", zap.Int64("user_id", id), zap.Error(err))
		return nil, fmt.Errorf("failed to load accounts for user %d: %w", id, err)
	}
	user.Accounts = accounts
	return user, nil
}

func (s *ledgerService) ListUsers(ctx context.Context) ([]*domain.User, error) {
	users, err := s.userRepo.ListTx(ctx, s.db)
	if err != nil {
		s.logger.Error("Failed to list users", zap.Error(err))
		return nil, fmt.Errorf("failed to list users: %w", err)
	}

	accounts, err := s.accountRepo.ListTx(ctx, s.db)
	if err != nil {
		s.logger.Error("Failed to list accounts for users", zap.Error(err))
		return nil, fmt.Errorf("failed to list accounts: %w", err)
	}

	byUser := make(map[int64][]*domain.Account, len(users))
	for _, account := range accounts {
		byUser[account.UserID] = append(byUser[account.UserID], account)
	}
	for _, user := range users {
		user.Accounts = byUser[user.ID]
		if user.Accounts == nil {
			user.Accounts = []*domain.Account{}
		}
	}
	return users, nil
}

func (s *ledgerService) UpdateUser(ctx context.Context, id int64, req *UpdateUserRequest) (*domain.User, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		s.logger.Error("Failed to begin transaction for user update", zap.Int64("user_id", id), zap.Error(err))
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer rollbackOnPanic(tx)

	user, err := s.userRepo.GetByIDTx(ctx, tx, id)
	if err != nil {
		tx.Rollback()
		if errors.Is(err, domain.ErrUserNotFound) {
			return nil, domain.ErrUserNotFound
		}
		s.logger.Error("Failed to get user for update", zap.Int64("user_id", id), zap.Error(err))
		return nil, fmt.Errorf("failed to get user %d for update: %w", id, err)
	}

	if req.Name != nil {
		user.Name = *req.Name
	}
	if req.Email != nil {
		user.Email = *req.Email
	}
	if req.Phone != nil {
		user.Phone = req.Phone
	}
	if req.Address != nil {
		user.Address = req.Address
	}

	if err := s.userRepo.UpdateTx(ctx, tx, user); err != nil {
		tx.Rollback()
		if errors.Is(err, domain.ErrEmailTaken) {
			s.logger.Warn("Attempt to update user to taken email", zap.Int64("user_id", id))
			return nil, domain.ErrEmailTaken
		}
		s.logger.Error("Failed to update user", zap.Int64("user_id", id), zap.Error(err))
		return nil, fmt.Errorf("failed to update user %d: %w", id, err)
	}

	if err := tx.Commit(); err != nil {
		s.logger.Error("Failed to commit transaction for user update", zap.Int64("user_id", id), zap.Error(err))
		return nil, fmt.Errorf("failed to commit transaction: %w", err)
	}

	s.logger.Info("User updated", zap.Int64("user_id", id))
	user.Accounts = []*domain.Account{}
	return user, nil
}

// DeleteUser removes the user and every account the user owns in a single
// transaction. Either both disappear or neither does.
func (s *ledgerService) DeleteUser(ctx context.Context, id int64) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		s.logger.Error("Failed to begin transaction for user delete", zap.Int64("user_id", id), zap.Error(err))
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer rollbackOnPanic(tx)

	deleted, err := s.accountRepo.DeleteByUserIDTx(ctx, tx, id)
	if err != nil {
		tx.Rollback()
		s.logger.Error("Failed to delete accounts for user", zap.Int64("user_id", id), zap.Error(err))
		return fmt.Errorf("failed to delete accounts for user %d: %w", id, err)
	}

	if err := s.userRepo.DeleteTx(ctx, tx, id); err != nil {
		tx.Rollback()
		if errors.Is(err, domain.ErrUserNotFound) {
			return domain.ErrUserNotFound
		}
		s.logger.Error("Failed to delete user", zap.Int64("user_id", id), zap.Error(err))
		return fmt.Errorf("failed to delete user %d: %w", id, err)
	}

	if err := tx.Commit(); err != nil {
		s.logger.Error("Failed to commit transaction for user delete", zap.Int64("user_id", id), zap.Error(err))
		return fmt.Errorf("failed to commit transaction: %w", err)
	}

	s.logger.Info("User deleted with owned accounts",
		zap.Int64("user_id", id),
		zap.Int64("accounts_deleted", deleted))
	return nil
}

func (s *ledgerService) CreateAccount(ctx context.Context, req *CreateAccountRequest) (*domain.Account, error) {
	if req.UserID == 0 {
		return nil, ErrUserIDRequired
	}
	accountType := req.Type
	if accountType == "" {
		accountType = domain.AccountTypeSavings
	}
	if !accountType.Valid() {
		return nil, ErrInvalidAccountType
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		s.logger.Error("Failed to begin transaction for account creation", zap.Int64("user_id", req.UserID), zap.Error(err))
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer rollbackOnPanic(tx)

	if _, err := s.userRepo.GetByIDTx(ctx, tx, req.UserID); err != nil {
		tx.Rollback()
		if errors.Is(err, domain.ErrUserNotFound) {
			s.logger.Warn("Account creation for unknown user", zap.Int64("user_id", req.UserID))
			return nil, domain.ErrUserNotFound
		}
		s.logger.Error("Failed to check owner for account creation", zap.Int64("user_id", req.UserID), zap.Error(err))
		return nil, fmt.Errorf("failed to check user %d: %w", req.UserID, err)
	}

	account := &domain.Account{
		AccountNumber: util.GenerateAccountNumber(),
		Type:          accountType,
		Balance:       decimal.Zero,
		IsActive:      true,
		UserID:        req.UserID,
	}
	if err := s.accountRepo.CreateTx(ctx, tx, account); err != nil {
		tx.Rollback()
		if errors.Is(err, domain.ErrAccountNumberTaken) {
			// Generator collision within one millisecond. The caller may retry.
			s.logger.Warn("Account number collision", zap.String("account_number", account.AccountNumber))
			return nil, domain.ErrAccountNumberTaken
		}
		s.logger.Error("Failed to create account", zap.Int64("user_id", req.UserID), zap.Error(err))
		return nil, fmt.Errorf("failed to create account for user %d: %w", req.UserID, err)
	}

	if err := tx.Commit(); err != nil {
		s.logger.Error("Failed to commit transaction for account creation", zap.Int64("user_id", req.UserID), zap.Error(err))
		return nil, fmt.Errorf("failed to commit transaction: %w", err)
	}

	s.logger.Info("Account created",
		zap.Int64("account_id", account.ID),
		zap.String("account_number", account.AccountNumber),
		zap.Int64("user_id", req.UserID),
		zap.String("type", string(account.Type)))
	return account, nil
}

func (s *ledgerService) GetAccount(ctx context.Context, id int64) (*domain.Account, error) {
	account, err := s.accountRepo.GetByIDTx(ctx, s.db, id)
	if err != nil {
		if errors.Is(err, domain.ErrAccountNotFound) {
			return nil, domain.ErrAccountNotFound
		}
		s.logger.Error("Failed to get account", zap.Int64("account_id", id), zap.Error(err))
		return nil, fmt.Errorf("failed to get account %d: %w", id, err)
	}

	owner, err := s.userRepo.GetByIDTx(ctx, s.db, account.UserID)
	if err != nil {
		s.logger.Error("Failed to load owner for account", zap.Int64("account_id", id), zap.Int64("user_id", account.UserID), zap.Error(err))
		return nil, fmt.Errorf("failed to load owner for account %d: %w", id, err)
	}
	account.User = owner
	return account, nil
}

func (s *ledgerService) ListAccounts(ctx context.Context) ([]*domain.Account, error) {
	accounts, err := s.accountRepo.ListTx(ctx, s.db)
	if err != nil {
		s.logger.Error("Failed to list accounts", zap.Error(err))
		return nil, fmt.Errorf("failed to list accounts: %w", err)
	}

	users, err := s.userRepo.ListTx(ctx, s.db)
	if err != nil {
		s.logger.Error("Failed to list owners for accounts", zap.Error(err))
		return nil, fmt.Errorf("failed to list users: %w", err)
	}

	byID := make(map[int64]*domain.User, len(users))
	for _, user := range users {
		byID[user.ID] = user
	}
	for _, account := range accounts {
		account.User = byID[account.UserID]
	}
	return accounts, nil
}

func (s *ledgerService) Deposit(ctx context.Context, accountID int64, amount decimal.Decimal) (*domain.Account, error) {
	if !amount.IsPositive() {
		return nil, ErrNonPositiveAmount
	}

	account, err := s.applyBalanceChange(ctx, accountID, amount)
	if err != nil {
		return nil, err
	}

	s.logger.Info("Deposit applied",
		zap.Int64("account_id", accountID),
		zap.String("amount", amount.String()),
		zap.String("balance", account.Balance.String()))
	return account, nil
}

func (s *ledgerService) Withdraw(ctx context.Context, accountID int64, amount decimal.Decimal) (*domain.Account, error) {
	if !amount.IsPositive() {
		return nil, ErrNonPositiveAmount
	}

	account, err := s.applyBalanceChange(ctx, accountID, amount.Neg())
	if err != nil {
		return nil, err
	}

	s.logger.Info("Withdrawal applied",
		zap.Int64("account_id", accountID),
		zap.String("amount", amount.String()),
		zap.String("balance", account.Balance.String()))
	return account, nil
}

// applyBalanceChange runs the read-check-write of a deposit or withdrawal as
// one transaction. The repository locks the balance row, so concurrent
// changes to the same account serialize and the non-negative floor holds.
func (s *ledgerService) applyBalanceChange(ctx context.Context, accountID int64, amount decimal.Decimal) (*domain.Account, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		s.logger.Error("Failed to begin transaction for balance change", zap.Int64("account_id", accountID), zap.Error(err))
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer rollbackOnPanic(tx)

	account, err := s.accountRepo.UpdateBalanceTx(ctx, tx, accountID, amount)
	if err != nil {
		tx.Rollback()
		if errors.Is(err, domain.ErrAccountNotFound) {
			return nil, domain.ErrAccountNotFound
		}
		if errors.Is(err, domain.ErrInsufficientFunds) {
			s.logger.Warn("Insufficient funds for withdrawal",
				zap.Int64("account_id", accountID),
				zap.String("amount", amount.String()))
			return nil, domain.ErrInsufficientFunds
		}
		s.logger.Error("Failed to update balance", zap.Int64("account_id", accountID), zap.Error(err))
		return nil, fmt.Errorf("failed to update balance for account %d: %w", accountID, err)
	}

	if err := tx.Commit(); err != nil {
		s.logger.Error("Failed to commit transaction for balance change", zap.Int64("account_id", accountID), zap.Error(err))
		return nil, fmt.Errorf("failed to commit transaction: %w", err)
	}
	return account, nil
}

func rollbackOnPanic(tx *sql.Tx) {
	if r := recover(); r != nil {
		tx.Rollback()
		panic(r)
	}
}
