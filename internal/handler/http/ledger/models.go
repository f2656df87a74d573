package ledger_http

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/ProttoyDip/Bank-Management-System/internal/domain"
)

type UserResponse struct {
	ID        int64              `json:"id"`
	Name      string             `json:"name"`
	Email     string             `json:"email"`
	Phone     *string            `json:"phone"`
	Address   *string            `json:"address"`
	Accounts  []*AccountResponse `json:"accounts"`
	CreatedAt time.Time          `json:"createdAt"`
	UpdatedAt time.Time          `json:"updatedAt"`
}

type AccountResponse struct {
	ID            int64           `json:"id"`
	AccountNumber string          `json:"accountNumber"`
	Type          string          `json:"type"`
	Balance       decimal.Decimal `json:"balance"`
	IsActive      bool            `json:"isActive"`
	UserID        int64           `json:"userId"`
	User          *UserResponse   `json:"user,omitempty"`
	CreatedAt     time.Time       `json:"createdAt"`
	UpdatedAt     time.Time       `json:"updatedAt"`
}

type DepositWithdrawRequest struct {
	Amount *decimal.Decimal `json:"amount"`
}

func mapUserToResponse(user *domain.User) *UserResponse {
	resp := &UserResponse{
		ID:        user.ID,
		Name:      user.Name,
		Email:     user.Email,
		Phone:     user.Phone,
		Address:   user.Address,
		CreatedAt: user.CreatedAt,
		UpdatedAt: user.UpdatedAt,
	}
	if user.Accounts != nil {
		resp.Accounts = make([]*AccountResponse, 0, len(user.Accounts))
		for _, account := range user.Accounts {
			resp.Accounts = append(resp.Accounts, mapAccountToResponse(account))
		}
	}
	return resp
}

func mapUsersToResponse(users []*domain.User) []*UserResponse {
	responses := make([]*UserResponse, len(users))
	for i, user := range users {
		responses[i] = mapUserToResponse(user)
	}
	return responses
}

func mapAccountToResponse(account *domain.Account) *AccountResponse {
	resp := &AccountResponse{
		ID:            account.ID,
		AccountNumber: account.AccountNumber,
		Type:          string(account.Type),
		Balance:       account.Balance,
		IsActive:      account.IsActive,
		UserID:        account.UserID,
		CreatedAt:     account.CreatedAt,
		UpdatedAt:     account.UpdatedAt,
	}
	if account.User != nil {
		resp.User = mapUserToResponse(account.User)
	}
	return resp
}

func mapAccountsToResponse(accounts []*domain.Account) []*AccountResponse {
	responses := make([]*AccountResponse, len(accounts))
	for i, account := range accounts {
		responses[i] = mapAccountToResponse(account)
	}
	return responses
}
