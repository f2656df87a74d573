package ledger

import "github.com/ProttoyDip/Bank-Management-System/internal/domain"

type CreateUserRequest struct {
	Name    string  `json:"name"`
	Email   string  `json:"email"`
	Phone   *string `json:"phone"`
	Address *string `json:"address"`
}

// UpdateUserRequest is a partial-merge update: only non-nil fields overwrite
// the stored row, absent fields are left untouched.
type UpdateUserRequest struct {
	Name    *string `json:"name"`
	Email   *string `json:"email"`
	Phone   *string `json:"phone"`
	Address *string `json:"address"`
}

type CreateAccountRequest struct {
	UserID int64              `json:"userId"`
	Type   domain.AccountType `json:"type"`
}
