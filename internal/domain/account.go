package domain

import (
	"errors"
	"time"

	"github.com/shopspring/decimal"
)

var ErrAccountNotFound = errors.New("account not found")
var ErrAccountNumberTaken = errors.New("an account with this number already exists")
var ErrInsufficientFunds = errors.New("insufficient funds")

type AccountType string

const (
	AccountTypeSavings      AccountType = "Savings"
	AccountTypeCurrent      AccountType = "Current"
	AccountTypeFixedDeposit AccountType = "Fixed Deposit"
	AccountTypeLoan         AccountType = "Loan Account"
)

// AccountTypes lists every valid account type, in the order they are
// presented to API clients.
func AccountTypes() []AccountType {
	return []AccountType{
		AccountTypeSavings,
		AccountTypeCurrent,
		AccountTypeFixedDeposit,
		AccountTypeLoan,
	}
}

func (t AccountType) Valid() bool {
	switch t {
	case AccountTypeSavings, AccountTypeCurrent, AccountTypeFixedDeposit, AccountTypeLoan:
		return true
	}
	return false
}

// Account is a ledger account owned by exactly one user. Balance is a
// currency-scale decimal and is never negative at rest. User carries the
// owning user when the caller asked for the relation to be loaded.
type Account struct {
	ID            int64
	AccountNumber string
	Type          AccountType
	Balance       decimal.Decimal
	IsActive      bool
	UserID        int64
	User          *User
	CreatedAt     time.Time
	UpdatedAt     time.Time
}
