package domain

import (
	"errors"
	"time"
)

var ErrUserNotFound = errors.New("user not found")
var ErrEmailTaken = errors.New("a user with this email already exists")

// User is a bank customer. Accounts carries the accounts owned by the user
// when the caller asked for the relation to be loaded; it is nil otherwise.
type User struct {
	ID        int64
	Name      string
	Email     string
	Phone     *string
	Address   *string
	Accounts  []*Account
	CreatedAt time.Time
	UpdatedAt time.Time
}
