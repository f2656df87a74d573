package util

import (
	"fmt"
	"math/rand"
	"time"
)

// AccountNumberPrefix is the fixed bank prefix carried by every account number.
const AccountNumberPrefix = "BMS"

// GenerateAccountNumber returns a candidate account number: the bank prefix,
// the low seven digits of the current epoch time in milliseconds, and a
// two-digit random suffix. Two calls landing in the same millisecond can
// collide; the unique index on accounts.account_number is the actual guard,
// and callers must treat a conflict there as a retryable outcome.
func GenerateAccountNumber() string {
	millis := time.Now().UnixMilli() % 10_000_000
	return fmt.Sprintf("%s%07d%02d", AccountNumberPrefix, millis, rand.Intn(100))
}
