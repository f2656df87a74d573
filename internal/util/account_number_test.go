package util

import (
	"strconv"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGenerateAccountNumberFormat(t *testing.T) {
	number := GenerateAccountNumber()

	require.True(t, strings.HasPrefix(number, AccountNumberPrefix), "number %q must carry the bank prefix", number)
	assert.Len(t, number, len(AccountNumberPrefix)+9, "prefix + 7 time digits + 2 random digits")

	digits := strings.TrimPrefix(number, AccountNumberPrefix)
	_, err := strconv.Atoi(digits)
	require.NoError(t, err, "segment after the prefix must be numeric: %q", digits)
}

func TestGenerateAccountNumberSuffixRange(t *testing.T) {
	for i := 0; i < 200; i++ {
		number := GenerateAccountNumber()
		suffix := number[len(number)-2:]
		n, err := strconv.Atoi(suffix)
		require.NoError(t, err)
		assert.GreaterOrEqual(t, n, 0)
		assert.LessOrEqual(t, n, 99)
	}
}

func TestGenerateAccountNumberVaries(t *testing.T) {
	// Collisions are possible by design, but 200 draws collapsing to a single
	// value would mean the random suffix is broken.
	seen := map[string]bool{}
	for i := 0; i < 200; i++ {
		seen[GenerateAccountNumber()] = true
	}
	assert.Greater(t, len(seen), 1)
}
