package ledger

import (
	"context"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/ProttoyDip/Bank-Management-System/internal/domain"
)

// The fakes below implement the repository interfaces over in-memory maps.
// They honor the same contracts as the Postgres implementations: uniqueness
// conflicts surface as the domain sentinel errors, and UpdateBalanceTx runs
// its check-then-write under a lock, the way the row lock serializes it in
// Postgres. The querier argument is ignored; the *sql.DB handed to the
// service is a sqlmock that only supplies Begin/Commit/Rollback.

type fakeUserRepo struct {
	mu     sync.Mutex
	nextID int64
	users  map[int64]*domain.User
}

func newFakeUserRepo() *fakeUserRepo {
	return &fakeUserRepo{users: map[int64]*domain.User{}}
}

func (f *fakeUserRepo) CreateTx(ctx context.Context, querier domain.Querier, user *domain.User) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, existing := range f.users {
		if existing.Email == user.Email {
			return domain.ErrEmailTaken
		}
	}
	f.nextID++
	user.ID = f.nextID
	user.CreatedAt = time.Now()
	user.UpdatedAt = user.CreatedAt
	clone := *user
	f.users[user.ID] = &clone
	return nil
}

func (f *fakeUserRepo) GetByIDTx(ctx context.Context, querier domain.Querier, id int64) (*domain.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	user, ok := f.users[id]
	if !ok {
		return nil, domain.ErrUserNotFound
	}
	clone := *user
	return &clone, nil
}

func (f *fakeUserRepo) GetByEmailTx(ctx context.Context, querier domain.Querier, email string) (*domain.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, user := range f.users {
		if user.Email == email {
			clone := *user
			return &clone, nil
		}
	}
	return nil, domain.ErrUserNotFound
}

func (f *fakeUserRepo) ListTx(ctx context.Context, querier domain.Querier) ([]*domain.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	users := []*domain.User{}
	for id := int64(1); id <= f.nextID; id++ {
		if user, ok := f.users[id]; ok {
			clone := *user
			users = append(users, &clone)
		}
	}
	return users, nil
}

func (f *fakeUserRepo) UpdateTx(ctx context.Context, querier domain.Querier, user *domain.User) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.users[user.ID]; !ok {
		return domain.ErrUserNotFound
	}
	for id, existing := range f.users {
		if id != user.ID && existing.Email == user.Email {
			return domain.ErrEmailTaken
		}
	}
	user.UpdatedAt = time.Now()
	clone := *user
	f.users[user.ID] = &clone
	return nil
}

func (f *fakeUserRepo) DeleteTx(ctx context.Context, querier domain.Querier, id int64) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.users[id]; !ok {
		return domain.ErrUserNotFound
	}
	delete(f.users, id)
	return nil
}

type fakeAccountRepo struct {
	mu       sync.Mutex
	nextID   int64
	accounts map[int64]*domain.Account
}

func newFakeAccountRepo() *fakeAccountRepo {
	return &fakeAccountRepo{accounts: map[int64]*domain.Account{}}
}

func (f *fakeAccountRepo) CreateTx(ctx context.Context, querier domain.Querier, account *domain.Account) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, existing := range f.accounts {
		if existing.AccountNumber == account.AccountNumber {
			return domain.ErrAccountNumberTaken
		}
	}
	f.nextID++
	account.ID = f.nextID
	account.CreatedAt = time.Now()
	account.UpdatedAt = account.CreatedAt
	clone := *account
	f.accounts[account.ID] = &clone
	return nil
}

func (f *fakeAccountRepo) GetByIDTx(ctx context.Context, querier domain.Querier, id int64) (*domain.Account, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	account, ok := f.accounts[id]
	if !ok {
		return nil, domain.ErrAccountNotFound
	}
	clone := *account
	return &clone, nil
}

func (f *fakeAccountRepo) GetByNumberTx(ctx context.Context, querier domain.Querier, accountNumber string) (*domain.Account, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, account := range f.accounts {
		if account.AccountNumber == accountNumber {
			clone := *account
			return &clone, nil
		}
	}
	return nil, domain.ErrAccountNotFound
}

func (f *fakeAccountRepo) ListTx(ctx context.Context, querier domain.Querier) ([]*domain.Account, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	accounts := []*domain.Account{}
	for id := int64(1); id <= f.nextID; id++ {
		if account, ok := f.accounts[id]; ok {
			clone := *account
			accounts = append(accounts, &clone)
		}
	}
	return accounts, nil
}

func (f *fakeAccountRepo) ListByUserIDTx(ctx context.Context, querier domain.Querier, userID int64) ([]*domain.Account, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	accounts := []*domain.Account{}
	for id := int64(1); id <= f.nextID; id++ {
		if account, ok := f.accounts[id]; ok && account.UserID == userID {
			clone := *account
			accounts = append(accounts, &clone)
		}
	}
	return accounts, nil
}

func (f *fakeAccountRepo) UpdateBalanceTx(ctx context.Context, querier domain.Querier, accountID int64, amount decimal.Decimal) (*domain.Account, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	account, ok := f.accounts[accountID]
	if !ok {
		return nil, domain.ErrAccountNotFound
	}
	next := account.Balance.Add(amount)
	if next.IsNegative() {
		return nil, domain.ErrInsufficientFunds
	}
	account.Balance = next
	account.UpdatedAt = time.Now()
	clone := *account
	return &clone, nil
}

func (f *fakeAccountRepo) DeleteByUserIDTx(ctx context.Context, querier domain.Querier, userID int64) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var deleted int64
	for id, account := range f.accounts {
		if account.UserID == userID {
			delete(f.accounts, id)
			deleted++
		}
	}
	return deleted, nil
}

func newTestService(t *testing.T) (LedgerService, *fakeUserRepo, *fakeAccountRepo) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	// One connection keeps concurrent transactions queued on the mock the
	// same way a single locked row queues them in Postgres.
	db.SetMaxOpenConns(1)
	mock.MatchExpectationsInOrder(false)
	for i := 0; i < 500; i++ {
		mock.ExpectBegin()
		mock.ExpectCommit()
		mock.ExpectRollback()
	}

	userRepo := newFakeUserRepo()
	accountRepo := newFakeAccountRepo()
	return NewLedgerService(db, userRepo, accountRepo, zap.NewNop()), userRepo, accountRepo
}

func mustCreateUser(t *testing.T, svc LedgerService, name, email string) *domain.User {
	t.Helper()
	user, err := svc.CreateUser(context.Background(), &CreateUserRequest{Name: name, Email: email})
	require.NoError(t, err)
	return user
}

func mustCreateAccount(t *testing.T, svc LedgerService, userID int64) *domain.Account {
	t.Helper()
	account, err := svc.CreateAccount(context.Background(), &CreateAccountRequest{UserID: userID})
	require.NoError(t, err)
	return account
}

func TestCreateUserValidation(t *testing.T) {
	svc, _, _ := newTestService(t)

	_, err := svc.CreateUser(context.Background(), &CreateUserRequest{Name: "", Email: "a@bank.com"})
	assert.ErrorIs(t, err, ErrNameEmailRequired)

	_, err = svc.CreateUser(context.Background(), &CreateUserRequest{Name: "A", Email: "   "})
	assert.ErrorIs(t, err, ErrNameEmailRequired)
}

func TestCreateUserDuplicateEmail(t *testing.T) {
	svc, _, _ := newTestService(t)

	first := mustCreateUser(t, svc, "A", "a@bank.com")

	_, err := svc.CreateUser(context.Background(), &CreateUserRequest{Name: "B", Email: "a@bank.com"})
	assert.ErrorIs(t, err, domain.ErrEmailTaken)

	// The first user's record is unaffected.
	got, err := svc.GetUser(context.Background(), first.ID)
	require.NoError(t, err)
	assert.Equal(t, "A", got.Name)
}

func TestCreateUserStartsWithNoAccounts(t *testing.T) {
	svc, _, _ := newTestService(t)

	user := mustCreateUser(t, svc, "A", "a@bank.com")
	require.NotNil(t, user.Accounts)
	assert.Empty(t, user.Accounts)
}

func TestUpdateUserPartialMerge(t *testing.T) {
	svc, _, _ := newTestService(t)

	phone := "0123"
	user, err := svc.CreateUser(context.Background(), &CreateUserRequest{Name: "A", Email: "a@bank.com", Phone: &phone})
	require.NoError(t, err)

	newName := "Alice"
	updated, err := svc.UpdateUser(context.Background(), user.ID, &UpdateUserRequest{Name: &newName})
	require.NoError(t, err)

	assert.Equal(t, "Alice", updated.Name)
	assert.Equal(t, "a@bank.com", updated.Email, "absent fields are left untouched")
	require.NotNil(t, updated.Phone)
	assert.Equal(t, "0123", *updated.Phone)
}

func TestUpdateUserNotFound(t *testing.T) {
	svc, _, _ := newTestService(t)

	name := "X"
	_, err := svc.UpdateUser(context.Background(), 99, &UpdateUserRequest{Name: &name})
	assert.ErrorIs(t, err, domain.ErrUserNotFound)
}

func TestUpdateUserEmailConflict(t *testing.T) {
	svc, _, _ := newTestService(t)

	mustCreateUser(t, svc, "A", "a@bank.com")
	second := mustCreateUser(t, svc, "B", "b@bank.com")

	taken := "a@bank.com"
	_, err := svc.UpdateUser(context.Background(), second.ID, &UpdateUserRequest{Email: &taken})
	assert.ErrorIs(t, err, domain.ErrEmailTaken)
}

func TestCreateAccountDefaults(t *testing.T) {
	svc, _, _ := newTestService(t)

	user := mustCreateUser(t, svc, "A", "a@bank.com")
	account := mustCreateAccount(t, svc, user.ID)

	assert.Equal(t, domain.AccountTypeSavings, account.Type)
	assert.True(t, account.Balance.IsZero())
	assert.True(t, account.IsActive)
	assert.Equal(t, user.ID, account.UserID)
	assert.True(t, strings.HasPrefix(account.AccountNumber, "BMS"))
}

func TestCreateAccountValidation(t *testing.T) {
	svc, _, _ := newTestService(t)

	_, err := svc.CreateAccount(context.Background(), &CreateAccountRequest{})
	assert.ErrorIs(t, err, ErrUserIDRequired)

	user := mustCreateUser(t, svc, "A", "a@bank.com")
	_, err = svc.CreateAccount(context.Background(), &CreateAccountRequest{UserID: user.ID, Type: "Checking"})
	assert.ErrorIs(t, err, ErrInvalidAccountType)
}

func TestCreateAccountUnknownUser(t *testing.T) {
	svc, _, _ := newTestService(t)

	_, err := svc.CreateAccount(context.Background(), &CreateAccountRequest{UserID: 99})
	assert.ErrorIs(t, err, domain.ErrUserNotFound)
}

func TestDepositWithdrawRoundTrip(t *testing.T) {
	svc, _, _ := newTestService(t)

	user := mustCreateUser(t, svc, "A", "a@bank.com")
	account := mustCreateAccount(t, svc, user.ID)

	amount := decimal.RequireFromString("123.45")
	afterDeposit, err := svc.Deposit(context.Background(), account.ID, amount)
	require.NoError(t, err)
	assert.True(t, afterDeposit.Balance.Equal(amount))

	afterWithdraw, err := svc.Withdraw(context.Background(), account.ID, amount)
	require.NoError(t, err)
	assert.True(t, afterWithdraw.Balance.IsZero(), "round trip must restore the exact balance, got %s", afterWithdraw.Balance)
}

func TestDepositWithdrawRejectNonPositiveAmounts(t *testing.T) {
	svc, _, _ := newTestService(t)

	user := mustCreateUser(t, svc, "A", "a@bank.com")
	account := mustCreateAccount(t, svc, user.ID)

	_, err := svc.Deposit(context.Background(), account.ID, decimal.Zero)
	assert.ErrorIs(t, err, ErrNonPositiveAmount)

	_, err = svc.Withdraw(context.Background(), account.ID, decimal.NewFromInt(-5))
	assert.ErrorIs(t, err, ErrNonPositiveAmount)
}

func TestDepositUnknownAccount(t *testing.T) {
	svc, _, _ := newTestService(t)

	_, err := svc.Deposit(context.Background(), 99, decimal.NewFromInt(10))
	assert.ErrorIs(t, err, domain.ErrAccountNotFound)
}

func TestWithdrawInsufficientFundsLeavesBalanceUnchanged(t *testing.T) {
	svc, _, _ := newTestService(t)

	user := mustCreateUser(t, svc, "A", "a@bank.com")
	account := mustCreateAccount(t, svc, user.ID)

	_, err := svc.Deposit(context.Background(), account.ID, decimal.RequireFromString("100.00"))
	require.NoError(t, err)

	_, err = svc.Withdraw(context.Background(), account.ID, decimal.RequireFromString("150.00"))
	assert.ErrorIs(t, err, domain.ErrInsufficientFunds)

	got, err := svc.GetAccount(context.Background(), account.ID)
	require.NoError(t, err)
	assert.True(t, got.Balance.Equal(decimal.RequireFromString("100.00")), "balance is %s", got.Balance)
}

func TestDeleteUserCascade(t *testing.T) {
	svc, _, _ := newTestService(t)

	alice := mustCreateUser(t, svc, "A", "a@bank.com")
	bob := mustCreateUser(t, svc, "B", "b@bank.com")
	aliceAcc1 := mustCreateAccount(t, svc, alice.ID)
	aliceAcc2 := mustCreateAccount(t, svc, alice.ID)
	bobAcc := mustCreateAccount(t, svc, bob.ID)

	require.NoError(t, svc.DeleteUser(context.Background(), alice.ID))

	_, err := svc.GetUser(context.Background(), alice.ID)
	assert.ErrorIs(t, err, domain.ErrUserNotFound)
	_, err = svc.GetAccount(context.Background(), aliceAcc1.ID)
	assert.ErrorIs(t, err, domain.ErrAccountNotFound)
	_, err = svc.GetAccount(context.Background(), aliceAcc2.ID)
	assert.ErrorIs(t, err, domain.ErrAccountNotFound)

	// Accounts belonging to a different user are untouched.
	got, err := svc.GetAccount(context.Background(), bobAcc.ID)
	require.NoError(t, err)
	assert.Equal(t, bob.ID, got.UserID)
}

func TestDeleteUserNotFound(t *testing.T) {
	svc, _, _ := newTestService(t)

	err := svc.DeleteUser(context.Background(), 99)
	assert.ErrorIs(t, err, domain.ErrUserNotFound)
}

func TestListUsersLoadsAccounts(t *testing.T) {
	svc, _, _ := newTestService(t)

	alice := mustCreateUser(t, svc, "A", "a@bank.com")
	mustCreateUser(t, svc, "B", "b@bank.com")
	mustCreateAccount(t, svc, alice.ID)

	users, err := svc.ListUsers(context.Background())
	require.NoError(t, err)
	require.Len(t, users, 2)

	assert.Len(t, users[0].Accounts, 1)
	require.NotNil(t, users[1].Accounts)
	assert.Empty(t, users[1].Accounts)
}

func TestGetAccountLoadsOwner(t *testing.T) {
	svc, _, _ := newTestService(t)

	user := mustCreateUser(t, svc, "A", "a@bank.com")
	account := mustCreateAccount(t, svc, user.ID)

	got, err := svc.GetAccount(context.Background(), account.ID)
	require.NoError(t, err)
	require.NotNil(t, got.User)
	assert.Equal(t, "a@bank.com", got.User.Email)
}

// Spec scenario: the full lifecycle of one user and one account.
func TestAccountLifecycleScenario(t *testing.T) {
	svc, _, _ := newTestService(t)
	ctx := context.Background()

	user := mustCreateUser(t, svc, "User A", "a@bank.com")
	account := mustCreateAccount(t, svc, user.ID)
	assert.Equal(t, domain.AccountTypeSavings, account.Type)
	assert.True(t, account.Balance.IsZero())
	assert.True(t, account.IsActive)

	after, err := svc.Deposit(ctx, account.ID, decimal.RequireFromString("100.00"))
	require.NoError(t, err)
	assert.True(t, after.Balance.Equal(decimal.RequireFromString("100.00")))

	_, err = svc.Withdraw(ctx, account.ID, decimal.RequireFromString("150.00"))
	assert.ErrorIs(t, err, domain.ErrInsufficientFunds)

	after, err = svc.Withdraw(ctx, account.ID, decimal.RequireFromString("40.00"))
	require.NoError(t, err)
	assert.True(t, after.Balance.Equal(decimal.RequireFromString("60.00")), "balance is %s", after.Balance)

	require.NoError(t, svc.DeleteUser(ctx, user.ID))
	_, err = svc.GetAccount(ctx, account.ID)
	assert.ErrorIs(t, err, domain.ErrAccountNotFound)
}

func TestConcurrentDepositsConverge(t *testing.T) {
	svc, _, _ := newTestService(t)

	user := mustCreateUser(t, svc, "A", "a@bank.com")
	account := mustCreateAccount(t, svc, user.ID)

	const workers = 100
	amount := decimal.RequireFromString("10.00")

	var wg sync.WaitGroup
	errs := make(chan error, workers)
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if _, err := svc.Deposit(context.Background(), account.ID, amount); err != nil {
				errs <- err
			}
		}()
	}
	wg.Wait()
	close(errs)
	for err := range errs {
		t.Fatalf("concurrent deposit failed: %v", err)
	}

	got, err := svc.GetAccount(context.Background(), account.ID)
	require.NoError(t, err)
	assert.True(t, got.Balance.Equal(decimal.RequireFromString("1000.00")), "balance is %s", got.Balance)
}
