// Package bank holds the session registry of owners and accounts and the
// operations collaborators use to move money.
package bank

import (
	"context"
	"errors"
	"fmt"
	"iter"
	"log/slog"
	"sync"

	"github.com/shopspring/decimal"

	"github.com/congo-pay/banco/internal/account"
	"github.com/congo-pay/banco/internal/audit"
	"github.com/congo-pay/banco/internal/identity"
	"github.com/congo-pay/banco/internal/ledger"
	"github.com/congo-pay/banco/internal/logging"
	"github.com/congo-pay/banco/internal/notification"
)

// Operation names written to the audit log by the session.
const (
	OpCreateAccount = "CreateAccount"
	OpRegister      = "Register"
)

var (
	// ErrAccountNotFound is returned when no account has the requested number.
	ErrAccountNotFound = errors.New("account not found")
	// ErrDuplicateAccount is returned when the account number is already taken.
	ErrDuplicateAccount = errors.New("account number already in use")
	// ErrNotOwner is returned when a transaction is performed on someone else's account.
	ErrNotOwner = errors.New("account does not belong to owner")
	// ErrInvalidAccountNumber is returned for negative account numbers.
	ErrInvalidAccountNumber = errors.New("invalid account number")
)

// Config holds the parameters applied to newly opened accounts.
type Config struct {
	BranchCode      string
	WithdrawalLimit decimal.Decimal
	MaxWithdrawals  int
}

// DefaultConfig returns the standard branch, limit and withdrawal count.
func DefaultConfig() Config {
	return Config{
		BranchCode:      account.DefaultBranchCode,
		WithdrawalLimit: account.DefaultWithdrawalLimit,
		MaxWithdrawals:  account.DefaultMaxWithdrawals,
	}
}

// Session is the registry of owners and accounts for one running process.
type Session struct {
	owners   *identity.Service
	auditor  *audit.Auditor
	notifier notification.Notifier
	logger   *slog.Logger
	cfg      Config

	mu       sync.RWMutex
	accounts map[int]*account.Account
	order    []int
}

// NewSession builds a session. The auditor and notifier may be nil.
func NewSession(owners *identity.Service, auditor *audit.Auditor, notifier notification.Notifier, logger *slog.Logger, cfg Config) *Session {
	if cfg.BranchCode == "" {
		cfg.BranchCode = account.DefaultBranchCode
	}
	if cfg.WithdrawalLimit.IsZero() {
		cfg.WithdrawalLimit = account.DefaultWithdrawalLimit
	}
	if cfg.MaxWithdrawals <= 0 {
		cfg.MaxWithdrawals = account.DefaultMaxWithdrawals
	}
	return &Session{
		owners:   owners,
		auditor:  auditor,
		notifier: notifier,
		logger:   logger,
		cfg:      cfg,
		accounts: make(map[int]*account.Account),
	}
}

// FindOwner resolves an owner by tax id.
func (s *Session) FindOwner(ctx context.Context, taxID string) (identity.Person, error) {
	return s.owners.Find(ctx, taxID)
}

// CreateOwner registers a new owner.
func (s *Session) CreateOwner(ctx context.Context, reg identity.Registration) (identity.Person, error) {
	return s.owners.Register(ctx, reg)
}

// Owners lists registered owners in registration order.
func (s *Session) Owners(ctx context.Context) ([]identity.Person, error) {
	return s.owners.List(ctx)
}

// CreateAccount opens a limited account for the owner with taxID. A zero
// number picks the next sequential one.
func (s *Session) CreateAccount(ctx context.Context, taxID string, number int) (*account.Account, error) {
	return audit.Call(ctx, s.auditor, OpCreateAccount, []any{taxID, number}, func() (*account.Account, error) {
		return s.createAccount(ctx, taxID, number)
	})
}

func (s *Session) createAccount(ctx context.Context, taxID string, number int) (*account.Account, error) {
	if number < 0 {
		return nil, fmt.Errorf("%w: %d", ErrInvalidAccountNumber, number)
	}
	owner, err := s.owners.Find(ctx, taxID)
	if err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if number == 0 {
		number = len(s.accounts) + 1
		for s.accounts[number] != nil {
			number++
		}
	} else if s.accounts[number] != nil {
		return nil, fmt.Errorf("%w: %d", ErrDuplicateAccount, number)
	}

	opts := []account.Option{account.WithBranchCode(s.cfg.BranchCode)}
	if s.auditor != nil {
		opts = append(opts, account.WithInterceptor(s.auditor.Intercept))
	}
	acc := account.NewLimited(number, owner, s.cfg.WithdrawalLimit, s.cfg.MaxWithdrawals, opts...)
	s.accounts[number] = acc
	s.order = append(s.order, number)

	if s.logger != nil {
		logging.FromContext(ctx, s.logger).Info("account opened", slog.String("account", acc.String()), slog.String("owner", owner.TaxID))
	}
	return acc, nil
}

// Account returns the account with number.
func (s *Session) Account(number int) (*account.Account, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	acc, ok := s.accounts[number]
	if !ok {
		return nil, fmt.Errorf("%w: %d", ErrAccountNotFound, number)
	}
	return acc, nil
}

// Accounts yields every account in creation order. The sequence iterates a
// snapshot taken when iteration starts.
func (s *Session) Accounts() iter.Seq[*account.Account] {
	return func(yield func(*account.Account) bool) {
		for _, acc := range s.snapshot() {
			if !yield(acc) {
				return
			}
		}
	}
}

// AccountsOf returns the accounts held by the owner with taxID.
func (s *Session) AccountsOf(taxID string) []*account.Account {
	var out []*account.Account
	for acc := range s.Accounts() {
		if acc.Owner().TaxID == taxID {
			out = append(out, acc)
		}
	}
	return out
}

func (s *Session) snapshot() []*account.Account {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]*account.Account, 0, len(s.order))
	for _, number := range s.order {
		out = append(out, s.accounts[number])
	}
	return out
}

// Perform applies tx to acc on behalf of owner.
func (s *Session) Perform(ctx context.Context, owner identity.Person, acc *account.Account, tx account.Transaction) account.Result {
	run := func() account.Result {
		if acc.Owner().TaxID != owner.TaxID {
			return account.Reject(fmt.Errorf("%w: %s", ErrNotOwner, acc))
		}
		return tx.Register(acc)
	}

	var res account.Result
	if s.auditor != nil {
		res = s.auditor.InterceptContext(ctx, OpRegister, []any{acc, tx}, run)
	} else {
		res = run()
	}

	if res.OK && s.notifier != nil {
		if err := s.notifier.Send(ctx, notification.Message{
			Kind:        notification.KindTransactionCompleted,
			Destination: owner.TaxID,
			Body:        fmt.Sprintf("%s of %s on account %s", tx.Kind().Title(), tx.Amount().StringFixed(2), acc),
		}); err != nil && s.logger != nil {
			logging.FromContext(ctx, s.logger).Warn("failed to send notification", slog.String("account", acc.String()), slog.String("error", err.Error()))
		}
	}
	return res
}

// Deposit credits the account with number on behalf of its owner.
func (s *Session) Deposit(ctx context.Context, number int, amount decimal.Decimal) (account.Result, error) {
	return s.performOn(ctx, number, account.NewDeposit(amount))
}

// Withdraw debits the account with number on behalf of its owner.
func (s *Session) Withdraw(ctx context.Context, number int, amount decimal.Decimal) (account.Result, error) {
	return s.performOn(ctx, number, account.NewWithdrawal(amount))
}

func (s *Session) performOn(ctx context.Context, number int, tx account.Transaction) (account.Result, error) {
	acc, err := s.Account(number)
	if err != nil {
		return account.Result{}, err
	}
	return s.Perform(ctx, acc.Owner(), acc, tx), nil
}

// Statement returns the ledger entries of the account matching filter.
func (s *Session) Statement(number int, filter string) ([]ledger.Entry, error) {
	acc, err := s.Account(number)
	if err != nil {
		return nil, err
	}
	return acc.Statement(filter), nil
}

// Demo owner created by Seed.
var demoOwner = identity.Registration{
	Name:      "Valdeci Boldan",
	BirthDate: "31-03-1981",
	TaxID:     "123",
	Address:   "Rua Barueri, 51 - Moreninha 2 - Campo Grande/MS",
}

// Seed registers the demo owner with the next free account number. It is a
// no-op when the owner already holds an account.
func (s *Session) Seed(ctx context.Context) (*account.Account, error) {
	if _, err := s.owners.Find(ctx, demoOwner.TaxID); err == nil {
		if accs := s.AccountsOf(demoOwner.TaxID); len(accs) > 0 {
			return accs[0], nil
		}
	} else if !errors.Is(err, identity.ErrOwnerNotFound) {
		return nil, err
	} else if _, err := s.owners.Register(ctx, demoOwner); err != nil {
		return nil, fmt.Errorf("seed owner: %w", err)
	}
	return s.CreateAccount(ctx, demoOwner.TaxID, 0)
}
