package account

import (
	"fmt"
	"slices"
	"sync"

	"github.com/shopspring/decimal"

	"github.com/congo-pay/banco/internal/identity"
	"github.com/congo-pay/banco/internal/ledger"
)

// Interceptor wraps a primitive balance operation. It must return the result
// of call unchanged.
type Interceptor func(op string, args []any, call func() Result) Result

// Account owns a balance and the ledger of its realized transactions. The
// balance is never negative.
type Account struct {
	mu        sync.RWMutex
	branch    string
	number    int
	owner     identity.Person
	balance   decimal.Decimal
	history   *ledger.Ledger
	policy    WithdrawalPolicy
	intercept Interceptor
}

// Option customizes a new Account.
type Option func(*Account)

// WithBranchCode overrides the default branch code.
func WithBranchCode(code string) Option {
	return func(a *Account) {
		if code != "" {
			a.branch = code
		}
	}
}

// WithPolicy sets the withdrawal policy.
func WithPolicy(policy WithdrawalPolicy) Option {
	return func(a *Account) {
		if policy != nil {
			a.policy = policy
		}
	}
}

// WithInterceptor routes every deposit and withdraw primitive through i.
func WithInterceptor(i Interceptor) Option {
	return func(a *Account) { a.intercept = i }
}

// New opens an account with a zero balance and no withdrawal restrictions.
func New(number int, owner identity.Person, opts ...Option) *Account {
	a := &Account{
		branch:  DefaultBranchCode,
		number:  number,
		owner:   owner,
		balance: decimal.Zero,
		history: ledger.New(),
		policy:  Unlimited{},
	}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// NewLimited opens an account governed by a Limited withdrawal policy.
func NewLimited(number int, owner identity.Person, limit decimal.Decimal, maxWithdrawals int, opts ...Option) *Account {
	opts = append([]Option{WithPolicy(Limited{Limit: limit, MaxWithdrawals: maxWithdrawals})}, opts...)
	return New(number, owner, opts...)
}

func (a *Account) Number() int { return a.number }
func (a *Account) BranchCode() string { return a.branch }
func (a *Account) Owner() identity.Person { return a.owner }
func (a *Account) Ledger() *ledger.Ledger { return a.history }
func (a *Account) Policy() WithdrawalPolicy { return a.policy }

// Balance returns the current balance.
func (a *Account) Balance() decimal.Decimal {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.balance
}

// String identifies the account as branch-number.
func (a *Account) String() string {
	return fmt.Sprintf("%s-%d", a.branch, a.number)
}

// Deposit credits amount and records it in the ledger.
func (a *Account) Deposit(amount decimal.Decimal) Result {
	return NewDeposit(amount).Register(a)
}

// Withdraw debits amount, subject to the withdrawal policy, and records it in
// the ledger.
func (a *Account) Withdraw(amount decimal.Decimal) Result {
	return NewWithdrawal(amount).Register(a)
}

// Statement returns the ledger entries matching filter in chronological order.
func (a *Account) Statement(filter string) []ledger.Entry {
	return slices.Collect(a.history.Entries(filter))
}

// WithdrawalCount returns the number of successful withdrawals so far.
func (a *Account) WithdrawalCount() int {
	return a.history.Count(ledger.KindWithdrawal)
}

// register runs op for tx and appends tx to the ledger only when op succeeds.
// The lock spans the policy scan, the balance check, the mutation and the
// append.
func (a *Account) register(tx Transaction, name string, op func(decimal.Decimal) Result) Result {
	a.mu.Lock()
	defer a.mu.Unlock()

	amount := tx.Amount()
	call := func() Result { return op(amount) }

	var res Result
	if a.intercept != nil {
		res = a.intercept(name, []any{amount}, call)
	} else {
		res = call()
	}
	if res.OK {
		a.history.Record(tx.Kind(), amount)
	}
	return res
}

func (a *Account) deposit(amount decimal.Decimal) Result {
	if !amount.IsPositive() {
		return failed(fmt.Errorf("%w: deposit must be positive, got %s", ErrInvalidAmount, amount.String()))
	}
	a.balance = a.balance.Add(amount)
	return succeeded("deposit of %s completed", amount.StringFixed(2))
}

func (a *Account) withdraw(amount decimal.Decimal) Result {
	if err := a.policy.Check(amount, a.history); err != nil {
		return failed(err)
	}
	if !amount.IsPositive() {
		return failed(fmt.Errorf("%w: withdrawal must be positive, got %s", ErrInvalidAmount, amount.String()))
	}
	if amount.GreaterThan(a.balance) {
		return failed(fmt.Errorf("%w: balance %s does not cover %s", ErrInsufficientFunds, a.balance.StringFixed(2), amount.StringFixed(2)))
	}
	a.balance = a.balance.Sub(amount)
	return succeeded("withdrawal of %s completed", amount.StringFixed(2))
}
