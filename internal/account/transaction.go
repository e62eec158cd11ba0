package account

import (
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/congo-pay/banco/internal/ledger"
)

// Operation names reported to an Interceptor.
const (
	OpDeposit  = "Deposit"
	OpWithdraw = "Withdraw"
)

// Transaction is a single unit of work applied to an account.
type Transaction interface {
	Kind() ledger.Kind
	Amount() decimal.Decimal
	// Register applies the transaction to a and records it in the ledger
	// when the underlying operation succeeds.
	Register(a *Account) Result
}

// Deposit credits an account.
type Deposit struct {
	amount decimal.Decimal
}

// NewDeposit builds a deposit of amount. Non-positive amounts are rejected
// by the account, not here.
func NewDeposit(amount decimal.Decimal) Deposit {
	return Deposit{amount: amount}
}

func (d Deposit) Kind() ledger.Kind { return ledger.KindDeposit }
func (d Deposit) Amount() decimal.Decimal { return d.amount }
func (d Deposit) String() string { return fmt.Sprintf("Deposit(%s)", d.amount.String()) }

// Register credits a.
func (d Deposit) Register(a *Account) Result {
	return a.register(d, OpDeposit, a.deposit)
}

// Withdrawal debits an account.
type Withdrawal struct {
	amount decimal.Decimal
}

// NewWithdrawal builds a withdrawal of amount.
func NewWithdrawal(amount decimal.Decimal) Withdrawal {
	return Withdrawal{amount: amount}
}

func (w Withdrawal) Kind() ledger.Kind { return ledger.KindWithdrawal }
func (w Withdrawal) Amount() decimal.Decimal { return w.amount }
func (w Withdrawal) String() string { return fmt.Sprintf("Withdrawal(%s)", w.amount.String()) }

// Register debits a.
func (w Withdrawal) Register(a *Account) Result {
	return a.register(w, OpWithdraw, a.withdraw)
}

// NewTransaction builds the transaction variant for kind.
func NewTransaction(kind ledger.Kind, amount decimal.Decimal) (Transaction, error) {
	switch kind {
	case ledger.KindDeposit:
		return NewDeposit(amount), nil
	case ledger.KindWithdrawal:
		return NewWithdrawal(amount), nil
	default:
		return nil, fmt.Errorf("unsupported transaction kind %q", kind)
	}
}
