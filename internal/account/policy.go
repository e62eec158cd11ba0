package account

import (
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/congo-pay/banco/internal/ledger"
)

const (
	// DefaultBranchCode is the branch every account belongs to.
	DefaultBranchCode = "0001"
	// DefaultMaxWithdrawals is the withdrawal count allowed per period.
	DefaultMaxWithdrawals = 3
)

// DefaultWithdrawalLimit is the largest amount a single withdrawal may take.
var DefaultWithdrawalLimit = decimal.NewFromInt(500)

// WithdrawalPolicy decides whether a withdrawal may proceed to the base
// balance checks. A nil error lets the withdrawal through.
type WithdrawalPolicy interface {
	Check(amount decimal.Decimal, history *ledger.Ledger) error
}

// Unlimited applies no restriction beyond the base balance checks.
type Unlimited struct{}

// Check always lets the withdrawal through.
func (Unlimited) Check(decimal.Decimal, *ledger.Ledger) error { return nil }

// Limited caps each withdrawal at Limit and allows at most MaxWithdrawals
// successful withdrawals over the lifetime of the account.
type Limited struct {
	Limit          decimal.Decimal
	MaxWithdrawals int
}

// DefaultLimited returns the policy used for newly opened accounts.
func DefaultLimited() Limited {
	return Limited{Limit: DefaultWithdrawalLimit, MaxWithdrawals: DefaultMaxWithdrawals}
}

// Check rejects amounts above the limit first, then withdrawals past the count.
func (p Limited) Check(amount decimal.Decimal, history *ledger.Ledger) error {
	count := history.Count(ledger.KindWithdrawal)
	if amount.GreaterThan(p.Limit) {
		return fmt.Errorf("%w: %s is above the limit of %s", ErrExceededLimit, amount.StringFixed(2), p.Limit.StringFixed(2))
	}
	if count >= p.MaxWithdrawals {
		return fmt.Errorf("%w: %d of %d already made", ErrExceededWithdrawalCount, count, p.MaxWithdrawals)
	}
	return nil
}
