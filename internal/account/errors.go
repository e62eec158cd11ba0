package account

import "errors"

var (
	// ErrInvalidAmount occurs when a deposit or withdrawal amount is not positive.
	ErrInvalidAmount = errors.New("invalid amount")

	// ErrInsufficientFunds occurs when a withdrawal exceeds the current balance.
	ErrInsufficientFunds = errors.New("insufficient funds")

	// ErrExceededLimit occurs when a withdrawal is above the per-transaction limit.
	ErrExceededLimit = errors.New("withdrawal limit exceeded")

	// ErrExceededWithdrawalCount occurs when the account already made the
	// maximum number of withdrawals allowed for the period.
	ErrExceededWithdrawalCount = errors.New("maximum number of withdrawals exceeded")
)

// Code returns a stable machine-readable code for a domain error.
func Code(err error) string {
	switch {
	case err == nil:
		return ""
	case errors.Is(err, ErrInvalidAmount):
		return "invalid_amount"
	case errors.Is(err, ErrInsufficientFunds):
		return "insufficient_funds"
	case errors.Is(err, ErrExceededLimit):
		return "exceeded_limit"
	case errors.Is(err, ErrExceededWithdrawalCount):
		return "exceeded_withdrawal_count"
	default:
		return "rejected"
	}
}
