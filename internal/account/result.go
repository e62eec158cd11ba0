package account

import "fmt"

// Result is the outcome of a balance-mutating operation. Failed results carry
// one of the package sentinel errors in Err.
type Result struct {
	OK      bool
	Message string
	Err     error
}

func succeeded(format string, args ...any) Result {
	return Result{OK: true, Message: fmt.Sprintf(format, args...)}
}

func failed(err error) Result {
	return Result{Message: err.Error(), Err: err}
}

// Reject builds a failed result from err.
func Reject(err error) Result {
	return failed(err)
}
