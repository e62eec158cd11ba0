package account

import (
	"fmt"
	"strings"
)

const statementTimeLayout = "02-01-2006 15:04:05"

// FormatStatement renders the account statement as plain text.
func FormatStatement(a *Account, filter string) string {
	var b strings.Builder
	b.WriteString("================ STATEMENT ================\n")
	fmt.Fprintf(&b, "Account: %s  Owner: %s\n\n", a, a.Owner().DisplayName)

	empty := true
	for entry := range a.Ledger().Entries(filter) {
		empty = false
		fmt.Fprintf(&b, "[%s] %s:\tR$ %s\n", entry.Timestamp.Format(statementTimeLayout), entry.Kind.Title(), entry.Amount.StringFixed(2))
	}
	if empty {
		b.WriteString("No transactions recorded.\n")
	}

	fmt.Fprintf(&b, "\nCurrent balance: R$ %s\n", a.Balance().StringFixed(2))
	b.WriteString("===========================================\n")
	return b.String()
}
