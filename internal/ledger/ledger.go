package ledger

import (
	"fmt"
	"iter"
	"strings"
	"sync"
	"time"

	"github.com/shopspring/decimal"
)

// Kind identifies the transaction variant an entry records.
type Kind string

const (
	// KindDeposit marks money credited to the account.
	KindDeposit Kind = "deposit"
	// KindWithdrawal marks money debited from the account.
	KindWithdrawal Kind = "withdrawal"
)

// ParseKind resolves a kind name case-insensitively.
func ParseKind(name string) (Kind, error) {
	switch {
	case strings.EqualFold(name, string(KindDeposit)):
		return KindDeposit, nil
	case strings.EqualFold(name, string(KindWithdrawal)):
		return KindWithdrawal, nil
	default:
		return "", fmt.Errorf("unknown transaction kind %q", name)
	}
}

// Title returns the kind as printed on statements.
func (k Kind) Title() string {
	switch k {
	case KindDeposit:
		return "Deposit"
	case KindWithdrawal:
		return "Withdrawal"
	default:
		return string(k)
	}
}

// Entry is an immutable record of a realized balance change.
type Entry struct {
	Kind      Kind
	Amount    decimal.Decimal
	Timestamp time.Time
}

// Ledger is the append-only transaction history of a single account.
// Entries are kept in insertion order, which is also chronological order.
type Ledger struct {
	mu      sync.RWMutex
	entries []Entry
	now     func() time.Time
}

// New creates an empty ledger.
func New() *Ledger {
	return &Ledger{now: time.Now}
}

// Record appends an entry for the given kind and amount, stamped at append time.
func (l *Ledger) Record(kind Kind, amount decimal.Decimal) Entry {
	entry := Entry{Kind: kind, Amount: amount, Timestamp: l.now()}
	l.Append(entry)
	return entry
}

// Append adds entry to the end of the ledger. It never fails.
func (l *Ledger) Append(entry Entry) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.entries = append(l.entries, entry)
}

// Len returns the number of recorded entries.
func (l *Ledger) Len() int {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return len(l.entries)
}

// Count returns how many entries of the given kind were recorded.
func (l *Ledger) Count(kind Kind) int {
	n := 0
	for range l.Entries(string(kind)) {
		n++
	}
	return n
}

// Entries returns a lazy sequence over the ledger's current contents. A
// non-empty filter keeps only entries whose kind matches it, ignoring case.
// Every range over the returned sequence rescans the ledger.
func (l *Ledger) Entries(filter string) iter.Seq[Entry] {
	return func(yield func(Entry) bool) {
		l.mu.RLock()
		// Appends never touch indices below len, so the capped view stays valid
		// after the lock is released.
		view := l.entries[:len(l.entries):len(l.entries)]
		l.mu.RUnlock()

		for _, entry := range view {
			if filter != "" && !strings.EqualFold(string(entry.Kind), filter) {
				continue
			}
			if !yield(entry) {
				return
			}
		}
	}
}
