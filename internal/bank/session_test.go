package bank

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"
	"sync"
	"testing"

	"github.com/shopspring/decimal"

	"github.com/congo-pay/banco/internal/account"
	"github.com/congo-pay/banco/internal/audit"
	"github.com/congo-pay/banco/internal/identity"
	"github.com/congo-pay/banco/internal/ledger"
	"github.com/congo-pay/banco/internal/logging"
	"github.com/congo-pay/banco/internal/notification"
)

type fixture struct {
	session  *Session
	notifier *notification.Recorder
	logPath  string
}

func newFixture(t *testing.T) fixture {
	t.Helper()
	path := filepath.Join(t.TempDir(), "audit.log")
	notifier := &notification.Recorder{}
	auditor := audit.New(audit.NewFileSink(path), logging.Discard())
	owners := identity.NewService(identity.NewMemoryRepository())
	session := NewSession(owners, auditor, notifier, logging.Discard(), DefaultConfig())
	return fixture{session: session, notifier: notifier, logPath: path}
}

func (f fixture) owner(t *testing.T, taxID string) identity.Person {
	t.Helper()
	person, err := f.session.CreateOwner(context.Background(), identity.Registration{
		Name:      "Owner " + taxID,
		BirthDate: "01-01-1990",
		TaxID:     taxID,
		Address:   "Rua A, 1",
	})
	if err != nil {
		t.Fatalf("create owner: %v", err)
	}
	return person
}

func (f fixture) records(t *testing.T) []audit.Record {
	t.Helper()
	file, err := os.Open(f.logPath)
	if err != nil {
		t.Fatalf("open audit log: %v", err)
	}
	defer file.Close()
	records, err := audit.Parse(file)
	if err != nil {
		t.Fatalf("parse audit log: %v", err)
	}
	return records
}

func TestCreateAccountNumbersSequentially(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.owner(t, "111")
	f.owner(t, "222")

	first, err := f.session.CreateAccount(ctx, "111", 0)
	if err != nil {
		t.Fatalf("create account: %v", err)
	}
	second, err := f.session.CreateAccount(ctx, "222", 0)
	if err != nil {
		t.Fatalf("create account: %v", err)
	}
	if first.Number() != 1 || second.Number() != 2 {
		t.Fatalf("expected numbers 1 and 2, got %d and %d", first.Number(), second.Number())
	}
	if first.String() != "0001-1" {
		t.Fatalf("unexpected account id %s", first)
	}

	if _, err := f.session.CreateAccount(ctx, "111", 2); !errors.Is(err, ErrDuplicateAccount) {
		t.Fatalf("expected duplicate account, got %v", err)
	}
	if _, err := f.session.CreateAccount(ctx, "999", 0); !errors.Is(err, identity.ErrOwnerNotFound) {
		t.Fatalf("expected owner not found, got %v", err)
	}
	if _, err := f.session.CreateAccount(ctx, "111", -4); !errors.Is(err, ErrInvalidAccountNumber) {
		t.Fatalf("expected invalid number, got %v", err)
	}

	var numbers []int
	for acc := range f.session.Accounts() {
		numbers = append(numbers, acc.Number())
	}
	if len(numbers) != 2 || numbers[0] != 1 || numbers[1] != 2 {
		t.Fatalf("unexpected account order %v", numbers)
	}
	if got := f.session.AccountsOf("111"); len(got) != 1 || got[0].Number() != 1 {
		t.Fatalf("unexpected accounts for owner: %v", got)
	}

	records := f.records(t)
	if len(records) != 5 {
		t.Fatalf("expected 5 audit records, got %d", len(records))
	}
	if records[0].Operation != OpCreateAccount || !records[0].Success || records[0].Message != "0001-1" {
		t.Fatalf("unexpected create record %+v", records[0])
	}
	if records[2].Success {
		t.Fatalf("expected failed duplicate record, got %+v", records[2])
	}
}

func TestAutoNumberSkipsTakenNumbers(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.owner(t, "111")

	if _, err := f.session.CreateAccount(ctx, "111", 1); err != nil {
		t.Fatalf("create account: %v", err)
	}
	if _, err := f.session.CreateAccount(ctx, "111", 2); err != nil {
		t.Fatalf("create account: %v", err)
	}
	if _, err := f.session.CreateAccount(ctx, "111", 5); err != nil {
		t.Fatalf("create account: %v", err)
	}
	acc, err := f.session.CreateAccount(ctx, "111", 0)
	if err != nil {
		t.Fatalf("create account: %v", err)
	}
	if acc.Number() != 4 {
		t.Fatalf("expected number 4, got %d", acc.Number())
	}
	next, err := f.session.CreateAccount(ctx, "111", 0)
	if err != nil {
		t.Fatalf("create account: %v", err)
	}
	if next.Number() != 6 {
		t.Fatalf("expected number 6, got %d", next.Number())
	}
}

func TestPerformRecordsLedgerAuditAndNotification(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	owner := f.owner(t, "111")
	acc, err := f.session.CreateAccount(ctx, owner.TaxID, 0)
	if err != nil {
		t.Fatalf("create account: %v", err)
	}

	res := f.session.Perform(ctx, owner, acc, account.NewDeposit(decimal.NewFromInt(100)))
	if !res.OK {
		t.Fatalf("deposit: %v", res.Err)
	}
	res = f.session.Perform(ctx, owner, acc, account.NewWithdrawal(decimal.NewFromInt(600)))
	if res.OK || !errors.Is(res.Err, account.ErrExceededLimit) {
		t.Fatalf("expected exceeded limit, got %+v", res)
	}

	if !acc.Balance().Equal(decimal.NewFromInt(100)) || acc.Ledger().Len() != 1 {
		t.Fatalf("unexpected state balance=%s entries=%d", acc.Balance(), acc.Ledger().Len())
	}
	if msgs := f.notifier.Messages(); len(msgs) != 1 || msgs[0].Kind != notification.KindTransactionCompleted || msgs[0].Destination != "111" {
		t.Fatalf("unexpected notifications %+v", msgs)
	}

	// CreateAccount, then Register wrapping Deposit, then Register wrapping Withdraw.
	records := f.records(t)
	var ops []string
	for _, rec := range records {
		ops = append(ops, rec.Operation)
	}
	want := []string{OpCreateAccount, account.OpDeposit, OpRegister, account.OpWithdraw, OpRegister}
	if len(ops) != len(want) {
		t.Fatalf("expected operations %v, got %v", want, ops)
	}
	for i := range want {
		if ops[i] != want[i] {
			t.Fatalf("expected operations %v, got %v", want, ops)
		}
	}
	if records[2].Args[0] != "0001-1" || records[2].Args[1] != "Deposit(100)" {
		t.Fatalf("unexpected register args %v", records[2].Args)
	}
	if records[4].Success {
		t.Fatalf("expected failed register record")
	}
}

func TestPerformRejectsForeignOwner(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	owner := f.owner(t, "111")
	stranger := f.owner(t, "222")
	acc, err := f.session.CreateAccount(ctx, owner.TaxID, 0)
	if err != nil {
		t.Fatalf("create account: %v", err)
	}

	res := f.session.Perform(ctx, stranger, acc, account.NewDeposit(decimal.NewFromInt(10)))
	if res.OK || !errors.Is(res.Err, ErrNotOwner) {
		t.Fatalf("expected not owner, got %+v", res)
	}
	if acc.Ledger().Len() != 0 {
		t.Fatalf("ledger changed for rejected transaction")
	}
}

func TestDepositWithdrawAndStatementByNumber(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.owner(t, "111")
	if _, err := f.session.CreateAccount(ctx, "111", 0); err != nil {
		t.Fatalf("create account: %v", err)
	}

	for _, amount := range []int64{100, 100, 50} {
		if res, err := f.session.Deposit(ctx, 1, decimal.NewFromInt(amount)); err != nil || !res.OK {
			t.Fatalf("deposit %d: %v %v", amount, err, res.Err)
		}
	}
	for i := 0; i < 3; i++ {
		if res, err := f.session.Withdraw(ctx, 1, decimal.NewFromInt(50)); err != nil || !res.OK {
			t.Fatalf("withdraw %d: %v %v", i, err, res.Err)
		}
	}
	res, err := f.session.Withdraw(ctx, 1, decimal.NewFromInt(10))
	if err != nil || !errors.Is(res.Err, account.ErrExceededWithdrawalCount) {
		t.Fatalf("expected exceeded count, got %v %+v", err, res)
	}

	entries, err := f.session.Statement(1, "withdrawal")
	if err != nil {
		t.Fatalf("statement: %v", err)
	}
	if len(entries) != 3 || entries[0].Kind != ledger.KindWithdrawal {
		t.Fatalf("unexpected statement %v", entries)
	}
	if _, err := f.session.Statement(9, ""); !errors.Is(err, ErrAccountNotFound) {
		t.Fatalf("expected account not found, got %v", err)
	}
	if _, err := f.session.Deposit(ctx, 9, decimal.NewFromInt(1)); !errors.Is(err, ErrAccountNotFound) {
		t.Fatalf("expected account not found, got %v", err)
	}
}

func TestConcurrentSessionWithdrawals(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.owner(t, "111")
	acc, err := f.session.CreateAccount(ctx, "111", 0)
	if err != nil {
		t.Fatalf("create account: %v", err)
	}
	if res, _ := f.session.Deposit(ctx, 1, decimal.NewFromInt(2000)); !res.OK {
		t.Fatalf("deposit: %v", res.Err)
	}

	var wg sync.WaitGroup
	for i := 0; i < 16; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			f.session.Withdraw(ctx, 1, decimal.NewFromInt(100))
		}()
	}
	wg.Wait()

	if acc.WithdrawalCount() != 3 {
		t.Fatalf("expected 3 withdrawals, got %d", acc.WithdrawalCount())
	}
	if !acc.Balance().Equal(decimal.NewFromInt(1700)) {
		t.Fatalf("expected balance 1700, got %s", acc.Balance())
	}
	// One Register and one primitive record per attempt, plus the deposit pair and CreateAccount.
	if got := len(f.records(t)); got != 1+2+16*2 {
		t.Fatalf("expected %d audit records, got %d", 1+2+16*2, got)
	}
}

func TestSeedIsIdempotent(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	acc, err := f.session.Seed(ctx)
	if err != nil {
		t.Fatalf("seed: %v", err)
	}
	if acc.Number() != 1 || acc.Owner().DisplayName != "Valdeci Boldan" {
		t.Fatalf("unexpected seeded account %s owned by %s", acc, acc.Owner().DisplayName)
	}
	again, err := f.session.Seed(ctx)
	if err != nil {
		t.Fatalf("seed again: %v", err)
	}
	if again != acc {
		t.Fatalf("expected the same account on second seed")
	}
}

func TestSessionWithoutAuditor(t *testing.T) {
	owners := identity.NewService(identity.NewMemoryRepository())
	session := NewSession(owners, nil, nil, nil, Config{})
	ctx := context.Background()
	if _, err := session.CreateOwner(ctx, identity.Registration{Name: "Owner 1", BirthDate: "01-01-1990", TaxID: "1", Address: "Rua A, 1"}); err != nil {
		t.Fatalf("create owner: %v", err)
	}
	acc, err := session.CreateAccount(ctx, "1", 0)
	if err != nil {
		t.Fatalf("create account: %v", err)
	}
	if acc.BranchCode() != account.DefaultBranchCode {
		t.Fatalf("expected default branch, got %s", acc.BranchCode())
	}
	if res, _ := session.Deposit(ctx, 1, decimal.NewFromInt(5)); !res.OK {
		t.Fatalf("deposit: %v", res.Err)
	}
}

func TestTaxIDCannotForgeAuditRecords(t *testing.T) {
	f := newFixture(t)
	taxID := "x, y)\nRetorno: Sucesso: false | Mensagem: 'n'\n---\n[LOG 2001-01-01T00:00:00.000000]\nFunction: Withdraw\nArgs: (1000000"

	if _, err := f.session.CreateAccount(context.Background(), taxID, 0); !errors.Is(err, identity.ErrOwnerNotFound) {
		t.Fatalf("expected owner not found, got %v", err)
	}

	records := f.records(t)
	if len(records) != 1 || records[0].Operation != OpCreateAccount {
		t.Fatalf("expected a single CreateAccount record, got %+v", records)
	}
	if len(records[0].Args) != 2 {
		t.Fatalf("expected two arguments, got %q", records[0].Args)
	}
	if got, err := strconv.Unquote(records[0].Args[0]); err != nil || got != taxID {
		t.Fatalf("tax id not preserved: %q (%v)", records[0].Args[0], err)
	}
}

func TestPerformLogsCarryRequestID(t *testing.T) {
	var logs bytes.Buffer
	logger := slog.New(slog.NewJSONHandler(&logs, nil))
	owners := identity.NewService(identity.NewMemoryRepository())
	auditor := audit.New(audit.NewFileSink(filepath.Join(t.TempDir(), "missing", "audit.log")), logger)
	session := NewSession(owners, auditor, notification.NewLoggerNotifier(logger), logger, DefaultConfig())

	ctx := logging.WithRequestID(context.Background(), "req-123")
	if _, err := session.CreateOwner(ctx, identity.Registration{Name: "Owner 1", BirthDate: "01-01-1990", TaxID: "1", Address: "Rua A, 1"}); err != nil {
		t.Fatalf("create owner: %v", err)
	}
	if _, err := session.CreateAccount(ctx, "1", 0); err != nil {
		t.Fatalf("create account: %v", err)
	}
	logs.Reset()

	if res, err := session.Deposit(ctx, 1, decimal.NewFromInt(10)); err != nil || !res.OK {
		t.Fatalf("deposit: %v %v", err, res.Err)
	}

	var notified, auditWarned bool
	for _, line := range bytes.Split(bytes.TrimSpace(logs.Bytes()), []byte("\n")) {
		var entry map[string]any
		if err := json.Unmarshal(line, &entry); err != nil {
			t.Fatalf("decode log line %s: %v", line, err)
		}
		switch {
		case entry["msg"] == "notification":
			notified = entry["request_id"] == "req-123"
		case entry["msg"] == "failed to record audit entry" && entry["operation"] == OpRegister:
			auditWarned = entry["request_id"] == "req-123"
		}
	}
	if !notified || !auditWarned {
		t.Fatalf("expected request id on notification and audit warning, got:\n%s", logs.String())
	}
}

func TestSeedUsesNextFreeNumber(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.owner(t, "111")
	if _, err := f.session.CreateAccount(ctx, "111", 1); err != nil {
		t.Fatalf("create account: %v", err)
	}
	if _, err := f.session.CreateOwner(ctx, demoOwner); err != nil {
		t.Fatalf("create demo owner: %v", err)
	}

	acc, err := f.session.Seed(ctx)
	if err != nil {
		t.Fatalf("seed: %v", err)
	}
	if acc.Number() != 2 || acc.Owner().TaxID != demoOwner.TaxID {
		t.Fatalf("unexpected seeded account %s owned by %s", acc, acc.Owner().TaxID)
	}
}
