package cmd

import (
	"context"
	"fmt"

	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"

	"github.com/congo-pay/banco/internal/account"
	"github.com/congo-pay/banco/internal/audit"
	"github.com/congo-pay/banco/internal/bank"
	"github.com/congo-pay/banco/internal/identity"
	"github.com/congo-pay/banco/internal/notification"
)

type demoStep struct {
	kind   string
	amount int64
}

var demoSteps = []demoStep{
	{"deposit", 100},
	{"deposit", 100},
	{"deposit", 50},
	{"withdraw", 600},
	{"withdraw", 50},
	{"withdraw", 50},
	{"withdraw", 50},
	{"withdraw", 10},
	{"withdraw", -5},
	{"deposit", -5},
}

func newDemoCmd(opts *options) *cobra.Command {
	var auditFile string

	cmd := &cobra.Command{
		Use:   "demo",
		Short: "Run a scripted walkthrough against the demo account",
		Long: `Seed the demo owner and account, then run deposits and withdrawals
that hit every withdrawal rule, printing each outcome and the final statement.
Every call is appended to the audit log.

Example:
  banco demo --audit-file /tmp/demo.log`,
		RunE: func(cmd *cobra.Command, args []string) error {
			if auditFile == "" {
				auditFile = opts.cfg.AuditLogPath
			}
			ctx := context.Background()
			out := cmd.OutOrStdout()

			auditor := audit.New(audit.NewFileSink(auditFile), opts.logger)
			session := bank.NewSession(
				identity.NewService(identity.NewMemoryRepository()),
				auditor,
				notification.NewLoggerNotifier(opts.logger),
				opts.logger,
				bank.Config{BranchCode: opts.cfg.BranchCode, WithdrawalLimit: opts.cfg.WithdrawalLimit, MaxWithdrawals: opts.cfg.MaxWithdrawals},
			)
			acc, err := session.Seed(ctx)
			if err != nil {
				return err
			}
			fmt.Fprintf(out, "Account %s opened for %s\n\n", acc, acc.Owner().DisplayName)

			for _, step := range demoSteps {
				amount := decimal.NewFromInt(step.amount)
				var res account.Result
				if step.kind == "deposit" {
					res, err = session.Deposit(ctx, acc.Number(), amount)
				} else {
					res, err = session.Withdraw(ctx, acc.Number(), amount)
				}
				if err != nil {
					return err
				}
				status := "ok"
				if !res.OK {
					status = "rejected"
				}
				fmt.Fprintf(out, "%-8s %8s  %-8s %s\n", step.kind, amount.StringFixed(2), status, res.Message)
			}

			fmt.Fprintln(out)
			fmt.Fprint(out, account.FormatStatement(acc, ""))
			fmt.Fprintf(out, "\nAudit log written to %s\n", auditFile)
			return nil
		},
	}

	cmd.Flags().StringVar(&auditFile, "audit-file", "", "audit log to append to (default is AUDIT_LOG_PATH)")
	return cmd
}
