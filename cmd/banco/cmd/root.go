// Package cmd provides CLI commands for banco.
package cmd

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/congo-pay/banco/internal/config"
	"github.com/congo-pay/banco/internal/logging"
)

type options struct {
	debug  bool
	cfg    config.Config
	logger *slog.Logger
}

// NewRootCmd builds the command tree.
func NewRootCmd() *cobra.Command {
	opts := &options{}

	root := &cobra.Command{
		Use:   "banco",
		Short: "Inspect and exercise the banking core",
		Long: `banco is a companion CLI for the banking API.

It supports:
- Reading the append-only audit log back, filtered by operation or outcome
- Running a scripted walkthrough of deposits and withdrawals

Example:
  banco audit --file audit.log --op Withdraw --failed
  banco demo --audit-file /tmp/demo.log`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load()
			if err != nil {
				return fmt.Errorf("load configuration: %w", err)
			}
			level := cfg.LogLevel
			if opts.debug {
				level = "debug"
			}
			opts.cfg = cfg
			opts.logger = logging.NewWithWriter(cmd.ErrOrStderr(), level)
			slog.SetDefault(opts.logger)
			return nil
		},
	}

	root.PersistentFlags().BoolVar(&opts.debug, "debug", false, "enable debug logging")

	root.AddCommand(newAuditCmd(opts))
	root.AddCommand(newDemoCmd(opts))
	return root
}

// Execute runs the root command. This is called by main.main().
func Execute() error {
	if err := NewRootCmd().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return err
	}
	return nil
}
