package cmd

import (
	"fmt"
	"os"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/congo-pay/banco/internal/audit"
)

func newAuditCmd(opts *options) *cobra.Command {
	var (
		file       string
		operation  string
		failedOnly bool
	)

	cmd := &cobra.Command{
		Use:   "audit",
		Short: "Display audit log records",
		Long: `Parse the audit log and print its records in order.

Example:
  banco audit --file audit.log
  banco audit --op Register --failed`,
		RunE: func(cmd *cobra.Command, args []string) error {
			if file == "" {
				file = opts.cfg.AuditLogPath
			}
			opts.logger.Debug("reading audit log", "path", file)

			f, err := os.Open(file)
			if err != nil {
				return fmt.Errorf("open audit log: %w", err)
			}
			defer f.Close()

			records, err := audit.Parse(f)
			if err != nil {
				return err
			}

			w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
			fmt.Fprintln(w, "TIMESTAMP\tFUNCTION\tARGS\tSUCCESS\tMESSAGE")
			shown, failures := 0, 0
			for _, rec := range records {
				if operation != "" && !strings.EqualFold(rec.Operation, operation) {
					continue
				}
				if failedOnly && rec.Success {
					continue
				}
				shown++
				if !rec.Success {
					failures++
				}
				fmt.Fprintf(w, "%s\t%s\t(%s)\t%t\t%s\n", rec.Timestamp.Format(audit.TimeLayout), rec.Operation, strings.Join(rec.Args, ", "), rec.Success, rec.Message)
			}
			if err := w.Flush(); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "\n%d records shown, %d failed (%d in file)\n", shown, failures, len(records))
			return nil
		},
	}

	cmd.Flags().StringVar(&file, "file", "", "audit log to read (default is AUDIT_LOG_PATH)")
	cmd.Flags().StringVar(&operation, "op", "", "only show records for this operation")
	cmd.Flags().BoolVar(&failedOnly, "failed", false, "only show failed calls")
	return cmd
}
