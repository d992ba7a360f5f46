package commands

import (
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/checktrack/checktrack/internal/backup"
	"github.com/checktrack/checktrack/internal/payments"
)

func newBackupCommand(g *globals) *cobra.Command {
	var output string

	cmd := &cobra.Command{
		Use:   "backup",
		Short: "Write every payment to a JSON backup",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := g.open(cmd)
			if err != nil {
				return err
			}
			defer a.Close()

			list, err := a.Payments.List(cmd.Context(), payments.Filter{})
			if err != nil {
				return err
			}
			now := a.Clock.Now()
			if output == "" {
				output = fmt.Sprintf("checktrack-backup-%s.json", now.Format("2006-01-02"))
			}
			if output == "-" {
				return backup.Write(cmd.OutOrStdout(), list, now)
			}
			if err := writeFile(output, func(w io.Writer) error { return backup.Write(w, list, now) }); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Wrote %d payments to %s\n", len(list), output)
			return nil
		},
	}

	cmd.Flags().StringVarP(&output, "output", "o", "", "backup file, - for stdout (default checktrack-backup-<date>.json)")
	return cmd
}

func newRestoreCommand(g *globals) *cobra.Command {
	var yes bool

	cmd := &cobra.Command{
		Use:   "restore <file>",
		Short: "Replace every payment with the contents of a backup",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			f, err := os.Open(args[0])
			if err != nil {
				return fmt.Errorf("opening backup: %w", err)
			}
			records, err := backup.Read(f)
			_ = f.Close()
			if err != nil {
				return err
			}

			a, actor, err := g.session(cmd)
			if err != nil {
				return err
			}
			defer a.Close()

			if !yes && !newConfirmer(cmd).ask(fmt.Sprintf("Replace all payments with %d from %s?", len(records), args[0])) {
				return errors.New("restore cancelled")
			}
			n, err := a.Payments.Restore(cmd.Context(), actor, records)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Restored %d payments\n", n)
			a.Commit(cmd.Context(), fmt.Sprintf("restore: %d payments", n))
			return nil
		},
	}

	cmd.Flags().BoolVarP(&yes, "yes", "y", false, "replace without asking for confirmation")
	return cmd
}

func newExportCommand(g *globals) *cobra.Command {
	return &cobra.Command{
		Use:   "export <file.xlsx>",
		Short: "Export payments to an Excel workbook",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := g.open(cmd)
			if err != nil {
				return err
			}
			defer a.Close()

			list, err := a.Payments.List(cmd.Context(), payments.Filter{})
			if err != nil {
				return err
			}
			if err := writeFile(args[0], func(w io.Writer) error { return backup.ExportXLSX(w, list) }); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Exported %d payments to %s\n", len(list), args[0])
			return nil
		},
	}
}

// writeFile creates path and passes it to write.
func writeFile(path string, write func(io.Writer) error) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("creating %s: %w", path, err)
	}
	if err := write(f); err != nil {
		_ = f.Close()
		return err
	}
	return f.Close()
}
