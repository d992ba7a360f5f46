package commands

import (
	"errors"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/checktrack/checktrack/internal/app"
	"github.com/checktrack/checktrack/internal/importer"
	"github.com/checktrack/checktrack/internal/model"
)

func newImportCommand(g *globals) *cobra.Command {
	var all, yes bool

	cmd := &cobra.Command{
		Use:   "import [file...]",
		Short: "Import checks from .xlsx, .xls or .csv spreadsheets",
		Long: `Import reads spreadsheets whose first row is the header
"Vade Tarihi, Çek No, Banka, Firma, İş Grubu, Açıklama, Tutar".
Rows with missing fields or an unreadable amount are skipped. Each file is
previewed and only stored after confirmation. With --all, every file in the
import/ directory is imported and moved to import/processed/.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			if all == (len(args) > 0) {
				return errors.New("pass spreadsheet files or --all, not both")
			}
			a, actor, err := g.session(cmd)
			if err != nil {
				return err
			}
			defer a.Close()

			paths := args
			if all {
				files, err := importer.Scan(a.Dir, a.Pipeline.Registry())
				if err != nil {
					return err
				}
				if len(files) == 0 {
					fmt.Fprintln(cmd.OutOrStdout(), "No files to import in import/")
					return nil
				}
				for _, f := range files {
					paths = append(paths, f.Path)
				}
			}

			var errs []error
			imported := 0
			prompt := newConfirmer(cmd)
			for _, path := range paths {
				n, err := importFile(cmd, a, actor, path, yes, prompt)
				if err != nil {
					fmt.Fprintf(cmd.ErrOrStderr(), "%s: %v\n", filepath.Base(path), err)
					errs = append(errs, fmt.Errorf("%s: %w", filepath.Base(path), err))
					continue
				}
				imported += n
			}
			if imported > 0 {
				a.Commit(cmd.Context(), fmt.Sprintf("import: %d payments", imported))
			}
			return errors.Join(errs...)
		},
	}

	cmd.Flags().BoolVar(&all, "all", false, "import every file in the import/ directory")
	cmd.Flags().BoolVarP(&yes, "yes", "y", false, "store without asking for confirmation")

	return cmd
}

// importFile previews one file, asks for confirmation and stores it. It
// returns the number of stored payments.
func importFile(cmd *cobra.Command, a *app.App, actor model.User, path string, yes bool, prompt *confirmer) (int, error) {
	out := cmd.OutOrStdout()
	pv, err := a.Pipeline.PreviewFile(path)
	if err != nil {
		return 0, err
	}

	fmt.Fprintf(out, "%s: %d of %d rows accepted\n", pv.Source, len(pv.Payments), pv.Rows)
	if len(pv.Payments) == 0 {
		fmt.Fprintln(out, "Nothing to import.")
		return 0, nil
	}
	printPayments(out, pv.Payments)
	printSummary(out, pv.Summary)

	if !yes && !prompt.ask(fmt.Sprintf("Import %d payments?", len(pv.Payments))) {
		fmt.Fprintln(out, "Skipped.")
		return 0, nil
	}

	created, err := a.Payments.CommitImport(cmd.Context(), actor, pv)
	if err != nil {
		return 0, err
	}
	fmt.Fprintf(out, "Imported %d payments from %s\n", len(created), pv.Source)

	if inImportDir(a.Dir, path) {
		if err := importer.MarkProcessed(a.Dir, filepath.Base(path)); err != nil {
			return len(created), err
		}
	}
	return len(created), nil
}

// inImportDir reports whether path sits directly in <dataDir>/import/.
func inImportDir(dataDir, path string) bool {
	abs, err := filepath.Abs(path)
	if err != nil {
		return false
	}
	rel, err := filepath.Rel(filepath.Join(dataDir, "import"), abs)
	return err == nil && !strings.Contains(rel, string(filepath.Separator)) && !strings.HasPrefix(rel, "..")
}
