package commands

import (
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/checktrack/checktrack/internal/id"
	"github.com/checktrack/checktrack/internal/importer"
	"github.com/checktrack/checktrack/internal/model"
	"github.com/checktrack/checktrack/internal/payments"
)

// parseDay reads a date as DD.MM.YYYY, YYYY-MM-DD or MM/DD/YYYY in loc.
func parseDay(s string, loc *time.Location) (time.Time, error) {
	p := importer.LayoutDateParser{Layouts: importer.DefaultLayouts, Location: loc}
	t, ok := p.ParseDate(s)
	if !ok {
		return time.Time{}, fmt.Errorf("invalid date %q (use DD.MM.YYYY or YYYY-MM-DD)", s)
	}
	return t, nil
}

// parseMoney accepts "1250.50" and "1250,50".
func parseMoney(s string) (decimal.Decimal, error) {
	s = strings.TrimSpace(s)
	if !strings.Contains(s, ".") {
		s = strings.Replace(s, ",", ".", 1)
	}
	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Decimal{}, fmt.Errorf("invalid amount %q", s)
	}
	return d, nil
}

func newListCommand(g *globals) *cobra.Command {
	var status, bank, company, group, from, to, search string
	var overdue, summaryOnly bool

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List payments by due date",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := g.open(cmd)
			if err != nil {
				return err
			}
			defer a.Close()
			loc := a.Clock.Now().Location()

			var list []model.Payment
			if overdue {
				list, err = a.Payments.Overdue(cmd.Context())
			} else {
				f := payments.Filter{Bank: bank, Company: company, BusinessGroup: group, Search: search}
				if status != "" {
					if f.Status, err = model.ParseStatus(status); err != nil {
						return err
					}
				}
				if from != "" {
					if f.From, err = parseDay(from, loc); err != nil {
						return err
					}
				}
				if to != "" {
					if f.To, err = parseDay(to, loc); err != nil {
						return err
					}
					f.To = f.To.AddDate(0, 0, 1).Add(-time.Nanosecond)
				}
				list, err = a.Payments.List(cmd.Context(), f)
			}
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			if !summaryOnly {
				if len(list) == 0 {
					fmt.Fprintln(out, "No payments.")
					return nil
				}
				printPayments(out, list)
				fmt.Fprintln(out)
			}
			printSummary(out, importer.Summarize(list))
			return nil
		},
	}

	f := cmd.Flags()
	f.StringVar(&status, "status", "", "only this status (pending, paid, other)")
	f.StringVar(&bank, "bank", "", "only this bank")
	f.StringVar(&company, "company", "", "only this company")
	f.StringVar(&group, "group", "", "only this business group")
	f.StringVar(&from, "from", "", "due on or after this date")
	f.StringVar(&to, "to", "", "due on or before this date")
	f.StringVar(&search, "search", "", "match check number or description")
	f.BoolVar(&overdue, "overdue", false, "only pending payments past their due date")
	f.BoolVar(&summaryOnly, "summary", false, "print totals only")

	return cmd
}

// draftFlags binds the editable payment fields to flags.
type draftFlags struct {
	due, check, bank, company, group, description, amount string
}

func (d *draftFlags) register(f *pflag.FlagSet) {
	f.StringVar(&d.due, "due", "", "due date (DD.MM.YYYY or YYYY-MM-DD)")
	f.StringVar(&d.check, "check", "", "check number")
	f.StringVar(&d.bank, "bank", "", "bank")
	f.StringVar(&d.company, "company", "", "company")
	f.StringVar(&d.group, "group", "", "business group")
	f.StringVar(&d.description, "description", "", "description")
	f.StringVar(&d.amount, "amount", "", "amount")
}

// applyTo copies the flags that were set onto base.
func (d *draftFlags) applyTo(f *pflag.FlagSet, base payments.Draft, loc *time.Location) (payments.Draft, error) {
	var err error
	if f.Changed("due") {
		if base.DueDate, err = parseDay(d.due, loc); err != nil {
			return base, err
		}
	}
	if f.Changed("amount") {
		if base.Amount, err = parseMoney(d.amount); err != nil {
			return base, err
		}
	}
	if f.Changed("check") {
		base.CheckNumber = d.check
	}
	if f.Changed("bank") {
		base.Bank = d.bank
	}
	if f.Changed("company") {
		base.Company = d.company
	}
	if f.Changed("group") {
		base.BusinessGroup = d.group
	}
	if f.Changed("description") {
		base.Description = d.description
	}
	return base, nil
}

func newAddCommand(g *globals) *cobra.Command {
	var df draftFlags

	cmd := &cobra.Command{
		Use:   "add",
		Short: "Add a pending payment",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, actor, err := g.session(cmd)
			if err != nil {
				return err
			}
			defer a.Close()

			d, err := df.applyTo(cmd.Flags(), payments.Draft{}, a.Clock.Now().Location())
			if err != nil {
				return err
			}
			p, err := a.Payments.Add(cmd.Context(), actor, d)
			if err != nil {
				return err
			}
			printPayment(cmd.OutOrStdout(), "Added", p)
			a.Commit(cmd.Context(), "add: "+p.CheckNumber)
			return nil
		},
	}
	df.register(cmd.Flags())
	return cmd
}

func newEditCommand(g *globals) *cobra.Command {
	var df draftFlags

	cmd := &cobra.Command{
		Use:   "edit <id>",
		Short: "Change the fields of a payment",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, actor, err := g.session(cmd)
			if err != nil {
				return err
			}
			defer a.Close()

			cur, err := a.Payments.Resolve(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			d, err := df.applyTo(cmd.Flags(), payments.DraftOf(cur), a.Clock.Now().Location())
			if err != nil {
				return err
			}
			p, err := a.Payments.Edit(cmd.Context(), actor, cur.ID, d)
			if err != nil {
				return err
			}
			printPayment(cmd.OutOrStdout(), "Updated", p)
			a.Commit(cmd.Context(), "edit: "+p.CheckNumber)
			return nil
		},
	}
	df.register(cmd.Flags())
	return cmd
}

func newStatusCommand(g *globals) *cobra.Command {
	return &cobra.Command{
		Use:   "status <id> <pending|paid|other>",
		Short: "Change the status of a payment",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			st, err := model.ParseStatus(args[1])
			if err != nil {
				return err
			}
			a, actor, err := g.session(cmd)
			if err != nil {
				return err
			}
			defer a.Close()

			cur, err := a.Payments.Resolve(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			p, err := a.Payments.ChangeStatus(cmd.Context(), actor, cur.ID, st)
			if err != nil {
				return err
			}
			printPayment(cmd.OutOrStdout(), "Updated", p)
			a.Commit(cmd.Context(), fmt.Sprintf("status: %s %s", p.CheckNumber, p.Status))
			return nil
		},
	}
}

func newDeleteCommand(g *globals) *cobra.Command {
	return &cobra.Command{
		Use:   "delete <id>",
		Short: "Delete a payment",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, actor, err := g.session(cmd)
			if err != nil {
				return err
			}
			defer a.Close()

			cur, err := a.Payments.Resolve(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			if err := a.Payments.Delete(cmd.Context(), actor, cur.ID); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Deleted %s (%s)\n", id.Short(cur.ID), cur.CheckNumber)
			a.Commit(cmd.Context(), "delete: "+cur.CheckNumber)
			return nil
		},
	}
}

func newClearCommand(g *globals) *cobra.Command {
	return &cobra.Command{
		Use:   "clear",
		Short: "Delete every payment",
		Long:  "Clear deletes every payment. The --password of the acting user is checked again before anything is removed.",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := g.open(cmd)
			if err != nil {
				return err
			}
			defer a.Close()
			if g.username == "" {
				return errNoUser
			}
			actor, err := a.Users.Lookup(g.username)
			if err != nil {
				return err
			}

			n, err := a.Payments.Clear(cmd.Context(), actor, g.password)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Deleted %d payments\n", n)
			a.Commit(cmd.Context(), fmt.Sprintf("clear: %d payments", n))
			return nil
		},
	}
}
