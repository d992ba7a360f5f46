package commands

import (
	"bufio"
	"fmt"
	"io"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/checktrack/checktrack/internal/id"
	"github.com/checktrack/checktrack/internal/importer"
	"github.com/checktrack/checktrack/internal/model"
)

// displayDate is the date format shown to users.
const displayDate = "02.01.2006"

func printPayments(w io.Writer, payments []model.Payment) {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tDUE\tCHECK\tBANK\tCOMPANY\tGROUP\tAMOUNT\tSTATUS\tDESCRIPTION")
	for _, p := range payments {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\t%s\t%s\t%s\t%s\n",
			id.Short(p.ID),
			p.DueDate.Format(displayDate),
			p.CheckNumber,
			p.Bank,
			p.Company,
			p.BusinessGroup,
			p.Amount.StringFixed(2),
			p.Status,
			p.Description,
		)
	}
	_ = tw.Flush()
}

func printSummary(w io.Writer, s importer.Summary) {
	fmt.Fprintf(w, "Total: %d payments, %s\n", s.Count, s.TotalAmount.StringFixed(2))
	fmt.Fprintf(w, "Paid: %d, %s\n", s.PaidCount, s.PaidAmount.StringFixed(2))
	fmt.Fprintf(w, "Pending: %d, %s\n", s.Pending(), s.PendingAmount().StringFixed(2))
}

func printPayment(w io.Writer, verb string, p model.Payment) {
	fmt.Fprintf(w, "%s %s: %s %s due %s (%s)\n",
		verb, id.Short(p.ID), p.CheckNumber, p.Amount.StringFixed(2), p.DueDate.Format(displayDate), p.Status)
}

// confirmer asks yes/no questions on the command's input. Anything but y or
// yes is a no.
type confirmer struct {
	cmd *cobra.Command
	in  *bufio.Reader
}

func newConfirmer(cmd *cobra.Command) *confirmer {
	return &confirmer{cmd: cmd, in: bufio.NewReader(cmd.InOrStdin())}
}

func (c *confirmer) ask(question string) bool {
	fmt.Fprintf(c.cmd.OutOrStdout(), "%s [y/N] ", question)
	line, _ := c.in.ReadString('\n')
	switch strings.ToLower(strings.TrimSpace(line)) {
	case "y", "yes", "e", "evet":
		return true
	}
	return false
}
