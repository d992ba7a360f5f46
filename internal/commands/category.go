package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/checktrack/checktrack/internal/activity"
	"github.com/checktrack/checktrack/internal/categories"
	"github.com/checktrack/checktrack/internal/model"
)

func newCategoryCommand(g *globals) *cobra.Command {
	catCmd := &cobra.Command{
		Use:   "category",
		Short: "Manage the bank, company and business group lists",
	}
	catCmd.AddCommand(
		newCategoryListCommand(g),
		newCategoryChangeCommand(g, "add", "Add a category item"),
		newCategoryChangeCommand(g, "remove", "Remove a category item"),
	)
	return catCmd
}

func newCategoryListCommand(g *globals) *cobra.Command {
	return &cobra.Command{
		Use:   "list [bank|company|business-group]",
		Short: "List category items",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := g.open(cmd)
			if err != nil {
				return err
			}
			defer a.Close()

			cats := a.Categories.All()
			if len(args) > 0 {
				kind, err := model.ParseCategoryKind(args[0])
				if err != nil {
					return err
				}
				c, _ := a.Categories.Get(kind)
				cats = []model.Category{c}
			}
			out := cmd.OutOrStdout()
			for _, c := range cats {
				fmt.Fprintf(out, "%s (%s):\n", categories.DisplayName(c.Kind), c.Kind)
				for _, it := range c.Items {
					fmt.Fprintf(out, "  %s\n", it)
				}
			}
			return nil
		},
	}
}

func newCategoryChangeCommand(g *globals, verb, short string) *cobra.Command {
	return &cobra.Command{
		Use:   verb + " <bank|company|business-group> <item>",
		Short: short,
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			kind, err := model.ParseCategoryKind(args[0])
			if err != nil {
				return err
			}
			a, actor, err := g.session(cmd)
			if err != nil {
				return err
			}
			defer a.Close()

			item := args[1]
			if verb == "add" {
				err = a.Categories.Add(actor, kind, item)
			} else {
				err = a.Categories.Remove(actor, kind, item)
			}
			if err != nil {
				return err
			}
			a.Record(actor, activity.ActionCategoryEdit, fmt.Sprintf("%s %s %q", verb, kind, item))
			fmt.Fprintf(cmd.OutOrStdout(), "%s: %s %s\n", categories.DisplayName(kind), verb, item)
			a.Commit(cmd.Context(), fmt.Sprintf("category: %s %s %s", verb, kind, item))
			return nil
		},
	}
}
