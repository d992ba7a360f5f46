package commands

import (
	"fmt"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/checktrack/checktrack/internal/activity"
	"github.com/checktrack/checktrack/internal/id"
	"github.com/checktrack/checktrack/internal/model"
	"github.com/checktrack/checktrack/internal/users"
)

func newUserCommand(g *globals) *cobra.Command {
	userCmd := &cobra.Command{
		Use:   "user",
		Short: "Manage users and permissions",
	}
	userCmd.AddCommand(
		newUserListCommand(g),
		newUserAddCommand(g),
		newUserRemoveCommand(g),
		newUserPasswdCommand(g),
	)
	return userCmd
}

func permissionNames() string {
	names := make([]string, len(model.AllPermissions))
	for i, p := range model.AllPermissions {
		names[i] = string(p)
	}
	return strings.Join(names, ", ")
}

func parsePermissions(names []string, all bool) (model.Permissions, error) {
	if all {
		return model.FullPermissions(), nil
	}
	var perms model.Permissions
	for _, n := range names {
		if err := perms.Set(model.Permission(strings.TrimSpace(n)), true); err != nil {
			return perms, err
		}
	}
	return perms, nil
}

func newUserListCommand(g *globals) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List users",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, actor, err := g.session(cmd)
			if err != nil {
				return err
			}
			defer a.Close()

			list, err := a.Users.List(actor)
			if err != nil {
				return err
			}
			tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
			fmt.Fprintln(tw, "ID\tUSERNAME\tPERMISSIONS")
			for _, u := range list {
				var granted []string
				for _, p := range model.AllPermissions {
					if u.Permissions.Allows(p) {
						granted = append(granted, string(p))
					}
				}
				fmt.Fprintf(tw, "%s\t%s\t%s\n", id.Short(u.ID), u.Username, strings.Join(granted, ","))
			}
			return tw.Flush()
		},
	}
}

func newUserAddCommand(g *globals) *cobra.Command {
	var password string
	var perms []string
	var all bool

	cmd := &cobra.Command{
		Use:   "add <username>",
		Short: "Add a user",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			p, err := parsePermissions(perms, all)
			if err != nil {
				return err
			}
			a, actor, err := g.session(cmd)
			if err != nil {
				return err
			}
			defer a.Close()

			u, err := a.Users.Add(actor, users.NewUser{Username: args[0], Password: password, Permissions: p})
			if err != nil {
				return err
			}
			a.Record(actor, activity.ActionUserAdd, "added user "+u.Username, u.ID)
			fmt.Fprintf(cmd.OutOrStdout(), "Added user %s (%s)\n", u.Username, id.Short(u.ID))
			a.Commit(cmd.Context(), "user: add "+u.Username)
			return nil
		},
	}

	cmd.Flags().StringVar(&password, "new-password", "", "password for the new user (required)")
	_ = cmd.MarkFlagRequired("new-password")
	cmd.Flags().StringSliceVar(&perms, "perm", nil, "permission to grant, repeatable ("+permissionNames()+")")
	cmd.Flags().BoolVar(&all, "all-permissions", false, "grant every permission")
	return cmd
}

func newUserRemoveCommand(g *globals) *cobra.Command {
	return &cobra.Command{
		Use:   "remove <username|id>",
		Short: "Remove a user",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, actor, err := g.session(cmd)
			if err != nil {
				return err
			}
			defer a.Close()

			u, err := a.Users.Lookup(args[0])
			if err != nil {
				return err
			}
			if err := a.Users.Remove(actor, u.ID); err != nil {
				return err
			}
			a.Record(actor, activity.ActionUserRemove, "removed user "+u.Username, u.ID)
			fmt.Fprintf(cmd.OutOrStdout(), "Removed user %s\n", u.Username)
			a.Commit(cmd.Context(), "user: remove "+u.Username)
			return nil
		},
	}
}

func newUserPasswdCommand(g *globals) *cobra.Command {
	var password string

	cmd := &cobra.Command{
		Use:   "passwd [username|id]",
		Short: "Change a password (your own by default)",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, actor, err := g.session(cmd)
			if err != nil {
				return err
			}
			defer a.Close()

			target := actor
			if len(args) > 0 {
				if target, err = a.Users.Lookup(args[0]); err != nil {
					return err
				}
			}
			if err := a.Users.SetPassword(actor, target.ID, password); err != nil {
				return err
			}
			a.Record(actor, activity.ActionUserUpdate, "changed password of "+target.Username, target.ID)
			fmt.Fprintf(cmd.OutOrStdout(), "Changed password of %s\n", target.Username)
			a.Commit(cmd.Context(), "user: passwd "+target.Username)
			return nil
		},
	}

	cmd.Flags().StringVar(&password, "new-password", "", "the new password (required)")
	_ = cmd.MarkFlagRequired("new-password")
	return cmd
}
