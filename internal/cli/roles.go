package cli

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/dmitrijs2005/identitystore/internal/identity/models"
)

func newRoleCommand(s *session) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "role",
		Short: "Manage roles",
	}
	cmd.AddCommand(
		&cobra.Command{
			Use:   "create <name>",
			Short: "Create a role",
			Args:  cobra.ExactArgs(1),
			RunE: func(cmd *cobra.Command, args []string) error {
				r, err := s.app.Manager().CreateRole(cmd.Context(), args[0])
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "created role %s (%s)\n", r.Name, r.ID)
				return nil
			},
		},
		&cobra.Command{
			Use:   "list",
			Short: "List roles",
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, _ []string) error {
				roles, err := s.app.Manager().ListRoles(cmd.Context())
				if err != nil {
					return err
				}
				w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
				fmt.Fprintln(w, "ID\tNAME\tCLAIMS")
				for _, r := range roles {
					fmt.Fprintf(w, "%s\t%s\t%d\n", r.ID, r.Name, len(r.Claims))
				}
				return w.Flush()
			},
		},
		&cobra.Command{
			Use:   "delete <name>",
			Short: "Delete a role and remove it from its members",
			Args:  cobra.ExactArgs(1),
			RunE: func(cmd *cobra.Command, args []string) error {
				if err := s.app.Manager().DeleteRole(cmd.Context(), args[0]); err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "deleted role %s\n", args[0])
				return nil
			},
		},
		newRoleClaimCommand(s),
	)
	return cmd
}

func newRoleClaimCommand(s *session) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "claim",
		Short: "Manage a role's claims",
	}
	cmd.AddCommand(
		&cobra.Command{
			Use:   "add <role> <type> <value>",
			Short: "Add a claim to a role",
			Args:  cobra.ExactArgs(3),
			RunE: func(cmd *cobra.Command, args []string) error {
				return s.app.Manager().AddRoleClaim(cmd.Context(), args[0], models.NewClaim(args[1], args[2]))
			},
		},
		&cobra.Command{
			Use:   "remove <role> <type> <value>",
			Short: "Remove a claim from a role",
			Args:  cobra.ExactArgs(3),
			RunE: func(cmd *cobra.Command, args []string) error {
				return s.app.Manager().RemoveRoleClaim(cmd.Context(), args[0], models.NewClaim(args[1], args[2]))
			},
		},
		&cobra.Command{
			Use:   "list <role>",
			Short: "List a role's claims",
			Args:  cobra.ExactArgs(1),
			RunE: func(cmd *cobra.Command, args []string) error {
				r, err := s.app.Manager().FindRole(cmd.Context(), args[0])
				if err != nil {
					return err
				}
				claims, err := s.app.Stores().Roles.GetClaims(cmd.Context(), r)
				if err != nil {
					return err
				}
				for _, c := range claims {
					fmt.Fprintf(cmd.OutOrStdout(), "%s=%s\n", c.Type, c.Value)
				}
				return nil
			},
		},
	)
	return cmd
}
