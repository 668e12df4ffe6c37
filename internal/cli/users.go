package cli

import (
	"encoding/json"
	"fmt"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/dmitrijs2005/identitystore/internal/common"
	"github.com/dmitrijs2005/identitystore/internal/identity/models"
)

// forever is the lockout end used by "user lock" without --for.
var forever = time.Date(9999, time.December, 31, 0, 0, 0, 0, time.UTC)

func newUserCommand(s *session) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "user",
		Short: "Manage users",
	}
	cmd.AddCommand(
		newUserCreateCommand(s),
		newUserListCommand(s),
		newUserShowCommand(s),
		newUserDeleteCommand(s),
		newUserPasswdCommand(s),
		newUserLoginCommand(s),
		newUserLockCommand(s),
		newUserUnlockCommand(s),
		newUserRevokeCommand(s),
		newUserRoleCommand(s),
		newUserClaimCommand(s),
	)
	return cmd
}

func newUserCreateCommand(s *session) *cobra.Command {
	var email string
	cmd := &cobra.Command{
		Use:   "create <name>",
		Short: "Create a user, reading the password from stdin",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			pw, err := s.input.newSecret("Password")
			if err != nil {
				return err
			}
			defer common.WipeByteArray(pw)

			u, err := s.app.Manager().Register(cmd.Context(), args[0], email, string(pw))
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "created user %s (%s)\n", u.UserName, u.ID)
			return nil
		},
	}
	cmd.Flags().StringVarP(&email, "email", "e", "", "email address")
	return cmd
}

func newUserListCommand(s *session) *cobra.Command {
	var role string
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List users",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()
			var (
				users []*models.User
				err   error
			)
			if role != "" {
				users, err = s.app.Stores().Users.GetUsersInRole(ctx, s.app.Manager().Normalize(role))
			} else {
				users, err = s.app.Manager().ListUsers(ctx)
			}
			if err != nil {
				return err
			}

			now := time.Now()
			w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprintln(w, "ID\tNAME\tEMAIL\tROLES\tLOCKED")
			for _, u := range users {
				fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%t\n", u.ID, u.UserName, u.Email, strings.Join(u.Roles, ","), u.IsLockedOut(now))
			}
			return w.Flush()
		},
	}
	cmd.Flags().StringVar(&role, "role", "", "only users in this role")
	return cmd
}

// userView is what "user show" prints: the record without secrets.
type userView struct {
	ID                   string             `json:"id" yaml:"id"`
	UserName             string             `json:"userName" yaml:"userName"`
	Email                string             `json:"email,omitempty" yaml:"email,omitempty"`
	EmailConfirmed       bool               `json:"emailConfirmed" yaml:"emailConfirmed"`
	PhoneNumber          string             `json:"phoneNumber,omitempty" yaml:"phoneNumber,omitempty"`
	PhoneNumberConfirmed bool               `json:"phoneNumberConfirmed" yaml:"phoneNumberConfirmed"`
	TwoFactorEnabled     bool               `json:"twoFactorEnabled" yaml:"twoFactorEnabled"`
	HasPassword          bool               `json:"hasPassword" yaml:"hasPassword"`
	LockoutEnabled       bool               `json:"lockoutEnabled" yaml:"lockoutEnabled"`
	LockoutEnd           *time.Time         `json:"lockoutEnd,omitempty" yaml:"lockoutEnd,omitempty"`
	AccessFailedCount    int                `json:"accessFailedCount" yaml:"accessFailedCount"`
	Roles                []string           `json:"roles,omitempty" yaml:"roles,omitempty"`
	Claims               []models.Claim     `json:"claims,omitempty" yaml:"claims,omitempty"`
	Logins               []models.UserLogin `json:"logins,omitempty" yaml:"logins,omitempty"`
}

func newUserView(u *models.User) userView {
	return userView{
		ID:                   u.ID,
		UserName:             u.UserName,
		Email:                u.Email,
		EmailConfirmed:       u.EmailConfirmed,
		PhoneNumber:          u.PhoneNumber,
		PhoneNumberConfirmed: u.PhoneNumberConfirmed,
		TwoFactorEnabled:     u.TwoFactorEnabled,
		HasPassword:          u.HasPassword(),
		LockoutEnabled:       u.LockoutEnabled,
		LockoutEnd:           u.LockoutEndDateUTC,
		AccessFailedCount:    u.AccessFailedCount,
		Roles:                u.Roles,
		Claims:               u.Claims,
		Logins:               u.Logins,
	}
}

func newUserShowCommand(s *session) *cobra.Command {
	var output string
	cmd := &cobra.Command{
		Use:   "show <name>",
		Short: "Show a user without secrets",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			u, err := s.app.Manager().FindUser(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			view := newUserView(u)

			switch output {
			case "json":
				enc := json.NewEncoder(cmd.OutOrStdout())
				enc.SetIndent("", "  ")
				return enc.Encode(view)
			case "yaml":
				enc := yaml.NewEncoder(cmd.OutOrStdout())
				enc.SetIndent(2)
				if err := enc.Encode(view); err != nil {
					return err
				}
				return enc.Close()
			default:
				return fmt.Errorf("%w: unknown output format %q", common.ErrorValidation, output)
			}
		},
	}
	cmd.Flags().StringVarP(&output, "output", "o", "json", "output format: json or yaml")
	return cmd
}

func newUserDeleteCommand(s *session) *cobra.Command {
	return &cobra.Command{
		Use:   "delete <name>",
		Short: "Delete a user",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := s.app.Manager().DeleteUser(cmd.Context(), args[0]); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "deleted user %s\n", args[0])
			return nil
		},
	}
}

func newUserPasswdCommand(s *session) *cobra.Command {
	var verify bool
	cmd := &cobra.Command{
		Use:   "passwd <name>",
		Short: "Set a user's password",
		Long: `Set a user's password. With --verify the current password is read
first and checked, counting towards lockout like a login.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var current []byte
			if verify {
				var err error
				if current, err = s.input.secret("Current password"); err != nil {
					return err
				}
				defer common.WipeByteArray(current)
			}

			next, err := s.input.newSecret("New password")
			if err != nil {
				return err
			}
			defer common.WipeByteArray(next)

			m := s.app.Manager()
			if verify {
				err = m.ChangePassword(cmd.Context(), args[0], string(current), string(next))
			} else {
				err = m.SetPassword(cmd.Context(), args[0], string(next))
			}
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "password updated for %s\n", args[0])
			return nil
		},
	}
	cmd.Flags().BoolVar(&verify, "verify", false, "require the current password")
	return cmd
}

func newUserLoginCommand(s *session) *cobra.Command {
	return &cobra.Command{
		Use:   "login <name>",
		Short: "Check a password and issue access and refresh tokens",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			pw, err := s.input.secret("Password")
			if err != nil {
				return err
			}
			defer common.WipeByteArray(pw)

			ctx := cmd.Context()
			pair, err := s.app.Manager().Login(ctx, args[0], string(pw))
			if err != nil {
				return err
			}
			u, err := s.app.Manager().FindUser(ctx, args[0])
			if err != nil {
				return err
			}
			printTokens(cmd, u.ID, pair)
			return nil
		},
	}
}

func newUserLockCommand(s *session) *cobra.Command {
	var d time.Duration
	cmd := &cobra.Command{
		Use:   "lock <name>",
		Short: "Lock a user out",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			until := forever
			if d > 0 {
				until = time.Now().Add(d).UTC()
			}
			if err := s.app.Manager().Lock(cmd.Context(), args[0], until); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "locked %s until %s\n", args[0], until.Format(time.RFC3339))
			return nil
		},
	}
	cmd.Flags().DurationVar(&d, "for", 0, "lockout duration (default: indefinitely)")
	return cmd
}

func newUserUnlockCommand(s *session) *cobra.Command {
	return &cobra.Command{
		Use:   "unlock <name>",
		Short: "Clear a user's lockout and failure count",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := s.app.Manager().Unlock(cmd.Context(), args[0]); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "unlocked %s\n", args[0])
			return nil
		},
	}
}

func newUserRevokeCommand(s *session) *cobra.Command {
	return &cobra.Command{
		Use:   "revoke <name>",
		Short: "Revoke a user's refresh token",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := s.app.Manager().Revoke(cmd.Context(), args[0]); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "revoked refresh token of %s\n", args[0])
			return nil
		},
	}
}

func newUserRoleCommand(s *session) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "role",
		Short: "Manage a user's roles",
	}
	cmd.AddCommand(
		&cobra.Command{
			Use:   "add <user> <role>",
			Short: "Add a user to a role",
			Args:  cobra.ExactArgs(2),
			RunE: func(cmd *cobra.Command, args []string) error {
				if err := s.app.Manager().AddToRole(cmd.Context(), args[0], args[1]); err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "added %s to %s\n", args[0], args[1])
				return nil
			},
		},
		&cobra.Command{
			Use:   "remove <user> <role>",
			Short: "Remove a user from a role",
			Args:  cobra.ExactArgs(2),
			RunE: func(cmd *cobra.Command, args []string) error {
				if err := s.app.Manager().RemoveFromRole(cmd.Context(), args[0], args[1]); err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "removed %s from %s\n", args[0], args[1])
				return nil
			},
		},
	)
	return cmd
}

func newUserClaimCommand(s *session) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "claim",
		Short: "Manage a user's claims",
	}
	cmd.AddCommand(
		&cobra.Command{
			Use:   "add <user> <type> <value>",
			Short: "Add a claim to a user",
			Args:  cobra.ExactArgs(3),
			RunE: func(cmd *cobra.Command, args []string) error {
				return s.app.Manager().AddClaim(cmd.Context(), args[0], models.NewClaim(args[1], args[2]))
			},
		},
		&cobra.Command{
			Use:   "remove <user> <type> <value>",
			Short: "Remove a claim from a user",
			Args:  cobra.ExactArgs(3),
			RunE: func(cmd *cobra.Command, args []string) error {
				return s.app.Manager().RemoveClaim(cmd.Context(), args[0], models.NewClaim(args[1], args[2]))
			},
		},
	)
	return cmd
}
