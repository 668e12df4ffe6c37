package cli

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/dmitrijs2005/identitystore/internal/identity/manager"
)

func printTokens(cmd *cobra.Command, userID string, pair *manager.TokenPair) {
	w := cmd.OutOrStdout()
	fmt.Fprintf(w, "user_id: %s\n", userID)
	fmt.Fprintf(w, "access_token: %s\n", pair.AccessToken)
	fmt.Fprintf(w, "refresh_token: %s\n", pair.RefreshToken)
	fmt.Fprintf(w, "refresh_expires_at: %s\n", pair.RefreshExpiresAt.Format(time.RFC3339))
}

func newTokenCommand(s *session) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "token",
		Short: "Refresh and verify tokens",
	}
	cmd.AddCommand(
		&cobra.Command{
			Use:   "refresh <user-id> <refresh-token>",
			Short: "Exchange a refresh token for a new token pair",
			Args:  cobra.ExactArgs(2),
			RunE: func(cmd *cobra.Command, args []string) error {
				pair, err := s.app.Manager().Refresh(cmd.Context(), args[0], args[1])
				if err != nil {
					return err
				}
				printTokens(cmd, args[0], pair)
				return nil
			},
		},
		&cobra.Command{
			Use:   "verify <access-token>",
			Short: "Check an access token and print its user",
			Args:  cobra.ExactArgs(1),
			RunE: func(cmd *cobra.Command, args []string) error {
				u, err := s.app.Manager().Authenticate(cmd.Context(), args[0])
				if err != nil {
					return err
				}
				w := cmd.OutOrStdout()
				fmt.Fprintf(w, "user_id: %s\n", u.ID)
				fmt.Fprintf(w, "user_name: %s\n", u.UserName)
				fmt.Fprintf(w, "roles: %s\n", strings.Join(u.Roles, ","))
				return nil
			},
		},
	)
	return cmd
}
