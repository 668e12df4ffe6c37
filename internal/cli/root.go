// Package cli implements identityctl, a command-line front end for the
// identity stores: user and role administration, token issuance and
// snapshot export/import.
package cli

import (
	"context"
	"errors"
	"io"

	"github.com/spf13/cobra"

	"github.com/dmitrijs2005/identitystore/internal/app"
	"github.com/dmitrijs2005/identitystore/internal/config"
)

// session carries what every subcommand needs once the persistent flags
// have been parsed.
type session struct {
	app   *app.App
	input *input
}

func (s *session) close() error {
	if s.app == nil {
		return nil
	}
	err := s.app.Close()
	s.app = nil
	return err
}

func newRootCommand(s *session) *cobra.Command {
	root := &cobra.Command{
		Use:   "identityctl",
		Short: "Manage users and roles kept in JSON files or blob storage",
		Long: `identityctl administers user and role collections stored as JSON
documents, either as files in a data directory or as items of a blob storage
(memory, disk, S3, PostgreSQL, SQLite).

Settings come from defaults, then --config, then flags.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := config.Load(cmd.Flags())
			if err != nil {
				return err
			}
			s.app, err = app.New(cmd.Context(), cfg, cmd.ErrOrStderr())
			if err != nil {
				return err
			}
			s.input = newInput(cmd.InOrStdin(), cmd.ErrOrStderr())
			return nil
		},
	}
	root.CompletionOptions.DisableDefaultCmd = true

	config.RegisterFlags(root.PersistentFlags())

	root.AddCommand(
		newUserCommand(s),
		newRoleCommand(s),
		newTokenCommand(s),
		newExportCommand(s),
		newImportCommand(s),
	)
	return root
}

// Execute runs identityctl with args and releases the stores afterwards,
// whether or not the command failed.
func Execute(ctx context.Context, args []string, in io.Reader, out, errOut io.Writer) error {
	s := &session{}
	root := newRootCommand(s)
	root.SetArgs(args)
	root.SetIn(in)
	root.SetOut(out)
	root.SetErr(errOut)

	err := root.ExecuteContext(ctx)
	return errors.Join(err, s.close())
}
