package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/dmitrijs2005/identitystore/internal/app"
	"github.com/dmitrijs2005/identitystore/internal/common"
	"github.com/dmitrijs2005/identitystore/internal/filex"
)

func newExportCommand(s *session) *cobra.Command {
	var (
		output  string
		encrypt bool
	)
	cmd := &cobra.Command{
		Use:   "export",
		Short: "Write users and roles to a snapshot file",
		Long: `Write users and roles to a JSON snapshot. With --encrypt the snapshot
is sealed with AES-256-GCM under a key derived from a passphrase read from
stdin.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			var passphrase []byte
			if encrypt {
				var err error
				if passphrase, err = s.input.newSecret("Passphrase"); err != nil {
					return err
				}
				defer common.WipeByteArray(passphrase)
				if len(passphrase) == 0 {
					return fmt.Errorf("%w: passphrase is required", common.ErrorValidation)
				}
			}

			snap, err := s.app.Export(cmd.Context())
			if err != nil {
				return err
			}
			data, err := app.EncodeSnapshot(snap, passphrase)
			if err != nil {
				return err
			}

			if output == "" || output == "-" {
				_, err = fmt.Fprintln(cmd.OutOrStdout(), string(data))
				return err
			}
			if err := filex.WriteFileAtomic(output, append(data, '\n'), 0o600); err != nil {
				return err
			}
			fmt.Fprintf(cmd.ErrOrStderr(), "exported %d users and %d roles to %s\n", len(snap.Users), len(snap.Roles), output)
			return nil
		},
	}
	cmd.Flags().StringVarP(&output, "output", "o", "", "snapshot file (default: stdout)")
	cmd.Flags().BoolVar(&encrypt, "encrypt", false, "seal the snapshot with a passphrase")
	return cmd
}

func newImportCommand(s *session) *cobra.Command {
	return &cobra.Command{
		Use:   "import <file>",
		Short: "Replace users and roles with a snapshot",
		Long: `Replace users and roles with the contents of a snapshot written by
export. Encrypted snapshots are detected and the passphrase is read from
stdin.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			data, err := os.ReadFile(args[0])
			if err != nil {
				return fmt.Errorf("read snapshot: %w", err)
			}

			var passphrase []byte
			if app.Sealed(data) {
				if passphrase, err = s.input.secret("Passphrase"); err != nil {
					return err
				}
				defer common.WipeByteArray(passphrase)
			}

			snap, err := app.DecodeSnapshot(data, passphrase)
			if err != nil {
				return err
			}
			if err := s.app.Import(cmd.Context(), snap); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "imported %d users and %d roles\n", len(snap.Users), len(snap.Roles))
			return nil
		},
	}
}
