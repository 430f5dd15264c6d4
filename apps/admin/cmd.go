package main

import (
	"database/sql"
	"os"

	"github.com/pkg/errors"
	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/trezcool/dashboard/core/user"
	"github.com/trezcool/dashboard/storage/database"
)

var (
	readPasswordFunc  = term.ReadPassword      // mockable
	runMigrationsFunc = database.RunMigrations // mockable

	errEmptyPassword = errors.New("password cannot be empty")
)

type commandLine struct {
	db     *sql.DB
	usrSvc user.ServiceInterface
}

func newRootCmd(cli *commandLine) *cobra.Command {
	root := &cobra.Command{
		Use:           "admin",
		Short:         "Dashboard administration commands",
		SilenceUsage: true,
	}
	root.AddCommand(
		newMigrateCmd(cli),
		newAddUserCmd(cli),
		newResetPasswordCmd(cli),
	)
	return root
}

func newMigrateCmd(cli *commandLine) *cobra.Command {
	return &cobra.Command{
		Use:   "migrate COMMAND [ARGS...]",
		Short: "Run a goose migration command: up, up-by-one, up-to, down, down-to, redo, reset, status, version",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return cli.migrate(args[0], args[1:]...)
		},
	}
}

func newAddUserCmd(cli *commandLine) *cobra.Command {
	var (
		name, uname, email string
		roles              []string
		isAdmin            bool
	)
	cmd := &cobra.Command{
		Use:   "adduser",
		Short: "Create a user, or update the user holding this username or email; the password is prompted",
		RunE: func(cmd *cobra.Command, args []string) error {
			if uname == "" && email == "" {
				return errors.New(`one of "username" or "email" is required`)
			}
			pwd, err := promptPassword(cmd)
			if err != nil {
				return err
			}
			if isAdmin {
				roles = append(roles, user.RoleAdmin)
			}
			usr, err := cli.addUser(cmd.Context(), name, uname, email, pwd, roles)
			if err != nil {
				return err
			}
			cmd.Printf("user %q saved\n", usr.Username)
			return nil
		},
	}
	cmd.Flags().StringVar(&name, "name", "", "the user's full name")
	cmd.Flags().StringVar(&uname, "username", "", "the user's username")
	cmd.Flags().StringVar(&email, "email", "", "the user's email")
	cmd.Flags().StringSliceVar(&roles, "role", nil, "a role to grant, e.g. staff: (repeatable)")
	cmd.Flags().BoolVar(&isAdmin, "admin", false, "grant the admin role")
	return cmd
}

func newResetPasswordCmd(cli *commandLine) *cobra.Command {
	var uname string
	cmd := &cobra.Command{
		Use:   "resetpassword",
		Short: "Reset a user's password; the password is prompted",
		RunE: func(cmd *cobra.Command, args []string) error {
			pwd, err := promptPassword(cmd)
			if err != nil {
				return err
			}
			return cli.resetPassword(cmd.Context(), uname, pwd)
		},
	}
	cmd.Flags().StringVar(&uname, "username", "", "the user's username or email")
	_ = cmd.MarkFlagRequired("username")
	return cmd
}

func promptPassword(cmd *cobra.Command) (string, error) {
	cmd.Print("Enter password:")
	pwd, err := readPasswordFunc(int(os.Stdin.Fd()))
	cmd.Println()
	if err != nil {
		return "", errors.Wrap(err, "reading password")
	}
	if len(pwd) == 0 {
		return "", errEmptyPassword
	}
	return string(pwd), nil
}

func (cli *commandLine) migrate(command string, args ...string) error {
	if err := runMigrationsFunc(cli.db, command, args...); err != nil {
		return errors.Wrapf(err, "migrate %s", command)
	}
	return nil
}
