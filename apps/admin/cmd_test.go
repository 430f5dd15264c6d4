package main

import (
	"bytes"
	"context"
	"database/sql"
	"fmt"
	"strconv"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/trezcool/dashboard/core"
	"github.com/trezcool/dashboard/core/user"
	inmemdb "github.com/trezcool/dashboard/storage/database/inmem"
	"github.com/trezcool/dashboard/testutil"
)

var usrRepo user.Repository

func setup(t *testing.T) *commandLine {
	usrRepo = inmemdb.NewUserRepository(inmemdb.Open())
	user.LoadCommonPasswords(nil)

	readPassword, runMigrations := readPasswordFunc, runMigrationsFunc
	t.Cleanup(func() {
		readPasswordFunc, runMigrationsFunc = readPassword, runMigrations
	})
	return &commandLine{usrSvc: user.NewService(usrRepo)}
}

type cliTest struct {
	name       string
	args       []string // without program name
	pwd        string
	wantErr    error
	wantErrStr string
}

func (tt cliTest) run(t *testing.T, cli *commandLine) (string, error) {
	readPasswordFunc = func(fd int) ([]byte, error) { return []byte(tt.pwd), nil }

	var out bytes.Buffer
	cmd := newRootCmd(cli)
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs(tt.args)
	err := cmd.Execute()
	return out.String(), err
}

func (tt cliTest) check(t *testing.T, err error) bool {
	t.Helper()
	switch {
	case tt.wantErr != nil:
		return assert.ErrorIs(t, err, tt.wantErr)
	case tt.wantErrStr != "":
		return assert.EqualError(t, err, tt.wantErrStr)
	default:
		return assert.NoError(t, err)
	}
}

func Test_commandLine_migrate(t *testing.T) {
	cli := setup(t)

	var ran []string
	runMigrationsFunc = func(db *sql.DB, command string, args ...string) error {
		switch command {
		case "up", "up-by-one", "down", "redo", "reset", "status", "version": // pass
		case "up-to", "down-to":
			if len(args) == 0 {
				return fmt.Errorf("%s must be of form: goose [OPTIONS] DRIVER DBSTRING %s VERSION", command, command)
			}
			if _, err := strconv.ParseInt(args[0], 10, 64); err != nil {
				return fmt.Errorf("version must be a number (got '%s')", args[0])
			}
		default:
			return fmt.Errorf("%q: no such command", command)
		}
		ran = append(ran, command)
		return nil
	}

	tests := []cliTest{
		{name: "no subcommand", args: []string{"migrate"}, wantErrStr: "requires at least 1 arg(s), only received 0"},
		{name: "unknown subcommand", args: []string{"migrate", "lol"}, wantErrStr: "migrate lol: \"lol\": no such command"},
		{
			name:       "up-to: no args",
			args:       []string{"migrate", "up-to"},
			wantErrStr: "migrate up-to: up-to must be of form: goose [OPTIONS] DRIVER DBSTRING up-to VERSION",
		},
		{
			name:       "up-to: non-int arg",
			args:       []string{"migrate", "up-to", "lol"},
			wantErrStr: "migrate up-to: version must be a number (got 'lol')",
		},
		{name: "up", args: []string{"migrate", "up"}},
		{name: "up-to", args: []string{"migrate", "up-to", "2"}},
		{name: "down-to", args: []string{"migrate", "down-to", "1"}},
		{name: "status", args: []string{"migrate", "status"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := tt.run(t, cli)
			tt.check(t, err)
		})
	}
	assert.Equal(t, []string{"up", "up-to", "down-to", "status"}, ran)
}

func Test_commandLine_resetPassword(t *testing.T) {
	cli := setup(t)

	usr := testutil.CreateUser(t, usrRepo, "User", "awe", "awe@test.in", "Old$ecret1", nil, true)

	tests := []cliTest{
		{name: "no username", args: []string{"resetpassword"}, pwd: "N3w$ecret!", wantErrStr: `required flag(s) "username" not set`},
		{name: "no password", args: []string{"resetpassword", "--username", "awe"}, wantErr: errEmptyPassword},
		{name: "user not found", args: []string{"resetpassword", "--username", "lol"}, pwd: "N3w$ecret!", wantErr: user.ErrNotFound},
		{
			name:       "weak password",
			args:       []string{"resetpassword", "--username", "awe"},
			pwd:        "password",
			wantErrStr: "password: password must contain at least 1 uppercase character, 1 lowercase character, 1 digit and 1 special character",
		},
		{name: "reset with username", args: []string{"resetpassword", "--username", usr.Username}, pwd: "N3w$ecret!"},
		{name: "reset with email", args: []string{"resetpassword", "--username", "AWE@test.in"}, pwd: "An0ther$ecret"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := tt.run(t, cli)
			if !tt.check(t, err) || err != nil {
				return
			}

			refreshedUsr, err := usrRepo.GetUser(context.Background(), user.GetFilter{ID: usr.ID})
			require.NoError(t, err)
			assert.NoError(t, refreshedUsr.CheckPassword(tt.pwd))
		})
	}
}

func Test_commandLine_addUser(t *testing.T) {
	cli := setup(t)

	existing := testutil.CreateUser(t, usrRepo, "Old Timer", "oldtimer", "old@test.in", "Old$ecret1", []string{user.RoleStaff}, false)

	tests := []cliTest{
		{name: "no username nor email", args: []string{"adduser"}, pwd: "N3w$ecret!", wantErrStr: `one of "username" or "email" is required`},
		{name: "no password", args: []string{"adduser", "--username", "newbie"}, wantErr: errEmptyPassword},
		{
			name:       "invalid role",
			args:       []string{"adduser", "--username", "newbie", "--role", "king"},
			pwd:        "N3w$ecret!",
			wantErrStr: "roles: invalid roles",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := tt.run(t, cli)
			tt.check(t, err)
		})
	}

	t.Run("create admin", func(t *testing.T) {
		out, err := cliTest{
			args: []string{"adduser", "--username", "Boss", "--email", "boss@test.in", "--name", "The Boss", "--admin"},
			pwd:  "B0ss$ecret!",
		}.run(t, cli)
		require.NoError(t, err)
		assert.Contains(t, out, `user "boss" saved`)

		usr, err := usrRepo.GetUser(context.Background(), user.GetFilter{Username: "boss"})
		require.NoError(t, err)
		assert.Equal(t, "The Boss", usr.Name)
		assert.Equal(t, "boss@test.in", usr.Email)
		assert.True(t, usr.IsAdmin())
		assert.True(t, *usr.IsActive)
		assert.NoError(t, usr.CheckPassword("B0ss$ecret!"))
	})

	t.Run("update existing", func(t *testing.T) {
		_, err := cliTest{
			args: []string{"adduser", "--email", "old@test.in", "--role", user.RoleED},
			pwd:  "N3w$ecret!",
		}.run(t, cli)
		require.NoError(t, err)

		usr, err := usrRepo.GetUser(context.Background(), user.GetFilter{ID: existing.ID})
		require.NoError(t, err)
		assert.Equal(t, "oldtimer", usr.Username)
		assert.Equal(t, []string{user.RoleED}, usr.Roles)
		assert.True(t, *usr.IsActive)
		assert.NoError(t, usr.CheckPassword("N3w$ecret!"))
	})
}

func Test_commandLine_addUser_matchesEmail(t *testing.T) {
	cli := setup(t)
	taken := testutil.CreateUser(t, usrRepo, "Taken", "taken", "taken@test.in", "", nil, true)

	// no user is named "newbie": the user holding the email is updated instead of duplicated
	usr, err := cli.addUser(context.Background(), "", "newbie", "taken@test.in", "N3w$ecret!", nil)
	require.NoError(t, err)
	assert.Equal(t, taken.ID, usr.ID)
	assert.Equal(t, "taken", usr.Username)

	users, err := usrRepo.QueryUsers(context.Background(), nil, nil)
	require.NoError(t, err)
	assert.Len(t, users, 1)
}

func Test_commandLine_addUser_weakPassword(t *testing.T) {
	cli := setup(t)

	_, err := cli.addUser(context.Background(), "Jane Doe", "janedoe", "", "JaneDoe1!", nil)
	var vErr *core.ValidationError
	require.ErrorAs(t, err, &vErr)
	assert.Equal(t, []core.FieldError{{Field: "password", Error: "password cannot be similar to user attributes"}}, vErr.Fields)
}
