package main

import (
	"context"

	"github.com/trezcool/dashboard/core"
	"github.com/trezcool/dashboard/core/user"
)

func (cli *commandLine) resetPassword(ctx context.Context, uname, pwd string) error {
	usr, err := cli.usrSvc.GetByUsernameOrEmail(ctx, uname)
	if err != nil {
		return err
	}
	if msg := user.ValidatePassword(pwd, usr); msg != "" {
		return core.NewValidationError(nil, core.FieldError{Field: "password", Error: msg})
	}
	_, err = cli.usrSvc.SetPassword(ctx, usr, pwd)
	return err
}
