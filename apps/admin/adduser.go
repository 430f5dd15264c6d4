package main

import (
	"context"

	"github.com/pkg/errors"

	"github.com/trezcool/dashboard/core"
	"github.com/trezcool/dashboard/core/user"
)

// addUser updates or creates a user.User; the account is (re)activated.
func (cli *commandLine) addUser(ctx context.Context, name, uname, email, pwd string, roles []string) (user.User, error) {
	uname = core.CleanString(uname, true /* lower */)
	email = core.CleanString(email, true /* lower */)
	name = core.CleanString(name)
	if name == "" {
		name = uname
	}

	if !user.ValidRoles(roles) {
		return user.User{}, core.NewValidationError(nil, core.FieldError{Field: "roles", Error: "invalid roles"})
	}

	usr, err := cli.findUser(ctx, uname, email)
	if err != nil {
		if errors.Cause(err) != user.ErrNotFound {
			return user.User{}, err
		}
		usr = user.User{Name: name, Username: uname, Email: email}
		if msg := user.ValidatePassword(pwd, usr); msg != "" {
			return user.User{}, core.NewValidationError(nil, core.FieldError{Field: "password", Error: msg})
		}
		if err = cli.usrSvc.CheckUniqueness(ctx, uname, email); err != nil {
			return user.User{}, err
		}
		return cli.usrSvc.Create(ctx, user.NewUser{
			Name:     name,
			Username: uname,
			Email:    email,
			Password: pwd,
			Roles:    roles,
		})
	}

	if msg := user.ValidatePassword(pwd, usr); msg != "" {
		return user.User{}, core.NewValidationError(nil, core.FieldError{Field: "password", Error: msg})
	}
	isActive := true
	uu := user.UpdateUser{
		Name:     usr.Name,
		Username: usr.Username,
		Email:    usr.Email,
		IsActive: &isActive,
		Password: pwd,
	}
	if roles != nil {
		uu.Roles = roles
	}
	return cli.usrSvc.Update(ctx, usr, uu)
}

func (cli *commandLine) findUser(ctx context.Context, uname, email string) (user.User, error) {
	for _, id := range []string{uname, email} {
		if id == "" {
			continue
		}
		usr, err := cli.usrSvc.GetByUsernameOrEmail(ctx, id)
		if err == nil || errors.Cause(err) != user.ErrNotFound {
			return usr, err
		}
	}
	return user.User{}, user.ErrNotFound
}
