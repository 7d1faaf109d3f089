package main

import (
	"context"
	"time"

	"github.com/pkg/errors"

	"github.com/boardwave/academy/core"
	"github.com/boardwave/academy/core/user"
)

// createAdmin creates an admin account, or promotes and reactivates an
// existing user matching the username.
func (cli *commandLine) createAdmin(uname, email, pwd string) error {
	ctx := context.Background()
	uname = core.CleanString(uname, true /* lower */)
	email = core.CleanString(email, true /* lower */)

	usr, err := cli.usrRepo.GetUser(ctx, user.GetFilter{Username: uname})
	if err != nil {
		if errors.Cause(err) != user.ErrNotFound {
			return err
		}
		usr = user.User{
			Username:  uname,
			Email:     email,
			CreatedAt: time.Now().UTC(),
		}
	}

	active := true
	usr.Role = user.RoleAdmin
	usr.IsActive = &active
	if err := usr.SetPassword(pwd); err != nil {
		return err
	}

	if usr.ID == 0 {
		_, err = cli.usrRepo.CreateUser(ctx, usr)
	} else {
		_, err = cli.usrRepo.UpdateUser(ctx, usr)
	}
	return err
}
