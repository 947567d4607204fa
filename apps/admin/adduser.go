package main

import (
	"context"
	"time"

	"github.com/trezcool/madrasa/core"
	"github.com/trezcool/madrasa/core/user"
)

// addUser updates or creates a user.User. A -teacher user is created active,
// bypassing the approval flow.
func (cli *commandLine) addUser(email, first, last, pwd string, teacher bool) error {
	var usr user.User
	var err error
	ctx := context.Background()
	email = core.CleanString(email, true /* lower */)

	now := time.Now().UTC()
	if usr, err = cli.usrRepo.GetUser(ctx, user.GetFilter{Email: email}); err != nil {
		if err != user.ErrNotFound {
			return err
		}
		usr = user.User{
			Email:     email,
			Role:      user.RoleStudent,
			Status:    user.StatusActive,
			CreatedAt: now,
		}
	}
	if first != "" {
		usr.FirstName = core.CleanString(first)
	}
	if last != "" {
		usr.LastName = core.CleanString(last)
	}
	if teacher {
		usr.Role = user.RoleTeacher
		usr.Status = user.StatusActive
	}
	usr.SetActive(true)
	usr.UpdatedAt = now
	if err := usr.SetPassword(pwd); err != nil {
		return err
	}
	if _, err := cli.usrRepo.UpdateOrCreateUser(ctx, usr); err != nil {
		return err
	}
	return nil
}
