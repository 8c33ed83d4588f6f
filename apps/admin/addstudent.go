package main

import (
	"context"

	"github.com/pkg/errors"

	"github.com/trezcool/studytrack/core"
	"github.com/trezcool/studytrack/core/student"
)

// addStudent registers a student, or resets the password of the one holding email.
func (cli *commandLine) addStudent(name, email, pwd string) error {
	ctx := context.Background()
	email = core.CleanString(email, true /* lower */)

	if _, err := cli.students.GetByEmail(ctx, email); err == nil {
		return cli.resetPassword(email, pwd)
	} else if errors.Cause(err) != student.ErrNotFound {
		return err
	}

	_, err := cli.students.Register(ctx, student.NewStudent{
		Name:            core.CleanString(name),
		Email:           email,
		Password:        pwd,
		PasswordConfirm: pwd,
	})
	return err
}
