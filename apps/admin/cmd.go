package main

import (
	"context"
	"flag"
	"fmt"
	"syscall"

	"github.com/jmoiron/sqlx"
	"github.com/pkg/errors"
	"golang.org/x/term"

	"github.com/trezcool/studytrack/core"
	"github.com/trezcool/studytrack/core/progress"
	"github.com/trezcool/studytrack/core/student"
)

var (
	readPasswordFunc = term.ReadPassword // mockable

	errHelp = errors.New("help provided")
)

type (
	studentService interface {
		Register(ctx context.Context, ns student.NewStudent) (student.Student, error)
		GetByEmail(ctx context.Context, email string) (student.Student, error)
		SetPassword(ctx context.Context, email, pwd string) (student.Student, error)
	}

	progressSyncer interface {
		RecomputeStudent(ctx context.Context, studentID core.StudentID) ([]progress.Progress, error)
	}

	commandLine struct {
		db       *sqlx.DB
		students studentService
		progress progressSyncer
	}
)

func (cli *commandLine) printUsage() {
	fmt.Println("Usage:")
	fmt.Println("  migrate COMMAND [ARGS] - run a goose migration command (up, down, status, ...)")
	fmt.Println("  addstudent -name NAME -email EMAIL - create a student or reset their password")
	fmt.Println("  resetpassword -email EMAIL - reset a student's password")
	fmt.Println("  syncprogress -email EMAIL - recompute the progress of every goal of a student")
}

// readPassword prompts for a password; an empty one prints the usage of cmd.
func (cli *commandLine) readPassword(cmd *flag.FlagSet) (string, error) {
	fmt.Print("Enter password:")
	pwd, err := readPasswordFunc(int(syscall.Stdin))
	fmt.Println()
	if err != nil {
		return "", err
	}
	if len(pwd) == 0 {
		cmd.Usage()
		return "", errHelp
	}
	return string(pwd), nil
}

func (cli *commandLine) run(args []string) error {
	if len(args) < 2 {
		cli.printUsage()
		return errHelp
	}

	addStudentCmd := flag.NewFlagSet("addstudent", flag.ExitOnError)
	addStudentName := addStudentCmd.String("name", "", "The student's name.")
	addStudentEmail := addStudentCmd.String("email", "", "The student's email. The password will be prompted next.")

	resetPasswordCmd := flag.NewFlagSet("resetpassword", flag.ExitOnError)
	resetPasswordEmail := resetPasswordCmd.String("email", "", "The student's email. The password will be prompted next.")

	syncProgressCmd := flag.NewFlagSet("syncprogress", flag.ExitOnError)
	syncProgressEmail := syncProgressCmd.String("email", "", "The student's email.")

	switch args[1] {
	case "migrate":
		if len(args) < 3 {
			cli.printUsage()
			return errHelp
		}
		return cli.migrate(args[2:])
	case "addstudent":
		if err := addStudentCmd.Parse(args[2:]); err != nil {
			return err
		}
		if *addStudentName == "" || *addStudentEmail == "" {
			addStudentCmd.Usage()
			return errHelp
		}
		pwd, err := cli.readPassword(addStudentCmd)
		if err != nil {
			return err
		}
		return cli.addStudent(*addStudentName, *addStudentEmail, pwd)
	case "resetpassword":
		if err := resetPasswordCmd.Parse(args[2:]); err != nil {
			return err
		}
		if *resetPasswordEmail == "" {
			resetPasswordCmd.Usage()
			return errHelp
		}
		pwd, err := cli.readPassword(resetPasswordCmd)
		if err != nil {
			return err
		}
		return cli.resetPassword(*resetPasswordEmail, pwd)
	case "syncprogress":
		if err := syncProgressCmd.Parse(args[2:]); err != nil {
			return err
		}
		if *syncProgressEmail == "" {
			syncProgressCmd.Usage()
			return errHelp
		}
		return cli.syncProgress(*syncProgressEmail)
	default:
		cli.printUsage()
		return errHelp
	}
}
