package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"syscall"

	"golang.org/x/term"

	"github.com/trezcool/entregas/core"
	"github.com/trezcool/entregas/core/delivery"
	"github.com/trezcool/entregas/core/user"
)

var (
	readPasswordFunc = term.ReadPassword // mockable

	errHelp         = errors.New("help provided")
	errNoMigrations = errors.New("migrations are only supported by the postgres engine")
)

type commandLine struct {
	conf    *core.Config
	usrSvc  user.Service
	dlvSvc  delivery.Service
	migrate func(ctx context.Context, command string, args ...string) error
	out     io.Writer
}

func (cli *commandLine) printUsage() {
	_, _ = fmt.Fprintln(cli.out, "Usage:")
	_, _ = fmt.Fprintln(cli.out, "  createadmin -identifier IDENTIFIER - create an admin (the password is prompted next)")
	_, _ = fmt.Fprintln(cli.out, "  createadmin -default               - create the configured default admin")
	_, _ = fmt.Fprintln(cli.out, "  seed                               - replace all deliveries with sample ones")
	_, _ = fmt.Fprintln(cli.out, "  migrate COMMAND [ARGS...]          - run goose migrations (postgres only)")
}

func (cli *commandLine) run(ctx context.Context, args []string) error {
	if len(args) < 2 {
		cli.printUsage()
		return errHelp
	}

	createAdminCmd := flag.NewFlagSet("createadmin", flag.ContinueOnError)
	createAdminCmd.SetOutput(cli.out)
	createAdminID := createAdminCmd.String("identifier", "", "The admin's identifier. The password will be prompted next.")
	createAdminDefault := createAdminCmd.Bool("default", false, "Use the configured admin identifier & password.")

	switch args[1] {
	case "createadmin":
		if err := createAdminCmd.Parse(args[2:]); err != nil {
			return errHelp
		}
		if *createAdminDefault {
			return cli.createAdmin(ctx, cli.conf.Admin.Identifier, cli.conf.Admin.Password)
		}
		if *createAdminID == "" {
			createAdminCmd.Usage()
			return errHelp
		}
		_, _ = fmt.Fprint(cli.out, "Enter password:")
		pwd, err := readPasswordFunc(int(syscall.Stdin))
		_, _ = fmt.Fprintln(cli.out)
		if err != nil {
			return err
		}
		if len(pwd) == 0 {
			createAdminCmd.Usage()
			return errHelp
		}
		return cli.createAdmin(ctx, *createAdminID, string(pwd))

	case "seed":
		return cli.seed(ctx)

	case "migrate":
		if len(args) < 3 {
			cli.printUsage()
			return errHelp
		}
		if cli.migrate == nil {
			return errNoMigrations
		}
		return cli.migrate(ctx, args[2], args[3:]...)

	default:
		cli.printUsage()
		return errHelp
	}
}

func (cli *commandLine) createAdmin(ctx context.Context, identifier, pwd string) error {
	usr, created, err := cli.usrSvc.BootstrapAdmin(ctx, identifier, pwd)
	if err != nil {
		return err
	}
	if created {
		_, _ = fmt.Fprintf(cli.out, "admin %q created\n", usr.Identifier)
	} else {
		_, _ = fmt.Fprintf(cli.out, "user %q already exists, nothing to do\n", usr.Identifier)
	}
	return nil
}
