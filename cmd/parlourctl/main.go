package main

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"unicode/utf8"

	"github.com/joy095/parlour/config"
	"github.com/joy095/parlour/logger"
	"github.com/joy095/parlour/services/auth_service"
	"github.com/joy095/parlour/store"
	"github.com/urfave/cli/v2"
	"golang.org/x/term"
)

func main() {
	config.LoadEnv()

	if err := newApp(os.Stdin, os.Stdout).Run(os.Args); err != nil {
		logger.ErrorLogger.Error(err)
		os.Exit(1)
	}
}

var databaseURLFlag = &cli.StringFlag{
	Name:     "database-url",
	Usage:    "PostgreSQL connection string",
	EnvVars:  []string{"DATABASE_URL"},
	Required: true,
}

func newApp(in io.Reader, out io.Writer) *cli.App {
	return &cli.App{
		Name:      "parlourctl",
		Usage:     "administer the parlour booking database",
		Writer:    out,
		ErrWriter: out,
		Commands: []*cli.Command{
			{
				Name:  "migrate",
				Usage: "create the bookings and admin_users tables and indexes",
				Flags: []cli.Flag{databaseURLFlag},
				Action: func(c *cli.Context) error {
					st, err := store.Open(c.Context, config.DriverPostgres, c.String("database-url"), true)
					if err != nil {
						return err
					}
					defer st.Close()

					fmt.Fprintln(out, "Database schema is up to date.")
					return nil
				},
			},
			{
				Name:  "init-admin",
				Usage: "create the admin user or reset its password",
				Flags: []cli.Flag{
					databaseURLFlag,
					&cli.StringFlag{Name: "username", Value: "admin", Usage: "admin username"},
					&cli.StringFlag{Name: "password", Usage: "admin password (prompted when omitted)", EnvVars: []string{"ADMIN_PASSWORD"}},
				},
				Action: func(c *cli.Context) error {
					password := c.String("password")
					if password == "" {
						var err error
						if password, err = promptPassword(in, out); err != nil {
							return err
						}
					}

					st, err := store.Open(c.Context, config.DriverPostgres, c.String("database-url"), true)
					if err != nil {
						return err
					}
					defer st.Close()

					username := c.String("username")
					created, err := auth_service.ProvisionAdmin(c.Context, st, username, password)
					if err != nil {
						return err
					}

					if created {
						fmt.Fprintf(out, "Admin user %q created.\n", username)
					} else {
						fmt.Fprintf(out, "Password for admin user %q updated.\n", username)
					}
					return nil
				},
			},
		},
	}
}

// promptPassword reads the password twice. Terminal input is not echoed.
func promptPassword(in io.Reader, out io.Writer) (string, error) {
	read := lineReader(in)

	fmt.Fprint(out, "New admin password: ")
	first, err := read()
	if err != nil {
		return "", err
	}
	fmt.Fprint(out, "\nConfirm password: ")
	second, err := read()
	if err != nil {
		return "", err
	}
	fmt.Fprintln(out)

	if first != second {
		return "", errors.New("passwords do not match")
	}
	if utf8.RuneCountInString(first) < auth_service.MinPasswordLength {
		return "", fmt.Errorf("password must be at least %d characters", auth_service.MinPasswordLength)
	}
	return first, nil
}

func lineReader(in io.Reader) func() (string, error) {
	if f, ok := in.(*os.File); ok && term.IsTerminal(int(f.Fd())) {
		return func() (string, error) {
			b, err := term.ReadPassword(int(f.Fd()))
			return string(b), err
		}
	}

	r := bufio.NewReader(in)
	return func() (string, error) {
		line, err := r.ReadString('\n')
		if err != nil && !(errors.Is(err, io.EOF) && line != "") {
			return "", fmt.Errorf("read password: %w", err)
		}
		return strings.TrimRight(line, "\r\n"), nil
	}
}
