package main

import (
	"errors"
	"fmt"
	"io"
	"log"
	"os"
	"strings"
	"text/tabwriter"

	"github.com/joho/godotenv"
	"github.com/urfave/cli/v2"

	"github.com/noah-isme/gema-review-api/internal/models"
	"github.com/noah-isme/gema-review-api/internal/repository"
	"github.com/noah-isme/gema-review-api/internal/service"
)

func main() {
	_ = godotenv.Load()

	if err := newApp(os.Stdout).Run(os.Args); err != nil {
		log.Fatal(err)
	}
}

func newApp(out io.Writer) *cli.App {
	return &cli.App{
		Name:      "provision",
		Usage:     "manage the accounts allowed to use the review service",
		Writer:    out,
		ErrWriter: out,
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "storage",
				Value:   repository.DriverCSV,
				Usage:   "storage driver: csv, sqlite or postgres",
				EnvVars: []string{"REVIEW_STORAGE_DRIVER"},
			},
			&cli.StringFlag{
				Name:    "data-dir",
				Value:   "data",
				Usage:   "directory holding the csv tables or the sqlite database",
				EnvVars: []string{"REVIEW_STORAGE_DATA_DIR"},
			},
			&cli.StringFlag{
				Name:    "database-url",
				Usage:   "postgres dsn",
				EnvVars: []string{"REVIEW_DATABASE_URL"},
			},
		},
		Commands: []*cli.Command{
			{
				Name:  "init",
				Usage: "create empty tables",
				Action: func(c *cli.Context) error {
					return withRepositories(c, func(repository.Repositories) error {
						fmt.Fprintf(c.App.Writer, "tables ready (%s)\n", c.String("storage"))
						return nil
					})
				},
			},
			{
				Name:  "add-user",
				Usage: "add a student or teacher account",
				Flags: []cli.Flag{
					&cli.StringFlag{Name: "username", Aliases: []string{"u"}, Required: true},
					&cli.StringFlag{Name: "password", Aliases: []string{"p"}, Required: true},
					&cli.StringFlag{Name: "role", Aliases: []string{"r"}, Value: models.RoleStudent},
				},
				Action: addUser,
			},
			{
				Name:  "list-users",
				Usage: "print provisioned accounts",
				Action: func(c *cli.Context) error {
					return withRepositories(c, func(repos repository.Repositories) error {
						users, err := repos.Users.List(c.Context)
						if err != nil {
							return err
						}
						w := tabwriter.NewWriter(c.App.Writer, 0, 4, 2, ' ', 0)
						fmt.Fprintln(w, "USERNAME\tROLE")
						for _, user := range users {
							fmt.Fprintf(w, "%s\t%s\n", user.Username, user.Role)
						}
						return w.Flush()
					})
				},
			},
		},
	}
}

func addUser(c *cli.Context) error {
	username := strings.TrimSpace(c.String("username"))
	password := c.String("password")
	role := models.NormalizeRole(c.String("role"))

	if username == "" || password == "" {
		return errors.New("username and password must not be empty")
	}
	if !models.ValidRole(role) {
		return fmt.Errorf("unknown role %q, expected %s or %s", role, models.RoleStudent, models.RoleTeacher)
	}

	return withRepositories(c, func(repos repository.Repositories) error {
		user := &models.User{Username: username, PasswordHash: service.HashPassword(password), Role: role}
		if err := repos.Users.Append(c.Context, user); err != nil {
			if errors.Is(err, repository.ErrUserExists) {
				return fmt.Errorf("user %q already exists", username)
			}
			return err
		}
		fmt.Fprintf(c.App.Writer, "added %s (%s)\n", username, role)
		return nil
	})
}

func withRepositories(c *cli.Context, fn func(repository.Repositories) error) error {
	repos, closeStore, err := repository.Open(repository.StorageConfig{
		Driver:      strings.ToLower(c.String("storage")),
		DataDir:     c.String("data-dir"),
		DatabaseURL: c.String("database-url"),
	})
	if err != nil {
		return err
	}
	defer closeStore()

	return fn(repos)
}
