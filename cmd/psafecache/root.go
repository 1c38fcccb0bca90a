package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"

	"github.com/MKhiriev/go-psafe-cache/internal/app"
	"github.com/MKhiriev/go-psafe-cache/internal/config"
	"github.com/MKhiriev/go-psafe-cache/internal/logger"
	"github.com/MKhiriev/go-psafe-cache/internal/service"
	"github.com/MKhiriev/go-psafe-cache/models"
	"github.com/spf13/cobra"
)

// skipApp marks commands that run without a store.
const skipApp = "skip-app"

// cli is the state shared by all commands of one invocation.
type cli struct {
	info  models.BuildInfo
	flags *config.Flags
	login string

	app      *app.App
	log      *logger.Logger
	prompter *app.Prompter
}

// execute runs one command line and releases the store afterwards, also when
// the command failed.
func execute(ctx context.Context, info models.BuildInfo, args []string, stdin io.Reader, stdout, stderr io.Writer) error {
	c := &cli{info: info}
	root := c.rootCmd()
	root.SetArgs(args)
	root.SetIn(stdin)
	root.SetOut(stdout)
	root.SetErr(stderr)

	err := root.ExecuteContext(ctx)
	return errors.Join(err, c.close())
}

func (c *cli) rootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:   "psafecache",
		Short: "Cache and edit shared password safes",
		Long: `psafecache mirrors encrypted password containers kept in shared
repositories into a database, answers searches from it and applies
batches of changes back to the container files.`,
		SilenceUsage:      true,
		SilenceErrors:     true,
		PersistentPreRunE: c.setup,
	}

	c.flags = config.RegisterFlags(root.PersistentFlags())
	root.PersistentFlags().StringVarP(&c.login, "login", "u", os.Getenv("PSAFECACHE_LOGIN"), "Login to act as")

	root.AddCommand(
		c.versionCmd(),
		c.migrateCmd(),
		c.userCmd(),
		c.repoCmd(),
		c.containerCmd(),
		c.discoverCmd(),
		c.refreshCmd(),
		c.applyCmd(),
		c.searchCmd(),
		c.vaultCmd(),
		c.serveCmd(),
	)
	return root
}

func (c *cli) setup(cmd *cobra.Command, _ []string) error {
	if cmd.Annotations[skipApp] != "" || cmd.Name() == "help" {
		return nil
	}

	cfg, err := config.GetStructuredConfig(c.flags)
	if err != nil {
		return fmt.Errorf("error getting configs: %w", err)
	}

	if cmd.Name() == "serve" {
		c.log = logger.NewLogger("psafecache-serve")
	} else {
		c.log = logger.NewConsoleLogger("psafecache")
	}
	if err = logger.SetLevel(cfg.App.LogLevel); err != nil {
		return err
	}
	c.log.Debug().Str("driver", cfg.Storage.DB.Driver).Int64("personal_repository_id", cfg.App.PersonalRepositoryID).
		Bool("backup", cfg.Backup.Endpoint != "").Msg("received configs")

	ctx := c.log.WithContext(cmd.Context())
	cmd.SetContext(ctx)

	if c.app, err = app.New(ctx, cfg, c.log); err != nil {
		return err
	}
	c.prompter = app.NewPrompter(cmd.InOrStdin(), cmd.ErrOrStderr())
	return nil
}

func (c *cli) close() error {
	if c.app == nil {
		return nil
	}
	err := c.app.Close()
	c.app = nil
	return err
}

// authenticate asks for the password of --login and checks it.
func (c *cli) authenticate(ctx context.Context) (models.User, string, error) {
	if c.login == "" {
		return models.User{}, "", fmt.Errorf("%w: --login is required", service.ErrInvalidDataProvided)
	}
	password, err := c.prompter.Password("Password for " + c.login)
	if err != nil {
		return models.User{}, "", err
	}
	user, err := c.app.Services.UserService.Authenticate(ctx, c.login, password)
	if err != nil {
		return models.User{}, "", err
	}
	return user, password, nil
}

func printJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func parseIDs(args []string) ([]int64, error) {
	ids := make([]int64, 0, len(args))
	for _, arg := range args {
		id, err := strconv.ParseInt(arg, 10, 64)
		if err != nil {
			return nil, fmt.Errorf("%w: %q is not a container id", service.ErrInvalidDataProvided, arg)
		}
		ids = append(ids, id)
	}
	return ids, nil
}

func parseID(arg string) (int64, error) {
	ids, err := parseIDs([]string{arg})
	if err != nil {
		return 0, err
	}
	return ids[0], nil
}
