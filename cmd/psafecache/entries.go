package main

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"os"

	"github.com/MKhiriev/go-psafe-cache/internal/service"
	"github.com/MKhiriev/go-psafe-cache/models"
	"github.com/spf13/cobra"
)

func (c *cli) applyCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "apply <container-id> <batch.json>",
		Short: "Apply a batch of changes to a container",
		Long: `Apply a batch of actions to a container file under its lock, then
refresh the cache. The container password is taken from your personal
container.

Batch format:
  {
    "onError": "fail",
    "updateCache": true,
    "actions": [
      {"action": "update", "vfilters": {"Username": "root"}, "changes": {"Password": "s3cret"}},
      {"action": "delete", "refilters": {"Title": "^tmp-"}}
    ]
  }`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			containerID, err := parseID(args[0])
			if err != nil {
				return err
			}
			batch, err := readBatch(args[1])
			if err != nil {
				return err
			}

			user, userPassword, err := c.authenticate(ctx)
			if err != nil {
				return err
			}
			container, err := c.app.Services.ReadService.RequireContainer(ctx, user, containerID, models.ModeReadWrite)
			if err != nil {
				return err
			}
			password, err := c.app.Services.VaultService.GetStoredPassword(ctx, user, userPassword, container)
			if err != nil {
				return err
			}

			result, err := c.app.Services.MutationEngine.Apply(ctx, container.ID, password, batch)
			if err != nil && !errors.Is(err, service.ErrCacheStale) {
				return err
			}
			if printErr := printJSON(cmd.OutOrStdout(), result); printErr != nil {
				return printErr
			}
			return err
		},
	}
}

func readBatch(name string) (models.Batch, error) {
	data, err := os.ReadFile(name)
	if err != nil {
		return models.Batch{}, fmt.Errorf("error reading batch: %w", err)
	}

	var raw models.RawBatch
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()
	if err = dec.Decode(&raw); err != nil {
		return models.Batch{}, fmt.Errorf("%w: %w", service.ErrInvalidDataProvided, err)
	}
	return models.ParseBatch(raw)
}

// rawQuery is the JSON form of --query.
type rawQuery struct {
	Include map[string][]any `json:"include"`
	Exclude map[string][]any `json:"exclude"`
}

func (c *cli) searchCmd() *cobra.Command {
	var query, group string
	cmd := &cobra.Command{
		Use:   "search <container-id>",
		Short: "Search the cached entries of a container",
		Long: `Search the cached entries of a container. An entry matches when every
include field holds one of the listed values and no exclude field does.

Examples:
  psafecache -u alice search 3 --query '{"include":{"Username":["root"]},"exclude":{"Group":["Retired"]}}'
  psafecache -u alice search 3 --group Logins`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			containerID, err := parseID(args[0])
			if err != nil {
				return err
			}
			if (query == "") == (group == "") {
				return fmt.Errorf("%w: exactly one of --query and --group is required", service.ErrInvalidDataProvided)
			}

			var q models.SearchQuery
			if query != "" {
				if q, err = parseQuery(query); err != nil {
					return err
				}
			}

			user, userPassword, err := c.authenticate(ctx)
			if err != nil {
				return err
			}
			var entries []models.Entry
			if group != "" {
				entries, err = c.app.Services.ReadService.GetEntriesByGroup(ctx, user, userPassword, containerID, group)
			} else {
				entries, err = c.app.Services.ReadService.Search(ctx, user, userPassword, containerID, q)
			}
			if err != nil {
				return err
			}
			return printJSON(cmd.OutOrStdout(), entries)
		},
	}
	cmd.Flags().StringVarP(&query, "query", "q", "", "Search query as JSON")
	cmd.Flags().StringVar(&group, "group", "", "List the entries of one group")
	return cmd
}

func parseQuery(s string) (models.SearchQuery, error) {
	var raw rawQuery
	dec := json.NewDecoder(bytes.NewReader([]byte(s)))
	dec.UseNumber()
	if err := dec.Decode(&raw); err != nil {
		return models.SearchQuery{}, fmt.Errorf("%w: %w", service.ErrInvalidDataProvided, err)
	}
	return models.ParseSearchQuery(raw.Include, raw.Exclude)
}

func (c *cli) vaultCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "vault",
		Short: "Manage container passwords kept in your personal container",
	}

	get := &cobra.Command{
		Use:   "get <container-id>",
		Short: "Print the stored password of a container",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			user, userPassword, container, err := c.vaultTarget(cmd, args[0])
			if err != nil {
				return err
			}
			password, err := c.app.Services.VaultService.GetStoredPassword(ctx, user, userPassword, container)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), password)
			return nil
		},
	}

	set := &cobra.Command{
		Use:   "set <container-id>",
		Short: "Store the password of a container",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			user, userPassword, container, err := c.vaultTarget(cmd, args[0])
			if err != nil {
				return err
			}
			password, err := c.prompter.Password(fmt.Sprintf("Password of container %d", container.ID))
			if err != nil {
				return err
			}
			if err = c.app.Services.VaultService.SetStoredPassword(ctx, user, userPassword, container, password); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "password of container %d stored\n", container.ID)
			return nil
		},
	}

	reprovision := &cobra.Command{
		Use:   "reprovision",
		Short: "Replace a personal container whose file was lost",
		Long: "Writes a new, empty personal container under the existing record when its file\n" +
			"is missing. Stored passwords kept in the lost file have to be set again.",
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()
			user, userPassword, err := c.authenticate(ctx)
			if err != nil {
				return err
			}
			personal, err := c.app.Services.VaultService.ReprovisionPersonalContainer(ctx, user, userPassword)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "personal container %d is ready at %s\n", personal.ID, personal.Filename)
			return nil
		},
	}

	cmd.AddCommand(get, set, reprovision)
	return cmd
}

func (c *cli) vaultTarget(cmd *cobra.Command, arg string) (models.User, string, models.Container, error) {
	containerID, err := parseID(arg)
	if err != nil {
		return models.User{}, "", models.Container{}, err
	}
	user, userPassword, err := c.authenticate(cmd.Context())
	if err != nil {
		return models.User{}, "", models.Container{}, err
	}
	container, err := c.app.Services.ReadService.GetContainer(cmd.Context(), user, containerID)
	if err != nil {
		return models.User{}, "", models.Container{}, err
	}
	return user, userPassword, container, nil
}
