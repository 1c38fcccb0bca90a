package main

import (
	"fmt"

	"github.com/MKhiriev/go-psafe-cache/internal/service"
	"github.com/MKhiriev/go-psafe-cache/models"
	"github.com/spf13/cobra"
)

func (c *cli) containerCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "container",
		Short: "Manage containers",
	}

	var name, description string
	create := &cobra.Command{
		Use:   "create <repository-id> <filename>",
		Short: "Create an empty container in a repository",
		Long: `Create an empty container file, register it in the cache and keep its
password in your personal container.

Examples:
  psafecache -u alice container create 2 web/prod.kdbx --name "Production"`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			repoID, err := parseID(args[0])
			if err != nil {
				return err
			}
			user, userPassword, err := c.authenticate(ctx)
			if err != nil {
				return err
			}
			password, err := c.prompter.Password("Password for the new container")
			if err != nil {
				return err
			}

			container, err := c.app.Services.ContainerService.CreateContainer(ctx, user, models.NewContainer{
				RepositoryID: repoID,
				Filename:     args[1],
				Password:     password,
				Name:         name,
				Description:  description,
			})
			if err != nil {
				return err
			}
			if err = c.app.Services.VaultService.SetStoredPassword(ctx, user, userPassword, container, password); err != nil {
				return fmt.Errorf("container %d created but its password was not stored: %w", container.ID, err)
			}
			return printJSON(cmd.OutOrStdout(), container)
		},
	}
	create.Flags().StringVar(&name, "name", "", "Container name")
	create.Flags().StringVar(&description, "description", "", "Container description")

	list := &cobra.Command{
		Use:   "list",
		Short: "List the containers you can read",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()
			user, _, err := c.authenticate(ctx)
			if err != nil {
				return err
			}
			containers, err := c.app.Services.ReadService.ListContainersForUser(ctx, user, models.ModeRead)
			if err != nil {
				return err
			}
			return printJSON(cmd.OutOrStdout(), containers)
		},
	}

	cmd.AddCommand(create, list)
	return cmd
}

func (c *cli) discoverCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "discover [repository-id...]",
		Short: "Scan repositories for added and missing containers",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			if len(args) == 0 {
				results, err := c.app.Services.ContainerService.DiscoverAll(ctx)
				if printErr := printJSON(cmd.OutOrStdout(), results); printErr != nil {
					return printErr
				}
				return err
			}

			ids, err := parseIDs(args)
			if err != nil {
				return err
			}
			results := make([]models.DiscoveryResult, 0, len(ids))
			for _, id := range ids {
				result, err := c.app.Services.ContainerService.Discover(ctx, id)
				if err != nil {
					return err
				}
				results = append(results, result)
			}
			return printJSON(cmd.OutOrStdout(), results)
		},
	}
}

func (c *cli) refreshCmd() *cobra.Command {
	var (
		uuids       []string
		wait        bool
		quick       int
		full        bool
		byTimestamp bool
	)
	cmd := &cobra.Command{
		Use:   "refresh [container-id...]",
		Short: "Synchronize containers into the cache",
		Long: `Synchronize containers into the cache.

With container ids or --uuid the containers are force-refreshed using the
passwords kept in your personal container. --by-timestamp, --quick and
--full use the passwords remembered by the cache and need no login.

Examples:
  psafecache -u alice refresh 3 4 --wait
  psafecache refresh --quick 10`,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			refresh := c.app.Services.RefreshService

			var (
				n   int
				err error
			)
			switch {
			case byTimestamp:
				n, err = refresh.RefreshByTimestamp(ctx)
			case quick > 0:
				n, err = refresh.RefreshQuick(ctx, quick)
			case full:
				n, err = refresh.RefreshFull(ctx)
			case len(args) > 0 || len(uuids) > 0:
				ids, parseErr := parseIDs(args)
				if parseErr != nil {
					return parseErr
				}
				user, userPassword, authErr := c.authenticate(ctx)
				if authErr != nil {
					return authErr
				}
				if len(ids) > 0 {
					n, err = refresh.RefreshContainers(ctx, user, userPassword, ids, wait)
				}
				if err == nil && len(uuids) > 0 {
					var m int
					m, err = refresh.RefreshContainersByUUID(ctx, user, userPassword, uuids, wait)
					n += m
				}
			default:
				return fmt.Errorf("%w: nothing to refresh", service.ErrInvalidDataProvided)
			}
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%d containers refreshed\n", n)
			return nil
		},
	}
	cmd.Flags().StringArrayVar(&uuids, "uuid", nil, "Container uuid to refresh (repeatable)")
	cmd.Flags().BoolVar(&wait, "wait", false, "Wait for the refreshes to finish")
	cmd.Flags().IntVar(&quick, "quick", 0, "Refresh the N least recently refreshed containers")
	cmd.Flags().BoolVar(&full, "full", false, "Refresh every container")
	cmd.Flags().BoolVar(&byTimestamp, "by-timestamp", false, "Refresh containers whose file changed")
	cmd.MarkFlagsMutuallyExclusive("quick", "full", "by-timestamp")
	return cmd
}
