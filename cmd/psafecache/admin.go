package main

import (
	"fmt"

	"github.com/MKhiriev/go-psafe-cache/models"
	"github.com/spf13/cobra"
)

func (c *cli) userCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "user",
		Short: "Manage users",
	}

	var (
		name      string
		superuser bool
		groups    []string
	)
	add := &cobra.Command{
		Use:   "add <login>",
		Short: "Register a user",
		Long: `Register a user and add it to groups. Unknown groups are created.

Examples:
  psafecache user add alice --name "Alice" --group ops --group dba`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			password, err := c.prompter.Password("New password for " + args[0])
			if err != nil {
				return err
			}

			user, err := c.app.Services.UserService.RegisterUser(ctx, models.User{
				Login:       args[0],
				Name:        name,
				IsSuperuser: superuser,
			}, password)
			if err != nil {
				return err
			}
			for _, g := range groups {
				if err = c.app.Services.UserService.AddToGroup(ctx, user.UserID, g); err != nil {
					return err
				}
			}
			fmt.Fprintf(cmd.OutOrStdout(), "user %s registered with id %d\n", user.Login, user.UserID)
			return nil
		},
	}
	add.Flags().StringVar(&name, "name", "", "Display name")
	add.Flags().BoolVar(&superuser, "superuser", false, "Grant access to every shared repository")
	add.Flags().StringArrayVarP(&groups, "group", "g", nil, "Group to join (repeatable)")

	cmd.AddCommand(add)
	return cmd
}

func (c *cli) repoCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "repo",
		Short: "Manage repositories",
	}

	relations := map[models.GroupRelation]*[]string{
		models.RelationAdmin:      new([]string),
		models.RelationReadAllow:  new([]string),
		models.RelationReadDeny:   new([]string),
		models.RelationWriteAllow: new([]string),
		models.RelationWriteDeny:  new([]string),
	}
	add := &cobra.Command{
		Use:   "add <name> <path>",
		Short: "Register a repository",
		Long: `Register a directory of containers and the groups allowed to use it.

Examples:
  psafecache repo add ops /srv/psafes/ops --read ops --write ops --admin admins`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			groups := make(map[models.GroupRelation][]string, len(relations))
			for relation, names := range relations {
				if len(*names) > 0 {
					groups[relation] = *names
				}
			}
			repo, err := c.app.Services.RepositoryService.Create(cmd.Context(), models.Repository{
				Name: args[0],
				Path: args[1],
			}, groups)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "repository %s registered with id %d\n", repo.Name, repo.ID)
			return nil
		},
	}
	add.Flags().StringArrayVar(relations[models.RelationAdmin], "admin", nil, "Admin group (repeatable)")
	add.Flags().StringArrayVar(relations[models.RelationReadAllow], "read", nil, "Group allowed to read (repeatable)")
	add.Flags().StringArrayVar(relations[models.RelationReadDeny], "read-deny", nil, "Group denied reading (repeatable)")
	add.Flags().StringArrayVar(relations[models.RelationWriteAllow], "write", nil, "Group allowed to write (repeatable)")
	add.Flags().StringArrayVar(relations[models.RelationWriteDeny], "write-deny", nil, "Group denied writing (repeatable)")

	list := &cobra.Command{
		Use:   "list",
		Short: "List repositories",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			repos, err := c.app.Services.RepositoryService.List(cmd.Context())
			if err != nil {
				return err
			}
			return printJSON(cmd.OutOrStdout(), repos)
		},
	}

	cmd.AddCommand(add, list)
	return cmd
}
