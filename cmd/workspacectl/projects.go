package main

import (
	"fmt"
	"strconv"

	"github.com/olekukonko/tablewriter"
	"github.com/samber/lo"
	"github.com/spf13/cobra"

	"github.com/mmuslimabdulj/goat-collab/internal/domain"
)

func projectCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:     "project",
		Aliases: []string{"proj"},
		Short:   "Manage projects and their collaborators",
	}
	cmd.AddCommand(
		projectCreateCmd(a),
		projectListCmd(a),
		projectMembersCmd(a),
		projectAddMemberCmd(a),
	)
	return cmd
}

func projectCreateCmd(a *app) *cobra.Command {
	var owner string

	cmd := &cobra.Command{
		Use:   "create <name>",
		Short: "Create an empty project",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			user, err := a.store.FindUserByEmail(cmd.Context(), owner)
			if err != nil {
				return fmt.Errorf("owner %s: %w", owner, err)
			}
			project, err := a.store.CreateProject(cmd.Context(), args[0], user.ID)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Created project %s (%s)\n", project.Name, project.ID)
			return nil
		},
	}
	cmd.Flags().StringVar(&owner, "owner", "", "Email of the owning user")
	cmd.MarkFlagRequired("owner")
	return cmd
}

func projectListCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List every project",
		RunE: func(cmd *cobra.Command, args []string) error {
			projects, err := a.store.ListProjects(cmd.Context())
			if err != nil {
				return err
			}

			table := newTable(cmd)
			table.SetHeader([]string{"ID", "Name", "Members", "Files", "Updated"})
			for _, p := range projects {
				table.Append([]string{
					p.ID,
					p.Name,
					strconv.Itoa(len(p.Members)),
					strconv.Itoa(len(p.FileTree)),
					p.UpdatedAt.Format("2006-01-02 15:04:05"),
				})
			}
			table.Render()
			return nil
		},
	}
}

func projectMembersCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "members <project-id>",
		Short: "List a project's collaborators",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			members, err := a.store.Members(cmd.Context(), args[0])
			if err != nil {
				return err
			}

			table := newTable(cmd)
			table.SetHeader([]string{"ID", "Email"})
			table.AppendBulk(lo.Map(members, func(u domain.User, _ int) []string {
				return []string{u.ID, u.Email}
			}))
			table.Render()
			return nil
		},
	}
}

func projectAddMemberCmd(a *app) *cobra.Command {
	var requester string

	cmd := &cobra.Command{
		Use:   "add-member <project-id> <email>",
		Short: "Add a registered user to a project",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			projectID, email := args[0], args[1]

			user, err := a.store.FindUserByEmail(ctx, email)
			if err != nil {
				return fmt.Errorf("user %s: %w", email, err)
			}

			// Without --as, act as the project's first collaborator
			requesterID := ""
			if requester != "" {
				by, err := a.store.FindUserByEmail(ctx, requester)
				if err != nil {
					return fmt.Errorf("user %s: %w", requester, err)
				}
				requesterID = by.ID
			} else {
				project, err := a.store.FindProject(ctx, projectID)
				if err != nil {
					return err
				}
				if len(project.Members) > 0 {
					requesterID = project.Members[0]
				}
			}

			if err := a.store.AddMember(ctx, projectID, requesterID, user.ID); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Added %s to project %s\n", user.Email, projectID)
			return nil
		},
	}
	cmd.Flags().StringVar(&requester, "as", "", "Email of the collaborator performing the change")
	return cmd
}

func newTable(cmd *cobra.Command) *tablewriter.Table {
	table := tablewriter.NewWriter(cmd.OutOrStdout())
	table.SetAutoWrapText(false)
	table.SetHeaderAlignment(tablewriter.ALIGN_LEFT)
	table.SetAlignment(tablewriter.ALIGN_LEFT)
	table.SetCenterSeparator("")
	table.SetColumnSeparator("")
	table.SetRowSeparator("")
	table.SetHeaderLine(false)
	table.SetBorder(false)
	table.SetTablePadding("\t")
	return table
}
