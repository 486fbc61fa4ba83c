package main

import (
	"context"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"aiwriter/internal/models"
	"aiwriter/internal/services"
)

// adminCmds create the records the writer works on when no host tracker is
// in front of it.
func adminCmds(g *globals) []*cobra.Command {
	return []*cobra.Command{userCmd(g), projectCmd(g), issueCmd(g), modelsCmd(g)}
}

func userCmd(g *globals) *cobra.Command {
	cmd := &cobra.Command{Use: "user", Short: "Manage users"}
	var (
		name  string
		admin bool
	)
	add := &cobra.Command{
		Use:   "add <login>",
		Short: "Register a user",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return g.withApp(cmd, func(ctx context.Context, app *App) error {
				u, err := app.Services.Users.Register(ctx, args[0], name, admin)
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "user #%d %s\n", u.ID, u.Login)
				return nil
			})
		},
	}
	add.Flags().StringVar(&name, "name", "", "display name")
	add.Flags().BoolVar(&admin, "admin", false, "grant administrator rights")
	cmd.AddCommand(add)
	return cmd
}

func projectCmd(g *globals) *cobra.Command {
	cmd := &cobra.Command{Use: "project", Short: "Manage projects, trackers and custom fields"}

	var description string
	add := &cobra.Command{
		Use:   "add <identifier> <name>",
		Short: "Create a project",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return g.withApp(cmd, func(ctx context.Context, app *App) error {
				p, err := app.Services.Projects.Create(ctx, args[0], args[1], description)
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "project #%d %s\n", p.ID, p.Identifier)
				return nil
			})
		},
	}
	add.Flags().StringVar(&description, "description", "", "project description (HTML allowed)")

	var permissions []string
	member := &cobra.Command{
		Use:   "member <project-id> <login>",
		Short: "Add a member with permissions",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return g.withApp(cmd, func(ctx context.Context, app *App) error {
				var projectID uint
				if _, err := fmt.Sscan(args[0], &projectID); err != nil {
					return fmt.Errorf("invalid project id %q", args[0])
				}
				u, err := app.Services.Users.FindByLogin(ctx, args[1])
				if err != nil {
					return err
				}
				m, err := app.Services.Projects.AddMember(ctx, projectID, u.ID, permissions...)
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "%s on project #%d: %s\n", u.Login, projectID, m.Permissions)
				return nil
			})
		},
	}
	member.Flags().StringSliceVar(&permissions, "permission",
		[]string{models.PermissionUseAIWriter, models.PermissionViewIssues, models.PermissionAddIssues, models.PermissionEditIssues},
		"permissions to grant")

	tracker := &cobra.Command{
		Use:   "tracker <name>",
		Short: "Create a tracker",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return g.withApp(cmd, func(ctx context.Context, app *App) error {
				t, err := app.Services.Projects.CreateTracker(ctx, args[0])
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "tracker #%d %s\n", t.ID, t.Name)
				return nil
			})
		},
	}

	field := &cobra.Command{
		Use:   "field <name>",
		Short: "Create an issue custom field",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return g.withApp(cmd, func(ctx context.Context, app *App) error {
				f, err := app.Services.Projects.CreateCustomField(ctx, args[0])
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "custom field #%d %s\n", f.ID, f.Name)
				return nil
			})
		},
	}

	cmd.AddCommand(add, member, tracker, field)
	return cmd
}

func issueCmd(g *globals) *cobra.Command {
	cmd := &cobra.Command{Use: "issue", Short: "Manage issues"}
	var (
		in     services.IssueInput
		parent uint
		login  string
		fields map[string]string
	)
	add := &cobra.Command{
		Use:   "add <subject>",
		Short: "Create an issue; a blank prompt is filled from the parent's template",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return g.withApp(cmd, func(ctx context.Context, app *App) error {
				in.Subject = args[0]
				if parent != 0 {
					in.ParentID = &parent
				}
				in.CustomFields = map[uint]string{}
				for k, v := range fields {
					var id uint
					if _, err := fmt.Sscan(k, &id); err != nil {
						return fmt.Errorf("invalid custom field id %q", k)
					}
					in.CustomFields[id] = v
				}
				var author *models.User
				if strings.TrimSpace(login) != "" {
					u, err := app.Services.Users.FindByLogin(ctx, login)
					if err != nil {
						return err
					}
					author = u
				}
				issue, err := app.Services.Issues.Create(ctx, author, in)
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "issue #%d %s\n", issue.ID, issue.Subject)
				for _, cv := range issue.CustomValues {
					fmt.Fprintf(cmd.OutOrStdout(), "  field #%d: %s\n", cv.CustomFieldID, cv.Value)
				}
				return nil
			})
		},
	}
	add.Flags().UintVar(&in.ProjectID, "project", 0, "project id")
	add.Flags().UintVar(&in.TrackerID, "tracker", 0, "tracker id")
	add.Flags().UintVar(&parent, "parent", 0, "parent issue id")
	add.Flags().StringVar(&in.Description, "description", "", "issue description")
	add.Flags().StringVar(&login, "author", "", "login of the author")
	add.Flags().StringToStringVar(&fields, "field", nil, "custom field values as id=value")

	show := &cobra.Command{
		Use:   "show <id>",
		Short: "Print an issue",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return g.withApp(cmd, func(ctx context.Context, app *App) error {
				var id uint
				if _, err := fmt.Sscan(args[0], &id); err != nil {
					return fmt.Errorf("invalid issue id %q", args[0])
				}
				issue, err := app.Services.Issues.Get(ctx, id)
				if err != nil {
					return err
				}
				out := cmd.OutOrStdout()
				fmt.Fprintf(out, "#%d %s\n\n%s\n", issue.ID, issue.Subject, issue.Description)
				for _, cv := range issue.CustomValues {
					fmt.Fprintf(out, "  field #%d: %s\n", cv.CustomFieldID, cv.Value)
				}
				return nil
			})
		},
	}

	var (
		editSubject     string
		editDescription string
		editParent      uint
		editFields      map[string]string
	)
	edit := &cobra.Command{
		Use:   "edit <id>",
		Short: "Edit an issue; setting a parent fills a blank prompt from its template",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return g.withApp(cmd, func(ctx context.Context, app *App) error {
				var id uint
				if _, err := fmt.Sscan(args[0], &id); err != nil {
					return fmt.Errorf("invalid issue id %q", args[0])
				}
				var changes services.IssueChanges
				if cmd.Flags().Changed("subject") {
					changes.Subject = &editSubject
				}
				if cmd.Flags().Changed("description") {
					changes.Description = &editDescription
				}
				if cmd.Flags().Changed("parent") {
					changes.ParentID = &editParent
				}
				if len(editFields) > 0 {
					changes.CustomFields = map[uint]string{}
					for k, v := range editFields {
						var fieldID uint
						if _, err := fmt.Sscan(k, &fieldID); err != nil {
							return fmt.Errorf("invalid custom field id %q", k)
						}
						changes.CustomFields[fieldID] = v
					}
				}
				issue, err := app.Services.Issues.Update(ctx, id, changes)
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "issue #%d %s\n", issue.ID, issue.Subject)
				for _, cv := range issue.CustomValues {
					fmt.Fprintf(cmd.OutOrStdout(), "  field #%d: %s\n", cv.CustomFieldID, cv.Value)
				}
				return nil
			})
		},
	}
	edit.Flags().StringVar(&editSubject, "subject", "", "new subject")
	edit.Flags().StringVar(&editDescription, "description", "", "new description")
	edit.Flags().UintVar(&editParent, "parent", 0, "parent issue id, 0 detaches")
	edit.Flags().StringToStringVar(&editFields, "field", nil, "custom field values as id=value")

	cmd.AddCommand(add, show, edit)
	return cmd
}

func modelsCmd(g *globals) *cobra.Command {
	cmd := &cobra.Command{Use: "models", Short: "List and toggle catalog models"}
	list := &cobra.Command{
		Use:   "list",
		Short: "List models by provider",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return g.withApp(cmd, func(ctx context.Context, app *App) error {
				groups, err := app.Services.Models.ListModelGroups()
				if err != nil {
					return err
				}
				out := cmd.OutOrStdout()
				for _, grp := range groups {
					fmt.Fprintln(out, grp.ProviderName)
					for _, m := range grp.Models {
						state := "enabled"
						if !m.Enabled {
							state = "disabled"
						}
						fmt.Fprintf(out, "  %-40s %s\n", m.Key, state)
					}
				}
				return nil
			})
		},
	}
	toggle := func(use string, enabled bool) *cobra.Command {
		return &cobra.Command{
			Use:   use + " <model-key>",
			Short: strings.ToUpper(use[:1]) + use[1:] + " a model",
			Args:  cobra.ExactArgs(1),
			RunE: func(cmd *cobra.Command, args []string) error {
				return g.withApp(cmd, func(ctx context.Context, app *App) error {
					m, err := app.Services.Models.SetModelEnabled(args[0], enabled)
					if err != nil {
						return err
					}
					fmt.Fprintf(cmd.OutOrStdout(), "%s enabled=%t\n", m.Key, m.Enabled)
					return nil
				})
			},
		}
	}
	cmd.AddCommand(list, toggle("enable", true), toggle("disable", false))
	return cmd
}
