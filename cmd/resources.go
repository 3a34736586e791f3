package cmd

import (
	"errors"
	"strings"

	"github.com/bnema/coffeeviz-cli/internal/api"
	"github.com/bnema/coffeeviz-cli/internal/domain"
	"github.com/spf13/cobra"
)

var errNameRequired = errors.New("--name is required")

// callRunE executes the request built by build and prints its data.
func callRunE(app *app, build func(cmd *cobra.Command, args []string) (domain.Request, error)) func(*cobra.Command, []string) error {
	return app.runE(func(cmd *cobra.Command, args []string) error {
		req, err := build(cmd, args)
		if err != nil {
			return err
		}

		data, err := app.service.Call(cmd.Context(), req)
		if err != nil {
			return err
		}
		return writeData(cmd, data)
	})
}

func newProjectCmd(app *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "project",
		Short: "List and create projects",
	}

	cmd.AddCommand(newProjectListCmd(app), newProjectCreateCmd(app))

	return cmd
}

func newProjectListCmd(app *app) *cobra.Command {
	var (
		page    int
		size    int
		keyword string
		status  string
	)

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List projects",
		Args:  cobra.NoArgs,
		RunE: callRunE(app, func(*cobra.Command, []string) (domain.Request, error) {
			return api.ListProjects(api.ProjectQuery{
				Page:    page,
				Size:    size,
				Keyword: optionalString(keyword),
				Status:  optionalString(status),
			}), nil
		}),
	}

	cmd.Flags().IntVar(&page, "page", 1, "Page number")
	cmd.Flags().IntVar(&size, "size", 10, "Page size")
	cmd.Flags().StringVar(&keyword, "keyword", "", "Filter by name keyword")
	cmd.Flags().StringVar(&status, "status", "", "Filter by status")

	return cmd
}

func newProjectCreateCmd(app *app) *cobra.Command {
	var (
		draft       api.ProjectDraft
		mermaidFile string
	)

	cmd := &cobra.Command{
		Use:   "create",
		Short: "Create a project",
		Args:  cobra.NoArgs,
		RunE: callRunE(app, func(cmd *cobra.Command, _ []string) (domain.Request, error) {
			draft.ProjectName = strings.TrimSpace(draft.ProjectName)
			if draft.ProjectName == "" {
				return domain.Request{}, errNameRequired
			}
			if mermaidFile != "" {
				code, err := readInput(cmd, mermaidFile)
				if err != nil {
					return domain.Request{}, err
				}
				draft.MermaidCode = code
			}
			return api.CreateProject(draft), nil
		}),
	}

	cmd.Flags().StringVar(&draft.ProjectName, "name", "", "Project name")
	cmd.Flags().StringVar(&draft.Description, "description", "", "Project description")
	cmd.Flags().StringVar(&mermaidFile, "mermaid-file", "", "Mermaid ER source to attach (- for stdin)")
	cmd.Flags().StringVar(&draft.SourceType, "source-type", "", "Source type (SQL or JDBC)")
	cmd.Flags().StringVar(&draft.DBType, "db-type", "", "Database type")
	cmd.Flags().StringVar(&draft.ViewMode, "view-mode", "", "PHYSICAL or LOGICAL")
	cmd.Flags().IntVar(&draft.TableCount, "table-count", 0, "Number of tables in the diagram")

	return cmd
}

func newRepositoryCmd(app *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:     "repository",
		Aliases: []string{"repo"},
		Short:   "List and create diagram repositories",
	}

	var draft api.RepositoryDraft
	create := &cobra.Command{
		Use:   "create",
		Short: "Create a repository",
		Args:  cobra.NoArgs,
		RunE: callRunE(app, func(*cobra.Command, []string) (domain.Request, error) {
			draft.RepositoryName = strings.TrimSpace(draft.RepositoryName)
			if draft.RepositoryName == "" {
				return domain.Request{}, errNameRequired
			}
			return api.CreateRepository(draft), nil
		}),
	}
	create.Flags().StringVar(&draft.RepositoryName, "name", "", "Repository name")
	create.Flags().StringVar(&draft.Description, "description", "", "Repository description")

	cmd.AddCommand(&cobra.Command{
		Use:   "list",
		Short: "List repositories",
		Args:  cobra.NoArgs,
		RunE: callRunE(app, func(*cobra.Command, []string) (domain.Request, error) {
			return api.ListRepositories(), nil
		}),
	}, create)

	return cmd
}

func newDiagramCmd(app *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "diagram",
		Short: "List and create diagrams in a repository",
	}

	var repositoryID int64
	list := &cobra.Command{
		Use:   "list",
		Short: "List diagrams of a repository",
		Args:  cobra.NoArgs,
		RunE: callRunE(app, func(*cobra.Command, []string) (domain.Request, error) {
			if repositoryID <= 0 {
				return domain.Request{}, errors.New("--repository must be a positive id")
			}
			return api.ListDiagrams(repositoryID), nil
		}),
	}
	list.Flags().Int64Var(&repositoryID, "repository", 0, "Repository id")

	cmd.AddCommand(list, newDiagramCreateCmd(app))

	return cmd
}

func newDiagramCreateCmd(app *app) *cobra.Command {
	var (
		draft       api.DiagramDraft
		mermaidFile string
		sqlFile     string
	)

	cmd := &cobra.Command{
		Use:   "create",
		Short: "Create a diagram",
		Args:  cobra.NoArgs,
		RunE: callRunE(app, func(cmd *cobra.Command, _ []string) (domain.Request, error) {
			draft.DiagramName = strings.TrimSpace(draft.DiagramName)
			if draft.DiagramName == "" {
				return domain.Request{}, errNameRequired
			}
			if draft.RepositoryID <= 0 {
				return domain.Request{}, errors.New("--repository must be a positive id")
			}
			if mermaidFile == "-" && sqlFile == "-" {
				return domain.Request{}, errors.New("only one of --mermaid-file and --sql-file can read stdin")
			}
			if mermaidFile != "" {
				code, err := readInput(cmd, mermaidFile)
				if err != nil {
					return domain.Request{}, err
				}
				draft.MermaidCode = code
			}
			if sqlFile != "" {
				ddl, err := readInput(cmd, sqlFile)
				if err != nil {
					return domain.Request{}, err
				}
				draft.SQLDDL = ddl
			}
			return api.CreateDiagram(draft), nil
		}),
	}

	cmd.Flags().Int64Var(&draft.RepositoryID, "repository", 0, "Repository id")
	cmd.Flags().StringVar(&draft.DiagramName, "name", "", "Diagram name")
	cmd.Flags().StringVar(&draft.Description, "description", "", "Diagram description")
	cmd.Flags().StringVar(&draft.SourceType, "source-type", "", "Source type (SQL or JDBC)")
	cmd.Flags().StringVar(&draft.DBType, "db-type", "", "Database type")
	cmd.Flags().StringVar(&mermaidFile, "mermaid-file", "", "Mermaid ER source (- for stdin)")
	cmd.Flags().StringVar(&sqlFile, "sql-file", "", "SQL DDL the diagram was built from (- for stdin)")
	cmd.Flags().IntVar(&draft.TableCount, "table-count", 0, "Number of tables")
	cmd.Flags().IntVar(&draft.RelationCount, "relation-count", 0, "Number of relations")

	return cmd
}

func newTeamCmd(app *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "team",
		Short: "List and create teams",
	}

	var draft api.TeamDraft
	create := &cobra.Command{
		Use:   "create",
		Short: "Create a team",
		Args:  cobra.NoArgs,
		RunE: callRunE(app, func(*cobra.Command, []string) (domain.Request, error) {
			draft.TeamName = strings.TrimSpace(draft.TeamName)
			if draft.TeamName == "" {
				return domain.Request{}, errNameRequired
			}
			return api.CreateTeam(draft), nil
		}),
	}
	create.Flags().StringVar(&draft.TeamName, "name", "", "Team name")
	create.Flags().Int64Var(&draft.RepositoryID, "repository", 0, "Repository shared with the team")
	create.Flags().StringVar(&draft.Description, "description", "", "Team description")

	cmd.AddCommand(&cobra.Command{
		Use:   "list",
		Short: "List teams",
		Args:  cobra.NoArgs,
		RunE: callRunE(app, func(*cobra.Command, []string) (domain.Request, error) {
			return api.ListTeams(), nil
		}),
	}, create)

	return cmd
}

func newSubscriptionCmd(app *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "subscription",
		Short: "Show subscription details",
	}

	cmd.AddCommand(
		&cobra.Command{
			Use:   "current",
			Short: "Show the active subscription",
			Args:  cobra.NoArgs,
			RunE: callRunE(app, func(*cobra.Command, []string) (domain.Request, error) {
				return api.CurrentSubscription(), nil
			}),
		},
		&cobra.Command{
			Use:   "plans",
			Short: "List available plans",
			Args:  cobra.NoArgs,
			RunE: callRunE(app, func(*cobra.Command, []string) (domain.Request, error) {
				return api.SubscriptionPlans(), nil
			}),
		},
		&cobra.Command{
			Use:   "check-feature <feature>",
			Short: "Check whether the subscription includes a feature",
			Args:  cobra.ExactArgs(1),
			RunE: callRunE(app, func(_ *cobra.Command, args []string) (domain.Request, error) {
				return api.CheckFeature(args[0]), nil
			}),
		},
	)

	return cmd
}
