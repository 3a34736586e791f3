package cmd

import (
	"errors"
	"os"

	"github.com/bnema/coffeeviz-cli/internal/api"
	"github.com/bnema/coffeeviz-cli/internal/domain"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
)

const jdbcPasswordEnv = "CVZ_JDBC_PASSWORD"

type erFlags struct {
	render      api.ERRender
	tableFilter string
}

func (f *erFlags) bind(flags *pflag.FlagSet) {
	f.render = api.DefaultERRender()
	flags.StringVar(&f.render.ViewMode, "view-mode", api.ViewModePhysical, "PHYSICAL or LOGICAL")
	flags.BoolVar(&f.render.InferRelations, "infer-relations", false, "Infer relations from column names")
	flags.StringVar(&f.tableFilter, "table-filter", "", "Only include tables matching this pattern")
	flags.IntVar(&f.render.RelationDepth, "relation-depth", api.AllRelations, "Relation depth to follow (-1 for all)")
}

func (f *erFlags) build() (api.ERRender, error) {
	render := f.render
	if render.ViewMode != api.ViewModePhysical && render.ViewMode != api.ViewModeLogical {
		return api.ERRender{}, errors.New("--view-mode must be PHYSICAL or LOGICAL")
	}
	render.TableFilter = optionalString(f.tableFilter)
	return render, nil
}

func newERCmd(app *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "er",
		Short: "Generate ER diagrams from SQL or a live database",
	}

	cmd.AddCommand(newParseSQLCmd(app), newConnectJDBCCmd(app))

	return cmd
}

func newParseSQLCmd(app *app) *cobra.Command {
	var (
		file   string
		render erFlags
	)

	cmd := &cobra.Command{
		Use:   "parse-sql",
		Short: "Render an ER diagram from SQL DDL",
		Args:  cobra.NoArgs,
		RunE: callRunE(app, func(cmd *cobra.Command, _ []string) (domain.Request, error) {
			opts, err := render.build()
			if err != nil {
				return domain.Request{}, err
			}
			sql, err := readInput(cmd, file)
			if err != nil {
				return domain.Request{}, err
			}
			if sql == "" {
				return domain.Request{}, errors.New("sql input is empty")
			}
			return api.ParseSQL(api.SQLSource{SQLText: sql, ERRender: opts}), nil
		}),
	}

	cmd.Flags().StringVarP(&file, "file", "f", "-", "SQL file to parse (- for stdin)")
	render.bind(cmd.Flags())

	return cmd
}

func newConnectJDBCCmd(app *app) *cobra.Command {
	var (
		source api.JDBCSource
		render erFlags
	)

	cmd := &cobra.Command{
		Use:   "connect-jdbc",
		Short: "Render an ER diagram from a live database",
		Long:  "Render an ER diagram by letting the backend read a database schema over JDBC. The password may be passed with --password or " + jdbcPasswordEnv + ".",
		Args:  cobra.NoArgs,
		RunE: callRunE(app, func(*cobra.Command, []string) (domain.Request, error) {
			opts, err := render.build()
			if err != nil {
				return domain.Request{}, err
			}
			if source.DBType == "" || source.JDBCURL == "" {
				return domain.Request{}, errors.New("--db-type and --url are required")
			}
			if source.Password == "" {
				source.Password = os.Getenv(jdbcPasswordEnv)
			}
			source.ERRender = opts
			return api.ConnectJDBC(source), nil
		}),
	}

	cmd.Flags().StringVar(&source.DBType, "db-type", "", "Database type (mysql, postgresql, ...)")
	cmd.Flags().StringVar(&source.JDBCURL, "url", "", "JDBC connection URL")
	cmd.Flags().StringVar(&source.Username, "username", "", "Database user")
	cmd.Flags().StringVar(&source.Password, "password", "", "Database password")
	cmd.Flags().StringVar(&source.SchemaName, "schema", "", "Schema to read")
	render.bind(cmd.Flags())

	return cmd
}
