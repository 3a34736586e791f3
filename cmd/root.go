package cmd

import (
	"context"
	"os"
	"os/signal"

	"github.com/spf13/cobra"
)

func Execute() error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	return newRootCmd().ExecuteContext(ctx)
}

func newRootCmd() *cobra.Command {
	app := &app{}

	rootCmd := &cobra.Command{
		Use:           "cvz",
		Short:         "CoffeeViz CLI (cvz): talk to the CoffeeViz API from the terminal",
		Long:          "cvz signs in to a CoffeeViz backend, manages projects, repositories, diagrams and teams, generates ER diagrams from SQL or JDBC sources, and shows your quota usage.",
		SilenceUsage:  true,
		SilenceErrors: false,
	}

	rootCmd.PersistentFlags().StringVar(&app.configPath, "config", "", "Config file (default ~/.coffeeviz/config.toml)")

	rootCmd.AddCommand(
		newVersionCmd(),
		newLoginCmd(app),
		newLogoutCmd(app),
		newWhoAmICmd(app),
		newQuotaCmd(app),
		newSubscriptionCmd(app),
		newProjectCmd(app),
		newRepositoryCmd(app),
		newDiagramCmd(app),
		newTeamCmd(app),
		newERCmd(app),
	)

	return rootCmd
}
