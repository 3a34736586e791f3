package cmd

import (
	"bufio"
	"errors"
	"fmt"
	"strings"

	"github.com/bnema/coffeeviz-cli/internal/application"
	"github.com/bnema/coffeeviz-cli/internal/domain"
	"github.com/spf13/cobra"
)

func newLoginCmd(app *app) *cobra.Command {
	var (
		username      string
		password      string
		passwordStdin bool
	)

	cmd := &cobra.Command{
		Use:   "login",
		Short: "Sign in and store the session credential",
		Args:  cobra.NoArgs,
		RunE: app.runE(func(cmd *cobra.Command, _ []string) error {
			if passwordStdin {
				if password != "" {
					return errors.New("--password and --password-stdin are mutually exclusive")
				}
				line, err := bufio.NewReader(cmd.InOrStdin()).ReadString('\n')
				if err != nil && line == "" {
					return fmt.Errorf("read password from stdin: %w", err)
				}
				password = strings.TrimRight(line, "\r\n")
			}

			principal, err := app.service.Login(cmd.Context(), application.LoginCommand{
				Username: username,
				Password: password,
			})
			if err != nil {
				return err
			}

			_, _ = fmt.Fprintf(cmd.OutOrStdout(), "Logged in as %s\n", principalName(principal))
			return nil
		}),
	}

	cmd.Flags().StringVarP(&username, "username", "u", "", "Account username")
	cmd.Flags().StringVarP(&password, "password", "p", "", "Account password")
	cmd.Flags().BoolVar(&passwordStdin, "password-stdin", false, "Read the password from stdin")

	return cmd
}

func newLogoutCmd(app *app) *cobra.Command {
	return &cobra.Command{
		Use:   "logout",
		Short: "End the session and forget the stored credential",
		Args:  cobra.NoArgs,
		RunE: app.runE(func(cmd *cobra.Command, _ []string) error {
			report, err := app.service.Logout(cmd.Context())
			if errors.Is(err, domain.ErrNotLoggedIn) {
				_, _ = fmt.Fprintln(cmd.OutOrStdout(), "Not logged in")
				return nil
			}
			if err != nil {
				return err
			}

			if report.ServerErr != nil {
				_, _ = fmt.Fprintf(cmd.ErrOrStderr(), "warning: backend logout failed: %v\n", report.ServerErr)
			}
			_, _ = fmt.Fprintln(cmd.OutOrStdout(), "Logged out")
			return nil
		}),
	}
}

func newWhoAmICmd(app *app) *cobra.Command {
	var (
		refresh bool
		asJSON  bool
	)

	cmd := &cobra.Command{
		Use:   "whoami",
		Short: "Show the signed-in user",
		Args:  cobra.NoArgs,
		RunE: app.runE(func(cmd *cobra.Command, _ []string) error {
			principal, err := app.service.WhoAmI(cmd.Context(), refresh)
			if err != nil {
				if errors.Is(err, domain.ErrNotLoggedIn) {
					return fmt.Errorf("%w (run cvz login)", err)
				}
				return err
			}

			if asJSON {
				return writeJSON(cmd, principal)
			}

			_, _ = fmt.Fprintf(cmd.OutOrStdout(), "%s (id %d)\n", principalName(principal), principal.ID)
			return nil
		}),
	}

	cmd.Flags().BoolVar(&refresh, "refresh", false, "Fetch the profile from the backend instead of the stored copy")
	cmd.Flags().BoolVar(&asJSON, "json", false, "Print the profile as JSON")

	return cmd
}

func principalName(principal *domain.Principal) string {
	if principal == nil {
		return "unknown user"
	}
	if principal.DisplayName != "" && principal.DisplayName != principal.Username {
		return fmt.Sprintf("%s <%s>", principal.DisplayName, principal.Username)
	}
	return principal.Username
}
