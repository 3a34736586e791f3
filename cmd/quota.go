package cmd

import (
	"context"
	"errors"
	"fmt"
	"time"

	quotarender "github.com/bnema/coffeeviz-cli/internal/adapters/render/quota"
	"github.com/bnema/coffeeviz-cli/internal/application"
	"github.com/bnema/coffeeviz-cli/internal/domain"
	"github.com/spf13/cobra"
)

type quotaJSON struct {
	CapturedAt string      `json:"capturedAt,omitempty"`
	Stale      bool        `json:"stale"`
	Quotas     []quotaItem `json:"quotas"`
}

type quotaItem struct {
	Type        string `json:"quotaType"`
	Used        int    `json:"usedCount"`
	Limit       int    `json:"limitCount"`
	Remaining   int    `json:"remaining"`
	UsedPercent int    `json:"usedPercent"`
	ResetCycle  string `json:"resetCycle,omitempty"`
	ResetsAt    string `json:"resetsAt,omitempty"`
}

func newQuotaCmd(app *app) *cobra.Command {
	var (
		refresh bool
		asJSON  bool
	)

	cmd := &cobra.Command{
		Use:   "quota",
		Short: "Show quota usage for the signed-in account",
		Long:  "Show the quota board recorded after the last quota-consuming call. Use --refresh to fetch it from the backend now.",
		Args:  cobra.NoArgs,
		RunE: app.runE(func(cmd *cobra.Command, _ []string) error {
			view, err := loadQuotaView(cmd, app, refresh, asJSON)
			if err != nil {
				return err
			}

			if asJSON {
				return writeJSON(cmd, toQuotaJSON(view))
			}

			rendered, err := app.quotaRenderer(view, quotarender.RenderOptions{Now: app.now()})
			if err != nil {
				return err
			}
			_, err = fmt.Fprintln(cmd.OutOrStdout(), rendered)
			return err
		}),
	}

	cmd.Flags().BoolVar(&refresh, "refresh", false, "Fetch quotas from the backend before showing them")
	cmd.Flags().BoolVar(&asJSON, "json", false, "Print quotas as JSON")

	return cmd
}

func loadQuotaView(cmd *cobra.Command, app *app, refresh, quiet bool) (application.QuotaView, error) {
	ctx := cmd.Context()

	if !refresh {
		view, err := app.quotas.Board(ctx)
		if err == nil {
			return view, nil
		}
		if !errors.Is(err, domain.ErrNoQuotas) {
			return application.QuotaView{}, err
		}
	}

	if !app.holder.Snapshot().LoggedIn() {
		return application.QuotaView{}, fmt.Errorf("%w (run cvz login)", domain.ErrNotLoggedIn)
	}

	var view application.QuotaView
	fetch := func(ctx context.Context) error {
		var err error
		view, err = app.quotas.Refresh(ctx)
		return err
	}

	var err error
	if quiet {
		err = fetch(ctx)
	} else {
		err = runFetchSpinner(ctx, cmd.ErrOrStderr(), "Fetching quotas...", fetch)
	}
	if err != nil {
		return application.QuotaView{}, err
	}
	return view, nil
}

func toQuotaJSON(view application.QuotaView) quotaJSON {
	out := quotaJSON{Stale: view.Stale, Quotas: []quotaItem{}}
	if !view.Board.CapturedAt.IsZero() {
		out.CapturedAt = view.Board.CapturedAt.Format(time.RFC3339)
	}

	for _, quota := range view.Board.Sorted() {
		item := quotaItem{
			Type:        quota.Type,
			Used:        quota.Used,
			Limit:       quota.Limit,
			Remaining:   quota.Remaining(),
			UsedPercent: quota.UsedPercent(),
			ResetCycle:  quota.ResetCycle,
		}
		if resetsAt := quota.NextResetAt(); !resetsAt.IsZero() {
			item.ResetsAt = resetsAt.Format(time.RFC3339)
		}
		out.Quotas = append(out.Quotas, item)
	}

	return out
}
