package cmd

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/bnema/coffeeviz-cli/internal/adapters/navigator/terminal"
	quotarender "github.com/bnema/coffeeviz-cli/internal/adapters/render/quota"
	"github.com/bnema/coffeeviz-cli/internal/adapters/repo/passstore"
	"github.com/bnema/coffeeviz-cli/internal/adapters/repo/redisstore"
	tomlrepo "github.com/bnema/coffeeviz-cli/internal/adapters/repo/toml"
	"github.com/bnema/coffeeviz-cli/internal/application"
	"github.com/bnema/coffeeviz-cli/internal/config"
	"github.com/bnema/coffeeviz-cli/internal/dispatch"
	"github.com/bnema/coffeeviz-cli/internal/metrics"
	"github.com/bnema/coffeeviz-cli/internal/pipeline"
	"github.com/bnema/coffeeviz-cli/internal/ports"
	"github.com/bnema/coffeeviz-cli/internal/session"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"golang.org/x/time/rate"
)

// drainTimeout bounds how long a command waits for a background quota
// refresh before exiting.
const drainTimeout = 5 * time.Second

type app struct {
	configPath string

	wired         bool
	cfg           config.Config
	logger        *slog.Logger
	holder        *session.Holder
	pipeline      *pipeline.Pipeline
	dispatcher    *dispatch.Dispatcher
	metrics       *metrics.Recorder
	service       *application.Service
	quotas        *application.QuotaService
	quotaRenderer func(application.QuotaView, quotarender.RenderOptions) (string, error)
	now           func() time.Time
	closers       []func() error
}

// runE wires the app on first use and drains background work after fn
// returns, whatever its outcome.
func (a *app) runE(fn func(cmd *cobra.Command, args []string) error) func(*cobra.Command, []string) error {
	return func(cmd *cobra.Command, args []string) (err error) {
		if err := a.wire(cmd); err != nil {
			return err
		}
		defer func() {
			err = errors.Join(err, a.finish(cmd.Context()))
		}()

		return fn(cmd, args)
	}
}

func (a *app) wire(cmd *cobra.Command) error {
	if a.wired {
		return nil
	}

	ctx := cmd.Context()
	v := viper.New()

	cfg, err := config.Load(v, a.configPath)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	logger := slog.New(slog.NewTextHandler(cmd.ErrOrStderr(), &slog.HandlerOptions{Level: cfg.LogLevel}))

	store, err := a.wireSessionStore(v, cfg)
	if err != nil {
		return err
	}

	holder, err := session.Load(ctx, store, session.WithLogger(logger))
	if err != nil {
		return fmt.Errorf("wire session holder: %w", err)
	}

	recorder := metrics.NewRecorder()
	navigator := terminal.NewNavigator(cmd.ErrOrStderr(), "")

	pipelineOpts := []pipeline.Option{
		pipeline.WithTimeout(cfg.RequestTimeout),
		pipeline.WithLogger(logger),
		pipeline.WithObserver(recorder),
		pipeline.WithObserver(pipeline.RedirectOnReject(navigator)),
	}
	if cfg.RateLimit > 0 {
		pipelineOpts = append(pipelineOpts, pipeline.WithLimiter(rate.NewLimiter(rate.Limit(cfg.RateLimit), cfg.Burst)))
	}

	p, err := pipeline.New(cfg.BaseURL, holder, pipelineOpts...)
	if err != nil {
		return fmt.Errorf("wire request pipeline: %w", err)
	}

	quotaRepo, err := tomlrepo.NewQuotaRepository(v)
	if err != nil {
		return fmt.Errorf("wire quota repository: %w", err)
	}
	quotas := application.NewQuotaService(p, quotaRepo, ports.SystemClock{}, cfg.QuotaStaleAfter)

	dispatcher, err := dispatch.New(p, quotas,
		dispatch.WithRules(cfg.RefreshRules),
		dispatch.WithDelay(cfg.RefreshDelay),
		dispatch.WithLogger(logger),
		dispatch.WithRecorder(recorder),
	)
	if err != nil {
		return fmt.Errorf("wire refresh dispatcher: %w", err)
	}
	p.Subscribe(dispatcher)

	a.cfg = cfg
	a.logger = logger
	a.holder = holder
	a.pipeline = p
	a.dispatcher = dispatcher
	a.metrics = recorder
	a.service = application.NewService(p, holder)
	a.quotas = quotas
	a.quotaRenderer = quotarender.Render
	a.now = time.Now
	a.wired = true

	return nil
}

func (a *app) wireSessionStore(v *viper.Viper, cfg config.Config) (ports.SessionStore, error) {
	switch cfg.SessionBackend {
	case config.BackendRedis:
		client := redisstore.NewClient(v)
		a.closers = append(a.closers, client.Close)

		store, err := redisstore.NewSessionStore(client, v)
		if err != nil {
			return nil, fmt.Errorf("wire redis session store: %w", err)
		}
		return store, nil
	case config.BackendPass:
		return passstore.NewSessionStore(v), nil
	default:
		store, err := tomlrepo.NewSessionStore(v)
		if err != nil {
			return nil, fmt.Errorf("wire session store: %w", err)
		}
		return store, nil
	}
}

func (a *app) finish(ctx context.Context) error {
	if !a.wired {
		return nil
	}

	drainCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), drainTimeout)
	defer cancel()

	if err := a.dispatcher.Drain(drainCtx); err != nil {
		a.logger.Warn("quota refresh still running at exit", "error", err)
	}

	var errs []error
	if a.cfg.MetricsTextfile != "" {
		if err := a.metrics.WriteTextfile(a.cfg.MetricsTextfile); err != nil {
			errs = append(errs, err)
		}
	}
	for _, closeFn := range a.closers {
		if err := closeFn(); err != nil {
			errs = append(errs, fmt.Errorf("close: %w", err))
		}
	}
	a.closers = nil

	return errors.Join(errs...)
}
