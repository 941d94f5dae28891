// Package app wires the process-wide dependencies every page receives.
package app

import (
	"fmt"

	"go.uber.org/zap"

	"github.com/idilsaglam/fintrack/internal/api"
	"github.com/idilsaglam/fintrack/internal/auth"
	"github.com/idilsaglam/fintrack/internal/config"
	"github.com/idilsaglam/fintrack/internal/view"
	"github.com/idilsaglam/fintrack/internal/workitems"
)

// App is built once at start-up and read-only afterwards.
type App struct {
	Config       *config.Config
	Logger       *zap.Logger
	Tokens       *auth.Store
	Transport    api.Transport
	WorkItems    *workitems.Service
	DeletePolicy view.DeleteErrorPolicy
}

// New builds the API client stack from cfg. Extra transport options are
// appended after the configured ones.
func New(cfg *config.Config, logger *zap.Logger, opts ...api.Option) (*App, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	policy, err := view.ParseDeleteErrorPolicy(cfg.UI.DeleteErrors)
	if err != nil {
		return nil, err
	}

	tokens := auth.NewStore(cfg.Home)
	base := []api.Option{
		api.WithTimeout(cfg.API.Timeout),
		api.WithLogger(logger.Named("transport")),
	}
	if cfg.API.AuthEnabled {
		base = append(base, api.WithBearer(tokens.Bearer))
	}
	transport, err := api.NewHTTPTransport(cfg.API.BaseURL, append(base, opts...)...)
	if err != nil {
		return nil, fmt.Errorf("api client: %w", err)
	}

	return &App{
		Config:       cfg,
		Logger:       logger,
		Tokens:       tokens,
		Transport:    transport,
		WorkItems:    workitems.New(transport, logger.Named("workitems")),
		DeletePolicy: policy,
	}, nil
}

// NewTaskList returns a fresh list controller for one mount of the work items page.
func (a *App) NewTaskList(opts ...view.TaskListOption) *view.TaskList {
	base := []view.TaskListOption{
		view.WithDeleteErrorPolicy(a.DeletePolicy),
		view.WithLogger(a.Logger.Named("tasklist")),
	}
	return view.NewTaskList(a.WorkItems, append(base, opts...)...)
}
