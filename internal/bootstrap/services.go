package bootstrap

import (
	"github.com/jonesrussell/pricetracker/internal/alert"
	"github.com/jonesrussell/pricetracker/internal/api"
	"github.com/jonesrussell/pricetracker/internal/fetch"
	"github.com/jonesrussell/pricetracker/internal/metrics"
	"github.com/jonesrussell/pricetracker/internal/parser"
	"github.com/jonesrussell/pricetracker/internal/ratelimit"
	"github.com/jonesrussell/pricetracker/internal/scheduler"
	"github.com/jonesrussell/pricetracker/internal/tracker"
)

// Services bundles the wired domain services.
type Services struct {
	Metrics   *metrics.Metrics
	Registry  *parser.Registry
	Fetcher   *fetch.Client
	Limiter   *ratelimit.DomainLimiter
	Alerts    *alert.Engine
	Tracker   *tracker.Tracker
	Scheduler *scheduler.Scheduler
}

// SetupServices creates the parser registry, fetch clients, rate
// limiter, alert engine, tracker and scheduler.
func SetupServices(deps *CommandDeps, repos *Repositories) *Services {
	trackerMetrics := metrics.NewMetrics()

	registry := parser.NewRegistry(repos.ParserConfigs, deps.Logger)
	fetcher := fetch.NewClient(&deps.Config.Fetch, deps.Logger)
	limiter := ratelimit.NewDomainLimiter(deps.Config.RateLimit.DefaultInterval)
	alertEngine := alert.NewEngine(repos.Alerts, repos.Observations, &deps.Config.Alerts, trackerMetrics, deps.Logger)

	productTracker := tracker.New(
		&deps.Config.Tracker,
		repos.Products,
		repos.Observations,
		repos.ParserConfigs,
		registry,
		fetcher,
		limiter,
		alertEngine,
		trackerMetrics,
		deps.Logger,
	)
	checkScheduler := scheduler.New(repos.Products, productTracker, &deps.Config.Scheduler, deps.Logger)

	return &Services{
		Metrics:   trackerMetrics,
		Registry:  registry,
		Fetcher:   fetcher,
		Limiter:   limiter,
		Alerts:    alertEngine,
		Tracker:   productTracker,
		Scheduler: checkScheduler,
	}
}

// SetupHTTPServer creates the API server with its handlers.
func SetupHTTPServer(deps *CommandDeps, repos *Repositories, services *Services) *api.Server {
	serverConfig := &api.Config{
		Address:      deps.Config.Server.Address,
		ReadTimeout:  deps.Config.Server.ReadTimeout,
		WriteTimeout: deps.Config.Server.WriteTimeout,
		IdleTimeout:  deps.Config.Server.IdleTimeout,
		Debug:        deps.Config.App.Debug,
	}

	return api.NewServer(
		serverConfig,
		api.NewProductsHandler(repos.Products, repos.Observations, services.Tracker, deps.Logger),
		api.NewAlertsHandler(repos.Alerts, deps.Logger),
		api.NewParserConfigsHandler(repos.ParserConfigs, deps.Logger),
		services.Metrics,
		deps.Logger,
	)
}
