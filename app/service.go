// Package app wires the configuration into a runnable planning service.
package app

import (
	"context"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/pverdier/tripsched/api/planlogs"
	"github.com/pverdier/tripsched/config"
	coremetrics "github.com/pverdier/tripsched/core/metrics"
	"github.com/pverdier/tripsched/core/notify"
	"github.com/pverdier/tripsched/core/planner"
	"github.com/pverdier/tripsched/core/planner/logging"
	"github.com/pverdier/tripsched/infra/googlecal"
	"github.com/pverdier/tripsched/infra/logger"
	"github.com/pverdier/tripsched/infra/metrics"
	"github.com/pverdier/tripsched/infra/monitoring"
	"github.com/pverdier/tripsched/infra/mqtt"
	"github.com/pverdier/tripsched/infra/tripsearch"
	"github.com/pverdier/tripsched/internal/eventbus"
)

// Service holds the wired planner and its supporting infrastructure.
type Service struct {
	Planner *planner.Planner
	Store   logging.Store
	Bus     eventbus.EventBus

	notifier    notify.Publisher
	log         logger.Logger
	apiAddr     string
	apiToken    string
	promEnabled bool
	promPort    int
}

// New creates a Service from the configuration.
func New(ctx context.Context, cfg *config.Config) (*Service, error) {
	logg := logger.New("service")

	cal, err := googlecal.New(ctx, cfg.Calendar, logger.New("googlecal"))
	if err != nil {
		return nil, fmt.Errorf("calendar client: %w", err)
	}
	searcher, err := tripsearch.New(cfg.Search, logger.New("tripsearch"))
	if err != nil {
		return nil, fmt.Errorf("search client: %w", err)
	}

	store, err := newStore(cfg.PlanLog)
	if err != nil {
		return nil, fmt.Errorf("plan log store: %w", err)
	}

	var sinks []coremetrics.Sink
	if cfg.Metrics.PrometheusEnabled {
		sink, err := metrics.NewPromSink()
		if err != nil {
			return nil, fmt.Errorf("prom sink: %w", err)
		}
		sinks = append(sinks, sink)
	}
	if cfg.Metrics.InfluxEnabled {
		sinks = append(sinks, metrics.NewInfluxSinkWithFallback(
			cfg.Metrics.InfluxURL, cfg.Metrics.InfluxToken, cfg.Metrics.InfluxOrg, cfg.Metrics.InfluxBucket))
	}
	var sink coremetrics.Sink
	if len(sinks) == 1 {
		sink = sinks[0]
	} else if len(sinks) > 1 {
		sink = metrics.NewMultiSink(sinks...)
	}

	mon, err := monitoring.NewSentryMonitor(cfg.Sentry)
	if err != nil {
		return nil, fmt.Errorf("sentry: %w", err)
	}

	var notifier notify.Publisher = notify.NopPublisher{}
	if cfg.MQTT.Broker != "" {
		pub, err := mqtt.NewPahoPublisher(cfg.MQTT)
		if err != nil {
			return nil, fmt.Errorf("mqtt notifier: %w", err)
		}
		notifier = pub
	}

	bus := eventbus.New()
	p, err := planner.New(cal, searcher, searcher, cfg.Planner, logg,
		planner.WithSink(sink),
		planner.WithBus(bus),
		planner.WithStore(store),
		planner.WithMonitor(mon),
		planner.WithNotifier(notifier),
	)
	if err != nil {
		return nil, fmt.Errorf("planner: %w", err)
	}

	return &Service{
		Planner:     p,
		Store:       store,
		Bus:         bus,
		notifier:    notifier,
		log:         logg,
		apiAddr:     cfg.Server.Addr,
		apiToken:    cfg.Server.APIToken,
		promEnabled: cfg.Metrics.PrometheusEnabled,
		promPort:    cfg.Metrics.PrometheusPort,
	}, nil
}

func newStore(cfg config.PlanLogConfig) (logging.Store, error) {
	switch cfg.Backend {
	case "sqlite":
		return logging.NewSQLiteStore(cfg.Path)
	default:
		return logging.NewJSONLStore(cfg.Path)
	}
}

// Run serves the plan-log API and, when enabled, the Prometheus endpoint.
// It blocks until the context is cancelled.
func (s *Service) Run(ctx context.Context) error {
	if s.promEnabled {
		go func() {
			if err := metrics.StartPromServer(ctx, ":"+strconv.Itoa(s.promPort), logger.New("prom-server")); err != nil {
				s.log.Errorf("prom server: %v", err)
			}
		}()
	}

	mux := http.NewServeMux()
	mux.Handle("/api/plans/logs", planlogs.NewHandler(s.Store, s.apiToken))
	srv := &http.Server{Addr: s.apiAddr, Handler: mux}
	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			s.log.Errorf("api shutdown: %v", err)
		}
	}()
	s.log.Infof("plan-log API listening on %s", s.apiAddr)
	if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return err
	}
	return nil
}

// Close releases resources held by the service.
func (s *Service) Close() error {
	s.Bus.Close()
	if err := s.notifier.Close(); err != nil {
		s.log.Warnf("notifier close: %v", err)
	}
	return s.Store.Close()
}
