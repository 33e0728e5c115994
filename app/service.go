package app

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"sync"

	"github.com/prometheus/client_golang/prometheus/promhttp"

	apidispatch "github.com/kilianp07/ambulance-dispatch/api/dispatch"
	apivehicles "github.com/kilianp07/ambulance-dispatch/api/vehicles"
	"github.com/kilianp07/ambulance-dispatch/app/plugins"
	"github.com/kilianp07/ambulance-dispatch/config"
	"github.com/kilianp07/ambulance-dispatch/core/dispatch"
	dispatchlog "github.com/kilianp07/ambulance-dispatch/core/dispatch/logging"
	"github.com/kilianp07/ambulance-dispatch/core/events"
	"github.com/kilianp07/ambulance-dispatch/core/logger"
	coremetrics "github.com/kilianp07/ambulance-dispatch/core/metrics"
	"github.com/kilianp07/ambulance-dispatch/core/scenario"
	"github.com/kilianp07/ambulance-dispatch/core/vehiclestatus"
	infralogger "github.com/kilianp07/ambulance-dispatch/infra/logger"
	"github.com/kilianp07/ambulance-dispatch/infra/metrics"
	"github.com/kilianp07/ambulance-dispatch/infra/mqtt"
	"github.com/kilianp07/ambulance-dispatch/infra/roadnet"
	"github.com/kilianp07/ambulance-dispatch/internal/eventbus"
)

// eventBuffer bounds the events a slow subscriber may lag behind the engine.
const eventBuffer = 4096

// ErrNoScenario is returned when the configuration names no scenario file.
var ErrNoScenario = errors.New("no scenario configured")

// Service wires a scenario to the dispatch engine and its observers.
type Service struct {
	Engine *dispatch.Engine
	Store  dispatchlog.LogStore
	Status *vehiclestatus.MemoryStore

	cfg    *config.Config
	sink   coremetrics.MetricsSink
	client *mqtt.PahoClient
	bus    *eventbus.Bus
	log    logger.Logger
}

// New loads the configured scenario and builds a Service from it.
func New(cfg *config.Config) (*Service, error) {
	if cfg.Simulation.Scenario == "" {
		return nil, ErrNoScenario
	}
	def, err := scenario.Load(cfg.Simulation.Scenario)
	if err != nil {
		return nil, err
	}
	return NewFromDefinition(cfg, def)
}

// NewFromDefinition builds a Service for def. Startup validation errors of
// the engine are returned unchanged so callers can match them with errors.Is.
func NewFromDefinition(cfg *config.Config, def scenario.Definition) (*Service, error) {
	logg := infralogger.New("service")
	if err := def.Validate(); err != nil {
		return nil, fmt.Errorf("scenario: %w", err)
	}
	graph := roadnet.NewGraph()
	if err := def.Populate(graph); err != nil {
		return nil, fmt.Errorf("road network: %w", err)
	}
	engine, err := dispatch.NewEngine(def.Inputs(graph), cfg.Simulation.Engine(), infralogger.New("dispatch"))
	if err != nil {
		return nil, err
	}

	svc := &Service{Engine: engine, cfg: cfg, bus: eventbus.New(eventbus.WithBuffer(eventBuffer)), log: logg}
	if svc.Store, err = plugins.NewLogStore(cfg.Logging); err != nil {
		return nil, fmt.Errorf("log store: %w", err)
	}
	if svc.sink, err = coremetrics.NewMetricsSink(cfg.Metrics.Sinks); err != nil {
		_ = svc.Store.Close()
		return nil, fmt.Errorf("metrics sink: %w", err)
	}
	if cfg.MQTT.Broker != "" {
		if svc.client, err = mqtt.NewPahoClient(cfg.MQTT); err != nil {
			svc.closeSink()
			_ = svc.Store.Close()
			return nil, fmt.Errorf("mqtt client: %w", err)
		}
		engine.SetNotifier(dispatch.NewOrderNotifier(svc.client, cfg.Simulation.RunID, cfg.MQTT.AckTimeout()))
	}
	svc.Status = vehiclestatus.NewMemoryStore()
	engine.SetLogStore(svc.Store)
	engine.SetMetrics(svc.sink)
	engine.SetBus(svc.bus)
	engine.SetStatusStore(svc.Status)
	logg.Infow("scenario loaded", map[string]any{
		"run_id":   cfg.Simulation.RunID,
		"scenario": def.Name,
		"nodes":    len(graph.Nodes()),
		"vehicles": len(def.Fleet),
		"calls":    len(def.Calls),
	})
	return svc, nil
}

// Run drives the engine to completion and returns the end-of-run report.
// The report is filled even when Run stops early with an error.
func (s *Service) Run(ctx context.Context) (dispatch.Report, error) {
	var wg sync.WaitGroup
	sub := s.bus.Subscribe()
	wg.Add(1)
	go func() {
		defer wg.Done()
		for ev := range sub {
			s.logEvent(ev)
		}
	}()
	collected := metrics.StartEventCollector(ctx, s.bus, s.sink, s.cfg.Simulation.RunID, s.log)

	err := s.Engine.Run(ctx)
	s.bus.Close()
	wg.Wait()
	<-collected

	rep := s.Engine.Report()
	s.log.Infow("run finished", map[string]any{
		"run_id":     rep.RunID,
		"ticks":      rep.Ticks,
		"ingested":   rep.Ingested,
		"dispatched": rep.Dispatched,
		"backlog":    len(rep.Backlog),
		"rejected":   len(rep.Rejected),
	})
	if n := s.bus.Dropped(); n > 0 {
		s.log.Warnf("%d events dropped by slow subscribers", n)
	}
	return rep, err
}

func (s *Service) logEvent(ev eventbus.Event) {
	switch e := ev.(type) {
	case events.DispatchEvent:
		s.log.Debugf("event dispatch: call %d vehicle %d tick %d backlog=%t", e.Record.CallID, e.Record.VehicleID, e.Record.Tick, e.FromBacklog)
	case events.QueuedEvent:
		s.log.Debugf("event queued: call %d tick %d requeue=%t: %v", e.Call.ID, e.Tick, e.Requeue, e.Reason)
	case events.PromotedEvent:
		s.log.Debugf("event promoted: %d vehicles at tick %d", len(e.Vehicles), e.Tick)
	case events.RejectedEvent:
		s.log.Debugf("event rejected: call %d: %v", e.Call.ID, e.Reason)
	}
}

// Handler exposes metrics, the dispatch log and the fleet status.
func (s *Service) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())
	mux.Handle("/api/dispatch/logs", apidispatch.NewLogHandler(s.Store, s.cfg.API.Token))
	mux.Handle("/api/vehicles/status", apivehicles.NewStatusHandler(s.Status))
	mux.Handle("/api/vehicles/", apivehicles.NewKPIHandler(s.Store))
	return mux
}

// Serve exposes Handler on the configured address until ctx is canceled.
func (s *Service) Serve(ctx context.Context) error {
	s.log.Infof("serving api on %s", s.cfg.API.Addr)
	return metrics.StartServer(ctx, s.cfg.API.Addr, s.Handler())
}

// Close releases resources held by the service.
func (s *Service) Close() error {
	if s.client != nil {
		s.client.Disconnect()
	}
	s.closeSink()
	return s.Store.Close()
}

// closeSink releases sinks holding a client, such as InfluxDB.
func (s *Service) closeSink() {
	if c, ok := s.sink.(interface{ Close() }); ok {
		c.Close()
	}
}
