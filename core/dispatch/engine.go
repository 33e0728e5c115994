package dispatch

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/kilianp07/ambulance-dispatch/core/backlog"
	"github.com/kilianp07/ambulance-dispatch/core/dispatch/logging"
	"github.com/kilianp07/ambulance-dispatch/core/events"
	"github.com/kilianp07/ambulance-dispatch/core/fleet"
	"github.com/kilianp07/ambulance-dispatch/core/logger"
	"github.com/kilianp07/ambulance-dispatch/core/metrics"
	"github.com/kilianp07/ambulance-dispatch/core/model"
	"github.com/kilianp07/ambulance-dispatch/core/roadnet"
	"github.com/kilianp07/ambulance-dispatch/core/vehiclestatus"
	"github.com/kilianp07/ambulance-dispatch/internal/eventbus"
)

// Inputs are the data a simulation run is built from.
type Inputs struct {
	Network  roadnet.Network
	Stations model.StationAssignment
	// Fleet maps every vehicle to the station it starts at.
	Fleet map[model.VehicleID]model.NodeID
	Calls []model.EmergencyCall
}

// RejectedCall is a call refused at ingestion.
type RejectedCall struct {
	Call   model.EmergencyCall `json:"call"`
	Reason string              `json:"reason"`
	Err    error               `json:"-"`
}

// Stats is a point-in-time accounting of the run.
type Stats struct {
	Tick        int
	Ingested    int
	Dispatched  int
	Backlog     int
	Rejected    int
	Available   int
	Unavailable int
}

// Engine drives the tick loop of one simulation. It owns its fleet and
// backlog and is not safe for concurrent use; independent engines may run in
// parallel.
type Engine struct {
	cfg      Config
	network  roadnet.Network
	stations model.StationAssignment
	fleet    *fleet.State
	backlog  *backlog.Backlog
	selector *Selector
	log      logger.Logger

	// calls holds the whole call source ordered by (arrival, id); reasons
	// holds the rejection cause of malformed calls at the same index.
	calls   []model.EmergencyCall
	reasons []error
	cursor  int

	tick       int
	ingested   int
	dispatched int
	records    []model.DispatchRecord
	rejected   []RejectedCall
	failed     error

	store    logging.LogStore
	sink     metrics.MetricsSink
	bus      eventbus.EventBus
	notifier Notifier
	status   vehiclestatus.Store
	now      func() time.Time
}

// NewEngine validates the inputs and creates an engine at tick 0.
//
// Data-integrity failures are returned here, before any dispatch: an invalid
// station table or fleet, and accepted calls whose hospital has no station
// assignment (ErrUnknownHospitalStation). Malformed calls are not fatal; they
// are rejected when their arrival tick is reached.
func NewEngine(in Inputs, cfg Config, log logger.Logger) (*Engine, error) {
	if in.Network == nil {
		return nil, errors.New("dispatch: nil road network")
	}
	if log == nil {
		return nil, errors.New("dispatch: nil logger")
	}
	if err := validateStations(in.Network, in.Stations); err != nil {
		return nil, err
	}
	if err := validateFleet(in.Network, in.Fleet); err != nil {
		return nil, err
	}
	fs, err := fleet.New(in.Fleet, in.Stations)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidFleet, err)
	}

	calls := append([]model.EmergencyCall(nil), in.Calls...)
	sort.SliceStable(calls, func(i, j int) bool { return calls[i].Before(calls[j]) })
	reasons := make([]error, len(calls))
	seen := make(map[int]bool, len(calls))
	missing := map[model.NodeID]bool{}
	for i := range calls {
		calls[i].Status = model.CallPending
		c := calls[i]
		if reason := checkCall(in.Network, c, seen); reason != nil {
			reasons[i] = malformed(c.ID, reason)
			continue
		}
		if _, ok := in.Stations.Lookup(c.Hospital); !ok {
			missing[c.Hospital] = true
		}
	}
	if len(missing) > 0 {
		ids := make([]string, 0, len(missing))
		for h := range missing {
			ids = append(ids, string(h))
		}
		sort.Strings(ids)
		return nil, fmt.Errorf("%w: %s", ErrUnknownHospitalStation, strings.Join(ids, ", "))
	}

	return &Engine{
		cfg:      cfg,
		network:  in.Network,
		stations: in.Stations,
		fleet:    fs,
		backlog:  backlog.New(),
		selector: NewSelector(in.Network, log),
		log:      log,
		calls:    calls,
		reasons:  reasons,
		sink:     metrics.NopSink{},
		now:      time.Now,
	}, nil
}

func validateStations(network roadnet.Network, stations model.StationAssignment) error {
	if err := stations.Validate(); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidStations, err)
	}
	for _, h := range stations.Hospitals() {
		entry := stations[h]
		if !network.HasNode(h) {
			return fmt.Errorf("%w: hospital %s: %w", ErrInvalidStations, h, roadnet.ErrUnknownNode)
		}
		if !network.HasNode(entry.Station) {
			return fmt.Errorf("%w: station %s: %w", ErrInvalidStations, entry.Station, roadnet.ErrUnknownNode)
		}
	}
	return nil
}

func validateFleet(network roadnet.Network, initial map[model.VehicleID]model.NodeID) error {
	if len(initial) == 0 {
		return fmt.Errorf("%w: %w", ErrInvalidFleet, fleet.ErrEmptyFleet)
	}
	for id, node := range initial {
		if !network.HasNode(node) {
			return fmt.Errorf("%w: vehicle %d at %s: %w", ErrInvalidFleet, id, node, roadnet.ErrUnknownNode)
		}
	}
	return nil
}

// checkCall returns why c is malformed, or nil.
func checkCall(network roadnet.Network, c model.EmergencyCall, seen map[int]bool) error {
	if seen[c.ID] {
		return fmt.Errorf("duplicate call id %d", c.ID)
	}
	seen[c.ID] = true
	if err := c.Validate(); err != nil {
		return err
	}
	if !network.HasNode(c.Patient) {
		return fmt.Errorf("patient %s: %w", c.Patient, roadnet.ErrUnknownNode)
	}
	if !network.HasNode(c.Hospital) {
		return fmt.Errorf("hospital %s: %w", c.Hospital, roadnet.ErrUnknownNode)
	}
	return nil
}

// SetLogStore configures the store used to persist dispatch logs.
func (e *Engine) SetLogStore(store logging.LogStore) { e.store = store }

// SetMetrics configures the sink receiving dispatch, tick and rejection
// events. A nil sink disables recording.
func (e *Engine) SetMetrics(sink metrics.MetricsSink) {
	if sink == nil {
		sink = metrics.NopSink{}
	}
	e.sink = sink
}

// SetBus configures the bus on which engine events are published.
func (e *Engine) SetBus(bus eventbus.EventBus) { e.bus = bus }

// SetNotifier configures the notifier told about every dispatch.
func (e *Engine) SetNotifier(n Notifier) { e.notifier = n }

// SetStatusStore configures the store used to persist vehicle status information.
func (e *Engine) SetStatusStore(store vehiclestatus.Store) {
	e.status = store
	if store == nil {
		return
	}
	for _, v := range e.fleet.Snapshot() {
		store.Update(v)
	}
}

// Tick runs one simulation step: promote returned vehicles, ingest the calls
// arriving now, drain the backlog, then advance the clock. A returned error
// is fatal and every later call returns it again.
func (e *Engine) Tick(ctx context.Context) error {
	if e.failed != nil {
		return e.failed
	}
	e.promote()
	if err := e.ingest(ctx); err != nil {
		e.failed = err
		return err
	}
	if err := e.drain(ctx); err != nil {
		e.failed = err
		return err
	}
	e.recordTick()
	e.tick++
	return nil
}

// Run ticks until every call has been ingested and the backlog is empty. It
// stops early when ctx is done or after Config.MaxTicks ticks, in which case
// ErrTickLimit is returned and the backlog still holds the unserved calls.
func (e *Engine) Run(ctx context.Context) error {
	e.log.Infof("run %s started with %d vehicles and %d calls", e.cfg.RunID, e.fleet.Size(), len(e.calls))
	for !e.Done() {
		if err := ctx.Err(); err != nil {
			return err
		}
		if e.cfg.MaxTicks > 0 && e.tick >= e.cfg.MaxTicks {
			e.log.Warnf("run %s stopped at tick %d with %d calls in backlog", e.cfg.RunID, e.tick, e.backlog.Len())
			return fmt.Errorf("%w: %d calls in backlog after %d ticks", ErrTickLimit, e.backlog.Len(), e.tick)
		}
		if err := e.Tick(ctx); err != nil {
			return err
		}
	}
	e.log.Infof("run %s finished after %d ticks: %d dispatched, %d rejected", e.cfg.RunID, e.tick, e.dispatched, len(e.rejected))
	return nil
}

// Done reports whether every call has been ingested and the backlog is
// empty.
func (e *Engine) Done() bool {
	return e.cursor == len(e.calls) && e.backlog.IsEmpty()
}

func (e *Engine) promote() {
	promoted := e.fleet.PromoteDue(e.tick)
	if len(promoted) == 0 {
		return
	}
	for _, v := range promoted {
		e.log.Debugf("vehicle %d available at %s", v.ID, v.Location)
		if e.status != nil {
			e.status.Update(v)
		}
	}
	e.publish(events.PromotedEvent{Tick: e.tick, Vehicles: promoted})
}

func (e *Engine) ingest(ctx context.Context) error {
	for e.cursor < len(e.calls) && e.calls[e.cursor].ArrivalTick <= e.tick {
		c, reason := e.calls[e.cursor], e.reasons[e.cursor]
		e.cursor++
		if reason != nil {
			e.reject(c, reason)
			continue
		}
		e.ingested++
		served, why, err := e.attempt(ctx, c, false)
		if err != nil {
			return err
		}
		if !served {
			c.Status = model.CallQueued
			e.backlog.Push(backlog.Entry{Call: c})
			e.log.Warnf("call %d queued at tick %d: %v", c.ID, e.tick, why)
			e.publish(events.QueuedEvent{Tick: e.tick, Call: c, Reason: why})
		}
	}
	return nil
}

// drain retries backlog entries in key order while vehicles are Available.
// The first entry that still cannot be served goes back with the same key
// and ends the drain for this tick.
func (e *Engine) drain(ctx context.Context) error {
	for !e.backlog.IsEmpty() && e.fleet.AvailableCount() > 0 {
		entry, _ := e.backlog.Pop()
		served, why, err := e.attempt(ctx, entry.Call, true)
		if err != nil {
			return err
		}
		if served {
			continue
		}
		entry.Attempts++
		e.backlog.Push(entry)
		backlogRequeues.Inc()
		e.log.Debugf("call %d re-queued at tick %d after %d attempts: %v", entry.Call.ID, e.tick, entry.Attempts, why)
		e.publish(events.QueuedEvent{Tick: e.tick, Call: entry.Call, Reason: why, Requeue: true})
		break
	}
	return nil
}

// attempt tries to serve c. When no vehicle can serve it now, served is
// false and why tells the recoverable cause. err is only set for fatal
// failures.
func (e *Engine) attempt(ctx context.Context, c model.EmergencyCall, fromBacklog bool) (served bool, why error, err error) {
	sel, err := e.selector.Select(c.Patient, c.Hospital, e.fleet.Available())
	switch {
	case errors.Is(err, ErrNoAmbulanceAvailable):
		dispatchAttempts.WithLabelValues("no_ambulance").Inc()
		return false, err, nil
	case errors.Is(err, ErrNotFound):
		dispatchAttempts.WithLabelValues("not_found").Inc()
		return false, err, nil
	case err != nil:
		return false, nil, fmt.Errorf("call %d: %w", c.ID, err)
	}
	e.log.Debugw("vehicle selected", map[string]any{
		"call_id":    c.ID,
		"vehicle_id": int(sel.VehicleID),
		"total_cost": sel.TotalCost(),
	})
	v, err := e.fleet.MarkUnavailable(sel.VehicleID, c.Hospital, sel.CostToPatient, e.tick)
	if err != nil {
		return false, nil, fmt.Errorf("call %d: %w", c.ID, err)
	}
	rec := model.DispatchRecord{
		Tick:          e.tick,
		VehicleID:     v.ID,
		CallID:        c.ID,
		Patient:       c.Patient,
		Hospital:      c.Hospital,
		CostToPatient: sel.CostToPatient,
		AvailableAt:   v.AvailableAt,
		Station:       v.Station,
	}
	c.Status = model.CallDispatched
	e.records = append(e.records, rec)
	e.dispatched++
	dispatchAttempts.WithLabelValues("dispatched").Inc()
	costToPatient.Observe(sel.CostToPatient)
	e.afterDispatch(ctx, c, rec, v, fromBacklog)
	return true, nil, nil
}

// afterDispatch feeds the dispatch to the optional collaborators. Their
// failures are logged and never change the run.
func (e *Engine) afterDispatch(ctx context.Context, c model.EmergencyCall, rec model.DispatchRecord, v model.Vehicle, fromBacklog bool) {
	e.log.Infow("dispatch", map[string]any{
		"tick":            rec.Tick,
		"vehicle_id":      int(rec.VehicleID),
		"call_id":         rec.CallID,
		"patient":         string(rec.Patient),
		"hospital":        string(rec.Hospital),
		"cost_to_patient": rec.CostToPatient,
		"available_at":    rec.AvailableAt,
	})
	now := e.now()
	if e.store != nil {
		lr := logging.LogRecord{RunID: e.cfg.RunID, Timestamp: now, DispatchRecord: rec}
		if err := e.store.Append(ctx, lr); err != nil {
			e.log.Errorf("dispatch log store error: %v", err)
		}
	}
	if e.notifier != nil {
		if err := e.notifier.NotifyDispatch(ctx, rec); err != nil {
			e.log.Errorf("notify vehicle %d: %v", rec.VehicleID, err)
		}
	}
	if e.status != nil {
		e.status.Update(v)
		e.status.RecordDispatch(v.ID, vehiclestatus.LastDispatch{
			CallID:        rec.CallID,
			Tick:          rec.Tick,
			Patient:       rec.Patient,
			Hospital:      rec.Hospital,
			CostToPatient: rec.CostToPatient,
		})
	}
	ev := metrics.DispatchEvent{
		RunID:         e.cfg.RunID,
		Tick:          rec.Tick,
		VehicleID:     rec.VehicleID,
		CallID:        rec.CallID,
		Patient:       rec.Patient,
		Hospital:      rec.Hospital,
		CostToPatient: rec.CostToPatient,
		Wait:          rec.Tick - c.ArrivalTick,
		Time:          now,
	}
	if err := e.sink.RecordDispatch([]metrics.DispatchEvent{ev}); err != nil {
		e.log.Errorf("metrics error: %v", err)
	}
	e.publish(events.DispatchEvent{Record: rec, Call: c, FromBacklog: fromBacklog})
}

func (e *Engine) reject(c model.EmergencyCall, reason error) {
	c.Status = model.CallRejected
	e.rejected = append(e.rejected, RejectedCall{Call: c, Reason: reason.Error(), Err: reason})
	rejectedCalls.Inc()
	e.log.Warnf("rejected at tick %d: %v", e.tick, reason)
	if rr, ok := e.sink.(metrics.RejectionRecorder); ok {
		ev := metrics.RejectedCallEvent{RunID: e.cfg.RunID, CallID: c.ID, Reason: reason.Error(), Time: e.now()}
		if err := rr.RecordRejectedCall(ev); err != nil {
			e.log.Errorf("rejection metrics error: %v", err)
		}
	}
	e.publish(events.RejectedEvent{Call: c, Reason: reason})
}

func (e *Engine) recordTick() {
	st := e.Stats()
	backlogLength.Set(float64(st.Backlog))
	availableFleet.Set(float64(st.Available))
	if tr, ok := e.sink.(metrics.TickRecorder); ok {
		snap := metrics.TickSnapshot{
			RunID:       e.cfg.RunID,
			Tick:        st.Tick,
			Available:   st.Available,
			Unavailable: st.Unavailable,
			Backlog:     st.Backlog,
			Ingested:    st.Ingested,
			Dispatched:  st.Dispatched,
			Time:        e.now(),
		}
		if err := tr.RecordTick(snap); err != nil {
			e.log.Errorf("tick metrics error: %v", err)
		}
	}
}

func (e *Engine) publish(ev eventbus.Event) {
	if e.bus != nil {
		e.bus.Publish(ev)
	}
}

// CurrentTick returns the tick the next call to Tick will run.
func (e *Engine) CurrentTick() int { return e.tick }

// Stats returns the current accounting. Ingested always equals Dispatched
// plus Backlog.
func (e *Engine) Stats() Stats {
	return Stats{
		Tick:        e.tick,
		Ingested:    e.ingested,
		Dispatched:  e.dispatched,
		Backlog:     e.backlog.Len(),
		Rejected:    len(e.rejected),
		Available:   e.fleet.AvailableCount(),
		Unavailable: len(e.fleet.Unavailable()),
	}
}

// Log returns a copy of the dispatch log in dispatch order.
func (e *Engine) Log() []model.DispatchRecord {
	return append([]model.DispatchRecord(nil), e.records...)
}

// Fleet returns every vehicle ordered by identifier.
func (e *Engine) Fleet() []model.Vehicle { return e.fleet.Snapshot() }

// Backlog returns the queued calls in drain order.
func (e *Engine) Backlog() []model.EmergencyCall { return e.backlog.Calls() }

// Rejected returns the calls refused so far.
func (e *Engine) Rejected() []RejectedCall {
	return append([]RejectedCall(nil), e.rejected...)
}
