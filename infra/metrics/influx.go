package metrics

import (
	"context"
	"math"
	"net/http"
	"strconv"
	"strings"
	"time"

	influxdb2 "github.com/influxdata/influxdb-client-go/v2"
	"github.com/influxdata/influxdb-client-go/v2/api"
	"github.com/influxdata/influxdb-client-go/v2/api/write"

	"github.com/kilianp07/ambulance-dispatch/core/logger"
	coremetrics "github.com/kilianp07/ambulance-dispatch/core/metrics"
	infralogger "github.com/kilianp07/ambulance-dispatch/infra/logger"
)

// InfluxConfig configures the InfluxDB sink.
type InfluxConfig struct {
	URL    string `json:"url"`
	Token  string `json:"token"`
	Org    string `json:"org"`
	Bucket string `json:"bucket"`
}

// InfluxSink writes dispatch activity to an InfluxDB instance using the official client.
type InfluxSink struct {
	client   influxdb2.Client
	writeAPI api.WriteAPIBlocking
	log      logger.Logger
}

// NewInfluxSink creates a new sink configured for the given InfluxDB endpoint.
func NewInfluxSink(cfg InfluxConfig) *InfluxSink {
	base := strings.TrimSuffix(cfg.URL, "/api/v2/write")
	client := influxdb2.NewClientWithOptions(base, cfg.Token,
		influxdb2.DefaultOptions().SetHTTPClient(&http.Client{Timeout: 5 * time.Second}))
	return &InfluxSink{
		client:   client,
		writeAPI: client.WriteAPIBlocking(cfg.Org, cfg.Bucket),
		log:      infralogger.New("influx-sink"),
	}
}

// NewInfluxSinkWithFallback tries to ping the InfluxDB instance and
// returns a NopSink if the health check fails.
func NewInfluxSinkWithFallback(cfg InfluxConfig) coremetrics.MetricsSink {
	sink := NewInfluxSink(cfg)
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	health, err := sink.client.Health(ctx)
	if err != nil || health.Status != "pass" {
		if err != nil {
			sink.log.Errorf("influx health check error: %v", err)
		} else {
			sink.log.Errorf("influx health status: %s", health.Status)
		}
		sink.client.Close()
		return coremetrics.NopSink{}
	}
	return sink
}

// Close releases the client resources.
func (s *InfluxSink) Close() { s.client.Close() }

func (s *InfluxSink) write(p *write.Point) error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return s.writeAPI.WritePoint(ctx, p)
}

// RecordDispatch writes one dispatch_event point per dispatch.
func (s *InfluxSink) RecordDispatch(evs []coremetrics.DispatchEvent) error {
	for _, e := range evs {
		p := write.NewPointWithMeasurement("dispatch_event").
			AddTag("run_id", e.RunID).
			AddTag("vehicle_id", strconv.Itoa(int(e.VehicleID))).
			AddTag("hospital", string(e.Hospital)).
			AddField("call_id", e.CallID).
			AddField("tick", e.Tick).
			AddField("cost_to_patient", round3(e.CostToPatient)).
			AddField("wait_ticks", e.Wait).
			SetTime(e.Time)
		if err := s.write(p); err != nil {
			return err
		}
	}
	return nil
}

// RecordTick writes the fleet and backlog state at the end of a tick.
func (s *InfluxSink) RecordTick(snap coremetrics.TickSnapshot) error {
	p := write.NewPointWithMeasurement("tick_snapshot").
		AddTag("run_id", snap.RunID).
		AddField("tick", snap.Tick).
		AddField("available", snap.Available).
		AddField("unavailable", snap.Unavailable).
		AddField("backlog", snap.Backlog).
		AddField("ingested", snap.Ingested).
		AddField("dispatched", snap.Dispatched).
		SetTime(snap.Time)
	return s.write(p)
}

// RecordQueued writes a call_queued point.
func (s *InfluxSink) RecordQueued(ev coremetrics.QueuedCallEvent) error {
	p := write.NewPointWithMeasurement("call_queued").
		AddTag("run_id", ev.RunID).
		AddTag("requeue", strconv.FormatBool(ev.Requeue)).
		AddField("call_id", ev.CallID).
		AddField("tick", ev.Tick).
		AddField("reason", ev.Reason).
		SetTime(ev.Time)
	return s.write(p)
}

// RecordRejectedCall writes a call_rejected point.
func (s *InfluxSink) RecordRejectedCall(ev coremetrics.RejectedCallEvent) error {
	p := write.NewPointWithMeasurement("call_rejected").
		AddTag("run_id", ev.RunID).
		AddField("call_id", ev.CallID).
		AddField("reason", ev.Reason).
		SetTime(ev.Time)
	return s.write(p)
}

func round3(f float64) float64 {
	return math.Round(f*1000) / 1000
}
