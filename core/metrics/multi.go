package metrics

// MultiSink fanouts dispatch events to multiple sinks.
type MultiSink struct {
	Sinks []MetricsSink
}

// NewMultiSink creates a MultiSink with the provided sinks.
func NewMultiSink(sinks ...MetricsSink) *MultiSink {
	return &MultiSink{Sinks: sinks}
}

// RecordDispatch forwards the events to all sinks, returning the first error encountered.
func (m *MultiSink) RecordDispatch(evs []DispatchEvent) error {
	for _, s := range m.Sinks {
		if err := s.RecordDispatch(evs); err != nil {
			return err
		}
	}
	return nil
}

// RecordTick forwards tick snapshots when supported by the sink.
func (m *MultiSink) RecordTick(snap TickSnapshot) error {
	for _, s := range m.Sinks {
		if rec, ok := s.(TickRecorder); ok {
			if err := rec.RecordTick(snap); err != nil {
				return err
			}
		}
	}
	return nil
}

// RecordRejectedCall forwards rejected calls when supported by the sink.
func (m *MultiSink) RecordRejectedCall(ev RejectedCallEvent) error {
	for _, s := range m.Sinks {
		if rec, ok := s.(RejectionRecorder); ok {
			if err := rec.RecordRejectedCall(ev); err != nil {
				return err
			}
		}
	}
	return nil
}

// RecordQueued forwards backlog activity when supported by the sink.
func (m *MultiSink) RecordQueued(ev QueuedCallEvent) error {
	for _, s := range m.Sinks {
		if rec, ok := s.(QueueRecorder); ok {
			if err := rec.RecordQueued(ev); err != nil {
				return err
			}
		}
	}
	return nil
}

// Close releases sinks holding resources, such as the Influx client.
func (m *MultiSink) Close() {
	for _, s := range m.Sinks {
		if c, ok := s.(interface{ Close() }); ok {
			c.Close()
		}
	}
}
