package storage

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/willsigmon/LeavnOfficial/interfaces"
)

// MultiSink implements interfaces.ReportSink over multiple sinks with fallback.
// Reports are stored to every available sink and fetched from the first one
// that has the report.
type MultiSink struct {
	sinks []interfaces.ReportSink
	log   *slog.Logger
}

// NewMultiSink creates a new multi-sink with fallback.
func NewMultiSink(sinks []interfaces.ReportSink, log *slog.Logger) *MultiSink {
	if log == nil {
		log = slog.Default()
	}

	return &MultiSink{
		sinks: sinks,
		log:   log,
	}
}

// Store writes the report to all available sinks. It returns the location
// reported by the first sink that succeeded, and fails only if every sink
// failed.
func (m *MultiSink) Store(ctx context.Context, name string, data []byte) (string, error) {
	start := time.Now()
	var location string
	var success bool
	var errs []error

	for _, sink := range m.sinks {
		if !sink.Available(ctx) {
			m.log.Debug("Sink unavailable", slog.String("sink_name", sink.Name()))
			continue
		}

		loc, err := sink.Store(ctx, name, data)
		if err != nil {
			errs = append(errs, fmt.Errorf("%s: %w", sink.Name(), err))
			m.log.Debug("Failed to store report to sink",
				slog.String("sink_name", sink.Name()),
				"err", err)
			continue
		}

		if !success {
			location = loc
			success = true
			m.log.Info("Successfully stored report",
				slog.String("sink_name", sink.Name()),
				slog.String("report", name),
				slog.Duration("duration", time.Since(start)))
		}
	}

	if !success {
		m.log.Error("All sinks failed to store report",
			slog.String("report", name),
			slog.Int("failed_sinks", len(errs)),
			slog.Duration("duration", time.Since(start)))
		return "", fmt.Errorf("all sinks failed to store %s: %v", name, errs)
	}

	return location, nil
}

// Fetch retrieves the report from the first sink that has it.
func (m *MultiSink) Fetch(ctx context.Context, name string) ([]byte, error) {
	start := time.Now()
	var errs []error

	for _, sink := range m.sinks {
		if !sink.Available(ctx) {
			m.log.Debug("Sink unavailable",
				slog.String("sink_name", sink.Name()),
				slog.String("report", name))
			continue
		}

		data, err := sink.Fetch(ctx, name)
		if err == nil {
			m.log.Info("Successfully fetched report",
				slog.String("sink_name", sink.Name()),
				slog.String("report", name),
				slog.Duration("duration", time.Since(start)))
			return data, nil
		}

		errs = append(errs, fmt.Errorf("%s: %w", sink.Name(), err))
		m.log.Debug("Failed to fetch report from sink",
			slog.String("sink_name", sink.Name()),
			slog.String("report", name),
			"err", err)
	}

	m.log.Error("All sinks failed to fetch report",
		slog.String("report", name),
		slog.Int("failed_sinks", len(errs)),
		slog.Duration("duration", time.Since(start)))

	return nil, fmt.Errorf("all sinks failed to fetch %s: %v", name, errs)
}

// Available checks if any underlying sink is available.
func (m *MultiSink) Available(ctx context.Context) bool {
	for _, sink := range m.sinks {
		if sink.Available(ctx) {
			return true
		}
	}
	return false
}

// Name returns the name of this sink.
func (m *MultiSink) Name() string {
	return "multi-sink"
}

// LocationURI returns the combined URI of all underlying sinks.
func (m *MultiSink) LocationURI() string {
	var locations []string
	for _, sink := range m.sinks {
		locations = append(locations, sink.LocationURI())
	}

	return "multi:[" + strings.Join(locations, ",") + "]"
}
