package simulation

import (
	"log/slog"
	"sync"
	"sync/atomic"

	"github.com/vanshika/wormsim/internal/domain"
)

// Reporter receives a progress event after every round. Implementations must
// not block the propagation loop.
type Reporter interface {
	Report(domain.Progress)
}

// ReporterFunc adapts a function to the Reporter interface.
type ReporterFunc func(domain.Progress)

func (f ReporterFunc) Report(p domain.Progress) { f(p) }

// NopReporter discards every event.
type NopReporter struct{}

func (NopReporter) Report(domain.Progress) {}

// ChannelReporter forwards events into a buffered channel. When the buffer is
// full the event is dropped and counted instead of blocking the run.
type ChannelReporter struct {
	events  chan domain.Progress
	dropped atomic.Int64
	once    sync.Once
}

// NewChannelReporter returns a reporter with the given buffer size.
func NewChannelReporter(buffer int) *ChannelReporter {
	if buffer <= 0 {
		buffer = 64
	}
	return &ChannelReporter{events: make(chan domain.Progress, buffer)}
}

func (r *ChannelReporter) Report(p domain.Progress) {
	select {
	case r.events <- p:
	default:
		r.dropped.Add(1)
	}
}

// Events exposes the receive side of the buffer.
func (r *ChannelReporter) Events() <-chan domain.Progress {
	return r.events
}

// Dropped returns how many events were discarded on a full buffer.
func (r *ChannelReporter) Dropped() int64 {
	return r.dropped.Load()
}

// Close closes the event channel. Report must not be called afterwards.
func (r *ChannelReporter) Close() {
	r.once.Do(func() { close(r.events) })
}

// LogReporter writes progress through slog: every Nth round at debug level and
// the terminal round at info.
type LogReporter struct {
	logger *slog.Logger
	every  int
}

// NewLogReporter builds a LogReporter; every <= 0 logs each round.
func NewLogReporter(logger *slog.Logger, every int) *LogReporter {
	if every <= 0 {
		every = 1
	}
	return &LogReporter{logger: logger, every: every}
}

func (r *LogReporter) Report(p domain.Progress) {
	attrs := []any{
		"round", p.Round,
		"infected", p.InfectedCount,
		"inoculated", p.InoculatedCount,
		"new_infections", p.NewInfections,
		"new_inoculations", p.NewInoculations,
	}
	if p.Terminal {
		r.logger.Info("terminal round", attrs...)
		return
	}
	if p.Round%r.every == 0 {
		r.logger.Debug("round complete", attrs...)
	}
}

// MultiReporter fans events out to several reporters in order.
type MultiReporter []Reporter

func (m MultiReporter) Report(p domain.Progress) {
	for _, r := range m {
		r.Report(p)
	}
}
