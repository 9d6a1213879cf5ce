package simulation

import (
	"bytes"
	"log/slog"
	"strings"
	"testing"

	"github.com/vanshika/wormsim/internal/domain"
)

func TestChannelReporterDropsWhenFull(t *testing.T) {
	r := NewChannelReporter(2)
	for i := 1; i <= 5; i++ {
		r.Report(domain.Progress{Round: i})
	}
	r.Close()

	var rounds []int
	for p := range r.Events() {
		rounds = append(rounds, p.Round)
	}
	if len(rounds) != 2 || rounds[0] != 1 || rounds[1] != 2 {
		t.Fatalf("expected first two rounds buffered, got %v", rounds)
	}
	if r.Dropped() != 3 {
		t.Fatalf("expected 3 dropped events, got %d", r.Dropped())
	}
}

func TestLogReporter(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug}))
	r := NewLogReporter(logger, 2)

	r.Report(domain.Progress{Round: 1})
	r.Report(domain.Progress{Round: 2})
	r.Report(domain.Progress{Round: 3, Terminal: true})

	out := buf.String()
	if strings.Count(out, "round complete") != 1 {
		t.Fatalf("expected one throttled debug line, got:\n%s", out)
	}
	if !strings.Contains(out, "terminal round") {
		t.Fatalf("expected terminal line, got:\n%s", out)
	}
}

func TestMultiReporter(t *testing.T) {
	var a, b int
	m := MultiReporter{
		ReporterFunc(func(domain.Progress) { a++ }),
		ReporterFunc(func(domain.Progress) { b++ }),
	}
	m.Report(domain.Progress{})
	if a != 1 || b != 1 {
		t.Fatalf("expected both reporters called once, got %d and %d", a, b)
	}
}
