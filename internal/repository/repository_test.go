package repository

import (
	"context"
	"errors"
	"reflect"
	"testing"

	"github.com/vanshika/wormsim/internal/domain"
	"github.com/vanshika/wormsim/internal/graph"
)

func TestEdgeRepository_ImportEdges(t *testing.T) {
	mem := graph.NewMemoryClient()
	repo := New(mem)

	edges := []domain.Edge{{Source: "A", Target: "B"}, {Source: "B", Target: "C"}}
	if err := repo.ImportEdges(context.Background(), " lab ", edges); err != nil {
		t.Fatalf("expected no error, got %v", err)
	}

	calls := mem.WriteCalls()
	if len(calls) != 1 {
		t.Fatalf("expected 1 write query, got %d", len(calls))
	}
	call := calls[0]
	if call.Query != importEdgesCypher {
		t.Fatalf("unexpected query\nexpected:\n%s\ngot:\n%s", importEdgesCypher, call.Query)
	}
	if call.Params["network"] != "lab" {
		t.Errorf("expected trimmed network name, got %v", call.Params["network"])
	}
	params, ok := call.Params["edges"].([]map[string]any)
	if !ok {
		t.Fatalf("expected edge params slice, got %T", call.Params["edges"])
	}
	if len(params) != 2 || params[1]["source"] != "B" || params[1]["target"] != "C" {
		t.Fatalf("unexpected edge params %v", params)
	}
}

func TestEdgeRepository_ImportEmptyBatch(t *testing.T) {
	mem := graph.NewMemoryClient()
	if err := New(mem).ImportEdges(context.Background(), "lab", nil); err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if len(mem.WriteCalls()) != 0 {
		t.Fatalf("expected no query for an empty batch")
	}
}

func TestEdgeRepository_RequiresNetworkName(t *testing.T) {
	repo := New(graph.NewMemoryClient())
	if err := repo.ImportEdges(context.Background(), "  ", []domain.Edge{{Source: "A", Target: "B"}}); !errors.Is(err, domain.ErrConfiguration) {
		t.Fatalf("expected ErrConfiguration, got %v", err)
	}
	if _, err := repo.LoadEdges(context.Background(), ""); !errors.Is(err, domain.ErrConfiguration) {
		t.Fatalf("expected ErrConfiguration, got %v", err)
	}
}

func TestEdgeRepository_LoadEdges(t *testing.T) {
	mem := graph.NewMemoryClient()
	mem.PushReadResult(graph.Result{Records: []graph.Record{
		{"source": "A", "target": "B"},
		{"source": "B", "target": "C"},
	}})
	repo := New(mem)

	edges, err := repo.LoadEdges(context.Background(), "lab")
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	want := []domain.Edge{{Source: "A", Target: "B"}, {Source: "B", Target: "C"}}
	if !reflect.DeepEqual(edges, want) {
		t.Fatalf("expected %v, got %v", want, edges)
	}

	reads := mem.ReadCalls()
	if len(reads) != 1 || reads[0].Query != loadEdgesCypher || reads[0].Params["network"] != "lab" {
		t.Fatalf("unexpected read calls %+v", reads)
	}
}

func TestEdgeRepository_LoadEdgesMissingNetwork(t *testing.T) {
	repo := New(graph.NewMemoryClient())
	if _, err := repo.LoadEdges(context.Background(), "ghost"); !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestEdgeRepository_LoadEdgesBadRecord(t *testing.T) {
	mem := graph.NewMemoryClient()
	mem.PushReadResult(graph.Result{Records: []graph.Record{{"source": "A", "target": int64(2)}}})
	if _, err := New(mem).LoadEdges(context.Background(), "lab"); !errors.Is(err, domain.ErrInputFormat) {
		t.Fatalf("expected ErrInputFormat, got %v", err)
	}
}

func TestEdgeRepository_CountAndDelete(t *testing.T) {
	mem := graph.NewMemoryClient()
	mem.PushReadResult(graph.Result{Records: []graph.Record{{"hosts": int64(12)}}})
	repo := New(mem)

	n, err := repo.CountHosts(context.Background(), "lab")
	if err != nil || n != 12 {
		t.Fatalf("expected 12 hosts, got %d (%v)", n, err)
	}
	if err := repo.DeleteNetwork(context.Background(), "lab"); err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if err := repo.EnsureSchema(context.Background()); err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	calls := mem.WriteCalls()
	if len(calls) != 2 || calls[0].Query != deleteNetworkCypher || calls[1].Query != ensureConstraintCypher {
		t.Fatalf("unexpected writes %+v", calls)
	}
}

func TestEdgeRepository_PropagatesClientErrors(t *testing.T) {
	boom := errors.New("bolt down")
	repo := New(graph.NewMemoryClient().WithError(boom))
	if err := repo.ImportEdges(context.Background(), "lab", []domain.Edge{{Source: "A", Target: "B"}}); !errors.Is(err, boom) {
		t.Fatalf("expected client error, got %v", err)
	}
}
