package graph

import (
	"context"
	"errors"
	"testing"
)

func TestRecordAccessors(t *testing.T) {
	rec := Record{"id": "n1", "hosts": int64(4), "bad": 3.5}

	if s, err := rec.String("id"); err != nil || s != "n1" {
		t.Fatalf("expected n1, got %q (%v)", s, err)
	}
	if _, err := rec.String("hosts"); err == nil {
		t.Fatalf("expected type error for non-string column")
	}
	if _, err := rec.String("missing"); err == nil {
		t.Fatalf("expected error for missing column")
	}
	if n, err := rec.Int64("hosts"); err != nil || n != 4 {
		t.Fatalf("expected 4, got %d (%v)", n, err)
	}
	if _, err := rec.Int64("bad"); err == nil {
		t.Fatalf("expected type error for float column")
	}
}

func TestMemoryClientQueuesThenResponds(t *testing.T) {
	mem := NewMemoryClient().WithResponder(func(q ExecutedQuery) (Result, error) {
		return Result{Records: []Record{{"network": q.Params["network"]}}}, nil
	})
	mem.PushReadResult(Result{Records: []Record{{"first": true}}})

	first, err := mem.ExecuteRead(context.Background(), "q1", nil)
	if err != nil || first.Records[0]["first"] != true {
		t.Fatalf("expected queued result first, got %+v (%v)", first, err)
	}
	second, err := mem.ExecuteRead(context.Background(), "q2", map[string]any{"network": "lab"})
	if err != nil || second.Records[0]["network"] != "lab" {
		t.Fatalf("expected responder result, got %+v (%v)", second, err)
	}
	if len(mem.ReadCalls()) != 2 {
		t.Fatalf("expected 2 recorded reads, got %d", len(mem.ReadCalls()))
	}
}

func TestMemoryClientErrors(t *testing.T) {
	boom := errors.New("boom")
	mem := NewMemoryClient().WithError(boom).WithConnectivityError(boom)
	if _, err := mem.ExecuteWrite(context.Background(), "q", nil); !errors.Is(err, boom) {
		t.Fatalf("expected boom, got %v", err)
	}
	if err := mem.VerifyConnectivity(context.Background()); !errors.Is(err, boom) {
		t.Fatalf("expected boom, got %v", err)
	}
	if len(mem.WriteCalls()) != 0 {
		t.Fatalf("expected failed writes not to be recorded")
	}
}
