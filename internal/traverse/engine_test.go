package traverse

import (
	"context"
	"testing"

	"github.com/nexus-kg/nexus/internal/db"
	"github.com/nexus-kg/nexus/internal/graph"
)

func newTestEngine(t *testing.T) (*graph.Index, *Engine) {
	t.Helper()
	h, err := db.Open(":memory:")
	if err != nil {
		t.Fatalf("open test db: %v", err)
	}
	t.Cleanup(func() { h.Close() })
	idx := graph.New(h)

	ctx := context.Background()
	if _, err := idx.UpsertRelationship(ctx, "A", "B", 0.9, false); err != nil {
		t.Fatalf("upsert A-B: %v", err)
	}
	if _, err := idx.UpsertRelationship(ctx, "B", "C", 0.5, true); err != nil {
		t.Fatalf("upsert B-C: %v", err)
	}

	e, err := NewEngine(ctx, idx)
	if err != nil {
		t.Fatalf("new engine: %v", err)
	}
	return idx, e
}

func TestNeighborsUndirectedBothWays(t *testing.T) {
	_, e := newTestEngine(t)
	if !e.HasNode("A") || !e.HasNode("B") || !e.HasNode("C") {
		t.Fatalf("expected all three nodes present")
	}
	aNbrs := e.Neighbors("A")
	if len(aNbrs) != 1 || aNbrs[0].Name != "B" {
		t.Fatalf("expected A->B, got %+v", aNbrs)
	}
	bNbrs := e.Neighbors("B")
	if len(bNbrs) != 2 {
		t.Fatalf("expected B to see both A (undirected) and C (directed out), got %+v", bNbrs)
	}
	cNbrs := e.Neighbors("C")
	if len(cNbrs) != 0 {
		t.Fatalf("expected C to have no outgoing edges (directed B->C only), got %+v", cNbrs)
	}
}

func TestBFSReachability(t *testing.T) {
	_, e := newTestEngine(t)
	reached := e.BFS("A", 2)
	set := map[string]bool{}
	for _, n := range reached {
		set[n] = true
	}
	if !set["B"] || !set["C"] {
		t.Fatalf("expected A to reach B and C within 2 hops, got %v", reached)
	}
}

func TestWalkMultiplicative(t *testing.T) {
	_, e := newTestEngine(t)
	scores := e.Walk("A", 2)
	if scores["B"] != 0.9 {
		t.Fatalf("expected A->B score 0.9, got %v", scores["B"])
	}
	if scores["C"] != 0.45 {
		t.Fatalf("expected A->B->C score 0.45, got %v", scores["C"])
	}
}

func TestShortestPath(t *testing.T) {
	_, e := newTestEngine(t)
	path, _, err := e.ShortestPath("A", "C")
	if err != nil {
		t.Fatalf("shortest path: %v", err)
	}
	want := []string{"A", "B", "C"}
	if len(path) != len(want) {
		t.Fatalf("got %v, want %v", path, want)
	}
	for i := range want {
		if path[i] != want[i] {
			t.Fatalf("got %v, want %v", path, want)
		}
	}
}

func TestShortestPathUnreachable(t *testing.T) {
	_, e := newTestEngine(t)
	_, _, err := e.ShortestPath("C", "A")
	if err == nil {
		t.Fatalf("expected error: C has no outgoing edges to reach A")
	}
}

func TestClaimsForEntityDelegates(t *testing.T) {
	idx, e := newTestEngine(t)
	ctx := context.Background()
	if _, err := idx.UpsertClaim(ctx, "fact about A", nil, graph.EntityOwner("A"), nil); err != nil {
		t.Fatalf("upsert claim: %v", err)
	}
	claims, err := e.ClaimsForEntity(ctx, "A")
	if err != nil {
		t.Fatalf("claims for entity: %v", err)
	}
	if len(claims) != 1 {
		t.Fatalf("expected 1 claim, got %d", len(claims))
	}
}
