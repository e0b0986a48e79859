package extract

import (
	"context"
	"testing"

	"github.com/nexus-kg/nexus/internal/db"
	"github.com/nexus-kg/nexus/internal/graph"
)

func newTestBuilder(t *testing.T) (*graph.Index, *Builder) {
	t.Helper()
	h, err := db.Open(":memory:")
	if err != nil {
		t.Fatalf("open test db: %v", err)
	}
	t.Cleanup(func() { h.Close() })
	idx := graph.New(h)
	return idx, NewBuilder(idx)
}

func TestIngestBasicTuples(t *testing.T) {
	idx, b := newTestBuilder(t)
	ctx := context.Background()

	tuples := make(chan Tuple, 4)
	tuples <- Tuple{Source: "Alice", Relation: "knows", Target: "Bob", Strength: 0.8, Directed: true}
	tuples <- Tuple{Source: "Carol", Relation: "knows", Target: "Dave", Strength: 0.6, Directed: false,
		Claim: &ClaimInput{Content: "met in college"}}
	close(tuples)

	stats, err := b.Ingest(ctx, tuples)
	if err != nil {
		t.Fatalf("ingest: %v", err)
	}
	if stats.Ingested != 2 {
		t.Fatalf("expected 2 ingested, got %d", stats.Ingested)
	}

	names, err := idx.ListAllEntities(ctx)
	if err != nil {
		t.Fatalf("list entities: %v", err)
	}
	if len(names) != 4 {
		t.Fatalf("expected 4 entities, got %v", names)
	}

	claims, err := idx.LoadRelationshipClaims(ctx, "Carol", "Dave", nil)
	if err != nil {
		t.Fatalf("load claims: %v", err)
	}
	if len(claims) != 1 {
		t.Fatalf("expected 1 claim on Carol-Dave, got %d", len(claims))
	}
}

func TestIngestReroutesOnCollision(t *testing.T) {
	idx, b := newTestBuilder(t)
	ctx := context.Background()

	if _, err := idx.UpsertAlias(ctx, "Alice", "Ally"); err != nil {
		t.Fatalf("upsert alias: %v", err)
	}

	tuples := make(chan Tuple, 1)
	tuples <- Tuple{
		Source: "Alice", Relation: "alias_of", Target: "Ally", Strength: 1.0, Directed: false,
		Claim: &ClaimInput{Content: "same person"},
	}
	close(tuples)

	stats, err := b.Ingest(ctx, tuples)
	if err != nil {
		t.Fatalf("ingest: %v", err)
	}
	if stats.Rerouted != 1 {
		t.Fatalf("expected 1 reroute, got %d", stats.Rerouted)
	}

	claims, err := idx.LoadEntityClaims(ctx, "Alice")
	if err != nil {
		t.Fatalf("load claims: %v", err)
	}
	if len(claims) != 1 {
		t.Fatalf("expected claim rerouted onto Alice, got %d", len(claims))
	}
}
