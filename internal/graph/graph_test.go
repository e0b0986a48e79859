package graph

import (
	"context"
	"errors"
	"testing"

	"github.com/nexus-kg/nexus/internal/db"
)

// newTestIndex opens a fresh in-memory graph for a single test.
func newTestIndex(t *testing.T) *Index {
	t.Helper()
	h, err := db.Open(":memory:")
	if err != nil {
		t.Fatalf("open test db: %v", err)
	}
	t.Cleanup(func() { h.Close() })
	return New(h)
}

func ctx() context.Context { return context.Background() }

func strp(s string) *string { return &s }

func TestUpsertEntityIdempotent(t *testing.T) {
	idx := newTestIndex(t)
	id1, err := idx.UpsertEntity(ctx(), "Alice", strp("person"))
	if err != nil {
		t.Fatalf("upsert: %v", err)
	}
	id2, err := idx.UpsertEntity(ctx(), "Alice", nil)
	if err != nil {
		t.Fatalf("upsert again: %v", err)
	}
	if id1 != id2 {
		t.Fatalf("expected same id, got %d and %d", id1, id2)
	}
}

func TestUpsertAliasSelfConflict(t *testing.T) {
	idx := newTestIndex(t)
	if _, err := idx.UpsertEntity(ctx(), "Alice", nil); err != nil {
		t.Fatalf("upsert entity: %v", err)
	}
	_, err := idx.UpsertAlias(ctx(), "Alice", "Alice")
	var conflict *AliasConflictError
	if !errors.As(err, &conflict) || conflict.Kind != AliasConflictSelf {
		t.Fatalf("expected self alias conflict, got %v", err)
	}
}

func TestUpsertAliasTransitiveConflict(t *testing.T) {
	idx := newTestIndex(t)
	if _, err := idx.UpsertAlias(ctx(), "Alice", "Ally"); err != nil {
		t.Fatalf("upsert alias: %v", err)
	}
	_, err := idx.UpsertAlias(ctx(), "Ally", "Al")
	var conflict *AliasConflictError
	if !errors.As(err, &conflict) || conflict.Kind != AliasConflictTransitive {
		t.Fatalf("expected transitive alias conflict, got %v", err)
	}
}

func TestUpsertAliasAlreadyMapped(t *testing.T) {
	idx := newTestIndex(t)
	if _, err := idx.UpsertAlias(ctx(), "Alice", "Ally"); err != nil {
		t.Fatalf("upsert alias: %v", err)
	}
	if _, err := idx.UpsertEntity(ctx(), "Bob", nil); err != nil {
		t.Fatalf("upsert entity: %v", err)
	}
	_, err := idx.UpsertAlias(ctx(), "Bob", "Ally")
	var conflict *AliasConflictError
	if !errors.As(err, &conflict) || conflict.Kind != AliasConflictAlreadyMapped {
		t.Fatalf("expected already-mapped conflict, got %v", err)
	}
	if conflict.Owner != "Alice" {
		t.Fatalf("expected owner Alice, got %q", conflict.Owner)
	}
}

func TestUpsertAliasRelationshipCollision(t *testing.T) {
	idx := newTestIndex(t)
	if _, err := idx.UpsertRelationship(ctx(), "Alice", "Bob", 1.0, false); err != nil {
		t.Fatalf("upsert relationship: %v", err)
	}
	_, err := idx.UpsertAlias(ctx(), "Alice", "Bob")
	var collision *RelationshipCollisionError
	if !errors.As(err, &collision) {
		t.Fatalf("expected relationship collision, got %v", err)
	}
}

func TestUpsertRelationshipSelfCollision(t *testing.T) {
	idx := newTestIndex(t)
	_, err := idx.UpsertRelationship(ctx(), "Alice", "Alice", 1.0, false)
	var collision *RelationshipCollisionError
	if !errors.As(err, &collision) {
		t.Fatalf("expected self collision, got %v", err)
	}
}

func TestUpsertRelationshipNormalizesUndirected(t *testing.T) {
	idx := newTestIndex(t)
	id1, err := idx.UpsertRelationship(ctx(), "Zeta", "Alpha", 0.5, false)
	if err != nil {
		t.Fatalf("upsert: %v", err)
	}
	id2, err := idx.UpsertRelationship(ctx(), "Alpha", "Zeta", 0.9, false)
	if err != nil {
		t.Fatalf("upsert reversed: %v", err)
	}
	if id1 != id2 {
		t.Fatalf("expected undirected edge to normalize to same row, got %d and %d", id1, id2)
	}
	recs, err := idx.LoadRelationships(ctx(), "Alpha", nil, nil)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if len(recs) != 1 || recs[0].Strength != 0.9 {
		t.Fatalf("expected single updated edge, got %+v", recs)
	}
}

func TestUpsertClaimRequiresOwner(t *testing.T) {
	idx := newTestIndex(t)
	_, err := idx.UpsertClaim(ctx(), "some fact", nil, ClaimOwner{}, nil)
	var ve *ValueError
	if !errors.As(err, &ve) {
		t.Fatalf("expected ValueError, got %v", err)
	}
}

func TestUpsertClaimOnRelationshipPreservesStrength(t *testing.T) {
	idx := newTestIndex(t)
	if _, err := idx.UpsertRelationship(ctx(), "Alice", "Bob", 0.8, true); err != nil {
		t.Fatalf("upsert relationship: %v", err)
	}
	if _, err := idx.UpsertClaim(ctx(), "met at a conference", nil, RelationshipOwner("Alice", "Bob", 0.8, true), nil); err != nil {
		t.Fatalf("upsert claim: %v", err)
	}
	recs, err := idx.LoadRelationships(ctx(), "Alice", nil, nil)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if len(recs) != 1 || recs[0].Strength != 0.8 {
		t.Fatalf("expected strength preserved at 0.8, got %+v", recs)
	}
}

func TestParseClaimDateRejectsGarbage(t *testing.T) {
	idx := newTestIndex(t)
	_, err := idx.UpsertClaim(ctx(), "fact", nil, EntityOwner("Alice"), strp("not-a-date-at-all-zz"))
	var ve *ValueError
	if !errors.As(err, &ve) {
		t.Fatalf("expected ValueError for unparsable date, got %v", err)
	}
}

func TestLoadAliasesSorted(t *testing.T) {
	idx := newTestIndex(t)
	for _, alias := range []string{"Zed", "Ally", "Mid"} {
		if _, err := idx.UpsertAlias(ctx(), "Alice", alias); err != nil {
			t.Fatalf("upsert alias %s: %v", alias, err)
		}
	}
	aliases, err := idx.LoadAliases(ctx(), "Alice")
	if err != nil {
		t.Fatalf("load aliases: %v", err)
	}
	want := []string{"Ally", "Mid", "Zed"}
	if len(aliases) != len(want) {
		t.Fatalf("got %v, want %v", aliases, want)
	}
	for i := range want {
		if aliases[i] != want[i] {
			t.Fatalf("got %v, want %v", aliases, want)
		}
	}
}

func TestDeleteEntityAliasRefused(t *testing.T) {
	idx := newTestIndex(t)
	if _, err := idx.UpsertAlias(ctx(), "Alice", "Ally"); err != nil {
		t.Fatalf("upsert alias: %v", err)
	}
	err := idx.DeleteEntity(ctx(), "Ally", true)
	var conflict *DeletionConflict
	if !errors.As(err, &conflict) {
		t.Fatalf("expected deletion conflict, got %v", err)
	}
}

func TestDeleteEntityNoCascadeGuards(t *testing.T) {
	idx := newTestIndex(t)
	if _, err := idx.UpsertRelationship(ctx(), "Alice", "Bob", 1.0, false); err != nil {
		t.Fatalf("upsert relationship: %v", err)
	}
	err := idx.DeleteEntity(ctx(), "Alice", false)
	var conflict *DeletionConflict
	if !errors.As(err, &conflict) {
		t.Fatalf("expected deletion conflict due to relationship, got %v", err)
	}
}

func TestDeleteEntityCascadeOnlyTouchesCanonicalRelationships(t *testing.T) {
	idx := newTestIndex(t)
	// give the alias-entity its own relationship, outside the canonical's.
	// Both are created before the alias mapping: once "Ally" is an alias,
	// UpsertRelationship would resolve it to "Alice".
	if _, err := idx.UpsertEntity(ctx(), "Ally", nil); err != nil {
		t.Fatalf("upsert alias entity: %v", err)
	}
	if _, err := idx.UpsertRelationship(ctx(), "Ally", "Carol", 1.0, false); err != nil {
		t.Fatalf("upsert relationship via alias entity: %v", err)
	}
	if _, err := idx.UpsertAlias(ctx(), "Alice", "Ally"); err != nil {
		t.Fatalf("upsert alias: %v", err)
	}
	if err := idx.DeleteEntity(ctx(), "Alice", true); err != nil {
		t.Fatalf("delete entity: %v", err)
	}
	recs, err := idx.DumpAllRelationships(ctx())
	if err != nil {
		t.Fatalf("dump relationships: %v", err)
	}
	if len(recs) != 1 || recs[0].SourceName != "Ally" || recs[0].TargetName != "Carol" {
		t.Fatalf("expected Carol's relationship (via alias-entity) to survive canonical delete, got %+v", recs)
	}
}

func TestDeleteRelationshipIdempotent(t *testing.T) {
	idx := newTestIndex(t)
	if err := idx.DeleteRelationship(ctx(), "Ghost", "Other", nil, true); err != nil {
		t.Fatalf("expected no-op delete to succeed, got %v", err)
	}
}

func TestDeleteAliasOwnershipMismatch(t *testing.T) {
	idx := newTestIndex(t)
	if _, err := idx.UpsertAlias(ctx(), "Alice", "Ally"); err != nil {
		t.Fatalf("upsert alias: %v", err)
	}
	if _, err := idx.UpsertEntity(ctx(), "Bob", nil); err != nil {
		t.Fatalf("upsert entity: %v", err)
	}
	err := idx.DeleteAlias(ctx(), "Bob", "Ally")
	var conflict *AliasConflictError
	if !errors.As(err, &conflict) {
		t.Fatalf("expected alias conflict, got %v", err)
	}
}

func TestMergeAliasMovesRelationshipsAndClaims(t *testing.T) {
	idx := newTestIndex(t)
	// The alias-entity's relationship and claim are created before the alias
	// mapping: once "Ally" is an alias, UpsertRelationship would resolve it
	// to "Alice" and there would be nothing left to migrate.
	if _, err := idx.UpsertEntity(ctx(), "Ally", nil); err != nil {
		t.Fatalf("upsert alias entity: %v", err)
	}
	if _, err := idx.UpsertRelationship(ctx(), "Ally", "Carol", 0.7, false); err != nil {
		t.Fatalf("upsert relationship: %v", err)
	}
	if _, err := idx.UpsertClaim(ctx(), "was seen with Carol", nil, EntityOwner("Ally"), nil); err != nil {
		t.Fatalf("upsert claim: %v", err)
	}
	if _, err := idx.UpsertAlias(ctx(), "Alice", "Ally"); err != nil {
		t.Fatalf("upsert alias: %v", err)
	}

	if err := idx.MergeAlias(ctx(), "Alice", "Ally"); err != nil {
		t.Fatalf("merge alias: %v", err)
	}

	recs, err := idx.LoadRelationships(ctx(), "Alice", nil, nil)
	if err != nil {
		t.Fatalf("load relationships: %v", err)
	}
	if len(recs) != 1 {
		t.Fatalf("expected relationship migrated to Alice, got %+v", recs)
	}

	claims, err := idx.LoadEntityClaims(ctx(), "Alice")
	if err != nil {
		t.Fatalf("load claims: %v", err)
	}
	if len(claims) != 1 {
		t.Fatalf("expected claim migrated to Alice, got %+v", claims)
	}

	exists, err := idx.EntityExists(ctx(), "Ally")
	if err != nil {
		t.Fatalf("entity exists: %v", err)
	}
	if exists {
		t.Fatalf("expected alias entity row to be deleted after merge")
	}
}

func TestMergeAllAliasesSkipStrategy(t *testing.T) {
	idx := newTestIndex(t)
	if _, err := idx.UpsertAlias(ctx(), "Alice", "Ally"); err != nil {
		t.Fatalf("upsert alias: %v", err)
	}
	if _, err := idx.UpsertAlias(ctx(), "Alice", "Al"); err != nil {
		t.Fatalf("upsert alias: %v", err)
	}

	result, err := idx.MergeAllAliases(ctx(), "Alice", SkipOnConflict)
	if err != nil {
		t.Fatalf("merge all: %v", err)
	}
	if len(result.Merged) != 2 {
		t.Fatalf("expected both aliases merged (neither has entity rows), got %+v", result)
	}
}

func TestDeleteClaimRequiresCriterion(t *testing.T) {
	idx := newTestIndex(t)
	err := idx.DeleteClaim(ctx(), ClaimFilter{Mode: FilterExact})
	var ve *ValueError
	if !errors.As(err, &ve) {
		t.Fatalf("expected ValueError, got %v", err)
	}
}

func TestDeleteClaimByEntityNoOpOnMissingEntity(t *testing.T) {
	idx := newTestIndex(t)
	err := idx.DeleteClaim(ctx(), ClaimFilter{Mode: FilterByEntity, EntityName: "Nobody"})
	if err != nil {
		t.Fatalf("expected no-op, got %v", err)
	}
}

func TestDeleteClaimByContent(t *testing.T) {
	idx := newTestIndex(t)
	if _, err := idx.UpsertClaim(ctx(), "likes coffee", nil, EntityOwner("Alice"), nil); err != nil {
		t.Fatalf("upsert claim: %v", err)
	}
	if err := idx.DeleteClaim(ctx(), ClaimFilter{Mode: FilterByContent, Content: "likes coffee"}); err != nil {
		t.Fatalf("delete claim: %v", err)
	}
	claims, err := idx.LoadEntityClaims(ctx(), "Alice")
	if err != nil {
		t.Fatalf("load claims: %v", err)
	}
	if len(claims) != 0 {
		t.Fatalf("expected claim deleted, got %+v", claims)
	}
}

func TestDrop(t *testing.T) {
	idx := newTestIndex(t)
	if _, err := idx.UpsertRelationship(ctx(), "Alice", "Bob", 1.0, false); err != nil {
		t.Fatalf("upsert relationship: %v", err)
	}
	if err := idx.Drop(ctx()); err != nil {
		t.Fatalf("drop: %v", err)
	}
	names, err := idx.ListAllEntities(ctx())
	if err != nil {
		t.Fatalf("list entities: %v", err)
	}
	if len(names) != 0 {
		t.Fatalf("expected empty graph after drop, got %v", names)
	}
}

func TestGetEntityReturnsFullRecord(t *testing.T) {
	idx := newTestIndex(t)
	if _, err := idx.UpsertEntity(ctx(), "Alice", strp("person")); err != nil {
		t.Fatalf("upsert entity: %v", err)
	}
	e, err := idx.GetEntity(ctx(), "Alice")
	if err != nil {
		t.Fatalf("get entity: %v", err)
	}
	if e.Name != "Alice" || e.EntityType == nil || *e.EntityType != "person" || e.DateAdded == "" {
		t.Fatalf("unexpected entity record: %+v", e)
	}

	if _, err := idx.GetEntity(ctx(), "Nobody"); err == nil {
		t.Fatalf("expected error for unknown entity")
	} else {
		var nf *EntityNotFoundError
		if !errors.As(err, &nf) {
			t.Fatalf("expected EntityNotFoundError, got %v", err)
		}
	}
}

func TestGetAliasRecordReturnsFullRecord(t *testing.T) {
	idx := newTestIndex(t)
	entityID, err := idx.UpsertEntity(ctx(), "Alice", nil)
	if err != nil {
		t.Fatalf("upsert entity: %v", err)
	}
	if _, err := idx.UpsertAlias(ctx(), "Alice", "Ally"); err != nil {
		t.Fatalf("upsert alias: %v", err)
	}

	a, err := idx.GetAliasRecord(ctx(), "Ally")
	if err != nil {
		t.Fatalf("get alias record: %v", err)
	}
	if a.Alias != "Ally" || a.EntityID != entityID || a.DateAdded == "" {
		t.Fatalf("unexpected alias record: %+v", a)
	}

	if _, err := idx.GetAliasRecord(ctx(), "Nobody"); err == nil {
		t.Fatalf("expected error for unmapped alias")
	} else {
		var ve *ValueError
		if !errors.As(err, &ve) {
			t.Fatalf("expected ValueError, got %v", err)
		}
	}
}
