// Package extract implements the extraction builder: it accepts tuples from
// possibly many concurrent producers and serializes them into the graph
// index through a single writer lane, since the index itself provides no
// internal concurrency control.
package extract

import (
	"context"
	"errors"
	"log/slog"
	"sync"

	"golang.org/x/sync/errgroup"

	"github.com/nexus-kg/nexus/internal/graph"
)

// ClaimInput is the optional claim attached to a Tuple.
type ClaimInput struct {
	Content   string
	Source    *string
	ClaimDate *string
}

// Tuple is one extracted (source, relation, target) observation, optionally
// carrying a claim to attach to the resulting relationship.
type Tuple struct {
	Source   string
	Relation string
	Target   string
	Strength float64
	Directed bool
	Claim    *ClaimInput
}

// Stats tracks what a Builder's Ingest call actually did, for callers that
// want a summary rather than per-tuple errors.
type Stats struct {
	mu       sync.Mutex
	Ingested int
	Rerouted int
	Failed   int
}

func (s *Stats) recordIngested() { s.mu.Lock(); s.Ingested++; s.mu.Unlock() }
func (s *Stats) recordRerouted() { s.mu.Lock(); s.Rerouted++; s.mu.Unlock() }
func (s *Stats) recordFailed()   { s.mu.Lock(); s.Failed++; s.mu.Unlock() }

// Builder fans concurrent producers in and writes every tuple through one
// serialized lane onto idx.
type Builder struct {
	idx *graph.Index
	mu  sync.Mutex
}

// NewBuilder wraps idx for concurrent extraction ingestion.
func NewBuilder(idx *graph.Index) *Builder {
	return &Builder{idx: idx}
}

// Ingest writes every tuple from tuples, from however many producer
// goroutines are feeding it, serializing all graph writes through a single
// mutex-guarded lane. A RelationshipCollisionError on one tuple does not
// abort the batch: the claim is rerouted onto the canonical source entity
// and ingestion continues.
func (b *Builder) Ingest(ctx context.Context, tuples <-chan Tuple) (*Stats, error) {
	stats := &Stats{}
	g, gctx := errgroup.WithContext(ctx)

	const producers = 4
	for i := 0; i < producers; i++ {
		g.Go(func() error {
			for {
				select {
				case <-gctx.Done():
					return gctx.Err()
				case t, ok := <-tuples:
					if !ok {
						return nil
					}
					rerouted, err := b.ingestOne(gctx, t)
					if err != nil {
						stats.recordFailed()
						return err
					}
					if rerouted {
						stats.recordRerouted()
					}
					stats.recordIngested()
				}
			}
		})
	}

	err := g.Wait()
	return stats, err
}

func (b *Builder) ingestOne(ctx context.Context, t Tuple) (rerouted bool, err error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if _, err := b.idx.UpsertEntity(ctx, t.Source, nil); err != nil {
		return false, err
	}
	if _, err := b.idx.UpsertEntity(ctx, t.Target, nil); err != nil {
		return false, err
	}

	_, relErr := b.idx.UpsertRelationship(ctx, t.Source, t.Target, t.Strength, t.Directed)
	var collision *graph.RelationshipCollisionError
	if errors.As(relErr, &collision) {
		slog.Warn("extraction: relationship collision, rerouting claim to source entity",
			"source", t.Source, "target", t.Target)
		if t.Claim != nil {
			_, cerr := b.idx.UpsertClaim(ctx, t.Claim.Content, t.Claim.Source, graph.EntityOwner(t.Source), t.Claim.ClaimDate)
			return true, cerr
		}
		return true, nil
	}
	if relErr != nil {
		return false, relErr
	}

	if t.Claim != nil {
		owner := graph.RelationshipOwner(t.Source, t.Target, t.Strength, t.Directed)
		if _, err := b.idx.UpsertClaim(ctx, t.Claim.Content, t.Claim.Source, owner, t.Claim.ClaimDate); err != nil {
			return false, err
		}
	}

	return false, nil
}
