package graph

import (
	"context"
	"database/sql"
	"errors"
	"log/slog"

	"github.com/google/uuid"
)

// MergeAlias physically merges alias_name's entity row into canonical_name's:
// relationships are rewritten to point at the canonical id (or, if the
// canonical already has an equivalent edge, the alias's claims are
// reassigned to it and the alias's relationship row is dropped), entity
// claims are reassigned, and the alias's entity row is deleted. The alias
// mapping itself survives — it now resolves straight through to a row that
// never had its own data.
func (idx *Index) MergeAlias(ctx context.Context, canonicalName, aliasName string) error {
	eventID := uuid.New().String()
	slog.Info("merge_alias starting", "event_id", eventID, "canonical", canonicalName, "alias", aliasName)

	err := idx.withWriteTx(ctx, "graph.merge_alias", func(tx *sql.Tx) error {
		canonicalID, ok, err := entityIDByNameTx(ctx, tx, canonicalName)
		if err != nil {
			return err
		}
		if !ok {
			resolved, rerr := resolveAliasTx(ctx, tx, canonicalName)
			if rerr != nil {
				return rerr
			}
			if resolved != canonicalName {
				return &EntityNotFoundError{Name: canonicalName, Hint: "it looks like you passed in an alias of " + resolved}
			}
			return &EntityNotFoundError{Name: canonicalName}
		}

		var aliasOwnerID int64
		err = tx.QueryRowContext(ctx, `SELECT entity_id FROM aliases WHERE alias = ?`, aliasName).Scan(&aliasOwnerID)
		switch {
		case errors.Is(err, sql.ErrNoRows):
			return &ValueError{Message: "'" + aliasName + "' is not an alias"}
		case err != nil:
			return err
		}
		if aliasOwnerID != canonicalID {
			return &ValueError{Message: "'" + aliasName + "' is not an alias of '" + canonicalName + "'"}
		}

		aliasID, ok, err := entityIDByNameTx(ctx, tx, aliasName)
		if err != nil {
			return err
		}
		if !ok {
			// Alias has no entity row of its own; nothing to merge.
			return nil
		}

		rows, err := tx.QueryContext(ctx, `
			SELECT id, source_id, target_id, strength, directed
			FROM relationships WHERE source_id = ? OR target_id = ?
		`, aliasID, aliasID)
		if err != nil {
			return err
		}
		type rel struct {
			id, sourceID, targetID int64
			strength               float64
			directed               bool
		}
		var rels []rel
		for rows.Next() {
			var r rel
			if err := rows.Scan(&r.id, &r.sourceID, &r.targetID, &r.strength, &r.directed); err != nil {
				rows.Close()
				return err
			}
			rels = append(rels, r)
		}
		if err := rows.Err(); err != nil {
			rows.Close()
			return err
		}
		rows.Close()

		for _, r := range rels {
			newSource, newTarget := r.sourceID, r.targetID
			if newSource == aliasID {
				newSource = canonicalID
			}
			if newTarget == aliasID {
				newTarget = canonicalID
			}

			if newSource == newTarget {
				return &RelationshipMergeConflict{Alias: aliasName, Canonical: canonicalName, Other: canonicalName}
			}

			newSource, newTarget, directedNorm := normalizePair(newSource, newTarget, r.directed)

			var existingID int64
			err := tx.QueryRowContext(ctx, `
				SELECT id FROM relationships WHERE source_id = ? AND target_id = ? AND directed = ?
			`, newSource, newTarget, directedNorm).Scan(&existingID)
			switch {
			case err == nil:
				if _, err := tx.ExecContext(ctx, `UPDATE claims SET relationship_id = ? WHERE relationship_id = ?`, existingID, r.id); err != nil {
					return err
				}
				if _, err := tx.ExecContext(ctx, `DELETE FROM relationships WHERE id = ?`, r.id); err != nil {
					return err
				}
			case errors.Is(err, sql.ErrNoRows):
				if _, err := tx.ExecContext(ctx, `
					UPDATE relationships SET source_id = ?, target_id = ?, directed = ? WHERE id = ?
				`, newSource, newTarget, directedNorm, r.id); err != nil {
					return err
				}
			default:
				return err
			}
		}

		if _, err := tx.ExecContext(ctx, `UPDATE claims SET entity_id = ? WHERE entity_id = ?`, canonicalID, aliasID); err != nil {
			return err
		}

		_, err = tx.ExecContext(ctx, `DELETE FROM entities WHERE id = ?`, aliasID)
		return err
	})

	if err != nil {
		slog.Warn("merge_alias failed", "event_id", eventID, "canonical", canonicalName, "alias", aliasName, "error", err)
	} else {
		slog.Info("merge_alias committed", "event_id", eventID, "canonical", canonicalName, "alias", aliasName)
	}
	return err
}

// MergeAllAliases merges every alias of canonicalName in turn. Each
// MergeAlias call commits in its own transaction. Under ErrorOnConflict the
// first failure stops the loop and is returned; aliases merged before it stay
// merged. Under SkipOnConflict each failure is recorded and the loop
// continues.
func (idx *Index) MergeAllAliases(ctx context.Context, canonicalName string, strategy MergeStrategy) (*MergeAllResult, error) {
	aliases, err := idx.LoadAliases(ctx, canonicalName)
	if err != nil {
		return nil, err
	}

	result := &MergeAllResult{}
	for _, alias := range aliases {
		if err := idx.MergeAlias(ctx, canonicalName, alias); err != nil {
			if strategy == ErrorOnConflict {
				return nil, err
			}
			result.Skipped = append(result.Skipped, SkippedMerge{Alias: alias, Reason: err.Error()})
			continue
		}
		result.Merged = append(result.Merged, alias)
	}
	return result, nil
}
