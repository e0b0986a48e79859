package graph

import (
	"context"
	"database/sql"
	"errors"
)

// ResolveAlias returns the canonical name for n: if n is a registered alias,
// the canonical entity's name; else if n is itself an entity name, n; else n
// verbatim (neither alias nor yet an entity).
func (idx *Index) ResolveAlias(ctx context.Context, name string) (string, error) {
	var result string
	err := idx.withReadTx(ctx, "graph.resolve_alias", func(tx *sql.Tx) error {
		r, err := resolveAliasTx(ctx, tx, name)
		result = r
		return err
	})
	return result, err
}

func resolveAliasTx(ctx context.Context, tx *sql.Tx, name string) (string, error) {
	var entityID int64
	err := tx.QueryRowContext(ctx, `SELECT entity_id FROM aliases WHERE alias = ?`, name).Scan(&entityID)
	switch {
	case err == nil:
		var canonicalName string
		if err := tx.QueryRowContext(ctx, `SELECT name FROM entities WHERE id = ?`, entityID).Scan(&canonicalName); err != nil {
			return "", err
		}
		return canonicalName, nil
	case errors.Is(err, sql.ErrNoRows):
		// fall through to entity lookup
	default:
		return "", err
	}

	var entityName string
	err = tx.QueryRowContext(ctx, `SELECT name FROM entities WHERE name = ?`, name).Scan(&entityName)
	switch {
	case err == nil:
		return entityName, nil
	case errors.Is(err, sql.ErrNoRows):
		return name, nil
	default:
		return "", err
	}
}

func entityIDByNameTx(ctx context.Context, tx *sql.Tx, name string) (int64, bool, error) {
	var id int64
	err := tx.QueryRowContext(ctx, `SELECT id FROM entities WHERE name = ?`, name).Scan(&id)
	switch {
	case err == nil:
		return id, true, nil
	case errors.Is(err, sql.ErrNoRows):
		return 0, false, nil
	default:
		return 0, false, err
	}
}

// expandIDsTx returns {canonical_id} ∪ {ids of entities whose name is listed
// as an alias of the canonical}. Requires the canonical to exist, else
// *EntityNotFoundError.
func expandIDsTx(ctx context.Context, tx *sql.Tx, name string) (ids []int64, canonical string, err error) {
	canonical, err = resolveAliasTx(ctx, tx, name)
	if err != nil {
		return nil, "", err
	}
	canonicalID, ok, err := entityIDByNameTx(ctx, tx, canonical)
	if err != nil {
		return nil, "", err
	}
	if !ok {
		return nil, "", &EntityNotFoundError{Name: canonical}
	}
	ids = []int64{canonicalID}

	rows, err := tx.QueryContext(ctx, `SELECT alias FROM aliases WHERE entity_id = ?`, canonicalID)
	if err != nil {
		return nil, "", err
	}
	defer rows.Close()

	var aliasNames []string
	for rows.Next() {
		var alias string
		if err := rows.Scan(&alias); err != nil {
			return nil, "", err
		}
		aliasNames = append(aliasNames, alias)
	}
	if err := rows.Err(); err != nil {
		return nil, "", err
	}

	for _, aliasName := range aliasNames {
		id, ok, err := entityIDByNameTx(ctx, tx, aliasName)
		if err != nil {
			return nil, "", err
		}
		if ok {
			ids = append(ids, id)
		}
	}
	return ids, canonical, nil
}

// normalizePair orders (source, target) so undirected edges always satisfy
// source_id < target_id (I7). Directed edges are never reordered.
func normalizePair(source, target int64, directed bool) (int64, int64, bool) {
	if !directed && source > target {
		return target, source, false
	}
	return source, target, directed
}

func in(ids []int64) (string, []any) {
	placeholders := make([]byte, 0, len(ids)*2)
	args := make([]any, len(ids))
	for i, id := range ids {
		if i > 0 {
			placeholders = append(placeholders, ',')
		}
		placeholders = append(placeholders, '?')
		args[i] = id
	}
	return string(placeholders), args
}

// relationshipIDsAliasExpandedTx returns relationship ids matching the
// directedness rules of §4.4 between the alias-expanded families of src and
// tgt. Returns an empty slice (not an error) if either side has no canonical
// entity yet.
func relationshipIDsAliasExpandedTx(ctx context.Context, tx *sql.Tx, srcName, tgtName string, directed bool) ([]int64, error) {
	srcCanonical, err := resolveAliasTx(ctx, tx, srcName)
	if err != nil {
		return nil, err
	}
	tgtCanonical, err := resolveAliasTx(ctx, tx, tgtName)
	if err != nil {
		return nil, err
	}

	srcIDs, _, err := expandIDsTx(ctx, tx, srcCanonical)
	if err != nil {
		var nf *EntityNotFoundError
		if errors.As(err, &nf) {
			return nil, nil
		}
		return nil, err
	}
	tgtIDs, _, err := expandIDsTx(ctx, tx, tgtCanonical)
	if err != nil {
		var nf *EntityNotFoundError
		if errors.As(err, &nf) {
			return nil, nil
		}
		return nil, err
	}

	srcPH, srcArgs := in(srcIDs)
	tgtPH, tgtArgs := in(tgtIDs)

	var query string
	var args []any
	if directed {
		query = `SELECT id FROM relationships WHERE directed = 1 AND source_id IN (` + srcPH + `) AND target_id IN (` + tgtPH + `)`
		args = append(append(args, srcArgs...), tgtArgs...)
	} else {
		query = `SELECT id FROM relationships WHERE directed = 0 AND (
			(source_id IN (` + srcPH + `) AND target_id IN (` + tgtPH + `))
			OR
			(source_id IN (` + tgtPH + `) AND target_id IN (` + srcPH + `))
		)`
		args = append(args, srcArgs...)
		args = append(args, tgtArgs...)
		args = append(args, tgtArgs...)
		args = append(args, srcArgs...)
	}

	rows, err := tx.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var ids []int64
	for rows.Next() {
		var id int64
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}

// hasRelationshipBetweenTx reports whether any relationship row connects the
// alias-expanded families of entity1 and entity2, in either direction.
func hasRelationshipBetweenTx(ctx context.Context, tx *sql.Tx, entity1, entity2 string) (bool, error) {
	ids, err := relationshipIDsAliasExpandedTx(ctx, tx, entity1, entity2, false)
	if err != nil {
		return false, err
	}
	if len(ids) > 0 {
		return true, nil
	}
	ids, err = relationshipIDsAliasExpandedTx(ctx, tx, entity1, entity2, true)
	if err != nil {
		return false, err
	}
	if len(ids) > 0 {
		return true, nil
	}
	ids, err = relationshipIDsAliasExpandedTx(ctx, tx, entity2, entity1, true)
	if err != nil {
		return false, err
	}
	return len(ids) > 0, nil
}
