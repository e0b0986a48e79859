package graph

import (
	"context"
	"database/sql"
	"fmt"
)

// DeleteEntity deletes a canonical entity and, if cascade, everything that
// references it. name must already be canonical; passing an alias is
// refused with a *DeletionConflict* pointing at the canonical.
//
// With cascade=false the delete is refused if the canonical (or any of its
// alias-entities) has relationships, or if the canonical has direct claims.
// With cascade=true only relationships keyed on the canonical id itself are
// removed — relationships belonging to alias-entities are left untouched,
// matching the source implementation's asymmetry.
func (idx *Index) DeleteEntity(ctx context.Context, name string, cascade bool) error {
	return idx.withWriteTx(ctx, "graph.delete_entity", func(tx *sql.Tx) error {
		canonical, err := resolveAliasTx(ctx, tx, name)
		if err != nil {
			return err
		}
		if name != canonical {
			return &DeletionConflict{Message: fmt.Sprintf(
				"cannot delete: %q is an alias of %q. delete the canonical entity %q instead, "+
					"or delete the %q alias from %q before proceeding",
				name, canonical, canonical, name, canonical,
			)}
		}

		canonicalID, ok, err := entityIDByNameTx(ctx, tx, canonical)
		if err != nil {
			return err
		}
		if !ok {
			return &EntityNotFoundError{Name: canonical}
		}

		expandedIDs, _, err := expandIDsTx(ctx, tx, canonical)
		if err != nil {
			return err
		}

		relCount, err := countRelationshipsTouching(ctx, tx, expandedIDs)
		if err != nil {
			return err
		}
		var claimCount int
		if err := tx.QueryRowContext(ctx, `SELECT COUNT(*) FROM claims WHERE entity_id = ?`, canonicalID).Scan(&claimCount); err != nil {
			return err
		}

		if !cascade {
			switch {
			case relCount > 0 && claimCount > 0:
				return &DeletionConflict{Message: fmt.Sprintf(
					"entity %q has %d relationships and %d claims. use cascade=true or clean up manually", canonical, relCount, claimCount)}
			case relCount > 0:
				return &DeletionConflict{Message: fmt.Sprintf(
					"entity %q has %d relationships. use cascade=true or clean up manually", canonical, relCount)}
			case claimCount > 0:
				return &DeletionConflict{Message: fmt.Sprintf(
					"entity %q has %d claims. use cascade=true or clean up manually", canonical, claimCount)}
			}
		}

		rows, err := tx.QueryContext(ctx, `SELECT id FROM relationships WHERE source_id = ? OR target_id = ?`, canonicalID, canonicalID)
		if err != nil {
			return err
		}
		var relIDs []int64
		for rows.Next() {
			var id int64
			if err := rows.Scan(&id); err != nil {
				rows.Close()
				return err
			}
			relIDs = append(relIDs, id)
		}
		if err := rows.Err(); err != nil {
			rows.Close()
			return err
		}
		rows.Close()

		for _, relID := range relIDs {
			if _, err := tx.ExecContext(ctx, `DELETE FROM claims WHERE relationship_id = ?`, relID); err != nil {
				return err
			}
			if _, err := tx.ExecContext(ctx, `DELETE FROM relationships WHERE id = ?`, relID); err != nil {
				return err
			}
		}

		if _, err := tx.ExecContext(ctx, `DELETE FROM claims WHERE entity_id = ?`, canonicalID); err != nil {
			return err
		}
		if _, err := tx.ExecContext(ctx, `DELETE FROM aliases WHERE entity_id = ?`, canonicalID); err != nil {
			return err
		}
		_, err = tx.ExecContext(ctx, `DELETE FROM entities WHERE id = ?`, canonicalID)
		return err
	})
}

func countRelationshipsTouching(ctx context.Context, tx *sql.Tx, ids []int64) (int, error) {
	if len(ids) == 0 {
		return 0, nil
	}
	ph, args := in(ids)
	args = append(args, args...)
	var count int
	err := tx.QueryRowContext(ctx, `
		SELECT COUNT(*) FROM relationships WHERE source_id IN (`+ph+`) OR target_id IN (`+ph+`)
	`, args...).Scan(&count)
	return count, err
}

// DeleteRelationship removes every relationship row matching source/target
// under the given directedness (nil means both), across each side's
// alias-expanded family. A match set of zero rows is a silent no-op. With
// cascade=false, the delete is refused if any matched row has claims.
func (idx *Index) DeleteRelationship(ctx context.Context, source, target string, directed *bool, cascade bool) error {
	return idx.withWriteTx(ctx, "graph.delete_relationship", func(tx *sql.Tx) error {
		srcCanonical, err := resolveAliasTx(ctx, tx, source)
		if err != nil {
			return err
		}
		tgtCanonical, err := resolveAliasTx(ctx, tx, target)
		if err != nil {
			return err
		}
		if srcCanonical == tgtCanonical {
			return &RelationshipCollisionError{Source: source, Target: target}
		}

		relIDs, err := gatherDirectedRelIDs(ctx, tx, srcCanonical, tgtCanonical, directed)
		if err != nil {
			return err
		}
		if len(relIDs) == 0 {
			return nil
		}

		if !cascade {
			ph, args := in(relIDs)
			var claimCount int
			if err := tx.QueryRowContext(ctx, `SELECT COUNT(*) FROM claims WHERE relationship_id IN (`+ph+`)`, args...).Scan(&claimCount); err != nil {
				return err
			}
			if claimCount > 0 {
				return &DeletionConflict{Message: fmt.Sprintf(
					"relationship between %q and %q has %d claims. use cascade=true or clean up manually",
					srcCanonical, tgtCanonical, claimCount)}
			}
		}

		ph, args := in(relIDs)
		if _, err := tx.ExecContext(ctx, `DELETE FROM claims WHERE relationship_id IN (`+ph+`)`, args...); err != nil {
			return err
		}
		_, err = tx.ExecContext(ctx, `DELETE FROM relationships WHERE id IN (`+ph+`)`, args...)
		return err
	})
}

// DeleteAlias removes one alias mapping (not the alias's own entity row, if
// it has one). entityName must be canonical; alias must currently map to it.
func (idx *Index) DeleteAlias(ctx context.Context, entityName, alias string) error {
	return idx.withWriteTx(ctx, "graph.delete_alias", func(tx *sql.Tx) error {
		canonical, err := resolveAliasTx(ctx, tx, entityName)
		if err != nil {
			return err
		}
		if canonical != entityName {
			return &DeletionConflict{Message: fmt.Sprintf("cannot delete alias: %q is an alias of %q", entityName, canonical)}
		}

		entityID, ok, err := entityIDByNameTx(ctx, tx, entityName)
		if err != nil {
			return err
		}
		if !ok {
			return &EntityNotFoundError{Name: entityName}
		}

		var mappingEntityID, mappingID int64
		err = tx.QueryRowContext(ctx, `SELECT entity_id, id FROM aliases WHERE alias = ?`, alias).Scan(&mappingEntityID, &mappingID)
		if err != nil {
			if err == sql.ErrNoRows {
				return &AliasConflictError{Kind: AliasConflictAlreadyMapped, Entity: entityName, Alias: alias, Owner: "<unmapped>"}
			}
			return err
		}
		if mappingEntityID != entityID {
			var otherName string
			if err := tx.QueryRowContext(ctx, `SELECT name FROM entities WHERE id = ?`, mappingEntityID).Scan(&otherName); err != nil {
				return err
			}
			return &AliasConflictError{Kind: AliasConflictAlreadyMapped, Entity: entityName, Alias: alias, Owner: otherName}
		}

		_, err = tx.ExecContext(ctx, `DELETE FROM aliases WHERE id = ?`, mappingID)
		return err
	})
}

// DeleteClaim removes claims matching filter. Claims are leaves: there is no
// cascade flag. A filter that matches nothing is a silent no-op.
func (idx *Index) DeleteClaim(ctx context.Context, filter ClaimFilter) error {
	hasCriterion := filter.ClaimID != nil || filter.EntityName != "" || filter.Content != "" ||
		filter.Source != "" || (filter.DateFrom != "" && filter.DateTo != "") ||
		(filter.RelationshipSource != "" && filter.RelationshipTarget != "")
	if !hasCriterion {
		return &ValueError{Message: "must provide at least one filter criterion"}
	}

	return idx.withWriteTx(ctx, "graph.delete_claim", func(tx *sql.Tx) error {
		var clauses []string
		var args []any

		addEntityClause := func(name string) (bool, error) {
			canonical, err := resolveAliasTx(ctx, tx, name)
			if err != nil {
				return false, err
			}
			id, ok, err := entityIDByNameTx(ctx, tx, canonical)
			if err != nil || !ok {
				return false, err
			}
			clauses = append(clauses, "entity_id = ?")
			args = append(args, id)
			return true, nil
		}

		addRelationshipClause := func() (bool, error) {
			ids, err := gatherDirectedRelIDs(ctx, tx, filter.RelationshipSource, filter.RelationshipTarget, filter.Directed)
			if err != nil {
				return false, err
			}
			if len(ids) == 0 {
				return false, nil
			}
			ph, idArgs := in(ids)
			clauses = append(clauses, "relationship_id IN ("+ph+")")
			args = append(args, idArgs...)
			return true, nil
		}

		switch filter.Mode {
		case FilterByEntity:
			if filter.EntityName == "" {
				return nil
			}
			matched, err := addEntityClause(filter.EntityName)
			if err != nil || !matched {
				return err
			}

		case FilterByRelationship:
			if filter.RelationshipSource == "" || filter.RelationshipTarget == "" {
				return nil
			}
			matched, err := addRelationshipClause()
			if err != nil || !matched {
				return err
			}

		case FilterBySource:
			if filter.Source == "" {
				return nil
			}
			clauses = append(clauses, "source = ?")
			args = append(args, filter.Source)

		case FilterByDate:
			if filter.DateFrom == "" || filter.DateTo == "" {
				return nil
			}
			clauses = append(clauses, "date_added BETWEEN ? AND ?")
			args = append(args, filter.DateFrom, filter.DateTo)

		case FilterByContent:
			if filter.Content == "" {
				return nil
			}
			clauses = append(clauses, "content = ?")
			args = append(args, filter.Content)

		case FilterExact:
			if filter.ClaimID != nil {
				clauses = append(clauses, "id = ?")
				args = append(args, *filter.ClaimID)
			}
			if filter.EntityName != "" {
				matched, err := addEntityClause(filter.EntityName)
				if err != nil || !matched {
					return err
				}
			}
			if filter.RelationshipSource != "" && filter.RelationshipTarget != "" {
				matched, err := addRelationshipClause()
				if err != nil || !matched {
					return err
				}
			}
			if filter.Content != "" {
				clauses = append(clauses, "content = ?")
				args = append(args, filter.Content)
			}
			if filter.Source != "" {
				clauses = append(clauses, "source = ?")
				args = append(args, filter.Source)
			}
			if filter.DateFrom != "" && filter.DateTo != "" {
				clauses = append(clauses, "date_added BETWEEN ? AND ?")
				args = append(args, filter.DateFrom, filter.DateTo)
			}

		default:
			return &ValueError{Message: "unsupported delete_claim mode"}
		}

		if len(clauses) == 0 {
			return nil
		}

		query := "DELETE FROM claims WHERE " + clauses[0]
		for _, c := range clauses[1:] {
			query += " AND " + c
		}
		_, err := tx.ExecContext(ctx, query, args...)
		return err
	})
}

// Drop removes every row from all four tables, resetting the graph to
// empty. There is no cascade guard: this is an unconditional wipe.
func (idx *Index) Drop(ctx context.Context) error {
	return idx.withWriteTx(ctx, "graph.drop", func(tx *sql.Tx) error {
		for _, table := range []string{"claims", "relationships", "aliases", "entities"} {
			if _, err := tx.ExecContext(ctx, "DELETE FROM "+table); err != nil {
				return err
			}
		}
		return nil
	})
}
