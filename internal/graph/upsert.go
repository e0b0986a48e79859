package graph

import (
	"context"
	"database/sql"
	"errors"
)

// UpsertEntity inserts an entity or, on a name conflict, updates entity_type
// only if one was supplied (nil leaves the existing value untouched).
func (idx *Index) UpsertEntity(ctx context.Context, name string, entityType *string) (int64, error) {
	var id int64
	err := idx.withWriteTx(ctx, "graph.upsert_entity", func(tx *sql.Tx) error {
		i, err := upsertEntityTx(ctx, tx, name, entityType)
		id = i
		return err
	})
	return id, err
}

func upsertEntityTx(ctx context.Context, tx *sql.Tx, name string, entityType *string) (int64, error) {
	var id int64
	err := tx.QueryRowContext(ctx, `
		INSERT INTO entities (name, entity_type, date_added)
		VALUES (?, ?, ?)
		ON CONFLICT(name) DO UPDATE SET entity_type = COALESCE(excluded.entity_type, entities.entity_type)
		RETURNING id
	`, name, entityType, nowUTC()).Scan(&id)
	return id, err
}

// UpsertAlias maps alias to entityName. See §4.2 for the conflict taxonomy.
func (idx *Index) UpsertAlias(ctx context.Context, entityName, alias string) (int64, error) {
	var id int64
	err := idx.withWriteTx(ctx, "graph.upsert_alias", func(tx *sql.Tx) error {
		if has, err := hasRelationshipBetweenTx(ctx, tx, entityName, alias); err != nil {
			return err
		} else if has {
			return &RelationshipCollisionError{Source: entityName, Target: alias}
		}

		if entityName == alias {
			return &AliasConflictError{Kind: AliasConflictSelf, Entity: entityName, Alias: alias}
		}

		canonical, err := resolveAliasTx(ctx, tx, entityName)
		if err != nil {
			return err
		}
		if canonical != entityName {
			return &AliasConflictError{Kind: AliasConflictTransitive, Entity: entityName, Alias: canonical}
		}

		entityID, err := upsertEntityTx(ctx, tx, entityName, nil)
		if err != nil {
			return err
		}

		var existingOwner int64
		err = tx.QueryRowContext(ctx, `SELECT entity_id FROM aliases WHERE alias = ?`, alias).Scan(&existingOwner)
		switch {
		case err == nil:
			if existingOwner != entityID {
				var ownerName string
				if err := tx.QueryRowContext(ctx, `SELECT name FROM entities WHERE id = ?`, existingOwner).Scan(&ownerName); err != nil {
					return err
				}
				return &AliasConflictError{Kind: AliasConflictAlreadyMapped, Entity: entityName, Alias: alias, Owner: ownerName}
			}
		case errors.Is(err, sql.ErrNoRows):
			// not yet mapped, fine
		default:
			return err
		}

		if _, err := tx.ExecContext(ctx, `
			INSERT INTO aliases (entity_id, alias, date_added)
			VALUES (?, ?, ?)
			ON CONFLICT(alias) DO NOTHING
		`, entityID, alias, nowUTC()); err != nil {
			return err
		}

		return tx.QueryRowContext(ctx, `SELECT id FROM aliases WHERE alias = ?`, alias).Scan(&id)
	})
	return id, err
}

// UpsertRelationship inserts or updates the edge between src and tgt. See
// §4.2 for normalization and conflict-on-update semantics.
func (idx *Index) UpsertRelationship(ctx context.Context, src, tgt string, strength float64, directed bool) (int64, error) {
	var id int64
	err := idx.withWriteTx(ctx, "graph.upsert_relationship", func(tx *sql.Tx) error {
		i, err := upsertRelationshipTx(ctx, tx, src, tgt, strength, directed)
		id = i
		return err
	})
	return id, err
}

func upsertRelationshipTx(ctx context.Context, tx *sql.Tx, src, tgt string, strength float64, directed bool) (int64, error) {
	srcCanonical, err := resolveAliasTx(ctx, tx, src)
	if err != nil {
		return 0, err
	}
	tgtCanonical, err := resolveAliasTx(ctx, tx, tgt)
	if err != nil {
		return 0, err
	}
	if srcCanonical == tgtCanonical {
		return 0, &RelationshipCollisionError{Source: src, Target: tgt}
	}

	srcID, err := upsertEntityTx(ctx, tx, srcCanonical, nil)
	if err != nil {
		return 0, err
	}
	tgtID, err := upsertEntityTx(ctx, tx, tgtCanonical, nil)
	if err != nil {
		return 0, err
	}

	srcID, tgtID, directedNorm := normalizePair(srcID, tgtID, directed)

	var id int64
	err = tx.QueryRowContext(ctx, `
		INSERT INTO relationships (source_id, target_id, strength, directed, date_added)
		VALUES (?, ?, ?, ?, ?)
		ON CONFLICT(source_id, target_id, directed) DO UPDATE SET strength = excluded.strength
		RETURNING id
	`, srcID, tgtID, strength, directedNorm, nowUTC()).Scan(&id)
	return id, err
}

// UpsertClaim inserts a claim attached to exactly one of an entity or a
// relationship. Exactly one of owner.EntityName or the relationship pair
// must be set, else *ValueError*.
func (idx *Index) UpsertClaim(ctx context.Context, content string, source *string, owner ClaimOwner, claimDate *string) (int64, error) {
	if !owner.valid() {
		return 0, &ValueError{Message: "claim must be associated with either an entity or a relationship"}
	}

	var id int64
	err := idx.withWriteTx(ctx, "graph.upsert_claim", func(tx *sql.Tx) error {
		var entityID, relationshipID sql.NullInt64

		if owner.isRelationship {
			rid, err := upsertRelationshipTx(ctx, tx, owner.RelationshipSource, owner.RelationshipTarget, owner.RelationshipStrength, owner.RelationshipDirected)
			if err != nil {
				return err
			}
			relationshipID = sql.NullInt64{Int64: rid, Valid: true}
		} else {
			eid, err := upsertEntityTx(ctx, tx, owner.EntityName, nil)
			if err != nil {
				return err
			}
			entityID = sql.NullInt64{Int64: eid, Valid: true}
		}

		var claimDateNorm string
		if claimDate == nil {
			claimDateNorm = nowUTC()
		} else {
			normalized, err := parseClaimDate(*claimDate)
			if err != nil {
				return err
			}
			claimDateNorm = normalized
		}

		return tx.QueryRowContext(ctx, `
			INSERT INTO claims (entity_id, relationship_id, content, source, claim_date, date_added)
			VALUES (?, ?, ?, ?, ?, ?)
			RETURNING id
		`, entityID, relationshipID, content, source, claimDateNorm, nowUTC()).Scan(&id)
	})
	return id, err
}
