package graph

import (
	"context"
	"database/sql"
)

// DumpAllRelationships returns every relationship row with both endpoint
// names resolved, for bulk export/inspection.
func (idx *Index) DumpAllRelationships(ctx context.Context) ([]RelationshipRecord, error) {
	var records []RelationshipRecord
	err := idx.withReadTx(ctx, "graph.dump_all_relationships", func(tx *sql.Tx) error {
		rows, err := tx.QueryContext(ctx, `
			SELECT r.id, e1.name, e2.name, r.strength, r.directed, r.source_id, r.target_id, r.date_added
			FROM relationships r
			JOIN entities e1 ON e1.id = r.source_id
			JOIN entities e2 ON e2.id = r.target_id
		`)
		if err != nil {
			return err
		}
		defer rows.Close()
		for rows.Next() {
			var rec RelationshipRecord
			if err := rows.Scan(&rec.ID, &rec.SourceName, &rec.TargetName, &rec.Strength, &rec.Directed, &rec.SourceID, &rec.TargetID, &rec.DateAdded); err != nil {
				return err
			}
			records = append(records, rec)
		}
		return rows.Err()
	})
	return records, err
}

// DumpAllClaims returns every claim row in the graph, unfiltered.
func (idx *Index) DumpAllClaims(ctx context.Context) ([]Claim, error) {
	var claims []Claim
	err := idx.withReadTx(ctx, "graph.dump_all_claims", func(tx *sql.Tx) error {
		rows, err := tx.QueryContext(ctx, `
			SELECT id, entity_id, relationship_id, content, source, claim_date, date_added FROM claims
		`)
		if err != nil {
			return err
		}
		defer rows.Close()
		claims, err = scanClaims(rows)
		return err
	})
	return claims, err
}

// RawClaim is the shape returned by LoadEntityClaimsRaw: content, source,
// and date_added only — no ids, matching the debug-only original.
type RawClaim struct {
	Content   string
	Source    *string
	DateAdded string
}

// LoadEntityClaimsRaw loads claims for an exact entity name, with no alias
// resolution or expansion. Debugging/inspection only — ordinary callers
// should use LoadEntityClaims.
func (idx *Index) LoadEntityClaimsRaw(ctx context.Context, name string) ([]RawClaim, error) {
	var claims []RawClaim
	err := idx.withReadTx(ctx, "graph.load_entity_claims_raw", func(tx *sql.Tx) error {
		entityID, ok, err := entityIDByNameTx(ctx, tx, name)
		if err != nil {
			return err
		}
		if !ok {
			return &EntityNotFoundError{Name: name}
		}

		rows, err := tx.QueryContext(ctx, `SELECT content, source, date_added FROM claims WHERE entity_id = ?`, entityID)
		if err != nil {
			return err
		}
		defer rows.Close()
		for rows.Next() {
			var c RawClaim
			var source sql.NullString
			if err := rows.Scan(&c.Content, &source, &c.DateAdded); err != nil {
				return err
			}
			if source.Valid {
				c.Source = &source.String
			}
			claims = append(claims, c)
		}
		return rows.Err()
	})
	return claims, err
}
