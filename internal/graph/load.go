package graph

import (
	"context"
	"database/sql"
	"sort"
)

// GetEntity returns the full record for the canonical entity name (exact
// match, no alias resolution). Returns *EntityNotFoundError if absent.
func (idx *Index) GetEntity(ctx context.Context, name string) (*Entity, error) {
	var e Entity
	err := idx.withReadTx(ctx, "graph.get_entity", func(tx *sql.Tx) error {
		row := tx.QueryRowContext(ctx, `SELECT id, name, entity_type, date_added FROM entities WHERE name = ?`, name)
		var entityType sql.NullString
		if err := row.Scan(&e.ID, &e.Name, &entityType, &e.DateAdded); err != nil {
			if err == sql.ErrNoRows {
				return &EntityNotFoundError{Name: name}
			}
			return err
		}
		if entityType.Valid {
			e.EntityType = &entityType.String
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &e, nil
}

// GetAliasRecord returns the full alias row for aliasName (exact match).
// Returns *ValueError if aliasName has no mapping.
func (idx *Index) GetAliasRecord(ctx context.Context, aliasName string) (*Alias, error) {
	var a Alias
	err := idx.withReadTx(ctx, "graph.get_alias_record", func(tx *sql.Tx) error {
		row := tx.QueryRowContext(ctx, `SELECT id, entity_id, alias, date_added FROM aliases WHERE alias = ?`, aliasName)
		if err := row.Scan(&a.ID, &a.EntityID, &a.Alias, &a.DateAdded); err != nil {
			if err == sql.ErrNoRows {
				return &ValueError{Message: "'" + aliasName + "' is not an alias"}
			}
			return err
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &a, nil
}

// EntityExists checks exact entity existence (no alias resolution).
func (idx *Index) EntityExists(ctx context.Context, name string) (bool, error) {
	var exists bool
	err := idx.withReadTx(ctx, "graph.entity_exists", func(tx *sql.Tx) error {
		_, ok, err := entityIDByNameTx(ctx, tx, name)
		exists = ok
		return err
	})
	return exists, err
}

// LoadAliases returns the sorted alias strings for canonical(name).
func (idx *Index) LoadAliases(ctx context.Context, name string) ([]string, error) {
	var aliases []string
	err := idx.withReadTx(ctx, "graph.load_aliases", func(tx *sql.Tx) error {
		canonical, err := resolveAliasTx(ctx, tx, name)
		if err != nil {
			return err
		}
		entityID, ok, err := entityIDByNameTx(ctx, tx, canonical)
		if err != nil {
			return err
		}
		if !ok {
			return &EntityNotFoundError{Name: canonical}
		}

		rows, err := tx.QueryContext(ctx, `SELECT alias FROM aliases WHERE entity_id = ?`, entityID)
		if err != nil {
			return err
		}
		defer rows.Close()
		for rows.Next() {
			var a string
			if err := rows.Scan(&a); err != nil {
				return err
			}
			aliases = append(aliases, a)
		}
		return rows.Err()
	})
	sort.Strings(aliases)
	return aliases, err
}

// ListAllAliases is an alias for LoadAliases, named per the introspection
// surface of §4.7.
func (idx *Index) ListAllAliases(ctx context.Context, name string) ([]string, error) {
	return idx.LoadAliases(ctx, name)
}

// LoadEntityClaims returns claims attached to any entity in expandIDs(name).
func (idx *Index) LoadEntityClaims(ctx context.Context, name string) ([]Claim, error) {
	var claims []Claim
	err := idx.withReadTx(ctx, "graph.load_entity_claims", func(tx *sql.Tx) error {
		ids, _, err := expandIDsTx(ctx, tx, name)
		if err != nil {
			return err
		}

		ph, args := in(ids)
		rows, err := tx.QueryContext(ctx, `
			SELECT id, entity_id, relationship_id, content, source, claim_date, date_added
			FROM claims WHERE entity_id IN (`+ph+`)
		`, args...)
		if err != nil {
			return err
		}
		defer rows.Close()
		claims, err = scanClaims(rows)
		return err
	})
	return claims, err
}

func scanClaims(rows *sql.Rows) ([]Claim, error) {
	var claims []Claim
	for rows.Next() {
		var c Claim
		var entityID, relationshipID sql.NullInt64
		var source, claimDate sql.NullString
		if err := rows.Scan(&c.ID, &entityID, &relationshipID, &c.Content, &source, &claimDate, &c.DateAdded); err != nil {
			return nil, err
		}
		if entityID.Valid {
			c.EntityID = &entityID.Int64
		}
		if relationshipID.Valid {
			c.RelationshipID = &relationshipID.Int64
		}
		if source.Valid {
			c.Source = &source.String
		}
		if claimDate.Valid {
			c.ClaimDate = &claimDate.String
		}
		claims = append(claims, c)
	}
	return claims, rows.Err()
}

// LoadRelationships returns the deduplicated relationships incident on
// expandIDs(name), per the tie-break rules of §4.4.
func (idx *Index) LoadRelationships(ctx context.Context, name string, minStrength *float64, directed *bool) ([]RelationshipRecord, error) {
	var records []RelationshipRecord
	err := idx.withReadTx(ctx, "graph.load_relationships", func(tx *sql.Tx) error {
		ids, canonical, err := expandIDsTx(ctx, tx, name)
		if err != nil {
			return err
		}
		canonicalID := ids[0]

		ph, args := in(ids)
		where := "(r.source_id IN (" + ph + ") OR r.target_id IN (" + ph + "))"
		args = append(args, args...)

		if minStrength != nil {
			where += " AND r.strength >= ?"
			args = append(args, *minStrength)
		}
		if directed != nil {
			where += " AND r.directed = ?"
			args = append(args, *directed)
		}

		query := `
			SELECT e1.name, e2.name, r.strength, r.source_id, r.target_id, r.directed, r.id, r.date_added
			FROM relationships r
			JOIN entities e1 ON r.source_id = e1.id
			JOIN entities e2 ON r.target_id = e2.id
			WHERE ` + where + `
			ORDER BY CASE WHEN r.source_id = ? OR r.target_id = ? THEN 0 ELSE 1 END, r.directed DESC, r.id
		`
		args = append(args, canonicalID, canonicalID)

		rows, err := tx.QueryContext(ctx, query, args...)
		if err != nil {
			return err
		}
		defer rows.Close()

		type key struct {
			a, b     int64
			directed int
		}
		seen := make(map[key]RelationshipRecord)
		var order []key

		for rows.Next() {
			var rec RelationshipRecord
			if err := rows.Scan(&rec.SourceName, &rec.TargetName, &rec.Strength, &rec.SourceID, &rec.TargetID, &rec.Directed, &rec.ID, &rec.DateAdded); err != nil {
				return err
			}
			var k key
			if !rec.Directed {
				if rec.SourceID < rec.TargetID {
					k = key{rec.SourceID, rec.TargetID, 0}
				} else {
					k = key{rec.TargetID, rec.SourceID, 0}
				}
			} else {
				k = key{rec.SourceID, rec.TargetID, 1}
			}
			if _, ok := seen[k]; !ok {
				seen[k] = rec
				order = append(order, k)
			}
		}
		if err := rows.Err(); err != nil {
			return err
		}

		for _, k := range order {
			records = append(records, seen[k])
		}
		_ = canonical
		return nil
	})
	return records, err
}

// LoadRelationshipClaims returns claims on any relationship row whose
// endpoints are in expandIDs(src) × expandIDs(tgt), per directedness rules.
func (idx *Index) LoadRelationshipClaims(ctx context.Context, src, tgt string, directed *bool) ([]Claim, error) {
	var claims []Claim
	err := idx.withReadTx(ctx, "graph.load_relationship_claims", func(tx *sql.Tx) error {
		srcCanonical, err := resolveAliasTx(ctx, tx, src)
		if err != nil {
			return err
		}
		tgtCanonical, err := resolveAliasTx(ctx, tx, tgt)
		if err != nil {
			return err
		}
		if srcCanonical == tgtCanonical {
			return &RelationshipCollisionError{Source: src, Target: tgt}
		}

		ids, err := gatherDirectedRelIDs(ctx, tx, srcCanonical, tgtCanonical, directed)
		if err != nil {
			return err
		}
		if len(ids) == 0 {
			return nil
		}

		ph, args := in(ids)
		rows, err := tx.QueryContext(ctx, `
			SELECT id, entity_id, relationship_id, content, source, claim_date, date_added
			FROM claims WHERE relationship_id IN (`+ph+`)
		`, args...)
		if err != nil {
			return err
		}
		defer rows.Close()
		claims, err = scanClaims(rows)
		return err
	})
	return claims, err
}

// gatherDirectedRelIDs applies the three-way union of §4.4's directedness
// rule (directed == nil) or a single directedness branch.
func gatherDirectedRelIDs(ctx context.Context, tx *sql.Tx, srcCanonical, tgtCanonical string, directed *bool) ([]int64, error) {
	var ids []int64
	if directed == nil {
		u, err := relationshipIDsAliasExpandedTx(ctx, tx, srcCanonical, tgtCanonical, false)
		if err != nil {
			return nil, err
		}
		ids = append(ids, u...)
		d1, err := relationshipIDsAliasExpandedTx(ctx, tx, srcCanonical, tgtCanonical, true)
		if err != nil {
			return nil, err
		}
		ids = append(ids, d1...)
		d2, err := relationshipIDsAliasExpandedTx(ctx, tx, tgtCanonical, srcCanonical, true)
		if err != nil {
			return nil, err
		}
		ids = append(ids, d2...)
		return ids, nil
	}
	return relationshipIDsAliasExpandedTx(ctx, tx, srcCanonical, tgtCanonical, *directed)
}

// ListAllEntities returns all canonical entity names, sorted.
func (idx *Index) ListAllEntities(ctx context.Context) ([]string, error) {
	var names []string
	err := idx.withReadTx(ctx, "graph.list_all_entities", func(tx *sql.Tx) error {
		rows, err := tx.QueryContext(ctx, `SELECT name FROM entities ORDER BY name`)
		if err != nil {
			return err
		}
		defer rows.Close()
		for rows.Next() {
			var n string
			if err := rows.Scan(&n); err != nil {
				return err
			}
			names = append(names, n)
		}
		return rows.Err()
	})
	return names, err
}
