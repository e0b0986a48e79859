package graph

import "fmt"

// EntityNotFoundError means a required canonical entity does not exist.
type EntityNotFoundError struct {
	Name string
	Hint string
}

func (e *EntityNotFoundError) Error() string {
	if e.Hint != "" {
		return fmt.Sprintf("entity %q not found: %s", e.Name, e.Hint)
	}
	return fmt.Sprintf("entity %q not found", e.Name)
}

// AliasConflictKind distinguishes the three ways upserting or deleting an
// alias can conflict.
type AliasConflictKind int

const (
	AliasConflictSelf AliasConflictKind = iota
	AliasConflictTransitive
	AliasConflictAlreadyMapped
)

// AliasConflictError means an alias operation violates I4/I5 or ownership.
type AliasConflictError struct {
	Kind   AliasConflictKind
	Entity string
	Alias  string
	// Owner is the actual owning entity, set for AliasConflictAlreadyMapped
	// and for ownership-mismatch errors raised by DeleteAlias.
	Owner string
}

func (e *AliasConflictError) Error() string {
	switch e.Kind {
	case AliasConflictSelf:
		return fmt.Sprintf("%q cannot be its own alias", e.Entity)
	case AliasConflictTransitive:
		return fmt.Sprintf("%q is itself an alias; alias the canonical instead", e.Entity)
	case AliasConflictAlreadyMapped:
		if e.Owner != "" {
			return fmt.Sprintf("alias %q is already mapped to %q, not %q", e.Alias, e.Owner, e.Entity)
		}
		return fmt.Sprintf("alias %q is already mapped to a different entity", e.Alias)
	default:
		return fmt.Sprintf("alias conflict on %q/%q", e.Entity, e.Alias)
	}
}

// RelationshipCollisionError means an operation would produce or match a
// self-relationship: both names resolved to the same canonical entity.
type RelationshipCollisionError struct {
	Source string
	Target string
}

func (e *RelationshipCollisionError) Error() string {
	return fmt.Sprintf("%q and %q resolve to the same entity; no self-relationships", e.Source, e.Target)
}

// RelationshipNotFoundError means a load-by-endpoints lookup found no
// matching row under the requested directedness.
type RelationshipNotFoundError struct {
	Source   string
	Target   string
	Directed *bool
}

func (e *RelationshipNotFoundError) Error() string {
	return fmt.Sprintf("no relationship between %q and %q", e.Source, e.Target)
}

// RelationshipMergeConflict means a merge would collapse an edge to a
// self-loop.
type RelationshipMergeConflict struct {
	Alias     string
	Canonical string
	Other     string
}

func (e *RelationshipMergeConflict) Error() string {
	return fmt.Sprintf("merging %q into %q would collapse its relationship with %q into a self-loop", e.Alias, e.Canonical, e.Other)
}

// DeletionConflict means a delete was refused: either a no-cascade guard hit
// dangling references, or the caller passed an alias where a canonical name
// was required.
type DeletionConflict struct {
	Message string
}

func (e *DeletionConflict) Error() string {
	return e.Message
}

// ValueError means the caller passed malformed arguments: a claim bound to
// both or neither owner, an unknown delete mode, or an unparsable claim date.
type ValueError struct {
	Message string
}

func (e *ValueError) Error() string {
	return e.Message
}
