// Package graph implements the knowledge-graph index: entities, aliases,
// typed relationships, and timestamped claims, with alias-expansion query
// semantics, undirected-edge normalization, and physical alias merging.
package graph

// Entity is a canonical node, identified by a unique name.
type Entity struct {
	ID         int64
	Name       string
	EntityType *string
	DateAdded  string
}

// Alias maps an alternate name string to exactly one canonical Entity.
type Alias struct {
	ID        int64
	EntityID  int64
	Alias     string
	DateAdded string
}

// Relationship is an edge between two distinct canonical entities.
type Relationship struct {
	ID        int64
	SourceID  int64
	TargetID  int64
	Strength  float64
	Directed  bool
	DateAdded string
}

// RelationshipRecord is a Relationship annotated with the entity names of its
// endpoints, as returned by load operations that resolve names for callers.
type RelationshipRecord struct {
	Relationship
	SourceName string
	TargetName string
}

// Claim is a dated, sourced free-text assertion attached to exactly one
// Entity or one Relationship.
type Claim struct {
	ID             int64
	EntityID       *int64
	RelationshipID *int64
	Content        string
	Source         *string
	ClaimDate      *string
	DateAdded      string
}

// MergeStrategy controls how MergeAllAliases handles a per-alias failure.
type MergeStrategy int

const (
	// ErrorOnConflict re-raises the first failure encountered (default).
	ErrorOnConflict MergeStrategy = iota
	// SkipOnConflict records the failure and continues with the next alias.
	SkipOnConflict
)

// MergeAllResult is the outcome of MergeAllAliases.
type MergeAllResult struct {
	Merged  []string
	Skipped []SkippedMerge
}

// SkippedMerge records an alias that could not be merged under
// SkipOnConflict, along with the reason.
type SkippedMerge struct {
	Alias  string
	Reason string
}

// ClaimOwner identifies exactly one of an entity or a relationship endpoint
// pair as the owner of an upserted claim.
type ClaimOwner struct {
	EntityName string
	// RelationshipSource/RelationshipTarget are set instead of EntityName
	// when the claim belongs to a relationship. Strength/Directed are the
	// values UpsertClaim passes through to UpsertRelationship to obtain (or
	// update) the owning edge.
	RelationshipSource   string
	RelationshipTarget   string
	RelationshipStrength float64
	RelationshipDirected bool
	isRelationship       bool
}

// EntityOwner builds a ClaimOwner for an entity-attached claim.
func EntityOwner(name string) ClaimOwner {
	return ClaimOwner{EntityName: name}
}

// RelationshipOwner builds a ClaimOwner for a relationship-attached claim.
// strength/directed are forwarded to UpsertRelationship to create or update
// the owning edge.
func RelationshipOwner(source, target string, strength float64, directed bool) ClaimOwner {
	return ClaimOwner{
		RelationshipSource:   source,
		RelationshipTarget:   target,
		RelationshipStrength: strength,
		RelationshipDirected: directed,
		isRelationship:       true,
	}
}

func (o ClaimOwner) valid() bool {
	if o.isRelationship {
		return o.RelationshipSource != "" && o.RelationshipTarget != ""
	}
	return o.EntityName != ""
}

// ClaimFilterMode selects the matching strategy for DeleteClaim.
type ClaimFilterMode int

const (
	FilterExact ClaimFilterMode = iota
	FilterByEntity
	FilterByRelationship
	FilterBySource
	FilterByDate
	FilterByContent
)

// ClaimFilter describes a DeleteClaim query. Fields are ANDed together;
// which fields are consulted depends on Mode.
type ClaimFilter struct {
	Mode ClaimFilterMode

	// ByEntity / Exact entity-filter.
	EntityName string

	// ByRelationship / Exact relationship-filter.
	RelationshipSource string
	RelationshipTarget string
	Directed           *bool

	// BySource / Exact source-filter.
	Source string

	// ByDate: closed range compared against date_added.
	DateFrom string
	DateTo   string

	// ByContent / Exact content-filter.
	Content string

	// ClaimID narrows Exact mode to a single claim row.
	ClaimID *int64
}
