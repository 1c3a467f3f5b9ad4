package models

// Claim is a typed (type, value) assertion attached to a user, such as a
// permission or role marker. Claims are matched structurally: two claims
// are the same claim exactly when both Type and Value are equal, with no
// case normalization applied.
type Claim struct {
	// Type is the claim type string (e.g. "permission").
	Type string `json:"type"`

	// Value is the claim value string (e.g. "orders:read").
	Value string `json:"value"`
}

// Equal reports whether c and other carry the same (type, value) pair.
func (c Claim) Equal(other Claim) bool {
	return c.Type == other.Type && c.Value == other.Value
}

// ClaimDefinition is the canonical catalog row for a (type, value) pair.
// User claim assignments reference a definition by ID rather than embedding
// the pair, which keeps reverse lookups cheap. Definitions are treated as
// immutable: replacing a user's claim repoints the assignment to another
// definition instead of editing a row other users may share.
type ClaimDefinition struct {
	// ID is the catalog row identifier.
	ID int64 `json:"-"`

	// Type is the claim type string.
	Type string `json:"type"`

	// Value is the claim value string.
	Value string `json:"value"`
}

// Claim returns the (type, value) pair of the definition.
func (d ClaimDefinition) Claim() Claim {
	return Claim{Type: d.Type, Value: d.Value}
}

// TableName returns the name of the database table
// associated with the ClaimDefinition model.
func (d ClaimDefinition) TableName() string {
	return "claim_definitions"
}
