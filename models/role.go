package models

// Role is a named group a user can be a member of. The role entity itself
// is owned by an external role store; this module only needs enough of it
// to maintain the user↔role junction.
type Role struct {
	// ID is the internal role identifier.
	ID int64 `json:"-"`

	// Name is the display name of the role.
	Name string `json:"name"`

	// NormalizedName is the case-normalized form of Name used for exact
	// lookups.
	NormalizedName string `json:"-"`
}

// TableName returns the name of the database table
// associated with the Role model.
func (r Role) TableName() string {
	return "roles"
}
