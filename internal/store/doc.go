// Package store implements the persistence core of the identity subsystem:
// a PostgreSQL-backed user store plus the association management logic for
// the user↔login, user↔claim, and user↔role relations.
//
// The central type is [UserStore], which exposes the full operation surface
// consumed by framework integration code: user CRUD with optimistic
// concurrency, in-memory field accessors, and the login/claim/role
// sub-stores. Narrow capability interfaces ([UserAccountStore],
// [UserClaimStore], ...) describe independent slices of that surface;
// [IdentityStore] composes them all.
//
// Expected domain failures (concurrency conflicts, duplicate claims,
// unknown roles) are reported as sentinel errors matched with [errors.Is].
// Absent records on lookups are reported as nil results, not errors.
package store
