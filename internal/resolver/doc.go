// Package resolver turns a partial set of media identifiers into the most
// complete equivalence record it can assemble.
//
// Animation content is answered from the static mapping table, falling
// through to the bridge walk only for general identifiers the table does not
// carry. General content consults the equivalence cache first and then walks
// the provider bridges, upserting what it learned. Bridge failures degrade to
// unresolved fields; the only error Resolve returns is a rejected request.
package resolver
