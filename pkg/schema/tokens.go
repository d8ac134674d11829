// Package schema holds the closed vocabulary of the BAT archive format: the
// reserved control bytes, the chapter codes and the encoding-scheme IRIs that
// identify every container. Values here are part of the wire format; changing
// any of them is a breaking format change.
package schema

// Reserved control bytes. None of these may appear as a key digit byte.
const (
	TokenTerminator    byte = 0x00 // generic terminator
	TokenAbsoluteIRI   byte = 0x01 // an absolute IRI follows
	TokenBlankNode     byte = 0x02 // a blank node label follows
	TokenPrefixFollows byte = 0x03 // prefix continuation, also pads short keys
)

// Literal delimiters (UTF-8 single bytes).
const (
	TokenContents byte = '"'
	TokenLanguage byte = '@'
	TokenDatatype byte = '^'
)

// ReservedCount is the size of the reserved byte set. Key digit bytes start
// right after it.
const ReservedCount = 4

// IsReserved reports whether b is one of the structural control bytes.
func IsReserved(b byte) bool {
	return b < ReservedCount
}

// Role is a bitmask of the positions a node term occupies in the graph.
type Role uint8

const (
	RoleSubject   Role = 1 << 0
	RoleObject    Role = 1 << 1
	RolePredicate Role = 1 << 2
	RoleDatatype  Role = 1 << 3

	// RoleHop marks terms used both as subject and object. They are stored once
	// in the hops chapters.
	RoleHop = RoleSubject | RoleObject
)

// Has reports whether every bit of other is set in r.
func (r Role) Has(other Role) bool {
	return r&other == other
}

// IsHop reports whether the term is usable as both subject and object.
func (r Role) IsHop() bool {
	return r.Has(RoleHop)
}
