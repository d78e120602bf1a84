// Package rdf provides the RDF term values carried by solution bindings.
//
// This package contains value types only. Every other internal package may
// import rdf; rdf imports nothing internal.
//
// Key design constraints:
//   - Term is sealed so hashing and equality can switch exhaustively
//   - Canonical string forms double as hash keys for join indexes
//   - Equality and hashing never fail on malformed literal content;
//     validating term content is the producer's job
package rdf
