// Package locate finds the collection of session-like records inside data of unknown shape.
//
// Captured API responses and inline script blobs rarely follow a stable contract, so records
// are located by structural inference rather than a fixed schema. A Locator runs an ordered
// list of strategies over each source and the first strategy that recognizes a candidate
// array wins:
//
//  1. StructuralSearch walks nested JSON (depth bounded) for an array of objects that carry
//     both a name-like and a time/date-like key.
//  2. PathProbe checks a few well-known property paths against explicit key whitelists.
//  3. EmbeddedJSON recovers bracket-balanced JSON literals from script text and searches them
//     structurally.
//
// Not finding anything is a normal result, reported as false rather than an error.
package locate
