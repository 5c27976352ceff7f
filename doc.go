// Package docpager provides page/offset pagination over document collections.
//
// Overview
//
// A Paginator is attached to a Collection, the query capability of a document
// store. For every call it:
//   - merges the call options over the defaults given to New;
//   - resolves the position: Offset wins over Page, neither means page 1;
//   - runs a bounded find and a count of the same filter concurrently;
//   - in lean mode, adds a string "id" to every returned document;
//   - returns a Result envelope {docs, count, limit, offset|page, pages}.
//
// A zero Limit makes the call count-only: Result.Docs is nil.
//
// Key concepts
//   - Options: typed, optional per-call settings with documented defaults.
//   - Orderings / Projection / Population: sort, select and populate specs,
//     validated before they reach a backend.
//   - Collection / Query: the consumed capability. Implementations live in
//     gormcollection (SQL tables through GORM) and mongocollection (MongoDB).
//   - RawPager: request payload decoding for HTTP APIs.
//
// Errors are always returned to the caller. ErrInvalidOptions, ErrFind and
// ErrCount classify them.
package docpager
