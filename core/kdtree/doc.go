// Package kdtree indexes historical telemetry samples for k-nearest-neighbour
// demand lookups.
//
// Trees are built once with a randomized median selection per level and are
// immutable afterwards; KNearest keeps all search state local to the call so
// a single Tree can serve concurrent queries.
package kdtree
