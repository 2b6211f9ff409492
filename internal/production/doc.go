// Package production defines the domain model of the accessibility track
// pipeline (assets, credits, templates, projects, tasks, archives) and the
// SQLite store that persists it.
//
// The store is the repository boundary: get-by-id, list-by-foreign-key,
// insert, update, soft-delete, and count. Multi-row operations (project
// creation with tasks, bulk template replace, archive commit) run inside a
// single immediate transaction so they are all-or-nothing and serialized
// against concurrent writers.
package production
