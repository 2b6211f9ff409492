// Package taskgen turns a content type's template set into the concrete
// task list of a new project.
package taskgen
