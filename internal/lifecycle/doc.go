// Package lifecycle implements the project state machine and the weighted
// progress model. All functions here are pure: they mutate the in-memory
// project only after every check passes and leave persistence to callers.
package lifecycle
