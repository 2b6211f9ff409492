// Package services defines the shared error taxonomy used across the
// production workflow. Components wrap failures with sentinel markers so
// callers can classify them with errors.Is without string matching.
package services
