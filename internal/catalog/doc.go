// Package catalog manages task templates: resolving tiered effort columns
// and planning bulk replacement of a content type's template set.
package catalog
