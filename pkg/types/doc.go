// Package types defines the Store interface, the catalog entity types
// (Tag, Category, weights), the batch mutation model, and the standard
// error values shared by the tagshelf storage and catalog layers.
package types
