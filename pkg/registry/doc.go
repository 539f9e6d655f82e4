// Package registry provides a small generic, thread-safe name -> item
// registry. Packages fill it from init() functions; lookups report
// unknown names with the kind of item that was asked for.
package registry
