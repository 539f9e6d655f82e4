// Package types defines the configuration environment and the per-directory
// Context records that every build object is derived from.
package types
