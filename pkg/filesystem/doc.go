// Package filesystem holds the afero-backed file access used by every stage,
// and AvoidWriter, the output layer backends write through: it leaves
// unchanged files alone, counts what it did, honors dry-run and records
// unified diffs.
package filesystem
