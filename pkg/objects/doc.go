// Package objects is the build object model: the closed set of artifacts
// (libraries, programs, source batches, install rules, generated files)
// derived from a Context, the arena that gives them stable identities, and
// the linkage engine, the only code allowed to connect them.
//
// Every derived name is computed once by the constructors. After
// construction only linkage state changes, and only through LinkLibrary,
// LinkSystemLibrary and RequireNativeLink.
package objects
