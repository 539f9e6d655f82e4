// Package config loads the configuration environment of a build.
//
// Values are layered with koanf, later layers winning:
//
//  1. embedded/defaults.toml, compiled into the binary
//  2. the configure output file (config.status.toml, or .yaml/.yml)
//  3. environment variables: TREEGEN_SUBST_<NAME> sets substitution NAME,
//     any other TREEGEN_<KEY> sets tool setting <key>
//
// The result is a *types.Config plus the tool Settings.
package config
