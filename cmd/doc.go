// Package cmd implements the command-line interface hoxc. It connects to a
// match server as a player and exposes the session operations as commands.
//
// The package is organized into several subpackages:
//
//   - lobby: Session commands (list, watch, new, join, leave, move, say, draw, resign)
//   - util: Shared utilities for command-line processing and configuration (internal use)
//
// See hoxc -help for a list of all commands.
package cmd
