// Package lobby provides an in-memory model of the tables and players of a
// match server session.
//
// A Lobby implements dispatcher.Lookup and dispatcher.Site, and its Table and
// Player types implement the matching dispatcher interfaces, so it can be
// plugged straight into a dispatcher. Tables and players are kept in
// xsync.MapOf registries. Every event is printed as one line to the writer
// given to New, prefixed with the table id or "*" for session events:
//
//	[*] me logged in (1500)
//	[T1] 1. P1 C2-C4
//	[T1] ! Request JOIN failed with code = 4
//
// The hoxc command line client uses it to show a session in the terminal.
package lobby
