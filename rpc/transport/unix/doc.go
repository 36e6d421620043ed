// Package unix implements a transport for hoxnet using Unix domain sockets.
// It is meant for a match server (or a test double of one) running on the
// same machine.
//
// This package extends the base transport layer with a Unix socket-specific
// connector while inheriting all core functionality like deadlines, bounded
// reads and error handling from the base package.
//
// Key Components:
//
//   - clientConnector: Establishes connections using Unix domain sockets and
//     applies the socket buffer sizes of SocketConf.
package unix
