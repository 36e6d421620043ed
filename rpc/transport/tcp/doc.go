// Package tcp implements the TCP socket transport of hoxnet. It provides the
// concrete implementation of the base package's connector interface for TCP
// connections to the match server.
//
// This package builds on the base package's transport functionality, inheriting
// its deadlines, bounded reads and idempotent closing. See the base package
// documentation for the details.
//
// Key Components:
//
//   - clientConnector: TCP-specific implementation of base.IClientConnector.
//     UpgradeConnection applies the TCPConf settings (no delay, keep-alive,
//     linger) and the socket buffer sizes of SocketConf.
package tcp
