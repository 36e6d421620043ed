// Package transport defines the interfaces and abstractions for the connection
// between the game client and the match server. It provides a common contract
// that all transport implementations must fulfill, so the connection worker
// does not depend on the underlying network medium.
//
// The package focuses on:
//   - Defining a clear interface for the single client socket
//   - Bounded, retrying reads for direct replies
//   - Enabling multiple transport implementations (TCP, Unix sockets, WebSocket)
//
// Key Components:
//
//   - IClientTransport: Interface for client-side transport implementations that
//     handles the connection, full writes and bounded reads.
//
//   - IRetryObserver: Optional interface to observe retried reads (used for metrics).
//
//   - Factory: Function type creating fresh transports. The worker calls it for
//     every Connect, since transports are single-use.
package transport
