// Package base provides a foundation for the client transports of hoxnet,
// implementing the socket handling independent of the specific network
// protocol (TCP, Unix sockets, WebSocket). It serves as a base layer that is
// extended with protocol-specific connectors.
//
// The package focuses on:
//   - A protocol-agnostic single-socket client transport
//   - Deadlines on every write and every read attempt
//   - Bounded retrying reads for direct replies from the server
//   - Idempotent, concurrency safe closing
//
// Key Components:
//
//   - IClientConnector: Interface for protocol-specific operations (dial and
//     socket tuning) that allows extending the base transport with different
//     network protocols.
//
//   - clientTransport: Core client implementation that owns exactly one
//     connection. A transport is single-use, NewFactory creates fresh ones.
//
// Reading:
//
//	ReadMessage performs up to MaxReadAttempts reads. A read that returns no
//	bytes (including one whose deadline expired) counts as "no data yet"; the
//	goroutine yields and tries again. Any other error ends the read at once.
//	Poll performs a single read and is used by the inbound pump of the worker.
//
// Thread Safety:
//
//	Close may be called from any goroutine at any time. Reads are serialized,
//	writes must be serialized by the caller.
package base
