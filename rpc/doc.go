// Package rpc provides the network layer of a hox chess client. It owns the
// single connection to the match server, serializes the requests of the
// application onto it and routes server initiated events back to the
// application's tables and players.
//
// The package is organized into several subpackages:
//
//   - common: Core data structures and utilities used across the connection
//     layer, including the Request/Response types, errors, configuration and logging.
//
//   - transport: Network communication abstractions with pluggable implementations
//     (TCP, Unix sockets, WebSocket).
//
//   - codec: The ';' separated line protocol: command kinds, field layout, token
//     parsers and the "code\r\nmessage\r\n" reply format.
//
//   - client: The connection worker. A FIFO request queue processed by one
//     goroutine, with asynchronous delivery of responses.
//
//   - dispatcher: Routing of decoded inbound commands to the application's
//     domain objects and the session policy for failed replies.
//
//   - trace: Optional recording of all inbound commands (JSON lines or protobuf).
package rpc
