// Package common provides core data structures and utilities shared across
// the hoxnet connection layer. It defines the request and response types,
// the error taxonomy, configuration structures and the logging setup used by
// the other packages.
//
// The package focuses on:
//   - Request/Response definition for producer to worker communication
//   - Typed errors that separate transport faults from protocol faults
//   - Configuration structures for the client and its transport
//   - Custom logging implementation integrated with Dragonboat's logger API
//
// Key Components:
//
//   - Request: A unit of outbound work. The Kind selects how the worker
//     processes it, the Originator channel receives the Response.
//
//   - Response: The outcome of a Request. Result distinguishes transport
//     failures from application errors reported by the server.
//
//   - ConnectError, WriteError, ReadError, ReadTimeoutError: Transport errors.
//     Each of them is fatal to the transport that produced it.
//
//   - UnknownCommandError, RouteNotFoundError, ApplicationError: Protocol
//     errors. They are logged and never tear the transport down.
//
//   - ClientConfig: Connection parameters, timeouts and transport settings.
//
//   - Logger: Dragonboat ILogger implementation that writes through zap.
package common
