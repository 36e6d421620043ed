// Package client implements the connection worker of hoxnet. The worker owns
// the single connection to the match server and serializes every outbound
// request from the application onto it.
//
// The package focuses on:
//   - A thread-safe FIFO request queue (mutex, condition variable and an
//     eapache/queue ring buffer)
//   - One worker goroutine processing requests strictly in order
//   - Session handling: connect and login, inbound notifications, shutdown
//   - Asynchronous delivery of responses to the originator of each request
//
// Key Components:
//
//   - Worker: Created with NewWorker, started with Start. Requests are queued
//     with Submit, which returns false once a shutdown was submitted.
//
//   - inboundPump: Started by a Listen request. It polls the connection while
//     holding the input gate and submits every received line as an
//     IncomingData request, so inbound events are processed in the same
//     order as all other requests. A failed read is submitted as a
//     ConnectionLost request; the worker closes the connection and the
//     listener receives the Response.
//
//   - Router: Receives the decoded inbound commands, failed replies and
//     connection loss (implemented by the dispatcher package).
//
// Usage Example:
//
//	worker := client.NewWorker(config, tcp.NewTCPClientFactory(config))
//	worker.SetRouter(dispatcher.New(config.PlayerID, lookup, site, worker))
//	worker.Start()
//
//	responses := make(chan *common.Response, 16)
//	login, _ := client.LoginLine(config.PlayerID, config.Password)
//	worker.Submit(common.NewConnectRequest(login, responses))
//	worker.Submit(common.NewListenRequest(events))
//
//	req, _ := client.NewCommandRequest(common.ReqTList, nil, responses, common.FlagKeepAlive)
//	worker.Submit(req)
//
//	worker.Shutdown()
//	<-worker.Done()
//
// Keep-Alive:
//
//	A request without common.FlagKeepAlive closes the connection once it is
//	processed. Connect, Listen and IncomingData requests always keep it.
//
// Thread Safety:
//
//	Submit, Shutdown and the state accessors are safe for concurrent use. The
//	connection is only used by the worker goroutine and the inbound pump.
package client
