// Package ws implements a WebSocket transport for hoxnet on top of gobwas/ws.
// It is used when the match server is reachable through a WebSocket gateway
// (endpoint "ws://host:port/path").
//
// The connector wraps the WebSocket connection into a net.Conn whose reads
// return the payload of text frames and whose writes send one text frame per
// call, so the base transport can treat it like any other stream socket.
// Frames larger than the read buffer are handed out over several reads.
//
// Note that a read deadline that expires in the middle of a frame drops the
// rest of that frame.
package ws
