// Package dispatcher routes decoded inbound commands to the domain objects of
// the application: the site (session level events), tables and players.
//
// Domain objects are found through an injected Lookup. A command for a table
// or player that is not known is logged once and dropped; Route then returns
// a *common.RouteNotFoundError, which is never fatal to the connection.
//
// Commands that embed a failure code ("code" field other than "0") are shown
// on the addressed table with PostMessage and are still handled afterwards.
//
// HandleReply implements the session policy for failed direct replies: once
// the local player is logged in, any failure leaves all tables and closes the
// connection. Before that, a failed login runs Site.OnLoginFailure.
package dispatcher
