// Package request defines immutable HTTP requests, see the NewHTTPRequest function,
// and the Sender interface which transports them.
//
// The client.Client is the default Sender, based on the standard net/http package.
// Tests and hosts with their own transport can implement the Sender, see SenderFunc.
//
// APIRequest[R Result] wraps one or more Sendable requests sent one by one,
// the R value is filled by the requests and returned by APIRequest.Send.
package request
