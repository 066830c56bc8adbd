package lights

import "errors"

var (
	// ErrTransport indicates a socket-level failure: bind, send or receive.
	ErrTransport = errors.New("transport failure")

	// ErrProtocol indicates a response that does not parse or does not
	// match the command that was sent.
	ErrProtocol = errors.New("protocol error")

	// ErrConfig indicates a malformed address or connection parameter.
	ErrConfig = errors.New("invalid configuration")

	// ErrDiscovery indicates an integration could not begin discovery at
	// all. It always wraps one of the errors above or an OS error.
	ErrDiscovery = errors.New("discovery failed")
)
