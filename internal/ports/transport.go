package ports

// Transport is a long-running ingress for analysis requests, such as the
// HTTP API or the SMTP gateway.
type Transport interface {
	// Start starts serving requests. It blocks until the transport stops.
	Start() error

	// Stop shuts the transport down gracefully.
	Stop() error
}
