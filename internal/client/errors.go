package client

import "fmt"

// TransportError wraps a delivery failure between the bot and the query
// engine: connection refused, timeout, or a 5xx from the server. Callers
// treat it as "no result" and keep the conversation state unchanged.
type TransportError struct {
	Op     string
	Status int
	Err    error
}

func (e *TransportError) Error() string {
	if e.Status != 0 {
		return fmt.Sprintf("query engine %s: status %d", e.Op, e.Status)
	}
	return fmt.Sprintf("query engine %s: %v", e.Op, e.Err)
}

func (e *TransportError) Unwrap() error { return e.Err }
