package agent

import "errors"

var (
	// ErrMalformedClassification means a classify call returned a payload
	// that could not be parsed into the declared key. Fatal for the turn.
	ErrMalformedClassification = errors.New("malformed classification payload")

	// ErrUnroutableQuestion means the router produced a datasource outside
	// the three known routes. Fatal for the turn.
	ErrUnroutableQuestion = errors.New("unroutable question")
)

// GatewayError wraps a transport or auth failure from a completion or
// retrieval backend. The engine does not retry these; retries are a
// generation-quality mechanism, not a transport-reliability one.
type GatewayError struct {
	Op  string
	Err error
}

func (e *GatewayError) Error() string {
	return "gateway " + e.Op + ": " + e.Err.Error()
}

func (e *GatewayError) Unwrap() error {
	return e.Err
}
