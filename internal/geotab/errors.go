package geotab

import "fmt"

// AuthError is returned when the provider rejects credentials or the
// authentication handshake fails (including network failure during it).
type AuthError struct {
	Reason string
	Err    error
}

func (e *AuthError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("geotab authentication failed: %s: %v", e.Reason, e.Err)
	}
	return fmt.Sprintf("geotab authentication failed: %s", e.Reason)
}

func (e *AuthError) Unwrap() error {
	return e.Err
}

// TransportError is returned when a single provider call fails after a
// successful authentication. Callers treat it as "no data" for that call.
type TransportError struct {
	Op  string
	Err error
}

func (e *TransportError) Error() string {
	return fmt.Sprintf("geotab %s failed: %v", e.Op, e.Err)
}

func (e *TransportError) Unwrap() error {
	return e.Err
}
