package formcontroller

import "errors"

// ApplicationError is a failure reported by the backend in the error field.
type ApplicationError struct {
	Message string
}

func (e *ApplicationError) Error() string { return e.Message }

// TransportError covers network failures, undecodable bodies and
// unexpected statuses alike.
type TransportError struct {
	Err error
}

func (e *TransportError) Error() string { return e.Err.Error() }

func (e *TransportError) Unwrap() error { return e.Err }

func asTransportError(err error) *TransportError {
	var terr *TransportError
	if errors.As(err, &terr) {
		return terr
	}
	return &TransportError{Err: err}
}
