package garmin

import "fmt"

// RemoteErrorKind classifies failures of the remote call.
type RemoteErrorKind string

const (
	// RemoteNetwork: the request never produced an HTTP response.
	RemoteNetwork RemoteErrorKind = "network"
	// RemoteHTTP: the service answered with a 4xx/5xx status.
	RemoteHTTP RemoteErrorKind = "http"
	// RemoteDecode: the response body was not the JSON we expected.
	RemoteDecode RemoteErrorKind = "decode"
)

// RemoteError wraps any failure of the one remote operation a command
// performs. The gateway never retries; the message carries whatever the
// service said.
type RemoteError struct {
	Kind       RemoteErrorKind
	StatusCode int
	Message    string
	Err        error
}

func (e *RemoteError) Error() string {
	if e.Kind == RemoteHTTP {
		return fmt.Sprintf("garmin connect returned %d: %s", e.StatusCode, e.Message)
	}
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *RemoteError) Unwrap() error { return e.Err }
