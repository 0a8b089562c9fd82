package registry

import (
	"context"
	"errors"
	"fmt"
	"net"
)

// UpstreamRequestError is returned when the registry could not be reached or
// answered with a non-2xx status. StatusCode is zero for transport failures.
type UpstreamRequestError struct {
	Endpoint   string
	StatusCode int
	Err        error
}

func (e *UpstreamRequestError) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("%s request failed: upstream returned status %d", e.Endpoint, e.StatusCode)
	}
	return fmt.Sprintf("%s request failed: %v", e.Endpoint, e.Err)
}

func (e *UpstreamRequestError) Unwrap() error {
	return e.Err
}

// IsTimeout reports whether the request was abandoned because its deadline expired.
func (e *UpstreamRequestError) IsTimeout() bool {
	if e.Err == nil {
		return false
	}
	if errors.Is(e.Err, context.DeadlineExceeded) {
		return true
	}
	var netErr net.Error
	return errors.As(e.Err, &netErr) && netErr.Timeout()
}

// MalformedResponseError is returned when a successful response body cannot
// be read in the expected shape.
type MalformedResponseError struct {
	Endpoint string
	Reason   string
	Err      error
}

func (e *MalformedResponseError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("malformed %s response: %s: %v", e.Endpoint, e.Reason, e.Err)
	}
	return fmt.Sprintf("malformed %s response: %s", e.Endpoint, e.Reason)
}

func (e *MalformedResponseError) Unwrap() error {
	return e.Err
}

// AsUpstream returns the UpstreamRequestError in err's chain, if any.
func AsUpstream(err error) (*UpstreamRequestError, bool) {
	var upstream *UpstreamRequestError
	if errors.As(err, &upstream) {
		return upstream, true
	}
	return nil, false
}

// IsMalformed returns true if err's chain holds a MalformedResponseError.
func IsMalformed(err error) bool {
	var malformed *MalformedResponseError
	return errors.As(err, &malformed)
}
