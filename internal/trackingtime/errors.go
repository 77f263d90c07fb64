package trackingtime

import "fmt"

// TransportError is any non-2xx response from the API. The run aborts on the
// first one; there are no retries.
type TransportError struct {
	Status int
	Body   string
}

func (e *TransportError) Error() string {
	return fmt.Sprintf("trackingtime API error %d: %s", e.Status, e.Body)
}

// NotFoundError reports a lookup that matched nothing on the remote service.
type NotFoundError struct {
	Kind string // "user" or "customer"
	Key  string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("no %s found for %q", e.Kind, e.Key)
}
