package api

import "fmt"

// QuotaError reports a 429 from a collaborator service. It is user-visible
// and non-fatal: the session keeps running, the action is simply refused
// until the window resets.
type QuotaError struct {
	Endpoint string
	Detail   string
}

func (e *QuotaError) Error() string {
	if e.Detail != "" {
		return fmt.Sprintf("quota exceeded for %s: %s", e.Endpoint, e.Detail)
	}
	return fmt.Sprintf("quota exceeded for %s", e.Endpoint)
}

// Error reports a non-2xx, non-429 response from a collaborator service.
type Error struct {
	Endpoint string
	Status   int
	Detail   string
}

func (e *Error) Error() string {
	if e.Detail != "" {
		return fmt.Sprintf("%s returned HTTP %d: %s", e.Endpoint, e.Status, e.Detail)
	}
	return fmt.Sprintf("%s returned HTTP %d", e.Endpoint, e.Status)
}
