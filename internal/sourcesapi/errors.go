package sourcesapi

import (
	"errors"
	"fmt"
	"net/http"
)

// APIError is a non-2xx response of the Sources API.
type APIError struct {
	Method string
	Path   string
	Status int
	Body   string
}

func (e *APIError) Error() string {
	if e.Body == "" {
		return fmt.Sprintf("sources api: %s %s: status %d", e.Method, e.Path, e.Status)
	}
	return fmt.Sprintf("sources api: %s %s: status %d: %s", e.Method, e.Path, e.Status, e.Body)
}

// IsNotFound reports whether err is a 404 from the Sources API.
func IsNotFound(err error) bool {
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr.Status == http.StatusNotFound
	}
	return false
}
