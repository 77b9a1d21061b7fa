package server

import (
	"net/http"
	"strings"

	"github.com/go-chi/render"

	"github.com/Zachdehooge/teleconnection-dashboard/internal/fetcher"
)

// APIError is the JSON body of a failed API call
type APIError struct {
	StatusCode int    `json:"status_code"`
	ErrorCode  string `json:"error_code"`
	Message    string `json:"message"`
	Index      string `json:"index,omitempty"`
}

func (e *APIError) Error() string {
	return e.Message
}

// Render implements render.Renderer
func (e *APIError) Render(w http.ResponseWriter, r *http.Request) error {
	render.Status(r, e.StatusCode)
	return nil
}

func errUnknownIndex(name string) *APIError {
	return &APIError{
		StatusCode: http.StatusNotFound,
		ErrorCode:  "UNKNOWN_INDEX",
		Message:    "no source configured for index " + name,
		Index:      name,
	}
}

func errUpstream(err *fetcher.FetchError) *APIError {
	return &APIError{
		StatusCode: http.StatusBadGateway,
		ErrorCode:  "FETCH_" + strings.ToUpper(string(err.Reason)),
		Message:    err.Error(),
		Index:      err.Index,
	}
}
