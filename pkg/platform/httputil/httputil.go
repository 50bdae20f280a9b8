// Package httputil holds the JSON response and request helpers shared by
// the BFF handlers and middleware.
package httputil

import (
	"encoding/json"
	"net/http"

	dErrors "creditboard/pkg/domain-errors"
)

// ErrorResponse is the body of every non-2xx JSON response.
type ErrorResponse struct {
	Error       string `json:"error"`
	Description string `json:"error_description,omitempty"`
}

type errorMapping struct {
	status int
	name   string
}

var errorMappings = map[dErrors.Code]errorMapping{
	dErrors.CodeNotFound:               {http.StatusNotFound, "not_found"},
	dErrors.CodeBadRequest:             {http.StatusBadRequest, "bad_request"},
	dErrors.CodeValidation:             {http.StatusBadRequest, "validation_error"},
	dErrors.CodeConflict:               {http.StatusConflict, "conflict"},
	dErrors.CodeTimeout:                {http.StatusGatewayTimeout, "upstream_timeout"},
	dErrors.CodeUpstreamUnavailable:    {http.StatusBadGateway, "upstream_unavailable"},
	dErrors.CodeCustomerListLoadFailed: {http.StatusBadGateway, "customer_list_load_failed"},
	dErrors.CodeDashboardLoadFailed:    {http.StatusBadGateway, "dashboard_load_failed"},
	dErrors.CodeInternal:               {http.StatusInternalServerError, "internal_error"},
}

// StatusFor returns the HTTP status for a domain code.
func StatusFor(code dErrors.Code) int {
	return mappingFor(code).status
}

func mappingFor(code dErrors.Code) errorMapping {
	if m, ok := errorMappings[code]; ok {
		return m
	}
	return errorMappings[dErrors.CodeInternal]
}

func WriteJSON(w http.ResponseWriter, status int, response any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	// Headers are already sent; an encoding failure cannot change the status.
	_ = json.NewEncoder(w).Encode(response)
}

// WriteError writes err as an ErrorResponse. Messages of uncoded errors
// are not exposed.
func WriteError(w http.ResponseWriter, err error) {
	code := dErrors.CodeOf(err)
	m := mappingFor(code)
	resp := ErrorResponse{Error: m.name}
	if dErrors.HasCode(err, code) {
		resp.Description = err.Error()
	}
	WriteJSON(w, m.status, resp)
}
