// Package helpers provides the JSON response writers and error to status
// mapping shared by the HTTP service and its router adapters.
package helpers

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/mark3labs/assetkit-go"
)

// ErrorResponse is the JSON body of every failed request.
type ErrorResponse struct {
	Error string `json:"error"`
	Code  string `json:"code"`
}

// WriteJSON writes v as a JSON response with the given status.
func WriteJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	// Headers are already sent, so an encoding failure cannot change the status.
	_ = json.NewEncoder(w).Encode(v)
}

// WriteError writes err with the status StatusFor assigns to it.
func WriteError(w http.ResponseWriter, err error) {
	status := StatusFor(err)
	WriteJSON(w, status, ErrorResponse{Error: err.Error(), Code: CodeFor(err)})
}

// StatusFor maps library errors to HTTP statuses.
//
//   - invalid input: 400
//   - incomplete signer set: 422
//   - oversized transaction: 413
//   - ledger or metadata collaborators failing: 502
//   - anything else: 500
func StatusFor(err error) int {
	switch {
	case errors.Is(err, assetkit.ErrInvalidAddress),
		errors.Is(err, assetkit.ErrInvalidAmount),
		errors.Is(err, assetkit.ErrInvalidMetadata),
		errors.Is(err, assetkit.ErrEmptyTransaction),
		errors.Is(err, assetkit.ErrUnsupportedMetadataStandard),
		errors.Is(err, ErrBadRequest):
		return http.StatusBadRequest
	case errors.Is(err, assetkit.ErrMissingSignature),
		errors.Is(err, assetkit.ErrUnknownSigner):
		return http.StatusUnprocessableEntity
	case errors.Is(err, assetkit.ErrTransactionTooLarge):
		return http.StatusRequestEntityTooLarge
	case errors.Is(err, assetkit.ErrAccountResolutionFailed),
		errors.Is(err, assetkit.ErrMetadataFetch):
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

// CodeFor returns a stable machine readable code for err.
func CodeFor(err error) string {
	switch {
	case errors.Is(err, assetkit.ErrInvalidAddress):
		return "invalid_address"
	case errors.Is(err, assetkit.ErrInvalidAmount):
		return "invalid_amount"
	case errors.Is(err, assetkit.ErrInvalidMetadata):
		return "invalid_metadata"
	case errors.Is(err, assetkit.ErrEmptyTransaction):
		return "empty_transaction"
	case errors.Is(err, assetkit.ErrUnsupportedMetadataStandard):
		return "unsupported_metadata_standard"
	case errors.Is(err, ErrBadRequest):
		return "bad_request"
	case errors.Is(err, assetkit.ErrMissingSignature):
		return "missing_signature"
	case errors.Is(err, assetkit.ErrUnknownSigner):
		return "unknown_signer"
	case errors.Is(err, assetkit.ErrTransactionTooLarge):
		return "transaction_too_large"
	case errors.Is(err, assetkit.ErrAccountResolutionFailed):
		return "account_resolution_failed"
	case errors.Is(err, assetkit.ErrMetadataFetch):
		return "metadata_fetch_failed"
	default:
		return "internal"
	}
}

// ErrBadRequest marks malformed request bodies and parameters.
var ErrBadRequest = errors.New("bad request")
