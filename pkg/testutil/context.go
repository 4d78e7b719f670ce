package testutil

import (
	"net/http"

	id "lekha/pkg/domain"
	"lekha/pkg/requestcontext"
)

// WithUserID adds a user ID to the request context, simulating what the auth
// middleware does for authenticated requests. Invalid UUIDs are ignored.
func WithUserID(req *http.Request, userID string) *http.Request {
	if parsed, err := id.ParseUserID(userID); err == nil {
		return req.WithContext(requestcontext.WithUserID(req.Context(), parsed))
	}
	return req
}

// WithFirmID adds a firm ID to the request context. Invalid UUIDs are ignored.
func WithFirmID(req *http.Request, firmID string) *http.Request {
	if parsed, err := id.ParseFirmID(firmID); err == nil {
		return req.WithContext(requestcontext.WithFirmID(req.Context(), parsed))
	}
	return req
}

// WithAuth adds both user ID and firm ID, the typical state for an
// authenticated request. Invalid IDs are silently ignored.
func WithAuth(req *http.Request, userID, firmID string) *http.Request {
	req = WithUserID(req, userID)
	return WithFirmID(req, firmID)
}
