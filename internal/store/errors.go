package store

import "errors" // Sentinel errors shared by both stores

// Domain outcomes surfaced to the API layer, which maps them onto the JSON
// error envelope and HTTP status codes.
var (
	ErrNotFound           = errors.New("resource not found")                 // Referenced user or entry absent
	ErrForbidden          = errors.New("operation not permitted")           // Role policy violation
	ErrDuplicateUsername  = errors.New("username already taken")            // Signup with an existing username
	ErrUnresolvedFood     = errors.New("food could not be resolved")        // Lookup adapter had no match
	ErrInvalidCredentials = errors.New("invalid username or password")      // Generic authentication failure
	ErrValidation         = errors.New("invalid field value")               // Malformed or out-of-range input
)
