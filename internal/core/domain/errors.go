package domain

import "errors"

var (
	// ErrMalformedDocument is returned when a fetched document is not a
	// usable feature collection.
	ErrMalformedDocument = errors.New("malformed feature collection")

	// ErrFetchFailed wraps transport failures and non-2xx responses from
	// the feature endpoint.
	ErrFetchFailed = errors.New("feature fetch failed")

	// ErrNotLoaded is returned by export before any successful load.
	ErrNotLoaded = errors.New("no dataset loaded")

	// ErrSuperseded is returned by a load that was overtaken by a newer one.
	ErrSuperseded = errors.New("load superseded by a newer request")

	// ErrBlobNotFound is returned for unknown or revoked object URLs.
	ErrBlobNotFound = errors.New("blob not found")

	// ErrSessionNotFound is returned for unknown or expired viewer sessions.
	ErrSessionNotFound = errors.New("viewer session not found")
)
