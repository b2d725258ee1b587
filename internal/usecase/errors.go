package usecase

import "errors"

var (
	ErrInvalidInput          = errors.New("invalid input")
	ErrNotFound              = errors.New("resource not found")
	ErrUnauthorized          = errors.New("unauthorized")
	ErrDependencyUnavailable = errors.New("dependency unavailable")
	ErrFetch                 = errors.New("fetch failed")
	ErrAuthConfig            = errors.New("auth configuration error")
	ErrSyncDiscarded         = errors.New("sync result discarded")
)
