package domain

import "errors"

// Business errors, mapped onto HTTP codes at the transport layer.
var (
	ErrBadParams        = errors.New("bad_params")         // 400
	ErrUnauth           = errors.New("unauthorized")       // 401
	ErrForbidden        = errors.New("forbidden")          // 403
	ErrNotFound         = errors.New("not_found")          // 404
	ErrMethodNotAllowed = errors.New("method_not_allowed") // 405
	ErrQuotaExceeded    = errors.New("quota_exceeded")     // 403 with a reason text
	ErrUnexpected       = errors.New("unexpected")         // 500
)

// Stable numeric codes for the API envelope.
const (
	ErrCodeBadParams        = 1000
	ErrCodeUnauth           = 1001
	ErrCodeForbidden        = 1003
	ErrCodeNotFound         = 1004
	ErrCodeMethodNotAllowed = 1005
	ErrCodeQuotaExceeded    = 1006
	ErrCodeUnexpected       = 1500
)
