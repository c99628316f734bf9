package domain

import "errors"

// ErrInvalidRequest signals a malformed search request (empty query,
// out-of-range year, unknown jurisdiction). Rejected before orchestration.
var ErrInvalidRequest = errors.New("invalid request")
