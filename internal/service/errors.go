package service

import "errors"

// ErrStoreUnavailable replaces any database failure whose detail must not
// reach API callers. The underlying error is logged, not returned.
var ErrStoreUnavailable = errors.New("order store unavailable")
