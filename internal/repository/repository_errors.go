package repository

import "errors"

var ErrStoreUnavailable = errors.New("cart store unavailable")
