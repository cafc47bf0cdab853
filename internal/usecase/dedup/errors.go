package dedup

import "errors"

// ErrUnknownStrategy indicates a strategy name or value outside the supported set.
var ErrUnknownStrategy = errors.New("unknown deduplication strategy")
